package builder

import (
	"testing"

	"github.com/KoltIP/runtime/internal/wasm"
	"github.com/KoltIP/runtime/options"
	"github.com/stretchr/testify/require"
)

func TestNameSectionOmittedByDefault(t *testing.T) {
	b := New(Config{})
	_, err := b.DefineType("v_v", nil, nil, false)
	require.NoError(t, err)
	require.NoError(t, b.DefineFunction("f", "v_v", nil, nil, false, func(bb *Builder) error {
		return bb.End()
	}))
	require.NoError(t, b.EmitImportsAndFunctions())

	out := b.stack.Current().Bytes()
	// The raw custom-section id 0x00 also occurs inside other sections, so
	// the check is that the code section (0x0a 0x04 0x01 0x02 0x00 0x0b for
	// this one-function module) ends the module and no name("name") follows.
	require.Equal(t, wasm.SectionIDCode, out[len(out)-6])
	require.NotContains(t, string(out), "\x04name")
}

func TestNameSectionEmittedWhenStatsEnabled(t *testing.T) {
	b := New(Config{})
	require.NoError(t, b.Options().ApplyOptions(options.Partial{options.EnableStats: true}))

	_, err := b.DefineType("v_v", nil, nil, false)
	require.NoError(t, err)
	require.NoError(t, b.DefineFunction("hot_loop", "v_v", nil, nil, false, func(bb *Builder) error {
		return bb.End()
	}))
	require.NoError(t, b.EmitImportsAndFunctions())

	out := b.stack.Current().Bytes()

	// The custom section must appear after the code section with id 0,
	// name "name", subsection 1 (function names) holding one entry.
	expectedTail := []byte{
		0x00,                     // section id: custom
		0x12,                     // section length (18)
		0x04, 'n', 'a', 'm', 'e', // name("name")
		0x01,                     // subsection id: function names
		0x0b,                     // subsection content length (11)
		0x01,                     // count
		0x00,                     // function index 0
		0x08, 'h', 'o', 't', '_', 'l', 'o', 'o', 'p',
	}
	require.Equal(t, expectedTail, out[len(out)-len(expectedTail):])
}

func TestNameSectionExplicitOverrideForcesOn(t *testing.T) {
	on := true
	b := New(Config{EmitNameSection: &on})
	_, err := b.DefineType("v_v", nil, nil, false)
	require.NoError(t, err)
	require.NoError(t, b.DefineFunction("f", "v_v", nil, nil, false, func(bb *Builder) error {
		return bb.End()
	}))
	require.NoError(t, b.EmitImportsAndFunctions())

	out := b.stack.Current().Bytes()
	require.Contains(t, string(out), "name")
}

func TestNameSectionCoversImportsAscendingByIndex(t *testing.T) {
	b := New(Config{})
	off := false
	b.emitNameSection = &off
	_, err := b.DefineType("v_v", nil, nil, false)
	require.NoError(t, err)
	_, err = b.DefineImportedFunction("env", "trace_enter", "v_v", true, "")
	require.NoError(t, err)

	names := b.functionNameMap()
	require.Equal(t, "trace_enter", names[0])
}
