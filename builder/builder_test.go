package builder

import (
	"testing"

	"github.com/KoltIP/runtime/internal/wasm"
	"github.com/KoltIP/runtime/options"
	"github.com/stretchr/testify/require"
)

func TestEmptyModuleSections(t *testing.T) {
	b := New(Config{})
	require.NoError(t, b.EmitImportsAndFunctions())

	base := b.stack.Current().Bytes()
	expected := []byte{
		0x01, 0x01, 0x00, // section 1: count 0
		0x02, 0x08, 0x01, 0x01, 'm', 0x01, 'h', 0x02, 0x00, 0x01, // section 2: memory import only
		0x03, 0x01, 0x00, // section 3: count 0
		0x07, 0x01, 0x00, // section 7: count 0
		0x0a, 0x01, 0x00, // section 10: count 0
	}
	require.Equal(t, expected, base)
}

func TestEmitModulePrependsHeader(t *testing.T) {
	b := New(Config{})
	out, err := b.EmitModule()
	require.NoError(t, err)
	require.Equal(t, wasm.Magic, out[:4])
	require.Equal(t, wasm.Version, out[4:8])
}

func TestTypeInterningByShape(t *testing.T) {
	b := New(Config{})
	i1, err := b.DefineType("a", []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32}, []wasm.ValueType{wasm.ValueTypeI32}, false)
	require.NoError(t, err)
	require.EqualValues(t, 0, i1)

	i2, err := b.DefineType("b", []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32}, []wasm.ValueType{wasm.ValueTypeI32}, false)
	require.NoError(t, err)
	require.EqualValues(t, 0, i2)

	require.NoError(t, b.EmitImportsAndFunctions())
	typePayload := []byte{0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f}
	section := b.stack.Current().Bytes()
	require.Equal(t, wasm.SectionIDType, section[0])
	require.Equal(t, byte(len(typePayload)), section[1])
	require.Equal(t, typePayload, section[2:2+len(typePayload)])
}

func TestLazyImportIndexing(t *testing.T) {
	b := New(Config{})
	_, err := b.DefineType("sig", nil, nil, false)
	require.NoError(t, err)
	_, err = b.DefineImportedFunction("env", "I1", "sig", false, "i1")
	require.NoError(t, err)
	_, err = b.DefineImportedFunction("env", "I2", "sig", false, "i2")
	require.NoError(t, err)

	require.NoError(t, b.DefineFunction("caller", "sig", nil, nil, false, func(bb *Builder) error {
		if err := bb.CallImport("I2"); err != nil {
			return err
		}
		if err := bb.CallImport("I1"); err != nil {
			return err
		}
		return bb.CallImport("I2")
	}))

	require.NoError(t, b.EmitImportsAndFunctions())
	require.EqualValues(t, 0, b.imports.byName["I2"].Index)
	require.EqualValues(t, 1, b.imports.byName["I1"].Index)
}

func TestConstantSlotReuseAndFallback(t *testing.T) {
	b := New(Config{ConstantSlotCount: 2})
	require.NoError(t, b.opts.ApplyOptions(options.Partial{options.UseConstants: true}))

	require.NoError(t, b.PtrConst(0x1000))
	require.NoError(t, b.PtrConst(0x2000))
	require.NoError(t, b.PtrConst(0x1000))
	require.NoError(t, b.PtrConst(0x3000))

	got := b.stack.Current().Bytes()
	expected := []byte{
		wasm.OpGlobalGet, 0x00,
		wasm.OpGlobalGet, 0x01,
		wasm.OpGlobalGet, 0x00,
		wasm.OpI32Const, 0x80, 0xe0, 0x00, // sLEB128(0x3000)
	}
	require.Equal(t, expected, got)
}

func TestLocalOrdering(t *testing.T) {
	b := New(Config{})
	_, err := b.DefineType("f", []wasm.ValueType{wasm.ValueTypeI32}, nil, false)
	require.NoError(t, err)

	rec := &functionRecord{
		Name:     "f",
		TypeName: "f",
		Params:   []LocalDecl{{Name: "p", Type: wasm.ValueTypeI32}},
		Locals: []LocalDecl{
			{Name: "a", Type: wasm.ValueTypeI64},
			{Name: "b", Type: wasm.ValueTypeI32},
			{Name: "c", Type: wasm.ValueTypeI64},
			{Name: "d", Type: wasm.ValueTypeF32},
		},
	}
	require.NoError(t, b.beginFunction(rec))

	p, err := b.curLocals.resolve("p")
	require.NoError(t, err)
	require.EqualValues(t, 0, p.Index)
	bIdx, err := b.curLocals.resolve("b")
	require.NoError(t, err)
	require.EqualValues(t, 1, bIdx.Index)
	aIdx, err := b.curLocals.resolve("a")
	require.NoError(t, err)
	require.EqualValues(t, 2, aIdx.Index)
	cIdx, err := b.curLocals.resolve("c")
	require.NoError(t, err)
	require.EqualValues(t, 3, cIdx.Index)
	dIdx, err := b.curLocals.resolve("d")
	require.NoError(t, err)
	require.EqualValues(t, 4, dIdx.Index)

	prologue := b.stack.Current().Bytes()
	require.Equal(t, []byte{0x03, 0x01, 0x7f, 0x02, 0x7e, 0x01, 0x7d}, prologue)
}

func TestEndFunctionFailsOnUnclosedBlock(t *testing.T) {
	b := New(Config{})
	_, err := b.DefineType("f", nil, nil, false)
	require.NoError(t, err)
	require.NoError(t, b.beginFunction(&functionRecord{Name: "f", TypeName: "f"}))
	require.NoError(t, b.Block(0, 0))
	_, err = b.endFunction(true)
	require.ErrorIs(t, err, wasm.ErrUnclosedBlocks)
}

func TestDefineImportUnknownTypeFails(t *testing.T) {
	b := New(Config{})
	_, err := b.DefineImportedFunction("env", "x", "missing", false, "")
	require.ErrorIs(t, err, wasm.ErrUnknownType)
}

func TestCallUnknownImportFails(t *testing.T) {
	b := New(Config{})
	err := b.CallImport("nope")
	require.ErrorIs(t, err, wasm.ErrUnknownImport)
}

func TestDefineTypeDuplicateNameFails(t *testing.T) {
	b := New(Config{})
	_, err := b.DefineType("a", []wasm.ValueType{wasm.ValueTypeI32}, nil, false)
	require.NoError(t, err)

	_, err = b.DefineType("a", []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32}, nil, false)
	require.ErrorIs(t, err, wasm.ErrDuplicateName)
}

func TestDefinePermanentTypeAfterNonPermanentFails(t *testing.T) {
	b := New(Config{})
	_, err := b.DefineType("transient", []wasm.ValueType{wasm.ValueTypeI32}, nil, false)
	require.NoError(t, err)

	_, err = b.DefineType("perm", nil, []wasm.ValueType{wasm.ValueTypeI32}, true)
	require.ErrorIs(t, err, wasm.ErrInvalidPermanentOrder)
}
