package builder

import (
	"sort"

	"github.com/KoltIP/runtime/internal/buffer"
	"github.com/KoltIP/runtime/options"
)

// nameSubsectionFunctionNames is the standard WebAssembly name-section
// subsection id carrying a function-index -> name map, per
// https://www.w3.org/TR/wasm-core-1/#binary-funcnamesec.
const nameSubsectionFunctionNames = 1

// shouldEmitNameSection decides whether EmitImportsAndFunctions appends
// the optional custom "name" section (SPEC_FULL supplemented feature).
// An explicit Config.EmitNameSection override always wins; otherwise the
// section is emitted exactly when the host has enabled stats or trace
// dumping, since the teacher treats names as a debug aid rather than
// required output.
func (b *Builder) shouldEmitNameSection() bool {
	if b.emitNameSection != nil {
		return *b.emitNameSection
	}
	table, err := b.opts.GetOptions()
	if err != nil {
		return false
	}
	return table.Bool(options.EnableStats) || table.Bool(options.DumpTraces)
}

// functionNameMap maps each function's final module-level index (import
// indices first, then importedCount+definitionIndex for defined
// functions) to its human name.
func (b *Builder) functionNameMap() map[uint32]string {
	names := map[uint32]string{}
	for _, e := range b.imports.ordered {
		names[uint32(e.Index)] = e.FriendlyName
	}
	imported := uint32(b.imports.assignedCount())
	for i, rec := range b.functions {
		names[imported+uint32(i)] = rec.Name
	}
	return names
}

// fillNameSection writes the custom "name" section's payload: the section
// name followed by the function-names subsection, sorted ascending by
// function index (§ teacher wasm/binary/names.go encodeFunctionNameData).
func (b *Builder) fillNameSection(buf *buffer.Buffer) error {
	if _, err := buf.AppendName("name"); err != nil {
		return err
	}
	names := b.functionNameMap()
	if len(names) == 0 {
		return nil
	}

	keys := make([]uint32, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	content := buffer.New(buffer.DefaultCapacity, nil)
	if _, err := content.AppendULeb(uint64(len(keys))); err != nil {
		return err
	}
	for _, idx := range keys {
		if _, err := content.AppendULeb(uint64(idx)); err != nil {
			return err
		}
		if _, err := content.AppendName(names[idx]); err != nil {
			return err
		}
	}

	if _, err := buf.AppendU8(nameSubsectionFunctionNames); err != nil {
		return err
	}
	if _, err := buf.AppendULeb(uint64(content.Size())); err != nil {
		return err
	}
	_, err := buf.AppendBytes(content.Bytes())
	return err
}
