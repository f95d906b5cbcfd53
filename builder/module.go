package builder

import (
	"fmt"

	"github.com/KoltIP/runtime/internal/buffer"
	"github.com/KoltIP/runtime/internal/wasm"
)

// EmitImportsAndFunctions runs every registered function's generator
// exactly once, captures each body blob, then emits sections 1, 2, 3, 7,
// 10 in that fixed order onto the buffer currently at the top of the
// stack (§4.F). A generator error propagates immediately — the disabled
// try/catch in the original is not re-enabled here (§9 Open Question
// resolution) — but the partial body is first captured into LastFailure
// and the global failure counter is incremented.
func (b *Builder) EmitImportsAndFunctions() error {
	for i, rec := range b.functions {
		if err := b.beginFunction(rec); err != nil {
			return fmt.Errorf("function %q: %w", rec.Name, err)
		}
		genErr := rec.Generator(b)
		if genErr != nil {
			// Blocks a failed generator left open do not stop the partial
			// body from being captured.
			b.activeBlocks = 0
		}
		body, popErr := b.endFunction(false)
		if genErr != nil {
			b.lastFailure.funcName = rec.Name
			b.lastFailure.partialBody = body
			b.lastFailure.err = genErr
			b.recordFailure()
			rec.Err = genErr
			return fmt.Errorf("function %q generator: %w", rec.Name, genErr)
		}
		if popErr != nil {
			return fmt.Errorf("function %q: %w", rec.Name, popErr)
		}
		rec.Body = body
		b.functions[i] = rec
	}

	if err := b.emitSection(wasm.SectionIDType, b.fillTypeSection); err != nil {
		return err
	}
	if err := b.emitSection(wasm.SectionIDImport, b.fillImportSection); err != nil {
		return err
	}
	if err := b.emitSection(wasm.SectionIDFunction, b.fillFunctionSection); err != nil {
		return err
	}
	if err := b.emitSection(wasm.SectionIDExport, b.fillExportSection); err != nil {
		return err
	}
	if err := b.emitSection(wasm.SectionIDCode, b.fillCodeSection); err != nil {
		return err
	}
	if b.shouldEmitNameSection() {
		if err := b.emitSection(wasm.SectionIDCustom, b.fillNameSection); err != nil {
			return err
		}
	}
	return nil
}

// EmitModule clears per-compilation stack state, prepends the fixed
// 8-byte WebAssembly header, runs EmitImportsAndFunctions, and returns the
// complete module bytes (§4.F, §6).
func (b *Builder) EmitModule() ([]byte, error) {
	b.stack.Clear()
	base := b.stack.Current()
	if _, err := base.AppendBytes(wasm.Magic); err != nil {
		return nil, err
	}
	if _, err := base.AppendBytes(wasm.Version); err != nil {
		return nil, err
	}
	if err := b.EmitImportsAndFunctions(); err != nil {
		return nil, err
	}
	return base.Bytes(), nil
}

// emitSection writes id directly to the current (base) buffer, pushes a
// fresh buffer for the payload, runs fill against it, then pops with a
// ULEB128 length prefix spliced into the parent. This is the Buffer
// Stack's section-framing use described in §4.B.
func (b *Builder) emitSection(id wasm.SectionID, fill func(*buffer.Buffer) error) error {
	base := b.stack.Current()
	if _, err := base.AppendU8(id); err != nil {
		return err
	}
	payload := b.stack.Push()
	if err := fill(payload); err != nil {
		return err
	}
	_, err := b.stack.Pop(true)
	return err
}

// fillTypeSection writes section 1's payload (§4.C).
func (b *Builder) fillTypeSection(buf *buffer.Buffer) error {
	if _, err := buf.AppendULeb(uint64(b.types.count())); err != nil {
		return err
	}
	var ferr error
	b.types.each(func(_ uint32, ft *wasm.FunctionType) {
		if ferr != nil {
			return
		}
		if _, err := buf.AppendU8(0x60); err != nil {
			ferr = err
			return
		}
		if _, err := buf.AppendULeb(uint64(len(ft.Params))); err != nil {
			ferr = err
			return
		}
		for _, p := range ft.Params {
			if _, err := buf.AppendU8(p); err != nil {
				ferr = err
				return
			}
		}
		if _, err := buf.AppendULeb(uint64(len(ft.Results))); err != nil {
			ferr = err
			return
		}
		for _, r := range ft.Results {
			if _, err := buf.AppendU8(r); err != nil {
				ferr = err
				return
			}
		}
	})
	return ferr
}

// fillImportSection writes section 2's payload: assigned imports in
// ascending index order, then constant-slot globals, then the fixed
// memory import (§4.D, §6). The ordering is load-bearing — external host
// wiring depends on it.
func (b *Builder) fillImportSection(buf *buffer.Buffer) error {
	count := 1 + b.imports.assignedCount() + b.constants.count()
	if _, err := buf.AppendULeb(uint64(count)); err != nil {
		return err
	}
	for _, e := range b.imports.ordered {
		if _, err := buf.AppendName(e.Module); err != nil {
			return err
		}
		if _, err := buf.AppendName(e.Name); err != nil {
			return err
		}
		if _, err := buf.AppendU8(wasm.ImportKindFunc); err != nil {
			return err
		}
		if _, err := buf.AppendULeb(uint64(e.TypeIndex)); err != nil {
			return err
		}
	}
	for i := 0; i < b.constants.count(); i++ {
		if _, err := buf.AppendName("c"); err != nil {
			return err
		}
		if _, err := buf.AppendName(wasm.ConstantGlobalName(i)); err != nil {
			return err
		}
		if _, err := buf.AppendU8(wasm.ImportKindGlobal); err != nil {
			return err
		}
		if _, err := buf.AppendU8(wasm.ValueTypeI32); err != nil {
			return err
		}
		if _, err := buf.AppendU8(0x00); err != nil {
			return err
		}
	}
	if _, err := buf.AppendName("m"); err != nil {
		return err
	}
	if _, err := buf.AppendName("h"); err != nil {
		return err
	}
	if _, err := buf.AppendU8(wasm.ImportKindMemory); err != nil {
		return err
	}
	if _, err := buf.AppendU8(0x00); err != nil {
		return err
	}
	_, err := buf.AppendULeb(1)
	return err
}

// fillFunctionSection writes section 3's payload: one type index per
// defined function, in definition order (§4.F).
func (b *Builder) fillFunctionSection(buf *buffer.Buffer) error {
	if _, err := buf.AppendULeb(uint64(len(b.functions))); err != nil {
		return err
	}
	for _, rec := range b.functions {
		if _, err := buf.AppendULeb(uint64(rec.TypeIndex)); err != nil {
			return err
		}
	}
	return nil
}

// fillExportSection writes section 7's payload: one entry per exported
// function, index = importedFunctionCount + funcIndex (§4.F, §6).
func (b *Builder) fillExportSection(buf *buffer.Buffer) error {
	exported := 0
	for _, rec := range b.functions {
		if rec.Export {
			exported++
		}
	}
	if _, err := buf.AppendULeb(uint64(exported)); err != nil {
		return err
	}
	imported := uint32(b.imports.assignedCount())
	for i, rec := range b.functions {
		if !rec.Export {
			continue
		}
		if _, err := buf.AppendName(rec.Name); err != nil {
			return err
		}
		if _, err := buf.AppendU8(wasm.ExportKindFunc); err != nil {
			return err
		}
		if _, err := buf.AppendULeb(uint64(imported) + uint64(i)); err != nil {
			return err
		}
	}
	return nil
}

// fillCodeSection writes section 10's payload: each function's captured
// body, length-prefixed (§4.F, §6).
func (b *Builder) fillCodeSection(buf *buffer.Buffer) error {
	if _, err := buf.AppendULeb(uint64(len(b.functions))); err != nil {
		return err
	}
	for _, rec := range b.functions {
		if _, err := buf.AppendULeb(uint64(len(rec.Body))); err != nil {
			return err
		}
		if _, err := buf.AppendBytes(rec.Body); err != nil {
			return err
		}
	}
	return nil
}
