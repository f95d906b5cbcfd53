package builder

import (
	"fmt"

	"github.com/KoltIP/runtime/internal/wasm"
	"github.com/KoltIP/runtime/options"
	"go.uber.org/zap"
)

// optsUseConstants is a local alias for options.UseConstants, kept short
// because PtrConst reads it on the hot emission path.
const optsUseConstants = options.UseConstants

// I32Const emits `i32.const v` (§4.F).
func (b *Builder) I32Const(v int32) error {
	cur := b.stack.Current()
	if _, err := cur.AppendU8(wasm.OpI32Const); err != nil {
		return err
	}
	_, err := cur.AppendLeb(int64(v))
	return err
}

// I52Const emits `i64.const v` (opcode 0x42). Named after the spec's
// "i52" convention: source values passed here never exceed 52 bits, but
// the wire encoding is the ordinary i64.const.
func (b *Builder) I52Const(v int64) error {
	cur := b.stack.Current()
	if _, err := cur.AppendU8(wasm.OpI64Const); err != nil {
		return err
	}
	_, err := cur.AppendLeb(v)
	return err
}

// F32Const emits `f32.const v`.
func (b *Builder) F32Const(v float32) error {
	cur := b.stack.Current()
	if _, err := cur.AppendU8(wasm.OpF32Const); err != nil {
		return err
	}
	_, err := cur.AppendF32(v)
	return err
}

// F64Const emits `f64.const v`.
func (b *Builder) F64Const(v float64) error {
	cur := b.stack.Current()
	if _, err := cur.AppendU8(wasm.OpF64Const); err != nil {
		return err
	}
	_, err := cur.AppendF64(v)
	return err
}

// IPConst emits `i32.const (ip - base)`, the sole well-known rebasing
// the builder performs (§4.F).
func (b *Builder) IPConst(ip int64) error {
	return b.I32Const(int32(ip - b.base))
}

// PtrConst emits a pointer-valued constant. With useConstants enabled it
// reuses an existing constant slot (linear search), allocates a fresh
// slot if capacity remains, and emits `global.get <slot>`; otherwise (or
// once the table is full) it falls back to `i32_const(p)` (§4.F,
// Testable Property 6).
func (b *Builder) PtrConst(p int64) error {
	table, err := b.opts.GetOptions()
	if err != nil {
		return err
	}
	if !table.Bool(optsUseConstants) {
		return b.I32Const(int32(p))
	}
	if idx, ok := b.constants.lookup(p); ok {
		return b.emitGlobalGet(idx)
	}
	if idx, ok := b.constants.alloc(p); ok {
		return b.emitGlobalGet(idx)
	}
	b.log.Debug("constant slot table exhausted, falling back to inline i32.const", zap.Int64("value", p))
	return b.I32Const(int32(p))
}

func (b *Builder) emitGlobalGet(slot int) error {
	cur := b.stack.Current()
	if _, err := cur.AppendU8(wasm.OpGlobalGet); err != nil {
		return err
	}
	_, err := cur.AppendULeb(uint64(slot))
	return err
}

// Block opens a block/loop/if construct. opcode defaults to
// wasm.OpBlock; valtype defaults to wasm.ValueTypeVoid. Each call
// increments activeBlocks (§4.F).
func (b *Builder) Block(valtype wasm.ValueType, opcode byte) error {
	if opcode == 0 {
		opcode = wasm.OpBlock
	}
	if valtype == 0 {
		valtype = wasm.ValueTypeVoid
	}
	cur := b.stack.Current()
	if _, err := cur.AppendU8(opcode); err != nil {
		return err
	}
	if _, err := cur.AppendU8(valtype); err != nil {
		return err
	}
	b.activeBlocks++
	return nil
}

// EndBlock closes the innermost open block/loop/if, emitting `end`.
func (b *Builder) EndBlock() error {
	if b.activeBlocks <= 0 {
		return fmt.Errorf("endBlock with no open block: %w", wasm.ErrUnclosedBlocks)
	}
	cur := b.stack.Current()
	if _, err := cur.AppendU8(wasm.OpEnd); err != nil {
		return err
	}
	b.activeBlocks--
	return nil
}

// MarkBackBranchTarget records the current body offset as a back-branch
// target, for the Back-branch Offset Set (§3) the interpreter-side
// dispatcher consumes.
func (b *Builder) MarkBackBranchTarget() {
	b.backBranches[b.stack.Size()] = struct{}{}
}

// BackBranchOffsets returns the recorded back-branch target offsets for
// the function currently being emitted.
func (b *Builder) BackBranchOffsets() map[int]struct{} {
	return b.backBranches
}

// Lea emits `(local.get base | i32.const base) ; i32.const offset ;
// i32.add` (§4.F). base is either a local name/index (resolved via Arg's
// name-or-index convention against the current parameter set) — pass a
// string or int to mean "local" — or an int32 literal base address, which
// must be passed already wrapped in the AddressConst marker type to
// disambiguate from a numeric local index.
func (b *Builder) Lea(base interface{}, offset int32) error {
	switch v := base.(type) {
	case AddressConst:
		if err := b.I32Const(int32(v)); err != nil {
			return err
		}
	case string, int, uint32:
		if err := b.Arg(v); err != nil {
			return err
		}
	default:
		return fmt.Errorf("lea: unsupported base operand %T", base)
	}
	if err := b.I32Const(offset); err != nil {
		return err
	}
	cur := b.stack.Current()
	_, err := cur.AppendU8(wasm.OpI32Add)
	return err
}

// AddressConst marks an int32 value as a literal base address for Lea,
// distinguishing it from a local-variable reference.
type AddressConst int32

// AppendMemarg appends the two ULEB128s of a memarg immediate: alignment
// (log2) then offset, per the WebAssembly binary format (§4.F).
func (b *Builder) AppendMemarg(offset uint32, alignLog2 uint32) error {
	cur := b.stack.Current()
	if _, err := cur.AppendULeb(uint64(alignLog2)); err != nil {
		return err
	}
	_, err := cur.AppendULeb(uint64(offset))
	return err
}

// Ret emits `ip_const(ip) ; return` (§4.F).
func (b *Builder) Ret(ip int64) error {
	if err := b.IPConst(ip); err != nil {
		return err
	}
	cur := b.stack.Current()
	_, err := cur.AppendU8(wasm.OpReturn)
	return err
}

// End emits the unconditional `end` opcode a generator must use to close
// the function body's own implicit top-level block (§6: "no trailing
// implicit end; generators are expected to emit their own end"). Unlike
// EndBlock it does not touch activeBlocks, and does not require any
// block/loop/if to be open — it is the function terminator, not a nested
// block closer.
func (b *Builder) End() error {
	cur := b.stack.Current()
	_, err := cur.AppendU8(wasm.OpEnd)
	return err
}

// Drop emits the `drop` opcode, discarding the top operand-stack value.
func (b *Builder) Drop() error {
	return b.emitDrop()
}
