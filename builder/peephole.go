package builder

import (
	"github.com/KoltIP/runtime/internal/wasm"
	"go.uber.org/zap"
)

// mathLHSLocal is the reserved i32 local name the peephole helpers
// spill an on-stack destination/source address into before reading it
// back repeatedly (§4.G "first local.set math_lhs32"). A generator that
// wants to use TryMemsetFast/TryMemmoveFast with destOnStack/srcOnStack
// must have declared this local ahead of time; it is resolved through the
// ordinary local map, so an undeclared scratch local surfaces as the
// ordinary ErrUnknownLocal.
const mathLHSLocal = "math_lhs32"
const mathRHSLocal = "math_rhs32"

// TryMemsetFast inlines a zero-fill of count bytes starting at dest as a
// sequence of native stores (§4.G). dest is a local name/index already
// holding the destination address, unless destOnStack is true, in which
// case the address is expected on top of the operand stack and is first
// spilled into the math_lhs32 scratch local. Returns (false, nil) if the
// caller should fall back to AppendMemsetDest instead (count <= 0 is
// handled inline; count >= maxMemsetSize is the fallback signal).
func (b *Builder) TryMemsetFast(dest interface{}, value int64, count int32, destOnStack bool) (bool, error) {
	if count <= 0 {
		if destOnStack {
			if err := b.emitDrop(); err != nil {
				return false, err
			}
		}
		return true, nil
	}
	if count >= int32(b.maxMemsetSize) {
		b.log.Debug("memset count exceeds inline threshold, falling back to bulk memory.fill",
			zap.Int32("count", count), zap.Int("maxMemsetSize", b.maxMemsetSize))
		return false, nil
	}

	effectiveDest := dest
	if destOnStack {
		if err := b.Local(mathLHSLocal, wasm.OpLocalSet); err != nil {
			return false, err
		}
		effectiveDest = mathLHSLocal
	}

	offset := uint32(0)
	remaining := count
	for remaining >= 8 {
		if err := b.storeAt(effectiveDest, offset, int64(0), wasm.OpI64Store, true); err != nil {
			return false, err
		}
		offset += 8
		remaining -= 8
	}
	if remaining >= 4 {
		if err := b.storeAt(effectiveDest, offset, int64(value), wasm.OpI32Store, false); err != nil {
			return false, err
		}
		offset += 4
		remaining -= 4
	}
	switch remaining {
	case 0:
		// exactly 4 remained and was just consumed, or nothing to do.
	case 1:
		if err := b.storeAt(effectiveDest, offset, int64(value), wasm.OpI32Store8, false); err != nil {
			return false, err
		}
	case 2:
		if err := b.storeAt(effectiveDest, offset, int64(value), wasm.OpI32Store16, false); err != nil {
			return false, err
		}
	case 3:
		if err := b.storeAt(effectiveDest, offset, int64(value), wasm.OpI32Store16, false); err != nil {
			return false, err
		}
		if err := b.storeAt(effectiveDest, offset+2, int64(value), wasm.OpI32Store8, false); err != nil {
			return false, err
		}
	}
	return true, nil
}

// storeAt emits `local.get dest ; iN.const value ; iN.store memarg(offset,
// 0)`, the repeated shape every memset chunk above needs. wide selects
// between i32.const/i64.const for the value operand.
func (b *Builder) storeAt(dest interface{}, offset uint32, value int64, storeOp byte, wide bool) error {
	if err := b.Local(dest); err != nil {
		return err
	}
	if wide {
		if err := b.I52Const(value); err != nil {
			return err
		}
	} else {
		if err := b.I32Const(int32(value)); err != nil {
			return err
		}
	}
	cur := b.stack.Current()
	if _, err := cur.AppendU8(storeOp); err != nil {
		return err
	}
	return b.AppendMemarg(offset, 0)
}

func (b *Builder) emitDrop() error {
	cur := b.stack.Current()
	_, err := cur.AppendU8(wasm.OpDrop)
	return err
}

// AppendMemsetDest emits the bulk memory.fill fallback. The destination
// address must already be on the operand stack (§4.G): `i32.const value ;
// i32.const count ; 0xFC 11 0x00`.
func (b *Builder) AppendMemsetDest(value int32, count int32) error {
	if err := b.I32Const(value); err != nil {
		return err
	}
	if err := b.I32Const(count); err != nil {
		return err
	}
	cur := b.stack.Current()
	if _, err := cur.AppendU8(wasm.OpMisc); err != nil {
		return err
	}
	if _, err := cur.AppendU8(wasm.MiscMemoryFill); err != nil {
		return err
	}
	_, err := cur.AppendU8(0x00)
	return err
}

// TryMemmoveFast inlines a copy of count bytes from src to dest as
// matched load/store pairs (§4.G). dest/src are local names/indices
// already holding the addresses, unless destOnStack/srcOnStack is set, in
// which case the respective address is spilled from the operand stack
// into math_lhs32/math_rhs32 first.
func (b *Builder) TryMemmoveFast(dest, src interface{}, count int32, destOnStack, srcOnStack bool) (bool, error) {
	if count <= 0 {
		if destOnStack {
			if err := b.emitDrop(); err != nil {
				return false, err
			}
		}
		if srcOnStack {
			if err := b.emitDrop(); err != nil {
				return false, err
			}
		}
		return true, nil
	}
	if count >= int32(b.maxMemsetSize) {
		b.log.Debug("memmove count exceeds inline threshold, falling back to bulk memory.copy",
			zap.Int32("count", count), zap.Int("maxMemsetSize", b.maxMemsetSize))
		return false, nil
	}

	effectiveDest, effectiveSrc := dest, src
	if destOnStack {
		if err := b.Local(mathLHSLocal, wasm.OpLocalSet); err != nil {
			return false, err
		}
		effectiveDest = mathLHSLocal
	}
	if srcOnStack {
		if err := b.Local(mathRHSLocal, wasm.OpLocalSet); err != nil {
			return false, err
		}
		effectiveSrc = mathRHSLocal
	}

	offset := uint32(0)
	remaining := count
	for remaining >= 8 {
		if err := b.copyChunk(effectiveDest, effectiveSrc, offset, wasm.OpI64Load, wasm.OpI64Store); err != nil {
			return false, err
		}
		offset += 8
		remaining -= 8
	}
	if remaining >= 4 {
		if err := b.copyChunk(effectiveDest, effectiveSrc, offset, wasm.OpI32Load, wasm.OpI32Store); err != nil {
			return false, err
		}
		offset += 4
		remaining -= 4
	}
	switch remaining {
	case 0:
	case 1:
		if err := b.copyChunk(effectiveDest, effectiveSrc, offset, wasm.OpI32Load8U, wasm.OpI32Store8); err != nil {
			return false, err
		}
	case 2:
		if err := b.copyChunk(effectiveDest, effectiveSrc, offset, wasm.OpI32Load16U, wasm.OpI32Store16); err != nil {
			return false, err
		}
	case 3:
		if err := b.copyChunk(effectiveDest, effectiveSrc, offset, wasm.OpI32Load16U, wasm.OpI32Store16); err != nil {
			return false, err
		}
		if err := b.copyChunk(effectiveDest, effectiveSrc, offset+2, wasm.OpI32Load8U, wasm.OpI32Store8); err != nil {
			return false, err
		}
	}
	return true, nil
}

// copyChunk emits `local.get dest ; local.get src ; lN.load memarg(offset,
// 0) ; lN.store memarg(offset,0)`. WebAssembly's store instructions take
// (address, value) with address pushed first, so dest is emitted before
// the load sequence that produces the value.
func (b *Builder) copyChunk(dest, src interface{}, offset uint32, loadOp, storeOp byte) error {
	if err := b.Local(dest); err != nil {
		return err
	}
	if err := b.Local(src); err != nil {
		return err
	}
	cur := b.stack.Current()
	if _, err := cur.AppendU8(loadOp); err != nil {
		return err
	}
	if err := b.AppendMemarg(offset, 0); err != nil {
		return err
	}
	if _, err := cur.AppendU8(storeOp); err != nil {
		return err
	}
	return b.AppendMemarg(offset, 0)
}

// AppendMemmoveDest emits the bulk memory.copy fallback. dest and src
// must already be on the operand stack, deepest-to-shallowest dest, src
// (§4.G): `i32.const count ; 0xFC 10 0x00 0x00`.
func (b *Builder) AppendMemmoveDest(count int32) error {
	if err := b.I32Const(count); err != nil {
		return err
	}
	cur := b.stack.Current()
	if _, err := cur.AppendU8(wasm.OpMisc); err != nil {
		return err
	}
	if _, err := cur.AppendU8(wasm.MiscMemoryCopy); err != nil {
		return err
	}
	if _, err := cur.AppendU8(0x00); err != nil {
		return err
	}
	_, err := cur.AppendU8(0x00)
	return err
}
