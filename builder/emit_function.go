package builder

import (
	"fmt"
	"strconv"

	"github.com/KoltIP/runtime/internal/wasm"
)

// beginFunction resets the local map and branch-target set for a new
// function body and writes the local prologue (§4.E). It pushes a fresh
// buffer onto the Buffer Stack to become the current emission target.
func (b *Builder) beginFunction(rec *functionRecord) error {
	b.curLocals, b.curGroups = newLocalMap(rec.Params, rec.Locals)
	b.activeBlocks = 0
	b.backBranches = map[int]struct{}{}

	body := b.stack.Push()
	groupCount := 0
	for _, g := range b.curGroups {
		if len(g) > 0 {
			groupCount++
		}
	}
	if _, err := body.AppendULeb(uint64(groupCount)); err != nil {
		return err
	}
	for gi, g := range b.curGroups {
		if len(g) == 0 {
			continue
		}
		if _, err := body.AppendULeb(uint64(len(g))); err != nil {
			return err
		}
		if _, err := body.AppendU8(canonicalGroups[gi]); err != nil {
			return err
		}
	}
	return nil
}

// endFunction pops the function body buffer. If any block/loop/if is
// still active it fails with ErrUnclosedBlocks (§4.E, Testable Property
// 8). writeToOutput mirrors the Buffer Stack's pop semantics: true writes
// the length-prefixed body into the parent buffer, false returns the raw
// bytes (the shape EmitImportsAndFunctions uses to capture a Function
// Record's body blob).
func (b *Builder) endFunction(writeToOutput bool) ([]byte, error) {
	if b.activeBlocks != 0 {
		return nil, fmt.Errorf("endFunction: %w", wasm.ErrUnclosedBlocks)
	}
	body, err := b.stack.Pop(writeToOutput)
	b.curLocals = nil
	b.curGroups = nil
	return body, err
}

// localRef resolves a name-or-index reference to a local slot, per §4.E.
// A string must resolve in the current local map (ErrUnknownLocal
// otherwise); a numeric value is a zero-based index, offset by the
// parameter count when fromLocal is true (so that local index 0 is the
// first declared non-parameter local).
func (b *Builder) localRef(nameOrIndex interface{}, fromLocal bool) (uint32, error) {
	switch v := nameOrIndex.(type) {
	case string:
		if b.curLocals == nil {
			return 0, fmt.Errorf("local %q: %w", v, wasm.ErrUnknownLocal)
		}
		slot, err := b.curLocals.resolve(v)
		if err != nil {
			return 0, err
		}
		return slot.Index, nil
	case int:
		return b.numericLocalIndex(uint32(v), fromLocal)
	case uint32:
		return b.numericLocalIndex(v, fromLocal)
	default:
		return 0, fmt.Errorf("local reference %v: %w", nameOrIndex, wasm.ErrUnknownLocal)
	}
}

func (b *Builder) numericLocalIndex(v uint32, fromLocal bool) (uint32, error) {
	if fromLocal {
		if b.curLocals == nil {
			return 0, fmt.Errorf("local index %d: %w", v, wasm.ErrUnknownLocal)
		}
		return b.curLocals.paramCount + v, nil
	}
	return v, nil
}

// Arg emits a local access to a parameter. opcode defaults to
// local.get; pass wasm.OpLocalSet or wasm.OpLocalTee explicitly for a
// store/tee (§4.E).
func (b *Builder) Arg(nameOrIndex interface{}, opcode ...byte) error {
	idx, err := b.localRef(nameOrIndex, false)
	if err != nil {
		return err
	}
	return b.emitLocalOp(idx, opcode)
}

// Local emits a local access to a declared local. When nameOrIndex is
// numeric it is interpreted as a zero-based local index, with the
// parameter count added so index 0 is the first declared non-parameter
// local (§4.E).
func (b *Builder) Local(nameOrIndex interface{}, opcode ...byte) error {
	idx, err := b.localRef(nameOrIndex, true)
	if err != nil {
		return err
	}
	return b.emitLocalOp(idx, opcode)
}

func (b *Builder) emitLocalOp(idx uint32, opcode []byte) error {
	op := byte(wasm.OpLocalGet)
	if len(opcode) > 0 {
		op = opcode[0]
	}
	cur := b.stack.Current()
	if _, err := cur.AppendU8(op); err != nil {
		return err
	}
	_, err := cur.AppendULeb(uint64(idx))
	return err
}

// localIndexName is a small helper used by diagnostics/dumps to render a
// numeric local index, e.g. when logging a forensic partial body.
func localIndexName(idx uint32) string {
	return "$" + strconv.FormatUint(uint64(idx), 10)
}
