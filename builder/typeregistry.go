package builder

import (
	"fmt"

	"github.com/KoltIP/runtime/internal/wasm"
)

// typeRegistry interns WebAssembly function types by structural shape
// (§4.C). Per-compilation types are consulted first, permanent types
// second — two separate maps rather than a prototype-chain lookup, per
// the spec's design note.
type typeRegistry struct {
	permanent      []*wasm.FunctionType
	perCompilation []*wasm.FunctionType

	shapeToIndexPermanent map[string]uint32
	shapeToIndexPerComp   map[string]uint32
	nameToIndex           map[string]uint32

	hasNonPermanent bool
}

func newTypeRegistry() *typeRegistry {
	return &typeRegistry{
		shapeToIndexPermanent: map[string]uint32{},
		shapeToIndexPerComp:   map[string]uint32{},
		nameToIndex:           map[string]uint32{},
	}
}

// clearPerCompilation drops every non-permanent type, keeping permanent
// types and their indices stable across a builder Clear.
func (r *typeRegistry) clearPerCompilation() {
	r.perCompilation = nil
	r.shapeToIndexPerComp = map[string]uint32{}
	r.hasNonPermanent = false
	// Names of per-compilation types are released; permanent names stay
	// reserved.
	for name, idx := range r.nameToIndex {
		if int(idx) >= len(r.permanent) {
			delete(r.nameToIndex, name)
		}
	}
}

// define interns a shape and returns its index, per §4.C. A duplicate
// name (regardless of shape) fails with ErrDuplicateName. Defining a
// permanent type after any non-permanent type exists fails with
// ErrInvalidPermanentOrder.
func (r *typeRegistry) define(name string, params []wasm.ValueType, results []wasm.ValueType, permanent bool) (uint32, error) {
	if _, exists := r.nameToIndex[name]; exists {
		return 0, fmt.Errorf("type %q: %w", name, wasm.ErrDuplicateName)
	}
	ft := &wasm.FunctionType{Name: name, Params: params, Results: results}
	shape := ft.Shape()

	if permanent {
		if r.hasNonPermanent {
			return 0, fmt.Errorf("type %q: %w", name, wasm.ErrInvalidPermanentOrder)
		}
		if idx, ok := r.shapeToIndexPermanent[shape]; ok {
			r.nameToIndex[name] = idx
			return idx, nil
		}
		idx := uint32(len(r.permanent))
		r.permanent = append(r.permanent, ft)
		r.shapeToIndexPermanent[shape] = idx
		r.nameToIndex[name] = idx
		return idx, nil
	}

	r.hasNonPermanent = true
	if idx, ok := r.shapeToIndexPerComp[shape]; ok {
		r.nameToIndex[name] = idx
		return idx, nil
	}
	if idx, ok := r.shapeToIndexPermanent[shape]; ok {
		r.nameToIndex[name] = idx
		return idx, nil
	}
	idx := uint32(len(r.permanent) + len(r.perCompilation))
	r.perCompilation = append(r.perCompilation, ft)
	r.shapeToIndexPerComp[shape] = idx
	r.nameToIndex[name] = idx
	return idx, nil
}

func (r *typeRegistry) byName(name string) (uint32, bool) {
	idx, ok := r.nameToIndex[name]
	return idx, ok
}

// byIndex returns the FunctionType at the given module type index, valid
// across both permanent and per-compilation ranges.
func (r *typeRegistry) byIndex(idx uint32) *wasm.FunctionType {
	if int(idx) < len(r.permanent) {
		return r.permanent[idx]
	}
	i := int(idx) - len(r.permanent)
	if i < len(r.perCompilation) {
		return r.perCompilation[i]
	}
	return nil
}

func (r *typeRegistry) count() int {
	return len(r.permanent) + len(r.perCompilation)
}

// each iterates every interned type in index order.
func (r *typeRegistry) each(fn func(idx uint32, ft *wasm.FunctionType)) {
	for i, ft := range r.permanent {
		fn(uint32(i), ft)
	}
	base := len(r.permanent)
	for i, ft := range r.perCompilation {
		fn(uint32(base+i), ft)
	}
}
