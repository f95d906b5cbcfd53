package builder

import (
	"fmt"

	"github.com/KoltIP/runtime/internal/wasm"
)

// importEntry is the Imported Function record of §3: (module-name,
// external-name, friendly-name, type-index, assigned-index?).
type importEntry = wasm.Import

// importRegistry tracks imported functions by name with lazy index
// assignment (§4.D). Indices are assigned in reference order (first call,
// or immediately if assumeUsed), not definition order, and are densely
// packed starting at 0.
type importRegistry struct {
	byName  map[string]*importEntry
	defined []*importEntry // definition order, for iteration/debugging
	ordered []*importEntry // ascending assigned-index order, for §6 emission
	next    uint32
}

func newImportRegistry() *importRegistry {
	return &importRegistry{byName: map[string]*importEntry{}}
}

func (r *importRegistry) clear() {
	r.byName = map[string]*importEntry{}
	r.defined = nil
	r.ordered = nil
	r.next = 0
}

// define registers a new imported function. assumeUsed=true assigns the
// index immediately instead of waiting for the first callImport.
func (r *importRegistry) define(module, name, friendlyName string, typeIndex uint32, assumeUsed bool) (*importEntry, error) {
	if _, exists := r.byName[friendlyName]; exists {
		return nil, fmt.Errorf("import %q: %w", friendlyName, wasm.ErrDuplicateName)
	}
	e := &importEntry{Module: module, Name: name, FriendlyName: friendlyName, TypeIndex: typeIndex, Index: -1}
	r.byName[friendlyName] = e
	r.defined = append(r.defined, e)
	if assumeUsed {
		r.assign(e)
	}
	return e, nil
}

func (r *importRegistry) assign(e *importEntry) {
	if e.Index >= 0 {
		return
	}
	e.Index = int32(r.next)
	r.next++
	r.ordered = append(r.ordered, e)
}

// resolve returns the (possibly newly-assigned) index for a call to name.
func (r *importRegistry) resolve(name string) (uint32, error) {
	e, ok := r.byName[name]
	if !ok {
		return 0, fmt.Errorf("import %q: %w", name, wasm.ErrUnknownImport)
	}
	r.assign(e)
	return uint32(e.Index), nil
}

// assignedCount is the densely-packed count of assigned import indices.
func (r *importRegistry) assignedCount() int {
	return len(r.ordered)
}
