package builder

import (
	"fmt"

	"github.com/KoltIP/runtime/internal/wasm"
)

// LocalDecl names one parameter or local slot when opening a function.
// FunctionType carries only shapes (§3); names are supplied here.
type LocalDecl struct {
	Name string
	Type wasm.ValueType
}

// localSlot is a resolved entry of the Local/Parameter Map (§3).
type localSlot struct {
	Type  wasm.ValueType
	Index uint32
}

// localMap is the name -> (valtype, index) map scoped to the function
// currently being emitted.
type localMap struct {
	byName     map[string]localSlot
	paramCount uint32
	localCount uint32
}

// canonicalGroups is the fixed valtype grouping order locals are bucketed
// into: i32, i64, f32, f64 (§3, §4.E).
var canonicalGroups = []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI64, wasm.ValueTypeF32, wasm.ValueTypeF64}

// newLocalMap computes indices for params (in declaration order,
// occupying [0,P)) and locals (grouped by valtype in canonical order,
// within each group by declaration order, occupying [P, P+L)), per §3.
func newLocalMap(params, locals []LocalDecl) (*localMap, [][]LocalDecl) {
	m := &localMap{byName: map[string]localSlot{}, paramCount: uint32(len(params))}
	for i, p := range params {
		m.byName[p.Name] = localSlot{Type: p.Type, Index: uint32(i)}
	}

	groups := make([][]LocalDecl, len(canonicalGroups))
	for _, l := range locals {
		for gi, vt := range canonicalGroups {
			if l.Type == vt {
				groups[gi] = append(groups[gi], l)
				break
			}
		}
	}

	idx := m.paramCount
	for _, g := range groups {
		for _, l := range g {
			m.byName[l.Name] = localSlot{Type: l.Type, Index: idx}
			idx++
		}
	}
	m.localCount = idx - m.paramCount
	return m, groups
}

func (m *localMap) resolve(name string) (localSlot, error) {
	s, ok := m.byName[name]
	if !ok {
		return localSlot{}, fmt.Errorf("local %q: %w", name, wasm.ErrUnknownLocal)
	}
	return s, nil
}

// functionRecord is the Function Record of §3, created by DefineFunction.
type functionRecord struct {
	Name       string
	TypeName   string
	TypeIndex  uint32
	Export     bool
	Params     []LocalDecl
	Locals     []LocalDecl
	Generator  func(*Builder) error
	Body       []byte
	Err        error
}
