package builder

import (
	"github.com/KoltIP/runtime/hostabi"
	"github.com/KoltIP/runtime/internal/wasm"
)

// functionPointerTableGrowth is the fixed chunk size the table grows by
// whenever the free cursor is exhausted (§4.I).
const functionPointerTableGrowth = 512

// functionPointerTable is the Function Pointer Table Manager of §4.I. It
// maintains a cursor over the host's indirect function table and grows it
// in fixed-size chunks on demand.
type functionPointerTable struct {
	table hostabi.FunctionTable
	next  int
	free  int
}

// newFunctionPointerTable constructs a manager over table, seeding next at
// the table's current length with no free slots, so the first install
// triggers a grow.
func newFunctionPointerTable(table hostabi.FunctionTable) *functionPointerTable {
	return &functionPointerTable{table: table, next: table.Length(), free: 0}
}

// AddWasmFunctionPointer installs f into the next free table slot,
// growing the table by functionPointerTableGrowth slots first if none
// remain, and returns the installed index. A nil f fails with
// ErrNullFunction (§4.I, §7).
func (t *functionPointerTable) AddWasmFunctionPointer(f interface{}) (int, error) {
	if f == nil {
		return 0, wasm.ErrNullFunction
	}
	if t.free <= 0 {
		t.next = t.table.Length()
		t.table.Grow(functionPointerTableGrowth)
		t.free = functionPointerTableGrowth
	}
	idx := t.next
	t.table.Set(idx, f)
	t.next++
	t.free--
	return idx, nil
}
