package wasm

// FunctionType is a structural (params..., results...) shape with a name
// for diagnostics. Two FunctionTypes are equivalent (and therefore share a
// registry index, per the Type Registry's interning rule) iff their Params
// and Results sequences are identical.
type FunctionType struct {
	Name    string
	Params  []ValueType
	Results []ValueType
}

// Shape returns a canonical string key for structural interning: the
// parameter valtypes in order, then a separator, then the result valtypes
// (0 or 1 of them in WebAssembly 1.0).
func (t *FunctionType) Shape() string {
	buf := make([]byte, 0, len(t.Params)+len(t.Results)+1)
	buf = append(buf, t.Params...)
	buf = append(buf, ':')
	buf = append(buf, t.Results...)
	return string(buf)
}

// Import describes a single function import in the module's import
// section.
type Import struct {
	Module       string
	Name         string
	FriendlyName string
	TypeIndex    uint32
	// Index is assigned lazily; -1 means "not yet assigned".
	Index int32
}

// Assigned reports whether the host-visible import index has been
// allocated.
func (i *Import) Assigned() bool {
	return i.Index >= 0
}

// ConstantGlobalName returns the base-36 field name used for the imported
// immutable i32 global backing constant slot index i, per §3 "Constant
// Slot Table" / §6 import section layout: module name "c", field
// name base36(i).
func ConstantGlobalName(i int) string {
	return formatBase36(uint64(i))
}

const base36Digits = "0123456789abcdefghijklmnopqrstuvwxyz"

func formatBase36(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [16]byte
	pos := len(buf)
	for v > 0 {
		pos--
		buf[pos] = base36Digits[v%36]
		v /= 36
	}
	return string(buf[pos:])
}
