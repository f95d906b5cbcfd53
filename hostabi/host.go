// Package hostabi models the external collaborators named in §1 of the
// specification: the host runtime's cwrap surface (leb128 encoders, the
// member-offset cache, the option store) and the indirect function table.
// The builder only ever depends on these through interfaces so that, on a
// platform where the "host" and the "core" run in the same address space
// (this Go port), a NativeHost can satisfy them directly without any
// encode/decode across a JS/Wasm boundary.
package hostabi

import "github.com/KoltIP/runtime/internal/leb128"

// Encoder is the host's LEB128 encoder surface. It mirrors
// encode_leb52/encode_leb_signed_boundary/encode_leb64_ref: each returns the
// number of bytes written, or an error if fewer than leb128.MaxBytes bytes
// remained in dest or the encoding does not fit in dest (EncoderFailure,
// §7).
type Encoder interface {
	// EncodeLEB writes value into dest as LEB128 (signed or unsigned) and
	// returns the number of bytes written. Mirrors encode_leb52.
	EncodeLEB(dest []byte, value int64, signed bool) (int, error)
	// EncodeSignedBoundary writes the sentinel value ±2^(bits-1) into dest.
	// sign is -1 or +1. Mirrors encode_leb_signed_boundary.
	EncodeSignedBoundary(dest []byte, bits int, sign int) (int, error)
	// EncodeLEBRef writes src into dest as LEB128 (signed or unsigned).
	// On the original host this reads an integer out of a heap address
	// without round-tripping it through a float; in this Go port the value
	// is already a native int64, so this behaves like EncodeLEB but is
	// kept as a distinct method to preserve the call-site distinction the
	// spec draws (§4.A appendLebRef) between "value in hand" and
	// "value living at an address".
	EncodeLEBRef(dest []byte, src int64, signed bool) (int, error)
}

// MemberOffsets mirrors get_member_offset(member) -> offset.
type MemberOffsets interface {
	GetMemberOffset(member string) (int, error)
}

// OptionStore mirrors parse_option(str), get_options_version() and
// get_options_as_json().
type OptionStore interface {
	ParseOption(arg string) error
	OptionsVersion() int
	OptionsJSON() (string, error)
}

// FunctionTable mirrors the host-provided WebAssembly indirect function
// table that component I installs host-callable functions into.
type FunctionTable interface {
	// Length returns the current number of slots in the table.
	Length() int
	// Grow appends n new (null) slots to the table.
	Grow(n int)
	// Set installs fn at index idx. fn is an opaque host function
	// reference; nil is rejected by the caller (NullFunction, §7) before
	// Set is ever invoked.
	Set(idx int, fn interface{})
}

// NativeHost is the default Encoder/MemberOffsets/FunctionTable
// implementation for a Go process acting as its own host: there is no
// separate JS/Wasm boundary to cross, so EncodeLEB etc. just call the
// in-process leb128 package directly. This is the concrete collaborator
// the builder is wired to unless a caller supplies its own (e.g. to test
// EncoderFailure behavior with a deliberately small dest buffer).
type NativeHost struct {
	offsets map[string]int
	table   []interface{}
	opts    *optionState
}

// NewNativeHost constructs a NativeHost with the given member-offset table
// (may be nil/empty if the caller's generators never reference it).
func NewNativeHost(offsets map[string]int) *NativeHost {
	return &NativeHost{offsets: offsets, opts: newOptionState()}
}

func (h *NativeHost) EncodeLEB(dest []byte, value int64, signed bool) (int, error) {
	var enc []byte
	if signed {
		enc = leb128.EncodeInt64(value)
	} else {
		enc = leb128.EncodeUint64(uint64(value))
	}
	return copyEncoded(dest, enc)
}

func (h *NativeHost) EncodeSignedBoundary(dest []byte, bits int, sign int) (int, error) {
	var v int64
	if sign < 0 {
		v = -(int64(1) << (bits - 1))
	} else {
		v = int64(1) << (bits - 1)
	}
	return h.EncodeLEB(dest, v, true)
}

func (h *NativeHost) EncodeLEBRef(dest []byte, src int64, signed bool) (int, error) {
	return h.EncodeLEB(dest, src, signed)
}

func (h *NativeHost) GetMemberOffset(member string) (int, error) {
	off, ok := h.offsets[member]
	if !ok {
		return 0, ErrUnknownMember
	}
	return off, nil
}

func (h *NativeHost) Length() int { return len(h.table) }

func (h *NativeHost) Grow(n int) {
	h.table = append(h.table, make([]interface{}, n)...)
}

func (h *NativeHost) Set(idx int, fn interface{}) {
	h.table[idx] = fn
}

func (h *NativeHost) ParseOption(arg string) error {
	return h.opts.apply(arg)
}

func (h *NativeHost) OptionsVersion() int {
	return h.opts.version
}

func (h *NativeHost) OptionsJSON() (string, error) {
	return h.opts.json()
}

func copyEncoded(dest, enc []byte) (int, error) {
	if len(dest) < leb128.MaxBytes || len(enc) > len(dest) {
		return 0, ErrEncoderFailure
	}
	n := copy(dest, enc)
	return n, nil
}
