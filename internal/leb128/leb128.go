// Package leb128 implements the default (native) LEB128 encoder used
// when no host collaborator is wired in (see hostabi.Encoder). Decoding
// is deliberately not provided here: spec.md §1 names "providing a
// decoder for the emitted bytes" as an explicit Non-goal, and Testable
// Property 4's round-trip check is satisfied externally, by feeding
// emitted modules to wasmtime-go in the integration package.
package leb128

// MaxBytes is the most bytes the host encoder cwrap surface (§1) writes
// for one value; callers size scratch buffers to this. Eight bytes hold
// any unsigned value below 2^56 and any signed value in [-2^55, 2^55);
// wider 64-bit values encode to 9 or 10 bytes.
const MaxBytes = 8

// EncodeUint32 encodes v as unsigned LEB128 by widening it to
// EncodeUint64.
func EncodeUint32(v uint32) []byte {
	return EncodeUint64(uint64(v))
}

// EncodeUint64 encodes v as unsigned LEB128.
func EncodeUint64(v uint64) []byte {
	out := make([]byte, 0, MaxBytes)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			break
		}
	}
	return out
}

// EncodeInt32 encodes v as signed LEB128 (sign-extending).
func EncodeInt32(v int32) []byte {
	return EncodeInt64(int64(v))
}

// EncodeInt64 encodes v as signed LEB128.
func EncodeInt64(v int64) []byte {
	out := make([]byte, 0, MaxBytes)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			out = append(out, b)
			break
		}
		out = append(out, b|0x80)
	}
	return out
}
