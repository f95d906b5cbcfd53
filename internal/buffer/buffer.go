// Package buffer implements the Byte Buffer and Buffer Stack described in
// §4.A-§4.B of the specification: a fixed-capacity appendable byte region
// with explicit little-endian primitive writers, and a stack of such
// buffers used to size nested regions (sections, function bodies) whose
// length prefix can only be known once the region is complete.
package buffer

import (
	"encoding/binary"
	"math"

	"github.com/KoltIP/runtime/hostabi"
	"github.com/KoltIP/runtime/internal/wasm"
)

// DefaultCapacity is the default fixed capacity of a new Byte Buffer, per
// §3 ("default 32,000 bytes").
const DefaultCapacity = 32000

// Buffer is a fixed-capacity, append-only byte region. It owns its backing
// array exclusively while it occupies a Stack slot; Clear resets Size to 0
// without reallocating, mirroring the host-heap-backed buffer whose
// capacity is fixed at construction (§3).
type Buffer struct {
	data []byte // len(data) == capacity, always
	size int
	enc  hostabi.Encoder
}

// New allocates a Buffer with the given capacity, backed by enc for LEB128
// encoding. A nil enc defaults to hostabi.NewNativeHost(nil).
func New(capacity int, enc hostabi.Encoder) *Buffer {
	if enc == nil {
		enc = hostabi.NewNativeHost(nil)
	}
	return &Buffer{data: make([]byte, capacity), enc: enc}
}

// Size returns the number of bytes currently appended.
func (b *Buffer) Size() int { return b.size }

// Capacity returns the fixed capacity of the buffer.
func (b *Buffer) Capacity() int { return len(b.data) }

// Bytes returns a copy of the appended region, b.data[:b.size].
func (b *Buffer) Bytes() []byte {
	out := make([]byte, b.size)
	copy(out, b.data[:b.size])
	return out
}

// View returns the live appended region without copying, or the full
// backing array if fullCapacity is true. Callers must not retain the
// slice across a Clear (the spec's "heap-view invalidation" concern -
// see §5/§9 - does not apply to a native Go slice, but the API shape is
// preserved so call sites re-fetch the view the same way a JS-hosted
// port would have to).
func (b *Buffer) View(fullCapacity bool) []byte {
	if fullCapacity {
		return b.data
	}
	return b.data[:b.size]
}

// Clear resets Size to 0. The backing array is reused as-is.
func (b *Buffer) Clear() {
	b.size = 0
}

func (b *Buffer) ensure(n int) error {
	if b.size+n > len(b.data) {
		return wasm.ErrBufferFull
	}
	return nil
}

// AppendU8 appends a single byte and returns the offset it was written at.
func (b *Buffer) AppendU8(v byte) (int, error) {
	if err := b.ensure(1); err != nil {
		return 0, err
	}
	off := b.size
	b.data[b.size] = v
	b.size++
	return off, nil
}

// AppendBytes appends src verbatim.
func (b *Buffer) AppendBytes(src []byte) (int, error) {
	if err := b.ensure(len(src)); err != nil {
		return 0, err
	}
	off := b.size
	copy(b.data[b.size:], src)
	b.size += len(src)
	return off, nil
}

// AppendU16 appends v little-endian.
func (b *Buffer) AppendU16(v uint16) (int, error) {
	if err := b.ensure(2); err != nil {
		return 0, err
	}
	off := b.size
	binary.LittleEndian.PutUint16(b.data[b.size:], v)
	b.size += 2
	return off, nil
}

// AppendI16 appends v little-endian.
func (b *Buffer) AppendI16(v int16) (int, error) { return b.AppendU16(uint16(v)) }

// AppendU32 appends v little-endian.
func (b *Buffer) AppendU32(v uint32) (int, error) {
	if err := b.ensure(4); err != nil {
		return 0, err
	}
	off := b.size
	binary.LittleEndian.PutUint32(b.data[b.size:], v)
	b.size += 4
	return off, nil
}

// AppendI32 appends v little-endian.
func (b *Buffer) AppendI32(v int32) (int, error) { return b.AppendU32(uint32(v)) }

// AppendU64 appends v little-endian.
func (b *Buffer) AppendU64(v uint64) (int, error) {
	if err := b.ensure(8); err != nil {
		return 0, err
	}
	off := b.size
	binary.LittleEndian.PutUint64(b.data[b.size:], v)
	b.size += 8
	return off, nil
}

// AppendI64 appends v little-endian.
func (b *Buffer) AppendI64(v int64) (int, error) { return b.AppendU64(uint64(v)) }

// AppendF32 appends the IEEE-754 bits of v little-endian.
func (b *Buffer) AppendF32(v float32) (int, error) {
	return b.AppendU32(math.Float32bits(v))
}

// AppendF64 appends the IEEE-754 bits of v little-endian.
func (b *Buffer) AppendF64(v float64) (int, error) {
	return b.AppendU64(math.Float64bits(v))
}

// AppendName appends a UTF-8 string prefixed by its byte-count as
// ULEB128, per §4.A. Single ASCII characters take a fast path that
// bypasses the UTF-8 encoder entirely.
func (b *Buffer) AppendName(text string) (int, error) {
	if len(text) == 1 && text[0] < 0x80 {
		off := b.size
		if _, err := b.AppendU8(1); err != nil {
			return 0, err
		}
		if _, err := b.AppendU8(text[0]); err != nil {
			return 0, err
		}
		return off, nil
	}
	off := b.size
	if _, err := b.AppendULeb(uint64(len(text))); err != nil {
		return 0, err
	}
	if _, err := b.AppendBytes([]byte(text)); err != nil {
		return 0, err
	}
	return off, nil
}

// AppendULeb appends value as unsigned LEB128 via the wired Encoder.
func (b *Buffer) AppendULeb(value uint64) (int, error) {
	return b.appendEncoded(int64(value), false, false)
}

// AppendLeb appends value as signed LEB128 via the wired Encoder.
func (b *Buffer) AppendLeb(value int64) (int, error) {
	return b.appendEncoded(value, true, false)
}

// AppendLebRef appends srcAddr as LEB128, using the Encoder's "ref" entry
// point (§4.A appendLebRef) rather than the value-in-hand entry point.
// On this native port both ultimately call the same arithmetic; the
// distinction is kept because a future host swap (e.g. reading the value
// out of real linear memory at srcAddr) only has to change EncodeLEBRef.
func (b *Buffer) AppendLebRef(srcAddr int64, signed bool) (int, error) {
	return b.appendEncoded(srcAddr, signed, true)
}

func (b *Buffer) appendEncoded(value int64, signed, ref bool) (int, error) {
	var scratch [8]byte
	var n int
	var err error
	if ref {
		n, err = b.enc.EncodeLEBRef(scratch[:], value, signed)
	} else {
		n, err = b.enc.EncodeLEB(scratch[:], value, signed)
	}
	if err != nil {
		return 0, wasm.ErrEncoderFailure
	}
	if n < 1 {
		return 0, wasm.ErrEncoderFailure
	}
	return b.AppendBytes(scratch[:n])
}

// AppendBoundaryValue appends the sentinel value ±2^(bits-1), used for
// overflow-test generation (§4.A).
func (b *Buffer) AppendBoundaryValue(bits int, sign int) (int, error) {
	var scratch [8]byte
	n, err := b.enc.EncodeSignedBoundary(scratch[:], bits, sign)
	if err != nil || n < 1 {
		return 0, wasm.ErrEncoderFailure
	}
	return b.AppendBytes(scratch[:n])
}
