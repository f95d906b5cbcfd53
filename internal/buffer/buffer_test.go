package buffer

import (
	"testing"

	"github.com/KoltIP/runtime/internal/wasm"
	"github.com/stretchr/testify/require"
)

func TestAppendU8ReturnsOffsetAndEnforcesCapacity(t *testing.T) {
	b := New(2, nil)
	off, err := b.AppendU8(0x7f)
	require.NoError(t, err)
	require.Equal(t, 0, off)

	off, err = b.AppendU8(0x01)
	require.NoError(t, err)
	require.Equal(t, 1, off)

	_, err = b.AppendU8(0x02)
	require.ErrorIs(t, err, wasm.ErrBufferFull)
}

func TestAppendNameASCIIFastPath(t *testing.T) {
	b := New(16, nil)
	_, err := b.AppendName("a")
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 'a'}, b.Bytes())
}

func TestAppendNameMultiByte(t *testing.T) {
	b := New(16, nil)
	_, err := b.AppendName("abc")
	require.NoError(t, err)
	require.Equal(t, []byte{0x03, 'a', 'b', 'c'}, b.Bytes())
}

func TestAppendULebAndLeb(t *testing.T) {
	b := New(16, nil)
	_, err := b.AppendULeb(624485)
	require.NoError(t, err)
	require.Equal(t, []byte{0xe5, 0x8e, 0x26}, b.Bytes())

	b2 := New(16, nil)
	_, err = b2.AppendLeb(-624485)
	require.NoError(t, err)
	require.Equal(t, []byte{0x9b, 0xf1, 0x59}, b2.Bytes())
}

func TestClearResetsSizeNotCapacity(t *testing.T) {
	b := New(4, nil)
	_, _ = b.AppendU8(1)
	_, _ = b.AppendU8(2)
	b.Clear()
	require.Equal(t, 0, b.Size())
	require.Equal(t, 4, b.Capacity())
}

func TestAppendLittleEndianIntegers(t *testing.T) {
	b := New(16, nil)
	_, err := b.AppendU32(0x01020304)
	require.NoError(t, err)
	require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, b.Bytes())
}
