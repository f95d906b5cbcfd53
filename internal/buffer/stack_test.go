package buffer

import (
	"testing"

	"github.com/KoltIP/runtime/internal/wasm"
	"github.com/stretchr/testify/require"
)

func TestPopBaseSlotFails(t *testing.T) {
	s := NewStack(16, nil)
	_, err := s.Pop(true)
	require.ErrorIs(t, err, wasm.ErrStackEmpty)
}

func TestPushPopWithLengthPrefix(t *testing.T) {
	s := NewStack(32, nil)
	nested := s.Push()
	_, err := nested.AppendU8(0xaa)
	require.NoError(t, err)
	_, err = nested.AppendU8(0xbb)
	require.NoError(t, err)

	_, err = s.Pop(true)
	require.NoError(t, err)
	require.Equal(t, []byte{0x02, 0xaa, 0xbb}, s.Current().Bytes())
}

func TestPushPopWithoutLengthPrefixReturnsRawBytes(t *testing.T) {
	s := NewStack(32, nil)
	nested := s.Push()
	_, _ = nested.AppendU8(0x01)

	body, err := s.Pop(false)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01}, body)
	require.Equal(t, 0, s.Current().Size())
}

func TestSlotsAreReusedAcrossPushPopCycles(t *testing.T) {
	s := NewStack(32, nil)
	first := s.Push()
	_, _ = first.AppendU8(0xff)
	_, err := s.Pop(false)
	require.NoError(t, err)

	second := s.Push()
	require.Equal(t, 0, second.Size())
}
