package leb128

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeUint64KnownBytes(t *testing.T) {
	require.Equal(t, []byte{0x00}, EncodeUint64(0))
	require.Equal(t, []byte{0xe5, 0x8e, 0x26}, EncodeUint64(624485))
}

func TestEncodeInt64KnownBytes(t *testing.T) {
	require.Equal(t, []byte{0x00}, EncodeInt64(0))
	require.Equal(t, []byte{0x7f}, EncodeInt64(-1))
	require.Equal(t, []byte{0x9b, 0xf1, 0x59}, EncodeInt64(-624485))
}

func TestEncodeUint32DelegatesToUint64(t *testing.T) {
	require.Equal(t, EncodeUint64(300), EncodeUint32(300))
}

func TestEncodeInt32DelegatesToInt64(t *testing.T) {
	require.Equal(t, EncodeInt64(-64), EncodeInt32(-64))
}

func TestEncodeOutputNeverExceedsMaxBytes(t *testing.T) {
	require.LessOrEqual(t, len(EncodeUint64(^uint64(0))), MaxBytes)
	require.LessOrEqual(t, len(EncodeInt64(int64(-1)<<62)), MaxBytes)
}
