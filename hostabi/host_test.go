package hostabi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeLEBWritesExpectedBytes(t *testing.T) {
	h := NewNativeHost(nil)
	dest := make([]byte, 8)
	n, err := h.EncodeLEB(dest, 624485, false)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []byte{0xe5, 0x8e, 0x26}, dest[:n])
}

func TestEncodeLEBFailsWhenDestTooSmall(t *testing.T) {
	h := NewNativeHost(nil)
	dest := make([]byte, 4)
	_, err := h.EncodeLEB(dest, 1, false)
	require.ErrorIs(t, err, ErrEncoderFailure)
}

func TestEncodeSignedBoundary(t *testing.T) {
	h := NewNativeHost(nil)
	dest := make([]byte, 8)
	n, err := h.EncodeSignedBoundary(dest, 32, -1)
	require.NoError(t, err)
	require.Greater(t, n, 0)
}

func TestMemberOffsetUnknown(t *testing.T) {
	h := NewNativeHost(map[string]int{"foo": 4})
	off, err := h.GetMemberOffset("foo")
	require.NoError(t, err)
	require.Equal(t, 4, off)

	_, err = h.GetMemberOffset("bar")
	require.ErrorIs(t, err, ErrUnknownMember)
}

func TestFunctionTableGrowAndSet(t *testing.T) {
	h := NewNativeHost(nil)
	require.Equal(t, 0, h.Length())
	h.Grow(4)
	require.Equal(t, 4, h.Length())
	h.Set(0, "fn")
}

func TestParseOptionBumpsVersion(t *testing.T) {
	h := NewNativeHost(nil)
	v0 := h.OptionsVersion()
	require.NoError(t, h.ParseOption("--jiterpreter-traces-enabled"))
	require.Greater(t, h.OptionsVersion(), v0)
	js, err := h.OptionsJSON()
	require.NoError(t, err)
	require.Contains(t, js, "jiterpreter-traces-enabled")
}
