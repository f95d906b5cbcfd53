package options

import (
	"testing"

	"github.com/KoltIP/runtime/hostabi"
	"github.com/stretchr/testify/require"
)

func TestApplyOptionsAndGetOptionsRoundTrip(t *testing.T) {
	host := hostabi.NewNativeHost(nil)
	l := NewLayer(host, nil)

	err := l.ApplyOptions(Partial{
		EnableTraces:       true,
		UseConstants:       false,
		MinimumTraceLength: 8.0,
	})
	require.NoError(t, err)

	table, err := l.GetOptions()
	require.NoError(t, err)
	require.True(t, table.Bool(EnableTraces))
	require.False(t, table.Bool(UseConstants))
	require.Equal(t, 8.0, table.Num(MinimumTraceLength))
}

func TestGetOptionsCachesUntilVersionAdvances(t *testing.T) {
	host := hostabi.NewNativeHost(nil)
	l := NewLayer(host, nil)

	require.NoError(t, l.ApplyOptions(Partial{EnableJitCall: true}))
	first, err := l.GetOptions()
	require.NoError(t, err)
	require.True(t, first.Bool(EnableJitCall))

	// A second fetch with no intervening ApplyOptions call must return the
	// cached table without error.
	second, err := l.GetOptions()
	require.NoError(t, err)
	require.Equal(t, first, second)

	require.NoError(t, l.ApplyOptions(Partial{EnableJitCall: false}))
	third, err := l.GetOptions()
	require.NoError(t, err)
	require.False(t, third.Bool(EnableJitCall))
}

func TestUnrecognisedKeyIsSkippedNotFatal(t *testing.T) {
	host := hostabi.NewNativeHost(nil)
	l := NewLayer(host, nil)
	err := l.ApplyOptions(Partial{Key(9999): true})
	require.NoError(t, err)
}
