package builder

import (
	"testing"

	"github.com/KoltIP/runtime/hostabi"
	"github.com/KoltIP/runtime/internal/wasm"
	"github.com/stretchr/testify/require"
)

func TestFunctionPointerTableGrowsInFixedChunks(t *testing.T) {
	host := hostabi.NewNativeHost(nil)
	ft := newFunctionPointerTable(host)

	idx, err := ft.AddWasmFunctionPointer("fn0")
	require.NoError(t, err)
	require.Equal(t, 0, idx)
	require.Equal(t, functionPointerTableGrowth, host.Length())

	for i := 1; i < functionPointerTableGrowth; i++ {
		idx, err = ft.AddWasmFunctionPointer("fnN")
		require.NoError(t, err)
		require.Equal(t, i, idx)
	}

	idx, err = ft.AddWasmFunctionPointer("overflow")
	require.NoError(t, err)
	require.Equal(t, functionPointerTableGrowth, idx)
	require.Equal(t, 2*functionPointerTableGrowth, host.Length())
}

func TestAddWasmFunctionPointerRejectsNil(t *testing.T) {
	host := hostabi.NewNativeHost(nil)
	ft := newFunctionPointerTable(host)
	_, err := ft.AddWasmFunctionPointer(nil)
	require.ErrorIs(t, err, wasm.ErrNullFunction)
}
