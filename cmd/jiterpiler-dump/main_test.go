package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/KoltIP/runtime/internal/wasm"
	"github.com/stretchr/testify/require"
)

func TestDoMainWritesModuleToStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := doMain(nil, &stdout, &stderr)
	require.Equal(t, 0, code)
	require.Equal(t, wasm.Magic, stdout.Bytes()[:4])
}

func TestDoMainWritesModuleToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.wasm")

	var stdout, stderr bytes.Buffer
	code := doMain([]string{"-o", path}, &stdout, &stderr)
	require.Equal(t, 0, code)
	require.Empty(t, stdout.Bytes())
	require.Contains(t, stderr.String(), "wrote")
}

func TestBuildDemoModuleIsWellFormedEnoughToEmit(t *testing.T) {
	mod, err := buildDemoModule(true)
	require.NoError(t, err)
	require.Equal(t, wasm.Magic, mod[:4])
	require.Equal(t, wasm.Version, mod[4:8])
}
