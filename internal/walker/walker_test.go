package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func relPaths(result *Result) []string {
	out := make([]string, 0, len(result.Files))
	for _, f := range result.Files {
		out = append(out, f.RelPath)
	}
	return out
}

func TestWalkSkipsIgnoredDirectoriesAndHiddenFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "node_modules/pkg/index.js", "module.exports = {}\n")
	writeFile(t, root, ".hidden", "secret\n")
	writeFile(t, root, ".git/HEAD", "ref: refs/heads/main\n")

	result, err := Walk(root, Options{TokenTarget: 500, ChunkThreshold: 200, MaxFileSizeBytes: 1 << 20})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"main.go"}, relPaths(result))
}

func TestWalkRespectsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "*.log\nbuild_output/\n")
	writeFile(t, root, "app.go", "package app\n")
	writeFile(t, root, "debug.log", "trace\n")
	writeFile(t, root, "build_output/artifact.txt", "binary-ish\n")

	result, err := Walk(root, Options{TokenTarget: 500, ChunkThreshold: 200, MaxFileSizeBytes: 1 << 20})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"app.go"}, relPaths(result))
}

func TestWalkSkipsBinaryAndRecordsReason(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "ok.go", "package ok\n")
	binPath := filepath.Join(root, "image.bin")
	require.NoError(t, os.WriteFile(binPath, []byte{0x89, 'P', 'N', 'G', 0x00, 0x01}, 0o644))

	result, err := Walk(root, Options{TokenTarget: 500, ChunkThreshold: 200, MaxFileSizeBytes: 1 << 20})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"ok.go"}, relPaths(result))
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "image.bin", result.Skipped[0].RelPath)
	assert.Equal(t, "binary", result.Skipped[0].Reason)
}

func TestWalkSkipsOversizedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.txt", string(make([]byte, 100)))

	result, err := Walk(root, Options{TokenTarget: 500, ChunkThreshold: 200, MaxFileSizeBytes: 10})
	require.NoError(t, err)

	assert.Empty(t, result.Files)
	require.Len(t, result.Skipped, 1)
	assert.Contains(t, result.Skipped[0].Reason, "too large")
}

func TestIsBinaryFileEmptyFileIsText(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "empty.unknownext")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	binary, err := IsBinaryFile(path)
	require.NoError(t, err)
	assert.False(t, binary)
}

func TestEstimateChunks(t *testing.T) {
	assert.Equal(t, 1, EstimateChunks(10, 500))
	assert.Equal(t, 2, EstimateChunks(4000, 500))
}
