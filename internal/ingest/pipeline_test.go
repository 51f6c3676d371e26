package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkazen/meridian/internal/metastore"
	"github.com/dkazen/meridian/internal/vectorstore"
)

func testOptions() Options {
	return Options{
		TokenTarget:      200,
		OverlapTokens:    20,
		ChunkThreshold:   500,
		MaxFileSizeBytes: 10 * 1024 * 1024,
	}
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	dir := t.TempDir()

	meta, err := metastore.Open(filepath.Join(dir, "meta.db"))
	require.NoError(t, err)
	t.Cleanup(func() { meta.Close() })

	vec, err := vectorstore.Open(filepath.Join(dir, "vectors.db"), vectorstore.NewNaiveEmbedder(32))
	require.NoError(t, err)
	t.Cleanup(func() { vec.Close() })

	return &Pipeline{Meta: meta, Vector: vec}
}

func writeRepoFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestIngestRepoIndexesAndRecordsFiles(t *testing.T) {
	p := newTestPipeline(t)
	repoRoot := t.TempDir()

	writeRepoFiles(t, repoRoot, map[string]string{
		"main.go":    "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n",
		"lib/lib.go": "package lib\n\nfunc Helper() string {\n\treturn \"ok\"\n}\n",
	})

	summary, err := p.IngestRepo(context.Background(), repoRoot, "demo", false, testOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Added)
	assert.Zero(t, summary.Modified)
	assert.Zero(t, summary.Deleted)
	assert.Greater(t, summary.Chunks, 0)

	repo, err := p.Meta.GetRepositoryByName("demo")
	require.NoError(t, err)
	require.NotNil(t, repo)
	require.NotNil(t, repo.IngestedAt)

	files, err := p.Meta.ListFiles(repo.ID)
	require.NoError(t, err)
	assert.Len(t, files, 2)

	results, err := p.Vector.Query(context.Background(), repo.CollectionName, "helper function", 5)
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestIngestRepoSkipsUnchangedOnSecondRun(t *testing.T) {
	p := newTestPipeline(t)
	repoRoot := t.TempDir()
	writeRepoFiles(t, repoRoot, map[string]string{"main.go": "package main\n\nfunc main() {}\n"})

	_, err := p.IngestRepo(context.Background(), repoRoot, "demo", false, testOptions(), nil)
	require.NoError(t, err)

	summary, err := p.IngestRepo(context.Background(), repoRoot, "demo", false, testOptions(), nil)
	require.NoError(t, err)
	assert.False(t, summary.Added+summary.Modified+summary.Deleted > 0)
}

func TestIngestRepoDetectsModifiedFile(t *testing.T) {
	p := newTestPipeline(t)
	repoRoot := t.TempDir()
	writeRepoFiles(t, repoRoot, map[string]string{"main.go": "package main\n\nfunc main() {}\n"})

	_, err := p.IngestRepo(context.Background(), repoRoot, "demo", false, testOptions(), nil)
	require.NoError(t, err)

	writeRepoFiles(t, repoRoot, map[string]string{"main.go": "package main\n\nfunc main() {\n\tprintln(1)\n}\n"})

	summary, err := p.IngestRepo(context.Background(), repoRoot, "demo", false, testOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Modified)
	assert.Zero(t, summary.Added)
}

func TestIngestRepoDetectsDeletedFile(t *testing.T) {
	p := newTestPipeline(t)
	repoRoot := t.TempDir()
	writeRepoFiles(t, repoRoot, map[string]string{
		"main.go":  "package main\n\nfunc main() {}\n",
		"extra.go": "package main\n\nfunc extra() {}\n",
	})

	_, err := p.IngestRepo(context.Background(), repoRoot, "demo", false, testOptions(), nil)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(repoRoot, "extra.go")))

	summary, err := p.IngestRepo(context.Background(), repoRoot, "demo", false, testOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Deleted)

	repo, err := p.Meta.GetRepositoryByName("demo")
	require.NoError(t, err)
	files, err := p.Meta.ListFiles(repo.ID)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestIngestRepoForceReindexesEverything(t *testing.T) {
	p := newTestPipeline(t)
	repoRoot := t.TempDir()
	writeRepoFiles(t, repoRoot, map[string]string{"main.go": "package main\n\nfunc main() {}\n"})

	_, err := p.IngestRepo(context.Background(), repoRoot, "demo", false, testOptions(), nil)
	require.NoError(t, err)

	summary, err := p.IngestRepo(context.Background(), repoRoot, "demo", true, testOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Added)
}

func TestIngestFilesForcesSpecificFiles(t *testing.T) {
	p := newTestPipeline(t)
	repoRoot := t.TempDir()
	writeRepoFiles(t, repoRoot, map[string]string{"main.go": "package main\n\nfunc main() {}\n"})

	_, err := p.IngestRepo(context.Background(), repoRoot, "demo", false, testOptions(), nil)
	require.NoError(t, err)

	summary, err := p.IngestFiles(context.Background(), "demo", []string{filepath.Join(repoRoot, "main.go")}, testOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Added)
	assert.Greater(t, summary.Chunks, 0)
}

func TestIngestFilesUnknownRepositoryErrors(t *testing.T) {
	p := newTestPipeline(t)
	_, err := p.IngestFiles(context.Background(), "nope", []string{"a.go"}, testOptions())
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "my-repo", slugify("My Repo"))
	assert.Equal(t, "a-b", slugify("a/b"))
	assert.Equal(t, "ab_", slugify("ab"))
	long := ""
	for i := 0; i < 100; i++ {
		long += "x"
	}
	assert.Len(t, slugify(long), 63)
}
