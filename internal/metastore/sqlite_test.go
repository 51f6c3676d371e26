package metastore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "meta.db")
	s, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetRepository(t *testing.T) {
	s := openTestStore(t)

	id, err := s.CreateRepository("demo", "/repos/demo", "demo_chunks")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	byName, err := s.GetRepositoryByName("demo")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, id, byName.ID)
	assert.Nil(t, byName.IngestedAt)

	byPath, err := s.GetRepositoryByPath("/repos/demo")
	require.NoError(t, err)
	require.NotNil(t, byPath)
	assert.Equal(t, id, byPath.ID)

	missing, err := s.GetRepositoryByName("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListRepositoriesOrderedByName(t *testing.T) {
	s := openTestStore(t)

	_, err := s.CreateRepository("zeta", "/z", "zeta_chunks")
	require.NoError(t, err)
	_, err = s.CreateRepository("alpha", "/a", "alpha_chunks")
	require.NoError(t, err)

	repos, err := s.ListRepositories()
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, "alpha", repos[0].Name)
	assert.Equal(t, "zeta", repos[1].Name)
}

func TestUpdateRepositoryIngestedAt(t *testing.T) {
	s := openTestStore(t)
	id, err := s.CreateRepository("demo", "/repos/demo", "demo_chunks")
	require.NoError(t, err)

	require.NoError(t, s.UpdateRepositoryIngestedAt(id))

	r, err := s.GetRepositoryByName("demo")
	require.NoError(t, err)
	require.NotNil(t, r.IngestedAt)
}

func TestDeleteRepositoryCascadesFilesAndMerkleNodes(t *testing.T) {
	s := openTestStore(t)
	id, err := s.CreateRepository("demo", "/repos/demo", "demo_chunks")
	require.NoError(t, err)

	require.NoError(t, s.UpsertFile(File{RepositoryID: id, FilePath: "a.go", ContentHash: "h1", SizeBytes: 10}))
	require.NoError(t, s.BatchUpsertMerkleNodes(id, []MerkleNode{{NodePath: "a.go", NodeHash: "h1"}}))

	require.NoError(t, s.DeleteRepository(id))

	files, err := s.ListFiles(id)
	require.NoError(t, err)
	assert.Empty(t, files)

	nodes, err := s.GetMerkleNodes(id)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestUpsertFileInsertsThenUpdates(t *testing.T) {
	s := openTestStore(t)
	id, err := s.CreateRepository("demo", "/repos/demo", "demo_chunks")
	require.NoError(t, err)

	require.NoError(t, s.UpsertFile(File{
		RepositoryID: id, FilePath: "a.go", ContentHash: "h1", SizeBytes: 10, Language: "go", ChunkCount: 2,
	}))

	f, err := s.GetFile(id, "a.go")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "h1", f.ContentHash)
	assert.Equal(t, 2, f.ChunkCount)
	assert.False(t, f.Skipped)

	require.NoError(t, s.UpsertFile(File{
		RepositoryID: id, FilePath: "a.go", ContentHash: "h2", SizeBytes: 20, Language: "go", ChunkCount: 3,
	}))

	f, err = s.GetFile(id, "a.go")
	require.NoError(t, err)
	assert.Equal(t, "h2", f.ContentHash)
	assert.Equal(t, 3, f.ChunkCount)

	count, err := s.GetFileCount(id)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUpsertFileMarksSkipped(t *testing.T) {
	s := openTestStore(t)
	id, err := s.CreateRepository("demo", "/repos/demo", "demo_chunks")
	require.NoError(t, err)

	require.NoError(t, s.UpsertFile(File{RepositoryID: id, FilePath: "big.bin", Skipped: true}))

	f, err := s.GetFile(id, "big.bin")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.True(t, f.Skipped)
}

func TestDeleteFilesByPaths(t *testing.T) {
	s := openTestStore(t)
	id, err := s.CreateRepository("demo", "/repos/demo", "demo_chunks")
	require.NoError(t, err)

	require.NoError(t, s.UpsertFile(File{RepositoryID: id, FilePath: "a.go", ContentHash: "h1"}))
	require.NoError(t, s.UpsertFile(File{RepositoryID: id, FilePath: "b.go", ContentHash: "h2"}))

	deleted, err := s.DeleteFilesByPaths(id, []string{"a.go"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	files, err := s.ListFiles(id)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "b.go", files[0].FilePath)
}

func TestMerkleNodeUpsertAndDelete(t *testing.T) {
	s := openTestStore(t)
	id, err := s.CreateRepository("demo", "/repos/demo", "demo_chunks")
	require.NoError(t, err)

	require.NoError(t, s.BatchUpsertMerkleNodes(id, []MerkleNode{
		{NodePath: ".", NodeHash: "root1", IsDirectory: true},
		{NodePath: "a.go", NodeHash: "h1"},
	}))

	nodes, err := s.GetMerkleNodes(id)
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	require.NoError(t, s.BatchUpsertMerkleNodes(id, []MerkleNode{
		{NodePath: ".", NodeHash: "root2", IsDirectory: true},
	}))

	nodes, err = s.GetMerkleNodes(id)
	require.NoError(t, err)
	for _, n := range nodes {
		if n.NodePath == "." {
			assert.Equal(t, "root2", n.NodeHash)
		}
	}

	deleted, err := s.DeleteMerkleNodesByPaths(id, []string{"a.go"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	require.NoError(t, s.ClearMerkleTree(id))
	nodes, err = s.GetMerkleNodes(id)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}
