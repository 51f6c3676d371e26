package vectorstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "vectors.db")
	s, err := Open(dbPath, NewNaiveEmbedder(64))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertAndQueryReturnsNearestDocument(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	docs := []Document{
		{ID: "a", Content: "walk the dog in the park", Metadata: map[string]string{"file_path": "a.go"}},
		{ID: "b", Content: "compile the go program with the compiler", Metadata: map[string]string{"file_path": "b.go"}},
	}
	require.NoError(t, s.Upsert(ctx, "demo", docs))

	results, err := s.Query(ctx, "demo", "compile the program", 2)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "b", results[0].ID)
	assert.Equal(t, "b.go", results[0].Metadata["file_path"])
}

func TestUpsertReplacesExistingDocument(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "demo", []Document{
		{ID: "a", Content: "original content", Metadata: map[string]string{"v": "1"}},
	}))
	require.NoError(t, s.Upsert(ctx, "demo", []Document{
		{ID: "a", Content: "updated content", Metadata: map[string]string{"v": "2"}},
	}))

	results, err := s.Query(ctx, "demo", "updated content", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "updated content", results[0].Document)
	assert.Equal(t, "2", results[0].Metadata["v"])
}

func TestDeleteIDsRemovesDocuments(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "demo", []Document{
		{ID: "a", Content: "alpha"},
		{ID: "b", Content: "beta"},
	}))

	require.NoError(t, s.DeleteIDs(ctx, "demo", []string{"a"}))

	results, err := s.Query(ctx, "demo", "alpha beta", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].ID)
}

func TestDeleteWhereMatchesMetadataEquality(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "demo", []Document{
		{ID: "a1", Content: "chunk one", Metadata: map[string]string{"file_path": "a.go"}},
		{ID: "a2", Content: "chunk two", Metadata: map[string]string{"file_path": "a.go"}},
		{ID: "b1", Content: "chunk three", Metadata: map[string]string{"file_path": "b.go"}},
	}))

	require.NoError(t, s.DeleteWhere(ctx, "demo", map[string]string{"file_path": "a.go"}))

	results, err := s.Query(ctx, "demo", "chunk", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b1", results[0].ID)
}

func TestQueryUnknownCollectionReturnsEmpty(t *testing.T) {
	s := openTestStore(t)
	results, err := s.Query(context.Background(), "nonexistent", "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDeleteCollectionDropsTables(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "demo", []Document{{ID: "a", Content: "alpha"}}))
	require.NoError(t, s.DeleteCollection(ctx, "demo"))

	results, err := s.Query(ctx, "demo", "alpha", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
