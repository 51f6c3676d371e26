package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNaiveEmbedderIsDeterministic(t *testing.T) {
	e := NewNaiveEmbedder(32)
	ctx := context.Background()

	v1, err := e.Embed(ctx, "hello world")
	require.NoError(t, err)
	v2, err := e.Embed(ctx, "hello world")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Len(t, v1, 32)
}

func TestNaiveEmbedderEmptyTextIsZeroVector(t *testing.T) {
	e := NewNaiveEmbedder(16)
	v, err := e.Embed(context.Background(), "")
	require.NoError(t, err)
	for _, x := range v {
		assert.Equal(t, float32(0), x)
	}
}

func TestNaiveEmbedderBatchMatchesIndividual(t *testing.T) {
	e := NewNaiveEmbedder(16)
	ctx := context.Background()

	batch, err := e.EmbedBatch(ctx, []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, batch, 2)

	single, err := e.Embed(ctx, "two")
	require.NoError(t, err)
	assert.Equal(t, single, batch[1])
}
