package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/newswire/core"
	"github.com/poiesic/newswire/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitVector() []float32 {
	v := make([]float32, core.EmbeddingDim)
	v[0] = 1
	return v
}

func TestRepository_InsertAndHasURL(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	item := core.ContentItem{URL: "https://example.com/a", Title: "A"}
	stored, err := repo.Insert(ctx, &item)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.ID)
	assert.False(t, stored.InsertedAt.IsZero())

	exists, err := repo.HasURL(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.Insert(ctx, &core.ContentItem{URL: "https://example.com/a"})
	assert.ErrorIs(t, err, storage.ErrDuplicateURL)
}

func TestRepository_NearestSimilarityRespectsWindow(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	item := core.ContentItem{URL: "https://example.com/a", Embedding: unitVector()}
	stored, err := repo.Insert(ctx, &item)
	require.NoError(t, err)

	sim, found, err := repo.NearestSimilarity(ctx, unitVector(), 48*time.Hour)
	require.NoError(t, err)
	assert.True(t, found)
	assert.InDelta(t, 1.0, sim, 1e-6)

	repo.SetInsertedAt(stored.ID, time.Now().Add(-49*time.Hour))
	_, found, err = repo.NearestSimilarity(ctx, unitVector(), 48*time.Hour)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRepository_TransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	err := repo.WithTransaction(ctx, func(txCtx context.Context) error {
		_, err := repo.Insert(txCtx, &core.ContentItem{URL: "https://example.com/a"})
		require.NoError(t, err)
		return errors.New("abort")
	})
	require.Error(t, err)

	exists, err := repo.HasURL(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_UpdateEmbedding(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	stored, err := repo.Insert(ctx, &core.ContentItem{URL: "https://example.com/a"})
	require.NoError(t, err)

	missing, err := repo.ListMissingEmbeddings(ctx, 10)
	require.NoError(t, err)
	require.Len(t, missing, 1)

	require.NoError(t, repo.UpdateEmbedding(ctx, stored.ID, unitVector()))
	missing, err = repo.ListMissingEmbeddings(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, missing)

	err = repo.UpdateEmbedding(ctx, 999, unitVector())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
