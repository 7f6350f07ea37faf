package loader

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/poiesic/newswire/ai/mock"
	"github.com/poiesic/newswire/core"
	"github.com/poiesic/newswire/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func axisVector() []float32 {
	v := make([]float32, core.EmbeddingDim)
	v[0] = 1
	return v
}

// angledVector returns a unit vector whose cosine similarity with
// axisVector() is exactly c.
func angledVector(c float64) []float32 {
	v := make([]float32, core.EmbeddingDim)
	v[0] = float32(c)
	v[1] = float32(math.Sqrt(1 - c*c))
	return v
}

func item(url, title, summary string) core.ContentItem {
	return core.ContentItem{
		URL:       url,
		Title:     title,
		Summary:   summary,
		Sentiment: core.SentimentNeutral,
	}
}

func TestLoader_InsertsNewItems(t *testing.T) {
	repo := memory.NewRepository()
	l, err := NewLoader(repo, mock.NewMockEmbedder())
	require.NoError(t, err)

	results, err := l.Load(context.Background(), []core.ContentItem{
		item("https://example.com/a", "Budget approved", "The council approved the budget."),
		item("https://example.com/b", "Storm warning", "A storm is expected tonight."),
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, DecisionInserted, results[0].Decision)
	assert.Equal(t, DecisionInserted, results[1].Decision)

	rows := repo.Rows()
	require.Len(t, rows, 2)
	assert.Len(t, rows[0].Embedding, core.EmbeddingDim)
}

func TestLoader_SkipsExactURL(t *testing.T) {
	repo := memory.NewRepository()
	existing := item("https://example.com/a", "Old", "Old summary.")
	existing.Embedding = axisVector()
	_, err := repo.Insert(context.Background(), &existing)
	require.NoError(t, err)

	l, err := NewLoader(repo, mock.NewMockEmbedder())
	require.NoError(t, err)

	results, err := l.Load(context.Background(), []core.ContentItem{
		item("https://example.com/a", "New take", "Completely different text."),
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionSkippedExactURL, results[0].Decision)
	assert.Len(t, repo.Rows(), 1)
}

func TestLoader_RejectsSemanticNearDuplicate(t *testing.T) {
	repo := memory.NewRepository()
	existing := item("https://example.com/a", "Flood", "Flood waters rose.")
	existing.Embedding = axisVector()
	_, err := repo.Insert(context.Background(), &existing)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return axisVector(), nil
	}
	l, err := NewLoader(repo, embedder)
	require.NoError(t, err)

	results, err := l.Load(context.Background(), []core.ContentItem{
		item("https://example.com/b", "Flooding", "Waters rose in the flood."),
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionRejectedSimilar, results[0].Decision)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)
	assert.Len(t, repo.Rows(), 1)
}

func TestLoader_ThresholdBoundary(t *testing.T) {
	ctx := context.Background()

	run := func(similarity float64) Decision {
		repo := memory.NewRepository()
		existing := item("https://example.com/a", "Base", "Base summary.")
		existing.Embedding = axisVector()
		_, err := repo.Insert(ctx, &existing)
		require.NoError(t, err)

		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return angledVector(similarity), nil
		}
		l, err := NewLoader(repo, embedder)
		require.NoError(t, err)

		results, err := l.Load(ctx, []core.ContentItem{
			item("https://example.com/b", "Other", "Other summary."),
		})
		require.NoError(t, err)
		return results[0].Decision
	}

	assert.Equal(t, DecisionRejectedSimilar, run(0.86))
	assert.Equal(t, DecisionInserted, run(0.80))
}

func TestLoader_IgnoresMatchesOutsideWindow(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	existing := item("https://example.com/a", "Flood", "Flood waters rose.")
	existing.Embedding = axisVector()
	stored, err := repo.Insert(ctx, &existing)
	require.NoError(t, err)
	repo.SetInsertedAt(stored.ID, time.Now().Add(-49*time.Hour))

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return axisVector(), nil
	}
	l, err := NewLoader(repo, embedder)
	require.NoError(t, err)

	results, err := l.Load(ctx, []core.ContentItem{
		item("https://example.com/b", "Flooding", "Waters rose in the flood."),
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionInserted, results[0].Decision)
	assert.Len(t, repo.Rows(), 2)
}

func TestLoader_FailOpenOnSearchError(t *testing.T) {
	repo := memory.NewRepository()
	repo.SimilarityErr = errors.New("index offline")

	l, err := NewLoader(repo, mock.NewMockEmbedder())
	require.NoError(t, err)

	results, err := l.Load(context.Background(), []core.ContentItem{
		item("https://example.com/a", "Budget", "The budget passed."),
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionInserted, results[0].Decision)
	assert.Len(t, repo.Rows(), 1)
}

func TestLoader_FailClosedOnSearchError(t *testing.T) {
	repo := memory.NewRepository()
	repo.SimilarityErr = errors.New("index offline")

	l, err := NewLoader(repo, mock.NewMockEmbedder(), WithFailClosed())
	require.NoError(t, err)

	results, err := l.Load(context.Background(), []core.ContentItem{
		item("https://example.com/a", "Budget", "The budget passed."),
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionFailed, results[0].Decision)
	assert.False(t, results[0].Decided())
	assert.Empty(t, repo.Rows())
}

func TestLoader_EmbeddingFailureIsTransient(t *testing.T) {
	repo := memory.NewRepository()
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("backend unavailable")
	}
	l, err := NewLoader(repo, embedder)
	require.NoError(t, err)

	results, err := l.Load(context.Background(), []core.ContentItem{
		item("https://example.com/a", "Budget", "The budget passed."),
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionFailed, results[0].Decision)
	assert.Error(t, results[0].Err)
	assert.Empty(t, repo.Rows())
}

func TestLoader_RerunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	l, err := NewLoader(repo, mock.NewMockEmbedder())
	require.NoError(t, err)

	batch := []core.ContentItem{
		item("https://example.com/a", "Budget approved", "The council approved the budget."),
		item("https://example.com/b", "Storm warning", "A storm is expected tonight."),
	}

	first, err := l.Load(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, DecisionInserted, first[0].Decision)
	assert.Equal(t, DecisionInserted, first[1].Decision)

	second, err := l.Load(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, DecisionSkippedExactURL, second[0].Decision)
	assert.Equal(t, DecisionSkippedExactURL, second[1].Decision)
	assert.Len(t, repo.Rows(), 2)
}

func TestNewLoaderValidation(t *testing.T) {
	_, err := NewLoader(nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	_, err = NewLoader(memory.NewRepository(), nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}
