package reembed

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/newswire/ai/mock"
	"github.com/poiesic/newswire/core"
	"github.com/poiesic/newswire/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertWithoutEmbedding(t *testing.T, repo *memory.Repository, url, title string) *core.StoredItem {
	t.Helper()
	item := core.ContentItem{URL: url, Title: title, Summary: "A summary of " + title + "."}
	stored, err := repo.Insert(context.Background(), &item)
	require.NoError(t, err)
	return stored
}

func quickConfig() *Config {
	return &Config{BatchSize: 2, ReportInterval: 10, MaxRetries: 2, RetryDelay: time.Millisecond}
}

func TestReembedder_BackfillsAllMissingRows(t *testing.T) {
	repo := memory.NewRepository()
	insertWithoutEmbedding(t, repo, "https://example.com/a", "Budget vote")
	insertWithoutEmbedding(t, repo, "https://example.com/b", "Storm warning")
	insertWithoutEmbedding(t, repo, "https://example.com/c", "Port reopens")

	var out bytes.Buffer
	r, err := NewReembedder(repo, mock.NewMockEmbedder(), quickConfig(), &out)
	require.NoError(t, err)

	stats, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Updated)
	assert.Zero(t, stats.Failed)

	missing, err := repo.ListMissingEmbeddings(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.Contains(t, out.String(), "Updated 3 rows")
}

func TestReembedder_SkipsRowsWithEmbeddings(t *testing.T) {
	repo := memory.NewRepository()
	embedded := core.ContentItem{
		URL:       "https://example.com/a",
		Title:     "Budget vote",
		Embedding: mock.DeterministicVector("already embedded"),
	}
	_, err := repo.Insert(context.Background(), &embedded)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	var out bytes.Buffer
	r, err := NewReembedder(repo, embedder, quickConfig(), &out)
	require.NoError(t, err)

	stats, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Updated)
	assert.Zero(t, embedder.CallCount())
}

// A row that fails even after retries must be counted once, left NULL,
// and not block rows behind it in the listing order.
func TestReembedder_PermanentFailureCountedOnce(t *testing.T) {
	repo := memory.NewRepository()
	insertWithoutEmbedding(t, repo, "https://example.com/a", "Budget vote")
	broken := insertWithoutEmbedding(t, repo, "https://example.com/b", "Unembeddable")
	insertWithoutEmbedding(t, repo, "https://example.com/c", "Port reopens")

	attempts := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if strings.Contains(text, "Unembeddable") {
			attempts++
			return nil, errors.New("backend rejects this text")
		}
		return mock.DeterministicVector(text), nil
	}

	var out bytes.Buffer
	r, err := NewReembedder(repo, embedder, quickConfig(), &out)
	require.NoError(t, err)

	stats, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Updated)
	assert.Equal(t, 1, stats.Failed)
	// Retried within one backfill attempt, never across passes.
	assert.Equal(t, quickConfig().MaxRetries, attempts)

	missing, err := repo.ListMissingEmbeddings(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, broken.ID, missing[0].ID)
}

func TestReembedder_RetriesTransientFailures(t *testing.T) {
	repo := memory.NewRepository()
	insertWithoutEmbedding(t, repo, "https://example.com/a", "Budget vote")

	calls := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient")
		}
		return mock.DeterministicVector(text), nil
	}

	var out bytes.Buffer
	r, err := NewReembedder(repo, embedder, quickConfig(), &out)
	require.NoError(t, err)

	stats, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Updated)
	assert.Zero(t, stats.Failed)
	assert.Equal(t, 2, calls)
}

func TestNewReembedderValidation(t *testing.T) {
	var out bytes.Buffer
	_, err := NewReembedder(nil, mock.NewMockEmbedder(), nil, &out)
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	_, err = NewReembedder(memory.NewRepository(), nil, nil, &out)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}
