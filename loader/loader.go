// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package loader

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/newswire/ai"
	"github.com/poiesic/newswire/core"
	"github.com/poiesic/newswire/storage"
)

const (
	// DefaultSimilarityThreshold rejects an item whose best match within
	// the window reaches this cosine similarity.
	DefaultSimilarityThreshold = 0.85

	// DefaultWindow is the trailing period searched for semantic matches.
	DefaultWindow = 48 * time.Hour
)

// Decision is the final outcome the loader reached for an item.
type Decision int

const (
	// DecisionInserted means the item became a new row.
	DecisionInserted Decision = iota
	// DecisionSkippedExactURL means a row with the same URL already exists.
	DecisionSkippedExactURL
	// DecisionRejectedSimilar means a recent row was semantically too close.
	DecisionRejectedSimilar
	// DecisionFailed means a transient error stopped the item; it may be
	// retried on a later run.
	DecisionFailed
)

// ItemResult pairs an item with the loader's decision for it.
type ItemResult struct {
	Item     core.ContentItem
	Decision Decision
	// Similarity is the best match score when DecisionRejectedSimilar.
	Similarity float64
	// Err is set when DecisionFailed.
	Err error
}

// Decided reports whether the item received a final store decision.
func (r ItemResult) Decided() bool {
	return r.Decision != DecisionFailed
}

// Loader writes enriched items to the news store, skipping exact URL
// duplicates and rejecting semantic near-duplicates from the recent window.
type Loader struct {
	repo       storage.NewsRepository
	embedder   ai.Embedder
	threshold  float64
	window     time.Duration
	failClosed bool
	logger     *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithSimilarityThreshold overrides the rejection threshold.
func WithSimilarityThreshold(threshold float64) Option {
	return func(l *Loader) { l.threshold = threshold }
}

// WithWindow overrides the trailing search window.
func WithWindow(window time.Duration) Option {
	return func(l *Loader) {
		if window > 0 {
			l.window = window
		}
	}
}

// WithFailClosed makes similarity-search errors block insertion instead
// of letting the item through.
func WithFailClosed() Option {
	return func(l *Loader) { l.failClosed = true }
}

// WithLogger sets the logger used by the loader.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a Loader over the given repository and embedder.
func NewLoader(repo storage.NewsRepository, embedder ai.Embedder, opts ...Option) (*Loader, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	l := &Loader{
		repo:      repo,
		embedder:  embedder,
		threshold: DefaultSimilarityThreshold,
		window:    DefaultWindow,
		logger:    slog.Default().With("component", "loader"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Load processes the batch inside a single transaction and returns one
// result per item, in input order. Item-level failures do not abort the
// batch; only context cancellation does.
func (l *Loader) Load(ctx context.Context, items []core.ContentItem) ([]ItemResult, error) {
	results := make([]ItemResult, 0, len(items))

	err := l.repo.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, item := range items {
			if err := txCtx.Err(); err != nil {
				return err
			}
			results = append(results, l.loadOne(txCtx, item))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var inserted, skipped, rejected, failed int
	for _, r := range results {
		switch r.Decision {
		case DecisionInserted:
			inserted++
		case DecisionSkippedExactURL:
			skipped++
		case DecisionRejectedSimilar:
			rejected++
		case DecisionFailed:
			failed++
		}
	}
	l.logger.Info("batch loaded",
		"total", len(items),
		"inserted", inserted,
		"skipped_exact", skipped,
		"rejected_similar", rejected,
		"failed", failed)
	return results, nil
}

func (l *Loader) loadOne(ctx context.Context, item core.ContentItem) ItemResult {
	exists, err := l.repo.HasURL(ctx, item.URL)
	if err != nil {
		l.logger.Error("url check failed", "url", item.URL, "error", err)
		return ItemResult{Item: item, Decision: DecisionFailed, Err: err}
	}
	if exists {
		l.logger.Debug("skipping existing url", "url", item.URL)
		return ItemResult{Item: item, Decision: DecisionSkippedExactURL}
	}

	vector, err := l.embedder.EmbedText(ctx, item.EmbeddingText())
	if err != nil {
		l.logger.Error("embedding failed", "url", item.URL, "error", err)
		return ItemResult{Item: item, Decision: DecisionFailed, Err: err}
	}

	similarity, found, err := l.repo.NearestSimilarity(ctx, vector, l.window)
	if err != nil {
		if l.failClosed {
			l.logger.Error("similarity search failed, blocking insert",
				"url", item.URL, "error", err)
			return ItemResult{Item: item, Decision: DecisionFailed, Err: err}
		}
		l.logger.Warn("similarity search failed, inserting anyway",
			"url", item.URL, "error", err)
		found = false
	}
	if found && similarity >= l.threshold {
		l.logger.Info("rejecting semantic near-duplicate",
			"url", item.URL, "similarity", similarity)
		return ItemResult{Item: item, Decision: DecisionRejectedSimilar, Similarity: similarity}
	}

	item.Embedding = vector
	if _, err := l.repo.Insert(ctx, &item); err != nil {
		if errors.Is(err, storage.ErrDuplicateURL) {
			return ItemResult{Item: item, Decision: DecisionSkippedExactURL}
		}
		l.logger.Error("insert failed", "url", item.URL, "error", err)
		return ItemResult{Item: item, Decision: DecisionFailed, Err: err}
	}
	return ItemResult{Item: item, Decision: DecisionInserted}
}
