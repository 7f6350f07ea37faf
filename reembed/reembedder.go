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


package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/newswire/ai"
	"github.com/poiesic/newswire/core"
	"github.com/poiesic/newswire/storage"
)

// Config holds configuration for the backfill operation.
type Config struct {
	// BatchSize is the number of rows fetched from the store per pass.
	BatchSize int

	// ReportInterval is how often to report progress (number of rows).
	ReportInterval int

	// MaxRetries is the maximum number of attempts per embedding call.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Stats summarizes a backfill run.
type Stats struct {
	Updated int
	Failed  int
}

// Reembedder backfills embeddings for stored rows whose vector is missing,
// typically after an embedding model change left NULL columns behind.
type Reembedder struct {
	repo     storage.NewsRepository
	embedder ai.Embedder
	config   *Config
	progress io.Writer
}

// NewReembedder creates a backfiller.
// progress: where to write progress output (typically os.Stderr).
func NewReembedder(repo storage.NewsRepository, embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	return &Reembedder{
		repo:     repo,
		embedder: embedder,
		config:   config,
		progress: progress,
	}, nil
}

// Run embeds every row with a NULL vector until none remain. Rows whose
// embedding fails even after retries stay NULL, are counted once in
// Stats.Failed, and are not attempted again within this run.
func (r *Reembedder) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	tracker := NewProgressTracker(r.progress, r.config.ReportInterval)
	tracker.Start()

	failed := make(map[int64]bool)
	for {
		// Failed rows are still listed by the store, so widen the fetch
		// to keep making progress past them.
		items, err := r.repo.ListMissingEmbeddings(ctx, r.config.BatchSize+len(failed))
		if err != nil {
			return stats, fmt.Errorf("listing rows without embeddings: %w", err)
		}

		pending := items[:0]
		for _, item := range items {
			if !failed[item.ID] {
				pending = append(pending, item)
			}
		}
		if len(pending) == 0 {
			break
		}

		for _, item := range pending {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			if err := r.backfillOne(ctx, item); err != nil {
				fmt.Fprintf(r.progress, "row %d failed: %v\n", item.ID, err)
				failed[item.ID] = true
				stats.Failed++
				continue
			}
			stats.Updated++
			tracker.Increment(1)
		}
	}

	tracker.Finish()
	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Backfill complete. Updated %d rows, %d failed, in %v\n",
		stats.Updated, stats.Failed, elapsed.Round(time.Second))
	return stats, nil
}

func (r *Reembedder) backfillOne(ctx context.Context, item *core.StoredItem) error {
	var vector []float32
	err := RetryWithBackoff(ctx, func() error {
		v, err := r.embedder.EmbedText(ctx, item.EmbeddingText())
		if err != nil {
			return err
		}
		if len(v) != core.EmbeddingDim {
			return fmt.Errorf("embedding has %d dimensions, want %d", len(v), core.EmbeddingDim)
		}
		vector = v
		return nil
	}, r.config.MaxRetries, r.config.RetryDelay)
	if err != nil {
		return err
	}
	return r.repo.UpdateEmbedding(ctx, item.ID, vector)
}
