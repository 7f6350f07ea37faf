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


package dedupe

import (
	"log/slog"

	"github.com/poiesic/newswire/core"
)

// DefaultThreshold is the cosine similarity at or above which two items
// are treated as lexical near-duplicates.
const DefaultThreshold = 0.85

// Filter removes within-batch lexical near-duplicates before the more
// expensive enrichment and semantic stages run.
type Filter struct {
	threshold float64
	logger    *slog.Logger
}

// Option configures a Filter.
type Option func(*Filter)

// WithThreshold overrides the similarity threshold.
func WithThreshold(threshold float64) Option {
	return func(f *Filter) {
		f.threshold = threshold
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filter) {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
	}
}

// NewFilter creates a lexical near-duplicate filter.
func NewFilter(opts ...Option) *Filter {
	f := &Filter{
		threshold: DefaultThreshold,
		logger:    slog.Default().With("component", "dedupe"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Apply returns the items that survive lexical deduplication, in their
// original order. An item is dropped when its signature's cosine
// similarity to an earlier-kept item meets the threshold; the
// earliest-listed item always wins.
//
// Degenerate input (one item, or signatures with no usable terms) is
// returned unfiltered rather than treated as an error.
func (f *Filter) Apply(items []*core.ContentItem) []*core.ContentItem {
	if len(items) <= 1 {
		return items
	}

	docs := make([]string, len(items))
	for i, item := range items {
		docs[i] = item.Signature()
	}

	vectors, ok := vectorize(docs)
	if !ok {
		f.logger.Warn("degenerate batch text, skipping lexical dedup", "items", len(items))
		return items
	}
	matrix := similarityMatrix(vectors)

	kept := make([]*core.ContentItem, 0, len(items))
	removed := make(map[int]bool)
	for i := range items {
		if removed[i] {
			continue
		}
		kept = append(kept, items[i])
		for j := i + 1; j < len(items); j++ {
			if matrix[i][j] >= f.threshold {
				removed[j] = true
			}
		}
	}

	if len(removed) > 0 {
		f.logger.Info("lexical dedup removed items", "removed", len(removed), "kept", len(kept))
	}
	return kept
}
