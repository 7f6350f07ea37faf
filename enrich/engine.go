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


package enrich

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/newswire/ai"
	"github.com/poiesic/newswire/core"
	"golang.org/x/time/rate"
)

// Defaults for quota pacing and the per-run enrichment cap.
const (
	DefaultGroupSize     = 10
	DefaultCoolDown      = 65 * time.Second
	DefaultItemDelay     = time.Second
	DefaultItemsPerCred  = 30
	fallbackExcerptRunes = 300
)

// Engine produces a summary and sentiment label per item by calling a
// generation backend. It never errors on a single item: backend failure
// or malformed output degrades to a best-effort or default annotation.
type Engine struct {
	generator ai.Generator
	groupSize int
	coolDown  time.Duration
	itemDelay time.Duration
	maxItems  int
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPacing overrides the quota pacing: a delay between every item and a
// longer cool-down after each group of groupSize items. The pacing is
// unconditional; it does not adapt to observed failures.
func WithPacing(groupSize int, coolDown, itemDelay time.Duration) Option {
	return func(e *Engine) {
		if groupSize > 0 {
			e.groupSize = groupSize
		}
		e.coolDown = coolDown
		e.itemDelay = itemDelay
	}
}

// WithRunCap bounds how many items are enriched per run. Callers scale
// this by the credential pool size to keep run duration and quota use
// predictable.
func WithRunCap(maxItems int) Option {
	return func(e *Engine) {
		if maxItems > 0 {
			e.maxItems = maxItems
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// NewEngine creates an enrichment engine around a generation backend.
func NewEngine(generator ai.Generator, opts ...Option) (*Engine, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	e := &Engine{
		generator: generator,
		groupSize: DefaultGroupSize,
		coolDown:  DefaultCoolDown,
		itemDelay: DefaultItemDelay,
		maxItems:  DefaultItemsPerCred,
		logger:    slog.Default().With("component", "enrich"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// EnrichItem annotates a single item's text. Empty source text returns
// the default annotation without touching the backend. All other failure
// modes degrade rather than error: exhausted credentials yield the
// default pair, malformed output is repaired or replaced with an excerpt.
func (e *Engine) EnrichItem(ctx context.Context, item *core.ContentItem) (string, core.Sentiment) {
	source := item.Text()
	if source == "" {
		return "", core.SentimentNeutral
	}

	response, err := e.generator.Generate(ctx, systemPrompt, "Text:\n"+truncate(source))
	if err != nil {
		e.logger.Error("generation failed, using default annotation", "url", item.URL, "err", err)
		return "", core.SentimentNeutral
	}

	parsed, ok := parseResponse(response)
	if !ok {
		e.logger.Warn("unparseable backend output, using excerpt", "url", item.URL)
		return excerpt(source, fallbackExcerptRunes), core.SentimentNeutral
	}

	summary := parsed.Summary
	// Guard against the model echoing nothing useful back.
	if len(summary) < 10 {
		summary = excerpt(source, fallbackExcerptRunes)
	}
	return summary, core.ParseSentiment(parsed.Sentiment)
}

// Enrich annotates up to the run cap of items in order, mutating their
// Summary and Sentiment fields, and returns the slice of items actually
// processed. Items beyond the cap are left untouched so they remain
// eligible next run.
func (e *Engine) Enrich(ctx context.Context, items []*core.ContentItem) []*core.ContentItem {
	if len(items) > e.maxItems {
		e.logger.Info("capping enrichment run", "items", len(items), "cap", e.maxItems)
		items = items[:e.maxItems]
	}

	limiter := rate.NewLimiter(rate.Every(e.itemDelay), 1)
	total := len(items)
	for i, item := range items {
		if err := limiter.Wait(ctx); err != nil {
			e.logger.Warn("pacing interrupted", "err", err)
			return items[:i]
		}

		e.logger.Info("enriching item", "n", i+1, "total", total, "source", item.Source)
		summary, sentiment := e.EnrichItem(ctx, item)
		item.Summary = summary
		item.Sentiment = sentiment

		// Cool down after every group to stay under backend rate limits,
		// regardless of whether the calls succeeded.
		if (i+1)%e.groupSize == 0 && i+1 < total {
			e.logger.Debug("cool-down pause", "after", i+1, "duration", e.coolDown)
			select {
			case <-time.After(e.coolDown):
			case <-ctx.Done():
				return items[:i+1]
			}
		}
	}
	return items
}
