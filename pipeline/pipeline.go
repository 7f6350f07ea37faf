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


package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/newswire/collect"
	"github.com/poiesic/newswire/core"
	"github.com/poiesic/newswire/dedupe"
	"github.com/poiesic/newswire/enrich"
	"github.com/poiesic/newswire/ledger"
	"github.com/poiesic/newswire/loader"
	"github.com/poiesic/newswire/objectstore"
)

// DefaultRawRoot is the object-store prefix holding raw scraper batches.
const DefaultRawRoot = "raw"

// Pipeline runs one incremental pass for a namespace: collect the newest
// raw batches, drop lexical near-duplicates, enrich, archive the
// processed batch, load into the news store, then persist the ledger.
type Pipeline struct {
	store     objectstore.Store
	ledger    *ledger.Ledger
	collector *collect.Collector
	filter    *dedupe.Filter
	engine    *enrich.Engine
	loader    *loader.Loader
	rawRoot   string
	clock     func() time.Time
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRawRoot overrides the raw batch prefix.
func WithRawRoot(root string) Option {
	return func(p *Pipeline) {
		if root != "" {
			p.rawRoot = root
		}
	}
}

// WithClock overrides the clock used for processed batch keys.
func WithClock(clock func() time.Time) Option {
	return func(p *Pipeline) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
	}
}

// NewPipeline assembles a pipeline from its stages.
func NewPipeline(
	store objectstore.Store,
	ldg *ledger.Ledger,
	collector *collect.Collector,
	filter *dedupe.Filter,
	engine *enrich.Engine,
	load *loader.Loader,
	opts ...Option,
) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if ldg == nil {
		return nil, ErrLedgerRequired
	}
	if collector == nil {
		return nil, ErrCollectorRequired
	}
	if filter == nil {
		return nil, ErrFilterRequired
	}
	if engine == nil {
		return nil, ErrEngineRequired
	}
	if load == nil {
		return nil, ErrLoaderRequired
	}

	p := &Pipeline{
		store:     store,
		ledger:    ldg,
		collector: collector,
		filter:    filter,
		engine:    engine,
		loader:    load,
		rawRoot:   DefaultRawRoot,
		clock:     time.Now,
		logger:    slog.Default().With("component", "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Report summarizes one pipeline run.
type Report struct {
	Namespace       string
	Collected       int
	AfterDedupe     int
	Enriched        int
	Inserted        int
	SkippedExact    int
	RejectedSimilar int
	Failed          int
	ProcessedKey    string
}

// Run executes one pass for the namespace. A run with nothing to do is
// not an error; the returned report carries zero counts.
func (p *Pipeline) Run(ctx context.Context, namespace string) (*Report, error) {
	if namespace == "" {
		return nil, ErrNamespaceRequired
	}
	report := &Report{Namespace: namespace}

	seen, err := p.ledger.Load(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}

	items, err := p.collector.Collect(ctx, p.rawRoot+"/"+namespace, seen)
	if err != nil {
		return nil, fmt.Errorf("collecting batches: %w", err)
	}
	report.Collected = len(items)
	if len(items) == 0 {
		p.logger.Info("nothing to process", "namespace", namespace)
		return report, nil
	}

	unique := p.filter.Apply(items)
	report.AfterDedupe = len(unique)

	enriched := p.engine.Enrich(ctx, unique)
	report.Enriched = len(enriched)
	if len(enriched) == 0 {
		return report, ctx.Err()
	}

	key, err := p.archiveProcessed(ctx, namespace, enriched)
	if err != nil {
		return nil, fmt.Errorf("archiving processed batch: %w", err)
	}
	report.ProcessedKey = key

	batch := make([]core.ContentItem, len(enriched))
	for i, item := range enriched {
		batch[i] = *item
	}
	results, err := p.loader.Load(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("loading batch: %w", err)
	}

	// Only items with a final store decision become seen. Transient
	// failures stay out of the ledger so a later run retries them.
	for _, r := range results {
		switch r.Decision {
		case loader.DecisionInserted:
			report.Inserted++
			seen[r.Item.URL] = true
		case loader.DecisionSkippedExactURL:
			report.SkippedExact++
			seen[r.Item.URL] = true
		case loader.DecisionRejectedSimilar:
			report.RejectedSimilar++
			seen[r.Item.URL] = true
		case loader.DecisionFailed:
			report.Failed++
		}
	}

	if err := p.ledger.Save(ctx, namespace, seen); err != nil {
		return nil, fmt.Errorf("saving ledger: %w", err)
	}

	p.logger.Info("run complete",
		"namespace", namespace,
		"collected", report.Collected,
		"after_dedupe", report.AfterDedupe,
		"enriched", report.Enriched,
		"inserted", report.Inserted,
		"skipped_exact", report.SkippedExact,
		"rejected_similar", report.RejectedSimilar,
		"failed", report.Failed)
	return report, nil
}

// archiveProcessed writes the enriched batch to an append-only,
// timestamped key under the namespace's processed prefix.
func (p *Pipeline) archiveProcessed(ctx context.Context, namespace string, items []*core.ContentItem) (string, error) {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", err
	}
	stamp := p.clock().UTC().Format("20060102_150405")
	key := fmt.Sprintf("processed/%s/processed_%s_%s.json", namespace, namespace, stamp)
	if err := p.store.Put(ctx, key, data); err != nil {
		return "", err
	}
	p.logger.Info("processed batch archived", "key", key, "items", len(items))
	return key, nil
}
