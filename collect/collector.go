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


package collect

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/newswire/core"
	"github.com/poiesic/newswire/objectstore"
)

// Collector assembles the working set for one pipeline run: the newest
// raw batch from every upstream source under a namespace root, minus
// anything the idempotency ledger has already recorded.
type Collector struct {
	store  objectstore.Store
	logger *slog.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// New creates a collector backed by the given object store.
func New(store objectstore.Store, opts ...Option) (*Collector, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	c := &Collector{
		store:  store,
		logger: slog.Default().With("component", "collector"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Collect enumerates source sub-namespaces under root, reads the single
// most-recently-modified batch object from each, and returns the merged,
// normalized working set with ledger-seen items excluded.
//
// A failure reading or parsing one source's batch drops that source's
// contribution and logs the error; other sources still proceed.
func (c *Collector) Collect(ctx context.Context, root string, seen map[string]bool) ([]*core.ContentItem, error) {
	sources, err := c.store.ListPrefixes(ctx, root)
	if err != nil {
		return nil, err
	}
	c.logger.Info("sources found", "root", root, "sources", sources)

	var items []*core.ContentItem
	for _, source := range sources {
		prefix := strings.TrimSuffix(root, "/") + "/" + source + "/"

		key, ok, err := c.newestBatchKey(ctx, prefix)
		if err != nil {
			c.logger.Error("error listing source batches", "source", source, "err", err)
			continue
		}
		if !ok {
			continue
		}

		batch, err := c.readBatch(ctx, key)
		if err != nil {
			c.logger.Error("error reading batch", "key", key, "err", err)
			continue
		}

		c.logger.Info("read batch", "key", key, "items", len(batch))
		items = append(items, batch...)
	}

	fresh := make([]*core.ContentItem, 0, len(items))
	for _, item := range items {
		if !seen[item.URL] {
			fresh = append(fresh, item)
		}
	}

	c.logger.Info("collection complete", "total", len(items), "unseen", len(fresh))
	return fresh, nil
}

// newestBatchKey picks the most-recently-modified JSON object under
// prefix, skipping anything carrying the reserved ledger marker.
func (c *Collector) newestBatchKey(ctx context.Context, prefix string) (string, bool, error) {
	infos, err := c.store.List(ctx, prefix)
	if err != nil {
		return "", false, err
	}

	candidates := infos[:0]
	for _, info := range infos {
		key := strings.ToLower(info.Key)
		if strings.HasSuffix(key, ".json") && !strings.Contains(key, "seen") {
			candidates = append(candidates, info)
		}
	}
	if len(candidates) == 0 {
		return "", false, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].LastModified.After(candidates[j].LastModified)
	})
	return candidates[0].Key, true, nil
}

// readBatch parses a batch object into content items. A lone JSON object
// is treated as a one-element batch.
func (c *Collector) readBatch(ctx context.Context, key string) ([]*core.ContentItem, error) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var records []*core.ContentItem
	if err := json.Unmarshal(data, &records); err != nil {
		var single core.ContentItem
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, err
		}
		records = []*core.ContentItem{&single}
	}

	items := make([]*core.ContentItem, 0, len(records))
	for _, record := range records {
		if record == nil || record.Validate() != nil {
			continue
		}
		if record.ScrapedAt == "" {
			record.ScrapedAt = time.Now().UTC().Format(time.RFC3339)
		}
		record.PublishedDate = NormalizeDate(record.PublishedDate)
		record.ScrapedAt = NormalizeDate(record.ScrapedAt)
		if record.Language == "" {
			record.Language = DetectLanguage(record.Title + " " + record.Text())
		}
		items = append(items, record)
	}
	return items, nil
}
