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


package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/poiesic/newswire/core"
	"github.com/poiesic/newswire/storage"
)

// Repository is an in-memory NewsRepository for tests.
type Repository struct {
	mu     sync.Mutex
	rows   map[int64]*core.StoredItem
	nextID int64
	now    func() time.Time

	// SimilarityErr, when set, is returned by NearestSimilarity. Lets
	// tests exercise the fail-open and fail-closed paths.
	SimilarityErr error
}

var _ storage.NewsRepository = (*Repository)(nil)

// NewRepository returns an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		rows:   make(map[int64]*core.StoredItem),
		nextID: 1,
		now:    time.Now,
	}
}

// SetClock overrides the clock used for inserted_at timestamps.
func (r *Repository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// EnsureSchema is a no-op.
func (r *Repository) EnsureSchema(ctx context.Context) error { return nil }

// HasURL reports whether a row with the exact URL exists.
func (r *Repository) HasURL(ctx context.Context, url string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.URL == url {
			return true, nil
		}
	}
	return false, nil
}

// NearestSimilarity returns the best cosine similarity among rows whose
// InsertedAt falls inside the trailing window.
func (r *Repository) NearestSimilarity(ctx context.Context, vector []float32, window time.Duration) (float64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SimilarityErr != nil {
		return 0, false, r.SimilarityErr
	}

	cutoff := r.now().Add(-window)
	best := math.Inf(-1)
	found := false
	for _, row := range r.rows {
		if len(row.Embedding) == 0 || !row.InsertedAt.After(cutoff) {
			continue
		}
		if sim := cosine(vector, row.Embedding); sim > best {
			best = sim
			found = true
		}
	}
	if !found {
		return 0, false, nil
	}
	return best, true, nil
}

// Insert persists the item, assigning an id and timestamp.
func (r *Repository) Insert(ctx context.Context, item *core.ContentItem) (*core.StoredItem, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.URL == item.URL {
			return nil, fmt.Errorf("%w: %s", storage.ErrDuplicateURL, item.URL)
		}
	}
	stored := &core.StoredItem{
		ID:          r.nextID,
		ContentItem: *item,
		InsertedAt:  r.now(),
	}
	r.rows[stored.ID] = stored
	r.nextID++
	return stored, nil
}

// WithTransaction snapshots the rows and restores them if fn fails.
func (r *Repository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	snapshot := make(map[int64]*core.StoredItem, len(r.rows))
	for id, row := range r.rows {
		copied := *row
		snapshot[id] = &copied
	}
	snapshotID := r.nextID
	r.mu.Unlock()

	if err := fn(ctx); err != nil {
		r.mu.Lock()
		r.rows = snapshot
		r.nextID = snapshotID
		r.mu.Unlock()
		return err
	}
	return nil
}

// ListMissingEmbeddings returns rows without an embedding, ordered by id.
func (r *Repository) ListMissingEmbeddings(ctx context.Context, limit int) ([]*core.StoredItem, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*core.StoredItem
	for _, row := range r.rows {
		if len(row.Embedding) == 0 {
			copied := *row
			items = append(items, &copied)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// UpdateEmbedding replaces the embedding of the row with the given id.
func (r *Repository) UpdateEmbedding(ctx context.Context, id int64, vector []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return fmt.Errorf("%w: id %d", storage.ErrNotFound, id)
	}
	row.Embedding = append([]float32(nil), vector...)
	return nil
}

// Close is a no-op.
func (r *Repository) Close() error { return nil }

// Rows returns a copy of all stored rows ordered by id. Test helper.
func (r *Repository) Rows() []*core.StoredItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*core.StoredItem, 0, len(r.rows))
	for _, row := range r.rows {
		copied := *row
		items = append(items, &copied)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

// SetInsertedAt rewrites a row's timestamp. Test helper for window cases.
func (r *Repository) SetInsertedAt(id int64, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[id]; ok {
		row.InsertedAt = at
	}
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
