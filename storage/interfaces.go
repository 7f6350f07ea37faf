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


package storage

import (
	"context"
	"time"

	"github.com/poiesic/newswire/core"
)

// NewsRepository provides persistence for enriched news items.
// Implementations must be thread-safe and support concurrent access.
type NewsRepository interface {
	// EnsureSchema creates the table, extension and indexes if they do not
	// exist. Safe to call on every startup.
	EnsureSchema(ctx context.Context) error

	// HasURL reports whether a row with the exact URL already exists.
	HasURL(ctx context.Context, url string) (bool, error)

	// NearestSimilarity returns the highest cosine similarity between the
	// given vector and rows inserted within the trailing window.
	// found is false when no row falls inside the window.
	NearestSimilarity(ctx context.Context, vector []float32, window time.Duration) (similarity float64, found bool, err error)

	// Insert persists an item and returns it with store-assigned fields.
	// Returns ErrDuplicateURL if the URL is already present.
	Insert(ctx context.Context, item *core.ContentItem) (*core.StoredItem, error)

	// WithTransaction executes fn within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// The context passed to fn carries the transaction state; repository
	// calls made with it participate in the same transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// ListMissingEmbeddings returns up to limit stored items whose
	// embedding column is NULL, ordered by id.
	ListMissingEmbeddings(ctx context.Context, limit int) ([]*core.StoredItem, error)

	// UpdateEmbedding replaces the embedding of the row with the given id.
	// Returns ErrNotFound if the row does not exist.
	UpdateEmbedding(ctx context.Context, id int64, vector []float32) error

	// Close releases the underlying connections.
	Close() error
}
