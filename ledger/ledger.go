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


package ledger

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/poiesic/newswire/objectstore"
)

// seenFileName is the reserved marker for ledger objects. Batch listings
// must never treat an object containing this marker as batch data.
const seenFileName = "seen_links.json"

// Ledger persists the set of item identifiers that have exited the
// pipeline for a namespace. The set only grows; there is no pruning or
// expiry, so external cleanup is required if size ever matters.
type Ledger struct {
	store  objectstore.Store
	logger *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
	}
}

// New creates a ledger backed by the given object store.
func New(store objectstore.Store, opts ...Option) (*Ledger, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	l := &Ledger{
		store:  store,
		logger: slog.Default().With("component", "ledger"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Key returns the fixed object key holding the ledger for a namespace.
func Key(namespace string) string {
	return "processed/" + namespace + "/" + seenFileName
}

// Load reads the seen set for a namespace. Missing or corrupt ledger data
// is not an error: the ledger fails soft to an empty set and logs a
// warning, which at worst causes already-processed items to be re-checked
// against the store's exact-identity guard.
func (l *Ledger) Load(ctx context.Context, namespace string) (map[string]bool, error) {
	key := Key(namespace)
	data, err := l.store.Get(ctx, key)
	if err != nil {
		l.logger.Warn("ledger unavailable, starting from empty set", "namespace", namespace, "key", key, "err", err)
		return make(map[string]bool), nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		l.logger.Warn("ledger corrupt, starting from empty set", "namespace", namespace, "key", key, "err", err)
		return make(map[string]bool), nil
	}

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			seen[id] = true
		}
	}
	return seen, nil
}

// Save overwrites the persisted set for a namespace in a single put.
// Callers mutate the in-memory set and write the whole thing back; there
// is deliberately no partial-update operation.
func (l *Ledger) Save(ctx context.Context, namespace string, seen map[string]bool) error {
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := l.store.Put(ctx, Key(namespace), data); err != nil {
		return err
	}

	l.logger.Info("ledger saved", "namespace", namespace, "entries", len(ids))
	return nil
}
