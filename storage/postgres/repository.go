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


package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/poiesic/newswire/core"
	"github.com/poiesic/newswire/storage"
)

const uniqueViolationCode = "23505"

// querier is the subset of pgx operations shared by pools and transactions.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type txContextKey struct{}

// Repository is a NewsRepository backed by PostgreSQL with pgvector.
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ storage.NewsRepository = (*Repository)(nil)

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger used by the repository.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRepository connects to the database at dsn and registers the vector
// type on every connection.
func NewRepository(ctx context.Context, dsn string, opts ...Option) (storage.NewsRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	repo := &Repository{
		pool:   pool,
		logger: slog.Default().With("component", "storage.postgres"),
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo, nil
}

// EnsureSchema creates the extension, table and indexes if missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS news (
			id             BIGSERIAL PRIMARY KEY,
			url            TEXT NOT NULL UNIQUE,
			source         TEXT NOT NULL DEFAULT '',
			language       TEXT NOT NULL DEFAULT '',
			category       TEXT NOT NULL DEFAULT '',
			title          TEXT NOT NULL DEFAULT '',
			summary        TEXT NOT NULL DEFAULT '',
			full_text      TEXT NOT NULL DEFAULT '',
			image_url      TEXT NOT NULL DEFAULT '',
			published_date TEXT NOT NULL DEFAULT '',
			scraped_at     TEXT NOT NULL DEFAULT '',
			sentiment      TEXT NOT NULL DEFAULT 'Neutral',
			embedding      vector(%d),
			inserted_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, core.EmbeddingDim),
		`CREATE INDEX IF NOT EXISTS news_embedding_idx
			ON news USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,
		`CREATE INDEX IF NOT EXISTS news_inserted_at_idx ON news (inserted_at)`,
	}
	for _, stmt := range statements {
		if _, err := r.querier(ctx).Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	r.logger.Debug("schema ensured", "table", "news", "dimensions", core.EmbeddingDim)
	return nil
}

// HasURL reports whether a row with the exact URL exists.
func (r *Repository) HasURL(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := r.querier(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM news WHERE url = $1)`, url).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking url: %w", err)
	}
	return exists, nil
}

// NearestSimilarity returns the best cosine similarity against rows
// inserted within the trailing window.
func (r *Repository) NearestSimilarity(ctx context.Context, vector []float32, window time.Duration) (float64, bool, error) {
	if len(vector) != core.EmbeddingDim {
		return 0, false, fmt.Errorf("%w: vector has %d dimensions, want %d",
			storage.ErrInvalidQuery, len(vector), core.EmbeddingDim)
	}
	var similarity float64
	err := r.querier(ctx).QueryRow(ctx,
		`SELECT 1 - (embedding <=> $1) AS similarity
		 FROM news
		 WHERE embedding IS NOT NULL
		   AND inserted_at > NOW() - make_interval(secs => $2)
		 ORDER BY embedding <=> $1
		 LIMIT 1`,
		pgvector.NewVector(vector), window.Seconds()).Scan(&similarity)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("similarity search: %w", err)
	}
	return similarity, true, nil
}

// Insert persists the item and returns it with id and timestamp set.
func (r *Repository) Insert(ctx context.Context, item *core.ContentItem) (*core.StoredItem, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	var embedding any
	if len(item.Embedding) > 0 {
		embedding = pgvector.NewVector(item.Embedding)
	}

	stored := &core.StoredItem{ContentItem: *item}
	err := r.querier(ctx).QueryRow(ctx,
		`INSERT INTO news (url, source, language, category, title, summary,
			full_text, image_url, published_date, scraped_at, sentiment, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, inserted_at`,
		item.URL, item.Source, item.Language, item.Category, item.Title,
		item.Summary, item.FullText, item.ImageURL, item.PublishedDate,
		item.ScrapedAt, string(item.Sentiment), embedding,
	).Scan(&stored.ID, &stored.InsertedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, fmt.Errorf("%w: %s", storage.ErrDuplicateURL, item.URL)
		}
		return nil, fmt.Errorf("inserting item: %w", err)
	}
	return stored, nil
}

// WithTransaction runs fn inside a transaction. Repository calls made
// with the context passed to fn share that transaction.
func (r *Repository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txContextKey{}).(pgx.Tx); ok {
		// Already inside a transaction, just run fn.
		return fn(ctx)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", storage.ErrTransactionFailed, err)
	}

	txCtx := context.WithValue(ctx, txContextKey{}, tx)
	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			r.logger.Error("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", storage.ErrTransactionFailed, err)
	}
	return nil
}

// ListMissingEmbeddings returns stored items whose embedding is NULL.
func (r *Repository) ListMissingEmbeddings(ctx context.Context, limit int) ([]*core.StoredItem, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	rows, err := r.querier(ctx).Query(ctx,
		`SELECT id, url, source, language, category, title, summary,
			full_text, image_url, published_date, scraped_at, sentiment, inserted_at
		 FROM news
		 WHERE embedding IS NULL
		 ORDER BY id
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing missing embeddings: %w", err)
	}
	defer rows.Close()

	var items []*core.StoredItem
	for rows.Next() {
		var item core.StoredItem
		var sentiment string
		if err := rows.Scan(&item.ID, &item.URL, &item.Source, &item.Language,
			&item.Category, &item.Title, &item.Summary, &item.FullText,
			&item.ImageURL, &item.PublishedDate, &item.ScrapedAt,
			&sentiment, &item.InsertedAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		item.Sentiment = core.Sentiment(sentiment)
		items = append(items, &item)
	}
	return items, rows.Err()
}

// UpdateEmbedding replaces the embedding of the row with the given id.
func (r *Repository) UpdateEmbedding(ctx context.Context, id int64, vector []float32) error {
	if len(vector) != core.EmbeddingDim {
		return fmt.Errorf("%w: vector has %d dimensions, want %d",
			storage.ErrInvalidQuery, len(vector), core.EmbeddingDim)
	}
	tag, err := r.querier(ctx).Exec(ctx,
		`UPDATE news SET embedding = $1 WHERE id = $2`,
		pgvector.NewVector(vector), id)
	if err != nil {
		return fmt.Errorf("updating embedding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", storage.ErrNotFound, id)
	}
	return nil
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

// querier returns the ambient transaction if the context carries one,
// otherwise the pool.
func (r *Repository) querier(ctx context.Context) querier {
	if tx, ok := ctx.Value(txContextKey{}).(pgx.Tx); ok {
		return tx
	}
	return r.pool
}
