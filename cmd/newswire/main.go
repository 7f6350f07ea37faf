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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/newswire/ai/openai"
	"github.com/poiesic/newswire/collect"
	"github.com/poiesic/newswire/config"
	"github.com/poiesic/newswire/dedupe"
	"github.com/poiesic/newswire/enrich"
	"github.com/poiesic/newswire/ledger"
	"github.com/poiesic/newswire/loader"
	"github.com/poiesic/newswire/objectstore/minio"
	"github.com/poiesic/newswire/pipeline"
	"github.com/poiesic/newswire/reembed"
	"github.com/poiesic/newswire/storage/postgres"
)

func main() {
	app := &cli.App{
		Name:  "newswire",
		Usage: "Incremental dedup and enrichment pipeline for scraped news batches",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run one pipeline pass for a namespace",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "namespace",
						Aliases:  []string{"n"},
						Usage:    "Scraper namespace to process (e.g. world, business)",
						Required: true,
					},
				},
			},
			{
				Name:   "provision",
				Usage:  "Create the news table, extension and indexes",
				Action: provisionCommand,
			},
			{
				Name:   "reembed",
				Usage:  "Backfill embeddings for rows without a vector",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of rows to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N rows",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := minio.NewClient(&minio.Config{
		EndpointURL:     cfg.S3EndpointURL,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
	})
	if err != nil {
		return fmt.Errorf("creating object store client: %w", err)
	}
	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("reaching object store: %w", err)
	}

	repo, err := postgres.NewRepository(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to news store: %w", err)
	}
	defer repo.Close()
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	aiConfig := cfg.AIConfig()
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}
	provider, err := openai.NewProvider(aiConfig)
	if err != nil {
		return fmt.Errorf("creating AI provider: %w", err)
	}
	defer provider.Close()

	ldg, err := ledger.New(store)
	if err != nil {
		return err
	}
	collector, err := collect.New(store)
	if err != nil {
		return err
	}
	filter := dedupe.NewFilter(dedupe.WithThreshold(cfg.LexicalThreshold))
	engine, err := enrich.NewEngine(provider.Generator(),
		enrich.WithPacing(cfg.GroupSize, cfg.CoolDown, cfg.ItemDelay),
		enrich.WithRunCap(cfg.RunCap()),
	)
	if err != nil {
		return err
	}

	loaderOpts := []loader.Option{
		loader.WithSimilarityThreshold(cfg.SemanticThreshold),
		loader.WithWindow(cfg.SemanticWindow),
	}
	if cfg.FailClosed {
		loaderOpts = append(loaderOpts, loader.WithFailClosed())
	}
	load, err := loader.NewLoader(repo, provider.Embedder(), loaderOpts...)
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(store, ldg, collector, filter, engine, load,
		pipeline.WithRawRoot(cfg.RawRoot))
	if err != nil {
		return err
	}

	report, err := p.Run(ctx, c.String("namespace"))
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	fmt.Printf("namespace=%s collected=%d deduped=%d enriched=%d inserted=%d skipped=%d rejected=%d failed=%d\n",
		report.Namespace, report.Collected, report.AfterDedupe, report.Enriched,
		report.Inserted, report.SkippedExact, report.RejectedSimilar, report.Failed)
	return nil
}

func provisionCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	repo, err := postgres.NewRepository(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to news store: %w", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	fmt.Println("schema provisioned")
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	repo, err := postgres.NewRepository(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to news store: %w", err)
	}
	defer repo.Close()

	aiConfig := cfg.AIConfig()
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}
	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reembedder, err := reembed.NewReembedder(repo, embedder, reembedConfig, os.Stderr)
	if err != nil {
		return err
	}

	stats, err := reembedder.Run(ctx)
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}
	if stats.Failed > 0 {
		return fmt.Errorf("backfill finished with %d failed rows", stats.Failed)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
