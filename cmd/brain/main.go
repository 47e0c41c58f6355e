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
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/secondbrain"
	"github.com/poiesic/secondbrain/config"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "brain",
		Usage:     "Personal knowledge store for problems and their solutions",
		Writer:    stdout,
		ErrWriter: stderr,
		Metadata:  map[string]interface{}{},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Value:   config.DefaultPath(),
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Aliases: []string{"d"},
				Usage:   "Directory holding the note and vector stores",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "OpenAI-compatible embedding service URL; empty uses the offline embedder",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
			},
			&cli.IntFlag{
				Name:  "dimensions",
				Usage: "Expected embedding width (0 accepts what a remote model returns)",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "Add a note",
				Action: addCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "problem",
						Aliases:  []string{"p"},
						Usage:    "What went wrong",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "solution",
						Aliases: []string{"s"},
						Usage:   "What fixed it",
					},
					&cli.PathFlag{
						Name:  "solution-file",
						Usage: "Read the solution verbatim from a file",
					},
					&cli.StringFlag{
						Name:     "explanation",
						Aliases:  []string{"e"},
						Usage:    "Why the fix works",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "tags",
						Aliases: []string{"t"},
						Usage:   "Comma-separated tags",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Find notes similar to a query",
				ArgsUsage: "<query...>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "k",
						Usage: "Number of results (0 uses the configured default)",
					},
					&cli.BoolFlag{
						Name:  "explain",
						Usage: "Log each search stage at debug level",
					},
				},
			},
			{
				Name:      "get",
				Usage:     "Show a note",
				ArgsUsage: "<id>",
				Action:    getCommand,
			},
			{
				Name:      "delete",
				Usage:     "Delete a note",
				ArgsUsage: "<id>",
				Action:    deleteCommand,
			},
			{
				Name:   "list",
				Usage:  "List recent notes",
				Action: listCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of notes",
						Value:   10,
					},
					&cli.StringFlag{
						Name:  "tag",
						Usage: "Only notes carrying this tag",
					},
				},
			},
			{
				Name:      "import",
				Usage:     "Import notes from a YAML file",
				ArgsUsage: "<file.yaml>",
				Action:    importCommand,
			},
			{
				Name:   "reconcile",
				Usage:  "Repair disagreements between the note store and the vector index",
				Action: reconcileCommand,
			},
			{
				Name:   "reembed",
				Usage:  "Rebuild the vector index with the configured embedder",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of notes to process in each batch",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N notes",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show store statistics",
				Action: statsCommand,
			},
		},
	}
}

// setup loads the configuration, applies flag overrides and installs the logger.
func setup(c *cli.Context) error {
	cfg, err := config.LoadOrDefault(c.String("config"))
	if err != nil {
		return err
	}

	if c.IsSet("data-dir") {
		cfg.DataDir = c.String("data-dir")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("embedding-host") {
		// A remote model picks its own width unless one is asked for.
		if cfg.Embedding.Host == "" && !c.IsSet("dimensions") {
			cfg.Embedding.Dimensions = 0
		}
		cfg.Embedding.Host = c.String("embedding-host")
	}
	if c.IsSet("embedding-model") {
		cfg.Embedding.Model = c.String("embedding-model")
	}
	if c.IsSet("dimensions") {
		cfg.Embedding.Dimensions = c.Int("dimensions")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := setupLogger(c.App.ErrWriter, cfg.LogLevel); err != nil {
		return err
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func setupLogger(w io.Writer, levelStr string) error {
	var level slog.Level
	switch strings.ToLower(levelStr) {
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

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func loadedConfig(c *cli.Context) *config.Config {
	return c.App.Metadata[configKey].(*config.Config)
}

// openDatabase opens the store named by the loaded configuration.
func openDatabase(c *cli.Context) (*secondbrain.Database, error) {
	cfg := loadedConfig(c)
	opts := []secondbrain.DatabaseOption{
		secondbrain.WithAIConfig(cfg.AIConfig()),
		secondbrain.WithLogger(slog.Default()),
		secondbrain.WithSearchLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit),
		secondbrain.WithMinScore(cfg.Search.MinScore),
		secondbrain.WithReconcileOnOpen(cfg.Ingestion.ReconcileOnOpenOrDefault()),
	}
	if cfg.Ingestion.PoolSize > 0 {
		opts = append(opts, secondbrain.WithPoolSize(cfg.Ingestion.PoolSize))
	}

	db, err := secondbrain.Open(c.Context, cfg.DataDir, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
