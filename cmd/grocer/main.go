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
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "grocer",
		Usage: "Categorized grocery list with storage and shelf-life guidance",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"GROCER_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				Value:   "./grocer_db",
				EnvVars: []string{"GROCER_DB"},
			},
			&cli.StringFlag{
				Name:    "ai-host",
				Usage:   "OpenAI-compatible service host URL",
				Value:   "http://localhost:11434/v1",
				EnvVars: []string{"GROCER_AI_HOST"},
			},
			&cli.StringFlag{
				Name:    "ai-model",
				Usage:   "Model used for enrichment and free-form parsing",
				Value:   "qwen2.5:3b",
				EnvVars: []string{"GROCER_AI_MODEL"},
			},
			&cli.StringFlag{
				Name:    "ai-token",
				Usage:   "API token for the AI service",
				EnvVars: []string{"GROCER_AI_TOKEN"},
			},
			&cli.DurationFlag{
				Name:    "ai-timeout",
				Usage:   "Timeout for each AI call",
				Value:   30 * time.Second,
				EnvVars: []string{"GROCER_AI_TIMEOUT"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add items from one line of text",
				ArgsUsage: "TEXT",
				Action:    addCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "wait",
						Usage: "Wait for background enrichment before exiting",
						Value: true,
					},
				},
			},
			{
				Name:   "listen",
				Usage:  "Add items from stdin, one ingestion event per line",
				Action: listenCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "metrics-addr",
						Usage:   "Serve Prometheus metrics on this address (empty disables)",
						EnvVars: []string{"GROCER_METRICS_ADDR"},
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of concurrent enrichment workers",
						Value: 4,
					},
					&cli.Float64Flag{
						Name:  "rate-limit",
						Usage: "Maximum enrichment calls per second",
						Value: 4,
					},
				},
			},
			{
				Name:      "parse",
				Usage:     "Show how text would be split into items",
				ArgsUsage: "TEXT",
				Action:    parseCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "offline",
						Usage: "Do not call the AI service for complex input",
					},
				},
			},
			{
				Name:      "classify",
				Usage:     "Show the aisle chosen for each name",
				ArgsUsage: "NAME...",
				Action:    classifyCommand,
			},
			{
				Name:      "lookup",
				Usage:     "Show stored knowledge for each name",
				ArgsUsage: "NAME...",
				Action:    lookupCommand,
			},
			{
				Name:   "list",
				Usage:  "Print the grocery list grouped by aisle",
				Action: listCommand,
			},
			{
				Name:      "recategorize",
				Usage:     "Move an entry to another aisle and remember the choice",
				ArgsUsage: "ENTRY-ID CATEGORY",
				Action:    recategorizeCommand,
			},
			{
				Name:      "remove",
				Usage:     "Remove entries from the list",
				ArgsUsage: "ENTRY-ID...",
				Action:    removeCommand,
			},
			{
				Name:   "seed",
				Usage:  "Load seed knowledge",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "YAML seed file (defaults to the bundled seed)",
					},
					&cli.BoolFlag{
						Name:  "overwrite",
						Usage: "Replace existing records",
					},
				},
			},
			{
				Name:   "reenrich",
				Usage:  "Refresh stored knowledge through the AI service",
				Action: reenrichCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "seed-only",
						Usage: "Only refresh records that came from seed data",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per record",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.Float64Flag{
						Name:  "rate-limit",
						Usage: "Maximum AI calls per second",
						Value: 4,
					},
				},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
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

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
