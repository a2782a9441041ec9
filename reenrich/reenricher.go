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

package reenrich

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/grocer/ai"
	"github.com/poiesic/grocer/core"
	"golang.org/x/time/rate"
)

// Config holds configuration for a re-enrichment run.
type Config struct {
	// BatchSize is the number of records to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of names)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per name
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// RateLimit caps enrichment calls per second. rate.Inf disables it.
	RateLimit rate.Limit

	// Sources restricts the run to records from these sources. Empty means all.
	Sources []core.Source
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 10,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		RateLimit:      rate.Limit(4),
	}
}

// Store is the knowledge store a run reads from and writes to.
type Store interface {
	KnowledgeLister
	Upsert(ctx context.Context, record core.KnowledgeRecord) (*core.KnowledgeRecord, error)
}

// Summary describes a finished run.
type Summary struct {
	Total     int
	Refreshed int
	Failed    int
	Elapsed   time.Duration
}

// Reenricher orchestrates the refresh of stored knowledge records.
type Reenricher struct {
	store    Store
	enricher ai.Enricher
	config   *Config
	progress io.Writer
	iterator *RecordIterator
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewReenricher creates a new reenricher.
// progress: where to write progress output (typically os.Stderr)
func NewReenricher(store Store, enricher ai.Enricher, config *Config, progress io.Writer) (*Reenricher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if enricher == nil {
		return nil, ErrEnricherRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxRetries <= 0 {
		return nil, ErrInvalidMaxAttempts
	}
	if progress == nil {
		progress = io.Discard
	}
	limit := config.RateLimit
	if limit <= 0 {
		limit = rate.Inf
	}

	return &Reenricher{
		store:    store,
		enricher: enricher,
		config:   config,
		progress: progress,
		iterator: NewRecordIterator(store, config.BatchSize, config.Sources...),
		limiter:  rate.NewLimiter(limit, 1),
		logger:   slog.Default().With("component", "reenrich"),
	}, nil
}

// Run refreshes every matching record. Individual failures are counted in
// the summary; only a listing error or cancellation aborts the run.
func (r *Reenricher) Run(ctx context.Context) (*Summary, error) {
	records, err := r.iterator.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge: %w", err)
	}

	total := len(records)
	if total == 0 {
		fmt.Fprintf(r.progress, "No knowledge records to refresh\n")
		return &Summary{}, nil
	}

	fmt.Fprintf(r.progress, "Refreshing %d knowledge records (batch size: %d)\n", total, r.iterator.batchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	err = r.iterator.ForEach(ctx, func(batch []*core.KnowledgeRecord) error {
		for _, rec := range batch {
			if err := r.refresh(ctx, rec.Name); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.logger.Warn("could not refresh knowledge", "name", rec.Name, "err", err)
				tracker.Failed()
				continue
			}
			tracker.Refreshed()
		}
		return nil
	})
	tracker.Finish()

	refreshed, failed := tracker.Counts()
	summary := &Summary{Total: total, Refreshed: refreshed, Failed: failed, Elapsed: tracker.Elapsed()}
	if err != nil {
		return summary, err
	}

	fmt.Fprintf(r.progress, "Refresh complete. %d refreshed, %d failed in %v\n",
		refreshed, failed, summary.Elapsed.Round(time.Millisecond))
	return summary, nil
}

// refresh enriches one name and overwrites its record.
func (r *Reenricher) refresh(ctx context.Context, name string) error {
	var rec *core.KnowledgeRecord
	err := RetryWithBackoff(ctx, func(ctx context.Context) error {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
		var err error
		rec, err = r.enricher.Enrich(ctx, name)
		if err == nil && rec == nil {
			err = fmt.Errorf("%w: empty result", ai.ErrInvalidResponse)
		}
		return err
	}, r.config.MaxRetries, r.config.RetryDelay)
	if err != nil {
		return err
	}

	update := *rec.Clone()
	update.Name = name
	update.Source = core.SourceAI
	_, err = r.store.Upsert(ctx, update)
	return err
}
