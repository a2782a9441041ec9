package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/poiesic/grocer"
	"github.com/poiesic/grocer/ai"
	"github.com/poiesic/grocer/ai/openai"
	"github.com/poiesic/grocer/classify"
	"github.com/poiesic/grocer/core"
	"github.com/poiesic/grocer/ingestion"
	"github.com/poiesic/grocer/knowledge"
	"github.com/poiesic/grocer/metrics"
	"github.com/poiesic/grocer/normalize"
	"github.com/poiesic/grocer/parse"
	"github.com/poiesic/grocer/reenrich"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"
)

// openDatabase and newProvider are replaced in tests.
var (
	openDatabase = func(c *cli.Context) (*grocer.Database, error) {
		return grocer.NewDatabase(c.String("db"),
			grocer.WithAIConfig(aiConfig(c)),
			grocer.WithLogger(slog.Default()))
	}

	newProvider = func(c *cli.Context) (ai.AIProvider, error) {
		return openai.NewProvider(aiConfig(c))
	}
)

func aiConfig(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithModel(c.String("ai-model")),
		ai.WithToken(c.String("ai-token")),
		ai.WithTimeout(c.Duration("ai-timeout")),
	)
}

func open(c *cli.Context) (*grocer.Database, error) {
	db, err := openDatabase(c)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func addCommand(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")

	db, err := open(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	out := &syncWriter{w: c.App.Writer}
	_, err = pipeline.Ingest(c.Context, text, &ingestion.IngestOptions{
		OnEntry: func(entry *core.GroceryEntry) {
			out.printf("+ %s\n", formatEntry(entry))
		},
		OnUpdate: func(_ ingestion.Update, entry *core.GroceryEntry) {
			out.printf("~ %s\n", formatEntry(entry))
		},
	})
	if errors.Is(err, core.ErrEmptyInput) {
		return errors.New("nothing to add")
	}
	if err != nil {
		return err
	}

	if c.Bool("wait") {
		pipeline.Wait()
	} else {
		slog.Debug("exiting without waiting for enrichment")
	}
	return nil
}

func listenCommand(c *cli.Context) error {
	db, err := open(c)
	if err != nil {
		return err
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	monitor, err := metrics.NewIngestMetrics(registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	if addr := c.String("metrics-addr"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: addr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", "addr", addr, "err", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		slog.Info("serving metrics", "addr", addr)
	}

	limit := c.Float64("rate-limit")
	pipeline, err := db.NewIngestionPipeline(
		ingestion.WithMonitor(monitor),
		ingestion.WithPoolSize(c.Int("pool-size")),
		ingestion.WithRateLimit(rate.Limit(limit), max(1, int(limit))),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	out := &syncWriter{w: c.App.Writer}
	opts := &ingestion.IngestOptions{
		OnEntry: func(entry *core.GroceryEntry) {
			out.printf("+ %s\n", formatEntry(entry))
		},
		OnUpdate: func(_ ingestion.Update, entry *core.GroceryEntry) {
			out.printf("~ %s\n", formatEntry(entry))
		},
	}

	events := 0
	for line := range readLines(c.Context, c.App.Reader) {
		if _, err := pipeline.Ingest(c.Context, line, opts); err != nil {
			if errors.Is(err, core.ErrEmptyInput) {
				continue
			}
			pipeline.Wait()
			return err
		}
		events++
	}

	pipeline.Wait()
	slog.Info("input closed", "events", events)
	return nil
}

// readLines delivers lines from r until EOF or until ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			slog.Error("error reading input", "err", err)
		}
	}()
	return lines
}

func parseCommand(c *cli.Context) error {
	var freeform ai.FreeformParser
	if !c.Bool("offline") {
		provider, err := newProvider(c)
		if err != nil {
			return fmt.Errorf("failed to create AI provider: %w", err)
		}
		defer provider.Close()
		freeform = provider.FreeformParser()
	}

	items, err := parse.New(freeform).Parse(c.Context, strings.Join(c.Args().Slice(), " "))
	if err != nil {
		return err
	}
	for _, item := range items {
		qty := "-"
		if item.Quantity != nil {
			qty = *item.Quantity
		}
		fmt.Fprintf(c.App.Writer, "%-6s  %-10s  %s\n", item.Confidence, qty, item.Name)
	}
	return nil
}

func classifyCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one name is required")
	}

	db, err := open(c)
	if err != nil {
		return err
	}
	defer db.Close()

	classifier := classify.New(db.KnowledgeStore())
	for _, name := range c.Args().Slice() {
		res := classifier.Classify(c.Context, name)
		fmt.Fprintf(c.App.Writer, "%s: %s (%s)\n", res.Name, res.Category.DisplayName(), res.Tier)
	}
	return nil
}

func lookupCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one name is required")
	}

	db, err := open(c)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, arg := range c.Args().Slice() {
		name := normalize.Normalize(arg)
		rec, err := db.KnowledgeStore().Get(c.Context, name)
		if err != nil {
			return err
		}
		if rec == nil {
			fmt.Fprintf(c.App.Writer, "%s: no stored knowledge\n", name)
			continue
		}
		fmt.Fprintf(c.App.Writer, "%s: %s\n", name, formatKnowledge(rec))
	}
	return nil
}

func listCommand(c *cli.Context) error {
	db, err := open(c)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := db.EntryRepository().ListEntries(c.Context)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.App.Writer, "The list is empty.")
		return nil
	}

	for _, group := range core.GroupByAisle(entries) {
		fmt.Fprintf(c.App.Writer, "%s\n", group.Category.DisplayName())
		for _, entry := range group.Entries {
			fmt.Fprintf(c.App.Writer, "  %s  %s\n", formatEntry(entry), entry.ID)
		}
	}
	return nil
}

func recategorizeCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("usage: recategorize ENTRY-ID CATEGORY")
	}
	category, err := core.ParseCategory(c.Args().Get(1))
	if err != nil {
		return fmt.Errorf("%w: %q", err, c.Args().Get(1))
	}

	db, err := open(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	entry, err := pipeline.Recategorize(c.Context, c.Args().Get(0), category)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "~ %s\n", formatEntry(entry))
	return nil
}

func removeCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one entry id is required")
	}

	db, err := open(c)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.EntryRepository().DeleteEntries(c.Context, c.Args().Slice()...)
}

func seedCommand(c *cli.Context) error {
	records, err := loadSeed(c.String("file"))
	if err != nil {
		return err
	}

	db, err := open(c)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.KnowledgeStore().Seed(c.Context, records, c.Bool("overwrite"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Seeded %d of %d records\n", n, len(records))
	return nil
}

func loadSeed(path string) ([]core.KnowledgeRecord, error) {
	if path == "" {
		return knowledge.DefaultSeed()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := knowledge.LoadSeed(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed file %s: %w", path, err)
	}
	return records, nil
}

func reenrichCommand(c *cli.Context) error {
	config := &reenrich.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		RateLimit:      rate.Limit(c.Float64("rate-limit")),
	}
	if c.Bool("seed-only") {
		config.Sources = []core.Source{core.SourceSeed}
	}

	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := open(c)
	if err != nil {
		return err
	}
	defer db.Close()

	r, err := db.NewReenricher(config, c.App.ErrWriter)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", c.String("db"))
	fmt.Fprintf(c.App.ErrWriter, "AI host: %s\n", c.String("ai-host"))
	fmt.Fprintf(c.App.ErrWriter, "AI model: %s\n", c.String("ai-model"))
	fmt.Fprintln(c.App.ErrWriter)

	summary, err := r.Run(c.Context)
	if err != nil {
		return fmt.Errorf("re-enrichment failed: %w", err)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d records could not be refreshed", summary.Failed, summary.Total)
	}
	return nil
}

// syncWriter serializes output from enrichment workers and the main goroutine.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, format, args...)
}
