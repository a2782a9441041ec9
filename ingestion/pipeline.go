package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/grocer/ai"
	"github.com/poiesic/grocer/classify"
	"github.com/poiesic/grocer/core"
	"github.com/poiesic/grocer/knowledge"
	"github.com/poiesic/grocer/parse"
	"github.com/poiesic/grocer/storage"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	defaultEnrichTimeout = 30 * time.Second
	defaultRateLimit     = rate.Limit(4)
	defaultRateBurst     = 4
)

// Pipeline orchestrates ingestion events and the background enrichment they trigger.
type Pipeline struct {
	store      *knowledge.Store
	entries    storage.EntryRepository
	enricher   ai.Enricher
	classifier *classify.Classifier
	parser     *parse.Parser
	pool       *ants.Pool
	limiter    *rate.Limiter
	flights    singleflight.Group
	inflight   sync.WaitGroup
	timeout    time.Duration
	monitor    Monitor
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the enrichment worker pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithMonitor sets the observer for ingestion events.
func WithMonitor(monitor Monitor) Option {
	return func(p *Pipeline) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		p.monitor = monitor
		return nil
	}
}

// WithEnrichTimeout bounds each enrichment call.
// Default is 30 seconds.
func WithEnrichTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) error {
		if timeout <= 0 {
			return fmt.Errorf("enrich timeout must be positive, got %s", timeout)
		}
		p.timeout = timeout
		return nil
	}
}

// WithRateLimit limits enrichment calls to limit per second with the given burst.
// rate.Inf disables limiting. Default is 4 per second with a burst of 4.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(p *Pipeline) error {
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(limit, burst)
		return nil
	}
}

// WithClassifier replaces the default classifier, which reads from the pipeline's store.
func WithClassifier(classifier *classify.Classifier) Option {
	return func(p *Pipeline) error {
		p.classifier = classifier
		return nil
	}
}

// WithParser replaces the default parser, which uses the provider's free-form parser.
func WithParser(parser *parse.Parser) Option {
	return func(p *Pipeline) error {
		p.parser = parser
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	store *knowledge.Store,
	entries storage.EntryRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if store == nil {
		return nil, ErrKnowledgeStoreRequired
	}
	if entries == nil {
		return nil, ErrEntryRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:    store,
		entries:  entries,
		enricher: provider.Enricher(),
		pool:     pool,
		limiter:  rate.NewLimiter(defaultRateLimit, defaultRateBurst),
		timeout:  defaultEnrichTimeout,
		monitor:  &noopMonitor{},
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	p.logger = p.logger.With("component", "ingestion")
	if p.classifier == nil {
		p.classifier = classify.New(store, classify.WithLogger(p.logger))
	}
	if p.parser == nil {
		p.parser = parse.New(provider.FreeformParser(), parse.WithLogger(p.logger))
	}

	return p, nil
}

// IngestOptions holds optional parameters for ingestion.
type IngestOptions struct {
	// OnEntry is called for each entry as soon as it is built, before the batch commits.
	OnEntry func(entry *core.GroceryEntry)
	// OnUpdate is called from a worker goroutine after an enrichment result
	// has been applied to a stored entry.
	OnUpdate func(update Update, entry *core.GroceryEntry)
	// Timestamp sets CreatedAt (uses current time if zero).
	Timestamp time.Time
}

// Batch is the committed result of one ingestion event.
type Batch struct {
	ID      string
	Entries []*core.GroceryEntry // in input order
}

// Ingest parses text and commits one entry per parsed item.
// Returns core.ErrEmptyInput when text is blank.
// Enrichment of cache misses continues after Ingest returns.
func (p *Pipeline) Ingest(ctx context.Context, text string, opts *IngestOptions) (*Batch, error) {
	items, err := p.parser.Parse(ctx, text)
	if err != nil {
		return nil, err
	}
	return p.IngestParsed(ctx, items, opts)
}

// IngestParsed commits entries for items that are already structured,
// such as recipe ingredients. Items with a blank name are skipped.
func (p *Pipeline) IngestParsed(ctx context.Context, items []core.ParsedIngredient, opts *IngestOptions) (*Batch, error) {
	if opts == nil {
		opts = &IngestOptions{}
	}
	p.monitor.IngestStarted(len(items))

	timestamp := opts.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	batch := &Batch{ID: uuid.NewString()}
	entries := make([]*core.GroceryEntry, 0, len(items))
	misses := newMissSet()

	for _, item := range items {
		entry, tier, err := p.buildEntry(ctx, batch.ID, item, timestamp)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			continue
		}
		entries = append(entries, entry)
		if !tier.CacheHit() && entry.NormalizedName != "" {
			misses.add(entry.NormalizedName, entry.ID)
		}
		p.monitor.EntryCreated(entry, tier)
		if opts.OnEntry != nil {
			opts.OnEntry(entry)
		}
	}
	if len(entries) == 0 {
		return nil, core.ErrEmptyInput
	}

	start := time.Now()
	added, err := p.entries.AddEntries(ctx, entries...)
	if err != nil {
		return nil, fmt.Errorf("commit batch %s: %w", batch.ID, err)
	}
	batch.Entries = added
	p.monitor.BatchCommitted(len(added), time.Since(start))
	p.logger.Debug("batch committed", "batch", batch.ID, "entries", len(added), "misses", misses.len())

	p.schedule(misses.tasks(), opts.OnUpdate)
	return batch, nil
}

// buildEntry classifies one item. It returns a nil entry for a blank name.
func (p *Pipeline) buildEntry(ctx context.Context, batchID string, item core.ParsedIngredient, timestamp time.Time) (*core.GroceryEntry, classify.Tier, error) {
	name := strings.TrimSpace(item.Name)
	if name == "" {
		return nil, classify.TierDefault, nil
	}

	res := p.classifier.Classify(ctx, name)
	confidence := item.Confidence
	if confidence == "" {
		confidence = core.ConfidenceHigh
	}

	entry := &core.GroceryEntry{
		ID:             uuid.NewString(),
		BatchID:        batchID,
		Name:           name,
		NormalizedName: res.Name,
		Quantity:       item.Quantity,
		Confidence:     confidence,
		Category:       res.Category,
		CreatedAt:      timestamp,
		UpdatedAt:      timestamp,
	}
	if res.Tier.CacheHit() {
		entry.ApplyKnowledge(res.Record)
	}
	if err := core.ValidateEntry(entry); err != nil {
		return nil, res.Tier, err
	}
	return entry, res.Tier, nil
}

// Recategorize records a user's category choice for an entry. The entry is
// updated and the knowledge for its name is stored with source user, so later
// ingestions of the same name use the new category.
func (p *Pipeline) Recategorize(ctx context.Context, entryID string, category core.Category) (*core.GroceryEntry, error) {
	category = category.Canonical()
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidCategory, category)
	}

	entry, err := p.entries.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}

	rec, err := p.store.Get(ctx, entry.NormalizedName)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &core.KnowledgeRecord{
			Name:             entry.NormalizedName,
			StorageAdvice:    entry.StorageAdvice,
			ShelfLifeDaysMin: entry.ShelfLifeDaysMin,
			ShelfLifeDaysMax: entry.ShelfLifeDaysMax,
		}
	}
	rec.Category = category
	rec.Source = core.SourceUser

	stored, err := p.store.Upsert(ctx, *rec)
	if err != nil {
		return nil, err
	}
	return p.entries.ModifyEntry(ctx, entryID, func(e *core.GroceryEntry) error {
		e.ApplyKnowledge(stored)
		return nil
	})
}

// Wait blocks until all scheduled enrichment has finished.
// Wait must not be called concurrently with Ingest or IngestParsed.
func (p *Pipeline) Wait() {
	p.inflight.Wait()
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
