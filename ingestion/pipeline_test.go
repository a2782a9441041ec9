package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/grocer/ai"
	"github.com/poiesic/grocer/ai/mock"
	"github.com/poiesic/grocer/classify"
	"github.com/poiesic/grocer/core"
	"github.com/poiesic/grocer/knowledge"
	"github.com/poiesic/grocer/storage"
	"github.com/poiesic/grocer/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type fixture struct {
	pipeline *Pipeline
	store    *knowledge.Store
	entries  storage.EntryRepository
	enricher *mock.MockEnricher
	parser   *mock.MockFreeformParser
}

func setupPipeline(t *testing.T, enrich func(ctx context.Context, name string) (*core.KnowledgeRecord, error), opts ...Option) *fixture {
	t.Helper()

	knowledgeRepo, entryRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)

	store, err := knowledge.NewStore(knowledgeRepo)
	require.NoError(t, err)

	enricher := mock.NewMockEnricher()
	enricher.EnrichFunc = enrich
	parser := mock.NewMockFreeformParser()
	provider := mock.NewMockProviderWithServices(enricher, parser)

	opts = append([]Option{WithPoolSize(4), WithRateLimit(rate.Inf, 1)}, opts...)
	p, err := NewPipeline(store, entryRepo, provider, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		p.Wait()
		p.Release()
		entryRepo.Close()
		knowledgeRepo.Close()
		backend.Close()
	})

	return &fixture{pipeline: p, store: store, entries: entryRepo, enricher: enricher, parser: parser}
}

func ptr[T any](v T) *T {
	return &v
}

// knownAnswers enriches a few names with fixed data and fails everything else.
func knownAnswers(ctx context.Context, name string) (*core.KnowledgeRecord, error) {
	switch name {
	case "milk":
		return &core.KnowledgeRecord{
			Name:             name,
			Category:         core.CategoryDairy,
			StorageAdvice:    ptr("Refrigerate at or below 4C."),
			ShelfLifeDaysMin: ptr(5),
			ShelfLifeDaysMax: ptr(7),
		}, nil
	case "eggs":
		return &core.KnowledgeRecord{
			Name:             name,
			Category:         core.CategoryDairy,
			StorageAdvice:    ptr("Keep in the carton in the fridge."),
			ShelfLifeDaysMin: ptr(21),
			ShelfLifeDaysMax: ptr(35),
		}, nil
	}
	return nil, ai.ErrServiceUnavailable
}

func TestNewPipeline_RequiredCollaborators(t *testing.T) {
	knowledgeRepo, entryRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	store, err := knowledge.NewStore(knowledgeRepo)
	require.NoError(t, err)
	provider := mock.NewMockProvider()

	_, err = NewPipeline(nil, entryRepo, provider)
	assert.ErrorIs(t, err, ErrKnowledgeStoreRequired)

	_, err = NewPipeline(store, nil, provider)
	assert.ErrorIs(t, err, ErrEntryRepositoryRequired)

	_, err = NewPipeline(store, entryRepo, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)

	_, err = NewPipeline(store, entryRepo, provider, WithEnrichTimeout(0))
	assert.Error(t, err)
}

func TestIngest_BatchWithBackgroundEnrichment(t *testing.T) {
	f := setupPipeline(t, knownAnswers)
	ctx := context.Background()

	var streamed []string
	var mu sync.Mutex
	var updates []Update
	batch, err := f.pipeline.Ingest(ctx, "milk, eggs", &IngestOptions{
		OnEntry: func(entry *core.GroceryEntry) {
			streamed = append(streamed, entry.Name)
		},
		OnUpdate: func(u Update, _ *core.GroceryEntry) {
			mu.Lock()
			updates = append(updates, u)
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	require.Len(t, batch.Entries, 2)
	assert.NotEmpty(t, batch.ID)
	assert.Equal(t, []string{"milk", "eggs"}, streamed)

	for i, entry := range batch.Entries {
		assert.NotEmpty(t, entry.ID)
		assert.Equal(t, batch.ID, entry.BatchID)
		assert.Equal(t, core.CategoryDairy, entry.Category, "static rules place %s in dairy", entry.Name)
		assert.Equal(t, core.ConfidenceHigh, entry.Confidence)
		if i > 0 {
			assert.Greater(t, entry.Position, batch.Entries[i-1].Position)
		}
	}

	f.pipeline.Wait()

	assert.Equal(t, 2, f.enricher.CallCount())
	assert.Equal(t, []string{"eggs", "milk"}, f.enricher.Names())
	assert.Len(t, updates, 2)
	assert.Empty(t, f.store.Pending())

	milk, err := f.entries.GetEntry(ctx, batch.Entries[0].ID)
	require.NoError(t, err)
	require.NotNil(t, milk.StorageAdvice)
	assert.Equal(t, "Refrigerate at or below 4C.", *milk.StorageAdvice)
	assert.Equal(t, core.SourceAI, milk.ShelfLifeSource)
	days, ok := milk.ShelfLifeMidpoint()
	assert.True(t, ok)
	assert.Equal(t, 6, days)

	eggs, err := f.entries.GetEntry(ctx, batch.Entries[1].ID)
	require.NoError(t, err)
	require.NotNil(t, eggs.StorageAdvice)
	assert.Equal(t, "Keep in the carton in the fridge.", *eggs.StorageAdvice)

	rec, err := f.store.Get(ctx, "milk")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, core.SourceAI, rec.Source)
	assert.Equal(t, core.CategoryDairy, rec.Category)
}

func TestIngest_CacheHitSkipsEnrichment(t *testing.T) {
	f := setupPipeline(t, knownAnswers)
	ctx := context.Background()

	_, err := f.store.Upsert(ctx, core.KnowledgeRecord{
		Name:             "Scallions",
		Category:         core.CategoryProduce,
		StorageAdvice:    ptr("Stand in a glass of water."),
		ShelfLifeDaysMin: ptr(7),
		ShelfLifeDaysMax: ptr(10),
		Source:           core.SourceSeed,
	})
	require.NoError(t, err)

	batch, err := f.pipeline.Ingest(ctx, "green onions", nil)
	require.NoError(t, err)
	require.Len(t, batch.Entries, 1)

	entry := batch.Entries[0]
	assert.Equal(t, "green onions", entry.NormalizedName)
	assert.Equal(t, core.CategoryProduce, entry.Category)
	assert.Equal(t, core.SourceSeed, entry.ShelfLifeSource)
	require.NotNil(t, entry.StorageAdvice)
	assert.Equal(t, "Stand in a glass of water.", *entry.StorageAdvice)

	f.pipeline.Wait()
	assert.Zero(t, f.enricher.CallCount())
}

func TestIngest_CachedCategoryOverridesStaticRules(t *testing.T) {
	f := setupPipeline(t, knownAnswers)
	ctx := context.Background()

	_, err := f.store.Upsert(ctx, core.KnowledgeRecord{Name: "milk", Category: core.CategorySpecialty, Source: core.SourceUser})
	require.NoError(t, err)

	batch, err := f.pipeline.Ingest(ctx, "Milk", nil)
	require.NoError(t, err)
	assert.Equal(t, core.CategorySpecialty, batch.Entries[0].Category)
}

func TestIngest_EmptyInput(t *testing.T) {
	f := setupPipeline(t, knownAnswers)
	ctx := context.Background()

	for _, text := range []string{"", "   ", "\n\n"} {
		batch, err := f.pipeline.Ingest(ctx, text, nil)
		assert.ErrorIs(t, err, core.ErrEmptyInput)
		assert.Nil(t, batch)
	}

	_, err := f.pipeline.IngestParsed(ctx, []core.ParsedIngredient{{Name: "  "}}, nil)
	assert.ErrorIs(t, err, core.ErrEmptyInput)

	all, err := f.entries.ListEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestIngest_EnrichmentFailureIsSwallowed(t *testing.T) {
	f := setupPipeline(t, func(ctx context.Context, name string) (*core.KnowledgeRecord, error) {
		return nil, ai.ErrTimeout
	})
	ctx := context.Background()

	batch, err := f.pipeline.Ingest(ctx, "quinoa", nil)
	require.NoError(t, err)
	f.pipeline.Wait()

	assert.Equal(t, 1, f.enricher.CallCount())
	assert.False(t, f.store.IsPending("quinoa"))

	entry, err := f.entries.GetEntry(ctx, batch.Entries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, batch.Entries[0].Category, entry.Category)
	assert.Nil(t, entry.StorageAdvice)
	assert.Equal(t, core.SourceNone, entry.ShelfLifeSource)

	rec, err := f.store.Get(ctx, "quinoa")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestIngest_InvalidEnrichmentIsDiscarded(t *testing.T) {
	f := setupPipeline(t, func(ctx context.Context, name string) (*core.KnowledgeRecord, error) {
		return &core.KnowledgeRecord{Name: name, Category: core.Category("snacks")}, nil
	})
	ctx := context.Background()

	batch, err := f.pipeline.Ingest(ctx, "pretzels", nil)
	require.NoError(t, err)
	f.pipeline.Wait()

	entry, err := f.entries.GetEntry(ctx, batch.Entries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, batch.Entries[0].Category, entry.Category)

	rec, err := f.store.Get(ctx, "pretzels")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestIngest_PendingUntilEnrichmentCompletes(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	f := setupPipeline(t, func(ctx context.Context, name string) (*core.KnowledgeRecord, error) {
		started <- struct{}{}
		<-release
		return knownAnswers(ctx, name)
	})
	ctx := context.Background()

	_, err := f.pipeline.Ingest(ctx, "milk", nil)
	require.NoError(t, err)
	assert.True(t, f.store.IsPending("milk"))

	<-started
	close(release)
	f.pipeline.Wait()
	assert.False(t, f.store.IsPending("milk"))
}

func TestIngest_DeletedEntryDiscardsUpdate(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	f := setupPipeline(t, func(ctx context.Context, name string) (*core.KnowledgeRecord, error) {
		started <- struct{}{}
		<-release
		return knownAnswers(ctx, name)
	})
	ctx := context.Background()

	var updates int
	batch, err := f.pipeline.Ingest(ctx, "milk", &IngestOptions{
		OnUpdate: func(Update, *core.GroceryEntry) { updates++ },
	})
	require.NoError(t, err)

	<-started
	require.NoError(t, f.entries.DeleteEntries(ctx, batch.Entries[0].ID))
	close(release)
	f.pipeline.Wait()

	assert.Zero(t, updates)
	_, err = f.entries.GetEntry(ctx, batch.Entries[0].ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Knowledge is still learned for the next ingestion.
	rec, err := f.store.Get(ctx, "milk")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, core.SourceAI, rec.Source)
}

func TestIngest_RepeatedNameEnrichedOnce(t *testing.T) {
	f := setupPipeline(t, knownAnswers)
	ctx := context.Background()

	batch, err := f.pipeline.Ingest(ctx, "milk, whole milk, Milk", nil)
	require.NoError(t, err)
	require.Len(t, batch.Entries, 3)
	f.pipeline.Wait()

	assert.Equal(t, []string{"milk", "whole milk"}, f.enricher.Names())

	first, err := f.entries.GetEntry(ctx, batch.Entries[0].ID)
	require.NoError(t, err)
	third, err := f.entries.GetEntry(ctx, batch.Entries[2].ID)
	require.NoError(t, err)
	assert.Equal(t, core.SourceAI, first.ShelfLifeSource)
	assert.Equal(t, core.SourceAI, third.ShelfLifeSource)
}

func TestIngest_SecondIngestionHitsLearnedKnowledge(t *testing.T) {
	f := setupPipeline(t, knownAnswers)
	ctx := context.Background()

	_, err := f.pipeline.Ingest(ctx, "eggs", nil)
	require.NoError(t, err)
	f.pipeline.Wait()
	require.Equal(t, 1, f.enricher.CallCount())

	batch, err := f.pipeline.Ingest(ctx, "eggs", nil)
	require.NoError(t, err)
	f.pipeline.Wait()

	assert.Equal(t, 1, f.enricher.CallCount())
	assert.Equal(t, core.SourceAI, batch.Entries[0].ShelfLifeSource)
	require.NotNil(t, batch.Entries[0].StorageAdvice)
}

func TestIngest_ComplexInputUsesFreeformParser(t *testing.T) {
	f := setupPipeline(t, knownAnswers)
	f.parser.ParseFreeformFunc = func(ctx context.Context, text string) ([]ai.FreeformItem, error) {
		return []ai.FreeformItem{{Name: "chicken thighs", Quantity: ptr("about 2 lbs")}}, nil
	}

	batch, err := f.pipeline.Ingest(context.Background(), "chicken thighs about 2 lbs", nil)
	require.NoError(t, err)
	require.Len(t, batch.Entries, 1)

	entry := batch.Entries[0]
	assert.Equal(t, "chicken thighs", entry.Name)
	assert.Equal(t, core.ConfidenceMedium, entry.Confidence)
	assert.Equal(t, core.CategoryMeat, entry.Category)
	require.NotNil(t, entry.Quantity)
	assert.Equal(t, "about 2 lbs", *entry.Quantity)
}

func TestIngestParsed_RecipeIngredients(t *testing.T) {
	f := setupPipeline(t, knownAnswers)
	ts := time.Date(2025, 3, 14, 9, 26, 53, 589793238, time.UTC)

	batch, err := f.pipeline.IngestParsed(context.Background(), []core.ParsedIngredient{
		{Name: "all-purpose flour", Quantity: ptr("2 cups")},
		{Name: "unsalted butter", Quantity: ptr("1/2 cup")},
		{Name: ""},
		{Name: "baking soda"},
	}, &IngestOptions{Timestamp: ts})
	require.NoError(t, err)
	require.Len(t, batch.Entries, 3)

	assert.Equal(t, "all-purpose flour", batch.Entries[0].Name)
	assert.Equal(t, "2 cups", *batch.Entries[0].Quantity)
	assert.Equal(t, core.CategoryDairy, batch.Entries[1].Category)
	assert.Nil(t, batch.Entries[2].Quantity)
	for _, e := range batch.Entries {
		assert.Equal(t, core.ConfidenceHigh, e.Confidence)
		assert.Equal(t, ts.Truncate(time.Microsecond), e.CreatedAt)
	}
}

func TestRecategorize(t *testing.T) {
	f := setupPipeline(t, knownAnswers)
	ctx := context.Background()

	batch, err := f.pipeline.Ingest(ctx, "milk", nil)
	require.NoError(t, err)
	f.pipeline.Wait()

	entry, err := f.pipeline.Recategorize(ctx, batch.Entries[0].ID, core.CategorySpecialty)
	require.NoError(t, err)
	assert.Equal(t, core.CategorySpecialty, entry.Category)
	assert.Equal(t, core.SourceUser, entry.ShelfLifeSource)
	require.NotNil(t, entry.StorageAdvice, "enriched advice survives the edit")

	rec, err := f.store.Get(ctx, "milk")
	require.NoError(t, err)
	assert.Equal(t, core.CategorySpecialty, rec.Category)
	assert.Equal(t, core.SourceUser, rec.Source)

	again, err := f.pipeline.Ingest(ctx, "milk", nil)
	require.NoError(t, err)
	assert.Equal(t, core.CategorySpecialty, again.Entries[0].Category)
}

func TestRecategorize_Errors(t *testing.T) {
	f := setupPipeline(t, knownAnswers)
	ctx := context.Background()

	_, err := f.pipeline.Recategorize(ctx, "missing", core.CategoryProduce)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	batch, err := f.pipeline.Ingest(ctx, "milk", nil)
	require.NoError(t, err)
	_, err = f.pipeline.Recategorize(ctx, batch.Entries[0].ID, core.Category("snacks"))
	assert.ErrorIs(t, err, core.ErrInvalidCategory)

	entry, err := f.pipeline.Recategorize(ctx, batch.Entries[0].ID, core.CategoryFruits)
	require.NoError(t, err)
	assert.Equal(t, core.CategoryProduce, entry.Category)
}

type recordingMonitor struct {
	mu        sync.Mutex
	started   []int
	tiers     []classify.Tier
	committed []int
	scheduled []string
	succeeded []string
	failed    []string
}

func (m *recordingMonitor) IngestStarted(items int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, items)
}

func (m *recordingMonitor) EntryCreated(_ *core.GroceryEntry, tier classify.Tier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiers = append(m.tiers, tier)
}

func (m *recordingMonitor) BatchCommitted(entries int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = append(m.committed, entries)
}

func (m *recordingMonitor) EnrichmentScheduled(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduled = append(m.scheduled, name)
}

func (m *recordingMonitor) EnrichmentSucceeded(name string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.succeeded = append(m.succeeded, name)
}

func (m *recordingMonitor) EnrichmentFailed(name string, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, name)
}

func TestIngest_Monitor(t *testing.T) {
	monitor := &recordingMonitor{}
	f := setupPipeline(t, knownAnswers, WithMonitor(monitor))

	_, err := f.pipeline.Ingest(context.Background(), "milk, xyzzy", nil)
	require.NoError(t, err)
	f.pipeline.Wait()

	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	assert.Equal(t, []int{2}, monitor.started)
	assert.Equal(t, []classify.Tier{classify.TierExact, classify.TierDefault}, monitor.tiers)
	assert.Equal(t, []int{2}, monitor.committed)
	assert.Equal(t, []string{"milk", "xyzzy"}, monitor.scheduled)
	assert.Equal(t, []string{"milk"}, monitor.succeeded)
	assert.Equal(t, []string{"xyzzy"}, monitor.failed)
}

func TestIngest_ReleasedPoolStillClearsPending(t *testing.T) {
	f := setupPipeline(t, knownAnswers)
	f.pipeline.Release()

	_, err := f.pipeline.Ingest(context.Background(), "milk", nil)
	require.NoError(t, err)
	f.pipeline.Wait()

	assert.Zero(t, f.enricher.CallCount())
	assert.False(t, f.store.IsPending("milk"))
}

func TestIngest_CommitFailure(t *testing.T) {
	f := setupPipeline(t, knownAnswers)
	failing := &failingEntries{EntryRepository: f.entries, err: errors.New("disk full")}
	p, err := NewPipeline(f.store, failing, mock.NewMockProvider())
	require.NoError(t, err)
	defer p.Release()

	_, err = p.Ingest(context.Background(), "milk", nil)
	assert.ErrorContains(t, err, "disk full")
	assert.False(t, f.store.IsPending("milk"), "nothing is scheduled for an uncommitted batch")
}

type failingEntries struct {
	storage.EntryRepository
	err error
}

func (f *failingEntries) AddEntries(ctx context.Context, entries ...*core.GroceryEntry) ([]*core.GroceryEntry, error) {
	return nil, f.err
}

func TestIngest_ClosedStorageDropsEnrichmentQuietly(t *testing.T) {
	f := setupPipeline(t, knownAnswers)
	closed := &closedEntries{EntryRepository: f.entries}

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	monitor := &recordingMonitor{}
	p, err := NewPipeline(f.store, closed, mock.NewMockProvider(),
		WithLogger(logger), WithMonitor(monitor), WithRateLimit(rate.Inf, 1))
	require.NoError(t, err)
	defer p.Release()

	_, err = p.Ingest(context.Background(), "xyzzy", nil)
	require.NoError(t, err)
	p.Wait()

	assert.Contains(t, logs.String(), "storage closed, dropping enrichment")
	assert.NotContains(t, logs.String(), "level=WARN")
	assert.NotContains(t, logs.String(), "level=ERROR")
	assert.False(t, f.store.IsPending("xyzzy"))

	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	assert.Equal(t, []string{"xyzzy"}, monitor.succeeded)
}

// closedEntries commits batches but fails every later write as a closed store would.
type closedEntries struct {
	storage.EntryRepository
}

func (c *closedEntries) ModifyEntry(ctx context.Context, id string, fn storage.EntryFunc) (*core.GroceryEntry, error) {
	return nil, fmt.Errorf("modify entry %s: %w", id, storage.ErrStorageClosed)
}
