package reenrich

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/grocer/ai"
	"github.com/poiesic/grocer/ai/mock"
	"github.com/poiesic/grocer/core"
	"github.com/poiesic/grocer/knowledge"
	"github.com/poiesic/grocer/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func setupStore(t *testing.T, records ...core.KnowledgeRecord) *knowledge.Store {
	t.Helper()

	knowledgeRepo, entryRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		entryRepo.Close()
		knowledgeRepo.Close()
		backend.Close()
	})

	store, err := knowledge.NewStore(knowledgeRepo)
	require.NoError(t, err)
	for _, rec := range records {
		_, err := store.Upsert(context.Background(), rec)
		require.NoError(t, err)
	}
	return store
}

func testConfig() *Config {
	return &Config{
		BatchSize:      2,
		ReportInterval: 1,
		MaxRetries:     3,
		RetryDelay:     time.Millisecond,
		RateLimit:      rate.Inf,
	}
}

var sampleRecords = []core.KnowledgeRecord{
	{Name: "apples", Category: core.CategoryProduce, Source: core.SourceSeed},
	{Name: "bread", Category: core.CategoryBakery, Source: core.SourceSeed},
	{Name: "milk", Category: core.CategoryDairy, Source: core.SourceAI},
	{Name: "saffron", Category: core.CategorySpecialty, Source: core.SourceUser},
	{Name: "tofu", Category: core.CategoryProduce, Source: core.SourceSeed},
}

func TestRecordIterator_Batches(t *testing.T) {
	store := setupStore(t, sampleRecords...)

	var batches [][]string
	err := NewRecordIterator(store, 2).ForEach(context.Background(), func(records []*core.KnowledgeRecord) error {
		var names []string
		for _, r := range records {
			names = append(names, r.Name)
		}
		batches = append(batches, names)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"apples", "bread"}, {"milk", "saffron"}, {"tofu"}}, batches)
}

func TestRecordIterator_SourceFilter(t *testing.T) {
	store := setupStore(t, sampleRecords...)

	records, err := NewRecordIterator(store, 0, core.SourceSeed).Records(context.Background())
	require.NoError(t, err)

	var names []string
	for _, r := range records {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"apples", "bread", "tofu"}, names)
}

func TestRecordIterator_StopsOnError(t *testing.T) {
	store := setupStore(t, sampleRecords...)
	boom := errors.New("boom")

	calls := 0
	err := NewRecordIterator(store, 1).ForEach(context.Background(), func([]*core.KnowledgeRecord) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRecordIterator_CanceledContext(t *testing.T) {
	store := setupStore(t, sampleRecords...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRecordIterator(store, 1).ForEach(ctx, func([]*core.KnowledgeRecord) error {
		t.Fatal("should not be called")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewReenricher_Validation(t *testing.T) {
	store := setupStore(t)
	enricher := mock.NewMockEnricher()

	_, err := NewReenricher(nil, enricher, nil, nil)
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewReenricher(store, nil, nil, nil)
	assert.ErrorIs(t, err, ErrEnricherRequired)

	_, err = NewReenricher(store, enricher, &Config{MaxRetries: 0}, nil)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)

	r, err := NewReenricher(store, enricher, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().BatchSize, r.iterator.batchSize)
}

func TestReenricher_RefreshesAll(t *testing.T) {
	store := setupStore(t, sampleRecords...)
	enricher := mock.NewMockEnricher()
	enricher.EnrichFunc = func(ctx context.Context, name string) (*core.KnowledgeRecord, error) {
		advice := "fresh advice for " + name
		return &core.KnowledgeRecord{Name: "ignored", Category: core.CategoryPantry, StorageAdvice: &advice}, nil
	}

	var out bytes.Buffer
	r, err := NewReenricher(store, enricher, testConfig(), &out)
	require.NoError(t, err)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 5, summary.Refreshed)
	assert.Zero(t, summary.Failed)
	assert.Contains(t, out.String(), "Refreshing 5 knowledge records")
	assert.Contains(t, out.String(), "5 refreshed, 0 failed")

	rec, err := store.Get(context.Background(), "tofu")
	require.NoError(t, err)
	assert.Equal(t, core.CategoryPantry, rec.Category)
	assert.Equal(t, core.SourceAI, rec.Source)
	require.NotNil(t, rec.StorageAdvice)
	assert.Equal(t, "fresh advice for tofu", *rec.StorageAdvice)
}

func TestReenricher_SeedOnly(t *testing.T) {
	store := setupStore(t, sampleRecords...)
	enricher := mock.NewMockEnricher()

	config := testConfig()
	config.Sources = []core.Source{core.SourceSeed}
	r, err := NewReenricher(store, enricher, config, nil)
	require.NoError(t, err)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Refreshed)
	assert.Equal(t, []string{"apples", "bread", "tofu"}, enricher.Names())

	rec, err := store.Get(context.Background(), "saffron")
	require.NoError(t, err)
	assert.Equal(t, core.SourceUser, rec.Source, "user knowledge is left alone")
}

func TestReenricher_RetriesAndCountsFailures(t *testing.T) {
	store := setupStore(t, sampleRecords[:3]...)
	attempts := map[string]int{}
	enricher := mock.NewMockEnricher()
	enricher.EnrichFunc = func(ctx context.Context, name string) (*core.KnowledgeRecord, error) {
		attempts[name]++
		switch name {
		case "apples":
			if attempts[name] < 2 {
				return nil, ai.ErrTimeout
			}
		case "bread":
			return nil, ai.ErrServiceUnavailable
		}
		return &core.KnowledgeRecord{Name: name, Category: core.CategoryOther}, nil
	}

	r, err := NewReenricher(store, enricher, testConfig(), nil)
	require.NoError(t, err)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Refreshed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, map[string]int{"apples": 2, "bread": 3, "milk": 1}, attempts)

	rec, err := store.Get(context.Background(), "bread")
	require.NoError(t, err)
	assert.Equal(t, core.CategoryBakery, rec.Category, "failed names keep their record")
}

func TestReenricher_InvalidResultNotRetried(t *testing.T) {
	store := setupStore(t, sampleRecords[0])
	enricher := mock.NewMockEnricher()
	enricher.EnrichFunc = func(ctx context.Context, name string) (*core.KnowledgeRecord, error) {
		return &core.KnowledgeRecord{Name: name, Category: core.Category("snacks")}, nil
	}

	r, err := NewReenricher(store, enricher, testConfig(), nil)
	require.NoError(t, err)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, enricher.CallCount())
}

func TestReenricher_Empty(t *testing.T) {
	var out bytes.Buffer
	r, err := NewReenricher(setupStore(t), mock.NewMockEnricher(), testConfig(), &out)
	require.NoError(t, err)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
	assert.Contains(t, out.String(), "No knowledge records")
}

func TestReenricher_Canceled(t *testing.T) {
	store := setupStore(t, sampleRecords...)
	ctx, cancel := context.WithCancel(context.Background())
	enricher := mock.NewMockEnricher()
	enricher.EnrichFunc = func(_ context.Context, name string) (*core.KnowledgeRecord, error) {
		cancel()
		return nil, ai.ErrTimeout
	}

	r, err := NewReenricher(store, enricher, testConfig(), nil)
	require.NoError(t, err)

	_, err = r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, enricher.CallCount())
}
