package knowledge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/grocer/core"
	"github.com/poiesic/grocer/storage"
	"github.com/poiesic/grocer/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRepo wraps a repository and counts reads.
type countingRepo struct {
	storage.KnowledgeRepository
	gets   atomic.Int32
	getErr error
}

func (c *countingRepo) GetKnowledge(ctx context.Context, name string) (*core.KnowledgeRecord, error) {
	c.gets.Add(1)
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.KnowledgeRepository.GetKnowledge(ctx, name)
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *countingRepo) {
	t.Helper()
	knowledgeRepo, entryRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		knowledgeRepo.Close()
		entryRepo.Close()
		backend.Close()
	})

	repo := &countingRepo{KnowledgeRepository: knowledgeRepo}
	store, err := NewStore(repo, opts...)
	require.NoError(t, err)
	return store, repo
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestNewStore_RequiresRepository(t *testing.T) {
	_, err := NewStore(nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)
}

func TestGet_Absent(t *testing.T) {
	store, _ := newTestStore(t)

	rec, err := store.Get(context.Background(), "dragon fruit")
	require.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = store.Get(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestUpsert_ThenGet(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 123456789, time.UTC)
	store, _ := newTestStore(t, WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	saved, err := store.Upsert(ctx, core.KnowledgeRecord{
		Name:             "  Scallions ",
		Category:         core.CategoryVegetables,
		StorageAdvice:    strPtr("Refrigerate upright in water"),
		ShelfLifeDaysMin: intPtr(7),
		ShelfLifeDaysMax: intPtr(14),
		Source:           core.SourceAI,
	})
	require.NoError(t, err)
	assert.Equal(t, "green onions", saved.Name)
	assert.Equal(t, core.CategoryProduce, saved.Category)
	assert.Equal(t, fixed.Truncate(time.Microsecond), saved.UpdatedAt)

	got, err := store.Get(ctx, "green onions")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, saved, got)
}

func TestUpsert_Invalid(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, core.KnowledgeRecord{Name: "milk", Category: "snacks", Source: core.SourceAI})
	assert.ErrorIs(t, err, core.ErrInvalidKnowledgeRecord)

	_, err = store.Upsert(ctx, core.KnowledgeRecord{Name: "  ", Category: core.CategoryDairy, Source: core.SourceAI})
	assert.ErrorIs(t, err, core.ErrEmptyName)

	_, err = store.Upsert(ctx, core.KnowledgeRecord{Name: "milk", Category: core.CategoryDairy})
	assert.ErrorIs(t, err, core.ErrInvalidSource)
}

func TestUpsert_LastWriterWinsRegardlessOfSource(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, core.KnowledgeRecord{
		Name:             "milk",
		Category:         core.CategoryDairy,
		StorageAdvice:    strPtr("Refrigerate"),
		ShelfLifeDaysMin: intPtr(5),
		ShelfLifeDaysMax: intPtr(7),
		Source:           core.SourceUser,
	})
	require.NoError(t, err)

	_, err = store.Upsert(ctx, core.KnowledgeRecord{
		Name:     "milk",
		Category: core.CategoryBeverages,
		Source:   core.SourceSeed,
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, "milk")
	require.NoError(t, err)
	assert.Equal(t, core.CategoryBeverages, got.Category)
	assert.Equal(t, core.SourceSeed, got.Source)
	assert.Nil(t, got.StorageAdvice)
	assert.Nil(t, got.ShelfLifeDaysMin)
	assert.Nil(t, got.ShelfLifeDaysMax)
}

func TestGet_ServedFromCache(t *testing.T) {
	store, repo := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, repo.PutKnowledge(ctx, &core.KnowledgeRecord{
		Name: "bread", Category: core.CategoryBakery, Source: core.SourceSeed,
	}))

	for range 3 {
		rec, err := store.Get(ctx, "bread")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, core.CategoryBakery, rec.Category)
	}
	assert.Equal(t, int32(1), repo.gets.Load())
}

func TestGet_ReturnsCopies(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, core.KnowledgeRecord{
		Name: "milk", Category: core.CategoryDairy, StorageAdvice: strPtr("Refrigerate"), Source: core.SourceAI,
	})
	require.NoError(t, err)

	first, err := store.Get(ctx, "milk")
	require.NoError(t, err)
	*first.StorageAdvice = "Leave on the counter"
	first.Category = core.CategoryOther

	second, err := store.Get(ctx, "milk")
	require.NoError(t, err)
	assert.Equal(t, "Refrigerate", *second.StorageAdvice)
	assert.Equal(t, core.CategoryDairy, second.Category)
}

func TestGet_CacheCoherentAfterUpsert(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, core.KnowledgeRecord{Name: "kombucha", Category: core.CategorySpecialty, Source: core.SourceAI})
	require.NoError(t, err)
	rec, err := store.Get(ctx, "kombucha")
	require.NoError(t, err)
	assert.Equal(t, core.CategorySpecialty, rec.Category)

	_, err = store.Upsert(ctx, core.KnowledgeRecord{Name: "kombucha", Category: core.CategoryBeverages, Source: core.SourceUser})
	require.NoError(t, err)
	rec, err = store.Get(ctx, "kombucha")
	require.NoError(t, err)
	assert.Equal(t, core.CategoryBeverages, rec.Category)
}

func TestGet_RepositoryError(t *testing.T) {
	store, repo := newTestStore(t)
	repo.getErr = errors.New("disk gone")

	_, err := store.Get(context.Background(), "milk")
	assert.ErrorContains(t, err, "disk gone")
}

func TestUpsert_ConcurrentDifferentKeys(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 40 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Upsert(ctx, core.KnowledgeRecord{
				Name:             fmt.Sprintf("item %d", i),
				Category:         core.CategoryPantry,
				ShelfLifeDaysMin: intPtr(i),
				Source:           core.SourceAI,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	for i := range 40 {
		rec, err := store.Get(ctx, fmt.Sprintf("item %d", i))
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, i, *rec.ShelfLifeDaysMin)
	}
}

func TestUpsert_ConcurrentSameKeyNeverMixesFields(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Upsert(ctx, core.KnowledgeRecord{
				Name:             "milk",
				Category:         core.CategoryDairy,
				StorageAdvice:    strPtr(fmt.Sprintf("advice %d", i)),
				ShelfLifeDaysMin: intPtr(i),
				ShelfLifeDaysMax: intPtr(i),
				Source:           core.SourceAI,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := store.Get(ctx, "milk")
	require.NoError(t, err)
	winner := *rec.ShelfLifeDaysMin
	assert.Equal(t, winner, *rec.ShelfLifeDaysMax)
	assert.Equal(t, fmt.Sprintf("advice %d", winner), *rec.StorageAdvice)
}

func TestPending(t *testing.T) {
	store, _ := newTestStore(t)

	assert.False(t, store.IsPending("milk"))
	store.MarkPending("milk")
	store.MarkPending("milk")
	store.MarkPending("eggs")
	assert.True(t, store.IsPending("milk"))
	assert.Equal(t, []string{"eggs", "milk"}, store.Pending())

	store.ClearPending("milk")
	assert.True(t, store.IsPending("milk"), "second mark still outstanding")
	store.ClearPending("milk")
	assert.False(t, store.IsPending("milk"))
	store.ClearPending("milk")
	assert.Equal(t, []string{"eggs"}, store.Pending())
}

func TestList(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"milk", "bread"} {
		_, err := store.Upsert(ctx, core.KnowledgeRecord{Name: name, Category: core.CategoryOther, Source: core.SourceUser})
		require.NoError(t, err)
	}

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "bread", all[0].Name)
}
