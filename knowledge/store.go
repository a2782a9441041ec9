package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/poiesic/grocer/core"
	"github.com/poiesic/grocer/normalize"
	"github.com/poiesic/grocer/storage"
)

const (
	lockStripes          = 64
	cacheCleanupInterval = 10 * time.Minute
)

// ErrRepositoryRequired is returned by NewStore when no repository is given.
var ErrRepositoryRequired = errors.New("knowledge repository is required")

// Store is safe for concurrent use.
type Store struct {
	repo   storage.KnowledgeRepository
	cache  *cache.Cache
	locks  [lockStripes]sync.Mutex
	logger *slog.Logger
	now    func() time.Time

	pendingMu sync.Mutex
	pending   map[string]int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a Store backed by repo.
func NewStore(repo storage.KnowledgeRepository, opts ...Option) (*Store, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	s := &Store{
		repo:    repo,
		cache:   cache.New(cache.NoExpiration, cacheCleanupInterval),
		logger:  slog.Default(),
		now:     time.Now,
		pending: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "knowledge")
	return s, nil
}

// Get returns the record for a normalized name, or (nil, nil) if none exists.
// The returned record is a copy.
func (s *Store) Get(ctx context.Context, name string) (*core.KnowledgeRecord, error) {
	if name == "" {
		return nil, nil
	}
	if v, ok := s.cache.Get(name); ok {
		return v.(*core.KnowledgeRecord).Clone(), nil
	}

	rec, err := s.repo.GetKnowledge(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get knowledge %q: %w", name, err)
	}
	// Add rather than Set: a concurrent Upsert may already have cached a newer record.
	_ = s.cache.Add(name, rec, cache.NoExpiration)
	return rec.Clone(), nil
}

// Upsert inserts or fully overwrites the record for record.Name.
// The name is normalized, the category made canonical and UpdatedAt set to now.
func (s *Store) Upsert(ctx context.Context, record core.KnowledgeRecord) (*core.KnowledgeRecord, error) {
	rec := record.Clone()
	rec.Name = normalize.Normalize(rec.Name)
	rec.Category = rec.Category.Canonical()
	if err := core.ValidateKnowledgeRecord(rec); err != nil {
		return nil, err
	}

	mu := s.lockFor(rec.Name)
	mu.Lock()
	defer mu.Unlock()
	return s.put(ctx, rec)
}

// put writes rec and refreshes the cache. Callers hold the stripe lock for rec.Name.
func (s *Store) put(ctx context.Context, rec *core.KnowledgeRecord) (*core.KnowledgeRecord, error) {
	rec.UpdatedAt = s.now().UTC().Truncate(time.Microsecond)
	if err := s.repo.PutKnowledge(ctx, rec); err != nil {
		return nil, fmt.Errorf("put knowledge %q: %w", rec.Name, err)
	}
	s.cache.Set(rec.Name, rec, cache.NoExpiration)
	s.logger.Debug("knowledge updated", "name", rec.Name, "category", rec.Category, "source", rec.Source)
	return rec.Clone(), nil
}

// List returns every stored record ordered by name.
func (s *Store) List(ctx context.Context) ([]*core.KnowledgeRecord, error) {
	return s.repo.ListKnowledge(ctx)
}

// MarkPending records that an enrichment for name has been scheduled.
func (s *Store) MarkPending(name string) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	s.pending[name]++
}

// ClearPending releases one MarkPending for name.
func (s *Store) ClearPending(name string) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	if n := s.pending[name]; n > 1 {
		s.pending[name] = n - 1
	} else {
		delete(s.pending, name)
	}
}

// IsPending reports whether any enrichment for name is in flight.
func (s *Store) IsPending(name string) bool {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	return s.pending[name] > 0
}

// Pending returns the names with enrichment in flight, sorted.
func (s *Store) Pending() []string {
	s.pendingMu.Lock()
	names := make([]string, 0, len(s.pending))
	for name := range s.pending {
		names = append(names, name)
	}
	s.pendingMu.Unlock()
	slices.Sort(names)
	return names
}

func (s *Store) lockFor(name string) *sync.Mutex {
	return &s.locks[uint64(core.IDFromContent(name))%lockStripes]
}
