package mock

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/poiesic/grocer/core"
)

// MockEnricher is a test double for ai.Enricher.
// Set EnrichFunc before the mock is shared between goroutines.
type MockEnricher struct {
	// EnrichFunc is called by Enrich if set.
	// If nil, uses default deterministic behavior.
	EnrichFunc func(ctx context.Context, name string) (*core.KnowledgeRecord, error)

	callCount atomic.Int64
	mu        sync.Mutex
	names     []string
}

// NewMockEnricher creates a mock enricher with default deterministic behavior.
func NewMockEnricher() *MockEnricher {
	return &MockEnricher{}
}

// Enrich returns a record for name.
func (m *MockEnricher) Enrich(ctx context.Context, name string) (*core.KnowledgeRecord, error) {
	m.callCount.Add(1)
	m.mu.Lock()
	m.names = append(m.names, name)
	m.mu.Unlock()

	if m.EnrichFunc != nil {
		return m.EnrichFunc(ctx, name)
	}

	advice := "mock storage advice for " + name
	return &core.KnowledgeRecord{
		Name:          name,
		Category:      core.CategoryOther,
		StorageAdvice: &advice,
	}, nil
}

// CallCount returns the number of times Enrich was called.
func (m *MockEnricher) CallCount() int {
	return int(m.callCount.Load())
}

// Names returns the names Enrich was called with, sorted.
func (m *MockEnricher) Names() []string {
	m.mu.Lock()
	names := slices.Clone(m.names)
	m.mu.Unlock()
	slices.Sort(names)
	return names
}

// Reset clears the call history and custom behavior.
func (m *MockEnricher) Reset() {
	m.callCount.Store(0)
	m.mu.Lock()
	m.names = nil
	m.mu.Unlock()
	m.EnrichFunc = nil
}
