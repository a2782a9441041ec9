package mock

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/poiesic/grocer/ai"
)

// MockFreeformParser is a test double for ai.FreeformParser.
type MockFreeformParser struct {
	// ParseFreeformFunc is called by ParseFreeform if set.
	// If nil, the trimmed text is returned as a single item.
	ParseFreeformFunc func(ctx context.Context, text string) ([]ai.FreeformItem, error)

	callCount atomic.Int64
}

// NewMockFreeformParser creates a mock parser with default behavior.
func NewMockFreeformParser() *MockFreeformParser {
	return &MockFreeformParser{}
}

// ParseFreeform returns the items for text.
func (m *MockFreeformParser) ParseFreeform(ctx context.Context, text string) ([]ai.FreeformItem, error) {
	m.callCount.Add(1)

	if m.ParseFreeformFunc != nil {
		return m.ParseFreeformFunc(ctx, text)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return []ai.FreeformItem{}, nil
	}
	return []ai.FreeformItem{{Name: text}}, nil
}

// CallCount returns the number of times ParseFreeform was called.
func (m *MockFreeformParser) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom behavior.
func (m *MockFreeformParser) Reset() {
	m.callCount.Store(0)
	m.ParseFreeformFunc = nil
}
