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

package mock

import "github.com/poiesic/grocer/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock enricher and parser instances.
type MockProvider struct {
	enricher *MockEnricher
	parser   *MockFreeformParser
	closed   bool
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use GetMockEnricher()/GetMockParser() to access concrete types for test assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		enricher: NewMockEnricher(),
		parser:   NewMockFreeformParser(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(enricher *MockEnricher, parser *MockFreeformParser) *MockProvider {
	return &MockProvider{
		enricher: enricher,
		parser:   parser,
	}
}

// Enricher returns the mock enricher.
func (p *MockProvider) Enricher() ai.Enricher {
	return p.enricher
}

// FreeformParser returns the mock parser.
func (p *MockProvider) FreeformParser() ai.FreeformParser {
	return p.parser
}

// Close marks the provider closed.
func (p *MockProvider) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *MockProvider) Closed() bool {
	return p.closed
}

// GetMockEnricher returns the underlying mock enricher for test assertions.
func (p *MockProvider) GetMockEnricher() *MockEnricher {
	return p.enricher
}

// GetMockParser returns the underlying mock parser for test assertions.
func (p *MockProvider) GetMockParser() *MockFreeformParser {
	return p.parser
}
