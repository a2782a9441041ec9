// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Enricher, ai.FreeformParser,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	record, err := mockProvider.Enricher().Enrich(ctx, "milk")
//
//	// Custom behavior injection
//	enricher := mock.NewMockEnricher()
//	enricher.EnrichFunc = func(ctx context.Context, name string) (*core.KnowledgeRecord, error) {
//	    return nil, ai.ErrTimeout
//	}
//
//	// Check call counts
//	count := enricher.CallCount()
//
// # Default Behavior
//
//   - MockEnricher: returns CategoryOther with storage advice derived from the name
//   - MockFreeformParser: returns the whole text as a single item
//   - MockProvider: aggregates mock enricher and parser
//
// Mocks are safe for concurrent use because the ingestion pipeline calls them
// from worker goroutines.
package mock
