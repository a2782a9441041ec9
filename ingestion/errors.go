package ingestion

import "errors"

var (
	// ErrKnowledgeStoreRequired is returned when a knowledge store is not provided.
	ErrKnowledgeStoreRequired = errors.New("knowledge store required")

	// ErrEntryRepositoryRequired is returned when an entry repository is not provided.
	ErrEntryRepositoryRequired = errors.New("entry repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")
)
