package storage

import (
	"context"

	"github.com/poiesic/grocer/core"
)

// Repository provides operations shared by all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close releases resources held by the repository. It does not close the backend.
	Close() error
}

// KnowledgeRepository persists knowledge records keyed by normalized name.
type KnowledgeRepository interface {
	Repository

	// GetKnowledge retrieves the record for a normalized name.
	// Returns ErrNotFound if no record exists.
	GetKnowledge(ctx context.Context, name string) (*core.KnowledgeRecord, error)

	// PutKnowledge inserts or fully overwrites records in a single transaction.
	PutKnowledge(ctx context.Context, records ...*core.KnowledgeRecord) error

	// ListKnowledge returns every record ordered by name.
	ListKnowledge(ctx context.Context) ([]*core.KnowledgeRecord, error)
}

// EntryFunc mutates an entry inside ModifyEntry.
// Returning an error aborts the modification.
type EntryFunc func(entry *core.GroceryEntry) error

// EntryRepository persists grocery list entries.
type EntryRepository interface {
	Repository

	// AddEntries stores all entries in one transaction, assigning each a Position
	// in argument order. Entries with an empty ID get a new UUID.
	// Sets CreatedAt and UpdatedAt if not already set.
	// Returns ErrDuplicateKey if an entry ID already exists.
	AddEntries(ctx context.Context, entries ...*core.GroceryEntry) ([]*core.GroceryEntry, error)

	// UpdateEntries overwrites existing entries. ID, Position and CreatedAt are preserved.
	// Returns ErrNotFound if any entry doesn't exist.
	UpdateEntries(ctx context.Context, entries ...*core.GroceryEntry) ([]*core.GroceryEntry, error)

	// DeleteEntries removes entries by ID.
	// Returns ErrNotFound if any entry doesn't exist.
	DeleteEntries(ctx context.Context, ids ...string) error

	// GetEntry retrieves a single entry.
	// Returns ErrNotFound if the entry doesn't exist.
	GetEntry(ctx context.Context, id string) (*core.GroceryEntry, error)

	// GetEntries retrieves entries by ID, skipping any that don't exist.
	GetEntries(ctx context.Context, ids ...string) ([]*core.GroceryEntry, error)

	// ListEntries returns all entries in commit order.
	ListEntries(ctx context.Context) ([]*core.GroceryEntry, error)

	// ModifyEntry atomically reads, mutates and writes one entry.
	// Returns ErrNotFound if the entry doesn't exist.
	ModifyEntry(ctx context.Context, id string, fn EntryFunc) (*core.GroceryEntry, error)
}
