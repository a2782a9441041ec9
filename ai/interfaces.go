package ai

import (
	"context"

	"github.com/poiesic/grocer/core"
)

// Enricher looks up authoritative category and storage data for an item.
// Implementations must be thread-safe for concurrent use.
type Enricher interface {
	// Enrich returns knowledge for a normalized item name. The returned record
	// has Name set to the argument; Source and UpdatedAt are left to the caller.
	// Errors wrap ErrServiceUnavailable, ErrInvalidResponse or ErrTimeout.
	Enrich(ctx context.Context, name string) (*core.KnowledgeRecord, error)
}

// FreeformParser splits text that deterministic parsing could not handle.
// Implementations must be thread-safe for concurrent use.
type FreeformParser interface {
	// ParseFreeform returns the items found in text, in order.
	// Returns an empty slice if nothing was found.
	// Errors wrap ErrServiceUnavailable, ErrInvalidResponse or ErrTimeout.
	ParseFreeform(ctx context.Context, text string) ([]FreeformItem, error)
}

// FreeformItem is one item returned by a FreeformParser.
type FreeformItem struct {
	// Name is the item without its quantity. Example: "ground beef"
	Name string

	// Quantity is the amount as written, nil when none was given. Example: "2 lbs"
	Quantity *string
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Enricher returns the enrichment service.
	// The returned Enricher is safe for concurrent use.
	Enricher() Enricher

	// FreeformParser returns the free-form parsing service.
	// The returned FreeformParser is safe for concurrent use.
	FreeformParser() FreeformParser

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
