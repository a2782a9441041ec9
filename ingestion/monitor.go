package ingestion

import (
	"time"

	"github.com/poiesic/grocer/classify"
	"github.com/poiesic/grocer/core"
)

// Monitor provides hooks to observe ingestion and background enrichment.
// Enrichment hooks are called from worker goroutines.
type Monitor interface {
	IngestStarted(items int)
	EntryCreated(entry *core.GroceryEntry, tier classify.Tier)
	BatchCommitted(entries int, elapsed time.Duration)
	EnrichmentScheduled(name string)
	EnrichmentSucceeded(name string, elapsed time.Duration)
	EnrichmentFailed(name string, err error)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) IngestStarted(_ int)                                {}
func (n *noopMonitor) EntryCreated(_ *core.GroceryEntry, _ classify.Tier) {}
func (n *noopMonitor) BatchCommitted(_ int, _ time.Duration)              {}
func (n *noopMonitor) EnrichmentScheduled(_ string)                       {}
func (n *noopMonitor) EnrichmentSucceeded(_ string, _ time.Duration)      {}
func (n *noopMonitor) EnrichmentFailed(_ string, _ error)                 {}
