// Package ingestion turns one raw ingestion event into committed grocery entries.
//
// The Pipeline parses the text, classifies every item against stored knowledge
// and the static rules, and commits the resulting entries as one batch. Items
// that missed the knowledge cache are enriched in the background on a worker
// pool; results are written to the knowledge store and applied to the entries
// that are still present. Enrichment failures are logged and never fail the
// ingestion event.
package ingestion
