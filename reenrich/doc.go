// Package reenrich refreshes stored knowledge records through the enricher.
//
// Re-enrichment is an operator action, typically run after switching models
// or to replace bundled seed data with model output. Records are read in
// batches, each name is enriched with retry and backoff, and successful
// results overwrite the stored record with source ai. A name that keeps
// failing is counted and skipped; the run continues with the next one.
package reenrich
