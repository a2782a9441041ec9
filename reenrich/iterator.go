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

package reenrich

import (
	"context"
	"slices"

	"github.com/poiesic/grocer/core"
)

const (
	// DefaultBatchSize is the default number of records handed to each batch callback
	DefaultBatchSize = 100
)

// KnowledgeLister is the read side needed to walk stored knowledge.
type KnowledgeLister interface {
	List(ctx context.Context) ([]*core.KnowledgeRecord, error)
}

// RecordIterator walks stored knowledge records in name order, in batches.
type RecordIterator struct {
	lister    KnowledgeLister
	batchSize int
	sources   []core.Source
}

// NewRecordIterator creates an iterator. When sources is non-empty only records
// from those sources are visited.
func NewRecordIterator(lister KnowledgeLister, batchSize int, sources ...core.Source) *RecordIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &RecordIterator{
		lister:    lister,
		batchSize: batchSize,
		sources:   sources,
	}
}

// Records returns every record the iterator would visit.
func (it *RecordIterator) Records(ctx context.Context) ([]*core.KnowledgeRecord, error) {
	records, err := it.lister.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(it.sources) == 0 {
		return records, nil
	}
	return slices.DeleteFunc(records, func(r *core.KnowledgeRecord) bool {
		return !slices.Contains(it.sources, r.Source)
	}), nil
}

// ForEach calls fn for each batch of matching records.
// Iteration stops on the first error from fn; context cancellation is checked between batches.
func (it *RecordIterator) ForEach(ctx context.Context, fn func([]*core.KnowledgeRecord) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	records, err := it.Records(ctx)
	if err != nil {
		return err
	}

	for batch := range slices.Chunk(records, it.batchSize) {
		if err := fn(batch); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}
