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

package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/poiesic/grocer/core"
	"github.com/poiesic/grocer/storage"
)

// Update is one enrichment result addressed to an entry.
type Update struct {
	EntryID string
	Name    string // normalized name that was enriched
	Record  *core.KnowledgeRecord
}

// enrichTask enriches one normalized name and updates every entry of the batch that carries it.
type enrichTask struct {
	name     string
	entryIDs []string
}

// missSet collects cache-missed names in first-seen order.
type missSet struct {
	order []string
	ids   map[string][]string
}

func newMissSet() *missSet {
	return &missSet{ids: make(map[string][]string)}
}

func (m *missSet) add(name, entryID string) {
	if _, ok := m.ids[name]; !ok {
		m.order = append(m.order, name)
	}
	m.ids[name] = append(m.ids[name], entryID)
}

func (m *missSet) len() int {
	return len(m.order)
}

func (m *missSet) tasks() []enrichTask {
	tasks := make([]enrichTask, len(m.order))
	for i, name := range m.order {
		tasks[i] = enrichTask{name: name, entryIDs: m.ids[name]}
	}
	return tasks
}

// schedule marks every task pending and hands it to the pool from a separate
// goroutine, so a saturated pool never blocks the caller.
func (p *Pipeline) schedule(tasks []enrichTask, onUpdate func(Update, *core.GroceryEntry)) {
	if len(tasks) == 0 {
		return
	}
	for _, t := range tasks {
		p.store.MarkPending(t.name)
		p.monitor.EnrichmentScheduled(t.name)
	}
	p.inflight.Add(len(tasks))

	go func() {
		for _, t := range tasks {
			err := p.pool.Submit(func() {
				defer p.inflight.Done()
				defer p.store.ClearPending(t.name)
				p.enrich(t, onUpdate)
			})
			if err != nil {
				p.logger.Error("error scheduling enrichment", "name", t.name, "err", err)
				p.store.ClearPending(t.name)
				p.monitor.EnrichmentFailed(t.name, err)
				p.inflight.Done()
			}
		}
	}()
}

// enrich runs one task to completion. Failures are logged and dropped.
func (p *Pipeline) enrich(t enrichTask, onUpdate func(Update, *core.GroceryEntry)) {
	ctx := context.Background()
	start := time.Now()

	v, err, shared := p.flights.Do(t.name, func() (any, error) {
		return p.fetch(ctx, t.name)
	})
	if err != nil {
		p.monitor.EnrichmentFailed(t.name, err)
		if errors.Is(err, storage.ErrStorageClosed) {
			p.logger.Debug("storage closed, dropping enrichment", "name", t.name)
			return
		}
		p.logger.Warn("enrichment failed", "name", t.name, "err", err)
		return
	}
	rec := v.(*core.KnowledgeRecord)
	p.monitor.EnrichmentSucceeded(t.name, time.Since(start))
	p.logger.Debug("enrichment complete", "name", t.name, "category", rec.Category, "shared", shared)

	for _, id := range t.entryIDs {
		u := Update{EntryID: id, Name: t.name, Record: rec}
		entry, err := p.apply(ctx, u)
		if errors.Is(err, storage.ErrStorageClosed) {
			p.logger.Debug("storage closed, dropping enrichment", "name", t.name)
			return
		}
		if err != nil {
			p.logger.Error("error applying enrichment", "entry", id, "name", t.name, "err", err)
			continue
		}
		if entry != nil && onUpdate != nil {
			onUpdate(u, entry)
		}
	}
}

// fetch calls the enricher under the rate limit and stores the result as AI knowledge.
func (p *Pipeline) fetch(ctx context.Context, name string) (*core.KnowledgeRecord, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	rec, err := p.enricher.Enrich(callCtx, name)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("enrich %q: empty result", name)
	}

	rec = rec.Clone()
	rec.Name = name
	rec.Source = core.SourceAI
	return p.store.Upsert(ctx, *rec)
}

// apply writes an update to its entry. A deleted entry makes it a no-op and
// returns a nil entry.
func (p *Pipeline) apply(ctx context.Context, u Update) (*core.GroceryEntry, error) {
	entry, err := p.entries.ModifyEntry(ctx, u.EntryID, func(e *core.GroceryEntry) error {
		e.ApplyKnowledge(u.Record)
		return nil
	})
	if errors.Is(err, storage.ErrNotFound) {
		p.logger.Debug("entry gone, discarding enrichment", "entry", u.EntryID, "name", u.Name)
		return nil, nil
	}
	return entry, err
}
