package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/grocer/ai"
	"github.com/poiesic/grocer/core"
	"github.com/tmc/langchaingo/llms"
)

// Enricher implements ai.Enricher using OpenAI-compatible chat APIs.
type Enricher struct {
	call   *jsonCall
	logger *slog.Logger
}

// enrichment matches the JSON object the model is asked to produce.
type enrichment struct {
	Category         string  `json:"category"`
	StorageAdvice    *string `json:"storage_advice"`
	ShelfLifeDaysMin *int    `json:"shelf_life_days_min"`
	ShelfLifeDaysMax *int    `json:"shelf_life_days_max"`
}

func newEnricher(config *ai.Config, client llms.Model) *Enricher {
	logger := slog.Default().With("component", "openai-enricher")
	return &Enricher{
		call: &jsonCall{
			client:      client,
			timeout:     config.Timeout,
			maxAttempts: config.MaxAttempts,
			logger:      logger,
		},
		logger: logger,
	}
}

// NewEnricher creates a new enricher using the provided configuration.
//
// Returns ai.Enricher interface to enforce abstraction.
func NewEnricher(config *ai.Config, opts ...Option) (ai.Enricher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client, err := newClient(config, opts...)
	if err != nil {
		return nil, err
	}
	return newEnricher(config, client), nil
}

// Enrich asks the model for category, storage advice and shelf life of name.
func (e *Enricher) Enrich(ctx context.Context, name string) (*core.KnowledgeRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty item name", ai.ErrInvalidResponse)
	}

	var record *core.KnowledgeRecord
	err := e.call.run(ctx, buildEnrichPrompt(), name, func(text string) error {
		var result enrichment
		if err := json.Unmarshal([]byte(text), &result); err != nil {
			return err
		}
		rec, err := result.toRecord(name)
		if err != nil {
			return err
		}
		record = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("enriched item", "name", name, "category", record.Category)
	return record, nil
}

func (r enrichment) toRecord(name string) (*core.KnowledgeRecord, error) {
	category, err := core.ParseCategory(r.Category)
	if err != nil {
		return nil, fmt.Errorf("category %q: %w", r.Category, err)
	}
	if err := core.ValidateShelfLife(r.ShelfLifeDaysMin, r.ShelfLifeDaysMax); err != nil {
		return nil, err
	}
	return &core.KnowledgeRecord{
		Name:             name,
		Category:         category,
		StorageAdvice:    trimmedOrNil(r.StorageAdvice),
		ShelfLifeDaysMin: r.ShelfLifeDaysMin,
		ShelfLifeDaysMax: r.ShelfLifeDaysMax,
	}, nil
}
