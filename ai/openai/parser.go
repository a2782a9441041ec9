package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poiesic/grocer/ai"
	"github.com/tmc/langchaingo/llms"
)

// FreeformParser implements ai.FreeformParser using OpenAI-compatible chat APIs.
type FreeformParser struct {
	call   *jsonCall
	logger *slog.Logger
}

type parsedItem struct {
	Name     string  `json:"name"`
	Quantity *string `json:"quantity"`
}

type parsedList struct {
	Items []parsedItem `json:"items"`
}

func newFreeformParser(config *ai.Config, client llms.Model) *FreeformParser {
	logger := slog.Default().With("component", "openai-parser")
	return &FreeformParser{
		call: &jsonCall{
			client:      client,
			timeout:     config.Timeout,
			maxAttempts: config.MaxAttempts,
			logger:      logger,
		},
		logger: logger,
	}
}

// NewFreeformParser creates a new free-form parser using the provided configuration.
//
// Returns ai.FreeformParser interface to enforce abstraction.
func NewFreeformParser(config *ai.Config, opts ...Option) (ai.FreeformParser, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client, err := newClient(config, opts...)
	if err != nil {
		return nil, err
	}
	return newFreeformParser(config, client), nil
}

// ParseFreeform asks the model to split text into items.
// Items without a name are dropped.
func (p *FreeformParser) ParseFreeform(ctx context.Context, text string) ([]ai.FreeformItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []ai.FreeformItem{}, nil
	}

	var result parsedList
	err := p.call.run(ctx, buildParsePrompt(), text, func(s string) error {
		result = parsedList{}
		return json.Unmarshal([]byte(s), &result)
	})
	if err != nil {
		return nil, err
	}

	items := make([]ai.FreeformItem, 0, len(result.Items))
	for _, it := range result.Items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		items = append(items, ai.FreeformItem{
			Name:     name,
			Quantity: trimmedOrNil(it.Quantity),
		})
	}

	p.logger.Debug("parsed free-form text", "returned", len(result.Items), "kept", len(items))
	return items, nil
}
