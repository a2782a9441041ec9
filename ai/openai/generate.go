package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/grocer/ai"
	"github.com/tmc/langchaingo/llms"
)

// jsonCall runs one prompt against the model and hands the cleaned response to
// decode. A decode error triggers another attempt; a transport error does not.
type jsonCall struct {
	client      llms.Model
	timeout     time.Duration
	maxAttempts int
	logger      *slog.Logger
}

func (c *jsonCall) run(ctx context.Context, systemPrompt, input string, decode func(string) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(input)},
		},
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		response, err := c.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			c.logger.Error("failed to generate content", "attempt", attempt, "err", err)
			return transportError(ctx, err)
		}

		if len(response.Choices) < 1 {
			lastErr = errors.New("no choices returned from model")
			c.logger.Warn("empty model response", "attempt", attempt)
			continue
		}

		responseText := repairJSON(stripCodeFence(response.Choices[0].Content))
		if err := decode(responseText); err != nil {
			lastErr = err
			c.logger.Warn("error parsing model response",
				"attempt", attempt,
				"response", responseText,
				"err", err)
			continue
		}
		return nil
	}

	c.logger.Error("failed to parse model response after retries", "err", lastErr)
	return fmt.Errorf("%w: %w", ai.ErrInvalidResponse, lastErr)
}

// transportError maps a client failure onto the ai error kinds.
func transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ai.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ai.ErrServiceUnavailable, err)
}
