package openai

import (
	"context"
	"errors"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// fakeLLM is an llms.Model returning canned responses in order; the last one repeats.
type fakeLLM struct {
	mu        sync.Mutex
	responses []string
	err       error
	block     bool
	calls     int
	inputs    []string
}

func (f *fakeLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	if len(messages) > 1 {
		if part, ok := messages[1].Parts[0].(llms.TextContent); ok {
			f.inputs = append(f.inputs, part.Text)
		}
	}
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return &llms.ContentResponse{}, nil
	}
	r := f.responses[min(n, len(f.responses))-1]
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: r}}}, nil
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
