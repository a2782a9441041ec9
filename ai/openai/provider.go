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

package openai

import (
	"log/slog"
	"net/http"

	"github.com/poiesic/grocer/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// It manages enricher and free-form parser instances sharing one client.
type Provider struct {
	config   *ai.Config
	enricher *Enricher
	parser   *FreeformParser
	logger   *slog.Logger
}

// Option configures how the provider builds its client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	model      llms.Model
}

// WithHTTPClient sets the HTTP client used to reach the service.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLLM uses model directly instead of building an OpenAI client.
func WithLLM(model llms.Model) Option {
	return func(o *options) {
		o.model = model
	}
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config, opts ...Option) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := newClient(config, opts...)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:   config,
		enricher: newEnricher(config, client),
		parser:   newFreeformParser(config, client),
		logger:   slog.Default().With("component", "openai-provider"),
	}, nil
}

func newClient(config *ai.Config, opts ...Option) (llms.Model, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.model != nil {
		return o.model, nil
	}

	clientOpts := []openai.Option{
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token),
		openai.WithModel(config.Model),
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, openai.WithHTTPClient(o.httpClient))
	}
	return openai.New(clientOpts...)
}

// Enricher returns the enrichment service.
func (p *Provider) Enricher() ai.Enricher {
	return p.enricher
}

// FreeformParser returns the free-form parsing service.
func (p *Provider) FreeformParser() ai.FreeformParser {
	return p.parser
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
