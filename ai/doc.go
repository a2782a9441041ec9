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

// Package ai provides abstractions for the AI capabilities used by grocer.
//
// Two capabilities sit behind interfaces so the ingestion pipeline never
// depends on a particular model or transport:
//
//   - Enricher: returns category, storage advice and shelf life for an item
//   - FreeformParser: splits hard-to-parse text into (name, quantity) pairs
//   - AIProvider: aggregates both for convenient initialization
//
// Every failure wraps one of ErrServiceUnavailable, ErrInvalidResponse or
// ErrTimeout so callers can tell them apart with errors.Is.
//
// # Implementation Packages
//
//   - ai/openai: implementation using OpenAI-compatible chat APIs
//   - ai/mock: test doubles for unit testing without external dependencies
//
// Public constructors in ai/openai return interface types. Mock constructors
// return concrete types so tests can inject behavior and count calls.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	record, err := provider.Enricher().Enrich(ctx, "kohlrabi")
//	items, err := provider.FreeformParser().ParseFreeform(ctx, "a couple pounds of ground beef")
package ai
