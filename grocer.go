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

// Package grocer opens a grocery list database and builds the components that work on it.
package grocer

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/poiesic/grocer/ai"
	"github.com/poiesic/grocer/ai/openai"
	"github.com/poiesic/grocer/ingestion"
	"github.com/poiesic/grocer/knowledge"
	"github.com/poiesic/grocer/reenrich"
	"github.com/poiesic/grocer/storage"
	"github.com/poiesic/grocer/storage/badger"
)

type Database struct {
	backend       *badger.Backend
	knowledgeRepo storage.KnowledgeRepository
	entryRepo     storage.EntryRepository
	store         *knowledge.Store
	provider      ai.AIProvider
	logger        *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	inMemory bool
	logger   *slog.Logger
}

// WithAIConfig sets the configuration for the default LLM-backed provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithProvider uses provider instead of building one from the AI config.
// The database takes ownership and closes it.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps all data in memory. The path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// NewDatabase opens (or creates) the database at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.inMemory {
		filePath = ""
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	knowledgeRepo := badger.NewKnowledgeRepository(backend)
	entryRepo, err := badger.NewEntryRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	store, err := knowledge.NewStore(knowledgeRepo, knowledge.WithLogger(options.logger))
	if err != nil {
		entryRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			entryRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:       backend,
		knowledgeRepo: knowledgeRepo,
		entryRepo:     entryRepo,
		store:         store,
		provider:      provider,
		logger:        options.logger,
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	var errs []error
	if err := db.entryRepo.Close(); err != nil {
		db.logger.Error("error closing entry repository", "err", err)
		errs = append(errs, err)
	}
	if err := db.knowledgeRepo.Close(); err != nil {
		db.logger.Error("error closing knowledge repository", "err", err)
		errs = append(errs, err)
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (db *Database) KnowledgeStore() *knowledge.Store {
	return db.store
}

func (db *Database) EntryRepository() storage.EntryRepository {
	return db.entryRepo
}

func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

// SeedDefaults loads the bundled seed knowledge without overwriting existing records.
func (db *Database) SeedDefaults(ctx context.Context) (int, error) {
	records, err := knowledge.DefaultSeed()
	if err != nil {
		return 0, err
	}
	return db.store.Seed(ctx, records, false)
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithLogger(db.logger)}, opts...)
	return ingestion.NewPipeline(db.store, db.entryRepo, db.provider, opts...)
}

func (db *Database) NewReenricher(config *reenrich.Config, progress io.Writer) (*reenrich.Reenricher, error) {
	return reenrich.NewReenricher(db.store, db.provider.Enricher(), config, progress)
}
