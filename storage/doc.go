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

// Package storage provides the persistence abstraction for grocer.
//
// Repositories decouple the ingestion pipeline from the storage engine. The
// badger subpackage is the bundled implementation; tests use its in-memory
// mode through badger.NewMemoryRepositories.
//
// # Repositories
//
//   - KnowledgeRepository: category and storage knowledge keyed by normalized name
//   - EntryRepository: grocery list entries, kept in commit order
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	knowledge := badger.NewKnowledgeRepository(backend)
//	entries, err := badger.NewEntryRepository(backend)
//
// # Thread Safety
//
// All repository implementations must be safe for concurrent use. Writes to
// different keys need no coordination; EntryRepository.ModifyEntry is atomic
// for a single entry.
package storage
