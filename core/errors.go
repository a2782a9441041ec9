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

package core

import "errors"

// Domain validation errors
var (
	// ErrEmptyInput indicates there was nothing to ingest after trimming.
	ErrEmptyInput = errors.New("input is empty")

	// ErrInvalidKnowledgeRecord indicates a KnowledgeRecord failed validation.
	ErrInvalidKnowledgeRecord = errors.New("invalid knowledge record")

	// ErrInvalidEntry indicates a GroceryEntry failed validation.
	ErrInvalidEntry = errors.New("invalid grocery entry")

	// ErrInvalidCategory indicates a value outside the Category enumeration.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrInvalidSource indicates a value outside the Source enumeration.
	ErrInvalidSource = errors.New("invalid source")

	// ErrEmptyName indicates the name field is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrInvalidShelfLife indicates a negative or inverted shelf-life range.
	ErrInvalidShelfLife = errors.New("invalid shelf life range")
)
