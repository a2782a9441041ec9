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

import "fmt"

// ValidateKnowledgeRecord validates a KnowledgeRecord according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - Category must be a known category
//   - Source must be seed, user or ai
//   - Shelf-life bounds, when present, must be non-negative and ordered
//
// NOT validated:
//   - UpdatedAt (set by the store on every write)
func ValidateKnowledgeRecord(record *KnowledgeRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidKnowledgeRecord)
	}

	if record.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidKnowledgeRecord, ErrEmptyName)
	}

	if !record.Category.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidKnowledgeRecord, ErrInvalidCategory, record.Category)
	}

	if !record.Source.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidKnowledgeRecord, ErrInvalidSource, record.Source)
	}

	if err := ValidateShelfLife(record.ShelfLifeDaysMin, record.ShelfLifeDaysMax); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKnowledgeRecord, err)
	}

	return nil
}

// ValidateEntry validates a GroceryEntry before it is committed.
func ValidateEntry(entry *GroceryEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if entry.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidEntry)
	}

	if entry.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyName)
	}

	if !entry.Category.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidEntry, ErrInvalidCategory, entry.Category)
	}

	if err := ValidateShelfLife(entry.ShelfLifeDaysMin, entry.ShelfLifeDaysMax); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}

	return nil
}

// ValidateShelfLife checks an optional day range.
func ValidateShelfLife(lo, hi *int) error {
	if lo != nil && *lo < 0 {
		return fmt.Errorf("%w: min %d", ErrInvalidShelfLife, *lo)
	}
	if hi != nil && *hi < 0 {
		return fmt.Errorf("%w: max %d", ErrInvalidShelfLife, *hi)
	}
	if lo != nil && hi != nil && *lo > *hi {
		return fmt.Errorf("%w: min %d > max %d", ErrInvalidShelfLife, *lo, *hi)
	}
	return nil
}
