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

import (
	"slices"
	"strings"
)

// Category is a store aisle. Values are persisted as their string form.
type Category string

const (
	CategoryProduce   Category = "produce"
	CategoryBakery    Category = "bakery"
	CategoryMeat      Category = "meat"
	CategoryDairy     Category = "dairy"
	CategoryPantry    Category = "pantry"
	CategoryFrozen    Category = "frozen"
	CategoryBeverages Category = "beverages"
	CategoryHousehold Category = "household"
	CategorySpecialty Category = "specialty"
	CategoryOther     Category = "other"

	// Legacy categories written by older clients. Both fold into Produce.
	CategoryFruits     Category = "fruits"
	CategoryVegetables Category = "vegetables"
)

// DisplayOrder is the aisle order used when presenting grouped entries.
// Legacy categories are not listed; they sort with Produce.
var DisplayOrder = []Category{
	CategoryProduce,
	CategoryBakery,
	CategoryMeat,
	CategoryDairy,
	CategoryPantry,
	CategoryFrozen,
	CategoryBeverages,
	CategoryHousehold,
	CategorySpecialty,
	CategoryOther,
}

// Canonical folds legacy categories into their current equivalent.
func (c Category) Canonical() Category {
	switch c {
	case CategoryFruits, CategoryVegetables:
		return CategoryProduce
	}
	return c
}

// Valid reports whether c is a known category, legacy values included.
func (c Category) Valid() bool {
	switch c {
	case CategoryFruits, CategoryVegetables:
		return true
	}
	return slices.Contains(DisplayOrder, c)
}

// Rank returns the position of c in DisplayOrder.
// Unknown categories rank with Other.
func (c Category) Rank() int {
	if i := slices.Index(DisplayOrder, c.Canonical()); i >= 0 {
		return i
	}
	return slices.Index(DisplayOrder, CategoryOther)
}

// DisplayName returns the title-cased aisle label.
func (c Category) DisplayName() string {
	s := string(c.Canonical())
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseCategory converts free text such as an LLM response or CLI flag into a
// canonical Category. Legacy names fold into Produce.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c.Canonical(), nil
}

// GroupByAisle buckets entries by canonical category and returns the buckets in
// DisplayOrder. Empty aisles are omitted; entry order within an aisle is kept.
func GroupByAisle(entries []*GroceryEntry) []AisleGroup {
	buckets := make(map[Category][]*GroceryEntry)
	for _, e := range entries {
		c := e.Category.Canonical()
		if !c.Valid() {
			c = CategoryOther
		}
		buckets[c] = append(buckets[c], e)
	}

	groups := make([]AisleGroup, 0, len(buckets))
	for _, c := range DisplayOrder {
		if items, ok := buckets[c]; ok {
			groups = append(groups, AisleGroup{Category: c, Entries: items})
		}
	}
	return groups
}

// AisleGroup is one aisle of a grouped list.
type AisleGroup struct {
	Category Category
	Entries  []*GroceryEntry
}
