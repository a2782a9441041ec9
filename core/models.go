package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier used for storage keys.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Source identifies where knowledge about an item came from.
type Source string

const (
	// SourceNone marks an entry with no storage or shelf-life data.
	SourceNone Source = ""
	// SourceSeed is bundled or operator-loaded seed data.
	SourceSeed Source = "seed"
	// SourceUser is an explicit user edit.
	SourceUser Source = "user"
	// SourceAI is the result of background enrichment.
	SourceAI Source = "ai"
)

// Valid reports whether s may be stored on a KnowledgeRecord.
func (s Source) Valid() bool {
	return s == SourceSeed || s == SourceUser || s == SourceAI
}

// Confidence tags which parsing tier produced a ParsedIngredient.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ParsedIngredient is one (name, quantity) pair segmented from raw input.
type ParsedIngredient struct {
	Name       string
	Quantity   *string // nil when the input carried no quantity
	Confidence Confidence
}

// KnowledgeRecord is cached category and storage knowledge for a normalized name.
type KnowledgeRecord struct {
	Name             string // normalized name, unique key
	Category         Category
	StorageAdvice    *string
	ShelfLifeDaysMin *int
	ShelfLifeDaysMax *int
	Source           Source
	UpdatedAt        time.Time
}

// ShelfLifeMidpoint returns the middle of the shelf-life range in days.
// ok is false when neither bound is known. A single known bound is returned as is.
func (r *KnowledgeRecord) ShelfLifeMidpoint() (days int, ok bool) {
	return shelfLifeMidpoint(r.ShelfLifeDaysMin, r.ShelfLifeDaysMax)
}

// Clone returns a deep copy so callers cannot mutate cached state.
func (r *KnowledgeRecord) Clone() *KnowledgeRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.StorageAdvice = cloneString(r.StorageAdvice)
	c.ShelfLifeDaysMin = cloneInt(r.ShelfLifeDaysMin)
	c.ShelfLifeDaysMax = cloneInt(r.ShelfLifeDaysMax)
	return &c
}

// GroceryEntry is a list item created by one ingestion event.
type GroceryEntry struct {
	ID               string // UUID, assigned before the batch is committed
	BatchID          string
	Position         uint64 // commit order, assigned by storage
	Name             string // display name as parsed
	NormalizedName   string
	Quantity         *string
	Confidence       Confidence
	Category         Category
	StorageAdvice    *string
	ShelfLifeDaysMin *int
	ShelfLifeDaysMax *int
	ShelfLifeSource  Source
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ApplyKnowledge copies category and storage data from a knowledge record.
func (e *GroceryEntry) ApplyKnowledge(r *KnowledgeRecord) {
	if r == nil {
		return
	}
	e.Category = r.Category.Canonical()
	e.StorageAdvice = cloneString(r.StorageAdvice)
	e.ShelfLifeDaysMin = cloneInt(r.ShelfLifeDaysMin)
	e.ShelfLifeDaysMax = cloneInt(r.ShelfLifeDaysMax)
	e.ShelfLifeSource = r.Source
}

// ShelfLifeMidpoint returns the middle of the entry's shelf-life range in days.
func (e *GroceryEntry) ShelfLifeMidpoint() (days int, ok bool) {
	return shelfLifeMidpoint(e.ShelfLifeDaysMin, e.ShelfLifeDaysMax)
}

func shelfLifeMidpoint(lo, hi *int) (int, bool) {
	switch {
	case lo != nil && hi != nil:
		return (*lo + *hi) / 2, true
	case lo != nil:
		return *lo, true
	case hi != nil:
		return *hi, true
	}
	return 0, false
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
