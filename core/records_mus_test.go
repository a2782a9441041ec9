package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnowledgeRecordMUS_RoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name   string
		record KnowledgeRecord
	}{
		{
			name:   "absent optionals",
			record: KnowledgeRecord{Name: "milk", Category: CategoryDairy, Source: SourceSeed, UpdatedAt: now},
		},
		{
			name: "zero shelf life is kept distinct from absent",
			record: KnowledgeRecord{
				Name: "lettuce", Category: CategoryProduce, Source: SourceAI, UpdatedAt: now,
				StorageAdvice: strPtr(""), ShelfLifeDaysMin: intPtr(0), ShelfLifeDaysMax: intPtr(0),
			},
		},
		{
			name: "full record",
			record: KnowledgeRecord{
				Name: "green onions", Category: CategoryProduce, Source: SourceUser, UpdatedAt: now,
				StorageAdvice: strPtr("Stand in water in the fridge"), ShelfLifeDaysMin: intPtr(7), ShelfLifeDaysMax: intPtr(14),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, KnowledgeRecordMUS.Size(tt.record))
			n := KnowledgeRecordMUS.Marshal(tt.record, buf)
			require.Equal(t, len(buf), n)

			decoded, m, err := KnowledgeRecordMUS.Unmarshal(buf)
			require.NoError(t, err)
			assert.Equal(t, n, m)
			assert.Equal(t, tt.record.Name, decoded.Name)
			assert.Equal(t, tt.record.Category, decoded.Category)
			assert.Equal(t, tt.record.Source, decoded.Source)
			assert.Equal(t, tt.record.StorageAdvice, decoded.StorageAdvice)
			assert.Equal(t, tt.record.ShelfLifeDaysMin, decoded.ShelfLifeDaysMin)
			assert.Equal(t, tt.record.ShelfLifeDaysMax, decoded.ShelfLifeDaysMax)
			assert.True(t, tt.record.UpdatedAt.Equal(decoded.UpdatedAt))
		})
	}
}

func TestGroceryEntryMUS_RoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	entry := GroceryEntry{
		ID:              "0b7c3a1e-5d0f-4d4b-9a53-2f0c1d9f6a10",
		BatchID:         "batch-1",
		Position:        42,
		Name:            "Ground Beef",
		NormalizedName:  "ground beef",
		Quantity:        strPtr("2 lbs"),
		Confidence:      ConfidenceHigh,
		Category:        CategoryMeat,
		ShelfLifeSource: SourceNone,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	buf := make([]byte, GroceryEntryMUS.Size(entry))
	GroceryEntryMUS.Marshal(entry, buf)

	decoded, _, err := GroceryEntryMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, decoded.ID)
	assert.Equal(t, entry.Position, decoded.Position)
	assert.Equal(t, entry.Quantity, decoded.Quantity)
	assert.Nil(t, decoded.StorageAdvice)
	assert.Nil(t, decoded.ShelfLifeDaysMin)
	assert.Equal(t, entry.Confidence, decoded.Confidence)
	assert.Equal(t, entry.Category, decoded.Category)
	assert.True(t, entry.CreatedAt.Equal(decoded.CreatedAt))
}

func TestRecordMUS_Truncated(t *testing.T) {
	_, _, err := KnowledgeRecordMUS.Unmarshal([]byte{})
	assert.Error(t, err)

	entry := GroceryEntry{ID: "x", Name: "milk", Category: CategoryDairy}
	buf := make([]byte, GroceryEntryMUS.Size(entry))
	GroceryEntryMUS.Marshal(entry, buf)
	_, _, err = GroceryEntryMUS.Unmarshal(buf[:len(buf)/2])
	assert.Error(t, err)
}
