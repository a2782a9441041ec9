package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for persisted records. Timestamps are stored as Unix
// microseconds; optional fields carry a presence flag.

var (
	KnowledgeRecordMUS = knowledgeRecordMUS{}
	GroceryEntryMUS    = groceryEntryMUS{}
)

type knowledgeRecordMUS struct{}

func (knowledgeRecordMUS) Size(v KnowledgeRecord) (size int) {
	size += ord.String.Size(v.Name)
	size += ord.String.Size(string(v.Category))
	size += optStringSize(v.StorageAdvice)
	size += optIntSize(v.ShelfLifeDaysMin)
	size += optIntSize(v.ShelfLifeDaysMax)
	size += ord.String.Size(string(v.Source))
	return size + timeSize(v.UpdatedAt)
}

func (knowledgeRecordMUS) Marshal(v KnowledgeRecord, bs []byte) (n int) {
	n = ord.String.Marshal(v.Name, bs)
	n += ord.String.Marshal(string(v.Category), bs[n:])
	n += optStringMarshal(v.StorageAdvice, bs[n:])
	n += optIntMarshal(v.ShelfLifeDaysMin, bs[n:])
	n += optIntMarshal(v.ShelfLifeDaysMax, bs[n:])
	n += ord.String.Marshal(string(v.Source), bs[n:])
	return n + timeMarshal(v.UpdatedAt, bs[n:])
}

func (knowledgeRecordMUS) Unmarshal(bs []byte) (v KnowledgeRecord, n int, err error) {
	var n1 int
	var s string
	if v.Name, n1, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	n += n1
	if s, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	v.Category = Category(s)
	n += n1
	if v.StorageAdvice, n1, err = optStringUnmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.ShelfLifeDaysMin, n1, err = optIntUnmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.ShelfLifeDaysMax, n1, err = optIntUnmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if s, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	v.Source = Source(s)
	n += n1
	if v.UpdatedAt, n1, err = timeUnmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

type groceryEntryMUS struct{}

func (groceryEntryMUS) Size(v GroceryEntry) (size int) {
	size += ord.String.Size(v.ID)
	size += ord.String.Size(v.BatchID)
	size += varint.Uint64.Size(v.Position)
	size += ord.String.Size(v.Name)
	size += ord.String.Size(v.NormalizedName)
	size += optStringSize(v.Quantity)
	size += ord.String.Size(string(v.Confidence))
	size += ord.String.Size(string(v.Category))
	size += optStringSize(v.StorageAdvice)
	size += optIntSize(v.ShelfLifeDaysMin)
	size += optIntSize(v.ShelfLifeDaysMax)
	size += ord.String.Size(string(v.ShelfLifeSource))
	size += timeSize(v.CreatedAt)
	return size + timeSize(v.UpdatedAt)
}

func (groceryEntryMUS) Marshal(v GroceryEntry, bs []byte) (n int) {
	n = ord.String.Marshal(v.ID, bs)
	n += ord.String.Marshal(v.BatchID, bs[n:])
	n += varint.Uint64.Marshal(v.Position, bs[n:])
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.String.Marshal(v.NormalizedName, bs[n:])
	n += optStringMarshal(v.Quantity, bs[n:])
	n += ord.String.Marshal(string(v.Confidence), bs[n:])
	n += ord.String.Marshal(string(v.Category), bs[n:])
	n += optStringMarshal(v.StorageAdvice, bs[n:])
	n += optIntMarshal(v.ShelfLifeDaysMin, bs[n:])
	n += optIntMarshal(v.ShelfLifeDaysMax, bs[n:])
	n += ord.String.Marshal(string(v.ShelfLifeSource), bs[n:])
	n += timeMarshal(v.CreatedAt, bs[n:])
	return n + timeMarshal(v.UpdatedAt, bs[n:])
}

func (groceryEntryMUS) Unmarshal(bs []byte) (v GroceryEntry, n int, err error) {
	var n1 int
	var s string
	if v.ID, n1, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	n += n1
	if v.BatchID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Position, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Name, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.NormalizedName, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Quantity, n1, err = optStringUnmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if s, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	v.Confidence = Confidence(s)
	n += n1
	if s, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	v.Category = Category(s)
	n += n1
	if v.StorageAdvice, n1, err = optStringUnmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.ShelfLifeDaysMin, n1, err = optIntUnmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.ShelfLifeDaysMax, n1, err = optIntUnmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if s, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	v.ShelfLifeSource = Source(s)
	n += n1
	if v.CreatedAt, n1, err = timeUnmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.UpdatedAt, n1, err = timeUnmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func optStringSize(s *string) int {
	if s == nil {
		return ord.Bool.Size(false)
	}
	return ord.Bool.Size(true) + ord.String.Size(*s)
}

func optStringMarshal(s *string, bs []byte) (n int) {
	n = ord.Bool.Marshal(s != nil, bs)
	if s != nil {
		n += ord.String.Marshal(*s, bs[n:])
	}
	return
}

func optStringUnmarshal(bs []byte) (*string, int, error) {
	present, n, err := ord.Bool.Unmarshal(bs)
	if err != nil || !present {
		return nil, n, err
	}
	s, n1, err := ord.String.Unmarshal(bs[n:])
	if err != nil {
		return nil, n + n1, err
	}
	return &s, n + n1, nil
}

func optIntSize(i *int) int {
	if i == nil {
		return ord.Bool.Size(false)
	}
	return ord.Bool.Size(true) + varint.Int64.Size(int64(*i))
}

func optIntMarshal(i *int, bs []byte) (n int) {
	n = ord.Bool.Marshal(i != nil, bs)
	if i != nil {
		n += varint.Int64.Marshal(int64(*i), bs[n:])
	}
	return
}

func optIntUnmarshal(bs []byte) (*int, int, error) {
	present, n, err := ord.Bool.Unmarshal(bs)
	if err != nil || !present {
		return nil, n, err
	}
	v, n1, err := varint.Int64.Unmarshal(bs[n:])
	if err != nil {
		return nil, n + n1, err
	}
	i := int(v)
	return &i, n + n1, nil
}

func timeSize(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func timeMarshal(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func timeUnmarshal(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}
