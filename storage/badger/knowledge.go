package badger

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/grocer/core"
	"github.com/poiesic/grocer/storage"
)

// KnowledgeRepository implements storage.KnowledgeRepository for BadgerDB.
type KnowledgeRepository struct {
	backend *Backend
}

var _ storage.KnowledgeRepository = (*KnowledgeRepository)(nil)

// NewKnowledgeRepository creates a new KnowledgeRepository.
func NewKnowledgeRepository(backend *Backend) *KnowledgeRepository {
	return &KnowledgeRepository{
		backend: backend,
	}
}

// Close is a no-op; the backend owns all resources.
func (r *KnowledgeRepository) Close() error {
	return nil
}

// GetKnowledge retrieves the record for a normalized name.
func (r *KnowledgeRepository) GetKnowledge(ctx context.Context, name string) (*core.KnowledgeRecord, error) {
	var result *core.KnowledgeRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readKnowledge(tx, name)
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("knowledge %q: %w", name, storage.ErrNotFound)
		}
		return nil
	}, false)
	return result, err
}

// PutKnowledge inserts or overwrites records.
func (r *KnowledgeRepository) PutKnowledge(ctx context.Context, records ...*core.KnowledgeRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.backend.WithRetry(func(tx *badger.Txn) error {
		for _, record := range records {
			if err := tx.Set(makeKnowledgeKey(record.Name), storage.MarshalKnowledgeRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// ListKnowledge returns every record ordered by name.
func (r *KnowledgeRepository) ListKnowledge(ctx context.Context) ([]*core.KnowledgeRecord, error) {
	var results []*core.KnowledgeRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefixOf(knowledgePrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.KnowledgeRecord
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalKnowledgeRecord(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, record)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.KnowledgeRecord) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return results, nil
}

// readKnowledge returns nil, nil when no record is stored under name.
func readKnowledge(tx *badger.Txn, name string) (*core.KnowledgeRecord, error) {
	item, err := tx.Get(makeKnowledgeKey(name))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.KnowledgeRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalKnowledgeRecord(val)
		return unmarshalErr
	})
	if err != nil {
		return nil, err
	}
	// Hash collision: the slot belongs to a different name.
	if record.Name != name {
		return nil, nil
	}
	return record, nil
}
