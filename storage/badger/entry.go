package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/poiesic/grocer/core"
	"github.com/poiesic/grocer/storage"
)

// EntryRepository implements storage.EntryRepository for BadgerDB.
type EntryRepository struct {
	backend *Backend
	posSeq  *badger.Sequence
}

var _ storage.EntryRepository = (*EntryRepository)(nil)

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(backend *Backend) (*EntryRepository, error) {
	posSeq, err := backend.GetSequence(entryPositionSeq)
	if err != nil {
		return nil, err
	}

	return &EntryRepository{
		backend: backend,
		posSeq:  posSeq,
	}, nil
}

// Close releases the position sequence.
func (r *EntryRepository) Close() error {
	return r.posSeq.Release()
}

// AddEntries stores a batch of entries in one transaction.
func (r *EntryRepository) AddEntries(ctx context.Context, entries ...*core.GroceryEntry) ([]*core.GroceryEntry, error) {
	if len(entries) == 0 {
		return entries, nil
	}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := storageNow()
		for _, entry := range entries {
			if entry.ID == "" {
				entry.ID = uuid.NewString()
			}
			key := makeEntryKey(entry.ID)
			if _, err := tx.Get(key); err == nil {
				return fmt.Errorf("entry %s: %w", entry.ID, storage.ErrDuplicateKey)
			} else if err != badger.ErrKeyNotFound {
				return err
			}

			pos, err := r.nextPosition()
			if err != nil {
				return err
			}
			entry.Position = pos
			if entry.CreatedAt.IsZero() {
				entry.CreatedAt = now
			}
			if entry.UpdatedAt.IsZero() {
				entry.UpdatedAt = entry.CreatedAt
			}
			entry.CreatedAt = entry.CreatedAt.UTC().Truncate(time.Microsecond)
			entry.UpdatedAt = entry.UpdatedAt.UTC().Truncate(time.Microsecond)

			if err := tx.Set(key, storage.MarshalEntry(entry)); err != nil {
				return err
			}
			if err := tx.Set(makeEntryOrderKey(pos), []byte(entry.ID)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return entries, err
}

// UpdateEntries overwrites existing entries.
func (r *EntryRepository) UpdateEntries(ctx context.Context, entries ...*core.GroceryEntry) ([]*core.GroceryEntry, error) {
	err := r.backend.WithRetry(func(tx *badger.Txn) error {
		now := storageNow()
		for _, entry := range entries {
			old, err := readEntry(tx, entry.ID)
			if err != nil {
				return err
			}
			if old == nil {
				return fmt.Errorf("entry %s: %w", entry.ID, storage.ErrNotFound)
			}

			entry.Position = old.Position
			entry.CreatedAt = old.CreatedAt
			entry.UpdatedAt = now
			if err := tx.Set(makeEntryKey(entry.ID), storage.MarshalEntry(entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	})

	return entries, err
}

// DeleteEntries removes entries and their position index.
func (r *EntryRepository) DeleteEntries(ctx context.Context, ids ...string) error {
	return r.backend.WithRetry(func(tx *badger.Txn) error {
		for _, id := range ids {
			entry, err := readEntry(tx, id)
			if err != nil {
				return err
			}
			if entry == nil {
				return fmt.Errorf("entry %s: %w", id, storage.ErrNotFound)
			}

			if err := tx.Delete(makeEntryOrderKey(entry.Position)); err != nil {
				return err
			}
			if err := tx.Delete(makeEntryKey(id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// GetEntry retrieves a single entry by ID.
func (r *EntryRepository) GetEntry(ctx context.Context, id string) (*core.GroceryEntry, error) {
	var result *core.GroceryEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readEntry(tx, id)
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("entry %s: %w", id, storage.ErrNotFound)
		}
		return nil
	}, false)
	return result, err
}

// GetEntries retrieves entries by ID, skipping missing ones.
func (r *EntryRepository) GetEntries(ctx context.Context, ids ...string) ([]*core.GroceryEntry, error) {
	var result []*core.GroceryEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			entry, err := readEntry(tx, id)
			if err != nil {
				return err
			}
			if entry != nil {
				result = append(result, entry)
			}
		}
		return nil
	}, false)
	return result, err
}

// ListEntries returns all entries in position order.
func (r *EntryRepository) ListEntries(ctx context.Context) ([]*core.GroceryEntry, error) {
	var results []*core.GroceryEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefixOf(entryOrderPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id string
			if err := iter.Item().Value(func(val []byte) error {
				id = string(val)
				return nil
			}); err != nil {
				return err
			}

			entry, err := readEntry(tx, id)
			if err != nil {
				return err
			}
			if entry != nil {
				results = append(results, entry)
			}
		}
		return nil
	}, false)

	return results, err
}

// ModifyEntry applies fn to the stored entry inside a single write transaction.
// ID, Position and CreatedAt cannot be changed by fn.
func (r *EntryRepository) ModifyEntry(ctx context.Context, id string, fn storage.EntryFunc) (*core.GroceryEntry, error) {
	var result *core.GroceryEntry
	err := r.backend.WithRetry(func(tx *badger.Txn) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry, err := readEntry(tx, id)
		if err != nil {
			return err
		}
		if entry == nil {
			return fmt.Errorf("entry %s: %w", id, storage.ErrNotFound)
		}

		position, createdAt := entry.Position, entry.CreatedAt
		if err := fn(entry); err != nil {
			return err
		}
		entry.ID, entry.Position, entry.CreatedAt = id, position, createdAt
		entry.UpdatedAt = storageNow()

		if err := tx.Set(makeEntryKey(id), storage.MarshalEntry(entry)); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		result = entry
		return nil
	})
	return result, err
}

// nextPosition returns the next non-zero position from the sequence.
func (r *EntryRepository) nextPosition() (uint64, error) {
	pos, err := r.posSeq.Next()
	if err != nil {
		return 0, err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if pos == 0 {
		return r.posSeq.Next()
	}
	return pos, nil
}

// readEntry returns nil, nil when the entry doesn't exist.
func readEntry(tx *badger.Txn, id string) (*core.GroceryEntry, error) {
	item, err := tx.Get(makeEntryKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entry *core.GroceryEntry
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		entry, unmarshalErr = storage.UnmarshalEntry(val)
		return unmarshalErr
	})
	return entry, err
}

// storageNow matches the microsecond precision timestamps are persisted with.
func storageNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
