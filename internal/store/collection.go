package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Collection provides generic CRUD operations for any domain type.
// Records are stored as JSON under prefix+id. Secondary indexes come in
// two flavors: unique (one record per value) and multi (many records
// per value).
type Collection[T any] struct {
	store   *Store
	prefix  string
	unique  []uniqueIndex[T]
	multi   []multiIndex[T]
}

type uniqueIndex[T any] struct {
	name            string
	keyGen          func(*T) []string
	lookupTransform func(string) string // Optional transformation for lookups
}

type multiIndex[T any] struct {
	name   string
	keyGen func(*T) []string
}

// NewCollection creates a new Collection instance for type T.
func NewCollection[T any](s *Store, prefix string) *Collection[T] {
	return &Collection[T]{
		store:  s,
		prefix: prefix,
	}
}

// WithUniqueIndex adds a unique secondary index. Creating or updating a
// record whose index value is already taken fails with ErrIndexConflict.
func (c *Collection[T]) WithUniqueIndex(name string, keyGen func(*T) []string) *Collection[T] {
	c.unique = append(c.unique, uniqueIndex[T]{name: name, keyGen: keyGen})
	return c
}

// WithUniqueIndexTransform adds a unique index whose lookup values pass
// through transform first, enabling case-insensitive lookups.
func (c *Collection[T]) WithUniqueIndexTransform(name string, keyGen func(*T) []string, lookupTransform func(string) string) *Collection[T] {
	c.unique = append(c.unique, uniqueIndex[T]{name: name, keyGen: keyGen, lookupTransform: lookupTransform})
	return c
}

// WithMultiIndex adds a multi-valued secondary index. Many records may
// share the same index value; use ListByIndex to enumerate them.
func (c *Collection[T]) WithMultiIndex(name string, keyGen func(*T) []string) *Collection[T] {
	c.multi = append(c.multi, multiIndex[T]{name: name, keyGen: keyGen})
	return c
}

func (c *Collection[T]) uniqueKey(name, value string) []byte {
	return []byte(c.prefix + "idx:" + name + ":" + value)
}

// multiKey embeds the record ID so many records can share one value.
func (c *Collection[T]) multiKey(name, value, id string) []byte {
	return []byte(c.prefix + "midx:" + name + ":" + value + "\x00" + id)
}

func (c *Collection[T]) multiScanPrefix(name, value string) []byte {
	return []byte(c.prefix + "midx:" + name + ":" + value + "\x00")
}

// Create stores a new record under the given ID.
// Returns ErrAlreadyExists if the ID is taken, ErrIndexConflict if a
// unique index value is taken.
func (c *Collection[T]) Create(ctx context.Context, id string, record *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(c.prefix + id)

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	return c.store.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check existing key: %w", err)
		}

		for _, idx := range c.unique {
			for _, value := range idx.keyGen(record) {
				idxKey := c.uniqueKey(idx.name, value)
				_, err := txn.Get(idxKey)
				if err == nil {
					return fmt.Errorf("index %s conflict on %q: %w", idx.name, value, ErrIndexConflict)
				}
				if !errors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("failed to check index key: %w", err)
				}
			}
		}

		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}

		return c.writeIndexKeys(txn, id, record)
	})
}

// Get retrieves a record by ID.
// Returns ErrNotFound if the record does not exist.
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var record T
	err := c.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(c.prefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get key: %w", err)
		}

		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &record); err != nil {
				return fmt.Errorf("failed to unmarshal record: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// GetByIndex retrieves a record by unique secondary index.
// If the index has a lookup transform, it is applied to the value first.
func (c *Collection[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	transformedValue := value
	for _, idx := range c.unique {
		if idx.name == indexName && idx.lookupTransform != nil {
			transformedValue = idx.lookupTransform(value)
			break
		}
	}

	var id string
	err := c.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.uniqueKey(indexName, transformedValue))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return c.Get(ctx, id)
}

// ListByIndex returns all records whose multi-valued index matches value.
func (c *Collection[T]) ListByIndex(ctx context.Context, indexName, value string) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ids []string
	err := c.store.db.View(func(txn *badger.Txn) error {
		scanPrefix := c.multiScanPrefix(indexName, value)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = scanPrefix
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(scanPrefix); it.ValidForPrefix(scanPrefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				ids = append(ids, string(val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	records := make([]*T, 0, len(ids))
	for _, id := range ids {
		record, err := c.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue // index entry raced a delete
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Update replaces an existing record, maintaining index entries.
// Returns ErrNotFound if the record does not exist.
func (c *Collection[T]) Update(ctx context.Context, id string, record *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(c.prefix + id)

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	return c.store.db.Update(func(txn *badger.Txn) error {
		var old T
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get existing key: %w", err)
		}

		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &old)
		})
		if err != nil {
			return fmt.Errorf("failed to unmarshal old record: %w", err)
		}

		if err := c.deleteIndexKeys(txn, id, &old); err != nil {
			return err
		}

		// Check new unique values, ignoring ones the old record held.
		for _, idx := range c.unique {
			oldValues := make(map[string]bool)
			for _, v := range idx.keyGen(&old) {
				oldValues[v] = true
			}
			for _, value := range idx.keyGen(record) {
				if oldValues[value] {
					continue
				}
				idxKey := c.uniqueKey(idx.name, value)
				_, err := txn.Get(idxKey)
				if err == nil {
					return fmt.Errorf("index %s conflict on %q: %w", idx.name, value, ErrIndexConflict)
				}
				if !errors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("failed to check index key: %w", err)
				}
			}
		}

		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}

		return c.writeIndexKeys(txn, id, record)
	})
}

// Delete removes a record and its index entries.
// Returns ErrNotFound if the record does not exist.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(c.prefix + id)

	return c.store.db.Update(func(txn *badger.Txn) error {
		var record T
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get key: %w", err)
		}

		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
		if err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}

		if err := c.deleteIndexKeys(txn, id, &record); err != nil {
			return err
		}

		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}
		return nil
	})
}

// List returns an iterator over all records in the collection.
func (c *Collection[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		_ = c.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(c.prefix)
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek([]byte(c.prefix)); it.ValidForPrefix([]byte(c.prefix)); it.Next() {
				if ctx.Err() != nil {
					yield(nil, ctx.Err())
					return ctx.Err()
				}

				// Skip index keys.
				key := string(it.Item().Key())
				remainder := key[len(c.prefix):]
				if strings.HasPrefix(remainder, "idx:") || strings.HasPrefix(remainder, "midx:") {
					continue
				}

				var record T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &record)
				})
				if err != nil {
					yield(nil, err)
					return err
				}

				if !yield(&record, nil) {
					return nil // Consumer stopped early
				}
			}

			return nil
		})
	}
}

func (c *Collection[T]) writeIndexKeys(txn *badger.Txn, id string, record *T) error {
	for _, idx := range c.unique {
		for _, value := range idx.keyGen(record) {
			if err := txn.Set(c.uniqueKey(idx.name, value), []byte(id)); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
	}
	for _, idx := range c.multi {
		for _, value := range idx.keyGen(record) {
			if err := txn.Set(c.multiKey(idx.name, value, id), []byte(id)); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
	}
	return nil
}

func (c *Collection[T]) deleteIndexKeys(txn *badger.Txn, id string, record *T) error {
	for _, idx := range c.unique {
		for _, value := range idx.keyGen(record) {
			if err := txn.Delete(c.uniqueKey(idx.name, value)); err != nil {
				return fmt.Errorf("failed to delete index key: %w", err)
			}
		}
	}
	for _, idx := range c.multi {
		for _, value := range idx.keyGen(record) {
			if err := txn.Delete(c.multiKey(idx.name, value, id)); err != nil {
				return fmt.Errorf("failed to delete index key: %w", err)
			}
		}
	}
	return nil
}
