package badger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"go.hackfix.me/hello/store"
)

// Badger is a Store backed by an embedded Badger database.
type Badger struct {
	db *badger.DB
}

var _ store.Store = &Badger{}

// Open opens the Badger database at path. If path is empty the database is
// kept in memory. A non-empty encKey enables AES encryption at rest, and must
// be 16, 24 or 32 bytes long.
func Open(path string, encKey []byte) (*Badger, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	if len(encKey) > 0 {
		opts = opts.WithEncryptionKey(encKey).WithIndexCacheSize(64 << 20)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed opening badger store: %w", err)
	}

	return &Badger{db: db}, nil
}

// Close closes the database.
func (s *Badger) Close() error {
	return s.db.Close()
}

// Get returns the value of key in namespace. ok is false if the key doesn't
// exist.
func (s *Badger) Get(ctx context.Context, namespace, key string) (ok bool, value []byte, err error) {
	if err = ctx.Err(); err != nil {
		return false, nil, err
	}
	if err = store.ValidateNamespace(namespace, false); err != nil {
		return false, nil, err
	}

	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(store.JoinKey(namespace, key)))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}

	return true, value, nil
}

// Set stores value under key in namespace.
func (s *Badger) Set(ctx context.Context, namespace, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.ValidateNamespace(namespace, false); err != nil {
		return err
	}
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(store.JoinKey(namespace, key)), value)
	})
}

// Delete removes key from namespace. Deleting a missing key is not an error.
func (s *Badger) Delete(ctx context.Context, namespace, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.ValidateNamespace(namespace, false); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(store.JoinKey(namespace, key)))
	})
}

// List returns the keys in namespace that start with prefix, grouped by
// namespace. If namespace is '*', keys in all namespaces are returned.
func (s *Badger) List(ctx context.Context, namespace, prefix string) (map[string][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := store.ValidateNamespace(namespace, true); err != nil {
		return nil, err
	}

	var seek []byte
	if namespace != store.AllNamespaces {
		seek = []byte(store.JoinKey(namespace, prefix))
	}

	keys := map[string][]string{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		// Enable key-only iteration, which is more efficient.
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(seek); it.ValidForPrefix(seek); it.Next() {
			ns, key, ok := store.SplitKey(string(it.Item().Key()))
			if !ok || !strings.HasPrefix(key, prefix) {
				continue
			}
			keys[ns] = append(keys[ns], key)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return keys, nil
}
