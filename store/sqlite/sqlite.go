package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"

	"go.hackfix.me/hello/store"
	"go.hackfix.me/hello/store/sqlite/migrator"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a Store backed by a single SQLite table.
type Store struct {
	*sql.DB
}

var _ store.Store = &Store{}

// Open opens the SQLite database at path, and applies any pending schema
// migrations. Use ":memory:" for a transient database.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps in-memory databases consistent, and avoids
	// SQLITE_BUSY errors on concurrent writes.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA busy_timeout = 5000`,
	}
	for _, p := range pragmas {
		if _, err = db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed setting '%s': %w", p, err)
		}
	}

	migrations, err := migrator.Load(migrationsFS)
	if err == nil {
		err = migrator.Run(ctx, db, migrations, migrator.Up, "all", logger)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed migrating store schema: %w", err)
	}

	return &Store{DB: db}, nil
}

// Get returns the value of key in namespace. ok is false if the key doesn't
// exist.
func (s *Store) Get(ctx context.Context, namespace, key string) (ok bool, value []byte, err error) {
	if err = store.ValidateNamespace(namespace, false); err != nil {
		return false, nil, err
	}

	err = s.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE namespace = ? AND key = ?`, namespace, key).
		Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}

	return true, value, nil
}

// Set stores value under key in namespace.
func (s *Store) Set(ctx context.Context, namespace, key string, value []byte) error {
	if err := store.ValidateNamespace(namespace, false); err != nil {
		return err
	}
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}

	_, err := s.ExecContext(ctx,
		`REPLACE INTO kv (namespace, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
		namespace, key, value)
	return err
}

// Delete removes key from namespace. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, namespace, key string) error {
	if err := store.ValidateNamespace(namespace, false); err != nil {
		return err
	}

	_, err := s.ExecContext(ctx,
		`DELETE FROM kv WHERE namespace = ? AND key = ?`, namespace, key)
	return err
}

// List returns the keys in namespace that start with prefix, grouped by
// namespace. If namespace is '*', keys in all namespaces are returned.
func (s *Store) List(ctx context.Context, namespace, prefix string) (map[string][]string, error) {
	if err := store.ValidateNamespace(namespace, true); err != nil {
		return nil, err
	}

	// substr avoids having to escape LIKE wildcards in prefix.
	q := `SELECT namespace, key FROM kv
		WHERE substr(key, 1, length(?1)) = ?1`
	args := []any{prefix}
	if namespace != store.AllNamespaces {
		q += ` AND namespace = ?2`
		args = append(args, namespace)
	}
	q += ` ORDER BY namespace, key`

	rows, err := s.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed listing keys: %w", err)
	}
	defer rows.Close()

	keys := map[string][]string{}
	for rows.Next() {
		var ns, key string
		if err := rows.Scan(&ns, &key); err != nil {
			return nil, fmt.Errorf("failed reading from database: %w", err)
		}
		keys[ns] = append(keys[ns], key)
	}

	return keys, rows.Err()
}
