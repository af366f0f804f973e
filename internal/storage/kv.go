package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bunchhieng/docsearch/internal/objstore"
	"github.com/jmoiron/sqlx"
)

// kvBackend is an objstore.Backend over the kv table, scoped to one namespace.
type kvBackend struct {
	db        *sqlx.DB
	namespace string
}

// KV returns a key/value backend scoped to namespace.
func (s *SQLiteStorage) KV(namespace string) objstore.Backend {
	return &kvBackend{db: s.db, namespace: namespace}
}

func (b *kvBackend) GetItem(key string) (string, error) {
	var value string
	err := b.db.GetContext(context.Background(), &value,
		"SELECT value FROM kv WHERE namespace = ? AND key = ?", b.namespace, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", objstore.ErrNotExist
	}
	if err != nil {
		return "", fmt.Errorf("get kv %s/%s: %w", b.namespace, key, err)
	}
	return value, nil
}

func (b *kvBackend) SetItem(key, value string) error {
	_, err := b.db.ExecContext(context.Background(), `
		INSERT INTO kv (namespace, key, value, updated_at) VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, b.namespace, key, value)
	if err != nil {
		return fmt.Errorf("set kv %s/%s: %w", b.namespace, key, err)
	}
	return nil
}

func (b *kvBackend) RemoveItem(key string) error {
	_, err := b.db.ExecContext(context.Background(),
		"DELETE FROM kv WHERE namespace = ? AND key = ?", b.namespace, key)
	if err != nil {
		return fmt.Errorf("remove kv %s/%s: %w", b.namespace, key, err)
	}
	return nil
}

func (b *kvBackend) Clear() error {
	_, err := b.db.ExecContext(context.Background(),
		"DELETE FROM kv WHERE namespace = ?", b.namespace)
	if err != nil {
		return fmt.Errorf("clear kv %s: %w", b.namespace, err)
	}
	return nil
}
