// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sigil-dev/graphdl/internal/store"
	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
)

// Compile-time interface checks.
var (
	_ store.Backend = (*Backend)(nil)
	_ store.Atomic  = (*Backend)(nil)
)

// Backend implements store.Backend on a single SQLite table of ordered
// key/value rows. Multi-key writes run in one transaction.
type Backend struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) a SQLite database at dbPath and runs migrations.
func Open(dbPath string) (*Backend, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, graphdlerr.Errorf(graphdlerr.CodeStoreBackendFailure, "opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, graphdlerr.Errorf(graphdlerr.CodeStoreBackendFailure, "pinging sqlite db: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, graphdlerr.Errorf(graphdlerr.CodeStoreBackendFailure, "migrating kv table: %w", err)
	}

	return &Backend{db: db, logger: slog.Default()}, nil
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS kv (
	key     TEXT PRIMARY KEY,
	value   BLOB NOT NULL,
	updated TEXT NOT NULL
) WITHOUT ROWID;
`
	_, err := db.Exec(ddl)
	return err
}

// Close closes the underlying database connection.
func (b *Backend) Close() error {
	return b.db.Close()
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.KeyNotFound(key)
	}
	if err != nil {
		return nil, graphdlerr.Backend(err, "getting key %s", key)
	}
	return value, nil
}

func (b *Backend) Put(ctx context.Context, key string, value []byte) error {
	return b.ApplyAtomic(ctx, []store.Mutation{store.PutMutation(key, value)})
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	return b.ApplyAtomic(ctx, []store.Mutation{store.DeleteMutation(key)})
}

// Scan returns rows whose key starts with prefix as a key range, so the
// primary key index serves it.
func (b *Backend) Scan(ctx context.Context, prefix string) ([]store.Entry, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if end := store.PrefixEnd(prefix); end != "" {
		rows, err = b.db.QueryContext(ctx,
			`SELECT key, value FROM kv WHERE key >= ? AND key < ? ORDER BY key`, prefix, end)
	} else {
		rows, err = b.db.QueryContext(ctx,
			`SELECT key, value FROM kv WHERE key >= ? ORDER BY key`, prefix)
	}
	if err != nil {
		return nil, graphdlerr.Backend(err, "scanning prefix %q", prefix)
	}
	defer func() { _ = rows.Close() }()

	var out []store.Entry
	for rows.Next() {
		var e store.Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, graphdlerr.Backend(err, "scanning kv row")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, graphdlerr.Backend(err, "iterating kv rows")
	}
	return out, nil
}

// ApplyAtomic writes all mutations in one transaction.
func (b *Backend) ApplyAtomic(ctx context.Context, muts []store.Mutation) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return graphdlerr.Backend(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	updated := formatTime(time.Now())
	for _, m := range muts {
		if m.Delete {
			if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, m.Key); err != nil {
				return graphdlerr.Backend(err, "deleting key %s", m.Key)
			}
			continue
		}
		value := m.Value
		if value == nil {
			value = []byte{}
		}
		const q = `INSERT INTO kv (key, value, updated) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
	value = excluded.value,
	updated = excluded.updated`
		if _, err := tx.ExecContext(ctx, q, m.Key, value, updated); err != nil {
			return graphdlerr.Backend(err, "putting key %s", m.Key)
		}
	}

	if err := tx.Commit(); err != nil {
		return graphdlerr.Backend(err, "committing %d mutations", len(muts))
	}
	b.logger.Debug("applied kv mutations", slog.Int("count", len(muts)))
	return nil
}

// Len reports the number of stored keys.
func (b *Backend) Len(ctx context.Context) (int, error) {
	var n int
	if err := b.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv`).Scan(&n); err != nil {
		return 0, graphdlerr.Backend(err, "counting keys")
	}
	return n, nil
}

// formatTime serialises a time for the updated column.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
