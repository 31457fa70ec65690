// Package registry persists exported document-type schemas in SQLite. It is
// the host-side collaborator the designer core assumes for persistence: the
// designer emits schema documents, the registry versions them by $id.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	js "github.com/reoring/docskema/jsonschema"
)

// ErrNotFound is returned by Get when no schema with the given name exists.
var ErrNotFound = errors.New("registry: schema not found")

// Registry is a SQLite-backed store of exported schema documents.
type Registry struct {
	db *sql.DB
}

// Open opens (creating if needed) a SQLite database at the given DSN and
// configures it for production use: WAL mode, foreign keys enabled, busy
// timeout of 5s.
func Open(dsn string) (*Registry, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single connection for SQLite to avoid locking issues.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	return &Registry{db: db}, nil
}

// Close releases the underlying database handle.
func (r *Registry) Close() error { return r.db.Close() }

// Migrate runs all pending schema migrations inside transactions. Migrations
// are tracked in the schema_migrations table by version number.
func (r *Registry) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for i, stmts := range migrations {
		version := i + 1

		var exists int
		if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", version, err)
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d: %w", version, err)
			}
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", version, err)
		}
	}
	return nil
}

// Entry is one stored schema document.
type Entry struct {
	Name      string
	Document  []byte
	UpdatedAt time.Time
}

// Put upserts one schema document under its name.
func (r *Registry) Put(ctx context.Context, name string, doc []byte) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO schemas (name, document, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		name, doc, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("put schema %q: %w", name, err)
	}
	return nil
}

// Get returns the stored document for a schema name.
func (r *Registry) Get(ctx context.Context, name string) ([]byte, error) {
	var doc []byte
	err := r.db.QueryRowContext(ctx, "SELECT document FROM schemas WHERE name = ?", name).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get schema %q: %w", name, err)
	}
	return doc, nil
}

// List returns all stored schemas ordered by name.
func (r *Registry) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name, document, updated_at FROM schemas ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Document, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan schema row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete removes a schema by name. Deleting an absent name is a no-op.
func (r *Registry) Delete(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM schemas WHERE name = ?", name); err != nil {
		return fmt.Errorf("delete schema %q: %w", name, err)
	}
	return nil
}

// PutSnapshot writes a whole export transactionally, keyed by each
// document's $id. Either every document lands or none do.
func (r *Registry) PutSnapshot(ctx context.Context, docs []*js.Schema) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	now := time.Now().UTC()
	for _, doc := range docs {
		b, err := json.Marshal(doc)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("marshal schema %q: %w", doc.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schemas (name, document, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
			doc.ID, b, now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("put schema %q: %w", doc.ID, err)
		}
	}
	return tx.Commit()
}
