/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	applog "svgdraw/internal/log"
	"svgdraw/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// schemaVersion tracks the cache schema. Bump it together with a new step in runMigrations.
const schemaVersion = 2

var ErrClosed = errors.New("render cache is closed")

// Cache is a size-capped store of rendered outputs backed by SQLite.
// It is safe for concurrent use.
type Cache struct {
	db       *sql.DB
	path     string
	maxBytes int64
	rebuilt  bool

	mu     sync.Mutex
	closed bool
	now    func() time.Time
}

// Open creates or opens the cache database at path. maxBytes caps the total size of stored
// blobs; zero or negative disables eviction. A database that cannot be opened or fails its
// integrity check is backed up next to path and replaced with an empty one.
func Open(ctx context.Context, path string, maxBytes int64) (*Cache, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("cache path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create cache dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := openDB(ctx, path)
	if err == nil {
		if err = checkHealth(ctx, db); err != nil {
			_ = db.Close()
		}
	}
	rebuilt := false
	if err != nil {
		l.Warn("cache unusable, rebuilding", slog.Any("err", err))
		backupFile(path)
		removeDBFiles(path)
		rebuilt = true
		if db, err = openDB(ctx, path); err != nil {
			l.Error("cache rebuild failed", slog.Any("err", err))
			return nil, err
		}
	}

	l.Info("cache ready", slog.Int64("max_bytes", maxBytes), slog.Bool("rebuilt", rebuilt))
	return &Cache{db: db, path: path, maxBytes: maxBytes, rebuilt: rebuilt, now: time.Now}, nil
}

func openDB(ctx context.Context, path string) (*sql.DB, error) {
	// Use a URI with shared cache and set busy timeout. Convert to forward slashes for SQLite URI.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func checkHealth(ctx context.Context, db *sql.DB) error {
	var chk string
	if err := db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil {
		return fmt.Errorf("quick_check: %w", err)
	}
	if !strings.EqualFold(strings.TrimSpace(chk), "ok") {
		return fmt.Errorf("quick_check: %s", chk)
	}
	if _, err := db.ExecContext(ctx, `SELECT 1 FROM renders LIMIT 1;`); err != nil {
		return fmt.Errorf("probe renders: %w", err)
	}
	return nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Keep the stored schema; runMigrations moves it forward.
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// ensureSchema creates the current renders table on a fresh database. Older databases keep
// their table and are upgraded by runMigrations.
func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS renders (
			key          TEXT    PRIMARY KEY,
			format       TEXT    NOT NULL,
			blob         BLOB    NOT NULL,
			size         INTEGER NOT NULL DEFAULT 0,
			created_at   TEXT    NOT NULL,
			last_access  INTEGER NOT NULL DEFAULT 0,
			hits         INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_renders_access ON renders(last_access);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create renders: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		// Written by a newer build; leave it alone.
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			// hit counter for Stats
			has, err := hasColumn(ctx, db, "renders", "hits")
			if err != nil {
				return fmt.Errorf("migration %d: %w", next, err)
			}
			if !has {
				stmts = append(stmts, `ALTER TABLE renders ADD COLUMN hits INTEGER NOT NULL DEFAULT 0`)
			}
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

func hasColumn(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s);`, table))
	if err != nil {
		return false, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()
	found := false
	for rows.Next() {
		var cid, notnull, pk int
		var name, ctype string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			found = true
		}
	}
	return found, rows.Err()
}

// backupFile copies the database file into a timestamped backup in a backups directory beside it.
func backupFile(path string) {
	bdir := filepath.Join(filepath.Dir(path), "backups")
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp))
	if data, err := os.ReadFile(path); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}

func removeDBFiles(path string) {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		_ = os.Remove(p)
	}
}

// Path returns the database file location.
func (c *Cache) Path() string { return c.path }

// MaxBytes returns the eviction cap.
func (c *Cache) MaxBytes() int64 { return c.maxBytes }

// Rebuilt reports whether Open replaced an unusable database.
func (c *Cache) Rebuilt() bool { return c.rebuilt }

// Close releases the database. Operations after Close return ErrClosed.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.db.Close()
}

func (c *Cache) conn() (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	return c.db, nil
}
