/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
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
	"time"

	applog "github.com/rayyan-akhter/form-forge/internal/log"
	"github.com/rayyan-akhter/form-forge/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// schemaVersion tracks the SQLite schema. Bump it together with a new step
// in runMigrations.
const schemaVersion = 2

// language=SQL
// dialect=SQLite
const selectValueSQL = `SELECT value FROM kv WHERE key = ?`

// language=SQL
// dialect=SQLite
const upsertValueSQL = `INSERT INTO kv(key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

// language=SQL
// dialect=SQLite
const insertRevisionSQL = `INSERT INTO kv_revisions(key, ts, value) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestRevisionSQL = `SELECT value FROM kv_revisions WHERE key = ? ORDER BY id DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const pruneRevisionsSQL = `DELETE FROM kv_revisions WHERE key = ? AND id NOT IN (
	SELECT id FROM kv_revisions WHERE key = ? ORDER BY id DESC LIMIT ?
)`

// SQLiteKV stores values in a single SQLite file. Every overwrite or delete
// first copies the old value into kv_revisions, pruned to Keep entries per key.
type SQLiteKV struct {
	db   *sql.DB
	path string
	keep int
}

// OpenSQLite creates or opens the database at path, enables WAL mode and
// brings the schema up to date.
func OpenSQLite(ctx context.Context, path string, keep int) (*SQLiteKV, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "sqlite_open").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create db dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("%w: create db dir: %v", ErrUnavailable, err)
	}
	// forward slashes for the SQLite URI
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("%w: open sqlite: %v", ErrUnavailable, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("%w: enable WAL: %v", ErrUnavailable, err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if keep <= 0 {
		keep = 10
	}
	l.Debug("sqlite store ready")
	return &SQLiteKV{db: db, path: path, keep: keep}, nil
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
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// keep the stored schema number; runMigrations moves it forward
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS kv_revisions (
			id    INTEGER PRIMARY KEY,
			key   TEXT NOT NULL,
			ts    TEXT NOT NULL,
			value BLOB NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema steps up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		// written by a newer build; leave it alone
		return nil
	}
	// fresh databases are stamped with schemaVersion, so steps run only on upgrade
	if err := ensureRevisionIndex(ctx, db); err != nil {
		return err
	}
	for cur < schemaVersion {
		next := cur + 1
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		switch next {
		case 2:
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO meta(key, value) VALUES('revisions_indexed', 'true')`); err != nil {
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

func ensureRevisionIndex(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_kv_revisions_key ON kv_revisions(key, id);`); err != nil {
		return fmt.Errorf("create revisions index: %w", err)
	}
	return nil
}

func (s *SQLiteKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, selectValueSQL, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *SQLiteKV) Set(ctx context.Context, key string, value []byte) error {
	return s.withRevision(ctx, key, func(tx *sql.Tx, now string) error {
		_, err := tx.ExecContext(ctx, upsertValueSQL, key, value, now)
		return err
	})
}

func (s *SQLiteKV) Delete(ctx context.Context, key string) error {
	return s.withRevision(ctx, key, func(tx *sql.Tx, _ string) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
		return err
	})
}

// withRevision runs fn in a transaction after copying the current value of
// key, if any, into kv_revisions.
func (s *SQLiteKV) withRevision(ctx context.Context, key string, fn func(tx *sql.Tx, now string) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	var old []byte
	switch err := tx.QueryRowContext(ctx, selectValueSQL, key).Scan(&old); {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		_ = tx.Rollback()
		return fmt.Errorf("read previous %s: %w", key, err)
	default:
		if _, err := tx.ExecContext(ctx, insertRevisionSQL, key, now, old); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("keep revision %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx, pruneRevisionsSQL, key, key, s.keep); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("prune revisions %s: %w", key, err)
		}
	}
	if err := fn(tx, now); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", key, err)
	}
	return nil
}

// LatestRevision returns the value key had before its most recent overwrite.
func (s *SQLiteKV) LatestRevision(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, selectLatestRevisionSQL, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("latest revision %s: %w", key, err)
	}
	return v, true, nil
}

// RevisionCount reports how many earlier values of key are kept.
func (s *SQLiteKV) RevisionCount(ctx context.Context, key string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv_revisions WHERE key = ?`, key).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLiteKV) Path() string { return s.path }

func (s *SQLiteKV) Close() error { return s.db.Close() }
