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
	"os"
	"path/filepath"
	"time"

	applog "comicboard/internal/log"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// SettingsDirName stores app-local state under the data dir.
	SettingsDirName  = ".comicboard"
	SettingsFileName = "settings.sqlite"

	// settingsSchemaVersion tracks the local schema; bump on breaking change.
	settingsSchemaVersion = 1
)

// Settings is a small durable key-value store backed by SQLite. It survives
// document reloads and app restarts; the export counter lives here.
type Settings struct {
	db *sql.DB
}

// SettingsPath returns the database location under root (typically the user
// home or a test dir).
func SettingsPath(root string) string {
	return filepath.Join(root, SettingsDirName, SettingsFileName)
}

// OpenSettings opens (creating if missing) the settings database under root,
// enables WAL and ensures the schema.
func OpenSettings(root string) (*Settings, error) {
	if root == "" {
		return nil, errors.New("settings root is required")
	}
	l := applog.WithOperation(applog.WithComponent("storage"), "settings_open")
	if err := os.MkdirAll(filepath.Join(root, SettingsDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}
	path := SettingsPath(root)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureSettingsSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	l.Info("settings ready", "path", path)
	return &Settings{db: db}, nil
}

func ensureSettingsSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL, updated_at TEXT NOT NULL);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("ensure settings schema: %w", err)
		}
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO meta(key, value) VALUES ('schema_version', ?) ON CONFLICT(key) DO NOTHING;`,
		fmt.Sprint(settingsSchemaVersion))
	if err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Settings) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the stored value for key, or "" when absent.
func (s *Settings) Get(key string) (string, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?;`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("settings get %s: %w", key, err)
	}
	return v, nil
}

// Set stores value under key, replacing any previous value.
func (s *Settings) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv(key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;`,
		key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("settings set %s: %w", key, err)
	}
	return nil
}

// GetInt returns the value for key parsed as int64; absent or unparseable
// values read as 0.
func (s *Settings) GetInt(key string) (int64, error) {
	var v int64
	err := s.db.QueryRow(`SELECT CAST(value AS INTEGER) FROM kv WHERE key = ?;`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("settings get int %s: %w", key, err)
	}
	return v, nil
}

// Increment adds one to the integer value under key and returns the new
// value. Missing keys start at zero. The update is a single statement, so
// concurrent increments never lose counts.
func (s *Settings) Increment(key string) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	var v int64
	err := s.db.QueryRow(
		`INSERT INTO kv(key, value, updated_at) VALUES (?, '1', ?)
		 ON CONFLICT(key) DO UPDATE SET value = CAST(CAST(kv.value AS INTEGER) + 1 AS TEXT), updated_at = excluded.updated_at
		 RETURNING CAST(value AS INTEGER);`,
		key, now).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("settings increment %s: %w", key, err)
	}
	return v, nil
}
