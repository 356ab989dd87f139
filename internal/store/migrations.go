// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type migration struct {
	Version int
	Name    string
	SQL     string
}

var migrations = []migration{
	{
		Version: 1,
		Name:    "initial_schema",
		SQL: `
			-- Receiver connection profiles
			CREATE TABLE devices (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				name_key TEXT NOT NULL UNIQUE,
				host TEXT NOT NULL,
				port INTEGER NOT NULL,
				https INTEGER NOT NULL DEFAULT 0,
				username TEXT NOT NULL DEFAULT '',
				password TEXT NOT NULL DEFAULT '',
				stream_port INTEGER NOT NULL DEFAULT 8001,
				use_webif_streams INTEGER NOT NULL DEFAULT 0,
				created_at INTEGER NOT NULL,
				updated_at INTEGER NOT NULL
			);

			-- Key/value user preferences
			CREATE TABLE preferences (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at INTEGER NOT NULL
			);

			-- Recent searches per screen
			CREATE TABLE search_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				scope TEXT NOT NULL,
				query TEXT NOT NULL,
				query_key TEXT NOT NULL,
				UNIQUE (scope, query_key)
			);
			CREATE INDEX idx_search_history_scope ON search_history (scope, id);
		`,
	},
	{
		Version: 2,
		Name:    "current_device",
		SQL: `
			-- Single-row selection; cleared automatically when the device is deleted
			CREATE TABLE current_device (
				slot INTEGER PRIMARY KEY CHECK (slot = 1),
				device_id TEXT NOT NULL REFERENCES devices(id) ON DELETE CASCADE
			);
		`,
	},
}

// migrate applies every migration newer than the recorded schema version,
// each inside its own transaction.
func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		s.logger.Info().
			Str("event", "store.migrate").
			Int("version", m.Version).
			Str("name", m.Name).
			Msg("applying migration")

		err := s.transaction(ctx, func(tx *sql.Tx) error {
			for i, stmt := range splitSQLStatements(m.SQL) {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("migration %d statement %d failed: %w", m.Version, i+1, err)
				}
			}
			if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
				return fmt.Errorf("record migration %d: %w", m.Version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	return v, err
}

// splitSQLStatements splits on statement-ending semicolons, skipping blank
// lines and -- comments.
func splitSQLStatements(sql string) []string {
	var (
		statements []string
		current    strings.Builder
	)
	for line := range strings.SplitSeq(sql, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			if stmt := strings.TrimSpace(current.String()); stmt != ";" {
				statements = append(statements, stmt)
			}
			current.Reset()
		}
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		statements = append(statements, rest)
	}
	return statements
}
