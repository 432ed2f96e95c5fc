// Package repository persists run history in an embedded SQLite database.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	started_at    TIMESTAMP NOT NULL,
	messages      INTEGER NOT NULL,
	records       INTEGER NOT NULL,
	diagnostics   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS run_records (
	run_id         TEXT NOT NULL REFERENCES runs(id),
	message_number INTEGER NOT NULL,
	date           TEXT NOT NULL,
	division       TEXT NOT NULL,
	operation      TEXT,
	crop           TEXT,
	daily_area     REAL,
	total_area     REAL,
	daily_yield    REAL,
	total_yield    REAL
);
CREATE TABLE IF NOT EXISTS run_diagnostics (
	run_id     TEXT NOT NULL REFERENCES runs(id),
	message_id INTEGER NOT NULL,
	line       INTEGER NOT NULL,
	raw        TEXT NOT NULL,
	reason     TEXT NOT NULL,
	detail     TEXT
);
CREATE INDEX IF NOT EXISTS idx_run_records_run ON run_records(run_id);
CREATE INDEX IF NOT EXISTS idx_run_diagnostics_run ON run_diagnostics(run_id);
`

// Open opens (or creates) the run-history database and bootstraps the
// schema. Use ":memory:" for an ephemeral store.
func Open(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	logger.Info("repository.opened", "path", path)
	return db, nil
}
