package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mkuznetsov-agro/agroreport/internal/entity"
)

// RunStore records each pipeline run with its final records and
// diagnostics, giving operators an audit trail of corrections and drops.
type RunStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRunStore(db *sql.DB, logger *slog.Logger) *RunStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunStore{db: db, logger: logger}
}

// RunSummary is one row of the runs table.
type RunSummary struct {
	ID          uuid.UUID
	StartedAt   time.Time
	Messages    int
	Records     int
	Diagnostics int
}

// SaveRun persists one run atomically and returns its id.
func (s *RunStore) SaveRun(ctx context.Context, startedAt time.Time, out entity.OutputBatch, diags []entity.Diagnostic) (uuid.UUID, error) {
	id := uuid.New()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	records := 0
	for _, r := range out.Reports {
		records += len(r.Parsed)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, messages, records, diagnostics) VALUES (?, ?, ?, ?, ?)`,
		id.String(), startedAt.UTC(), len(out.Reports), records, len(diags),
	); err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}

	for _, r := range out.Reports {
		for _, rec := range r.Parsed {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO run_records
				 (run_id, message_number, date, division, operation, crop, daily_area, total_area, daily_yield, total_yield)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				id.String(), r.MessageNumber, rec.Date, rec.Division,
				rec.Operation, rec.Crop,
				rec.DailyArea, rec.TotalArea, rec.DailyYield, rec.TotalYield,
			); err != nil {
				return uuid.Nil, fmt.Errorf("insert record: %w", err)
			}
		}
	}

	for _, d := range diags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_diagnostics (run_id, message_id, line, raw, reason, detail)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id.String(), d.MessageID, d.Line, d.Raw, string(d.Reason), d.Detail,
		); err != nil {
			return uuid.Nil, fmt.Errorf("insert diagnostic: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("commit run: %w", err)
	}

	s.logger.Info("repository.run_saved",
		"run_id", id.String(),
		"messages", len(out.Reports),
		"records", records,
		"diagnostics", len(diags),
	)
	return id, nil
}

// GetRun loads one run summary.
func (s *RunStore) GetRun(ctx context.Context, id uuid.UUID) (RunSummary, error) {
	var out RunSummary
	var rawID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, messages, records, diagnostics FROM runs WHERE id = ?`,
		id.String(),
	).Scan(&rawID, &out.StartedAt, &out.Messages, &out.Records, &out.Diagnostics)
	if err != nil {
		return RunSummary{}, fmt.Errorf("select run %s: %w", id, err)
	}
	out.ID, err = uuid.Parse(rawID)
	if err != nil {
		return RunSummary{}, fmt.Errorf("parse run id: %w", err)
	}
	return out, nil
}
