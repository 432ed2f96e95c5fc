package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznetsov-agro/agroreport/constants"
	"github.com/mkuznetsov-agro/agroreport/internal/entity"
)

func fp(v float64) *float64 { return &v }
func sp(s string) *string   { return &s }

func newTestStore(t *testing.T) *RunStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := Open(context.Background(), ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRunStore(db, logger)
}

func TestSaveAndGetRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	out := entity.OutputBatch{Reports: []entity.Report{
		{
			MessageNumber: 1,
			Payload:       "Пахота зяби\nПо Пу 26/488",
			Parsed: []entity.FinalRecord{
				{Date: "12.04", Division: "АОР", Operation: sp("Пахота"), DailyArea: fp(26), TotalArea: fp(488)},
				{Date: "12.04", Division: "АОР-2", Operation: sp("Пахота"), TotalArea: fp(221)},
			},
		},
		{MessageNumber: 2, Payload: "ХХЮ 1/2", Parsed: []entity.FinalRecord{}},
	}}
	diags := []entity.Diagnostic{
		{MessageID: 2, Line: 0, Raw: "ХХЮ", Reason: constants.ReasonUnresolvedReference},
	}

	started := time.Now()
	id, err := store.SaveRun(ctx, started, out, diags)
	require.NoError(t, err)

	got, err := store.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, 2, got.Messages)
	assert.Equal(t, 2, got.Records)
	assert.Equal(t, 1, got.Diagnostics)
}

func TestSaveRunPersistsRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	out := entity.OutputBatch{Reports: []entity.Report{
		{
			MessageNumber: 7,
			Parsed: []entity.FinalRecord{
				{Date: "13.04", Division: "АОР-1", Crop: sp("Горох"), DailyArea: fp(50)},
			},
		},
	}}
	id, err := store.SaveRun(ctx, time.Now(), out, nil)
	require.NoError(t, err)

	var division string
	var operation *string
	var daily *float64
	err = store.db.QueryRowContext(ctx,
		`SELECT division, operation, daily_area FROM run_records WHERE run_id = ?`,
		id.String(),
	).Scan(&division, &operation, &daily)
	require.NoError(t, err)
	assert.Equal(t, "АОР-1", division)
	assert.Nil(t, operation)
	require.NotNil(t, daily)
	assert.Equal(t, 50.0, *daily)
}

func TestGetRunUnknownID(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetRun(context.Background(), uuid.New())
	assert.Error(t, err)
}
