package export

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mkuznetsov-agro/agroreport/internal/entity"
)

func fp(v float64) *float64 { return &v }
func sp(s string) *string   { return &s }

func sampleBatch() entity.OutputBatch {
	return entity.OutputBatch{Reports: []entity.Report{
		{
			MessageNumber: 1,
			Payload:       "Пахота зяби под мн тр\nПо Пу 26/488",
			Parsed: []entity.FinalRecord{
				{
					Date:      "12.04",
					Division:  "АОР",
					Operation: sp("Пахота"),
					Crop:      sp("Многолетние травы текущего года"),
					DailyArea: fp(26),
					TotalArea: fp(488),
				},
			},
		},
		{
			MessageNumber: 2,
			Payload:       "ХХЮ 1/2",
			Parsed:        []entity.FinalRecord{},
		},
	}}
}

func TestEncodeJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, sampleBatch()))

	// cyrillic stays readable, absent fields are explicit nulls
	assert.Contains(t, buf.String(), "Пахота")
	assert.Contains(t, buf.String(), `"dailyYield": null`)
	assert.Contains(t, buf.String(), `"parsed": []`)

	var round entity.OutputBatch
	require.NoError(t, json.Unmarshal(buf.Bytes(), &round))
	require.Len(t, round.Reports, 2)
	assert.Equal(t, 1, round.Reports[0].MessageNumber)
	assert.Nil(t, round.Reports[0].Parsed[0].DailyYield)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteJSON(path, sampleBatch()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestWorkbookBytes(t *testing.T) {
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))

	b, err := svc.WorkbookBytes(sampleBatch())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Records")
	require.NoError(t, err)
	require.Len(t, rows, 2) // header plus one record

	assert.Equal(t, "Message", rows[0][0])
	assert.Equal(t, "Division", rows[0][2])

	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "12.04", rows[1][1])
	assert.Equal(t, "АОР", rows[1][2])
	assert.Equal(t, "Пахота", rows[1][3])
	assert.Equal(t, "26", rows[1][5])
}

func TestWriteXLSX(t *testing.T) {
	svc := NewService(nil)
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, svc.WriteXLSX(path, sampleBatch()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Records")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
