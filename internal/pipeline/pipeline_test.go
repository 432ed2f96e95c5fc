package pipeline

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznetsov-agro/agroreport/constants"
	"github.com/mkuznetsov-agro/agroreport/internal/catalog"
	"github.com/mkuznetsov-agro/agroreport/internal/entity"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	cat, err := catalog.New(catalog.DefaultTables())
	require.NoError(t, err)
	return New(cat, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestParseMessageCarryForward(t *testing.T) {
	p := newTestPipeline(t)
	var sink entity.DiagnosticList

	msg := entity.Message{
		ID:      1,
		Date:    "2025-04-12",
		Payload: "Пахота зяби под мн тр\nПо Пу 26/488\nОтд 12 26/221",
	}
	report := p.ParseMessage(msg, &sink)

	assert.Equal(t, 1, report.MessageNumber)
	assert.Equal(t, msg.Payload, report.Payload)
	assert.Empty(t, sink.Items)
	require.Len(t, report.Parsed, 2)

	first := report.Parsed[0]
	assert.Equal(t, "12.04", first.Date)
	assert.Equal(t, "АОР", first.Division)
	require.NotNil(t, first.Operation)
	assert.Equal(t, "Пахота", *first.Operation)
	require.NotNil(t, first.Crop)
	assert.Equal(t, "Многолетние травы текущего года", *first.Crop)
	require.NotNil(t, first.DailyArea)
	assert.Equal(t, 26.0, *first.DailyArea)
	require.NotNil(t, first.TotalArea)
	assert.Equal(t, 488.0, *first.TotalArea)
	assert.Nil(t, first.DailyYield)

	second := report.Parsed[1]
	assert.Equal(t, "АОР-2", second.Division)
	require.NotNil(t, second.Operation)
	assert.Equal(t, "Пахота", *second.Operation)
	require.NotNil(t, second.Crop)
	assert.Equal(t, "Многолетние травы текущего года", *second.Crop)
	require.NotNil(t, second.TotalArea)
	assert.Equal(t, 221.0, *second.TotalArea)
}

func TestParseMessageUnresolvedDivision(t *testing.T) {
	p := newTestPipeline(t)
	var sink entity.DiagnosticList

	msg := entity.Message{ID: 2, Date: "2025-04-12", Payload: "Пахота зяби\nХХЮ 10/20"}
	report := p.ParseMessage(msg, &sink)

	require.NotNil(t, report.Parsed)
	assert.Empty(t, report.Parsed)

	require.Len(t, sink.Items, 1)
	assert.Equal(t, constants.ReasonUnresolvedReference, sink.Items[0].Reason)
	assert.Equal(t, 2, sink.Items[0].MessageID)
}

func TestParseMessageDateFromPayload(t *testing.T) {
	p := newTestPipeline(t)
	var sink entity.DiagnosticList

	msg := entity.Message{ID: 3, Payload: "12.04.2025\nСев гороха\nОтд 3 50/300"}
	report := p.ParseMessage(msg, &sink)

	require.Len(t, report.Parsed, 1)
	rec := report.Parsed[0]
	assert.Equal(t, "12.04", rec.Date)
	assert.Equal(t, "АОР-1", rec.Division)
	require.NotNil(t, rec.Operation)
	assert.Equal(t, "Сев", *rec.Operation)
	require.NotNil(t, rec.Crop)
	assert.Equal(t, "Горох", *rec.Crop)
}

func TestParseMessageMalformedNumeric(t *testing.T) {
	p := newTestPipeline(t)
	var sink entity.DiagnosticList

	msg := entity.Message{ID: 4, Date: "2025-04-12", Payload: "Сев гороха\nПо Пу 26/abc"}
	report := p.ParseMessage(msg, &sink)

	require.Len(t, report.Parsed, 1)
	rec := report.Parsed[0]
	require.NotNil(t, rec.DailyArea)
	assert.Equal(t, 26.0, *rec.DailyArea)
	assert.Nil(t, rec.TotalArea)

	require.Len(t, sink.Items, 1)
	assert.Equal(t, constants.ReasonMalformedNumeric, sink.Items[0].Reason)
}

func TestParseMessageUnclassifiableLine(t *testing.T) {
	p := newTestPipeline(t)
	var sink entity.DiagnosticList

	msg := entity.Message{ID: 5, Date: "2025-04-12", Payload: "Сев гороха\nабв 12абв\nОтд 3 10/100"}
	report := p.ParseMessage(msg, &sink)

	require.Len(t, report.Parsed, 1)
	require.Len(t, sink.Items, 1)
	assert.Equal(t, constants.ReasonUnclassifiableLine, sink.Items[0].Reason)
	assert.Equal(t, "абв 12абв", sink.Items[0].Raw)
}

func TestParseMessageDepartmentWithoutMeasurement(t *testing.T) {
	p := newTestPipeline(t)
	var sink entity.DiagnosticList

	msg := entity.Message{ID: 7, Date: "2025-04-12", Payload: "Сев гороха\nОтд 7"}
	report := p.ParseMessage(msg, &sink)

	require.NotNil(t, report.Parsed)
	assert.Empty(t, report.Parsed)

	require.Len(t, sink.Items, 1)
	assert.Equal(t, constants.ReasonMissingMeasurement, sink.Items[0].Reason)
	assert.Equal(t, "Отд 7", sink.Items[0].Raw)
}

func TestParseMessageDatedHeader(t *testing.T) {
	p := newTestPipeline(t)
	var sink entity.DiagnosticList

	msg := entity.Message{ID: 8, Payload: "Сев кукурузы 15.04\nОтд 3 10/100"}
	report := p.ParseMessage(msg, &sink)

	assert.Empty(t, sink.Items)
	require.Len(t, report.Parsed, 1)
	rec := report.Parsed[0]
	assert.Equal(t, "15.04", rec.Date)
	assert.Equal(t, "АОР-1", rec.Division)
	require.NotNil(t, rec.Operation)
	assert.Equal(t, "Сев", *rec.Operation)
	require.NotNil(t, rec.Crop)
	assert.Equal(t, "Кукуруза", *rec.Crop)
}

func TestParseMessageDeterministic(t *testing.T) {
	p := newTestPipeline(t)

	msg := entity.Message{
		ID:      6,
		Date:    "2025-04-12",
		Payload: "Пахота зяби под мн тр\nПо Пу 26/488\nОтд 12 26/221",
	}
	var sinkA, sinkB entity.DiagnosticList
	a := p.ParseMessage(msg, &sinkA)
	b := p.ParseMessage(msg, &sinkB)

	assert.Equal(t, a, b)
	assert.Equal(t, sinkA.Items, sinkB.Items)
}
