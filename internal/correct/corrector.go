// Package correct is the policy engine: it repairs partially resolved
// records and decides accept/drop/flag per record.
package correct

import (
	"log/slog"
	"strings"

	"github.com/mkuznetsov-agro/agroreport/constants"
	"github.com/mkuznetsov-agro/agroreport/internal/entity"
)

// compatibleCrops lists which crops each operation is normally reported
// against. Used for a soft consistency check, never to drop records.
var compatibleCrops = map[string][]string{
	"Пахота":                         {"Многолетние травы текущего года", "Многолетние травы прошлых лет", "Озимая пшеница", "Озимый ячмень", "Яровой ячмень"},
	"Сев":                            {"Озимая пшеница", "Озимый ячмень", "Яровой ячмень", "Горох", "Подсолнечник", "Кукуруза", "Соя", "Сахарная свекла"},
	"Уборка":                         {"Озимая пшеница", "Озимый ячмень", "Яровой ячмень", "Горох", "Подсолнечник", "Кукуруза", "Соя", "Сахарная свекла"},
	"Боронование":                    {"Озимая пшеница", "Озимый ячмень", "Яровой ячмень", "Горох", "Многолетние травы текущего года"},
	"Культивация":                    {"Подсолнечник", "Кукуруза", "Соя", "Сахарная свекла"},
	"Гербицидная обработка":          {"Озимая пшеница", "Озимый ячмень", "Яровой ячмень", "Подсолнечник", "Кукуруза", "Соя", "Сахарная свекла"},
	"Внесение минеральных удобрений": {"Озимая пшеница", "Озимый ячмень", "Яровой ячмень", "Горох"},
}

// Corrector applies the repair rules per message, in priority order:
// carry-forward of operation/crop, drop on unresolved division, message-date
// fallback, drop on missing measurement, then accept.
type Corrector struct {
	log *slog.Logger
}

func New(logger *slog.Logger) *Corrector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Corrector{log: logger}
}

// Process walks the validated records of one message in original order and
// emits final records. All failures are local: a dropped record becomes a
// diagnostic, never an error.
func (c *Corrector) Process(msg entity.Message, msgDate string, recs []entity.ValidatedRecord, sink entity.DiagnosticSink) []entity.FinalRecord {
	out := make([]entity.FinalRecord, 0, len(recs))
	var lastOp, lastCrop *string

	for _, r := range recs {
		cand := r.Candidate

		// Rule 1: inherit operation/crop from a prior resolved record.
		op := resolutionValue(r.Operation)
		if op == nil {
			op = lastOp
		}
		crop := resolutionValue(r.Crop)
		if crop == nil {
			crop = lastCrop
		}

		// Rule 2: an invalid division is never emitted.
		if !r.Division.Resolved {
			sink.Report(entity.Diagnostic{
				MessageID: msg.ID,
				Line:      cand.SourceLine,
				Raw:       cand.DivisionRaw,
				Reason:    constants.ReasonUnresolvedReference,
				Detail:    "division not found in catalog",
			})
			continue
		}

		// Rule 3: fall back to the message's own date.
		date := cand.Date
		if date == "" {
			date = msgDate
		}

		if cand.MalformedNumeric {
			sink.Report(entity.Diagnostic{
				MessageID: msg.ID,
				Line:      cand.SourceLine,
				Raw:       cand.DivisionRaw,
				Reason:    constants.ReasonMalformedNumeric,
				Detail:    "unparsable numeric token set to null",
			})
		}

		// Rule 4: a record without any measurement is not meaningful.
		if cand.DailyArea == nil && cand.TotalArea == nil {
			sink.Report(entity.Diagnostic{
				MessageID: msg.ID,
				Line:      cand.SourceLine,
				Raw:       cand.DivisionRaw,
				Reason:    constants.ReasonMissingMeasurement,
			})
			continue
		}

		// Rule 5: accept. Corrected flags are diagnostics only; they do not
		// appear in the output schema.
		rec := entity.FinalRecord{
			Date:       date,
			Division:   r.Division.Canonical,
			Operation:  op,
			Crop:       crop,
			DailyArea:  cand.DailyArea,
			TotalArea:  cand.TotalArea,
			DailyYield: scaleYield(cand.DailyYield),
			TotalYield: scaleYield(cand.TotalYield),
		}
		c.checkNumericConsistency(&rec)
		c.checkCropCompatibility(&rec)

		out = append(out, rec)
		if rec.Operation != nil {
			lastOp = rec.Operation
		}
		if rec.Crop != nil {
			lastCrop = rec.Crop
		}
	}
	return out
}

func resolutionValue(r entity.Resolution) *string {
	if !r.Resolved {
		return nil
	}
	v := r.Canonical
	return &v
}

// scaleYield repairs the common "kilograms instead of centners" slip: a
// yield above the plausible maximum is scaled down by 10; still implausible
// after that, it is nulled.
func scaleYield(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	if v > constants.MaxYieldCentners {
		v = v / 10
	}
	if v < 0 || v > constants.MaxYieldCentners {
		return nil
	}
	return &v
}

// checkNumericConsistency swaps the area pair when daily exceeds total; the
// cumulative value can never be smaller than the day's.
func (c *Corrector) checkNumericConsistency(rec *entity.FinalRecord) {
	if rec.DailyArea != nil && rec.TotalArea != nil && *rec.DailyArea > *rec.TotalArea {
		c.log.Debug("correct.area_swap", "daily", *rec.DailyArea, "total", *rec.TotalArea)
		rec.DailyArea, rec.TotalArea = rec.TotalArea, rec.DailyArea
	}
}

// checkCropCompatibility nudges the crop toward the operation's usual set
// when a substring relation makes the intent obvious.
func (c *Corrector) checkCropCompatibility(rec *entity.FinalRecord) {
	if rec.Operation == nil || rec.Crop == nil {
		return
	}
	allowed, ok := compatibleCrops[*rec.Operation]
	if !ok {
		return
	}
	for _, a := range allowed {
		if a == *rec.Crop {
			return
		}
	}
	cropLower := strings.ToLower(*rec.Crop)
	for _, a := range allowed {
		al := strings.ToLower(a)
		if strings.Contains(al, cropLower) || strings.Contains(cropLower, al) {
			c.log.Debug("correct.crop_adjusted", "operation", *rec.Operation, "from", *rec.Crop, "to", a)
			v := a
			rec.Crop = &v
			return
		}
	}
	c.log.Warn("correct.crop_incompatible", "operation", *rec.Operation, "crop", *rec.Crop)
}
