// Package validate resolves candidate records against the reference catalog.
package validate

import (
	"log/slog"

	"github.com/mkuznetsov-agro/agroreport/constants"
	"github.com/mkuznetsov-agro/agroreport/internal/catalog"
	"github.com/mkuznetsov-agro/agroreport/internal/entity"
)

// Validator turns raw extracted text into canonical values. The confidence
// policy lives in the catalog (exact / alias / fuzzy-above-threshold); this
// component only records the outcome per field.
type Validator struct {
	cat catalog.Catalog
	log *slog.Logger
}

func New(cat catalog.Catalog, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{cat: cat, log: logger}
}

// Validate resolves the textual fields of one candidate and nulls areas
// outside the plausible range. Original text stays on the candidate for
// audit; corrected matches are logged, not surfaced in output.
func (v *Validator) Validate(rec entity.CandidateRecord) entity.ValidatedRecord {
	out := entity.ValidatedRecord{Candidate: rec}

	if rec.DivisionRaw != "" {
		if m, ok := v.cat.LookupDivision(rec.DivisionRaw); ok {
			out.Division = entity.Resolution{
				Canonical:  m.Code,
				Path:       m.Path,
				Confidence: m.Confidence,
				Resolved:   true,
				Corrected:  m.Corrected,
			}
			if m.Corrected {
				v.log.Debug("validate.corrected", "field", "division", "raw", rec.DivisionRaw, "canonical", m.Code, "confidence", m.Confidence)
			}
		}
	}
	out.Operation = v.resolve("operation", rec.OperationRaw, v.cat.LookupOperation)
	out.Crop = v.resolve("crop", rec.CropRaw, v.cat.LookupCrop)

	out.Candidate.DailyArea = plausibleArea(rec.DailyArea)
	out.Candidate.TotalArea = plausibleArea(rec.TotalArea)

	return out
}

func (v *Validator) resolve(field, raw string, lookup func(string) (catalog.Match, bool)) entity.Resolution {
	if raw == "" {
		return entity.Resolution{}
	}
	m, ok := lookup(raw)
	if !ok {
		v.log.Debug("validate.unresolved", "field", field, "raw", raw)
		return entity.Resolution{}
	}
	if m.Corrected {
		v.log.Debug("validate.corrected", "field", field, "raw", raw, "canonical", m.Canonical, "confidence", m.Confidence)
	}
	return entity.Resolution{
		Canonical:  m.Canonical,
		Confidence: m.Confidence,
		Resolved:   true,
		Corrected:  m.Corrected,
	}
}

// plausibleArea nulls areas outside 0..MaxAreaHectares; a field report line
// cannot cover more than the limit in a day.
func plausibleArea(p *float64) *float64 {
	if p == nil || *p < 0 || *p > constants.MaxAreaHectares {
		return nil
	}
	return p
}
