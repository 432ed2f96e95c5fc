// Package pipeline wires tokenizer, extractor, validator and corrector into
// the per-message parse sequence and assembles the output batch.
package pipeline

import (
	"log/slog"

	"github.com/mkuznetsov-agro/agroreport/constants"
	"github.com/mkuznetsov-agro/agroreport/internal/catalog"
	"github.com/mkuznetsov-agro/agroreport/internal/correct"
	"github.com/mkuznetsov-agro/agroreport/internal/entity"
	"github.com/mkuznetsov-agro/agroreport/internal/parser"
	"github.com/mkuznetsov-agro/agroreport/internal/validate"
)

// Pipeline parses one message at a time. Stateless across messages; safe
// for concurrent use since the catalog is read-only.
type Pipeline struct {
	extractor *parser.Extractor
	validator *validate.Validator
	corrector *correct.Corrector
	log       *slog.Logger
}

func New(cat catalog.Catalog, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		extractor: parser.NewExtractor(cat, logger),
		validator: validate.New(cat, logger),
		corrector: correct.New(logger),
		log:       logger,
	}
}

// ParseMessage runs the full sequence for one message and assembles its
// report. The payload is echoed unchanged; Parsed is never nil, so a
// message with zero resolvable records still yields a report with an empty
// array. Diagnostics go to the sink, never into the report.
func (p *Pipeline) ParseMessage(msg entity.Message, sink entity.DiagnosticSink) entity.Report {
	lines := parser.Tokenize(msg.Payload)

	msgDate, ok := parser.ParseDate(msg.Date)
	if !ok {
		msgDate, _ = parser.FindDate(msg.Payload)
	}

	candidates, unclassified := p.extractor.Extract(msgDate, lines)
	for _, ln := range unclassified {
		sink.Report(entity.Diagnostic{
			MessageID: msg.ID,
			Line:      ln.Position,
			Raw:       ln.Raw,
			Reason:    constants.ReasonUnclassifiableLine,
		})
	}

	validated := make([]entity.ValidatedRecord, len(candidates))
	for i, c := range candidates {
		validated[i] = p.validator.Validate(c)
	}

	parsed := p.corrector.Process(msg, msgDate, validated, sink)

	p.log.Debug("pipeline.message",
		"message_id", msg.ID,
		"lines", len(lines),
		"candidates", len(candidates),
		"records", len(parsed),
	)
	return entity.Report{
		MessageNumber: msg.ID,
		Payload:       msg.Payload,
		Parsed:        parsed,
	}
}
