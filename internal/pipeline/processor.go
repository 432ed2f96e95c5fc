package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mkuznetsov-agro/agroreport/internal/entity"
)

// Processor runs a batch of messages through the pipeline. Messages are
// independent, so they are parsed concurrently; results land in an
// index-addressed slice so output order always equals input order.
type Processor struct {
	pipe    *Pipeline
	workers int
	log     *slog.Logger
}

func NewProcessor(pipe *Pipeline, workers int, logger *slog.Logger) *Processor {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{pipe: pipe, workers: workers, log: logger}
}

// ProcessBatch parses every message and collects diagnostics in message
// order. A failure on one message never aborts the batch: the message still
// gets a report (empty parsed array) and the failure is logged.
func (p *Processor) ProcessBatch(ctx context.Context, batch entity.Batch) (entity.OutputBatch, []entity.Diagnostic) {
	reports := make([]entity.Report, len(batch.Messages))
	sinks := make([]entity.DiagnosticList, len(batch.Messages))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, msg := range batch.Messages {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					p.log.Error("pipeline.message_panic", "message_id", msg.ID, "panic", r)
					reports[i] = entity.Report{
						MessageNumber: msg.ID,
						Payload:       msg.Payload,
						Parsed:        []entity.FinalRecord{},
					}
				}
			}()
			reports[i] = p.pipe.ParseMessage(msg, &sinks[i])
			return nil
		})
	}
	_ = g.Wait()

	var diags []entity.Diagnostic
	records := 0
	for i := range reports {
		records += len(reports[i].Parsed)
		diags = append(diags, sinks[i].Items...)
	}

	p.log.Info("pipeline.batch_done",
		"messages", len(batch.Messages),
		"records", records,
		"diagnostics", len(diags),
	)
	return entity.OutputBatch{Reports: reports}, diags
}
