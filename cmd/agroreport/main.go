package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mkuznetsov-agro/agroreport/internal/catalog"
	"github.com/mkuznetsov-agro/agroreport/internal/common"
	"github.com/mkuznetsov-agro/agroreport/internal/entity"
	"github.com/mkuznetsov-agro/agroreport/internal/export"
	"github.com/mkuznetsov-agro/agroreport/internal/ingest"
	"github.com/mkuznetsov-agro/agroreport/internal/pipeline"
	"github.com/mkuznetsov-agro/agroreport/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		out     = flag.String("o", "output.json", "output JSON file path")
		xlsxOut = flag.String("xlsx", "", "optional XLSX workbook path")
		dbPath  = flag.String("db", "", "optional run-history SQLite file")
		catPath = flag.String("catalog", "", "optional catalog YAML file (default: built-in tables)")
		workers = flag.Int("workers", 0, "parallel message workers (default: from env)")
		verbose = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		printError("usage: agroreport [flags] <input.json>\n")
		flag.PrintDefaults()
		os.Exit(2)
	}
	inputPath := flag.Arg(0)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *catPath != "" {
		cfg.Catalog.Path = *catPath
	}
	if *workers > 0 {
		cfg.Pipeline.Workers = *workers
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	startedAt := time.Now()

	cat, err := catalog.Load(cfg.Catalog.Path, cfg.Catalog.Threshold, logger)
	if err != nil {
		logger.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	batch, err := ingest.Load(inputPath, logger)
	if err != nil {
		logger.Error("failed to load input", "error", err)
		os.Exit(1)
	}

	proc := pipeline.NewProcessor(pipeline.New(cat, logger), cfg.Pipeline.Workers, logger)
	result, diags := proc.ProcessBatch(ctx, batch)

	if err := export.WriteJSON(*out, result); err != nil {
		logger.Error("failed to write output", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("output written", "path", *out)

	if *xlsxOut != "" {
		if err := export.NewService(logger).WriteXLSX(*xlsxOut, result); err != nil {
			logger.Error("failed to write workbook", "path", *xlsxOut, "error", err)
			os.Exit(1)
		}
	}

	if cfg.Store.Path != "" {
		db, err := repository.Open(ctx, cfg.Store.Path, logger)
		if err != nil {
			logger.Error("failed to open run store", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if _, err := repository.NewRunStore(db, logger).SaveRun(ctx, startedAt, result, diags); err != nil {
			logger.Error("failed to save run", "error", err)
			os.Exit(1)
		}
	}

	printSummary(logger, result, diags)
}

// printSummary logs batch statistics: per-operation record counts and
// missing-field tallies.
func printSummary(logger *slog.Logger, out entity.OutputBatch, diags []entity.Diagnostic) {
	records := 0
	opStats := make(map[string]int)
	missing := map[string]int{"operation": 0, "crop": 0, "dailyArea": 0, "totalArea": 0}

	for _, report := range out.Reports {
		records += len(report.Parsed)
		for _, rec := range report.Parsed {
			if rec.Operation != nil {
				opStats[*rec.Operation]++
			} else {
				missing["operation"]++
			}
			if rec.Crop == nil {
				missing["crop"]++
			}
			if rec.DailyArea == nil {
				missing["dailyArea"]++
			}
			if rec.TotalArea == nil {
				missing["totalArea"]++
			}
		}
	}

	logger.Info("summary", "messages", len(out.Reports), "records", records, "diagnostics", len(diags))
	for op, n := range opStats {
		logger.Info("summary.operation", "operation", op, "records", n)
	}
	for field, n := range missing {
		if n > 0 {
			logger.Warn("summary.missing", "field", field, "records", n)
		}
	}
	for _, d := range diags {
		logger.Warn("diagnostic",
			"message_id", d.MessageID,
			"line", d.Line,
			"reason", string(d.Reason),
			"raw", d.Raw,
		)
	}
}
