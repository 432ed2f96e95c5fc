package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/mkuznetsov-agro/agroreport/internal/catalog"
	"github.com/mkuznetsov-agro/agroreport/internal/common"
	"github.com/mkuznetsov-agro/agroreport/internal/pipeline"
	"github.com/mkuznetsov-agro/agroreport/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	cat, err := catalog.Load(cfg.Catalog.Path, cfg.Catalog.Threshold, logger)
	if err != nil {
		logger.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	proc := pipeline.NewProcessor(pipeline.New(cat, logger), cfg.Pipeline.Workers, logger)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.New(proc, logger).Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info("agroreportd listening", "addr", cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
