// Package server exposes the parse pipeline over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/mkuznetsov-agro/agroreport/internal/common"
	"github.com/mkuznetsov-agro/agroreport/internal/entity"
	"github.com/mkuznetsov-agro/agroreport/internal/ingest"
	"github.com/mkuznetsov-agro/agroreport/internal/pipeline"
)

const maxBodyBytes = 8 << 20 // batches are small; anything bigger is abuse

// Server handles parse requests. Stateless: every request is a full batch.
type Server struct {
	proc   *pipeline.Processor
	logger *slog.Logger
}

func New(proc *pipeline.Processor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{proc: proc, logger: logger}
}

// Routes wires middlewares and endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/api/parse", s.handleParse)

	return r
}

// parseResponse is the output envelope plus diagnostics when requested.
type parseResponse struct {
	Reports     []entity.Report     `json:"reports"`
	Diagnostics []entity.Diagnostic `json:"diagnostics,omitempty"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	batch, err := ingest.Decode(body)
	if err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			s.writeError(w, http.StatusBadRequest, appErr.Error())
		} else {
			s.writeError(w, http.StatusBadRequest, "invalid input envelope")
		}
		return
	}

	out, diags := s.proc.ProcessBatch(r.Context(), batch)

	resp := parseResponse{Reports: out.Reports}
	if r.URL.Query().Get("diagnostics") == "1" {
		resp.Diagnostics = diags
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(resp); err != nil {
		s.logger.Error("server.encode_failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
