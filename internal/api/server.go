package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/BAPNuSigma/StockAI/internal/aggregate"
	"github.com/BAPNuSigma/StockAI/internal/app"
	"github.com/BAPNuSigma/StockAI/internal/metrics"
	"github.com/BAPNuSigma/StockAI/internal/models"
)

// Server exposes report building over HTTP
type Server struct {
	builder *app.Builder
	log     zerolog.Logger
	http    *http.Server
}

// NewServer builds the router and the underlying http.Server
func NewServer(addr string, builder *app.Builder, log zerolog.Logger) *Server {
	s := &Server{
		builder: builder,
		log:     log.With().Str("component", "api").Logger(),
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/v1/reports", s.handleBuildReport).Methods(http.MethodPost)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Start blocks until the listener fails or Shutdown is called
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// buildRequest is the POST /v1/reports body
type buildRequest struct {
	Symbol     string `json:"symbol"`
	Template   string `json:"template"`
	Resolution string `json:"resolution,omitempty"`
	RangeYears int    `json:"range_years,omitempty"`
}

func (s *Server) handleBuildReport(w http.ResponseWriter, r *http.Request) {
	var body buildRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	kind, err := models.ParseTemplateKind(body.Template)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	doc, err := s.builder.Build(r.Context(), app.Request{
		Symbol:     body.Symbol,
		Template:   kind,
		Resolution: body.Resolution,
		RangeYears: body.RangeYears,
	})
	if err != nil {
		var aggErr *aggregate.AggregationError
		if errors.As(err, &aggErr) {
			writeError(w, http.StatusBadGateway, aggErr.Error())
			return
		}
		s.log.Error().Err(err).Str("symbol", body.Symbol).Msg("report build failed")
		writeError(w, http.StatusInternalServerError, "report build failed")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
