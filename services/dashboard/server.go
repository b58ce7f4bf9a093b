package main

import (
	"encoding/json"
	"errors"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/example/bridgetwin/internal/assessment"
	"github.com/example/bridgetwin/internal/metrics"
	"github.com/example/bridgetwin/internal/shared"
	"github.com/example/bridgetwin/internal/telemetry"
)

const (
	serviceName  = "dashboard"
	maxBodyBytes = 1 << 16
)

// server holds no per-client state; scenario and location arrive with each request.
type server struct {
	gen    *telemetry.Generator
	engine *assessment.Engine
	feed   *shared.Feed
	logger *zap.Logger
}

func newServer(gen *telemetry.Generator, engine *assessment.Engine, feed *shared.Feed, logger *zap.Logger) *server {
	if gen == nil {
		gen = telemetry.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &server{gen: gen, engine: engine, feed: feed, logger: logger}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/health", method(http.MethodGet, s.handleHealth))
	mux.Handle("/metrics", metrics.MetricsHandler())
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	mux.Handle("/api/v1/locations", method(http.MethodGet, s.handleLocations))
	mux.Handle("/api/v1/telemetry", method(http.MethodGet, s.handleTelemetry))
	mux.Handle("/api/v1/assessments", method(http.MethodPost, s.handleAssess))
	return mux
}

// method rejects requests whose method differs from expected and records HTTP metrics.
func method(expected string, handler http.HandlerFunc) http.Handler {
	return metrics.HTTPMiddleware(serviceName, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
			return
		}
		handler(w, r)
	})
}

// @Summary Health check
// @Description Reports liveness and which assessment strategies are currently available
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	avail := s.engine.Availability()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:              "ok",
		ClassifierAvailable: avail.Model != nil,
		LLMConfigured:       avail.Credential != "",
		FeedEnabled:         s.feed != nil,
	})
}

// @Summary List locations
// @Description Returns the fixed set of monitored structures
// @Tags telemetry
// @Produce json
// @Success 200 {object} LocationsResponse
// @Router /api/v1/locations [get]
func (s *server) handleLocations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LocationsResponse{Count: len(telemetry.Locations), Locations: telemetry.Locations})
}

// @Summary Generate telemetry
// @Description Generates one synthetic telemetry record for the given scenario and location
// @Tags telemetry
// @Produce json
// @Param scenario query string false "normal or critical (default normal)"
// @Param location query string false "Monitored site; only the names listed by /api/v1/locations are accepted (400 otherwise). Random site when omitted."
// @Success 200 {object} telemetry.TelemetryRecord
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/telemetry [get]
func (s *server) handleTelemetry(w http.ResponseWriter, r *http.Request) {

	q := r.URL.Query()
	location := q.Get("location")
	if location != "" && !knownLocation(location) {
		writeError(w, http.StatusBadRequest, "unknown location", location)
		return
	}
	scenario := telemetry.NormalizeScenario(q.Get("scenario"))

	record := s.gen.Generate(string(scenario), location)
	metrics.RecordGenerated(serviceName, string(record.Scenario))
	s.feed.PublishRecord(r.Context(), record)

	writeJSON(w, http.StatusOK, record)
}

// @Summary Assess telemetry
// @Description Produces a safety verdict using the LLM when a credential is configured, otherwise the trained classifier, otherwise threshold rules
// @Tags assessment
// @Accept json
// @Produce json
// @Param record body telemetry.TelemetryRecord true "Telemetry record to assess"
// @Success 200 {object} assessment.Verdict
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/v1/assessments [post]
func (s *server) handleAssess(w http.ResponseWriter, r *http.Request) {

	var record telemetry.TelemetryRecord
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&record); err != nil {
		writeError(w, http.StatusBadRequest, "invalid telemetry record", err.Error())
		return
	}

	verdict, err := s.engine.Assess(r.Context(), record)
	if err != nil {
		var callErr *assessment.ExternalCallError
		if errors.As(err, &callErr) {
			writeError(w, http.StatusBadGateway, "assessment failed", err.Error())
			return
		}
		s.logger.Error("assess", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "assessment failed", err.Error())
		return
	}
	s.feed.PublishVerdict(r.Context(), record, verdict)

	writeJSON(w, http.StatusOK, verdict)
}

func knownLocation(location string) bool {
	for _, l := range telemetry.Locations {
		if l == location {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, detail string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Message: detail})
}
