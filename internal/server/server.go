// Package server exposes the dashboard over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"notary-dash/internal/dashboard"
	"notary-dash/internal/metrics"
)

// Dashboard is the part of the dashboard service the HTTP layer depends on.
type Dashboard interface {
	Configured() bool
	WindowJSON(ctx context.Context, from, to time.Time) ([]byte, error)
	Current(ctx context.Context) (json.RawMessage, error)
}

// Config for the HTTP API handler.
type Config struct {
	Dashboard Dashboard
	Metrics   *metrics.Metrics
	Timeout   time.Duration
}

type apiErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiError struct {
	Body apiErrorBody `json:"error"`
}

// New returns an HTTP handler exposing the dashboard API.
func New(cfg Config) http.Handler {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(withDeadline(timeout))
	router.Use(instrument(cfg.Metrics))

	h := &handlers{dash: cfg.Dashboard}
	router.Get("/api/dashboard", h.dashboard)
	router.Get("/healthz", h.health)
	if cfg.Metrics != nil {
		router.Handle("/metrics", cfg.Metrics.Handler())
	}
	return router
}

type handlers struct {
	dash Dashboard
}

func (h *handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rawFrom, rawTo := q.Get("from"), q.Get("to")

	if rawFrom == "" || rawTo == "" {
		raw, err := h.dash.Current(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, raw)
		return
	}

	from, err := parseTime(rawFrom)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "bad_request", "invalid from: "+err.Error())
		return
	}
	to, err := parseTime(rawTo)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "bad_request", "invalid to: "+err.Error())
		return
	}
	if from.After(to) {
		writeAPIError(w, http.StatusBadRequest, "bad_request", dashboard.ErrInvalidWindow.Error())
		return
	}

	body, err := h.dash.WindowJSON(r.Context(), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	if !h.dash.Configured() {
		status = "unconfigured"
	}
	body, _ := json.Marshal(map[string]string{"status": status})
	writeJSON(w, http.StatusOK, body)
}

// parseTime accepts RFC3339 with or without fractional seconds.
func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// Client-facing messages are fixed per code; the wrapped error is only logged.
const (
	msgNotConfigured = "dashboard backend is not configured"
	msgUpstream      = "upstream fetch failed"
	msgTimeout       = "request timed out"
	msgInternal      = "internal error"
)

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.With().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Logger()
	switch {
	case errors.Is(err, dashboard.ErrNotConfigured):
		logger.Warn().Msg("Dashboard not configured")
		writeAPIError(w, http.StatusServiceUnavailable, "not_configured", msgNotConfigured)
	case errors.Is(err, dashboard.ErrInvalidWindow):
		writeAPIError(w, http.StatusBadRequest, "bad_request", dashboard.ErrInvalidWindow.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		logger.Warn().Msg("Request deadline exceeded")
		writeAPIError(w, http.StatusGatewayTimeout, "timeout", msgTimeout)
	case errors.Is(err, dashboard.ErrUpstream):
		logger.Error().Msg("Upstream failure")
		writeAPIError(w, http.StatusBadGateway, "upstream_error", msgUpstream)
	default:
		logger.Error().Msg("Request failed")
		writeAPIError(w, http.StatusInternalServerError, "internal_error", msgInternal)
	}
}

// withDeadline bounds each request's context. The handler owns the 504 it causes.
func withDeadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	body, _ := json.Marshal(apiError{Body: apiErrorBody{Code: code, Message: message}})
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func instrument(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.RecordRequest(route, strconv.Itoa(status), time.Since(start))
			log.Debug().
				Str("method", r.Method).
				Str("route", route).
				Int("status", status).
				Dur("took", time.Since(start)).
				Msg("Request served")
		})
	}
}
