package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"arxiv-digest/internal/observability/tracing"
	"arxiv-digest/internal/usecase/digest"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const triggerSourceHTTP = "http"

// HealthServer serves liveness and readiness probes and, when a Trigger is
// attached, the POST /run endpoint that starts a digest on demand.
//
// Endpoints:
//   - GET /health: liveness, always 200 while the process runs
//   - GET /health/ready: 200 once the scheduler is running, 503 before
//   - POST /run: runs a digest synchronously and returns its Status
type HealthServer struct {
	addr    string
	logger  *slog.Logger
	isReady *atomic.Bool
	trigger *Trigger
	server  *http.Server
}

type healthResponse struct {
	Status string `json:"status"`
}

// NewHealthServer creates a HealthServer listening on addr. trigger may be nil.
func NewHealthServer(addr string, logger *slog.Logger, trigger *Trigger) *HealthServer {
	return &HealthServer{
		addr:    addr,
		logger:  logger,
		isReady: &atomic.Bool{},
		trigger: trigger,
	}
}

// Handler returns the HTTP handler with all routes. Only /run is traced.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleLiveness)
	mux.HandleFunc("/health/ready", h.handleReadiness)
	if h.trigger != nil {
		mux.HandleFunc("/run", h.handleRun)
	}
	return tracing.Middleware(mux, tracing.WithUntracedPaths("/health", "/health/ready"))
}

// Start serves until ctx is cancelled, then shuts down gracefully.
// It returns http.ErrServerClosed after a clean shutdown.
func (h *HealthServer) Start(ctx context.Context) error {
	writeTimeout := 5 * time.Second
	if h.trigger != nil {
		writeTimeout = h.trigger.Timeout() + 30*time.Second
	}

	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      h.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		if err := h.server.ListenAndServe(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		h.logger.Info("health server shutting down")
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		h.logger.Info("health server stopped")
		return http.ErrServerClosed

	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("health server failed", slog.Any("error", err))
		}
		return err
	}
}

// SetReady marks the worker ready (or not) for the readiness probe.
func (h *HealthServer) SetReady(ready bool) {
	h.isReady.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if h.isReady.Load() {
		h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}
	h.writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready"})
}

// handleRun runs a digest for the request. The run is detached from the
// request's cancellation so a dropped client does not abort it midway.
func (h *HealthServer) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.writeJSON(w, http.StatusMethodNotAllowed, healthResponse{Status: "method not allowed"})
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("digest.trigger", triggerSourceHTTP))

	status, err := h.trigger.Fire(context.WithoutCancel(r.Context()), triggerSourceHTTP)
	if status.RunID != "" {
		span.SetAttributes(
			attribute.String("digest.run_id", status.RunID),
			attribute.String("digest.state", string(status.State)),
			attribute.Int("digest.posted", status.Posted),
		)
	}
	switch {
	case errors.Is(err, ErrRunInProgress):
		span.SetAttributes(attribute.Bool("digest.refused", true))
		h.writeJSON(w, http.StatusConflict, healthResponse{Status: "busy"})
	case err != nil:
		if status.Status == "" {
			status.Status = digest.StatusError
		}
		h.writeJSON(w, http.StatusInternalServerError, status)
	default:
		h.writeJSON(w, http.StatusOK, status)
	}
}

func (h *HealthServer) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}
