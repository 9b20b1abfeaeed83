package worker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"arxiv-digest/internal/usecase/digest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestHealthServer_Probes(t *testing.T) {
	h := NewHealthServer(":0", quietLogger(), nil)
	handler := h.Handler()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decodeBody(t, rr)["status"])

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "not ready", decodeBody(t, rr)["status"])

	h.SetReady(true)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/run", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code, "/run is only mounted with a trigger")
}

func TestHealthServer_Run(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		run        RunFunc
		wantCode   int
		wantStatus string
	}{
		{
			name:   "successful run",
			method: http.MethodPost,
			run: func(context.Context) (digest.Status, error) {
				return digest.Status{Status: digest.StatusOK, RunID: "r1", Posted: 2}, nil
			},
			wantCode:   http.StatusOK,
			wantStatus: "ok",
		},
		{
			name:   "failed run",
			method: http.MethodPost,
			run: func(context.Context) (digest.Status, error) {
				return digest.Status{Status: digest.StatusError, Error: "feed unavailable"}, errors.New("feed unavailable")
			},
			wantCode:   http.StatusInternalServerError,
			wantStatus: "error",
		},
		{
			name:       "GET not allowed",
			method:     http.MethodGet,
			run:        func(context.Context) (digest.Status, error) { return digest.Status{}, nil },
			wantCode:   http.StatusMethodNotAllowed,
			wantStatus: "method not allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trigger := NewTrigger(tt.run, time.Minute, testMetrics(t), quietLogger())
			handler := NewHealthServer(":0", quietLogger(), trigger).Handler()

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(tt.method, "/run", nil))

			assert.Equal(t, tt.wantCode, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantStatus, decodeBody(t, rr)["status"])
		})
	}
}

func TestHealthServer_Run_Conflict(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	trigger := NewTrigger(func(context.Context) (digest.Status, error) {
		close(started)
		<-release
		return digest.Status{Status: digest.StatusOK}, nil
	}, time.Minute, testMetrics(t), quietLogger())
	handler := NewHealthServer(":0", quietLogger(), trigger).Handler()

	go func() { _, _ = trigger.Fire(context.Background(), "cron") }()
	<-started
	defer close(release)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/run", nil))

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "busy", decodeBody(t, rr)["status"])
}

func spanAttrs(span tracetest.SpanStub) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value, len(span.Attributes))
	for _, kv := range span.Attributes {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestHealthServer_Run_TracesRunOnly(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	trigger := NewTrigger(func(context.Context) (digest.Status, error) {
		return digest.Status{Status: digest.StatusOK, RunID: "run-42", State: digest.StateDone, Posted: 3}, nil
	}, time.Minute, testMetrics(t), quietLogger())
	h := NewHealthServer(":0", quietLogger(), trigger)
	h.SetReady(true)
	handler := h.Handler()

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Empty(t, exporter.GetSpans(), "probe requests are not traced")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/run", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	attrs := spanAttrs(spans[0])
	assert.Equal(t, "POST /run", spans[0].Name)
	assert.Equal(t, "http", attrs["digest.trigger"].AsString())
	assert.Equal(t, "run-42", attrs["digest.run_id"].AsString())
	assert.Equal(t, "done", attrs["digest.state"].AsString())
	assert.Equal(t, int64(3), attrs["digest.posted"].AsInt64())
}

func TestHealthServer_GracefulShutdown(t *testing.T) {
	h := NewHealthServer("127.0.0.1:0", quietLogger(), nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- h.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("health server did not stop")
	}
}
