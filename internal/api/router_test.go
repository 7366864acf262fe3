package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	var called bool
	handler := loggingMiddleware(zap.New(core), http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to be called")
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", rec.Code)
	}
	entries := logs.FilterMessage("request completed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one access log entry, got %d", len(entries))
	}
	if status := entries[0].ContextMap()["status"]; status != int64(http.StatusAccepted) {
		t.Fatalf("expected logged status 202, got %v", status)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := zaptest.NewLogger(t)
	handler := recoveryMiddleware(logger, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(errors.New("boom"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rec.Code)
	}
}

func TestResponseRecorderWriteHeader(t *testing.T) {
	underlying := httptest.NewRecorder()
	rec := &responseRecorder{ResponseWriter: underlying}
	rec.WriteHeader(http.StatusTeapot)

	if rec.status != http.StatusTeapot {
		t.Fatalf("expected status to be recorded")
	}
	if underlying.Code != http.StatusTeapot {
		t.Fatalf("expected status to propagate to ResponseWriter")
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	router := newTestRouter(t, WithLogging(false))

	t.Run("generates id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if _, err := uuid.Parse(rec.Header().Get("X-Request-ID")); err != nil {
			t.Fatalf("expected generated UUID request id, got %q", rec.Header().Get("X-Request-ID"))
		}
	})

	t.Run("propagates id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("X-Request-ID", "req-123")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
			t.Fatalf("expected propagated request id, got %q", got)
		}
	})
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, WithLogging(false))

	req := httptest.NewRequest(http.MethodOptions, "/api/info", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected CORS headers")
	}
}

func TestWithRateLimiterOptionAppliesLimiter(t *testing.T) {
	router := newTestRouter(t, WithLogging(false), WithRateLimiter(&staticLimiter{allow: false}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected rate limiter to block request, got %d", rec.Code)
	}
}

func TestWithRateLimitDisablesLimiterWhenZero(t *testing.T) {
	router := newTestRouter(t, WithLogging(false), WithRateLimiter(&staticLimiter{allow: false}), WithRateLimit(0, 0))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected limiter to be disabled, got %d", rec.Code)
	}
}

func TestWithRateLimitEnforcesLimit(t *testing.T) {
	router := newTestRouter(t, WithLogging(false), WithRateLimit(1, 1))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec.Code)
	}

	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req.Clone(req.Context()))
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected rate limiter to block second request, got %d", rec2.Code)
	}
}

func newTestRouter(t *testing.T, opts ...RouterOption) http.Handler {
	t.Helper()

	handler := NewHandler(Info{Name: "coursera"})
	logger := zaptest.NewLogger(t)
	return NewRouter(handler, logger, opts...)
}
