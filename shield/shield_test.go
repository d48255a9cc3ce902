package shield

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStack(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var gotMethod string
	var sawLogger bool
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		sawLogger = GetLogger(r.Context()) != slog.Default()
		w.WriteHeader(http.StatusOK)
	})
	stack := Stack(logger)
	for i := len(stack) - 1; i >= 0; i-- {
		h = stack[i](h)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/status", nil))

	if gotMethod != http.MethodGet {
		t.Fatalf("method = %q, want GET", gotMethod)
	}
	if !sawLogger {
		t.Fatal("per-request logger not in context")
	}
	for header, want := range map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "no-referrer",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
		"Cache-Control":           "no-store",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	id := rec.Header().Get("X-Trace-ID")
	if len(id) != 8 {
		t.Fatalf("trace id = %q, want 8 hex chars", id)
	}
	if !strings.Contains(logs.String(), "trace_id="+id) {
		t.Fatalf("trace id not logged:\n%s", logs.String())
	}
}

func TestSecurityHeaders_SkipsEmpty(t *testing.T) {
	h := SecurityHeaders(HeaderConfig{XFrameOptions: "SAMEORIGIN"})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Frame-Options") != "SAMEORIGIN" {
		t.Fatalf("X-Frame-Options = %q", rec.Header().Get("X-Frame-Options"))
	}
	if rec.Header().Get("Content-Security-Policy") != "" {
		t.Fatal("empty CSP should not be set")
	}
}

func TestGetLogger_Default(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if GetLogger(r.Context()) != slog.Default() {
		t.Fatal("want slog.Default() without middleware")
	}
}
