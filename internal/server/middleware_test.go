package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRequestIDMiddleware(t *testing.T) {
	var seenID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	wrapped := RequestIDMiddleware(handler)

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if seenID == "" {
		t.Error("Expected request ID in context")
	}
	if got := rec.Header().Get("X-Request-ID"); got != seenID {
		t.Errorf("X-Request-ID header = %q, want %q", got, seenID)
	}
}

func TestGetRequestID_NotSet(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() = %q, want empty", got)
	}
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		AddLogField(r.Context(), "query_id", "q-1")
		AddError(r.Context(), errors.New("upstream exploded"))
		w.WriteHeader(http.StatusBadGateway)
	})

	wrapped := LoggingMiddleware(logger)(handler)

	req := httptest.NewRequest("POST", "/v1/search", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	out := buf.String()
	if !strings.Contains(out, "request started") {
		t.Error("Expected start log entry")
	}
	if !strings.Contains(out, "request completed") {
		t.Error("Expected completion log entry")
	}
	if !strings.Contains(out, "status=502") {
		t.Errorf("Expected captured status code in log, got: %s", out)
	}
	if !strings.Contains(out, "query_id=q-1") {
		t.Errorf("Expected custom log field, got: %s", out)
	}
	if !strings.Contains(out, "upstream exploded") {
		t.Errorf("Expected error field, got: %s", out)
	}
}

func TestTimeoutMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok := r.Context().Deadline()
		if !ok {
			t.Error("Expected a deadline on the request context")
		}
		if time.Until(deadline) > 50*time.Millisecond {
			t.Errorf("Deadline too far in the future: %v", time.Until(deadline))
		}
		w.WriteHeader(http.StatusOK)
	})

	wrapped := TimeoutMiddleware(50 * time.Millisecond)(handler)

	req := httptest.NewRequest("GET", "/v1/documents", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
}
