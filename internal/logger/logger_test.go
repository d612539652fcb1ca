package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kdduha/llama-vision/backend/internal/config"
	"github.com/rs/zerolog"
)

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestNew_UnknownLevelIsInfo(t *testing.T) {
	l := newWithWriter(config.LogConfig{Level: "chatty"}, &bytes.Buffer{})
	if l.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("level = %v", l.GetLevel())
	}
}

func TestMiddleware_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(config.LogConfig{Level: "info"}, &buf)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(Middleware(l))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unhealthy"}`))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not json: %v (%q)", err, buf.String())
	}
	if entry["level"] != "error" || entry["status"] != float64(503) || entry["path"] != "/health" {
		t.Fatalf("entry = %v", entry)
	}
	if entry["request_id"] == nil || entry["request_id"] == "" {
		t.Fatalf("missing request id: %v", entry)
	}
}
