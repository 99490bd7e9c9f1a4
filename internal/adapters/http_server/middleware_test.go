package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	httpserver "propmatch/internal/adapters/http_server"
	"propmatch/internal/adapters/observability"
)

func TestObserve_RecordsRoutePatternAndStatus(t *testing.T) {
	var buf bytes.Buffer
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(httpserver.Observe(zerolog.New(&buf)))
	r.Get("/v1/properties/{id}/matches", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	const route = "/v1/properties/{id}/matches"
	before := testutil.ToFloat64(observability.HTTPRequests.WithLabelValues(route, "GET", "418"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/properties/p-42/matches", nil))

	after := testutil.ToFloat64(observability.HTTPRequests.WithLabelValues(route, "GET", "418"))
	if after-before != 1 {
		t.Fatalf("counter delta=%v", after-before)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line: %v (%s)", err, buf.String())
	}
	if line["route"] != route || line["path"] != "/v1/properties/p-42/matches" {
		t.Fatalf("route/path: %v", line)
	}
	if line["status"] != float64(418) || line["bytes"] != float64(len("short and stout")) {
		t.Fatalf("status/bytes: %v", line)
	}
	if id, _ := line["request_id"].(string); id == "" {
		t.Fatalf("missing request_id: %v", line)
	}
}

func TestObserve_ImplicitOK(t *testing.T) {
	var buf bytes.Buffer
	h := httpserver.Observe(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/anything", nil))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatal(err)
	}
	if line["status"] != float64(200) || line["route"] != "unmatched" {
		t.Fatalf("unexpected log line: %v", line)
	}
}

func TestServer_RequestTimeout(t *testing.T) {
	s := httpserver.New(20 * time.Millisecond)
	s.Mount("/slow", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))

	rec := httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slow", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", rec.Code)
	}
}
