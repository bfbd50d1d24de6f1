package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/farms/{name}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/farms/{name}", "418"))
	req := httptest.NewRequest(http.MethodGet, "/farms/sunrise", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/farms/{name}", "418"))

	if after-before != 1 {
		t.Errorf("counter delta = %v, want 1", after-before)
	}
}

func TestObserveFilter(t *testing.T) {
	before := testutil.ToFloat64(filterEvaluations.WithLabelValues("test"))
	ObserveFilter("test", 3)
	if got := testutil.ToFloat64(filterEvaluations.WithLabelValues("test")); got-before != 1 {
		t.Errorf("delta = %v, want 1", got-before)
	}
}

func TestStatusWriter_Flush(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &statusWriter{ResponseWriter: rec, status: http.StatusOK}
	var _ http.Flusher = w
	w.Flush()
	if !rec.Flushed {
		t.Error("flush not forwarded")
	}
}
