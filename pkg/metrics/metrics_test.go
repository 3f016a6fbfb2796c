package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.IncInFlight()
	m.ObserveRequest("POST", "/api/orders", 201, 40*time.Millisecond)
	m.DecInFlight()

	if got := testutil.ToFloat64(m.total.WithLabelValues("POST", "/api/orders", "2xx")); got != 1 {
		t.Fatalf("expected 1 request counted, got %v", got)
	}
	if got := testutil.ToFloat64(m.inflight); got != 0 {
		t.Fatalf("expected in-flight back to 0, got %v", got)
	}
}

func TestHTTPMetricsNilSafe(t *testing.T) {
	var m *HTTPMetrics
	m.ObserveRequest("GET", "/healthz", 200, time.Millisecond)
	m.IncInFlight()
	m.DecInFlight()

	empty := NewHTTPMetrics(nil)
	empty.ObserveRequest("GET", "/healthz", 200, time.Millisecond)
}

func TestStatusLabel(t *testing.T) {
	cases := map[int]string{
		200: "2xx",
		201: "2xx",
		301: "3xx",
		404: "4xx",
		409: "4xx",
		500: "5xx",
		99:  "unknown",
	}
	for status, want := range cases {
		if got := statusLabel(status); got != want {
			t.Fatalf("status %d: expected %q, got %q", status, want, got)
		}
	}
}

func TestOrderMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)

	m.IncCreated()
	m.IncCreated()
	m.IncInsufficientStock()
	m.IncCancelled()

	if got := testutil.ToFloat64(m.created); got != 2 {
		t.Fatalf("expected 2 created, got %v", got)
	}
	if got := testutil.ToFloat64(m.insufficientStock); got != 1 {
		t.Fatalf("expected 1 insufficient stock, got %v", got)
	}
	if got := testutil.ToFloat64(m.cancelled); got != 1 {
		t.Fatalf("expected 1 cancelled, got %v", got)
	}

	var nilMetrics *OrderMetrics
	nilMetrics.IncCreated()
	nilMetrics.IncInsufficientStock()
	nilMetrics.IncCancelled()
}
