// Package metrics exposes Prometheus counters for backtest throughput.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EventsProcessed counts market events consumed, per strategy and
	// event kind (tick or quote).
	EventsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "backtest",
			Name:      "events_processed_total",
			Help:      "Market events consumed by strategy contexts",
		},
		[]string{"strategy", "kind"},
	)

	// OrdersExecuted counts order fills, per side.
	OrdersExecuted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "backtest",
			Name:      "orders_executed_total",
			Help:      "Orders executed against the simulated book",
		},
		[]string{"side"},
	)

	// ContextsCompleted counts strategy contexts that ran to completion.
	ContextsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "backtest",
			Name:      "contexts_completed_total",
			Help:      "Strategy contexts that finished without error",
		},
	)
)

func init() {
	prometheus.MustRegister(EventsProcessed, OrdersExecuted, ContextsCompleted)
}

// Serve starts an HTTP server exposing /metrics on addr. The server runs
// in the background; callers own shutdown.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
