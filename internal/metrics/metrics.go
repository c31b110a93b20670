// Package metrics exposes Prometheus instrumentation for the sync engine.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Metrics holds the engine collectors. A nil *Metrics records nothing.
type Metrics struct {
	refreshes       *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	mutations       *prometheus.CounterVec
	pending         prometheus.Gauge
	records         prometheus.Gauge
}

// New registers the engine collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "potluck_refreshes_total",
			Help: "Full refreshes from the remote store by trigger and result",
		}, []string{"trigger", "result"}),
		refreshDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "potluck_refresh_duration_seconds",
			Help:    "Duration of fetch-all calls",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "potluck_mutations_total",
			Help: "Optimistic mutations by kind and terminal state",
		}, []string{"kind", "state"}),
		pending: f.NewGauge(prometheus.GaugeOpts{
			Name: "potluck_pending_mutations",
			Help: "Mutations awaiting confirmation",
		}),
		records: f.NewGauge(prometheus.GaugeOpts{
			Name: "potluck_cached_records",
			Help: "Records currently held in the local cache",
		}),
	}
}

// ObserveRefresh counts one refresh attempt.
func (m *Metrics) ObserveRefresh(trigger string, took time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.refreshes.WithLabelValues(trigger, result).Inc()
	m.refreshDuration.Observe(took.Seconds())
}

// ObserveMutation counts a mutation reaching state.
func (m *Metrics) ObserveMutation(kind, state string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(kind, state).Inc()
}

// SetPending records the number of in-flight mutations.
func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}

// SetRecords records the cache size.
func (m *Metrics) SetRecords(n int) {
	if m == nil {
		return
	}
	m.records.Set(float64(n))
}

// Serve exposes g on addr at /metrics until ctx ends.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, log zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Debug().Str("addr", addr).Msg("metrics listener started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
