// Package metrics exposes agent activity as Prometheus counters.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bountyagent"

// TokenSource reports cumulative oracle token usage.
type TokenSource func() (input, output int64)

// Metrics holds the agent's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	cycles        prometheus.Counter
	cycleErrors   prometheus.Counter
	cycleDuration prometheus.Histogram
	evaluations   *prometheus.CounterVec
	claims        *prometheus.CounterVec
	submissions   *prometheus.CounterVec
}

// New registers the agent collectors. tokens may be nil.
func New(tokens TokenSource) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		cycles: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed agent cycles.",
		}),
		cycleErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycle_errors_total",
			Help:      "Agent cycles that ended with an error.",
		}),
		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of agent cycles.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Bounty evaluations by verdict.",
		}, []string{"verdict"}),
		claims: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claims_total",
			Help:      "Claim attempts by outcome.",
		}, []string{"outcome"}),
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Submit attempts by outcome.",
		}, []string{"outcome"}),
	}

	if tokens != nil {
		factory.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_input_tokens_total",
			Help:      "Input tokens sent to the reasoning oracle.",
		}, func() float64 {
			in, _ := tokens()
			return float64(in)
		})
		factory.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_output_tokens_total",
			Help:      "Output tokens received from the reasoning oracle.",
		}, func() float64 {
			_, out := tokens()
			return float64(out)
		})
	}

	return m
}

// Registry returns the private registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveCycle records a finished cycle.
func (m *Metrics) ObserveCycle(d time.Duration, err error) {
	m.cycles.Inc()
	m.cycleDuration.Observe(d.Seconds())
	if err != nil {
		m.cycleErrors.Inc()
	}
}

// ObserveEvaluation records one verdict ("suitable", "unsuitable", "low_confidence").
func (m *Metrics) ObserveEvaluation(verdict string) {
	m.evaluations.WithLabelValues(verdict).Inc()
}

// ObserveClaim records one claim outcome ("claimed", "failed", "over_budget").
func (m *Metrics) ObserveClaim(outcome string) {
	m.claims.WithLabelValues(outcome).Inc()
}

// ObserveSubmission records one submit outcome ("submitted", "dry_run", "failed").
func (m *Metrics) ObserveSubmission(outcome string) {
	m.submissions.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[metrics] serving on %s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
