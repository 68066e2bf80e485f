package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jakechorley/nurse-rota/pkg/core/ga"
)

const namespace = "nra_ga"

// Metrics holds the genetic algorithm collectors on a dedicated registry
type Metrics struct {
	registry *prometheus.Registry

	runs        *prometheus.CounterVec
	generations *prometheus.CounterVec
	evaluations *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	bestCost    *prometheus.GaugeVec
}

// New creates and registers the collectors, plus the Go runtime collectors
func New() *Metrics {
	labels := []string{"instance"}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed genetic algorithm runs.",
		}, labels),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Ranked generations across all runs.",
		}, labels),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Individuals evaluated by the fitness function.",
		}, labels),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of a run.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, labels),
		bestCost: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_cost",
			Help:      "Best cost of the most recently ranked generation.",
		}, labels),
	}

	m.registry.MustRegister(
		m.runs,
		m.generations,
		m.evaluations,
		m.runDuration,
		m.bestCost,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observer returns a ga.Observer recording into this instance's series
func (m *Metrics) Observer(instanceName string) ga.Observer {
	return &observer{
		runs:        m.runs.WithLabelValues(instanceName),
		generations: m.generations.WithLabelValues(instanceName),
		evaluations: m.evaluations.WithLabelValues(instanceName),
		runDuration: m.runDuration.WithLabelValues(instanceName),
		bestCost:    m.bestCost.WithLabelValues(instanceName),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on addr until ctx is cancelled
func (m *Metrics) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Serving metrics", zap.String("addr", addr))
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve metrics: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down metrics server: %w", err)
		}
		return nil
	}
}

type observer struct {
	runs        prometheus.Counter
	generations prometheus.Counter
	evaluations prometheus.Counter
	runDuration prometheus.Observer
	bestCost    prometheus.Gauge
}

func (o *observer) GenerationCompleted(run, generation int, best float64) {
	o.generations.Inc()
	o.bestCost.Set(best)
}

func (o *observer) RunCompleted(record *ga.RunRecord) {
	o.runs.Inc()
	o.runDuration.Observe(record.Duration.Seconds())
}

func (o *observer) EvaluationsCompleted(count int) {
	o.evaluations.Add(float64(count))
}
