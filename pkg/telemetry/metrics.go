package telemetry

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	passes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "loom",
			Subsystem: "compose",
			Name:      "passes_total",
			Help:      "Total composition passes.",
		},
	)
	passDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "loom",
			Subsystem: "compose",
			Name:      "pass_duration_seconds",
			Help:      "Composition pass duration in seconds.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)
	passRecomposed = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "loom",
			Subsystem: "compose",
			Name:      "pass_scopes_recomposed",
			Help:      "Scopes recomposed per pass.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
	recompositions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "loom",
			Subsystem: "compose",
			Name:      "recompositions_total",
			Help:      "Total scope recompositions.",
		},
	)
	scopesLive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "loom",
			Subsystem: "compose",
			Name:      "scopes_live",
			Help:      "Currently mounted scopes.",
		},
	)
	scopesMounted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "loom",
			Subsystem: "compose",
			Name:      "scopes_mounted_total",
			Help:      "Total scopes mounted.",
		},
	)
	scopesUnmounted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "loom",
			Subsystem: "compose",
			Name:      "scopes_unmounted_total",
			Help:      "Total scopes destroyed.",
		},
	)
	tasksSpawned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "loom",
			Subsystem: "compose",
			Name:      "tasks_spawned_total",
			Help:      "Background tasks spawned by UseTask.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			passes, passDuration, passRecomposed, recompositions,
			scopesLive, scopesMounted, scopesUnmounted, tasksSpawned,
		)
	})
}

func RecordPass(duration time.Duration, recomposed int) {
	RegisterMetrics()
	passes.Inc()
	passDuration.Observe(duration.Seconds())
	passRecomposed.Observe(float64(recomposed))
}

func RecordRecomposition() {
	RegisterMetrics()
	recompositions.Inc()
}

func RecordScopeMounted() {
	RegisterMetrics()
	scopesMounted.Inc()
	scopesLive.Inc()
}

func RecordScopeUnmounted() {
	RegisterMetrics()
	scopesUnmounted.Inc()
	scopesLive.Dec()
}

func RecordTaskSpawned() {
	RegisterMetrics()
	tasksSpawned.Inc()
}

// MetricsHandler returns the Prometheus scrape handler for hosts that
// serve metrics themselves.
func MetricsHandler() http.Handler {
	RegisterMetrics()
	return promhttp.Handler()
}

// ServeMetrics starts a metrics endpoint per the config. It returns the
// server so callers can shut it down; a disabled config returns nil.
func ServeMetrics(cfg MetricsConfig) *http.Server {
	if !cfg.Enabled {
		return nil
	}
	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, MetricsHandler())
	srv := &http.Server{Addr: cfg.ListenAddress, Handler: mux}
	go srv.ListenAndServe()
	return srv
}
