package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tournament_engine"

// Metrics records schedule generation and standings recomputation on its own
// registry.
type Metrics struct {
	registry *prometheus.Registry

	schedulesGenerated *prometheus.CounterVec
	scheduleFailures   *prometheus.CounterVec
	matchesCreated     *prometheus.CounterVec
	generateDuration   *prometheus.HistogramVec
	standingsDuration  prometheus.Histogram
	standingsRows      prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		schedulesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedules_generated_total",
			Help:      "Schedules written, by kind.",
		}, []string{"kind"}),
		scheduleFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_failures_total",
			Help:      "Schedule generations that did not commit, by kind and reason.",
		}, []string{"kind", "reason"}),
		matchesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_created_total",
			Help:      "Matches created by schedule generation, by kind.",
		}, []string{"kind"}),
		generateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "schedule_generation_seconds",
			Help:      "Time spent generating and storing a schedule.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		standingsDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "standings_compute_seconds",
			Help:      "Time spent recomputing a standings table.",
			Buckets:   prometheus.DefBuckets,
		}),
		standingsRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "standings_rows",
			Help:      "Rows in each recomputed standings table.",
			Buckets:   prometheus.ExponentialBuckets(2, 2, 8),
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.schedulesGenerated,
		m.scheduleFailures,
		m.matchesCreated,
		m.generateDuration,
		m.standingsDuration,
		m.standingsRows,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ScheduleGenerated(kind string, matches int, elapsed time.Duration) {
	m.schedulesGenerated.WithLabelValues(kind).Inc()
	m.matchesCreated.WithLabelValues(kind).Add(float64(matches))
	m.generateDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (m *Metrics) ScheduleFailed(kind, reason string) {
	m.scheduleFailures.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) StandingsComputed(rows int, elapsed time.Duration) {
	m.standingsDuration.Observe(elapsed.Seconds())
	m.standingsRows.Observe(float64(rows))
}
