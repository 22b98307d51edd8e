package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CommandsTotal counts interpreted commands by kind and outcome
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kvsd_commands_total",
			Help: "Total number of commands processed by kind and outcome",
		},
		[]string{"command", "outcome"},
	)

	StoreKeysTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kvsd_store_keys",
			Help: "Current number of keys held in the store",
		},
	)

	SnapshotsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kvsd_snapshots_total",
			Help: "Total number of snapshot requests by outcome",
		},
		[]string{"outcome"},
	)

	SnapshotsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kvsd_snapshots_in_flight",
			Help: "Number of snapshot workers currently materializing a backup",
		},
	)

	JobDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kvsd_job_duration_seconds",
			Help:    "Time taken to run a job file to completion, in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	JobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kvsd_jobs_total",
			Help: "Total number of job files processed by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(CommandsTotal)
	prometheus.MustRegister(StoreKeysTotal)
	prometheus.MustRegister(SnapshotsTotal)
	prometheus.MustRegister(SnapshotsInFlight)
	prometheus.MustRegister(JobDuration)
	prometheus.MustRegister(JobsTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// Duration returns the elapsed time since the timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
