package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hotspot_monitor"

var (
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "probe",
			Name:      "rounds_total",
			Help:      "Total number of connectivity probe rounds",
		},
		[]string{"result"},
	)

	ProbeTargetDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "probe",
			Name:      "target_duration_seconds",
			Help:      "Reachability check duration per endpoint",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"target", "result"},
	)

	ConnectivityUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "connectivity_up",
			Help:      "1 when the link is UP, 0 when DOWN or unknown",
		},
	)

	Recovering = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "recovering",
			Help:      "1 while a recovery episode is open",
		},
	)

	ConsecutiveFailures = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "consecutive_failures",
			Help:      "Current run of failed probe rounds",
		},
	)

	EpisodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "episodes_total",
			Help:      "Recovery episodes by outcome",
		},
		[]string{"outcome"},
	)

	DowntimeSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "downtime_seconds",
			Help:      "Time from disconnect to reconnect",
			Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
	)

	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "login",
			Name:      "attempts_total",
			Help:      "Captive portal login attempts",
		},
		[]string{"strategy", "result"},
	)

	LoginDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "login",
			Name:      "duration_seconds",
			Help:      "Captive portal login attempt duration",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"strategy"},
	)

	BrowserSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "login",
			Name:      "browser_sessions_open",
			Help:      "Browser sessions currently open",
		},
	)

	LogbookWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "logbook",
			Name:      "writes_total",
			Help:      "Logbook writes by table and result",
		},
		[]string{"table", "result"},
	)

	LogbookWriteRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "logbook",
			Name:      "write_retries_total",
			Help:      "Logbook writes retried after a storage error",
		},
	)

	SchedulerJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "jobs_total",
			Help:      "Scheduled jobs executed",
		},
		[]string{"job_name", "status"},
	)
)

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// RecordProbe records the outcome of a probe round
func RecordProbe(reachable bool) {
	ProbesTotal.WithLabelValues(result(reachable)).Inc()
}

// RecordTarget records one endpoint check
func RecordTarget(target string, ok bool, duration time.Duration) {
	ProbeTargetDuration.WithLabelValues(target, result(ok)).Observe(duration.Seconds())
}

// RecordLogin records a login attempt
func RecordLogin(strategy string, ok bool, duration time.Duration) {
	LoginAttemptsTotal.WithLabelValues(strategy, result(ok)).Inc()
	LoginDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordState mirrors the coordinator state into gauges
func RecordState(up, recovering bool, failures int) {
	ConnectivityUp.Set(boolValue(up))
	Recovering.Set(boolValue(recovering))
	ConsecutiveFailures.Set(float64(failures))
}

// RecordEpisode records a closed episode and, when recovered, its downtime
func RecordEpisode(outcome string, downtime time.Duration) {
	EpisodesTotal.WithLabelValues(outcome).Inc()
	if downtime > 0 {
		DowntimeSeconds.Observe(downtime.Seconds())
	}
}

// RecordWrite records a logbook write
func RecordWrite(table string, ok bool) {
	LogbookWritesTotal.WithLabelValues(table, result(ok)).Inc()
}

// RecordJob records a scheduled job run
func RecordJob(name string, ok bool) {
	SchedulerJobsTotal.WithLabelValues(name, result(ok)).Inc()
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
