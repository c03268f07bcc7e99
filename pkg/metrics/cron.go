package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	CronOutcomeSuccess = "success"
	CronOutcomeFailure = "failure"
	// CronOutcomeSkipped means another worker held the job lock.
	CronOutcomeSkipped = "skipped"
)

// CronJobMetrics counts scheduled job runs by outcome and times the ones that executed.
type CronJobMetrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	m := &CronJobMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nowaround_cron_job_runs_total",
			Help: "Cron job cycles by outcome.",
		}, []string{"job", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nowaround_cron_job_duration_seconds",
			Help:    "Duration of executed cron jobs in seconds.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"job"}),
	}
	reg.MustRegister(m.runs, m.duration)
	return m
}

// IncOutcome counts a cycle that did not execute the job body.
func (c *CronJobMetrics) IncOutcome(job, outcome string) {
	if c == nil || c.runs == nil {
		return
	}
	c.runs.WithLabelValues(normalizeLabel(job), outcome).Inc()
}

// ObserveRun counts an executed job and records how long it took.
func (c *CronJobMetrics) ObserveRun(job, outcome string, d time.Duration) {
	if c == nil || c.runs == nil {
		return
	}
	c.IncOutcome(job, outcome)
	c.duration.WithLabelValues(normalizeLabel(job)).Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
