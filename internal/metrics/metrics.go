// Package metrics holds Prometheus instruments for the lead pipeline.  All
// collectors are registered with the global registry, so importing this
// package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values for SubmissionsTotal.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeUpstream = "upstream_error"
)

var (
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_submissions_total",
			Help: "Form submissions by form and outcome.",
		}, []string{"form", "outcome"})

	AppendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sheet_append_duration_seconds",
			Help:    "Latency of spreadsheet appends by destination.",
			Buckets: prometheus.DefBuckets,
		}, []string{"destination"})

	MirrorErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_mirror_errors_total",
			Help: "Cumulative number of failed mirror inserts.",
		})
)

func init() {
	prometheus.MustRegister(
		SubmissionsTotal,
		AppendDuration,
		MirrorErrorsTotal,
	)
}
