// Package metrics provides Prometheus metrics for numgen.
// Counters cover candidate outcomes and run outcomes; the histogram tracks
// run duration. They are exposed on /metrics in serve mode.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Candidate outcomes.
const (
	OutcomeAccepted  = "accepted"
	OutcomeInvalid   = "invalid"
	OutcomeDuplicate = "duplicate"
	OutcomeOverflow  = "overflow"
)

// Run outcomes.
const (
	RunComplete  = "complete"
	RunExhausted = "exhausted"
	RunAborted   = "aborted"
	RunCancelled = "cancelled"
)

// ─── Generation ─────────────────────────────────────────────────────────────

// CandidatesTotal counts built candidates by region and outcome.
var CandidatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "numgen",
	Name:      "candidates_total",
	Help:      "Total candidate numbers built, by outcome.",
}, []string{"region", "outcome"})

// RunsTotal counts generation runs by mode and outcome.
var RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "numgen",
	Name:      "runs_total",
	Help:      "Total generation runs, by mode and outcome.",
}, []string{"mode", "outcome"})

// RunDuration tracks generation run duration in seconds.
var RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "numgen",
	Name:      "run_duration_seconds",
	Help:      "Generation run duration in seconds.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
}, []string{"mode"})

// ─── Resolution ─────────────────────────────────────────────────────────────

// ResolutionsTotal counts country resolutions by result ("hit", "miss", "cached").
var ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "numgen",
	Name:      "resolutions_total",
	Help:      "Total country resolutions, by result.",
}, []string{"result"})

// ─── Export ─────────────────────────────────────────────────────────────────

// RecordsExported counts records written by format.
var RecordsExported = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "numgen",
	Name:      "records_exported_total",
	Help:      "Total records written to exports, by format.",
}, []string{"format"})
