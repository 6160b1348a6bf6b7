// Package metrics provides Prometheus metrics for launch-gate sessions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelIntent = "intent"
	labelResult = "result"
	labelKind   = "kind"
	labelEffect = "effect"

	// Result values
	ResultSuccess = "success"
	ResultError   = "error"
	ResultStale   = "stale"
)

// Recorder holds the collectors of one registry.
type Recorder struct {
	// IntentsTotal counts processed intents by kind.
	IntentsTotal *prometheus.CounterVec
	// FetchTotal counts status fetch completions by result.
	FetchTotal *prometheus.CounterVec
	// StatusTotal counts classified statuses by kind.
	StatusTotal *prometheus.CounterVec
	// EffectsTotal counts emitted effects by kind.
	EffectsTotal *prometheus.CounterVec
	// FetchDuration tracks how long status fetches take.
	FetchDuration prometheus.Histogram
}

// NewRecorder creates the collectors and registers them on reg.
// A nil reg skips registration.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		IntentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchgate_intents_total",
				Help: "Total number of intents processed by kind",
			},
			[]string{labelIntent},
		),
		FetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchgate_fetch_total",
				Help: "Total number of status fetches by result",
			},
			[]string{labelResult},
		),
		StatusTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchgate_status_total",
				Help: "Total number of classified statuses by kind",
			},
			[]string{labelKind},
		),
		EffectsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchgate_effects_total",
				Help: "Total number of effects emitted by kind",
			},
			[]string{labelEffect},
		),
		FetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "launchgate_fetch_duration_seconds",
				Help:    "Duration of status fetches in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
	}
	if reg != nil {
		reg.MustRegister(r.IntentsTotal, r.FetchTotal, r.StatusTotal, r.EffectsTotal, r.FetchDuration)
	}
	return r
}

// RecordIntent counts one processed intent and the effects it produced.
func (r *Recorder) RecordIntent(intent string, effects []string) {
	if r == nil {
		return
	}
	r.IntentsTotal.WithLabelValues(intent).Inc()
	for _, e := range effects {
		r.EffectsTotal.WithLabelValues(e).Inc()
	}
}

// RecordFetch records a finished fetch.
func (r *Recorder) RecordFetch(result string, duration time.Duration) {
	if r == nil {
		return
	}
	r.FetchTotal.WithLabelValues(result).Inc()
	r.FetchDuration.Observe(duration.Seconds())
}

// RecordStatus counts a classified status kind.
func (r *Recorder) RecordStatus(kind string) {
	if r == nil {
		return
	}
	r.StatusTotal.WithLabelValues(kind).Inc()
}
