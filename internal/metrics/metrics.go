// Package metrics records run statistics as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Protein outcome labels.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Recorder owns a private registry so concurrent runs (and tests) never share
// counters. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	proteins    *prometheus.CounterVec
	generated   prometheus.Counter
	truncated   prometheus.Counter
	enumeration prometheus.Histogram
}

// New creates a Recorder with all metrics registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		proteins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proteoform_proteins_total",
				Help: "Proteins processed, by outcome",
			},
			[]string{"status"},
		),
		generated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "proteoform_generated_total",
			Help: "Proteoforms generated across all proteins",
		}),
		truncated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "proteoform_truncated_proteins_total",
			Help: "Proteins whose combinations exceeded the limit",
		}),
		enumeration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "proteoform_enumeration_seconds",
			Help:    "Time spent enumerating a single protein",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}
	r.registry.MustRegister(r.proteins, r.generated, r.truncated, r.enumeration)
	return r
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveProtein records a successfully enumerated protein.
func (r *Recorder) ObserveProtein(generated int, truncated bool, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.proteins.WithLabelValues(StatusOK).Inc()
	r.generated.Add(float64(generated))
	if truncated {
		r.truncated.Inc()
	}
	r.enumeration.Observe(elapsed.Seconds())
}

// ObserveFailure records a protein that was rejected or skipped.
func (r *Recorder) ObserveFailure() {
	if r == nil {
		return
	}
	r.proteins.WithLabelValues(StatusFailed).Inc()
}

// WriteTextfile writes the current metrics in the Prometheus text format,
// suitable for the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
