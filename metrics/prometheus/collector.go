// Package prometheus exposes tinyvec operation metrics through
// prometheus/client_golang.
//
//	reg := prometheus.NewRegistry()
//	c, err := tvprom.NewCollector(reg)
//	store, err := tinyvec.NewStore(0, tinyvec.WithMetrics(c))
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tinyvec"

// Collector implements tinyvec.MetricsCollector with Prometheus counters and
// histograms. It is safe for concurrent use.
type Collector struct {
	ops        *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	candidates prometheus.Histogram
	bytes      prometheus.Counter
	vectors    prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total number of operations by type and result",
		}, []string{"op", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of operations in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_candidates",
			Help:      "Number of vectors scanned per search",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 12),
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "written_bytes_total",
			Help:      "Total encoded bytes written by successful persistence",
		}),
		vectors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "read_vectors_total",
			Help:      "Total vectors loaded by successful reads",
		}),
	}

	for _, m := range []prometheus.Collector{c.ops, c.latency, c.candidates, c.bytes, c.vectors} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) observe(op string, d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	c.ops.WithLabelValues(op, result).Inc()
	c.latency.WithLabelValues(op).Observe(d.Seconds())
}

// RecordAdd implements tinyvec.MetricsCollector.
func (c *Collector) RecordAdd(d time.Duration, err error) {
	c.observe("add", d, err)
}

// RecordSearch implements tinyvec.MetricsCollector.
func (c *Collector) RecordSearch(candidates int, d time.Duration, err error) {
	c.observe("search", d, err)
	if err == nil {
		c.candidates.Observe(float64(candidates))
	}
}

// RecordWrite implements tinyvec.MetricsCollector.
func (c *Collector) RecordWrite(bytes int64, d time.Duration, err error) {
	c.observe("write", d, err)
	if err == nil {
		c.bytes.Add(float64(bytes))
	}
}

// RecordRead implements tinyvec.MetricsCollector.
func (c *Collector) RecordRead(vectors int, d time.Duration, err error) {
	c.observe("read", d, err)
	if err == nil {
		c.vectors.Add(float64(vectors))
	}
}
