// Package prometheus provides a mixgo.MetricsCollector backed by Prometheus.
//
//	reg := prometheus.NewRegistry()
//	c := mixprom.NewCollector(reg, "mixgo")
//	eng, _ := mixgo.New(m, mixgo.WithMetricsCollector(c))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prometheus

import (
	"time"

	"github.com/hupe1980/mixgo"
	"github.com/prometheus/client_golang/prometheus"
)

var _ mixgo.MetricsCollector = (*Collector)(nil)

// Collector records engine operations as Prometheus metrics.
type Collector struct {
	opLatency *prometheus.HistogramVec
	ops       *prometheus.CounterVec
	rows      prometheus.Counter
	groups    prometheus.Gauge
}

// NewCollector creates a collector and registers its metrics with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer, namespace string) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of engine operations in seconds",
			Buckets:   []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 1e-2, 0.1, 1, 10},
		}, []string{"op"}),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Engine operations by outcome",
		}, []string{"op", "status"}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inferred_rows_total",
			Help:      "Rows added by inference passes",
		}),
		groups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "groups",
			Help:      "Current number of groups, including the empty group",
		}),
	}
	reg.MustRegister(c.opLatency, c.ops, c.rows, c.groups)
	return c
}

func (c *Collector) record(op string, duration time.Duration, err error) {
	c.opLatency.WithLabelValues(op).Observe(duration.Seconds())
	status := "success"
	if err != nil {
		status = "error"
	}
	c.ops.WithLabelValues(op, status).Inc()
}

// RecordAdd implements mixgo.MetricsCollector.
func (c *Collector) RecordAdd(duration time.Duration, err error) {
	c.record("add", duration, err)
}

// RecordRemove implements mixgo.MetricsCollector.
func (c *Collector) RecordRemove(duration time.Duration, err error) {
	c.record("remove", duration, err)
}

// RecordInfer implements mixgo.MetricsCollector.
func (c *Collector) RecordInfer(rows int, duration time.Duration, err error) {
	c.record("infer", duration, err)
	c.rows.Add(float64(rows))
}

// RecordDump implements mixgo.MetricsCollector.
func (c *Collector) RecordDump(duration time.Duration, err error) {
	c.record("dump", duration, err)
}

// RecordGroups implements mixgo.MetricsCollector.
func (c *Collector) RecordGroups(groups int) {
	c.groups.Set(float64(groups))
}
