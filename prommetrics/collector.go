// Package prommetrics exports multikey store metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	collector := prommetrics.New(reg, prommetrics.WithNamespace("users"))
//	store, _ := multikey.New[string, *User](
//	    []string{"name", "email"},
//	    multikey.WithMetricsCollector(collector),
//	)
package prommetrics

import (
	"time"

	"github.com/hupe1980/multikey"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ multikey.MetricsCollector = (*Collector)(nil)

type options struct {
	namespace   string
	constLabels prometheus.Labels
	buckets     []float64
}

// Option configures a Collector.
type Option func(*options)

// WithNamespace prefixes every metric name. Default "multikey".
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// WithConstLabels attaches labels to every metric, e.g. to tell stores apart.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(o *options) {
		o.constLabels = labels
	}
}

// WithBuckets sets the latency histogram buckets in seconds.
func WithBuckets(buckets []float64) Option {
	return func(o *options) {
		o.buckets = buckets
	}
}

// Collector implements multikey.MetricsCollector with Prometheus metrics.
type Collector struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
	lookups  *prometheus.CounterVec
	popped   prometheus.Counter
	cleared  prometheus.Counter
}

// New registers the store metrics with reg and returns the collector.
// A nil reg registers with prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, opts ...Option) *Collector {
	o := options{
		namespace: "multikey",
		buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10), // 100ns .. ~26ms
	}
	for _, opt := range opts {
		opt(&o)
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		ops: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Name:        "operations_total",
			Help:        "Store mutations by operation and result.",
			ConstLabels: o.constLabels,
		}, []string{"op", "result"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   o.namespace,
			Name:        "operation_duration_seconds",
			Help:        "Store mutation latency.",
			ConstLabels: o.constLabels,
			Buckets:     o.buckets,
		}, []string{"op"}),
		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Name:        "lookups_total",
			Help:        "Key lookups by result.",
			ConstLabels: o.constLabels,
		}, []string{"result"}),
		popped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Name:        "popped_keys_total",
			Help:        "Key bindings removed by cascading pops.",
			ConstLabels: o.constLabels,
		}),
		cleared: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Name:        "cleared_objects_total",
			Help:        "Objects dropped by Clear.",
			ConstLabels: o.constLabels,
		}),
	}
}

func (c *Collector) observe(op string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.ops.WithLabelValues(op, result).Inc()
	c.duration.WithLabelValues(op).Observe(d.Seconds())
}

// RecordAdd implements multikey.MetricsCollector.
func (c *Collector) RecordAdd(d time.Duration, err error) { c.observe("add", d, err) }

// RecordUpdate implements multikey.MetricsCollector.
func (c *Collector) RecordUpdate(d time.Duration, err error) { c.observe("set", d, err) }

// RecordSetKey implements multikey.MetricsCollector.
func (c *Collector) RecordSetKey(d time.Duration, err error) { c.observe("set_key", d, err) }

// RecordPop implements multikey.MetricsCollector.
func (c *Collector) RecordPop(d time.Duration, keys int, err error) {
	c.observe("pop", d, err)
	if err == nil {
		c.popped.Add(float64(keys))
	}
}

// RecordLookup implements multikey.MetricsCollector.
func (c *Collector) RecordLookup(hit bool) {
	if hit {
		c.lookups.WithLabelValues("hit").Inc()
		return
	}
	c.lookups.WithLabelValues("miss").Inc()
}

// RecordClear implements multikey.MetricsCollector.
func (c *Collector) RecordClear(objects int) {
	c.ops.WithLabelValues("clear", "ok").Inc()
	c.cleared.Add(float64(objects))
}
