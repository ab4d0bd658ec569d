package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/wavop"
)

// PrometheusCollector implements wavop.MetricsCollector.
type PrometheusCollector struct {
	applyLatency *prometheus.HistogramVec
	applyShots   *prometheus.CounterVec
	shotLatency  *prometheus.HistogramVec
	persisted    *prometheus.CounterVec
}

var _ wavop.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheusCollector creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &PrometheusCollector{
		applyLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wavop_apply_duration_seconds",
			Help:    "Latency of operator applications",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind", "status"}),
		applyShots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wavop_apply_shots_total",
			Help: "Shots processed by operator applications",
		}, []string{"kind"}),
		shotLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wavop_shot_duration_seconds",
			Help:    "Latency of per-shot solves",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
		}, []string{"kind", "status"}),
		persisted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wavop_records_written_total",
			Help: "Shot records persisted",
		}, []string{"status"}),
	}
	for _, col := range []prometheus.Collector{c.applyLatency, c.applyShots, c.shotLatency, c.persisted} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordApply implements wavop.MetricsCollector.
func (c *PrometheusCollector) RecordApply(kind wavop.Kind, shots int, d time.Duration, err error) {
	c.applyLatency.WithLabelValues(kind.String(), status(err)).Observe(d.Seconds())
	c.applyShots.WithLabelValues(kind.String()).Add(float64(shots))
}

// RecordShot implements wavop.MetricsCollector.
func (c *PrometheusCollector) RecordShot(kind wavop.Kind, d time.Duration, err error) {
	c.shotLatency.WithLabelValues(kind.String(), status(err)).Observe(d.Seconds())
}

// RecordPersist implements wavop.MetricsCollector.
func (c *PrometheusCollector) RecordPersist(written int, _ time.Duration, err error) {
	c.persisted.WithLabelValues(status(err)).Add(float64(written))
}
