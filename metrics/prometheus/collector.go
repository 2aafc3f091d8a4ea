// Package prometheus exports training metrics through
// github.com/prometheus/client_golang.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/kclust"
)

// Collector implements kclust.MetricsCollector.
type Collector struct {
	opLatency       *prometheus.HistogramVec
	restarts        *prometheus.CounterVec
	inertia         prometheus.Histogram
	trainTries      prometheus.Gauge
	emptyClusters   prometheus.Counter
	degenerateDraws prometheus.Counter
	trainK          prometheus.Gauge
}

var _ kclust.MetricsCollector = (*Collector)(nil)

// NewCollector creates a Collector and registers it with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kclust_operation_latency_seconds",
			Help:    "Latency of restarts and training runs",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		restarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kclust_restarts_total",
			Help: "Completed restarts",
		}, []string{"status"}),
		inertia: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kclust_restart_inertia",
			Help:    "Inertia of successful restarts",
			Buckets: prometheus.ExponentialBuckets(1e-4, 4, 12),
		}),
		trainTries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kclust_train_tries",
			Help: "Restart count of the last training run",
		}),
		emptyClusters: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kclust_empty_clusters_total",
			Help: "Clusters reseeded after losing all points",
		}),
		degenerateDraws: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kclust_degenerate_seeding_total",
			Help: "Seeding draws that fell back to a uniform pick",
		}),
		trainK: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kclust_train_k",
			Help: "Cluster count of the last training run",
		}),
	}

	reg.MustRegister(
		c.opLatency,
		c.restarts,
		c.inertia,
		c.trainTries,
		c.emptyClusters,
		c.degenerateDraws,
		c.trainK,
	)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordRestart implements kclust.MetricsCollector.
func (c *Collector) RecordRestart(_ int, inertia float64, d time.Duration, err error) {
	c.opLatency.WithLabelValues("restart", status(err)).Observe(d.Seconds())
	c.restarts.WithLabelValues(status(err)).Inc()
	if err == nil {
		c.inertia.Observe(inertia)
	}
}

// RecordEmptyCluster implements kclust.MetricsCollector.
func (c *Collector) RecordEmptyCluster(int) {
	c.emptyClusters.Inc()
}

// RecordDegenerateSeeding implements kclust.MetricsCollector.
func (c *Collector) RecordDegenerateSeeding(int) {
	c.degenerateDraws.Inc()
}

// RecordTrain implements kclust.MetricsCollector.
func (c *Collector) RecordTrain(k, tries int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("train", status(err)).Observe(d.Seconds())
	c.trainK.Set(float64(k))
	c.trainTries.Set(float64(tries))
}
