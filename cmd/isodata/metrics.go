package main

import (
	"time"

	"github.com/hupe1980/isodata"
	"github.com/prometheus/client_golang/prometheus"
)

// promCollector implements isodata.MetricsCollector on a private registry.
type promCollector struct {
	registry *prometheus.Registry

	rounds        prometheus.Counter
	roundDuration prometheus.Histogram
	clusters      prometheus.Gauge
	splits        prometheus.Counter
	merges        prometheus.Counter
	pruned        prometheus.Counter
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
}

var _ isodata.MetricsCollector = (*promCollector)(nil)

func newPromCollector() *promCollector {
	c := &promCollector{
		registry: prometheus.NewRegistry(),
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "isodata_rounds_total",
			Help: "Rounds executed",
		}),
		roundDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "isodata_round_duration_seconds",
			Help:    "Duration of a single round",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
		clusters: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "isodata_clusters",
			Help: "Cluster count at the end of the latest round",
		}),
		splits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "isodata_splits_total",
			Help: "Clusters split",
		}),
		merges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "isodata_merges_total",
			Help: "Cluster pairs merged",
		}),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "isodata_pruned_clusters_total",
			Help: "Undersized clusters discarded",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "isodata_runs_total",
			Help: "Completed or aborted runs",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "isodata_run_duration_seconds",
			Help:    "Wall time of a run including load",
			Buckets: prometheus.DefBuckets,
		}),
	}

	c.registry.MustRegister(
		c.rounds,
		c.roundDuration,
		c.clusters,
		c.splits,
		c.merges,
		c.pruned,
		c.runs,
		c.runDuration,
	)
	return c
}

func (c *promCollector) RecordRound(_ int, clusters int, d time.Duration) {
	c.rounds.Inc()
	c.roundDuration.Observe(d.Seconds())
	c.clusters.Set(float64(clusters))
}

func (c *promCollector) RecordSplit() { c.splits.Inc() }

func (c *promCollector) RecordMerge() { c.merges.Inc() }

func (c *promCollector) RecordPrune(removed int) { c.pruned.Add(float64(removed)) }

func (c *promCollector) RecordRun(_ int, clusters int, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.runs.WithLabelValues(status).Inc()
	c.runDuration.Observe(d.Seconds())
	c.clusters.Set(float64(clusters))
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (c *promCollector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
