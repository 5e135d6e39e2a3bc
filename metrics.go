package isodata

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    rounds   prometheus.Counter
//	    duration prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordRound(round, clusters int, duration time.Duration) {
//	    p.rounds.Inc()
//	    p.duration.Observe(duration.Seconds())
//	}
type MetricsCollector interface {
	// RecordRound is called after each round with the cluster count at the
	// end of the round and the time the round took.
	RecordRound(round, clusters int, duration time.Duration)

	// RecordSplit is called once per performed split.
	RecordSplit()

	// RecordMerge is called once per performed merge.
	RecordMerge()

	// RecordPrune is called after each prune step with the number of
	// undersized clusters that were discarded.
	RecordPrune(removed int)

	// RecordRun is called once when a run ends.
	// err is nil if the run completed.
	RecordRun(rounds, clusters int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRound(int, int, time.Duration)      {}
func (NoopMetricsCollector) RecordSplit()                             {}
func (NoopMetricsCollector) RecordMerge()                             {}
func (NoopMetricsCollector) RecordPrune(int)                          {}
func (NoopMetricsCollector) RecordRun(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RoundCount      atomic.Int64
	RoundTotalNanos atomic.Int64
	SplitCount      atomic.Int64
	MergeCount      atomic.Int64
	PrunedClusters  atomic.Int64
	RunCount        atomic.Int64
	RunErrors       atomic.Int64
	RunTotalNanos   atomic.Int64
	LastClusters    atomic.Int64
}

// RecordRound implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRound(_ int, clusters int, duration time.Duration) {
	b.RoundCount.Add(1)
	b.RoundTotalNanos.Add(duration.Nanoseconds())
	b.LastClusters.Store(int64(clusters))
}

// RecordSplit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSplit() {
	b.SplitCount.Add(1)
}

// RecordMerge implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMerge() {
	b.MergeCount.Add(1)
}

// RecordPrune implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPrune(removed int) {
	b.PrunedClusters.Add(int64(removed))
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(_ int, clusters int, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	b.LastClusters.Store(int64(clusters))
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		RoundCount:     b.RoundCount.Load(),
		RoundAvgNanos:  b.getAvgRoundNanos(),
		SplitCount:     b.SplitCount.Load(),
		MergeCount:     b.MergeCount.Load(),
		PrunedClusters: b.PrunedClusters.Load(),
		RunCount:       b.RunCount.Load(),
		RunErrors:      b.RunErrors.Load(),
		RunTotalNanos:  b.RunTotalNanos.Load(),
		LastClusters:   b.LastClusters.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgRoundNanos() int64 {
	count := b.RoundCount.Load()
	if count == 0 {
		return 0
	}
	return b.RoundTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RoundCount     int64
	RoundAvgNanos  int64
	SplitCount     int64
	MergeCount     int64
	PrunedClusters int64
	RunCount       int64
	RunErrors      int64
	RunTotalNanos  int64
	LastClusters   int64
}
