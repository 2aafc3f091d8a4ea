package kclust

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting training metrics.
// Implement this interface to integrate with monitoring systems like Prometheus
// (see the metrics/prometheus package).
type MetricsCollector interface {
	// RecordRestart is called once per restart, from the worker goroutine.
	// inertia is meaningless when err is non-nil.
	RecordRestart(restart int, inertia float64, duration time.Duration, err error)

	// RecordEmptyCluster is called for every empty-cluster reseed.
	RecordEmptyCluster(restart int)

	// RecordDegenerateSeeding is called for every seeding draw that fell back
	// to a uniform draw because all weights were zero.
	RecordDegenerateSeeding(restart int)

	// RecordTrain is called after each Fit.
	RecordTrain(k, tries int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRestart(int, float64, time.Duration, error) {}
func (NoopMetricsCollector) RecordEmptyCluster(int)                           {}
func (NoopMetricsCollector) RecordDegenerateSeeding(int)                      {}
func (NoopMetricsCollector) RecordTrain(int, int, time.Duration, error)       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RestartCount      atomic.Int64
	RestartErrors     atomic.Int64
	RestartTotalNanos atomic.Int64
	EmptyClusters     atomic.Int64
	DegenerateDraws   atomic.Int64
	TrainCount        atomic.Int64
	TrainErrors       atomic.Int64
	TrainTotalNanos   atomic.Int64

	mu          sync.Mutex
	bestInertia float64
	hasInertia  bool
}

// RecordRestart implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRestart(_ int, inertia float64, duration time.Duration, err error) {
	b.RestartCount.Add(1)
	b.RestartTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RestartErrors.Add(1)
		return
	}

	b.mu.Lock()
	if !b.hasInertia || inertia < b.bestInertia {
		b.bestInertia = inertia
		b.hasInertia = true
	}
	b.mu.Unlock()
}

// RecordEmptyCluster implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEmptyCluster(int) {
	b.EmptyClusters.Add(1)
}

// RecordDegenerateSeeding implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDegenerateSeeding(int) {
	b.DegenerateDraws.Add(1)
}

// RecordTrain implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTrain(_, _ int, duration time.Duration, err error) {
	b.TrainCount.Add(1)
	b.TrainTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TrainErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	b.mu.Lock()
	best := math.Inf(1)
	if b.hasInertia {
		best = b.bestInertia
	}
	b.mu.Unlock()

	return BasicMetricsStats{
		RestartCount:    b.RestartCount.Load(),
		RestartErrors:   b.RestartErrors.Load(),
		RestartAvgNanos: avg(b.RestartTotalNanos.Load(), b.RestartCount.Load()),
		EmptyClusters:   b.EmptyClusters.Load(),
		DegenerateDraws: b.DegenerateDraws.Load(),
		BestInertia:     best,
		TrainCount:      b.TrainCount.Load(),
		TrainErrors:     b.TrainErrors.Load(),
		TrainAvgNanos:   avg(b.TrainTotalNanos.Load(), b.TrainCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RestartCount    int64
	RestartErrors   int64
	RestartAvgNanos int64
	EmptyClusters   int64
	DegenerateDraws int64
	// BestInertia is +Inf until a restart succeeded.
	BestInertia   float64
	TrainCount    int64
	TrainErrors   int64
	TrainAvgNanos int64
}
