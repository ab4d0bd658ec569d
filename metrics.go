package wavop

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus; see the metric package for a ready-made collector.
type MetricsCollector interface {
	// RecordApply is called after each operator application.
	// shots is the number of shots the operator acted on.
	RecordApply(kind Kind, shots int, duration time.Duration, err error)

	// RecordShot is called after each per-shot solve.
	RecordShot(kind Kind, duration time.Duration, err error)

	// RecordPersist is called after forward data has been written.
	// written is the number of records stored.
	RecordPersist(written int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordApply(Kind, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordShot(Kind, time.Duration, error)       {}
func (NoopMetricsCollector) RecordPersist(int, time.Duration, error)     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ApplyCount      atomic.Int64
	ApplyErrors     atomic.Int64
	ApplyShots      atomic.Int64
	ApplyTotalNanos atomic.Int64
	ShotCount       atomic.Int64
	ShotErrors      atomic.Int64
	ShotTotalNanos  atomic.Int64
	PersistCount    atomic.Int64
	PersistErrors   atomic.Int64
	RecordsWritten  atomic.Int64
}

// RecordApply implements MetricsCollector.
func (b *BasicMetricsCollector) RecordApply(_ Kind, shots int, duration time.Duration, err error) {
	b.ApplyCount.Add(1)
	b.ApplyShots.Add(int64(shots))
	b.ApplyTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ApplyErrors.Add(1)
	}
}

// RecordShot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordShot(_ Kind, duration time.Duration, err error) {
	b.ShotCount.Add(1)
	b.ShotTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ShotErrors.Add(1)
	}
}

// RecordPersist implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPersist(written int, _ time.Duration, err error) {
	b.PersistCount.Add(1)
	b.RecordsWritten.Add(int64(written))
	if err != nil {
		b.PersistErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ApplyCount:     b.ApplyCount.Load(),
		ApplyErrors:    b.ApplyErrors.Load(),
		ApplyShots:     b.ApplyShots.Load(),
		ApplyAvgNanos:  avg(b.ApplyTotalNanos.Load(), b.ApplyCount.Load()),
		ShotCount:      b.ShotCount.Load(),
		ShotErrors:     b.ShotErrors.Load(),
		ShotAvgNanos:   avg(b.ShotTotalNanos.Load(), b.ShotCount.Load()),
		PersistCount:   b.PersistCount.Load(),
		PersistErrors:  b.PersistErrors.Load(),
		RecordsWritten: b.RecordsWritten.Load(),
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
	ApplyCount     int64
	ApplyErrors    int64
	ApplyShots     int64
	ApplyAvgNanos  int64
	ShotCount      int64
	ShotErrors     int64
	ShotAvgNanos   int64
	PersistCount   int64
	PersistErrors  int64
	RecordsWritten int64
}
