package clustergo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordRound is called after each label propagation round with the
	// number of labels that changed in that round. Strategies that do not
	// iterate never call it.
	RecordRound(round int, changed int64, duration time.Duration)

	// RecordRun is called after each clustering run. rounds is the number of
	// rounds executed, converged reports whether the true partition was
	// reached, err is nil if successful.
	RecordRun(rounds int, converged bool, duration time.Duration, err error)

	// RecordExport is called after each result export with the number of
	// bytes written to the blob store. err is nil if the run was committed.
	RecordExport(bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

// RecordRound implements MetricsCollector.
func (NoopMetricsCollector) RecordRound(int, int64, time.Duration) {}

// RecordRun implements MetricsCollector.
func (NoopMetricsCollector) RecordRun(int, bool, time.Duration, error) {}

// RecordExport implements MetricsCollector.
func (NoopMetricsCollector) RecordExport(int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RoundCount       atomic.Int64
	ChangedLabels    atomic.Int64
	RoundTotalNanos  atomic.Int64
	RunCount         atomic.Int64
	RunErrors        atomic.Int64
	CappedRuns       atomic.Int64
	RunTotalNanos    atomic.Int64
	ExportCount      atomic.Int64
	ExportErrors     atomic.Int64
	ExportBytes      atomic.Int64
	ExportTotalNanos atomic.Int64
}

// RecordRound implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRound(_ int, changed int64, duration time.Duration) {
	b.RoundCount.Add(1)
	b.ChangedLabels.Add(changed)
	b.RoundTotalNanos.Add(duration.Nanoseconds())
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(_ int, converged bool, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
		return
	}
	if !converged {
		b.CappedRuns.Add(1)
	}
}

// RecordExport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExport(bytes int64, duration time.Duration, err error) {
	b.ExportCount.Add(1)
	b.ExportBytes.Add(bytes)
	b.ExportTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ExportErrors.Add(1)
	}
}

// BasicMetricsStats is a point-in-time snapshot of collected metrics.
type BasicMetricsStats struct {
	RoundCount    int64
	ChangedLabels int64
	RoundAvgNanos int64
	RunCount      int64
	RunErrors     int64
	CappedRuns    int64
	RunAvgNanos   int64
	ExportCount   int64
	ExportErrors  int64
	ExportBytes   int64
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		RoundCount:    b.RoundCount.Load(),
		ChangedLabels: b.ChangedLabels.Load(),
		RunCount:      b.RunCount.Load(),
		RunErrors:     b.RunErrors.Load(),
		CappedRuns:    b.CappedRuns.Load(),
		ExportCount:   b.ExportCount.Load(),
		ExportErrors:  b.ExportErrors.Load(),
		ExportBytes:   b.ExportBytes.Load(),
	}
	if s.RoundCount > 0 {
		s.RoundAvgNanos = b.RoundTotalNanos.Load() / s.RoundCount
	}
	if s.RunCount > 0 {
		s.RunAvgNanos = b.RunTotalNanos.Load() / s.RunCount
	}
	return s
}
