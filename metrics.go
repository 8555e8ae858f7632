package mixgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; see
// package metrics/prometheus for a Prometheus implementation.
type MetricsCollector interface {
	// RecordAdd is called after each row is scored, sampled and added.
	// err is nil if successful.
	RecordAdd(duration time.Duration, err error)

	// RecordRemove is called after each row removal.
	RecordRemove(duration time.Duration, err error)

	// RecordInfer is called after each inference pass over a row source.
	// rows is the number of rows added.
	RecordInfer(rows int, duration time.Duration, err error)

	// RecordDump is called after each groups and assignments dump.
	RecordDump(duration time.Duration, err error)

	// RecordGroups is called whenever the number of groups changes.
	RecordGroups(groups int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAdd(time.Duration, error)        {}
func (NoopMetricsCollector) RecordRemove(time.Duration, error)     {}
func (NoopMetricsCollector) RecordInfer(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordDump(time.Duration, error)       {}
func (NoopMetricsCollector) RecordGroups(int)                      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AddCount      atomic.Int64
	AddErrors     atomic.Int64
	AddTotalNanos atomic.Int64
	RemoveCount   atomic.Int64
	RemoveErrors  atomic.Int64
	InferCount    atomic.Int64
	InferRows     atomic.Int64
	InferErrors   atomic.Int64
	DumpCount     atomic.Int64
	DumpErrors    atomic.Int64
	Groups        atomic.Int64
}

// RecordAdd implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdd(duration time.Duration, err error) {
	b.AddCount.Add(1)
	b.AddTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AddErrors.Add(1)
	}
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(duration time.Duration, err error) {
	b.RemoveCount.Add(1)
	if err != nil {
		b.RemoveErrors.Add(1)
	}
}

// RecordInfer implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInfer(rows int, duration time.Duration, err error) {
	b.InferCount.Add(1)
	b.InferRows.Add(int64(rows))
	if err != nil {
		b.InferErrors.Add(1)
	}
}

// RecordDump implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDump(duration time.Duration, err error) {
	b.DumpCount.Add(1)
	if err != nil {
		b.DumpErrors.Add(1)
	}
}

// RecordGroups implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGroups(groups int) {
	b.Groups.Store(int64(groups))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AddCount:     b.AddCount.Load(),
		AddErrors:    b.AddErrors.Load(),
		AddAvgNanos:  b.getAvgAddNanos(),
		RemoveCount:  b.RemoveCount.Load(),
		RemoveErrors: b.RemoveErrors.Load(),
		InferCount:   b.InferCount.Load(),
		InferRows:    b.InferRows.Load(),
		InferErrors:  b.InferErrors.Load(),
		DumpCount:    b.DumpCount.Load(),
		DumpErrors:   b.DumpErrors.Load(),
		Groups:       b.Groups.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgAddNanos() int64 {
	count := b.AddCount.Load()
	if count == 0 {
		return 0
	}
	return b.AddTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AddCount     int64
	AddErrors    int64
	AddAvgNanos  int64
	RemoveCount  int64
	RemoveErrors int64
	InferCount   int64
	InferRows    int64
	InferErrors  int64
	DumpCount    int64
	DumpErrors   int64
	Groups       int64
}
