package strtab

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordInsert is called after each successful insert. deduplicated is
	// true when an existing id was returned and no bytes were stored.
	RecordInsert(bytes int, deduplicated bool)

	// RecordFinalize is called after each Finalize.
	RecordFinalize(strings, bufferBytes int, duration time.Duration, err error)

	// RecordLoad is called after a table is loaded from bytes, a file or a blob.
	RecordLoad(bytes int, duration time.Duration, err error)

	// RecordPersist is called after a table is written to a blob store.
	RecordPersist(bytes int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(int, bool)                        {}
func (NoopMetricsCollector) RecordFinalize(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordLoad(int, time.Duration, error)          {}
func (NoopMetricsCollector) RecordPersist(int, time.Duration, error)       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount        atomic.Int64
	InsertBytes        atomic.Int64
	DedupHits          atomic.Int64
	FinalizeCount      atomic.Int64
	FinalizeErrors     atomic.Int64
	FinalizeTotalNanos atomic.Int64
	LoadCount          atomic.Int64
	LoadErrors         atomic.Int64
	LoadBytes          atomic.Int64
	PersistCount       atomic.Int64
	PersistErrors      atomic.Int64
	PersistBytes       atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(bytes int, deduplicated bool) {
	b.InsertCount.Add(1)
	if deduplicated {
		b.DedupHits.Add(1)
		return
	}
	b.InsertBytes.Add(int64(bytes))
}

// RecordFinalize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFinalize(_, _ int, duration time.Duration, err error) {
	b.FinalizeCount.Add(1)
	b.FinalizeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FinalizeErrors.Add(1)
	}
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(bytes int, _ time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadBytes.Add(int64(bytes))
}

// RecordPersist implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPersist(bytes int, _ time.Duration, err error) {
	b.PersistCount.Add(1)
	if err != nil {
		b.PersistErrors.Add(1)
		return
	}
	b.PersistBytes.Add(int64(bytes))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:      b.InsertCount.Load(),
		InsertBytes:      b.InsertBytes.Load(),
		DedupHits:        b.DedupHits.Load(),
		FinalizeCount:    b.FinalizeCount.Load(),
		FinalizeErrors:   b.FinalizeErrors.Load(),
		FinalizeAvgNanos: b.getAvgFinalizeNanos(),
		LoadCount:        b.LoadCount.Load(),
		LoadErrors:       b.LoadErrors.Load(),
		LoadBytes:        b.LoadBytes.Load(),
		PersistCount:     b.PersistCount.Load(),
		PersistErrors:    b.PersistErrors.Load(),
		PersistBytes:     b.PersistBytes.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgFinalizeNanos() int64 {
	count := b.FinalizeCount.Load()
	if count == 0 {
		return 0
	}
	return b.FinalizeTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InsertCount      int64
	InsertBytes      int64
	DedupHits        int64
	FinalizeCount    int64
	FinalizeErrors   int64
	FinalizeAvgNanos int64
	LoadCount        int64
	LoadErrors       int64
	LoadBytes        int64
	PersistCount     int64
	PersistErrors    int64
	PersistBytes     int64
}
