package multikey

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// prommetrics package provides a Prometheus implementation.
//
// Collectors may be shared by several stores and must be safe for concurrent use.
type MetricsCollector interface {
	// RecordAdd is called after each Add. err is nil if successful.
	RecordAdd(duration time.Duration, err error)

	// RecordLookup is called after each key lookup (Lookup, Get, GetID, HasKey).
	// hit is false when the key was not bound.
	RecordLookup(hit bool)

	// RecordUpdate is called after each Set.
	RecordUpdate(duration time.Duration, err error)

	// RecordSetKey is called after each SetKey.
	RecordSetKey(duration time.Duration, err error)

	// RecordPop is called after each Pop. keys is the number of bindings removed.
	RecordPop(duration time.Duration, keys int, err error)

	// RecordClear is called after each Clear with the number of objects dropped.
	RecordClear(objects int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAdd(time.Duration, error)      {}
func (NoopMetricsCollector) RecordLookup(bool)                   {}
func (NoopMetricsCollector) RecordUpdate(time.Duration, error)   {}
func (NoopMetricsCollector) RecordSetKey(time.Duration, error)   {}
func (NoopMetricsCollector) RecordPop(time.Duration, int, error) {}
func (NoopMetricsCollector) RecordClear(int)                     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and tests without external dependencies.
type BasicMetricsCollector struct {
	AddCount       atomic.Int64
	AddErrors      atomic.Int64
	AddTotalNanos  atomic.Int64
	LookupHits     atomic.Int64
	LookupMisses   atomic.Int64
	UpdateCount    atomic.Int64
	UpdateErrors   atomic.Int64
	SetKeyCount    atomic.Int64
	SetKeyErrors   atomic.Int64
	PopCount       atomic.Int64
	PopErrors      atomic.Int64
	PopKeysRemoved atomic.Int64
	ClearCount     atomic.Int64
	ClearedObjects atomic.Int64
}

// RecordAdd implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdd(duration time.Duration, err error) {
	b.AddCount.Add(1)
	b.AddTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AddErrors.Add(1)
	}
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(hit bool) {
	if hit {
		b.LookupHits.Add(1)
	} else {
		b.LookupMisses.Add(1)
	}
}

// RecordUpdate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUpdate(duration time.Duration, err error) {
	b.UpdateCount.Add(1)
	if err != nil {
		b.UpdateErrors.Add(1)
	}
}

// RecordSetKey implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSetKey(duration time.Duration, err error) {
	b.SetKeyCount.Add(1)
	if err != nil {
		b.SetKeyErrors.Add(1)
	}
}

// RecordPop implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPop(duration time.Duration, keys int, err error) {
	b.PopCount.Add(1)
	if err != nil {
		b.PopErrors.Add(1)
		return
	}
	b.PopKeysRemoved.Add(int64(keys))
}

// RecordClear implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClear(objects int) {
	b.ClearCount.Add(1)
	b.ClearedObjects.Add(int64(objects))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AddCount:       b.AddCount.Load(),
		AddErrors:      b.AddErrors.Load(),
		AddAvgNanos:    b.getAvgAddNanos(),
		LookupHits:     b.LookupHits.Load(),
		LookupMisses:   b.LookupMisses.Load(),
		UpdateCount:    b.UpdateCount.Load(),
		UpdateErrors:   b.UpdateErrors.Load(),
		SetKeyCount:    b.SetKeyCount.Load(),
		SetKeyErrors:   b.SetKeyErrors.Load(),
		PopCount:       b.PopCount.Load(),
		PopErrors:      b.PopErrors.Load(),
		PopKeysRemoved: b.PopKeysRemoved.Load(),
		ClearCount:     b.ClearCount.Load(),
		ClearedObjects: b.ClearedObjects.Load(),
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
	AddCount       int64
	AddErrors      int64
	AddAvgNanos    int64
	LookupHits     int64
	LookupMisses   int64
	UpdateCount    int64
	UpdateErrors   int64
	SetKeyCount    int64
	SetKeyErrors   int64
	PopCount       int64
	PopErrors      int64
	PopKeysRemoved int64
	ClearCount     int64
	ClearedObjects int64
}
