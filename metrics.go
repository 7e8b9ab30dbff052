package spatialgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordInsert is called after each single insert.
	RecordInsert(duration time.Duration, err error)

	// RecordLoad is called after each frame load.
	// count is the number of elements attempted, dropped the number skipped.
	RecordLoad(count, dropped int, duration time.Duration)

	// RecordRebuild is called after each rebuild barrier.
	RecordRebuild(count int, duration time.Duration, err error)

	// RecordQuery is called after each Near or Query call.
	// results is the number of references written.
	RecordQuery(results int, duration time.Duration, err error)

	// RecordFanout is called after each ForEachNeighbor pass.
	RecordFanout(queries, neighbors int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration, error)           {}
func (NoopMetricsCollector) RecordLoad(int, int, time.Duration)          {}
func (NoopMetricsCollector) RecordRebuild(int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordQuery(int, time.Duration, error)       {}
func (NoopMetricsCollector) RecordFanout(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount       atomic.Int64
	InsertErrors      atomic.Int64
	InsertTotalNanos  atomic.Int64
	LoadCount         atomic.Int64
	LoadItems         atomic.Int64
	LoadDropped       atomic.Int64
	RebuildCount      atomic.Int64
	RebuildErrors     atomic.Int64
	RebuildTotalNanos atomic.Int64
	QueryCount        atomic.Int64
	QueryErrors       atomic.Int64
	QueryResults      atomic.Int64
	QueryTotalNanos   atomic.Int64
	FanoutCount       atomic.Int64
	FanoutErrors      atomic.Int64
	FanoutQueries     atomic.Int64
	FanoutNeighbors   atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
	}
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(count, dropped int, _ time.Duration) {
	b.LoadCount.Add(1)
	b.LoadItems.Add(int64(count))
	b.LoadDropped.Add(int64(dropped))
}

// RecordRebuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRebuild(_ int, duration time.Duration, err error) {
	b.RebuildCount.Add(1)
	b.RebuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RebuildErrors.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(results int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryResults.Add(int64(results))
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordFanout implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFanout(queries, neighbors int, _ time.Duration, err error) {
	b.FanoutCount.Add(1)
	b.FanoutQueries.Add(int64(queries))
	b.FanoutNeighbors.Add(int64(neighbors))
	if err != nil {
		b.FanoutErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:     b.InsertCount.Load(),
		InsertErrors:    b.InsertErrors.Load(),
		InsertAvgNanos:  avg(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		LoadCount:       b.LoadCount.Load(),
		LoadItems:       b.LoadItems.Load(),
		LoadDropped:     b.LoadDropped.Load(),
		RebuildCount:    b.RebuildCount.Load(),
		RebuildErrors:   b.RebuildErrors.Load(),
		RebuildAvgNanos: avg(b.RebuildTotalNanos.Load(), b.RebuildCount.Load()),
		QueryCount:      b.QueryCount.Load(),
		QueryErrors:     b.QueryErrors.Load(),
		QueryResults:    b.QueryResults.Load(),
		QueryAvgNanos:   avg(b.QueryTotalNanos.Load(), b.QueryCount.Load()),
		FanoutCount:     b.FanoutCount.Load(),
		FanoutErrors:    b.FanoutErrors.Load(),
		FanoutQueries:   b.FanoutQueries.Load(),
		FanoutNeighbors: b.FanoutNeighbors.Load(),
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
	InsertCount     int64
	InsertErrors    int64
	InsertAvgNanos  int64
	LoadCount       int64
	LoadItems       int64
	LoadDropped     int64
	RebuildCount    int64
	RebuildErrors   int64
	RebuildAvgNanos int64
	QueryCount      int64
	QueryErrors     int64
	QueryResults    int64
	QueryAvgNanos   int64
	FanoutCount     int64
	FanoutErrors    int64
	FanoutQueries   int64
	FanoutNeighbors int64
}
