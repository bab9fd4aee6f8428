package gocoro

import (
	"sync/atomic"
	"time"
)

// LatencyBuckets defines the latency histogram buckets in nanoseconds
// for Resume call duration, covering 1us to 10s log-spaced.
var LatencyBuckets = []uint64{
	1_000,
	10_000,
	100_000,
	1_000_000,
	10_000_000,
	100_000_000,
	1_000_000_000,
	10_000_000_000,
}

const numLatencyBuckets = 8

// Metrics tracks operational statistics for a Schedule: how often
// coroutines are resumed and yield, how many timer callbacks fire,
// and KV cache traffic. Adapted from the teacher's per-device I/O
// metrics (ReadOps/WriteOps/latency histogram) to this domain's
// operations (ResumeOps/YieldOps/TimerFired/cache traffic).
type Metrics struct {
	ResumeOps  atomic.Uint64
	YieldOps   atomic.Uint64
	PanicOps   atomic.Uint64
	ResumeErrs atomic.Uint64

	TimerFired atomic.Uint64

	CachePuts      atomic.Uint64
	CachePutErrors atomic.Uint64
	CacheGets      atomic.Uint64
	CacheBytesPut  atomic.Uint64
	CacheBytesGot  atomic.Uint64

	TotalLatencyNs atomic.Uint64
	OpCount        atomic.Uint64
	LatencyHist    [numLatencyBuckets]atomic.Uint64

	StartTime atomic.Int64
	StopTime  atomic.Int64
}

// NewMetrics creates a new, running Metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordResume records one Resume call's outcome and latency.
func (m *Metrics) RecordResume(latencyNs uint64, success bool) {
	m.ResumeOps.Add(1)
	if !success {
		m.ResumeErrs.Add(1)
	}
	m.recordLatency(latencyNs)
}

// RecordYield records one Yield call.
func (m *Metrics) RecordYield() {
	m.YieldOps.Add(1)
}

// RecordPanic records a task body panic recovered by the trampoline.
func (m *Metrics) RecordPanic() {
	m.PanicOps.Add(1)
}

// RecordTimerUpdate records the number of callbacks a single
// Timer.Update sweep fired.
func (m *Metrics) RecordTimerUpdate(fired int) {
	if fired > 0 {
		m.TimerFired.Add(uint64(fired))
	}
}

// RecordCachePut records one cache Put call.
func (m *Metrics) RecordCachePut(bytes uint64, success bool) {
	m.CachePuts.Add(1)
	if success {
		m.CacheBytesPut.Add(bytes)
	} else {
		m.CachePutErrors.Add(1)
	}
}

// RecordCacheGet records one cache Get call.
func (m *Metrics) RecordCacheGet(bytes uint64) {
	m.CacheGets.Add(1)
	m.CacheBytesGot.Add(bytes)
}

func (m *Metrics) recordLatency(latencyNs uint64) {
	m.TotalLatencyNs.Add(latencyNs)
	m.OpCount.Add(1)
	for i, bucket := range LatencyBuckets {
		if latencyNs <= bucket {
			m.LatencyHist[i].Add(1)
		}
	}
}

// Stop marks metrics collection as stopped (uptime freezes).
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time, non-atomic copy of Metrics for
// reporting.
type MetricsSnapshot struct {
	ResumeOps  uint64
	YieldOps   uint64
	PanicOps   uint64
	ResumeErrs uint64

	TimerFired uint64

	CachePuts      uint64
	CachePutErrors uint64
	CacheGets      uint64
	CacheBytesPut  uint64
	CacheBytesGot  uint64

	AvgLatencyNs uint64
	UptimeNs     uint64

	LatencyHistogram [numLatencyBuckets]uint64
}

// Snapshot takes a point-in-time snapshot of m.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		ResumeOps:      m.ResumeOps.Load(),
		YieldOps:       m.YieldOps.Load(),
		PanicOps:       m.PanicOps.Load(),
		ResumeErrs:     m.ResumeErrs.Load(),
		TimerFired:     m.TimerFired.Load(),
		CachePuts:      m.CachePuts.Load(),
		CachePutErrors: m.CachePutErrors.Load(),
		CacheGets:      m.CacheGets.Load(),
		CacheBytesPut:  m.CacheBytesPut.Load(),
		CacheBytesGot:  m.CacheBytesGot.Load(),
	}

	totalLatencyNs := m.TotalLatencyNs.Load()
	opCount := m.OpCount.Load()
	if opCount > 0 {
		snap.AvgLatencyNs = totalLatencyNs / opCount
	}

	startTime := m.StartTime.Load()
	stopTime := m.StopTime.Load()
	if stopTime > 0 {
		snap.UptimeNs = uint64(stopTime - startTime)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - startTime)
	}

	for i := 0; i < numLatencyBuckets; i++ {
		snap.LatencyHistogram[i] = m.LatencyHist[i].Load()
	}

	return snap
}

// Reset zeroes every counter, restarting the uptime clock. Useful
// between test cases or benchmark phases.
func (m *Metrics) Reset() {
	m.ResumeOps.Store(0)
	m.YieldOps.Store(0)
	m.PanicOps.Store(0)
	m.ResumeErrs.Store(0)
	m.TimerFired.Store(0)
	m.CachePuts.Store(0)
	m.CachePutErrors.Store(0)
	m.CacheGets.Store(0)
	m.CacheBytesPut.Store(0)
	m.CacheBytesGot.Store(0)
	m.TotalLatencyNs.Store(0)
	m.OpCount.Store(0)
	for i := 0; i < numLatencyBuckets; i++ {
		m.LatencyHist[i].Store(0)
	}
	m.StartTime.Store(time.Now().UnixNano())
	m.StopTime.Store(0)
}

// Observer receives metrics events as they happen, so callers can
// plug in their own collector instead of (or alongside) Metrics.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveResume(latencyNs uint64, success bool)
	ObserveYield()
	ObserveTimerUpdate(fired int)
	ObserveCachePut(bytes uint64, success bool)
	ObserveCacheGet(bytes uint64)
}

// NoOpObserver discards every event.
type NoOpObserver struct{}

func (NoOpObserver) ObserveResume(uint64, bool)   {}
func (NoOpObserver) ObserveYield()                {}
func (NoOpObserver) ObserveTimerUpdate(int)        {}
func (NoOpObserver) ObserveCachePut(uint64, bool) {}
func (NoOpObserver) ObserveCacheGet(uint64)       {}

// MetricsObserver implements Observer by recording into a Metrics.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver creates an Observer that records into m.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveResume(latencyNs uint64, success bool) {
	o.metrics.RecordResume(latencyNs, success)
}

func (o *MetricsObserver) ObserveYield() {
	o.metrics.RecordYield()
}

func (o *MetricsObserver) ObserveTimerUpdate(fired int) {
	o.metrics.RecordTimerUpdate(fired)
}

func (o *MetricsObserver) ObserveCachePut(bytes uint64, success bool) {
	o.metrics.RecordCachePut(bytes, success)
}

func (o *MetricsObserver) ObserveCacheGet(bytes uint64) {
	o.metrics.RecordCacheGet(bytes)
}

var _ Observer = (*MetricsObserver)(nil)
var _ Observer = NoOpObserver{}
