package goRelier

import "sync/atomic"

// MetricID defines a public type used by goRelier APIs.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricFlowPrepared is an exported constant or variable used by the flow-completion broker.
	MetricFlowPrepared MetricID = iota
	// MetricFlowCompleted is an exported constant or variable used by the flow-completion broker.
	MetricFlowCompleted
	// MetricFlowDeferred is an exported constant or variable used by the flow-completion broker.
	MetricFlowDeferred
	// MetricResumeSaved is an exported constant or variable used by the flow-completion broker.
	MetricResumeSaved
	// MetricResumeAbsent is an exported constant or variable used by the flow-completion broker.
	MetricResumeAbsent
	// MetricKeysDerived is an exported constant or variable used by the flow-completion broker.
	MetricKeysDerived
	// MetricKeysMissingMaterial is an exported constant or variable used by the flow-completion broker.
	MetricKeysMissingMaterial
	// MetricNotifySent is an exported constant or variable used by the flow-completion broker.
	MetricNotifySent
	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics defines a public type used by goRelier APIs.
//
// Metrics instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot defines a public type used by goRelier APIs.
//
// MetricsSnapshot instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics describes the newmetrics operation and its observable behavior.
//
// NewMetrics may return an error when input validation, dependency calls, or security checks fail.
// NewMetrics does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled describes the enabled operation and its observable behavior.
//
// Enabled may return an error when input validation, dependency calls, or security checks fail.
// Enabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc describes the inc operation and its observable behavior.
//
// Inc may return an error when input validation, dependency calls, or security checks fail.
// Inc does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value describes the value operation and its observable behavior.
//
// Value may return an error when input validation, dependency calls, or security checks fail.
// Value does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot describes the snapshot operation and its observable behavior.
//
// Snapshot may return an error when input validation, dependency calls, or security checks fail.
// Snapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snapshot := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	if m == nil {
		return snapshot
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snapshot.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return snapshot
}
