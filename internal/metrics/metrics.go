package metrics

import "sync/atomic"

// MetricID identifies one counter.
type MetricID uint16

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricLoginDuplicateSubmit
	MetricTwoFactorRequired
	MetricTwoFactorSuccess
	MetricTwoFactorFailure
	MetricBackupCodeUsed
	MetricBackupCodeReplay
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricRefreshCoalesced
	MetricInitializeSilent
	MetricSessionListFetched
	MetricSessionListStale
	MetricSessionRevoked
	MetricLogout
	MetricLogoutAll
	MetricShopSwitch
	MetricPermissionDenied
	MetricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Config controls metrics collection.
type Config struct {
	Enabled bool
}

// Metrics holds one atomic counter per MetricID. A nil or disabled Metrics
// turns every operation into a no-op.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]paddedCounter
}

// New creates a Metrics instance. When cfg.Enabled is false all operations
// are no-ops.
func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether counters are being collected.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value returns the current value of the counter for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= MetricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

// SnapshotNow returns a deep copy of the current counter values.
func (m *Metrics) SnapshotNow() Snapshot {
	if m == nil || !m.enabled {
		return Snapshot{Counters: map[MetricID]uint64{}}
	}

	s := Snapshot{Counters: make(map[MetricID]uint64, int(MetricIDCount))}
	for id := MetricID(0); id < MetricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
