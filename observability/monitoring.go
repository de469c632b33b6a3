package observability

import (
	"runtime"
	"sync/atomic"
	"time"
)

// Snapshot aggregates the counters for the debug endpoint and the monitoring worker.
type Snapshot struct {
	ConnectionsAccepted uint64 `json:"connections_accepted"`
	ConnectionsRejected uint64 `json:"connections_rejected"`
	ConnectionsClosed   uint64 `json:"connections_closed"`
	AuthFailures        uint64 `json:"auth_failures"`
	FramesDelivered     uint64 `json:"frames_delivered"`
	FramesDropped       uint64 `json:"frames_dropped"`
	MessagesSent        uint64 `json:"messages_sent"`
	PersistenceErrors   uint64 `json:"persistence_errors"`
	PresenceWrites      uint64 `json:"presence_writes"`
	AllocMemMb          uint64 `json:"alloc_mem_mb"`
	NumGC               uint32 `json:"num_gc"`
	Goroutines          int    `json:"goroutines"`
	Uptime              string `json:"uptime"`
}

// Monitor holds process-wide atomic counters. Safe for concurrent use.
type Monitor struct {
	startedAt           time.Time
	connectionsAccepted uint64
	connectionsRejected uint64
	connectionsClosed   uint64
	authFailures        uint64
	framesDelivered     uint64
	framesDropped       uint64
	messagesSent        uint64
	persistenceErrors   uint64
	presenceWrites      uint64
}

func NewMonitor() *Monitor {
	return &Monitor{startedAt: time.Now()}
}

func (m *Monitor) IncrConnectionsAccepted() { atomic.AddUint64(&m.connectionsAccepted, 1) }
func (m *Monitor) IncrConnectionsRejected() { atomic.AddUint64(&m.connectionsRejected, 1) }
func (m *Monitor) IncrConnectionsClosed()   { atomic.AddUint64(&m.connectionsClosed, 1) }
func (m *Monitor) IncrAuthFailures()        { atomic.AddUint64(&m.authFailures, 1) }
func (m *Monitor) IncrMessagesSent()        { atomic.AddUint64(&m.messagesSent, 1) }
func (m *Monitor) IncrPersistenceErrors()   { atomic.AddUint64(&m.persistenceErrors, 1) }
func (m *Monitor) IncrPresenceWrites()      { atomic.AddUint64(&m.presenceWrites, 1) }

func (m *Monitor) AddFramesDelivered(n int) {
	atomic.AddUint64(&m.framesDelivered, uint64(n))
}

func (m *Monitor) IncrFramesDropped() {
	atomic.AddUint64(&m.framesDropped, 1)
}

func (m *Monitor) Snapshot() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return Snapshot{
		ConnectionsAccepted: atomic.LoadUint64(&m.connectionsAccepted),
		ConnectionsRejected: atomic.LoadUint64(&m.connectionsRejected),
		ConnectionsClosed:   atomic.LoadUint64(&m.connectionsClosed),
		AuthFailures:        atomic.LoadUint64(&m.authFailures),
		FramesDelivered:     atomic.LoadUint64(&m.framesDelivered),
		FramesDropped:       atomic.LoadUint64(&m.framesDropped),
		MessagesSent:        atomic.LoadUint64(&m.messagesSent),
		PersistenceErrors:   atomic.LoadUint64(&m.persistenceErrors),
		PresenceWrites:      atomic.LoadUint64(&m.presenceWrites),
		AllocMemMb:          mem.Alloc / 1024 / 1024,
		NumGC:               mem.NumGC,
		Goroutines:          runtime.NumGoroutine(),
		Uptime:              time.Since(m.startedAt).Truncate(time.Second).String(),
	}
}
