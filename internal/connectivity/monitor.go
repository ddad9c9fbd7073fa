// Package connectivity tracks whether the device believes it has network
// access and fans state transitions out to subscribers.
//
// The monitor never probes the network itself. It is fed by two passive
// sources: the platform signal ([Monitor.SetOnline]) and request outcomes
// observed by the caching proxy ([Monitor.ReportOutcome]).
package connectivity

import (
	"sync"
	"time"

	"github.com/MKhiriev/go-fit-offline/internal/logger"
)

// Transition is delivered to subscribers whenever the state flips.
type Transition struct {
	Online bool
	At     time.Time
}

type Monitor struct {
	mu     sync.Mutex
	online bool
	subs   map[int]chan Transition
	nextID int

	now    func() time.Time
	logger *logger.Logger
}

// NewMonitor returns a monitor starting in the given state.
func NewMonitor(initiallyOnline bool, log *logger.Logger) *Monitor {
	return &Monitor{
		online: initiallyOnline,
		subs:   make(map[int]chan Transition),
		now:    time.Now,
		logger: log.WithComponent("connectivity"),
	}
}

// Online reports the current state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline records the platform signal. Subscribers are notified only when
// the value differs from the current state. Reports whether a transition
// happened.
func (m *Monitor) SetOnline(online bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.online == online {
		return false
	}
	m.online = online

	t := Transition{Online: online, At: m.now()}
	m.logger.Info().Bool("online", online).Msg("connectivity changed")

	for id, ch := range m.subs {
		select {
		case ch <- t:
		default:
			m.logger.Warn().Int("subscriber", id).Bool("online", online).Msg("subscriber is full, transition dropped")
		}
	}
	return true
}

// ReportOutcome is fed by the proxy after every network attempt. A nil err
// means a response arrived, so the device is online. Any error is treated
// as a transport failure.
func (m *Monitor) ReportOutcome(err error) {
	m.SetOnline(err == nil)
}

// Subscribe registers a listener with a buffer of size buf (at least 1).
// The returned func unsubscribes and closes the channel; it is safe to call
// more than once.
func (m *Monitor) Subscribe(buf int) (<-chan Transition, func()) {
	if buf < 1 {
		buf = 1
	}

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	ch := make(chan Transition, buf)
	m.subs[id] = ch
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
			close(ch)
		})
	}
}
