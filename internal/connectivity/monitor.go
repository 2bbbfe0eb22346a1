// Package connectivity tracks whether the remote mirror is believed reachable.
// The signal is advisory: online does not guarantee a remote call will succeed.
package connectivity

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MrJamesThe3rd/kasbook/internal/logging"
)

// Event is a state transition.
type Event struct {
	Online bool
	At     time.Time
}

type Monitor struct {
	log logrus.FieldLogger
	now func() time.Time

	mu       sync.Mutex
	online   bool
	subs     map[int]chan Event
	nextSub  int
	onOnline []func()
}

func NewMonitor(initial bool, log logrus.FieldLogger) *Monitor {
	return &Monitor{
		log:    logging.Component(log, "connectivity"),
		now:    time.Now,
		online: initial,
		subs:   make(map[int]chan Event),
	}
}

func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.online
}

// Set ingests the external signal. It reports whether the state changed; only
// changes reach subscribers and hooks.
func (m *Monitor) Set(online bool) bool {
	m.mu.Lock()

	if m.online == online {
		m.mu.Unlock()
		return false
	}

	m.online = online
	ev := Event{Online: online, At: m.now()}

	// Sends never block, and holding mu keeps cancel from closing a channel mid-send.
	dropped := 0

	for _, ch := range m.subs {
		select {
		case ch <- ev:
		default:
			dropped++
		}
	}

	var hooks []func()
	if online {
		hooks = append(hooks, m.onOnline...)
	}

	m.mu.Unlock()

	m.log.WithField(logging.FieldOnline, online).Info("connectivity changed")

	if dropped > 0 {
		m.log.WithField(logging.FieldCount, dropped).Warn("subscriber is not keeping up, dropping connectivity event")
	}

	for _, h := range hooks {
		h()
	}

	return true
}

// Subscribe returns a stream of transitions. Events are dropped for a
// subscriber whose buffer is full. The cancel func closes the channel.
func (m *Monitor) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.mu.Unlock()

	var once sync.Once

	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
			close(ch)
		})
	}

	return ch, cancel
}

// OnOnline registers fn to run on every offline to online edge. Hooks run on
// the goroutine that called Set and must not block.
func (m *Monitor) OnOnline(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.onOnline = append(m.onOnline, fn)
}
