// Package realtime holds the live push connections of this process and
// delivers addressed events to them.
package realtime

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBufferSize is the outbound event buffer of each connection
const DefaultBufferSize = 16

// Event is one outbound frame, encoded as {"event": ..., "data": ...}
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// Conn is the registry side of a live connection. The transport drains
// Events until Done is closed.
type Conn struct {
	id        string
	out       chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func newConn(id string, bufferSize int) *Conn {
	return &Conn{
		id:   id,
		out:  make(chan Event, bufferSize),
		done: make(chan struct{}),
	}
}

func (c *Conn) ID() string {
	return c.id
}

func (c *Conn) Events() <-chan Event {
	return c.out
}

func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// push never blocks. The out channel is never closed, so a push racing a
// close cannot panic.
func (c *Conn) push(ev Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.out <- ev:
		return true
	default:
		return false
	}
}

func (c *Conn) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Registry is the concurrent connection id -> Conn table
type Registry struct {
	mu         sync.RWMutex
	conns      map[string]*Conn
	bufferSize int
	log        zerolog.Logger
}

type RegistryOption func(*Registry)

func WithBufferSize(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.bufferSize = n
		}
	}
}

func WithLogger(l zerolog.Logger) RegistryOption {
	return func(r *Registry) {
		r.log = l
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		conns:      make(map[string]*Conn),
		bufferSize: DefaultBufferSize,
		log:        log.Logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a connection. Re-registering an id closes the previous Conn.
func (r *Registry) Register(id string) *Conn {
	conn := newConn(id, r.bufferSize)

	r.mu.Lock()
	prev, ok := r.conns[id]
	r.conns[id] = conn
	r.mu.Unlock()

	if ok {
		prev.close()
	}
	r.log.Debug().Str("connection_id", id).Msg("connection registered")
	return conn
}

func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	conn, ok := r.conns[id]
	if ok {
		delete(r.conns, id)
	}
	r.mu.Unlock()

	if ok {
		conn.close()
		r.log.Debug().Str("connection_id", id).Msg("connection unregistered")
	}
}

// Send delivers one event to one connection. An unknown id or a full buffer
// returns false; it is never an error.
func (r *Registry) Send(id, event string, payload any) bool {
	r.mu.RLock()
	conn, ok := r.conns[id]
	r.mu.RUnlock()

	if !ok {
		return false
	}
	delivered := conn.push(Event{Name: event, Data: payload})
	if !delivered {
		r.log.Debug().Str("connection_id", id).Str("event", event).Msg("dropped event for slow or closed connection")
	}
	return delivered
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Close drops every connection
func (r *Registry) Close() {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[string]*Conn)
	r.mu.Unlock()

	for _, c := range conns {
		c.close()
	}
}
