// Package supersede discards stale asynchronous work: a newer call for the same key
// cancels the one in flight.
package supersede

import (
	"context"
	"sync"
	"sync/atomic"
)

// Gate tracks the newest call per key. Use NewGate.
type Gate struct {
	mu       sync.Mutex
	inflight map[string]*Ticket
}

func NewGate() *Gate {
	return &Gate{inflight: map[string]*Ticket{}}
}

// Ticket identifies one call started through Begin.
type Ticket struct {
	gate   *Gate
	key    string
	cancel context.CancelFunc
	stale  atomic.Bool
}

// Begin registers a new call for key, cancelling the context of the previous one.
// The returned context is cancelled when a newer call begins or Done is called.
func (g *Gate) Begin(ctx context.Context, key string) (context.Context, *Ticket) {
	ctx, cancel := context.WithCancel(ctx)
	t := &Ticket{gate: g, key: key, cancel: cancel}

	g.mu.Lock()
	defer g.mu.Unlock()
	if prev, ok := g.inflight[key]; ok {
		prev.stale.Store(true)
		prev.cancel()
	}
	g.inflight[key] = t
	return ctx, t
}

// Current reports whether no newer call for the same key has begun.
func (t *Ticket) Current() bool {
	return !t.stale.Load()
}

// Done releases the ticket and its context.
func (t *Ticket) Done() {
	t.cancel()
	t.gate.mu.Lock()
	defer t.gate.mu.Unlock()
	if cur, ok := t.gate.inflight[t.key]; ok && cur == t {
		delete(t.gate.inflight, t.key)
	}
}

// InFlight returns the number of keys with a running call.
func (g *Gate) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inflight)
}
