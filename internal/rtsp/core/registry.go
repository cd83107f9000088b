package core

import "sync"

// ClientRegistry is the server-wide table of currently running Clients.
// A Client is present in the registry if and only if its per-client
// goroutine is active; add/remove are idempotent, so a duplicate remove
// (e.g. a racing timeout and a client-initiated TEARDOWN) never corrupts
// the table.
//
// Guarded by a single mutex rather than an RWMutex; iterating live
// connections for shutdown broadcast is rare enough that read/write
// splitting isn't worth the extra type.
type ClientRegistry struct {
	mu      sync.Mutex
	clients map[string]*Client
}

func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{clients: make(map[string]*Client)}
}

// add registers a Client under its ID. Re-adding the same ID is a no-op.
func (r *ClientRegistry) add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.clients[c.ID]; exists {
		return
	}
	r.clients[c.ID] = c
}

// remove unregisters a Client by ID. Removing an ID that isn't present is
// a no-op, which is what makes the asymmetric HTTP-tunnel teardown and a
// racing timeout/TEARDOWN both safe to call unconditionally.
func (r *ClientRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, id)
}

func (r *ClientRegistry) get(id string) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	return c, ok
}

func (r *ClientRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// forEach calls fn for every registered Client, holding r.mu for the whole
// iteration. fn must not call add/remove/get/Len on this registry (it would
// deadlock on r.mu) and should do no more than post a wakeup, as Core.Stop's
// shutdown broadcast does with stop(); each Client then removes itself
// from the registry on its own goroutine once the iteration has released
// the lock.
func (r *ClientRegistry) forEach(fn func(*Client)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		fn(c)
	}
}
