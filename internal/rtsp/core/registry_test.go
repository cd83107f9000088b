package core

import (
	"net"
	"testing"
	"time"
)

func newTestClient(t *testing.T, registry *ClientRegistry, vhost *VHost) *Client {
	t.Helper()
	serverConn, clientConn := net.Pipe()
	t.Cleanup(func() {
		serverConn.Close()
		clientConn.Close()
	})

	cfg := &Config{
		LiveStreamByeTimeout: 6 * time.Second,
		StreamTimeout:        12 * time.Second,
		DefaultVHostName:     vhost.Name,
	}
	pool, err := newWorkerPool(8)
	if err != nil {
		t.Fatalf("newWorkerPool: %v", err)
	}

	c := newClient(serverConn, TransportTCP, vhost, cfg, registry, pool, nil)
	return c
}

// add followed by remove leaves the registry unchanged.
func TestRegistryAddRemoveIdempotent(t *testing.T) {
	reg := NewClientRegistry()
	vhost := NewVHost("default")
	c := newTestClient(t, reg, vhost)

	before := reg.Len()
	reg.add(c)
	reg.remove(c.ID)
	after := reg.Len()

	if before != after {
		t.Fatalf("registry length changed across add+remove: before=%d after=%d", before, after)
	}

	// Removing an already-absent ID must be a no-op, not a panic.
	reg.remove(c.ID)
	if reg.Len() != after {
		t.Fatalf("double remove changed registry length")
	}
}

// A Client appears in the registry iff add has been called and
// remove has not yet.
func TestRegistryMembership(t *testing.T) {
	reg := NewClientRegistry()
	vhost := NewVHost("default")
	c := newTestClient(t, reg, vhost)

	if _, ok := reg.get(c.ID); ok {
		t.Fatal("client should not be present before add")
	}

	reg.add(c)
	if _, ok := reg.get(c.ID); !ok {
		t.Fatal("client should be present after add")
	}

	// Duplicate add must not create a second entry or corrupt state.
	reg.add(c)
	if reg.Len() != 1 {
		t.Fatalf("expected 1 entry after duplicate add, got %d", reg.Len())
	}

	reg.remove(c.ID)
	if _, ok := reg.get(c.ID); ok {
		t.Fatal("client should not be present after remove")
	}
}

func TestRegistryForEachSnapshot(t *testing.T) {
	reg := NewClientRegistry()
	vhost := NewVHost("default")
	a := newTestClient(t, reg, vhost)
	b := newTestClient(t, reg, vhost)
	reg.add(a)
	reg.add(b)

	seen := make(map[string]bool)
	reg.forEach(func(c *Client) { seen[c.ID] = true })

	if !seen[a.ID] || !seen[b.ID] {
		t.Fatalf("forEach missed a registered client: seen=%v", seen)
	}
}
