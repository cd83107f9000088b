package core

import "testing"

// vhost.connection_count must equal the number of live Clients with that vhost.
func TestVHostConnectionCount(t *testing.T) {
	v := NewVHost("default")
	if v.ConnectionCount() != 0 {
		t.Fatalf("expected 0, got %d", v.ConnectionCount())
	}

	v.incr()
	v.incr()
	v.incr()
	if got := v.ConnectionCount(); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}

	v.decr()
	if got := v.ConnectionCount(); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestVHostTableDefault(t *testing.T) {
	table := NewVHostTable("myvhost")
	if table.Default().Name != "myvhost" {
		t.Fatalf("expected myvhost, got %s", table.Default().Name)
	}
}
