package core

import "sync/atomic"

// VHost is a configuration grouping with its own connection count and
// policy. The core only tracks membership and the live connection
// counter; routing-table lookup and per-vhost policy configuration are
// external collaborators.
type VHost struct {
	Name string

	// connCount is modified only on admit/teardown from different worker
	// goroutines, but never concurrently for the same Client.
	connCount atomic.Int64
}

func NewVHost(name string) *VHost {
	return &VHost{Name: name}
}

func (v *VHost) ConnectionCount() int64 { return v.connCount.Load() }

func (v *VHost) incr() { v.connCount.Add(1) }
func (v *VHost) decr() { v.connCount.Add(-1) }

// VHostTable resolves a request to a VHost. The real config-file-driven
// routing table is external; this is a minimal single-default stand-in
// sufficient for the Admitter to always have somewhere to attach new
// Clients.
type VHostTable struct {
	def *VHost
}

func NewVHostTable(defaultName string) *VHostTable {
	return &VHostTable{def: NewVHost(defaultName)}
}

// Default returns the table's default vhost.
func (t *VHostTable) Default() *VHost { return t.def }
