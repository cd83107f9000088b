package core

import "net"

// Admitter builds the Client, resolves its vhost, accounts for it, and
// pushes it onto the worker pool. Everything past this point belongs to
// the Client's own goroutine; the Admitter itself holds no per-connection
// state.
type Admitter struct {
	core *Core
}

func newAdmitter(c *Core) *Admitter {
	return &Admitter{core: c}
}

// admit builds a Client for an already-classified connection and submits
// it to the worker pool. If the pool is saturated, the connection is
// rejected (closed) rather than admitted; the ceiling tracks the
// process's file-descriptor limit by default (see deriveMaxFromRlimit).
func (a *Admitter) admit(conn net.Conn, kind TransportKind) {
	vhost := a.core.vhosts.Default()

	if !a.core.pool.tryAcquire() {
		a.core.log.Error().Str("remote", conn.RemoteAddr().String()).Msg("worker pool saturated, rejecting connection")
		conn.Close()
		return
	}

	c := newClient(conn, kind, vhost, a.core.cfg, a.core.registry, a.core.pool, a.core.hookSink)
	vhost.incr()

	go c.run()
}
