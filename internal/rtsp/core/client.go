package core

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fengstream/rtsp-core/internal/bufpool"
	"github.com/fengstream/rtsp-core/internal/logger"
)

// Client is the unit owned by one worker goroutine for its entire
// lifetime. Every field below is touched only from the goroutine that
// owns it, except outQueue (guarded by outMu so producers external to
// the loop — none exist in this core, but write is exposed for that
// possibility — can enqueue safely) and the atomic/channel fields
// explicitly called out as cross-goroutine.
type Client struct {
	ID      string
	Transport TransportKind
	conn    net.Conn

	LocalAddr string
	PeerAddr  string

	vhost *VHost

	parser  RequestParser
	handler RequestHandler

	// input buffer: present only for TCP; SCTP reads arrive as whole
	// messages from the pion/sctp stream and need no reassembly.
	inBuf []byte

	// TCP queued output strategy state. SCTP writes go straight to the
	// stream and need none of this (see writeSCTP).
	outMu    sync.Mutex
	outQueue [][]byte
	writeSig chan struct{}

	sctpStreamID uint16

	session *Session

	// tunnel holds the HTTP-tunnel pairing, if any. Set once by Core.Pair
	// via an atomic store; teardownPair only ever reads it and mutates
	// state through tunnel.mu, never by writing to the sibling Client's
	// fields directly.
	tunnel atomic.Pointer[tunnelPair]

	stopCh   chan struct{}
	stopOnce sync.Once

	registry *ClientRegistry
	pool     *workerPool
	hooks    hookSink
	cfg      *Config
	log      zerolog.Logger
}

// hookSink is the subset of hooks.HookManager the core calls through,
// declared locally so this package doesn't need to import the hooks
// package's Event/EventType types into every file that touches a Client.
type hookSink interface {
	Fire(kind string, fields map[string]any)
}

func newClientID() string {
	return uuid.NewString()
}

// newClient builds a Client in the admitted-but-not-running state; the
// caller (Admitter) still owns it until it's handed to Client.run.
func newClient(conn net.Conn, kind TransportKind, vhost *VHost, cfg *Config, registry *ClientRegistry, pool *workerPool, hooks hookSink) *Client {
	id := newClientID()
	peerAddr := safeAddrString(conn.RemoteAddr())
	c := &Client{
		ID:        id,
		Transport: kind,
		conn:      conn,
		LocalAddr: safeAddrString(conn.LocalAddr()),
		PeerAddr:  peerAddr,
		vhost:     vhost,
		parser:    newDefaultParser(),
		handler:   echoHandler{},
		session:   NewSession(uuid.NewString()),
		stopCh:    make(chan struct{}),
		registry:  registry,
		pool:      pool,
		hooks:     hooks,
		cfg:       cfg,
		log:       logger.WithVHost(logger.WithConn(*logger.Logger(), id, peerAddr), vhost.Name),
	}

	if kind == TransportTCP {
		c.inBuf = make([]byte, 0, 4096)
		c.writeSig = make(chan struct{}, 1)
	}
	return c
}

func safeAddrString(a net.Addr) string {
	if a == nil {
		return ""
	}
	return a.String()
}

// SetHandler overrides the RequestHandler, for callers (tests, the real
// RTSP layer) that need more than the echo stub.
func (c *Client) SetHandler(h RequestHandler) { c.handler = h }

// SetParser overrides the RequestParser.
func (c *Client) SetParser(p RequestParser) { c.parser = p }

// stop requests the owning ClientRunner loop to exit. Safe to call from
// any goroutine, any number of times; post-exit watcher callbacks must
// stay idempotent.
func (c *Client) stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// stopRequested reports whether stop has been called, without blocking.
func (c *Client) stopRequested() bool {
	select {
	case <-c.stopCh:
		return true
	default:
		return false
	}
}

// write is the public write helper: accepts a complete message as an
// owned buffer and relinquishes ownership to the strategy picked at
// admit time.
func (c *Client) write(buf []byte) error {
	switch c.Transport {
	case TransportSCTP:
		return c.writeSCTP(buf)
	default:
		return c.writeQueuedTCP(buf)
	}
}

// writeQueuedTCP implements the TCP queued output strategy: enqueue at
// the tail, signal the write watcher. The main loop drains the queue
// from the head on each writeSig wakeup; partial writes leave the
// remainder at the head so wire order matches enqueue order.
func (c *Client) writeQueuedTCP(buf []byte) error {
	c.outMu.Lock()
	c.outQueue = append(c.outQueue, buf)
	c.outMu.Unlock()

	select {
	case c.writeSig <- struct{}{}:
	default:
		// a wakeup is already pending; the loop will see the new tail
		// when it next drains, so no second signal is needed.
	}
	return nil
}

// drainOutput writes as much of the queued output as a single pass over
// net.Conn.Write will take, called only from the owning ClientRunner
// goroutine.
func (c *Client) drainOutput() error {
	for {
		c.outMu.Lock()
		if len(c.outQueue) == 0 {
			c.outMu.Unlock()
			return nil
		}
		head := c.outQueue[0]
		c.outMu.Unlock()

		n, err := c.conn.Write(head)
		if err != nil {
			return err
		}
		if n < len(head) {
			c.outMu.Lock()
			c.outQueue[0] = head[n:]
			c.outMu.Unlock()
			continue
		}

		c.outMu.Lock()
		c.outQueue = c.outQueue[1:]
		c.outMu.Unlock()
	}
}

// writeSCTP implements the SCTP direct output strategy: a message-
// oriented send on the client's control stream, no user-space queue. The
// kernel (and pion/sctp's stream abstraction) preserves per-stream
// ordering, so there is nothing further to do on partial sends beyond
// retrying the remainder.
func (c *Client) writeSCTP(buf []byte) error {
	for len(buf) > 0 {
		n, err := c.conn.Write(buf)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}

// releaseInBuf returns the TCP reassembly buffer to the shared pool; safe
// to call once, during teardown.
func (c *Client) releaseInBuf() {
	if cap(c.inBuf) > 0 {
		bufpool.Put(c.inBuf[:cap(c.inBuf)])
		c.inBuf = nil
	}
}
