package core

import (
	"errors"
	"io"
	"time"

	"github.com/fengstream/rtsp-core/internal/bufpool"
)

// readEvent carries the result of one blocking conn.Read call from the
// reader goroutine to the dispatch goroutine. Reading and dispatching run
// on separate goroutines so that dispatch (and therefore all Client field
// mutation) stays on a single goroutine even though two goroutines touch
// the socket.
type readEvent struct {
	data []byte
	err  error
}

// run is the per-client event loop, invoked on a pool goroutine. It
// installs the read/write/timeout watchers, registers the Client, and
// runs until stopped, then tears down unconditionally.
func (c *Client) run() {
	defer c.pool.release()

	readCh := make(chan readEvent, 1)
	go c.readPump(readCh)

	ticker := time.NewTicker(c.cfg.StreamTimeout)
	defer ticker.Stop()

	c.registry.add(c)
	c.fire("connection_accept", nil)
	c.log.Info().Str("transport", c.Transport.String()).Msg("client admitted")

	c.loop(readCh, ticker)

	c.teardown()
}

// loop is the dispatch body: it selects over the read watcher (readCh),
// the write watcher (writeSig), and the timeout watcher (ticker.C), plus
// the stop signal. Teardown runs after loop returns, in run.
func (c *Client) loop(readCh <-chan readEvent, ticker *time.Ticker) {
	for {
		select {
		case <-c.stopCh:
			return

		case ev := <-readCh:
			if ev.err != nil {
				if !errors.Is(ev.err, io.EOF) {
					c.log.Debug().Err(ev.err).Msg("read error, closing")
				}
				return
			}
			if !c.handleReadable(ev.data) {
				return
			}
			if err := c.drainOutput(); err != nil {
				c.log.Debug().Err(err).Msg("write error, closing")
				return
			}

		case <-c.writeSigOrNil():
			if err := c.drainOutput(); err != nil {
				c.log.Debug().Err(err).Msg("write error, closing")
				return
			}

		case <-ticker.C:
			if stop := runTimeoutCheck(c); stop {
				return
			}
		}
	}
}

// writeSigOrNil returns nil for SCTP clients (which have no queue to
// drain), so that select branch is simply never ready rather than needing
// a transport type-switch inline.
func (c *Client) writeSigOrNil() <-chan struct{} {
	if c.Transport == TransportTCP {
		return c.writeSig
	}
	return nil
}

// readPump performs blocking reads and forwards them to the owning
// goroutine. It never touches Client fields besides conn (read-only) and
// never closes readCh — the runner goroutine exits via stopCh/return, at
// which point conn.Close() in teardown unblocks the pending Read with
// net.ErrClosed and this goroutine exits on its own.
func (c *Client) readPump(out chan<- readEvent) {
	buf := bufpool.Get(65536)
	defer bufpool.Put(buf)

	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			cp := make([]byte, n)
			copy(cp, buf[:n])
			select {
			case out <- readEvent{data: cp}:
			case <-c.stopCh:
				return
			}
		}
		if err != nil {
			select {
			case out <- readEvent{err: err}:
			case <-c.stopCh:
			}
			return
		}
	}
}

// handleReadable processes one batch of bytes read off the socket: for
// TCP it appends to the reassembly buffer and repeatedly asks the parser
// for complete requests; for SCTP each read is already one message.
// Returns false if the loop should stop (fatal protocol error).
func (c *Client) handleReadable(data []byte) bool {
	if c.Transport == TransportSCTP {
		return c.parseAndDispatch(data)
	}

	c.inBuf = append(c.inBuf, data...)
	c.inBuf = c.stripInterleaved(c.inBuf)
	for {
		advance, req, err := c.parser.Parse(c.inBuf)
		if err != nil {
			c.log.Info().Err(err).Msg("malformed request, closing connection")
			return false
		}
		if advance == 0 {
			return true // need more bytes
		}
		if req != nil {
			if err := c.dispatch(req); err != nil {
				c.log.Debug().Err(err).Msg("handler error, closing")
				return false
			}
		}
		c.inBuf = c.inBuf[advance:]
	}
}

func (c *Client) parseAndDispatch(msg []byte) bool {
	_, req, err := c.parser.Parse(msg)
	if err != nil {
		c.log.Info().Err(err).Msg("malformed SCTP message, closing connection")
		return false
	}
	if req == nil {
		return true
	}
	if err := c.dispatch(req); err != nil {
		c.log.Debug().Err(err).Msg("handler error, closing")
		return false
	}
	return true
}

func (c *Client) dispatch(req *Request) error {
	resp, err := c.handler.Handle(c, req)
	if err != nil {
		return err
	}
	if len(resp) == 0 {
		return nil
	}
	return c.write(resp)
}

// teardown runs the HTTP-tunnel asymmetric pairing rule and the common
// exit path every error/timeout/stop condition converges on.
func (c *Client) teardown() {
	c.stop() // idempotent; also unblocks any racing caller of stop()

	_ = c.conn.Close()
	c.releaseInBuf()
	c.registry.remove(c.ID)
	c.vhost.decr()
	c.fire("connection_close", nil)
	c.log.Info().Msg("client removed")

	c.teardownPair()
}

// teardownPair applies the asymmetric tunnel-pairing rule: if this client
// isn't in a tunnel, nothing further to do; if it's the RTSP-carrying
// (POST) side, free the sibling first; otherwise leave the sibling alone
// to free itself when its own loop exits. All state is read and mutated
// through tunnel.mu, never by touching the sibling Client's fields
// directly, so two teardowns racing on either side of the pair can't both
// win.
func (c *Client) teardownPair() {
	tp := c.tunnel.Load()
	if tp == nil {
		return
	}

	tp.mu.Lock()
	defer tp.mu.Unlock()
	if tp.freed || tp.post != c {
		return
	}
	tp.freed = true
	tp.get.stop()
}
