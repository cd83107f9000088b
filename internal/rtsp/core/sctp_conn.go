package core

import (
	"net"
	"time"

	"github.com/pion/sctp"
)

// sctpConn adapts a *sctp.Stream (message-oriented, no net.Conn address or
// deadline methods of its own) to net.Conn by delegating addressing and
// deadlines to the underlying reliable connection the association rides
// on, and I/O to the stream. This is the seam classifyConn's sctpStream
// interface matches against.
type sctpConn struct {
	underlying net.Conn
	stream     *sctp.Stream
}

func newSCTPConn(underlying net.Conn, stream *sctp.Stream) *sctpConn {
	return &sctpConn{underlying: underlying, stream: stream}
}

func (c *sctpConn) Read(b []byte) (int, error)  { return c.stream.Read(b) }
func (c *sctpConn) Write(b []byte) (int, error) { return c.stream.Write(b) }
func (c *sctpConn) Close() error                { return c.stream.Close() }

func (c *sctpConn) LocalAddr() net.Addr  { return c.underlying.LocalAddr() }
func (c *sctpConn) RemoteAddr() net.Addr { return c.underlying.RemoteAddr() }

func (c *sctpConn) SetDeadline(t time.Time) error     { return c.underlying.SetDeadline(t) }
func (c *sctpConn) SetReadDeadline(t time.Time) error  { return c.underlying.SetReadDeadline(t) }
func (c *sctpConn) SetWriteDeadline(t time.Time) error { return c.underlying.SetWriteDeadline(t) }

func (c *sctpConn) StreamIdentifier() uint16 { return c.stream.StreamIdentifier() }
