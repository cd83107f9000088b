package core

import "net"

// TransportKind distinguishes the two socket families a Client may ride on.
// Modeled as a tagged enum (TCP with a queue, or SCTP direct) rather than
// a function-pointer-based strategy, so classification stays a plain
// value switch instead of an interface dispatch.
type TransportKind uint8

const (
	TransportTCP TransportKind = iota
	TransportSCTP
)

func (k TransportKind) String() string {
	switch k {
	case TransportTCP:
		return "tcp"
	case TransportSCTP:
		return "sctp"
	default:
		return "unknown"
	}
}

// classifyConn inspects an accepted net.Conn and reports its transport
// family. Go's standard library only ever hands back *net.TCPConn from a
// TCP listener; SCTP connections are produced by the pion/sctp association
// wrapper and satisfy the net.Conn interface without being a *net.TCPConn.
// Anything else is "unknown" and handled per Config.PermissiveUnknownProtocol.
func classifyConn(c net.Conn) (TransportKind, bool) {
	switch c.(type) {
	case *net.TCPConn:
		return TransportTCP, true
	case sctpStream:
		return TransportSCTP, true
	default:
		return TransportTCP, false
	}
}

// sctpStream is satisfied by *sctpConn (sctp_conn.go), the net.Conn adapter
// around a pion/sctp stream. Declared as a local interface so the type
// switch doesn't depend on the concrete adapter type; the adapter is
// constructed in listener.go.
type sctpStream interface {
	net.Conn
	StreamIdentifier() uint16
}
