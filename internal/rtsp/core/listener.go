package core

import (
	"net"

	"github.com/pion/sctp"
	"golang.org/x/time/rate"
)

// Listener accepts exactly one connection per readiness notification,
// classifies its transport, and hands a raw net.Conn off to the Admitter.
// Accept/classify failures are logged and the partially-initialised
// descriptor is closed; they never propagate to the caller, so one bad
// accept can't take down the loop.
type Listener struct {
	tcp  net.Listener
	sctp net.Listener // underlying reliable transport the SCTP association rides on

	// acceptLimiter bounds the rate of admit() calls so a connection burst
	// turns into queued kernel-side backlog rather than a flood the
	// worker pool has to reject one tryAcquire at a time.
	acceptLimiter *rate.Limiter

	core *Core
}

func newListener(c *Core) (*Listener, error) {
	tcpLn, err := net.Listen("tcp", c.cfg.ListenAddrTCP)
	if err != nil {
		return nil, err
	}
	l := &Listener{
		tcp:           tcpLn,
		core:          c,
		acceptLimiter: rate.NewLimiter(rate.Limit(c.cfg.AcceptRate), c.cfg.AcceptBurst),
	}

	if c.cfg.ListenAddrSCTP != "" {
		sctpLn, err := net.Listen("tcp", c.cfg.ListenAddrSCTP)
		if err != nil {
			tcpLn.Close()
			return nil, err
		}
		l.sctp = sctpLn
	}
	return l, nil
}

// serveTCP runs the TCP accept loop until the listener is closed.
func (l *Listener) serveTCP() {
	for {
		conn, err := l.tcp.Accept()
		if err != nil {
			if l.core.stopping() {
				return
			}
			l.core.log.Error().Err(err).Msg("accept failed")
			continue
		}
		if err := l.acceptLimiter.Wait(l.core.ctx); err != nil {
			conn.Close()
			return // context cancelled: shutting down
		}
		l.admit(conn)
	}
}

// serveSCTP accepts the underlying reliable connections, negotiates an
// SCTP association over each, and admits the association's first stream
// as the RTSP control channel. Only that first stream is accepted: streams
// the peer opens later (e.g. for interleaved RTP) are not accepted by the
// Listener, and the Client reads and writes the first stream only.
func (l *Listener) serveSCTP() {
	for {
		conn, err := l.sctp.Accept()
		if err != nil {
			if l.core.stopping() {
				return
			}
			l.core.log.Error().Err(err).Msg("sctp accept failed")
			continue
		}

		assoc, err := sctp.Server(sctp.Config{NetConn: conn})
		if err != nil {
			l.core.log.Error().Err(err).Msg("sctp association handshake failed")
			conn.Close()
			continue
		}

		stream, err := assoc.AcceptStream()
		if err != nil {
			l.core.log.Error().Err(err).Msg("sctp accept stream failed")
			assoc.Close()
			continue
		}

		if err := l.acceptLimiter.Wait(l.core.ctx); err != nil {
			stream.Close()
			assoc.Close()
			return // context cancelled: shutting down
		}
		l.admit(newSCTPConn(conn, stream))
	}
}

// admit classifies the accepted connection and, unless classification
// fails and the configuration is strict, hands it to the Admitter. On an
// unknown protocol with strict mode (the default) the connection is
// rejected rather than silently admitted as TCP with an uninitialised
// write strategy.
func (l *Listener) admit(conn net.Conn) {
	kind, known := classifyConn(conn)
	if !known {
		if !l.core.cfg.PermissiveUnknownProtocol {
			l.core.log.Error().Str("remote", conn.RemoteAddr().String()).Msg("unknown socket protocol, rejecting")
			conn.Close()
			return
		}
		l.core.log.Error().Str("remote", conn.RemoteAddr().String()).Msg("unknown socket protocol, admitting as TCP")
		kind = TransportTCP
	}

	l.core.admitter.admit(conn, kind)
}

func (l *Listener) close() {
	l.tcp.Close()
	if l.sctp != nil {
		l.sctp.Close()
	}
}
