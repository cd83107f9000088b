package core

import (
	"sync/atomic"
	"time"
)

// SourceKind distinguishes a live encoder feed from a file-backed one.
type SourceKind uint8

const (
	SourceLive SourceKind = iota
	SourceStored
)

func (k SourceKind) String() string {
	if k == SourceStored {
		return "stored"
	}
	return "live"
}

// RTPSession is owned by the RTSP session, read-only from the core's
// perspective except for the BYE it triggers on soft timeout. The
// back-pointer to Client is kept for the external RTSP layer (see Client);
// the core itself never goes through it, since the timeout check already
// runs on the owning Client's loop.
type RTPSession struct {
	Source SourceKind

	// ChannelID identifies this session's interleaved RTP channel on the
	// owning Client (see Session.channels).
	ChannelID int

	client *Client

	// lastPacketSendTime is stored as UnixNano in an atomic.Int64: TouchSend
	// is called from the external media scheduler's goroutine while idle
	// (via runTimeoutCheck) reads it from the Client's own loop goroutine,
	// and time.Time is a multi-word struct that isn't safe to share across
	// goroutines without its own synchronization.
	lastPacketSendTime atomic.Int64
}

// NewRTPSession attaches a session to its owning client. The caller
// (external RTSP layer, on SETUP) decides the channel id and source kind.
func NewRTPSession(client *Client, channelID int, source SourceKind) *RTPSession {
	s := &RTPSession{
		Source:    source,
		ChannelID: channelID,
		client:    client,
	}
	s.lastPacketSendTime.Store(time.Now().UnixNano())
	return s
}

// TouchSend records that a media packet was just sent on this session. The
// external media scheduler calls this; the core never sends media itself.
func (s *RTPSession) TouchSend(now time.Time) {
	s.lastPacketSendTime.Store(now.UnixNano())
}

func (s *RTPSession) idle(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastPacketSendTime.Load()))
}

// Client returns the owning client, for the external RTSP layer's use;
// the core itself never dereferences it.
func (s *RTPSession) Client() *Client { return s.client }
