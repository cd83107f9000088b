package core

import "sync"

// Session is a minimal, non-owning placeholder for external RTSP session
// state. newClient attaches an empty Session to every Client at admit
// time, so it is never nil; it holds no RTP sessions until the external
// layer attaches them on SETUP. Real session state — SDP negotiation
// results, playback position, authentication — belongs to the RTSP
// method-handler layer; the core only needs a home for the channel id →
// RTPSession map so the timeout monitor can walk a client's attached
// sessions.
type Session struct {
	ID string

	mu       sync.Mutex
	channels map[int]*RTPSession
}

func NewSession(id string) *Session {
	return &Session{ID: id, channels: make(map[int]*RTPSession)}
}

// Attach registers an RTP session under its interleaved channel id. Called
// by the external RTSP layer on SETUP.
func (s *Session) Attach(rtp *RTPSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[rtp.ChannelID] = rtp
}

// Detach removes an RTP session, e.g. on TEARDOWN of a single channel.
func (s *Session) Detach(channelID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.channels, channelID)
}

// forEachRTPSession calls fn for a snapshot of attached sessions. Used by
// TimeoutMonitor, which must not hold s.mu while invoking BYE emission.
func (s *Session) forEachRTPSession(fn func(*RTPSession)) {
	s.mu.Lock()
	snapshot := make([]*RTPSession, 0, len(s.channels))
	for _, r := range s.channels {
		snapshot = append(snapshot, r)
	}
	s.mu.Unlock()

	for _, r := range snapshot {
		fn(r)
	}
}
