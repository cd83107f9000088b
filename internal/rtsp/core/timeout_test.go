package core

import (
	"testing"
	"time"
)

// A LIVE session idle 7s (>= 6s LIVE_STREAM_BYE_TIMEOUT,
// < 12s STREAM_TIMEOUT) gets a soft BYE but the loop keeps running.
func TestTimeoutSoftBYELiveSession(t *testing.T) {
	reg := NewClientRegistry()
	vhost := NewVHost("default")
	c := newTestClient(t, reg, vhost)

	rtp := NewRTPSession(c, 0, SourceLive)
	rtp.TouchSend(time.Now().Add(-7 * time.Second))
	c.session.Attach(rtp)

	stop := runTimeoutCheck(c)
	if stop {
		t.Fatal("soft timeout must not stop the loop")
	}
}

// A LIVE session idle 13s (>= STREAM_TIMEOUT) stops the loop.
func TestTimeoutHardKickLiveSession(t *testing.T) {
	reg := NewClientRegistry()
	vhost := NewVHost("default")
	c := newTestClient(t, reg, vhost)

	rtp := NewRTPSession(c, 0, SourceLive)
	rtp.TouchSend(time.Now().Add(-13 * time.Second))
	c.session.Attach(rtp)

	if !runTimeoutCheck(c) {
		t.Fatal("expected hard kick at 13s idle")
	}
}

// A STORED session idle 13s hard-kicks with no BYE emitted —
// BYE is never attempted for non-LIVE sources regardless of idle time.
func TestTimeoutStoredSessionNoSoftBye(t *testing.T) {
	reg := NewClientRegistry()
	vhost := NewVHost("default")
	c := newTestClient(t, reg, vhost)

	rtp := NewRTPSession(c, 0, SourceStored)
	rtp.TouchSend(time.Now().Add(-7 * time.Second))
	c.session.Attach(rtp)

	if runTimeoutCheck(c) {
		t.Fatal("7s idle must not hard-kick")
	}

	rtp.TouchSend(time.Now().Add(-13 * time.Second))
	if !runTimeoutCheck(c) {
		t.Fatal("13s idle must hard-kick regardless of source kind")
	}
	if len(c.outQueue) != 0 {
		t.Fatalf("STORED session must not emit a BYE, got %d queued writes", len(c.outQueue))
	}
}

// The default timeouts keep STREAM_TIMEOUT at exactly twice
// LIVE_STREAM_BYE_TIMEOUT, leaving a soft-BYE window before the hard kick.
func TestTimeoutRatioInvariant(t *testing.T) {
	if DefaultStreamTimeout != 2*DefaultLiveStreamByeTimeout {
		t.Fatalf("STREAM_TIMEOUT must be exactly 2x LIVE_STREAM_BYE_TIMEOUT by default: %s vs %s",
			DefaultStreamTimeout, DefaultLiveStreamByeTimeout)
	}
}
