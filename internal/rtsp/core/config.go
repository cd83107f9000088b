package core

import (
	"fmt"
	"time"
)

// Default timing constants. STREAM_TIMEOUT must be an integer multiple of
// LIVE_STREAM_BYE_TIMEOUT (ratio k ≥ 2) so the soft BYE always has a
// chance to fire before the hard kick.
const (
	DefaultLiveStreamByeTimeout = 6 * time.Second
	DefaultStreamTimeout        = 12 * time.Second
)

// Config holds server-wide tunables, validated once via applyDefaults.
type Config struct {
	ListenAddrTCP  string // default ":554"
	ListenAddrSCTP string // empty disables the SCTP listener

	LiveStreamByeTimeout time.Duration
	StreamTimeout        time.Duration

	// WorkerPoolMax bounds concurrently-running ClientRunner goroutines.
	// Zero means "derive from RLIMIT_NOFILE" (see pool.go).
	WorkerPoolMax int

	// AcceptRate and AcceptBurst throttle the Listener's accept loop
	// (golang.org/x/time/rate) so a connection storm degrades into queued
	// accepts instead of flooding the worker pool faster than Admitter can
	// reject the overflow. Zero means "use the default."
	AcceptRate  float64
	AcceptBurst int

	// PermissiveUnknownProtocol admits a connection of unclassifiable
	// transport family as plain TCP instead of rejecting it. Defaults to
	// false: an unclassifiable socket has no safe write strategy to fall
	// back to, so strict rejection is the sane default.
	PermissiveUnknownProtocol bool

	DefaultVHostName string

	LogLevel string
}

func (c *Config) applyDefaults() error {
	if c.ListenAddrTCP == "" {
		c.ListenAddrTCP = ":554"
	}
	if c.LiveStreamByeTimeout == 0 {
		c.LiveStreamByeTimeout = DefaultLiveStreamByeTimeout
	}
	if c.StreamTimeout == 0 {
		c.StreamTimeout = DefaultStreamTimeout
	}
	if c.DefaultVHostName == "" {
		c.DefaultVHostName = "default"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.AcceptRate == 0 {
		c.AcceptRate = 500 // connections/sec, generous headroom for steady-state RTSP control traffic
	}
	if c.AcceptBurst == 0 {
		c.AcceptBurst = 100
	}
	return c.validate()
}

// validate enforces the STREAM_TIMEOUT = k × LIVE_STREAM_BYE_TIMEOUT
// invariant.
func (c *Config) validate() error {
	if c.LiveStreamByeTimeout <= 0 || c.StreamTimeout <= 0 {
		return fmt.Errorf("config: timeouts must be positive")
	}
	if c.StreamTimeout%c.LiveStreamByeTimeout != 0 {
		return fmt.Errorf("config: STREAM_TIMEOUT (%s) must be an integer multiple of LIVE_STREAM_BYE_TIMEOUT (%s)",
			c.StreamTimeout, c.LiveStreamByeTimeout)
	}
	if c.StreamTimeout/c.LiveStreamByeTimeout < 2 {
		return fmt.Errorf("config: STREAM_TIMEOUT must be at least 2x LIVE_STREAM_BYE_TIMEOUT")
	}
	return nil
}
