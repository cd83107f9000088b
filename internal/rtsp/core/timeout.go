package core

import (
	"time"

	"github.com/pion/rtcp"
)

// runTimeoutCheck is invoked from the client's own repeating timer tick.
// It walks every RTP session currently attached to the client's session
// and applies the soft-BYE / hard-kick rule. Returns true if the client's
// loop must stop (hard kick fired).
func runTimeoutCheck(c *Client) bool {
	if c.session == nil {
		return false
	}

	now := time.Now()
	hardKick := false

	c.session.forEachRTPSession(func(rtp *RTPSession) {
		idle := rtp.idle(now)

		// Intentionally does not update lastPacketSendTime: a persistently
		// idle LIVE session keeps re-emitting BYE on every tick until the
		// hard kick fires, rather than signalling once and going quiet.
		if rtp.Source == SourceLive && idle >= c.cfg.LiveStreamByeTimeout && idle < c.cfg.StreamTimeout {
			emitSoftBye(c, rtp)
		}

		if idle >= c.cfg.StreamTimeout {
			hardKick = true
		}
	})

	if hardKick {
		c.log.Info().Msg("hard stream timeout, closing connection")
		c.fire("hard_timeout", nil)
		return true
	}
	return false
}

// emitSoftBye sends an RTCP Goodbye preceded by a minimal Sender Report on
// the client's control channel. The real RTP session carries SSRC/sequence
// state this core doesn't own; it only needs to prove the BYE was sent, so
// it builds a SenderReport addressed to the session's own channel SSRC.
func emitSoftBye(c *Client, rtp *RTPSession) {
	pkts := []rtcp.Packet{
		&rtcp.SenderReport{
			SSRC: uint32(rtp.ChannelID),
		},
		&rtcp.Goodbye{
			Sources: []uint32{uint32(rtp.ChannelID)},
		},
	}
	buf, err := rtcp.Marshal(pkts)
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to marshal RTCP BYE")
		return
	}

	c.log.Info().Int("channel_id", rtp.ChannelID).Msg("soft stream timeout, emitting RTCP BYE")
	c.fire("soft_timeout", map[string]any{"channel_id": rtp.ChannelID})

	if err := c.write(buf); err != nil {
		c.log.Debug().Err(err).Msg("failed to write RTCP BYE")
	}
}
