package core

import (
	"encoding/binary"

	"github.com/pion/rtp"
)

// interleavedMarker is the '$' byte RFC 2326 §10.12 uses to prefix a
// binary data frame multiplexed onto the same TCP byte stream as RTSP
// text requests/responses.
const interleavedMarker = 0x24

// interleavedHeaderLen is marker(1) + channel(1) + length(2).
const interleavedHeaderLen = 4

// stripInterleaved pulls complete "$<channel><len><payload>" frames off
// the front of buf, dispatching each to the matching RTPSession (if the
// client has one attached for that channel) before the remaining bytes
// are handed to the RTSP text parser. It returns the buffer with all
// complete leading interleaved frames removed.
//
// A real media pipeline would forward payload bytes to the RTP consumer;
// the core only needs to recognize the framing well enough not to feed
// binary data into the text parser, so dispatchInterleaved only logs what
// it observed and never touches the session's timing state.
func (c *Client) stripInterleaved(buf []byte) []byte {
	for len(buf) >= interleavedHeaderLen && buf[0] == interleavedMarker {
		channel := int(buf[1])
		length := int(binary.BigEndian.Uint16(buf[2:4]))
		total := interleavedHeaderLen + length
		if len(buf) < total {
			break // incomplete frame; wait for more bytes
		}

		payload := buf[interleavedHeaderLen:total]
		c.dispatchInterleaved(channel, payload)
		buf = buf[total:]
	}
	return buf
}

func (c *Client) dispatchInterleaved(channel int, payload []byte) {
	if c.session == nil {
		return
	}
	var target *RTPSession
	c.session.forEachRTPSession(func(rtp *RTPSession) {
		if rtp.ChannelID == channel {
			target = rtp
		}
	})
	if target == nil {
		return
	}

	var pkt rtp.Packet
	if err := pkt.Unmarshal(payload); err != nil {
		c.log.Debug().Int("channel", channel).Err(err).Msg("interleaved frame is not a valid RTP packet, ignoring")
		return
	}

	c.log.Debug().Int("channel", channel).Uint32("ssrc", pkt.SSRC).Uint16("seq", pkt.SequenceNumber).Msg("interleaved RTP packet observed")
}
