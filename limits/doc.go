// Package limits provides the wire-level size constants, timing constants and
// validation helpers of the AudioSocket protocol. Every other package takes its
// numbers from here so the frame codec, the session and the server agree on
// what a legal frame is.
//
// # Frame Sizes
//
//   - HeaderSize (3 bytes): one kind byte followed by a big-endian 16-bit
//     payload length. The terminate frame is the only frame sent without it.
//
//   - SessionIDSize (16 bytes): the raw session identifier carried by the
//     handshake frame.
//
//   - MaxPayloadSize (65535 bytes): the largest payload the 16-bit length field
//     can describe.
//
// # Timing
//
// DefaultConnectTimeout bounds each connection attempt. PayloadReadRetries and
// PayloadRetryDelay bound the local retry performed while reading a frame body.
// DefaultFrameBytes and DefaultFrameInterval describe one 20 ms frame of 8 kHz
// signed linear mono audio, the format AudioSocket peers exchange.
//
// # Validation
//
//	if err := limits.ValidatePayload(pcm); err != nil {
//	    // ErrPayloadTooLarge
//	}
package limits
