package frame

import (
	"fmt"

	"github.com/opd-ai/audiosocket/limits"
)

// Kind identifies the type of an AudioSocket frame.
type Kind byte

const (
	// KindTerminate ends the session. It carries no length and no payload.
	KindTerminate Kind = 0x00
	// KindHandshake carries the 16-byte session identifier.
	KindHandshake Kind = 0x01
	// KindAudio carries signed linear 16-bit PCM samples.
	KindAudio Kind = 0x10
	// KindError is sent by some remote services to report a failure. The first
	// payload byte, when present, is an application error code.
	KindError Kind = 0xff
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindTerminate:
		return "terminate"
	case KindHandshake:
		return "handshake"
	case KindAudio:
		return "audio"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(k))
	}
}

// Frame is one decoded or to-be-encoded AudioSocket message.
// Frames are not modified after construction.
type Frame struct {
	Kind    Kind
	Payload []byte
}

// Len returns the payload length in bytes.
func (f Frame) Len() int {
	return len(f.Payload)
}

// Samples returns the number of 16-bit samples carried by the payload.
// Odd-length payloads are passed through unchanged; the trailing byte is not
// counted.
func (f Frame) Samples() int {
	return limits.SamplesIn(len(f.Payload))
}
