package media

import (
	"github.com/opd-ai/audiosocket/frame"
	"github.com/opd-ai/audiosocket/limits"
)

// UnitKind distinguishes voice from call-side signalling.
type UnitKind uint8

const (
	// UnitVoice carries audio samples.
	UnitVoice UnitKind = iota
	// UnitControl carries a call-side signal (DTMF, hold, and so on). It is
	// never sent over the socket.
	UnitControl
)

// String returns a human-readable representation of the kind.
func (k UnitKind) String() string {
	switch k {
	case UnitVoice:
		return "voice"
	case UnitControl:
		return "control"
	default:
		return "unknown"
	}
}

// Unit is one piece of call audio.
type Unit struct {
	Kind    UnitKind
	Data    []byte
	Samples int
}

// NewVoice wraps raw slin16 bytes in a voice unit.
func NewVoice(data []byte) Unit {
	return Unit{
		Kind:    UnitVoice,
		Data:    data,
		Samples: limits.SamplesIn(len(data)),
	}
}

// NewControl builds a control unit with an opaque body.
func NewControl(data []byte) Unit {
	return Unit{Kind: UnitControl, Data: data}
}

// FromFrame translates an audio frame into a voice unit. The payload is
// shared, not copied.
func FromFrame(f frame.Frame) Unit {
	return Unit{
		Kind:    UnitVoice,
		Data:    f.Payload,
		Samples: f.Samples(),
	}
}

// IsVoice reports whether the unit carries audio.
func (u Unit) IsVoice() bool {
	return u.Kind == UnitVoice
}

// Payload returns the bytes to send in an audio frame.
func (u Unit) Payload() []byte {
	return u.Data
}

// Frame translates the unit into an audio frame.
func (u Unit) Frame() frame.Frame {
	return frame.Frame{Kind: frame.KindAudio, Payload: u.Data}
}
