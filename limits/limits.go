package limits

import (
	"errors"
	"fmt"
	"time"
)

const (
	// HeaderSize is the size of the kind byte plus the 16-bit length field.
	HeaderSize = 3

	// SessionIDSize is the size of the raw identifier sent in the handshake.
	SessionIDSize = 16

	// HandshakeSize is the full encoded size of a handshake frame.
	HandshakeSize = HeaderSize + SessionIDSize

	// MaxPayloadSize is the largest payload a 16-bit length field can carry.
	MaxPayloadSize = 0xFFFF

	// BytesPerSample is the width of one signed linear 16-bit sample.
	BytesPerSample = 2
)

const (
	// DefaultConnectTimeout bounds a single connection attempt to one address.
	DefaultConnectTimeout = 2000 * time.Millisecond

	// PayloadReadRetries is how many times a failed payload read is retried
	// before the frame is declared undecodable.
	PayloadReadRetries = 3

	// PayloadRetryDelay is the pause between payload read retries.
	PayloadRetryDelay = 5 * time.Millisecond

	// SampleRate is the sample rate of AudioSocket audio payloads.
	SampleRate = 8000

	// DefaultFrameInterval is the duration of one audio frame.
	DefaultFrameInterval = 20 * time.Millisecond

	// DefaultFrameBytes is the payload size of one 20 ms frame at 8 kHz slin16.
	DefaultFrameBytes = SampleRate / 50 * BytesPerSample
)

var (
	// ErrPayloadTooLarge indicates a payload does not fit the 16-bit length field.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrInvalidFrameSize indicates a frame size that is not a positive whole
	// number of samples.
	ErrInvalidFrameSize = errors.New("invalid frame size")
)

// ValidatePayload checks that a payload can be described by the length field.
// Empty payloads are legal on the wire.
func ValidatePayload(payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrPayloadTooLarge, len(payload), MaxPayloadSize)
	}
	return nil
}

// ValidateFrameBytes checks a configured frame size: it must be positive, a
// whole number of 16-bit samples, and fit in one frame.
func ValidateFrameBytes(n int) error {
	if n <= 0 || n%BytesPerSample != 0 {
		return fmt.Errorf("%w: %d bytes", ErrInvalidFrameSize, n)
	}
	if n > MaxPayloadSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrPayloadTooLarge, n, MaxPayloadSize)
	}
	return nil
}

// SamplesIn returns the number of whole 16-bit samples in n bytes.
func SamplesIn(n int) int {
	return n / BytesPerSample
}
