package frame

import (
	"errors"
	"fmt"
)

// Decode outcomes that are not failures.
var (
	// ErrEmpty indicates there is nothing to deliver from this read. The caller
	// should simply try again on the next readiness event.
	ErrEmpty = errors.New("no frame available")

	// ErrEndOfStream indicates the remote end closed the logical session.
	ErrEndOfStream = errors.New("end of stream")

	// ErrPeerClosed accompanies ErrEndOfStream when the transport was closed
	// without a terminate frame.
	ErrPeerClosed = errors.New("peer closed connection")
)

// Wire I/O failures.
var (
	// ErrDecode indicates framing was lost while reading. The connection is
	// unusable afterwards.
	ErrDecode = errors.New("frame decode failed")

	// ErrWrite indicates a frame could not be written in one piece.
	ErrWrite = errors.New("frame write failed")

	// ErrInsufficientData indicates the stream ended inside a frame body.
	ErrInsufficientData = errors.New("insufficient data")
)

// errPeerClosed is returned when the kind byte read hits EOF.
var errPeerClosed = fmt.Errorf("%w: %w", ErrEndOfStream, ErrPeerClosed)

// ProtocolError describes a wire I/O failure with the operation that hit it.
// It matches both its class (ErrDecode or ErrWrite) and its cause under
// errors.Is.
type ProtocolError struct {
	Op    string // operation that failed, e.g. "read length"
	Class error  // ErrDecode or ErrWrite
	Err   error  // underlying cause
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("audiosocket %s: %v: %v", e.Op, e.Class, e.Err)
}

// Unwrap exposes both the class and the cause.
func (e *ProtocolError) Unwrap() []error {
	return []error{e.Class, e.Err}
}

// decodeError creates a ProtocolError in the ErrDecode class.
func decodeError(op string, err error) *ProtocolError {
	return &ProtocolError{Op: op, Class: ErrDecode, Err: err}
}

// writeError creates a ProtocolError in the ErrWrite class.
func writeError(op string, err error) *ProtocolError {
	return &ProtocolError{Op: op, Class: ErrWrite, Err: err}
}
