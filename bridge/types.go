package bridge

import (
	"errors"
	"fmt"
	"time"

	"github.com/opd-ai/audiosocket/frame"
	"github.com/opd-ai/audiosocket/session"
)

// ErrAlreadyRun is returned when Run is called more than once.
var ErrAlreadyRun = errors.New("bridge already run")

// Session is the socket side of a bridge. *session.Session satisfies it.
type Session interface {
	ID() session.ID
	SendAudio(payload []byte) error
	ReceiveFrame() (frame.Frame, error)
}

// State represents the lifecycle of a bridge.
type State uint32

const (
	// StateIdle indicates Run has not been called
	StateIdle State = iota
	// StateRunning indicates the forwarding loop is active
	StateRunning
	// StateTerminated indicates the loop has stopped
	StateTerminated
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Reason explains why a bridge terminated.
type Reason uint32

const (
	// ReasonNone indicates the bridge did not run
	ReasonNone Reason = iota
	// ReasonCallEnded indicates the call leg stopped producing audio
	ReasonCallEnded
	// ReasonSendError indicates an audio frame could not be written
	ReasonSendError
	// ReasonRemoteClosed indicates the remote sent a terminate frame or
	// closed the connection
	ReasonRemoteClosed
	// ReasonProtocolError indicates the incoming stream could not be decoded
	ReasonProtocolError
	// ReasonCallWriteError indicates the call leg rejected received audio
	ReasonCallWriteError
	// ReasonCancelled indicates the caller's context was done
	ReasonCancelled
)

// String returns a human-readable representation of the reason.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonCallEnded:
		return "call_ended"
	case ReasonSendError:
		return "send_error"
	case ReasonRemoteClosed:
		return "remote_closed"
	case ReasonProtocolError:
		return "protocol_error"
	case ReasonCallWriteError:
		return "call_write_error"
	case ReasonCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Failed reports whether the reason is an error rather than a normal hangup
// or cancellation.
func (r Reason) Failed() bool {
	switch r {
	case ReasonSendError, ReasonProtocolError, ReasonCallWriteError:
		return true
	default:
		return false
	}
}

// Result is the outcome of one bridge run.
type Result struct {
	Reason   Reason
	Err      error // terminal cause, if any
	Duration time.Duration

	FramesSent     uint64
	BytesSent      uint64
	FramesReceived uint64
	BytesReceived  uint64
	UnitsIgnored   uint64 // call-side control units not forwarded
}

// Failed reports whether the session ended in error.
func (r Result) Failed() bool {
	return r.Reason.Failed() || r.Reason == ReasonNone
}

// AsError returns nil for a normal termination and an *Error otherwise.
func (r Result) AsError() error {
	if !r.Failed() {
		return nil
	}
	return &Error{Result: r}
}

// Error reports a failed bridge run.
type Error struct {
	Result Result
}

func (e *Error) Error() string {
	if e.Result.Err != nil {
		return fmt.Sprintf("audiosocket bridge %s: %v", e.Result.Reason, e.Result.Err)
	}
	return fmt.Sprintf("audiosocket bridge %s", e.Result.Reason)
}

func (e *Error) Unwrap() error {
	return e.Result.Err
}

// Observer receives bridge events. Implementations must be safe for
// concurrent use when shared across bridges.
type Observer interface {
	SessionStarted(id session.ID)
	FrameSent(bytes int)
	FrameReceived(bytes int)
	FrameDiscarded()
	SessionEnded(id session.ID, res Result)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) SessionStarted(session.ID) {}
func (NopObserver) FrameSent(int) {}
func (NopObserver) FrameReceived(int) {}
func (NopObserver) FrameDiscarded() {}
func (NopObserver) SessionEnded(session.ID, Result) {}
