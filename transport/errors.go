package transport

import (
	"errors"
	"fmt"
)

// Connection establishment errors.
var (
	// ErrAddress indicates the destination is not a valid host:port string.
	ErrAddress = errors.New("invalid destination address")

	// ErrResolution indicates the host did not resolve to any address.
	ErrResolution = errors.New("address resolution failed")

	// ErrConnect indicates no resolved address accepted a connection within
	// the timeout.
	ErrConnect = errors.New("connect failed")
)

// Connection lifecycle errors.
var (
	// ErrClosed indicates the connection has been closed.
	ErrClosed = errors.New("connection closed")
)

// DialError represents a connection establishment failure with context.
type DialError struct {
	Op   string // operation that failed: "parse", "resolve" or "connect"
	Addr string // destination as given by the caller
	Err  error  // underlying error
}

func (e *DialError) Error() string {
	if e.Addr != "" {
		return fmt.Sprintf("audiosocket %s %s: %v", e.Op, e.Addr, e.Err)
	}
	return fmt.Sprintf("audiosocket %s: %v", e.Op, e.Err)
}

func (e *DialError) Unwrap() error {
	return e.Err
}

// newDialError creates a new DialError
func newDialError(op, addr string, err error) *DialError {
	return &DialError{
		Op:   op,
		Addr: addr,
		Err:  err,
	}
}
