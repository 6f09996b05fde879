package transport

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// State represents the lifecycle of a Conn.
type State int32

const (
	// StateDisconnected means no connection has been attempted.
	StateDisconnected State = iota
	// StateConnecting means a connect attempt is in progress.
	StateConnecting
	// StateConnected means the stream is open.
	StateConnected
	// StateClosed means the stream has been closed. It is terminal.
	StateClosed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Conn is a connected AudioSocket stream. A Conn exists only once its
// stream is open, so State reports StateConnected or StateClosed; the
// earlier states are reported by a Connector's state hook. Read and Write
// may be called concurrently with each other and with Close; a Close
// unblocks a pending Read.
type Conn struct {
	nc        net.Conn
	state     atomic.Int32
	closeOnce sync.Once
	closeErr  error
}

// NewConn wraps an already connected stream, such as one returned by a
// listener.
func NewConn(nc net.Conn) *Conn {
	c := &Conn{nc: nc}
	c.state.Store(int32(StateConnected))
	return c
}

// State returns the current lifecycle state.
func (c *Conn) State() State {
	return State(c.state.Load())
}

// Read reads from the stream.
func (c *Conn) Read(p []byte) (int, error) {
	if c.State() == StateClosed {
		return 0, ErrClosed
	}
	return c.nc.Read(p)
}

// Write writes to the stream.
func (c *Conn) Write(p []byte) (int, error) {
	if c.State() == StateClosed {
		return 0, ErrClosed
	}
	return c.nc.Write(p)
}

// SetReadDeadline sets the deadline for pending and future reads.
func (c *Conn) SetReadDeadline(t time.Time) error {
	if c.State() == StateClosed {
		return ErrClosed
	}
	return c.nc.SetReadDeadline(t)
}

// SetWriteDeadline sets the deadline for pending and future writes.
func (c *Conn) SetWriteDeadline(t time.Time) error {
	if c.State() == StateClosed {
		return ErrClosed
	}
	return c.nc.SetWriteDeadline(t)
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.nc.RemoteAddr()
}

// LocalAddr returns the local address.
func (c *Conn) LocalAddr() net.Addr {
	return c.nc.LocalAddr()
}

// Close closes the stream. Only the first call closes the underlying
// connection; later calls return the same result.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateClosed))
		c.closeErr = c.nc.Close()

		logrus.WithFields(logrus.Fields{
			"function": "Conn.Close",
			"remote":   c.nc.RemoteAddr().String(),
		}).Debug("AudioSocket connection closed")
	})
	return c.closeErr
}
