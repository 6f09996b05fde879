package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/audiosocket/frame"
	"github.com/opd-ai/audiosocket/limits"
	"github.com/opd-ai/audiosocket/session"
	"github.com/opd-ai/audiosocket/transport"
)

// DefaultHandshakeTimeout bounds how long a new connection may take to send
// its handshake.
const DefaultHandshakeTimeout = 5 * time.Second

// deadliner is implemented by *net.TCPListener.
type deadliner interface {
	SetDeadline(t time.Time) error
}

// Listener accepts AudioSocket connections.
type Listener struct {
	ln               net.Listener
	handshakeTimeout time.Duration

	closed bool
	mu     sync.RWMutex
}

// ListenerOption configures a Listener.
type ListenerOption func(*Listener)

// WithHandshakeTimeout bounds the handshake read. Non-positive values
// select DefaultHandshakeTimeout.
func WithHandshakeTimeout(d time.Duration) ListenerOption {
	return func(l *Listener) {
		if d > 0 {
			l.handshakeTimeout = d
		}
	}
}

// Listen listens for AudioSocket connections on a TCP address.
func Listen(addr string, opts ...ListenerOption) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Listen",
			"addr":     addr,
			"error":    err.Error(),
		}).Error("Failed to listen for AudioSocket connections")
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Listen",
		"addr":     ln.Addr().String(),
	}).Info("Listening for AudioSocket connections")
	return NewListener(ln, opts...), nil
}

// NewListener wraps an existing stream listener.
func NewListener(ln net.Listener, opts ...ListenerOption) *Listener {
	l := &Listener{
		ln:               ln,
		handshakeTimeout: DefaultHandshakeTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Addr returns the listening address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Accept waits for a connection and reads its handshake. A connection whose
// handshake is missing or malformed is closed and reported with
// ErrBadHandshake; the listener stays usable.
//
// Accept blocks for up to the handshake timeout on a silent peer. Serve
// reads handshakes on per-connection goroutines instead.
func (l *Listener) Accept(ctx context.Context) (*Conn, error) {
	nc, err := l.accept(ctx)
	if err != nil {
		return nil, err
	}
	return l.handshake(nc)
}

// accept waits for a raw stream without reading from it.
func (l *Listener) accept(ctx context.Context) (net.Conn, error) {
	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		return nil, ErrListenerClosed
	}
	l.mu.RUnlock()

	return l.acceptRaw(ctx)
}

// handshake reads the handshake from nc and wraps it as a session
// connection. nc is closed on failure.
func (l *Listener) handshake(nc net.Conn) (*Conn, error) {
	id, err := l.readHandshake(nc)
	if err != nil {
		nc.Close()
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "Listener.handshake",
		"remote":   nc.RemoteAddr().String(),
		"id":       id.String(),
	}).Info("AudioSocket session accepted")

	return newConn(transport.NewConn(nc), id), nil
}

// acceptRaw accepts one stream, giving up when ctx is done.
func (l *Listener) acceptRaw(ctx context.Context) (net.Conn, error) {
	if d, ok := l.ln.(deadliner); ok {
		fired := make(chan struct{})
		stop := context.AfterFunc(ctx, func() {
			d.SetDeadline(time.Unix(1, 0))
			close(fired)
		})
		defer func() {
			if !stop() {
				<-fired
				d.SetDeadline(time.Time{})
			}
		}()
	}

	nc, err := l.ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, net.ErrClosed) {
			return nil, ErrListenerClosed
		}
		return nil, fmt.Errorf("accept: %w", err)
	}
	return nc, nil
}

// readHandshake reads the first frame and checks it is a 16-byte handshake.
func (l *Listener) readHandshake(nc net.Conn) (session.ID, error) {
	nc.SetReadDeadline(time.Now().Add(l.handshakeTimeout))
	defer nc.SetReadDeadline(time.Time{})

	dec := frame.NewDecoder(nc, frame.WithHandshake())
	f, err := dec.ReadFrame()
	if err == nil && f.Kind != frame.KindHandshake {
		err = fmt.Errorf("first frame is %s", f.Kind)
	}
	if err == nil && len(f.Payload) != limits.SessionIDSize {
		err = fmt.Errorf("handshake carries %d bytes", len(f.Payload))
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Listener.readHandshake",
			"remote":   nc.RemoteAddr().String(),
			"error":    err.Error(),
		}).Warn("Rejecting AudioSocket connection")
		return session.ID{}, fmt.Errorf("%w: %w", ErrBadHandshake, err)
	}

	return session.IDFromBytes(f.Payload)
}

// Close stops accepting connections. Connections already accepted stay open.
func (l *Listener) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	return l.ln.Close()
}
