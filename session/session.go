package session

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/audiosocket/frame"
)

// Conn is the stream a session runs over.
type Conn interface {
	io.Reader
	io.Writer
	io.Closer
}

// Stats counts the traffic carried by a session.
type Stats struct {
	FramesSent     uint64
	BytesSent      uint64
	FramesReceived uint64
	BytesReceived  uint64
}

// Session owns one connected stream and its identifier.
//
// ReceiveFrame is meant to be called from a single reader goroutine. SendAudio
// and Hangup serialise among themselves and may run concurrently with it.
// Close may be called from any goroutine and unblocks a pending ReceiveFrame.
type Session struct {
	id      ID
	conn    Conn
	decoder *frame.Decoder

	writeMu sync.Mutex

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error

	framesSent     atomic.Uint64
	bytesSent      atomic.Uint64
	framesReceived atomic.Uint64
	bytesReceived  atomic.Uint64
}

// Option configures a Session.
type Option func(*Session)

// WithDecoderOptions passes options to the session's frame decoder.
func WithDecoderOptions(opts ...frame.DecoderOption) Option {
	return func(s *Session) {
		s.decoder = frame.NewDecoder(s.conn, opts...)
	}
}

// Open sends the handshake for id over conn and returns the session. A zero
// id fails with ErrHandshake without touching conn. On a failed handshake
// write conn is left open; the caller still owns it.
func Open(conn Conn, id ID, opts ...Option) (*Session, error) {
	if conn == nil {
		return nil, fmt.Errorf("%w: nil connection", ErrHandshake)
	}
	if id.IsZero() {
		logrus.WithFields(logrus.Fields{
			"function": "Open",
		}).Error("No UUID for AudioSocket")
		return nil, fmt.Errorf("%w: empty session id", ErrHandshake)
	}

	s := &Session{
		id:   id,
		conn: conn,
	}
	s.decoder = frame.NewDecoder(conn)
	for _, opt := range opts {
		opt(s)
	}

	if err := frame.WriteHandshake(conn, id); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Open",
			"id":       id.String(),
			"error":    err.Error(),
		}).Error("Failed to write AudioSocket handshake")
		return nil, fmt.Errorf("%w: %w", ErrHandshake, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Open",
		"id":       id.String(),
	}).Debug("AudioSocket session opened")
	return s, nil
}

// Attach wraps a stream whose handshake has already been exchanged, as on
// the accepting side of a connection. Nothing is written.
func Attach(conn Conn, id ID, opts ...Option) *Session {
	s := &Session{
		id:   id,
		conn: conn,
	}
	s.decoder = frame.NewDecoder(conn)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() ID {
	return s.id
}

// SendAudio writes payload as one audio frame.
func (s *Session) SendAudio(payload []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}

	s.writeMu.Lock()
	err := frame.WriteAudio(s.conn, payload)
	s.writeMu.Unlock()
	if err != nil {
		return s.mapClosed(err)
	}

	s.framesSent.Add(1)
	s.bytesSent.Add(uint64(len(payload)))
	return nil
}

// ReceiveFrame reads the next frame. It returns an audio frame,
// frame.ErrEmpty, frame.ErrEndOfStream, or a decode error.
func (s *Session) ReceiveFrame() (frame.Frame, error) {
	if s.closed.Load() {
		return frame.Frame{}, ErrClosed
	}

	f, err := s.decoder.ReadFrame()
	if err != nil {
		return frame.Frame{}, s.mapClosed(err)
	}

	s.framesReceived.Add(1)
	s.bytesReceived.Add(uint64(f.Len()))
	return f, nil
}

// Hangup writes a terminate frame and closes the session. The session is
// closed even when the terminate write fails.
func (s *Session) Hangup() error {
	if s.closed.Load() {
		return ErrClosed
	}

	s.writeMu.Lock()
	werr := frame.WriteTerminate(s.conn)
	s.writeMu.Unlock()

	cerr := s.Close()
	if werr != nil {
		return werr
	}
	return cerr
}

// Close releases the underlying stream exactly once. Closing an already
// closed session is a no-op.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.closeErr = s.conn.Close()

		logrus.WithFields(logrus.Fields{
			"function":        "Session.Close",
			"id":              s.id.String(),
			"frames_sent":     s.framesSent.Load(),
			"frames_received": s.framesReceived.Load(),
		}).Debug("AudioSocket session closed")
	})
	return s.closeErr
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// Stats returns a snapshot of the session's traffic counters.
func (s *Session) Stats() Stats {
	return Stats{
		FramesSent:     s.framesSent.Load(),
		BytesSent:      s.bytesSent.Load(),
		FramesReceived: s.framesReceived.Load(),
		BytesReceived:  s.bytesReceived.Load(),
	}
}

// mapClosed reports errors caused by a concurrent Close as ErrClosed.
func (s *Session) mapClosed(err error) error {
	if s.closed.Load() && !errors.Is(err, frame.ErrEmpty) && !errors.Is(err, frame.ErrEndOfStream) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	return err
}
