package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/opd-ai/audiosocket/limits"
)

// ReaderSource produces voice units from a raw slin16 byte stream.
type ReaderSource struct {
	r          io.Reader
	frameBytes int
	limiter    *rate.Limiter
	done       bool
}

// SourceOption configures a ReaderSource.
type SourceOption func(*ReaderSource)

// WithFrameBytes sets the unit size. It must be positive and even.
func WithFrameBytes(n int) SourceOption {
	return func(s *ReaderSource) {
		s.frameBytes = n
	}
}

// WithInterval sets the pacing between units. Zero disables pacing.
func WithInterval(d time.Duration) SourceOption {
	return func(s *ReaderSource) {
		if d <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// NewReaderSource creates a source reading limits.DefaultFrameBytes per unit
// at one unit every limits.DefaultFrameInterval unless overridden.
func NewReaderSource(r io.Reader, opts ...SourceOption) (*ReaderSource, error) {
	s := &ReaderSource{
		r:          r,
		frameBytes: limits.DefaultFrameBytes,
		limiter:    rate.NewLimiter(rate.Every(limits.DefaultFrameInterval), 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := limits.ValidateFrameBytes(s.frameBytes); err != nil {
		return nil, err
	}
	return s, nil
}

// ReadMedia waits for the next pacing slot and returns one voice unit. The
// final unit may be shorter than the frame size. io.EOF marks the end of the
// stream; a cancelled ctx returns its error.
func (s *ReaderSource) ReadMedia(ctx context.Context) (Unit, error) {
	if s.done {
		return Unit{}, io.EOF
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return Unit{}, err
	}

	buf := make([]byte, s.frameBytes)
	n, err := io.ReadFull(s.r, buf)
	switch {
	case err == nil:
		return NewVoice(buf), nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.done = true
		if n&^1 == 0 {
			return Unit{}, io.EOF
		}
		return NewVoice(buf[:n&^1]), nil
	case errors.Is(err, io.EOF):
		s.done = true
		return Unit{}, io.EOF
	default:
		logrus.WithFields(logrus.Fields{
			"function": "ReaderSource.ReadMedia",
			"error":    err.Error(),
		}).Error("Failed to read call audio")
		return Unit{}, fmt.Errorf("read call audio: %w", err)
	}
}
