package media

import (
	"fmt"
	"io"
)

// WriterSink writes the data of every voice unit to an io.Writer. Control
// units are dropped.
type WriterSink struct {
	w       io.Writer
	written int64
}

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// WriteMedia writes u's samples.
func (s *WriterSink) WriteMedia(u Unit) error {
	if !u.IsVoice() {
		return nil
	}
	n, err := s.w.Write(u.Data)
	s.written += int64(n)
	if err != nil {
		return fmt.Errorf("write call audio: %w", err)
	}
	return nil
}

// Written returns the number of bytes written so far.
func (s *WriterSink) Written() int64 {
	return s.written
}
