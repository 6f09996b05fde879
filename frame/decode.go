package frame

import (
	"errors"
	"io"
	"net"
	"os"
	"time"

	"github.com/opd-ai/audiosocket/limits"
	"github.com/sirupsen/logrus"
)

// Decoder reads AudioSocket frames from a byte stream.
//
// A Decoder is not safe for concurrent use; one goroutine owns the read side
// of a connection.
type Decoder struct {
	r          io.Reader
	retries    int
	retryDelay time.Duration
	sleep      func(time.Duration)
	handshake  bool
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithRetry overrides the payload read retry budget and delay.
func WithRetry(retries int, delay time.Duration) DecoderOption {
	return func(d *Decoder) {
		if retries >= 0 {
			d.retries = retries
		}
		if delay >= 0 {
			d.retryDelay = delay
		}
	}
}

// WithHandshake makes the decoder return handshake frames instead of
// discarding them. Listeners use it to read the first frame of a connection.
func WithHandshake() DecoderOption {
	return func(d *Decoder) {
		d.handshake = true
	}
}

// withSleep replaces time.Sleep, for tests.
func withSleep(sleep func(time.Duration)) DecoderOption {
	return func(d *Decoder) {
		d.sleep = sleep
	}
}

// NewDecoder creates a decoder reading from r with the default retry budget of
// limits.PayloadReadRetries attempts spaced limits.PayloadRetryDelay apart.
func NewDecoder(r io.Reader, opts ...DecoderOption) *Decoder {
	d := &Decoder{
		r:          r,
		retries:    limits.PayloadReadRetries,
		retryDelay: limits.PayloadRetryDelay,
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ReadFrame reads the next frame.
//
// It returns an audio Frame, ErrEmpty, ErrEndOfStream, or an error wrapping
// ErrDecode. Handshake frames are discarded like any other non-audio frame
// unless the decoder was built WithHandshake.
func (d *Decoder) ReadFrame() (Frame, error) {
	kind, err := d.readKind()
	if err != nil {
		return Frame{}, err
	}

	if kind == KindTerminate {
		logrus.WithFields(logrus.Fields{
			"function": "Decoder.ReadFrame",
		}).Debug("AudioSocket ended by remote")
		return Frame{}, ErrEndOfStream
	}

	length, err := d.readLength()
	if err != nil {
		return Frame{}, err
	}
	if length == 0 {
		return Frame{}, ErrEmpty
	}

	payload, err := d.readPayload(length)
	if err != nil {
		return Frame{}, err
	}

	switch {
	case kind == KindAudio:
		return Frame{Kind: kind, Payload: payload}, nil
	case kind == KindHandshake && d.handshake:
		return Frame{Kind: kind, Payload: payload}, nil
	case kind == KindError:
		logrus.WithFields(logrus.Fields{
			"function":   "Decoder.ReadFrame",
			"error_code": payload[0],
			"length":     length,
		}).Warn("Received error message from AudioSocket, discarding")
	default:
		logrus.WithFields(logrus.Fields{
			"function": "Decoder.ReadFrame",
			"kind":     kind.String(),
			"length":   length,
		}).Warn("Received non-audio AudioSocket message, discarding")
	}
	return Frame{}, ErrEmpty
}

// readKind reads the single kind byte.
func (d *Decoder) readKind() (Kind, error) {
	var b [1]byte
	n, err := d.r.Read(b[:])
	if n == 1 {
		return Kind(b[0]), nil
	}

	switch {
	case err == nil:
		return 0, ErrEmpty
	case isTimeout(err):
		return 0, ErrEmpty
	case errors.Is(err, io.EOF):
		return 0, errPeerClosed
	default:
		logrus.WithFields(logrus.Fields{
			"function": "Decoder.readKind",
			"error":    err.Error(),
		}).Warn("Failed to read type header from AudioSocket")
		return 0, decodeError("read kind", err)
	}
}

// readLength reads the big-endian 16-bit payload length. Any short read here
// leaves the stream desynchronised.
func (d *Decoder) readLength() (int, error) {
	var b [2]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Decoder.readLength",
			"error":    err.Error(),
		}).Warn("Failed to read data length from AudioSocket")
		return 0, decodeError("read length", err)
	}
	return int(b[0])*256 + int(b[1]), nil
}

// readPayload accumulates exactly length bytes. A read error is retried up to
// the decoder's retry budget with a fixed delay between attempts; a read that
// ends the stream before length bytes arrive is fatal at once.
func (d *Decoder) readPayload(length int) ([]byte, error) {
	buf := make([]byte, length)
	retries := d.retries
	got := 0

	for got < length {
		n, err := d.r.Read(buf[got:])
		got += n
		if got >= length {
			break
		}

		if err != nil && !errors.Is(err, io.EOF) {
			if retries > 0 {
				logrus.WithFields(logrus.Fields{
					"function": "Decoder.readPayload",
					"read":     got,
					"length":   length,
					"retries":  retries,
					"error":    err.Error(),
				}).Warn("Failed to read data, retrying")
				retries--
				d.sleep(d.retryDelay)
				continue
			}
			logrus.WithFields(logrus.Fields{
				"function": "Decoder.readPayload",
				"read":     got,
				"length":   length,
				"error":    err.Error(),
			}).Error("Failed to read data from AudioSocket")
			return nil, decodeError("read payload", err)
		}

		if n == 0 {
			logrus.WithFields(logrus.Fields{
				"function": "Decoder.readPayload",
				"read":     got,
				"length":   length,
			}).Error("Insufficient data read from AudioSocket")
			return nil, decodeError("read payload", ErrInsufficientData)
		}
	}

	return buf, nil
}

// isTimeout reports whether err is a read deadline expiry.
func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
