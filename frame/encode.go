package frame

import (
	"fmt"
	"io"

	"github.com/opd-ai/audiosocket/limits"
	"github.com/sirupsen/logrus"
)

// EncodeHandshake builds the 19-byte handshake frame for a session identifier:
// 0x01, 0x00, 0x10 followed by the 16 raw identifier bytes.
func EncodeHandshake(id [limits.SessionIDSize]byte) []byte {
	buf := make([]byte, limits.HandshakeSize)
	buf[0] = byte(KindHandshake)
	buf[1] = byte(limits.SessionIDSize >> 8)
	buf[2] = byte(limits.SessionIDSize & 0xff)
	copy(buf[limits.HeaderSize:], id[:])
	return buf
}

// EncodeAudio builds an audio frame around payload.
func EncodeAudio(payload []byte) ([]byte, error) {
	return Encode(Frame{Kind: KindAudio, Payload: payload})
}

// EncodeTerminate builds the terminate frame, a single 0x00 byte.
func EncodeTerminate() []byte {
	return []byte{byte(KindTerminate)}
}

// Encode builds the wire form of any frame. Terminate frames never carry a
// length or payload; a payload given with one is ignored.
func Encode(f Frame) ([]byte, error) {
	if f.Kind == KindTerminate {
		return EncodeTerminate(), nil
	}
	if err := limits.ValidatePayload(f.Payload); err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", f.Kind, err)
	}

	n := len(f.Payload)
	buf := make([]byte, limits.HeaderSize+n)
	buf[0] = byte(f.Kind)
	buf[1] = byte(n >> 8)
	buf[2] = byte(n & 0xff)
	copy(buf[limits.HeaderSize:], f.Payload)
	return buf, nil
}

// WriteFrame encodes f and writes it to w in a single call.
func WriteFrame(w io.Writer, f Frame) error {
	buf, err := Encode(f)
	if err != nil {
		return writeError("encode "+f.Kind.String(), err)
	}
	return writeBuffer(w, f.Kind, buf)
}

// WriteHandshake writes the handshake frame for id.
func WriteHandshake(w io.Writer, id [limits.SessionIDSize]byte) error {
	return writeBuffer(w, KindHandshake, EncodeHandshake(id))
}

// WriteAudio writes payload as one audio frame.
func WriteAudio(w io.Writer, payload []byte) error {
	return WriteFrame(w, Frame{Kind: KindAudio, Payload: payload})
}

// WriteTerminate writes the terminate frame.
func WriteTerminate(w io.Writer) error {
	return writeBuffer(w, KindTerminate, EncodeTerminate())
}

// writeBuffer performs the single write. Anything short of the full buffer is
// a failure; the remainder is not resent.
func writeBuffer(w io.Writer, kind Kind, buf []byte) error {
	n, err := w.Write(buf)
	if err == nil && n != len(buf) {
		err = io.ErrShortWrite
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "writeBuffer",
			"kind":     kind.String(),
			"written":  n,
			"size":     len(buf),
			"error":    err.Error(),
		}).Warn("Failed to write frame to AudioSocket")
		return writeError("write "+kind.String(), err)
	}
	return nil
}
