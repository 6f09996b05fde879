// Package frame implements the AudioSocket wire format.
//
// Every message on an AudioSocket connection is one frame: a kind byte, a
// big-endian 16-bit payload length and the payload. The terminate frame is a
// lone kind byte.
//
//	+------+----------+----------+-------------------+
//	| kind | len high | len low  | payload (len)     |
//	+------+----------+----------+-------------------+
//
// Kinds:
//
//   - KindTerminate (0x00): the remote end is closing the logical session.
//   - KindHandshake (0x01): 16-byte session identifier, sent once per session.
//   - KindAudio (0x10): signed linear 16-bit mono PCM at 8 kHz.
//   - anything else (commonly KindError, 0xff): read in full and discarded so
//     the stream stays aligned.
//
// # Encoding
//
// Encoders build a complete frame in one buffer and the Write helpers hand it
// to the writer in a single call. A short write is reported as ErrWrite; there
// is no partial-write resumption.
//
//	if err := frame.WriteAudio(conn, pcm); err != nil {
//	    // errors.Is(err, frame.ErrWrite)
//	}
//
// # Decoding
//
// A Decoder reads one frame per ReadFrame call and reports three kinds of
// outcome:
//
//   - an audio Frame and a nil error,
//   - ErrEmpty when nothing is to be delivered this time (no data yet, a
//     zero-length frame, or a discarded non-audio frame),
//   - ErrEndOfStream when the remote sent a terminate frame or closed the
//     connection.
//
// Any other error wraps ErrDecode and means framing is lost; the connection
// must not be used again.
package frame
