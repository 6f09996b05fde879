// Package session implements one AudioSocket session: a connected stream
// identified by a 16-byte token.
//
// Open sends the handshake exactly once, before any other frame. After that
// the session carries audio in both directions until either side hangs up:
//
//	sess, err := session.Open(conn, id)
//	if err != nil {
//	    return err // errors.Is(err, session.ErrHandshake)
//	}
//	defer sess.Close()
//
//	if err := sess.SendAudio(pcm); err != nil {
//	    return err // errors.Is(err, frame.ErrWrite)
//	}
//	f, err := sess.ReceiveFrame()
//
// # Session Identifiers
//
// The handshake carries 16 raw bytes. An ID is that token, nothing more.
// ParseUUID converts a textual UUID to its 16-byte binary form. IDFromString
// keeps the historical behaviour of copying the first 16 bytes of a string
// and warns when the string looks like a textual UUID, because only half of
// it reaches the wire.
package session
