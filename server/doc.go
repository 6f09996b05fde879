// Package server implements the accepting side of AudioSocket: the media
// service a dialling call leg connects to.
//
// A Listener accepts TCP connections and reads the handshake before handing
// a connection out. The first frame must be a handshake carrying exactly 16
// bytes; anything else closes the connection with ErrBadHandshake.
//
//	l, err := server.Listen(":9092")
//	if err != nil {
//	    return err
//	}
//	defer l.Close()
//
//	err = server.Serve(ctx, l, server.EchoHandler{},
//	    server.WithMaxSessions(64))
//
// Serve runs every connection's handler in its own goroutine, bounded by a
// weighted semaphore, and closes every connection when ctx is done.
//
// Conn embeds *session.Session, so SendAudio, ReceiveFrame, Hangup and Close
// behave exactly as on the dialling side. Play streams raw slin16 audio in
// fixed-size frames at real-time pacing, the way media services usually feed
// a call.
package server
