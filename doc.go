// Package audiosocket connects a call leg to an AudioSocket media service.
//
// AudioSocket is a small TCP protocol for streaming call audio: after a
// 19-byte handshake carrying a 16-byte session token, both ends exchange
// length-prefixed audio frames of signed linear 16-bit mono PCM at 8 kHz
// until one side sends a single terminate byte or closes the connection.
//
// # Getting Started
//
// Call runs one complete session: it connects to the first reachable
// address of the destination, sends the handshake, forwards audio in both
// directions until either end stops, and closes the connection:
//
//	opts := audiosocket.NewOptions()
//	opts.Destination = "media.example.com:9092"
//	opts.SessionID = interfaces.StaticID(id)
//
//	res, err := audiosocket.Call(ctx, opts, leg)
//	if err != nil {
//	    log.Printf("session failed (%s): %v", res.Reason, err)
//	}
//
// The leg is any interfaces.ICallLeg. The media package adapts raw PCM
// streams and the testing package provides a scripted leg.
//
// # Packages
//
//   - frame: wire encoding and the retrying decoder
//   - transport: destination parsing, resolution and bounded connects
//   - session: handshake and per-session frame I/O
//   - bridge: the forwarding loop and its termination reasons
//   - server: the accepting side, for media services and tests
//   - metrics: Prometheus collectors and exporter
//   - config: YAML and environment configuration
//
// # Error Handling
//
// Connection and handshake failures are returned before any audio flows and
// are never retried beyond trying each resolved address once. Once the
// bridge runs, every terminal condition ends the session; the Result's
// Reason says which one. A hangup by either side is not an error.
//
//	errors.Is(err, transport.ErrAddress)    // bad host:port
//	errors.Is(err, transport.ErrResolution) // host did not resolve
//	errors.Is(err, transport.ErrConnect)    // no address accepted
//	errors.Is(err, session.ErrHandshake)    // empty id or handshake write failed
//	errors.As(err, new(*bridge.Error))      // session ended in error
package audiosocket
