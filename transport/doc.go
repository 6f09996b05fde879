// Package transport establishes the TCP connection an AudioSocket session
// runs over.
//
// # Connection Establishment
//
// A destination is a "host:port" string; the port is mandatory. The host is
// resolved to every address it has (IPv4 and IPv6 mixed) and the addresses
// are tried in resolution order. Each attempt is bounded by the connector's
// timeout (2000 ms by default) and a failed attempt, whether refused, timed
// out or errored, is logged and closed before the next address is tried. The
// first address that connects wins.
//
//	conn, err := transport.Dial(ctx, "media.example.com:9092", 0)
//	if err != nil {
//	    // errors.Is(err, transport.ErrAddress)
//	    // errors.Is(err, transport.ErrResolution)
//	    // errors.Is(err, transport.ErrConnect)
//	}
//	defer conn.Close()
//
// For tests or custom name resolution, build a Connector with WithResolver
// and WithDialer.
//
// # Connection State
//
// A Conn tracks its lifecycle (Disconnected, Connecting, Connected, Closed).
// It is Connected only between a successful connect and the first Close, it
// is closed exactly once, and any Read or Write after Close fails with
// ErrClosed.
package transport
