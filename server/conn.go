package server

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/opd-ai/audiosocket/bridge"
	"github.com/opd-ai/audiosocket/media"
	"github.com/opd-ai/audiosocket/session"
	"github.com/opd-ai/audiosocket/transport"
)

// Conn is an accepted AudioSocket session.
type Conn struct {
	*session.Session
	tc     *transport.Conn
	result *bridge.Result
}

func newConn(tc *transport.Conn, id session.ID) *Conn {
	return &Conn{
		Session: session.Attach(tc, id),
		tc:      tc,
	}
}

// RemoteAddr returns the dialling peer's address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.tc.RemoteAddr()
}

// Play streams raw slin16 audio from r as audio frames of chunk bytes, one
// every interval, until r is exhausted or ctx is done. It returns the number
// of payload bytes sent. Zero values select 320 bytes every 20 ms.
func (c *Conn) Play(ctx context.Context, r io.Reader, chunk int, interval time.Duration) (int64, error) {
	opts := []media.SourceOption{}
	if chunk > 0 {
		opts = append(opts, media.WithFrameBytes(chunk))
	}
	if interval > 0 {
		opts = append(opts, media.WithInterval(interval))
	}

	src, err := media.NewReaderSource(r, opts...)
	if err != nil {
		return 0, err
	}

	var sent int64
	for {
		u, err := src.ReadMedia(ctx)
		if errors.Is(err, io.EOF) {
			return sent, nil
		}
		if err != nil {
			return sent, err
		}
		if err := c.SendAudio(u.Payload()); err != nil {
			return sent, err
		}
		sent += int64(len(u.Data))
	}
}
