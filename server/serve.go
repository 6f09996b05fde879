package server

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/opd-ai/audiosocket/bridge"
	"github.com/opd-ai/audiosocket/frame"
)

// DefaultMaxSessions caps concurrent sessions when no limit is given.
const DefaultMaxSessions = 64

// Handler serves one accepted session. The connection is closed when the
// handler returns.
type Handler interface {
	ServeAudioSocket(ctx context.Context, c *Conn) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, c *Conn) error

// ServeAudioSocket calls f(ctx, c).
func (f HandlerFunc) ServeAudioSocket(ctx context.Context, c *Conn) error {
	return f(ctx, c)
}

type serveConfig struct {
	maxSessions int64
	observer    bridge.Observer
}

// ServeOption configures Serve.
type ServeOption func(*serveConfig)

// WithMaxSessions caps concurrent sessions. Non-positive values select
// DefaultMaxSessions.
func WithMaxSessions(n int) ServeOption {
	return func(c *serveConfig) {
		if n > 0 {
			c.maxSessions = int64(n)
		}
	}
}

// WithObserver reports session starts and ends.
func WithObserver(o bridge.Observer) ServeOption {
	return func(c *serveConfig) {
		if o != nil {
			c.observer = o
		}
	}
}

// Serve accepts sessions from l and runs h for each one until ctx is done
// or l is closed. No more than the session cap run at once; further
// connections wait in the listen backlog. Each handshake is read on the
// session's own goroutine, so a silent peer holds only its own slot. When
// ctx is done every open session is closed and Serve returns after their
// handlers finish.
func Serve(ctx context.Context, l *Listener, h Handler, opts ...ServeOption) error {
	cfg := serveConfig{
		maxSessions: DefaultMaxSessions,
		observer:    bridge.NopObserver{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	sem := semaphore.NewWeighted(cfg.maxSessions)
	defer sem.Acquire(context.Background(), cfg.maxSessions)

	for {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil
		}

		nc, err := l.accept(ctx)
		if err != nil {
			sem.Release(1)
			switch {
			case ctx.Err() != nil:
				return nil
			case errors.Is(err, ErrListenerClosed):
				return nil
			default:
				logrus.WithFields(logrus.Fields{
					"function": "Serve",
					"error":    err.Error(),
				}).Error("Failed to accept AudioSocket connection")
				return err
			}
		}

		go func() {
			defer sem.Release(1)

			stop := context.AfterFunc(ctx, func() { nc.Close() })
			c, err := l.handshake(nc)
			stop()
			if err != nil {
				return
			}
			serveConn(ctx, c, h, cfg.observer)
		}()
	}
}

// serveConn runs one handler and reports the outcome.
func serveConn(ctx context.Context, c *Conn, h Handler, obs bridge.Observer) {
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()
	defer c.Close()

	id := c.ID()
	start := time.Now()
	obs.SessionStarted(id)

	err := h.ServeAudioSocket(ctx, c)

	stats := c.Stats()
	res := bridge.Result{
		Reason:         handlerReason(ctx, err),
		Err:            err,
		FramesSent:     stats.FramesSent,
		BytesSent:      stats.BytesSent,
		FramesReceived: stats.FramesReceived,
		BytesReceived:  stats.BytesReceived,
	}
	if c.result != nil {
		res.Reason, res.Err = c.result.Reason, c.result.Err
		res.UnitsIgnored = c.result.UnitsIgnored
	}
	res.Duration = time.Since(start)
	obs.SessionEnded(id, res)

	fields := logrus.Fields{
		"function": "serveConn",
		"id":       id.String(),
		"reason":   res.Reason.String(),
		"duration": res.Duration.String(),
	}
	if res.Err != nil {
		fields["error"] = res.Err.Error()
	}
	if err != nil {
		logrus.WithFields(fields).Warn("AudioSocket handler failed")
		return
	}
	logrus.WithFields(fields).Info("AudioSocket session finished")
}

// handlerReason classifies a handler's return value.
func handlerReason(ctx context.Context, err error) bridge.Reason {
	var berr *bridge.Error
	switch {
	case errors.As(err, &berr):
		return berr.Result.Reason
	case ctx.Err() != nil:
		return bridge.ReasonCancelled
	case err == nil:
		return bridge.ReasonRemoteClosed
	case errors.Is(err, frame.ErrWrite):
		return bridge.ReasonSendError
	default:
		return bridge.ReasonProtocolError
	}
}
