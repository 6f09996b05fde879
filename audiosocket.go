package audiosocket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/audiosocket/bridge"
	"github.com/opd-ai/audiosocket/interfaces"
	"github.com/opd-ai/audiosocket/limits"
	"github.com/opd-ai/audiosocket/session"
	"github.com/opd-ai/audiosocket/transport"
)

// ErrNoDestination indicates Options.Destination is empty.
var ErrNoDestination = errors.New("no destination")

// Options contains session configuration.
type Options struct {
	Destination    string
	ConnectTimeout time.Duration
	SessionID      interfaces.ISessionIDProvider
	Observer       bridge.Observer
	Resolver       transport.Resolver

	// HangupOnCallEnd sends a terminate frame when the call leg ends first.
	HangupOnCallEnd bool
}

// NewOptions creates default options: a random session id, the default
// connect timeout and a terminate frame when the call side hangs up.
func NewOptions() *Options {
	return &Options{
		ConnectTimeout:  limits.DefaultConnectTimeout,
		SessionID:       interfaces.RandomID{},
		HangupOnCallEnd: true,
	}
}

// attemptObserver is implemented by observers that count connect attempts,
// such as metrics.Collector.
type attemptObserver interface {
	ConnectAttempt(addr string, err error)
}

// Dial connects to opts.Destination and opens a session. The caller owns
// the returned session and must close it.
func Dial(ctx context.Context, opts *Options) (*session.Session, error) {
	if opts == nil {
		opts = NewOptions()
	}
	if opts.Destination == "" {
		return nil, fmt.Errorf("%w: %w", transport.ErrAddress, ErrNoDestination)
	}

	var id session.ID
	if opts.SessionID != nil {
		var err error
		if id, err = opts.SessionID.SessionID(); err != nil {
			return nil, fmt.Errorf("%w: %w", session.ErrHandshake, err)
		}
	}
	if id.IsZero() {
		return nil, fmt.Errorf("%w: no session id", session.ErrHandshake)
	}

	copts := []transport.ConnectorOption{transport.WithTimeout(opts.ConnectTimeout)}
	if opts.Resolver != nil {
		copts = append(copts, transport.WithResolver(opts.Resolver))
	}
	if ao, ok := opts.Observer.(attemptObserver); ok {
		copts = append(copts, transport.WithAttemptHook(ao.ConnectAttempt))
	}

	conn, err := transport.NewConnector(copts...).Dial(ctx, opts.Destination)
	if err != nil {
		return nil, err
	}

	sess, err := session.Open(conn, id)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return sess, nil
}

// Call runs one session between leg and opts.Destination and closes it. The
// error is nil when the session ended by a hangup on either side or by ctx;
// otherwise it reports the connect, handshake or bridge failure. The Result
// is valid in both cases.
func Call(ctx context.Context, opts *Options, leg interfaces.ICallLeg) (bridge.Result, error) {
	if opts == nil {
		opts = NewOptions()
	}

	sess, err := Dial(ctx, opts)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "Call",
			"destination": opts.Destination,
			"error":       err.Error(),
		}).Error("Failed to establish AudioSocket session")
		return bridge.Result{Reason: bridge.ReasonNone, Err: err}, err
	}

	res := bridge.New(sess, leg, bridge.WithObserver(opts.Observer)).Run(ctx)

	if res.Reason == bridge.ReasonCallEnded && opts.HangupOnCallEnd {
		if herr := sess.Hangup(); herr != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Call",
				"id":       sess.ID().String(),
				"error":    herr.Error(),
			}).Warn("Failed to send AudioSocket terminate")
		}
	}
	sess.Close()

	return res, res.AsError()
}
