package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/audiosocket/limits"
)

// ContextDialer opens a stream connection. *net.Dialer satisfies it.
type ContextDialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// AttemptFunc is called after every per-address connect attempt with the
// address tried and the attempt's error (nil on success).
type AttemptFunc func(addr string, err error)

// StateFunc is called as a Connector moves through the states that precede
// a Conn: StateConnecting before each attempt, StateDisconnected after a
// failed one and StateConnected once an address accepts.
type StateFunc func(addr string, s State)

// Connector resolves a destination and connects to the first address that
// accepts within the per-address timeout.
type Connector struct {
	resolver  Resolver
	dialer    ContextDialer
	timeout   time.Duration
	onAttempt AttemptFunc
	onState   StateFunc
}

// ConnectorOption configures a Connector.
type ConnectorOption func(*Connector)

// WithResolver replaces the system resolver.
func WithResolver(r Resolver) ConnectorOption {
	return func(c *Connector) {
		c.resolver = r
	}
}

// WithDialer replaces the stream dialer.
func WithDialer(d ContextDialer) ConnectorOption {
	return func(c *Connector) {
		c.dialer = d
	}
}

// WithTimeout sets the per-address connect timeout. Non-positive values
// select limits.DefaultConnectTimeout.
func WithTimeout(d time.Duration) ConnectorOption {
	return func(c *Connector) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithAttemptHook registers a callback invoked after each connect attempt.
func WithAttemptHook(fn AttemptFunc) ConnectorOption {
	return func(c *Connector) {
		c.onAttempt = fn
	}
}

// WithStateHook registers a callback for connect progress.
func WithStateHook(fn StateFunc) ConnectorOption {
	return func(c *Connector) {
		c.onState = fn
	}
}

// NewConnector creates a Connector using the system resolver and a plain
// net.Dialer unless overridden.
func NewConnector(opts ...ConnectorOption) *Connector {
	c := &Connector{
		resolver: net.DefaultResolver,
		dialer:   &net.Dialer{},
		timeout:  limits.DefaultConnectTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timeout returns the per-address connect timeout.
func (c *Connector) Timeout() time.Duration {
	return c.timeout
}

// Dial resolves destination and connects. Addresses are tried in resolution
// order and every failed attempt is discarded before the next one. When no
// address connects the error wraps ErrConnect and the last attempt's error.
func (c *Connector) Dial(ctx context.Context, destination string) (*Conn, error) {
	host, port, err := ParseDestination(destination)
	if err != nil {
		return nil, newDialError("parse", destination, err)
	}

	addrs, err := resolve(ctx, c.resolver, host)
	if err != nil {
		return nil, newDialError("resolve", destination, err)
	}

	var lastErr error
	for _, ip := range addrs {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		addr := net.JoinHostPort(ip.String(), port)
		c.setState(addr, StateConnecting)
		nc, err := c.attempt(ctx, networkFor(ip.IP), addr)
		if c.onAttempt != nil {
			c.onAttempt(addr, err)
		}
		if err != nil {
			c.setState(addr, StateDisconnected)
			logrus.WithFields(logrus.Fields{
				"function":    "Connector.Dial",
				"destination": destination,
				"address":     addr,
				"timeout":     c.timeout.String(),
				"error":       err.Error(),
			}).Warn("Connection to AudioSocket server failed")
			lastErr = err
			continue
		}

		logrus.WithFields(logrus.Fields{
			"function":    "Connector.Dial",
			"destination": destination,
			"address":     addr,
		}).Debug("Connected to AudioSocket server")
		c.setState(addr, StateConnected)
		return NewConn(nc), nil
	}

	if lastErr == nil {
		lastErr = errors.New("no usable address")
	}
	return nil, newDialError("connect", destination, fmt.Errorf("%w: %w", ErrConnect, lastErr))
}

func (c *Connector) setState(addr string, s State) {
	if c.onState != nil {
		c.onState(addr, s)
	}
}

// attempt performs a single connect bounded by the per-address timeout.
func (c *Connector) attempt(ctx context.Context, network, addr string) (net.Conn, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	nc, err := c.dialer.DialContext(attemptCtx, network, addr)
	if err != nil {
		if nc != nil {
			nc.Close()
		}
		return nil, err
	}
	return nc, nil
}

// Dial connects to destination with the system resolver. A non-positive
// timeout selects limits.DefaultConnectTimeout.
func Dial(ctx context.Context, destination string, timeout time.Duration) (*Conn, error) {
	return NewConnector(WithTimeout(timeout)).Dial(ctx, destination)
}
