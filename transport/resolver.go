package transport

import (
	"context"
	"fmt"
	"net"

	"github.com/sirupsen/logrus"
)

// Resolver looks up the addresses of a host. *net.Resolver satisfies it.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// StaticResolver resolves every host to a fixed address list. It is useful
// for tests and for pinning a destination to known addresses.
type StaticResolver []net.IPAddr

// LookupIPAddr returns the fixed address list.
func (s StaticResolver) LookupIPAddr(_ context.Context, _ string) ([]net.IPAddr, error) {
	out := make([]net.IPAddr, len(s))
	copy(out, s)
	return out, nil
}

// resolve looks up host and fails with ErrResolution when nothing comes back.
func resolve(ctx context.Context, r Resolver, host string) ([]net.IPAddr, error) {
	addrs, err := r.LookupIPAddr(ctx, host)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "resolve",
			"host":     host,
			"error":    err.Error(),
		}).Error("Failed to resolve AudioSocket service")
		return nil, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	if len(addrs) == 0 {
		logrus.WithFields(logrus.Fields{
			"function": "resolve",
			"host":     host,
		}).Error("AudioSocket service resolved to no addresses")
		return nil, fmt.Errorf("%w: no addresses for %q", ErrResolution, host)
	}

	logrus.WithFields(logrus.Fields{
		"function":   "resolve",
		"host":       host,
		"addr_count": len(addrs),
	}).Debug("Resolved AudioSocket service")
	return addrs, nil
}
