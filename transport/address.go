package transport

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ParseDestination splits a "host:port" destination. The host may be a name,
// an IPv4 literal or a bracketed IPv6 literal. The port must be numeric and
// in the range 1 to 65535.
func ParseDestination(destination string) (host, port string, err error) {
	if strings.TrimSpace(destination) == "" {
		return "", "", fmt.Errorf("%w: no destination provided", ErrAddress)
	}

	host, port, err = net.SplitHostPort(destination)
	if err != nil {
		return "", "", fmt.Errorf("%w: %q requires a valid hostname and port: %v", ErrAddress, destination, err)
	}
	if host == "" {
		return "", "", fmt.Errorf("%w: no host provided in %q", ErrAddress, destination)
	}
	if port == "" {
		return "", "", fmt.Errorf("%w: no port provided for %q", ErrAddress, destination)
	}

	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return "", "", fmt.Errorf("%w: invalid port %q", ErrAddress, port)
	}

	return host, port, nil
}

// networkFor returns the stream network matching the family of ip.
func networkFor(ip net.IP) string {
	if ip.To4() != nil {
		return "tcp4"
	}
	return "tcp6"
}
