package server

import "errors"

var (
	// ErrBadHandshake indicates the first frame of a connection was not a
	// valid handshake.
	ErrBadHandshake = errors.New("bad handshake")

	// ErrListenerClosed indicates the listener has been closed.
	ErrListenerClosed = errors.New("listener closed")
)
