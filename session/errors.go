package session

import "errors"

var (
	// ErrHandshake indicates the session could not be opened.
	ErrHandshake = errors.New("handshake failed")

	// ErrClosed indicates an operation on a closed session.
	ErrClosed = errors.New("session closed")

	// ErrInvalidID indicates a malformed session identifier.
	ErrInvalidID = errors.New("invalid session id")
)
