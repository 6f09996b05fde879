package session

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/audiosocket/limits"
)

// ID is the opaque 16-byte session token sent in the handshake.
type ID [limits.SessionIDSize]byte

// IDFromBytes builds an ID from exactly 16 raw bytes.
func IDFromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != limits.SessionIDSize {
		return id, fmt.Errorf("%w: need %d bytes, got %d", ErrInvalidID, limits.SessionIDSize, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// ParseUUID converts a textual UUID into its 16-byte binary form.
func ParseUUID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return ID(u), nil
}

// IDFromString copies the first 16 bytes of s into an ID and zero-fills the
// rest when s is shorter. A textual UUID passed here loses its second half;
// use ParseUUID for those.
func IDFromString(s string) (ID, error) {
	if s == "" {
		return ID{}, fmt.Errorf("%w: empty identifier", ErrInvalidID)
	}

	if _, err := uuid.Parse(s); err == nil && len(s) > limits.SessionIDSize {
		logrus.WithFields(logrus.Fields{
			"function": "IDFromString",
			"id":       s,
			"kept":     s[:limits.SessionIDSize],
		}).Warn("Textual UUID truncated to 16 bytes for handshake")
	}

	var id ID
	copy(id[:], s)
	return id, nil
}

// NewID returns a random version 4 identifier.
func NewID() ID {
	return ID(uuid.New())
}

// IsZero reports whether every byte of the ID is zero.
func (id ID) IsZero() bool {
	return id == ID{}
}

// String formats the ID in the canonical UUID layout.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// Hex returns the ID as 32 hex digits.
func (id ID) Hex() string {
	return hex.EncodeToString(id[:])
}
