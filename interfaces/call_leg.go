package interfaces

import (
	"context"
	"time"

	"github.com/opd-ai/audiosocket/media"
	"github.com/opd-ai/audiosocket/session"
)

// IMediaSource defines the call-audio input of a bridge.
type IMediaSource interface {
	// ReadMedia blocks for the next unit. Any error ends the call leg.
	ReadMedia(ctx context.Context) (media.Unit, error)
}

// IMediaSink defines the call-audio output of a bridge.
type IMediaSink interface {
	// WriteMedia delivers one unit received from the remote.
	WriteMedia(u media.Unit) error
}

// ICallLeg is the call side of a bridge.
type ICallLeg interface {
	IMediaSource
	IMediaSink
}

// ISessionIDProvider supplies the token sent in the handshake.
type ISessionIDProvider interface {
	SessionID() (session.ID, error)
}

// CallLegConfig holds the audio framing a call leg is expected to produce.
type CallLegConfig struct {
	// FrameBytes is the size of one voice unit in bytes
	FrameBytes int

	// FrameInterval is the time one voice unit covers
	FrameInterval time.Duration
}

type callLeg struct {
	IMediaSource
	IMediaSink
}

// NewCallLeg joins a separate source and sink into one call leg.
func NewCallLeg(src IMediaSource, sink IMediaSink) ICallLeg {
	return callLeg{IMediaSource: src, IMediaSink: sink}
}

// StaticID provides the same identifier every time.
type StaticID session.ID

// SessionID implements ISessionIDProvider.
func (s StaticID) SessionID() (session.ID, error) {
	return session.ID(s), nil
}

// RandomID provides a fresh random identifier on every call.
type RandomID struct{}

// SessionID implements ISessionIDProvider.
func (RandomID) SessionID() (session.ID, error) {
	return session.NewID(), nil
}
