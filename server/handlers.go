package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/audiosocket/bridge"
	"github.com/opd-ai/audiosocket/frame"
	"github.com/opd-ai/audiosocket/interfaces"
	"github.com/opd-ai/audiosocket/session"
)

// Recorder opens a destination for a session's inbound audio.
type Recorder interface {
	Record(id session.ID) (io.WriteCloser, error)
}

// DirRecorder records each session to <dir>/<id>.raw.
type DirRecorder string

// Record creates the session's recording file.
func (d DirRecorder) Record(id session.ID) (io.WriteCloser, error) {
	if err := os.MkdirAll(string(d), 0o755); err != nil {
		return nil, fmt.Errorf("create recording dir: %w", err)
	}
	return os.Create(filepath.Join(string(d), id.String()+".raw"))
}

// EchoHandler sends every received audio frame straight back. With a
// Recorder set it also records the inbound audio.
type EchoHandler struct {
	Recorder Recorder
}

// ServeAudioSocket echoes until the remote ends the session.
func (e EchoHandler) ServeAudioSocket(ctx context.Context, c *Conn) error {
	var rec io.WriteCloser
	if e.Recorder != nil {
		w, err := e.Recorder.Record(c.ID())
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "EchoHandler.ServeAudioSocket",
				"id":       c.ID().String(),
				"error":    err.Error(),
			}).Error("Failed to open recording")
			return err
		}
		rec = w
		defer rec.Close()
	}

	for {
		f, err := c.ReceiveFrame()
		switch {
		case errors.Is(err, frame.ErrEmpty):
			continue
		case errors.Is(err, frame.ErrEndOfStream):
			return nil
		case err != nil:
			return err
		}

		if rec != nil {
			if _, err := rec.Write(f.Payload); err != nil {
				return fmt.Errorf("record audio: %w", err)
			}
		}
		if err := c.SendAudio(f.Payload); err != nil {
			return err
		}
	}
}

// LegFactory creates the call leg for an accepted session.
type LegFactory func(c *Conn) (interfaces.ICallLeg, error)

// BridgeHandler bridges each accepted session to a call leg.
type BridgeHandler struct {
	NewLeg   LegFactory
	Observer bridge.Observer
}

// ServeAudioSocket runs a bridge until it terminates. A normal termination
// returns nil; a failed one returns a *bridge.Error.
func (h BridgeHandler) ServeAudioSocket(ctx context.Context, c *Conn) error {
	leg, err := h.NewLeg(c)
	if err != nil {
		return fmt.Errorf("create call leg: %w", err)
	}

	res := bridge.New(c.Session, leg, bridge.WithObserver(h.Observer)).Run(ctx)
	c.result = &res
	if res.Reason == bridge.ReasonCallEnded {
		c.Hangup()
	}
	return res.AsError()
}

// PlayHandler plays audio to each session, then hangs up. Inbound frames
// are read and dropped while playing.
type PlayHandler struct {
	Open     func(id session.ID) (io.ReadCloser, error)
	Chunk    int
	Interval time.Duration
}

// ServeAudioSocket plays the opened stream.
func (h PlayHandler) ServeAudioSocket(ctx context.Context, c *Conn) error {
	r, err := h.Open(c.ID())
	if err != nil {
		return err
	}
	defer r.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		defer cancel()
		for {
			_, err := c.ReceiveFrame()
			if err != nil && !errors.Is(err, frame.ErrEmpty) {
				return
			}
		}
	}()

	sent, err := c.Play(ctx, r, h.Chunk, h.Interval)
	logrus.WithFields(logrus.Fields{
		"function": "PlayHandler.ServeAudioSocket",
		"id":       c.ID().String(),
		"sent":     sent,
	}).Debug("Playback finished")
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return c.Hangup()
}
