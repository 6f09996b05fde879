package bridge

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/audiosocket/frame"
	"github.com/opd-ai/audiosocket/interfaces"
	"github.com/opd-ai/audiosocket/media"
)

type callEvent struct {
	unit media.Unit
	err  error
}

type socketEvent struct {
	frame frame.Frame
	err   error
}

// Bridge forwards audio between one call leg and one session.
type Bridge struct {
	sess     Session
	leg      interfaces.ICallLeg
	observer Observer
	state    atomic.Uint32
	now      func() time.Time
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithObserver registers an observer for bridge events.
func WithObserver(o Observer) Option {
	return func(b *Bridge) {
		if o != nil {
			b.observer = o
		}
	}
}

// New creates a bridge between sess and leg.
func New(sess Session, leg interfaces.ICallLeg, opts ...Option) *Bridge {
	b := &Bridge{
		sess:     sess,
		leg:      leg,
		observer: NopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the current bridge state.
func (b *Bridge) State() State {
	return State(b.state.Load())
}

// Run forwards audio until a terminal event and reports it. Run may be
// called once.
func (b *Bridge) Run(ctx context.Context) Result {
	if !b.state.CompareAndSwap(uint32(StateIdle), uint32(StateRunning)) {
		return Result{Reason: ReasonNone, Err: ErrAlreadyRun}
	}

	id := b.sess.ID()
	start := b.now()
	b.observer.SessionStarted(id)

	logrus.WithFields(logrus.Fields{
		"function": "Bridge.Run",
		"id":       id.String(),
	}).Info("AudioSocket bridge started")

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	callCh := make(chan callEvent)
	socketCh := make(chan socketEvent)

	go b.pumpCall(runCtx, callCh, done)
	go b.pumpSocket(socketCh, done)

	res := b.loop(ctx, callCh, socketCh)

	close(done)
	cancel()

	res.Duration = b.now().Sub(start)
	b.state.Store(uint32(StateTerminated))
	b.observer.SessionEnded(id, res)

	fields := logrus.Fields{
		"function":        "Bridge.Run",
		"id":              id.String(),
		"reason":          res.Reason.String(),
		"duration":        res.Duration.String(),
		"frames_sent":     res.FramesSent,
		"frames_received": res.FramesReceived,
	}
	if res.Err != nil {
		fields["error"] = res.Err.Error()
	}
	if res.Failed() {
		logrus.WithFields(fields).Error("AudioSocket bridge terminated")
	} else {
		logrus.WithFields(fields).Info("AudioSocket bridge terminated")
	}
	return res
}

// loop is the forwarding state machine. It returns on the first terminal
// event.
func (b *Bridge) loop(ctx context.Context, callCh <-chan callEvent, socketCh <-chan socketEvent) Result {
	var res Result

	for {
		select {
		case <-ctx.Done():
			res.Reason, res.Err = ReasonCancelled, ctx.Err()
			return res

		case ev := <-callCh:
			if ev.err != nil {
				if ctx.Err() != nil {
					res.Reason, res.Err = ReasonCancelled, ctx.Err()
				} else {
					res.Reason, res.Err = ReasonCallEnded, ev.err
				}
				return res
			}
			if !ev.unit.IsVoice() {
				res.UnitsIgnored++
				continue
			}

			payload := ev.unit.Payload()
			if err := b.sess.SendAudio(payload); err != nil {
				res.Reason, res.Err = ReasonSendError, err
				return res
			}
			res.FramesSent++
			res.BytesSent += uint64(len(payload))
			b.observer.FrameSent(len(payload))

		case ev := <-socketCh:
			switch {
			case errors.Is(ev.err, frame.ErrEndOfStream):
				res.Reason, res.Err = ReasonRemoteClosed, ev.err
				return res
			case ev.err != nil:
				res.Reason, res.Err = ReasonProtocolError, ev.err
				return res
			}

			if err := b.leg.WriteMedia(media.FromFrame(ev.frame)); err != nil {
				res.Reason, res.Err = ReasonCallWriteError, err
				return res
			}
			res.FramesReceived++
			res.BytesReceived += uint64(ev.frame.Len())
			b.observer.FrameReceived(ev.frame.Len())
		}
	}
}

// pumpCall reads the call leg in order until it fails or the bridge stops.
func (b *Bridge) pumpCall(ctx context.Context, out chan<- callEvent, done <-chan struct{}) {
	for {
		u, err := b.leg.ReadMedia(ctx)
		select {
		case out <- callEvent{unit: u, err: err}:
		case <-done:
			return
		}
		if err != nil {
			return
		}
	}
}

// pumpSocket reads the session in order until a terminal outcome or the
// bridge stops. Empty reads never reach the loop.
func (b *Bridge) pumpSocket(out chan<- socketEvent, done <-chan struct{}) {
	for {
		f, err := b.sess.ReceiveFrame()
		if errors.Is(err, frame.ErrEmpty) {
			b.observer.FrameDiscarded()
			select {
			case <-done:
				return
			default:
				continue
			}
		}

		select {
		case out <- socketEvent{frame: f, err: err}:
		case <-done:
			return
		}
		if err != nil {
			return
		}
	}
}
