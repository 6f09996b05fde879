package testing

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/audiosocket/interfaces"
	"github.com/opd-ai/audiosocket/limits"
	"github.com/opd-ai/audiosocket/media"
)

// scriptCapacity bounds how many units a test may queue ahead of the reader.
const scriptCapacity = 1024

type scriptItem struct {
	unit media.Unit
	err  error
}

// SimulatedCallLeg implements a scripted call leg for testing
type SimulatedCallLeg struct {
	script   chan scriptItem
	config   *interfaces.CallLegConfig
	received []media.Unit
	writeErr error
	notify   chan struct{}
	ended    bool
	mu       sync.Mutex
}

// LegStats summarises the traffic seen by a simulated leg
type LegStats struct {
	Queued        int
	Received      int
	ReceivedBytes int
	Ended         bool
}

// NewSimulatedCallLeg creates a simulated leg. A nil config selects the
// default 320-byte, 20 ms framing.
func NewSimulatedCallLeg(config *interfaces.CallLegConfig) *SimulatedCallLeg {
	if config == nil {
		config = &interfaces.CallLegConfig{
			FrameBytes:    limits.DefaultFrameBytes,
			FrameInterval: limits.DefaultFrameInterval,
		}
	}

	logrus.Warn("SIMULATION FUNCTION - NOT A REAL OPERATION")
	logrus.WithFields(logrus.Fields{
		"function":       "NewSimulatedCallLeg",
		"frame_bytes":    config.FrameBytes,
		"frame_interval": config.FrameInterval.String(),
	}).Info("Creating simulated call leg for testing")

	return &SimulatedCallLeg{
		script: make(chan scriptItem, scriptCapacity),
		config: config,
		notify: make(chan struct{}, 1),
	}
}

// Config returns the framing the leg was created with.
func (s *SimulatedCallLeg) Config() interfaces.CallLegConfig {
	return *s.config
}

// QueueVoice schedules a voice unit for ReadMedia.
func (s *SimulatedCallLeg) QueueVoice(data []byte) {
	s.queue(scriptItem{unit: media.NewVoice(data)})
}

// QueueControl schedules a control unit for ReadMedia.
func (s *SimulatedCallLeg) QueueControl(data []byte) {
	s.queue(scriptItem{unit: media.NewControl(data)})
}

// QueueSilence schedules n frames of silence at the configured frame size.
func (s *SimulatedCallLeg) QueueSilence(n int) {
	for i := 0; i < n; i++ {
		s.QueueVoice(media.Silence(s.config.FrameBytes))
	}
}

// Hangup ends the script: ReadMedia returns io.EOF after the queued units.
func (s *SimulatedCallLeg) Hangup() {
	s.EndWith(io.EOF)
}

// EndWith ends the script with err.
func (s *SimulatedCallLeg) EndWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	s.script <- scriptItem{err: err}
}

func (s *SimulatedCallLeg) queue(item scriptItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		logrus.WithFields(logrus.Fields{
			"function": "SimulatedCallLeg.queue",
		}).Warn("Unit queued after hangup, ignoring")
		return
	}
	s.script <- item
}

// ReadMedia implements interfaces.IMediaSource. It blocks until a scripted
// unit is available or ctx is done. Once the script has ended every call
// returns the ending error.
func (s *SimulatedCallLeg) ReadMedia(ctx context.Context) (media.Unit, error) {
	select {
	case item := <-s.script:
		if item.err != nil {
			// Leave the ending in place for later reads.
			s.script <- item
			return media.Unit{}, item.err
		}
		return item.unit, nil
	case <-ctx.Done():
		return media.Unit{}, ctx.Err()
	}
}

// FailWrites makes every later WriteMedia return err. Pass nil to recover.
func (s *SimulatedCallLeg) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// WriteMedia implements interfaces.IMediaSink by recording u.
func (s *SimulatedCallLeg) WriteMedia(u media.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeErr != nil {
		logrus.WithFields(logrus.Fields{
			"function": "SimulatedCallLeg.WriteMedia",
			"size":     len(u.Data),
			"error":    s.writeErr.Error(),
		}).Debug("Simulating call write failure")
		return s.writeErr
	}

	data := make([]byte, len(u.Data))
	copy(data, u.Data)
	u.Data = data
	s.received = append(s.received, u)

	select {
	case s.notify <- struct{}{}:
	default:
	}
	return nil
}

// Received returns a copy of every unit written to the leg.
func (s *SimulatedCallLeg) Received() []media.Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]media.Unit, len(s.received))
	copy(out, s.received)
	return out
}

// WaitForUnits blocks until at least n units were received or timeout
// elapses, and reports whether the count was reached.
func (s *SimulatedCallLeg) WaitForUnits(n int, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		s.mu.Lock()
		got := len(s.received)
		s.mu.Unlock()
		if got >= n {
			return true
		}

		select {
		case <-s.notify:
		case <-deadline.C:
			return false
		}
	}
}

// GetStats returns a snapshot of the leg's traffic.
func (s *SimulatedCallLeg) GetStats() LegStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := LegStats{
		Queued:   len(s.script),
		Received: len(s.received),
		Ended:    s.ended,
	}
	for _, u := range s.received {
		stats.ReceivedBytes += len(u.Data)
	}
	return stats
}
