package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/opd-ai/audiosocket/bridge"
	"github.com/opd-ai/audiosocket/session"
)

const namespace = "audiosocket"

// Collector records AudioSocket events as Prometheus series.
type Collector struct {
	connectAttempts *prometheus.CounterVec
	sessionsActive  prometheus.Gauge
	framesTotal     *prometheus.CounterVec
	bytesTotal      *prometheus.CounterVec
	terminations    *prometheus.CounterVec
	sessionDuration prometheus.Histogram
}

// NewCollector creates a collector and registers its series with reg. A nil
// reg leaves the series unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		connectAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connect_attempts_total",
				Help:      "Total number of per-address connect attempts",
			},
			[]string{"result"}, // result: success, error
		),
		sessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "Number of currently active sessions",
			},
		),
		framesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_total",
				Help:      "Total number of frames by direction",
			},
			[]string{"direction", "kind"}, // direction: sent, received; kind: audio, discarded
		),
		bytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bytes_total",
				Help:      "Total audio payload bytes by direction",
			},
			[]string{"direction"},
		),
		terminations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_terminations_total",
				Help:      "Total number of ended sessions by reason",
			},
			[]string{"reason"},
		),
		sessionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "session_duration_seconds",
				Help:      "Histogram of session duration in seconds",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
			},
		),
	}

	if reg != nil {
		reg.MustRegister(c.collectors()...)
	}
	return c
}

func (c *Collector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.connectAttempts,
		c.sessionsActive,
		c.framesTotal,
		c.bytesTotal,
		c.terminations,
		c.sessionDuration,
	}
}

// ConnectAttempt records one per-address connect attempt. It matches
// transport.AttemptFunc.
func (c *Collector) ConnectAttempt(_ string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	c.connectAttempts.WithLabelValues(result).Inc()
}

// SessionStarted implements bridge.Observer.
func (c *Collector) SessionStarted(session.ID) {
	c.sessionsActive.Inc()
}

// FrameSent implements bridge.Observer.
func (c *Collector) FrameSent(bytes int) {
	c.framesTotal.WithLabelValues("sent", "audio").Inc()
	c.bytesTotal.WithLabelValues("sent").Add(float64(bytes))
}

// FrameReceived implements bridge.Observer.
func (c *Collector) FrameReceived(bytes int) {
	c.framesTotal.WithLabelValues("received", "audio").Inc()
	c.bytesTotal.WithLabelValues("received").Add(float64(bytes))
}

// FrameDiscarded implements bridge.Observer.
func (c *Collector) FrameDiscarded() {
	c.framesTotal.WithLabelValues("received", "discarded").Inc()
}

// SessionEnded implements bridge.Observer.
func (c *Collector) SessionEnded(_ session.ID, res bridge.Result) {
	c.sessionsActive.Dec()
	c.terminations.WithLabelValues(res.Reason.String()).Inc()
	c.sessionDuration.Observe(res.Duration.Seconds())
}
