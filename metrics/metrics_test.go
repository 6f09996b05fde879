package metrics

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/audiosocket/bridge"
	"github.com/opd-ai/audiosocket/session"
)

var _ bridge.Observer = (*Collector)(nil)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	id := session.NewID()

	c.ConnectAttempt("192.0.2.1:9092", errors.New("refused"))
	c.ConnectAttempt("192.0.2.2:9092", nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.connectAttempts.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.connectAttempts.WithLabelValues("success")))

	c.SessionStarted(id)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.sessionsActive))

	c.FrameSent(320)
	c.FrameSent(320)
	c.FrameReceived(160)
	c.FrameDiscarded()
	assert.Equal(t, 2.0, testutil.ToFloat64(c.framesTotal.WithLabelValues("sent", "audio")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.framesTotal.WithLabelValues("received", "audio")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.framesTotal.WithLabelValues("received", "discarded")))
	assert.Equal(t, 640.0, testutil.ToFloat64(c.bytesTotal.WithLabelValues("sent")))
	assert.Equal(t, 160.0, testutil.ToFloat64(c.bytesTotal.WithLabelValues("received")))

	c.SessionEnded(id, bridge.Result{Reason: bridge.ReasonRemoteClosed, Duration: 3 * time.Second})
	assert.Equal(t, 0.0, testutil.ToFloat64(c.sessionsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.terminations.WithLabelValues("remote_closed")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.sessionDuration))
}

func TestCollectorRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.SessionStarted(session.NewID())

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "audiosocket_sessions_active")

	assert.Panics(t, func() { NewCollector(reg) })
	assert.NotPanics(t, func() { NewCollector(nil) })
}

func TestExporterHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.ConnectAttempt("127.0.0.1:9092", nil)

	srv := httptest.NewServer(NewExporter("", reg).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `audiosocket_connect_attempts_total{result="success"} 1`)

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "ok", strings.TrimSpace(string(body)))
}

func TestExporterServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	exp := NewExporter("", nil)
	done := make(chan error, 1)
	go func() { done <- exp.Serve(ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, exp.Shutdown(context.Background()))
	assert.ErrorIs(t, <-done, http.ErrServerClosed)
}

func TestExporterShutdownBeforeServe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	exp := NewExporter("", nil)
	require.NoError(t, exp.Shutdown(context.Background()))
	assert.ErrorIs(t, exp.Serve(ln), http.ErrServerClosed)
}
