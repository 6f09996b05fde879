package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/audiosocket/bridge"
	"github.com/opd-ai/audiosocket/frame"
	"github.com/opd-ai/audiosocket/interfaces"
	"github.com/opd-ai/audiosocket/session"
	sim "github.com/opd-ai/audiosocket/testing"
	"github.com/opd-ai/audiosocket/transport"
)

func listen(t *testing.T, opts ...ListenerOption) *Listener {
	t.Helper()
	l, err := Listen("127.0.0.1:0", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

// dialSession connects to l and opens a session with a fresh id.
func dialSession(t *testing.T, l *Listener) *session.Session {
	t.Helper()
	conn, err := transport.Dial(context.Background(), l.Addr().String(), time.Second)
	require.NoError(t, err)

	sess, err := session.Open(conn, session.NewID())
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })
	return sess
}

// receiveAudio reads frames until one audio frame arrives.
func receiveAudio(t *testing.T, sess *session.Session) frame.Frame {
	t.Helper()
	for {
		f, err := sess.ReceiveFrame()
		if errors.Is(err, frame.ErrEmpty) {
			continue
		}
		require.NoError(t, err)
		return f
	}
}

type recordingObserver struct {
	bridge.NopObserver
	mu    sync.Mutex
	ended []bridge.Result
}

func (o *recordingObserver) SessionEnded(_ session.ID, res bridge.Result) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ended = append(o.ended, res)
}

func (o *recordingObserver) results() []bridge.Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]bridge.Result(nil), o.ended...)
}

type memRecorder struct {
	mu   sync.Mutex
	bufs map[session.ID]*bytes.Buffer
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func (m *memRecorder) Record(id session.ID) (io.WriteCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bufs == nil {
		m.bufs = make(map[session.ID]*bytes.Buffer)
	}
	b := &bytes.Buffer{}
	m.bufs[id] = b
	return nopCloser{b}, nil
}

func TestAcceptReadsHandshake(t *testing.T) {
	l := listen(t)
	sess := dialSession(t, l)

	c, err := l.Accept(context.Background())
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, sess.ID(), c.ID())
	assert.NotNil(t, c.RemoteAddr())
}

func TestAcceptRejectsBadHandshake(t *testing.T) {
	l := listen(t)

	raw, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer raw.Close()
	require.NoError(t, frame.WriteAudio(raw, []byte{1, 2}))

	_, err = l.Accept(context.Background())
	assert.ErrorIs(t, err, ErrBadHandshake)

	// The listener keeps working.
	sess := dialSession(t, l)
	c, err := l.Accept(context.Background())
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, sess.ID(), c.ID())
}

func TestAcceptRejectsShortHandshake(t *testing.T) {
	l := listen(t)

	raw, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer raw.Close()
	_, err = raw.Write([]byte{0x01, 0x00, 0x04, 1, 2, 3, 4})
	require.NoError(t, err)

	_, err = l.Accept(context.Background())
	assert.ErrorIs(t, err, ErrBadHandshake)
}

func TestAcceptHandshakeTimeout(t *testing.T) {
	l := listen(t, WithHandshakeTimeout(50*time.Millisecond))

	raw, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer raw.Close()

	start := time.Now()
	_, err = l.Accept(context.Background())
	assert.ErrorIs(t, err, ErrBadHandshake)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestAcceptCancelled(t *testing.T) {
	l := listen(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := l.Accept(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// A later accept is not affected by the expired deadline.
	sess := dialSession(t, l)
	c, err := l.Accept(context.Background())
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, sess.ID(), c.ID())
}

func TestAcceptAfterClose(t *testing.T) {
	l := listen(t)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	_, err := l.Accept(context.Background())
	assert.ErrorIs(t, err, ErrListenerClosed)
}

func TestServeEcho(t *testing.T) {
	l := listen(t)
	obs := &recordingObserver{}
	rec := &memRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	served := make(chan error, 1)
	go func() { served <- Serve(ctx, l, EchoHandler{Recorder: rec}, WithObserver(obs)) }()

	sess := dialSession(t, l)
	payload := bytes.Repeat([]byte{1, 2}, 160)
	require.NoError(t, sess.SendAudio(payload))

	f := receiveAudio(t, sess)
	assert.Equal(t, payload, f.Payload)

	require.NoError(t, sess.Hangup())
	require.Eventually(t, func() bool { return len(obs.results()) == 1 }, 2*time.Second, 10*time.Millisecond)

	res := obs.results()[0]
	assert.Equal(t, bridge.ReasonRemoteClosed, res.Reason)
	assert.NoError(t, res.Err)
	assert.Equal(t, uint64(1), res.FramesReceived)
	assert.Equal(t, uint64(1), res.FramesSent)

	rec.mu.Lock()
	assert.Equal(t, payload, rec.bufs[sess.ID()].Bytes())
	rec.mu.Unlock()

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServeSilentPeerDoesNotBlockAccept(t *testing.T) {
	l := listen(t, WithHandshakeTimeout(2*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Serve(ctx, l, EchoHandler{})

	silent, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer silent.Close()

	start := time.Now()
	sess := dialSession(t, l)
	require.NoError(t, sess.SendAudio([]byte{1, 2}))

	f := receiveAudio(t, sess)
	assert.Equal(t, []byte{1, 2}, f.Payload)
	assert.Less(t, time.Since(start), time.Second)
}

func TestServeCancelClosesSessions(t *testing.T) {
	l := listen(t)
	obs := &recordingObserver{}

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- Serve(ctx, l, EchoHandler{}, WithObserver(obs), WithMaxSessions(2)) }()

	sess := dialSession(t, l)
	require.NoError(t, sess.SendAudio([]byte{1, 2}))
	receiveAudio(t, sess)

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	_, err := sess.ReceiveFrame()
	assert.ErrorIs(t, err, frame.ErrEndOfStream)

	results := obs.results()
	require.Len(t, results, 1)
	assert.Equal(t, bridge.ReasonCancelled, results[0].Reason)
}

func TestServeStopsWhenListenerClosed(t *testing.T) {
	l := listen(t)

	served := make(chan error, 1)
	go func() { served <- Serve(context.Background(), l, EchoHandler{}) }()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, l.Close())

	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after listener close")
	}
}

func TestPlay(t *testing.T) {
	l := listen(t)
	sess := dialSession(t, l)

	c, err := l.Accept(context.Background())
	require.NoError(t, err)
	defer c.Close()

	audio := bytes.Repeat([]byte{3, 4}, 320) // 640 bytes
	sent, err := c.Play(context.Background(), bytes.NewReader(audio), 320, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(640), sent)
	require.NoError(t, c.Hangup())

	var got []byte
	for {
		f, err := sess.ReceiveFrame()
		if errors.Is(err, frame.ErrEndOfStream) {
			break
		}
		require.NoError(t, err)
		assert.Len(t, f.Payload, 320)
		got = append(got, f.Payload...)
	}
	assert.Equal(t, audio, got)
}

func TestPlayRejectsOddChunk(t *testing.T) {
	l := listen(t)
	dialSession(t, l)

	c, err := l.Accept(context.Background())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Play(context.Background(), bytes.NewReader(nil), 321, time.Millisecond)
	assert.Error(t, err)
}

func TestPlayHandler(t *testing.T) {
	l := listen(t)
	audio := bytes.Repeat([]byte{7, 0}, 160)

	h := PlayHandler{
		Open: func(session.ID) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(audio)), nil
		},
		Interval: time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Serve(ctx, l, h)

	sess := dialSession(t, l)
	f := receiveAudio(t, sess)
	assert.Equal(t, audio, f.Payload)

	_, err := sess.ReceiveFrame()
	assert.ErrorIs(t, err, frame.ErrEndOfStream)
	assert.NotErrorIs(t, err, frame.ErrPeerClosed)
}

func TestBridgeHandler(t *testing.T) {
	l := listen(t)
	obs := &recordingObserver{}

	leg := sim.NewSimulatedCallLeg(nil)
	leg.QueueVoice([]byte{5, 5, 5, 5})
	h := BridgeHandler{
		NewLeg: func(*Conn) (interfaces.ICallLeg, error) { return leg, nil },
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Serve(ctx, l, h, WithObserver(obs))

	sess := dialSession(t, l)
	require.NoError(t, sess.SendAudio([]byte{9, 9}))

	f := receiveAudio(t, sess)
	assert.Equal(t, []byte{5, 5, 5, 5}, f.Payload)
	require.True(t, leg.WaitForUnits(1, 2*time.Second))
	assert.Equal(t, []byte{9, 9}, leg.Received()[0].Data)

	leg.Hangup()
	_, err := sess.ReceiveFrame()
	assert.ErrorIs(t, err, frame.ErrEndOfStream)

	require.Eventually(t, func() bool { return len(obs.results()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, bridge.ReasonCallEnded, obs.results()[0].Reason)
}

func TestBridgeHandlerLegError(t *testing.T) {
	h := BridgeHandler{
		NewLeg: func(*Conn) (interfaces.ICallLeg, error) { return nil, errors.New("no channel") },
	}
	l := listen(t)
	dialSession(t, l)
	c, err := l.Accept(context.Background())
	require.NoError(t, err)
	defer c.Close()

	assert.Error(t, h.ServeAudioSocket(context.Background(), c))
}

func TestDirRecorder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rec")
	id := session.NewID()

	w, err := DirRecorder(dir).Record(id)
	require.NoError(t, err)
	_, err = w.Write([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(dir, id.String()+".raw"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, data)
}

func TestHandlerReason(t *testing.T) {
	live := context.Background()
	done, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, bridge.ReasonRemoteClosed, handlerReason(live, nil))
	assert.Equal(t, bridge.ReasonCancelled, handlerReason(done, errors.New("closed")))
	assert.Equal(t, bridge.ReasonSendError, handlerReason(live, &frame.ProtocolError{Op: "write audio", Class: frame.ErrWrite, Err: io.ErrShortWrite}))
	assert.Equal(t, bridge.ReasonProtocolError, handlerReason(live, errors.New("garbage")))
	assert.Equal(t, bridge.ReasonCallWriteError, handlerReason(done, bridge.Result{Reason: bridge.ReasonCallWriteError}.AsError()))
}
