package metrics

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const (
	// defaultReadHeaderTimeout is the timeout for reading request headers.
	defaultReadHeaderTimeout = 10 * time.Second
)

// Exporter serves Prometheus metrics over HTTP.
type Exporter struct {
	addr     string
	server   *http.Server
	registry *prometheus.Registry
	mu       sync.Mutex
	started  bool
	stopped  bool
}

// NewExporter creates an exporter serving reg at addr. A nil reg creates a
// registry carrying the Go runtime and process collectors.
func NewExporter(addr string, reg *prometheus.Registry) *Exporter {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return &Exporter{
		addr:     addr,
		registry: reg,
	}
}

// Registry returns the underlying registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler returns the mux serving /metrics and /health.
func (e *Exporter) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start listens on the exporter's address and serves until Shutdown. It
// returns http.ErrServerClosed after a graceful shutdown.
func (e *Exporter) Start() error {
	ln, err := net.Listen("tcp", e.addr)
	if err != nil {
		return err
	}
	return e.Serve(ln)
}

// Serve serves on an existing listener.
func (e *Exporter) Serve(ln net.Listener) error {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		ln.Close()
		return http.ErrServerClosed
	}
	if e.started {
		e.mu.Unlock()
		ln.Close()
		return nil
	}
	e.server = &http.Server{
		Handler:           e.Handler(),
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}
	e.started = true
	srv := e.server
	e.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Exporter.Serve",
		"addr":     ln.Addr().String(),
	}).Info("Serving metrics")
	return srv.Serve(ln)
}

// Shutdown gracefully stops the exporter. A Start or Serve that has not
// begun yet returns http.ErrServerClosed at once.
func (e *Exporter) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopped = true
	if e.server != nil && e.started {
		e.started = false
		return e.server.Shutdown(ctx)
	}
	return nil
}
