package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/opd-ai/audiosocket/metrics"
	"github.com/opd-ai/audiosocket/server"
	"github.com/opd-ai/audiosocket/session"
)

type serveFlags struct {
	listen      string
	record      string
	play        string
	maxSessions int
}

func (c *cli) serveCmd() *cobra.Command {
	f := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an AudioSocket echo or playback server",
		Long: `Accept AudioSocket sessions. By default every received audio frame is
echoed back; with --record each session's inbound audio is also written to
<dir>/<session id>.raw. With --play the server streams a raw slin16 file to
each caller in real time and hangs up when it ends.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("listen") {
				c.cfg.Listen = f.listen
			}
			if cmd.Flags().Changed("max-sessions") {
				c.cfg.MaxSessions = f.maxSessions
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return c.withMetrics(ctx, func(ctx context.Context, col *metrics.Collector) error {
				return c.runServe(ctx, f, col)
			})
		},
	}

	cmd.Flags().StringVar(&f.listen, "listen", "", "listen address (default: config listen)")
	cmd.Flags().StringVar(&f.record, "record", "", "directory for per-session recordings")
	cmd.Flags().StringVar(&f.play, "play", "", "raw slin16 file to play to each caller")
	cmd.Flags().IntVar(&f.maxSessions, "max-sessions", 0, "maximum concurrent sessions")
	return cmd
}

// handlerFor picks the session handler for the given flags.
func (c *cli) handlerFor(f *serveFlags) server.Handler {
	if f.play != "" {
		return server.PlayHandler{
			Open: func(session.ID) (io.ReadCloser, error) {
				return os.Open(f.play)
			},
			Chunk:    c.cfg.FrameBytes,
			Interval: c.cfg.FrameInterval,
		}
	}

	h := server.EchoHandler{}
	if f.record != "" {
		h.Recorder = server.DirRecorder(f.record)
	}
	return h
}

func (c *cli) runServe(ctx context.Context, f *serveFlags, col *metrics.Collector) error {
	l, err := server.Listen(c.cfg.Listen)
	if err != nil {
		return err
	}
	defer l.Close()

	fmt.Fprintf(c.out, "listening on %s\n", l.Addr())

	opts := []server.ServeOption{server.WithMaxSessions(c.cfg.MaxSessions)}
	if col != nil {
		opts = append(opts, server.WithObserver(col))
	}
	return server.Serve(ctx, l, c.handlerFor(f), opts...)
}
