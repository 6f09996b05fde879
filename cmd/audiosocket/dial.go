package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/opd-ai/audiosocket"
	"github.com/opd-ai/audiosocket/interfaces"
	"github.com/opd-ai/audiosocket/media"
	"github.com/opd-ai/audiosocket/metrics"
)

type dialFlags struct {
	to       string
	id       string
	in       string
	out      string
	timeout  time.Duration
	frame    int
	interval time.Duration
}

func (c *cli) dialCmd() *cobra.Command {
	f := &dialFlags{}

	cmd := &cobra.Command{
		Use:   "dial",
		Short: "Stream a raw audio file to an AudioSocket server",
		Long: `Connect to an AudioSocket server, send the session handshake and stream
raw slin16 audio from --in in real time. Audio sent back by the server is
written to --out. The session ends when the input is exhausted, the server
hangs up, or the command is interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.applyDialFlags(cmd, f)
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return c.withMetrics(ctx, func(ctx context.Context, col *metrics.Collector) error {
				return c.runDial(ctx, f, col)
			})
		},
	}

	cmd.Flags().StringVar(&f.to, "to", "", "destination host:port (default: config destination)")
	cmd.Flags().StringVar(&f.id, "id", "", "session UUID or 16-byte token (default: random)")
	cmd.Flags().StringVar(&f.in, "in", "", "raw slin16 input file (default: send nothing)")
	cmd.Flags().StringVar(&f.out, "out", "", "raw slin16 output file (default: discard)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "per-address connect timeout")
	cmd.Flags().IntVar(&f.frame, "frame-bytes", 0, "bytes per outgoing frame")
	cmd.Flags().DurationVar(&f.interval, "interval", 0, "pacing between outgoing frames")
	return cmd
}

// applyDialFlags overrides config values with flags given on the command
// line.
func (c *cli) applyDialFlags(cmd *cobra.Command, f *dialFlags) {
	if cmd.Flags().Changed("to") {
		c.cfg.Destination = f.to
	}
	if cmd.Flags().Changed("id") {
		c.cfg.SessionID = f.id
	}
	if cmd.Flags().Changed("timeout") {
		c.cfg.ConnectTimeout = f.timeout
	}
	if cmd.Flags().Changed("frame-bytes") {
		c.cfg.FrameBytes = f.frame
	}
	if cmd.Flags().Changed("interval") {
		c.cfg.FrameInterval = f.interval
	}
}

func (c *cli) runDial(ctx context.Context, f *dialFlags, col *metrics.Collector) error {
	id, err := c.cfg.ResolveSessionID()
	if err != nil {
		return err
	}

	var src interfaces.IMediaSource = idleSource{}
	if f.in != "" {
		in, err := os.Open(f.in)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer in.Close()

		rs, err := media.NewReaderSource(in,
			media.WithFrameBytes(c.cfg.FrameBytes),
			media.WithInterval(c.cfg.FrameInterval))
		if err != nil {
			return err
		}
		src = rs
	}

	var out io.Writer = io.Discard
	if f.out != "" {
		file, err := os.Create(f.out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer file.Close()
		out = file
	}

	opts := audiosocket.NewOptions()
	opts.Destination = c.cfg.Destination
	opts.ConnectTimeout = c.cfg.ConnectTimeout
	opts.SessionID = interfaces.StaticID(id)
	if col != nil {
		opts.Observer = col
	}

	res, err := audiosocket.Call(ctx, opts, interfaces.NewCallLeg(src, media.NewWriterSink(out)))

	logrus.WithFields(logrus.Fields{
		"function":       "runDial",
		"id":             id.String(),
		"reason":         res.Reason.String(),
		"bytes_sent":     res.BytesSent,
		"bytes_received": res.BytesReceived,
	}).Info("Session finished")
	fmt.Fprintf(c.out, "%s %s sent=%d received=%d duration=%s\n",
		id, res.Reason, res.BytesSent, res.BytesReceived, res.Duration.Round(time.Millisecond))
	return err
}

// idleSource never produces audio; it ends when ctx does.
type idleSource struct{}

func (idleSource) ReadMedia(ctx context.Context) (media.Unit, error) {
	<-ctx.Done()
	return media.Unit{}, ctx.Err()
}
