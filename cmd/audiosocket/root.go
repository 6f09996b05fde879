package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/audiosocket/config"
	"github.com/opd-ai/audiosocket/metrics"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// cli holds flags shared by every command and the loaded configuration.
type cli struct {
	cfgFile   string
	envFile   string
	logLevel  string
	logFormat string

	cfg *config.Config
	out io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	rootCmd := &cobra.Command{
		Use:           "audiosocket",
		Short:         "AudioSocket client and server",
		Long:          "Stream raw 8 kHz slin16 call audio to and from AudioSocket media services.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load(cmd)
		},
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&c.envFile, "env-file", "", "env file to load (default: ./.env if present)")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&c.logFormat, "log-format", "", "log format (text or json)")

	rootCmd.AddCommand(c.dialCmd())
	rootCmd.AddCommand(c.serveCmd())
	rootCmd.AddCommand(c.versionCmd())
	return rootCmd
}

// load reads the env file and config, applies global flag overrides and
// configures logging.
func (c *cli) load(cmd *cobra.Command) error {
	var envFiles []string
	if c.envFile != "" {
		envFiles = append(envFiles, c.envFile)
	}
	if err := config.LoadEnvFile(envFiles...); err != nil {
		return err
	}

	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = c.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ApplyLogging(); err != nil {
		return err
	}

	c.cfg = cfg
	return nil
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("audiosocket %s\n", version)
		},
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// withMetrics runs fn alongside a metrics exporter when an address is
// configured. The collector is nil when metrics are disabled.
func (c *cli) withMetrics(ctx context.Context, fn func(ctx context.Context, col *metrics.Collector) error) error {
	if c.cfg.MetricsAddr == "" {
		return fn(ctx, nil)
	}

	reg := prometheus.NewRegistry()
	col := metrics.NewCollector(reg)
	exp := metrics.NewExporter(c.cfg.MetricsAddr, reg)

	logrus.WithFields(logrus.Fields{
		"function": "withMetrics",
		"addr":     c.cfg.MetricsAddr,
	}).Debug("Metrics exporter enabled")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := exp.Start()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			exp.Shutdown(shutdownCtx)
		}()
		return fn(gctx, col)
	})

	return g.Wait()
}
