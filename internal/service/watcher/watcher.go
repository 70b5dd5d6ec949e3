package watcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"google.golang.org/grpc"

	"github.com/lilycand/eldig/internal/api/grpc/monitor"
	"github.com/lilycand/eldig/internal/config"
	"github.com/lilycand/eldig/internal/logger"
)

// Options controls the watcher.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Address overrides the monitor address from the settings.
	Address string
	// Interval overrides the polling interval from the settings.
	Interval time.Duration
	// Once prints a single status to Output and returns.
	Once bool
	// Output receives the status line in Once mode.
	Output io.Writer
	// DialOptions are passed to the gRPC client.
	DialOptions []grpc.DialOption
}

// ErrNoMonitorAddress is returned when neither the flags nor the settings
// name a monitor to poll.
var ErrNoMonitorAddress = errors.New("no monitor address configured")

// Run polls the monitor until ctx is canceled, logging every change of
// machine state or health.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "watcher")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	address := resolveAddress(opts, cfg)
	if address == "" {
		return ErrNoMonitorAddress
	}

	interval := cfg.Watch.Interval
	if opts.Interval > 0 {
		interval = opts.Interval
	}

	client, err := monitor.Dial(
		address,
		monitor.WithCallTimeout(cfg.Monitor.Timeout),
		monitor.WithDialOptions(opts.DialOptions...),
	)
	if err != nil {
		return fmt.Errorf("dial monitor: %w", err)
	}

	defer func() {
		_ = client.Close()
	}()

	if opts.Once {
		return printOnce(ctx, client, opts.Output)
	}

	logger.InfoKV(ctx, "Watching monitor", "monitor_address", address, "interval", interval.String())

	err = Watch(ctx, client, interval, func(report Report) {
		logger.InfoKV(ctx, "Machine state changed",
			"state", report.Snapshot.State,
			"tier", report.Snapshot.Tier,
			"health", report.Health.String(),
			"info", report.Snapshot.Actuators.Info,
			"cycles", report.Snapshot.Cycles,
		)
	})
	if ctx.Err() != nil {
		logger.Info(ctx, "Context canceled, exiting")
		return nil
	}

	return err
}

// resolveAddress picks the flag override, then the watch address, then the
// local gRPC monitor address.
func resolveAddress(opts *Options, cfg *config.Config) string {
	switch {
	case opts.Address != "":
		return opts.Address
	case cfg.Watch.Address != "":
		return cfg.Watch.Address
	default:
		return cfg.Monitor.GRPCAddress
	}
}

// printOnce writes one status line.
func printOnce(ctx context.Context, client StatusClient, w io.Writer) error {
	report, err := poll(ctx, client)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, report.String())

	return err
}
