package simulator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/health"

	"github.com/lilycand/eldig/internal/api/grpc/monitor"
	"github.com/lilycand/eldig/internal/api/http/status"
	"github.com/lilycand/eldig/internal/config"
	"github.com/lilycand/eldig/internal/domain/dialysis"
	"github.com/lilycand/eldig/internal/logger"
	"github.com/lilycand/eldig/internal/metrics"
	"github.com/lilycand/eldig/internal/presentation/console"
	"github.com/lilycand/eldig/internal/service/driver"
	"github.com/lilycand/eldig/internal/version"
)

// QuitKey ends the session.
const QuitKey = "q"

// errSessionEnded stops the monitors once the operator quits.
var errSessionEnded = errors.New("session ended")

// Options controls an interactive session.
type Options struct {
	// Config holds the loaded settings. Nil means config.Default.
	Config *config.Config
	// Input is where panel keys are read from, one per line.
	Input io.Reader
	// Output receives the rendered frames.
	Output io.Writer
	// Color enables ANSI styling of the frames.
	Color bool
}

// Run starts a session and blocks until the operator quits, the input ends
// or ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "simulator")

	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	recorder, err := metrics.NewRecorder(registry)
	if err != nil {
		return fmt.Errorf("create metrics recorder: %w", err)
	}

	healthServer := health.NewServer()

	var controllerOptions []dialysis.Option
	if cfg.CanonicalResetOutputs {
		controllerOptions = append(controllerOptions, dialysis.WithCanonicalResetOutputs())
	}

	d := driver.New(
		driver.WithControllerOptions(controllerOptions...),
		driver.WithObservers(recorder, monitor.NewHealthObserver(healthServer)),
	)

	logger.InfoKV(ctx, "Session started", "session_id", d.SessionID(), "version", version.Short())

	group, groupCtx := errgroup.WithContext(ctx)

	if err = startMonitors(groupCtx, group, cfg.Monitor, d, healthServer, registry); err != nil {
		return err
	}

	renderer := console.NewRenderer(opts.Output, opts.Color)

	group.Go(func() error {
		if loopErr := loop(groupCtx, d, renderer, opts.Input); loopErr != nil {
			return loopErr
		}

		return errSessionEnded
	})

	if err = group.Wait(); err != nil && !errors.Is(err, errSessionEnded) && !errors.Is(err, context.Canceled) {
		return err
	}

	snapshot := d.Snapshot()
	logger.InfoKV(ctx, "Session ended", "session_id", snapshot.SessionID, "cycles", snapshot.Cycles, "state", snapshot.State)

	return nil
}

// startMonitors binds the configured monitor endpoints and schedules them on
// group. Both listeners are bound before any server is scheduled, so an
// address error leaves nothing running.
func startMonitors(
	ctx context.Context,
	group *errgroup.Group,
	cfg config.Monitor,
	d *driver.Driver,
	healthServer *health.Server,
	registry *prometheus.Registry,
) error {
	var (
		listenConfig net.ListenConfig
		grpcLis      net.Listener
		httpLis      net.Listener
		err          error
	)

	if cfg.GRPCAddress != "" {
		grpcLis, err = listenConfig.Listen(ctx, "tcp", cfg.GRPCAddress)
		if err != nil {
			return fmt.Errorf("listen gRPC monitor: %w", err)
		}
	}

	if cfg.HTTPAddress != "" {
		httpLis, err = listenConfig.Listen(ctx, "tcp", cfg.HTTPAddress)
		if err != nil {
			if grpcLis != nil {
				_ = grpcLis.Close()
			}

			return fmt.Errorf("listen HTTP monitor: %w", err)
		}
	}

	if grpcLis != nil {
		grpcServer := monitor.NewGRPCServer(d, healthServer)

		group.Go(func() error {
			return monitor.Serve(ctx, grpcServer, grpcLis)
		})
	}

	if httpLis != nil {
		handler := status.NewHandler(d, registry)

		group.Go(func() error {
			return status.Serve(ctx, handler, httpLis)
		})
	}

	return nil
}

// loop renders, reads one key and applies it until quit or end of input.
// An empty line advances one cycle without injecting anything.
func loop(ctx context.Context, d *driver.Driver, renderer *console.Renderer, input io.Reader) error {
	if err := renderer.Frame(d.Snapshot()); err != nil {
		return err
	}

	lines := readLines(ctx, input)

	for {
		var (
			line string
			ok   bool
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok = <-lines:
			if !ok {
				return nil
			}
		}

		key := strings.TrimSpace(line)
		if strings.EqualFold(key, QuitKey) {
			return nil
		}

		if key == "" {
			key = string(driver.CommandTick)
		}

		cmd, err := driver.ParsePanelCommand(key)
		if err != nil {
			logger.Debugf(ctx, "Ignoring input %q", key)

			if err = renderer.Notice(fmt.Sprintf("Unknown command %q", key)); err != nil {
				return err
			}

			continue
		}

		snapshot, err := d.Apply(ctx, cmd)
		if err != nil {
			return err
		}

		if err = renderer.Frame(snapshot); err != nil {
			return err
		}
	}
}

// readLines streams input lines until EOF or ctx is done. A blocked read on
// a terminal is abandoned on cancellation.
func readLines(ctx context.Context, input io.Reader) <-chan string {
	lines := make(chan string)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			logger.ErrorKV(ctx, "Read input failed", "error", err)
		}
	}()

	return lines
}
