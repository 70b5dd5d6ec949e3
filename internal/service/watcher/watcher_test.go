package watcher

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/lilycand/eldig/internal/api/grpc/monitor"
	"github.com/lilycand/eldig/internal/config"
	"github.com/lilycand/eldig/internal/domain/dialysis"
	"github.com/lilycand/eldig/internal/service/driver"
)

const bufnetAddress = "passthrough:///bufnet"

// serveMonitor runs a monitor for a fresh driver over bufconn and returns the
// driver with the dial option reaching it.
func serveMonitor(t *testing.T) (*driver.Driver, grpc.DialOption) {
	t.Helper()

	healthServer := health.NewServer()
	d := driver.New(driver.WithObservers(monitor.NewHealthObserver(healthServer)))

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- monitor.Serve(ctx, monitor.NewGRPCServer(d, healthServer), lis)
	}()

	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	dialer := grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})

	return d, dialer
}

// writeSettings stores cfg in a temporary settings file.
func writeSettings(t *testing.T, cfg *config.Config) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), config.DefaultConfigFilename)
	require.NoError(t, config.Save(path, cfg))

	return path
}

// TestRun_Once prints a single status line.
func TestRun_Once(t *testing.T) {
	t.Parallel()

	d, dialer := serveMonitor(t)
	_, err := d.Apply(context.Background(), driver.CommandStart)
	require.NoError(t, err)

	var out bytes.Buffer

	err = Run(context.Background(), &Options{
		ConfigPath:  writeSettings(t, config.Default()),
		Address:     bufnetAddress,
		Once:        true,
		Output:      &out,
		DialOptions: []grpc.DialOption{dialer},
	})
	require.NoError(t, err)
	require.Contains(t, out.String(), "NORMAL (S1) tier=nominal health=SERVING cycles=1")
	require.Contains(t, out.String(), "session="+d.SessionID())
}

// TestRun_NoAddress fails when nothing names a monitor.
func TestRun_NoAddress(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{
		ConfigPath: writeSettings(t, config.Default()),
		Once:       true,
	})
	require.ErrorIs(t, err, ErrNoMonitorAddress)
}

// TestRun_MissingSettings fails for an explicitly named missing file.
func TestRun_MissingSettings(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{
		ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
		Address:    bufnetAddress,
	})
	require.ErrorContains(t, err, "load configuration")
}

// TestRun_ExitsOnCancel returns cleanly when the context is already done.
func TestRun_ExitsOnCancel(t *testing.T) {
	t.Parallel()

	_, dialer := serveMonitor(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, &Options{
		ConfigPath:  writeSettings(t, config.Default()),
		Address:     bufnetAddress,
		Interval:    time.Second,
		DialOptions: []grpc.DialOption{dialer},
	})
	require.NoError(t, err)
}

// TestReport_Changed compares the fields that matter.
func TestReport_Changed(t *testing.T) {
	t.Parallel()

	base := Report{Snapshot: driver.Snapshot{State: dialysis.StateNormal, Cycles: 1}}
	require.True(t, base.changed(nil))

	sameState := base
	sameState.Snapshot.Cycles = 7
	require.False(t, sameState.changed(&base))

	otherHealth := base
	otherHealth.Health = healthpb.HealthCheckResponse_NOT_SERVING
	require.True(t, otherHealth.changed(&base))
}
