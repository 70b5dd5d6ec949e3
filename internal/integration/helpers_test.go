package integration

import (
	"context"
	"net"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/health"

	"github.com/lilycand/eldig/internal/api/grpc/monitor"
	"github.com/lilycand/eldig/internal/api/http/status"
	"github.com/lilycand/eldig/internal/metrics"
	"github.com/lilycand/eldig/internal/service/driver"
)

// stack is a driver served by both monitors on loopback ports.
type stack struct {
	driver   *driver.Driver
	registry *prometheus.Registry
	grpcAddr string
	httpURL  string
}

// startStack wires a driver with metrics and health observers and serves the
// gRPC and HTTP monitors until the test ends.
func startStack(t *testing.T) *stack {
	t.Helper()

	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(registry)
	require.NoError(t, err)

	healthServer := health.NewServer()
	d := driver.New(driver.WithObservers(recorder, monitor.NewHealthObserver(healthServer)))

	var listenConfig net.ListenConfig

	grpcLis, err := listenConfig.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	httpLis, err := listenConfig.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	group, groupCtx := errgroup.WithContext(ctx)

	grpcServer := monitor.NewGRPCServer(d, healthServer)

	group.Go(func() error {
		return monitor.Serve(groupCtx, grpcServer, grpcLis)
	})

	group.Go(func() error {
		return status.Serve(groupCtx, status.NewHandler(d, registry), httpLis)
	})

	t.Cleanup(func() {
		cancel()
		require.NoError(t, group.Wait())
	})

	return &stack{
		driver:   d,
		registry: registry,
		grpcAddr: grpcLis.Addr().String(),
		httpURL:  "http://" + httpLis.Addr().String(),
	}
}

// apply runs panel commands in order.
func (s *stack) apply(t *testing.T, commands ...driver.PanelCommand) {
	t.Helper()

	for _, cmd := range commands {
		_, err := s.driver.Apply(context.Background(), cmd)
		require.NoError(t, err)
	}
}
