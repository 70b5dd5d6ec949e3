package monitor

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/lilycand/eldig/internal/domain/dialysis"
	"github.com/lilycand/eldig/internal/service/driver"
)

// startBufconn serves the monitor for d over an in-memory listener and
// returns a connected client.
func startBufconn(t *testing.T, d *driver.Driver, healthServer *health.Server) *Client {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	grpcServer := NewGRPCServer(d, healthServer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- Serve(ctx, grpcServer, lis)
	}()

	client, err := Dial(
		"passthrough:///bufnet",
		WithCallTimeout(3*time.Second),
		WithDialOptions(grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		})),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()

		cancel()
		require.NoError(t, <-done)
	})

	return client
}

// TestServer_GetStatus returns the driver snapshot.
func TestServer_GetStatus(t *testing.T) {
	t.Parallel()

	d := driver.New()
	_, err := d.Apply(context.Background(), driver.CommandStart)
	require.NoError(t, err)

	result, err := NewServer(d).GetStatus(context.Background(), new(emptypb.Empty))
	require.NoError(t, err)
	require.Equal(t, "NORMAL", result.GetFields()["state"].GetStringValue())
	require.Equal(t, "nominal", result.GetFields()["tier"].GetStringValue())
	require.True(t, result.GetFields()["actuators"].GetStructValue().GetFields()["pump_on"].GetBoolValue())
}

// TestConvert_Roundtrip keeps every snapshot field through the struct encoding.
func TestConvert_Roundtrip(t *testing.T) {
	t.Parallel()

	d := driver.New()
	_, err := d.Apply(context.Background(), driver.CommandStart)
	require.NoError(t, err)
	_, err = d.Apply(context.Background(), driver.CommandFlowWarning)
	require.NoError(t, err)

	want := d.Snapshot()

	encoded, err := toStruct(want)
	require.NoError(t, err)

	got, err := fromStruct(encoded)
	require.NoError(t, err)

	require.True(t, want.UpdatedAt.Equal(got.UpdatedAt))

	got.UpdatedAt = want.UpdatedAt
	require.Equal(t, want, got)
}

// TestMonitor_OverGRPC exercises the client against a live in-memory server.
func TestMonitor_OverGRPC(t *testing.T) {
	t.Parallel()

	healthServer := health.NewServer()
	d := driver.New(driver.WithObservers(NewHealthObserver(healthServer)))
	client := startBufconn(t, d, healthServer)

	ctx := context.Background()

	status, err := client.CheckHealth(ctx)
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, status)

	_, err = d.Apply(ctx, driver.CommandPressureFail)
	require.NoError(t, err)

	snapshot, err := client.GetStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, dialysis.StatePressFail, snapshot.State)
	require.Equal(t, dialysis.TierCritical, snapshot.Tier)
	require.Equal(t, d.SessionID(), snapshot.SessionID)
	require.Equal(t, dialysis.InfoPressFail, snapshot.Actuators.Info)
	require.Equal(t, dialysis.SeverityCritical, snapshot.Sensors.Press)

	status, err = client.CheckHealth(ctx)
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status)

	_, err = d.Apply(ctx, driver.CommandReset)
	require.NoError(t, err)

	status, err = client.CheckHealth(ctx)
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, status)
}

// TestDial_ValidatesAddress verifies that Dial rejects empty addresses.
func TestDial_ValidatesAddress(t *testing.T) {
	t.Parallel()

	c, err := Dial("")
	require.Error(t, err)
	require.Nil(t, c)
}

// TestClient_callContext checks timeout vs cancel-only behavior of callContext.
func TestClient_callContext(t *testing.T) {
	t.Parallel()

	c := &Client{
		callTimeout: 0,
	}

	ctx, cancel := c.callContext(context.Background())
	cancel()

	_, ok := ctx.Deadline()
	require.False(t, ok)

	c.callTimeout = 10 * time.Millisecond

	ctx, cancel = c.callContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 30*time.Millisecond)
}

// TestServe_ReturnsOnListenerError returns the serve error without waiting
// for the context.
func TestServe_ReturnsOnListenerError(t *testing.T) {
	t.Parallel()

	lis := bufconn.Listen(1 << 10)
	require.NoError(t, lis.Close())

	grpcServer := NewGRPCServer(driver.New(), health.NewServer())

	err := Serve(context.Background(), grpcServer, lis)
	require.ErrorContains(t, err, "serve gRPC monitor")
}

// TestServe_ReturnsWhenStoppedElsewhere returns once the server is stopped
// directly, with the context still live.
func TestServe_ReturnsWhenStoppedElsewhere(t *testing.T) {
	t.Parallel()

	grpcServer := NewGRPCServer(driver.New(), health.NewServer())
	done := make(chan error, 1)

	go func() {
		done <- Serve(context.Background(), grpcServer, bufconn.Listen(1<<10))
	}()

	grpcServer.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Stop")
	}
}
