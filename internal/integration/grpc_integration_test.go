package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/lilycand/eldig/internal/api/grpc/monitor"
	"github.com/lilycand/eldig/internal/domain/dialysis"
	"github.com/lilycand/eldig/internal/service/driver"
)

// TestGRPCMonitor_FollowsLatchAndReset reads status and health over TCP
// through a critical episode.
func TestGRPCMonitor_FollowsLatchAndReset(t *testing.T) {
	t.Parallel()

	s := startStack(t)
	ctx := context.Background()

	client, err := monitor.Dial(s.grpcAddr, monitor.WithCallTimeout(2*time.Second))
	require.NoError(t, err)

	defer func() {
		_ = client.Close()
	}()

	s.apply(t, driver.CommandStart)

	snapshot, err := client.GetStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, dialysis.StateNormal, snapshot.State)
	require.Equal(t, s.driver.SessionID(), snapshot.SessionID)

	health, err := client.CheckHealth(ctx)
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, health)

	// Sensors going back to normal do not unlatch.
	s.apply(t, driver.CommandPressureFail, driver.CommandClearSensors, driver.CommandTick)

	snapshot, err = client.GetStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, dialysis.StatePressFail, snapshot.State)
	require.True(t, snapshot.Actuators.SafetyClampClosed)
	require.Equal(t, uint64(4), snapshot.Cycles)

	health, err = client.CheckHealth(ctx)
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, health)

	s.apply(t, driver.CommandReset)

	snapshot, err = client.GetStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, dialysis.StateIdle, snapshot.State)
	require.Equal(t, dialysis.InfoSystemReset, snapshot.Actuators.Info)

	health, err = client.CheckHealth(ctx)
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, health)
}
