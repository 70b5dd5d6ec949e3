package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/lilycand/eldig/internal/api/grpc/monitor"
	"github.com/lilycand/eldig/internal/metrics"
	"github.com/lilycand/eldig/internal/scenario"
	"github.com/lilycand/eldig/internal/service/driver"
	"github.com/lilycand/eldig/internal/service/replay"
)

// TestReplay_ObserversSeeTheEpisode replays the sample scenario with the
// metrics and health observers attached.
func TestReplay_ObserversSeeTheEpisode(t *testing.T) {
	t.Parallel()

	sc, err := scenario.Load(filepath.Join("..", "scenario", "testdata", "critical_episode.yaml"))
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(registry)
	require.NoError(t, err)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(monitor.ServiceName, healthpb.HealthCheckResponse_SERVING)

	report, err := replay.Run(
		context.Background(),
		sc,
		driver.WithObservers(recorder, monitor.NewHealthObserver(healthServer)),
	)
	require.NoError(t, err)
	require.Zero(t, report.Failed())

	count, err := testutil.GatherAndCount(registry, "eldig_critical_entries_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	response, err := healthServer.Check(context.Background(), &healthpb.HealthCheckRequest{Service: monitor.ServiceName})
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, response.GetStatus())
}
