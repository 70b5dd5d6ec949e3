package watcher

import (
	"context"
	"fmt"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/lilycand/eldig/internal/logger"
	"github.com/lilycand/eldig/internal/service/driver"
)

// StatusClient is the part of the monitor client the watcher polls.
type StatusClient interface {
	GetStatus(ctx context.Context) (driver.Snapshot, error)
	CheckHealth(ctx context.Context) (healthpb.HealthCheckResponse_ServingStatus, error)
}

// Report is one observation of the monitor.
type Report struct {
	// Snapshot is the machine status.
	Snapshot driver.Snapshot
	// Health is the monitor service health.
	Health healthpb.HealthCheckResponse_ServingStatus
}

// String renders the report on one line.
func (r Report) String() string {
	return fmt.Sprintf("%s (%s) tier=%s health=%s cycles=%d info=%q session=%s",
		r.Snapshot.State,
		r.Snapshot.State.Code(),
		r.Snapshot.Tier,
		r.Health,
		r.Snapshot.Cycles,
		r.Snapshot.Actuators.Info,
		r.Snapshot.SessionID,
	)
}

// changed reports whether r differs from prev in state, tier, health or session.
func (r Report) changed(prev *Report) bool {
	return prev == nil ||
		prev.Snapshot.State != r.Snapshot.State ||
		prev.Snapshot.Tier != r.Snapshot.Tier ||
		prev.Health != r.Health ||
		prev.Snapshot.SessionID != r.Snapshot.SessionID
}

// Watch polls client immediately and then every interval, calling onChange
// for the first report and every change after it. Poll failures are logged
// and retried on the next tick. Watch returns ctx.Err() when ctx is done.
func Watch(ctx context.Context, client StatusClient, interval time.Duration, onChange func(Report)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last *Report

	for {
		report, err := poll(ctx, client)

		switch {
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}

			logger.ErrorKV(ctx, "Poll monitor failed", "error", err)
		case report.changed(last):
			onChange(report)

			last = &report
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// poll fetches the snapshot and health status.
func poll(ctx context.Context, client StatusClient) (Report, error) {
	snapshot, err := client.GetStatus(ctx)
	if err != nil {
		return Report{}, err
	}

	health, err := client.CheckHealth(ctx)
	if err != nil {
		return Report{}, err
	}

	return Report{Snapshot: snapshot, Health: health}, nil
}
