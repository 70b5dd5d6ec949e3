package monitor

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lilycand/eldig/internal/domain/dialysis"
	"github.com/lilycand/eldig/internal/logger"
	"github.com/lilycand/eldig/internal/service/driver"
)

// StatusSource provides the snapshot served by the monitor.
type StatusSource interface {
	Snapshot() driver.Snapshot
}

// Server implements MonitorServiceServer.
type Server struct {
	// source provides the latest driver snapshot.
	source StatusSource
}

var _ MonitorServiceServer = (*Server)(nil)

// NewServer wires the status source into a gRPC handler.
func NewServer(source StatusSource) *Server {
	return &Server{
		source: source,
	}
}

// GetStatus returns the latest snapshot.
func (s *Server) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snapshot := s.source.Snapshot()

	result, err := toStruct(snapshot)
	if err != nil {
		logger.ErrorKV(ctx, "Failed to encode status", "error", err)

		return nil, status.Error(codes.Internal, "unable to encode status")
	}

	return result, nil
}

// NewGRPCServer builds a gRPC server exposing the monitor and health services.
// The health status is initialised from the current snapshot.
func NewGRPCServer(source StatusSource, healthServer *health.Server, opts ...grpc.ServerOption) *grpc.Server {
	grpcServer := grpc.NewServer(opts...)

	RegisterMonitorServiceServer(grpcServer, NewServer(source))
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	healthServer.SetServingStatus(ServiceName, servingStatus(source.Snapshot().State))

	return grpcServer
}

// Serve runs grpcServer on lis and blocks until ctx is canceled or the
// server stops.
func Serve(ctx context.Context, grpcServer *grpc.Server, lis net.Listener) error {
	ctx = logger.WithName(ctx, "grpc-monitor")

	logger.InfoKV(ctx, "gRPC monitor listening", "listen_address", lis.Addr().String())

	// stopped is closed when Serve returns; done once the shutdown goroutine
	// has finished, so Serve never outlives it.
	stopped := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)

		select {
		case <-ctx.Done():
			logger.Info(ctx, "Shutting down gRPC monitor")
			grpcServer.GracefulStop()
		case <-stopped:
		}
	}()

	err := grpcServer.Serve(lis)

	close(stopped)
	<-done

	if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC monitor: %w", err)
	}

	logger.Info(ctx, "gRPC monitor stopped")

	return nil
}

// HealthObserver keeps the health service in line with the machine state.
type HealthObserver struct {
	// health is the server whose status is updated.
	health *health.Server
}

var _ driver.Observer = (*HealthObserver)(nil)

// NewHealthObserver returns an observer updating healthServer.
func NewHealthObserver(healthServer *health.Server) *HealthObserver {
	return &HealthObserver{
		health: healthServer,
	}
}

// ObserveCycle implements driver.Observer.
func (h *HealthObserver) ObserveCycle(_ context.Context, snapshot driver.Snapshot, _ dialysis.Cycle) {
	h.health.SetServingStatus(ServiceName, servingStatus(snapshot.State))
}

// servingStatus maps latched critical states to NOT_SERVING.
func servingStatus(state dialysis.MachineState) healthpb.HealthCheckResponse_ServingStatus {
	if state.IsCritical() {
		return healthpb.HealthCheckResponse_NOT_SERVING
	}

	return healthpb.HealthCheckResponse_SERVING
}
