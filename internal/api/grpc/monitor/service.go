package monitor

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully qualified monitor service name. The health
	// service reports under the same name.
	ServiceName = "eldig.monitor.v1.MonitorService"

	// getStatusFullMethod is the full RPC name of GetStatus.
	getStatusFullMethod = "/" + ServiceName + "/GetStatus"
)

// MonitorServiceServer is the server API of the monitor service.
type MonitorServiceServer interface {
	GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterMonitorServiceServer registers srv on the gRPC service registrar.
func RegisterMonitorServiceServer(registrar grpc.ServiceRegistrar, srv MonitorServiceServer) {
	registrar.RegisterService(&monitorServiceDesc, srv)
}

//nolint:gochecknoglobals // Service descriptors are package-level by gRPC convention.
var monitorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MonitorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetStatus",
			Handler:    getStatusHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "eldig/monitor/v1/monitor.proto",
}

func getStatusHandler(
	srv any,
	ctx context.Context, //nolint:revive // Signature is fixed by grpc.MethodHandler.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	server, _ := srv.(MonitorServiceServer)

	if interceptor == nil {
		return server.GetStatus(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: getStatusFullMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		empty, _ := req.(*emptypb.Empty)

		return server.GetStatus(ctx, empty)
	}

	return interceptor(ctx, in, info, handler)
}
