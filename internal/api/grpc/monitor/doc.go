// Package monitor implements the read-only gRPC monitor of the simulator.
//
// MonitorService/GetStatus returns the latest driver snapshot as a
// google.protobuf.Struct, and the standard grpc.health.v1 service reports
// NOT_SERVING while a critical state is latched. No RPC changes the machine.
package monitor
