package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "screener.v1.Screener"

const (
	filterMethod    = "/" + ServiceName + "/Filter"
	chartDataMethod = "/" + ServiceName + "/ChartData"
)

// ScreenerControlServer is the server side of screener.v1.Screener. Requests and
// responses are google.protobuf.Struct values using the HTTP API field names.
type ScreenerControlServer interface {
	Filter(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ChartData(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// -----------------------------------------------------------------------------

func RegisterScreenerControlServer(s grpc.ServiceRegistrar, srv ScreenerControlServer) {
	s.RegisterService(&ScreenerServiceDesc, srv)
}

// -----------------------------------------------------------------------------

var ScreenerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ScreenerControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Filter", Handler: filterHandler},
		{MethodName: "ChartData", Handler: chartDataHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "screener/v1/screener.proto",
}

// -----------------------------------------------------------------------------

func filterHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScreenerControlServer).Filter(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: filterMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ScreenerControlServer).Filter(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// -----------------------------------------------------------------------------

func chartDataHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScreenerControlServer).ChartData(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: chartDataMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ScreenerControlServer).ChartData(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
