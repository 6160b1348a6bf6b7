package remote

import (
	"context"

	"github.com/danielpatrickdp/launch-gate/internal/gate"
	"github.com/danielpatrickdp/launch-gate/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// StatusProvider returns the status to serve.
type StatusProvider func(ctx context.Context) (gate.AppUpdateStatus, error)

// StatusServer is the server API of the status service.
type StatusServer interface {
	FetchStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// #region service-desc
var statusServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*StatusServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "FetchStatus", Handler: fetchStatusHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "launchgate/v1/status.proto",
}

func fetchStatusHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StatusServer).FetchStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fetchStatusMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(StatusServer).FetchStatus(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// #endregion service-desc

// #region register
// RegisterStatusServer serves provider's status on s.
func RegisterStatusServer(s grpc.ServiceRegistrar, provider StatusProvider) {
	s.RegisterService(&statusServiceDesc, providerServer{provider: provider})
}

type providerServer struct {
	provider StatusProvider
}

func (p providerServer) FetchStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st, err := p.provider(ctx)
	if err != nil {
		return nil, status.Error(codes.Unavailable, gate.FetchMessage(err))
	}
	m, err := wire.StatusToMap(st)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode status: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode status: %v", err)
	}
	return out, nil
}

// #endregion register
