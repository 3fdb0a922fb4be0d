package corerpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	AccountServiceName = "codeassist.core.v1.AccountService"
	StateServiceName   = "codeassist.core.v1.StateService"

	AccountLoginClickedMethod                = "/" + AccountServiceName + "/LoginClicked"
	AccountLogoutClickedMethod               = "/" + AccountServiceName + "/LogoutClicked"
	AccountSubscribeToAuthStatusUpdateMethod = "/" + AccountServiceName + "/SubscribeToAuthStatusUpdate"

	StateGetLatestStateMethod        = "/" + StateServiceName + "/GetLatestState"
	StateUpdateProviderPartialMethod = "/" + StateServiceName + "/UpdateProviderPartial"
)

// AccountServiceClient is the client API for the account service.
type AccountServiceClient interface {
	// LoginClicked starts a login for the given callback URI and returns the
	// authorization URL to open in the browser.
	LoginClicked(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	LogoutClicked(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error)
	// SubscribeToAuthStatusUpdate streams the current auth state followed by
	// every change.
	SubscribeToAuthStatusUpdate(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error)
}

type accountServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAccountServiceClient returns an AccountServiceClient over cc.
func NewAccountServiceClient(cc grpc.ClientConnInterface) AccountServiceClient {
	return &accountServiceClient{cc: cc}
}

func (c *accountServiceClient) LoginClicked(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, AccountLoginClickedMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *accountServiceClient) LogoutClicked(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, AccountLogoutClickedMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *accountServiceClient) SubscribeToAuthStatusUpdate(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &AccountServiceDesc.Streams[0], AccountSubscribeToAuthStatusUpdateMethod, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[emptypb.Empty, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// AccountServiceServer is the server API for the account service.
type AccountServiceServer interface {
	LoginClicked(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	LogoutClicked(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	SubscribeToAuthStatusUpdate(*emptypb.Empty, grpc.ServerStreamingServer[structpb.Struct]) error
}

// UnimplementedAccountServiceServer can be embedded to satisfy
// AccountServiceServer with methods that return codes.Unimplemented.
type UnimplementedAccountServiceServer struct{}

func (UnimplementedAccountServiceServer) LoginClicked(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method LoginClicked not implemented")
}

func (UnimplementedAccountServiceServer) LogoutClicked(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method LogoutClicked not implemented")
}

func (UnimplementedAccountServiceServer) SubscribeToAuthStatusUpdate(*emptypb.Empty, grpc.ServerStreamingServer[structpb.Struct]) error {
	return status.Error(codes.Unimplemented, "method SubscribeToAuthStatusUpdate not implemented")
}

// RegisterAccountServiceServer registers srv on s.
func RegisterAccountServiceServer(s grpc.ServiceRegistrar, srv AccountServiceServer) {
	s.RegisterService(&AccountServiceDesc, srv)
}

func accountLoginClickedHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AccountServiceServer).LoginClicked(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AccountLoginClickedMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AccountServiceServer).LoginClicked(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func accountLogoutClickedHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AccountServiceServer).LogoutClicked(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AccountLogoutClickedMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AccountServiceServer).LogoutClicked(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func accountSubscribeHandler(srv interface{}, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(AccountServiceServer).SubscribeToAuthStatusUpdate(in, &grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream})
}

// AccountServiceDesc describes the account service for grpc.Server.
var AccountServiceDesc = grpc.ServiceDesc{
	ServiceName: AccountServiceName,
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "LoginClicked", Handler: accountLoginClickedHandler},
		{MethodName: "LogoutClicked", Handler: accountLogoutClickedHandler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "SubscribeToAuthStatusUpdate",
			Handler:       accountSubscribeHandler,
			ServerStreams: true,
		},
	},
	Metadata: "codeassist/core/v1/account.proto",
}

// StateServiceClient is the client API for the state service.
type StateServiceClient interface {
	// GetLatestState returns the whole persisted state as a JSON document.
	GetLatestState(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	// UpdateProviderPartial applies a masked ProviderUpdate (see ToStruct).
	UpdateProviderPartial(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type stateServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewStateServiceClient returns a StateServiceClient over cc.
func NewStateServiceClient(cc grpc.ClientConnInterface) StateServiceClient {
	return &stateServiceClient{cc: cc}
}

func (c *stateServiceClient) GetLatestState(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, StateGetLatestStateMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *stateServiceClient) UpdateProviderPartial(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, StateUpdateProviderPartialMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// StateServiceServer is the server API for the state service.
type StateServiceServer interface {
	GetLatestState(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	UpdateProviderPartial(context.Context, *structpb.Struct) (*emptypb.Empty, error)
}

// RegisterStateServiceServer registers srv on s.
func RegisterStateServiceServer(s grpc.ServiceRegistrar, srv StateServiceServer) {
	s.RegisterService(&StateServiceDesc, srv)
}

func stateGetLatestStateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StateServiceServer).GetLatestState(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: StateGetLatestStateMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(StateServiceServer).GetLatestState(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func stateUpdateProviderPartialHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StateServiceServer).UpdateProviderPartial(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: StateUpdateProviderPartialMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(StateServiceServer).UpdateProviderPartial(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// StateServiceDesc describes the state service for grpc.Server.
var StateServiceDesc = grpc.ServiceDesc{
	ServiceName: StateServiceName,
	HandlerType: (*StateServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetLatestState", Handler: stateGetLatestStateHandler},
		{MethodName: "UpdateProviderPartial", Handler: stateUpdateProviderPartialHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "codeassist/core/v1/state.proto",
}
