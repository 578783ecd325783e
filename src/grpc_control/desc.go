package grpc_control

import (
	"context"
	"errors"

	"twsclient/src/helpers"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const serviceName = "twsclient.control.v1.Control"

// ControlServer is the server side of the control service.
type ControlServer interface {
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Subscribe(context.Context, *structpb.Struct) (*wrapperspb.Int32Value, error)
	Cancel(context.Context, *wrapperspb.Int32Value) (*emptypb.Empty, error)
	GetSnapshot(context.Context, *wrapperspb.Int32Value) (*structpb.Struct, error)
	ListSnapshots(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetPolicy(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SetPolicy(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// -----------------------------------------------------------------------------
// Server plumbing
// -----------------------------------------------------------------------------

// unary builds the method entry whose handler decodes a *Req and hands it
// to call, going through the interceptor when one is installed.
func unary[Req any, Resp any](method string, call func(ControlServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ControlServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/" + method}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ControlServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetStatus", ControlServer.GetStatus),
		unary("Subscribe", ControlServer.Subscribe),
		unary("Cancel", ControlServer.Cancel),
		unary("GetSnapshot", ControlServer.GetSnapshot),
		unary("ListSnapshots", ControlServer.ListSnapshots),
		unary("GetPolicy", ControlServer.GetPolicy),
		unary("SetPolicy", ControlServer.SetPolicy),
	},
	Streams: []grpc.StreamDesc{},
}

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

// ControlClient calls a remote control service.
type ControlClient struct {
	cc grpc.ClientConnInterface
}

func NewControlClient(cc grpc.ClientConnInterface) *ControlClient {
	return &ControlClient{cc: cc}
}

func (c *ControlClient) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...)
}

func (c *ControlClient) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	return out, c.invoke(ctx, "GetStatus", &emptypb.Empty{}, out, opts...)
}

func (c *ControlClient) Subscribe(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.Int32Value, error) {
	out := new(wrapperspb.Int32Value)
	return out, c.invoke(ctx, "Subscribe", in, out, opts...)
}

func (c *ControlClient) Cancel(ctx context.Context, requestID int32, opts ...grpc.CallOption) error {
	return c.invoke(ctx, "Cancel", wrapperspb.Int32(requestID), new(emptypb.Empty), opts...)
}

func (c *ControlClient) GetSnapshot(ctx context.Context, requestID int32, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	return out, c.invoke(ctx, "GetSnapshot", wrapperspb.Int32(requestID), out, opts...)
}

func (c *ControlClient) ListSnapshots(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	return out, c.invoke(ctx, "ListSnapshots", &emptypb.Empty{}, out, opts...)
}

func (c *ControlClient) GetPolicy(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	return out, c.invoke(ctx, "GetPolicy", &emptypb.Empty{}, out, opts...)
}

func (c *ControlClient) SetPolicy(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	return out, c.invoke(ctx, "SetPolicy", in, out, opts...)
}

// -----------------------------------------------------------------------------

func codeOf(err error) codes.Code {
	switch {
	case errors.Is(err, helpers.ErrNotConnected), errors.Is(err, helpers.ErrDisconnected):
		return codes.Unavailable
	case errors.Is(err, helpers.ErrProtocolTooOld):
		return codes.Unimplemented
	case errors.Is(err, helpers.ErrUnknownSymbol), errors.Is(err, helpers.ErrUnknownSubscription):
		return codes.InvalidArgument
	}
	return codes.Internal
}
