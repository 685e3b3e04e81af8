package progression

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "d100.progression.v1.ProgressionService"

const (
	methodGetRules        = "GetRules"
	methodQuoteCost       = "QuoteCost"
	methodCreateCharacter = "CreateCharacter"
	methodUpdateCharacter = "UpdateCharacter"
	methodGetCharacter    = "GetCharacter"
	methodDeleteCharacter = "DeleteCharacter"
	methodListCharacters  = "ListCharacters"
)

// ProgressionServiceServer is the server API for the progression service.
// Payloads are well-known types carrying the public JSON contract.
type ProgressionServiceServer interface {
	GetRules(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	QuoteCost(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateCharacter(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateCharacter(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCharacter(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	DeleteCharacter(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	ListCharacters(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterProgressionServiceServer registers srv on s.
func RegisterProgressionServiceServer(s grpc.ServiceRegistrar, srv ProgressionServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes the progression service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ProgressionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: methodGetRules, Handler: unaryHandler(methodGetRules, newEmpty, ProgressionServiceServer.GetRules)},
		{MethodName: methodQuoteCost, Handler: unaryHandler(methodQuoteCost, newStruct, ProgressionServiceServer.QuoteCost)},
		{MethodName: methodCreateCharacter, Handler: unaryHandler(methodCreateCharacter, newStruct, ProgressionServiceServer.CreateCharacter)},
		{MethodName: methodUpdateCharacter, Handler: unaryHandler(methodUpdateCharacter, newStruct, ProgressionServiceServer.UpdateCharacter)},
		{MethodName: methodGetCharacter, Handler: unaryHandler(methodGetCharacter, newString, ProgressionServiceServer.GetCharacter)},
		{MethodName: methodDeleteCharacter, Handler: unaryHandler(methodDeleteCharacter, newString, ProgressionServiceServer.DeleteCharacter)},
		{MethodName: methodListCharacters, Handler: unaryHandler(methodListCharacters, newStruct, ProgressionServiceServer.ListCharacters)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "d100/progression/v1/progression.proto",
}

func newEmpty() *emptypb.Empty           { return new(emptypb.Empty) }
func newStruct() *structpb.Struct        { return new(structpb.Struct) }
func newString() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler[Req, Resp any](
	method string,
	newReq func() Req,
	call func(ProgressionServiceServer, context.Context, Req) (Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ProgressionServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ProgressionServiceServer), ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Client calls the progression service over a client connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a progression client.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) GetRules(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(methodGetRules), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) QuoteCost(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(methodQuoteCost), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCharacter(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(methodCreateCharacter), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateCharacter(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(methodUpdateCharacter), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCharacter(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(methodGetCharacter), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteCharacter(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, fullMethod(methodDeleteCharacter), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListCharacters(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(methodListCharacters), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
