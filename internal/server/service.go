package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "vetrecords.v1.RecordsService"

// RecordsServer is the server API for vetrecords.v1.RecordsService. Messages
// are protobuf well-known types so clients need no generated stubs.
type RecordsServer interface {
	StructureText(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitDocument(context.Context, *structpb.Struct) (*structpb.Struct, error)
	IngestPath(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRecord(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRecords(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportRecords(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
}

func unary[Resp any](method string, call func(RecordsServer, context.Context, *structpb.Struct) (Resp, error)) grpc.MethodDesc {
	full := "/" + ServiceName + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(RecordsServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(RecordsServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// RecordsServiceDesc describes vetrecords.v1.RecordsService for grpc.Server.RegisterService.
var RecordsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RecordsServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("StructureText", RecordsServer.StructureText),
		unary("SubmitDocument", RecordsServer.SubmitDocument),
		unary("IngestPath", RecordsServer.IngestPath),
		unary("GetRecord", RecordsServer.GetRecord),
		unary("ListRecords", RecordsServer.ListRecords),
		unary("ExportRecords", RecordsServer.ExportRecords),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vetrecords/v1/records.proto",
}

func RegisterRecordsServer(s grpc.ServiceRegistrar, srv RecordsServer) {
	s.RegisterService(&RecordsServiceDesc, srv)
}

// RecordsClient calls vetrecords.v1.RecordsService.
type RecordsClient struct {
	cc grpc.ClientConnInterface
}

func NewRecordsClient(cc grpc.ClientConnInterface) *RecordsClient {
	return &RecordsClient{cc: cc}
}

func (c *RecordsClient) invoke(ctx context.Context, method string, in *structpb.Struct, out any, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

func (c *RecordsClient) StructureText(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	return out, c.invoke(ctx, "StructureText", in, out, opts...)
}

func (c *RecordsClient) SubmitDocument(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	return out, c.invoke(ctx, "SubmitDocument", in, out, opts...)
}

func (c *RecordsClient) IngestPath(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	return out, c.invoke(ctx, "IngestPath", in, out, opts...)
}

func (c *RecordsClient) GetRecord(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	return out, c.invoke(ctx, "GetRecord", in, out, opts...)
}

func (c *RecordsClient) ListRecords(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	return out, c.invoke(ctx, "ListRecords", in, out, opts...)
}

func (c *RecordsClient) ExportRecords(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	return out, c.invoke(ctx, "ExportRecords", in, out, opts...)
}
