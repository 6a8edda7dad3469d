package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// The services below are exposed BY the gateway (coordinator side), as
// opposed to the consumed AggregateService/ProjectorService/SagaService/
// ProcessManagerService/UpcasterService in services.go, which business logic
// implements.

// --- AggregateCoordinatorService: the command ingress surface.

type AggregateCoordinatorServiceClient interface {
	Handle(ctx context.Context, in *CommandBook, opts ...grpc.CallOption) (*CommandResponse, error)
	HandleSync(ctx context.Context, in *SyncCommandBook, opts ...grpc.CallOption) (*CommandResponse, error)
	DryRunHandle(ctx context.Context, in *DryRunRequest, opts ...grpc.CallOption) (*DryRunResponse, error)
}

type AggregateCoordinatorServiceServer interface {
	Handle(context.Context, *CommandBook) (*CommandResponse, error)
	HandleSync(context.Context, *SyncCommandBook) (*CommandResponse, error)
	DryRunHandle(context.Context, *DryRunRequest) (*DryRunResponse, error)
}

type UnimplementedAggregateCoordinatorServiceServer struct{}

func (UnimplementedAggregateCoordinatorServiceServer) Handle(context.Context, *CommandBook) (*CommandResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Handle not implemented")
}
func (UnimplementedAggregateCoordinatorServiceServer) HandleSync(context.Context, *SyncCommandBook) (*CommandResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method HandleSync not implemented")
}
func (UnimplementedAggregateCoordinatorServiceServer) DryRunHandle(context.Context, *DryRunRequest) (*DryRunResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DryRunHandle not implemented")
}

func RegisterAggregateCoordinatorServiceServer(s grpc.ServiceRegistrar, srv AggregateCoordinatorServiceServer) {
	s.RegisterService(&aggregateCoordinatorServiceDesc, srv)
}

var aggregateCoordinatorServiceDesc = grpc.ServiceDesc{
	ServiceName: "angzarr.AggregateCoordinatorService",
	HandlerType: (*AggregateCoordinatorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("Handle", func(srv interface{}, ctx context.Context, in *CommandBook) (interface{}, error) {
			return srv.(AggregateCoordinatorServiceServer).Handle(ctx, in)
		}, "/angzarr.AggregateCoordinatorService/Handle"),
		unaryMethodSync("HandleSync", func(srv interface{}, ctx context.Context, in *SyncCommandBook) (interface{}, error) {
			return srv.(AggregateCoordinatorServiceServer).HandleSync(ctx, in)
		}, "/angzarr.AggregateCoordinatorService/HandleSync"),
		unaryMethodDryRun("DryRunHandle", func(srv interface{}, ctx context.Context, in *DryRunRequest) (interface{}, error) {
			return srv.(AggregateCoordinatorServiceServer).DryRunHandle(ctx, in)
		}, "/angzarr.AggregateCoordinatorService/DryRunHandle"),
	},
	Metadata: "angzarr/gateway.proto",
}

// unaryMethod/unaryMethodDryRun build a grpc.MethodDesc for a CommandBook-
// or DryRunRequest-shaped unary RPC without repeating the decode/interceptor
// boilerplate at every call site.
func unaryMethod(name string, call func(srv interface{}, ctx context.Context, in *CommandBook) (interface{}, error), fullMethod string) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(CommandBook)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv, ctx, req.(*CommandBook))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func unaryMethodSync(name string, call func(srv interface{}, ctx context.Context, in *SyncCommandBook) (interface{}, error), fullMethod string) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(SyncCommandBook)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv, ctx, req.(*SyncCommandBook))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func unaryMethodDryRun(name string, call func(srv interface{}, ctx context.Context, in *DryRunRequest) (interface{}, error), fullMethod string) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(DryRunRequest)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv, ctx, req.(*DryRunRequest))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

type aggregateCoordinatorServiceClient struct{ cc grpc.ClientConnInterface }

func NewAggregateCoordinatorServiceClient(cc grpc.ClientConnInterface) AggregateCoordinatorServiceClient {
	return &aggregateCoordinatorServiceClient{cc}
}
func (c *aggregateCoordinatorServiceClient) Handle(ctx context.Context, in *CommandBook, opts ...grpc.CallOption) (*CommandResponse, error) {
	out := new(CommandResponse)
	if err := c.cc.Invoke(ctx, "/angzarr.AggregateCoordinatorService/Handle", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
func (c *aggregateCoordinatorServiceClient) HandleSync(ctx context.Context, in *SyncCommandBook, opts ...grpc.CallOption) (*CommandResponse, error) {
	out := new(CommandResponse)
	if err := c.cc.Invoke(ctx, "/angzarr.AggregateCoordinatorService/HandleSync", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
func (c *aggregateCoordinatorServiceClient) DryRunHandle(ctx context.Context, in *DryRunRequest, opts ...grpc.CallOption) (*DryRunResponse, error) {
	out := new(DryRunResponse)
	if err := c.cc.Invoke(ctx, "/angzarr.AggregateCoordinatorService/DryRunHandle", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// --- CommandGatewayService: the public command-ingress RPC wired through
// grpc-gateway for REST/JSON transcoding.

type CommandGatewayServiceClient interface {
	Execute(ctx context.Context, in *CommandBook, opts ...grpc.CallOption) (*CommandResponse, error)
}

type CommandGatewayServiceServer interface {
	Execute(context.Context, *CommandBook) (*CommandResponse, error)
}

type UnimplementedCommandGatewayServiceServer struct{}

func (UnimplementedCommandGatewayServiceServer) Execute(context.Context, *CommandBook) (*CommandResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Execute not implemented")
}

func RegisterCommandGatewayServiceServer(s grpc.ServiceRegistrar, srv CommandGatewayServiceServer) {
	s.RegisterService(&commandGatewayServiceDesc, srv)
}

var commandGatewayServiceDesc = grpc.ServiceDesc{
	ServiceName: "angzarr.CommandGatewayService",
	HandlerType: (*CommandGatewayServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("Execute", func(srv interface{}, ctx context.Context, in *CommandBook) (interface{}, error) {
			return srv.(CommandGatewayServiceServer).Execute(ctx, in)
		}, "/angzarr.CommandGatewayService/Execute"),
	},
	Metadata: "angzarr/gateway.proto",
}

// --- EventQueryService: point reads.

type EventQueryServiceClient interface {
	GetEventBook(ctx context.Context, in *GetEventBookRequest, opts ...grpc.CallOption) (*EventBook, error)
	GetEvents(ctx context.Context, in *Query, opts ...grpc.CallOption) (*EventBook, error)
	Synchronize(ctx context.Context, in *SynchronizeRequest, opts ...grpc.CallOption) (*SynchronizeResponse, error)
	GetAggregateRoots(ctx context.Context, in *GetAggregateRootsRequest, opts ...grpc.CallOption) (*GetAggregateRootsResponse, error)
}

type EventQueryServiceServer interface {
	GetEventBook(context.Context, *GetEventBookRequest) (*EventBook, error)
	GetEvents(context.Context, *Query) (*EventBook, error)
	Synchronize(context.Context, *SynchronizeRequest) (*SynchronizeResponse, error)
	GetAggregateRoots(context.Context, *GetAggregateRootsRequest) (*GetAggregateRootsResponse, error)
}

type UnimplementedEventQueryServiceServer struct{}

func (UnimplementedEventQueryServiceServer) GetEventBook(context.Context, *GetEventBookRequest) (*EventBook, error) {
	return nil, status.Error(codes.Unimplemented, "method GetEventBook not implemented")
}
func (UnimplementedEventQueryServiceServer) GetEvents(context.Context, *Query) (*EventBook, error) {
	return nil, status.Error(codes.Unimplemented, "method GetEvents not implemented")
}
func (UnimplementedEventQueryServiceServer) Synchronize(context.Context, *SynchronizeRequest) (*SynchronizeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Synchronize not implemented")
}
func (UnimplementedEventQueryServiceServer) GetAggregateRoots(context.Context, *GetAggregateRootsRequest) (*GetAggregateRootsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAggregateRoots not implemented")
}

func RegisterEventQueryServiceServer(s grpc.ServiceRegistrar, srv EventQueryServiceServer) {
	s.RegisterService(&eventQueryServiceDesc, srv)
}

var eventQueryServiceDesc = grpc.ServiceDesc{
	ServiceName: "angzarr.EventQueryService",
	HandlerType: (*EventQueryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetEventBook", Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(GetEventBookRequest)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return srv.(EventQueryServiceServer).GetEventBook(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/angzarr.EventQueryService/GetEventBook"}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(EventQueryServiceServer).GetEventBook(ctx, req.(*GetEventBookRequest))
			}
			return interceptor(ctx, in, info, handler)
		}},
		{MethodName: "GetEvents", Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Query)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return srv.(EventQueryServiceServer).GetEvents(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/angzarr.EventQueryService/GetEvents"}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(EventQueryServiceServer).GetEvents(ctx, req.(*Query))
			}
			return interceptor(ctx, in, info, handler)
		}},
		{MethodName: "Synchronize", Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(SynchronizeRequest)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return srv.(EventQueryServiceServer).Synchronize(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/angzarr.EventQueryService/Synchronize"}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(EventQueryServiceServer).Synchronize(ctx, req.(*SynchronizeRequest))
			}
			return interceptor(ctx, in, info, handler)
		}},
		{MethodName: "GetAggregateRoots", Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(GetAggregateRootsRequest)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return srv.(EventQueryServiceServer).GetAggregateRoots(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/angzarr.EventQueryService/GetAggregateRoots"}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(EventQueryServiceServer).GetAggregateRoots(ctx, req.(*GetAggregateRootsRequest))
			}
			return interceptor(ctx, in, info, handler)
		}},
	},
	Metadata: "angzarr/query.proto",
}

type eventQueryServiceClient struct{ cc grpc.ClientConnInterface }

func NewEventQueryServiceClient(cc grpc.ClientConnInterface) EventQueryServiceClient {
	return &eventQueryServiceClient{cc}
}
func (c *eventQueryServiceClient) GetEventBook(ctx context.Context, in *GetEventBookRequest, opts ...grpc.CallOption) (*EventBook, error) {
	out := new(EventBook)
	if err := c.cc.Invoke(ctx, "/angzarr.EventQueryService/GetEventBook", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
func (c *eventQueryServiceClient) GetEvents(ctx context.Context, in *Query, opts ...grpc.CallOption) (*EventBook, error) {
	out := new(EventBook)
	if err := c.cc.Invoke(ctx, "/angzarr.EventQueryService/GetEvents", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
func (c *eventQueryServiceClient) Synchronize(ctx context.Context, in *SynchronizeRequest, opts ...grpc.CallOption) (*SynchronizeResponse, error) {
	out := new(SynchronizeResponse)
	if err := c.cc.Invoke(ctx, "/angzarr.EventQueryService/Synchronize", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
func (c *eventQueryServiceClient) GetAggregateRoots(ctx context.Context, in *GetAggregateRootsRequest, opts ...grpc.CallOption) (*GetAggregateRootsResponse, error) {
	out := new(GetAggregateRootsResponse)
	if err := c.cc.Invoke(ctx, "/angzarr.EventQueryService/GetAggregateRoots", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// --- EventStreamService: server-streaming live subscription.

type EventStreamServiceClient interface {
	Subscribe(ctx context.Context, in *Query, opts ...grpc.CallOption) (EventStreamService_SubscribeClient, error)
}

type EventStreamServiceServer interface {
	Subscribe(*Query, EventStreamService_SubscribeServer) error
}

type UnimplementedEventStreamServiceServer struct{}

func (UnimplementedEventStreamServiceServer) Subscribe(*Query, EventStreamService_SubscribeServer) error {
	return status.Error(codes.Unimplemented, "method Subscribe not implemented")
}

type EventStreamService_SubscribeServer interface {
	Send(*EventPage) error
	grpc.ServerStream
}

type eventStreamServiceSubscribeServer struct{ grpc.ServerStream }

func (x *eventStreamServiceSubscribeServer) Send(m *EventPage) error {
	return x.ServerStream.SendMsg(m)
}

type EventStreamService_SubscribeClient interface {
	Recv() (*EventPage, error)
	grpc.ClientStream
}

type eventStreamServiceSubscribeClient struct{ grpc.ClientStream }

func (x *eventStreamServiceSubscribeClient) Recv() (*EventPage, error) {
	m := new(EventPage)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func RegisterEventStreamServiceServer(s grpc.ServiceRegistrar, srv EventStreamServiceServer) {
	s.RegisterService(&eventStreamServiceDesc, srv)
}

var eventStreamServiceDesc = grpc.ServiceDesc{
	ServiceName: "angzarr.EventStreamService",
	HandlerType: (*EventStreamServiceServer)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			ServerStreams: true,
			Handler: func(srv interface{}, stream grpc.ServerStream) error {
				m := new(Query)
				if err := stream.RecvMsg(m); err != nil {
					return err
				}
				return srv.(EventStreamServiceServer).Subscribe(m, &eventStreamServiceSubscribeServer{stream})
			},
		},
	},
	Metadata: "angzarr/query.proto",
}

type eventStreamServiceClient struct{ cc grpc.ClientConnInterface }

func NewEventStreamServiceClient(cc grpc.ClientConnInterface) EventStreamServiceClient {
	return &eventStreamServiceClient{cc}
}
func (c *eventStreamServiceClient) Subscribe(ctx context.Context, in *Query, opts ...grpc.CallOption) (EventStreamService_SubscribeClient, error) {
	stream, err := c.cc.NewStream(ctx, &eventStreamServiceDesc.Streams[0], "/angzarr.EventStreamService/Subscribe", opts...)
	if err != nil {
		return nil, err
	}
	x := &eventStreamServiceSubscribeClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// --- SpeculativeService: dry-run/speculative execution surface.

type SpeculativeServiceClient interface {
	DryRunCommand(ctx context.Context, in *DryRunRequest, opts ...grpc.CallOption) (*DryRunResponse, error)
	SpeculateProjector(ctx context.Context, in *EventBook, opts ...grpc.CallOption) (*Projection, error)
	SpeculateSaga(ctx context.Context, in *EventBook, opts ...grpc.CallOption) (*SagaResponse, error)
	SpeculateProcessManager(ctx context.Context, in *ProcessManagerHandleRequest, opts ...grpc.CallOption) (*ProcessManagerHandleResponse, error)
}

type SpeculativeServiceServer interface {
	DryRunCommand(context.Context, *DryRunRequest) (*DryRunResponse, error)
	SpeculateProjector(context.Context, *EventBook) (*Projection, error)
	SpeculateSaga(context.Context, *EventBook) (*SagaResponse, error)
	SpeculateProcessManager(context.Context, *ProcessManagerHandleRequest) (*ProcessManagerHandleResponse, error)
}

type UnimplementedSpeculativeServiceServer struct{}

func (UnimplementedSpeculativeServiceServer) DryRunCommand(context.Context, *DryRunRequest) (*DryRunResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DryRunCommand not implemented")
}
func (UnimplementedSpeculativeServiceServer) SpeculateProjector(context.Context, *EventBook) (*Projection, error) {
	return nil, status.Error(codes.Unimplemented, "method SpeculateProjector not implemented")
}
func (UnimplementedSpeculativeServiceServer) SpeculateSaga(context.Context, *EventBook) (*SagaResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SpeculateSaga not implemented")
}
func (UnimplementedSpeculativeServiceServer) SpeculateProcessManager(context.Context, *ProcessManagerHandleRequest) (*ProcessManagerHandleResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SpeculateProcessManager not implemented")
}

func RegisterSpeculativeServiceServer(s grpc.ServiceRegistrar, srv SpeculativeServiceServer) {
	s.RegisterService(&speculativeServiceDesc, srv)
}

var speculativeServiceDesc = grpc.ServiceDesc{
	ServiceName: "angzarr.SpeculativeService",
	HandlerType: (*SpeculativeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "DryRunCommand", Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(DryRunRequest)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return srv.(SpeculativeServiceServer).DryRunCommand(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/angzarr.SpeculativeService/DryRunCommand"}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(SpeculativeServiceServer).DryRunCommand(ctx, req.(*DryRunRequest))
			}
			return interceptor(ctx, in, info, handler)
		}},
		{MethodName: "SpeculateProjector", Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(EventBook)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return srv.(SpeculativeServiceServer).SpeculateProjector(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/angzarr.SpeculativeService/SpeculateProjector"}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(SpeculativeServiceServer).SpeculateProjector(ctx, req.(*EventBook))
			}
			return interceptor(ctx, in, info, handler)
		}},
		{MethodName: "SpeculateSaga", Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(EventBook)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return srv.(SpeculativeServiceServer).SpeculateSaga(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/angzarr.SpeculativeService/SpeculateSaga"}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(SpeculativeServiceServer).SpeculateSaga(ctx, req.(*EventBook))
			}
			return interceptor(ctx, in, info, handler)
		}},
		{MethodName: "SpeculateProcessManager", Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(ProcessManagerHandleRequest)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return srv.(SpeculativeServiceServer).SpeculateProcessManager(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/angzarr.SpeculativeService/SpeculateProcessManager"}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(SpeculativeServiceServer).SpeculateProcessManager(ctx, req.(*ProcessManagerHandleRequest))
			}
			return interceptor(ctx, in, info, handler)
		}},
	},
	Metadata: "angzarr/gateway.proto",
}

type speculativeServiceClient struct{ cc grpc.ClientConnInterface }

func NewSpeculativeServiceClient(cc grpc.ClientConnInterface) SpeculativeServiceClient {
	return &speculativeServiceClient{cc}
}
func (c *speculativeServiceClient) DryRunCommand(ctx context.Context, in *DryRunRequest, opts ...grpc.CallOption) (*DryRunResponse, error) {
	out := new(DryRunResponse)
	if err := c.cc.Invoke(ctx, "/angzarr.SpeculativeService/DryRunCommand", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
func (c *speculativeServiceClient) SpeculateProjector(ctx context.Context, in *EventBook, opts ...grpc.CallOption) (*Projection, error) {
	out := new(Projection)
	if err := c.cc.Invoke(ctx, "/angzarr.SpeculativeService/SpeculateProjector", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
func (c *speculativeServiceClient) SpeculateSaga(ctx context.Context, in *EventBook, opts ...grpc.CallOption) (*SagaResponse, error) {
	out := new(SagaResponse)
	if err := c.cc.Invoke(ctx, "/angzarr.SpeculativeService/SpeculateSaga", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
func (c *speculativeServiceClient) SpeculateProcessManager(ctx context.Context, in *ProcessManagerHandleRequest, opts ...grpc.CallOption) (*ProcessManagerHandleResponse, error) {
	out := new(ProcessManagerHandleResponse)
	if err := c.cc.Invoke(ctx, "/angzarr.SpeculativeService/SpeculateProcessManager", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
