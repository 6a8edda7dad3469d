package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// The service interfaces below mirror what protoc-gen-go-grpc would emit
// from angzarr's .proto service definitions (no .proto files are checked in
// to this repository). They
// are hand-written against the same grpc.ClientConnInterface / grpc.Server
// registration pattern so callers and the gateway's own server bindings look
// exactly like generated code.

// --- AggregateService: implemented by business logic, called by the coordinator.

type AggregateServiceClient interface {
	Handle(ctx context.Context, in *ContextualCommand, opts ...grpc.CallOption) (*BusinessResponse, error)
	HandleSync(ctx context.Context, in *ContextualCommand, opts ...grpc.CallOption) (*BusinessResponse, error)
	Replay(ctx context.Context, in *ReplayRequest, opts ...grpc.CallOption) (*ReplayResponse, error)
}

type AggregateServiceServer interface {
	Handle(context.Context, *ContextualCommand) (*BusinessResponse, error)
	HandleSync(context.Context, *ContextualCommand) (*BusinessResponse, error)
	Replay(context.Context, *ReplayRequest) (*ReplayResponse, error)
}

type UnimplementedAggregateServiceServer struct{}

func (UnimplementedAggregateServiceServer) Handle(context.Context, *ContextualCommand) (*BusinessResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Handle not implemented")
}
func (UnimplementedAggregateServiceServer) HandleSync(context.Context, *ContextualCommand) (*BusinessResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method HandleSync not implemented")
}
func (UnimplementedAggregateServiceServer) Replay(context.Context, *ReplayRequest) (*ReplayResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Replay not implemented")
}

type aggregateServiceClient struct{ cc grpc.ClientConnInterface }

func NewAggregateServiceClient(cc grpc.ClientConnInterface) AggregateServiceClient {
	return &aggregateServiceClient{cc}
}
func (c *aggregateServiceClient) Handle(ctx context.Context, in *ContextualCommand, opts ...grpc.CallOption) (*BusinessResponse, error) {
	out := new(BusinessResponse)
	if err := c.cc.Invoke(ctx, "/angzarr.AggregateService/Handle", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
func (c *aggregateServiceClient) HandleSync(ctx context.Context, in *ContextualCommand, opts ...grpc.CallOption) (*BusinessResponse, error) {
	out := new(BusinessResponse)
	if err := c.cc.Invoke(ctx, "/angzarr.AggregateService/HandleSync", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
func (c *aggregateServiceClient) Replay(ctx context.Context, in *ReplayRequest, opts ...grpc.CallOption) (*ReplayResponse, error) {
	out := new(ReplayResponse)
	if err := c.cc.Invoke(ctx, "/angzarr.AggregateService/Replay", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterAggregateServiceServer(s grpc.ServiceRegistrar, srv AggregateServiceServer) {
	s.RegisterService(&aggregateServiceDesc, srv)
}

var aggregateServiceDesc = grpc.ServiceDesc{
	ServiceName: "angzarr.AggregateService",
	HandlerType: (*AggregateServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Handle", Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(ContextualCommand)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return srv.(AggregateServiceServer).Handle(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/angzarr.AggregateService/Handle"}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(AggregateServiceServer).Handle(ctx, req.(*ContextualCommand))
			}
			return interceptor(ctx, in, info, handler)
		}},
		{MethodName: "HandleSync", Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(ContextualCommand)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return srv.(AggregateServiceServer).HandleSync(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/angzarr.AggregateService/HandleSync"}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(AggregateServiceServer).HandleSync(ctx, req.(*ContextualCommand))
			}
			return interceptor(ctx, in, info, handler)
		}},
		{MethodName: "Replay", Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(ReplayRequest)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return srv.(AggregateServiceServer).Replay(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/angzarr.AggregateService/Replay"}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(AggregateServiceServer).Replay(ctx, req.(*ReplayRequest))
			}
			return interceptor(ctx, in, info, handler)
		}},
	},
	Metadata: "angzarr/aggregate.proto",
}

// --- ProjectorService: implemented by projector business logic.

type ProjectorServiceClient interface {
	Handle(ctx context.Context, in *EventBook, opts ...grpc.CallOption) (*ProjectionAck, error)
	HandleSpeculative(ctx context.Context, in *EventBook, opts ...grpc.CallOption) (*Projection, error)
}

type ProjectorServiceServer interface {
	Handle(context.Context, *EventBook) (*ProjectionAck, error)
	HandleSpeculative(context.Context, *EventBook) (*Projection, error)
}

type UnimplementedProjectorServiceServer struct{}

func (UnimplementedProjectorServiceServer) Handle(context.Context, *EventBook) (*ProjectionAck, error) {
	return nil, status.Error(codes.Unimplemented, "method Handle not implemented")
}
func (UnimplementedProjectorServiceServer) HandleSpeculative(context.Context, *EventBook) (*Projection, error) {
	return nil, status.Error(codes.Unimplemented, "method HandleSpeculative not implemented")
}

type projectorServiceClient struct{ cc grpc.ClientConnInterface }

func NewProjectorServiceClient(cc grpc.ClientConnInterface) ProjectorServiceClient {
	return &projectorServiceClient{cc}
}
func (c *projectorServiceClient) Handle(ctx context.Context, in *EventBook, opts ...grpc.CallOption) (*ProjectionAck, error) {
	out := new(ProjectionAck)
	if err := c.cc.Invoke(ctx, "/angzarr.ProjectorService/Handle", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
func (c *projectorServiceClient) HandleSpeculative(ctx context.Context, in *EventBook, opts ...grpc.CallOption) (*Projection, error) {
	out := new(Projection)
	if err := c.cc.Invoke(ctx, "/angzarr.ProjectorService/HandleSpeculative", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterProjectorServiceServer(s grpc.ServiceRegistrar, srv ProjectorServiceServer) {
	s.RegisterService(&projectorServiceDesc, srv)
}

var projectorServiceDesc = grpc.ServiceDesc{
	ServiceName: "angzarr.ProjectorService",
	HandlerType: (*ProjectorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Handle", Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(EventBook)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return srv.(ProjectorServiceServer).Handle(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/angzarr.ProjectorService/Handle"}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(ProjectorServiceServer).Handle(ctx, req.(*EventBook))
			}
			return interceptor(ctx, in, info, handler)
		}},
		{MethodName: "HandleSpeculative", Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(EventBook)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return srv.(ProjectorServiceServer).HandleSpeculative(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/angzarr.ProjectorService/HandleSpeculative"}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(ProjectorServiceServer).HandleSpeculative(ctx, req.(*EventBook))
			}
			return interceptor(ctx, in, info, handler)
		}},
	},
	Metadata: "angzarr/projector.proto",
}

// --- SagaService: implemented by saga business logic. One step: a saga
// reacts to a triggering EventBook and returns the commands it wants
// dispatched (§4.5) — unlike ProcessManagerService, there is no separate
// Prepare phase.

type SagaServiceClient interface {
	Handle(ctx context.Context, in *EventBook, opts ...grpc.CallOption) (*SagaResponse, error)
}

type SagaServiceServer interface {
	Handle(context.Context, *EventBook) (*SagaResponse, error)
}

type UnimplementedSagaServiceServer struct{}

func (UnimplementedSagaServiceServer) Handle(context.Context, *EventBook) (*SagaResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Handle not implemented")
}

type sagaServiceClient struct{ cc grpc.ClientConnInterface }

func NewSagaServiceClient(cc grpc.ClientConnInterface) SagaServiceClient { return &sagaServiceClient{cc} }
func (c *sagaServiceClient) Handle(ctx context.Context, in *EventBook, opts ...grpc.CallOption) (*SagaResponse, error) {
	out := new(SagaResponse)
	if err := c.cc.Invoke(ctx, "/angzarr.SagaService/Handle", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterSagaServiceServer(s grpc.ServiceRegistrar, srv SagaServiceServer) {
	s.RegisterService(&sagaServiceDesc, srv)
}

var sagaServiceDesc = grpc.ServiceDesc{
	ServiceName: "angzarr.SagaService",
	HandlerType: (*SagaServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Handle", Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(EventBook)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return srv.(SagaServiceServer).Handle(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/angzarr.SagaService/Handle"}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(SagaServiceServer).Handle(ctx, req.(*EventBook))
			}
			return interceptor(ctx, in, info, handler)
		}},
	},
	Metadata: "angzarr/saga.proto",
}

// --- ProcessManagerService: implemented by process-manager business logic.

type ProcessManagerServiceClient interface {
	GetSubscriptions(ctx context.Context, in *GetSubscriptionsRequest, opts ...grpc.CallOption) (*GetSubscriptionsResponse, error)
	Prepare(ctx context.Context, in *ProcessManagerPrepareRequest, opts ...grpc.CallOption) (*ProcessManagerPrepareResponse, error)
	Handle(ctx context.Context, in *ProcessManagerHandleRequest, opts ...grpc.CallOption) (*ProcessManagerHandleResponse, error)
	QueryDeadline(ctx context.Context, in *EventBook, opts ...grpc.CallOption) (*ProcessManagerDeadlineResponse, error)
}

type ProcessManagerServiceServer interface {
	GetSubscriptions(context.Context, *GetSubscriptionsRequest) (*GetSubscriptionsResponse, error)
	Prepare(context.Context, *ProcessManagerPrepareRequest) (*ProcessManagerPrepareResponse, error)
	Handle(context.Context, *ProcessManagerHandleRequest) (*ProcessManagerHandleResponse, error)
	QueryDeadline(context.Context, *EventBook) (*ProcessManagerDeadlineResponse, error)
}

type UnimplementedProcessManagerServiceServer struct{}

func (UnimplementedProcessManagerServiceServer) GetSubscriptions(context.Context, *GetSubscriptionsRequest) (*GetSubscriptionsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSubscriptions not implemented")
}
func (UnimplementedProcessManagerServiceServer) Prepare(context.Context, *ProcessManagerPrepareRequest) (*ProcessManagerPrepareResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Prepare not implemented")
}
func (UnimplementedProcessManagerServiceServer) Handle(context.Context, *ProcessManagerHandleRequest) (*ProcessManagerHandleResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Handle not implemented")
}
func (UnimplementedProcessManagerServiceServer) QueryDeadline(context.Context, *EventBook) (*ProcessManagerDeadlineResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method QueryDeadline not implemented")
}

type processManagerServiceClient struct{ cc grpc.ClientConnInterface }

func NewProcessManagerServiceClient(cc grpc.ClientConnInterface) ProcessManagerServiceClient {
	return &processManagerServiceClient{cc}
}
func (c *processManagerServiceClient) GetSubscriptions(ctx context.Context, in *GetSubscriptionsRequest, opts ...grpc.CallOption) (*GetSubscriptionsResponse, error) {
	out := new(GetSubscriptionsResponse)
	if err := c.cc.Invoke(ctx, "/angzarr.ProcessManagerService/GetSubscriptions", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
func (c *processManagerServiceClient) Prepare(ctx context.Context, in *ProcessManagerPrepareRequest, opts ...grpc.CallOption) (*ProcessManagerPrepareResponse, error) {
	out := new(ProcessManagerPrepareResponse)
	if err := c.cc.Invoke(ctx, "/angzarr.ProcessManagerService/Prepare", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
func (c *processManagerServiceClient) Handle(ctx context.Context, in *ProcessManagerHandleRequest, opts ...grpc.CallOption) (*ProcessManagerHandleResponse, error) {
	out := new(ProcessManagerHandleResponse)
	if err := c.cc.Invoke(ctx, "/angzarr.ProcessManagerService/Handle", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
func (c *processManagerServiceClient) QueryDeadline(ctx context.Context, in *EventBook, opts ...grpc.CallOption) (*ProcessManagerDeadlineResponse, error) {
	out := new(ProcessManagerDeadlineResponse)
	if err := c.cc.Invoke(ctx, "/angzarr.ProcessManagerService/QueryDeadline", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterProcessManagerServiceServer(s grpc.ServiceRegistrar, srv ProcessManagerServiceServer) {
	s.RegisterService(&processManagerServiceDesc, srv)
}

var processManagerServiceDesc = grpc.ServiceDesc{
	ServiceName: "angzarr.ProcessManagerService",
	HandlerType: (*ProcessManagerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetSubscriptions", Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(GetSubscriptionsRequest)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return srv.(ProcessManagerServiceServer).GetSubscriptions(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/angzarr.ProcessManagerService/GetSubscriptions"}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(ProcessManagerServiceServer).GetSubscriptions(ctx, req.(*GetSubscriptionsRequest))
			}
			return interceptor(ctx, in, info, handler)
		}},
		{MethodName: "Prepare", Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(ProcessManagerPrepareRequest)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return srv.(ProcessManagerServiceServer).Prepare(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/angzarr.ProcessManagerService/Prepare"}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(ProcessManagerServiceServer).Prepare(ctx, req.(*ProcessManagerPrepareRequest))
			}
			return interceptor(ctx, in, info, handler)
		}},
		{MethodName: "Handle", Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(ProcessManagerHandleRequest)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return srv.(ProcessManagerServiceServer).Handle(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/angzarr.ProcessManagerService/Handle"}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(ProcessManagerServiceServer).Handle(ctx, req.(*ProcessManagerHandleRequest))
			}
			return interceptor(ctx, in, info, handler)
		}},
		{MethodName: "QueryDeadline", Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(EventBook)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return srv.(ProcessManagerServiceServer).QueryDeadline(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/angzarr.ProcessManagerService/QueryDeadline"}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(ProcessManagerServiceServer).QueryDeadline(ctx, req.(*EventBook))
			}
			return interceptor(ctx, in, info, handler)
		}},
	},
	Metadata: "angzarr/pm.proto",
}

// --- UpcasterService: optional, implemented externally.

type UpcasterServiceClient interface {
	Upcast(ctx context.Context, in *EventPage, opts ...grpc.CallOption) (*EventPage, error)
}

type UpcasterServiceServer interface {
	Upcast(context.Context, *EventPage) (*EventPage, error)
}

type upcasterServiceClient struct{ cc grpc.ClientConnInterface }

func NewUpcasterServiceClient(cc grpc.ClientConnInterface) UpcasterServiceClient {
	return &upcasterServiceClient{cc}
}
func (c *upcasterServiceClient) Upcast(ctx context.Context, in *EventPage, opts ...grpc.CallOption) (*EventPage, error) {
	out := new(EventPage)
	if err := c.cc.Invoke(ctx, "/angzarr.UpcasterService/Upcast", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
