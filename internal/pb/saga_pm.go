package pb

import (
	"fmt"

	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// SagaOrigin marks a CommandBook as saga/process-manager-issued: which saga
// produced it, which aggregate and event triggered it (for the revocation
// path, §4.5), and how deep the cascade chain that produced it already runs
// (for the depth limit and cycle detection, §4.5/§9).
type SagaOrigin struct {
	SagaName                string `protobuf:"bytes,1,opt,name=saga_name,json=sagaName,proto3" json:"saga_name,omitempty"`
	TriggeringAggregate     *Cover `protobuf:"bytes,2,opt,name=triggering_aggregate,json=triggeringAggregate,proto3" json:"triggering_aggregate,omitempty"`
	TriggeringEventSequence uint32 `protobuf:"varint,3,opt,name=triggering_event_sequence,json=triggeringEventSequence,proto3" json:"triggering_event_sequence,omitempty"`
	Depth                   uint32 `protobuf:"varint,4,opt,name=depth,proto3" json:"depth,omitempty"`
}

func (m *SagaOrigin) Reset() { *m = SagaOrigin{} }
func (m *SagaOrigin) String() string {
	return fmt.Sprintf("SagaOrigin{%s depth=%d}", m.GetSagaName(), m.GetDepth())
}
func (*SagaOrigin) ProtoMessage() {}

func (m *SagaOrigin) GetSagaName() string {
	if m != nil {
		return m.SagaName
	}
	return ""
}
func (m *SagaOrigin) GetTriggeringAggregate() *Cover {
	if m != nil {
		return m.TriggeringAggregate
	}
	return nil
}
func (m *SagaOrigin) GetTriggeringEventSequence() uint32 {
	if m != nil {
		return m.TriggeringEventSequence
	}
	return 0
}
func (m *SagaOrigin) GetDepth() uint32 {
	if m != nil {
		return m.Depth
	}
	return 0
}

// ContextualCommand is what the Aggregate Coordinator sends to business
// logic: the command to handle plus the target aggregate's current,
// possibly-snapshotted EventBook.
type ContextualCommand struct {
	Command *CommandBook `protobuf:"bytes,1,opt,name=command,proto3" json:"command,omitempty"`
	Events  *EventBook   `protobuf:"bytes,2,opt,name=events,proto3" json:"events,omitempty"`
}

func (m *ContextualCommand) Reset()         { *m = ContextualCommand{} }
func (m *ContextualCommand) String() string { return "ContextualCommand{...}" }
func (*ContextualCommand) ProtoMessage()    {}

func (m *ContextualCommand) GetCommand() *CommandBook {
	if m != nil {
		return m.Command
	}
	return nil
}
func (m *ContextualCommand) GetEvents() *EventBook {
	if m != nil {
		return m.Events
	}
	return nil
}

// SagaResponse is the set of commands a saga wants dispatched as a result of
// its triggering event.
type SagaResponse struct {
	Commands []*CommandBook `protobuf:"bytes,1,rep,name=commands,proto3" json:"commands,omitempty"`
}

func (m *SagaResponse) Reset()         { *m = SagaResponse{} }
func (m *SagaResponse) String() string { return fmt.Sprintf("SagaResponse{%d commands}", len(m.GetCommands())) }
func (*SagaResponse) ProtoMessage()    {}

func (m *SagaResponse) GetCommands() []*CommandBook {
	if m != nil {
		return m.Commands
	}
	return nil
}

// ProcessManagerPrepareRequest is sent once per triggering event, before
// Handle, so a process manager can declare which additional aggregates it
// needs loaded alongside its own state.
type ProcessManagerPrepareRequest struct {
	Trigger      *EventBook `protobuf:"bytes,1,opt,name=trigger,proto3" json:"trigger,omitempty"`
	ProcessState *EventBook `protobuf:"bytes,2,opt,name=process_state,json=processState,proto3" json:"process_state,omitempty"`
}

func (m *ProcessManagerPrepareRequest) Reset()         { *m = ProcessManagerPrepareRequest{} }
func (m *ProcessManagerPrepareRequest) String() string { return "ProcessManagerPrepareRequest{...}" }
func (*ProcessManagerPrepareRequest) ProtoMessage()    {}

func (m *ProcessManagerPrepareRequest) GetTrigger() *EventBook {
	if m != nil {
		return m.Trigger
	}
	return nil
}
func (m *ProcessManagerPrepareRequest) GetProcessState() *EventBook {
	if m != nil {
		return m.ProcessState
	}
	return nil
}

type ProcessManagerPrepareResponse struct {
	Destinations []*Cover `protobuf:"bytes,1,rep,name=destinations,proto3" json:"destinations,omitempty"`
}

func (m *ProcessManagerPrepareResponse) Reset()         { *m = ProcessManagerPrepareResponse{} }
func (m *ProcessManagerPrepareResponse) String() string { return "ProcessManagerPrepareResponse{...}" }
func (*ProcessManagerPrepareResponse) ProtoMessage()    {}

func (m *ProcessManagerPrepareResponse) GetDestinations() []*Cover {
	if m != nil {
		return m.Destinations
	}
	return nil
}

// ProcessManagerHandleRequest carries everything Handle needs: the
// triggering event, the process manager's own aggregate state (keyed by
// correlation id), and the EventBooks of the destinations it declared.
type ProcessManagerHandleRequest struct {
	Trigger      *EventBook   `protobuf:"bytes,1,opt,name=trigger,proto3" json:"trigger,omitempty"`
	ProcessState *EventBook   `protobuf:"bytes,2,opt,name=process_state,json=processState,proto3" json:"process_state,omitempty"`
	Destinations []*EventBook `protobuf:"bytes,3,rep,name=destinations,proto3" json:"destinations,omitempty"`
}

func (m *ProcessManagerHandleRequest) Reset()         { *m = ProcessManagerHandleRequest{} }
func (m *ProcessManagerHandleRequest) String() string { return "ProcessManagerHandleRequest{...}" }
func (*ProcessManagerHandleRequest) ProtoMessage()    {}

func (m *ProcessManagerHandleRequest) GetTrigger() *EventBook {
	if m != nil {
		return m.Trigger
	}
	return nil
}
func (m *ProcessManagerHandleRequest) GetProcessState() *EventBook {
	if m != nil {
		return m.ProcessState
	}
	return nil
}
func (m *ProcessManagerHandleRequest) GetDestinations() []*EventBook {
	if m != nil {
		return m.Destinations
	}
	return nil
}

// ProcessManagerHandleResponse carries the commands to dispatch plus new
// events the process manager wants appended to its own aggregate state.
type ProcessManagerHandleResponse struct {
	Commands      []*CommandBook `protobuf:"bytes,1,rep,name=commands,proto3" json:"commands,omitempty"`
	ProcessEvents []*EventPage   `protobuf:"bytes,2,rep,name=process_events,json=processEvents,proto3" json:"process_events,omitempty"`
}

func (m *ProcessManagerHandleResponse) Reset()         { *m = ProcessManagerHandleResponse{} }
func (m *ProcessManagerHandleResponse) String() string { return "ProcessManagerHandleResponse{...}" }
func (*ProcessManagerHandleResponse) ProtoMessage()    {}

func (m *ProcessManagerHandleResponse) GetCommands() []*CommandBook {
	if m != nil {
		return m.Commands
	}
	return nil
}
func (m *ProcessManagerHandleResponse) GetProcessEvents() []*EventPage {
	if m != nil {
		return m.ProcessEvents
	}
	return nil
}

// Subscription declares a domain + event type-url suffix a process manager
// wants to be triggered by, returned from GetSubscriptions at startup.
type Subscription struct {
	Domain        string `protobuf:"bytes,1,opt,name=domain,proto3" json:"domain,omitempty"`
	EventTypeUrl  string `protobuf:"bytes,2,opt,name=event_type_url,json=eventTypeUrl,proto3" json:"event_type_url,omitempty"`
}

func (m *Subscription) Reset()         { *m = Subscription{} }
func (m *Subscription) String() string { return fmt.Sprintf("Subscription{%s/%s}", m.GetDomain(), m.GetEventTypeUrl()) }
func (*Subscription) ProtoMessage()    {}

func (m *Subscription) GetDomain() string {
	if m != nil {
		return m.Domain
	}
	return ""
}
func (m *Subscription) GetEventTypeUrl() string {
	if m != nil {
		return m.EventTypeUrl
	}
	return ""
}

type GetSubscriptionsRequest struct{}

func (m *GetSubscriptionsRequest) Reset()         { *m = GetSubscriptionsRequest{} }
func (m *GetSubscriptionsRequest) String() string { return "GetSubscriptionsRequest{}" }
func (*GetSubscriptionsRequest) ProtoMessage()    {}

type GetSubscriptionsResponse struct {
	Subscriptions []*Subscription `protobuf:"bytes,1,rep,name=subscriptions,proto3" json:"subscriptions,omitempty"`
}

func (m *GetSubscriptionsResponse) Reset()         { *m = GetSubscriptionsResponse{} }
func (m *GetSubscriptionsResponse) String() string { return "GetSubscriptionsResponse{...}" }
func (*GetSubscriptionsResponse) ProtoMessage()    {}

func (m *GetSubscriptionsResponse) GetSubscriptions() []*Subscription {
	if m != nil {
		return m.Subscriptions
	}
	return nil
}

// ProcessManagerDeadlineResponse answers the timeout scheduler's periodic
// poll of one process manager instance's state: whether it currently holds a
// pending deadline and, if so, when it expires.
type ProcessManagerDeadlineResponse struct {
	HasDeadline bool                 `protobuf:"varint,1,opt,name=has_deadline,json=hasDeadline,proto3" json:"has_deadline,omitempty"`
	Deadline    *timestamppb.Timestamp `protobuf:"bytes,2,opt,name=deadline,proto3" json:"deadline,omitempty"`
}

func (m *ProcessManagerDeadlineResponse) Reset()         { *m = ProcessManagerDeadlineResponse{} }
func (m *ProcessManagerDeadlineResponse) String() string { return "ProcessManagerDeadlineResponse{...}" }
func (*ProcessManagerDeadlineResponse) ProtoMessage()    {}

func (m *ProcessManagerDeadlineResponse) GetHasDeadline() bool {
	if m != nil {
		return m.HasDeadline
	}
	return false
}
func (m *ProcessManagerDeadlineResponse) GetDeadline() *timestamppb.Timestamp {
	if m != nil {
		return m.Deadline
	}
	return nil
}

// ReplayRequest asks a business service to rebuild state from an explicit
// (snapshot, events) pair. The coordinator in this repository does not call
// Replay: neither its commutative-retry path nor DryRunHandle uses it.
type ReplayRequest struct {
	BaseSnapshot *Snapshot    `protobuf:"bytes,1,opt,name=base_snapshot,json=baseSnapshot,proto3" json:"base_snapshot,omitempty"`
	Events       []*EventPage `protobuf:"bytes,2,rep,name=events,proto3" json:"events,omitempty"`
}

func (m *ReplayRequest) Reset()         { *m = ReplayRequest{} }
func (m *ReplayRequest) String() string { return "ReplayRequest{...}" }
func (*ReplayRequest) ProtoMessage()    {}

func (m *ReplayRequest) GetBaseSnapshot() *Snapshot {
	if m != nil {
		return m.BaseSnapshot
	}
	return nil
}
func (m *ReplayRequest) GetEvents() []*EventPage {
	if m != nil {
		return m.Events
	}
	return nil
}

type ReplayResponse struct {
	State *Snapshot `protobuf:"bytes,1,opt,name=state,proto3" json:"state,omitempty"`
}

func (m *ReplayResponse) Reset()         { *m = ReplayResponse{} }
func (m *ReplayResponse) String() string { return "ReplayResponse{...}" }
func (*ReplayResponse) ProtoMessage()    {}

func (m *ReplayResponse) GetState() *Snapshot {
	if m != nil {
		return m.State
	}
	return nil
}

// DryRunRequest asks DryRunHandle to invoke the aggregate's business logic
// against current state without committing or publishing anything; no
// projector, saga or PM step is run.
type DryRunRequest struct {
	Command *CommandBook `protobuf:"bytes,1,opt,name=command,proto3" json:"command,omitempty"`
}

func (m *DryRunRequest) Reset()         { *m = DryRunRequest{} }
func (m *DryRunRequest) String() string { return "DryRunRequest{...}" }
func (*DryRunRequest) ProtoMessage()    {}

func (m *DryRunRequest) GetCommand() *CommandBook {
	if m != nil {
		return m.Command
	}
	return nil
}

type DryRunResponse struct {
	Events *EventBook `protobuf:"bytes,1,opt,name=events,proto3" json:"events,omitempty"`
}

func (m *DryRunResponse) Reset()         { *m = DryRunResponse{} }
func (m *DryRunResponse) String() string { return "DryRunResponse{...}" }
func (*DryRunResponse) ProtoMessage()    {}

func (m *DryRunResponse) GetEvents() *EventBook {
	if m != nil {
		return m.Events
	}
	return nil
}

// Projection is a single speculative or confirmed projector result streamed
// back to a caller of the projector coordinator's speculative surface.
type Projection struct {
	Cover   *Cover     `protobuf:"bytes,1,opt,name=cover,proto3" json:"cover,omitempty"`
	Payload *anypb.Any `protobuf:"bytes,2,opt,name=payload,proto3" json:"payload,omitempty"`
}

func (m *Projection) Reset()         { *m = Projection{} }
func (m *Projection) String() string { return fmt.Sprintf("Projection{%s}", m.GetCover()) }
func (*Projection) ProtoMessage()    {}

func (m *Projection) GetCover() *Cover {
	if m != nil {
		return m.Cover
	}
	return nil
}
func (m *Projection) GetPayload() *anypb.Any {
	if m != nil {
		return m.Payload
	}
	return nil
}

// ProjectionAck is a projector's response to a dispatched EventBook (§4.4):
// which projector answered, the last sequence it applied, and optionally the
// resulting projection data for a caller that wants it echoed back
// synchronously instead of read separately.
type ProjectionAck struct {
	ProjectorName       string     `protobuf:"bytes,1,opt,name=projector_name,proto3" json:"projector_name,omitempty"`
	LastSequenceApplied uint32     `protobuf:"varint,2,opt,name=last_sequence_applied,proto3" json:"last_sequence_applied,omitempty"`
	ProjectionData      *anypb.Any `protobuf:"bytes,3,opt,name=projection_data,proto3" json:"projection_data,omitempty"`
	Error               string     `protobuf:"bytes,4,opt,name=error,proto3" json:"error,omitempty"`
}

func (m *ProjectionAck) Reset() { *m = ProjectionAck{} }
func (m *ProjectionAck) String() string {
	return fmt.Sprintf("ProjectionAck{%s last=%d}", m.GetProjectorName(), m.GetLastSequenceApplied())
}
func (*ProjectionAck) ProtoMessage() {}

func (m *ProjectionAck) GetProjectorName() string {
	if m != nil {
		return m.ProjectorName
	}
	return ""
}
func (m *ProjectionAck) GetLastSequenceApplied() uint32 {
	if m != nil {
		return m.LastSequenceApplied
	}
	return 0
}
func (m *ProjectionAck) GetProjectionData() *anypb.Any {
	if m != nil {
		return m.ProjectionData
	}
	return nil
}
func (m *ProjectionAck) GetError() string {
	if m != nil {
		return m.Error
	}
	return ""
}

// GetEventBookRequest fetches a single aggregate instance's EventBook.
type GetEventBookRequest struct {
	Cover *Cover `protobuf:"bytes,1,opt,name=cover,proto3" json:"cover,omitempty"`
	Query *Query `protobuf:"bytes,2,opt,name=query,proto3" json:"query,omitempty"`
}

func (m *GetEventBookRequest) Reset()         { *m = GetEventBookRequest{} }
func (m *GetEventBookRequest) String() string { return "GetEventBookRequest{...}" }
func (*GetEventBookRequest) ProtoMessage()    {}

func (m *GetEventBookRequest) GetCover() *Cover {
	if m != nil {
		return m.Cover
	}
	return nil
}
func (m *GetEventBookRequest) GetQuery() *Query {
	if m != nil {
		return m.Query
	}
	return nil
}

// GetAggregateRootsRequest lists known root ids for a domain.
type GetAggregateRootsRequest struct {
	Domain string `protobuf:"bytes,1,opt,name=domain,proto3" json:"domain,omitempty"`
}

func (m *GetAggregateRootsRequest) Reset()         { *m = GetAggregateRootsRequest{} }
func (m *GetAggregateRootsRequest) String() string { return fmt.Sprintf("GetAggregateRootsRequest{%s}", m.GetDomain()) }
func (*GetAggregateRootsRequest) ProtoMessage()    {}

func (m *GetAggregateRootsRequest) GetDomain() string {
	if m != nil {
		return m.Domain
	}
	return ""
}

type GetAggregateRootsResponse struct {
	Roots []*UUID `protobuf:"bytes,1,rep,name=roots,proto3" json:"roots,omitempty"`
}

func (m *GetAggregateRootsResponse) Reset()         { *m = GetAggregateRootsResponse{} }
func (m *GetAggregateRootsResponse) String() string { return fmt.Sprintf("GetAggregateRootsResponse{%d}", len(m.GetRoots())) }
func (*GetAggregateRootsResponse) ProtoMessage()    {}

func (m *GetAggregateRootsResponse) GetRoots() []*UUID {
	if m != nil {
		return m.Roots
	}
	return nil
}

// SynchronizeRequest asks the query service to block until the given
// EventBook's events have all been observed by registered synchronous
// projectors — used by SyncMode SIMPLE/CASCADE callers that query
// immediately after a command response.
type SynchronizeRequest struct {
	Cover        *Cover `protobuf:"bytes,1,opt,name=cover,proto3" json:"cover,omitempty"`
	ThroughSequence uint32 `protobuf:"varint,2,opt,name=through_sequence,json=throughSequence,proto3" json:"through_sequence,omitempty"`
}

func (m *SynchronizeRequest) Reset()         { *m = SynchronizeRequest{} }
func (m *SynchronizeRequest) String() string { return "SynchronizeRequest{...}" }
func (*SynchronizeRequest) ProtoMessage()    {}

func (m *SynchronizeRequest) GetCover() *Cover {
	if m != nil {
		return m.Cover
	}
	return nil
}
func (m *SynchronizeRequest) GetThroughSequence() uint32 {
	if m != nil {
		return m.ThroughSequence
	}
	return 0
}

type SynchronizeResponse struct {
	Reached bool `protobuf:"varint,1,opt,name=reached,proto3" json:"reached,omitempty"`
}

func (m *SynchronizeResponse) Reset()         { *m = SynchronizeResponse{} }
func (m *SynchronizeResponse) String() string { return fmt.Sprintf("SynchronizeResponse{%v}", m.GetReached()) }
func (*SynchronizeResponse) ProtoMessage()    {}

func (m *SynchronizeResponse) GetReached() bool {
	if m != nil {
		return m.Reached
	}
	return false
}

// RevokeEventCommand is the command the Aggregate Coordinator builds and
// resubmits at saga_origin.triggering_aggregate when a saga-issued
// CommandBook is rejected (§4.3 revoke pathway, §4.5). The triggering
// aggregate's BusinessLogic handles it like any other command and answers
// with a BusinessResponse carrying compensation events or a
// RevocationResponse.
type RevokeEventCommand struct {
	TriggeringEventSequence uint32     `protobuf:"varint,1,opt,name=triggering_event_sequence,json=triggeringEventSequence,proto3" json:"triggering_event_sequence,omitempty"`
	SagaName                string     `protobuf:"bytes,2,opt,name=saga_name,json=sagaName,proto3" json:"saga_name,omitempty"`
	RejectionReason         string     `protobuf:"bytes,3,opt,name=rejection_reason,json=rejectionReason,proto3" json:"rejection_reason,omitempty"`
	RejectedCommand         *anypb.Any `protobuf:"bytes,4,opt,name=rejected_command,json=rejectedCommand,proto3" json:"rejected_command,omitempty"`
}

func (m *RevokeEventCommand) Reset() { *m = RevokeEventCommand{} }
func (m *RevokeEventCommand) String() string {
	return fmt.Sprintf("RevokeEventCommand{%s: %s}", m.GetSagaName(), m.GetRejectionReason())
}
func (*RevokeEventCommand) ProtoMessage() {}

func (m *RevokeEventCommand) GetTriggeringEventSequence() uint32 {
	if m != nil {
		return m.TriggeringEventSequence
	}
	return 0
}
func (m *RevokeEventCommand) GetSagaName() string {
	if m != nil {
		return m.SagaName
	}
	return ""
}
func (m *RevokeEventCommand) GetRejectionReason() string {
	if m != nil {
		return m.RejectionReason
	}
	return ""
}
func (m *RevokeEventCommand) GetRejectedCommand() *anypb.Any {
	if m != nil {
		return m.RejectedCommand
	}
	return nil
}

// SagaCompensationFailed is the guaranteed system event emitted by the
// revocation pipeline when neither compensation events nor a usable
// RevocationResponse can be obtained from the triggering aggregate (P8: a
// rejected saga command always produces a terminal, observable outcome).
type SagaCompensationFailed struct {
	SagaName        string `protobuf:"bytes,1,opt,name=saga_name,json=sagaName,proto3" json:"saga_name,omitempty"`
	Cover           *Cover `protobuf:"bytes,2,opt,name=cover,proto3" json:"cover,omitempty"`
	RejectionReason string `protobuf:"bytes,3,opt,name=rejection_reason,json=rejectionReason,proto3" json:"rejection_reason,omitempty"`
	FailureReason   string `protobuf:"bytes,4,opt,name=failure_reason,json=failureReason,proto3" json:"failure_reason,omitempty"`
}

func (m *SagaCompensationFailed) Reset() { *m = SagaCompensationFailed{} }
func (m *SagaCompensationFailed) String() string {
	return fmt.Sprintf("SagaCompensationFailed{%s: %s}", m.GetSagaName(), m.GetFailureReason())
}
func (*SagaCompensationFailed) ProtoMessage() {}

func (m *SagaCompensationFailed) GetSagaName() string {
	if m != nil {
		return m.SagaName
	}
	return ""
}
func (m *SagaCompensationFailed) GetCover() *Cover {
	if m != nil {
		return m.Cover
	}
	return nil
}
func (m *SagaCompensationFailed) GetRejectionReason() string {
	if m != nil {
		return m.RejectionReason
	}
	return ""
}
func (m *SagaCompensationFailed) GetFailureReason() string {
	if m != nil {
		return m.FailureReason
	}
	return ""
}
