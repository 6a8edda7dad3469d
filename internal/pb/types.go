// Package pb holds the wire contract shared by every coordination subsystem:
// Cover, CommandBook, EventBook, and the request/response messages exchanged
// with business, projector, saga, process-manager, and upcaster services.
//
// These messages mirror angzarr's .proto schema (no .proto files are checked
// in to this repository) using the classic generated-message shape: plain
// structs with protobuf struct tags and a Reset/String/ProtoMessage method
// set. google.golang.org/protobuf/protoadapt bridges that shape to the
// modern proto.Message interface so these types marshal over gRPC and nest
// inside anypb.Any / status details exactly like protoc-gen-go output would.
package pb

import (
	"encoding/hex"
	"fmt"

	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// UUID wraps a 16-byte root identifier.
type UUID struct {
	Value []byte `protobuf:"bytes,1,opt,name=value,proto3" json:"value,omitempty"`
}

func (m *UUID) Reset()         { *m = UUID{} }
func (m *UUID) String() string { return fmt.Sprintf("UUID{%x}", m.GetValue()) }
func (*UUID) ProtoMessage()    {}

func (m *UUID) GetValue() []byte {
	if m != nil {
		return m.Value
	}
	return nil
}

// Cover identifies an aggregate instance: which domain it belongs to, which
// root it is, and the correlation id threading a command through its
// downstream effects.
type Cover struct {
	Domain        string `protobuf:"bytes,1,opt,name=domain,proto3" json:"domain,omitempty"`
	Root          *UUID  `protobuf:"bytes,2,opt,name=root,proto3" json:"root,omitempty"`
	CorrelationId string `protobuf:"bytes,3,opt,name=correlation_id,json=correlationId,proto3" json:"correlation_id,omitempty"`
}

func (m *Cover) Reset()         { *m = Cover{} }
func (m *Cover) String() string { return fmt.Sprintf("Cover{%s/%s}", m.GetDomain(), m.GetCorrelationId()) }
func (*Cover) ProtoMessage()    {}

func (m *Cover) GetDomain() string {
	if m != nil {
		return m.Domain
	}
	return ""
}
func (m *Cover) GetRoot() *UUID {
	if m != nil {
		return m.Root
	}
	return nil
}
func (m *Cover) GetCorrelationId() string {
	if m != nil {
		return m.CorrelationId
	}
	return ""
}

// RootHex returns the hex encoding of root's bytes, or "" if root is nil.
// Used as the in-memory/embedded-file key for an aggregate instance.
func RootHex(root *UUID) string {
	if root == nil {
		return ""
	}
	return hex.EncodeToString(root.GetValue())
}

// CommandPage is a single pending command in a CommandBook. Sequence is the
// expected current sequence of the target aggregate; MergeStrategy governs
// how the coordinator resolves a mismatch (see enums.go).
type CommandPage struct {
	Sequence      uint32        `protobuf:"varint,1,opt,name=sequence,proto3" json:"sequence,omitempty"`
	Command       *anypb.Any    `protobuf:"bytes,2,opt,name=command,proto3" json:"command,omitempty"`
	MergeStrategy MergeStrategy `protobuf:"varint,3,opt,name=merge_strategy,json=mergeStrategy,proto3,enum=angzarr.MergeStrategy" json:"merge_strategy,omitempty"`
}

func (m *CommandPage) Reset()         { *m = CommandPage{} }
func (m *CommandPage) String() string { return fmt.Sprintf("CommandPage{seq=%d}", m.GetSequence()) }
func (*CommandPage) ProtoMessage()    {}

func (m *CommandPage) GetSequence() uint32 {
	if m != nil {
		return m.Sequence
	}
	return 0
}
func (m *CommandPage) GetCommand() *anypb.Any {
	if m != nil {
		return m.Command
	}
	return nil
}
func (m *CommandPage) GetMergeStrategy() MergeStrategy {
	if m != nil {
		return m.MergeStrategy
	}
	return MergeStrategyCommutative
}

// CommandBook is an envelope of one or more commands destined for the same
// aggregate instance. SagaOrigin is present when a saga or process manager
// emitted this book, and drives the revocation path on rejection (§4.5).
type CommandBook struct {
	Cover      *Cover         `protobuf:"bytes,1,opt,name=cover,proto3" json:"cover,omitempty"`
	Pages      []*CommandPage `protobuf:"bytes,2,rep,name=pages,proto3" json:"pages,omitempty"`
	SagaOrigin *SagaOrigin    `protobuf:"bytes,3,opt,name=saga_origin,json=sagaOrigin,proto3" json:"saga_origin,omitempty"`
}

func (m *CommandBook) Reset()         { *m = CommandBook{} }
func (m *CommandBook) String() string { return fmt.Sprintf("CommandBook{%s, %d pages}", m.GetCover(), len(m.GetPages())) }
func (*CommandBook) ProtoMessage()    {}

func (m *CommandBook) GetCover() *Cover {
	if m != nil {
		return m.Cover
	}
	return nil
}
func (m *CommandBook) GetPages() []*CommandPage {
	if m != nil {
		return m.Pages
	}
	return nil
}
func (m *CommandBook) GetSagaOrigin() *SagaOrigin {
	if m != nil {
		return m.SagaOrigin
	}
	return nil
}

// EventPage_Payload is the oneof carried by EventPage.
type isEventPage_Payload interface{ isEventPage_Payload() }

type EventPage_Event struct {
	Event *anypb.Any `protobuf:"bytes,3,opt,name=event,proto3,oneof"`
}

func (*EventPage_Event) isEventPage_Payload() {}

// EventPage is a single committed event at a fixed sequence within an
// aggregate's history.
type EventPage struct {
	Sequence  uint32                 `protobuf:"varint,1,opt,name=sequence,proto3" json:"sequence,omitempty"`
	CreatedAt *timestamppb.Timestamp `protobuf:"bytes,2,opt,name=created_at,json=createdAt,proto3" json:"created_at,omitempty"`
	Payload   isEventPage_Payload    `protobuf_oneof:"payload"`
	// Event mirrors Payload.(*EventPage_Event).Event for direct field access;
	// kept in sync by the constructors in this package.
	Event *anypb.Any `protobuf:"bytes,3,opt,name=event,proto3" json:"event,omitempty"`
}

func (m *EventPage) Reset()         { *m = EventPage{} }
func (m *EventPage) String() string { return fmt.Sprintf("EventPage{seq=%d}", m.GetSequence()) }
func (*EventPage) ProtoMessage()    {}

func (m *EventPage) GetSequence() uint32 {
	if m != nil {
		return m.Sequence
	}
	return 0
}
func (m *EventPage) GetCreatedAt() *timestamppb.Timestamp {
	if m != nil {
		return m.CreatedAt
	}
	return nil
}
func (m *EventPage) GetEvent() *anypb.Any {
	if m != nil {
		return m.Event
	}
	return nil
}

// NewEventPage builds an EventPage with both the oneof wrapper and the
// direct Event field populated consistently.
func NewEventPage(sequence uint32, event *anypb.Any, createdAt *timestamppb.Timestamp) *EventPage {
	return &EventPage{
		Sequence:  sequence,
		CreatedAt: createdAt,
		Event:     event,
		Payload:   &EventPage_Event{Event: event},
	}
}

// Snapshot is a precomputed aggregate state as of a given sequence.
type Snapshot struct {
	Sequence  uint32                 `protobuf:"varint,1,opt,name=sequence,proto3" json:"sequence,omitempty"`
	State     *anypb.Any             `protobuf:"bytes,2,opt,name=state,proto3" json:"state,omitempty"`
	CreatedAt *timestamppb.Timestamp `protobuf:"bytes,3,opt,name=created_at,json=createdAt,proto3" json:"created_at,omitempty"`
}

func (m *Snapshot) Reset()         { *m = Snapshot{} }
func (m *Snapshot) String() string { return fmt.Sprintf("Snapshot{seq=%d}", m.GetSequence()) }
func (*Snapshot) ProtoMessage()    {}

func (m *Snapshot) GetSequence() uint32 {
	if m != nil {
		return m.Sequence
	}
	return 0
}
func (m *Snapshot) GetState() *anypb.Any {
	if m != nil {
		return m.State
	}
	return nil
}
func (m *Snapshot) GetCreatedAt() *timestamppb.Timestamp {
	if m != nil {
		return m.CreatedAt
	}
	return nil
}

// EventBook is the full (or partial, bus-delivered) history of an aggregate
// instance: an optional base Snapshot plus the EventPages layered on top.
// NextSequence is computed by the coordinator on load/assembly, never stored.
type EventBook struct {
	Cover        *Cover       `protobuf:"bytes,1,opt,name=cover,proto3" json:"cover,omitempty"`
	Snapshot     *Snapshot    `protobuf:"bytes,2,opt,name=snapshot,proto3" json:"snapshot,omitempty"`
	Pages        []*EventPage `protobuf:"bytes,3,rep,name=pages,proto3" json:"pages,omitempty"`
	NextSequence uint32       `protobuf:"varint,4,opt,name=next_sequence,json=nextSequence,proto3" json:"next_sequence,omitempty"`
}

func (m *EventBook) Reset() { *m = EventBook{} }
func (m *EventBook) String() string {
	return fmt.Sprintf("EventBook{%s, %d pages, next=%d}", m.GetCover(), len(m.GetPages()), m.GetNextSequence())
}
func (*EventBook) ProtoMessage() {}

func (m *EventBook) GetCover() *Cover {
	if m != nil {
		return m.Cover
	}
	return nil
}
func (m *EventBook) GetSnapshot() *Snapshot {
	if m != nil {
		return m.Snapshot
	}
	return nil
}
func (m *EventBook) GetPages() []*EventPage {
	if m != nil {
		return m.Pages
	}
	return nil
}
func (m *EventBook) GetNextSequence() uint32 {
	if m != nil {
		return m.NextSequence
	}
	return 0
}

// SyncCommandBook is the HandleSync request: a CommandBook plus the sync
// mode governing how long the caller waits for downstream effects (§4.3).
type SyncCommandBook struct {
	Command  *CommandBook `protobuf:"bytes,1,opt,name=command,proto3" json:"command,omitempty"`
	SyncMode SyncMode     `protobuf:"varint,2,opt,name=sync_mode,json=syncMode,proto3,enum=angzarr.SyncMode" json:"sync_mode,omitempty"`
}

func (m *SyncCommandBook) Reset()         { *m = SyncCommandBook{} }
func (m *SyncCommandBook) String() string { return fmt.Sprintf("SyncCommandBook{%s}", m.GetSyncMode()) }
func (*SyncCommandBook) ProtoMessage()    {}

func (m *SyncCommandBook) GetCommand() *CommandBook {
	if m != nil {
		return m.Command
	}
	return nil
}
func (m *SyncCommandBook) GetSyncMode() SyncMode {
	if m != nil {
		return m.SyncMode
	}
	return SyncModeNone
}

// IsComplete reports whether this EventBook carries either a base snapshot or
// a page run starting at sequence 0 — the completeness invariant required
// before an aggregate handler may rebuild state from it.
func (m *EventBook) IsComplete() bool {
	if m == nil {
		return false
	}
	if m.Snapshot != nil {
		return true
	}
	return len(m.Pages) > 0 && m.Pages[0].GetSequence() == 0
}

// CommandResponse wraps the events produced by a successful Handle call.
type CommandResponse struct {
	Events *EventBook `protobuf:"bytes,1,opt,name=events,proto3" json:"events,omitempty"`
}

func (m *CommandResponse) Reset()         { *m = CommandResponse{} }
func (m *CommandResponse) String() string { return "CommandResponse{...}" }
func (*CommandResponse) ProtoMessage()    {}

func (m *CommandResponse) GetEvents() *EventBook {
	if m != nil {
		return m.Events
	}
	return nil
}

// RevocationResponse describes how a saga's compensation handler wants a
// prior, now-invalid event treated.
type RevocationResponse struct {
	EmitSystemRevocation bool   `protobuf:"varint,1,opt,name=emit_system_revocation,json=emitSystemRevocation,proto3" json:"emit_system_revocation,omitempty"`
	SendToDeadLetterQueue bool  `protobuf:"varint,2,opt,name=send_to_dead_letter_queue,json=sendToDeadLetterQueue,proto3" json:"send_to_dead_letter_queue,omitempty"`
	Escalate             bool   `protobuf:"varint,3,opt,name=escalate,proto3" json:"escalate,omitempty"`
	Abort                bool   `protobuf:"varint,4,opt,name=abort,proto3" json:"abort,omitempty"`
	Reason               string `protobuf:"bytes,5,opt,name=reason,proto3" json:"reason,omitempty"`
}

func (m *RevocationResponse) Reset()         { *m = RevocationResponse{} }
func (m *RevocationResponse) String() string { return fmt.Sprintf("RevocationResponse{%s}", m.GetReason()) }
func (*RevocationResponse) ProtoMessage()    {}

func (m *RevocationResponse) GetEmitSystemRevocation() bool {
	if m != nil {
		return m.EmitSystemRevocation
	}
	return false
}
func (m *RevocationResponse) GetSendToDeadLetterQueue() bool {
	if m != nil {
		return m.SendToDeadLetterQueue
	}
	return false
}
func (m *RevocationResponse) GetEscalate() bool {
	if m != nil {
		return m.Escalate
	}
	return false
}
func (m *RevocationResponse) GetAbort() bool {
	if m != nil {
		return m.Abort
	}
	return false
}
func (m *RevocationResponse) GetReason() string {
	if m != nil {
		return m.Reason
	}
	return ""
}

// isBusinessResponse_Result is the oneof carried by BusinessResponse: either
// compensating Events, or a RevocationResponse declining to compensate.
type isBusinessResponse_Result interface{ isBusinessResponse_Result() }

type BusinessResponse_Events struct {
	Events *EventBook `protobuf:"bytes,1,opt,name=events,proto3,oneof"`
}
type BusinessResponse_Revocation struct {
	Revocation *RevocationResponse `protobuf:"bytes,2,opt,name=revocation,proto3,oneof"`
}

func (*BusinessResponse_Events) isBusinessResponse_Result()     {}
func (*BusinessResponse_Revocation) isBusinessResponse_Result() {}

// BusinessResponse is returned by an aggregate's RevokeEventCommand handler.
type BusinessResponse struct {
	Result isBusinessResponse_Result `protobuf_oneof:"result"`
}

func (m *BusinessResponse) Reset()         { *m = BusinessResponse{} }
func (m *BusinessResponse) String() string { return "BusinessResponse{...}" }
func (*BusinessResponse) ProtoMessage()    {}

func (m *BusinessResponse) GetEvents() *EventBook {
	if m != nil {
		if e, ok := m.Result.(*BusinessResponse_Events); ok {
			return e.Events
		}
	}
	return nil
}
func (m *BusinessResponse) GetRevocation() *RevocationResponse {
	if m != nil {
		if r, ok := m.Result.(*BusinessResponse_Revocation); ok {
			return r.Revocation
		}
	}
	return nil
}

// RejectionNotification documents why an aggregate rejected a downstream
// command, for delivery back through the originating saga/PM chain.
type RejectionNotification struct {
	IssuerName          string       `protobuf:"bytes,1,opt,name=issuer_name,json=issuerName,proto3" json:"issuer_name,omitempty"`
	IssuerType          string       `protobuf:"bytes,2,opt,name=issuer_type,json=issuerType,proto3" json:"issuer_type,omitempty"`
	SourceEventSequence uint32       `protobuf:"varint,3,opt,name=source_event_sequence,json=sourceEventSequence,proto3" json:"source_event_sequence,omitempty"`
	RejectionReason     string       `protobuf:"bytes,4,opt,name=rejection_reason,json=rejectionReason,proto3" json:"rejection_reason,omitempty"`
	RejectedCommand     *anypb.Any   `protobuf:"bytes,5,opt,name=rejected_command,json=rejectedCommand,proto3" json:"rejected_command,omitempty"`
	SourceAggregate     *Cover       `protobuf:"bytes,6,opt,name=source_aggregate,json=sourceAggregate,proto3" json:"source_aggregate,omitempty"`
}

func (m *RejectionNotification) Reset()         { *m = RejectionNotification{} }
func (m *RejectionNotification) String() string { return fmt.Sprintf("RejectionNotification{%s}", m.GetRejectionReason()) }
func (*RejectionNotification) ProtoMessage()    {}

func (m *RejectionNotification) GetIssuerName() string {
	if m != nil {
		return m.IssuerName
	}
	return ""
}
func (m *RejectionNotification) GetIssuerType() string {
	if m != nil {
		return m.IssuerType
	}
	return ""
}
func (m *RejectionNotification) GetSourceEventSequence() uint32 {
	if m != nil {
		return m.SourceEventSequence
	}
	return 0
}
func (m *RejectionNotification) GetRejectionReason() string {
	if m != nil {
		return m.RejectionReason
	}
	return ""
}
func (m *RejectionNotification) GetRejectedCommand() *anypb.Any {
	if m != nil {
		return m.RejectedCommand
	}
	return nil
}
func (m *RejectionNotification) GetSourceAggregate() *Cover {
	if m != nil {
		return m.SourceAggregate
	}
	return nil
}

// Notification wraps an arbitrary payload (typically a RejectionNotification)
// routed back to the originator of a saga/PM chain as a synthetic command.
type Notification struct {
	Payload *anypb.Any `protobuf:"bytes,1,opt,name=payload,proto3" json:"payload,omitempty"`
}

func (m *Notification) Reset()         { *m = Notification{} }
func (m *Notification) String() string { return "Notification{...}" }
func (*Notification) ProtoMessage()    {}

func (m *Notification) GetPayload() *anypb.Any {
	if m != nil {
		return m.Payload
	}
	return nil
}

// SequenceRange selects a half-open [Lower, Upper) range of events; a nil
// Upper means "through the latest known sequence".
type SequenceRange struct {
	Lower uint32  `protobuf:"varint,1,opt,name=lower,proto3" json:"lower,omitempty"`
	Upper *uint32 `protobuf:"varint,2,opt,name=upper,proto3,oneof" json:"upper,omitempty"`
}

func (m *SequenceRange) Reset()         { *m = SequenceRange{} }
func (m *SequenceRange) String() string { return fmt.Sprintf("SequenceRange{%d,%v}", m.GetLower(), m.Upper) }
func (*SequenceRange) ProtoMessage()    {}

func (m *SequenceRange) GetLower() uint32 {
	if m != nil {
		return m.Lower
	}
	return 0
}
func (m *SequenceRange) GetUpper() *uint32 {
	if m != nil {
		return m.Upper
	}
	return nil
}

type isTemporalQuery_PointInTime interface{ isTemporalQuery_PointInTime() }

type TemporalQuery_AsOfTime struct {
	AsOfTime *timestamppb.Timestamp `protobuf:"bytes,1,opt,name=as_of_time,json=asOfTime,proto3,oneof"`
}
type TemporalQuery_AsOfSequence struct {
	AsOfSequence uint32 `protobuf:"varint,2,opt,name=as_of_sequence,json=asOfSequence,proto3,oneof"`
}

func (*TemporalQuery_AsOfTime) isTemporalQuery_PointInTime()     {}
func (*TemporalQuery_AsOfSequence) isTemporalQuery_PointInTime() {}

// TemporalQuery selects a point-in-time view; matching queries always
// replay from sequence 0, skipping any snapshot.
type TemporalQuery struct {
	PointInTime isTemporalQuery_PointInTime `protobuf_oneof:"point_in_time"`
}

func (m *TemporalQuery) Reset()         { *m = TemporalQuery{} }
func (m *TemporalQuery) String() string { return "TemporalQuery{...}" }
func (*TemporalQuery) ProtoMessage()    {}

func (m *TemporalQuery) GetAsOfTime() *timestamppb.Timestamp {
	if m != nil {
		if t, ok := m.PointInTime.(*TemporalQuery_AsOfTime); ok {
			return t.AsOfTime
		}
	}
	return nil
}
func (m *TemporalQuery) GetAsOfSequence() uint32 {
	if m != nil {
		if s, ok := m.PointInTime.(*TemporalQuery_AsOfSequence); ok {
			return s.AsOfSequence
		}
	}
	return 0
}

type isQuery_Selection interface{ isQuery_Selection() }

type Query_Range struct {
	Range *SequenceRange `protobuf:"bytes,2,opt,name=range,proto3,oneof"`
}
type Query_Sequences struct {
	Sequences *SequenceSet `protobuf:"bytes,4,opt,name=sequences,proto3,oneof"`
}
type Query_Temporal struct {
	Temporal *TemporalQuery `protobuf:"bytes,3,opt,name=temporal,proto3,oneof"`
}

func (*Query_Range) isQuery_Selection()     {}
func (*Query_Sequences) isQuery_Selection() {}
func (*Query_Temporal) isQuery_Selection()  {}

// SequenceSet selects an explicit, possibly-sparse set of sequences.
type SequenceSet struct {
	Sequences []uint32 `protobuf:"varint,1,rep,packed,name=sequences,proto3" json:"sequences,omitempty"`
}

func (m *SequenceSet) Reset()         { *m = SequenceSet{} }
func (m *SequenceSet) String() string { return fmt.Sprintf("SequenceSet{%d}", len(m.GetSequences())) }
func (*SequenceSet) ProtoMessage()    {}

func (m *SequenceSet) GetSequences() []uint32 {
	if m != nil {
		return m.Sequences
	}
	return nil
}

// Query selects events/state for an aggregate instance: by sequence range
// or explicit sequence set (both use snapshots), or by temporal
// point-in-time (always replays from 0).
type Query struct {
	Cover     *Cover            `protobuf:"bytes,1,opt,name=cover,proto3" json:"cover,omitempty"`
	Selection isQuery_Selection `protobuf_oneof:"selection"`
}

func (m *Query) Reset()         { *m = Query{} }
func (m *Query) String() string { return fmt.Sprintf("Query{%s}", m.GetCover()) }
func (*Query) ProtoMessage()    {}

func (m *Query) GetCover() *Cover {
	if m != nil {
		return m.Cover
	}
	return nil
}
func (m *Query) GetRange() *SequenceRange {
	if m != nil {
		if r, ok := m.Selection.(*Query_Range); ok {
			return r.Range
		}
	}
	return nil
}
func (m *Query) GetSequences() *SequenceSet {
	if m != nil {
		if s, ok := m.Selection.(*Query_Sequences); ok {
			return s.Sequences
		}
	}
	return nil
}
func (m *Query) GetTemporal() *TemporalQuery {
	if m != nil {
		if t, ok := m.Selection.(*Query_Temporal); ok {
			return t.Temporal
		}
	}
	return nil
}
