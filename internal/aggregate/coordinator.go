// Package aggregate is the Aggregate Coordinator (§4.3): serializes the
// load → invoke → validate → persist → publish pipeline for one
// (domain, root) at a time, enforcing the merge-strategy concurrency
// protocol and driving the saga revocation pathway on rejection.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/angzarr-io/angzarr/internal/bus"
	"github.com/angzarr-io/angzarr/internal/clients"
	"github.com/angzarr-io/angzarr/internal/errs"
	"github.com/angzarr-io/angzarr/internal/logging"
	"github.com/angzarr-io/angzarr/internal/metrics"
	"github.com/angzarr-io/angzarr/internal/pb"
	"github.com/angzarr-io/angzarr/internal/store"
)

// Config bounds retry and snapshot behavior.
type Config struct {
	MaxConflictRetries int
	SnapshotEvery      uint32 // not read by Coordinator: snapshots are persisted only when the handler returns one
	LockIdleTimeout    time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxConflictRetries <= 0 {
		c.MaxConflictRetries = 5
	}
	return c
}

// RevocationHandler owns the full revocation state machine (RevocationResponse
// flag processing, guaranteed SagaCompensationFailed fallback, §4.5) for a
// saga-issued command rejected by its target aggregate. Implemented by
// internal/saga; a Coordinator with none set falls back to a bare rebuild-
// and-resubmit of the RevokeEventCommand with no flag handling.
type RevocationHandler interface {
	Revoke(ctx context.Context, rejected *pb.CommandBook, reason string) error
}

// Coordinator implements pb.AggregateCoordinatorServiceServer.
type Coordinator struct {
	cfg        Config
	events     store.EventStore
	snapshots  store.SnapshotStore
	bus        *bus.Bus
	registry   *clients.Registry
	metrics    *metrics.Metrics
	locks      *LockTable
	sync       *SyncWaiter
	revocation RevocationHandler
}

// SetRevocationHandler wires the Saga & Revocation Coordinator's full
// revocation state machine in. Optional: nil keeps the bare fallback.
func (c *Coordinator) SetRevocationHandler(h RevocationHandler) {
	c.revocation = h
}

// New builds a Coordinator. sync may be nil if SIMPLE/CASCADE sync modes are
// never used by the deployment (sync-mode calls then degrade to NONE).
func New(cfg Config, events store.EventStore, snapshots store.SnapshotStore, b *bus.Bus, registry *clients.Registry, m *metrics.Metrics, sync *SyncWaiter) *Coordinator {
	cfg = cfg.withDefaults()
	return &Coordinator{
		cfg:       cfg,
		events:    events,
		snapshots: snapshots,
		bus:       b,
		registry:  registry,
		metrics:   m,
		locks:     NewLockTable(cfg.LockIdleTimeout),
		sync:      sync,
	}
}

// Handle executes book with SyncMode NONE — the gateway's fire-and-forget
// entrypoint (AggregateCoordinatorService.Handle, §6).
func (c *Coordinator) Handle(ctx context.Context, book *pb.CommandBook) (*pb.CommandResponse, error) {
	return c.run(ctx, book, pb.SyncModeNone)
}

// HandleSync executes a SyncCommandBook, honoring its declared SyncMode
// (AggregateCoordinatorService.HandleSync, §6).
func (c *Coordinator) HandleSync(ctx context.Context, req *pb.SyncCommandBook) (*pb.CommandResponse, error) {
	return c.run(ctx, req.GetCommand(), req.GetSyncMode())
}

// DryRunHandle runs the business-logic invocation step of the pipeline
// against current state and returns the produced EventBook without
// appending, snapshotting, or publishing anything — used by the
// speculative-execution surface (§6) to preview a command's effect. It takes
// no root lock: a dry run never mutates state, so it can run concurrently
// with real traffic against the same root.
func (c *Coordinator) DryRunHandle(ctx context.Context, req *pb.DryRunRequest) (*pb.DryRunResponse, error) {
	book := req.GetCommand()
	cover := book.GetCover()
	if cover == nil || cover.GetRoot() == nil {
		return nil, errs.InvalidArgument("dry run command missing cover/root")
	}
	domain := cover.GetDomain()
	businessClient, ok := c.registry.Aggregate(domain)
	if !ok {
		return nil, errs.Unavailable(fmt.Sprintf("no business logic registered for domain %q", domain), nil)
	}

	current, err := store.LoadEventBook(ctx, c.events, c.snapshots, cover)
	if err != nil {
		return nil, errs.Internal("load event book", err)
	}

	bresp, err := businessClient.Handle(ctx, &pb.ContextualCommand{Command: book, Events: current})
	if err != nil {
		return nil, errs.Unavailable("business logic handle failed", err)
	}
	if bresp.GetRevocation() != nil {
		return nil, errs.InvalidArgument(fmt.Sprintf("command would be rejected: %s", bresp.GetRevocation().GetReason()))
	}
	return &pb.DryRunResponse{Events: bresp.GetEvents()}, nil
}

// run is the single implementation of §4.3's ten-step pipeline, parameterized
// by sync mode for step 9/10's response contract.
func (c *Coordinator) run(ctx context.Context, book *pb.CommandBook, syncMode pb.SyncMode) (*pb.CommandResponse, error) {
	cover := book.GetCover()
	if cover == nil || cover.GetRoot() == nil {
		return nil, errs.InvalidArgument("command book missing cover/root")
	}
	if len(book.GetPages()) == 0 {
		return nil, errs.InvalidArgument("command book has no pages")
	}

	domain := cover.GetDomain()
	businessClient, ok := c.registry.Aggregate(domain)
	if !ok {
		return nil, errs.Unavailable(fmt.Sprintf("no business logic registered for domain %q", domain), nil)
	}

	rootHex := pb.RootHex(cover.GetRoot())
	log := logging.WithAggregate(domain, rootHex, cover.GetCorrelationId())

	release := c.locks.Acquire(domain + "/" + rootHex)
	defer release()

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxConflictRetries; attempt++ {
		resp, retry, err := c.attempt(ctx, businessClient, cover, book)
		if err == nil {
			if c.metrics != nil {
				c.metrics.CommandsTotal.WithLabelValues(domain, "ok").Inc()
			}
			return c.shapeResponse(ctx, resp, syncMode)
		}
		lastErr = err
		if !retry {
			if c.metrics != nil {
				c.metrics.CommandsTotal.WithLabelValues(domain, "rejected").Inc()
			}
			return nil, err
		}
		log.Warn().Int("attempt", attempt).Err(err).Msg("sequence conflict, retrying")
	}
	if c.metrics != nil {
		c.metrics.CommandsTotal.WithLabelValues(domain, "conflict_exhausted").Inc()
	}
	// lastErr already carries FAILED_PRECONDITION and the latest EventBook
	// (§7); retries are exhausted, so it becomes the final answer.
	return nil, lastErr
}

// attempt runs steps 1-9 once. retry is true only for a storage-level
// SequenceConflict from Append, which is resolved by reloading and
// re-invoking the handler against fresh state. A COMMUTATIVE page whose
// declared sequence differs from next_sequence is not rejected.
func (c *Coordinator) attempt(ctx context.Context, businessClient pb.AggregateServiceClient, cover *pb.Cover, book *pb.CommandBook) (*pb.EventBook, bool, error) {
	// Steps 1-2: resolve current EventBook and expected sequence.
	current, err := store.LoadEventBook(ctx, c.events, c.snapshots, cover)
	if err != nil {
		return nil, false, errs.Internal("load event book", err)
	}
	expected := current.GetNextSequence()

	// Step 3: merge-strategy validation per page.
	for _, page := range book.GetPages() {
		switch page.GetMergeStrategy() {
		case pb.MergeStrategyStrict:
			if page.GetSequence() != expected {
				aborted := errs.Aborted(cover.GetDomain())
				aborted.Latest = current
				return nil, false, aborted
			}
		case pb.MergeStrategyCommutative:
			// A stale declared sequence is exactly what commutative tolerates:
			// the handler is invoked against fresh current state regardless,
			// and is expected to target current.next_sequence rather than the
			// page's own declared sequence. Real conflicts surface from the
			// storage-level append below (step 7) and retry from there.
		case pb.MergeStrategyAggregateHandles:
			// no validation; the aggregate's own response sequence is authoritative.
		}
	}

	// Step 4: invoke business logic.
	ctxCmd := &pb.ContextualCommand{Command: book, Events: current}
	bresp, err := businessClient.Handle(ctx, ctxCmd)
	if err != nil {
		return nil, false, errs.Unavailable("business logic handle failed", err)
	}

	// Step 5: rejection → revoke pathway, never persisted.
	if bresp.GetEvents() == nil {
		if book.GetSagaOrigin() != nil {
			reason := "handler rejected command without producing events"
			if c.revocation != nil {
				return nil, false, c.revocation.Revoke(ctx, book, reason)
			}
			return nil, false, c.revoke(ctx, book, reason)
		}
		return nil, false, errs.Conflict(cover.GetDomain(), current)
	}

	latest, err := c.appendAndPublish(ctx, cover, expected, book.GetPages()[0].GetMergeStrategy(), bresp.GetEvents())
	if err != nil {
		if errs.CodeOf(err) == codes.FailedPrecondition {
			return nil, true, err
		}
		return nil, false, err
	}
	return latest, false, nil
}

// appendAndPublish implements steps 6-9 of §4.3's pipeline: validate
// contiguity of the handler's produced pages, append them atomically,
// persist an optional snapshot, publish, and return the fresh EventBook.
// Shared by attempt (normal command dispatch) and HandleRevoke (compensation
// events produced by a revoke-target's handler).
func (c *Coordinator) appendAndPublish(ctx context.Context, cover *pb.Cover, expected uint32, firstPageStrategy pb.MergeStrategy, produced *pb.EventBook) (*pb.EventBook, error) {
	// Step 6: validate contiguity of returned pages.
	baseSeq := expected
	if firstPageStrategy == pb.MergeStrategyAggregateHandles && len(produced.GetPages()) > 0 {
		baseSeq = produced.GetPages()[0].GetSequence()
	}
	for i, p := range produced.GetPages() {
		if p.GetSequence() != baseSeq+uint32(i) {
			return nil, errs.Internal(fmt.Sprintf("handler produced non-contiguous sequence at index %d", i), nil)
		}
	}

	// Step 7: append atomically; storage-level conflict retries the pipeline.
	key := store.RootKey{Domain: cover.GetDomain(), RootHex: pb.RootHex(cover.GetRoot())}
	if err := c.events.Append(ctx, key, produced.GetPages()); err != nil {
		if err == store.ErrSequenceConflict {
			current, loadErr := store.LoadEventBook(ctx, c.events, c.snapshots, cover)
			if loadErr != nil {
				return nil, errs.Internal("load event book after conflict", loadErr)
			}
			return nil, errs.Conflict(cover.GetDomain(), current)
		}
		return nil, errs.Internal("append events", err)
	}

	// Step 8: persist snapshot if the handler provided one.
	if snap := produced.GetSnapshot(); snap != nil {
		if err := c.snapshots.Put(ctx, key, snap); err != nil {
			return nil, errs.Internal("persist snapshot", err)
		}
	}

	// Step 9: publish.
	latest, err := store.LoadEventBook(ctx, c.events, c.snapshots, cover)
	if err != nil {
		return nil, errs.Internal("reload after append", err)
	}
	for _, p := range produced.GetPages() {
		if c.bus != nil {
			if pubErr := c.bus.Publish(ctx, cover, p); pubErr != nil {
				logging.WithAggregate(cover.GetDomain(), key.RootHex, cover.GetCorrelationId()).
					Error().Err(pubErr).Msg("publish failed")
			}
		}
	}
	return latest, nil
}

// shapeResponse implements step 10's sync-mode contract.
func (c *Coordinator) shapeResponse(ctx context.Context, events *pb.EventBook, syncMode pb.SyncMode) (*pb.CommandResponse, error) {
	if syncMode == pb.SyncModeNone || c.sync == nil || len(events.GetPages()) == 0 {
		return &pb.CommandResponse{Events: events}, nil
	}
	last := events.GetPages()[len(events.GetPages())-1].GetSequence()
	if err := c.sync.Await(ctx, events.GetCover(), last, syncMode); err != nil {
		return nil, err
	}
	return &pb.CommandResponse{Events: events}, nil
}

// revoke is the fallback revocation path used only when no RevocationHandler
// is wired: rebuild a RevokeEventCommand and resubmit it at the chain's
// triggering aggregate through this same coordinator's normal pipeline,
// discarding any RevocationResponse flags the handler returns. A deployment
// running internal/saga always has SetRevocationHandler called instead, so
// this path only matters for tests or minimal standalone deployments.
func (c *Coordinator) revoke(ctx context.Context, rejected *pb.CommandBook, reason string) error {
	origin := rejected.GetSagaOrigin()
	rejectedAny, err := anypb.New(pb.ProtoMessageOf(rejected))
	if err != nil {
		return errs.Internal("marshal rejected command for revoke", err)
	}
	revoke := &pb.RevokeEventCommand{
		TriggeringEventSequence: origin.GetTriggeringEventSequence(),
		SagaName:                origin.GetSagaName(),
		RejectionReason:         reason,
		RejectedCommand:         rejectedAny,
	}
	revokeAny, err := anypb.New(pb.ProtoMessageOf(revoke))
	if err != nil {
		return errs.Internal("marshal revoke event command", err)
	}
	target := origin.GetTriggeringAggregate()
	revokeBook := &pb.CommandBook{
		Cover: target,
		Pages: []*pb.CommandPage{{
			Sequence:      0,
			Command:       revokeAny,
			MergeStrategy: pb.MergeStrategyAggregateHandles,
		}},
	}
	_, err = c.run(ctx, revokeBook, pb.SyncModeNone)
	return err
}

// HandleRevoke dispatches a RevokeEventCommand directly at target and
// returns the handler's raw BusinessResponse, bypassing merge-strategy
// validation (revoke commands are always AGGREGATE_HANDLES) and the retry
// loop (a revoke is not itself retried on conflict). If the response carries
// compensation Events they are appended and published exactly like a normal
// successful attempt, so the caller only needs to branch on a Revocation
// result. internal/saga calls this from its RevocationHandler implementation
// to get at RevocationResponse's flags for the full state machine (§4.5).
func (c *Coordinator) HandleRevoke(ctx context.Context, target *pb.Cover, revoke *pb.RevokeEventCommand) (*pb.BusinessResponse, error) {
	domain := target.GetDomain()
	businessClient, ok := c.registry.Aggregate(domain)
	if !ok {
		return nil, errs.Unavailable(fmt.Sprintf("no business logic registered for domain %q", domain), nil)
	}

	rootHex := pb.RootHex(target.GetRoot())
	release := c.locks.Acquire(domain + "/" + rootHex)
	defer release()

	current, err := store.LoadEventBook(ctx, c.events, c.snapshots, target)
	if err != nil {
		return nil, errs.Internal("load event book", err)
	}

	revokeAny, err := anypb.New(pb.ProtoMessageOf(revoke))
	if err != nil {
		return nil, errs.Internal("marshal revoke event command", err)
	}
	revokeBook := &pb.CommandBook{
		Cover: target,
		Pages: []*pb.CommandPage{{
			Sequence:      0,
			Command:       revokeAny,
			MergeStrategy: pb.MergeStrategyAggregateHandles,
		}},
	}

	bresp, err := businessClient.Handle(ctx, &pb.ContextualCommand{Command: revokeBook, Events: current})
	if err != nil {
		return nil, errs.Unavailable("business logic handle failed", err)
	}

	if bresp.GetEvents() != nil {
		if _, err := c.appendAndPublish(ctx, target, current.GetNextSequence(), pb.MergeStrategyAggregateHandles, bresp.GetEvents()); err != nil {
			return nil, err
		}
	}
	return bresp, nil
}

// AppendSystemEvent appends a single coordinator-originated event directly
// to cover's root, bypassing any external business logic client, and
// publishes it. Used for system events the coordination core itself emits,
// such as SagaCompensationFailed (§4.5's guaranteed fallback).
func (c *Coordinator) AppendSystemEvent(ctx context.Context, cover *pb.Cover, event *anypb.Any) (*pb.EventBook, error) {
	domain := cover.GetDomain()
	rootHex := pb.RootHex(cover.GetRoot())
	release := c.locks.Acquire(domain + "/" + rootHex)
	defer release()

	current, err := store.LoadEventBook(ctx, c.events, c.snapshots, cover)
	if err != nil {
		return nil, errs.Internal("load event book", err)
	}
	seq := current.GetNextSequence()
	produced := &pb.EventBook{Cover: cover, Pages: []*pb.EventPage{pb.NewEventPage(seq, event, timestamppb.Now())}}
	return c.appendAndPublish(ctx, cover, seq, pb.MergeStrategyAggregateHandles, produced)
}

// AppendSystemEvents is AppendSystemEvent for a batch of events appended
// atomically as one contiguous run, starting at cover's current next
// sequence. Used by internal/pm to persist a process manager's pm_events
// against its own aggregate stream (keyed by correlation_id) after Handle.
func (c *Coordinator) AppendSystemEvents(ctx context.Context, cover *pb.Cover, events []*anypb.Any) (*pb.EventBook, error) {
	if len(events) == 0 {
		return store.LoadEventBook(ctx, c.events, c.snapshots, cover)
	}
	domain := cover.GetDomain()
	rootHex := pb.RootHex(cover.GetRoot())
	release := c.locks.Acquire(domain + "/" + rootHex)
	defer release()

	current, err := store.LoadEventBook(ctx, c.events, c.snapshots, cover)
	if err != nil {
		return nil, errs.Internal("load event book", err)
	}
	seq := current.GetNextSequence()
	pages := make([]*pb.EventPage, len(events))
	for i, e := range events {
		pages[i] = pb.NewEventPage(seq+uint32(i), e, timestamppb.Now())
	}
	produced := &pb.EventBook{Cover: cover, Pages: pages}
	return c.appendAndPublish(ctx, cover, seq, pb.MergeStrategyAggregateHandles, produced)
}
