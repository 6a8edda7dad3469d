package aggregate

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/angzarr-io/angzarr/internal/bus"
	"github.com/angzarr-io/angzarr/internal/clients"
	"github.com/angzarr-io/angzarr/internal/errs"
	"github.com/angzarr-io/angzarr/internal/pb"
	"github.com/angzarr-io/angzarr/internal/store"
	"github.com/angzarr-io/angzarr/internal/store/memdriver"
)

// fakeBusinessLogic implements pb.AggregateServiceServer with a handler func
// the test supplies, letting each test case script the one decision the
// coordinator's pipeline actually depends on: what the business logic
// returns for a given ContextualCommand.
type fakeBusinessLogic struct {
	pb.UnimplementedAggregateServiceServer
	handle func(*pb.ContextualCommand) (*pb.BusinessResponse, error)
}

func (f *fakeBusinessLogic) Handle(_ context.Context, req *pb.ContextualCommand) (*pb.BusinessResponse, error) {
	return f.handle(req)
}

// startFakeAggregateService runs srv on a loopback TCP listener and returns
// its dial address plus a teardown func, following the same in-process
// server pattern the teacher's own server_test.go uses.
func startFakeAggregateService(t *testing.T, srv pb.AggregateServiceServer) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := grpc.NewServer()
	pb.RegisterAggregateServiceServer(s, srv)
	go s.Serve(lis)
	t.Cleanup(s.Stop)
	return lis.Addr().String()
}

func newTestCoordinator(t *testing.T, handle func(*pb.ContextualCommand) (*pb.BusinessResponse, error)) (*Coordinator, store.EventStore) {
	t.Helper()
	coord, driver, _ := newTestCoordinatorWithBus(t, handle)
	return coord, driver
}

func newTestCoordinatorWithBus(t *testing.T, handle func(*pb.ContextualCommand) (*pb.BusinessResponse, error)) (*Coordinator, store.EventStore, *bus.Bus) {
	t.Helper()
	addr := startFakeAggregateService(t, &fakeBusinessLogic{handle: handle})

	registry := clients.NewRegistry()
	t.Cleanup(func() { registry.Close() })
	if err := registry.RegisterAggregate("orders", addr); err != nil {
		t.Fatalf("RegisterAggregate: %v", err)
	}

	driver, err := memdriver.New()
	if err != nil {
		t.Fatalf("memdriver.New: %v", err)
	}

	eventBus := bus.New(bus.Config{QueueDepth: 8})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := eventBus.Start(ctx); err != nil {
		t.Fatalf("bus.Start: %v", err)
	}

	coord := New(Config{LockIdleTimeout: time.Minute}, driver, driver, eventBus, registry, nil, nil)
	return coord, driver, eventBus
}

func testCommandBook(seq uint32, strategy pb.MergeStrategy) *pb.CommandBook {
	return &pb.CommandBook{
		Cover: &pb.Cover{Domain: "orders", Root: &pb.UUID{Value: []byte{0x01}}},
		Pages: []*pb.CommandPage{{
			Sequence:      seq,
			Command:       &anypb.Any{TypeUrl: "orders.PlaceOrder"},
			MergeStrategy: strategy,
		}},
	}
}

func producedEvents(cover *pb.Cover, seq uint32) *pb.EventBook {
	return &pb.EventBook{
		Cover: cover,
		Pages: []*pb.EventPage{pb.NewEventPage(seq, &anypb.Any{TypeUrl: "orders.OrderPlaced"}, timestamppb.Now())},
	}
}

func TestHandle_success_appendsAndReturnsEvents(t *testing.T) {
	coord, driver := newTestCoordinator(t, func(req *pb.ContextualCommand) (*pb.BusinessResponse, error) {
		seq := req.GetEvents().GetNextSequence()
		return &pb.BusinessResponse{Result: &pb.BusinessResponse_Events{
			Events: producedEvents(req.GetCommand().GetCover(), seq),
		}}, nil
	})

	cmd := testCommandBook(0, pb.MergeStrategyCommutative)
	resp, err := coord.Handle(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(resp.GetEvents().GetPages()) != 1 {
		t.Fatalf("expected 1 event page in response, got %d", len(resp.GetEvents().GetPages()))
	}

	pages, err := driver.Load(context.Background(), store.RootKey{Domain: "orders", RootHex: pb.RootHex(cmd.Cover.Root)}, 0, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page persisted, got %d", len(pages))
	}
}

func TestHandle_missingCover_isInvalidArgument(t *testing.T) {
	coord, _ := newTestCoordinator(t, func(*pb.ContextualCommand) (*pb.BusinessResponse, error) {
		t.Fatal("business logic should not be invoked")
		return nil, nil
	})
	_, err := coord.Handle(context.Background(), &pb.CommandBook{})
	if errs.CodeOf(err) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}

func TestHandle_unregisteredDomain_isUnavailable(t *testing.T) {
	coord, _ := newTestCoordinator(t, func(*pb.ContextualCommand) (*pb.BusinessResponse, error) {
		t.Fatal("business logic should not be invoked")
		return nil, nil
	})
	cmd := testCommandBook(0, pb.MergeStrategyCommutative)
	cmd.Cover.Domain = "customers"
	_, err := coord.Handle(context.Background(), cmd)
	if errs.CodeOf(err) != codes.Unavailable {
		t.Errorf("expected Unavailable, got %v", err)
	}
}

func TestHandle_strictMergeMismatch_abortsWithoutInvokingHandler(t *testing.T) {
	invoked := false
	coord, _ := newTestCoordinator(t, func(*pb.ContextualCommand) (*pb.BusinessResponse, error) {
		invoked = true
		return nil, nil
	})
	cmd := testCommandBook(5, pb.MergeStrategyStrict)
	_, err := coord.Handle(context.Background(), cmd)
	if errs.CodeOf(err) != codes.Aborted {
		t.Errorf("expected Aborted, got %v", err)
	}
	if invoked {
		t.Error("expected handler not to be invoked on a strict merge mismatch")
	}
}

func TestHandle_commutativeStaleSequence_invokesHandlerAgainstCurrentState(t *testing.T) {
	attempts := 0
	coord, _ := newTestCoordinator(t, func(req *pb.ContextualCommand) (*pb.BusinessResponse, error) {
		attempts++
		seq := req.GetEvents().GetNextSequence()
		return &pb.BusinessResponse{Result: &pb.BusinessResponse_Events{
			Events: producedEvents(req.GetCommand().GetCover(), seq),
		}}, nil
	})

	// A commutative command's declared sequence is a hint, not a precondition:
	// submitting sequence 5 against an empty (sequence-0) root must still
	// reach the handler, which targets next_sequence itself.
	cmd := testCommandBook(5, pb.MergeStrategyCommutative)
	_, err := coord.Handle(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected the handler invoked exactly once, got %d", attempts)
	}
}

func TestHandle_commutativeConcurrentCommands_bothConverge(t *testing.T) {
	coord, driver := newTestCoordinator(t, func(req *pb.ContextualCommand) (*pb.BusinessResponse, error) {
		seq := req.GetEvents().GetNextSequence()
		return &pb.BusinessResponse{Result: &pb.BusinessResponse_Events{
			Events: producedEvents(req.GetCommand().GetCover(), seq),
		}}, nil
	})
	cover := &pb.Cover{Domain: "orders", Root: &pb.UUID{Value: []byte{0x01}}}
	key := store.RootKey{Domain: "orders", RootHex: pb.RootHex(cover.Root)}
	for i := uint32(0); i < 5; i++ {
		if err := driver.Append(context.Background(), key, []*pb.EventPage{
			pb.NewEventPage(i, &anypb.Any{TypeUrl: "orders.OrderPlaced"}, timestamppb.Now()),
		}); err != nil {
			t.Fatalf("Append seed event %d: %v", i, err)
		}
	}

	// Two clients both declare sequence 5 (the last seen sequence at
	// submission time) with MergeStrategyCommutative; both must eventually
	// succeed, landing at sequences 5 and 6.
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			cmd := testCommandBook(5, pb.MergeStrategyCommutative)
			_, err := coord.Handle(context.Background(), cmd)
			results <- err
		}()
	}
	for i := 0; i < 2; i++ {
		if err := <-results; err != nil {
			t.Errorf("commutative command %d failed: %v", i, err)
		}
	}

	pages, err := driver.Load(context.Background(), key, 0, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(pages) != 7 {
		t.Fatalf("expected 7 pages (5 seeded + 2 commutative), got %d", len(pages))
	}
	if pages[5].Sequence != 5 || pages[6].Sequence != 6 {
		t.Errorf("expected pages at sequences 5 and 6, got %d and %d", pages[5].Sequence, pages[6].Sequence)
	}
}

func TestHandle_rejectionWithoutSagaOrigin_isConflict(t *testing.T) {
	coord, _ := newTestCoordinator(t, func(*pb.ContextualCommand) (*pb.BusinessResponse, error) {
		return &pb.BusinessResponse{}, nil
	})
	cmd := testCommandBook(0, pb.MergeStrategyCommutative)
	_, err := coord.Handle(context.Background(), cmd)
	if errs.CodeOf(err) != codes.FailedPrecondition {
		t.Errorf("expected FailedPrecondition (Conflict), got %v", err)
	}
}

func TestHandle_publishesAppendedEventsToBus(t *testing.T) {
	coord, _, eventBus := newTestCoordinatorWithBus(t, func(req *pb.ContextualCommand) (*pb.BusinessResponse, error) {
		seq := req.GetEvents().GetNextSequence()
		return &pb.BusinessResponse{Result: &pb.BusinessResponse_Events{
			Events: producedEvents(req.GetCommand().GetCover(), seq),
		}}, nil
	})

	delivered := make(chan bus.Message, 1)
	if _, err := eventBus.Subscribe("orders", func(_ context.Context, msg bus.Message) error {
		delivered <- msg
		return nil
	}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	cmd := testCommandBook(0, pb.MergeStrategyCommutative)
	if _, err := coord.Handle(context.Background(), cmd); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	select {
	case msg := <-delivered:
		if msg.Page.Sequence != 0 {
			t.Errorf("expected delivered page seq 0, got %d", msg.Page.Sequence)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published event")
	}
}

func TestDryRunHandle_doesNotPersistEvents(t *testing.T) {
	coord, driver := newTestCoordinator(t, func(req *pb.ContextualCommand) (*pb.BusinessResponse, error) {
		seq := req.GetEvents().GetNextSequence()
		return &pb.BusinessResponse{Result: &pb.BusinessResponse_Events{
			Events: producedEvents(req.GetCommand().GetCover(), seq),
		}}, nil
	})

	cmd := testCommandBook(0, pb.MergeStrategyCommutative)
	resp, err := coord.DryRunHandle(context.Background(), &pb.DryRunRequest{Command: cmd})
	if err != nil {
		t.Fatalf("DryRunHandle: %v", err)
	}
	if len(resp.GetEvents().GetPages()) != 1 {
		t.Fatalf("expected 1 previewed page, got %d", len(resp.GetEvents().GetPages()))
	}

	pages, err := driver.Load(context.Background(), store.RootKey{Domain: "orders", RootHex: pb.RootHex(cmd.Cover.Root)}, 0, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(pages) != 0 {
		t.Fatalf("expected dry run to persist nothing, got %d pages", len(pages))
	}
}

func TestDryRunHandle_rejection_isInvalidArgument(t *testing.T) {
	coord, _ := newTestCoordinator(t, func(*pb.ContextualCommand) (*pb.BusinessResponse, error) {
		return &pb.BusinessResponse{Result: &pb.BusinessResponse_Revocation{
			Revocation: &pb.RevocationResponse{Reason: "insufficient inventory"},
		}}, nil
	})
	cmd := testCommandBook(0, pb.MergeStrategyCommutative)
	_, err := coord.DryRunHandle(context.Background(), &pb.DryRunRequest{Command: cmd})
	if errs.CodeOf(err) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}

func TestAppendSystemEvent_appendsOneEventAtNextSequence(t *testing.T) {
	coord, driver := newTestCoordinator(t, func(*pb.ContextualCommand) (*pb.BusinessResponse, error) {
		t.Fatal("system events bypass business logic")
		return nil, nil
	})
	cover := &pb.Cover{Domain: "orders", Root: &pb.UUID{Value: []byte{0x02}}}
	book, err := coord.AppendSystemEvent(context.Background(), cover, &anypb.Any{TypeUrl: "orders.SagaCompensationFailed"})
	if err != nil {
		t.Fatalf("AppendSystemEvent: %v", err)
	}
	if book.NextSequence != 1 {
		t.Errorf("expected next_sequence 1, got %d", book.NextSequence)
	}

	pages, err := driver.Load(context.Background(), store.RootKey{Domain: "orders", RootHex: pb.RootHex(cover.Root)}, 0, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 persisted page, got %d", len(pages))
	}
}

func TestAppendSystemEvents_batchIsContiguous(t *testing.T) {
	coord, driver := newTestCoordinator(t, func(*pb.ContextualCommand) (*pb.BusinessResponse, error) {
		t.Fatal("system events bypass business logic")
		return nil, nil
	})
	cover := &pb.Cover{Domain: "orders", Root: &pb.UUID{Value: []byte{0x03}}}
	events := []*anypb.Any{
		{TypeUrl: "orders.PmStarted"},
		{TypeUrl: "orders.PmAdvanced"},
	}
	book, err := coord.AppendSystemEvents(context.Background(), cover, events)
	if err != nil {
		t.Fatalf("AppendSystemEvents: %v", err)
	}
	if book.NextSequence != 2 {
		t.Errorf("expected next_sequence 2, got %d", book.NextSequence)
	}

	pages, err := driver.Load(context.Background(), store.RootKey{Domain: "orders", RootHex: pb.RootHex(cover.Root)}, 0, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(pages) != 2 || pages[0].Sequence != 0 || pages[1].Sequence != 1 {
		t.Fatalf("expected contiguous sequences 0,1, got %+v", pages)
	}
}

func TestAppendSystemEvents_empty_returnsCurrentBookUnchanged(t *testing.T) {
	coord, _ := newTestCoordinator(t, func(*pb.ContextualCommand) (*pb.BusinessResponse, error) {
		t.Fatal("system events bypass business logic")
		return nil, nil
	})
	cover := &pb.Cover{Domain: "orders", Root: &pb.UUID{Value: []byte{0x04}}}
	book, err := coord.AppendSystemEvents(context.Background(), cover, nil)
	if err != nil {
		t.Fatalf("AppendSystemEvents: %v", err)
	}
	if book.NextSequence != 0 {
		t.Errorf("expected next_sequence 0 for an untouched root, got %d", book.NextSequence)
	}
}

func TestHandleRevoke_appliesCompensationEvents(t *testing.T) {
	coord, driver := newTestCoordinator(t, func(req *pb.ContextualCommand) (*pb.BusinessResponse, error) {
		seq := req.GetEvents().GetNextSequence()
		return &pb.BusinessResponse{Result: &pb.BusinessResponse_Events{
			Events: producedEvents(req.GetCommand().GetCover(), seq),
		}}, nil
	})
	target := &pb.Cover{Domain: "orders", Root: &pb.UUID{Value: []byte{0x05}}}
	revoke := &pb.RevokeEventCommand{SagaName: "loyalty", RejectionReason: "inventory unavailable"}

	resp, err := coord.HandleRevoke(context.Background(), target, revoke)
	if err != nil {
		t.Fatalf("HandleRevoke: %v", err)
	}
	if resp.GetEvents() == nil {
		t.Fatal("expected compensation events in response")
	}

	pages, err := driver.Load(context.Background(), store.RootKey{Domain: "orders", RootHex: pb.RootHex(target.Root)}, 0, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected compensation event to be persisted, got %d pages", len(pages))
	}
}

func TestHandle_businessLogicError_isUnavailable(t *testing.T) {
	coord, _ := newTestCoordinator(t, func(*pb.ContextualCommand) (*pb.BusinessResponse, error) {
		return nil, status.Error(codes.Internal, "boom")
	})
	cmd := testCommandBook(0, pb.MergeStrategyCommutative)
	_, err := coord.Handle(context.Background(), cmd)
	if errs.CodeOf(err) != codes.Unavailable {
		t.Errorf("expected Unavailable, got %v", err)
	}
}

func TestHandle_nonContiguousProducedPages_isInternal(t *testing.T) {
	coord, _ := newTestCoordinator(t, func(req *pb.ContextualCommand) (*pb.BusinessResponse, error) {
		cover := req.GetCommand().GetCover()
		return &pb.BusinessResponse{Result: &pb.BusinessResponse_Events{
			Events: &pb.EventBook{
				Cover: cover,
				Pages: []*pb.EventPage{pb.NewEventPage(4, &anypb.Any{}, timestamppb.Now())},
			},
		}}, nil
	})
	cmd := testCommandBook(0, pb.MergeStrategyCommutative)
	_, err := coord.Handle(context.Background(), cmd)
	if errs.CodeOf(err) != codes.Internal {
		t.Errorf("expected Internal for a non-contiguous sequence, got %v", err)
	}
}

func TestHandle_concurrentCallsForSameRoot_serializeNextSequence(t *testing.T) {
	coord, driver := newTestCoordinator(t, func(req *pb.ContextualCommand) (*pb.BusinessResponse, error) {
		seq := req.GetEvents().GetNextSequence()
		return &pb.BusinessResponse{Result: &pb.BusinessResponse_Events{
			Events: producedEvents(req.GetCommand().GetCover(), seq),
		}}, nil
	})

	const n = 10
	errCh := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			cmd := testCommandBook(0, pb.MergeStrategyAggregateHandles)
			_, err := coord.Handle(context.Background(), cmd)
			errCh <- err
		}()
	}
	for i := 0; i < n; i++ {
		if err := <-errCh; err != nil {
			t.Errorf("concurrent Handle() call failed: %v", err)
		}
	}

	key := store.RootKey{Domain: "orders", RootHex: pb.RootHex(&pb.UUID{Value: []byte{0x01}})}
	pages, err := driver.Load(context.Background(), key, 0, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(pages) != n {
		t.Fatalf("expected %d contiguous pages from serialized concurrent commands, got %d", n, len(pages))
	}
	for i, p := range pages {
		if p.Sequence != uint32(i) {
			t.Errorf("expected page %d to have sequence %d, got %d", i, i, p.Sequence)
		}
	}
}
