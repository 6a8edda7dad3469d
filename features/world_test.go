// Package features drives the in-process acceptance suite covering the
// Aggregate and Saga & Revocation Coordinators end to end, the same way
// internal/saga's testHarness wires a real aggregate.Coordinator and
// saga.Coordinator behind fake gRPC business-logic services.
package features

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/angzarr-io/angzarr/internal/aggregate"
	"github.com/angzarr-io/angzarr/internal/bus"
	"github.com/angzarr-io/angzarr/internal/clients"
	"github.com/angzarr-io/angzarr/internal/pb"
	"github.com/angzarr-io/angzarr/internal/query"
	"github.com/angzarr-io/angzarr/internal/saga"
	"github.com/angzarr-io/angzarr/internal/store"
	"github.com/angzarr-io/angzarr/internal/store/memdriver"
)

const fallbackDomain = "_angzarr"

// fakeAggregateService lets each scenario script its business-logic decision
// per domain without a real deployed aggregate service.
type fakeAggregateService struct {
	pb.UnimplementedAggregateServiceServer
	handle func(*pb.ContextualCommand) (*pb.BusinessResponse, error)
}

func (f *fakeAggregateService) Handle(_ context.Context, req *pb.ContextualCommand) (*pb.BusinessResponse, error) {
	return f.handle(req)
}

type fakeSagaService struct {
	pb.UnimplementedSagaServiceServer
	handle func(*pb.EventBook) (*pb.SagaResponse, error)
}

func (f *fakeSagaService) Handle(_ context.Context, book *pb.EventBook) (*pb.SagaResponse, error) {
	return f.handle(book)
}

func startGRPC(register func(*grpc.Server)) (string, func(), error) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	s := grpc.NewServer()
	register(s)
	go s.Serve(lis)
	return lis.Addr().String(), s.Stop, nil
}

// domainEvents captures every EventPage published to a domain topic, in
// delivery order, for assertions that don't want to race the bus.
type domainEvents struct {
	mu    sync.Mutex
	pages []*pb.EventPage
	cover []*pb.Cover
}

func (d *domainEvents) record(cover *pb.Cover, page *pb.EventPage) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cover = append(d.cover, cover)
	d.pages = append(d.pages, page)
}

func (d *domainEvents) snapshot() ([]*pb.Cover, []*pb.EventPage) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*pb.Cover{}, d.cover...), append([]*pb.EventPage{}, d.pages...)
}

// world holds everything one scenario needs: a real Aggregate Coordinator,
// Saga Coordinator, and Query Coordinator wired over memdriver and an
// in-process bus, plus enough scripted fake business logic to drive all
// seven end-to-end scenarios.
type world struct {
	ctx      context.Context
	cancel   context.CancelFunc
	registry *clients.Registry
	driver   *memdriver.Driver
	eventBus *bus.Bus
	agg      *aggregate.Coordinator
	sagaC    *saga.Coordinator
	query    *query.Coordinator
	stoppers []func()

	baseTime time.Time

	registered map[string]bool
	events     map[string]*domainEvents

	fulfillmentRejectAll     bool
	ordersCompensateEvent    string
	ordersDeclineCompensated bool

	roots map[string]*pb.UUID

	lastErr  error
	lastResp *pb.CommandResponse

	concurrentErrs   []error
	concurrentEvents []*pb.EventBook

	queryResult *pb.EventBook
}

func newWorld() (*world, error) {
	driver, err := memdriver.New()
	if err != nil {
		return nil, err
	}
	registry := clients.NewRegistry()
	eventBus := bus.New(bus.Config{QueueDepth: 16})
	ctx, cancel := context.WithCancel(context.Background())
	if err := eventBus.Start(ctx); err != nil {
		cancel()
		return nil, err
	}

	agg := aggregate.New(aggregate.Config{LockIdleTimeout: time.Minute}, driver, driver, eventBus, registry, nil, nil)
	sw := aggregate.NewSyncWaiter(time.Second, time.Second)
	q := query.New(driver, driver, eventBus, sw)
	sagaC := saga.New(saga.Config{MaxCascadeDepth: 5, FallbackDomain: fallbackDomain}, registry, eventBus, agg, sw, nil)

	w := &world{
		ctx:        ctx,
		cancel:     cancel,
		registry:   registry,
		driver:     driver,
		eventBus:   eventBus,
		agg:        agg,
		sagaC:      sagaC,
		query:      q,
		baseTime:   time.Now(),
		registered: make(map[string]bool),
		events:     make(map[string]*domainEvents),
		roots:      make(map[string]*pb.UUID),
	}
	// Watched eagerly: the guaranteed SagaCompensationFailed fallback can
	// land here before any step explicitly asks to observe it.
	w.watch(fallbackDomain)
	return w, nil
}

func (w *world) close() {
	for _, stop := range w.stoppers {
		stop()
	}
	w.registry.Close()
	w.cancel()
}

// rootFor returns a stable root for domain, minting one on first use.
func (w *world) rootFor(domain string) *pb.UUID {
	if r, ok := w.roots[domain]; ok {
		return r
	}
	r := &pb.UUID{Value: []byte(domain)}
	w.roots[domain] = r
	return r
}

// watch subscribes (once) to domain's bus topic so later "observes an
// event" steps never race the publish that already happened.
func (w *world) watch(domain string) *domainEvents {
	if d, ok := w.events[domain]; ok {
		return d
	}
	d := &domainEvents{}
	w.events[domain] = d
	if _, err := w.eventBus.Subscribe(domain, func(_ context.Context, msg bus.Message) error {
		d.record(msg.Cover, msg.Page)
		return nil
	}); err != nil {
		panic(fmt.Sprintf("subscribe %q: %v", domain, err))
	}
	return d
}

// eventHandler produces one event per invocation, named after the command's
// declared type ("command/X" -> "event/X"), at the store's current next
// sequence, regardless of merge strategy - the generic business logic every
// non-special-cased domain in this suite runs.
func eventHandler() func(*pb.ContextualCommand) (*pb.BusinessResponse, error) {
	return func(req *pb.ContextualCommand) (*pb.BusinessResponse, error) {
		cover := req.GetCommand().GetCover()
		seq := req.GetEvents().GetNextSequence()
		name := eventNameOf(req.GetCommand())
		eventAny := &anypb.Any{TypeUrl: "event/" + name}
		return &pb.BusinessResponse{Result: &pb.BusinessResponse_Events{
			Events: &pb.EventBook{
				Cover: cover,
				Pages: []*pb.EventPage{pb.NewEventPage(seq, eventAny, timestamppb.Now())},
			},
		}}, nil
	}
}

func eventNameOf(book *pb.CommandBook) string {
	for _, p := range book.GetPages() {
		url := p.GetCommand().GetTypeUrl()
		const prefix = "command/"
		if len(url) > len(prefix) && url[:len(prefix)] == prefix {
			return url[len(prefix):]
		}
	}
	return "Unknown"
}

func eventTypeOf(page *pb.EventPage) string {
	url := page.GetEvent().GetTypeUrl()
	const prefix = "event/"
	if len(url) > len(prefix) && url[:len(prefix)] == prefix {
		return url[len(prefix):]
	}
	return url
}

// ensureDomain registers a business-logic client for domain the first time
// it's mentioned in a scenario, always watching its bus topic too.
func (w *world) ensureDomain(domain string, handle func(*pb.ContextualCommand) (*pb.BusinessResponse, error)) error {
	w.watch(domain)
	if w.registered[domain] {
		return nil
	}
	addr, stop, err := startGRPC(func(s *grpc.Server) {
		pb.RegisterAggregateServiceServer(s, &fakeAggregateService{handle: handle})
	})
	if err != nil {
		return err
	}
	w.stoppers = append(w.stoppers, stop)
	if err := w.registry.RegisterAggregate(domain, addr); err != nil {
		return err
	}
	w.registered[domain] = true
	return nil
}

// registerSaga starts a fake saga service for name, subscribed to source's
// bus topic, that forwards every triggering event into a single command
// against target. Every scenario in this suite only ever wires one saga
// hop (orders -> fulfillment), so the downstream command's event name is
// fixed rather than derived from the trigger.
func (w *world) registerSaga(name, source, target string) error {
	addr, stop, err := startGRPC(func(s *grpc.Server) {
		pb.RegisterSagaServiceServer(s, &fakeSagaService{handle: func(book *pb.EventBook) (*pb.SagaResponse, error) {
			return &pb.SagaResponse{Commands: []*pb.CommandBook{{
				Cover: &pb.Cover{Domain: target, Root: w.rootFor(target), CorrelationId: book.GetCover().GetCorrelationId()},
				Pages: []*pb.CommandPage{{
					Sequence:      0,
					Command:       &anypb.Any{TypeUrl: "command/ShipmentScheduled"},
					MergeStrategy: pb.MergeStrategyCommutative,
				}},
			}}}, nil
		}})
	})
	if err != nil {
		return err
	}
	w.stoppers = append(w.stoppers, stop)
	if err := w.registry.RegisterSaga(name, addr); err != nil {
		return err
	}
	return w.sagaC.Register([]string{source}, name)
}

func (w *world) seed(domain string, count uint32) error {
	cover := &pb.Cover{Domain: domain, Root: w.rootFor(domain)}
	key := store.RootKey{Domain: domain, RootHex: pb.RootHex(cover.Root)}
	for i := uint32(0); i < count; i++ {
		page := pb.NewEventPage(i, &anypb.Any{TypeUrl: "event/Seeded"}, w.baseTime.Add(time.Duration(i)*time.Second))
		if err := w.driver.Append(w.ctx, key, []*pb.EventPage{page}); err != nil {
			return err
		}
	}
	return nil
}
