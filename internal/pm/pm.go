// Package pm is the Process Manager Coordinator (§4.6). A process manager is
// a stateful saga: it is itself an aggregate, keyed by correlation_id as
// root, in its own domain. The coordinator drives its two-phase protocol
// (GetSubscriptions at startup, then Prepare/Handle per triggering event),
// enforces the per-correlation_id serialization invariant (P9) that turns
// parallel fan-in from multiple domains into a deterministic state machine
// advance, and runs the timeout scheduler that polls PM state for deadlines
// and emits ProcessTimeout events at expiry.
package pm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/anypb"

	"github.com/angzarr-io/angzarr/internal/aggregate"
	"github.com/angzarr-io/angzarr/internal/bus"
	"github.com/angzarr-io/angzarr/internal/clients"
	"github.com/angzarr-io/angzarr/internal/errs"
	"github.com/angzarr-io/angzarr/internal/logging"
	"github.com/angzarr-io/angzarr/internal/pb"
	"github.com/angzarr-io/angzarr/internal/store"
)

// rootNamespace is the fixed namespace process manager roots are derived
// from. correlation_id is caller-provided free text, not itself a UUID, so a
// PM's root is a deterministic SHA1-based UUID over (namespace, correlation
// id): same correlation_id always yields the same root, across restarts.
var rootNamespace = uuid.MustParse("9b4f1d9e-9a0b-4b2e-8b1a-6a9d9a9e6b1a")

func rootFromCorrelationID(correlationID string) *pb.UUID {
	id := uuid.NewSHA1(rootNamespace, []byte(correlationID))
	b := id[:]
	return &pb.UUID{Value: append([]byte(nil), b...)}
}

// ProcessTimeoutEventTypeURL is the type-url suffix the timeout scheduler
// stamps on every ProcessTimeout event it emits; PMs subscribe to it like
// any other event type on their own domain.
const ProcessTimeoutEventTypeURL = "angzarr.ProcessTimeout"

// ProcessTimeout is the payload of a timeout-expiry event appended to a
// process manager's own aggregate stream.
type ProcessTimeout struct {
	CorrelationId string `protobuf:"bytes,1,opt,name=correlation_id,json=correlationId,proto3" json:"correlation_id,omitempty"`
}

func (m *ProcessTimeout) Reset()         { *m = ProcessTimeout{} }
func (m *ProcessTimeout) String() string { return fmt.Sprintf("ProcessTimeout{%s}", m.CorrelationId) }
func (*ProcessTimeout) ProtoMessage()    {}

type registration struct {
	name   string
	domain string
	client pb.ProcessManagerServiceClient
	subs   []*pb.Subscription
}

// Config bounds the timeout scheduler's poll cadence.
type Config struct {
	DeadlinePollInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.DeadlinePollInterval <= 0 {
		c.DeadlinePollInterval = 10 * time.Second
	}
	return c
}

// Coordinator implements the Process Manager Coordinator.
type Coordinator struct {
	cfg       Config
	registry  *clients.Registry
	events    store.EventStore
	snapshots store.SnapshotStore
	bus       *bus.Bus
	agg       *aggregate.Coordinator

	// lanes serializes Prepare+Handle processing per (pm name, correlation
	// id): the aggregate lock on the PM's own root already guarantees
	// mutual exclusion over the append itself, but Prepare's destination
	// loads happen before any lock is held, so a coarser lane lock is what
	// actually gives P9's "observed in arrival order" guarantee end to end.
	lanes *aggregate.LockTable

	mu   sync.Mutex
	regs []*registration
	subs []bus.Subscription

	// active tracks correlation_ids the timeout scheduler has seen a
	// triggering event for, per PM name, so it only polls PMs that have
	// live state instead of every correlation_id ever observed.
	active map[string]map[string]struct{}
}

// New builds a Coordinator sharing the same event/snapshot stores and bus as
// the rest of the coordination core, and the Aggregate Coordinator instance
// it dispatches PM-issued commands and PM's own events through.
func New(cfg Config, registry *clients.Registry, events store.EventStore, snapshots store.SnapshotStore, b *bus.Bus, agg *aggregate.Coordinator) *Coordinator {
	return &Coordinator{
		cfg:       cfg.withDefaults(),
		registry:  registry,
		events:    events,
		snapshots: snapshots,
		bus:       b,
		agg:       agg,
		lanes:     aggregate.NewLockTable(30 * time.Minute),
		active:    make(map[string]map[string]struct{}),
	}
}

// Register calls the PM's GetSubscriptions and adds it to the fan-out set.
// domain is the PM's own event-stream domain (its aggregate identity).
func (c *Coordinator) Register(ctx context.Context, name, domain string) error {
	client, ok := c.registry.ProcessManager(name)
	if !ok {
		return errs.Unavailable("no process manager registered for name "+name, nil)
	}
	resp, err := client.GetSubscriptions(ctx, &pb.GetSubscriptionsRequest{})
	if err != nil {
		return errs.Unavailable("GetSubscriptions failed for "+name, err)
	}
	reg := &registration{name: name, domain: domain, client: client, subs: resp.GetSubscriptions()}

	c.mu.Lock()
	c.regs = append(c.regs, reg)
	c.active[name] = make(map[string]struct{})
	c.mu.Unlock()
	return nil
}

// Start subscribes to every domain named in any registered PM's
// subscriptions and begins the timeout scheduler.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	domains := map[string]bool{}
	for _, r := range c.regs {
		for _, s := range r.subs {
			domains[s.GetDomain()] = true
		}
	}
	c.mu.Unlock()

	for domain := range domains {
		sub, err := c.bus.Subscribe(domain, func(ctx context.Context, msg bus.Message) error {
			c.onMessage(ctx, msg)
			return nil
		})
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.subs = append(c.subs, sub)
		c.mu.Unlock()
	}

	go c.runTimeoutScheduler(ctx)
	return nil
}

// Stop cancels every bus subscription. The timeout scheduler goroutine exits
// when ctx is cancelled.
func (c *Coordinator) Stop() error {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()
	var firstErr error
	for _, sub := range subs {
		if err := sub.Cancel(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func matchesSubscription(subs []*pb.Subscription, domain, typeURL string) bool {
	name := typeURL
	if idx := strings.LastIndexByte(typeURL, '/'); idx >= 0 {
		name = typeURL[idx+1:]
	}
	for _, s := range subs {
		if s.GetDomain() != domain {
			continue
		}
		if s.GetEventTypeUrl() == "" || s.GetEventTypeUrl() == name {
			return true
		}
	}
	return false
}

// onMessage fans a bus-delivered triggering event out to every registered PM
// whose subscriptions match it, one lane-serialized run per PM.
func (c *Coordinator) onMessage(ctx context.Context, msg bus.Message) {
	domain := msg.Cover.GetDomain()
	typeURL := msg.Page.GetEvent().GetTypeUrl()

	c.mu.Lock()
	var matching []*registration
	for _, r := range c.regs {
		if matchesSubscription(r.subs, domain, typeURL) {
			matching = append(matching, r)
		}
	}
	c.mu.Unlock()

	for _, r := range matching {
		r := r
		go c.runOne(ctx, r, msg)
	}
}

// runOne executes Prepare then Handle for one process manager against one
// triggering event, serialized against every other event sharing the same
// (PM, correlation_id) lane.
func (c *Coordinator) runOne(ctx context.Context, r *registration, msg bus.Message) {
	log := logging.WithComponent("pm")
	correlationID := msg.Cover.GetCorrelationId()
	if correlationID == "" {
		log.Debug().Str("pm", r.name).Msg("dropping trigger with empty correlation_id")
		return
	}

	release := c.lanes.Acquire(r.name + "/" + correlationID)
	defer release()

	pmCover := &pb.Cover{Domain: r.domain, Root: rootFromCorrelationID(correlationID), CorrelationId: correlationID}

	trigger := c.repair(ctx, msg)

	processState, err := store.LoadEventBook(ctx, c.events, c.snapshots, pmCover)
	if err != nil {
		log.Error().Str("pm", r.name).Err(err).Msg("load process manager state failed")
		return
	}

	prepResp, err := r.client.Prepare(ctx, &pb.ProcessManagerPrepareRequest{Trigger: trigger, ProcessState: processState})
	if err != nil {
		log.Error().Str("pm", r.name).Err(err).Msg("Prepare failed")
		return
	}

	destinations := make([]*pb.EventBook, 0, len(prepResp.GetDestinations()))
	for _, dest := range prepResp.GetDestinations() {
		book, err := store.LoadEventBook(ctx, c.events, c.snapshots, dest)
		if err != nil {
			log.Error().Str("pm", r.name).Err(err).Msg("load Prepare destination failed")
			return
		}
		destinations = append(destinations, book)
	}

	handleResp, err := r.client.Handle(ctx, &pb.ProcessManagerHandleRequest{
		Trigger:      trigger,
		ProcessState: processState,
		Destinations: destinations,
	})
	if err != nil {
		log.Error().Str("pm", r.name).Err(err).Msg("Handle failed")
		return
	}

	c.mu.Lock()
	if c.active[r.name] == nil {
		c.active[r.name] = make(map[string]struct{})
	}
	c.active[r.name][correlationID] = struct{}{}
	c.mu.Unlock()

	if events := eventsToAny(handleResp.GetProcessEvents()); len(events) > 0 {
		if _, err := c.agg.AppendSystemEvents(ctx, pmCover, events); err != nil {
			log.Error().Str("pm", r.name).Err(err).Msg("append process manager events failed")
		}
	}

	for _, cmd := range handleResp.GetCommands() {
		if cmd.GetCover() == nil {
			continue
		}
		if _, err := c.agg.Handle(ctx, cmd); err != nil {
			log.Error().Str("pm", r.name).Str("target", cmd.GetCover().String()).Err(err).
				Msg("process manager command dispatch failed")
		}
	}
}

func eventsToAny(pages []*pb.EventPage) []*anypb.Any {
	out := make([]*anypb.Any, 0, len(pages))
	for _, p := range pages {
		if e := p.GetEvent(); e != nil {
			out = append(out, e)
		}
	}
	return out
}

// repair applies the same completeness guarantee as internal/projector: a
// bus-delivered message only carries the one page just published.
func (c *Coordinator) repair(ctx context.Context, msg bus.Message) *pb.EventBook {
	delivered := &pb.EventBook{
		Cover:        msg.Cover,
		Pages:        []*pb.EventPage{msg.Page},
		NextSequence: msg.Page.GetSequence() + 1,
	}
	if delivered.IsComplete() {
		return delivered
	}
	full, err := store.LoadEventBook(ctx, c.events, c.snapshots, msg.Cover)
	if err != nil {
		logging.WithComponent("pm").Error().Err(err).Msg("event book repair failed, dispatching incomplete book")
		return delivered
	}
	return full
}

// runTimeoutScheduler periodically polls every known-active process manager
// instance for a pending deadline and, on expiry, emits a ProcessTimeout
// event onto the PM's own stream — which the bus then redelivers to it like
// any other triggering event, landing back in runOne through the normal
// subscription path.
func (c *Coordinator) runTimeoutScheduler(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.DeadlinePollInterval)
	defer ticker.Stop()
	log := logging.WithComponent("pm-timeout")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		type target struct {
			reg           *registration
			correlationID string
		}
		var targets []target
		for _, r := range c.regs {
			for cid := range c.active[r.name] {
				targets = append(targets, target{reg: r, correlationID: cid})
			}
		}
		c.mu.Unlock()

		for _, t := range targets {
			pmCover := &pb.Cover{Domain: t.reg.domain, Root: rootFromCorrelationID(t.correlationID), CorrelationId: t.correlationID}
			state, err := store.LoadEventBook(ctx, c.events, c.snapshots, pmCover)
			if err != nil {
				log.Error().Str("pm", t.reg.name).Err(err).Msg("load state for deadline poll failed")
				continue
			}
			deadline, err := t.reg.client.QueryDeadline(ctx, state)
			if err != nil {
				log.Error().Str("pm", t.reg.name).Err(err).Msg("QueryDeadline failed")
				continue
			}
			if !deadline.GetHasDeadline() || deadline.GetDeadline() == nil {
				continue
			}
			if !deadline.GetDeadline().AsTime().Before(time.Now()) {
				continue
			}

			payload, err := anypb.New(pb.ProtoMessageOf(&ProcessTimeout{CorrelationId: t.correlationID}))
			if err != nil {
				log.Error().Err(err).Msg("marshal ProcessTimeout failed")
				continue
			}
			payload.TypeUrl = "type.googleapis.com/" + ProcessTimeoutEventTypeURL
			if _, err := c.agg.AppendSystemEvent(ctx, pmCover, payload); err != nil {
				log.Error().Str("pm", t.reg.name).Err(err).Msg("append ProcessTimeout failed")
			}
		}
	}
}
