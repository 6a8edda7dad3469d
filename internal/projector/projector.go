// Package projector is the Projector Coordinator (§4.4): fans bus-delivered
// events out to registered projectors, repairing incomplete EventBooks
// before dispatch, retrying async failures with exponential backoff, and
// moving persistently-failing deliveries to a dead-letter sink. Sync
// projectors additionally unblock the Aggregate Coordinator's SIMPLE/CASCADE
// callers via aggregate.SyncWaiter.NotifyProjected once every sync projector
// for an event has acknowledged it.
package projector

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/angzarr-io/angzarr/internal/aggregate"
	"github.com/angzarr-io/angzarr/internal/bus"
	"github.com/angzarr-io/angzarr/internal/clients"
	"github.com/angzarr-io/angzarr/internal/errs"
	"github.com/angzarr-io/angzarr/internal/logging"
	"github.com/angzarr-io/angzarr/internal/metrics"
	"github.com/angzarr-io/angzarr/internal/pb"
	"github.com/angzarr-io/angzarr/internal/store"
)

// Config bounds the async retry/backoff schedule.
type Config struct {
	MaxRetries  int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 100 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 30 * time.Second
	}
	return c
}

// DeadLetter records an EventBook dispatch that exhausted its retry budget.
type DeadLetter struct {
	Projector string
	Cover     *pb.Cover
	Sequence  uint32
	Reason    string
	At        time.Time
}

// DeadLetterSink receives poison events. InMemorySink is the default.
type DeadLetterSink interface {
	Put(DeadLetter)
}

// InMemorySink buffers dead letters for inspection (tests, admin surface).
type InMemorySink struct {
	mu    sync.Mutex
	items []DeadLetter
}

func NewInMemorySink() *InMemorySink { return &InMemorySink{} }

func (s *InMemorySink) Put(d DeadLetter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, d)
}

// Items returns every dead letter recorded so far.
func (s *InMemorySink) Items() []DeadLetter {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DeadLetter, len(s.items))
	copy(out, s.items)
	return out
}

type registration struct {
	name   string
	client pb.ProjectorServiceClient
	sync   bool
	topics []string
}

// matchesTopic mirrors internal/bus's own matching rule (domain-wide
// subscriptions match every event type in that domain) so the coordinator's
// own per-projector filtering agrees with what reached it over the bus.
func matchesTopic(eventTopic, subTopic string) bool {
	if eventTopic == subTopic {
		return true
	}
	domain, _, ok := strings.Cut(eventTopic, ".")
	return ok && domain == subTopic
}

// Coordinator implements the Projector Coordinator.
type Coordinator struct {
	cfg        Config
	registry   *clients.Registry
	events     store.EventStore
	snapshots  store.SnapshotStore
	bus        *bus.Bus
	sync       *aggregate.SyncWaiter
	metrics    *metrics.Metrics
	deadLetter DeadLetterSink

	mu         sync.Mutex
	projectors []registration
	subs       []bus.Subscription
}

// New builds a Coordinator. deadLetter may be nil, which defaults to an
// in-memory sink.
func New(cfg Config, registry *clients.Registry, events store.EventStore, snapshots store.SnapshotStore, b *bus.Bus, sw *aggregate.SyncWaiter, m *metrics.Metrics, deadLetter DeadLetterSink) *Coordinator {
	if deadLetter == nil {
		deadLetter = NewInMemorySink()
	}
	return &Coordinator{
		cfg:        cfg.withDefaults(),
		registry:   registry,
		events:     events,
		snapshots:  snapshots,
		bus:        b,
		sync:       sw,
		metrics:    m,
		deadLetter: deadLetter,
	}
}

// RegisterProjector adds name to the fan-out set for the given topics
// ("{domain}" or "{domain}.{event_type}", §4.2). sync marks it as a
// synchronous projector the Aggregate Coordinator's SIMPLE/CASCADE modes
// wait on.
func (c *Coordinator) RegisterProjector(name string, sync bool, topics []string) error {
	client, ok := c.registry.Projector(name)
	if !ok {
		return errs.Unavailable("no projector registered for name "+name, nil)
	}
	c.mu.Lock()
	c.projectors = append(c.projectors, registration{name: name, client: client, sync: sync, topics: topics})
	c.mu.Unlock()
	return nil
}

// Start subscribes the coordinator to the bus once per distinct domain any
// registered projector cares about, then fans each delivered message out to
// every matching projector itself — this keeps the "how many sync
// projectors must ack before NotifyProjected" count computed in one place
// instead of racing across independent bus subscriptions.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	domains := map[string]bool{}
	for _, p := range c.projectors {
		for _, t := range p.topics {
			domain, _, _ := strings.Cut(t, ".")
			domains[domain] = true
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
	return nil
}

// Stop cancels every bus subscription.
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

func eventTopic(cover *pb.Cover, page *pb.EventPage) string {
	domain := cover.GetDomain()
	typeURL := page.GetEvent().GetTypeUrl()
	idx := strings.LastIndexAny(typeURL, "/.")
	name := typeURL
	if idx >= 0 {
		name = typeURL[idx+1:]
	}
	if name == "" {
		return domain
	}
	return domain + "." + name
}

// onMessage implements §4.4's repair-then-dispatch pipeline for one
// delivered page, fanning it out to every projector whose topic matches.
func (c *Coordinator) onMessage(ctx context.Context, msg bus.Message) {
	topic := eventTopic(msg.Cover, msg.Page)

	c.mu.Lock()
	var matching []registration
	for _, p := range c.projectors {
		for _, t := range p.topics {
			if matchesTopic(topic, t) {
				matching = append(matching, p)
				break
			}
		}
	}
	c.mu.Unlock()
	if len(matching) == 0 {
		return
	}

	book := c.repair(ctx, msg)

	var pending sync.WaitGroup
	var syncCount int
	for _, p := range matching {
		if p.sync {
			syncCount++
		}
	}
	var syncRemaining sync.WaitGroup
	syncRemaining.Add(syncCount)

	for _, p := range matching {
		p := p
		pending.Add(1)
		go func() {
			defer pending.Done()
			c.dispatchWithRetry(ctx, p, msg.Cover, msg.Page.GetSequence(), book)
			if p.sync {
				syncRemaining.Done()
			}
		}()
	}

	if syncCount > 0 && c.sync != nil {
		go func() {
			syncRemaining.Wait()
			c.sync.NotifyProjected(msg.Cover, msg.Page.GetSequence())
		}()
	}
	// Async dispatches are intentionally not waited on here; onMessage
	// returns once fan-out has started so the bus subscriber loop keeps
	// draining.
}

// repair implements §4.4's completeness guarantee: a bus-delivered message
// only ever carries the one page that was just published, so unless that
// page is itself sequence 0 the coordinator reloads the full EventBook from
// storage before any projector sees it.
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
		logging.WithComponent("projector").Error().Err(err).Msg("event book repair failed, dispatching incomplete book")
		return delivered
	}
	return full
}

// dispatchWithRetry sends book to one projector, retrying with exponential
// backoff up to cfg.MaxRetries before writing a DeadLetter.
func (c *Coordinator) dispatchWithRetry(ctx context.Context, p registration, cover *pb.Cover, sequence uint32, book *pb.EventBook) {
	log := logging.WithComponent("projector")
	backoff := c.cfg.BaseBackoff

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		start := time.Now()
		_, err := p.client.Handle(ctx, book)
		if c.metrics != nil {
			c.metrics.ProjectorLatency.WithLabelValues(p.name).Observe(time.Since(start).Seconds())
		}
		if err == nil {
			return
		}
		lastErr = err
		log.Warn().Str("projector", p.name).Int("attempt", attempt).Err(err).Msg("projector dispatch failed")

		if attempt == c.cfg.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
			attempt = c.cfg.MaxRetries
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > c.cfg.MaxBackoff {
			backoff = c.cfg.MaxBackoff
		}
	}

	if c.metrics != nil {
		c.metrics.ProjectorPoisoned.WithLabelValues(p.name).Inc()
	}
	c.deadLetter.Put(DeadLetter{
		Projector: p.name,
		Cover:     cover,
		Sequence:  sequence,
		Reason:    lastErr.Error(),
		At:        time.Now(),
	})
}
