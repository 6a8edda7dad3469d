// Package bus is the Event Bus Abstraction (§4.2): publish-only fan-out of
// committed EventPages to Projector and Saga/Process-Manager subscribers, at
// topic granularity "{domain}" (every event in the domain) or
// "{domain}.{event_type}" (a single event type, matched by Any.TypeUrl
// suffix). Delivery is at-least-once and ordered per publishing goroutine:
// the Aggregate Coordinator serializes all appends for one root through a
// single lock (internal/aggregate), so publishing that root's pages through
// one Publish call per page, in sequence order, gives per-root ordering (P6) without the bus
// itself tracking roots.
package bus

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/angzarr-io/angzarr/internal/logging"
	"github.com/angzarr-io/angzarr/internal/pb"
)

// ErrQueueClosed is returned by the internal queue when its subscription has
// been cancelled while a publish was blocked on it.
var ErrQueueClosed = errors.New("bus: subscription queue closed")

// ErrBusNotStarted is returned by Publish/Subscribe before Start or after Stop.
var ErrBusNotStarted = errors.New("bus: not started")

// Message is one delivery: the domain the event belongs to (for topic
// matching) plus the page itself. Cover travels alongside so handlers don't
// need to reconstruct it from bus metadata.
type Message struct {
	Cover *pb.Cover
	Page  *pb.EventPage
}

// Handler processes one delivered message. A non-nil error is logged; it
// does not stop the subscription or block other subscribers — retry policy
// for poison messages lives in the caller (internal/projector, internal/saga).
type Handler func(ctx context.Context, msg Message) error

// Subscription is returned by Subscribe; Cancel stops delivery and releases
// the subscriber's queue.
type Subscription interface {
	Topic() string
	Cancel() error
}

func topicFor(domain, eventTypeURL string) string {
	idx := strings.LastIndexAny(eventTypeURL, "/.")
	name := eventTypeURL
	if idx >= 0 {
		name = eventTypeURL[idx+1:]
	}
	return domain + "." + name
}

// matchesTopic reports whether a published event (full topic
// "{domain}.{type}") satisfies a subscription topic, which may be just
// "{domain}" (domain-wide) or the full "{domain}.{type}".
func matchesTopic(eventTopic, subTopic string) bool {
	if eventTopic == subTopic {
		return true
	}
	domain, _, ok := strings.Cut(eventTopic, ".")
	return ok && domain == subTopic
}

type queue struct {
	mu       sync.Mutex
	items    *list.List
	maxDepth int
	notEmpty chan struct{}
	notFull  chan struct{}
}

func newQueue(maxDepth int) *queue {
	return &queue{
		items:    list.New(),
		maxDepth: maxDepth,
		notEmpty: make(chan struct{}, 1),
		notFull:  make(chan struct{}, 1),
	}
}

func (q *queue) Push(ctx context.Context, done <-chan struct{}, msg Message) error {
	for {
		q.mu.Lock()
		if q.maxDepth <= 0 || q.items.Len() < q.maxDepth {
			q.items.PushBack(msg)
			select {
			case q.notEmpty <- struct{}{}:
			default:
			}
			q.mu.Unlock()
			return nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return fmt.Errorf("bus: publish cancelled waiting for queue space: %w", ctx.Err())
		case <-done:
			return ErrQueueClosed
		case <-q.notFull:
		}
	}
}

func (q *queue) TryPop() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	front := q.items.Front()
	if front == nil {
		return Message{}, false
	}
	wasFull := q.maxDepth > 0 && q.items.Len() >= q.maxDepth
	msg := q.items.Remove(front).(Message)
	if wasFull {
		select {
		case q.notFull <- struct{}{}:
		default:
		}
	}
	return msg, true
}

func (q *queue) Notify() <-chan struct{} { return q.notEmpty }

type subscription struct {
	id      string
	topic   string
	handler Handler
	queue   *queue

	mu        sync.RWMutex
	cancelled bool
	done      chan struct{}
	finished  chan struct{}
}

func (s *subscription) Topic() string { return s.topic }

func (s *subscription) isCancelled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cancelled
}

func (s *subscription) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return nil
	}
	s.cancelled = true
	close(s.done)
	return nil
}

// Config controls per-subscriber queue depth (backpressure bound).
type Config struct {
	// QueueDepth is the max buffered messages per subscriber before Publish
	// blocks. 0 means unbounded.
	QueueDepth int
}

// Bus is the in-process event bus driver: every subscriber gets a dedicated
// FIFO queue, and Publish blocks (rather than drops) when a queue is full,
// giving the at-least-once-within-process-lifetime guarantee §4.2 asks for.
// Cross-process/crash durability is the outbox overlay (boltdriver's
// PutOutbox/PendingOutbox), not this type; nothing in this package replays
// the outbox.
type Bus struct {
	cfg Config

	mu            sync.RWMutex
	subscriptions map[string]map[string]*subscription

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	started   bool
	delivered uint64
}

// New builds a Bus; call Start before Publish/Subscribe.
func New(cfg Config) *Bus {
	return &Bus{cfg: cfg, subscriptions: make(map[string]map[string]*subscription)}
}

func (b *Bus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return nil
	}
	b.ctx, b.cancel = context.WithCancel(ctx)
	b.started = true
	return nil
}

func (b *Bus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.started {
		b.mu.Unlock()
		return nil
	}
	b.cancel()
	b.started = false
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Publish delivers page to every subscription whose topic matches
// "{domain}.{event_type}", blocking on a full subscriber queue rather than
// dropping. Callers append pages for one root strictly in sequence and
// publish them in the same order to preserve per-root ordering (P6).
func (b *Bus) Publish(ctx context.Context, cover *pb.Cover, page *pb.EventPage) error {
	b.mu.RLock()
	if !b.started {
		b.mu.RUnlock()
		return ErrBusNotStarted
	}
	topic := topicFor(cover.GetDomain(), page.GetEvent().GetTypeUrl())
	var subs []*subscription
	for subTopic, byID := range b.subscriptions {
		if matchesTopic(topic, subTopic) {
			for _, s := range byID {
				subs = append(subs, s)
			}
		}
	}
	b.mu.RUnlock()

	msg := Message{Cover: cover, Page: page}
	for _, s := range subs {
		if s.isCancelled() {
			continue
		}
		if err := s.queue.Push(ctx, s.done, msg); err != nil {
			if errors.Is(err, ErrQueueClosed) {
				continue
			}
			return err
		}
	}
	return nil
}

// Subscribe registers handler for topic ("{domain}" or
// "{domain}.{event_type}"). Delivery runs on a dedicated goroutine per
// subscription so a slow handler only backpressures its own queue.
func (b *Bus) Subscribe(topic string, handler Handler) (Subscription, error) {
	b.mu.Lock()
	if !b.started {
		b.mu.Unlock()
		return nil, ErrBusNotStarted
	}
	sub := &subscription{
		id:       uuid.New().String(),
		topic:    topic,
		handler:  handler,
		queue:    newQueue(b.cfg.QueueDepth),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	if _, ok := b.subscriptions[topic]; !ok {
		b.subscriptions[topic] = make(map[string]*subscription)
	}
	b.subscriptions[topic][sub.id] = sub
	b.mu.Unlock()

	started := make(chan struct{})
	b.wg.Add(1)
	go func() {
		close(started)
		b.dispatch(sub)
	}()
	<-started
	return sub, nil
}

// Unsubscribe cancels and removes subscription from the bus.
func (b *Bus) Unsubscribe(sub Subscription) error {
	s, ok := sub.(*subscription)
	if !ok {
		return fmt.Errorf("bus: not a subscription created by this bus")
	}
	if err := s.Cancel(); err != nil {
		return err
	}
	b.mu.Lock()
	if byID, ok := b.subscriptions[s.topic]; ok {
		delete(byID, s.id)
		if len(byID) == 0 {
			delete(b.subscriptions, s.topic)
		}
	}
	b.mu.Unlock()

	select {
	case <-s.finished:
	case <-time.After(100 * time.Millisecond):
	}
	return nil
}

func (b *Bus) dispatch(sub *subscription) {
	defer b.wg.Done()
	defer close(sub.finished)

	log := logging.WithComponent("bus")
	for {
		if sub.isCancelled() {
			return
		}
		if msg, ok := sub.queue.TryPop(); ok {
			if err := sub.handler(b.ctx, msg); err != nil {
				log.Error().Err(err).Str("topic", sub.topic).Msg("bus handler failed")
			}
			atomic.AddUint64(&b.delivered, 1)
			continue
		}
		select {
		case <-b.ctx.Done():
			return
		case <-sub.done:
			return
		case <-sub.queue.Notify():
		}
	}
}

// Delivered returns the total count of messages handed to a subscriber
// handler across the bus's lifetime (for metrics/diagnostics).
func (b *Bus) Delivered() uint64 { return atomic.LoadUint64(&b.delivered) }
