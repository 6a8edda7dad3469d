// Package saga is the Saga & Revocation Coordinator (§4.5). Sagas are
// stateless event-to-command translators: the coordinator subscribes to the
// bus on their behalf, invokes their external Handle RPC per delivered
// event, stamps the resulting commands with a SagaOrigin that tracks
// cascade depth, and dispatches them through the Aggregate Coordinator. It
// also implements aggregate.RevocationHandler, owning the full revocation
// state machine for commands it issued that a target aggregate rejects.
package saga

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/semaphore"
	"google.golang.org/protobuf/types/known/anypb"

	"github.com/angzarr-io/angzarr/internal/aggregate"
	"github.com/angzarr-io/angzarr/internal/bus"
	"github.com/angzarr-io/angzarr/internal/clients"
	"github.com/angzarr-io/angzarr/internal/errs"
	"github.com/angzarr-io/angzarr/internal/logging"
	"github.com/angzarr-io/angzarr/internal/metrics"
	"github.com/angzarr-io/angzarr/internal/pb"
)

// Config bounds cascade depth, fan-out dispatch concurrency, and
// fallback/escalation behavior.
type Config struct {
	MaxCascadeDepth       uint32
	MaxConcurrentDispatch int64
	FallbackDomain        string
	DeadLetterAddr        string
	EscalationWebhook     string
	DepthTTL              time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxCascadeDepth == 0 {
		c.MaxCascadeDepth = 10
	}
	if c.MaxConcurrentDispatch <= 0 {
		c.MaxConcurrentDispatch = 8
	}
	if c.FallbackDomain == "" {
		c.FallbackDomain = "_angzarr"
	}
	if c.DepthTTL <= 0 {
		c.DepthTTL = 10 * time.Minute
	}
	return c
}

type depthEntry struct {
	depth uint32
	at    time.Time
}

// Coordinator implements the Saga & Revocation Coordinator and
// aggregate.RevocationHandler.
type Coordinator struct {
	cfg      Config
	registry *clients.Registry
	bus      *bus.Bus
	agg      *aggregate.Coordinator
	sync     *aggregate.SyncWaiter
	metrics  *metrics.Metrics
	webhook  *retryablehttp.Client
	dispatch *semaphore.Weighted

	mu     sync.Mutex
	subs   []bus.Subscription
	depths map[string]depthEntry
}

// New builds a Coordinator and registers it as agg's RevocationHandler.
func New(cfg Config, registry *clients.Registry, b *bus.Bus, agg *aggregate.Coordinator, sw *aggregate.SyncWaiter, m *metrics.Metrics) *Coordinator {
	cfg = cfg.withDefaults()
	wh := retryablehttp.NewClient()
	wh.Logger = nil
	c := &Coordinator{
		cfg:      cfg,
		registry: registry,
		bus:      b,
		agg:      agg,
		sync:     sw,
		metrics:  m,
		webhook:  wh,
		dispatch: semaphore.NewWeighted(cfg.MaxConcurrentDispatch),
		depths:   make(map[string]depthEntry),
	}
	agg.SetRevocationHandler(c)
	return c
}

func eventKey(cover *pb.Cover, sequence uint32) string {
	return fmt.Sprintf("%s/%s/%d", cover.GetDomain(), pb.RootHex(cover.GetRoot()), sequence)
}

// Register subscribes name to the given bus topics — "{domain}" or
// "{domain}.{event_type}" per §4.2 — and routes every delivered event
// through the named saga's Handle RPC.
func (c *Coordinator) Register(topics []string, name string) error {
	client, ok := c.registry.Saga(name)
	if !ok {
		return errs.Unavailable(fmt.Sprintf("no saga registered for name %q", name), nil)
	}
	for _, topic := range topics {
		sub, err := c.bus.Subscribe(topic, func(ctx context.Context, msg bus.Message) error {
			return c.handle(ctx, name, client, msg)
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

// Unregister cancels every subscription previously built by Register.
func (c *Coordinator) Unregister() error {
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

// handle implements steps 2-4 of §4.5: invoke the saga, stamp and dispatch
// its commands, enforce the cascade depth limit, and notify SyncWaiter once
// every derived command has reached a terminal state.
func (c *Coordinator) handle(ctx context.Context, name string, client pb.SagaServiceClient, msg bus.Message) error {
	log := logging.WithComponent("saga")
	key := eventKey(msg.Cover, msg.Page.GetSequence())

	c.mu.Lock()
	depth := c.depths[key].depth
	delete(c.depths, key)
	c.mu.Unlock()

	book := &pb.EventBook{
		Cover:        msg.Cover,
		Pages:        []*pb.EventPage{msg.Page},
		NextSequence: msg.Page.GetSequence() + 1,
	}
	resp, err := client.Handle(ctx, book)
	if err != nil {
		log.Error().Str("saga", name).Err(err).Msg("saga handle failed")
		return err
	}

	// Commands a single triggering event fans out to are independent of each
	// other, so they dispatch concurrently, bounded by dispatch so one noisy
	// saga can't flood the Aggregate Coordinator with unbounded goroutines.
	var wg sync.WaitGroup
	for _, cmd := range resp.GetCommands() {
		nextDepth := depth + 1
		if nextDepth > c.cfg.MaxCascadeDepth {
			log.Error().Str("saga", name).Uint32("depth", nextDepth).Msg("cascade depth exceeded, dropping command")
			continue
		}
		if c.metrics != nil {
			c.metrics.CascadeDepth.Observe(float64(nextDepth))
		}
		cmd.SagaOrigin = &pb.SagaOrigin{
			SagaName:                name,
			TriggeringAggregate:     msg.Cover,
			TriggeringEventSequence: msg.Page.GetSequence(),
			Depth:                   nextDepth,
		}

		if err := c.dispatch.Acquire(ctx, 1); err != nil {
			log.Warn().Str("saga", name).Err(err).Msg("dispatch semaphore acquire canceled")
			continue
		}
		wg.Add(1)
		go func(cmd *pb.CommandBook, nextDepth uint32) {
			defer wg.Done()
			defer c.dispatch.Release(1)

			cmdResp, err := c.agg.Handle(ctx, cmd)
			if err != nil {
				// A rejection here already ran the full revocation state machine
				// synchronously via aggregate.Coordinator.attempt's step 5, since
				// this Coordinator is wired in as the RevocationHandler.
				log.Warn().Str("saga", name).Err(err).Msg("saga-issued command failed")
				return
			}
			produced := cmdResp.GetEvents()
			if produced == nil {
				return
			}
			c.mu.Lock()
			for _, p := range produced.GetPages() {
				c.depths[eventKey(produced.GetCover(), p.GetSequence())] = depthEntry{depth: nextDepth, at: time.Now()}
			}
			c.mu.Unlock()
		}(cmd, nextDepth)
	}
	wg.Wait()

	if c.sync != nil {
		c.sync.NotifySettled(msg.Cover, msg.Page.GetSequence())
	}
	return nil
}

// ReapDepths drops depth-tracking entries for events no saga ever consumed,
// bounding the map for deployments with events no saga subscribes to.
func (c *Coordinator) ReapDepths() {
	cutoff := time.Now().Add(-c.cfg.DepthTTL)
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.depths {
		if e.at.Before(cutoff) {
			delete(c.depths, k)
		}
	}
}

// Revoke implements aggregate.RevocationHandler: build and dispatch a
// RevokeEventCommand at the rejected command's triggering aggregate, then
// process the response per §4.5's revocation state machine.
func (c *Coordinator) Revoke(ctx context.Context, rejected *pb.CommandBook, reason string) error {
	origin := rejected.GetSagaOrigin()
	target := origin.GetTriggeringAggregate()

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

	bresp, err := c.agg.HandleRevoke(ctx, target, revoke)
	if err != nil {
		return c.fallback(ctx, origin, reason, err.Error())
	}
	if bresp.GetEvents() != nil {
		if c.metrics != nil {
			c.metrics.RevocationOutcomes.WithLabelValues("compensated").Inc()
		}
		return nil
	}
	rr := bresp.GetRevocation()
	if rr == nil {
		return c.fallback(ctx, origin, reason, "compensation handler returned neither events nor a revocation response")
	}
	return c.processFlags(ctx, origin, reason, rr)
}

// fallback applies when the compensation handler is unreachable or returns
// nothing usable: §4.5 requires this to still surface as a guaranteed
// SagaCompensationFailed event, so it's modeled as a RevocationResponse with
// emit_system_revocation set.
func (c *Coordinator) fallback(ctx context.Context, origin *pb.SagaOrigin, reason, failureReason string) error {
	logging.WithComponent("saga").Error().Str("saga", origin.GetSagaName()).Str("reason", failureReason).Msg("revocation fallback")
	return c.processFlags(ctx, origin, reason, &pb.RevocationResponse{EmitSystemRevocation: true, Reason: failureReason})
}

// processFlags walks RevocationResponse's flags in the order §4.5
// specifies, guaranteeing a SagaCompensationFailed event is emitted even
// when none of the flags request it (P8 invariant: never silently dropped).
func (c *Coordinator) processFlags(ctx context.Context, origin *pb.SagaOrigin, reason string, rr *pb.RevocationResponse) error {
	log := logging.WithComponent("saga")

	if rr.GetSendToDeadLetterQueue() {
		c.sendToDeadLetterQueue(origin, reason, rr.GetReason())
		if c.metrics != nil {
			c.metrics.RevocationOutcomes.WithLabelValues("dlq").Inc()
		}
	}
	if rr.GetEscalate() {
		c.escalate(origin, reason, rr.GetReason())
		if c.metrics != nil {
			c.metrics.RevocationOutcomes.WithLabelValues("escalate").Inc()
		}
	}

	emitted := false
	if rr.GetEmitSystemRevocation() {
		if err := c.emitCompensationFailed(ctx, origin, reason, rr.GetReason()); err != nil {
			log.Error().Err(err).Msg("failed to emit SagaCompensationFailed")
		} else {
			emitted = true
			if c.metrics != nil {
				c.metrics.RevocationOutcomes.WithLabelValues("system_fallback").Inc()
			}
		}
	}
	if !emitted {
		if err := c.emitCompensationFailed(ctx, origin, reason, rr.GetReason()); err != nil {
			log.Error().Err(err).Msg("guaranteed SagaCompensationFailed fallback failed")
		}
	}

	if rr.GetAbort() {
		return errs.Aborted(origin.GetTriggeringAggregate().GetDomain())
	}
	return nil
}

// emitCompensationFailed appends the guaranteed system event to the
// configured fallback domain, keyed by the triggering aggregate's root so
// every compensation failure for a given instance lands on one stream.
func (c *Coordinator) emitCompensationFailed(ctx context.Context, origin *pb.SagaOrigin, reason, failureReason string) error {
	target := origin.GetTriggeringAggregate()
	event := &pb.SagaCompensationFailed{
		SagaName:        origin.GetSagaName(),
		Cover:           target,
		RejectionReason: reason,
		FailureReason:   failureReason,
	}
	eventAny, err := anypb.New(pb.ProtoMessageOf(event))
	if err != nil {
		return errs.Internal("marshal SagaCompensationFailed", err)
	}
	fallbackCover := &pb.Cover{
		Domain:        c.cfg.FallbackDomain,
		Root:          target.GetRoot(),
		CorrelationId: target.GetCorrelationId(),
	}
	_, err = c.agg.AppendSystemEvent(ctx, fallbackCover, eventAny)
	return err
}

// sendToDeadLetterQueue best-effort POSTs the rejected command's context to
// the configured dead-letter HTTP sink. A missing address is a no-op: not
// every deployment runs one.
func (c *Coordinator) sendToDeadLetterQueue(origin *pb.SagaOrigin, reason, detail string) {
	if c.cfg.DeadLetterAddr == "" {
		return
	}
	c.postJSON(c.cfg.DeadLetterAddr, map[string]any{
		"saga":             origin.GetSagaName(),
		"triggering_event": origin.GetTriggeringEventSequence(),
		"rejection_reason": reason,
		"detail":           detail,
	})
}

// escalate logs at ERROR and fires the configured webhook, best effort.
func (c *Coordinator) escalate(origin *pb.SagaOrigin, reason, detail string) {
	logging.WithComponent("saga").Error().
		Str("saga", origin.GetSagaName()).
		Str("reason", reason).
		Str("detail", detail).
		Msg("saga compensation escalated")
	if c.cfg.EscalationWebhook == "" {
		return
	}
	c.postJSON(c.cfg.EscalationWebhook, map[string]any{
		"saga":             origin.GetSagaName(),
		"triggering_event": origin.GetTriggeringEventSequence(),
		"rejection_reason": reason,
		"detail":           detail,
	})
}

func (c *Coordinator) postJSON(url string, body map[string]any) {
	req, err := retryablehttp.NewRequest("POST", url, jsonReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.webhook.Do(req)
	if err != nil {
		logging.WithComponent("saga").Warn().Str("url", url).Err(err).Msg("webhook delivery failed")
		return
	}
	resp.Body.Close()
}

func jsonReader(body map[string]any) io.Reader {
	data, err := json.Marshal(body)
	if err != nil {
		return bytes.NewReader(nil)
	}
	return bytes.NewReader(data)
}
