package features

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"google.golang.org/grpc/codes"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/angzarr-io/angzarr/internal/errs"
	"github.com/angzarr-io/angzarr/internal/pb"
	"github.com/angzarr-io/angzarr/internal/store"
)

func parseIntList(s string) []uint32 {
	parts := strings.Split(s, ",")
	out := make([]uint32, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		out = append(out, uint32(n))
	}
	return out
}

func mergeStrategyOf(name string) pb.MergeStrategy {
	if strings.EqualFold(name, "COMMUTATIVE") {
		return pb.MergeStrategyCommutative
	}
	return pb.MergeStrategyStrict
}

func (w *world) aFreshAggregateRootInDomain(domain string) error {
	return w.ensureDomain(domain, eventHandler())
}

func (w *world) aFreshAggregateRootInDomainWithPriorEvents(domain string, count int) error {
	if err := w.ensureDomain(domain, eventHandler()); err != nil {
		return err
	}
	return w.seed(domain, uint32(count))
}

func (w *world) iSubmitACommandAtSequenceProducingEvent(strategy string, seq int, eventName string) error {
	cover := &pb.Cover{Domain: "ledger", Root: w.rootFor("ledger")}
	cmd := &pb.CommandBook{
		Cover: cover,
		Pages: []*pb.CommandPage{{
			Sequence:      uint32(seq),
			Command:       &anypb.Any{TypeUrl: "command/" + eventName},
			MergeStrategy: mergeStrategyOf(strategy),
		}},
	}
	w.lastResp, w.lastErr = w.agg.Handle(w.ctx, cmd)
	return nil
}

func (w *world) twoClientsEachSubmitACommandAtSequence(strategy string, seq int) error {
	w.concurrentErrs = make([]error, 2)
	w.concurrentEvents = make([]*pb.EventBook, 2)
	done := make(chan int, 2)
	for i := 0; i < 2; i++ {
		go func(idx int) {
			cover := &pb.Cover{Domain: "ledger", Root: w.rootFor("ledger")}
			cmd := &pb.CommandBook{
				Cover: cover,
				Pages: []*pb.CommandPage{{
					Sequence:      uint32(seq),
					Command:       &anypb.Any{TypeUrl: "command/Credited"},
					MergeStrategy: mergeStrategyOf(strategy),
				}},
			}
			resp, err := w.agg.Handle(w.ctx, cmd)
			w.concurrentErrs[idx] = err
			if resp != nil {
				w.concurrentEvents[idx] = resp.GetEvents()
			}
			done <- idx
		}(i)
	}
	for i := 0; i < 2; i++ {
		<-done
	}
	return nil
}

func (w *world) theRootsEventBookHasPagesAtSequences(list string) error {
	cover := &pb.Cover{Domain: "ledger", Root: w.rootFor("ledger")}
	book, err := w.query.GetEventBook(w.ctx, &pb.GetEventBookRequest{Cover: cover})
	if err != nil {
		return err
	}
	want := parseIntList(list)
	got := make([]uint32, len(book.GetPages()))
	for i, p := range book.GetPages() {
		got[i] = p.GetSequence()
	}
	if len(got) != len(want) {
		return fmt.Errorf("expected sequences %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("expected sequences %v, got %v", want, got)
		}
	}
	return nil
}

func (w *world) theEventBookCarriesNoSnapshot() error {
	cover := &pb.Cover{Domain: "ledger", Root: w.rootFor("ledger")}
	book, err := w.query.GetEventBook(w.ctx, &pb.GetEventBookRequest{Cover: cover})
	if err != nil {
		return err
	}
	if book.GetSnapshot() != nil {
		return fmt.Errorf("expected no snapshot, got one")
	}
	return nil
}

func (w *world) exactlyOneCommandSucceedsWithAnEventAtSequence(seq int) error {
	successes := 0
	var successSeq uint32
	found := false
	for i, err := range w.concurrentErrs {
		if err == nil {
			successes++
			if pages := w.concurrentEvents[i].GetPages(); len(pages) > 0 {
				successSeq = pages[0].GetSequence()
				found = true
			}
		}
	}
	if successes != 1 {
		return fmt.Errorf("expected exactly 1 success, got %d", successes)
	}
	if !found || successSeq != uint32(seq) {
		return fmt.Errorf("expected the successful command's event at sequence %d, got %d", seq, successSeq)
	}
	return nil
}

func (w *world) theOtherCommandFailsWithCode(code string) error {
	var failureCount int
	var gotCode codes.Code
	for _, err := range w.concurrentErrs {
		if err != nil {
			failureCount++
			gotCode = errs.CodeOf(err)
		}
	}
	if failureCount != 1 {
		return fmt.Errorf("expected exactly 1 failure, got %d", failureCount)
	}
	if !strings.EqualFold(gotCode.String(), code) {
		return fmt.Errorf("expected code %s, got %s", code, gotCode)
	}
	return nil
}

func (w *world) bothCommandsEventuallySucceed() error {
	for i, err := range w.concurrentErrs {
		if err != nil {
			return fmt.Errorf("command %d failed: %w", i, err)
		}
	}
	return nil
}

func (w *world) aSagaSubscribedToDomainThatIssuesACommandToDomain(sagaName, source, target string) error {
	if err := w.ensureDomain(target, func(req *pb.ContextualCommand) (*pb.BusinessResponse, error) {
		if w.fulfillmentRejectAll {
			return &pb.BusinessResponse{}, nil
		}
		return eventHandler()(req)
	}); err != nil {
		return err
	}
	if err := w.ensureDomain(source, func(req *pb.ContextualCommand) (*pb.BusinessResponse, error) {
		page := req.GetCommand().GetPages()[0]
		if page.GetMergeStrategy() == pb.MergeStrategyAggregateHandles {
			// A revoke dispatch: the saga's triggering aggregate is asked to
			// compensate for a rejected downstream command.
			if w.ordersDeclineCompensated {
				return &pb.BusinessResponse{}, nil
			}
			if w.ordersCompensateEvent != "" {
				cover := req.GetCommand().GetCover()
				seq := req.GetEvents().GetNextSequence()
				eventAny := &anypb.Any{TypeUrl: "event/" + w.ordersCompensateEvent}
				return &pb.BusinessResponse{Result: &pb.BusinessResponse_Events{
					Events: &pb.EventBook{Cover: cover, Pages: []*pb.EventPage{pb.NewEventPage(seq, eventAny, time.Now())}},
				}}, nil
			}
			return &pb.BusinessResponse{}, nil
		}
		return eventHandler()(req)
	}); err != nil {
		return err
	}

	return w.registerSaga(sagaName, source, target)
}

func (w *world) domainRejectsEveryCommandWithReason(domain, _reason string) error {
	if domain == "fulfillment" {
		w.fulfillmentRejectAll = true
	}
	return nil
}

func (w *world) domainCompensatesARevokedCommandByProducingEvent(domain, eventName string) error {
	if domain == "orders" {
		w.ordersCompensateEvent = eventName
	}
	return nil
}

func (w *world) domainDeclinesToCompensateAnyRevokedCommand(domain string) error {
	if domain == "orders" {
		w.ordersDeclineCompensated = true
	}
	return nil
}

func (w *world) iSubmitACommandToDomainProducingEventWithCorrelationId(domain, eventName, correlationID string) error {
	cover := &pb.Cover{Domain: domain, Root: w.rootFor(domain), CorrelationId: correlationID}
	cmd := &pb.CommandBook{
		Cover: cover,
		Pages: []*pb.CommandPage{{
			Sequence:      0,
			Command:       &anypb.Any{TypeUrl: "command/" + eventName},
			MergeStrategy: pb.MergeStrategyStrict,
		}},
	}
	// Submitted fire-and-forget: sagas react to the produced events on the
	// bus's delivery goroutines after Handle returns, so downstream commands,
	// revocations and compensation/fallback events land asynchronously and
	// the Then steps poll for them.
	w.lastResp, w.lastErr = w.agg.Handle(w.ctx, cmd)
	return nil
}

func (w *world) domainObservesAnEventWithCorrelationId(domain, wantEvent, correlationID string) error {
	deadline := time.Now().Add(2 * time.Second)
	for {
		covers, pages := w.watch(domain).snapshot()
		for i, p := range pages {
			if eventTypeOf(p) == wantEvent && covers[i].GetCorrelationId() == correlationID {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("domain %q never observed event %q with correlation_id %q", domain, wantEvent, correlationID)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (w *world) domainObservesACompensationEvent(domain, wantEvent string) error {
	deadline := time.Now().Add(2 * time.Second)
	for {
		_, pages := w.watch(domain).snapshot()
		for _, p := range pages {
			if eventTypeOf(p) == wantEvent {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("domain %q never observed compensation event %q", domain, wantEvent)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (w *world) theFallbackDomainObservesAnEvent(wantEvent string) error {
	return w.domainObservesACompensationEvent(fallbackDomain, wantEvent)
}

func (w *world) eventsAtSequencesCreatedAtOffsetsSeconds(seqList, offsetList string) error {
	seqs := parseIntList(seqList)
	offsets := parseIntList(offsetList)
	if len(seqs) != len(offsets) {
		return fmt.Errorf("sequence list and offset list must have equal length")
	}
	cover := &pb.Cover{Domain: "ledger", Root: w.rootFor("ledger")}
	key := store.RootKey{Domain: "ledger", RootHex: pb.RootHex(cover.Root)}
	for i, seq := range seqs {
		page := pb.NewEventPage(seq, &anypb.Any{TypeUrl: "event/Recorded"}, w.baseTime.Add(time.Duration(offsets[i])*time.Second))
		if err := w.driver.Append(w.ctx, key, []*pb.EventPage{page}); err != nil {
			return err
		}
	}
	return nil
}

func (w *world) iQueryAsOfTimeOffsetSeconds(offset int) error {
	cover := &pb.Cover{Domain: "ledger", Root: w.rootFor("ledger")}
	q := &pb.Query{Cover: cover, Selection: &pb.Query_Temporal{Temporal: &pb.TemporalQuery{
		PointInTime: &pb.TemporalQuery_AsOfTime{AsOfTime: timestamppb.New(w.baseTime.Add(time.Duration(offset) * time.Second))},
	}}}
	var err error
	w.queryResult, err = w.query.GetEvents(w.ctx, q)
	return err
}

func (w *world) iQueryAsOfSequence(seq int) error {
	cover := &pb.Cover{Domain: "ledger", Root: w.rootFor("ledger")}
	q := &pb.Query{Cover: cover, Selection: &pb.Query_Temporal{Temporal: &pb.TemporalQuery{
		PointInTime: &pb.TemporalQuery_AsOfSequence{AsOfSequence: uint32(seq)},
	}}}
	var err error
	w.queryResult, err = w.query.GetEvents(w.ctx, q)
	return err
}

func (w *world) theResultContainsExactlySequences(list string) error {
	want := parseIntList(list)
	got := make([]uint32, len(w.queryResult.GetPages()))
	for i, p := range w.queryResult.GetPages() {
		got[i] = p.GetSequence()
	}
	if len(got) != len(want) {
		return fmt.Errorf("expected sequences %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("expected sequences %v, got %v", want, got)
		}
	}
	return nil
}

// InitializeScenario wires every step above plus the fresh-world lifecycle
// hooks, following the teacher's single-ScenarioInitializer pattern.
func InitializeScenario(ctx *godog.ScenarioContext) {
	var w *world

	ctx.Before(func(goCtx context.Context, sc *godog.Scenario) (context.Context, error) {
		var err error
		w, err = newWorld()
		return goCtx, err
	})
	ctx.After(func(goCtx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if w != nil {
			w.close()
		}
		return goCtx, nil
	})

	ctx.Step(`^a fresh aggregate root in domain "([^"]*)"$`, func(domain string) error {
		return w.aFreshAggregateRootInDomain(domain)
	})
	ctx.Step(`^a fresh aggregate root in domain "([^"]*)" with (\d+) prior events$`, func(domain string, count int) error {
		return w.aFreshAggregateRootInDomainWithPriorEvents(domain, count)
	})
	ctx.Step(`^I submit a (STRICT|COMMUTATIVE) command at sequence (\d+) producing event "([^"]*)"$`, func(strategy string, seq int, event string) error {
		return w.iSubmitACommandAtSequenceProducingEvent(strategy, seq, event)
	})
	ctx.Step(`^two clients each submit a (STRICT|COMMUTATIVE) command at sequence (\d+)$`, func(strategy string, seq int) error {
		return w.twoClientsEachSubmitACommandAtSequence(strategy, seq)
	})
	ctx.Step(`^the root's EventBook has pages at sequences \[([0-9, ]+)\]$`, func(list string) error {
		return w.theRootsEventBookHasPagesAtSequences(list)
	})
	ctx.Step(`^the EventBook carries no snapshot$`, func() error {
		return w.theEventBookCarriesNoSnapshot()
	})
	ctx.Step(`^exactly one command succeeds with an event at sequence (\d+)$`, func(seq int) error {
		return w.exactlyOneCommandSucceedsWithAnEventAtSequence(seq)
	})
	ctx.Step(`^the other command fails with code (\w+)$`, func(code string) error {
		return w.theOtherCommandFailsWithCode(code)
	})
	ctx.Step(`^both commands eventually succeed$`, func() error {
		return w.bothCommandsEventuallySucceed()
	})
	ctx.Step(`^a saga "([^"]*)" subscribed to domain "([^"]*)" that issues a command to domain "([^"]*)"$`, func(sagaName, source, target string) error {
		return w.aSagaSubscribedToDomainThatIssuesACommandToDomain(sagaName, source, target)
	})
	ctx.Step(`^domain "([^"]*)" rejects every command with reason "([^"]*)"$`, func(domain, reason string) error {
		return w.domainRejectsEveryCommandWithReason(domain, reason)
	})
	ctx.Step(`^domain "([^"]*)" compensates a revoked command by producing event "([^"]*)"$`, func(domain, event string) error {
		return w.domainCompensatesARevokedCommandByProducingEvent(domain, event)
	})
	ctx.Step(`^domain "([^"]*)" declines to compensate any revoked command$`, func(domain string) error {
		return w.domainDeclinesToCompensateAnyRevokedCommand(domain)
	})
	ctx.Step(`^I submit a command to domain "([^"]*)" producing event "([^"]*)" with correlation_id "([^"]*)"$`, func(domain, event, correlationID string) error {
		return w.iSubmitACommandToDomainProducingEventWithCorrelationId(domain, event, correlationID)
	})
	ctx.Step(`^domain "([^"]*)" observes an event "([^"]*)" with correlation_id "([^"]*)"$`, func(domain, event, correlationID string) error {
		return w.domainObservesAnEventWithCorrelationId(domain, event, correlationID)
	})
	ctx.Step(`^domain "([^"]*)" observes a compensation event "([^"]*)"$`, func(domain, event string) error {
		return w.domainObservesACompensationEvent(domain, event)
	})
	ctx.Step(`^the fallback domain observes a "([^"]*)" event$`, func(event string) error {
		return w.theFallbackDomainObservesAnEvent(event)
	})
	ctx.Step(`^events at sequences \[([0-9, ]+)\] created at offsets \[([0-9, ]+)\] seconds$`, func(seqs, offsets string) error {
		return w.eventsAtSequencesCreatedAtOffsetsSeconds(seqs, offsets)
	})
	ctx.Step(`^I query as of time offset (\d+) seconds$`, func(offset int) error {
		return w.iQueryAsOfTimeOffsetSeconds(offset)
	})
	ctx.Step(`^I query as of sequence (\d+)$`, func(seq int) error {
		return w.iQueryAsOfSequence(seq)
	})
	ctx.Step(`^the result contains exactly sequences \[([0-9, ]+)\]$`, func(list string) error {
		return w.theResultContainsExactlySequences(list)
	})
}
