package aggregate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angzarr-io/angzarr/internal/errs"
	"github.com/angzarr-io/angzarr/internal/pb"
)

// SyncWaiter lets the Projector Coordinator and Saga Coordinator signal
// "this event is fully settled" back to the Aggregate Coordinator, so
// HandleSync's SIMPLE/CASCADE modes (§4.3) can block the caller until the
// downstream work they describe has actually happened, instead of just
// "persisted and published".
type SyncWaiter struct {
	mu        sync.Mutex
	projected map[string]chan struct{}
	settled   map[string]chan struct{}

	ProjectorTimeout time.Duration
	CascadeTimeout   time.Duration
}

// NewSyncWaiter builds a waiter with the given per-step timeouts.
func NewSyncWaiter(projectorTimeout, cascadeTimeout time.Duration) *SyncWaiter {
	return &SyncWaiter{
		projected:        make(map[string]chan struct{}),
		settled:          make(map[string]chan struct{}),
		ProjectorTimeout: projectorTimeout,
		CascadeTimeout:   cascadeTimeout,
	}
}

func eventKey(cover *pb.Cover, sequence uint32) string {
	return fmt.Sprintf("%s/%s/%d", cover.GetDomain(), pb.RootHex(cover.GetRoot()), sequence)
}

func waitChan(m map[string]chan struct{}, key string) chan struct{} {
	ch, ok := m[key]
	if !ok {
		ch = make(chan struct{})
		m[key] = ch
	}
	return ch
}

// NotifyProjected signals that every synchronous projector subscribed to
// this event has acknowledged it.
func (w *SyncWaiter) NotifyProjected(cover *pb.Cover, sequence uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := eventKey(cover, sequence)
	ch := waitChan(w.projected, key)
	select {
	case <-ch:
	default:
		close(ch)
	}
}

// NotifySettled signals that the saga cascade rooted at this event has
// reached a terminal state (all derived commands either persisted or
// revoked) within the configured depth limit.
func (w *SyncWaiter) NotifySettled(cover *pb.Cover, sequence uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := eventKey(cover, sequence)
	ch := waitChan(w.settled, key)
	select {
	case <-ch:
	default:
		close(ch)
	}
}

// Await blocks the caller per mode: SIMPLE waits for NotifyProjected,
// CASCADE waits for both NotifyProjected and NotifySettled. NONE returns
// immediately (callers should skip calling Await for NONE).
func (w *SyncWaiter) Await(ctx context.Context, cover *pb.Cover, sequence uint32, mode pb.SyncMode) error {
	if mode == pb.SyncModeNone {
		return nil
	}
	key := eventKey(cover, sequence)

	w.mu.Lock()
	projCh := waitChan(w.projected, key)
	w.mu.Unlock()

	if err := w.wait(ctx, projCh, w.ProjectorTimeout); err != nil {
		return err
	}
	if mode == pb.SyncModeSimple {
		return nil
	}

	w.mu.Lock()
	settleCh := waitChan(w.settled, key)
	w.mu.Unlock()

	return w.wait(ctx, settleCh, w.CascadeTimeout)
}

func (w *SyncWaiter) wait(ctx context.Context, ch <-chan struct{}, timeout time.Duration) error {
	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return errs.DeadlineExceeded("sync wait cancelled: " + ctx.Err().Error())
	case <-timer:
		return errs.DeadlineExceeded("timed out waiting for downstream sync")
	}
}
