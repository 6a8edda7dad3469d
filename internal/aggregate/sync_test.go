package aggregate

import (
	"context"
	"testing"
	"time"

	"github.com/angzarr-io/angzarr/internal/pb"
)

func syncTestCover() *pb.Cover {
	return &pb.Cover{Domain: "orders", Root: &pb.UUID{Value: []byte{0x02}}}
}

func TestAwait_modeNone_returnsImmediately(t *testing.T) {
	w := NewSyncWaiter(0, 0)
	if err := w.Await(context.Background(), syncTestCover(), 0, pb.SyncModeNone); err != nil {
		t.Errorf("expected nil error for SyncModeNone, got %v", err)
	}
}

func TestAwait_simple_unblocksOnNotifyProjected(t *testing.T) {
	w := NewSyncWaiter(time.Second, time.Second)
	cover := syncTestCover()

	done := make(chan error, 1)
	go func() {
		done <- w.Await(context.Background(), cover, 0, pb.SyncModeSimple)
	}()

	time.Sleep(20 * time.Millisecond)
	w.NotifyProjected(cover, 0)

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Await(SIMPLE) never returned")
	}
}

func TestAwait_simple_notifyBeforeAwait_stillUnblocks(t *testing.T) {
	w := NewSyncWaiter(time.Second, time.Second)
	cover := syncTestCover()

	w.NotifyProjected(cover, 1)

	if err := w.Await(context.Background(), cover, 1, pb.SyncModeSimple); err != nil {
		t.Errorf("expected nil error when notified before Await, got %v", err)
	}
}

func TestAwait_simple_timesOutWithoutNotify(t *testing.T) {
	w := NewSyncWaiter(20*time.Millisecond, time.Second)
	cover := syncTestCover()

	err := w.Await(context.Background(), cover, 2, pb.SyncModeSimple)
	if err == nil {
		t.Fatal("expected a deadline-exceeded error")
	}
}

func TestAwait_cascade_requiresBothProjectedAndSettled(t *testing.T) {
	w := NewSyncWaiter(time.Second, time.Second)
	cover := syncTestCover()

	done := make(chan error, 1)
	go func() {
		done <- w.Await(context.Background(), cover, 3, pb.SyncModeCascade)
	}()

	w.NotifyProjected(cover, 3)

	select {
	case err := <-done:
		t.Fatalf("expected Await(CASCADE) to still be blocked after only NotifyProjected, got %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	w.NotifySettled(cover, 3)

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Await(CASCADE) never returned after NotifySettled")
	}
}

func TestAwait_cascade_timesOutOnSettleStage(t *testing.T) {
	w := NewSyncWaiter(time.Second, 20*time.Millisecond)
	cover := syncTestCover()
	w.NotifyProjected(cover, 4)

	err := w.Await(context.Background(), cover, 4, pb.SyncModeCascade)
	if err == nil {
		t.Fatal("expected a deadline-exceeded error from the cascade stage")
	}
}

func TestAwait_cancelledContext_returnsError(t *testing.T) {
	w := NewSyncWaiter(time.Second, time.Second)
	cover := syncTestCover()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Await(ctx, cover, 5, pb.SyncModeSimple)
	if err == nil {
		t.Fatal("expected an error for an already-cancelled context")
	}
}

func TestNotifyProjected_idempotent(t *testing.T) {
	w := NewSyncWaiter(time.Second, time.Second)
	cover := syncTestCover()

	w.NotifyProjected(cover, 6)
	w.NotifyProjected(cover, 6)

	if err := w.Await(context.Background(), cover, 6, pb.SyncModeSimple); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestEventKey_distinguishesDomain(t *testing.T) {
	w := NewSyncWaiter(20*time.Millisecond, 20*time.Millisecond)
	cover := syncTestCover()

	w.NotifyProjected(cover, 7)

	otherCover := &pb.Cover{Domain: "customers", Root: cover.Root}
	err := w.Await(context.Background(), otherCover, 7, pb.SyncModeSimple)
	if err == nil {
		t.Error("expected a different domain at the same sequence to not share the notification")
	}
}
