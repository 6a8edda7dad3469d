package boltdriver

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/angzarr-io/angzarr/internal/pb"
	"github.com/angzarr-io/angzarr/internal/store"
)

func openTestDriver(t *testing.T) *Driver {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func testKey() store.RootKey {
	return store.RootKey{Domain: "orders", RootHex: "deadbeef"}
}

func page(seq uint32, at time.Time) *pb.EventPage {
	return pb.NewEventPage(seq, &anypb.Any{TypeUrl: "orders.OrderPlaced"}, timestamppb.New(at))
}

func TestAppend_thenLoad_returnsInSequenceOrder(t *testing.T) {
	d := openTestDriver(t)
	ctx := context.Background()
	key := testKey()

	if err := d.Append(ctx, key, []*pb.EventPage{page(0, time.Now()), page(1, time.Now())}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	pages, err := d.Load(ctx, key, 0, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(pages) != 2 || pages[0].Sequence != 0 || pages[1].Sequence != 1 {
		t.Fatalf("expected sequences 0,1 in order, got %+v", pages)
	}
}

func TestAppend_sequenceConflict_isRejected(t *testing.T) {
	d := openTestDriver(t)
	ctx := context.Background()
	key := testKey()

	if err := d.Append(ctx, key, []*pb.EventPage{page(0, time.Now())}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := d.Append(ctx, key, []*pb.EventPage{page(0, time.Now())}); err != store.ErrSequenceConflict {
		t.Errorf("expected ErrSequenceConflict, got %v", err)
	}
}

func TestNextSequence_unseenRoot_returnsZero(t *testing.T) {
	d := openTestDriver(t)
	next, err := d.NextSequence(context.Background(), testKey())
	if err != nil {
		t.Fatalf("NextSequence: %v", err)
	}
	if next != 0 {
		t.Errorf("expected 0, got %d", next)
	}
}

func TestListRoots_scopedToDomainPrefix(t *testing.T) {
	d := openTestDriver(t)
	ctx := context.Background()
	if err := d.Append(ctx, store.RootKey{Domain: "orders", RootHex: "a"}, []*pb.EventPage{page(0, time.Now())}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := d.Append(ctx, store.RootKey{Domain: "orders", RootHex: "b"}, []*pb.EventPage{page(0, time.Now())}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := d.Append(ctx, store.RootKey{Domain: "customers", RootHex: "c"}, []*pb.EventPage{page(0, time.Now())}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	roots, err := d.ListRoots(ctx, "orders")
	if err != nil {
		t.Fatalf("ListRoots: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots under orders, got %v", roots)
	}
}

func TestPutAndGetLatest_roundTripsThroughDisk(t *testing.T) {
	d := openTestDriver(t)
	ctx := context.Background()
	key := testKey()
	snap := &pb.Snapshot{Sequence: 7, State: &anypb.Any{TypeUrl: "orders.OrderState"}, CreatedAt: timestamppb.Now()}

	if err := d.Put(ctx, key, snap); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := d.GetLatest(ctx, key)
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if got == nil || got.Sequence != 7 {
		t.Fatalf("expected snapshot at sequence 7, got %+v", got)
	}
}

func TestPutOutbox_pendingThenDeleted(t *testing.T) {
	d := openTestDriver(t)
	ctx := context.Background()
	key := testKey()
	p := page(0, time.Now())

	if err := d.PutOutbox(ctx, key, p); err != nil {
		t.Fatalf("PutOutbox: %v", err)
	}
	pending, err := d.PendingOutbox(ctx, 0)
	if err != nil {
		t.Fatalf("PendingOutbox: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending outbox entry, got %d", len(pending))
	}

	if err := d.DeleteOutbox(ctx, key, 0); err != nil {
		t.Fatalf("DeleteOutbox: %v", err)
	}
	pending, err = d.PendingOutbox(ctx, 0)
	if err != nil {
		t.Fatalf("PendingOutbox: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected outbox to be empty after delete, got %d", len(pending))
	}
}

func TestPendingOutbox_respectsLimit(t *testing.T) {
	d := openTestDriver(t)
	ctx := context.Background()
	key := testKey()
	for i := uint32(0); i < 5; i++ {
		if err := d.PutOutbox(ctx, key, page(i, time.Now())); err != nil {
			t.Fatalf("PutOutbox seq %d: %v", i, err)
		}
	}
	pending, err := d.PendingOutbox(ctx, 2)
	if err != nil {
		t.Fatalf("PendingOutbox: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected limit of 2 entries, got %d", len(pending))
	}
}

func TestReopen_retainsPersistedData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	d1, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	key := testKey()
	if err := d1.Append(ctx, key, []*pb.EventPage{page(0, time.Now())}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := d1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	d2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer d2.Close()

	pages, err := d2.Load(ctx, key, 0, nil)
	if err != nil {
		t.Fatalf("Load after reopen: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected persisted page to survive reopen, got %d pages", len(pages))
	}
}
