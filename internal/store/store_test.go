package store_test

import (
	"context"
	"testing"

	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/angzarr-io/angzarr/internal/pb"
	"github.com/angzarr-io/angzarr/internal/store"
	"github.com/angzarr-io/angzarr/internal/store/memdriver"
)

func cover(rootByte byte) *pb.Cover {
	return &pb.Cover{Domain: "orders", Root: &pb.UUID{Value: []byte{rootByte}}}
}

func TestLoadEventBook_noSnapshotOrEvents_returnsEmptyBookAtSequenceZero(t *testing.T) {
	d, err := memdriver.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	book, err := store.LoadEventBook(context.Background(), d, d, cover(0x01))
	if err != nil {
		t.Fatalf("LoadEventBook: %v", err)
	}
	if book.NextSequence != 0 {
		t.Errorf("expected next_sequence 0, got %d", book.NextSequence)
	}
	if len(book.Pages) != 0 || book.Snapshot != nil {
		t.Errorf("expected empty book, got %+v", book)
	}
}

func TestLoadEventBook_withSnapshot_onlyLoadsPagesAfterIt(t *testing.T) {
	d, _ := memdriver.New()
	ctx := context.Background()
	c := cover(0x02)
	key := store.RootKey{Domain: c.Domain, RootHex: pb.RootHex(c.Root)}

	for i := uint32(0); i < 5; i++ {
		evt := pb.NewEventPage(i, &anypb.Any{TypeUrl: "orders.OrderPlaced"}, timestamppb.Now())
		if err := d.Append(ctx, key, []*pb.EventPage{evt}); err != nil {
			t.Fatalf("Append seq %d: %v", i, err)
		}
	}
	if err := d.Put(ctx, key, &pb.Snapshot{Sequence: 2}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	book, err := store.LoadEventBook(ctx, d, d, c)
	if err != nil {
		t.Fatalf("LoadEventBook: %v", err)
	}
	if book.Snapshot == nil || book.Snapshot.Sequence != 2 {
		t.Fatalf("expected snapshot at sequence 2, got %+v", book.Snapshot)
	}
	if len(book.Pages) != 2 {
		t.Fatalf("expected 2 pages after the snapshot (seq 3,4), got %d", len(book.Pages))
	}
	if book.Pages[0].Sequence != 3 || book.Pages[1].Sequence != 4 {
		t.Errorf("expected sequences 3,4, got %d,%d", book.Pages[0].Sequence, book.Pages[1].Sequence)
	}
	if book.NextSequence != 5 {
		t.Errorf("expected next_sequence 5, got %d", book.NextSequence)
	}
}

func TestLoadEventBook_withPagesNoSnapshot_nextSequenceFollowsLastPage(t *testing.T) {
	d, _ := memdriver.New()
	ctx := context.Background()
	c := cover(0x03)
	key := store.RootKey{Domain: c.Domain, RootHex: pb.RootHex(c.Root)}

	if err := d.Append(ctx, key, []*pb.EventPage{pb.NewEventPage(0, nil, timestamppb.Now())}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	book, err := store.LoadEventBook(ctx, d, d, c)
	if err != nil {
		t.Fatalf("LoadEventBook: %v", err)
	}
	if book.NextSequence != 1 {
		t.Errorf("expected next_sequence 1, got %d", book.NextSequence)
	}
}
