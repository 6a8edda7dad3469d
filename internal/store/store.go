// Package store defines the EventStore and SnapshotStore collaborator
// contracts (§4.1) and the aggregate-instance key they're indexed by.
// Multiple drivers satisfy these contracts; see memdriver and boltdriver.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/angzarr-io/angzarr/internal/pb"
)

// RootKey identifies one aggregate instance: its domain and its 16-byte
// root, hex-encoded so it can key maps/indexes directly.
type RootKey struct {
	Domain  string
	RootHex string
}

// ErrSequenceConflict is returned by Append when the first page's sequence
// does not equal the stored next_sequence for that root — the concurrency
// primitive every merge strategy is built on top of (§4.1).
var ErrSequenceConflict = errors.New("sequence conflict")

// EventStore is the append-only event log collaborator contract.
type EventStore interface {
	// Append atomically appends pages to the root's log. Fails with
	// ErrSequenceConflict if pages[0].Sequence != next_sequence for the root.
	Append(ctx context.Context, key RootKey, pages []*pb.EventPage) error
	// Load returns ordered EventPages in [fromSequence, toSequence), where a
	// nil toSequence means "through the latest known sequence".
	Load(ctx context.Context, key RootKey, fromSequence uint32, toSequence *uint32) ([]*pb.EventPage, error)
	// LoadTemporalByTime returns pages with CreatedAt <= at, in sequence order.
	LoadTemporalByTime(ctx context.Context, key RootKey, at time.Time) ([]*pb.EventPage, error)
	// LoadTemporalBySequence returns pages with Sequence <= maxSequence.
	LoadTemporalBySequence(ctx context.Context, key RootKey, maxSequence uint32) ([]*pb.EventPage, error)
	// NextSequence returns the next expected sequence for the root (0 if unseen).
	NextSequence(ctx context.Context, key RootKey) (uint32, error)
	// ListRoots returns every known root for a domain.
	ListRoots(ctx context.Context, domain string) ([]string, error)
}

// SnapshotStore is the materialized-state collaborator contract. Snapshots
// may be overwritten by later snapshots of the same root; there is no
// deletion contract.
type SnapshotStore interface {
	Put(ctx context.Context, key RootKey, snap *pb.Snapshot) error
	GetLatest(ctx context.Context, key RootKey) (*pb.Snapshot, error)
	GetLatestBefore(ctx context.Context, key RootKey, sequence *uint32, at *time.Time) (*pb.Snapshot, error)
}

// LoadEventBook assembles a complete EventBook for key: the latest snapshot
// (if any) plus every event page strictly after it, with NextSequence
// computed per §3's formula. This is the one assembly path every coordinator
// uses so the "next_sequence" computation never drifts between callers.
func LoadEventBook(ctx context.Context, events EventStore, snapshots SnapshotStore, cover *pb.Cover) (*pb.EventBook, error) {
	key := RootKey{Domain: cover.GetDomain(), RootHex: pb.RootHex(cover.GetRoot())}

	snap, err := snapshots.GetLatest(ctx, key)
	if err != nil {
		return nil, err
	}

	from := uint32(0)
	if snap != nil {
		from = snap.GetSequence() + 1
	}
	pages, err := events.Load(ctx, key, from, nil)
	if err != nil {
		return nil, err
	}

	book := &pb.EventBook{Cover: cover, Snapshot: snap, Pages: pages}
	book.NextSequence = nextSequence(snap, pages)
	return book, nil
}

func nextSequence(snap *pb.Snapshot, pages []*pb.EventPage) uint32 {
	if len(pages) > 0 {
		return pages[len(pages)-1].GetSequence() + 1
	}
	if snap != nil {
		return snap.GetSequence() + 1
	}
	return 0
}
