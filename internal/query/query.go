// Package query is the Event Query & Streaming subsystem (§4.7): point
// reads of an aggregate's EventBook under the three query selections
// (SequenceRange, SequenceSet, Temporal), the Synchronize point-in-time
// barrier SIMPLE/CASCADE callers use to wait on downstream settlement, root
// listing, and the live correlation-filtered event stream.
package query

import (
	"context"
	"encoding/hex"
	"fmt"
	"sort"

	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"

	"github.com/angzarr-io/angzarr/internal/aggregate"
	"github.com/angzarr-io/angzarr/internal/bus"
	"github.com/angzarr-io/angzarr/internal/errs"
	"github.com/angzarr-io/angzarr/internal/pb"
	"github.com/angzarr-io/angzarr/internal/store"
)

// Coordinator implements EventQueryServiceServer and EventStreamServiceServer.
type Coordinator struct {
	events    store.EventStore
	snapshots store.SnapshotStore
	bus       *bus.Bus
	sync      *aggregate.SyncWaiter

	// reads dedupes concurrent identical full-EventBook loads (the common
	// case: no query selection, just "give me current state") behind a
	// single in-flight store round trip, since a hot root can receive many
	// simultaneous GetEventBook calls right after a write.
	reads singleflight.Group
}

// New builds a Coordinator over the shared event/snapshot stores, bus, and
// SyncWaiter instance the rest of the coordination core uses.
func New(events store.EventStore, snapshots store.SnapshotStore, b *bus.Bus, sw *aggregate.SyncWaiter) *Coordinator {
	return &Coordinator{events: events, snapshots: snapshots, bus: b, sync: sw}
}

var _ pb.EventQueryServiceServer = (*Coordinator)(nil)
var _ pb.EventStreamServiceServer = (*Coordinator)(nil)

// GetEventBook resolves req's Cover, applying req's Query selection if one
// was given, defaulting to the current complete EventBook otherwise.
func (c *Coordinator) GetEventBook(ctx context.Context, req *pb.GetEventBookRequest) (*pb.EventBook, error) {
	cover := req.GetCover()
	if cover == nil {
		return nil, errs.InvalidArgument("GetEventBook requires a cover")
	}
	return c.resolve(ctx, cover, req.GetQuery())
}

// GetEvents is GetEventBook with the query folded into a single message, the
// shape the gRPC-gateway REST surface exposes directly.
func (c *Coordinator) GetEvents(ctx context.Context, q *pb.Query) (*pb.EventBook, error) {
	cover := q.GetCover()
	if cover == nil {
		return nil, errs.InvalidArgument("GetEvents requires a query cover")
	}
	return c.resolve(ctx, cover, q)
}

func (c *Coordinator) resolve(ctx context.Context, cover *pb.Cover, q *pb.Query) (*pb.EventBook, error) {
	switch {
	case q == nil:
		return c.loadFull(ctx, cover)
	case q.GetRange() != nil:
		return c.loadRange(ctx, cover, q.GetRange())
	case q.GetSequences() != nil:
		return c.loadSet(ctx, cover, q.GetSequences())
	case q.GetTemporal() != nil:
		return c.loadTemporal(ctx, cover, q.GetTemporal())
	default:
		return c.loadFull(ctx, cover)
	}
}

func (c *Coordinator) loadFull(ctx context.Context, cover *pb.Cover) (*pb.EventBook, error) {
	key := fmt.Sprintf("%s/%s", cover.GetDomain(), pb.RootHex(cover.GetRoot()))
	v, err, _ := c.reads.Do(key, func() (interface{}, error) {
		return store.LoadEventBook(ctx, c.events, c.snapshots, cover)
	})
	if err != nil {
		return nil, errs.Internal("load event book", err)
	}
	return v.(*pb.EventBook), nil
}

// loadRange answers a SequenceRange selection with no snapshot: an explicit
// slice of the log, not a replay, so attaching a snapshot the caller didn't
// ask for would misrepresent what was actually returned.
func (c *Coordinator) loadRange(ctx context.Context, cover *pb.Cover, r *pb.SequenceRange) (*pb.EventBook, error) {
	key := store.RootKey{Domain: cover.GetDomain(), RootHex: pb.RootHex(cover.GetRoot())}
	pages, err := c.events.Load(ctx, key, r.GetLower(), r.Upper)
	if err != nil {
		return nil, errs.Internal("load sequence range", err)
	}
	return bookOf(cover, pages), nil
}

func (c *Coordinator) loadSet(ctx context.Context, cover *pb.Cover, set *pb.SequenceSet) (*pb.EventBook, error) {
	seqs := set.GetSequences()
	if len(seqs) == 0 {
		return bookOf(cover, nil), nil
	}
	sorted := append([]uint32(nil), seqs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	min, max := sorted[0], sorted[len(sorted)-1]

	key := store.RootKey{Domain: cover.GetDomain(), RootHex: pb.RootHex(cover.GetRoot())}
	upper := max + 1
	pages, err := c.events.Load(ctx, key, min, &upper)
	if err != nil {
		return nil, errs.Internal("load sequence set", err)
	}

	want := make(map[uint32]bool, len(sorted))
	for _, s := range sorted {
		want[s] = true
	}
	filtered := pages[:0]
	for _, p := range pages {
		if want[p.GetSequence()] {
			filtered = append(filtered, p)
		}
	}
	return bookOf(cover, filtered), nil
}

// loadTemporal implements §4.7's rule: temporal queries skip snapshots and
// replay from sequence 0, since a snapshot may postdate the point in time
// being asked about (P7).
func (c *Coordinator) loadTemporal(ctx context.Context, cover *pb.Cover, t *pb.TemporalQuery) (*pb.EventBook, error) {
	key := store.RootKey{Domain: cover.GetDomain(), RootHex: pb.RootHex(cover.GetRoot())}
	if at := t.GetAsOfTime(); at != nil {
		pages, err := c.events.LoadTemporalByTime(ctx, key, at.AsTime())
		if err != nil {
			return nil, errs.Internal("load temporal by time", err)
		}
		return bookOf(cover, pages), nil
	}
	pages, err := c.events.LoadTemporalBySequence(ctx, key, t.GetAsOfSequence())
	if err != nil {
		return nil, errs.Internal("load temporal by sequence", err)
	}
	return bookOf(cover, pages), nil
}

func bookOf(cover *pb.Cover, pages []*pb.EventPage) *pb.EventBook {
	book := &pb.EventBook{Cover: cover, Pages: pages}
	if len(pages) > 0 {
		book.NextSequence = pages[len(pages)-1].GetSequence() + 1
	}
	return book
}

// Synchronize blocks until cover's event stream has been observed through
// ThroughSequence by every synchronous projector and settled saga cascade,
// the same barrier HandleSync's CASCADE mode waits on internally — this lets
// a caller that issued a NONE-mode command later wait for the same guarantee
// out of band.
func (c *Coordinator) Synchronize(ctx context.Context, req *pb.SynchronizeRequest) (*pb.SynchronizeResponse, error) {
	cover := req.GetCover()
	if cover == nil {
		return nil, errs.InvalidArgument("Synchronize requires a cover")
	}
	if err := c.sync.Await(ctx, cover, req.GetThroughSequence(), pb.SyncModeCascade); err != nil {
		if errs.CodeOf(err) == codes.DeadlineExceeded {
			return &pb.SynchronizeResponse{Reached: false}, nil
		}
		return nil, err
	}
	return &pb.SynchronizeResponse{Reached: true}, nil
}

// GetAggregateRoots lists every known root for a domain.
func (c *Coordinator) GetAggregateRoots(ctx context.Context, req *pb.GetAggregateRootsRequest) (*pb.GetAggregateRootsResponse, error) {
	hexRoots, err := c.events.ListRoots(ctx, req.GetDomain())
	if err != nil {
		return nil, errs.Internal("list roots", err)
	}
	roots := make([]*pb.UUID, 0, len(hexRoots))
	for _, h := range hexRoots {
		b, err := hex.DecodeString(h)
		if err != nil {
			continue
		}
		roots = append(roots, &pb.UUID{Value: b})
	}
	return &pb.GetAggregateRootsResponse{Roots: roots}, nil
}

// Subscribe streams every EventPage matching q's correlation_id as it is
// published on q's domain, until the client disconnects. Empty
// correlation_id is rejected: there is nothing meaningful to correlate on.
func (c *Coordinator) Subscribe(q *pb.Query, stream pb.EventStreamService_SubscribeServer) error {
	cover := q.GetCover()
	correlationID := cover.GetCorrelationId()
	if correlationID == "" {
		return errs.InvalidArgument("EventStream.Subscribe requires a non-empty correlation_id")
	}

	ctx := stream.Context()
	errCh := make(chan error, 1)

	sub, err := c.bus.Subscribe(cover.GetDomain(), func(ctx context.Context, msg bus.Message) error {
		if msg.Cover.GetCorrelationId() != correlationID {
			return nil
		}
		if err := stream.Send(msg.Page); err != nil {
			select {
			case errCh <- err:
			default:
			}
		}
		return nil
	})
	if err != nil {
		return errs.Unavailable("subscribe to bus failed", err)
	}
	defer sub.Cancel()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
