// Package memdriver is the in-memory EventStore/SnapshotStore driver,
// backed by hashicorp/go-memdb's immutable radix-tree database. It is the
// default storage driver for a fresh checkout and for tests: no external
// dependency, (domain, root, sequence) indexing; temporal-by-time reads
// filter a root's pages by created_at.
package memdriver

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/angzarr-io/angzarr/internal/pb"
	"github.com/angzarr-io/angzarr/internal/store"
)

const (
	tableEvent    = "event"
	tableSnapshot = "snapshot"
)

// storedEvent is the memdb row shape for a single EventPage; go-memdb
// indexes are defined over these exported fields by reflection.
type storedEvent struct {
	Domain    string
	RootHex   string
	Sequence  uint32
	CreatedAt time.Time
	Page      *pb.EventPage
}

// storedSnapshot is the memdb row shape for a root's latest Snapshot.
type storedSnapshot struct {
	Domain  string
	RootHex string
	Snap    *pb.Snapshot
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableEvent: {
				Name: tableEvent,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:   "id",
						Unique: true,
						Indexer: &memdb.CompoundIndex{Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "Domain"},
							&memdb.StringFieldIndex{Field: "RootHex"},
							&memdb.UintFieldIndex{Field: "Sequence"},
						}},
					},
					"root": {
						Name: "root",
						Indexer: &memdb.CompoundIndex{Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "Domain"},
							&memdb.StringFieldIndex{Field: "RootHex"},
						}},
					},
					"created_at": {
						Name: "created_at",
						Indexer: &memdb.CompoundIndex{Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "Domain"},
							&memdb.StringFieldIndex{Field: "RootHex"},
							&memdb.UintFieldIndex{Field: "Sequence"},
						}},
					},
				},
			},
			tableSnapshot: {
				Name: tableSnapshot,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:   "id",
						Unique: true,
						Indexer: &memdb.CompoundIndex{Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "Domain"},
							&memdb.StringFieldIndex{Field: "RootHex"},
						}},
					},
				},
			},
		},
	}
}

// Driver implements store.EventStore and store.SnapshotStore over an
// in-process memdb.MemDB.
type Driver struct {
	db *memdb.MemDB
}

// New builds an empty in-memory driver.
func New() (*Driver, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, err
	}
	return &Driver{db: db}, nil
}

func (d *Driver) Append(_ context.Context, key store.RootKey, pages []*pb.EventPage) error {
	if len(pages) == 0 {
		return nil
	}
	txn := d.db.Txn(true)
	defer txn.Abort()

	next, err := d.nextSequenceTxn(txn, key)
	if err != nil {
		return err
	}
	if pages[0].GetSequence() != next {
		return store.ErrSequenceConflict
	}
	for i, p := range pages {
		if p.GetSequence() != next+uint32(i) {
			return store.ErrSequenceConflict
		}
		row := &storedEvent{
			Domain:    key.Domain,
			RootHex:   key.RootHex,
			Sequence:  p.GetSequence(),
			CreatedAt: p.GetCreatedAt().AsTime(),
			Page:      p,
		}
		if err := txn.Insert(tableEvent, row); err != nil {
			return err
		}
	}
	txn.Commit()
	return nil
}

func (d *Driver) nextSequenceTxn(txn *memdb.Txn, key store.RootKey) (uint32, error) {
	it, err := txn.GetReverse(tableEvent, "id_prefix", key.Domain, key.RootHex)
	if err != nil {
		return 0, err
	}
	if raw := it.Next(); raw != nil {
		return raw.(*storedEvent).Sequence + 1, nil
	}
	return 0, nil
}

func (d *Driver) NextSequence(_ context.Context, key store.RootKey) (uint32, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()
	return d.nextSequenceTxn(txn, key)
}

func (d *Driver) Load(_ context.Context, key store.RootKey, fromSequence uint32, toSequence *uint32) ([]*pb.EventPage, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableEvent, "root", key.Domain, key.RootHex)
	if err != nil {
		return nil, err
	}
	var rows []*storedEvent
	for raw := it.Next(); raw != nil; raw = it.Next() {
		rows = append(rows, raw.(*storedEvent))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Sequence < rows[j].Sequence })

	pages := make([]*pb.EventPage, 0, len(rows))
	for _, r := range rows {
		if r.Sequence < fromSequence {
			continue
		}
		if toSequence != nil && r.Sequence >= *toSequence {
			continue
		}
		pages = append(pages, r.Page)
	}
	return pages, nil
}

func (d *Driver) LoadTemporalByTime(ctx context.Context, key store.RootKey, at time.Time) ([]*pb.EventPage, error) {
	pages, err := d.Load(ctx, key, 0, nil)
	if err != nil {
		return nil, err
	}
	out := pages[:0:0]
	for _, p := range pages {
		if !p.GetCreatedAt().AsTime().After(at) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (d *Driver) LoadTemporalBySequence(ctx context.Context, key store.RootKey, maxSequence uint32) ([]*pb.EventPage, error) {
	upper := maxSequence + 1
	if maxSequence == math.MaxUint32 {
		return d.Load(ctx, key, 0, nil)
	}
	return d.Load(ctx, key, 0, &upper)
}

func (d *Driver) ListRoots(_ context.Context, domain string) ([]string, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableEvent, "root_prefix", domain)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var roots []string
	for raw := it.Next(); raw != nil; raw = it.Next() {
		r := raw.(*storedEvent)
		if _, ok := seen[r.RootHex]; !ok {
			seen[r.RootHex] = struct{}{}
			roots = append(roots, r.RootHex)
		}
	}
	return roots, nil
}

func (d *Driver) Put(_ context.Context, key store.RootKey, snap *pb.Snapshot) error {
	txn := d.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(tableSnapshot, &storedSnapshot{Domain: key.Domain, RootHex: key.RootHex, Snap: snap}); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (d *Driver) GetLatest(_ context.Context, key store.RootKey) (*pb.Snapshot, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()
	raw, err := txn.First(tableSnapshot, "id", key.Domain, key.RootHex)
	if err != nil || raw == nil {
		return nil, err
	}
	return raw.(*storedSnapshot).Snap, nil
}

func (d *Driver) GetLatestBefore(ctx context.Context, key store.RootKey, sequence *uint32, at *time.Time) (*pb.Snapshot, error) {
	snap, err := d.GetLatest(ctx, key)
	if err != nil || snap == nil {
		return nil, err
	}
	if sequence != nil && snap.GetSequence() > *sequence {
		return nil, nil
	}
	if at != nil && snap.GetCreatedAt().AsTime().After(*at) {
		return nil, nil
	}
	return snap, nil
}
