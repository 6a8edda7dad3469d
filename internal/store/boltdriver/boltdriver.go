// Package boltdriver is the embedded-file EventStore/SnapshotStore driver,
// backed by go.etcd.io/bbolt. All events live under one top-level bucket,
// with one nested bucket per root keyed by "domain/root-hex" and pages keyed by their big-endian sequence
// number so bucket iteration order is sequence order; snapshots live in a
// parallel bucket storing only the latest snapshot per root.
package boltdriver

import (
	"context"
	"encoding/binary"
	"time"

	"go.etcd.io/bbolt"
	"google.golang.org/protobuf/proto"

	"github.com/angzarr-io/angzarr/internal/pb"
	"github.com/angzarr-io/angzarr/internal/store"
)

var (
	bucketEvents    = []byte("events")
	bucketSnapshots = []byte("snapshots")
	bucketOutbox    = []byte("outbox")
)

// Driver implements store.EventStore and store.SnapshotStore over a single
// bbolt file, plus an outbox table for the opt-in publish-after-commit
// overlay described by the bus package.
type Driver struct {
	db *bbolt.DB
}

// Open creates or opens the bbolt file at path and ensures the top-level
// buckets exist.
func Open(path string) (*Driver, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketEvents, bucketSnapshots, bucketOutbox} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Driver{db: db}, nil
}

// Close releases the underlying file handle.
func (d *Driver) Close() error { return d.db.Close() }

func rootBucketKey(key store.RootKey) []byte {
	return []byte(key.Domain + "/" + key.RootHex)
}

func sequenceKey(seq uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, seq)
	return b
}

func (d *Driver) Append(_ context.Context, key store.RootKey, pages []*pb.EventPage) error {
	if len(pages) == 0 {
		return nil
	}
	return d.db.Update(func(tx *bbolt.Tx) error {
		root, err := tx.Bucket(bucketEvents).CreateBucketIfNotExists(rootBucketKey(key))
		if err != nil {
			return err
		}
		next := nextSequenceBucket(root)
		if pages[0].GetSequence() != next {
			return store.ErrSequenceConflict
		}
		for i, p := range pages {
			if p.GetSequence() != next+uint32(i) {
				return store.ErrSequenceConflict
			}
			raw, err := proto.Marshal(pb.ProtoMessageOf(p))
			if err != nil {
				return err
			}
			if err := root.Put(sequenceKey(p.GetSequence()), raw); err != nil {
				return err
			}
		}
		return nil
	})
}

func nextSequenceBucket(root *bbolt.Bucket) uint32 {
	c := root.Cursor()
	k, _ := c.Last()
	if k == nil {
		return 0
	}
	return binary.BigEndian.Uint32(k) + 1
}

func (d *Driver) NextSequence(_ context.Context, key store.RootKey) (uint32, error) {
	var next uint32
	err := d.db.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket(bucketEvents).Bucket(rootBucketKey(key))
		if root == nil {
			next = 0
			return nil
		}
		next = nextSequenceBucket(root)
		return nil
	})
	return next, err
}

func (d *Driver) Load(_ context.Context, key store.RootKey, fromSequence uint32, toSequence *uint32) ([]*pb.EventPage, error) {
	var pages []*pb.EventPage
	err := d.db.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket(bucketEvents).Bucket(rootBucketKey(key))
		if root == nil {
			return nil
		}
		c := root.Cursor()
		for k, v := c.Seek(sequenceKey(fromSequence)); k != nil; k, v = c.Next() {
			seq := binary.BigEndian.Uint32(k)
			if toSequence != nil && seq >= *toSequence {
				break
			}
			page := &pb.EventPage{}
			if err := proto.Unmarshal(v, pb.ProtoMessageOf(page)); err != nil {
				return err
			}
			pages = append(pages, page)
		}
		return nil
	})
	return pages, err
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
	if upper == 0 {
		return d.Load(ctx, key, 0, nil)
	}
	return d.Load(ctx, key, 0, &upper)
}

func (d *Driver) ListRoots(_ context.Context, domain string) ([]string, error) {
	var roots []string
	prefix := []byte(domain + "/")
	err := d.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketEvents).Cursor()
		for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
			if v != nil {
				continue
			}
			roots = append(roots, string(k[len(prefix):]))
		}
		return nil
	})
	return roots, err
}

func hasPrefix(k, prefix []byte) bool {
	if len(k) < len(prefix) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

func (d *Driver) Put(_ context.Context, key store.RootKey, snap *pb.Snapshot) error {
	return d.db.Update(func(tx *bbolt.Tx) error {
		raw, err := proto.Marshal(pb.ProtoMessageOf(snap))
		if err != nil {
			return err
		}
		return tx.Bucket(bucketSnapshots).Put(rootBucketKey(key), raw)
	})
}

func (d *Driver) GetLatest(_ context.Context, key store.RootKey) (*pb.Snapshot, error) {
	var snap *pb.Snapshot
	err := d.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketSnapshots).Get(rootBucketKey(key))
		if raw == nil {
			return nil
		}
		snap = &pb.Snapshot{}
		return proto.Unmarshal(raw, pb.ProtoMessageOf(snap))
	})
	return snap, err
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

// PutOutbox records a page pending publish to the event bus, keyed by
// domain/root/sequence so a crash between append and publish can be
// recovered by rescanning this bucket (§4.2's outbox overlay).
func (d *Driver) PutOutbox(_ context.Context, key store.RootKey, page *pb.EventPage) error {
	return d.db.Update(func(tx *bbolt.Tx) error {
		raw, err := proto.Marshal(pb.ProtoMessageOf(page))
		if err != nil {
			return err
		}
		k := append(rootBucketKey(key), sequenceKey(page.GetSequence())...)
		return tx.Bucket(bucketOutbox).Put(k, raw)
	})
}

// DeleteOutbox removes a page once it has been published successfully.
func (d *Driver) DeleteOutbox(_ context.Context, key store.RootKey, sequence uint32) error {
	return d.db.Update(func(tx *bbolt.Tx) error {
		k := append(rootBucketKey(key), sequenceKey(sequence)...)
		return tx.Bucket(bucketOutbox).Delete(k)
	})
}

// PendingOutbox returns unpublished pages in bucket order, at most limit of
// them when limit > 0. No background worker in this repository calls it.
func (d *Driver) PendingOutbox(_ context.Context, limit int) ([]*pb.EventPage, error) {
	var pages []*pb.EventPage
	err := d.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketOutbox).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			page := &pb.EventPage{}
			if err := proto.Unmarshal(v, pb.ProtoMessageOf(page)); err != nil {
				return err
			}
			pages = append(pages, page)
			if limit > 0 && len(pages) >= limit {
				break
			}
		}
		return nil
	})
	return pages, err
}
