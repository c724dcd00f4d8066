package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	statusBucket = "target_status"
	// value layout: 8 bytes big-endian expiry unix seconds, 1 byte state.
	statusValueBytes = 9
)

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	statusTTL       time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(statusBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		statusTTL:       opts.StatusTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// LastStatus returns the stored reachability for id, dropping the entry if it expired.
func (b *boltStore) LastStatus(id string) (bool, bool, error) {
	if b == nil || b.db == nil {
		return false, false, nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return false, false, err
	}

	var up, found bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(statusBucket))
		if bucket == nil {
			return fmt.Errorf("status bucket missing")
		}

		key := []byte(id)
		value := bucket.Get(key)
		if value == nil {
			return nil
		}

		expiry, state, ok := decodeStatus(value)
		if !ok || !expiry.After(now) {
			return bucket.Delete(key)
		}

		up, found = state, true
		return nil
	})
	return up, found, err
}

// SetStatus records the reachability of id and refreshes its expiry.
func (b *boltStore) SetStatus(id string, up bool) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(statusBucket))
		if bucket == nil {
			return fmt.Errorf("status bucket missing")
		}
		return bucket.Put([]byte(id), encodeStatus(now.Add(b.statusTTL), up))
	})
}

// maybeCleanupExpired removes expired entries on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(statusBucket))
		if bucket == nil {
			return fmt.Errorf("status bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			expiry, _, ok := decodeStatus(v)
			if !ok || !expiry.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func encodeStatus(expiry time.Time, up bool) []byte {
	buf := make([]byte, statusValueBytes)
	binary.BigEndian.PutUint64(buf, uint64(expiry.Unix()))
	if up {
		buf[8] = 1
	}
	return buf
}

func decodeStatus(value []byte) (time.Time, bool, bool) {
	if len(value) != statusValueBytes {
		return time.Time{}, false, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:8]))
	if unix <= 0 {
		return time.Time{}, false, false
	}
	return time.Unix(unix, 0), value[8] == 1, true
}
