package cache

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/jmgilman/go/errors"
	"github.com/jonboulle/clockwork"
	bolt "go.etcd.io/bbolt"
)

// Store provides a persistent KV store with TTL semantics on top of bbolt.
// Expired entries stay on disk until overwritten or swept, but read as absent.
// It is safe for concurrent use by multiple goroutines.
type Store struct {
	db         *bolt.DB
	bucket     []byte
	defaultTTL time.Duration
	clock      clockwork.Clock
	mu         sync.RWMutex
}

type Options struct {
	// Bucket is the name of the Bolt bucket to use.
	Bucket string
	// DefaultTTL is used when SetEX is called with ttl <= 0.
	DefaultTTL time.Duration
	// Clock decides when entries expire. Defaults to the real clock.
	Clock clockwork.Clock
}

const (
	kindString byte = iota
	kindList
)

// Layout: 1 byte kind || 8 bytes big endian expiresAt (unix nanos, 0 = never) || payload
const headerSize = 9

type record struct {
	kind      byte
	expiresAt int64
	payload   []byte
}

func (r record) encode() []byte {
	buf := make([]byte, headerSize+len(r.payload))
	buf[0] = r.kind
	binary.BigEndian.PutUint64(buf[1:headerSize], uint64(r.expiresAt))
	copy(buf[headerSize:], r.payload)
	return buf
}

func decodeRecord(v []byte) (record, error) {
	if len(v) < headerSize {
		return record{}, errors.New(errors.CodeDatabase, "corrupt cache record")
	}
	return record{
		kind:      v[0],
		expiresAt: int64(binary.BigEndian.Uint64(v[1:headerSize])),
		payload:   append([]byte{}, v[headerSize:]...),
	}, nil
}

func (r record) list() ([]string, error) {
	var items []string
	if err := json.Unmarshal(r.payload, &items); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabase, "corrupt list record")
	}
	return items, nil
}

// Open initializes or opens a Store at the given path.
func Open(path string, opts Options) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, unavailable(err, "open")
	}
	bucket := []byte("cache")
	if opts.Bucket != "" {
		bucket = []byte(opts.Bucket)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, unavailable(err, "open")
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{db: db, bucket: bucket, defaultTTL: opts.DefaultTTL, clock: clock}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) expired(r record) bool {
	return r.expiresAt > 0 && s.clock.Now().UnixNano() >= r.expiresAt
}

// load returns the live record at key, or ErrNotFound / ErrExpired.
func (s *Store) load(tx *bolt.Tx, key string) (record, error) {
	v := tx.Bucket(s.bucket).Get([]byte(key))
	if v == nil {
		return record{}, ErrNotFound
	}
	r, err := decodeRecord(v)
	if err != nil {
		return record{}, err
	}
	if s.expired(r) {
		return record{}, ErrExpired
	}
	return r, nil
}

func (s *Store) put(tx *bolt.Tx, key string, r record) error {
	return tx.Bucket(s.bucket).Put([]byte(key), r.encode())
}

func (s *Store) update(fn func(tx *bolt.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(fn)
}

func (s *Store) view(fn func(tx *bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.View(fn)
}

// Set stores value under key with no expiration, replacing any previous value.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	return s.update(func(tx *bolt.Tx) error {
		return s.put(tx, key, record{kind: kindString, payload: value})
	})
}

// SetEX stores value with an absolute expiration computed as now+ttl.
// If ttl <= 0, DefaultTTL is used; if that is not positive either the call fails.
func (s *Store) SetEX(_ context.Context, key string, ttl time.Duration, value []byte) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	if ttl <= 0 {
		return errors.Newf(errors.CodeInvalidInput, "invalid expire time %s for %q", ttl, key)
	}
	expiresAt := s.clock.Now().Add(ttl).UnixNano()
	return s.update(func(tx *bolt.Tx) error {
		return s.put(tx, key, record{kind: kindString, expiresAt: expiresAt, payload: value})
	})
}

// Get returns the value at key if present and not expired.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.view(func(tx *bolt.Tx) error {
		r, err := s.load(tx, key)
		if err != nil {
			return err
		}
		if r.kind != kindString {
			return ErrWrongType
		}
		out = r.payload
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Incr adds one to the integer at key. A missing key counts from zero.
// An existing expiration is kept.
func (s *Store) Incr(_ context.Context, key string) (int64, error) {
	var n int64
	err := s.update(func(tx *bolt.Tx) error {
		r, err := s.load(tx, key)
		switch {
		case IsMiss(err):
			r = record{kind: kindString, payload: []byte("0")}
		case err != nil:
			return err
		case r.kind != kindString:
			return ErrWrongType
		}
		cur, err := strconv.ParseInt(string(r.payload), 10, 64)
		if err != nil {
			return ErrNotInteger
		}
		n = cur + 1
		r.payload = strconv.AppendInt(nil, n, 10)
		return s.put(tx, key, r)
	})
	return n, err
}

// RPush appends values to the list at key and returns the new length.
func (s *Store) RPush(_ context.Context, key string, values ...string) (int64, error) {
	var n int64
	err := s.update(func(tx *bolt.Tx) error {
		var items []string
		r, err := s.load(tx, key)
		switch {
		case IsMiss(err):
			r = record{kind: kindList}
		case err != nil:
			return err
		case r.kind != kindList:
			return ErrWrongType
		default:
			if items, err = r.list(); err != nil {
				return err
			}
		}
		items = append(items, values...)
		payload, err := json.Marshal(items)
		if err != nil {
			return err
		}
		r.payload = payload
		n = int64(len(items))
		return s.put(tx, key, r)
	})
	return n, err
}

// LRange returns the inclusive range [start, stop] of the list at key.
// Negative indices count from the end. A missing key yields an empty list.
func (s *Store) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	out := []string{}
	err := s.view(func(tx *bolt.Tx) error {
		r, err := s.load(tx, key)
		switch {
		case IsMiss(err):
			return nil
		case err != nil:
			return err
		case r.kind != kindList:
			return ErrWrongType
		}
		items, err := r.list()
		if err != nil {
			return err
		}
		out = listRange(items, start, stop)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a key.
func (s *Store) Delete(_ context.Context, key string) error {
	return s.update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

// FlushDB removes every key in the bucket.
func (s *Store) FlushDB(_ context.Context) error {
	return s.update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(s.bucket); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket(s.bucket)
		return err
	})
}

// Sweep deletes expired entries and reports how many were removed.
func (s *Store) Sweep(_ context.Context) (int, error) {
	removed := 0
	err := s.update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		var stale [][]byte
		if err := b.ForEach(func(k, v []byte) error {
			r, err := decodeRecord(v)
			if err != nil || s.expired(r) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

func listRange(items []string, start, stop int64) []string {
	n := int64(len(items))
	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	}
	if stop < 0 {
		stop += n
	}
	if stop >= n {
		stop = n - 1
	}
	if start >= n || start > stop {
		return []string{}
	}
	return append([]string(nil), items[start:stop+1]...)
}
