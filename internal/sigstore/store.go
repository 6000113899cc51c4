// Package sigstore implements a tiered, keyed store of
// fingerprint.Signature values: a small in-memory LRU front tier and a
// persistent key-value back tier for entries evicted from memory. The
// back-end is scoped to one scan and discarded when the store is closed.
package sigstore

import (
	"encoding/json"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.etcd.io/bbolt"

	"github.com/ghostpath/soft404/internal/fingerprint"
	"github.com/ghostpath/soft404/internal/urlx"
)

// DefaultMaxInMemory bounds the hot tier when a caller doesn't specify
// its own size.
const DefaultMaxInMemory = 50

var bucketName = []byte("signatures")

// Store is the tiered signature cache. Safe for concurrent use; callers
// that need read-then-write atomicity across the classifier's steps
// serialize through guard.Guard keyed on the same normalized path.
type Store struct {
	hot  *lru.Cache[string, record]
	db   *bbolt.DB
	path string
}

// record is the on-disk/serializable form of a fingerprint.Signature;
// Signature itself holds an urlx.Target, which wraps an unexported
// *url.URL and so cannot be encoded directly.
type record struct {
	URL            string
	ID             int64
	Code           int
	DocType        int
	NormalizedPath string
	Body           string
	Diff           *string
}

// Open creates a Store backed by a bbolt database at dbPath (a temp file
// is fine; stores are not meant to outlive a single scan). maxInMemory
// <= 0 uses DefaultMaxInMemory.
func Open(dbPath string, maxInMemory int) (*Store, error) {
	if maxInMemory <= 0 {
		maxInMemory = DefaultMaxInMemory
	}

	db, err := bbolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	hot, err := lru.New[string, record](maxInMemory)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{hot: hot, db: db, path: dbPath}, nil
}

// Get returns the signature stored for key, checking the hot tier then
// the persistent tier, promoting on a cold hit. A failed disk read is
// treated as a miss.
func (s *Store) Get(key string) (fingerprint.Signature, bool) {
	if rec, ok := s.hot.Get(key); ok {
		return rec.toSignature(), true
	}

	var rec record
	found := false
	_ = s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		data := b.Get([]byte(key))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil
		}
		found = true
		return nil
	})
	if !found {
		return fingerprint.Signature{}, false
	}

	s.hot.Add(key, rec)
	return rec.toSignature(), true
}

// Put stores sig under key, idempotent overwrite permitted, last-writer
// wins for concurrent puts on the same key. A failed disk write is not
// logged here; Put returns the error so the caller decides (the
// classifier logs and swallows it).
func (s *Store) Put(key string, sig fingerprint.Signature) error {
	rec := fromSignature(sig)
	s.hot.Add(key, rec)

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), data)
	})
}

// Len returns the number of entries currently in the hot (in-memory)
// tier. Diagnostic only.
func (s *Store) Len() int {
	return s.hot.Len()
}

// Close closes the persistent back-end and removes its file. Stores are
// scoped to a single scan and never reopened.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return err
	}
	return os.Remove(s.path)
}

func fromSignature(sig fingerprint.Signature) record {
	var u string
	if sig.URL.URL() != nil {
		u = sig.URL.URL().String()
	}
	return record{
		URL:            u,
		ID:             sig.ID,
		Code:           sig.Code,
		DocType:        int(sig.DocType),
		NormalizedPath: sig.NormalizedPath,
		Body:           sig.Body,
		Diff:           sig.Diff,
	}
}

func (r record) toSignature() fingerprint.Signature {
	var target urlx.Target
	if parsed, err := urlx.Parse(r.URL); err == nil {
		target = parsed
	}
	return fingerprint.Signature{
		URL:            target,
		ID:             r.ID,
		Code:           r.Code,
		DocType:        fingerprint.DocType(r.DocType),
		NormalizedPath: r.NormalizedPath,
		Body:           r.Body,
		Diff:           r.Diff,
	}
}
