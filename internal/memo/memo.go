// Package memo implements a small bounded LRU keyed by a fingerprint of
// (URL, response body) that short-circuits repeated classifications.
package memo

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity is used when callers don't have a specific size in
// mind.
const DefaultCapacity = 128

// Memo caches recent is-404 decisions by value. Evicting an entry never
// affects the signature store; the two caches are independent.
type Memo struct {
	cache *lru.Cache[string, bool]
}

// New creates a Memo with the given capacity.
func New(capacity int) (*Memo, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c, err := lru.New[string, bool](capacity)
	if err != nil {
		return nil, err
	}
	return &Memo{cache: c}, nil
}

// Key derives the memo key from a URL string and a response body. It is
// a fingerprint, not a reversible encoding: only equality matters.
func Key(url string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached decision for key, if present.
func (m *Memo) Get(key string) (decision bool, ok bool) {
	return m.cache.Get(key)
}

// Put records a decision for key, evicting the least-recently-used
// entry if the memo is at capacity.
func (m *Memo) Put(key string, decision bool) {
	m.cache.Add(key, decision)
}

// Len returns the number of entries currently cached.
func (m *Memo) Len() int {
	return m.cache.Len()
}

// Purge discards all cached decisions. Called by session.Reset when a
// scan moves on to a new target.
func (m *Memo) Purge() {
	m.cache.Purge()
}
