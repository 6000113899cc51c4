// Package session owns the per-scan state that must outlive any single
// request: the classifier, its signature store, and the HTTP opener that
// backs its probes. It is explicitly constructed and passed around,
// never a package-level global, so that running two scans (or
// re-running tests) never share state by accident.
package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/ghostpath/soft404/internal/classify"
	"github.com/ghostpath/soft404/internal/config"
	"github.com/ghostpath/soft404/internal/httpx"
	"github.com/ghostpath/soft404/internal/logging"
	"github.com/ghostpath/soft404/internal/sigstore"
)

// Session bundles one scan's classifier and its collaborators.
type Session struct {
	Classifier *classify.Classifier
	store      *sigstore.Store
}

// New builds a Session from scan options: opens the signature store,
// constructs the classifier, and wires in an HTTP opener built from the
// same transport settings the main scan requester uses.
func New(opts *config.Options) (*Session, error) {
	dbPath := opts.SignatureDBPath
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), fmt.Sprintf("soft404-signatures-%d.db", os.Getpid()))
	}

	store, err := sigstore.Open(dbPath, opts.SignatureCacheSize)
	if err != nil {
		return nil, fmt.Errorf("opening signature store: %w", err)
	}

	log := logging.New(os.Stderr, false)
	if opts.Quiet {
		log = log.Level(zerolog.Disabled)
	}

	c, err := classify.New(classify.Config{
		AlwaysNotFound:  opts.AlwaysNotFound,
		NeverNotFound:   opts.NeverNotFound,
		StringMatch404:  opts.StringMatch404,
		SimilarityRatio: opts.SimilarityRatio,
		MemoCapacity:    opts.MemoCacheSize,
	}, store, log)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("building classifier: %w", err)
	}

	opener, err := httpx.NewHTTPOpener(httpx.OpenerOptions{
		Timeout:         opts.Timeout,
		Proxy:           opts.Proxy,
		FollowRedirects: opts.FollowRedirects,
		Headers:         opts.Headers,
		UserAgent:       opts.UserAgent,
		MaxIdlePerHost:  opts.Threads,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("building classifier opener: %w", err)
	}
	c.SetOpener(opener)
	c.SetWorkerPool(classify.NewWorkerPool(opts.Threads))

	return &Session{Classifier: c, store: store}, nil
}

// Reset discards the classifier's recent-decision memo without tearing
// down the session, for reuse across multiple targets in one process.
func (s *Session) Reset() {
	s.Classifier.Reset()
}

// Close releases the signature store's resources.
func (s *Session) Close() error {
	return s.store.Close()
}
