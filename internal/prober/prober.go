// Package prober builds a URL almost certainly absent under a directory
// and fetches its cleaned signature as a baseline 404.
package prober

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/ghostpath/soft404/internal/fingerprint"
	"github.com/ghostpath/soft404/internal/httpx"
	"github.com/ghostpath/soft404/internal/urlx"
)

// randomSuffixBytes controls the length of the generated probe filename;
// 8 random bytes hex-encoded gives 16 hex characters, overwhelmingly
// unlikely to collide with a real resource.
const randomSuffixBytes = 8

// Probe issues one HTTP GET to a random sibling path under reference's
// directory and returns the cleaned signature of the response. exclude
// lists URLs that must not be targeted, used to force a different probe
// on a second call for the same path during the large-body tie-break.
func Probe(ctx context.Context, opener httpx.Opener, reference urlx.Target, exclude ...urlx.Target) (fingerprint.Signature, error) {
	excludedPaths := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		excludedPaths[e.URL().String()] = struct{}{}
	}

	target, err := randomSibling(reference, excludedPaths)
	if err != nil {
		return fingerprint.Signature{}, err
	}

	resp, err := opener.Send(ctx, "", target, nil)
	if err != nil {
		return fingerprint.Signature{}, fmt.Errorf("forced-404 probe for %s: %w", target.URL(), err)
	}

	return fingerprint.Build(resp), nil
}

// randomSibling generates a random alphanumeric filename under
// reference's directory, retrying if it happens to collide with an
// excluded URL (astronomically unlikely, but cheap to guard against).
func randomSibling(reference urlx.Target, excluded map[string]struct{}) (urlx.Target, error) {
	dir := reference.Directory()

	for attempt := 0; attempt < 5; attempt++ {
		suffix, err := randomAlnum(randomSuffixBytes)
		if err != nil {
			return urlx.Target{}, fmt.Errorf("generating probe filename: %w", err)
		}
		candidate := reference.WithPath(dir + suffix)
		if _, isExcluded := excluded[candidate.URL().String()]; !isExcluded {
			return candidate, nil
		}
	}

	return urlx.Target{}, fmt.Errorf("could not generate a non-excluded probe path after 5 attempts")
}

func randomAlnum(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
