// Package fuzzycmp implements a pure, symmetric, reflexive similarity
// test bounded in CPU time by a length short-circuit.
package fuzzycmp

import "github.com/agnivade/levenshtein"

// MaxFuzzyLength bounds the input length at which Equal is considered
// reliable. Responses longer than this push the classifier into its
// large-body tie-break branch instead of trusting a plain fuzzy match.
const MaxFuzzyLength = 4096

// Equal returns true when the similarity of a and b, normalized to
// [0.0, 1.0], is >= ratio. Symmetric and reflexive by construction:
// ComputeDistance(a, b) == ComputeDistance(b, a) and is 0 when a == b.
func Equal(a, b string, ratio float64) bool {
	if a == b {
		return true
	}

	longer, shorter := len(a), len(b)
	if longer < shorter {
		longer, shorter = shorter, longer
	}
	if longer == 0 {
		return true
	}

	// A lower bound on the edit distance is longer-shorter (every extra
	// byte in the longer string must be an insertion). If even that
	// best case already fails the ratio, skip the real computation.
	bestCaseRatio := 1.0 - float64(longer-shorter)/float64(longer)
	if bestCaseRatio < ratio {
		return false
	}

	distance := levenshtein.ComputeDistance(a, b)
	similarity := 1.0 - float64(distance)/float64(longer)
	return similarity >= ratio
}
