// Package diffx compares two strings and returns the substring fragments
// of each that are not common to both, preserving order.
//
// No diff/LCS library appears anywhere in the retrieved corpus, so this
// is a direct stdlib implementation (longest-common-subsequence over
// whitespace-delimited tokens) rather than a byte-level diff — token
// granularity is what keeps the result stable across tokens that merely
// shift position, which is what cleaning a reflected filename leaves
// behind.
package diffx

import "strings"

// Diff returns (aOnly, bOnly): the tokens of a and b that are not part
// of their longest common subsequence, joined back with a single space
// and in original order. Deterministic and order-independent under
// swap: Diff(a, b) fragments equal Diff(b, a) fragments with the two
// return values swapped.
func Diff(a, b string) (aOnly, bOnly string) {
	ta := strings.Fields(a)
	tb := strings.Fields(b)

	lcsMaskA, lcsMaskB := lcsMask(ta, tb)

	var onlyA, onlyB []string
	for i, tok := range ta {
		if !lcsMaskA[i] {
			onlyA = append(onlyA, tok)
		}
	}
	for i, tok := range tb {
		if !lcsMaskB[i] {
			onlyB = append(onlyB, tok)
		}
	}

	return strings.Join(onlyA, " "), strings.Join(onlyB, " ")
}

// lcsMask computes the longest common subsequence of a and b via the
// standard O(len(a)*len(b)) dynamic-programming table, then returns two
// boolean masks marking which positions of a and b participate in it.
func lcsMask(a, b []string) (maskA, maskB []bool) {
	n, m := len(a), len(b)
	maskA = make([]bool, n)
	maskB = make([]bool, m)

	if n == 0 || m == 0 {
		return maskA, maskB
	}

	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				dp[i][j] = dp[i+1][j+1] + 1
			} else if dp[i+1][j] >= dp[i][j+1] {
				dp[i][j] = dp[i+1][j]
			} else {
				dp[i][j] = dp[i][j+1]
			}
		}
	}

	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			maskA[i] = true
			maskB[j] = true
			i++
			j++
		case dp[i+1][j] >= dp[i][j+1]:
			i++
		default:
			j++
		}
	}

	return maskA, maskB
}
