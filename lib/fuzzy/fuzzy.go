// Package fuzzy implements order independent string similarity scores on
// the 0..100 scale used to compare vendor vehicle names against aliases.
package fuzzy

import (
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// Ratio is the indel similarity of a and b scaled to 0..100:
// 2 * LCS(a, b) / (len(a) + len(b)), rounded to the nearest integer.
// Equal strings score 100, an empty string against a non-empty one scores 0.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}
	common := matchr.LongestCommonSubsequence(a, b)
	return int(math.Round(200 * float64(common) / float64(la+lb)))
}

func tokenSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		out[tok] = struct{}{}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// TokenSetRatio compares the word sets of a and b, ignoring order and
// duplicated words. The shared words are joined (sorted) and compared against
// the shared words plus each side's remainder; the best of the three
// pairwise ratios is returned.
//
// Inputs are expected to be normalized already (see textutil.Normalize).
func TokenSetRatio(a, b string) int {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	intersection := make(map[string]struct{})
	onlyA := make(map[string]struct{})
	onlyB := make(map[string]struct{})
	for tok := range tokensA {
		if _, ok := tokensB[tok]; ok {
			intersection[tok] = struct{}{}
			continue
		}
		onlyA[tok] = struct{}{}
	}
	for tok := range tokensB {
		if _, ok := tokensA[tok]; !ok {
			onlyB[tok] = struct{}{}
		}
	}

	sect := strings.Join(sortedKeys(intersection), " ")
	combinedA := strings.TrimSpace(sect + " " + strings.Join(sortedKeys(onlyA), " "))
	combinedB := strings.TrimSpace(sect + " " + strings.Join(sortedKeys(onlyB), " "))

	return max(
		Ratio(sect, combinedA),
		Ratio(sect, combinedB),
		Ratio(combinedA, combinedB),
	)
}
