package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRatio(t *testing.T) {
	testCases := []struct {
		a, b     string
		expected int
	}{
		{a: "", b: "", expected: 100},
		{a: "abc", b: "", expected: 0},
		{a: "", b: "abc", expected: 0},
		{a: "abc", b: "abc", expected: 100},
		{a: "abcd", b: "abce", expected: 75},
		{a: "abc", b: "xyz", expected: 0},
		// lcs("fiat like mobi", "fiat like mobi 10") = 14 -> 2*14/31
		{a: "fiat like mobi", b: "fiat like mobi 10", expected: 90},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, Ratio(test.a, test.b), "%q vs %q", test.a, test.b)
	}
}

func TestTokenSetRatio(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     string
		expected int
	}{
		{name: "identical", a: "fiat mobi like", b: "fiat mobi like", expected: 100},
		{name: "subset", a: "fiat mobi like 10", b: "fiat mobi like", expected: 100},
		{name: "reordered", a: "mobi fiat", b: "fiat mobi", expected: 100},
		{name: "duplicates", a: "gol gol gol", b: "gol", expected: 100},
		{name: "empty left", a: "", b: "gol", expected: 0},
		{name: "empty right", a: "gol", b: "  ", expected: 0},
		{name: "disjoint", a: "zzz", b: "fiat mobi", expected: 0},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, TokenSetRatio(test.a, test.b))
		})
	}
}

func TestTokenSetRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"hyundai hb20 10 comfort", "hyundai hb20"},
		{"chevrolet onix plus", "onix"},
		{"renault kwid zen", "fiat uno"},
	}
	for _, p := range pairs {
		require.Equal(t, TokenSetRatio(p[0], p[1]), TokenSetRatio(p[1], p[0]))
	}
}

func TestTokenSetRatioPartialOverlap(t *testing.T) {
	score := TokenSetRatio("renault kwid zen", "renault sandero")
	require.Greater(t, score, 0)
	require.Less(t, score, 100)
}
