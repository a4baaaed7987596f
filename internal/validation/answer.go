// Package validation grades free-text quiz answers.
package validation

import (
	"strings"
	"unicode"
)

// maxDistanceRatio is the share of the expected answer that may be misspelled
const maxDistanceRatio = 0.2

var articles = []string{"the ", "a ", "an "}

// NormalizeAnswer lowercases an answer, drops a leading article and
// punctuation, and collapses whitespace.
func NormalizeAnswer(answer string) string {
	answer = strings.ToLower(strings.TrimSpace(answer))
	for _, article := range articles {
		answer = strings.TrimPrefix(answer, article)
	}

	var b strings.Builder
	for _, r := range answer {
		if !unicode.IsPunct(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// MatchAnswer reports whether given is an acceptable spelling of expected.
// An empty answer never matches.
func MatchAnswer(expected, given string) bool {
	want := []rune(NormalizeAnswer(expected))
	got := []rune(NormalizeAnswer(given))
	if len(got) == 0 {
		return false
	}
	if string(want) == string(got) {
		return true
	}

	return float64(editDistance(want, got)) < maxDistanceRatio*float64(max(len(want), len(got)))
}

// editDistance is the Levenshtein distance between a and b
func editDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
