// Package fuzzy provides approximate matching of free-text menu input.
//
// Menu choices arrive over SMS with typos. Matching normalizes both sides to
// lower case and accepts a candidate when the similarity ratio strictly
// exceeds the threshold. Numeric menu keys are never matched fuzzily; callers
// check those by equality first and fall back to fuzzy matching against the
// menu values.
package fuzzy

import (
	"strings"

	fuzz "github.com/paul-mannino/go-fuzzywuzzy"
)

// DefaultThreshold is the acceptance threshold on the 0-100 similarity ratio.
const DefaultThreshold = 85

// Matches reports whether input approximately equals candidate at the
// default threshold.
func Matches(input, candidate string) bool {
	return MatchesThreshold(input, candidate, DefaultThreshold)
}

// MatchesThreshold reports whether the similarity ratio of input and
// candidate strictly exceeds threshold.
func MatchesThreshold(input, candidate string, threshold int) bool {
	if input == "" || candidate == "" {
		return false
	}
	return fuzz.Ratio(strings.ToLower(input), strings.ToLower(candidate)) > threshold
}

// MatchesAny reports whether input approximately equals any of the options.
func MatchesAny(input string, options ...string) bool {
	for _, option := range options {
		if Matches(input, option) {
			return true
		}
	}
	return false
}
