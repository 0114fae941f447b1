package source

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// Single-letter suffixes must end a word so "194 minutes" stays 194
	moneyRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(billion|bn|b|million|mn|m|thousand|k)?\b`)
	numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

var magnitudes = map[string]float64{
	"billion":  1e9,
	"bn":       1e9,
	"b":        1e9,
	"million":  1e6,
	"mn":       1e6,
	"m":        1e6,
	"thousand": 1e3,
	"k":        1e3,
}

// ParseMoney reads human-readable amounts such as "$2,187,463,944",
// "2 billion dollars", "1.5 million" or "$2.1B". ok is false when no number is present.
func ParseMoney(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(",", "", "$", "").Replace(s)

	m := moneyRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if mult, ok := magnitudes[m[2]]; ok {
		n *= mult
	}
	return n, true
}

// ParseNumber returns the first number in s ("148 min" -> 148)
func ParseNumber(s string) (float64, bool) {
	m := numberRe.FindString(strings.ReplaceAll(s, ",", ""))
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// WithinTolerance reports whether the relative difference between claimed and
// actual is strictly below tol. actual is the denominator; a non-positive
// actual never matches.
func WithinTolerance(claimed, actual, tol float64) bool {
	if actual <= 0 {
		return false
	}
	diff := claimed - actual
	if diff < 0 {
		diff = -diff
	}
	return diff/actual < tol
}
