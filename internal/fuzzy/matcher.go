// Package fuzzy scores string similarity on a 0-100 scale and picks the best
// candidate for a query. It never applies thresholds; callers do.
package fuzzy

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Scorer returns the similarity of two already-processed strings, 0..100.
type Scorer func(a, b string) float64

// Matcher resolves a query against candidate strings.
type Matcher struct {
	Scorer    Scorer
	Processor func(string) string // applied to both sides before scoring; nil means none
}

// Match is the best candidate for a query.
type Match struct {
	Value string  // original, unprocessed candidate
	Index int     // position in the candidate slice
	Score float64 // 0..100
}

// NewMatcher returns a matcher using the token-set scorer over normalized text.
func NewMatcher() *Matcher {
	return &Matcher{Scorer: TokenSetRatio, Processor: Normalize}
}

// NewSortMatcher returns a matcher using the token-sort scorer over normalized text.
func NewSortMatcher() *Matcher {
	return &Matcher{Scorer: TokenSortRatio, Processor: Normalize}
}

// Score compares two strings with the matcher's processor and scorer.
func (m *Matcher) Score(a, b string) float64 {
	if m.Processor != nil {
		a, b = m.Processor(a), m.Processor(b)
	}
	scorer := m.Scorer
	if scorer == nil {
		scorer = TokenSetRatio
	}
	return scorer(a, b)
}

// BestMatch returns the highest-scoring candidate. Ties keep the earliest
// candidate. ok is false only when candidates is empty.
func (m *Matcher) BestMatch(query string, candidates []string) (best Match, ok bool) {
	if len(candidates) == 0 {
		return Match{}, false
	}

	best = Match{Index: -1, Score: -1}
	for i, c := range candidates {
		s := m.Score(query, c)
		if s > best.Score {
			best = Match{Value: c, Index: i, Score: s}
		}
	}
	return best, true
}

// Contains reports whether any candidate scores at least threshold against query,
// together with the best match found.
func (m *Matcher) Contains(query string, candidates []string, threshold float64) (Match, bool) {
	best, ok := m.BestMatch(query, candidates)
	if !ok {
		return Match{}, false
	}
	return best, best.Score >= threshold
}

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize folds case and accents, replaces anything that is not a letter or
// digit with a space and collapses whitespace.
func Normalize(s string) string {
	if t, _, err := transform.String(foldAccents, s); err == nil {
		s = t
	}
	s = cases.Fold().String(s)

	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// Ratio is the normalized indel similarity: 200*LCS/(len(a)+len(b)).
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	lcs := lcsLength(ra, rb)
	return 200 * float64(lcs) / float64(len(ra)+len(rb))
}

// TokenSortRatio compares the strings after sorting their whitespace tokens.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

// TokenSetRatio compares the shared tokens against each side's remainder.
// A full subset ("Nolan" vs "Christopher Nolan") scores 100.
func TokenSetRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var sect, onlyA, onlyB []string
	for t := range ta {
		if tb[t] {
			sect = append(sect, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range tb {
		if !ta[t] {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(sect)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	if len(sect) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}

	s := strings.Join(sect, " ")
	ab := strings.Join(onlyA, " ")
	ba := strings.Join(onlyB, " ")
	if s == "" {
		return Ratio(ab, ba)
	}

	combinedA := s + " " + ab
	combinedB := s + " " + ba
	best := Ratio(combinedA, combinedB)
	if r := Ratio(s, combinedA); r > best {
		best = r
	}
	if r := Ratio(s, combinedB); r > best {
		best = r
	}
	return best
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(s) {
		set[t] = true
	}
	return set
}

func lcsLength(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
