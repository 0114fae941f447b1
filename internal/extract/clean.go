package extract

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	numberingRe = regexp.MustCompile(`^\s*\d+[.)]\s*`)
	bulletRe    = regexp.MustCompile(`^[-*•–—\s]+`)
	spaceRe     = regexp.MustCompile(`\s+`)

	strict = bluemonday.StrictPolicy()
)

// Sanitize strips any markup from untrusted text and collapses whitespace.
// Entities are decoded again after sanitizing so "AT&T" stays readable.
func Sanitize(s string) string {
	s = html.UnescapeString(strict.Sanitize(s))
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// CleanLines removes numbering, bullets, markup and preamble lines such as
// "Here are the factual claims:", then drops duplicates keeping the first.
func CleanLines(lines []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, raw := range lines {
		if isPreamble(raw) {
			continue
		}
		s := Sanitize(stripBullet(raw))
		s = strings.Trim(s, "*_` ")
		if s == "" || isPreamble(s) || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func stripBullet(line string) string {
	line = numberingRe.ReplaceAllString(line, "")
	line = bulletRe.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

func isPreamble(line string) bool {
	l := strings.ToLower(strings.TrimSpace(line))
	return strings.HasPrefix(l, "here are") ||
		strings.HasPrefix(l, "here is") ||
		strings.HasPrefix(l, "claims:") ||
		strings.Contains(l, "factual claims")
}
