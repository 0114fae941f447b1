package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/manya9155/Hallucination-Detector/internal/model"
	"github.com/manya9155/Hallucination-Detector/internal/parse"
)

var (
	oscarForRe       = regexp.MustCompile(`(?i)^the\s+(?:oscar|academy\s+award)\s+(?:was\s+awarded|was\s+given|awarded|was\s+won)\s+for\s+(?:the\s+(?:film|movie)\s+)?(.+?)$`)
	oscarInRe        = regexp.MustCompile(`(?i)^the\s+(?:oscar|academy\s+award)\s+(?:was\s+awarded|was\s+given|awarded|was\s+won)\s+in\s+((?:19|20)\d\d)`)
	filmPrefixRe     = regexp.MustCompile(`(?i)^the\s+(?:film|movie)\s+`)
	activeDirectRe   = regexp.MustCompile(`(?i)^(.+?)\s+directed\s+(?:the\s+(?:film|movie)\s+)?(.+?)$`)
	pronounRe        = regexp.MustCompile(`(?i)^(?:he|she|they)\s+`)
	subjectlessRe    = regexp.MustCompile(`(?i)^won\s+`)
	trailingInYearRe = regexp.MustCompile(`\s+in\s+((?:19|20)\d\d)$`)
	personRe         = regexp.MustCompile(`\b[A-Z](?:[\p{L}'’-]+|\.)(?:\s+[A-Z](?:[\p{L}'’-]+|\.))+`)
)

// leading words that start a capitalized run without being part of a name
var nameStopwords = map[string]bool{
	"The": true, "A": true, "An": true, "In": true, "He": true, "She": true,
	"They": true, "It": true, "His": true, "Her": true, "This": true, "That": true,
	"Oscar": true, "Academy": true, "Award": true, "Best": true,
}

// Autofill rewrites fragments that lost their subject during extraction.
// "The Oscar was awarded for the film X" and "He won an Oscar" take the most
// recent person named in an earlier line; "X directed the film Y" becomes
// "Y was directed by X". Lines are deduplicated again afterwards.
func Autofill(lines []string) []string {
	var last string
	seen := make(map[string]bool)
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		s := canonicalize(strings.TrimSpace(line), last)
		if p := personOf(s); p != "" {
			last = p
		}
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func canonicalize(s, last string) string {
	if last != "" && pronounRe.MatchString(s) {
		s = last + " " + pronounRe.ReplaceAllString(s, "")
	}
	body := strings.TrimRight(s, ".!? ")

	if m := oscarForRe.FindStringSubmatch(body); m != nil && last != "" {
		return last + " won an Oscar for " + trimTitle(m[1]) + "."
	}
	if m := oscarInRe.FindStringSubmatch(body); m != nil && last != "" {
		return last + " won an Oscar in " + m[1] + "."
	}

	lower := strings.ToLower(body)
	if strings.Contains(lower, " was directed by ") {
		return filmPrefixRe.ReplaceAllString(s, "")
	}
	if !strings.Contains(lower, "directed by") {
		if m := activeDirectRe.FindStringSubmatch(body); m != nil && isBareName(m[1]) {
			title := trimTitle(m[2])
			if y := trailingInYearRe.FindStringSubmatch(title); y != nil {
				title = strings.TrimSpace(title[:len(title)-len(y[0])]) + " (" + y[1] + ")"
			}
			return title + " was directed by " + strings.TrimSpace(m[1]) + "."
		}
	}

	// Only a fragment with no subject at all takes the last person; lines
	// about films or nominations keep their own subject.
	if last != "" && subjectlessRe.MatchString(s) {
		return last + " w" + s[1:]
	}
	return s
}

// personOf returns the person a line is about: the parsed subject when a
// claim template matches, otherwise the first run of capitalized words.
func personOf(s string) string {
	if c := parse.Parse(s); c.Kind != model.KindUnknown && looksLikeName(c.Subject) {
		return c.Subject
	}
	for _, m := range personRe.FindAllString(s, -1) {
		words := strings.Fields(m)
		for len(words) > 0 && nameStopwords[words[0]] {
			words = words[1:]
		}
		if len(words) >= 2 {
			return strings.Join(words, " ")
		}
	}
	return ""
}

// looksLikeName accepts capitalized text that does not open with an article
// or pronoun, e.g. "Nolan" or "Christopher Nolan".
func looksLikeName(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 || nameStopwords[words[0]] {
		return false
	}
	r := []rune(words[0])
	return unicode.IsUpper(r[0])
}

// isBareName rejects subjects that are clauses of their own, such as
// "DiCaprio starred in Inception, which Nolan".
func isBareName(s string) bool {
	return looksLikeName(s) && len(strings.Fields(s)) <= 4 &&
		!strings.ContainsAny(s, ",;") && parse.Parse(s).Kind == model.KindUnknown
}

func trimTitle(t string) string {
	return strings.Trim(strings.TrimSpace(t), `"'“”‘’.`)
}
