// Package parse turns free text into structured claims by literal pattern
// matching. It never tries to disambiguate; that is left to verification.
package parse

import (
	"regexp"
	"strconv"
	"strings"

	verrors "github.com/manya9155/Hallucination-Detector/internal/errors"
	"github.com/manya9155/Hallucination-Detector/internal/model"
)

// template is one recognized sentence shape. build fills the claim from the
// regexp submatches.
type template struct {
	kind  model.ClaimKind
	re    *regexp.Regexp
	build func(c *model.Claim, m []string)
}

// Templates are tried in order; the first match wins. The Oscar templates go
// from most to least specific.
var templates = []template{
	{
		kind: model.KindDirectorOfMovie,
		re:   regexp.MustCompile(`(?i)(.+?)\s+was\s+directed\s+by\s+(.+)`),
		build: func(c *model.Claim, m []string) {
			c.Object, c.Subject = cleanField(m[1]), cleanField(m[2])
		},
	},
	{
		kind: model.KindDirectorOfMovie,
		re:   regexp.MustCompile(`(?i)(.+?)\s+directed\s+by\s+(.+)`),
		build: func(c *model.Claim, m []string) {
			c.Object, c.Subject = cleanField(m[1]), cleanField(m[2])
		},
	},
	{
		kind: model.KindActorInMovie,
		re:   regexp.MustCompile(`(?i)(.+?)\s+(acted in|starred in|appeared in|played in)\s+(.+)`),
		build: func(c *model.Claim, m []string) {
			c.Subject, c.Object = cleanField(m[1]), cleanField(m[3])
		},
	},
	{
		kind: model.KindWonOscarForMovie,
		re:   regexp.MustCompile(`(?i)(.+?)\s+won\s+(an|the)?\s*oscar\s+for\s+(.+?)(?:\s+in\s+(\d{4}))?$`),
		build: func(c *model.Claim, m []string) {
			c.Subject, c.Object = cleanField(m[1]), cleanField(m[3])
			c.Year = atoi(m[4])
		},
	},
	{
		kind: model.KindWonOscarInYear,
		re:   regexp.MustCompile(`(?i)(.+?)\s+won\s+(an|the)?\s*oscar\s+in\s+(\d{4})`),
		build: func(c *model.Claim, m []string) {
			c.Subject = cleanField(m[1])
			c.Year = atoi(m[3])
		},
	},
	{
		kind: model.KindWonOscar,
		re:   regexp.MustCompile(`(?i)(.+?)\s+won\s+(an|the)?\s*oscar\b`),
		build: func(c *model.Claim, m []string) {
			c.Subject = cleanField(m[1])
		},
	},
}

var (
	yearRe         = regexp.MustCompile(`\b(19|20)\d\d\b`)
	trailingYearRe = regexp.MustCompile(`\s*\((19|20)\d\d\)$`)
	fieldCutset    = " \t\r\n\"'`“”‘’"
	sentencePunct  = ".!?;,"
)

// Parse classifies one fragment of text. Text that matches no template yields
// a claim of kind KindUnknown with no structured fields.
func Parse(text string) model.Claim {
	raw := strings.TrimSpace(text)
	c := model.Claim{Raw: raw, Kind: model.KindUnknown}

	s := strings.TrimRight(raw, sentencePunct+" \t")
	for _, t := range templates {
		m := t.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		c.Kind = t.kind
		t.build(&c, m)
		if c.Year == 0 {
			if y := yearRe.FindString(s); y != "" {
				c.Year = atoi(y)
			}
		}
		c.Object = cleanField(trailingYearRe.ReplaceAllString(c.Object, ""))
		return c
	}
	return c
}

// ParseAll parses each non-blank fragment in order.
func ParseAll(fragments []string) []model.Claim {
	claims := make([]model.Claim, 0, len(fragments))
	for _, f := range fragments {
		if strings.TrimSpace(f) == "" {
			continue
		}
		claims = append(claims, Parse(f))
	}
	return claims
}

// Check reports why a parsed claim cannot be verified structurally.
// It returns nil for every recognized kind.
func Check(c model.Claim) error {
	if c.Raw == "" {
		return verrors.New(verrors.EUsage, "empty claim text")
	}
	if c.Kind == model.KindUnknown {
		return verrors.Newf(verrors.EAmbiguousClaim, "no claim template matches %q", c.Raw)
	}
	return nil
}

func cleanField(s string) string {
	s = strings.Trim(s, fieldCutset)
	s = strings.TrimRight(s, sentencePunct+fieldCutset)
	return strings.Trim(s, fieldCutset)
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
