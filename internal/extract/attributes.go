package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/manya9155/Hallucination-Detector/internal/model"
	"github.com/manya9155/Hallucination-Detector/internal/parse"
)

// AttributeExtractor turns text into attribute/value pairs
type AttributeExtractor interface {
	Name() string
	ExtractAttributes(ctx context.Context, text string) ([]model.AttributeClaim, error)
}

// AttributeExtraction is the outcome of running an AttributeChain
type AttributeExtraction struct {
	Claims    []model.AttributeClaim
	Extractor string
	Warnings  []string
}

// A name is capitalized words; a period is only allowed after an initial.
const namePattern = `([A-Z](?:[\p{L}'’-]+|\.)(?:\s+[A-Z](?:[\p{L}'’-]+|\.))*)`

var (
	quotedTitleRe = regexp.MustCompile(`["“]([^"”]+)["”]`)
	leadTitleRe   = regexp.MustCompile(`(?i)^(?:the\s+(?:film|movie)\s+)?(.+?)\s*(?:\(|,|\s+(?:was|is|directed|stars|starring|grossed|earned|made|came\s+out|premiered|runs|won|released)\b)`)
	directorRe    = regexp.MustCompile(`(?i:directed\s+by)\s+` + namePattern)
	actorRe       = regexp.MustCompile(`(?i:starring|stars|starred|featuring)\s+` + namePattern + `(?:\s+and\s+` + namePattern + `)?`)
	parenYearRe   = regexp.MustCompile(`\(((?:19|20)\d\d)\)`)
	releasedRe    = regexp.MustCompile(`(?i)(?:released|came\s+out|premiered|debuted)\s+(?:in\s+|on\s+)?(?:\w+\s+\d{1,2},?\s+)?((?:19|20)\d\d)`)
	boxOfficeRe   = regexp.MustCompile(`(?i)(?:grossed|earned|made|box\s+office\s+of)\s+(?:over\s+|about\s+|around\s+|more\s+than\s+|nearly\s+|almost\s+)?(\$?\s*\d[\d.,]*(?:\s*(?:billion|million|thousand|bn|mn)\b)?(?:\s+(?:dollars|usd))?)`)
	runtimeRe     = regexp.MustCompile(`(?i)(\d{2,3})\s*(?:minutes|mins?)\b`)
)

// PatternExtractor is the deterministic attribute extractor. It reads
// "attribute: value" lines when present and sentence patterns otherwise.
type PatternExtractor struct{}

// Name identifies the extractor in reports
func (PatternExtractor) Name() string { return "patterns" }

// ExtractAttributes never fails
func (PatternExtractor) ExtractAttributes(_ context.Context, text string) ([]model.AttributeClaim, error) {
	return ExtractAttributes(text), nil
}

// ExtractAttributes finds title, director, actor, release_year, box_office
// and runtime values in text.
func ExtractAttributes(text string) []model.AttributeClaim {
	var lines []string
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r", ""), "\n") {
		if l = Sanitize(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return nil
	}
	if claims := parse.ParseAttributeLines(lines); len(claims) > 0 {
		return claims
	}
	text = strings.Join(lines, " ")

	var out []model.AttributeClaim
	add := func(attr model.Attribute, value string) {
		value = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(value), ".,;"))
		if value == "" {
			return
		}
		for _, c := range out {
			if c.Attribute == attr && strings.EqualFold(c.Value, value) {
				return
			}
		}
		out = append(out, model.AttributeClaim{Attribute: attr, Value: value})
	}

	if m := quotedTitleRe.FindStringSubmatch(text); m != nil {
		add(model.AttrTitle, m[1])
	} else if m := leadTitleRe.FindStringSubmatch(text); m != nil {
		add(model.AttrTitle, strings.Trim(m[1], `"'“”`))
	}
	for _, m := range directorRe.FindAllStringSubmatch(text, -1) {
		add(model.AttrDirector, m[1])
	}
	for _, m := range actorRe.FindAllStringSubmatch(text, -1) {
		add(model.AttrActor, m[1])
		add(model.AttrActor, m[2])
	}
	if m := parenYearRe.FindStringSubmatch(text); m != nil {
		add(model.AttrReleaseYear, m[1])
	} else if m := releasedRe.FindStringSubmatch(text); m != nil {
		add(model.AttrReleaseYear, m[1])
	}
	if m := boxOfficeRe.FindStringSubmatch(text); m != nil {
		add(model.AttrBoxOffice, m[1])
	}
	if m := runtimeRe.FindStringSubmatch(text); m != nil {
		add(model.AttrRuntime, m[1]+" minutes")
	}
	return out
}

// AttributeChain runs a primary attribute extractor with the pattern
// extractor as fallback.
type AttributeChain struct {
	primary  AttributeExtractor
	fallback PatternExtractor
}

// NewAttributeChain creates a chain. primary may be nil.
func NewAttributeChain(primary AttributeExtractor) *AttributeChain {
	return &AttributeChain{primary: primary}
}

// Extract returns the primary's pairs, or the pattern extractor's when the
// primary fails or finds nothing.
func (c *AttributeChain) Extract(ctx context.Context, text string) AttributeExtraction {
	out := AttributeExtraction{Extractor: c.fallback.Name()}
	if strings.TrimSpace(text) == "" {
		return out
	}

	if c.primary != nil {
		claims, err := c.primary.ExtractAttributes(ctx, text)
		switch {
		case err != nil:
			out.Warnings = append(out.Warnings, fmt.Sprintf("attribute extraction with %s failed, using patterns: %v", c.primary.Name(), err))
		case len(claims) == 0:
			out.Warnings = append(out.Warnings, fmt.Sprintf("%s returned no attributes, using patterns", c.primary.Name()))
		default:
			out.Claims = claims
			out.Extractor = c.primary.Name()
			return out
		}
	}

	out.Claims, _ = c.fallback.ExtractAttributes(ctx, text)
	return out
}
