package parse

import (
	"regexp"
	"strings"

	"github.com/manya9155/Hallucination-Detector/internal/model"
)

var attributeLineRe = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z _-]*?)\s*[:=]\s*(.+?)\s*$`)

// ParseAttributeLine reads "attribute: value" or "attribute = value".
// Unknown attribute names are rejected.
func ParseAttributeLine(line string) (model.AttributeClaim, bool) {
	m := attributeLineRe.FindStringSubmatch(line)
	if m == nil {
		return model.AttributeClaim{}, false
	}
	attr := model.NormalizeAttribute(m[1])
	if !attr.IsKnown() {
		return model.AttributeClaim{}, false
	}
	value := cleanField(m[2])
	if value == "" {
		return model.AttributeClaim{}, false
	}
	return model.AttributeClaim{Attribute: attr, Value: value}, true
}

// ParseAttributeLines parses every recognizable line and skips the rest.
func ParseAttributeLines(lines []string) []model.AttributeClaim {
	var out []model.AttributeClaim
	for _, l := range lines {
		if ac, ok := ParseAttributeLine(l); ok {
			out = append(out, ac)
		}
	}
	return out
}

// YearHint returns the first release_year value that holds a plausible year, or 0.
func YearHint(claims []model.AttributeClaim) int {
	for _, c := range claims {
		if c.Attribute != model.AttrReleaseYear {
			continue
		}
		if y := yearRe.FindString(c.Value); y != "" {
			return atoi(y)
		}
	}
	return 0
}

// TitleHint returns the value of the first title claim, or "".
func TitleHint(claims []model.AttributeClaim) string {
	for _, c := range claims {
		if c.Attribute == model.AttrTitle {
			return strings.TrimSpace(c.Value)
		}
	}
	return ""
}
