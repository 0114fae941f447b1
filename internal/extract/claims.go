// Package extract breaks free text into claim sentences. A primary extractor
// (usually an LLM) is tried first; the deterministic splitter is the fallback
// and always produces an answer.
package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Extractor turns text into candidate claim lines
type Extractor interface {
	Name() string
	Extract(ctx context.Context, text string) ([]string, error)
}

// Extraction is the outcome of running a Chain
type Extraction struct {
	Lines     []string
	Extractor string   // name of the extractor whose output was used
	Warnings  []string // primary failures that triggered the fallback
}

var bulletLineRe = regexp.MustCompile(`(?m)^\s*(?:[-*•–—]|\d+[.)])\s+`)

// Splitter is the deterministic fallback extractor
type Splitter struct{}

// Name identifies the splitter in reports
func (Splitter) Name() string { return "fallback" }

// Extract never fails
func (Splitter) Extract(_ context.Context, text string) ([]string, error) {
	return Split(text), nil
}

// Split breaks bulleted or multi-line text on newlines, and anything else on
// sentence terminators.
func Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if strings.ContainsAny(text, "\r\n") || bulletLineRe.MatchString(text) {
		var lines []string
		for _, l := range strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' }) {
			if l = stripBullet(l); l != "" {
				lines = append(lines, l)
			}
		}
		return lines
	}
	return splitSentences(text, 0, 0)
}

// Chain runs a primary extractor with the splitter as fallback, then cleans
// the lines and optionally fills in missing subjects.
type Chain struct {
	primary  Extractor
	fallback Splitter
	autofill bool
}

// ChainOption configures a Chain
type ChainOption func(*Chain)

// WithAutofill toggles subject autofill (on by default)
func WithAutofill(enabled bool) ChainOption {
	return func(c *Chain) { c.autofill = enabled }
}

// NewChain creates a chain. primary may be nil, in which case only the
// splitter is used.
func NewChain(primary Extractor, opts ...ChainOption) *Chain {
	c := &Chain{primary: primary, autofill: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Extract returns cleaned claim lines. It does not fail: primary errors
// are reported as warnings and the splitter is used instead.
func (c *Chain) Extract(ctx context.Context, text string) Extraction {
	text = strings.TrimSpace(text)
	out := Extraction{Extractor: c.fallback.Name()}
	if text == "" {
		return out
	}

	var lines []string
	if c.primary != nil {
		got, err := c.primary.Extract(ctx, text)
		switch {
		case err != nil:
			out.Warnings = append(out.Warnings, fmt.Sprintf("claim extraction with %s failed, using fallback splitter: %v", c.primary.Name(), err))
		default:
			lines = CleanLines(got)
			if len(lines) == 0 {
				out.Warnings = append(out.Warnings, fmt.Sprintf("%s returned no claims, using fallback splitter", c.primary.Name()))
				break
			}
			out.Extractor = c.primary.Name()
			// A single line for a single-line input usually means the
			// model echoed the sentence back.
			if len(lines) == 1 && !strings.ContainsAny(text, "\r\n") {
				lines = Split(lines[0])
			}
		}
	}
	if len(lines) == 0 {
		lines, _ = c.fallback.Extract(ctx, text)
	}

	lines = CleanLines(lines)
	if c.autofill {
		lines = Autofill(lines)
	}
	out.Lines = lines
	return out
}

// splitSentences splits on '.', '!' or '?' followed by whitespace. Sentences
// outside [minLen, maxLen] are dropped; zero disables a bound.
func splitSentences(text string, minLen, maxLen int) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	var current strings.Builder

	keep := func() {
		sentence := strings.TrimSpace(current.String())
		current.Reset()
		if sentence == "" || len(sentence) < minLen || (maxLen > 0 && len(sentence) > maxLen) {
			return
		}
		sentences = append(sentences, sentence)
	}

	for i, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\t') {
				keep()
			}
		}
	}
	keep()

	return sentences
}
