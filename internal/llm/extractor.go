package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/manya9155/Hallucination-Detector/internal/model"
)

const claimSystem = "You are a fact extraction assistant."

const claimPrompt = `Break the following sentence into independent factual claims.
Write one claim per line, each a complete sentence naming its subject.
Do not add commentary.

"%s"`

const attributeSystem = "You extract structured facts about movies."

const attributePrompt = `Extract factual claims about a movie and return them strictly in JSON format.
Each claim should be an object with two fields:
- attribute (one of: title, director, actor, release_year, award, box_office, genre, runtime, production_company, language, country)
- value (string or number)

Sentence: "%s"

Only output a JSON array, nothing else.`

var codeFenceRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// ClaimExtractor asks a provider to split text into independent claims
type ClaimExtractor struct {
	provider Provider
}

// NewClaimExtractor creates an extractor backed by provider
func NewClaimExtractor(provider Provider) *ClaimExtractor {
	return &ClaimExtractor{provider: provider}
}

// Name identifies the extractor in reports
func (e *ClaimExtractor) Name() string {
	return "llm:" + e.provider.Name()
}

// Extract returns the provider's raw claim lines. Blank lines are dropped;
// other cleanup is left to the caller.
func (e *ClaimExtractor) Extract(ctx context.Context, text string) ([]string, error) {
	resp, err := e.provider.Complete(ctx, CompletionRequest{
		System: claimSystem,
		Prompt: fmt.Sprintf(claimPrompt, strings.TrimSpace(text)),
	})
	if err != nil {
		return nil, fmt.Errorf("extract claims: %w", err)
	}

	var lines []string
	for _, l := range strings.Split(resp.Text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("extract claims: empty response from %s", e.provider.Name())
	}
	return lines, nil
}

// AttributeExtractor asks a provider for attribute/value pairs as JSON
type AttributeExtractor struct {
	provider Provider
}

// NewAttributeExtractor creates an extractor backed by provider
func NewAttributeExtractor(provider Provider) *AttributeExtractor {
	return &AttributeExtractor{provider: provider}
}

// Name identifies the extractor in reports
func (e *AttributeExtractor) Name() string {
	return "llm:" + e.provider.Name()
}

// ExtractAttributes returns the pairs the provider found. Unknown attributes
// and empty values are skipped.
func (e *AttributeExtractor) ExtractAttributes(ctx context.Context, text string) ([]model.AttributeClaim, error) {
	resp, err := e.provider.Complete(ctx, CompletionRequest{
		System: attributeSystem,
		Prompt: fmt.Sprintf(attributePrompt, strings.TrimSpace(text)),
	})
	if err != nil {
		return nil, fmt.Errorf("extract attributes: %w", err)
	}
	return ParseAttributeJSON(resp.Text)
}

type attributeItem struct {
	Attribute string          `json:"attribute"`
	Value     json.RawMessage `json:"value"`
}

// ParseAttributeJSON reads a JSON array of {attribute, value} objects,
// tolerating code fences and text around the array.
func ParseAttributeJSON(response string) ([]model.AttributeClaim, error) {
	response = strings.TrimSpace(response)
	if m := codeFenceRe.FindStringSubmatch(response); len(m) > 1 {
		response = m[1]
	}

	var items []attributeItem
	if err := json.Unmarshal([]byte(response), &items); err != nil {
		start := strings.Index(response, "[")
		end := strings.LastIndex(response, "]")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("no JSON array found in response")
		}
		if err := json.Unmarshal([]byte(response[start:end+1]), &items); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	claims := make([]model.AttributeClaim, 0, len(items))
	for _, it := range items {
		attr := model.NormalizeAttribute(it.Attribute)
		value := rawValue(it.Value)
		if !attr.IsKnown() || value == "" {
			continue
		}
		claims = append(claims, model.AttributeClaim{Attribute: attr, Value: value})
	}
	return claims, nil
}

// rawValue renders a JSON string or number as text
func rawValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return ""
}
