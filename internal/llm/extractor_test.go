package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/manya9155/Hallucination-Detector/internal/model"
)

type mockProvider struct {
	text    string
	err     error
	lastReq CompletionRequest
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &CompletionResponse{Text: m.text, Model: "mock-1"}, nil
}

func (m *mockProvider) IsAvailable(ctx context.Context) bool { return m.err == nil }

func TestClaimExtractor_Extract(t *testing.T) {
	p := &mockProvider{text: "Here are the factual claims:\n\n1. Leonardo DiCaprio won an Oscar.\n  \n2. Inception was directed by Nolan.\n"}
	e := NewClaimExtractor(p)

	lines, err := e.Extract(context.Background(), "Leonardo DiCaprio won an Oscar for Inception directed by Nolan.")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 raw lines, got %d: %q", len(lines), lines)
	}
	if lines[1] != "1. Leonardo DiCaprio won an Oscar." {
		t.Errorf("lines are returned uncleaned, got %q", lines[1])
	}
	if !strings.Contains(p.lastReq.Prompt, "independent factual claims") || p.lastReq.System == "" {
		t.Errorf("unexpected request: %+v", p.lastReq)
	}
	if e.Name() != "llm:mock" {
		t.Errorf("Name() = %q", e.Name())
	}
}

func TestClaimExtractor_Errors(t *testing.T) {
	if _, err := NewClaimExtractor(&mockProvider{err: errors.New("quota")}).Extract(context.Background(), "x"); err == nil {
		t.Error("expected provider error")
	}
	if _, err := NewClaimExtractor(&mockProvider{text: " \n "}).Extract(context.Background(), "x"); err == nil {
		t.Error("expected error for empty response")
	}
}

func TestParseAttributeJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []model.AttributeClaim
		wantErr  bool
	}{
		{
			name:     "plain array",
			response: `[{"attribute": "director", "value": "James Cameron"}, {"attribute": "release_year", "value": 1997}]`,
			want: []model.AttributeClaim{
				{Attribute: model.AttrDirector, Value: "James Cameron"},
				{Attribute: model.AttrReleaseYear, Value: "1997"},
			},
		},
		{
			name:     "code fence",
			response: "```json\n[{\"attribute\": \"Box Office\", \"value\": \"2 billion dollars\"}]\n```",
			want:     []model.AttributeClaim{{Attribute: model.AttrBoxOffice, Value: "2 billion dollars"}},
		},
		{
			name:     "surrounding text",
			response: `Sure! [{"attribute": "runtime", "value": 194.5}] Hope this helps.`,
			want:     []model.AttributeClaim{{Attribute: model.AttrRuntime, Value: "194.5"}},
		},
		{
			name:     "unknown attributes and empty values skipped",
			response: `[{"attribute": "rating", "value": "8.5"}, {"attribute": "genre", "value": ""}, {"attribute": "actor", "value": null}, {"attribute": "genre", "value": "drama"}]`,
			want:     []model.AttributeClaim{{Attribute: model.AttrGenre, Value: "drama"}},
		},
		{
			name:     "no array",
			response: "I could not find any claims.",
			wantErr:  true,
		},
		{
			name:     "broken array",
			response: `[{"attribute": "director",`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAttributeJSON(tt.response)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAttributeJSON: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAttributeExtractor(t *testing.T) {
	p := &mockProvider{text: `[{"attribute": "title", "value": "Titanic"}]`}
	claims, err := NewAttributeExtractor(p).ExtractAttributes(context.Background(), "Titanic came out in 1997")
	if err != nil {
		t.Fatalf("ExtractAttributes: %v", err)
	}
	if len(claims) != 1 || claims[0].Value != "Titanic" {
		t.Errorf("unexpected claims %+v", claims)
	}
	if !strings.Contains(p.lastReq.Prompt, `"Titanic came out in 1997"`) {
		t.Errorf("prompt should quote the sentence: %q", p.lastReq.Prompt)
	}

	if _, err := NewAttributeExtractor(&mockProvider{err: errors.New("down")}).ExtractAttributes(context.Background(), "x"); err == nil {
		t.Error("expected provider error")
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		cfg     Config
		want    string
		wantErr bool
	}{
		{Config{Provider: "openai", APIKey: "k"}, "openai", false},
		{Config{Provider: "Claude", APIKey: "k"}, "anthropic", false},
		{Config{Provider: "ollama", Model: "mistral"}, "ollama", false},
		{Config{Provider: "openai"}, "", true},
		{Config{Provider: ""}, "", true},
		{Config{Provider: "gemini"}, "", true},
	}

	for _, tt := range tests {
		p, err := NewProvider(tt.cfg)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.cfg.Provider)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: %v", tt.cfg.Provider, err)
			continue
		}
		if p.Name() != tt.want {
			t.Errorf("%q: Name() = %q, want %q", tt.cfg.Provider, p.Name(), tt.want)
		}
	}
}

func TestConfigFromModel(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "ollama"
	cfg.LLM.Timeout = 0
	cfg.HTTP.HTTPProxy = "http://proxy:3128"

	c := ConfigFromModel(cfg)
	if c.Provider != "ollama" || c.Model != "gpt-4o-mini" || c.MaxTokens != 400 {
		t.Errorf("unexpected config %+v", c)
	}
	if c.Timeout <= 0 {
		t.Error("timeout should default when unset")
	}
	if c.HTTPProxy != "http://proxy:3128" {
		t.Errorf("proxy not carried over: %q", c.HTTPProxy)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "from-env")
	t.Setenv("OLLAMA_MODEL", "")

	c := ApplyEnv(Config{Provider: "anthropic", Model: "gpt-4o-mini"})
	if c.APIKey != "from-env" || !strings.HasPrefix(c.Model, "claude-") {
		t.Errorf("unexpected anthropic config %+v", c)
	}

	c = ApplyEnv(Config{Provider: "ollama", Model: "gpt-4o-mini"})
	if c.Model != "llama3.1:8b" {
		t.Errorf("ollama should not keep an OpenAI model name, got %q", c.Model)
	}

	c = ApplyEnv(Config{Provider: "openai", APIKey: "explicit"})
	if c.APIKey != "explicit" {
		t.Error("explicit key must win over environment")
	}
}
