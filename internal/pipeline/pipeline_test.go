package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/manya9155/Hallucination-Detector/internal/cache"
	verrors "github.com/manya9155/Hallucination-Detector/internal/errors"
	"github.com/manya9155/Hallucination-Detector/internal/model"
)

// stubVerifier supports every recognized claim and records what it was asked
type stubVerifier struct {
	mu        sync.Mutex
	seen      []string
	attrTitle string
	attrs     []model.AttributeClaim
}

func (s *stubVerifier) Verify(ctx context.Context, c model.Claim) model.Verdict {
	s.mu.Lock()
	s.seen = append(s.seen, c.Raw)
	s.mu.Unlock()

	if c.Kind == model.KindUnknown {
		return model.NotEnoughEvidence("claim type not recognized.", nil)
	}
	return model.Verdict{
		Status:      model.StatusSupported,
		Explanation: "found in cast",
		Evidence:    []model.Evidence{{Source: model.SourceTMDb, Locator: "tmdb:movie/1"}},
	}
}

func (s *stubVerifier) VerifyAttributes(ctx context.Context, title string, claims []model.AttributeClaim) []model.ClaimResult {
	s.mu.Lock()
	s.attrTitle = title
	s.attrs = claims
	s.mu.Unlock()

	out := make([]model.ClaimResult, len(claims))
	for i, ac := range claims {
		out[i] = model.ClaimResult{Claim: ac.ToClaim(title), Verdict: model.NotEnoughEvidence("no provider data", nil)}
	}
	return out
}

type failingExtractor struct{}

func (failingExtractor) Name() string { return "llm:test" }

func (failingExtractor) Extract(ctx context.Context, text string) ([]string, error) {
	return nil, errors.New("rate limited")
}

func testConfig() model.Config {
	cfg := model.DefaultConfig()
	cfg.Concurrency.Workers = 2
	cfg.Providers.TMDb.BearerToken = "test-token"
	return cfg
}

func TestCheckText(t *testing.T) {
	v := &stubVerifier{}
	p := New(testConfig(), v)

	rep, err := p.CheckText(context.Background(), "Tom Hanks acted in Big. Inception was directed by Christopher Nolan. Movies are great.")
	if err != nil {
		t.Fatalf("CheckText: %v", err)
	}

	if len(rep.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(rep.Results))
	}
	if rep.Results[0].Claim.Kind != model.KindActorInMovie || rep.Results[1].Claim.Kind != model.KindDirectorOfMovie {
		t.Errorf("results out of order: %+v", rep.Results)
	}
	if rep.Summary.Supported != 2 || rep.Summary.NotEnoughEvidence != 1 {
		t.Errorf("unexpected summary %+v", rep.Summary)
	}
	if rep.Input.Extractor != "fallback" || rep.ID == "" {
		t.Errorf("unexpected report metadata: %+v", rep.Input)
	}
	if len(rep.Warnings) != 1 || !strings.Contains(rep.Warnings[0], string(verrors.EAmbiguousClaim)) ||
		!strings.Contains(rep.Warnings[0], "Movies are great") {
		t.Errorf("expected one warning for the unrecognized claim, got %q", rep.Warnings)
	}
}

func TestCheckText_Empty(t *testing.T) {
	p := New(testConfig(), &stubVerifier{})
	_, err := p.CheckText(context.Background(), "  \n")
	if verrors.GetCode(err) != verrors.EUsage {
		t.Errorf("expected E_USAGE, got %v", err)
	}
}

func TestCheckText_ExtractorFailureIsAWarning(t *testing.T) {
	p := New(testConfig(), &stubVerifier{}, WithExtractors(failingExtractor{}, nil))

	rep, err := p.CheckText(context.Background(), "Kate Winslet acted in Titanic.")
	if err != nil {
		t.Fatalf("CheckText: %v", err)
	}
	if rep.Input.Extractor != "fallback" {
		t.Errorf("Extractor = %q", rep.Input.Extractor)
	}
	if len(rep.Warnings) != 1 || !strings.Contains(rep.Warnings[0], "rate limited") {
		t.Errorf("Warnings = %q", rep.Warnings)
	}
	if rep.Summary.Supported != 1 {
		t.Errorf("unexpected summary %+v", rep.Summary)
	}
}

func TestNew_UnknownLLMProvider(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.Provider = "bogus"
	p := New(cfg, &stubVerifier{})

	rep, err := p.CheckClaims(context.Background(), []string{"Tom Hanks acted in Big."})
	if err != nil {
		t.Fatalf("CheckClaims: %v", err)
	}
	if len(rep.Warnings) != 1 || !strings.Contains(rep.Warnings[0], "LLM extractor unavailable") {
		t.Errorf("Warnings = %q", rep.Warnings)
	}
}

func TestNew_UnreachableLLMFallsBack(t *testing.T) {
	var generated bool
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		generated = true
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := testConfig()
	cfg.LLM.Provider = "ollama"
	cfg.LLM.BaseURL = server.URL
	cfg.LLM.Model = "llama3.1:8b"
	p := New(cfg, &stubVerifier{})

	rep, err := p.CheckText(context.Background(), "Tom Hanks acted in Big.")
	if err != nil {
		t.Fatalf("CheckText: %v", err)
	}
	if generated {
		t.Error("an unavailable provider must not be asked to extract")
	}
	if rep.Input.Extractor != "fallback" {
		t.Errorf("Extractor = %q, want fallback", rep.Input.Extractor)
	}
	if len(rep.Warnings) != 1 || !strings.Contains(rep.Warnings[0], "ollama provider is not reachable") {
		t.Errorf("Warnings = %q", rep.Warnings)
	}
}

func TestNewPipeline_MissingCredentials(t *testing.T) {
	cfg := model.DefaultConfig()
	if _, err := NewPipeline(cfg); !verrors.IsConfig(err) {
		t.Errorf("expected E_CONFIG, got %v", err)
	}

	cfg.Providers.TMDb.APIKey = "key"
	if _, err := NewPipeline(cfg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCheckClaims(t *testing.T) {
	v := &stubVerifier{}
	p := New(testConfig(), v)

	rep, err := p.CheckClaims(context.Background(), []string{"Tom Hanks acted in Big.", "", "Keanu Reeves acted in The Matrix."})
	if err != nil {
		t.Fatalf("CheckClaims: %v", err)
	}
	if rep.Summary.Total != 2 {
		t.Errorf("expected 2 claims, got %+v", rep.Summary)
	}
	if rep.Input.Extractor != "" {
		t.Errorf("claims given directly should not name an extractor: %q", rep.Input.Extractor)
	}

	if _, err := p.CheckClaims(context.Background(), []string{" "}); verrors.GetCode(err) != verrors.EUsage {
		t.Errorf("expected E_USAGE, got %v", err)
	}
}

// scopeRecorder records the response cache each verification ran with
type scopeRecorder struct {
	stubVerifier
	scopes []cache.Cache
}

func (s *scopeRecorder) Verify(ctx context.Context, c model.Claim) model.Verdict {
	scoped, _ := cache.FromContext(ctx)
	s.mu.Lock()
	s.scopes = append(s.scopes, scoped)
	s.mu.Unlock()
	return s.stubVerifier.Verify(ctx, c)
}

func TestCheckClaims_CachePerOperation(t *testing.T) {
	v := &scopeRecorder{}
	p := New(testConfig(), v)
	claims := []string{"Tom Hanks acted in Big.", "Tom Hanks acted in Splash."}

	for i := 0; i < 2; i++ {
		if _, err := p.CheckClaims(context.Background(), claims); err != nil {
			t.Fatalf("CheckClaims: %v", err)
		}
	}

	if len(v.scopes) != 4 {
		t.Fatalf("expected 4 verifications, got %d", len(v.scopes))
	}
	for i, c := range v.scopes {
		if c == nil {
			t.Fatalf("verification %d ran without a response cache", i)
		}
	}
	if v.scopes[0] != v.scopes[1] {
		t.Error("claims in one batch should share a cache")
	}
	if v.scopes[0] == v.scopes[2] {
		t.Error("separate requests must not share a cache")
	}

	cfg := testConfig()
	cfg.Cache.Enabled = false
	v = &scopeRecorder{}
	if _, err := New(cfg, v).CheckClaims(context.Background(), claims); err != nil {
		t.Fatalf("CheckClaims: %v", err)
	}
	for _, c := range v.scopes {
		if c != nil {
			t.Error("a disabled cache must not be scoped")
		}
	}
}

func TestCheckFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claims.txt")
	content := "# movie claims\nTom Hanks acted in Big.\n\nTom Hanks acted in Big.\nInception was directed by Christopher Nolan.\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p := New(testConfig(), &stubVerifier{})
	rep, err := p.CheckFile(context.Background(), path)
	if err != nil {
		t.Fatalf("CheckFile: %v", err)
	}
	if rep.Summary.Total != 2 || rep.Input.SourceURL != path {
		t.Errorf("unexpected report: %+v %+v", rep.Summary, rep.Input)
	}

	if _, err := p.CheckFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestCheckURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
	})
	mux.HandleFunc("/trivia", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "<html><body><p>Leonardo DiCaprio acted in Inception.</p><p>Inception was directed by Christopher Nolan.</p></body></html>")
	})
	mux.HandleFunc("/private/trivia", func(w http.ResponseWriter, r *http.Request) {
		t.Error("disallowed page was fetched")
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "<html><body><script>x()</script></body></html>")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	p := New(testConfig(), &stubVerifier{})

	rep, err := p.CheckURL(context.Background(), server.URL+"/trivia")
	if err != nil {
		t.Fatalf("CheckURL: %v", err)
	}
	if rep.Summary.Total != 2 || rep.Summary.Supported != 2 {
		t.Errorf("unexpected summary %+v", rep.Summary)
	}
	if rep.Input.SourceURL != server.URL+"/trivia" || rep.Input.Text != "" {
		t.Errorf("unexpected input %+v", rep.Input)
	}

	if _, err := p.CheckURL(context.Background(), server.URL+"/private/trivia"); verrors.GetCode(err) != verrors.EUsage {
		t.Errorf("expected robots.txt refusal, got %v", err)
	}
	if _, err := p.CheckURL(context.Background(), server.URL+"/empty"); verrors.GetCode(err) != verrors.EUsage {
		t.Errorf("expected E_USAGE for a page without text, got %v", err)
	}
}

func TestVerifyAttributes(t *testing.T) {
	v := &stubVerifier{}
	p := New(testConfig(), v)

	rep, err := p.VerifyAttributes(context.Background(), "", "Heat (1995) was directed by Michael Mann.", nil)
	if err != nil {
		t.Fatalf("VerifyAttributes: %v", err)
	}
	if v.attrTitle != "Heat" || rep.Input.Title != "Heat" {
		t.Errorf("title = %q / %q, want Heat", v.attrTitle, rep.Input.Title)
	}
	if len(rep.Results) != 3 || rep.Input.Extractor != "patterns" {
		t.Errorf("unexpected report: %d results, extractor %q", len(rep.Results), rep.Input.Extractor)
	}

	given := []model.AttributeClaim{{Attribute: model.AttrRuntime, Value: "170 minutes"}}
	rep, err = p.VerifyAttributes(context.Background(), "Heat", "ignored when claims are given", given)
	if err != nil {
		t.Fatalf("VerifyAttributes: %v", err)
	}
	if len(v.attrs) != 1 || rep.Input.Extractor != "" || rep.Results[0].Claim.Object != "Heat" {
		t.Errorf("explicit claims should skip extraction: %+v", rep)
	}

	if _, err := p.VerifyAttributes(context.Background(), "", "", given); verrors.GetCode(err) != verrors.EUsage {
		t.Errorf("expected E_USAGE without a title, got %v", err)
	}
	if _, err := p.VerifyAttributes(context.Background(), "Heat", "", nil); verrors.GetCode(err) != verrors.EUsage {
		t.Errorf("expected E_USAGE without claims, got %v", err)
	}
}

func TestRenderReport(t *testing.T) {
	p := New(testConfig(), &stubVerifier{})
	rep, err := p.CheckClaims(context.Background(), []string{"Tom Hanks acted in Big."})
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "report.json")
	mdPath := filepath.Join(dir, "report.md")

	var out bytes.Buffer
	if err := p.RenderReport(&out, rep, jsonPath, mdPath, true); err != nil {
		t.Fatalf("RenderReport: %v", err)
	}

	for _, path := range []string{jsonPath, mdPath} {
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Errorf("%s not written: %v", path, err)
		}
	}
	if !strings.Contains(out.String(), "Wrote JSON") || !strings.Contains(out.String(), "Overall: Supported") {
		t.Errorf("unexpected summary output:\n%s", out.String())
	}
}
