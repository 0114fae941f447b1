package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	verrors "github.com/manya9155/Hallucination-Detector/internal/errors"
	"github.com/manya9155/Hallucination-Detector/internal/model"
	"github.com/manya9155/Hallucination-Detector/internal/report"
)

type fakeChecker struct {
	text   string
	lines  []string
	title  string
	claims []model.AttributeClaim
	err    error
}

func (f *fakeChecker) CheckText(ctx context.Context, text string) (*model.Report, error) {
	f.text = text
	if f.err != nil {
		return nil, f.err
	}
	return report.New(model.ReportInput{Text: text}, nil, nil), nil
}

func (f *fakeChecker) CheckClaims(ctx context.Context, lines []string) (*model.Report, error) {
	f.lines = lines
	if f.err != nil {
		return nil, f.err
	}
	results := make([]model.ClaimResult, len(lines))
	for i, l := range lines {
		results[i] = model.ClaimResult{Claim: model.Claim{Raw: l}, Verdict: model.NotEnoughEvidence("stub", nil)}
	}
	return report.New(model.ReportInput{}, results, nil), nil
}

func (f *fakeChecker) VerifyAttributes(ctx context.Context, title, text string, claims []model.AttributeClaim) (*model.Report, error) {
	f.title = title
	f.claims = claims
	if f.err != nil {
		return nil, f.err
	}
	return report.New(model.ReportInput{Title: title}, nil, nil), nil
}

func newTestServer(c Checker) *httptest.Server {
	cfg := model.DefaultConfig().Server
	cfg.MaxBodyBytes = 256
	return httptest.NewServer(NewServer(c, cfg, nil).Handler())
}

func post(t *testing.T, url, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&fakeChecker{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestCheck(t *testing.T) {
	fc := &fakeChecker{}
	srv := newTestServer(fc)
	defer srv.Close()

	resp, out := post(t, srv.URL+"/api/v1/check", `{"text":"Tom Hanks acted in Big."}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", resp.StatusCode, out)
	}
	if fc.text != "Tom Hanks acted in Big." {
		t.Errorf("text = %q", fc.text)
	}
	if _, ok := out["summary"]; !ok {
		t.Errorf("response is not a report: %v", out)
	}

	resp, out = post(t, srv.URL+"/api/v1/check", `{"claims":["<b>Tom Hanks</b> acted in Big.", " "]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", resp.StatusCode, out)
	}
	if len(fc.lines) != 1 || fc.lines[0] != "Tom Hanks acted in Big." {
		t.Errorf("claims not sanitized: %q", fc.lines)
	}
	if results := out["results"].([]interface{}); len(results) != 1 {
		t.Errorf("results = %v", results)
	}
}

func TestCheck_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"malformed json", `{"text":`, nil, http.StatusBadRequest},
		{"unknown field", `{"sentence":"x"}`, nil, http.StatusBadRequest},
		{"too large", fmt.Sprintf(`{"text":%q}`, strings.Repeat("a", 400)), nil, http.StatusRequestEntityTooLarge},
		{"usage error", `{"text":""}`, verrors.New(verrors.EUsage, "no text to check"), http.StatusBadRequest},
		{"provider down", `{"text":"x"}`, verrors.New(verrors.EProviderUnavailable, "tmdb unreachable"), http.StatusBadGateway},
		{"unexpected", `{"text":"x"}`, fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&fakeChecker{err: tt.err})
			defer srv.Close()

			resp, out := post(t, srv.URL+"/api/v1/check", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (%v)", resp.StatusCode, tt.status, out)
			}
			if out["error"] == "" || out["error"] == nil {
				t.Errorf("missing error message: %v", out)
			}
		})
	}
}

func TestAttributes(t *testing.T) {
	fc := &fakeChecker{}
	srv := newTestServer(fc)
	defer srv.Close()

	body := `{"title":"Titanic","claims":[{"attribute":"Release Year","value":1997},{"attribute":"director","value":"James Cameron"}]}`
	resp, out := post(t, srv.URL+"/api/v1/attributes", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", resp.StatusCode, out)
	}

	want := []model.AttributeClaim{
		{Attribute: model.AttrReleaseYear, Value: "1997"},
		{Attribute: model.AttrDirector, Value: "James Cameron"},
	}
	if fc.title != "Titanic" || len(fc.claims) != 2 || fc.claims[0] != want[0] || fc.claims[1] != want[1] {
		t.Errorf("got title %q claims %+v", fc.title, fc.claims)
	}

	resp, out = post(t, srv.URL+"/api/v1/attributes", `{"title":"Titanic","claims":[{"attribute":"rating","value":8}]}`)
	if resp.StatusCode != http.StatusBadRequest || out["code"] != string(verrors.EUsage) {
		t.Errorf("unknown attribute: status %d %v", resp.StatusCode, out)
	}

	resp, _ = post(t, srv.URL+"/api/v1/attributes", `{"title":"Titanic","claims":[{"attribute":"genre","value":null}]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("null value: status %d", resp.StatusCode)
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(&fakeChecker{})
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/check", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestRun_Shutdown(t *testing.T) {
	s := NewServer(&fakeChecker{}, model.ServerConfig{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx, "127.0.0.1:0"); err != nil {
		t.Errorf("Run after cancel: %v", err)
	}
}
