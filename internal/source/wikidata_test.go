package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/manya9155/Hallucination-Detector/internal/model"
)

// sparqlServer answers each query with the first response whose marker occurs in it
type sparqlServer struct {
	mu      sync.Mutex
	queries []string
	answers []sparqlAnswer
}

type sparqlAnswer struct {
	marker string
	body   string
}

func (s *sparqlServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("query")
	s.mu.Lock()
	s.queries = append(s.queries, q)
	s.mu.Unlock()

	if r.Header.Get("Accept") != "application/sparql-results+json" {
		http.Error(w, "bad accept", http.StatusBadRequest)
		return
	}
	for _, a := range s.answers {
		if strings.Contains(q, a.marker) {
			_, _ = w.Write([]byte(a.body))
			return
		}
	}
	_, _ = w.Write([]byte(`{"results":{"bindings":[]}}`))
}

func (s *sparqlServer) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

func newTestWikidata(t *testing.T, s *sparqlServer) *Wikidata {
	t.Helper()
	server := httptest.NewServer(s)
	t.Cleanup(server.Close)
	return NewWikidata(newTestClient(), model.WikidataConfig{SPARQLURL: server.URL, Enabled: true})
}

func TestWikidata_Disabled(t *testing.T) {
	w := NewWikidata(newTestClient(), model.WikidataConfig{SPARQLURL: "http://127.0.0.1:1", Enabled: false})
	rows, err := w.Query(context.Background(), "SELECT * WHERE {}")
	if err != nil || rows != nil {
		t.Errorf("rows=%v err=%v", rows, err)
	}
}

func TestWikidata_PersonIDExact(t *testing.T) {
	s := &sparqlServer{answers: []sparqlAnswer{
		{marker: `"Leonardo DiCaprio"@en`, body: `{"results":{"bindings":[{"person":{"type":"uri","value":"http://www.wikidata.org/entity/Q38111"}}]}}`},
	}}
	w := newTestWikidata(t, s)

	id, err := w.PersonID(context.Background(), "Leonardo DiCaprio")
	if err != nil {
		t.Fatalf("PersonID: %v", err)
	}
	if id != "Q38111" {
		t.Errorf("id = %q", id)
	}
	if n := len(s.recorded()); n != 1 {
		t.Errorf("exact hit should need one query, got %d", n)
	}
}

func TestWikidata_PersonIDFallsBackToContains(t *testing.T) {
	s := &sparqlServer{answers: []sparqlAnswer{
		{marker: "CONTAINS", body: `{"results":{"bindings":[{"person":{"type":"uri","value":"http://www.wikidata.org/entity/Q38111"},"personLabel":{"type":"literal","value":"Leonardo DiCaprio"}}]}}`},
	}}
	w := newTestWikidata(t, s)

	id, err := w.PersonID(context.Background(), "dicaprio")
	if err != nil {
		t.Fatalf("PersonID: %v", err)
	}
	if id != "Q38111" {
		t.Errorf("id = %q", id)
	}
	queries := s.recorded()
	if len(queries) != 2 {
		t.Fatalf("expected exact then contains query, got %d", len(queries))
	}
	if !strings.Contains(queries[0], `"dicaprio"@en`) || !strings.Contains(queries[1], "CONTAINS") {
		t.Errorf("unexpected query order: %v", queries)
	}
}

func TestWikidata_FilmIDUnresolved(t *testing.T) {
	s := &sparqlServer{}
	w := newTestWikidata(t, s)

	id, err := w.FilmID(context.Background(), "No Such Film")
	if err != nil {
		t.Fatalf("FilmID: %v", err)
	}
	if id != "" {
		t.Errorf("expected empty id, got %q", id)
	}
	if !strings.Contains(s.recorded()[0], "wd:Q11424") {
		t.Error("film resolution should restrict to the film class")
	}
}

func TestWikidata_AcademyAwardsFilters(t *testing.T) {
	s := &sparqlServer{answers: []sparqlAnswer{
		{marker: "P166", body: `{"results":{"bindings":[{
			"workLabel":{"type":"literal","value":"The Revenant"},
			"time":{"type":"literal","value":"2016-02-28T00:00:00Z"},
			"awardLabel":{"type":"literal","value":"Academy Award for Best Actor"}}]}}`},
	}}
	w := newTestWikidata(t, s)

	awards, err := w.AcademyAwards(context.Background(), "Q38111", "Q18002795", 2016)
	if err != nil {
		t.Fatalf("AcademyAwards: %v", err)
	}
	if len(awards) != 1 || awards[0].Work != "The Revenant" || awards[0].Award != "Academy Award for Best Actor" {
		t.Errorf("unexpected awards: %+v", awards)
	}

	q := s.recorded()[0]
	for _, want := range []string{"wd:Q38111", "FILTER(?work = wd:Q18002795)", `STRSTARTS(STR(?time), "2016")`, "wd:Q19020"} {
		if !strings.Contains(q, want) {
			t.Errorf("query missing %q:\n%s", want, q)
		}
	}
}

func TestWikidata_AcademyAwardsWithoutWorkFilter(t *testing.T) {
	s := &sparqlServer{}
	w := newTestWikidata(t, s)

	if _, err := w.AcademyAwards(context.Background(), "Q38111", "", 0); err != nil {
		t.Fatalf("AcademyAwards: %v", err)
	}
	q := s.recorded()[0]
	if strings.Contains(q, "?work = wd:") || strings.Contains(q, "STRSTARTS") {
		t.Errorf("no filters expected:\n%s", q)
	}
}

func TestWikidata_AcademyAwardsRejectsBadIDs(t *testing.T) {
	s := &sparqlServer{}
	w := newTestWikidata(t, s)

	if _, err := w.AcademyAwards(context.Background(), "Q1} DROP", "", 0); err == nil {
		t.Error("expected error for invalid person id")
	}
	if _, err := w.AcademyAwards(context.Background(), "Q1", "nope", 0); err == nil {
		t.Error("expected error for invalid film id")
	}
	if n := len(s.recorded()); n != 0 {
		t.Errorf("no queries expected, got %d", n)
	}
}

func TestWikidata_FilmFactsMerge(t *testing.T) {
	body := `{"results":{"bindings":[
		{"item":{"type":"uri","value":"http://www.wikidata.org/entity/Q1"},"itemLabel":{"type":"literal","value":"Avatar 2"},"directorLabel":{"type":"literal","value":"Someone Else"}},
		{"item":{"type":"uri","value":"http://www.wikidata.org/entity/Q24871"},"itemLabel":{"type":"literal","value":"Avatar"},"directorLabel":{"type":"literal","value":"James Cameron"},"publicationDate":{"type":"literal","value":"2009-12-18T00:00:00Z"},"boxOffice":{"type":"literal","value":"2923706026"},"castLabel":{"type":"literal","value":"Sam Worthington"},"runtime":{"type":"literal","value":"162"}},
		{"item":{"type":"uri","value":"http://www.wikidata.org/entity/Q24871"},"itemLabel":{"type":"literal","value":"Avatar"},"directorLabel":{"type":"literal","value":"James Cameron"},"publicationDate":{"type":"literal","value":"2009-12-10T00:00:00Z"},"castLabel":{"type":"literal","value":"Zoe Saldana"},"genreLabel":{"type":"literal","value":"science fiction film"}}
	]}}`
	s := &sparqlServer{answers: []sparqlAnswer{{marker: "P2142", body: body}}}
	w := newTestWikidata(t, s)

	rec, err := w.FilmFacts(context.Background(), "avatar")
	if err != nil || rec == nil {
		t.Fatalf("FilmFacts: %v %v", rec, err)
	}
	if rec.ID != "Q24871" || rec.Title != "Avatar" {
		t.Errorf("exact label should win: %s %s", rec.ID, rec.Title)
	}
	if len(rec.Directors) != 1 || rec.Directors[0] != "James Cameron" {
		t.Errorf("Directors = %v", rec.Directors)
	}
	if len(rec.Cast) != 2 {
		t.Errorf("Cast = %v", rec.Cast)
	}
	if rec.ReleaseYear != 2009 || rec.BoxOffice != 2923706026 || rec.RuntimeMinutes != 162 {
		t.Errorf("unexpected numbers: %+v", rec)
	}
}

func TestWikidata_FilmFactsEmpty(t *testing.T) {
	w := newTestWikidata(t, &sparqlServer{})
	rec, err := w.FilmFacts(context.Background(), "Nothing")
	if err != nil || rec != nil {
		t.Errorf("rec=%v err=%v", rec, err)
	}
}

func TestEscapeLiteral(t *testing.T) {
	got := escapeLiteral(`He said "hi" \ bye`)
	if got != `He said \"hi\" \\ bye` {
		t.Errorf("escapeLiteral = %s", got)
	}
}
