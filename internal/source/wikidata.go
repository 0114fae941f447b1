package source

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/manya9155/Hallucination-Detector/internal/model"
)

const wikidataProvider = "wikidata"

// Wikidata item classes used by the queries
const (
	classHuman        = "Q5"
	classFilm         = "Q11424"
	classAcademyAward = "Q19020"
)

var qidRe = regexp.MustCompile(`^Q\d+$`)

// Wikidata is the knowledge-graph adapter over the public SPARQL endpoint
type Wikidata struct {
	client   *Client
	endpoint string
	enabled  bool
}

// NewWikidata creates the adapter
func NewWikidata(client *Client, cfg model.WikidataConfig) *Wikidata {
	return &Wikidata{client: client, endpoint: cfg.SPARQLURL, enabled: cfg.Enabled}
}

// Row is one SPARQL result binding flattened to variable -> value
type Row map[string]string

// AwardRow is one "award received" statement
type AwardRow struct {
	Work  string `json:"work,omitempty"`
	Time  string `json:"time,omitempty"`
	Award string `json:"award"`
}

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// Query runs a SELECT query. Malformed or empty answers yield no rows.
func (w *Wikidata) Query(ctx context.Context, query string) ([]Row, error) {
	if !w.enabled {
		return nil, nil
	}
	params := url.Values{"query": {query}, "format": {"json"}}
	headers := map[string]string{"Accept": "application/sparql-results+json"}

	var resp sparqlResponse
	found, err := w.client.GetJSON(ctx, wikidataProvider, w.endpoint+"?"+params.Encode(), headers, &resp)
	if err != nil || !found {
		return nil, err
	}

	rows := make([]Row, 0, len(resp.Results.Bindings))
	for _, b := range resp.Results.Bindings {
		row := make(Row, len(b))
		for k, v := range b {
			row[k] = v.Value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// PersonID resolves a person label to a QID: exact English label first, then
// case-insensitive containment. It returns "" when both phases find nothing.
func (w *Wikidata) PersonID(ctx context.Context, name string) (string, error) {
	return w.resolve(ctx, "person", classHuman, name)
}

// FilmID resolves a film title to a QID with the same two phases as PersonID
func (w *Wikidata) FilmID(ctx context.Context, title string) (string, error) {
	return w.resolve(ctx, "film", classFilm, title)
}

func (w *Wikidata) resolve(ctx context.Context, variable, class, label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", nil
	}
	lit := escapeLiteral(label)

	exact := fmt.Sprintf(`SELECT ?%[1]s WHERE {
  ?%[1]s wdt:P31 wd:%[2]s.
  ?%[1]s rdfs:label "%[3]s"@en.
} LIMIT 5`, variable, class, lit)

	rows, err := w.Query(ctx, exact)
	if err != nil {
		return "", err
	}
	if id := firstQID(rows, variable); id != "" {
		return id, nil
	}

	contains := fmt.Sprintf(`SELECT ?%[1]s ?%[1]sLabel WHERE {
  ?%[1]s wdt:P31 wd:%[2]s.
  ?%[1]s rdfs:label ?%[1]sLabel.
  FILTER(LANG(?%[1]sLabel) = "en").
  FILTER(CONTAINS(LCASE(?%[1]sLabel), LCASE("%[3]s"))).
} LIMIT 10`, variable, class, lit)

	rows, err = w.Query(ctx, contains)
	if err != nil {
		return "", err
	}
	return firstQID(rows, variable), nil
}

// AcademyAwards lists Academy Award statements for a person, optionally
// restricted to a work (film QID) and to a year prefix of the statement time.
func (w *Wikidata) AcademyAwards(ctx context.Context, personID, filmID string, year int) ([]AwardRow, error) {
	if !qidRe.MatchString(personID) {
		return nil, fmt.Errorf("invalid person id %q", personID)
	}
	var filters []string
	if filmID != "" {
		if !qidRe.MatchString(filmID) {
			return nil, fmt.Errorf("invalid film id %q", filmID)
		}
		filters = append(filters, fmt.Sprintf("FILTER(?work = wd:%s)", filmID))
	}
	if year > 0 {
		filters = append(filters, fmt.Sprintf(`FILTER(STRSTARTS(STR(?time), "%d"))`, year))
	}

	query := fmt.Sprintf(`SELECT ?workLabel ?time ?awardLabel WHERE {
  BIND(wd:%s AS ?person).
  ?person p:P166 ?statement.
  ?statement ps:P166 ?award.
  ?award wdt:P31 wd:%s.
  OPTIONAL { ?statement pq:P1686 ?work. }
  OPTIONAL { ?statement pq:P585 ?time. }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
  %s
} LIMIT 50`, personID, classAcademyAward, strings.Join(filters, "\n  "))

	rows, err := w.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	awards := make([]AwardRow, 0, len(rows))
	for _, r := range rows {
		awards = append(awards, AwardRow{Work: r["workLabel"], Time: r["time"], Award: r["awardLabel"]})
	}
	return awards, nil
}

// FilmFacts collects the facts of one matching film into a record. An item
// whose label equals title (ignoring case) is preferred over the first item
// in the answer. Rows of the chosen item are merged.
func (w *Wikidata) FilmFacts(ctx context.Context, title string) (*model.MovieRecord, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT ?item ?itemLabel ?directorLabel ?publicationDate ?boxOffice ?castLabel ?genreLabel ?awardLabel ?runtime ?companyLabel ?languageLabel ?countryLabel WHERE {
  ?item wdt:P31 wd:%s.
  ?item rdfs:label ?label.
  FILTER(LANG(?label) = "en").
  FILTER(CONTAINS(LCASE(?label), LCASE("%s"))).
  OPTIONAL { ?item wdt:P57 ?director. }
  OPTIONAL { ?item wdt:P577 ?publicationDate. }
  OPTIONAL { ?item wdt:P2142 ?boxOffice. }
  OPTIONAL { ?item wdt:P161 ?cast. }
  OPTIONAL { ?item wdt:P136 ?genre. }
  OPTIONAL { ?item wdt:P166 ?award. }
  OPTIONAL { ?item wdt:P2047 ?runtime. }
  OPTIONAL { ?item wdt:P272 ?company. }
  OPTIONAL { ?item wdt:P364 ?language. }
  OPTIONAL { ?item wdt:P495 ?country. }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
} LIMIT 200`, classFilm, escapeLiteral(title))

	rows, err := w.Query(ctx, query)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return mergeFilmRows(rows, title), nil
}

func mergeFilmRows(rows []Row, title string) *model.MovieRecord {
	chosen := rows[0]
	for _, row := range rows {
		if strings.EqualFold(row["itemLabel"], title) {
			chosen = row
			break
		}
	}
	item := chosen["item"]
	r := &model.MovieRecord{
		Source: model.SourceWikidata,
		ID:     qidOf(item),
		Title:  chosen["itemLabel"],
	}

	for _, row := range rows {
		if row["item"] != item {
			continue
		}
		r.Directors = appendUnique(r.Directors, row["directorLabel"])
		r.Cast = appendUnique(r.Cast, row["castLabel"])
		r.Genres = appendUnique(r.Genres, row["genreLabel"])
		r.Awards = appendUnique(r.Awards, row["awardLabel"])
		r.Companies = appendUnique(r.Companies, row["companyLabel"])
		r.Languages = appendUnique(r.Languages, row["languageLabel"])
		r.Countries = appendUnique(r.Countries, row["countryLabel"])

		if y := yearOf(row["publicationDate"]); y > 0 && (r.ReleaseYear == 0 || y < r.ReleaseYear) {
			r.ReleaseYear = y
		}
		if v, ok := ParseMoney(row["boxOffice"]); ok && v > r.BoxOffice {
			r.BoxOffice = v
		}
		if v, ok := ParseNumber(row["runtime"]); ok && r.RuntimeMinutes == 0 {
			r.RuntimeMinutes = v
		}
	}
	return r
}

func appendUnique(list []string, v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

func firstQID(rows []Row, variable string) string {
	for _, r := range rows {
		if id := qidOf(r[variable]); id != "" {
			return id
		}
	}
	return ""
}

// qidOf takes the last path segment of an entity URI
func qidOf(uri string) string {
	if uri == "" {
		return ""
	}
	id := uri[strings.LastIndex(uri, "/")+1:]
	if !qidRe.MatchString(id) {
		return ""
	}
	return id
}

// escapeLiteral makes s safe inside a double-quoted SPARQL string
func escapeLiteral(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", " ", "\r", " ").Replace(s)
}
