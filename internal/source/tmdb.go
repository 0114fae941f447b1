package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/manya9155/Hallucination-Detector/internal/model"
)

const (
	tmdbProvider    = "tmdb"
	tmdbSearchLimit = 10
	tmdbCastLimit   = 50
)

// TMDb is the primary structured-metadata adapter
type TMDb struct {
	client      *Client
	baseURL     string
	bearerToken string
	apiKey      string
}

// NewTMDb creates the adapter. A bearer token takes precedence over an API key.
func NewTMDb(client *Client, cfg model.TMDbConfig) *TMDb {
	return &TMDb{
		client:      client,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		bearerToken: cfg.BearerToken,
		apiKey:      cfg.APIKey,
	}
}

// Person is a TMDb person search result
type Person struct {
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	KnownForDepartment string `json:"known_for_department"`
}

// Movie is a TMDb movie search result
type Movie struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title"`
	ReleaseDate   string `json:"release_date"`
}

// Year returns the release year, or 0 when the date is missing
func (m Movie) Year() int {
	return yearOf(m.ReleaseDate)
}

type named struct {
	Name string `json:"name"`
}

// CastMember is one billed actor
type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

// CrewMember is one crew credit
type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Credits is the cast and crew of a movie
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// CastNames returns up to the first 50 billed names
func (c *Credits) CastNames() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Cast))
	for i, m := range c.Cast {
		if i >= tmdbCastLimit {
			break
		}
		names = append(names, m.Name)
	}
	return names
}

// CrewNames returns names of crew credited with job
func (c *Credits) CrewNames(job string) []string {
	if c == nil {
		return nil
	}
	var names []string
	for _, m := range c.Crew {
		if m.Job == job {
			names = append(names, m.Name)
		}
	}
	return names
}

type spokenLanguage struct {
	EnglishName string `json:"english_name"`
	Name        string `json:"name"`
}

// MovieDetails is /movie/{id} with credits appended
type MovieDetails struct {
	ID                  int              `json:"id"`
	Title               string           `json:"title"`
	ReleaseDate         string           `json:"release_date"`
	Revenue             float64          `json:"revenue"`
	Runtime             int              `json:"runtime"`
	OriginalLanguage    string           `json:"original_language"`
	Genres              []named          `json:"genres"`
	ProductionCompanies []named          `json:"production_companies"`
	ProductionCountries []named          `json:"production_countries"`
	SpokenLanguages     []spokenLanguage `json:"spoken_languages"`
	Credits             *Credits         `json:"credits"`
}

// SearchPerson returns up to 10 candidates in provider order
func (t *TMDb) SearchPerson(ctx context.Context, name string) ([]Person, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	var resp struct {
		Results []Person `json:"results"`
	}
	found, err := t.get(ctx, "/search/person", url.Values{"query": {name}}, &resp)
	if err != nil || !found {
		return nil, err
	}
	return limit(resp.Results, tmdbSearchLimit), nil
}

// SearchMovie returns up to 10 candidates. year narrows the search when non-zero.
func (t *TMDb) SearchMovie(ctx context.Context, title string, year int) ([]Movie, error) {
	if strings.TrimSpace(title) == "" {
		return nil, nil
	}
	params := url.Values{"query": {title}}
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}
	var resp struct {
		Results []Movie `json:"results"`
	}
	found, err := t.get(ctx, "/search/movie", params, &resp)
	if err != nil || !found {
		return nil, err
	}
	return limit(resp.Results, tmdbSearchLimit), nil
}

// MovieDetails fetches details including credits. It returns nil when the movie is absent.
func (t *TMDb) MovieDetails(ctx context.Context, id int) (*MovieDetails, error) {
	if id <= 0 {
		return nil, nil
	}
	var d MovieDetails
	found, err := t.get(ctx, fmt.Sprintf("/movie/%d", id), url.Values{"append_to_response": {"credits"}}, &d)
	if err != nil || !found {
		return nil, err
	}
	return &d, nil
}

// MovieCredits fetches the cast and crew. It returns nil when the movie is absent.
func (t *TMDb) MovieCredits(ctx context.Context, id int) (*Credits, error) {
	if id <= 0 {
		return nil, nil
	}
	var c Credits
	found, err := t.get(ctx, fmt.Sprintf("/movie/%d/credits", id), nil, &c)
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

// Record normalizes details into a MovieRecord
func (d *MovieDetails) Record() *model.MovieRecord {
	if d == nil {
		return nil
	}
	r := &model.MovieRecord{
		Source:         model.SourceTMDb,
		ID:             strconv.Itoa(d.ID),
		Title:          d.Title,
		ReleaseYear:    yearOf(d.ReleaseDate),
		BoxOffice:      d.Revenue,
		RuntimeMinutes: float64(d.Runtime),
		Genres:         names(d.Genres),
		Companies:      names(d.ProductionCompanies),
		Countries:      names(d.ProductionCountries),
	}
	for _, l := range d.SpokenLanguages {
		if l.EnglishName != "" {
			r.Languages = append(r.Languages, l.EnglishName)
		} else if l.Name != "" {
			r.Languages = append(r.Languages, l.Name)
		}
	}
	if d.OriginalLanguage != "" {
		r.Languages = append(r.Languages, d.OriginalLanguage)
	}
	if d.Credits != nil {
		r.Directors = d.Credits.CrewNames("Director")
		r.Cast = d.Credits.CastNames()
	}
	return r
}

func (t *TMDb) get(ctx context.Context, path string, params url.Values, out interface{}) (bool, error) {
	if params == nil {
		params = url.Values{}
	}
	headers := map[string]string{}
	if t.bearerToken != "" {
		headers["Authorization"] = "Bearer " + t.bearerToken
	} else if t.apiKey != "" {
		params.Set("api_key", t.apiKey)
	}

	u := t.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return t.client.GetJSON(ctx, tmdbProvider, u, headers, out)
}

func names(in []named) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		if n.Name != "" {
			out = append(out, n.Name)
		}
	}
	return out
}

func limit[T any](in []T, n int) []T {
	if len(in) > n {
		return in[:n]
	}
	return in
}

// yearOf reads the leading four digits of a date such as "2010-07-15" or "2010".
func yearOf(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}
