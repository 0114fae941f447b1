package source

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/manya9155/Hallucination-Detector/internal/model"
)

const omdbProvider = "omdb"

// OMDb is the secondary structured-metadata adapter. Without an API key it is
// disabled and every lookup returns no data without a request.
type OMDb struct {
	client  *Client
	baseURL string
	apiKey  string
}

// NewOMDb creates the adapter
func NewOMDb(client *Client, cfg model.OMDbConfig) *OMDb {
	return &OMDb{client: client, baseURL: cfg.BaseURL, apiKey: cfg.APIKey}
}

// Enabled reports whether a key is configured
func (o *OMDb) Enabled() bool {
	return o != nil && o.apiKey != ""
}

// Title is an OMDb full title record. Absent fields hold "N/A".
type Title struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Runtime    string `json:"Runtime"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	Language   string `json:"Language"`
	Country    string `json:"Country"`
	Awards     string `json:"Awards"`
	BoxOffice  string `json:"BoxOffice"`
	Production string `json:"Production"`
	ImdbID     string `json:"imdbID"`
	Response   string `json:"Response"`
	Error      string `json:"Error,omitempty"`
}

// SearchItem is one OMDb search hit
type SearchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	ImdbID string `json:"imdbID"`
	Type   string `json:"Type"`
}

// YearValue returns the first year in the Year field ("2010", "2010–2012"), or 0
func (s SearchItem) YearValue() int {
	return yearOf(s.Year)
}

// LookupTitle fetches the record for an exact title, narrowed by year when non-zero.
// It returns nil when OMDb is disabled or answers Response=False.
func (o *OMDb) LookupTitle(ctx context.Context, title string, year int) (*Title, error) {
	if !o.Enabled() || strings.TrimSpace(title) == "" {
		return nil, nil
	}
	params := url.Values{"t": {title}}
	if year > 0 {
		params.Set("y", strconv.Itoa(year))
	}
	return o.lookup(ctx, params)
}

// LookupID fetches the record for an IMDb id
func (o *OMDb) LookupID(ctx context.Context, imdbID string) (*Title, error) {
	if !o.Enabled() || imdbID == "" {
		return nil, nil
	}
	return o.lookup(ctx, url.Values{"i": {imdbID}})
}

// Search lists titles matching a free-text query
func (o *OMDb) Search(ctx context.Context, query string) ([]SearchItem, error) {
	if !o.Enabled() || strings.TrimSpace(query) == "" {
		return nil, nil
	}
	var resp struct {
		Search   []SearchItem `json:"Search"`
		Response string       `json:"Response"`
	}
	found, err := o.get(ctx, url.Values{"s": {query}}, &resp)
	if err != nil || !found || resp.Response != "True" {
		return nil, err
	}
	return resp.Search, nil
}

func (o *OMDb) lookup(ctx context.Context, params url.Values) (*Title, error) {
	var t Title
	found, err := o.get(ctx, params, &t)
	if err != nil || !found || t.Response != "True" {
		return nil, err
	}
	return &t, nil
}

func (o *OMDb) get(ctx context.Context, params url.Values, out interface{}) (bool, error) {
	params.Set("apikey", o.apiKey)
	return o.client.GetJSON(ctx, omdbProvider, o.baseURL+"?"+params.Encode(), nil, out)
}

// Record normalizes the title into a MovieRecord
func (t *Title) Record() *model.MovieRecord {
	if t == nil {
		return nil
	}
	r := &model.MovieRecord{
		Source:      model.SourceOMDb,
		ID:          t.ImdbID,
		Title:       value(t.Title),
		ReleaseYear: yearOf(value(t.Year)),
		Directors:   splitList(t.Director),
		Cast:        splitList(t.Actors),
		Genres:      splitList(t.Genre),
		Companies:   splitList(t.Production),
		Languages:   splitList(t.Language),
		Countries:   splitList(t.Country),
	}
	if awards := value(t.Awards); awards != "" {
		r.Awards = []string{awards}
	}
	if money, ok := ParseMoney(value(t.BoxOffice)); ok {
		r.BoxOffice = money
	}
	if mins, ok := ParseNumber(value(t.Runtime)); ok {
		r.RuntimeMinutes = mins
	}
	return r
}

// value maps OMDb's "N/A" placeholder to ""
func value(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "N/A") {
		return ""
	}
	return s
}

func splitList(s string) []string {
	s = value(s)
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
