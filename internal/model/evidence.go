package model

// Evidence is a unit of supporting data tied to a verdict
type Evidence struct {
	Source  string `json:"source"`            // Provider name (TMDb, OMDb, Wikidata)
	Locator string `json:"locator"`           // Identifier or query usable to re-fetch
	Summary string `json:"summary,omitempty"` // Human-readable snippet (award text, fact row)
}

// Provider names used in Evidence.Source
const (
	SourceTMDb     = "TMDb"
	SourceOMDb     = "OMDb"
	SourceWikidata = "Wikidata"
)

// EntityMatch is the result of resolving a free-text name or title against
// a provider's search results. When Found is false every other field is zero.
type EntityMatch struct {
	Found         bool    `json:"found"`
	CanonicalName string  `json:"canonical_name,omitempty"`
	ProviderID    string  `json:"provider_id,omitempty"`
	Score         float64 `json:"score,omitempty"`        // 0-100, meaningful only when Found
	ReleaseYear   int     `json:"release_year,omitempty"` // Movies only
}

// NoMatch returns the zero EntityMatch.
func NoMatch() EntityMatch {
	return EntityMatch{}
}
