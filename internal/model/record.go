package model

// MovieRecord is the normalized view of one movie as reported by one provider.
// Absent values are zero: empty string, 0, nil slice.
type MovieRecord struct {
	Source         string   `json:"source"`
	ID             string   `json:"id"` // provider identifier (TMDb id, imdbID, QID)
	Title          string   `json:"title"`
	ReleaseYear    int      `json:"release_year,omitempty"`
	Directors      []string `json:"directors,omitempty"`
	Cast           []string `json:"cast,omitempty"`
	Genres         []string `json:"genres,omitempty"`
	Companies      []string `json:"companies,omitempty"`
	Languages      []string `json:"languages,omitempty"`
	Countries      []string `json:"countries,omitempty"`
	Awards         []string `json:"awards,omitempty"` // award labels or free-form award text
	BoxOffice      float64  `json:"box_office,omitempty"`
	RuntimeMinutes float64  `json:"runtime_minutes,omitempty"`
}

// IsEmpty reports whether the provider returned nothing usable.
func (r *MovieRecord) IsEmpty() bool {
	return r == nil || (r.ID == "" && r.Title == "")
}
