package model

import "strings"

// Claim represents a structured assertion derived from one fragment of text.
// Claims are immutable once parsed.
type Claim struct {
	Raw       string    `json:"raw"`                 // Source text the claim was parsed from
	Kind      ClaimKind `json:"kind"`                // Recognized claim template
	Subject   string    `json:"subject,omitempty"`   // Person name (director for DirectorOfMovie)
	Object    string    `json:"object,omitempty"`    // Movie title
	Attribute Attribute `json:"attribute,omitempty"` // Only for KindAttributeValue
	Value     string    `json:"value,omitempty"`     // Only for KindAttributeValue
	Year      int       `json:"year,omitempty"`      // 0 when absent
}

// HasYear reports whether the claim carries a year constraint.
func (c Claim) HasYear() bool {
	return c.Year > 0
}

// ClaimKind categorizes the claim by the template that matched it
type ClaimKind string

const (
	KindActorInMovie     ClaimKind = "actor_in_movie"
	KindDirectorOfMovie  ClaimKind = "director_of_movie"
	KindWonOscarForMovie ClaimKind = "won_oscar_for_movie"
	KindWonOscarInYear   ClaimKind = "won_oscar_in_year"
	KindWonOscar         ClaimKind = "won_oscar"
	KindAttributeValue   ClaimKind = "attribute_value"
	KindUnknown          ClaimKind = "unknown"
)

// Attribute names a movie property checked by the cross-source verifier
type Attribute string

const (
	AttrTitle             Attribute = "title"
	AttrDirector          Attribute = "director"
	AttrActor             Attribute = "actor"
	AttrReleaseYear       Attribute = "release_year"
	AttrAward             Attribute = "award"
	AttrBoxOffice         Attribute = "box_office"
	AttrGenre             Attribute = "genre"
	AttrRuntime           Attribute = "runtime"
	AttrProductionCompany Attribute = "production_company"
	AttrLanguage          Attribute = "language"
	AttrCountry           Attribute = "country"
)

// KnownAttributes lists every attribute the verifier has a comparison rule for
var KnownAttributes = []Attribute{
	AttrTitle, AttrDirector, AttrActor, AttrReleaseYear, AttrAward, AttrBoxOffice,
	AttrGenre, AttrRuntime, AttrProductionCompany, AttrLanguage, AttrCountry,
}

// NormalizeAttribute maps free-form attribute names ("Release Year", "box-office")
// onto the canonical Attribute. Unknown names are returned lower-cased and unchanged otherwise.
func NormalizeAttribute(name string) Attribute {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)

	switch s {
	case "year", "released", "release_date":
		return AttrReleaseYear
	case "boxoffice", "revenue", "gross":
		return AttrBoxOffice
	case "cast", "star", "starring":
		return AttrActor
	case "directed_by":
		return AttrDirector
	case "studio", "production", "producer_company":
		return AttrProductionCompany
	case "original_language":
		return AttrLanguage
	case "awards":
		return AttrAward
	}
	return Attribute(s)
}

// IsKnown reports whether the verifier has a comparison rule for the attribute.
func (a Attribute) IsKnown() bool {
	for _, k := range KnownAttributes {
		if a == k {
			return true
		}
	}
	return false
}

// AttributeClaim is a generic attribute/value pair as produced by extractors.
type AttributeClaim struct {
	Attribute Attribute `json:"attribute"`
	Value     string    `json:"value"`
}

// ToClaim converts the pair into a Claim of kind KindAttributeValue bound to a title.
func (a AttributeClaim) ToClaim(title string) Claim {
	return Claim{
		Raw:       string(a.Attribute) + " = " + a.Value,
		Kind:      KindAttributeValue,
		Object:    title,
		Attribute: a.Attribute,
		Value:     a.Value,
	}
}
