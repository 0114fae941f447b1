// Package verify checks structured claims against the movie providers and
// produces one verdict per claim.
package verify

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/manya9155/Hallucination-Detector/internal/fuzzy"
	"github.com/manya9155/Hallucination-Detector/internal/model"
	"github.com/manya9155/Hallucination-Detector/internal/source"
	"github.com/manya9155/Hallucination-Detector/internal/worker"
)

// MovieDatabase is the primary structured-metadata provider
type MovieDatabase interface {
	SearchPerson(ctx context.Context, name string) ([]source.Person, error)
	SearchMovie(ctx context.Context, title string, year int) ([]source.Movie, error)
	MovieDetails(ctx context.Context, id int) (*source.MovieDetails, error)
	MovieCredits(ctx context.Context, id int) (*source.Credits, error)
}

// TitleDatabase is the secondary structured-metadata provider
type TitleDatabase interface {
	LookupTitle(ctx context.Context, title string, year int) (*source.Title, error)
	LookupID(ctx context.Context, imdbID string) (*source.Title, error)
	Search(ctx context.Context, query string) ([]source.SearchItem, error)
}

// KnowledgeGraph is the fact provider queried for awards and film facts
type KnowledgeGraph interface {
	PersonID(ctx context.Context, name string) (string, error)
	FilmID(ctx context.Context, title string) (string, error)
	AcademyAwards(ctx context.Context, personID, filmID string, year int) ([]source.AwardRow, error)
	FilmFacts(ctx context.Context, title string) (*model.MovieRecord, error)
}

// Engine verifies claims. It holds no per-claim state and is safe for
// concurrent use when its providers are.
type Engine struct {
	movies     MovieDatabase
	titles     TitleDatabase
	graph      KnowledgeGraph
	resolver   *fuzzy.Matcher // token-sort: entity resolution, cast membership, director identity
	containing *fuzzy.Matcher // token-set: attribute list containment
	thresholds model.Thresholds
	logger     *log.Logger
}

// Option customizes an Engine
type Option func(*Engine)

// WithThresholds overrides the fuzzy thresholds and money tolerance
func WithThresholds(t model.Thresholds) Option {
	return func(e *Engine) { e.thresholds = t }
}

// WithLogger sets the debug logger
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMatcher replaces the matcher used for entity resolution and identity checks
func WithMatcher(m *fuzzy.Matcher) Option {
	return func(e *Engine) {
		if m != nil {
			e.resolver = m
		}
	}
}

// NewEngine creates an engine. titles and graph may be nil, in which case the
// checks that need them find no data.
func NewEngine(movies MovieDatabase, titles TitleDatabase, graph KnowledgeGraph, opts ...Option) *Engine {
	e := &Engine{
		movies:     movies,
		titles:     titles,
		graph:      graph,
		resolver:   fuzzy.NewSortMatcher(),
		containing: fuzzy.NewMatcher(),
		thresholds: model.DefaultThresholds(),
		logger:     log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Verify checks one claim. It always returns a verdict: provider faults and
// panics become NotEnoughEvidence scoped to this claim.
func (e *Engine) Verify(ctx context.Context, c model.Claim) (v model.Verdict) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Printf("recovered while verifying %q: %v", c.Raw, r)
			v = model.NotEnoughEvidence(fmt.Sprintf("internal error while verifying claim: %v", r), nil)
		}
	}()

	if ctx.Err() != nil {
		return model.NotEnoughEvidence(worker.CancelledExplanation, nil)
	}

	switch c.Kind {
	case model.KindActorInMovie:
		v = e.actorInMovie(ctx, c.Subject, c.Object)
	case model.KindDirectorOfMovie:
		v = e.directorOfMovie(ctx, c.Object, c.Subject)
	case model.KindWonOscarForMovie:
		v = e.wonOscarForMovie(ctx, c.Subject, c.Object, c.Year)
	case model.KindWonOscarInYear:
		v = model.NotEnoughEvidence("Oscar wins by person and year are not checked without a movie; name the film for a definite answer.", nil)
	case model.KindWonOscar:
		v = e.wonOscar(ctx, c.Subject, c.Year)
	case model.KindAttributeValue:
		ac := model.AttributeClaim{Attribute: c.Attribute, Value: c.Value}
		v = e.verifyAttributes(ctx, c.Object, []model.AttributeClaim{ac}, c.Year)[0].Verdict
	default:
		v = model.NotEnoughEvidence("claim type not recognized.", nil)
	}
	return finalize(v)
}

// finalize enforces the verdict invariants: a non-nil evidence list and no
// Supported verdict without evidence.
func finalize(v model.Verdict) model.Verdict {
	if v.Evidence == nil {
		v.Evidence = []model.Evidence{}
	}
	if v.Status == model.StatusSupported && len(v.Evidence) == 0 {
		v.Status = model.StatusNotEnoughEvidence
	}
	return v
}

// unavailable reports a provider fault as an inconclusive verdict
func (e *Engine) unavailable(ctx context.Context, what string, err error, notices []string) model.Verdict {
	if ctx.Err() != nil {
		return model.NotEnoughEvidence(worker.CancelledExplanation, notices)
	}
	e.logger.Printf("%s: %v", what, err)
	return model.NotEnoughEvidence(fmt.Sprintf("%s failed: %v", what, err), notices)
}

func (e *Engine) resolvePerson(ctx context.Context, name string) (model.EntityMatch, string, error) {
	people, err := e.movies.SearchPerson(ctx, name)
	if err != nil {
		return model.NoMatch(), "", err
	}
	names := make([]string, len(people))
	for i, p := range people {
		names[i] = p.Name
	}
	best, ok := e.resolver.BestMatch(name, names)
	if !ok {
		return model.NoMatch(), "", nil
	}

	p := people[best.Index]
	notice := fmt.Sprintf("using closest match %q for input %q (score %.0f%%).", p.Name, name, best.Score)
	if best.Score < e.thresholds.PersonResolution {
		notice = fmt.Sprintf("best fuzzy match for %q is %q (score %.0f%%), low confidence.", name, p.Name, best.Score)
	}
	return model.EntityMatch{
		Found:         true,
		CanonicalName: p.Name,
		ProviderID:    strconv.Itoa(p.ID),
		Score:         best.Score,
	}, notice, nil
}

func (e *Engine) resolveMovie(ctx context.Context, title string, year int) (model.EntityMatch, string, error) {
	movies, err := e.movies.SearchMovie(ctx, title, year)
	if err != nil {
		return model.NoMatch(), "", err
	}
	titles := make([]string, len(movies))
	for i, m := range movies {
		titles[i] = m.Title
	}
	best, ok := e.resolver.BestMatch(title, titles)
	if !ok {
		return model.NoMatch(), "", nil
	}

	m := movies[best.Index]
	notice := fmt.Sprintf("using closest movie match %q for input %q (score %.0f%%).", m.Title, title, best.Score)
	if best.Score < e.thresholds.MovieResolution {
		notice = fmt.Sprintf("best fuzzy movie match for %q is %q (score %.0f%%), low confidence.", title, m.Title, best.Score)
	}
	return model.EntityMatch{
		Found:         true,
		CanonicalName: m.Title,
		ProviderID:    strconv.Itoa(m.ID),
		Score:         best.Score,
		ReleaseYear:   m.Year(),
	}, notice, nil
}

// actorCheck carries what the actor check resolved so the award check can
// reuse canonical names.
type actorCheck struct {
	verdict model.Verdict
	person  model.EntityMatch
	movie   model.EntityMatch
	fault   bool // a provider failed; the check did not run to completion
}

func (e *Engine) actorInMovie(ctx context.Context, person, movie string) model.Verdict {
	return e.checkActor(ctx, person, movie).verdict
}

func (e *Engine) checkActor(ctx context.Context, personRaw, movieRaw string) actorCheck {
	var notices []string

	person, notice, err := e.resolvePerson(ctx, personRaw)
	if err != nil {
		return actorCheck{verdict: e.unavailable(ctx, "TMDb person search", err, notices), fault: true}
	}
	if notice != "" {
		notices = append(notices, notice)
	}
	if !person.Found {
		return actorCheck{verdict: model.NotEnoughEvidence(fmt.Sprintf("No TMDb person found similar to %q.", personRaw), notices)}
	}

	movie, notice, err := e.resolveMovie(ctx, movieRaw, 0)
	if err != nil {
		return actorCheck{verdict: e.unavailable(ctx, "TMDb movie search", err, notices), person: person, fault: true}
	}
	if notice != "" {
		notices = append(notices, notice)
	}
	if !movie.Found {
		return actorCheck{verdict: model.NotEnoughEvidence(fmt.Sprintf("No TMDb movie found similar to %q.", movieRaw), notices), person: person}
	}

	id, _ := strconv.Atoi(movie.ProviderID)
	credits, err := e.movies.MovieCredits(ctx, id)
	if err != nil {
		return actorCheck{verdict: e.unavailable(ctx, "TMDb credits", err, notices), person: person, movie: movie, fault: true}
	}
	if credits == nil {
		return actorCheck{verdict: model.NotEnoughEvidence("Could not retrieve movie credits from TMDb.", notices), person: person, movie: movie}
	}

	evidence := []model.Evidence{tmdbMovieEvidence(movie)}
	best, ok := e.resolver.Contains(person.CanonicalName, credits.CastNames(), e.thresholds.CastMembership)
	v := model.Verdict{Evidence: evidence, Notices: notices}
	if ok {
		v.Status = model.StatusSupported
		v.Explanation = fmt.Sprintf("%s appears in the cast of %s (matched %s, %.0f%%).", person.CanonicalName, movie.CanonicalName, best.Value, best.Score)
	} else {
		v.Status = model.StatusRefuted
		v.Explanation = fmt.Sprintf("%s not found in the cast of %s%s.", person.CanonicalName, movie.CanonicalName, bestSoFar(best))
	}
	return actorCheck{verdict: v, person: person, movie: movie}
}

func (e *Engine) directorOfMovie(ctx context.Context, movieRaw, director string) model.Verdict {
	var notices []string

	movie, notice, err := e.resolveMovie(ctx, movieRaw, 0)
	if err != nil {
		return e.unavailable(ctx, "TMDb movie search", err, notices)
	}
	if notice != "" {
		notices = append(notices, notice)
	}
	if !movie.Found {
		return model.NotEnoughEvidence(fmt.Sprintf("No movie match for %q.", movieRaw), notices)
	}

	id, _ := strconv.Atoi(movie.ProviderID)
	details, err := e.movies.MovieDetails(ctx, id)
	if err != nil {
		return e.unavailable(ctx, "TMDb movie details", err, notices)
	}
	if details == nil {
		return model.NotEnoughEvidence("Could not fetch movie details from TMDb.", notices)
	}

	evidence := []model.Evidence{tmdbMovieEvidence(movie)}
	best, ok := e.resolver.Contains(director, details.Credits.CrewNames("Director"), e.thresholds.DirectorIdentity)
	if ok {
		return model.Verdict{
			Status:      model.StatusSupported,
			Explanation: fmt.Sprintf("%s is listed as director of %s.", best.Value, details.Title),
			Evidence:    evidence,
			Notices:     notices,
		}
	}
	return model.Verdict{
		Status:      model.StatusRefuted,
		Explanation: fmt.Sprintf("%s not listed as director of %s%s.", director, details.Title, bestSoFar(best)),
		Evidence:    evidence,
		Notices:     notices,
	}
}

// wonOscarForMovie treats a failed actor check as a refutation of the award
// claim, not as missing evidence. A provider fault during the actor check
// stays inconclusive.
func (e *Engine) wonOscarForMovie(ctx context.Context, personRaw, movieRaw string, year int) model.Verdict {
	check := e.checkActor(ctx, personRaw, movieRaw)
	if check.verdict.Status != model.StatusSupported {
		if check.fault || ctx.Err() != nil {
			return check.verdict
		}
		return model.Verdict{
			Status:      model.StatusRefuted,
			Explanation: "actor check failed: " + check.verdict.Explanation,
			Evidence:    check.verdict.Evidence,
			Notices:     check.verdict.Notices,
		}
	}

	notices := append([]string(nil), check.verdict.Notices...)
	person := check.person.CanonicalName
	title := check.movie.CanonicalName

	lookupYear := year
	if lookupYear == 0 {
		lookupYear = check.movie.ReleaseYear
	}

	var omdbTitle *source.Title
	if e.titles != nil {
		t, err := e.titles.LookupTitle(ctx, title, lookupYear)
		if err != nil {
			if ctx.Err() != nil {
				return model.NotEnoughEvidence(worker.CancelledExplanation, notices)
			}
			e.logger.Printf("OMDb lookup %q: %v", title, err)
			notices = append(notices, fmt.Sprintf("OMDb unavailable: %v", err))
		}
		omdbTitle = t
	}

	if omdbTitle != nil {
		awards := omdbTitle.Awards
		if mentionsOscar(awards) && containsFold(awards, surname(person)) {
			return model.Verdict{
				Status:      model.StatusSupported,
				Explanation: fmt.Sprintf("OMDb awards for %s mention Oscars and include %q.", omdbTitle.Title, surname(person)),
				Evidence:    []model.Evidence{omdbAwardsEvidence(omdbTitle)},
				Notices:     notices,
			}
		}
	}

	rows, rowNotices, err := e.academyAwards(ctx, person, title, true, year)
	notices = append(notices, rowNotices...)
	if err != nil {
		if ctx.Err() != nil {
			return model.NotEnoughEvidence(worker.CancelledExplanation, notices)
		}
		e.logger.Printf("Wikidata awards for %q: %v", person, err)
		notices = append(notices, fmt.Sprintf("Wikidata unavailable: %v", err))
	}
	if len(rows) > 0 {
		return model.Verdict{
			Status:      model.StatusSupported,
			Explanation: fmt.Sprintf("Wikidata shows an Academy Award win for %s for %s.", person, title),
			Evidence:    awardEvidence(rows),
			Notices:     notices,
		}
	}

	const inconclusive = "No reliable evidence found that the person won an Oscar for the film (OMDb and Wikidata checks failed or were inconclusive)."
	if omdbTitle != nil && !mentionsOscar(omdbTitle.Awards) {
		return model.Verdict{
			Status:      model.StatusRefuted,
			Explanation: fmt.Sprintf("OMDb has award data for %s without any Oscar, and Wikidata lists no matching win.", omdbTitle.Title),
			Evidence:    []model.Evidence{omdbAwardsEvidence(omdbTitle)},
			Notices:     notices,
		}
	}
	v := model.NotEnoughEvidence(inconclusive, notices)
	if omdbTitle != nil {
		v.Evidence = []model.Evidence{omdbAwardsEvidence(omdbTitle)}
	}
	return v
}

func (e *Engine) wonOscar(ctx context.Context, person string, year int) model.Verdict {
	rows, notices, err := e.academyAwards(ctx, person, "", false, year)
	if err != nil {
		return e.unavailable(ctx, "Wikidata award lookup", err, notices)
	}
	if rows == nil && len(notices) > 0 {
		return model.NotEnoughEvidence(notices[0], nil)
	}
	if len(rows) == 0 {
		return model.NotEnoughEvidence("No person-level Oscar found via Wikidata.", notices)
	}
	return model.Verdict{
		Status:      model.StatusSupported,
		Explanation: fmt.Sprintf("Wikidata shows Academy Award win(s) for %s.", person),
		Evidence:    awardEvidence(rows),
		Notices:     notices,
	}
}

// academyAwards resolves the person (and the film when withFilm) in the
// knowledge graph and lists matching award statements. An unresolved person
// yields nil rows and a single notice naming the person; an unresolved film
// drops the work filter and adds a notice.
func (e *Engine) academyAwards(ctx context.Context, person, film string, withFilm bool, year int) ([]source.AwardRow, []string, error) {
	if e.graph == nil {
		return nil, []string{"Wikidata is not configured."}, nil
	}

	personID, err := e.graph.PersonID(ctx, person)
	if err != nil {
		return nil, nil, err
	}
	if personID == "" {
		return nil, []string{fmt.Sprintf("Could not resolve person %q in Wikidata.", person)}, nil
	}

	var notices []string
	filmID := ""
	if withFilm {
		filmID, err = e.graph.FilmID(ctx, film)
		if err != nil {
			return nil, nil, err
		}
		if filmID == "" {
			notices = append(notices, fmt.Sprintf("Could not resolve film %q in Wikidata; checking awards without the film filter.", film))
		}
	}

	rows, err := e.graph.AcademyAwards(ctx, personID, filmID, year)
	if err != nil {
		return nil, notices, err
	}
	if rows == nil {
		rows = []source.AwardRow{}
	}
	return rows, notices, nil
}

func tmdbMovieEvidence(movie model.EntityMatch) model.Evidence {
	return model.Evidence{
		Source:  model.SourceTMDb,
		Locator: "/movie/" + movie.ProviderID,
		Summary: movie.CanonicalName,
	}
}

func omdbAwardsEvidence(t *source.Title) model.Evidence {
	return model.Evidence{
		Source:  model.SourceOMDb,
		Locator: t.ImdbID,
		Summary: fmt.Sprintf("%s awards: %s", t.Title, t.Awards),
	}
}

func awardEvidence(rows []source.AwardRow) []model.Evidence {
	out := make([]model.Evidence, 0, len(rows))
	for _, r := range rows {
		parts := []string{r.Award}
		if r.Work != "" {
			parts = append(parts, "for "+r.Work)
		}
		if r.Time != "" {
			parts = append(parts, "("+r.Time+")")
		}
		out = append(out, model.Evidence{
			Source:  model.SourceWikidata,
			Locator: "P166",
			Summary: strings.Join(parts, " "),
		})
	}
	return out
}

func mentionsOscar(text string) bool {
	return containsFold(text, "oscar") || containsFold(text, "academy award")
}

func containsFold(s, sub string) bool {
	if sub == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// surname is the last whitespace-delimited token of a full name
func surname(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func bestSoFar(best fuzzy.Match) string {
	if best.Value == "" {
		return ""
	}
	return fmt.Sprintf(" (best match %s, %.0f%%)", best.Value, best.Score)
}
