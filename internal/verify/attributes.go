package verify

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/manya9155/Hallucination-Detector/internal/model"
	"github.com/manya9155/Hallucination-Detector/internal/parse"
	"github.com/manya9155/Hallucination-Detector/internal/score"
	"github.com/manya9155/Hallucination-Detector/internal/source"
	"github.com/manya9155/Hallucination-Detector/internal/worker"
)

// missingYearDistance ranks candidates without a release date last
const missingYearDistance = 9999

var claimedYearRe = regexp.MustCompile(`\d{4}`)

// VerifyAttributes checks attribute/value claims about one title against every
// provider. Records are fetched once per call and shared by all claims; a
// release_year claim narrows candidate selection. When title is empty the
// first title claim is used. The result has one entry per claim, in order.
func (e *Engine) VerifyAttributes(ctx context.Context, title string, claims []model.AttributeClaim) []model.ClaimResult {
	return e.verifyAttributes(ctx, title, claims, parse.YearHint(claims))
}

func (e *Engine) verifyAttributes(ctx context.Context, title string, claims []model.AttributeClaim, yearHint int) (results []model.ClaimResult) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = parse.TitleHint(claims)
	}

	results = make([]model.ClaimResult, len(claims))
	for i, ac := range claims {
		results[i] = model.ClaimResult{Claim: ac.ToClaim(title)}
	}
	fill := func(v model.Verdict) []model.ClaimResult {
		for i := range results {
			results[i].Verdict = finalize(v)
		}
		return results
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Printf("recovered while verifying attributes of %q: %v", title, r)
			results = fill(model.NotEnoughEvidence(fmt.Sprintf("internal error while verifying claim: %v", r), nil))
		}
	}()

	if len(claims) == 0 {
		return results
	}
	if ctx.Err() != nil {
		return fill(model.NotEnoughEvidence(worker.CancelledExplanation, nil))
	}
	if title == "" {
		return fill(model.NotEnoughEvidence("No movie title to check the attributes against.", nil))
	}

	records, notices := e.gatherRecords(ctx, title, yearHint)
	if ctx.Err() != nil {
		return fill(model.NotEnoughEvidence(worker.CancelledExplanation, notices))
	}

	for i, ac := range claims {
		results[i].Verdict = finalize(e.judgeAttribute(ac, records, notices))
	}
	return results
}

// gatherRecords fetches one record per provider, in TMDb, OMDb, Wikidata
// order. Providers without data are left out; faults become notices.
func (e *Engine) gatherRecords(ctx context.Context, title string, yearHint int) ([]*model.MovieRecord, []string) {
	var records []*model.MovieRecord
	var notices []string

	add := func(provider string, r *model.MovieRecord, err error) {
		if err != nil {
			if ctx.Err() == nil {
				e.logger.Printf("%s record for %q: %v", provider, title, err)
				notices = append(notices, fmt.Sprintf("%s unavailable: %v", provider, err))
			}
			return
		}
		if r != nil && !r.IsEmpty() {
			records = append(records, r)
		}
	}

	r, err := e.tmdbRecord(ctx, title, yearHint)
	add(model.SourceTMDb, r, err)

	if e.titles != nil && ctx.Err() == nil {
		r, err = e.omdbRecord(ctx, title, yearHint)
		add(model.SourceOMDb, r, err)
	}

	if e.graph != nil && ctx.Err() == nil {
		r, err = e.graph.FilmFacts(ctx, title)
		add(model.SourceWikidata, r, err)
	}
	return records, notices
}

func (e *Engine) tmdbRecord(ctx context.Context, title string, yearHint int) (*model.MovieRecord, error) {
	movies, err := e.movies.SearchMovie(ctx, title, 0)
	if err != nil || len(movies) == 0 {
		return nil, err
	}
	titles := make([]string, len(movies))
	years := make([]int, len(movies))
	for i, m := range movies {
		titles[i], years[i] = m.Title, m.Year()
	}

	chosen := movies[e.chooseCandidate(title, titles, years, yearHint)]
	details, err := e.movies.MovieDetails(ctx, chosen.ID)
	if err != nil {
		return nil, err
	}
	return details.Record(), nil
}

func (e *Engine) omdbRecord(ctx context.Context, title string, yearHint int) (*model.MovieRecord, error) {
	items, err := e.titles.Search(ctx, title)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	titles := make([]string, len(items))
	years := make([]int, len(items))
	for i, it := range items {
		titles[i], years[i] = it.Title, it.YearValue()
	}

	chosen := items[e.chooseCandidate(title, titles, years, yearHint)]
	t, err := e.titles.LookupID(ctx, chosen.ImdbID)
	if err != nil {
		return nil, err
	}
	return t.Record(), nil
}

// chooseCandidate picks the candidate whose year is closest to yearHint, or
// the best fuzzy title match when there is no hint. Ties keep the first.
func (e *Engine) chooseCandidate(title string, titles []string, years []int, yearHint int) int {
	if yearHint > 0 {
		best, bestDist := 0, math.MaxInt
		for i, y := range years {
			dist := missingYearDistance
			if y > 0 {
				dist = absInt(y - yearHint)
			}
			if dist < bestDist {
				best, bestDist = i, dist
			}
		}
		return best
	}
	if m, ok := e.resolver.BestMatch(title, titles); ok {
		return m.Index
	}
	return 0
}

func (e *Engine) judgeAttribute(ac model.AttributeClaim, records []*model.MovieRecord, notices []string) model.Verdict {
	value := strings.TrimSpace(ac.Value)
	if !ac.Attribute.IsKnown() {
		return model.NotEnoughEvidence(fmt.Sprintf("attribute %q is not checked.", ac.Attribute), notices)
	}

	var claimedNumber float64
	switch ac.Attribute {
	case model.AttrBoxOffice, model.AttrRuntime:
		n, ok := source.ParseMoney(value)
		if !ok {
			return model.NotEnoughEvidence(fmt.Sprintf("could not read a number from %q.", value), notices)
		}
		claimedNumber = n
	case model.AttrReleaseYear:
		if !claimedYearRe.MatchString(value) {
			return model.NotEnoughEvidence(fmt.Sprintf("could not read a year from %q.", value), notices)
		}
	}

	tally := score.NewTally()
	for _, r := range records {
		matched, detail, ok := e.compare(ac.Attribute, value, claimedNumber, r)
		if !ok {
			continue
		}
		tally.Add(score.Vote{Source: r.Source, Matched: matched, Locator: recordLocator(r), Detail: detail})
	}

	return model.Verdict{
		Status:      tally.Status(),
		Explanation: fmt.Sprintf("%s = %q: %s.", ac.Attribute, value, tally.Describe()),
		Evidence:    tally.Evidence(),
		Notices:     notices,
		Sources:     tally.Sources(),
	}
}

// compare applies the attribute's rule to one record. ok is false when the
// record has no data for the attribute, so the source does not vote.
func (e *Engine) compare(attr model.Attribute, value string, number float64, r *model.MovieRecord) (matched bool, detail string, ok bool) {
	switch attr {
	case model.AttrTitle:
		if r.Title == "" {
			return false, "", false
		}
		return strings.EqualFold(value, r.Title), r.Title, true

	case model.AttrReleaseYear:
		if r.ReleaseYear == 0 {
			return false, "", false
		}
		actual := strconv.Itoa(r.ReleaseYear)
		return claimedYearRe.FindString(value) == actual, actual, true

	case model.AttrBoxOffice:
		if r.BoxOffice <= 0 {
			return false, "", false
		}
		return source.WithinTolerance(number, r.BoxOffice, e.thresholds.MoneyTolerance), strconv.FormatFloat(r.BoxOffice, 'f', 0, 64), true

	case model.AttrRuntime:
		if r.RuntimeMinutes <= 0 {
			return false, "", false
		}
		return source.WithinTolerance(number, r.RuntimeMinutes, e.thresholds.MoneyTolerance), strconv.FormatFloat(r.RuntimeMinutes, 'f', 0, 64) + " min", true

	case model.AttrAward:
		if len(r.Awards) == 0 {
			return false, "", false
		}
		best, hit := e.containing.Contains(value, r.Awards, e.thresholds.ValueContainment)
		if !hit && mentionsOscar(value) {
			for _, a := range r.Awards {
				if mentionsOscar(a) {
					return true, a, true
				}
			}
		}
		return hit, best.Value, true
	}

	list := recordList(attr, r)
	if len(list) == 0 {
		return false, "", false
	}
	best, hit := e.containing.Contains(value, list, e.thresholds.ValueContainment)
	if hit {
		return true, best.Value, true
	}
	return false, strings.Join(list, ", "), true
}

func recordList(attr model.Attribute, r *model.MovieRecord) []string {
	switch attr {
	case model.AttrDirector:
		return r.Directors
	case model.AttrActor:
		return r.Cast
	case model.AttrGenre:
		return r.Genres
	case model.AttrProductionCompany:
		return r.Companies
	case model.AttrLanguage:
		return r.Languages
	case model.AttrCountry:
		return r.Countries
	}
	return nil
}

func recordLocator(r *model.MovieRecord) string {
	if r.Source == model.SourceTMDb && r.ID != "" {
		return "/movie/" + r.ID
	}
	return r.ID
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
