// Package score turns per-source comparison outcomes into a verdict status.
package score

import (
	"fmt"
	"strings"

	"github.com/manya9155/Hallucination-Detector/internal/model"
)

// Vote is one source's answer to "does the claimed value match?"
type Vote struct {
	Source  string
	Matched bool
	Locator string // identifier of the record the source answered from
	Detail  string // the source's own value, for evidence
}

// Tally collects at most one vote per source, in the order added
type Tally struct {
	votes []Vote
}

// NewTally creates an empty tally
func NewTally() *Tally {
	return &Tally{}
}

// Add records a vote. A second vote from the same source replaces the first.
func (t *Tally) Add(v Vote) {
	for i, existing := range t.votes {
		if existing.Source == v.Source {
			t.votes[i] = v
			return
		}
	}
	t.votes = append(t.votes, v)
}

// Status aggregates the votes: no votes is NotEnoughEvidence, unanimous
// matches Supported, unanimous mismatches Refuted, anything else Mixed.
func (t *Tally) Status() model.Status {
	matched, missed := t.counts()
	switch {
	case matched == 0 && missed == 0:
		return model.StatusNotEnoughEvidence
	case missed == 0:
		return model.StatusSupported
	case matched == 0:
		return model.StatusRefuted
	default:
		return model.StatusMixed
	}
}

// Sources lists contributing sources in vote order
func (t *Tally) Sources() []string {
	out := make([]string, 0, len(t.votes))
	for _, v := range t.votes {
		out = append(out, v.Source)
	}
	return out
}

// Evidence returns one evidence item per vote
func (t *Tally) Evidence() []model.Evidence {
	out := make([]model.Evidence, 0, len(t.votes))
	for _, v := range t.votes {
		verdict := "no match"
		if v.Matched {
			verdict = "match"
		}
		summary := verdict
		if v.Detail != "" {
			summary = fmt.Sprintf("%s: %s", verdict, v.Detail)
		}
		out = append(out, model.Evidence{Source: v.Source, Locator: v.Locator, Summary: summary})
	}
	return out
}

// Describe summarizes the vote, e.g. "2 of 3 sources matched (TMDb, OMDb; not Wikidata)"
func (t *Tally) Describe() string {
	if len(t.votes) == 0 {
		return "no source had data for this attribute"
	}
	var yes, no []string
	for _, v := range t.votes {
		if v.Matched {
			yes = append(yes, v.Source)
		} else {
			no = append(no, v.Source)
		}
	}

	var parts []string
	if len(yes) > 0 {
		parts = append(parts, strings.Join(yes, ", "))
	}
	if len(no) > 0 {
		parts = append(parts, "not "+strings.Join(no, ", "))
	}
	return fmt.Sprintf("%d of %d sources matched (%s)", len(yes), len(t.votes), strings.Join(parts, "; "))
}

func (t *Tally) counts() (matched, missed int) {
	for _, v := range t.votes {
		if v.Matched {
			matched++
		} else {
			missed++
		}
	}
	return matched, missed
}
