package score

import (
	"testing"

	"github.com/manya9155/Hallucination-Detector/internal/model"
)

func TestTally_Status(t *testing.T) {
	tests := []struct {
		name  string
		votes []bool
		want  model.Status
	}{
		{"no sources", nil, model.StatusNotEnoughEvidence},
		{"single match", []bool{true}, model.StatusSupported},
		{"all match", []bool{true, true, true}, model.StatusSupported},
		{"all miss", []bool{false, false}, model.StatusRefuted},
		{"split", []bool{true, false}, model.StatusMixed},
	}

	sources := []string{model.SourceTMDb, model.SourceOMDb, model.SourceWikidata}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tally := NewTally()
			for i, matched := range tt.votes {
				tally.Add(Vote{Source: sources[i], Matched: matched})
			}
			if got := tally.Status(); got != tt.want {
				t.Errorf("Status() = %s, want %s", got, tt.want)
			}
			if got := len(tally.Sources()); got != len(tt.votes) {
				t.Errorf("contributing sources = %d, want %d", got, len(tt.votes))
			}
		})
	}
}

func TestTally_OneVotePerSource(t *testing.T) {
	tally := NewTally()
	tally.Add(Vote{Source: model.SourceTMDb, Matched: false})
	tally.Add(Vote{Source: model.SourceTMDb, Matched: true})

	if got := tally.Sources(); len(got) != 1 {
		t.Fatalf("expected one vote, got %v", got)
	}
	if tally.Status() != model.StatusSupported {
		t.Errorf("later vote should replace the earlier one, got %s", tally.Status())
	}
}

func TestTally_EvidenceAndSources(t *testing.T) {
	tally := NewTally()
	tally.Add(Vote{Source: model.SourceTMDb, Matched: true, Locator: "/movie/597", Detail: "James Cameron"})
	tally.Add(Vote{Source: model.SourceWikidata, Matched: false, Locator: "Q44578"})

	ev := tally.Evidence()
	if len(ev) != 2 {
		t.Fatalf("expected 2 evidence items, got %d", len(ev))
	}
	if ev[0].Summary != "match: James Cameron" || ev[1].Summary != "no match" {
		t.Errorf("unexpected summaries: %q, %q", ev[0].Summary, ev[1].Summary)
	}

	srcs := tally.Sources()
	if len(srcs) != 2 || srcs[0] != model.SourceTMDb || srcs[1] != model.SourceWikidata {
		t.Errorf("Sources() = %v", srcs)
	}

	want := "1 of 2 sources matched (TMDb; not Wikidata)"
	if got := tally.Describe(); got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
}

func TestTally_DescribeEmpty(t *testing.T) {
	if got := NewTally().Describe(); got != "no source had data for this attribute" {
		t.Errorf("Describe() = %q", got)
	}
}
