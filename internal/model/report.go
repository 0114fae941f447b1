package model

import "time"

// Report is the aggregated output of one verification run
type Report struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Input     ReportInput   `json:"input"`
	Results   []ClaimResult `json:"results"`
	Summary   Summary       `json:"summary"`
	Warnings  []string      `json:"warnings,omitempty"` // pipeline-level issues (extractor fallback, fetch problems)
}

// ReportInput describes where the claims came from
type ReportInput struct {
	Text      string `json:"text,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
	Title     string `json:"title,omitempty"` // attribute runs only
	Extractor string `json:"extractor,omitempty"`
}

// Summary counts verdicts by status
type Summary struct {
	Total             int `json:"total"`
	Supported         int `json:"supported"`
	Refuted           int `json:"refuted"`
	NotEnoughEvidence int `json:"not_enough_evidence"`
	Mixed             int `json:"mixed"`
}

// Overall returns the single status a reader would quote for the whole run:
// Refuted if anything was refuted, Supported only if every claim was.
func (s Summary) Overall() Status {
	switch {
	case s.Total == 0:
		return StatusNotEnoughEvidence
	case s.Refuted > 0:
		return StatusRefuted
	case s.Mixed > 0:
		return StatusMixed
	case s.Supported == s.Total:
		return StatusSupported
	default:
		return StatusNotEnoughEvidence
	}
}
