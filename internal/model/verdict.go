package model

// Status is the outcome class of a verdict
type Status string

const (
	StatusSupported         Status = "supported"
	StatusRefuted           Status = "refuted"
	StatusNotEnoughEvidence Status = "not_enough_evidence"
	StatusMixed             Status = "mixed"
)

// Label returns the human-readable form of the status.
func (s Status) Label() string {
	switch s {
	case StatusSupported:
		return "Supported"
	case StatusRefuted:
		return "Refuted"
	case StatusMixed:
		return "Mixed"
	default:
		return "Not enough evidence"
	}
}

// Verdict is the outcome of checking one Claim.
// Supported verdicts always carry at least one Evidence item.
type Verdict struct {
	Status      Status     `json:"status"`
	Explanation string     `json:"explanation"`
	Evidence    []Evidence `json:"evidence"`
	Notices     []string   `json:"notices,omitempty"` // Advisory only, never affects Status
	Sources     []string   `json:"sources,omitempty"` // Contributing providers (attribute claims)
}

// NotEnoughEvidence builds an inconclusive verdict.
func NotEnoughEvidence(explanation string, notices []string) Verdict {
	return Verdict{
		Status:      StatusNotEnoughEvidence,
		Explanation: explanation,
		Evidence:    []Evidence{},
		Notices:     notices,
	}
}

// ClaimResult pairs a claim with its verdict
type ClaimResult struct {
	Claim   Claim   `json:"claim"`
	Verdict Verdict `json:"verdict"`
}
