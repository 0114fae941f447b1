// Package report aggregates claim verdicts into a report and renders it.
// It adds no verification logic of its own.
package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/manya9155/Hallucination-Detector/internal/model"
)

// Summarize counts verdicts by status
func Summarize(results []model.ClaimResult) model.Summary {
	s := model.Summary{Total: len(results)}
	for _, r := range results {
		switch r.Verdict.Status {
		case model.StatusSupported:
			s.Supported++
		case model.StatusRefuted:
			s.Refuted++
		case model.StatusMixed:
			s.Mixed++
		default:
			s.NotEnoughEvidence++
		}
	}
	return s
}

// New builds a report with a fresh ID and summary
func New(input model.ReportInput, results []model.ClaimResult, warnings []string) *model.Report {
	if results == nil {
		results = []model.ClaimResult{}
	}
	return &model.Report{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Input:     input,
		Results:   results,
		Summary:   Summarize(results),
		Warnings:  warnings,
	}
}
