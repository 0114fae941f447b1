package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/manya9155/Hallucination-Detector/internal/model"
)

// CancelledExplanation is the verdict explanation for claims never verified
// because the batch was cancelled.
const CancelledExplanation = "verification cancelled"

// Verifier checks one claim. Implementations must always return a verdict.
type Verifier interface {
	Verify(ctx context.Context, claim model.Claim) model.Verdict
}

// BatchProcessor verifies many claims concurrently with bounded parallelism
type BatchProcessor struct {
	verifier    Verifier
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(verifier Verifier, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		verifier:    verifier,
		concurrency: concurrency,
	}
}

// VerifyClaims returns exactly one result per claim, in input order.
// Claims not started before ctx was cancelled get a NotEnoughEvidence verdict;
// verdicts already computed are kept.
func (b *BatchProcessor) VerifyClaims(ctx context.Context, claims []model.Claim) []model.ClaimResult {
	if len(claims) == 0 {
		return []model.ClaimResult{}
	}

	pool := NewPool[model.ClaimResult](ctx, b.concurrency, len(claims))
	pool.Start()

	for i, c := range claims {
		if !pool.Submit(i, func(ctx context.Context) model.ClaimResult {
			return model.ClaimResult{Claim: c, Verdict: b.verifier.Verify(ctx, c)}
		}) {
			break
		}
	}

	out, done := pool.Wait()
	for i := range claims {
		if !done[i] {
			out[i] = cancelled(claims[i])
		}
	}
	return out
}

// ProcessFile reads one claim sentence per line and verifies each with parse
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string, parse func(string) model.Claim) ([]model.ClaimResult, error) {
	lines, err := ReadLinesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}

	claims := make([]model.Claim, 0, len(lines))
	for _, l := range lines {
		claims = append(claims, parse(l))
	}
	return b.VerifyClaims(ctx, claims), nil
}

// ReadLinesFromFile reads non-empty lines from a file, skipping # comments
// and duplicates
func ReadLinesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return lines, nil
}

func cancelled(c model.Claim) model.ClaimResult {
	return model.ClaimResult{
		Claim:   c,
		Verdict: model.NotEnoughEvidence(CancelledExplanation, nil),
	}
}
