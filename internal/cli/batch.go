package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	workers      int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Verify one claim per line of a file in parallel",
	Long: `Batch verifies a file of claim sentences, one per line:
- Blank lines and lines starting with # are skipped
- Repeated lines are verified once
- Claims are verified concurrently with a bounded worker pool
- Results keep the order of the file

Example:
  verdict batch claims.txt
  verdict batch claims.txt --workers 8 --json results.json --md results.md`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&workers, "workers", 4, "number of claims verified in parallel")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for the batch")
	addOutputFlags(batchCmd)
	addProviderFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	p, cfg, err := buildPipeline(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  verdict batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	started := time.Now()
	rep, err := p.CheckFile(ctx, file)
	if err != nil {
		return err
	}

	outErr := writeOutputs(cmd, p, rep)
	if outErr != nil && !errors.Is(outErr, ErrRefuted) {
		return outErr
	}

	s := rep.Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:       %d claims\n", s.Total)
	fmt.Fprintf(os.Stderr, "  Supported:   %d\n", s.Supported)
	fmt.Fprintf(os.Stderr, "  Refuted:     %d\n", s.Refuted)
	fmt.Fprintf(os.Stderr, "  Mixed:       %d\n", s.Mixed)
	fmt.Fprintf(os.Stderr, "  No evidence: %d\n", s.NotEnoughEvidence)
	fmt.Fprintf(os.Stderr, "  Elapsed:     %v\n", time.Since(started).Round(time.Millisecond))
	if ctx.Err() != nil {
		fmt.Fprintf(os.Stderr, "  Stopped early: %v\n", ctx.Err())
	}
	fmt.Fprintf(os.Stderr, "\n")

	return outErr
}
