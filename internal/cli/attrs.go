package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	verrors "github.com/manya9155/Hallucination-Detector/internal/errors"
	"github.com/manya9155/Hallucination-Detector/internal/model"
	"github.com/manya9155/Hallucination-Detector/internal/parse"
)

var (
	attrTitle string
	attrPairs []string
)

// attrsCmd represents the attrs command
var attrsCmd = &cobra.Command{
	Use:   "attrs [text...]",
	Short: "Cross-check attribute claims about one movie across all providers",
	Long: `Attrs verifies attribute/value pairs about a single movie against TMDb,
OMDb and Wikidata. Each provider votes; the verdict is Supported or Refuted
when they agree and Mixed when they disagree.

Pairs come from repeated --attr flags or are extracted from free text.
Known attributes: ` + knownAttributes() + `

Example:
  verdict attrs --title Titanic --attr director="James Cameron" --attr release_year=1997
  verdict attrs "Avatar (2009) was directed by James Cameron and grossed $2.9 billion."
  verdict attrs --llm anthropic < description.txt`,
	RunE: runAttrs,
}

func init() {
	rootCmd.AddCommand(attrsCmd)

	attrsCmd.Flags().StringVar(&attrTitle, "title", "", "movie title (default: the title attribute)")
	attrsCmd.Flags().StringArrayVar(&attrPairs, "attr", nil, "attribute=value pair (repeatable)")
	attrsCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout")
	addOutputFlags(attrsCmd)
	addProviderFlags(attrsCmd)
	addLLMFlags(attrsCmd)
}

func runAttrs(cmd *cobra.Command, args []string) error {
	claims, err := parsePairs(attrPairs)
	if err != nil {
		return err
	}

	var text string
	if len(claims) == 0 {
		if text, err = inputText(cmd, args); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	p, _, err := buildPipeline(cmd)
	if err != nil {
		return err
	}

	rep, err := p.VerifyAttributes(ctx, attrTitle, text, claims)
	if err != nil {
		return err
	}
	return writeOutputs(cmd, p, rep)
}

// parsePairs parses "attribute=value" (or "attribute: value") flags
func parsePairs(pairs []string) ([]model.AttributeClaim, error) {
	claims := make([]model.AttributeClaim, 0, len(pairs))
	for _, pair := range pairs {
		ac, ok := parse.ParseAttributeLine(pair)
		if !ok {
			return nil, verrors.Newf(verrors.EUsage, "invalid --attr %q: want attribute=value with one of %s", pair, knownAttributes())
		}
		claims = append(claims, ac)
	}
	return claims, nil
}

func knownAttributes() string {
	names := make([]string, len(model.KnownAttributes))
	for i, a := range model.KnownAttributes {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}
