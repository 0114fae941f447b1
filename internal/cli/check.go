package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	verrors "github.com/manya9155/Hallucination-Detector/internal/errors"
	"github.com/manya9155/Hallucination-Detector/internal/model"
	"github.com/manya9155/Hallucination-Detector/internal/pipeline"
)

// ErrRefuted is returned with --fail-on-refuted when a claim was refuted
var ErrRefuted = errors.New("at least one claim was refuted")

var (
	outJSON       string
	outMD         string
	timeout       time.Duration
	pageURL       string
	htmlFile      string
	noCache       bool
	noAutofill    bool
	noFooter      bool
	insecureTLS   bool
	llmProvider   string
	llmModel      string
	failOnRefuted bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [text...]",
	Short: "Fact-check the claims in a sentence, a web page or an HTML file",
	Long: `Check splits text into independent claims, recognizes the supported
claim shapes and verifies each one against TMDb, OMDb and Wikidata:

- "<person> acted in <movie>"
- "<movie> was directed by <person>"
- "<person> won an Oscar for <movie>" / "<person> won an Oscar [in <year>]"

Attribute claims (release year, box office, genre...) are checked with
"verdict attrs".

Text is read from the arguments, --url, --html or standard input.

Example:
  verdict check "Leonardo DiCaprio won an Oscar for The Revenant."
  verdict check --url https://example.com/trivia --json report.json
  echo "Titanic was directed by James Cameron." | verdict check --llm openai`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&pageURL, "url", "", "read claims from the visible text of a web page")
	checkCmd.Flags().StringVar(&htmlFile, "html", "", "read claims from a local HTML file")
	checkCmd.Flags().BoolVar(&noAutofill, "no-autofill", false, "do not rewrite pronoun fragments with the last named person")
	checkCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout")
	addOutputFlags(checkCmd)
	addProviderFlags(checkCmd)
	addLLMFlags(checkCmd)
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&outJSON, "json", "", "write the JSON report to this path (- for stdout)")
	cmd.Flags().StringVar(&outMD, "md", "", "write the Markdown report to this path")
	cmd.Flags().BoolVar(&noFooter, "no-footer", false, "omit the footer in Markdown reports")
	cmd.Flags().BoolVar(&failOnRefuted, "fail-on-refuted", false, "exit with status 3 when any claim is refuted")
}

func addProviderFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the provider response cache")
	cmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification (use for self-signed proxies)")
}

func addLLMFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&llmProvider, "llm", "", "extract claims with an LLM (openai, anthropic, ollama)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")
}

// applyFlags lays explicitly set flags over the loaded configuration
func applyFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noAutofill {
		cfg.Extraction.Autofill = false
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	if insecureTLS {
		cfg.HTTP.InsecureTLS = true
	}
	if flags.Changed("llm") {
		cfg.LLM.Provider = llmProvider
	}
	if flags.Changed("llm-model") {
		cfg.LLM.Model = llmModel
	}
	if flags.Changed("workers") {
		cfg.Concurrency.Workers = workers
	}
}

// buildPipeline loads the configuration, applies flags and validates it
func buildPipeline(cmd *cobra.Command) (*pipeline.Pipeline, model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	applyFlags(cmd, &cfg)

	p, err := pipeline.NewPipeline(cfg, pipeline.WithLogger(newLogger()))
	if err != nil {
		return nil, cfg, err
	}
	return p, cfg, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	p, cfg, err := buildPipeline(cmd)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintf(os.Stderr, "OMDb: %v, Wikidata: %v\n", cfg.OMDbEnabled(), cfg.Providers.Wikidata.Enabled)
		if cfg.LLM.Provider != "" {
			fmt.Fprintf(os.Stderr, "LLM extractor: %s\n", cfg.LLM.Provider)
		}
		fmt.Fprintln(os.Stderr)
	}

	var rep *model.Report
	switch {
	case pageURL != "":
		rep, err = p.CheckURL(ctx, pageURL)
	case htmlFile != "":
		data, readErr := os.ReadFile(htmlFile)
		if readErr != nil {
			return fmt.Errorf("read html: %w", readErr)
		}
		rep, err = p.CheckHTML(ctx, string(data), htmlFile)
	default:
		text, textErr := inputText(cmd, args)
		if textErr != nil {
			return textErr
		}
		rep, err = p.CheckText(ctx, text)
	}
	if err != nil {
		return err
	}

	return writeOutputs(cmd, p, rep)
}

// inputText joins the arguments, or reads standard input when there are none
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", verrors.New(verrors.EUsage, "no text given: pass it as arguments, with --url or --html, or on stdin")
	}
	return string(data), nil
}

// writeOutputs renders the report files and the summary, then applies --fail-on-refuted
func writeOutputs(cmd *cobra.Command, p *pipeline.Pipeline, rep *model.Report) error {
	out := cmd.OutOrStdout()

	if outJSON == "-" {
		if err := p.Renderer().WriteJSON(out, rep); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if err := p.RenderReport(os.Stderr, rep, "", outMD, verbose); err != nil {
			return err
		}
	} else if err := p.RenderReport(out, rep, outJSON, outMD, verbose); err != nil {
		return err
	}

	for _, w := range rep.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	if failOnRefuted && rep.Summary.Refuted > 0 {
		return ErrRefuted
	}
	return nil
}
