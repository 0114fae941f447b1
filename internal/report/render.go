package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manya9155/Hallucination-Detector/internal/model"
)

const footer = "_Verdicts are derived from TMDb, OMDb and Wikidata responses at the time of the run. A missing verdict is not a refutation._"

// Renderer writes reports as JSON, Markdown or plain text
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// WriteJSON encodes the report as indented JSON
func (r *Renderer) WriteJSON(w io.Writer, report *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// RenderJSON writes the report as JSON to path
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	return writeFile(path, func(w io.Writer) error { return r.WriteJSON(w, report) })
}

// RenderMarkdown writes the report as Markdown to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, r.Markdown(report))
		return err
	})
}

// Markdown formats the report for humans
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	b.WriteString("# Verdict report\n\n")
	fmt.Fprintf(&b, "- **ID:** `%s`\n", report.ID)
	fmt.Fprintf(&b, "- **Created:** %s\n", report.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	if report.Input.SourceURL != "" {
		fmt.Fprintf(&b, "- **Source:** %s\n", report.Input.SourceURL)
	}
	if report.Input.Title != "" {
		fmt.Fprintf(&b, "- **Title:** %s\n", report.Input.Title)
	}
	if report.Input.Extractor != "" {
		fmt.Fprintf(&b, "- **Extractor:** %s\n", report.Input.Extractor)
	}
	s := report.Summary
	fmt.Fprintf(&b, "- **Overall:** %s\n\n", s.Overall().Label())

	b.WriteString("| Supported | Refuted | Mixed | Not enough evidence | Total |\n")
	b.WriteString("|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %d |\n\n", s.Supported, s.Refuted, s.Mixed, s.NotEnoughEvidence, s.Total)

	if len(report.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Claims\n\n")
	for i, res := range report.Results {
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, escapeMarkdown(res.Claim.Raw))
		fmt.Fprintf(&b, "**%s** (%s)\n\n", res.Verdict.Status.Label(), res.Claim.Kind)
		if res.Verdict.Explanation != "" {
			fmt.Fprintf(&b, "%s\n\n", res.Verdict.Explanation)
		}
		for _, ev := range res.Verdict.Evidence {
			fmt.Fprintf(&b, "- %s `%s`", ev.Source, ev.Locator)
			if ev.Summary != "" {
				fmt.Fprintf(&b, ": %s", escapeMarkdown(ev.Summary))
			}
			b.WriteString("\n")
		}
		for _, n := range res.Verdict.Notices {
			fmt.Fprintf(&b, "> %s\n", n)
		}
		if len(res.Verdict.Evidence) > 0 || len(res.Verdict.Notices) > 0 {
			b.WriteString("\n")
		}
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString(footer + "\n")
	}
	return b.String()
}

// RenderSummary prints one line per claim and the totals
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	for _, res := range report.Results {
		fmt.Fprintf(w, "%-20s %s\n", "["+res.Verdict.Status.Label()+"]", res.Claim.Raw)
		if res.Verdict.Explanation != "" {
			fmt.Fprintf(w, "%-20s %s\n", "", res.Verdict.Explanation)
		}
		if len(res.Verdict.Sources) > 0 {
			fmt.Fprintf(w, "%-20s sources: %s\n", "", strings.Join(res.Verdict.Sources, ", "))
		}
	}
	s := report.Summary
	fmt.Fprintf(w, "\n%d claims: %d supported, %d refuted, %d mixed, %d not enough evidence. Overall: %s\n",
		s.Total, s.Supported, s.Refuted, s.Mixed, s.NotEnoughEvidence, s.Overall().Label())
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func escapeMarkdown(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
