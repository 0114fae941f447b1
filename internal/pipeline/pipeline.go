// Package pipeline composes the extraction, parsing, verification and report
// stages into the operations the CLI and the HTTP API expose.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"

	"github.com/manya9155/Hallucination-Detector/internal/cache"
	verrors "github.com/manya9155/Hallucination-Detector/internal/errors"
	"github.com/manya9155/Hallucination-Detector/internal/extract"
	"github.com/manya9155/Hallucination-Detector/internal/llm"
	"github.com/manya9155/Hallucination-Detector/internal/model"
	"github.com/manya9155/Hallucination-Detector/internal/parse"
	"github.com/manya9155/Hallucination-Detector/internal/report"
	"github.com/manya9155/Hallucination-Detector/internal/source"
	"github.com/manya9155/Hallucination-Detector/internal/util"
	"github.com/manya9155/Hallucination-Detector/internal/verify"
	"github.com/manya9155/Hallucination-Detector/internal/worker"
)

// The SPARQL endpoint asks clients to stay well below the REST API rates
const wikidataRequestsPerSecond = 2

// Verifier checks sentence claims and attribute claims. *verify.Engine is the
// production implementation.
type Verifier interface {
	worker.Verifier
	VerifyAttributes(ctx context.Context, title string, claims []model.AttributeClaim) []model.ClaimResult
}

// Pipeline orchestrates extraction, verification and reporting
type Pipeline struct {
	fetcher  *Fetcher
	robots   *util.RobotsChecker
	claims   *extract.Chain
	attrs    *extract.AttributeChain
	verifier Verifier
	batch    *worker.BatchProcessor
	renderer *report.Renderer
	logger   *log.Logger
	warnings []string // setup problems repeated on every report
	config   model.Config
}

// Option customizes a Pipeline
type Option func(*pipelineOptions)

type pipelineOptions struct {
	logger       *log.Logger
	claimPrimary extract.Extractor
	attrPrimary  extract.AttributeExtractor
	skipLLM      bool
	skipRobots   bool
}

// WithLogger sets the debug logger shared by every stage
func WithLogger(l *log.Logger) Option {
	return func(o *pipelineOptions) { o.logger = l }
}

// WithExtractors replaces the LLM-backed extractors built from the config.
// Either may be nil to run the deterministic extractor alone.
func WithExtractors(claims extract.Extractor, attrs extract.AttributeExtractor) Option {
	return func(o *pipelineOptions) {
		o.claimPrimary = claims
		o.attrPrimary = attrs
		o.skipLLM = true
	}
}

// WithoutRobots disables the robots.txt check before fetching pages
func WithoutRobots() Option {
	return func(o *pipelineOptions) { o.skipRobots = true }
}

// NewPipeline validates cfg and builds the provider-backed pipeline
func NewPipeline(cfg model.Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := collect(opts)
	return New(cfg, NewEngine(cfg, o.logger), opts...), nil
}

// New builds a pipeline around an existing verifier
func New(cfg model.Config, verifier Verifier, opts ...Option) *Pipeline {
	o := collect(opts)

	p := &Pipeline{
		fetcher: NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes,
			cfg.HTTP.InsecureTLS, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, ""),
		verifier: verifier,
		batch:    worker.NewBatchProcessor(verifier, cfg.Concurrency.Workers),
		renderer: report.NewRenderer(cfg.Output.IncludeFooter),
		logger:   o.logger,
		config:   cfg,
	}
	if !o.skipRobots {
		p.robots = util.NewRobotsCheckerWithClient(cfg.HTTP.UserAgent, p.fetcher.httpClient)
	}

	claimPrimary, attrPrimary := o.claimPrimary, o.attrPrimary
	if !o.skipLLM && cfg.LLM.Provider != "" {
		provider, err := availableProvider(cfg)
		if err != nil {
			warning := fmt.Sprintf("LLM extractor unavailable, using the fallback splitter: %v", err)
			p.logger.Print(warning)
			p.warnings = append(p.warnings, warning)
		} else {
			claimPrimary = llm.NewClaimExtractor(provider)
			attrPrimary = llm.NewAttributeExtractor(provider)
		}
	}

	p.claims = extract.NewChain(claimPrimary, extract.WithAutofill(cfg.Extraction.Autofill))
	p.attrs = extract.NewAttributeChain(attrPrimary)
	return p
}

// availableProvider builds the configured LLM provider and checks that it
// answers before extraction relies on it.
func availableProvider(cfg model.Config) (llm.Provider, error) {
	llmCfg := llm.ApplyEnv(llm.ConfigFromModel(cfg))
	provider, err := llm.NewProvider(llmCfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), llmCfg.Timeout)
	defer cancel()
	if !provider.IsAvailable(ctx) {
		return nil, fmt.Errorf("%s provider is not reachable or not configured", provider.Name())
	}
	return provider, nil
}

func collect(opts []Option) pipelineOptions {
	o := pipelineOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard, "", 0)
	}
	return o
}

// scope gives one operation its own response cache, so repeated lookups
// within a batch are shared but nothing outlives the request.
func (p *Pipeline) scope(ctx context.Context) context.Context {
	if !p.config.Cache.Enabled {
		return ctx
	}
	if _, ok := cache.FromContext(ctx); ok {
		return ctx
	}
	return cache.WithScope(ctx, cache.NewMemoryCache(p.config.Cache.TTL, 0))
}

// NewEngine wires the provider adapters described by cfg into a verification
// engine. All adapters share one HTTP client and limiter. Responses are cached
// per operation, see Pipeline.scope.
func NewEngine(cfg model.Config, logger *log.Logger) *verify.Engine {
	limiter := worker.NewLimiterFromConfig(cfg.RateLimiting)
	if u, err := url.Parse(cfg.Providers.Wikidata.SPARQLURL); err == nil && u.Host != "" {
		if cfg.RateLimiting.RequestsPerSecond <= 0 || cfg.RateLimiting.RequestsPerSecond > wikidataRequestsPerSecond {
			limiter.SetDomainRate(u.Host, wikidataRequestsPerSecond, 1)
		}
	}

	client := source.NewClient(cfg,
		source.WithLimiter(limiter),
		source.WithLogger(logger),
	)

	var titles verify.TitleDatabase
	if cfg.OMDbEnabled() {
		titles = source.NewOMDb(client, cfg.Providers.OMDb)
	}
	var graph verify.KnowledgeGraph
	if cfg.Providers.Wikidata.Enabled {
		graph = source.NewWikidata(client, cfg.Providers.Wikidata)
	}

	return verify.NewEngine(source.NewTMDb(client, cfg.Providers.TMDb), titles, graph,
		verify.WithThresholds(cfg.Thresholds),
		verify.WithLogger(logger),
	)
}

// CheckText extracts claims from free text and verifies each one
func (p *Pipeline) CheckText(ctx context.Context, text string) (*model.Report, error) {
	return p.checkText(ctx, text, model.ReportInput{Text: text})
}

func (p *Pipeline) checkText(ctx context.Context, text string, input model.ReportInput) (*model.Report, error) {
	if strings.TrimSpace(text) == "" {
		return nil, verrors.New(verrors.EUsage, "no text to check")
	}
	ctx = p.scope(ctx)

	extraction := p.claims.Extract(ctx, text)
	input.Extractor = extraction.Extractor

	warnings := append(append([]string{}, p.warnings...), extraction.Warnings...)
	for _, w := range extraction.Warnings {
		p.logger.Print(w)
	}
	if len(extraction.Lines) == 0 {
		warnings = append(warnings, "no claims found in the text")
	}
	p.logger.Printf("extracted %d claims with %s", len(extraction.Lines), extraction.Extractor)

	results := p.batch.VerifyClaims(ctx, parse.ParseAll(extraction.Lines))
	return report.New(input, results, append(warnings, unrecognized(results)...)), nil
}

// CheckClaims verifies claim sentences as given, without extraction
func (p *Pipeline) CheckClaims(ctx context.Context, lines []string) (*model.Report, error) {
	claims := parse.ParseAll(lines)
	if len(claims) == 0 {
		return nil, verrors.New(verrors.EUsage, "no claims to check")
	}
	results := p.batch.VerifyClaims(p.scope(ctx), claims)
	warnings := append(append([]string{}, p.warnings...), unrecognized(results)...)
	return report.New(model.ReportInput{Text: strings.Join(lines, "\n")}, results, warnings), nil
}

// CheckFile verifies one claim per line of path. Blank lines, # comments and
// repeated lines are skipped.
func (p *Pipeline) CheckFile(ctx context.Context, path string) (*model.Report, error) {
	results, err := p.batch.ProcessFile(p.scope(ctx), path, parse.Parse)
	if err != nil {
		return nil, err
	}
	warnings := append(append([]string{}, p.warnings...), unrecognized(results)...)
	return report.New(model.ReportInput{SourceURL: path}, results, warnings), nil
}

// unrecognized lists a warning for each claim no template matched
func unrecognized(results []model.ClaimResult) []string {
	var out []string
	for _, r := range results {
		if err := parse.Check(r.Claim); err != nil {
			out = append(out, err.Error())
		}
	}
	return out
}

// CheckHTML verifies the claims in the visible text of an HTML document
func (p *Pipeline) CheckHTML(ctx context.Context, html, sourceURL string) (*model.Report, error) {
	text, err := extract.TextFromHTML(html)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, verrors.Newf(verrors.EUsage, "no readable text in %s", sourceURL)
	}
	return p.checkText(ctx, text, model.ReportInput{SourceURL: sourceURL})
}

// CheckURL fetches a page, respecting robots.txt, and verifies the claims in
// its visible text.
func (p *Pipeline) CheckURL(ctx context.Context, rawURL string) (*model.Report, error) {
	if p.robots != nil {
		allowed, crawlDelay, err := p.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, verrors.Wrap(verrors.EUsage, "invalid url", err)
		}
		if !allowed {
			return nil, verrors.Newf(verrors.EUsage, "robots.txt disallows fetching %s", rawURL)
		}
		if crawlDelay > 0 {
			p.logger.Printf("robots.txt crawl delay for %s: %v", rawURL, crawlDelay)
		}
	}

	p.logger.Printf("fetching %s", rawURL)
	page, err := p.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	return p.CheckHTML(ctx, page.HTML, page.FinalURL)
}

// VerifyAttributes checks attribute/value pairs about one movie. When claims
// is empty they are extracted from text; when title is empty the title
// attribute is used.
func (p *Pipeline) VerifyAttributes(ctx context.Context, title, text string, claims []model.AttributeClaim) (*model.Report, error) {
	input := model.ReportInput{Text: text}
	warnings := append([]string{}, p.warnings...)

	if len(claims) == 0 {
		extraction := p.attrs.Extract(ctx, text)
		claims = extraction.Claims
		input.Extractor = extraction.Extractor
		warnings = append(warnings, extraction.Warnings...)
	}
	if len(claims) == 0 {
		return nil, verrors.New(verrors.EUsage, "no attribute claims to check")
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = parse.TitleHint(claims)
	}
	if title == "" {
		return nil, verrors.New(verrors.EUsage, "no movie title: pass one or include a title attribute")
	}
	input.Title = title

	p.logger.Printf("verifying %d attributes of %q", len(claims), title)
	return report.New(input, p.verifier.VerifyAttributes(p.scope(ctx), title, claims), warnings), nil
}

// Renderer returns the report renderer configured for this pipeline
func (p *Pipeline) Renderer() *report.Renderer {
	return p.renderer
}

// RenderReport writes the report to the requested files and prints the
// summary to w.
func (p *Pipeline) RenderReport(w io.Writer, rep *model.Report, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(rep, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			_, _ = fmt.Fprintf(w, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(rep, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			_, _ = fmt.Fprintf(w, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(w, rep)
	return nil
}
