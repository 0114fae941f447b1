package model

import (
	"time"

	verrors "github.com/manya9155/Hallucination-Detector/internal/errors"
)

// Config holds all runtime settings for a verification run.
// Credentials are supplied by the surrounding application and passed down
// to adapter constructors; nothing reads process-wide state after startup.
type Config struct {
	HTTP         HTTPConfig        `yaml:"http" json:"http"`
	Providers    ProvidersConfig   `yaml:"providers" json:"providers"`
	Thresholds   Thresholds        `yaml:"thresholds" json:"thresholds"`
	Retry        RetryConfig       `yaml:"retry" json:"retry"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" json:"rate_limiting"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	Cache        CacheConfig       `yaml:"cache" json:"cache"`
	LLM          LLMConfig         `yaml:"llm" json:"llm"`
	Extraction   ExtractionConfig  `yaml:"extraction" json:"extraction"`
	Output       OutputConfig      `yaml:"output" json:"output"`
	Server       ServerConfig      `yaml:"server" json:"server"`
}

// HTTPConfig controls outbound requests to providers and pages
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent    string        `yaml:"user_agent" json:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	InsecureTLS  bool          `yaml:"insecure_tls" json:"insecure_tls"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" json:"http_proxy,omitempty"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" json:"https_proxy,omitempty"`
}

// ProvidersConfig holds endpoints and credentials for each data source
type ProvidersConfig struct {
	TMDb     TMDbConfig     `yaml:"tmdb" json:"tmdb"`
	OMDb     OMDbConfig     `yaml:"omdb" json:"omdb"`
	Wikidata WikidataConfig `yaml:"wikidata" json:"wikidata"`
}

type TMDbConfig struct {
	BaseURL     string `yaml:"base_url" json:"base_url"`
	BearerToken string `yaml:"bearer_token,omitempty" json:"bearer_token,omitempty"` // v4 read token (preferred)
	APIKey      string `yaml:"api_key,omitempty" json:"api_key,omitempty"`           // v3 key, sent as api_key param
}

type OMDbConfig struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
	APIKey  string `yaml:"api_key,omitempty" json:"api_key,omitempty"`
}

type WikidataConfig struct {
	SPARQLURL string `yaml:"sparql_url" json:"sparql_url"`
	Enabled   bool   `yaml:"enabled" json:"enabled"`
}

// Thresholds are the fuzzy-match cutoffs (0-100) and the numeric tolerance.
// Resolution thresholds only add low-confidence notices; membership and
// identity thresholds decide the verdict.
type Thresholds struct {
	PersonResolution float64 `yaml:"person_resolution" json:"person_resolution"`
	MovieResolution  float64 `yaml:"movie_resolution" json:"movie_resolution"`
	CastMembership   float64 `yaml:"cast_membership" json:"cast_membership"`
	DirectorIdentity float64 `yaml:"director_identity" json:"director_identity"`
	ValueContainment float64 `yaml:"value_containment" json:"value_containment"` // attribute lists (genre, company, ...)
	MoneyTolerance   float64 `yaml:"money_tolerance" json:"money_tolerance"`     // relative, 0.10 = 10%
}

// RetryConfig is the backoff policy for transient provider failures
type RetryConfig struct {
	Attempts  int           `yaml:"attempts" json:"attempts"`
	BaseDelay time.Duration `yaml:"base_delay" json:"base_delay"` // doubled after each failed attempt
}

// RateLimitConfig controls politeness towards providers
type RateLimitConfig struct {
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second"` // per host
	Burst             int           `yaml:"burst" json:"burst"`
	Politeness        time.Duration `yaml:"politeness" json:"politeness"` // fixed delay before each call
}

type ConcurrencyConfig struct {
	Workers int `yaml:"workers" json:"workers"` // claims verified in parallel
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
}

// LLMConfig selects the optional claim extractor backend.
// An empty Provider means the deterministic extractor is used alone.
type LLMConfig struct {
	Provider    string        `yaml:"provider" json:"provider"` // openai, anthropic, ollama
	Model       string        `yaml:"model" json:"model"`
	APIKey      string        `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	BaseURL     string        `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	MaxTokens   int           `yaml:"max_tokens" json:"max_tokens"`
	Temperature float32       `yaml:"temperature" json:"temperature"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
}

type ExtractionConfig struct {
	Autofill bool `yaml:"autofill" json:"autofill"` // rewrite pronoun fragments with the last named person
}

type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose"`
	IncludeFooter bool `yaml:"include_footer" json:"include_footer"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr" json:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes" json:"max_body_bytes"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout:      10 * time.Second,
			UserAgent:    "verdict/0.1 (+https://github.com/manya9155/Hallucination-Detector)",
			MaxBodyBytes: 2_000_000,
		},
		Providers: ProvidersConfig{
			TMDb: TMDbConfig{BaseURL: "https://api.themoviedb.org/3"},
			OMDb: OMDbConfig{BaseURL: "https://www.omdbapi.com/"},
			Wikidata: WikidataConfig{
				SPARQLURL: "https://query.wikidata.org/sparql",
				Enabled:   true,
			},
		},
		Thresholds: DefaultThresholds(),
		Retry: RetryConfig{
			Attempts:  3,
			BaseDelay: 600 * time.Millisecond,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 4,
			Burst:             2,
			Politeness:        200 * time.Millisecond,
		},
		Concurrency: ConcurrencyConfig{Workers: 4},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     30 * time.Minute,
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			MaxTokens:   400,
			Temperature: 0,
			Timeout:     30 * time.Second,
		},
		Extraction: ExtractionConfig{Autofill: true},
		Output:     OutputConfig{IncludeFooter: true},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			MaxBodyBytes:   1 << 20,
		},
	}
}

// DefaultThresholds returns the stock matching cutoffs
func DefaultThresholds() Thresholds {
	return Thresholds{
		PersonResolution: 82,
		MovieResolution:  80,
		CastMembership:   85,
		DirectorIdentity: 85,
		ValueContainment: 85,
		MoneyTolerance:   0.10,
	}
}

// HasTMDbCredentials reports whether either TMDb credential form is set.
func (c Config) HasTMDbCredentials() bool {
	return c.Providers.TMDb.BearerToken != "" || c.Providers.TMDb.APIKey != ""
}

// OMDbEnabled reports whether OMDb may be queried. Without a key it is never called.
func (c Config) OMDbEnabled() bool {
	return c.Providers.OMDb.APIKey != ""
}

// Validate fails fast on configuration that would lead to unauthenticated
// provider calls silently returning empty data.
func (c Config) Validate() error {
	if !c.HasTMDbCredentials() {
		return verrors.New(verrors.EConfig, "TMDb credentials missing: set TMDB_BEARER_TOKEN or TMDB_API_KEY")
	}
	if c.Providers.TMDb.BaseURL == "" {
		return verrors.New(verrors.EConfig, "providers.tmdb.base_url is empty")
	}
	if c.Providers.Wikidata.Enabled && c.HTTP.UserAgent == "" {
		return verrors.New(verrors.EConfig, "http.user_agent is required by the Wikidata query service")
	}
	if c.HTTP.Timeout <= 0 {
		return verrors.Newf(verrors.EConfig, "http.timeout must be positive, got %v", c.HTTP.Timeout)
	}
	if c.Retry.Attempts < 1 {
		return verrors.Newf(verrors.EConfig, "retry.attempts must be at least 1, got %d", c.Retry.Attempts)
	}
	t := c.Thresholds
	for name, v := range map[string]float64{
		"person_resolution": t.PersonResolution,
		"movie_resolution":  t.MovieResolution,
		"cast_membership":   t.CastMembership,
		"director_identity": t.DirectorIdentity,
		"value_containment": t.ValueContainment,
	} {
		if v < 0 || v > 100 {
			return verrors.Newf(verrors.EConfig, "thresholds.%s must be within 0..100, got %v", name, v)
		}
	}
	if t.MoneyTolerance < 0 {
		return verrors.Newf(verrors.EConfig, "thresholds.money_tolerance must not be negative, got %v", t.MoneyTolerance)
	}
	return nil
}

// Redacted returns a copy with secrets masked, for display.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		if len(s) <= 4 {
			return "****"
		}
		return s[:2] + "****" + s[len(s)-2:]
	}
	c.Providers.TMDb.BearerToken = mask(c.Providers.TMDb.BearerToken)
	c.Providers.TMDb.APIKey = mask(c.Providers.TMDb.APIKey)
	c.Providers.OMDb.APIKey = mask(c.Providers.OMDb.APIKey)
	c.LLM.APIKey = mask(c.LLM.APIKey)
	return c
}
