package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/manya9155/Hallucination-Detector/internal/model"
)

// credentialEnv maps secret config keys to the conventional variables they
// are read from, in addition to the VERDICT_ form.
var credentialEnv = map[string][]string{
	"providers.tmdb.bearer_token": {"TMDB_BEARER_TOKEN", "TMDB_READ_TOKEN"},
	"providers.tmdb.api_key":      {"TMDB_API_KEY"},
	"providers.omdb.api_key":      {"OMDB_API_KEY"},
	"http.http_proxy":             {"HTTP_PROXY"},
	"http.https_proxy":            {"HTTPS_PROXY"},
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage verdict configuration",
	Long: `Manage verdict configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (VERDICT_*, TMDB_BEARER_TOKEN, TMDB_API_KEY, OMDB_API_KEY)
3. .env file in the working directory
4. Config file (~/.verdict/config.yaml)
5. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(cfg.Redacted())
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(yamlData))

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "\nWarning: %v\n", err)
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Long:  `Create a default configuration file at ~/.verdict/config.yaml (or --config) with every option.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := cfgFile
		if configPath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("error finding home directory: %w", err)
			}
			configPath = filepath.Join(home, ".verdict", "config.yaml")
		}

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'verdict config show' to view it, or delete it first to recreate", configPath)
		}
		if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}

		yamlData, err := yaml.Marshal(model.DefaultConfig())
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		var b strings.Builder
		b.WriteString("# verdict configuration\n")
		b.WriteString("#\n")
		b.WriteString("# Configuration hierarchy (highest to lowest priority):\n")
		b.WriteString("#   1. CLI flags\n")
		b.WriteString("#   2. Environment variables (VERDICT_*, e.g. VERDICT_HTTP_TIMEOUT=20s)\n")
		b.WriteString("#   3. .env file in the working directory\n")
		b.WriteString("#   4. This config file\n")
		b.WriteString("#   5. Built-in defaults\n\n")
		b.Write(yamlData)
		b.WriteString("\n# Credentials (recommended to use environment variables instead):\n")
		b.WriteString("#   export TMDB_BEARER_TOKEN=...   # or TMDB_API_KEY\n")
		b.WriteString("#   export OMDB_API_KEY=...        # OMDb is skipped without it\n")
		b.WriteString("#   export OPENAI_API_KEY=sk-...   # only with llm.provider: openai\n")
		b.WriteString("#   export ANTHROPIC_API_KEY=...\n")
		b.WriteString("#   export OLLAMA_BASE_URL=http://localhost:11434\n")

		// Secrets may be added to this file later
		if err := os.WriteFile(configPath, []byte(b.String()), 0o600); err != nil {
			return fmt.Errorf("error writing config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Created default configuration: %s\n", configPath)
		fmt.Fprintf(out, "\nTo view the configuration:\n")
		fmt.Fprintf(out, "  verdict config show\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

// registerDefaults teaches viper every config key, so VERDICT_* variables
// for any of them are picked up.
func registerDefaults() {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return
	}
	for key, value := range flatten("", tree) {
		viper.SetDefault(key, value)
	}
}

func bindCredentials() {
	for key, envs := range credentialEnv {
		names := append([]string{"VERDICT_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, envs...)
		_ = viper.BindEnv(append([]string{key}, names...)...)
	}
}

func flatten(prefix string, tree map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]interface{}); ok {
			for sk, sv := range flatten(key, sub) {
				out[sk] = sv
			}
			continue
		}
		out[key] = v
	}
	return out
}

// loadConfig merges defaults, config file, .env and environment into a Config
func loadConfig() (model.Config, error) {
	cfg := model.DefaultConfig()
	err := viper.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	})
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose
	return cfg, nil
}
