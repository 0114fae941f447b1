package cli

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/manya9155/Hallucination-Detector/internal/pipeline"
	"github.com/manya9155/Hallucination-Detector/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the verification JSON API",
	Long: `Serve exposes verification over HTTP:

  GET  /health
  POST /api/v1/check        {"text": "..."} or {"claims": ["...", "..."]}
  POST /api/v1/attributes   {"title": "...", "text": "..."} or {"title": "...", "claims": [{"attribute": "...", "value": ...}]}

Responses are the JSON report. CORS origins come from server.allowed_origins.

Example:
  verdict serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
	addProviderFlags(serveCmd)
	addLLMFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg)
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	// Requests are always logged; pipeline details only with --verbose
	logger := log.New(os.Stderr, "verdict: ", log.LstdFlags)

	p, err := pipeline.NewPipeline(cfg, pipeline.WithLogger(newLogger()))
	if err != nil {
		return err
	}

	return server.NewServer(p, cfg.Server, logger).Run(cmd.Context(), cfg.Server.Addr)
}
