package cli

import (
	"resumescan/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the resume analysis HTTP server",
	Long: `Start an HTTP server that exposes the analysis engine as a REST API.

Available endpoints:
- POST /analyze: Score a resume, optionally against a job description
- POST /grammar: Check a resume for grammar and spelling issues
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info
- GET /metrics: Prometheus metrics, when enabled

Reports are JSON by default; add ?format=text or ?format=markdown for
rendered output. The server shuts down gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveHost string
	servePort string
)

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Flags override the loaded config
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}

	rt, err := buildRuntime(cfg, logger, true)
	if err != nil {
		return err
	}

	// The server owns the runtime's resources from here and releases them
	// on shutdown.
	srv := server.NewServer(cfg, server.Dependencies{
		Engine:        rt.engine,
		Enricher:      rt.enricher,
		Cache:         rt.cache,
		Observability: rt.obs,
		Prompts:       rt.prompts,
	}, Version, logger)

	return srv.Run(cmd.Context())
}
