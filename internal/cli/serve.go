package cli

import (
	"wazivo/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the CV analysis HTTP server",
	Long: `Start an HTTP server that analyzes CVs on request.

Available endpoints:
- POST /api/analyze: Analyze a CV (multipart file upload or JSON {"type":"url","url":"..."})
- POST /analyze: Alias of /api/analyze
- GET /health: Health check including the AI model state
- GET /stats: Server statistics and rate limiting info`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Flags override the loaded configuration
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetString("port")
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}

	srv, err := server.NewServer(cfg, server.ServerConfigFrom(cfg, Version), logger)
	if err != nil {
		return err
	}
	return srv.Start()
}
