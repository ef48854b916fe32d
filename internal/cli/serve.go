package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the numgen HTTP API server",
	Long: `Start the HTTP API at localhost:8790 (see [api] in config.toml).

Endpoints: /health, /api/resolve, /api/regions/{code}, /api/lengths/{country},
/api/generate and /metrics.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	d, err := newDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	// Override config from flags
	if serveHost != "" {
		d.Config.API.Host = serveHost
	}
	if servePort > 0 {
		d.Config.API.Port = servePort
	}

	d.Server.SetVersion(cmd.Root().Version)
	return d.Serve(cmd.Context())
}
