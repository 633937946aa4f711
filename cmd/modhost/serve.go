package main

import (
	"fmt"
	"os"

	"github.com/artpar/modhost/bootstrap"
	"github.com/spf13/cobra"
)

var hotReload bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the settings API server",
	Long: `Start the modhost settings API.

The server will:
  - Load configuration from modhost.yaml (or --config)
  - Or load configuration from MODHOST_* environment variables
  - Open the option store and initialize every module
  - Serve /api/v1/modules and the routes of active companion services

Environment variables (for Docker deployments):
  MODHOST_DATABASE_DSN      - Database path (default: modhost.db)
  MODHOST_SERVER_PORT       - Server port (default: 8080)
  MODHOST_ENVIRONMENT_MODE  - production, staging, development or local
  MODHOST_ADMIN_TOKEN_HASH  - bcrypt hash of the admin token
  MODHOST_LOG_LEVEL         - Log level: debug, info, warn, error

Examples:
  modhost serve
  modhost serve --config /etc/modhost/modhost.yaml
  modhost serve --hot-reload=false`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "reload configuration on file change or SIGHUP")
}

func runServe(cmd *cobra.Command, args []string) error {
	hasConfigFile := false
	if _, err := os.Stat(cfgFile); err == nil {
		hasConfigFile = true
	}
	if !hasConfigFile {
		fmt.Fprintln(cmd.ErrOrStderr(), "Running with environment variables (no config file)")
	}

	app, err := bootstrap.New(bootstrap.Options{
		ConfigPath: cfgFile,
		HotReload:  hasConfigFile && hotReload,
		Version:    version,
		LogOutput:  os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}
