package main

import (
	"fmt"
	"io"
	"os"

	"github.com/artpar/modhost/bootstrap"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "modhost",
	Short: "Configuration and dependency resolution for feature modules",
	Long: `modhost hosts a fixed catalogue of feature modules.

Each module declares a settings schema with defaults. modhost persists
sanitized options per module, checks version constraints against the host
environment and serves a settings API for administrators.

Quick start:
  modhost serve             # Start the settings API
  modhost modules list      # Show modules and their state

Administration:
  modhost modules set privacy comments_ip=false
  modhost hash-token        # Create an admin token
  modhost validate          # Validate configuration`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "modhost.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
}

// openApp builds the application for one-shot commands. Logs are discarded
// unless --verbose is set.
func openApp() (*bootstrap.App, error) {
	var out io.Writer = io.Discard
	if verbose {
		out = os.Stderr
	}
	a, err := bootstrap.New(bootstrap.Options{
		ConfigPath: cfgFile,
		Version:    version,
		LogOutput:  out,
	})
	if err != nil {
		return nil, fmt.Errorf("error initializing: %w", err)
	}
	return a, nil
}
