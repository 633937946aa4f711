package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/artpar/modhost/adapters/environment"
	"github.com/artpar/modhost/adapters/sqlite"
	"github.com/artpar/modhost/config"
	"github.com/artpar/modhost/domain/dependency"
	"github.com/artpar/modhost/domain/schema"
	"github.com/artpar/modhost/modules"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration before deployment",
	Long: `Validate the modhost configuration file.

Checks:
  - YAML syntax is valid
  - Values are in range
  - Database is writable (optional)
  - Module fields whose version constraints the environment does not meet

Examples:
  modhost validate
  modhost validate --config /etc/modhost/modhost.yaml --check-database`,
	RunE: runValidate,
}

var validateCheckDatabase bool

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCheckDatabase, "check-database", false, "check if database is writable")
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n\n", cfgFile)

	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Fprintf(out, "  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", cfgFile)
	}
	fmt.Fprintf(out, "  %s Config file exists\n", checkMark)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(out, "  %s Config syntax valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Fprintf(out, "  %s Config syntax valid\n", checkMark)

	fmt.Fprintf(out, "  %s Listen: %s\n", checkMark, cfg.Server.Addr())
	fmt.Fprintf(out, "  %s Database: %s (%s)\n", checkMark, cfg.Database.DSN, cfg.Database.Driver)
	fmt.Fprintf(out, "  %s Environment: %s, host %s\n", checkMark, cfg.Environment.Mode, cfg.Environment.HostVersion)
	if cfg.Auth.AdminTokenHash == "" && cfg.Auth.JWTSecret == "" {
		fmt.Fprintf(out, "  %s No admin credentials configured\n", crossMark)
	} else {
		fmt.Fprintf(out, "  %s Admin credentials configured\n", checkMark)
	}

	if validateCheckDatabase && cfg.Database.Driver == "sqlite" {
		if err := checkDatabaseWritable(cfg.Database.DSN); err != nil {
			fmt.Fprintf(out, "  %s Database writable\n", crossMark)
			fmt.Fprintf(out, "      Error: %v\n", err)
		} else {
			fmt.Fprintf(out, "  %s Database writable\n", checkMark)
		}
	}

	unsupported := unsupportedFields(cfg.Environment)
	if len(unsupported) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Fields unsupported in this environment:")
		for _, line := range unsupported {
			fmt.Fprintf(out, "  %s %s\n", crossMark, line)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration is valid.")
	return nil
}

func checkDatabaseWritable(dsn string) error {
	db, err := sqlite.Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Migrate(context.Background())
}

// unsupportedFields lists module fields whose constraints env does not
// meet, as "slug.field (subjects)".
func unsupportedFields(env config.EnvironmentConfig) []string {
	checker := dependency.NewChecker(environment.New(factsFrom(env)))

	var out []string
	for _, def := range modules.All() {
		annotated := schema.Annotate(def.Schema, checker, def.DefaultOptions())
		for _, f := range annotated.Flatten() {
			if f.DependencyStatus != nil && !f.DependencyStatus.Supported {
				out = append(out, fmt.Sprintf("%s.%s (%v)", def.Slug, f.Key, f.DependencyStatus.Unmet))
			}
		}
	}
	sort.Strings(out)
	return out
}

func factsFrom(env config.EnvironmentConfig) environment.Facts {
	return environment.Facts{
		Mode:     env.Mode,
		Host:     env.HostVersion,
		BuilderA: env.BuilderAVersion,
		BuilderB: env.BuilderBVersion,
		Plugins:  env.Plugins,
	}
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)
