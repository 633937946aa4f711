package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/artpar/modhost/domain/options"
	"github.com/artpar/modhost/domain/schema"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "Manage modules and their settings",
	Long: `Inspect and change module options in the configured store.

Changes take effect on the next start of a running server. Values passed
to "set" and "import" go through the same sanitizer as the settings API.

Examples:
  modhost modules list
  modhost modules show privacy
  modhost modules enable login
  modhost modules set login login_site_identity=true login_logo_width=240
  modhost modules export > modules.yaml
  modhost modules import modules.yaml`,
}

var modulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List modules",
	Args:  cobra.NoArgs,
	RunE:  runModulesList,
}

var modulesShowCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Show a module and its options",
	Args:  cobra.ExactArgs(1),
	RunE:  runModulesShow,
}

var modulesEnableCmd = &cobra.Command{
	Use:   "enable <slug>",
	Short: "Enable a module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runModulesToggle(cmd, args[0], true)
	},
}

var modulesDisableCmd = &cobra.Command{
	Use:   "disable <slug>",
	Short: "Disable a module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runModulesToggle(cmd, args[0], false)
	},
}

var modulesResetCmd = &cobra.Command{
	Use:   "reset <slug>",
	Short: "Delete the stored options of a module",
	Args:  cobra.ExactArgs(1),
	RunE:  runModulesReset,
}

var modulesSetCmd = &cobra.Command{
	Use:   "set <slug> <key=value>...",
	Short: "Save module settings",
	Long: `Save one or more settings of a module.

Values are parsed as YAML scalars or flow collections, so numbers,
booleans and lists keep their type:

  modhost modules set localfonts selected_fonts='[Lato, Roboto]'
  modhost modules set login login_logo_width=240`,
	Args: cobra.MinimumNArgs(2),
	RunE: runModulesSet,
}

var modulesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the options of every module as YAML",
	Args:  cobra.NoArgs,
	RunE:  runModulesExport,
}

var exportStored bool

var modulesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Apply options from a YAML export",
	Args:  cobra.ExactArgs(1),
	RunE:  runModulesImport,
}

func init() {
	rootCmd.AddCommand(modulesCmd)

	modulesCmd.AddCommand(modulesListCmd)
	modulesCmd.AddCommand(modulesShowCmd)
	modulesCmd.AddCommand(modulesEnableCmd)
	modulesCmd.AddCommand(modulesDisableCmd)
	modulesCmd.AddCommand(modulesResetCmd)
	modulesCmd.AddCommand(modulesSetCmd)
	modulesCmd.AddCommand(modulesExportCmd)
	modulesCmd.AddCommand(modulesImportCmd)

	modulesExportCmd.Flags().BoolVar(&exportStored, "stored", false, "export only persisted options, without defaults")
}

func runModulesList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	summaries, err := a.Settings.ListModules(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list modules: %w", err)
	}

	slugs := make([]string, 0, len(summaries))
	for slug := range summaries {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tSTATE\tENABLED\tVERSION\tNAME")
	fmt.Fprintln(w, "----\t-----\t-------\t-------\t----")
	for _, slug := range slugs {
		s := summaries[slug]
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\n", s.Slug, s.State, s.Enabled, s.Version, s.Name)
	}
	return w.Flush()
}

func runModulesShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.Settings.GetModule(context.Background(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s) %s\n", s.Name, s.Slug, s.Version)
	fmt.Fprintf(out, "  %s\n", s.Description)
	fmt.Fprintf(out, "  state:   %s\n", s.State)
	fmt.Fprintf(out, "  enabled: %t\n", s.Enabled)

	for _, f := range s.Settings.Flatten() {
		if f.DependencyStatus != nil && !f.DependencyStatus.Supported {
			fmt.Fprintf(out, "  %s %s unsupported: requires %s\n", crossMark, f.Key, strings.Join(f.DependencyStatus.Unmet, ", "))
		}
	}

	fmt.Fprintln(out)
	return writeYAML(cmd, s.Options)
}

func runModulesToggle(cmd *cobra.Command, slug string, enabled bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Settings.ToggleModule(context.Background(), slug, enabled); err != nil {
		return fmt.Errorf("failed to toggle %s: %w", slug, err)
	}

	verb := "Disabled"
	if enabled {
		verb = "Enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", checkMark, verb, slug)
	return nil
}

func runModulesReset(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Registry.Uninstall(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to reset %s: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Reset %s to defaults\n", checkMark, args[0])
	return nil
}

func runModulesSet(cmd *cobra.Command, args []string) error {
	slug := args[0]
	raw, err := parseAssignments(args[1:])
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Settings.UpdateModuleSettings(context.Background(), slug, raw)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", slug, err)
	}
	printUpdate(cmd, slug, res.Changed, res.Dropped)
	return nil
}

func runModulesExport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	if exportStored {
		stored, err := a.Options.Stored(ctx)
		if err != nil {
			return fmt.Errorf("failed to read stored options: %w", err)
		}
		export := make(map[string]options.Value, len(stored))
		for slug, v := range stored {
			if _, err := a.Registry.Exposed(slug); err == nil {
				export[slug] = v
			}
		}
		return writeYAML(cmd, export)
	}

	summaries, err := a.Settings.ListModules(ctx)
	if err != nil {
		return fmt.Errorf("failed to list modules: %w", err)
	}

	export := make(map[string]options.Value, len(summaries))
	for slug, s := range summaries {
		export[slug] = s.Options
	}
	return writeYAML(cmd, export)
}

func runModulesImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	var doc map[string]map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	slugs := make([]string, 0, len(doc))
	for slug := range doc {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	for _, slug := range slugs {
		raw := doc[slug]
		if v, ok := raw[schema.EnabledKey]; ok {
			enabled, err := cast.ToBoolE(v)
			if err != nil {
				return fmt.Errorf("%s: invalid %s value %v", slug, schema.EnabledKey, v)
			}
			if err := a.Settings.ToggleModule(ctx, slug, enabled); err != nil {
				return fmt.Errorf("failed to toggle %s: %w", slug, err)
			}
		}
		res, err := a.Settings.UpdateModuleSettings(ctx, slug, raw)
		if err != nil {
			return fmt.Errorf("failed to save %s: %w", slug, err)
		}
		printUpdate(cmd, slug, res.Changed, res.Dropped)
	}
	return nil
}

// parseAssignments turns key=value arguments into a settings payload.
func parseAssignments(args []string) (map[string]any, error) {
	raw := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q, want key=value", arg)
		}
		var v any
		if err := yaml.Unmarshal([]byte(value), &v); err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		if v == nil {
			v = ""
		}
		raw[key] = v
	}
	return raw, nil
}

func printUpdate(cmd *cobra.Command, slug string, changed []string, dropped []schema.Drop) {
	out := cmd.OutOrStdout()
	if len(changed) == 0 {
		fmt.Fprintf(out, "%s %s: no changes\n", checkMark, slug)
	} else {
		fmt.Fprintf(out, "%s %s: changed %s\n", checkMark, slug, strings.Join(changed, ", "))
	}
	for _, d := range dropped {
		fmt.Fprintf(out, "  %s dropped %s (%s)\n", crossMark, d.Field, d.Reason)
	}
}

func writeYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
