package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	DBPath     string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the avwizard CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "avwizard",
		Short: "AV AI Ops pilot setup wizard",
		Long: `Configure an AV AI Ops pilot one wizard page at a time.

Pages: welcome, integrations, agents, optimization, recipes, review,
launch, dashboard. Each page can be saved from its own command, visited
with "route", or walked interactively with "tui". Settings are kept in a
local SQLite database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default: <user config dir>/avwizard/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database path (overrides store.path)")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewRouteCommand(opts))
	cmd.AddCommand(NewWelcomeCommand(opts))
	cmd.AddCommand(NewIntegrationsCommand(opts))
	cmd.AddCommand(NewAgentsCommand(opts))
	cmd.AddCommand(NewOptimizationCommand(opts))
	cmd.AddCommand(NewRecipesCommand(opts))
	cmd.AddCommand(NewReviewCommand(opts))
	cmd.AddCommand(NewLaunchCommand(opts))
	cmd.AddCommand(NewDashboardCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewTUICommand(opts))

	return cmd
}
