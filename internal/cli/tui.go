package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/avwizard/internal/tui"
)

// NewTUICommand creates the tui command.
func NewTUICommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui [fragment]",
		Short: "Walk the wizard interactively",
		Long: `Open the interactive wizard, starting at the given page (default
Welcome). tab and shift+tab move between pages, 1-8 jump, space toggles,
enter saves, q quits.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := ""
			if len(args) == 1 {
				start = args[0]
			}
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				if err := tui.Run(ctx, a.pages, start); err != nil {
					return fail(a.out, "tui", err)
				}
				return nil
			})
		},
	}
}
