package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/avwizard/internal/presets"
	"github.com/roach88/avwizard/internal/record"
	"github.com/roach88/avwizard/internal/store"
)

// NewRecipesCommand creates the recipes command group.
func NewRecipesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "List, add and import experiment recipes",
	}
	cmd.AddCommand(newRecipesListCommand(rootOpts))
	cmd.AddCommand(newRecipesAddCommand(rootOpts))
	cmd.AddCommand(newRecipesImportCommand(rootOpts))
	return cmd
}

// RecipeSummary is one row of `recipes list`.
type RecipeSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Risk   string `json:"risk"`
	Preset bool   `json:"preset"`
	Added  bool   `json:"added"`
}

func newRecipesListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in presets and stored recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				library, err := presets.Load()
				if err != nil {
					return fail(a.out, "load presets", err)
				}
				stored, err := store.AllAs[record.Recipe](ctx, a.store, record.CollectionRecipes)
				if err != nil {
					return fail(a.out, "read recipes", err)
				}
				rows := summarize(library, stored)

				if a.out.Format == "json" {
					return a.out.Success(rows)
				}
				var b strings.Builder
				for _, r := range rows {
					mark := " "
					if r.Added {
						mark = "*"
					}
					fmt.Fprintf(&b, "%s %-34s %-6s %s\n", mark, r.ID, r.Risk, r.Name)
				}
				fmt.Fprint(a.out.Writer, b.String())
				return nil
			})
		},
	}
}

// summarize lists presets in library order, then stored non-preset recipes
// in the order the store returned them.
func summarize(library, stored []record.Recipe) []RecipeSummary {
	added := make(map[string]bool, len(stored))
	for _, r := range stored {
		added[r.ID] = true
	}
	builtin := make(map[string]bool, len(library))
	rows := make([]RecipeSummary, 0, len(library)+len(stored))
	for _, r := range library {
		builtin[r.ID] = true
		rows = append(rows, RecipeSummary{ID: r.ID, Name: r.Name, Risk: r.Risk, Preset: true, Added: added[r.ID]})
	}
	for _, r := range stored {
		if !builtin[r.ID] {
			rows = append(rows, RecipeSummary{ID: r.ID, Name: r.Name, Risk: r.Risk, Added: true})
		}
	}
	return rows
}

func newRecipesAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <preset-id>...",
		Short: "Add built-in presets to the pilot",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				for _, id := range args {
					res, err := a.pages.AddRecipe(ctx, id)
					if err != nil {
						return fail(a.out, "add recipe", err)
					}
					if err := a.out.Saved(res); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newRecipesImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Validate and store recipes from a YAML file",
		Long: `Import recipes from YAML. The file may hold one recipe, a list of
recipes, or several documents. Every recipe is validated before any is
stored; recipes without an id get a generated one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fail(a.out, "read recipe file", err)
				}
				recipes, err := presets.DecodeYAML(data, nil)
				if err != nil {
					return fail(a.out, "invalid recipe file", err)
				}
				res, err := a.pages.ImportRecipes(ctx, recipes)
				if err != nil {
					return fail(a.out, "import recipes", err)
				}
				return a.out.Saved(res)
			})
		},
	}
}
