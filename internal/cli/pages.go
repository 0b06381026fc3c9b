package cli

import (
	"context"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/avwizard/internal/record"
	"github.com/roach88/avwizard/internal/wizard"
)

// NewWelcomeCommand creates the welcome command.
func NewWelcomeCommand(rootOpts *RootOptions) *cobra.Command {
	var form wizard.WelcomeForm

	cmd := &cobra.Command{
		Use:   "welcome",
		Short: "Save the pilot mode and project name",
		Long: `Save the Welcome page.

--mode is mock (default) or real. A blank --project saves
"Executive Briefing Pilot".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				res, err := a.pages.SaveWelcome(ctx, form)
				if err != nil {
					return fail(a.out, "save welcome", err)
				}
				return a.out.Saved(res)
			})
		},
	}

	cmd.Flags().StringVar(&form.Mode, "mode", string(record.ModeMock), "mock or real")
	cmd.Flags().StringVar(&form.Project, "project", record.DefaultProject, "project name")
	return cmd
}

// NewIntegrationsCommand creates the integrations command.
func NewIntegrationsCommand(rootOpts *RootOptions) *cobra.Command {
	var form record.IntegrationsConfig

	cmd := &cobra.Command{
		Use:   "integrations",
		Short: "Save the MCP tool server URLs",
		Long: `Save the Integrations page. Any URL left unset keeps its local default
(http://localhost:8401 through 8406).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				res, err := a.pages.SaveIntegrations(ctx, form)
				if err != nil {
					return fail(a.out, "save integrations", err)
				}
				return a.out.Saved(res)
			})
		},
	}

	cmd.Flags().StringVar(&form.Slack, "slack", "", "Slack MCP URL")
	cmd.Flags().StringVar(&form.Zoom, "zoom", "", "Zoom MCP URL")
	cmd.Flags().StringVar(&form.GitHub, "github", "", "GitHub MCP URL")
	cmd.Flags().StringVar(&form.GDrive, "gdrive", "", "Google Drive MCP URL")
	cmd.Flags().StringVar(&form.Snow, "snow", "", "ServiceNow MCP URL")
	cmd.Flags().StringVar(&form.Search, "search", "", "Search MCP URL")
	return cmd
}

// NewAgentsCommand creates the agents command.
func NewAgentsCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		enable  []string
		disable []string
		only    []string
	)

	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Enable or disable agents for the pilot",
		Long: `Save the Agents page.

Starts from the saved selection (every agent, if never saved), then
applies --enable and --disable. --only replaces the selection outright.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				selected := only
				if !cmd.Flags().Changed("only") {
					current, err := a.pages.EnabledAgents(ctx)
					if err != nil {
						return fail(a.out, "read agents", err)
					}
					selected = append(current, enable...)
					selected = slices.DeleteFunc(selected, func(name string) bool {
						return slices.Contains(disable, name)
					})
				}
				res, err := a.pages.SaveAgents(ctx, selected)
				if err != nil {
					return fail(a.out, "save agents", err)
				}
				return a.out.Saved(res)
			})
		},
	}

	cmd.Flags().StringSliceVar(&enable, "enable", nil, "agent to enable (repeatable)")
	cmd.Flags().StringSliceVar(&disable, "disable", nil, "agent to disable (repeatable)")
	cmd.Flags().StringSliceVar(&only, "only", nil, "exact set of agents to enable")
	return cmd
}

// NewOptimizationCommand creates the optimization command.
func NewOptimizationCommand(rootOpts *RootOptions) *cobra.Command {
	var form wizard.OptimizationForm

	cmd := &cobra.Command{
		Use:   "optimization",
		Short: "Choose KPIs and the comparison strategy",
		Long: `Save the Optimization page.

KPIs: decision_reached, followup_booked, csat, engagement_proxy,
issue_rate_per_100, join_latency_s. Strategy: epsilon_greedy (default)
or uniform_ab.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				if !cmd.Flags().Changed("kpi") {
					kpis, err := a.pages.SelectedKPIs(ctx)
					if err != nil {
						return fail(a.out, "read optimization", err)
					}
					form.KPIs = kpis
				}
				res, err := a.pages.SaveOptimization(ctx, form)
				if err != nil {
					return fail(a.out, "save optimization", err)
				}
				return a.out.Saved(res)
			})
		},
	}

	cmd.Flags().StringSliceVar(&form.KPIs, "kpi", nil, "KPI to track (repeatable; default keeps the saved selection, or all)")
	cmd.Flags().StringVar(&form.Strategy, "strategy", string(record.StrategyEpsilonGreedy), "epsilon_greedy or uniform_ab")
	cmd.Flags().StringVar(&form.Notes, "notes", "", "free-form notes")
	return cmd
}
