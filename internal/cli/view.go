package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/avwizard/internal/wizard"
)

// NewRouteCommand creates the route command.
func NewRouteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "route [fragment]",
		Short: "Render a wizard page by its location fragment",
		Long: `Render the page for a location fragment such as "#/agents" or
"optimization". An empty or unknown fragment renders Welcome.

A page that fails to render prints a diagnostic and exits 1. A page whose
storage reads failed still prints, with an error banner, and exits 2.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) == 1 {
				raw = args[0]
			}
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				v := a.pages.Router().Route(ctx, raw)
				if err := a.out.View(v); err != nil {
					return err
				}
				switch {
				case wizard.IsRenderError(v.Err):
					return WrapExitError(ExitFailure, "render "+string(v.Fragment), v.Err)
				case v.Failed():
					return WrapExitError(ExitCommandError, "render "+string(v.Fragment), v.Err)
				}
				return nil
			})
		},
	}
}

// NewReviewCommand creates the review command.
func NewReviewCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Print the saved configuration as JSON",
		Long: `Print global, integrations, agents and optimization settings plus the
stored recipes as one JSON document. Missing settings print as null.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				if a.out.Format == "json" {
					data, err := a.pages.ReviewData(ctx)
					if err != nil {
						return fail(a.out, "read configuration", err)
					}
					return a.out.Success(data)
				}
				data, err := a.pages.ReviewJSON(ctx)
				if err != nil {
					return fail(a.out, "read configuration", err)
				}
				_, err = a.out.Writer.Write(data)
				return err
			})
		},
	}
}

// NewDashboardCommand creates the dashboard command.
func NewDashboardCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show demo KPIs, agent health and worker logs",
		Long: `Show the Dashboard page. The first visit seeds twelve weeks of demo
telemetry and the agent health table; later visits read what is stored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				data, err := a.pages.DashboardData(ctx)
				if err != nil {
					a.logger.Warn("dashboard partially read", zap.Error(err))
					if data.Telemetry == nil && data.Health == nil {
						return fail(a.out, "read dashboard", err)
					}
				}
				if data.Seeded {
					a.out.VerboseLog("Seeded demo data")
				}
				if a.out.Format == "json" {
					return a.out.Success(data)
				}
				v := wizard.View{Fragment: wizard.Dashboard, Title: wizard.Dashboard.Title(), Body: wizard.RenderDashboard(data)}
				if err != nil {
					v.Banner = fmt.Sprintf("Storage error: %v", err)
				}
				return a.out.View(v)
			})
		},
	}
}
