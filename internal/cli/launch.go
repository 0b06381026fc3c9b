package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/avwizard/internal/agents"
)

// NewLaunchCommand creates the launch command.
func NewLaunchCommand(rootOpts *RootOptions) *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Start one worker per enabled agent",
		Long: `Start a worker for each enabled agent and stream what they post.
Every message is also written to the dashboard logs.

Workers run for --duration (launch.duration, 10s by default); a duration
of 0 runs them until interrupted. With launch.persist_logs off, worker
output is printed but not stored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				if !cmd.Flags().Changed("duration") {
					duration = a.cfg.Launch.Duration
				}
				if duration > 0 {
					var cancel context.CancelFunc
					ctx, cancel = context.WithTimeout(ctx, duration)
					defer cancel()
				}

				res, err := a.pages.Launch(ctx)
				if err != nil {
					return fail(a.out, "launch", err)
				}
				a.out.VerboseLog("Starting %d workers", len(res.Agents))
				if err := a.out.Saved(res.Result); err != nil {
					return err
				}

				show := func(m agents.Message) {
					if a.out.Format == "json" {
						_ = a.out.encode(m)
						return
					}
					fmt.Fprintln(a.out.Writer, m.String())
				}
				// Records are written after ctx ends, so persist under a
				// context that outlives the workers.
				n := a.pages.Drain(context.WithoutCancel(ctx), res.Messages, show)
				a.out.VerboseLog("Persisted %d worker messages", n)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 0, "stop workers after this long; 0 runs until interrupted (default launch.duration)")
	return cmd
}
