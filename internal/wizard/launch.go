package wizard

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/roach88/avwizard/internal/agents"
	"github.com/roach88/avwizard/internal/record"
	"github.com/roach88/avwizard/internal/store"
)

// LaunchedMessage is posted once every worker has been asked to start.
const LaunchedMessage = "Workers started. Switch to Dashboard."

// LaunchResult is a running launch.
type LaunchResult struct {
	Result
	Agents   []string
	Messages <-chan agents.Message
}

// Launch starts one worker per enabled agent. Before the Agents page has
// been saved no worker starts. Workers run until ctx ends or StopWorkers is
// called; pass Messages to Drain to persist what they post.
func (p *Pages) Launch(ctx context.Context) (*LaunchResult, error) {
	cfg, _, err := store.GetAs[record.AgentsConfig](ctx, p.store, record.CollectionConfig, record.ConfigAgents)
	if err != nil {
		return nil, err
	}
	names := cfg.Enabled
	if names == nil {
		names = []string{}
	}

	msgs := p.supervisor.Start(ctx, names)
	if p.persist {
		if err := p.sink.Write(ctx, agents.Message{Text: LaunchedMessage, At: p.now()}); err != nil {
			p.logger.Warn("launch message not persisted", zap.Error(err))
		}
	}
	return &LaunchResult{
		Result:   Result{Message: LaunchedMessage, Next: Dashboard},
		Agents:   names,
		Messages: msgs,
	}, nil
}

// Drain persists worker messages to the logs collection until the channel
// closes, calling fn for each. It returns the number persisted, which is
// zero when log persistence is off.
func (p *Pages) Drain(ctx context.Context, msgs <-chan agents.Message, fn func(agents.Message)) int {
	if !p.persist {
		for m := range msgs {
			if fn != nil {
				fn(m)
			}
		}
		return 0
	}
	return p.sink.Drain(ctx, msgs, fn)
}

// StopWorkers stops the running launch, if any.
func (p *Pages) StopWorkers() {
	p.supervisor.Stop()
}

func (p *Pages) renderLaunch(ctx context.Context) (View, error) {
	cfg, ok, err := store.GetAs[record.AgentsConfig](ctx, p.store, record.CollectionConfig, record.ConfigAgents)

	var b strings.Builder
	switch {
	case err != nil:
	case !ok || len(cfg.Enabled) == 0:
		b.WriteString("No agents are enabled. Save the Agents page first.\n")
	default:
		fmt.Fprintf(&b, "Launching starts %d workers:\n", len(cfg.Enabled))
		for _, name := range cfg.Enabled {
			fmt.Fprintf(&b, "  - %s\n", name)
		}
	}
	b.WriteString("\nWorker output is written to the dashboard logs.\n")
	return View{Body: b.String()}, err
}
