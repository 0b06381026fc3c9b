package wizard

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/avwizard/internal/presets"
	"github.com/roach88/avwizard/internal/record"
	"github.com/roach88/avwizard/internal/store"
)

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (p *Pages) renderWelcome(ctx context.Context) (View, error) {
	cfg, ok, err := store.GetAs[record.GlobalConfig](ctx, p.store, record.CollectionConfig, record.ConfigGlobal)
	if !ok {
		cfg = record.GlobalConfig{Mode: record.ModeMock, Project: record.DefaultProject}
	}

	var b strings.Builder
	b.WriteString("Configure the pilot.\n\n")
	fmt.Fprintf(&b, "Mode:          %s\n", cfg.Mode)
	fmt.Fprintf(&b, "Project Name:  %s\n", cfg.Project)
	if ok && cfg.UpdatedAt > 0 {
		fmt.Fprintf(&b, "\nLast saved %s\n", formatMillis(cfg.UpdatedAt))
	}
	return View{Body: b.String()}, err
}

func (p *Pages) renderIntegrations(ctx context.Context) (View, error) {
	cfg, ok, err := store.GetAs[record.IntegrationsConfig](ctx, p.store, record.CollectionConfig, record.ConfigIntegrations)
	if !ok {
		cfg = record.DefaultIntegrations()
	}

	var b strings.Builder
	b.WriteString("MCP tool servers. URLs are stored only; nothing is contacted.\n\n")
	for _, row := range [][2]string{
		{"Slack", cfg.Slack},
		{"Zoom", cfg.Zoom},
		{"GitHub", cfg.GitHub},
		{"Google Drive", cfg.GDrive},
		{"ServiceNow", cfg.Snow},
		{"Search", cfg.Search},
	} {
		fmt.Fprintf(&b, "%-13s %s\n", row[0]+":", row[1])
	}
	return View{Body: b.String()}, err
}

func (p *Pages) renderAgents(ctx context.Context) (View, error) {
	enabled, err := p.EnabledAgents(ctx)
	if err != nil {
		enabled = nil
	}

	var b strings.Builder
	for _, a := range record.Agents() {
		fmt.Fprintf(&b, "%s %-24s %s\n", checkbox(slices.Contains(enabled, a.Name)), a.Name, a.Desc)
	}
	b.WriteString("\nUncheck an agent to disable it during the pilot.\n")
	return View{Body: b.String()}, err
}

func (p *Pages) renderOptimization(ctx context.Context) (View, error) {
	cfg, ok, err := store.GetAs[record.OptimizationConfig](ctx, p.store, record.CollectionConfig, record.ConfigOptimization)
	if !ok {
		cfg = record.OptimizationConfig{Strategy: record.StrategyEpsilonGreedy}
		if err == nil {
			cfg.KPIs = record.KPIs()
		}
	}

	var b strings.Builder
	b.WriteString("KPIs\n")
	for _, k := range record.KPIs() {
		fmt.Fprintf(&b, "  %s %s\n", checkbox(slices.Contains(cfg.KPIs, k)), k)
	}
	b.WriteString("\nStrategy\n")
	for _, s := range record.Strategies() {
		mark := "( )"
		if s == cfg.Strategy {
			mark = "(*)"
		}
		fmt.Fprintf(&b, "  %s %s\n", mark, s)
	}
	if cfg.Notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s\n", cfg.Notes)
	}
	return View{Body: b.String()}, err
}

func (p *Pages) renderRecipes(ctx context.Context) (View, error) {
	library, err := presets.Load()
	if err != nil {
		return View{}, err
	}
	stored, err := store.AllAs[record.Recipe](ctx, p.store, record.CollectionRecipes)

	added := make(map[string]bool, len(stored))
	for _, r := range stored {
		added[r.ID] = true
	}

	builtin := make(map[string]bool, len(library))
	var b strings.Builder
	for _, r := range library {
		builtin[r.ID] = true
		state := "Add"
		if added[r.ID] {
			state = "Added"
		}
		fmt.Fprintf(&b, "%-7s %s (%s, %s risk)\n        %s\n", "["+state+"]", r.Name, r.ID, r.Risk, r.Hypothesis)
	}

	var custom []string
	for _, r := range stored {
		if !builtin[r.ID] {
			custom = append(custom, fmt.Sprintf("  %s  %s", r.ID, r.Name))
		}
	}
	if len(custom) > 0 {
		slices.Sort(custom)
		fmt.Fprintf(&b, "\nImported (%d)\n%s\n", len(custom), strings.Join(custom, "\n"))
	}
	return View{Body: b.String()}, err
}
