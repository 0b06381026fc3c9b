package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/sparkline"

	"github.com/roach88/avwizard/internal/record"
	"github.com/roach88/avwizard/internal/wizard"
)

// View renders the wizard
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(" AV AI Ops Pilot Wizard ") + "\n")
	b.WriteString(m.renderSteps() + "\n")

	current := m.nav.Current()
	b.WriteString(titleStyle.Render(current.Title()) + "\n\n")

	if banner := m.banner(); banner != "" {
		b.WriteString(bannerStyle.Render(banner) + "\n\n")
	}

	switch current {
	case wizard.Welcome:
		b.WriteString(m.renderWelcome())
	case wizard.Agents:
		b.WriteString(m.renderAgents())
	case wizard.Optimization:
		b.WriteString(m.renderOptimization())
	case wizard.Recipes:
		b.WriteString(m.renderRecipes())
	case wizard.Launch:
		b.WriteString(m.view.Body)
		b.WriteString(m.renderWorkers())
	case wizard.Dashboard:
		b.WriteString(m.renderSparklines())
		b.WriteString(m.view.Body)
	default:
		b.WriteString(m.view.Body)
	}

	if m.status != "" {
		b.WriteString("\n" + statusStyle.Render("✓ "+m.status) + "\n")
	}
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) banner() string {
	if m.err != nil {
		return "Error: " + m.err.Error()
	}
	if m.view.Fragment == m.nav.Current() {
		return m.view.Banner
	}
	return ""
}

func (m Model) renderSteps() string {
	current := m.nav.Current()
	steps := make([]string, 0, len(wizard.Fragments()))
	for _, f := range wizard.Fragments() {
		label := fmt.Sprintf("%d %s", f.Index()+1, f.Title())
		if f == current {
			steps = append(steps, currentStepStyle.Render(label))
			continue
		}
		steps = append(steps, stepStyle.Render(label))
	}
	return strings.Join(steps, dimStyle.Render(" · "))
}

func (m Model) pointer(row int) string {
	if row == m.cursor {
		return cursorStyle.Render("›")
	}
	return " "
}

func (m Model) renderWelcome() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", m.pointer(0), labelStyle.Render("Mode:        "), m.mode)
	fmt.Fprintf(&b, "%s %s %s\n", m.pointer(1), labelStyle.Render("Project Name:"), m.project.View())
	b.WriteString("\n" + dimStyle.Render("m toggles mode · enter saves") + "\n")
	return b.String()
}

func (m Model) renderAgents() string {
	var b strings.Builder
	for i, a := range record.Agents() {
		box := "[ ]"
		if m.enabled[a.Name] {
			box = "[x]"
		}
		fmt.Fprintf(&b, "%s %s %-24s %s\n", m.pointer(i), box, a.Name, dimStyle.Render(a.Desc))
	}
	return b.String()
}

func (m Model) renderOptimization() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("KPIs") + "\n")
	kpis := record.KPIs()
	for i, k := range kpis {
		box := "[ ]"
		if m.kpis[k] {
			box = "[x]"
		}
		fmt.Fprintf(&b, "%s %s %s\n", m.pointer(i), box, k)
	}
	fmt.Fprintf(&b, "\n%s %s %s\n", m.pointer(len(kpis)), labelStyle.Render("Strategy:"), m.strategy)
	if m.notes != "" {
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("Notes:"), m.notes)
	}
	return b.String()
}

func (m Model) renderRecipes() string {
	var b strings.Builder
	for i, r := range m.library {
		state := dimStyle.Render("[Add]  ")
		if m.added[r.ID] {
			state = statusStyle.Render("[Added]")
		}
		fmt.Fprintf(&b, "%s %s %s %s\n", m.pointer(i), state, r.Name, dimStyle.Render("("+r.Risk+" risk)"))
	}
	return b.String()
}

func (m Model) renderWorkers() string {
	if len(m.workers) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n" + labelStyle.Render("Worker output") + "\n")
	for _, line := range m.workers {
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

func (m Model) renderSparklines() string {
	if m.dash == nil || m.dash.Telemetry == nil {
		return ""
	}
	t := m.dash.Telemetry
	series := []struct {
		label string
		data  []float64
	}{
		{"MTTR (min)", t.MTTRMin},
		{"Readiness %", t.Readiness},
		{"Failed starts", t.FailedStarts},
		{"Auto-resolves", t.AutoResolves},
	}

	var b strings.Builder
	for _, s := range series {
		fmt.Fprintf(&b, "%s\n%s\n", labelStyle.Render(s.label), createSparkline(s.data))
	}
	b.WriteString("\n")
	return b.String()
}

// createSparkline draws one weekly series.
func createSparkline(data []float64) string {
	if len(data) == 0 {
		return dimStyle.Render(fmt.Sprintf("%*s", sparklineWidth, "no data"))
	}
	spark := sparkline.New(sparklineWidth, sparklineHeight)
	for _, v := range data {
		spark.Push(v)
	}
	spark.Draw()
	return sparklineStyle.Render(spark.View())
}

func (m Model) renderFooter() string {
	keys := []struct{ key, desc string }{
		{"tab", "next"},
		{"shift+tab", "back"},
		{"1-8", "jump"},
		{"space", "toggle"},
		{"enter", "save"},
		{"r", "refresh"},
		{"q", "quit"},
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = footerKeyStyle.Render("["+k.key+"]") + footerStyle.Render(" "+k.desc)
	}
	return "\n" + strings.Join(parts, "  ") + "\n"
}
