package wizard

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/avwizard/internal/record"
	"github.com/roach88/avwizard/internal/store"
)

// DashboardData is what the Dashboard page shows.
type DashboardData struct {
	Seeded    bool                 `json:"seeded"` // this visit wrote the demo data
	Telemetry *record.Telemetry    `json:"telemetry"`
	Health    []record.AgentHealth `json:"health"`
	Logs      []record.LogEntry    `json:"logs"` // oldest first
	Recipes   []record.Recipe      `json:"recipes"`
	Value     int64                `json:"value_usd"`
	HasValue  bool                 `json:"has_value"`
}

// DashboardData seeds demo data if needed and reads everything the
// dashboard shows. Reads are independent; what could be read is returned
// with the joined error.
func (p *Pages) DashboardData(ctx context.Context) (DashboardData, error) {
	var (
		data DashboardData
		errs []error
	)

	seeded, err := p.seed.EnsureSeed(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	data.Seeded = seeded

	t, ok, err := store.GetAs[record.Telemetry](ctx, p.store, record.CollectionTelemetry, record.TelemetryDemo)
	if err != nil {
		errs = append(errs, err)
	} else if ok {
		data.Telemetry = &t
		data.Value, data.HasValue = ValueEstimate(t)
	}

	h, _, err := store.GetAs[record.Health](ctx, p.store, record.CollectionHealth, record.HealthAgents)
	if err != nil {
		errs = append(errs, err)
	}
	data.Health = h.Items

	logs, err := store.AllAs[record.LogEntry](ctx, p.store, record.CollectionLogs)
	if err != nil {
		errs = append(errs, err)
	}
	slices.SortStableFunc(logs, func(a, b record.LogEntry) int {
		return cmp.Compare(a.TS, b.TS)
	})
	data.Logs = logs

	recipes, err := store.AllAs[record.Recipe](ctx, p.store, record.CollectionRecipes)
	if err != nil {
		errs = append(errs, err)
	}
	slices.SortFunc(recipes, func(a, b record.Recipe) int {
		return strings.Compare(a.ID, b.ID)
	})
	data.Recipes = recipes

	return data, errors.Join(errs...)
}

// ValueEstimate is the simulated quarterly value: readiness lift, MTTR
// reduction below 70 minutes and failed starts avoided since week one. It
// reports false when any series is empty.
func ValueEstimate(t record.Telemetry) (int64, bool) {
	if len(t.Readiness) == 0 || len(t.MTTRMin) == 0 || len(t.FailedStarts) == 0 {
		return 0, false
	}
	readiness := t.Readiness[len(t.Readiness)-1]
	mttr := t.MTTRMin[len(t.MTTRMin)-1]
	avoided := math.Max(0, t.FailedStarts[0]-t.FailedStarts[len(t.FailedStarts)-1]) * 12
	v := readiness*120 + (70-mttr)*200 + avoided*150
	return int64(math.Floor(v + 0.5)), true
}

var usd = message.NewPrinter(language.AmericanEnglish)

// FormatUSD renders whole dollars with thousands separators, e.g. "$125,000".
func FormatUSD(v int64) string {
	if v < 0 {
		return usd.Sprintf("-$%d", -v)
	}
	return usd.Sprintf("$%d", v)
}

// Badge maps a health status to its badge class.
func Badge(status string) string {
	switch status {
	case "ok":
		return "good"
	case "warn":
		return "warn"
	default:
		return "bad"
	}
}

// PreflightBadge maps a preflight status to its badge class.
func PreflightBadge(status string) string {
	if status == "Ready" {
		return "good"
	}
	return "warn"
}

// FormatLog renders a log entry as "[ISO-8601 ts] msg".
func FormatLog(e record.LogEntry) string {
	return fmt.Sprintf("[%s] %s", formatMillis(e.TS), e.Msg)
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02T15:04:05.000Z")
}

func last(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return xs[len(xs)-1]
}

func (p *Pages) renderDashboard(ctx context.Context) (View, error) {
	data, err := p.DashboardData(ctx)
	return View{Body: RenderDashboard(data)}, err
}

// RenderDashboard lays out DashboardData as text.
func RenderDashboard(d DashboardData) string {
	var b strings.Builder

	b.WriteString("Value Realized (Sim)\n")
	if d.HasValue {
		fmt.Fprintf(&b, "  %s  [good] improving\n", FormatUSD(d.Value))
	} else {
		b.WriteString("  $—\n")
	}

	b.WriteString("\nAgent Health\n")
	fmt.Fprintf(&b, "  %-24s %7s %6s  %-6s %s\n", "Agent", "p95", "Error", "Status", "About")
	for _, a := range d.Health {
		fmt.Fprintf(&b, "  %-24s %4d ms %5.1f%%  %-6s %s\n",
			a.Name, a.P95Ms, a.ErrorRate, "["+Badge(a.Status)+"]", a.Desc)
	}

	if t := d.Telemetry; t != nil {
		b.WriteString("\nTrends (last of 12 weeks)\n")
		fmt.Fprintf(&b, "  %-32s %6.2f\n", "Event Readiness (%)", last(t.Readiness))
		fmt.Fprintf(&b, "  %-32s %6.2f\n", "MTTR (minutes)", last(t.MTTRMin))
		fmt.Fprintf(&b, "  %-32s %6.2f\n", "Failed Starts per 100 Meetings", last(t.FailedStarts))
		fmt.Fprintf(&b, "  %-32s %6.0f\n", "Auto-Resolves per Week", last(t.AutoResolves))

		b.WriteString("\nTop Rooms by Incidents\n")
		for _, r := range t.IncidentsByRoom {
			fmt.Fprintf(&b, "  %-12s %d\n", r.Room, r.Count)
		}

		b.WriteString("\nUpcoming Events - Preflight\n")
		for _, pf := range t.Preflights {
			fmt.Fprintf(&b, "  %-18s %-6s %s (%d checks, %d issues)\n",
				pf.Event, "["+PreflightBadge(pf.Status)+"]", pf.Status, pf.Checks, pf.Issues)
		}
	}

	fmt.Fprintf(&b, "\nRecipes (%d)\n", len(d.Recipes))
	for _, r := range d.Recipes {
		fmt.Fprintf(&b, "  %s  %s\n", r.ID, r.Name)
	}

	b.WriteString("\nLogs\n")
	for _, e := range d.Logs {
		b.WriteString("  " + FormatLog(e) + "\n")
	}
	return b.String()
}
