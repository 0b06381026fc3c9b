package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/avwizard/internal/record"
	"github.com/roach88/avwizard/internal/store"
)

func TestValueEstimate(t *testing.T) {
	tel := record.Telemetry{
		Readiness:    []float64{78, 90, 94.5},
		MTTRMin:      []float64{65, 50, 43},
		FailedStarts: []float64{10, 6, 2.5},
	}
	// 94.5*120 + (70-43)*200 + (10-2.5)*12*150 = 11340 + 5400 + 13500
	v, ok := ValueEstimate(tel)
	require.True(t, ok)
	assert.Equal(t, int64(30240), v)

	// Failed starts rising never count as negative avoidance.
	tel.FailedStarts = []float64{2, 9}
	v, _ = ValueEstimate(tel)
	assert.Equal(t, int64(11340+5400), v)

	_, ok = ValueEstimate(record.Telemetry{})
	assert.False(t, ok)
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$125,000", FormatUSD(125000))
	assert.Equal(t, "$999", FormatUSD(999))
	assert.Equal(t, "-$1,500", FormatUSD(-1500))
}

func TestBadges(t *testing.T) {
	assert.Equal(t, "good", Badge("ok"))
	assert.Equal(t, "warn", Badge("warn"))
	assert.Equal(t, "bad", Badge("down"))
	assert.Equal(t, "good", PreflightBadge("Ready"))
	assert.Equal(t, "warn", PreflightBadge("Attention"))
}

func TestFormatLog(t *testing.T) {
	at := time.Date(2025, 10, 18, 9, 0, 0, 123_000_000, time.UTC)
	assert.Equal(t, "[2025-10-18T09:00:00.123Z] [events] started",
		FormatLog(record.LogEntry{TS: at.UnixMilli(), Msg: "[events] started"}))
}

func TestDashboard_SeedsOnFirstVisit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.pages.DashboardData(ctx)
	require.NoError(t, err)
	assert.True(t, first.Seeded)
	require.NotNil(t, first.Telemetry)
	assert.Len(t, first.Health, 9)
	assert.True(t, first.HasValue)

	second, err := f.pages.DashboardData(ctx)
	require.NoError(t, err)
	assert.False(t, second.Seeded)
	assert.Equal(t, first.Telemetry, second.Telemetry)
	assert.Equal(t, first.Value, second.Value)

	for _, c := range []record.Collection{record.CollectionTelemetry, record.CollectionHealth} {
		all, err := f.store.All(ctx, c)
		require.NoError(t, err)
		assert.Len(t, all, 1, c)
	}
}

func TestDashboard_RendersSections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Put(ctx, record.CollectionLogs, record.LogEntry{ID: "b", TS: 2000, Msg: "second"}))
	require.NoError(t, f.store.Put(ctx, record.CollectionLogs, record.LogEntry{ID: "a", TS: 1000, Msg: "first"}))
	_, err := f.pages.AddRecipe(ctx, "baseline_control")
	require.NoError(t, err)

	v := f.pages.Router().Route(ctx, "#/dashboard")
	require.NoError(t, v.Err)

	data, err := f.pages.DashboardData(ctx)
	require.NoError(t, err)

	body := v.Body
	assert.Contains(t, body, "Value Realized (Sim)\n  "+FormatUSD(data.Value))
	assert.Contains(t, body, "events")
	assert.Contains(t, body, "[warn]")
	assert.Contains(t, body, "HQ-AUD-1     8")
	assert.Contains(t, body, "QBR 10/22")
	assert.Contains(t, body, "Recipes (1)\n  baseline_control  Baseline Control\n")
	assert.Contains(t, body, "  [1970-01-01T00:00:01.000Z] first\n  [1970-01-01T00:00:02.000Z] second\n")
}

func TestDashboard_ExistingTelemetryNotReseeded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	custom := record.Telemetry{
		ID:           record.TelemetryDemo,
		Readiness:    []float64{80},
		MTTRMin:      []float64{70},
		FailedStarts: []float64{5},
	}
	require.NoError(t, f.store.Put(ctx, record.CollectionTelemetry, custom))

	data, err := f.pages.DashboardData(ctx)
	require.NoError(t, err)
	assert.False(t, data.Seeded)
	assert.Equal(t, int64(9600), data.Value)
	assert.Empty(t, data.Health)

	_, ok, err := store.GetAs[record.Health](ctx, f.store, record.CollectionHealth, record.HealthAgents)
	require.NoError(t, err)
	assert.False(t, ok)
}
