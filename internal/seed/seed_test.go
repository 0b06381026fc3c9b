package seed

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/roach88/avwizard/internal/logging"
	"github.com/roach88/avwizard/internal/record"
	"github.com/roach88/avwizard/internal/store"
	"github.com/roach88/avwizard/internal/testutil"
)

func fixedRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestEnsureSeed_WritesTelemetryAndHealth(t *testing.T) {
	s := testutil.OpenStore(t)
	clock := testutil.NewClock(time.Time{})
	ctx := context.Background()

	g := New(s, WithRand(fixedRand()), WithClock(clock.Now))
	seeded, err := g.EnsureSeed(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	tel, ok, err := store.GetAs[record.Telemetry](ctx, s, record.CollectionTelemetry, record.TelemetryDemo)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, clock.Now().UnixMilli(), tel.TS)
	assert.Len(t, tel.MTTRMin, Weeks)
	assert.Len(t, tel.Readiness, Weeks)
	assert.Len(t, tel.FailedStarts, Weeks)
	assert.Len(t, tel.AutoResolves, Weeks)
	assert.Equal(t, []record.RoomIncidents{
		{Room: "HQ-AUD-1", Count: 8},
		{Room: "HQ-TH-2", Count: 6},
		{Room: "NYC-CR-5", Count: 4},
		{Room: "LDN-HUD-3", Count: 3},
	}, tel.IncidentsByRoom)
	require.Len(t, tel.Preflights, 3)
	assert.Equal(t, record.Preflight{Event: "QBR 10/22", Status: "Attention", Checks: 16, Issues: 2}, tel.Preflights[1])

	health, ok, err := store.GetAs[record.Health](ctx, s, record.CollectionHealth, record.HealthAgents)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, health.Items, 9)
	assert.Equal(t, record.AgentNames(), healthNames(health))
	assert.Equal(t, "warn", health.Items[4].Status)
	assert.Equal(t, 420, health.Items[8].P95Ms)
}

func TestEnsureSeed_SecondCallWritesNothing(t *testing.T) {
	logger, logs := logging.NewObserved(zapcore.DebugLevel)
	ctx := context.Background()
	s, err := store.Open(ctx, filepath.Join(t.TempDir(), "seed.db"), store.WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	clock := testutil.NewClock(time.Time{})

	g := New(s, WithRand(fixedRand()), WithClock(clock.Now))
	_, err = g.EnsureSeed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, logs.FilterMessage("put").Len(), "telemetry and health")
	telBefore, _, err := s.Get(ctx, record.CollectionTelemetry, record.TelemetryDemo)
	require.NoError(t, err)
	healthBefore, _, err := s.Get(ctx, record.CollectionHealth, record.HealthAgents)
	require.NoError(t, err)
	logs.TakeAll()

	clock.Advance(time.Hour)
	seeded, err := g.EnsureSeed(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Zero(t, logs.FilterMessage("put").Len())

	telAfter, _, err := s.Get(ctx, record.CollectionTelemetry, record.TelemetryDemo)
	require.NoError(t, err)
	assert.JSONEq(t, string(telBefore), string(telAfter))
	healthAfter, _, err := s.Get(ctx, record.CollectionHealth, record.HealthAgents)
	require.NoError(t, err)
	assert.JSONEq(t, string(healthBefore), string(healthAfter))
}

func TestEnsureSeed_ExistingTelemetryIsKept(t *testing.T) {
	s := testutil.OpenStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, record.CollectionTelemetry, map[string]any{"id": "demo", "custom": true}))

	seeded, err := New(s).EnsureSeed(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	doc, _, err := s.Get(ctx, record.CollectionTelemetry, record.TelemetryDemo)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"demo","custom":true}`, string(doc))

	_, ok, err := s.Get(ctx, record.CollectionHealth, record.HealthAgents)
	require.NoError(t, err)
	assert.False(t, ok, "health is only written alongside fresh telemetry")
}

func TestEnsureSeed_ConcurrentCallers(t *testing.T) {
	s := testutil.OpenStore(t)
	ctx := context.Background()
	g := New(s)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		anyTrue bool
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seeded, err := g.EnsureSeed(ctx)
			assert.NoError(t, err)
			mu.Lock()
			anyTrue = anyTrue || seeded
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.True(t, anyTrue)
	all, err := s.All(ctx, record.CollectionTelemetry)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEnsureSeed_StoreClosed(t *testing.T) {
	s := testutil.OpenStore(t)
	require.NoError(t, s.Close())

	_, err := New(s, WithSingleFlight(false)).EnsureSeed(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrStorage)
}

func TestTelemetry_FollowsWeeklyTrends(t *testing.T) {
	g := New(nil, WithRand(fixedRand()))
	tel := g.Telemetry()

	for i := 0; i < Weeks; i++ {
		w := float64(i)
		assert.InDelta(t, 65-2*w, tel.MTTRMin[i], 3.01, "mttr week %d", i)
		assert.InDelta(t, 78+1.5*w, tel.Readiness[i], 1.51, "readiness week %d", i)
		assert.InDelta(t, 10-0.7*w, tel.FailedStarts[i], 1.01, "failed starts week %d", i)
		assert.InDelta(t, 20+1.8*w, tel.AutoResolves[i], 3.5, "auto resolves week %d", i)

		assert.Equal(t, tel.AutoResolves[i], float64(int(tel.AutoResolves[i])), "auto resolves are whole")
		assert.InDelta(t, tel.MTTRMin[i]*100, round2(tel.MTTRMin[i])*100, 1e-6, "two decimals")
	}
}

func TestTelemetry_DeterministicWithSameSource(t *testing.T) {
	a := New(nil, WithRand(fixedRand()), WithClock(testutil.NewClock(time.Time{}).Now)).Telemetry()
	b := New(nil, WithRand(fixedRand()), WithClock(testutil.NewClock(time.Time{}).Now)).Telemetry()
	assert.Equal(t, a, b)
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 3.0, roundHalfUp(2.5))
	assert.Equal(t, -2.0, roundHalfUp(-2.5))
	assert.Equal(t, 1.23, round2(1.234))
	assert.Equal(t, 1.24, round2(1.2389))
}

func healthNames(h record.Health) []string {
	names := make([]string, len(h.Items))
	for i, item := range h.Items {
		names[i] = item.Name
	}
	return names
}

func TestEnsureSeed_LogsOnce(t *testing.T) {
	s := testutil.OpenStore(t)
	logger, logs := logging.NewObserved(zapcore.InfoLevel)
	ctx := context.Background()

	g := New(s, WithRand(fixedRand()), WithLogger(logger))
	for range 3 {
		_, err := g.EnsureSeed(ctx)
		require.NoError(t, err)
	}

	entries := logs.FilterMessage("seeded demo data").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(Weeks), entries[0].ContextMap()["weeks"])
}
