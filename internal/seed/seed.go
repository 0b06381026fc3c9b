// Package seed writes the demo telemetry series and agent health table the
// dashboard renders on first visit.
package seed

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/roach88/avwizard/internal/record"
	"github.com/roach88/avwizard/internal/store"
)

// Weeks is the length of every weekly series.
const Weeks = 12

// Generator seeds demo data into a store at most once.
type Generator struct {
	store  *store.Store
	mu     sync.Mutex // guards rng
	rng    *rand.Rand
	now    func() time.Time
	logger *zap.Logger

	dedupe bool
	group  singleflight.Group
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand fixes the random source used for series noise. Tests pass a
// seeded source to get reproducible series.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		if r != nil {
			g.rng = r
		}
	}
}

// WithClock overrides the clock used for the telemetry ts.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithSingleFlight controls whether concurrent EnsureSeed calls in this
// process share one check-then-write. On by default.
func WithSingleFlight(on bool) Option {
	return func(g *Generator) { g.dedupe = on }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a Generator for s.
func New(s *store.Store, opts ...Option) *Generator {
	now := time.Now()
	g := &Generator{
		store:  s,
		rng:    rand.New(rand.NewPCG(uint64(now.UnixNano()), uint64(now.Unix()))),
		now:    time.Now,
		logger: zap.NewNop(),
		dedupe: true,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// EnsureSeed writes telemetry/demo and health/agents unless telemetry/demo
// already exists. It reports whether seeding happened; callers that joined
// an in-flight seed see the same answer as the caller that ran it.
//
// The presence check and the writes are not atomic across processes: two
// processes seeding the same empty file can both write. Both write complete
// records, so the loser's series simply replaces the winner's.
func (g *Generator) EnsureSeed(ctx context.Context) (bool, error) {
	if !g.dedupe {
		return g.ensure(ctx)
	}
	v, err, _ := g.group.Do(record.TelemetryDemo, func() (any, error) {
		return g.ensure(ctx)
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (g *Generator) ensure(ctx context.Context) (bool, error) {
	_, ok, err := g.store.Get(ctx, record.CollectionTelemetry, record.TelemetryDemo)
	if err != nil {
		return false, fmt.Errorf("check seed: %w", err)
	}
	if ok {
		return false, nil
	}

	t := g.Telemetry()
	if err := g.store.Put(ctx, record.CollectionTelemetry, t); err != nil {
		return false, fmt.Errorf("seed telemetry: %w", err)
	}
	if err := g.store.Put(ctx, record.CollectionHealth, Health()); err != nil {
		return false, fmt.Errorf("seed health: %w", err)
	}

	g.logger.Info("seeded demo data",
		zap.Int("weeks", Weeks),
		zap.Int64("ts", t.TS),
	)
	return true, nil
}

// Telemetry generates a fresh demo series. Each call draws new noise.
func (g *Generator) Telemetry() record.Telemetry {
	t := record.Telemetry{
		ID:           record.TelemetryDemo,
		MTTRMin:      make([]float64, Weeks),
		Readiness:    make([]float64, Weeks),
		FailedStarts: make([]float64, Weeks),
		AutoResolves: make([]float64, Weeks),
		IncidentsByRoom: []record.RoomIncidents{
			{Room: "HQ-AUD-1", Count: 8},
			{Room: "HQ-TH-2", Count: 6},
			{Room: "NYC-CR-5", Count: 4},
			{Room: "LDN-HUD-3", Count: 3},
		},
		Preflights: []record.Preflight{
			{Event: "All-Hands 10/18", Status: "Ready", Checks: 18, Issues: 0},
			{Event: "QBR 10/22", Status: "Attention", Checks: 16, Issues: 2},
			{Event: "Training 10/25", Status: "Ready", Checks: 14, Issues: 0},
		},
		TS: record.Millis(g.now()),
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for i := 0; i < Weeks; i++ {
		w := float64(i)
		t.MTTRMin[i] = round2(65 - 2*w + g.uniform(3))
		t.Readiness[i] = round2(78 + 1.5*w + g.uniform(1.5))
		t.FailedStarts[i] = round2(10 - 0.7*w + g.uniform(1))
		t.AutoResolves[i] = roundHalfUp(20 + 1.8*w + g.uniform(3))
	}
	return t
}

// Health returns the fixed agent health table.
func Health() record.Health {
	return record.Health{
		ID: record.HealthAgents,
		Items: []record.AgentHealth{
			{Name: "conductor", P95Ms: 180, ErrorRate: 0.2, Status: "ok", Desc: "Routes tasks and enforces SLAs"},
			{Name: "support-requests", P95Ms: 240, ErrorRate: 0.5, Status: "ok", Desc: "/avhelp intake to triage"},
			{Name: "incidents", P95Ms: 260, ErrorRate: 0.7, Status: "ok", Desc: "Self-heal runbooks and escalation"},
			{Name: "projects", P95Ms: 220, ErrorRate: 0.4, Status: "ok", Desc: "Builds/changes scaffolding"},
			{Name: "events", P95Ms: 310, ErrorRate: 0.9, Status: "warn", Desc: "Rehearsal/live orchestration"},
			{Name: "recipe-library", P95Ms: 150, ErrorRate: 0.1, Status: "ok", Desc: "YAML recipes + guardrails"},
			{Name: "baseline-dashboards", P95Ms: 130, ErrorRate: 0.1, Status: "ok", Desc: "Snapshots & KPIs"},
			{Name: "incident-outcome-mapper", P95Ms: 280, ErrorRate: 1.1, Status: "ok", Desc: "Outcome correlation views"},
			{Name: "kb-recipe-scout", P95Ms: 420, ErrorRate: 1.5, Status: "ok", Desc: "Docs → KB → Recipe → Slack"},
		},
	}
}

// uniform returns a value in [-spread, spread).
func (g *Generator) uniform(spread float64) float64 {
	return g.rng.Float64()*2*spread - spread
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func round2(x float64) float64 {
	return roundHalfUp(x*100) / 100
}
