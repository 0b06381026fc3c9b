package wizard

import (
	"math/rand/v2"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/roach88/avwizard/internal/agents"
	"github.com/roach88/avwizard/internal/seed"
	"github.com/roach88/avwizard/internal/store"
	"github.com/roach88/avwizard/internal/testutil"
)

type fixture struct {
	store *store.Store
	clock *testutil.Clock
	pages *Pages
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := testutil.OpenStore(t)
	clock := testutil.NewClock(time.Time{})
	logger := zaptest.NewLogger(t)

	pages := NewPages(s,
		WithClock(clock.Now),
		WithLogger(logger),
		WithSeed(seed.New(s, seed.WithRand(rand.New(rand.NewPCG(7, 7))), seed.WithClock(clock.Now))),
		WithSupervisor(agents.NewSupervisor(agents.WithHeartbeat(time.Hour), agents.WithClock(clock.Now))),
	)
	t.Cleanup(pages.StopWorkers)
	return &fixture{store: s, clock: clock, pages: pages}
}
