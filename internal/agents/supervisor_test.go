package agents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// collect reads from ch until want messages arrive or the deadline passes.
func collect(t *testing.T, ch <-chan Message, want int) []Message {
	t.Helper()
	var got []Message
	deadline := time.After(2 * time.Second)
	for len(got) < want {
		select {
		case m, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, m)
		case <-deadline:
			t.Fatalf("timed out after %d of %d messages", len(got), want)
		}
	}
	return got
}

func byAgent(msgs []Message) map[string][]string {
	out := map[string][]string{}
	for _, m := range msgs {
		out[m.Agent] = append(out[m.Agent], m.Text)
	}
	return out
}

func TestSupervisor_StartsEachWorker(t *testing.T) {
	sup := NewSupervisor(WithHeartbeat(time.Hour))
	defer sup.Stop()

	ch := sup.Start(context.Background(), []string{"conductor", "incidents"})
	got := byAgent(collect(t, ch, 2))

	assert.Equal(t, []string{"started"}, got["conductor"])
	assert.Equal(t, []string{"started"}, got["incidents"])
}

func TestSupervisor_Heartbeats(t *testing.T) {
	sup := NewSupervisor(WithHeartbeat(5 * time.Millisecond))
	defer sup.Stop()

	ch := sup.Start(context.Background(), []string{"events"})
	got := collect(t, ch, 3)

	assert.Equal(t, "started", got[0].Text)
	assert.Equal(t, "heartbeat 1", got[1].Text)
	assert.Equal(t, "heartbeat 2", got[2].Text)
}

func TestSupervisor_FailureIsIsolated(t *testing.T) {
	sup := NewSupervisor(
		WithHeartbeat(time.Hour),
		WithStartFunc(func(name string) error {
			if name == "projects" {
				return errors.New("worker unsupported")
			}
			return nil
		}),
	)
	defer sup.Stop()

	ch := sup.Start(context.Background(), []string{"conductor", "projects", "events"})
	got := byAgent(collect(t, ch, 3))

	assert.Equal(t, []string{"failed to start: worker unsupported"}, got["projects"])
	assert.Equal(t, []string{"started"}, got["conductor"])
	assert.Equal(t, []string{"started"}, got["events"])
}

func TestSupervisor_UnknownAgent(t *testing.T) {
	sup := NewSupervisor()
	ch := sup.Start(context.Background(), []string{"not-an-agent"})

	got := collect(t, ch, 1)
	assert.Equal(t, "failed to start: unknown agent", got[0].Text)

	// The only worker exited, so the channel closes on its own.
	_, ok := <-ch
	assert.False(t, ok)
	sup.Stop()
}

func TestSupervisor_NoNamesClosesImmediately(t *testing.T) {
	sup := NewSupervisor()
	ch := sup.Start(context.Background(), nil)

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
	sup.Stop()
}

func TestSupervisor_StopClosesChannel(t *testing.T) {
	sup := NewSupervisor(WithHeartbeat(time.Millisecond))
	ch := sup.Start(context.Background(), []string{"conductor", "events"})
	collect(t, ch, 2)

	sup.Stop()

	// Drain whatever was buffered; the channel must be closed.
	for range ch {
	}
	sup.Stop() // second Stop is a no-op
}

func TestSupervisor_ContextCancelStopsWorkers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sup := NewSupervisor(WithHeartbeat(time.Millisecond))
	ch := sup.Start(ctx, []string{"conductor"})
	collect(t, ch, 1)

	cancel()
	for range ch {
	}
}

func TestSupervisor_RestartStopsPreviousLaunch(t *testing.T) {
	sup := NewSupervisor(WithHeartbeat(time.Hour))
	first := sup.Start(context.Background(), []string{"conductor"})
	collect(t, first, 1)

	second := sup.Start(context.Background(), []string{"events"})
	for range first {
	}

	got := collect(t, second, 1)
	assert.Equal(t, "events", got[0].Agent)
	sup.Stop()
}

func TestMessage_String(t *testing.T) {
	assert.Equal(t, "[conductor] started", Message{Agent: "conductor", Text: "started"}.String())
	assert.Equal(t, "Workers started. Switch to Dashboard.", Message{Text: "Workers started. Switch to Dashboard."}.String())
}

func TestSupervisor_StampsClock(t *testing.T) {
	at := time.Date(2025, 10, 18, 9, 0, 0, 0, time.UTC)
	sup := NewSupervisor(WithHeartbeat(time.Hour), WithClock(func() time.Time { return at }))
	defer sup.Stop()

	got := collect(t, sup.Start(context.Background(), []string{"conductor"}), 1)
	require.Len(t, got, 1)
	assert.Equal(t, at, got[0].At)
}
