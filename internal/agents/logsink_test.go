package agents

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/avwizard/internal/record"
	"github.com/roach88/avwizard/internal/store"
	"github.com/roach88/avwizard/internal/testutil"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("log-%03d", n)
	}
}

func TestLogSink_Write(t *testing.T) {
	s := testutil.OpenStore(t)
	ctx := context.Background()
	sink := NewLogSink(s, sequentialIDs(), nil)

	at := time.Date(2025, 10, 18, 9, 0, 0, 0, time.UTC)
	require.NoError(t, sink.Write(ctx, Message{Agent: "conductor", Text: "started", At: at}))

	entry, ok, err := store.GetAs[record.LogEntry](ctx, s, record.CollectionLogs, "log-001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, record.LogEntry{ID: "log-001", TS: at.UnixMilli(), Msg: "[conductor] started"}, entry)
}

func TestLogSink_DefaultIDs(t *testing.T) {
	s := testutil.OpenStore(t)
	ctx := context.Background()
	sink := NewLogSink(s, nil, nil)

	require.NoError(t, sink.Write(ctx, Message{Text: "one"}))
	require.NoError(t, sink.Write(ctx, Message{Text: "two"}))

	logs, err := store.AllAs[record.LogEntry](ctx, s, record.CollectionLogs)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.NotEqual(t, logs[0].ID, logs[1].ID)
}

func TestLogSink_DrainPersistsSupervisorOutput(t *testing.T) {
	s := testutil.OpenStore(t)
	ctx := context.Background()
	sink := NewLogSink(s, sequentialIDs(), nil)

	sup := NewSupervisor(WithStartFunc(func(name string) error {
		return fmt.Errorf("%s offline", name)
	}))
	ch := sup.Start(ctx, []string{"conductor", "events"})

	var seen []string
	n := sink.Drain(ctx, ch, func(m Message) { seen = append(seen, m.String()) })
	sup.Stop()

	assert.Equal(t, 2, n)
	sort.Strings(seen)
	assert.Equal(t, []string{
		"[conductor] failed to start: conductor offline",
		"[events] failed to start: events offline",
	}, seen)

	logs, err := store.AllAs[record.LogEntry](ctx, s, record.CollectionLogs)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestLogSink_DrainSkipsFailedWrites(t *testing.T) {
	s := testutil.OpenStore(t)
	require.NoError(t, s.Close())
	sink := NewLogSink(s, sequentialIDs(), nil)

	in := make(chan Message, 2)
	in <- Message{Text: "a"}
	in <- Message{Text: "b"}
	close(in)

	calls := 0
	n := sink.Drain(context.Background(), in, func(Message) { calls++ })
	assert.Equal(t, 0, n)
	assert.Equal(t, 2, calls)
}
