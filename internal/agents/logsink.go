package agents

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/avwizard/internal/presets"
	"github.com/roach88/avwizard/internal/record"
	"github.com/roach88/avwizard/internal/store"
)

// LogSink persists worker messages to the logs collection so the dashboard
// can show them after the launching process exits.
type LogSink struct {
	store  *store.Store
	newID  presets.IDFunc
	logger *zap.Logger
}

// NewLogSink creates a sink writing to s. A nil newID uses UUIDv7 ids, which
// sort by time.
func NewLogSink(s *store.Store, newID presets.IDFunc, logger *zap.Logger) *LogSink {
	if newID == nil {
		newID = presets.NewID
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{store: s, newID: newID, logger: logger}
}

// Write stores one message.
func (l *LogSink) Write(ctx context.Context, m Message) error {
	at := m.At
	if at.IsZero() {
		at = time.Now()
	}
	entry := record.LogEntry{
		ID:  l.newID(),
		TS:  record.Millis(at),
		Msg: m.String(),
	}
	if err := l.store.Put(ctx, record.CollectionLogs, entry); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// Drain writes every message from in until it closes, passing each one to
// fn (if non-nil) after it is stored. It returns the number stored. A failed
// write is logged and skipped so one bad write doesn't stop the stream.
func (l *LogSink) Drain(ctx context.Context, in <-chan Message, fn func(Message)) int {
	n := 0
	for m := range in {
		if err := l.Write(ctx, m); err != nil {
			l.logger.Warn("dropping worker message", zap.String("msg", m.String()), zap.Error(err))
		} else {
			n++
		}
		if fn != nil {
			fn(m)
		}
	}
	return n
}
