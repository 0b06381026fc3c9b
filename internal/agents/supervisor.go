// Package agents runs the simulated background workers started from the
// Launch page and records what they post.
package agents

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/avwizard/internal/record"
)

// DefaultHeartbeat is how often a running worker posts.
const DefaultHeartbeat = 5 * time.Second

// Message is one line posted by a worker. Agent is empty for lines the
// launcher itself posts.
type Message struct {
	Agent string    `json:"agent,omitempty"`
	Text  string    `json:"text"`
	At    time.Time `json:"at"`
}

// String renders the message as it appears in the logs collection.
func (m Message) String() string {
	if m.Agent == "" {
		return m.Text
	}
	return fmt.Sprintf("[%s] %s", m.Agent, m.Text)
}

// StartFunc decides whether a worker may start. A non-nil error is posted as
// "failed to start: <err>" and the worker exits.
type StartFunc func(name string) error

// ErrUnknownAgent is returned by the default StartFunc for names outside the
// agent catalog.
var ErrUnknownAgent = errors.New("unknown agent")

func defaultStart(name string) error {
	if !record.IsAgent(name) {
		return ErrUnknownAgent
	}
	return nil
}

// Supervisor owns the worker goroutines for one launch.
//
// Workers live until the context passed to Start is cancelled or Stop is
// called; they never outlive the supervisor.
type Supervisor struct {
	heartbeat time.Duration
	now       func() time.Time
	start     StartFunc
	logger    *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithHeartbeat sets the heartbeat interval.
func WithHeartbeat(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.heartbeat = d
		}
	}
}

// WithClock overrides the clock stamped on messages.
func WithClock(now func() time.Time) Option {
	return func(s *Supervisor) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStartFunc overrides the start check.
func WithStartFunc(f StartFunc) Option {
	return func(s *Supervisor) {
		if f != nil {
			s.start = f
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Supervisor) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSupervisor creates an idle supervisor.
func NewSupervisor(opts ...Option) *Supervisor {
	s := &Supervisor{
		heartbeat: DefaultHeartbeat,
		now:       time.Now,
		start:     defaultStart,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches one worker per name and returns the channel they post to.
// The channel is closed once every worker has exited. Calling Start while a
// previous launch is running stops that launch first.
//
// Each worker posts "started" and then "heartbeat N" every interval. A worker
// that fails its start check posts "failed to start: <reason>" and exits
// without affecting the others.
func (s *Supervisor) Start(ctx context.Context, names []string) <-chan Message {
	s.Stop()

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan Message, 2*len(names)+1)
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			s.run(gctx, name, out)
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		cancel()
		close(out)
		close(done)
		s.logger.Debug("workers exited", zap.Int("count", len(names)))
	}()

	s.logger.Info("workers launched", zap.Strings("agents", names))
	return out
}

// Stop cancels running workers and waits for them to exit. It is a no-op
// when nothing is running.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Supervisor) run(ctx context.Context, name string, out chan<- Message) {
	if err := s.start(name); err != nil {
		s.logger.Warn("worker failed to start", zap.String("agent", name), zap.Error(err))
		s.post(ctx, out, name, "failed to start: "+err.Error())
		return
	}
	if !s.post(ctx, out, name, "started") {
		return
	}

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()
	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.post(ctx, out, name, fmt.Sprintf("heartbeat %d", n)) {
				return
			}
		}
	}
}

// post delivers a message unless ctx ends first. It reports whether the
// message was delivered.
func (s *Supervisor) post(ctx context.Context, out chan<- Message, name, text string) bool {
	select {
	case out <- Message{Agent: name, Text: text, At: s.now()}:
		return true
	case <-ctx.Done():
		return false
	}
}
