package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/roach88/avwizard/internal/store"
)

// OpenStore opens a store in a fresh temp dir, logging through the test's
// output, and closes it when the test ends.
func OpenStore(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(),
		filepath.Join(t.TempDir(), "avwizard.db"),
		store.WithLogger(zaptest.NewLogger(t)),
	)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}
