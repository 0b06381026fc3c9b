package store

import (
	"context"
	"path/filepath"
	"testing"
)

// openTestStore opens an isolated store in a temp dir and closes it with the test.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
