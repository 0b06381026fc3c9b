package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/avwizard/internal/record"
)

// Snapshot is the portable JSON form of the whole store. Collection and
// field names match the on-disk layout so snapshots move between builds.
type Snapshot struct {
	Version     int                              `json:"version"`
	ExportedAt  int64                            `json:"exported_at"`
	Collections map[record.Collection][]Document `json:"collections"`
}

// Export reads every collection. Each collection is read independently; a
// write landing between two reads is visible in one and not the other.
func (s *Store) Export(ctx context.Context, now time.Time) (*Snapshot, error) {
	snap := &Snapshot{
		Version:     CurrentSchemaVersion,
		ExportedAt:  record.Millis(now),
		Collections: make(map[record.Collection][]Document, len(record.Collections())),
	}
	for _, c := range record.Collections() {
		docs, err := s.All(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
		snap.Collections[c] = docs
	}
	return snap, nil
}

// Import upserts every document in snap. Names are checked before anything
// is written, so a snapshot naming an unknown collection writes nothing.
// Past that check each record is an independent Put; a failure part way
// leaves earlier records in place.
func (s *Store) Import(ctx context.Context, snap *Snapshot) (int, error) {
	for c := range snap.Collections {
		if !c.Valid() {
			return 0, newError("import", c, KindUnknownCollection, fmt.Errorf("collection %q is not declared", c))
		}
	}

	n := 0
	for _, c := range record.Collections() {
		for _, doc := range snap.Collections[c] {
			if err := s.Put(ctx, c, doc); err != nil {
				return n, fmt.Errorf("import: %w", err)
			}
			n++
		}
	}

	s.logger.Info("snapshot imported", zap.Int("records", n), zap.Int("version", snap.Version))
	return n, nil
}
