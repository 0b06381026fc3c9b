// Package store provides the SQLite-backed local store for the wizard.
//
// The store is a thin key-value layer over named collections. Each
// collection is a table keyed by the record's "id" field and each record is
// kept verbatim as JSON text:
//
//   - Put:  upsert by id; a second Put with the same id replaces the whole
//     record (no field-level merge)
//   - Get:  returns (doc, true, nil) or (nil, false, nil) for a missing id
//   - All:  every record in the collection, never nil, in no promised order
//
// # Schema Versions
//
// The schema version lives in PRAGMA user_version. Migrations only ever add
// collections; nothing is dropped or renamed, so a database written by an
// older build opens cleanly and keeps its rows.
//
//   - 1: config, recipes, experiments, outcomes, logs
//   - 2: telemetry, health
//
// # Concurrency
//
// A *Store is safe for concurrent use. Writes to the same id race with
// last-write-wins semantics; there is no compare-and-swap and no transaction
// spans more than one collection. Callers that need a partial update must
// read, modify, and Put the full record.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout (default 5000ms): wait for locks held by another process
package store
