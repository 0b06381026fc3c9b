package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/roach88/avwizard/internal/record"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// migrations in version order. Index i upgrades user_version i to i+1.
var migrations = []string{
	"0001_initial.sql",
	"0002_dashboard.sql",
}

// CurrentSchemaVersion is the user_version written after all migrations.
const CurrentSchemaVersion = 2

// DefaultBusyTimeoutMS bounds how long a write waits on another process's lock.
const DefaultBusyTimeoutMS = 5000

// Store is the local persistent store. Create one with Open and share it;
// there is no package-level connection.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

type options struct {
	logger      *zap.Logger
	busyTimeout int
}

// Option configures Open.
type Option func(*options)

// WithLogger attaches a logger. Operations log at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBusyTimeout overrides the SQLite busy timeout in milliseconds.
func WithBusyTimeout(ms int) Option {
	return func(o *options) {
		if ms > 0 {
			o.busyTimeout = ms
		}
	}
}

// Open creates or opens the database at path and brings its schema up to
// CurrentSchemaVersion. It is idempotent: opening an up-to-date database
// changes nothing, and opening an older one only adds collections.
//
// Failures to open, configure, or migrate are reported as KindUnavailable.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	o := options{logger: zap.NewNop(), busyTimeout: DefaultBusyTimeoutMS}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, newError("open", "", KindUnavailable, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, newError("open", "", KindUnavailable, err)
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY between
	// our own goroutines and keeps pragmas applied to the connection in use.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db, o.busyTimeout); err != nil {
		db.Close()
		return nil, newError("open", "", KindUnavailable, err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, newError("migrate", "", KindUnavailable, err)
	}

	o.logger.Debug("store opened", zap.String("path", path), zap.Int("schema_version", CurrentSchemaVersion))
	return &Store{db: db, logger: o.logger}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Collections returns the collections this store declares.
func (s *Store) Collections() []record.Collection {
	return record.Collections()
}

// SchemaVersion reports the database's user_version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, newError("schema_version", "", KindIO, err)
	}
	return v, nil
}

func applyPragmas(ctx context.Context, db *sql.DB, busyTimeout int) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout),
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("execute %q: %w", p, err)
		}
	}
	return nil
}

// migrate applies every migration above the stored user_version in order.
// Each step runs in its own transaction together with its version bump.
func migrate(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	for v := version; v < len(migrations); v++ {
		script, err := migrationFS.ReadFile(path.Join("migrations", migrations[v]))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", migrations[v], err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("migration %s: begin: %w", migrations[v], err)
		}
		if _, err := tx.ExecContext(ctx, string(script)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s: %w", migrations[v], err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s: set user_version: %w", migrations[v], err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %s: commit: %w", migrations[v], err)
		}
	}

	return nil
}
