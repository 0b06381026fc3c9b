package cli

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/avwizard/internal/agents"
	"github.com/roach88/avwizard/internal/config"
	"github.com/roach88/avwizard/internal/logging"
	"github.com/roach88/avwizard/internal/seed"
	"github.com/roach88/avwizard/internal/store"
	"github.com/roach88/avwizard/internal/wizard"
)

// app is everything a command needs, opened from the global flags.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
	pages  *wizard.Pages
	out    *OutputFormatter
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// openApp loads config, builds the logger and opens the store. Failures are
// already reported through the formatter; callers return the error as is.
func openApp(ctx context.Context, opts *RootOptions, cmd *cobra.Command) (*app, error) {
	out := newFormatter(opts, cmd)

	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		if p, err := config.DefaultConfigPath(); err == nil {
			cfgPath = p
		}
	}
	overrides := map[string]any{}
	if opts.DBPath != "" {
		overrides["store.path"] = opts.DBPath
	}
	if opts.Verbose {
		overrides["log.level"] = "debug"
	}
	cfg, err := config.Load(cfgPath, overrides)
	if err != nil {
		_ = out.Error(ErrCodeConfig, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}

	logger, err := logging.NewWithWriter(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		_ = out.Error(ErrCodeConfig, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "build logger", err)
	}

	if dir := filepath.Dir(cfg.Store.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			logger.Debug("create store dir", zap.Error(err))
		}
	}
	out.VerboseLog("Opening %s", cfg.Store.Path)
	s, err := store.Open(ctx, cfg.Store.Path,
		store.WithLogger(logger.Named("store")),
		store.WithBusyTimeout(cfg.Store.BusyTimeout),
	)
	if err != nil {
		return nil, fail(out, fmt.Sprintf("open %s", cfg.Store.Path), err)
	}

	seedOpts := []seed.Option{
		seed.WithLogger(logger.Named("seed")),
		seed.WithSingleFlight(cfg.Seed.SingleFlight),
	}
	if n := cfg.Seed.RandomSeed; n != 0 {
		seedOpts = append(seedOpts, seed.WithRand(rand.New(rand.NewPCG(n, n))))
	}
	pages := wizard.NewPages(s,
		wizard.WithLogger(logger.Named("wizard")),
		wizard.WithSeed(seed.New(s, seedOpts...)),
		wizard.WithPersistLogs(cfg.Launch.PersistLogs),
		wizard.WithSupervisor(agents.NewSupervisor(
			agents.WithHeartbeat(cfg.Launch.Heartbeat),
			agents.WithLogger(logger.Named("agents")),
		)),
	)

	return &app{cfg: cfg, logger: logger, store: s, pages: pages, out: out}, nil
}

func (a *app) Close() {
	a.pages.StopWorkers()
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close store", zap.Error(err))
	}
	_ = logging.Sync(a.logger)
}

// withApp runs fn with an open app and closes it afterwards.
func withApp(opts *RootOptions, cmd *cobra.Command, fn func(context.Context, *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx, opts, cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
