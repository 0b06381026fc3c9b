package wizard

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/avwizard/internal/agents"
	"github.com/roach88/avwizard/internal/presets"
	"github.com/roach88/avwizard/internal/record"
	"github.com/roach88/avwizard/internal/seed"
	"github.com/roach88/avwizard/internal/store"
)

// Result is the outcome of a successful save: a confirmation line and the
// suggested next page.
type Result struct {
	Message string
	Next    Fragment
}

// InputError reports form input that can't be saved. Nothing is written.
type InputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Reason)
}

// Pages is the controller behind every wizard page.
type Pages struct {
	store      *store.Store
	seed       *seed.Generator
	supervisor *agents.Supervisor
	sink       *agents.LogSink
	persist    bool
	now        func() time.Time
	logger     *zap.Logger
}

// Option configures Pages.
type Option func(*Pages)

// WithSeed overrides the dashboard seed generator.
func WithSeed(g *seed.Generator) Option {
	return func(p *Pages) { p.seed = g }
}

// WithSupervisor overrides the worker supervisor used by Launch.
func WithSupervisor(s *agents.Supervisor) Option {
	return func(p *Pages) { p.supervisor = s }
}

// WithLogSink overrides where worker messages are persisted.
func WithLogSink(l *agents.LogSink) Option {
	return func(p *Pages) { p.sink = l }
}

// WithPersistLogs controls whether Launch writes to the logs collection.
// When off, worker messages are still relayed by Drain but not stored.
func WithPersistLogs(on bool) Option {
	return func(p *Pages) { p.persist = on }
}

// WithClock overrides the clock used for updated_at and created_at.
func WithClock(now func() time.Time) Option {
	return func(p *Pages) { p.now = now }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pages) { p.logger = l }
}

// NewPages creates the page controller over s.
func NewPages(s *store.Store, opts ...Option) *Pages {
	p := &Pages{store: s, persist: true, now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	if p.seed == nil {
		p.seed = seed.New(s, seed.WithLogger(p.logger), seed.WithClock(p.now))
	}
	if p.supervisor == nil {
		p.supervisor = agents.NewSupervisor(agents.WithLogger(p.logger), agents.WithClock(p.now))
	}
	if p.sink == nil {
		p.sink = agents.NewLogSink(s, nil, p.logger)
	}
	return p
}

// Routes returns the page table for NewRouter.
func (p *Pages) Routes() map[Fragment]PageFunc {
	return map[Fragment]PageFunc{
		Welcome:      p.renderWelcome,
		Integrations: p.renderIntegrations,
		Agents:       p.renderAgents,
		Optimization: p.renderOptimization,
		Recipes:      p.renderRecipes,
		Review:       p.renderReview,
		Launch:       p.renderLaunch,
		Dashboard:    p.renderDashboard,
	}
}

// Router returns a router over this controller's pages.
func (p *Pages) Router() *Router {
	return NewRouter(p.Routes(), p.logger)
}

// WelcomeForm is the Welcome page input.
type WelcomeForm struct {
	Mode    string
	Project string
}

// SaveWelcome writes config/global. An empty mode means mock and an empty
// project means DefaultProject.
func (p *Pages) SaveWelcome(ctx context.Context, form WelcomeForm) (Result, error) {
	mode := record.Mode(strings.ToLower(strings.TrimSpace(form.Mode)))
	if mode == "" {
		mode = record.ModeMock
	}
	if !mode.Valid() {
		return Result{}, &InputError{Field: "mode", Value: form.Mode, Reason: "want mock or real"}
	}
	project := record.CleanText(form.Project)
	if project == "" {
		project = record.DefaultProject
	}

	cfg := record.GlobalConfig{
		ID:        record.ConfigGlobal,
		Mode:      mode,
		Project:   project,
		UpdatedAt: record.Millis(p.now()),
	}
	if err := p.store.Put(ctx, record.CollectionConfig, cfg); err != nil {
		return Result{}, err
	}
	p.logger.Info("saved welcome", zap.String("mode", string(mode)), zap.String("project", project))
	return Result{Message: "Saved. Continue to Integrations.", Next: Integrations}, nil
}

// SaveIntegrations writes config/integrations. Blank URLs fall back to the
// local defaults.
func (p *Pages) SaveIntegrations(ctx context.Context, form record.IntegrationsConfig) (Result, error) {
	def := record.DefaultIntegrations()
	pick := func(v, fallback string) string {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
		return fallback
	}
	cfg := record.IntegrationsConfig{
		ID:     record.ConfigIntegrations,
		Slack:  pick(form.Slack, def.Slack),
		Zoom:   pick(form.Zoom, def.Zoom),
		GitHub: pick(form.GitHub, def.GitHub),
		GDrive: pick(form.GDrive, def.GDrive),
		Snow:   pick(form.Snow, def.Snow),
		Search: pick(form.Search, def.Search),
	}
	if err := p.store.Put(ctx, record.CollectionConfig, cfg); err != nil {
		return Result{}, err
	}
	p.logger.Info("saved integrations")
	return Result{Message: "Saved. Continue to Agents.", Next: Agents}, nil
}

// SaveAgents writes config/agents with the given agents enabled. Names are
// stored in catalog order; an empty list disables every agent.
func (p *Pages) SaveAgents(ctx context.Context, enabled []string) (Result, error) {
	for _, name := range enabled {
		if !record.IsAgent(name) {
			return Result{}, &InputError{Field: "agent", Value: name, Reason: "not a known agent"}
		}
	}
	names := make([]string, 0, len(enabled))
	for _, name := range record.AgentNames() {
		if slices.Contains(enabled, name) {
			names = append(names, name)
		}
	}

	cfg := record.AgentsConfig{ID: record.ConfigAgents, Enabled: names}
	if err := p.store.Put(ctx, record.CollectionConfig, cfg); err != nil {
		return Result{}, err
	}
	p.logger.Info("saved agents", zap.Strings("enabled", names))
	return Result{Message: "Saved. Continue to Optimization.", Next: Optimization}, nil
}

// EnabledAgents returns the saved agent selection. Before the Agents page has
// been saved every agent counts as enabled, matching the page's initial
// checkboxes.
func (p *Pages) EnabledAgents(ctx context.Context) ([]string, error) {
	cfg, ok, err := store.GetAs[record.AgentsConfig](ctx, p.store, record.CollectionConfig, record.ConfigAgents)
	if err != nil {
		return nil, err
	}
	if !ok {
		return record.AgentNames(), nil
	}
	return cfg.Enabled, nil
}

// OptimizationForm is the Optimization page input.
type OptimizationForm struct {
	KPIs     []string
	Strategy string
	Notes    string
}

// SaveOptimization writes config/optimization. KPIs are stored in catalog
// order and the strategy defaults to epsilon_greedy.
func (p *Pages) SaveOptimization(ctx context.Context, form OptimizationForm) (Result, error) {
	for _, k := range form.KPIs {
		if !record.IsKPI(k) {
			return Result{}, &InputError{Field: "kpi", Value: k, Reason: "not a known KPI"}
		}
	}
	strategy := record.Strategy(strings.TrimSpace(form.Strategy))
	if strategy == "" {
		strategy = record.StrategyEpsilonGreedy
	}
	if !strategy.Valid() {
		return Result{}, &InputError{Field: "strategy", Value: form.Strategy, Reason: "want epsilon_greedy or uniform_ab"}
	}

	kpis := make([]string, 0, len(form.KPIs))
	for _, k := range record.KPIs() {
		if slices.Contains(form.KPIs, k) {
			kpis = append(kpis, k)
		}
	}

	cfg := record.OptimizationConfig{
		ID:       record.ConfigOptimization,
		KPIs:     kpis,
		Strategy: strategy,
		Notes:    record.CleanText(form.Notes),
	}
	if err := p.store.Put(ctx, record.CollectionConfig, cfg); err != nil {
		return Result{}, err
	}
	p.logger.Info("saved optimization", zap.Strings("kpis", kpis), zap.String("strategy", string(strategy)))
	return Result{Message: "Saved. Continue to Recipes.", Next: Recipes}, nil
}

// SelectedKPIs returns the saved KPI selection. Before the Optimization page
// has been saved every KPI counts as selected, matching the page's initial
// checkboxes.
func (p *Pages) SelectedKPIs(ctx context.Context) ([]string, error) {
	cfg, ok, err := store.GetAs[record.OptimizationConfig](ctx, p.store, record.CollectionConfig, record.ConfigOptimization)
	if err != nil {
		return nil, err
	}
	if !ok {
		return record.KPIs(), nil
	}
	return cfg.KPIs, nil
}

// AddRecipe stores the preset with the given id, stamped with created_at.
// Adding the same preset again replaces the earlier copy.
func (p *Pages) AddRecipe(ctx context.Context, presetID string) (Result, error) {
	r, ok, err := presets.Lookup(presetID)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, &InputError{Field: "preset", Value: presetID, Reason: "no such preset"}
	}
	r.CreatedAt = record.Millis(p.now())
	if err := p.store.Put(ctx, record.CollectionRecipes, r); err != nil {
		return Result{}, err
	}
	p.logger.Info("added recipe", zap.String("id", r.ID))
	return Result{Message: fmt.Sprintf("Added %s.", r.Name), Next: Recipes}, nil
}

// ImportRecipes stores already-validated recipes (see presets.DecodeYAML).
// Each one is a separate Put; a failure part way leaves the earlier ones
// stored and reports how many landed.
func (p *Pages) ImportRecipes(ctx context.Context, recipes []record.Recipe) (Result, error) {
	now := record.Millis(p.now())
	for i, r := range recipes {
		if r.CreatedAt == 0 {
			r.CreatedAt = now
		}
		if err := p.store.Put(ctx, record.CollectionRecipes, r); err != nil {
			return Result{}, fmt.Errorf("imported %d of %d recipes: %w", i, len(recipes), err)
		}
	}
	p.logger.Info("imported recipes", zap.Int("count", len(recipes)))
	return Result{Message: fmt.Sprintf("Imported %d recipes.", len(recipes)), Next: Recipes}, nil
}
