package record

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Collection names a partition of the local store.
type Collection string

const (
	CollectionConfig      Collection = "config"
	CollectionRecipes     Collection = "recipes"
	CollectionExperiments Collection = "experiments"
	CollectionOutcomes    Collection = "outcomes"
	CollectionLogs        Collection = "logs"
	CollectionTelemetry   Collection = "telemetry"
	CollectionHealth      Collection = "health"
)

// Collections returns every declared collection in schema order.
func Collections() []Collection {
	return []Collection{
		CollectionConfig,
		CollectionRecipes,
		CollectionExperiments,
		CollectionOutcomes,
		CollectionLogs,
		CollectionTelemetry,
		CollectionHealth,
	}
}

// Valid reports whether c is a declared collection.
func (c Collection) Valid() bool {
	for _, known := range Collections() {
		if c == known {
			return true
		}
	}
	return false
}

// Config record ids. At most one record exists per id.
const (
	ConfigGlobal       = "global"
	ConfigIntegrations = "integrations"
	ConfigAgents       = "agents"
	ConfigOptimization = "optimization"
)

// Seed record ids.
const (
	TelemetryDemo = "demo"
	HealthAgents  = "agents"
)

// Mode selects whether integrations are simulated or real.
type Mode string

const (
	ModeMock Mode = "mock"
	ModeReal Mode = "real"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeMock || m == ModeReal
}

// DefaultProject is used when the welcome form leaves the project blank.
const DefaultProject = "Executive Briefing Pilot"

// GlobalConfig is config/global, written by the Welcome page.
type GlobalConfig struct {
	ID        string `json:"id"`
	Mode      Mode   `json:"mode"`
	Project   string `json:"project"`
	UpdatedAt int64  `json:"updated_at"`
}

// IntegrationsConfig is config/integrations: MCP tool server URLs.
// The wizard only stores these; nothing dials them.
type IntegrationsConfig struct {
	ID     string `json:"id"`
	Slack  string `json:"slack"`
	Zoom   string `json:"zoom"`
	GitHub string `json:"github"`
	GDrive string `json:"gdrive"`
	Snow   string `json:"snow"`
	Search string `json:"search"`
}

// AgentsConfig is config/agents: the agent names enabled for the pilot.
type AgentsConfig struct {
	ID      string   `json:"id"`
	Enabled []string `json:"enabled"`
}

// OptimizationConfig is config/optimization.
type OptimizationConfig struct {
	ID       string   `json:"id"`
	KPIs     []string `json:"kpis"`
	Strategy Strategy `json:"strategy"`
	Notes    string   `json:"notes"`
}

// Strategy is the bandit strategy used to compare recipes.
type Strategy string

const (
	StrategyEpsilonGreedy Strategy = "epsilon_greedy"
	StrategyUniformAB     Strategy = "uniform_ab"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyEpsilonGreedy || s == StrategyUniformAB
}

// Recipe is a tunable room/scene experiment stored in the recipes collection.
type Recipe struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Hypothesis string         `json:"hypothesis"`
	Knobs      map[string]any `json:"knobs"`
	Metrics    Metrics        `json:"metrics"`
	Guardrails Guardrails     `json:"guardrails"`
	Risk       string         `json:"risk"`
	AppliesTo  []string       `json:"applies_to,omitempty"`
	Tags       []string       `json:"tags"`
	CreatedAt  int64          `json:"created_at,omitempty"`
}

// Metrics names the KPI a recipe optimizes and the ones it watches.
type Metrics struct {
	Primary   string   `json:"primary"`
	Secondary []string `json:"secondary,omitempty"`
}

// Guardrails bound how far a recipe may move and when it rolls back.
type Guardrails struct {
	RollbackIf    string  `json:"rollback_if"`
	MaxStepChange float64 `json:"max_step_change,omitempty"`
}

// Telemetry is the seeded weekly demo series backing the dashboard.
type Telemetry struct {
	ID              string          `json:"id"`
	MTTRMin         []float64       `json:"mttrMin"`
	Readiness       []float64       `json:"readiness"`
	FailedStarts    []float64       `json:"failedStarts"`
	AutoResolves    []float64       `json:"autoResolves"`
	IncidentsByRoom []RoomIncidents `json:"incidentsByRoom"`
	Preflights      []Preflight     `json:"preflights"`
	TS              int64           `json:"ts"`
}

// RoomIncidents counts incidents for one room.
type RoomIncidents struct {
	Room  string `json:"room"`
	Count int    `json:"count"`
}

// Preflight is the pre-event check summary for one upcoming event.
type Preflight struct {
	Event  string `json:"event"`
	Status string `json:"status"`
	Checks int    `json:"checks"`
	Issues int    `json:"issues"`
}

// Health is the seeded agent health table.
type Health struct {
	ID    string        `json:"id"`
	Items []AgentHealth `json:"items"`
}

// AgentHealth is one row of the health table.
type AgentHealth struct {
	Name      string  `json:"name"`
	P95Ms     int     `json:"p95_ms"`
	ErrorRate float64 `json:"error_rate"`
	Status    string  `json:"status"`
	Desc      string  `json:"desc"`
}

// LogEntry is one line posted by a background agent.
type LogEntry struct {
	ID  string `json:"id"`
	TS  int64  `json:"ts"`
	Msg string `json:"msg"`
}

// Millis converts t to epoch milliseconds.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// CleanText NFC-normalizes and trims free-form input so the same visible
// text always persists as the same bytes.
func CleanText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
