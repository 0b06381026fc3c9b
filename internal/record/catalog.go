package record

// AgentInfo describes one simulated agent offered on the Agents page.
type AgentInfo struct {
	Name string
	Desc string
}

var agentCatalog = []AgentInfo{
	{"conductor", "Routes tasks, approvals, and SLAs across agents"},
	{"support-requests", "/avhelp intake, triage, targeted actions"},
	{"incidents", "Self-heal runbooks + escalation with artifacts"},
	{"projects", "Builds/changes stories, tasks, and CMDB links"},
	{"events", "Event planning, rehearsals, live ops, postmortems"},
	{"recipe-library", "YAML recipes; schema guardrails; promotions"},
	{"baseline-dashboards", "Telemetry snapshots and KPI cards"},
	{"incident-outcome-mapper", "Correlation views: incidents + outcomes"},
	{"kb-recipe-scout", "Web search, KB synth, add recipe, create ServiceNow KB"},
}

// Agents returns the agent catalog in display order.
func Agents() []AgentInfo {
	out := make([]AgentInfo, len(agentCatalog))
	copy(out, agentCatalog)
	return out
}

// AgentNames returns the catalog names in display order.
func AgentNames() []string {
	names := make([]string, len(agentCatalog))
	for i, a := range agentCatalog {
		names[i] = a.Name
	}
	return names
}

// IsAgent reports whether name is in the agent catalog.
func IsAgent(name string) bool {
	for _, a := range agentCatalog {
		if a.Name == name {
			return true
		}
	}
	return false
}

// KPI names offered on the Optimization page, in display order.
var kpiCatalog = []string{
	"decision_reached",
	"followup_booked",
	"csat",
	"engagement_proxy",
	"issue_rate_per_100",
	"join_latency_s",
}

// KPIs returns the KPI catalog in display order.
func KPIs() []string {
	out := make([]string, len(kpiCatalog))
	copy(out, kpiCatalog)
	return out
}

// IsKPI reports whether name is in the KPI catalog.
func IsKPI(name string) bool {
	for _, k := range kpiCatalog {
		if k == name {
			return true
		}
	}
	return false
}

// Strategies returns the selectable bandit strategies, default first.
func Strategies() []Strategy {
	return []Strategy{StrategyEpsilonGreedy, StrategyUniformAB}
}

// DefaultIntegrations returns the local MCP endpoints pre-filled on the
// Integrations page.
func DefaultIntegrations() IntegrationsConfig {
	return IntegrationsConfig{
		ID:     ConfigIntegrations,
		Slack:  "http://localhost:8401",
		Zoom:   "http://localhost:8402",
		GitHub: "http://localhost:8403",
		GDrive: "http://localhost:8404",
		Snow:   "http://localhost:8405",
		Search: "http://localhost:8406",
	}
}
