// Package record defines the records persisted by the wizard and the fixed
// catalogs the pages offer (agents, KPIs, strategies, integration endpoints).
//
// Every record is a JSON object keyed by an "id" field. Collection names and
// field names are part of the persisted layout and must not change:
//
//   - config:      GlobalConfig, IntegrationsConfig, AgentsConfig, OptimizationConfig
//   - recipes:     Recipe
//   - telemetry:   Telemetry ("demo")
//   - health:      Health ("agents")
//   - logs:        LogEntry
//   - experiments, outcomes: declared, never written by the wizard
//
// Timestamps are epoch milliseconds so exported snapshots stay compatible with
// databases written by the browser build.
package record
