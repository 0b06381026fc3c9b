package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollections_Declared(t *testing.T) {
	names := []string{}
	for _, c := range Collections() {
		names = append(names, string(c))
		assert.True(t, c.Valid())
	}
	assert.Equal(t, []string{"config", "recipes", "experiments", "outcomes", "logs", "telemetry", "health"}, names)
	assert.False(t, Collection("widgets").Valid())
}

func TestAgentCatalog(t *testing.T) {
	names := AgentNames()
	require.Len(t, names, 9)
	assert.Equal(t, "conductor", names[0])
	assert.Equal(t, "kb-recipe-scout", names[8])
	assert.True(t, IsAgent("events"))
	assert.False(t, IsAgent("janitor"))

	// Callers get a copy.
	names[0] = "mutated"
	assert.Equal(t, "conductor", AgentNames()[0])
}

func TestKPICatalog(t *testing.T) {
	assert.Len(t, KPIs(), 6)
	assert.True(t, IsKPI("csat"))
	assert.False(t, IsKPI("nps"))
}

func TestModeAndStrategy(t *testing.T) {
	assert.True(t, ModeMock.Valid())
	assert.True(t, ModeReal.Valid())
	assert.False(t, Mode("hybrid").Valid())
	assert.True(t, StrategyUniformAB.Valid())
	assert.False(t, Strategy("thompson").Valid())
	assert.Equal(t, StrategyEpsilonGreedy, Strategies()[0])
}

func TestCleanText(t *testing.T) {
	// "e" + combining acute accent composes to a single rune under NFC.
	assert.Equal(t, "Caf\u00e9", CleanText("  Cafe\u0301 \n"))
	assert.Equal(t, "", CleanText("   "))
}

func TestGlobalConfig_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(GlobalConfig{ID: ConfigGlobal, Mode: ModeMock, Project: "Pilot A", UpdatedAt: 42})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"global","mode":"mock","project":"Pilot A","updated_at":42}`, string(data))
}

func TestTelemetry_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Telemetry{ID: TelemetryDemo})
	require.NoError(t, err)
	for _, field := range []string{"mttrMin", "readiness", "failedStarts", "autoResolves", "incidentsByRoom", "preflights", "ts"} {
		assert.Contains(t, string(data), `"`+field+`"`)
	}
}
