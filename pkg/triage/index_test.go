package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/api"
)

func TestSortStability(t *testing.T) {
	ix := NewIndex([]api.Alert{
		{AlertID: "1", RiskScore: 10},
		{AlertID: "2", RiskScore: 10},
		{AlertID: "3", RiskScore: 5},
	})

	got := ix.Apply(ViewConfig{SortKey: SortByRisk, SortDir: SortAsc, Preset: PresetAll})
	require.Len(t, got, 3)
	// Equal-risk rows keep their original relative order.
	assert.Equal(t, "3", got[0].AlertID)
	assert.Equal(t, "1", got[1].AlertID)
	assert.Equal(t, "2", got[2].AlertID)
}

func TestSortStabilityDescending(t *testing.T) {
	ix := NewIndex([]api.Alert{
		{AlertID: "1", RiskScore: 10},
		{AlertID: "2", RiskScore: 10},
		{AlertID: "3", RiskScore: 5},
	})

	got := ix.Apply(ViewConfig{SortKey: SortByRisk, SortDir: SortDesc, Preset: PresetAll})
	require.Len(t, got, 3)
	assert.Equal(t, "1", got[0].AlertID)
	assert.Equal(t, "2", got[1].AlertID)
	assert.Equal(t, "3", got[2].AlertID)
}

func TestHighRiskPresetBoundary(t *testing.T) {
	ix := NewIndex([]api.Alert{
		{AlertID: "a", RiskScore: 799},
		{AlertID: "b", RiskScore: 800},
		{AlertID: "c", RiskScore: 801},
	})

	got := ix.Apply(ViewConfig{SortKey: SortByRisk, SortDir: SortAsc, Preset: PresetHighRisk})
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].AlertID)
	assert.Equal(t, "c", got[1].AlertID)
}

func TestSearchMatchesIDAndDescription(t *testing.T) {
	ix := NewIndex([]api.Alert{
		{AlertID: "ALRT-001", Description: "Unusual wire transfer"},
		{AlertID: "ALRT-002", Description: "Card testing burst"},
		{AlertID: "FRD-777", Description: "wire to new beneficiary"},
	})

	cfg := DefaultViewConfig()
	cfg.Search = "WIRE"
	got := ix.Apply(cfg)
	require.Len(t, got, 2, "search is case-insensitive over id and description")

	cfg.Search = "alrt-002"
	got = ix.Apply(cfg)
	require.Len(t, got, 1)
	assert.Equal(t, "ALRT-002", got[0].AlertID)
}

func TestPresetPredicates(t *testing.T) {
	ix := NewIndex([]api.Alert{
		{AlertID: "a", RuleID: "CARD-VELOCITY", RiskScore: 100},
		{AlertID: "b", RuleID: "ATO-LOGIN", RiskScore: 100},
		{AlertID: "c", RuleID: "WIRE-01", Description: "possible account takeover", RiskScore: 100},
	})

	cfg := DefaultViewConfig()
	cfg.Preset = PresetCardTesting
	got := ix.Apply(cfg)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].AlertID)

	cfg.Preset = PresetAccountTakeover
	got = ix.Apply(cfg)
	require.Len(t, got, 2)
}

func TestApplyDoesNotMutateSource(t *testing.T) {
	alerts := []api.Alert{
		{AlertID: "1", RiskScore: 1},
		{AlertID: "2", RiskScore: 2},
	}
	ix := NewIndex(alerts)
	ix.Apply(ViewConfig{SortKey: SortByRisk, SortDir: SortDesc, Preset: PresetAll})

	assert.Equal(t, "1", alerts[0].AlertID, "source order must be preserved")
	assert.Equal(t, "1", ix.Alerts()[0].AlertID)
}

func TestSortMissingValuesAsZero(t *testing.T) {
	ix := NewIndex([]api.Alert{
		{AlertID: "has", Amount: 50},
		{AlertID: "missing"},
	})
	got := ix.Apply(ViewConfig{SortKey: SortByAmount, SortDir: SortAsc, Preset: PresetAll})
	require.Len(t, got, 2)
	assert.Equal(t, "missing", got[0].AlertID)
}

func TestSortByDate(t *testing.T) {
	ix := NewIndex([]api.Alert{
		{AlertID: "new", Timestamps: map[string]string{"alertDate": "2025-12-01"}},
		{AlertID: "old", Timestamps: map[string]string{"alertDate": "2025-01-15"}},
		{AlertID: "none"},
	})
	got := ix.Apply(ViewConfig{SortKey: SortByDate, SortDir: SortAsc, Preset: PresetAll})
	require.Len(t, got, 3)
	assert.Equal(t, "none", got[0].AlertID, "missing date sorts as epoch")
	assert.Equal(t, "old", got[1].AlertID)
	assert.Equal(t, "new", got[2].AlertID)
}

func TestNormalizeDiscardsUnknownValues(t *testing.T) {
	cfg := ViewConfig{
		Search:  "keepme",
		SortKey: "bogus",
		SortDir: "sideways",
		Preset:  "not-a-preset",
	}.Normalize()

	d := DefaultViewConfig()
	assert.Equal(t, "keepme", cfg.Search, "free text survives")
	assert.Equal(t, d.SortKey, cfg.SortKey)
	assert.Equal(t, d.SortDir, cfg.SortDir)
	assert.Equal(t, d.Preset, cfg.Preset)
}

func TestNormalizeKeepsValidValues(t *testing.T) {
	cfg := ViewConfig{SortKey: SortByAmount, SortDir: SortAsc, Preset: PresetHighRisk}.Normalize()
	assert.Equal(t, SortByAmount, cfg.SortKey)
	assert.Equal(t, SortAsc, cfg.SortDir)
	assert.Equal(t, PresetHighRisk, cfg.Preset)
}
