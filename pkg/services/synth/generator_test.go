package synth

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/trade-sentinel/pkg/models/domain"
	"github.com/de-tools/trade-sentinel/pkg/services/rules"
	"github.com/de-tools/trade-sentinel/pkg/services/stats"
)

func TestGenerator_Deterministic(t *testing.T) {
	settings := Settings{Count: 50, Anomalies: 6, Seed: 42}

	first, firstTruth, err := NewGenerator(settings).Generate()
	require.NoError(t, err)
	second, secondTruth, err := NewGenerator(settings).Generate()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstTruth, secondTruth)

	settings.Seed = 43
	other, _, err := NewGenerator(settings).Generate()
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestGenerator_CleanBatchPassesRuleChecks(t *testing.T) {
	batch, truth, err := NewGenerator(Settings{Count: 150, Anomalies: 0, Seed: 7}).Generate()
	require.NoError(t, err)
	require.Len(t, batch, 150)
	assert.Empty(t, truth)

	engine := rules.NewEngine(rules.DefaultSettings())
	for _, s := range batch {
		findings, errs := engine.Evaluate(s)
		assert.Empty(t, findings, "shipment %s should be clean", s.ID)
		assert.Empty(t, errs, "shipment %s should have no quality gaps", s.ID)
	}
}

func TestGenerator_PlantsRequestedAnomalies(t *testing.T) {
	batch, truth, err := NewGenerator(Settings{Count: 120, Anomalies: 24, Seed: 3}).Generate()
	require.NoError(t, err)

	ids := make(map[string]struct{}, len(batch))
	for _, s := range batch {
		ids[s.ID] = struct{}{}
	}

	planted := make(map[string]struct{})
	categories := make(map[domain.Category]struct{})
	for _, p := range truth {
		planted[p.ShipmentID] = struct{}{}
		categories[p.Category] = struct{}{}
		assert.Contains(t, ids, p.ShipmentID)
	}

	assert.Len(t, planted, 24, "each corrupted record should appear in the truth")
	for _, category := range domain.Categories() {
		assert.Contains(t, categories, category)
	}

	assert.True(t, sort.SliceIsSorted(truth, func(i, j int) bool {
		if truth[i].ShipmentID != truth[j].ShipmentID {
			return truth[i].ShipmentID < truth[j].ShipmentID
		}
		return truth[i].Category < truth[j].Category
	}))
}

func TestGenerator_PlantedAnomaliesAreDetectable(t *testing.T) {
	batch, _, err := NewGenerator(Settings{Count: 200, Anomalies: 24, Seed: 11}).Generate()
	require.NoError(t, err)

	ruleHits := make(map[string]int)
	engine := rules.NewEngine(rules.DefaultSettings())
	for _, s := range batch {
		findings, _ := engine.Evaluate(s)
		for _, f := range findings {
			ruleHits[f.RuleID]++
		}
	}

	statFindings, _ := stats.NewDetector(stats.DefaultSettings()).Detect(batch)
	for _, f := range statFindings {
		ruleHits[f.RuleID]++
	}

	for _, ruleID := range []string{
		rules.RulePriceMismatch,
		rules.RuleIncotermFreight,
		rules.RuleIncotermEXW,
		rules.RuleInvalidHSCode,
		rules.RuleExcessiveInsurance,
		rules.RuleInvalidDrawback,
		rules.RuleFOBInsurance,
		rules.RulePaymentInconsistent,
		stats.RulePriceOutlier,
		stats.RuleTransitOutlier,
		stats.RulePaymentOutlier,
	} {
		assert.Greaterf(t, ruleHits[ruleID], 0, "expected at least one %s hit", ruleID)
	}
}

func TestGenerator_InvalidSettings(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
	}{
		{name: "zero count", settings: Settings{Count: 0, Anomalies: 0, Seed: 1}},
		{name: "negative count", settings: Settings{Count: -5, Anomalies: 0, Seed: 1}},
		{name: "more anomalies than records", settings: Settings{Count: 10, Anomalies: 11, Seed: 1}},
		{name: "negative anomalies", settings: Settings{Count: 10, Anomalies: -1, Seed: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewGenerator(tt.settings).Generate()
			assert.Error(t, err)
		})
	}
}
