package riskrules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskview/pkg/models"
)

func TestDefaultBookStats(t *testing.T) {
	b := NewBook(DefaultRules())
	assert.Equal(t, Stats{Total: 5, Active: 4, HighSeverity: 3, AvgWeightage: 20}, b.Stats())
}

func TestEmptyBookStatsAreZero(t *testing.T) {
	assert.Equal(t, Stats{}, NewBook(nil).Stats())
}

func TestCreateAssignsNextIDAndDefaults(t *testing.T) {
	b := NewBook(DefaultRules())
	require.NoError(t, b.Delete("RULE-003"))

	r, err := b.Create(models.RiskRule{Name: "Impossible  Travel", Enabled: true, Conditions: []string{"", "Distance > 1000km"}})
	require.NoError(t, err)

	assert.Equal(t, "RULE-006", r.ID)
	assert.Equal(t, 10, r.Weightage)
	assert.Equal(t, models.RuleMedium, r.Severity)
	assert.Equal(t, "impossible_travel", r.Trigger)
	assert.Equal(t, []string{"Distance > 1000km"}, r.Conditions)
	assert.Len(t, b.List(), 5)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	b := NewBook(nil)

	_, err := b.Create(models.RiskRule{Name: " "})
	assert.Error(t, err)

	_, err = b.Create(models.RiskRule{Name: "x", Weightage: 51})
	assert.ErrorIs(t, err, ErrInvalidWeightage)

	_, err = b.Create(models.RiskRule{Name: "x", Severity: "critical"})
	assert.Error(t, err)
}

func TestToggleWeightageDelete(t *testing.T) {
	b := NewBook(DefaultRules())

	r, err := b.Toggle("RULE-005")
	require.NoError(t, err)
	assert.True(t, r.Enabled)

	r, err = b.SetWeightage("RULE-005", 42)
	require.NoError(t, err)
	assert.Equal(t, 42, r.Weightage)

	_, err = b.SetWeightage("RULE-005", 0)
	assert.ErrorIs(t, err, ErrInvalidWeightage)

	require.NoError(t, b.Delete("RULE-005"))
	_, err = b.Get("RULE-005")
	assert.ErrorIs(t, err, ErrRuleNotFound)
	assert.ErrorIs(t, b.Delete("RULE-005"), ErrRuleNotFound)
	_, err = b.Toggle("RULE-404")
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestListReturnsCopies(t *testing.T) {
	b := NewBook(DefaultRules())
	list := b.List()
	list[0].Conditions[0] = "mutated"
	list[0].Enabled = false

	r, err := b.Get("RULE-001")
	require.NoError(t, err)
	assert.True(t, r.Enabled)
	assert.Equal(t, "Time < 06:00 OR Time > 22:00", r.Conditions[0])
}

func TestCompositeScore(t *testing.T) {
	b := NewBook(DefaultRules())

	assert.Equal(t, 0, b.CompositeScore(nil))
	assert.Equal(t, 40, b.CompositeScore([]string{"After Hours Access", "authentication"}))
	// disabled rule contributes nothing
	assert.Equal(t, 0, b.CompositeScore([]string{"External USB Detection"}))

	for _, id := range []string{"RULE-001", "RULE-002", "RULE-003", "RULE-004"} {
		_, err := b.SetWeightage(id, 50)
		require.NoError(t, err)
	}
	all := []string{"After Hours Access", "Multiple Failed Logins", "Unusual File Access", "Privilege Escalation"}
	assert.Equal(t, 100, b.CompositeScore(all))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yml")
	body := `version: 1
rules:
  - name: Geo Velocity
    category: Authentication
    weightage: 35
    enabled: true
    severity: high
    conditions: ["Two logins > 500km apart within 1h"]
  - id: RULE-010
    name: Mass Download
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	rules, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, "RULE-001", rules[0].ID)
	assert.Equal(t, "geo_velocity", rules[0].Trigger)
	assert.Equal(t, models.RuleHigh, rules[0].Severity)
	assert.Equal(t, "RULE-010", rules[1].ID)
	assert.Equal(t, 10, rules[1].Weightage)
	assert.Equal(t, models.RuleMedium, rules[1].Severity)

	r, err := NewBook(rules).Create(models.RiskRule{Name: "Next"})
	require.NoError(t, err)
	assert.Equal(t, "RULE-011", r.ID)
}

func TestLoadFileRejectsBadWeightage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - name: x\n    weightage: 99\n"), 0o644))

	_, err := LoadFile(path)
	assert.ErrorIs(t, err, ErrInvalidWeightage)
}
