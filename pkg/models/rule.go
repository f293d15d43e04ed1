package models

// RuleSeverity is the severity vocabulary of risk rules.
type RuleSeverity string

const (
	RuleLow    RuleSeverity = "low"
	RuleMedium RuleSeverity = "medium"
	RuleHigh   RuleSeverity = "high"
)

const (
	MinWeightage = 1
	MaxWeightage = 50
)

// RiskRule is a locally configured scoring rule. Conditions and actions are
// descriptive text only.
type RiskRule struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description" yaml:"description"`
	Category    string       `json:"category" yaml:"category"`
	Weightage   int          `json:"weightage" yaml:"weightage"`
	Enabled     bool         `json:"enabled" yaml:"enabled"`
	Trigger     string       `json:"trigger" yaml:"trigger"`
	Severity    RuleSeverity `json:"severity" yaml:"severity"`
	Conditions  []string     `json:"conditions" yaml:"conditions"`
	Actions     []string     `json:"actions" yaml:"actions"`
}

// IsRuleSeverity reports whether raw is a rule severity.
func IsRuleSeverity(raw string) bool {
	switch RuleSeverity(raw) {
	case RuleLow, RuleMedium, RuleHigh:
		return true
	}
	return false
}
