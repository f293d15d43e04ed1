package riskrules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"riskview/pkg/models"
)

// RuleFile is the YAML layout of a rule seed file.
type RuleFile struct {
	Version int               `yaml:"version"`
	Rules   []models.RiskRule `yaml:"rules"`
}

// LoadFile reads rules from a YAML file and fills per-rule defaults.
func LoadFile(path string) ([]models.RiskRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	var rf RuleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse rule file: %w", err)
	}

	seen := make(map[string]struct{}, len(rf.Rules))
	for i := range rf.Rules {
		r := &rf.Rules[i]
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			return nil, fmt.Errorf("rule %d: name is required", i+1)
		}
		if r.ID == "" {
			r.ID = fmt.Sprintf("RULE-%03d", i+1)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("rule %s: duplicate id", r.ID)
		}
		seen[r.ID] = struct{}{}
		if r.Weightage == 0 {
			r.Weightage = defaultWeightage
		}
		if !validWeightage(r.Weightage) {
			return nil, fmt.Errorf("rule %s: %w", r.ID, ErrInvalidWeightage)
		}
		if r.Severity == "" {
			r.Severity = models.RuleMedium
		}
		if !models.IsRuleSeverity(string(r.Severity)) {
			return nil, fmt.Errorf("rule %s: invalid severity %q", r.ID, r.Severity)
		}
		if r.Trigger == "" {
			r.Trigger = TriggerFor(r.Name)
		}
		r.Conditions = nonEmpty(r.Conditions)
		r.Actions = nonEmpty(r.Actions)
	}
	return rf.Rules, nil
}

// DefaultRules returns the rule set a fresh installation starts with.
func DefaultRules() []models.RiskRule {
	return []models.RiskRule{
		{
			ID: "RULE-001", Name: "After Hours Access", Category: "Time-based", Weightage: 15, Enabled: true,
			Description: "Detects access to systems outside normal business hours",
			Trigger:     "time_based", Severity: models.RuleMedium,
			Conditions: []string{"Time < 06:00 OR Time > 22:00", "User role != Security"},
			Actions:    []string{"Increase risk score by 15", "Send notification to admin"},
		},
		{
			ID: "RULE-002", Name: "Multiple Failed Logins", Category: "Authentication", Weightage: 25, Enabled: true,
			Description: "Detects multiple consecutive failed login attempts",
			Trigger:     "authentication", Severity: models.RuleHigh,
			Conditions: []string{"Failed attempts >= 5", "Time window <= 10 minutes"},
			Actions:    []string{"Increase risk score by 25", "Lock account temporarily", "Alert security team"},
		},
		{
			ID: "RULE-003", Name: "Unusual File Access", Category: "Data Access", Weightage: 20, Enabled: true,
			Description: "Detects access to files outside user's normal pattern",
			Trigger:     "file_access", Severity: models.RuleHigh,
			Conditions: []string{"File classification = Confidential", "Access from new location"},
			Actions:    []string{"Increase risk score by 20", "Log detailed access"},
		},
		{
			ID: "RULE-004", Name: "Privilege Escalation", Category: "Authorization", Weightage: 30, Enabled: true,
			Description: "Detects attempts to gain higher privileges",
			Trigger:     "privilege_change", Severity: models.RuleHigh,
			Conditions: []string{"Permission change detected", "User role elevation"},
			Actions:    []string{"Increase risk score by 30", "Immediate admin alert", "Block escalation"},
		},
		{
			ID: "RULE-005", Name: "External USB Detection", Category: "Device", Weightage: 10, Enabled: false,
			Description: "Detects connection of external storage devices",
			Trigger:     "device_connection", Severity: models.RuleLow,
			Conditions: []string{"USB device connected", "Device not whitelisted"},
			Actions:    []string{"Increase risk score by 10", "Log device details"},
		},
	}
}
