package riskrules

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"riskview/pkg/models"
)

var (
	// ErrRuleNotFound is returned for operations on an unknown rule id.
	ErrRuleNotFound = errors.New("rule not found")
	// ErrInvalidWeightage is returned for weightage outside 1-50.
	ErrInvalidWeightage = fmt.Errorf("weightage must be between %d and %d", models.MinWeightage, models.MaxWeightage)
)

const defaultWeightage = 10

var (
	ruleIDPattern = regexp.MustCompile(`^RULE-(\d+)$`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// Book is the local set of risk rules. It is safe for concurrent use.
type Book struct {
	mu    sync.RWMutex
	rules []models.RiskRule
}

// Stats summarizes a rule book.
type Stats struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	HighSeverity int `json:"highSeverity"`
	AvgWeightage int `json:"avgWeightage"`
}

// NewBook creates a book holding copies of rules.
func NewBook(rules []models.RiskRule) *Book {
	b := &Book{rules: make([]models.RiskRule, 0, len(rules))}
	for _, r := range rules {
		b.rules = append(b.rules, cloneRule(r))
	}
	return b
}

// List returns a copy of all rules in creation order.
func (b *Book) List() []models.RiskRule {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.RiskRule, 0, len(b.rules))
	for _, r := range b.rules {
		out = append(out, cloneRule(r))
	}
	return out
}

// Get returns one rule.
func (b *Book) Get(id string) (models.RiskRule, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	idx := b.index(id)
	if idx < 0 {
		return models.RiskRule{}, ErrRuleNotFound
	}
	return cloneRule(b.rules[idx]), nil
}

// Create adds a rule and returns it with its assigned id.
func (b *Book) Create(r models.RiskRule) (models.RiskRule, error) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return models.RiskRule{}, errors.New("rule name is required")
	}
	if r.Weightage == 0 {
		r.Weightage = defaultWeightage
	}
	if !validWeightage(r.Weightage) {
		return models.RiskRule{}, ErrInvalidWeightage
	}
	if r.Severity == "" {
		r.Severity = models.RuleMedium
	}
	if !models.IsRuleSeverity(string(r.Severity)) {
		return models.RiskRule{}, fmt.Errorf("invalid rule severity %q", r.Severity)
	}
	if r.Trigger == "" {
		r.Trigger = TriggerFor(r.Name)
	}
	r.Conditions = nonEmpty(r.Conditions)
	r.Actions = nonEmpty(r.Actions)

	b.mu.Lock()
	defer b.mu.Unlock()

	r.ID = b.nextID()
	b.rules = append(b.rules, cloneRule(r))
	return cloneRule(r), nil
}

// Toggle flips the enabled flag of a rule.
func (b *Book) Toggle(id string) (models.RiskRule, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.index(id)
	if idx < 0 {
		return models.RiskRule{}, ErrRuleNotFound
	}
	b.rules[idx].Enabled = !b.rules[idx].Enabled
	return cloneRule(b.rules[idx]), nil
}

// SetWeightage changes the score contribution of a rule.
func (b *Book) SetWeightage(id string, weightage int) (models.RiskRule, error) {
	if !validWeightage(weightage) {
		return models.RiskRule{}, ErrInvalidWeightage
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.index(id)
	if idx < 0 {
		return models.RiskRule{}, ErrRuleNotFound
	}
	b.rules[idx].Weightage = weightage
	return cloneRule(b.rules[idx]), nil
}

// Delete removes a rule.
func (b *Book) Delete(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.index(id)
	if idx < 0 {
		return ErrRuleNotFound
	}
	b.rules = append(b.rules[:idx], b.rules[idx+1:]...)
	return nil
}

// Stats returns the summary shown above the rule list.
func (b *Book) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := Stats{Total: len(b.rules)}
	sum := 0
	for _, r := range b.rules {
		if r.Enabled {
			s.Active++
		}
		if r.Severity == models.RuleHigh {
			s.HighSeverity++
		}
		sum += r.Weightage
	}
	if s.Total > 0 {
		s.AvgWeightage = int(math.Round(float64(sum) / float64(s.Total)))
	}
	return s
}

// CompositeScore sums the weightage of enabled rules named in triggered,
// matching on rule name or trigger, capped at the maximum risk score.
func (b *Book) CompositeScore(triggered []string) int {
	if len(triggered) == 0 {
		return 0
	}
	names := make(map[string]struct{}, len(triggered))
	for _, t := range triggered {
		names[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	score := 0
	for _, r := range b.rules {
		if !r.Enabled {
			continue
		}
		_, byName := names[strings.ToLower(r.Name)]
		_, byTrigger := names[strings.ToLower(r.Trigger)]
		if byName || byTrigger {
			score += r.Weightage
		}
	}
	return models.ClampScore(score)
}

// TriggerFor derives the trigger key of a rule from its name.
func TriggerFor(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
}

func (b *Book) index(id string) int {
	for i := range b.rules {
		if b.rules[i].ID == id {
			return i
		}
	}
	return -1
}

// nextID numbers after the highest existing id so deleted ids are never reused.
func (b *Book) nextID() string {
	highest := 0
	for _, r := range b.rules {
		m := ruleIDPattern.FindStringSubmatch(r.ID)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("RULE-%03d", highest+1)
}

func validWeightage(w int) bool {
	return w >= models.MinWeightage && w <= models.MaxWeightage
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func cloneRule(r models.RiskRule) models.RiskRule {
	r.Conditions = append([]string{}, r.Conditions...)
	r.Actions = append([]string{}, r.Actions...)
	return r
}
