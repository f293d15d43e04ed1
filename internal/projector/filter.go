package projector

import (
	"strings"

	"riskview/pkg/models"
)

// All matches every value of a category filter.
const All = "all"

// Filters is the active filter set of a view. Empty category values behave
// like All.
type Filters struct {
	SearchTerm string `json:"search"`
	Type       string `json:"type"`
	Department string `json:"department"`
	RiskLevel  string `json:"riskLevel"`
	Status     string `json:"status"`
	Severity   string `json:"severity"`
}

// DefaultFilters matches everything.
func DefaultFilters() Filters {
	return Filters{Type: All, Department: All, RiskLevel: All, Status: All, Severity: All}
}

// Validate checks the enumerated filter values. Type, department and status
// are free-form because entities and alerts use different vocabularies.
func (f Filters) Validate() error {
	if !isAll(f.RiskLevel) && !models.IsBand(f.RiskLevel) {
		return &ValidationError{Field: "riskLevel", Value: f.RiskLevel}
	}
	if !isAll(f.Severity) && !models.IsSeverity(f.Severity) {
		return &ValidationError{Field: "severity", Value: f.Severity}
	}
	return nil
}

// MatchEntity reports whether an entity passes every criterion.
func (f Filters) MatchEntity(e models.Entity) bool {
	return matchSearch(f.SearchTerm, e.Name, e.ID) &&
		matchValue(f.Type, string(e.Type)) &&
		matchValue(f.Department, e.Department) &&
		matchBand(f.RiskLevel, e.RiskScore)
}

// MatchAlert reports whether an alert passes every criterion.
func (f Filters) MatchAlert(a models.Alert) bool {
	return matchSearch(f.SearchTerm, a.Title, a.ID) &&
		matchValue(f.Type, a.Type) &&
		matchBand(f.RiskLevel, a.RiskScore) &&
		matchValue(f.Status, string(a.Status)) &&
		matchValue(f.Severity, string(a.Severity))
}

// FilterEntities returns the entities passing f, in input order.
func FilterEntities(in []models.Entity, f Filters) []models.Entity {
	return filterSlice(in, f.MatchEntity)
}

// FilterAlerts returns the alerts passing f, in input order.
func FilterAlerts(in []models.Alert, f Filters) []models.Alert {
	return filterSlice(in, f.MatchAlert)
}

func filterSlice[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, item := range in {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func isAll(v string) bool {
	return v == "" || v == All
}

func matchSearch(term, name, id string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), term) || strings.Contains(strings.ToLower(id), term)
}

func matchValue(want, got string) bool {
	return isAll(want) || want == got
}

func matchBand(level string, score int) bool {
	return isAll(level) || models.RiskBand(level) == models.BandFor(score)
}
