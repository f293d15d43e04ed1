// Package viewstate holds the filter selections of a view and their URL query
// string form, so a shared link reproduces the same filtered view.
package viewstate

import (
	"fmt"
	"net/url"
	"strings"

	"riskview/internal/projector"
)

// Query keys.
const (
	KeySearch     = "search"
	KeyType       = "type"
	KeyDepartment = "department"
	KeyRisk       = "risk"
	KeyStatus     = "status"
	KeySeverity   = "severity"
)

// State is the filter configuration owned by one view.
type State struct {
	SearchTerm string
	Type       string
	Department string
	RiskLevel  string
	Status     string
	Severity   string
}

// Default returns the state that matches every record.
func Default() State {
	return FromFilters(projector.DefaultFilters())
}

// FromFilters converts projector filters into a state.
func FromFilters(f projector.Filters) State {
	return State{
		SearchTerm: f.SearchTerm,
		Type:       orAll(f.Type),
		Department: orAll(f.Department),
		RiskLevel:  orAll(f.RiskLevel),
		Status:     orAll(f.Status),
		Severity:   orAll(f.Severity),
	}
}

// Filters returns the projector filters for this state.
func (s State) Filters() projector.Filters {
	return projector.Filters{
		SearchTerm: s.SearchTerm,
		Type:       orAll(s.Type),
		Department: orAll(s.Department),
		RiskLevel:  orAll(s.RiskLevel),
		Status:     orAll(s.Status),
		Severity:   orAll(s.Severity),
	}
}

// Encode renders the state as a query string. Keys at their default value are
// omitted; the output is sorted by key.
func (s State) Encode() string {
	v := url.Values{}
	if s.SearchTerm != "" {
		v.Set(KeySearch, s.SearchTerm)
	}
	setUnlessAll(v, KeyType, s.Type)
	setUnlessAll(v, KeyDepartment, s.Department)
	setUnlessAll(v, KeyRisk, s.RiskLevel)
	setUnlessAll(v, KeyStatus, s.Status)
	setUnlessAll(v, KeySeverity, s.Severity)
	return v.Encode()
}

// Decode parses a query string produced by Encode. A leading "?" is allowed.
// Missing keys take their default value.
func Decode(raw string) (State, error) {
	v, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return State{}, fmt.Errorf("parse filter query: %w", err)
	}
	return FromValues(v)
}

// FromValues builds a state from parsed query values and validates it.
func FromValues(v url.Values) (State, error) {
	s := State{
		SearchTerm: v.Get(KeySearch),
		Type:       orAll(v.Get(KeyType)),
		Department: orAll(v.Get(KeyDepartment)),
		RiskLevel:  orAll(v.Get(KeyRisk)),
		Status:     orAll(v.Get(KeyStatus)),
		Severity:   orAll(v.Get(KeySeverity)),
	}
	if err := s.Filters().Validate(); err != nil {
		return State{}, err
	}
	return s, nil
}

func setUnlessAll(v url.Values, key, value string) {
	if value != "" && value != projector.All {
		v.Set(key, value)
	}
}

func orAll(v string) string {
	if v == "" {
		return projector.All
	}
	return v
}
