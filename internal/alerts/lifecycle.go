package alerts

import (
	"errors"

	"riskview/pkg/models"
)

// ErrAlertNotFound is returned when a local action names an unknown alert.
var ErrAlertNotFound = errors.New("alert not found")

// Action is a local triage action.
type Action string

const (
	ActionAcknowledge Action = "acknowledge"
	ActionResolve     Action = "resolve"
)

// Next returns the status reached by applying action to from, and whether the
// status changed. Resolved is terminal; investigating is only entered from the
// backend, never by a local action.
func Next(from models.AlertStatus, action Action) (models.AlertStatus, bool) {
	switch action {
	case ActionAcknowledge:
		if from == models.AlertNew {
			return models.AlertAcknowledged, true
		}
	case ActionResolve:
		switch from {
		case models.AlertNew, models.AlertAcknowledged, models.AlertInvestigating:
			return models.AlertResolved, true
		}
	}
	return from, false
}

// Apply runs action against the alert with the given id and returns a new
// slice; the input is not modified. assignee is recorded on acknowledge.
func Apply(list []models.Alert, id string, action Action, assignee string) ([]models.Alert, bool, error) {
	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return list, false, ErrAlertNotFound
	}

	next, changed := Next(list[idx].Status, action)
	if !changed {
		return list, false, nil
	}

	out := make([]models.Alert, len(list))
	copy(out, list)
	out[idx].Status = next
	if action == ActionAcknowledge && assignee != "" {
		out[idx].AssignedTo = assignee
	}
	return out, true, nil
}
