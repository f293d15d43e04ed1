package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskview/pkg/models"
)

func TestAcknowledgeResolveThenAcknowledgeStaysResolved(t *testing.T) {
	list := []models.Alert{{ID: "A1", Status: models.AlertNew}}

	list, changed, err := Apply(list, "A1", ActionAcknowledge, "Current User")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.AlertAcknowledged, list[0].Status)
	assert.Equal(t, "Current User", list[0].AssignedTo)

	list, changed, err = Apply(list, "A1", ActionResolve, "")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.AlertResolved, list[0].Status)

	list, changed, err = Apply(list, "A1", ActionAcknowledge, "Someone Else")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.AlertResolved, list[0].Status)
	assert.Equal(t, "Current User", list[0].AssignedTo)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := []models.Alert{{ID: "A1", Status: models.AlertNew}, {ID: "A2", Status: models.AlertNew}}

	out, changed, err := Apply(in, "A2", ActionResolve, "")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.AlertNew, in[1].Status)
	assert.Equal(t, models.AlertResolved, out[1].Status)
}

func TestApplyUnknownAlert(t *testing.T) {
	_, _, err := Apply([]models.Alert{{ID: "A1"}}, "missing", ActionResolve, "")
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

func TestNextTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    models.AlertStatus
		action  Action
		want    models.AlertStatus
		changed bool
	}{
		{"new acknowledge", models.AlertNew, ActionAcknowledge, models.AlertAcknowledged, true},
		{"new resolve", models.AlertNew, ActionResolve, models.AlertResolved, true},
		{"acknowledged resolve", models.AlertAcknowledged, ActionResolve, models.AlertResolved, true},
		{"acknowledged acknowledge", models.AlertAcknowledged, ActionAcknowledge, models.AlertAcknowledged, false},
		{"investigating acknowledge", models.AlertInvestigating, ActionAcknowledge, models.AlertInvestigating, false},
		{"investigating resolve", models.AlertInvestigating, ActionResolve, models.AlertResolved, true},
		{"resolved resolve", models.AlertResolved, ActionResolve, models.AlertResolved, false},
		{"resolved acknowledge", models.AlertResolved, ActionAcknowledge, models.AlertResolved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := Next(tt.from, tt.action)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changed, changed)
		})
	}
}
