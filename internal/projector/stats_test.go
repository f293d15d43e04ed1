package projector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"riskview/pkg/models"
)

func TestBandStatsOnEmptySetIsZero(t *testing.T) {
	stats := EntityBandStats(nil)
	assert.Equal(t, 0, stats.Total)
	for _, b := range stats.Bands {
		assert.Equal(t, 0, b.Count)
		assert.Equal(t, 0, b.Percentage)
	}
	assert.Len(t, stats.Bands, 3)
}

func TestBandStatsPercentages(t *testing.T) {
	in := []models.Entity{{RiskScore: 45}, {RiskScore: 30}, {RiskScore: 10}}
	stats := EntityBandStats(in)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, []BandStat{
		{Band: models.BandHigh, Count: 1, Percentage: 33},
		{Band: models.BandMedium, Count: 1, Percentage: 33},
		{Band: models.BandLow, Count: 1, Percentage: 33},
	}, stats.Bands)
	assert.Equal(t, 1, stats.Count(models.BandHigh))
}

func TestPercentageRoundsHalfUp(t *testing.T) {
	assert.Equal(t, 63, Percentage(5, 8))
	assert.Equal(t, 8, Percentage(12, 150))
	assert.Equal(t, 0, Percentage(3, 0))
}

func TestStatusCounts(t *testing.T) {
	alerts := []models.Alert{{Status: models.AlertNew}, {Status: models.AlertNew}, {Status: models.AlertResolved}}
	counts := AlertStatusCounts(alerts)
	assert.Equal(t, 2, counts[models.AlertNew])
	assert.Equal(t, 0, counts[models.AlertInvestigating])

	entities := []models.Entity{{Status: models.EntitySuspicious}}
	assert.Equal(t, 1, EntityStatusCounts(entities)[models.EntitySuspicious])
}

func TestSortAlertsByRiskIsStable(t *testing.T) {
	in := []models.Alert{
		{ID: "a", RiskScore: 32},
		{ID: "b", RiskScore: 47},
		{ID: "c", RiskScore: 32},
		{ID: "d", RiskScore: 47},
	}
	got := SortAlertsByRisk(in)
	assert.Equal(t, []string{"b", "d", "a", "c"}, alertIDs(got))
	assert.Equal(t, "a", in[0].ID)

	assert.Equal(t, []string{"b", "d"}, alertIDs(TopAlerts(in, 2)))
}
