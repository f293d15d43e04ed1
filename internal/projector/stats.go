package projector

import (
	"math"
	"sort"

	"riskview/pkg/models"
)

// BandStat is the size of one risk band.
type BandStat struct {
	Band       models.RiskBand `json:"band"`
	Count      int             `json:"count"`
	Percentage int             `json:"percentage"`
}

// BandStats is the risk distribution of a record set.
type BandStats struct {
	Total int        `json:"total"`
	Bands []BandStat `json:"bands"`
}

// Count returns the number of records in band.
func (s BandStats) Count(band models.RiskBand) int {
	for _, b := range s.Bands {
		if b.Band == band {
			return b.Count
		}
	}
	return 0
}

// Percentage returns round(count/total*100), or 0 for an empty set.
func Percentage(count, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

// EntityBandStats computes the risk distribution of entities.
func EntityBandStats(in []models.Entity) BandStats {
	scores := make([]int, len(in))
	for i, e := range in {
		scores[i] = e.RiskScore
	}
	return bandStats(scores)
}

// AlertBandStats computes the risk distribution of alerts.
func AlertBandStats(in []models.Alert) BandStats {
	scores := make([]int, len(in))
	for i, a := range in {
		scores[i] = a.RiskScore
	}
	return bandStats(scores)
}

func bandStats(scores []int) BandStats {
	counts := make(map[models.RiskBand]int, len(models.Bands))
	for _, s := range scores {
		counts[models.BandFor(s)]++
	}
	stats := BandStats{Total: len(scores), Bands: make([]BandStat, 0, len(models.Bands))}
	for _, band := range models.Bands {
		stats.Bands = append(stats.Bands, BandStat{
			Band:       band,
			Count:      counts[band],
			Percentage: Percentage(counts[band], len(scores)),
		})
	}
	return stats
}

// EntityStatusCounts counts entities per status.
func EntityStatusCounts(in []models.Entity) map[models.EntityStatus]int {
	out := map[models.EntityStatus]int{
		models.EntityOnline:     0,
		models.EntityOffline:    0,
		models.EntitySuspicious: 0,
	}
	for _, e := range in {
		out[e.Status]++
	}
	return out
}

// AlertStatusCounts counts alerts per status.
func AlertStatusCounts(in []models.Alert) map[models.AlertStatus]int {
	out := map[models.AlertStatus]int{
		models.AlertNew:           0,
		models.AlertAcknowledged:  0,
		models.AlertInvestigating: 0,
		models.AlertResolved:      0,
	}
	for _, a := range in {
		out[a.Status]++
	}
	return out
}

// SortEntitiesByRisk returns entities by descending score; ties keep input order.
func SortEntitiesByRisk(in []models.Entity) []models.Entity {
	out := make([]models.Entity, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].RiskScore > out[j].RiskScore })
	return out
}

// SortAlertsByRisk returns alerts by descending score; ties keep input order.
func SortAlertsByRisk(in []models.Alert) []models.Alert {
	out := make([]models.Alert, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].RiskScore > out[j].RiskScore })
	return out
}

// TopAlerts returns at most n alerts with the highest scores.
func TopAlerts(in []models.Alert, n int) []models.Alert {
	sorted := SortAlertsByRisk(in)
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
