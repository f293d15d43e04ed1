package models

// RiskBand buckets a risk score.
type RiskBand string

const (
	BandHigh   RiskBand = "high"
	BandMedium RiskBand = "medium"
	BandLow    RiskBand = "low"
)

const (
	// HighRiskThreshold is the lowest score in the high band.
	HighRiskThreshold = 40
	// MediumRiskThreshold is the lowest score in the medium band.
	MediumRiskThreshold = 25

	MaxRiskScore = 100
)

// Bands lists the risk bands from highest to lowest.
var Bands = []RiskBand{BandHigh, BandMedium, BandLow}

// BandFor returns the risk band of a score.
func BandFor(score int) RiskBand {
	switch {
	case score >= HighRiskThreshold:
		return BandHigh
	case score >= MediumRiskThreshold:
		return BandMedium
	default:
		return BandLow
	}
}

// ClampScore bounds a score to [0, MaxRiskScore].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > MaxRiskScore {
		return MaxRiskScore
	}
	return score
}

// IsBand reports whether raw names a risk band.
func IsBand(raw string) bool {
	switch RiskBand(raw) {
	case BandHigh, BandMedium, BandLow:
		return true
	}
	return false
}
