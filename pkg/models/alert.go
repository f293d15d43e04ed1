package models

// Severity is the dashboard-facing alert severity.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// AlertStatus is the triage state of an alert.
type AlertStatus string

const (
	AlertNew           AlertStatus = "new"
	AlertAcknowledged  AlertStatus = "acknowledged"
	AlertInvestigating AlertStatus = "investigating"
	AlertResolved      AlertStatus = "resolved"
)

// Alert is a raised detection event as shown on the dashboard.
type Alert struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Severity    Severity    `json:"severity"`
	Type        string      `json:"type"`
	Entity      EntityRef   `json:"entity"`
	Timestamp   string      `json:"timestamp"`
	Status      AlertStatus `json:"status"`
	RiskScore   int         `json:"riskScore"`
	AssignedTo  string      `json:"assignedTo,omitempty"`
	Evidence    []string    `json:"evidence"`
	Actions     []string    `json:"actions"`
}

// Band returns the risk band of the alert score.
func (a Alert) Band() RiskBand {
	return BandFor(a.RiskScore)
}

// SeverityFromBackend translates the backend severity vocabulary.
// Values already in the dashboard vocabulary pass through; anything else is medium.
func SeverityFromBackend(raw string) Severity {
	switch raw {
	case "high":
		return SeverityCritical
	case "moderate":
		return SeverityHigh
	case "normal":
		return SeverityMedium
	}
	switch Severity(raw) {
	case SeverityCritical, SeverityMedium, SeverityLow:
		return Severity(raw)
	}
	return SeverityMedium
}

// IsSeverity reports whether raw is a dashboard severity.
func IsSeverity(raw string) bool {
	switch Severity(raw) {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// ParseAlertStatus returns the status for a backend-supplied value, or new.
func ParseAlertStatus(raw string) AlertStatus {
	if IsAlertStatus(raw) {
		return AlertStatus(raw)
	}
	return AlertNew
}

// IsAlertStatus reports whether raw is a valid alert status.
func IsAlertStatus(raw string) bool {
	switch AlertStatus(raw) {
	case AlertNew, AlertAcknowledged, AlertInvestigating, AlertResolved:
		return true
	}
	return false
}
