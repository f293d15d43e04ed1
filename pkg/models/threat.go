package models

// Threat is one row of the top threat categories.
type Threat struct {
	Threat string `json:"threat"`
	Count  int    `json:"count"`
	Trend  string `json:"trend"`
}

// ThreatSummary is the aggregate returned by the backend threat endpoint.
type ThreatSummary struct {
	Count        int    `json:"count"`
	Total        int    `json:"Total"`
	ThreatType   string `json:"threatType"`
	Trend        string `json:"trend"`
	Severity     string `json:"severity"`
	LastDetected string `json:"lastDetected"`
}
