package models

// EntityType is the kind of monitored entity.
type EntityType string

const (
	EntityUser   EntityType = "user"
	EntityDevice EntityType = "device"
	EntityServer EntityType = "server"
)

// Trend is the direction of an entity's risk score.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// EntityStatus is the presence state of an entity.
type EntityStatus string

const (
	EntityOnline     EntityStatus = "online"
	EntityOffline    EntityStatus = "offline"
	EntitySuspicious EntityStatus = "suspicious"
)

// Entity is a monitored user, device or server.
type Entity struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Type           EntityType   `json:"type"`
	RiskScore      int          `json:"riskScore"`
	Department     string       `json:"department"`
	Location       string       `json:"location"`
	Role           string       `json:"role"`
	LastActive     string       `json:"lastActive"`
	RulesTriggered []string     `json:"rulesTriggered"`
	Trend          Trend        `json:"trend"`
	Status         EntityStatus `json:"status"`
}

// Band returns the risk band of the entity.
func (e Entity) Band() RiskBand {
	return BandFor(e.RiskScore)
}

// EntityRef is a weak reference to an entity from an alert.
type EntityRef struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Type EntityType `json:"type"`
}

// ParseEntityType maps a raw value onto the entity type vocabulary.
func ParseEntityType(raw string) EntityType {
	switch EntityType(raw) {
	case EntityUser, EntityDevice, EntityServer:
		return EntityType(raw)
	default:
		return EntityUser
	}
}

// ParseTrend maps a raw value onto the trend vocabulary.
func ParseTrend(raw string) Trend {
	switch Trend(raw) {
	case TrendUp, TrendDown, TrendStable:
		return Trend(raw)
	default:
		return TrendStable
	}
}

// ParseEntityStatus maps a raw value onto the entity status vocabulary.
func ParseEntityStatus(raw string) EntityStatus {
	switch EntityStatus(raw) {
	case EntityOnline, EntityOffline, EntitySuspicious:
		return EntityStatus(raw)
	default:
		return EntityOnline
	}
}
