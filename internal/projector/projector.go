package projector

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"riskview/internal/alerts"
	"riskview/pkg/models"
)

const unknown = "Unknown"

// recordNamespace seeds ids for backend records that arrive without one.
var recordNamespace = uuid.MustParse("6f1c4a52-3b8e-4d3a-9b61-2f7d0c5e8a14")

// Projector maps raw backend payloads into view models. It performs no I/O
// and never modifies its inputs.
type Projector struct {
	catalog *alerts.Catalog
	now     func() time.Time
}

// Option configures a Projector.
type Option func(*Projector)

// WithClock sets the clock used for missing timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Projector) { p.now = now }
}

// WithCatalog sets the alert metadata catalog.
func WithCatalog(c *alerts.Catalog) Option {
	return func(p *Projector) { p.catalog = c }
}

// New creates a projector.
func New(opts ...Option) *Projector {
	p := &Projector{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.catalog == nil {
		p.catalog = alerts.DefaultCatalog()
	}
	return p
}

func (p *Projector) timestamp() string {
	return p.now().UTC().Format(time.RFC3339)
}

// Entities projects an entity payload.
func (p *Projector) Entities(raw []byte) ([]models.Entity, error) {
	recs, err := normalize(raw, entityShape)
	if err != nil {
		return nil, err
	}
	out := make([]models.Entity, 0, len(recs))
	for _, rec := range recs {
		out = append(out, p.entity(rec))
	}
	return out, nil
}

func (p *Projector) entity(rec record) models.Entity {
	score, _ := rec.num("score", "riskScore", "risk_score")
	rules := rec.strs("rulesTriggered", "rules_triggered")
	if rules == nil {
		rules = []string{}
	}
	return models.Entity{
		ID:             recordID(rec, "id"),
		Name:           rec.strOr(unknown, "name"),
		Type:           models.ParseEntityType(rec.str("type")),
		RiskScore:      models.ClampScore(score),
		Department:     rec.strOr(unknown, "department"),
		Location:       rec.strOr(unknown, "location"),
		Role:           rec.strOr(unknown, "role"),
		LastActive:     rec.strOr(p.timestamp(), "lastActive", "last_active"),
		RulesTriggered: rules,
		Trend:          models.ParseTrend(rec.str("trend")),
		Status:         models.ParseEntityStatus(rec.str("status")),
	}
}

// Alerts projects an alert payload. Metadata the backend omits is filled from
// the catalog entry of the alert's type code.
func (p *Projector) Alerts(raw []byte) ([]models.Alert, error) {
	recs, err := normalize(raw, alertShape)
	if err != nil {
		return nil, err
	}
	out := make([]models.Alert, 0, len(recs))
	for _, rec := range recs {
		out = append(out, p.alert(rec))
	}
	return out, nil
}

func (p *Projector) alert(rec record) models.Alert {
	id := recordID(rec, "alert_id", "id")
	code := rec.strOr(id, "alert_type", "type", "code")
	md, known := p.catalog.Lookup(code)
	typ := md.Type
	if !known {
		typ = rec.strOr(md.Type, "type", "alert_type")
	}

	score, _ := rec.num("risk_score", "riskScore", "score")

	ref := md.Entity
	if ent := rec.object("entity"); ent != nil {
		ref = models.EntityRef{
			ID:   ent.strOr(ref.ID, "id"),
			Name: ent.strOr(ref.Name, "name"),
			Type: models.ParseEntityType(ent.strOr(string(ref.Type), "type")),
		}
	}
	if ref.ID == "" {
		ref.ID = unknown
	}
	if ref.Name == "" {
		ref.Name = unknown
	}
	ref.Type = models.ParseEntityType(string(ref.Type))

	evidence := rec.strs("evidence")
	if evidence == nil {
		evidence = md.Evidence
	}
	actions := rec.strs("actions")
	if actions == nil {
		actions = md.Actions
	}

	return models.Alert{
		ID:          id,
		Title:       rec.strOr(md.Title, "title"),
		Description: rec.strOr(md.Description, "description"),
		Severity:    models.SeverityFromBackend(rec.str("severity")),
		Type:        typ,
		Entity:      ref,
		Timestamp:   rec.strOr(p.timestamp(), "timestamp"),
		Status:      models.ParseAlertStatus(rec.str("status")),
		RiskScore:   models.ClampScore(score),
		AssignedTo:  rec.str("assignedTo", "assigned_to"),
		Evidence:    evidence,
		Actions:     actions,
	}
}

// Threats projects the top threat categories payload.
func (p *Projector) Threats(raw []byte) ([]models.Threat, error) {
	recs, err := normalize(raw, threatShape)
	if err != nil {
		return nil, err
	}
	out := make([]models.Threat, 0, len(recs))
	for _, rec := range recs {
		count, _ := rec.num("count")
		out = append(out, models.Threat{
			Threat: rec.strOr(unknown, "threat", "name"),
			Count:  max(count, 0),
			Trend:  rec.strOr("0%", "trend"),
		})
	}
	return out, nil
}

// ThreatSummary projects the single aggregate threat object.
func (p *Projector) ThreatSummary(raw []byte) (models.ThreatSummary, error) {
	v, err := decode(raw)
	if err != nil {
		return models.ThreatSummary{}, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return models.ThreatSummary{}, &MappingError{Raw: v, Reason: "threat summary is not an object"}
	}
	rec := record(m)
	count, _ := rec.num("count")
	total, _ := rec.num("Total", "total")
	return models.ThreatSummary{
		Count:        max(count, 0),
		Total:        max(total, 0),
		ThreatType:   rec.strOr(unknown, "threatType", "threat_type"),
		Trend:        rec.strOr(string(models.TrendStable), "trend"),
		Severity:     rec.strOr(unknown, "severity"),
		LastDetected: rec.strOr(p.timestamp(), "lastDetected", "last_detected"),
	}, nil
}

// recordID returns the record's id, or a name-based UUID of its content.
func recordID(rec record, keys ...string) string {
	if id := rec.str(keys...); id != "" {
		return id
	}
	data, err := json.Marshal(map[string]any(rec))
	if err != nil {
		return unknown
	}
	return uuid.NewSHA1(recordNamespace, data).String()
}
