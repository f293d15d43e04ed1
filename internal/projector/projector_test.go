package projector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskview/pkg/models"
)

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func newTestProjector() *Projector {
	return New(WithClock(func() time.Time { return fixedNow }))
}

func ids[T any](in []T, id func(T) string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		out = append(out, id(item))
	}
	return out
}

func entityIDs(in []models.Entity) []string { return ids(in, func(e models.Entity) string { return e.ID }) }
func alertIDs(in []models.Alert) []string   { return ids(in, func(a models.Alert) string { return a.ID }) }

func TestEntitiesAcceptsAllPayloadShapes(t *testing.T) {
	p := newTestProjector()

	bare, err := p.Entities([]byte(`[{"id":"U1"},{"id":"U2"}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"U1", "U2"}, entityIDs(bare))

	wrapped, err := p.Entities([]byte(`{"entities":[{"id":"U1"},{"id":"U2"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"U1", "U2"}, entityIDs(wrapped))

	single, err := p.Entities([]byte(`{"id":7,"name":"db-01"}`))
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Equal(t, "7", single[0].ID)
	assert.Equal(t, "db-01", single[0].Name)
}

func TestEntitiesRejectsMalformedPayloads(t *testing.T) {
	p := newTestProjector()
	payloads := []string{
		`{"foo":1}`,
		`{"entities":{"id":"U1"}}`,
		`[1,2]`,
		`"entities"`,
		`null`,
		`{not json`,
	}
	for _, body := range payloads {
		t.Run(body, func(t *testing.T) {
			_, err := p.Entities([]byte(body))
			var mErr *MappingError
			require.ErrorAs(t, err, &mErr)
		})
	}
}

func TestMappingErrorCarriesRawValue(t *testing.T) {
	_, err := newTestProjector().Entities([]byte(`{"foo":1}`))
	var mErr *MappingError
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, map[string]any{"foo": float64(1)}, mErr.Raw)
}

func TestEntityDefaults(t *testing.T) {
	got, err := newTestProjector().Entities([]byte(`[{"id":"U1","type":"robot","trend":"sideways","status":null}]`))
	require.NoError(t, err)
	require.Len(t, got, 1)

	e := got[0]
	assert.Equal(t, "Unknown", e.Name)
	assert.Equal(t, models.EntityUser, e.Type)
	assert.Equal(t, 0, e.RiskScore)
	assert.Equal(t, "Unknown", e.Department)
	assert.Equal(t, "Unknown", e.Location)
	assert.Equal(t, "Unknown", e.Role)
	assert.Equal(t, "2026-03-04T05:06:07Z", e.LastActive)
	assert.NotNil(t, e.RulesTriggered)
	assert.Empty(t, e.RulesTriggered)
	assert.Equal(t, models.TrendStable, e.Trend)
	assert.Equal(t, models.EntityOnline, e.Status)
}

func TestEntityScoreIsClampedAndRounded(t *testing.T) {
	got, err := newTestProjector().Entities([]byte(`[{"id":"a","score":140},{"id":"b","score":-3},{"id":"c","score":39.6},{"id":"d","score":"27"}]`))
	require.NoError(t, err)
	scores := []int{got[0].RiskScore, got[1].RiskScore, got[2].RiskScore, got[3].RiskScore}
	assert.Equal(t, []int{100, 0, 40, 27}, scores)

	got, err = newTestProjector().Entities([]byte(`[{"id":"e","score":1e300},{"id":"f","score":-1e300},{"id":"g","score":"9e18"}]`))
	require.NoError(t, err)
	assert.Equal(t, 100, got[0].RiskScore)
	assert.Equal(t, models.BandHigh, got[0].Band())
	assert.Equal(t, 0, got[1].RiskScore)
	assert.Equal(t, 100, got[2].RiskScore)
}

func TestHugeNumericIDIsNotTruncated(t *testing.T) {
	got, err := newTestProjector().Entities([]byte(`[{"id":1e20,"score":1},{"id":42,"score":1}]`))
	require.NoError(t, err)
	assert.Equal(t, "100000000000000000000", got[0].ID)
	assert.Equal(t, "42", got[1].ID)
}

func TestAlertKeepsBackendTypeOutsideCatalog(t *testing.T) {
	got, err := newTestProjector().Alerts([]byte(`[
		{"alert_id":"A9","type":"Data Access","title":"Bulk download"},
		{"alert_id":"A1","alert_type":"suspicious_login"}
	]`))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Data Access", got[0].Type)
	assert.Equal(t, "Bulk download", got[0].Title)
	assert.NotEqual(t, "Unknown", got[1].Type)

	f := DefaultFilters()
	f.Type = "Data Access"
	assert.True(t, f.MatchAlert(got[0]))
	assert.False(t, f.MatchAlert(got[1]))
}

func TestEntityWithoutIDGetsStableID(t *testing.T) {
	p := newTestProjector()
	body := []byte(`[{"name":"orphan","score":12}]`)

	first, err := p.Entities(body)
	require.NoError(t, err)
	second, err := p.Entities(body)
	require.NoError(t, err)

	assert.NotEmpty(t, first[0].ID)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestAlertsMapBackendSeverity(t *testing.T) {
	body := []byte(`{"alerts":[
		{"alert_id":"A1","risk_score":47,"severity":"high"},
		{"alert_id":"A2","risk_score":30,"severity":"moderate"},
		{"alert_id":"A3","risk_score":10,"severity":"normal"},
		{"alert_id":"A4","risk_score":10,"severity":"bogus"}
	]}`)
	got, err := newTestProjector().Alerts(body)
	require.NoError(t, err)

	want := []models.Severity{models.SeverityCritical, models.SeverityHigh, models.SeverityMedium, models.SeverityMedium}
	for i, a := range got {
		assert.Equal(t, want[i], a.Severity, a.ID)
		assert.NotEqual(t, models.SeverityLow, a.Severity)
		assert.Equal(t, models.AlertNew, a.Status)
	}
}

func TestAlertsFillMetadataFromCatalog(t *testing.T) {
	got, err := newTestProjector().Alerts([]byte(`[{"alert_id":"A1","type":"suspicious_login","risk_score":47,"severity":"high"},{"alert_id":"A2","type":"nope"}]`))
	require.NoError(t, err)

	assert.Equal(t, "Suspicious Login Activity", got[0].Title)
	assert.Equal(t, "Authentication", got[0].Type)
	assert.Equal(t, "USR-001", got[0].Entity.ID)
	assert.NotEmpty(t, got[0].Evidence)
	assert.Equal(t, 47, got[0].RiskScore)

	assert.Equal(t, "Unknown Alert", got[1].Title)
	assert.Equal(t, "2026-03-04T05:06:07Z", got[1].Timestamp)
}

func TestAlertsKeepBackendStatusAndEntity(t *testing.T) {
	got, err := newTestProjector().Alerts([]byte(`[{"alert_id":"A1","status":"investigating","entity":{"id":"SRV-9","name":"edge","type":"server"},"evidence":["x"]}]`))
	require.NoError(t, err)

	assert.Equal(t, models.AlertInvestigating, got[0].Status)
	assert.Equal(t, models.EntityRef{ID: "SRV-9", Name: "edge", Type: models.EntityServer}, got[0].Entity)
	assert.Equal(t, []string{"x"}, got[0].Evidence)
}

func TestThreatsAndSummary(t *testing.T) {
	p := newTestProjector()

	threats, err := p.Threats([]byte(`[{"threat":"Privilege Escalation","count":23,"trend":"+15%"},{"count":-1}]`))
	require.NoError(t, err)
	assert.Equal(t, models.Threat{Threat: "Privilege Escalation", Count: 23, Trend: "+15%"}, threats[0])
	assert.Equal(t, models.Threat{Threat: "Unknown", Count: 0, Trend: "0%"}, threats[1])

	summary, err := p.ThreatSummary([]byte(`{"count":62,"Total":1247,"threatType":"Malware","trend":"up","severity":"high"}`))
	require.NoError(t, err)
	assert.Equal(t, 62, summary.Count)
	assert.Equal(t, 1247, summary.Total)
	assert.Equal(t, "2026-03-04T05:06:07Z", summary.LastDetected)

	_, err = p.ThreatSummary([]byte(`[]`))
	var mErr *MappingError
	assert.ErrorAs(t, err, &mErr)
}
