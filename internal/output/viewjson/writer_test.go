package viewjson

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskview/pkg/models"
)

func TestStreamWriterEmitsOneLinePerRecord(t *testing.T) {
	var buf bytes.Buffer
	w := NewStreamWriter(&buf)

	require.NoError(t, w.WriteEntities([]models.Entity{{ID: "u1", RiskScore: 50}, {ID: "u2"}}))
	require.NoError(t, w.WriteAlerts([]models.Alert{{ID: "a1", Severity: models.SeverityCritical}}))
	require.NoError(t, w.WriteThreatSummary(models.ThreatSummary{Count: 3, Total: 10}))
	require.NoError(t, w.Close())
	assert.Equal(t, 4, w.Count())

	var kinds []string
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var line struct {
			Kind string          `json:"kind"`
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &line))
		kinds = append(kinds, line.Kind)
	}
	assert.Equal(t, []string{KindEntity, KindEntity, KindAlert, KindThreatSummary}, kinds)
}

func TestFileWriterCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "view.jsonl")
	w, err := NewWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.WriteThreats([]models.Threat{{Threat: "Phishing", Count: 2, Trend: "+1%"}}))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"threat","data":{"threat":"Phishing","count":2,"trend":"+1%"}}`, string(bytes.TrimSpace(data)))
}
