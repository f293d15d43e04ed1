package alerts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupUnknownFallsBack(t *testing.T) {
	md, ok := DefaultCatalog().Lookup("no_such_type")
	assert.False(t, ok)
	assert.Equal(t, "Unknown Alert", md.Title)
}

func TestLookupNormalizesCode(t *testing.T) {
	md, ok := DefaultCatalog().Lookup(" Privilege-Escalation ")
	require.True(t, ok)
	assert.Equal(t, "Privilege Escalation Attempt", md.Title)
}

func TestLookupReturnsCopies(t *testing.T) {
	c := DefaultCatalog()
	md, _ := c.Lookup("suspicious_login")
	md.Evidence[0] = "changed"

	again, _ := c.Lookup("suspicious_login")
	assert.Equal(t, "5 failed attempts", again.Evidence[0])
}

func TestLoadCatalogOverridesBuiltins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yml")
	body := `alert_types:
  usb_exfiltration:
    title: USB Exfiltration
    type: Device
    evidence: ["Large copy to removable media"]
    actions: ["Disable USB port"]
  suspicious_login:
    title: Impossible Travel
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)

	md, ok := c.Lookup("usb_exfiltration")
	require.True(t, ok)
	assert.Equal(t, "USB Exfiltration", md.Title)
	assert.Equal(t, []string{"Disable USB port"}, md.Actions)

	md, ok = c.Lookup("suspicious_login")
	require.True(t, ok)
	assert.Equal(t, "Impossible Travel", md.Title)

	_, ok = c.Lookup("database_anomaly")
	assert.True(t, ok)
}
