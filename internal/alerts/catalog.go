package alerts

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"riskview/pkg/models"
)

// UnknownCode is the catalog key used for alert types without metadata.
const UnknownCode = "unknown"

// Metadata describes an alert type. The backend only reports ids and scores;
// everything else shown on an alert card comes from here.
type Metadata struct {
	Title       string           `yaml:"title"`
	Description string           `yaml:"description"`
	Type        string           `yaml:"type"`
	Entity      models.EntityRef `yaml:"entity"`
	Evidence    []string         `yaml:"evidence"`
	Actions     []string         `yaml:"actions"`
}

// Catalog is a lookup table of alert metadata keyed by alert-type code.
type Catalog struct {
	entries map[string]Metadata
}

type catalogFile struct {
	AlertTypes map[string]Metadata `yaml:"alert_types"`
}

var unknownMetadata = Metadata{
	Title:       "Unknown Alert",
	Description: "No description available for this alert type",
	Type:        "Unknown",
	Entity:      models.EntityRef{ID: "unknown", Name: "Unknown", Type: models.EntityUser},
	Evidence:    []string{},
	Actions:     []string{"Review alert details"},
}

var builtinMetadata = map[string]Metadata{
	"suspicious_login": {
		Title:       "Suspicious Login Activity",
		Description: "Multiple failed login attempts from unusual location",
		Type:        "Authentication",
		Entity:      models.EntityRef{ID: "USR-001", Name: "John Doe", Type: models.EntityUser},
		Evidence:    []string{"5 failed attempts", "Login from new IP", "Outside business hours"},
		Actions:     []string{"Block IP temporarily", "Send notification to security team", "Require 2FA verification"},
	},
	"unauthorized_file_access": {
		Title:       "Unauthorized File Access",
		Description: "Access to confidential files outside normal pattern",
		Type:        "Data Access",
		Entity:      models.EntityRef{ID: "DEV-045", Name: "Laptop-Finance-45", Type: models.EntityDevice},
		Evidence:    []string{"Accessed 12 confidential files", "Downloads detected", "Outside user's department"},
		Actions:     []string{"Monitor file access", "Alert data owner", "Review permissions"},
	},
	"privilege_escalation": {
		Title:       "Privilege Escalation Attempt",
		Description: "User attempting to gain administrative privileges",
		Type:        "Authorization",
		Entity:      models.EntityRef{ID: "USR-023", Name: "Sarah Admin", Type: models.EntityUser},
		Evidence:    []string{"Permission change request", "Elevated access attempt", "System admin commands"},
		Actions:     []string{"Block escalation", "Review user permissions", "Immediate investigation"},
	},
	"database_anomaly": {
		Title:       "Database Connection Anomaly",
		Description: "Unusual database connection patterns detected",
		Type:        "System",
		Entity:      models.EntityRef{ID: "SRV-001", Name: "Database-Server-01", Type: models.EntityServer},
		Evidence:    []string{"Multiple connection attempts", "Query pattern analysis", "Performance impact"},
		Actions:     []string{"Connection monitoring", "Query optimization", "Security review"},
	},
}

// DefaultCatalog returns the built-in alert metadata.
func DefaultCatalog() *Catalog {
	entries := make(map[string]Metadata, len(builtinMetadata))
	for code, md := range builtinMetadata {
		entries[code] = md
	}
	return &Catalog{entries: entries}
}

// LoadCatalog reads alert metadata overrides from a YAML file on top of the
// built-in table.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alert catalog: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse alert catalog: %w", err)
	}

	c := DefaultCatalog()
	for code, md := range file.AlertTypes {
		code = normalizeCode(code)
		if code == "" {
			continue
		}
		c.entries[code] = md
	}
	return c, nil
}

// Lookup returns the metadata for a code, or the generic unknown entry.
func (c *Catalog) Lookup(code string) (Metadata, bool) {
	if c != nil {
		if md, ok := c.entries[normalizeCode(code)]; ok {
			return md.clone(), true
		}
	}
	return unknownMetadata.clone(), false
}

// Len returns the number of known alert types.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

func (m Metadata) clone() Metadata {
	out := m
	out.Evidence = append([]string{}, m.Evidence...)
	out.Actions = append([]string{}, m.Actions...)
	return out
}

func normalizeCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	return strings.ReplaceAll(code, "-", "_")
}
