package riskstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskview/pkg/models"
)

func TestWithDefaults(t *testing.T) {
	cfg := withDefaults(RedisConfig{KeyPrefix: "  "})
	assert.Equal(t, "127.0.0.1:6379", cfg.Addr)
	assert.Equal(t, "riskview", cfg.KeyPrefix)

	cfg = withDefaults(RedisConfig{Addr: "redis:6380", KeyPrefix: " soc "})
	assert.Equal(t, "redis:6380", cfg.Addr)
	assert.Equal(t, "soc", cfg.KeyPrefix)
}

func TestKeys(t *testing.T) {
	s := &RedisStore{prefix: "soc"}
	assert.Equal(t, "soc:entity:u-1", s.entityKey("u-1"))
	assert.Equal(t, "soc:entities:by_score", s.scoreKey())
	assert.Equal(t, "soc:entities:updated_at", s.updatedKey())
}

func TestEntityHashRoundTrip(t *testing.T) {
	in := models.Entity{
		ID:             "u-1",
		Name:           "John Smith",
		Type:           models.EntityServer,
		RiskScore:      78,
		Department:     "Finance",
		Location:       "HQ",
		Role:           "Analyst",
		LastActive:     "2026-03-04T05:06:07Z",
		RulesTriggered: []string{"Multiple Failed Logins", "Off-hours Access"},
		Trend:          models.TrendUp,
		Status:         models.EntityOffline,
	}

	fields, err := entityFields(in)
	require.NoError(t, err)
	require.Equal(t, 0, len(fields)%2)

	hash := make(map[string]string, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		hash[fields[i].(string)] = fields[i+1].(string)
	}
	assert.Equal(t, "78", hash["risk_score"])
	assert.Equal(t, in, entityFromHash(hash))
}

func TestEntityFromHashDefaults(t *testing.T) {
	got := entityFromHash(map[string]string{"id": "d-1", "risk_score": "x"})
	assert.Equal(t, "d-1", got.ID)
	assert.Equal(t, 0, got.RiskScore)
	assert.Equal(t, models.EntityUser, got.Type)
	assert.Equal(t, models.TrendStable, got.Trend)
	assert.Equal(t, models.EntityOnline, got.Status)
	assert.NotNil(t, got.RulesTriggered)
}
