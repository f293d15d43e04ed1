package riskstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"riskview/pkg/models"
)

// RedisConfig configures Redis access for the entity mirror.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisStore mirrors committed entity slices into Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisStore constructs a Redis-backed entity mirror.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	cfg = withDefaults(cfg)

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis risk store: %w", err)
	}

	return &RedisStore{client: client, prefix: cfg.KeyPrefix, now: time.Now}, nil
}

func withDefaults(cfg RedisConfig) RedisConfig {
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = "127.0.0.1:6379"
	}
	cfg.KeyPrefix = strings.TrimSpace(cfg.KeyPrefix)
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "riskview"
	}
	return cfg
}

// WriteEntities replaces the mirrored entity set with entities.
func (s *RedisStore) WriteEntities(ctx context.Context, entities []models.Entity) error {
	stale, err := s.client.ZRange(ctx, s.scoreKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("read mirrored entity ids: %w", err)
	}
	current := make(map[string]struct{}, len(entities))
	for _, e := range entities {
		current[e.ID] = struct{}{}
	}

	nowUnix := strconv.FormatInt(s.now().Unix(), 10)
	pipe := s.client.TxPipeline()
	for _, id := range stale {
		if _, ok := current[id]; !ok {
			pipe.Del(ctx, s.entityKey(id))
			pipe.ZRem(ctx, s.scoreKey(), id)
		}
	}
	for _, e := range entities {
		fields, err := entityFields(e)
		if err != nil {
			return err
		}
		fields = append(fields, "updated_at", nowUnix)
		key := s.entityKey(e.ID)
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields...)
		pipe.ZAdd(ctx, s.scoreKey(), redis.Z{Score: float64(e.RiskScore), Member: e.ID})
	}
	pipe.Set(ctx, s.updatedKey(), nowUnix, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("update risk store redis keys: %w", err)
	}
	return nil
}

// TopEntities returns up to limit mirrored entities, highest risk first.
func (s *RedisStore) TopEntities(ctx context.Context, limit int64) ([]models.Entity, error) {
	if limit <= 0 {
		limit = 10
	}
	ids, err := s.client.ZRevRange(ctx, s.scoreKey(), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read top entity ids: %w", err)
	}

	out := make([]models.Entity, 0, len(ids))
	for _, id := range ids {
		hash, err := s.client.HGetAll(ctx, s.entityKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("read entity %s: %w", id, err)
		}
		if len(hash) == 0 {
			continue
		}
		out = append(out, entityFromHash(hash))
	}
	return out, nil
}

// UpdatedAt returns the time of the last mirror write, or zero if none.
func (s *RedisStore) UpdatedAt(ctx context.Context) (time.Time, error) {
	raw, err := s.client.Get(ctx, s.updatedKey()).Result()
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read risk store timestamp: %w", err)
	}
	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse risk store timestamp %q: %w", raw, err)
	}
	return time.Unix(unix, 0).UTC(), nil
}

// Close closes Redis resources.
func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *RedisStore) entityKey(id string) string {
	return s.prefix + ":entity:" + id
}

func (s *RedisStore) scoreKey() string {
	return s.prefix + ":entities:by_score"
}

func (s *RedisStore) updatedKey() string {
	return s.prefix + ":entities:updated_at"
}

func entityFields(e models.Entity) ([]interface{}, error) {
	rules, err := json.Marshal(e.RulesTriggered)
	if err != nil {
		return nil, fmt.Errorf("encode rules for entity %s: %w", e.ID, err)
	}
	return []interface{}{
		"id", e.ID,
		"name", e.Name,
		"type", string(e.Type),
		"risk_score", strconv.Itoa(e.RiskScore),
		"department", e.Department,
		"location", e.Location,
		"role", e.Role,
		"last_active", e.LastActive,
		"rules_triggered", string(rules),
		"trend", string(e.Trend),
		"status", string(e.Status),
	}, nil
}

func entityFromHash(hash map[string]string) models.Entity {
	score, _ := strconv.Atoi(hash["risk_score"])
	var rules []string
	if raw := hash["rules_triggered"]; raw != "" {
		_ = json.Unmarshal([]byte(raw), &rules)
	}
	if rules == nil {
		rules = []string{}
	}
	return models.Entity{
		ID:             hash["id"],
		Name:           hash["name"],
		Type:           models.ParseEntityType(hash["type"]),
		RiskScore:      models.ClampScore(score),
		Department:     hash["department"],
		Location:       hash["location"],
		Role:           hash["role"],
		LastActive:     hash["last_active"],
		RulesTriggered: rules,
		Trend:          models.ParseTrend(hash["trend"]),
		Status:         models.ParseEntityStatus(hash["status"]),
	}
}
