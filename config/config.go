package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RISKVIEW_"

// Config is the root configuration.
type Config struct {
	RiskView RiskViewConfig `yaml:"riskview"`
}

// RiskViewConfig is the project configuration.
type RiskViewConfig struct {
	Backend BackendConfig `yaml:"backend"`
	Poll    PollConfig    `yaml:"poll"`
	Alerts  AlertsConfig  `yaml:"alerts"`
	Rules   RulesConfig   `yaml:"rules"`
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// BackendConfig controls the risk backend client.
type BackendConfig struct {
	URL     string            `yaml:"url"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}

// PollConfig controls background refresh.
type PollConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// AlertsConfig controls alert metadata.
type AlertsConfig struct {
	// Catalog is an optional YAML file overriding the built-in alert types.
	Catalog string `yaml:"catalog"`
}

// RulesConfig controls the risk rule book seed.
type RulesConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	RefreshTimeout time.Duration `yaml:"refresh_timeout"`
}

// StoreConfig controls optional mirrors of committed view data.
type StoreConfig struct {
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig controls the Redis entity mirror.
type RedisConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// ExportConfig controls the JSONL export command.
type ExportConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig controls logging output.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadDotEnv loads a .env file from the working directory if one exists.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return err
		}
	}
	return nil
}

// ApplyEnv overrides cfg with RISKVIEW_* environment variables.
func ApplyEnv(cfg *Config) error {
	rv := &cfg.RiskView

	setString(&rv.Backend.URL, "BACKEND_URL")
	setString(&rv.Alerts.Catalog, "ALERT_CATALOG")
	setString(&rv.Rules.Path, "RULES_PATH")
	setString(&rv.Server.Addr, "SERVER_ADDR")
	setString(&rv.Store.Redis.Addr, "REDIS_ADDR")
	setString(&rv.Store.Redis.Password, "REDIS_PASSWORD")
	setString(&rv.Store.Redis.KeyPrefix, "REDIS_KEY_PREFIX")
	setString(&rv.Export.Path, "EXPORT_PATH")
	setString(&rv.Logging.Level, "LOG_LEVEL")
	setString(&rv.Logging.File, "LOG_FILE")

	var errs []error
	errs = append(errs,
		setDuration(&rv.Backend.Timeout, "BACKEND_TIMEOUT"),
		setDuration(&rv.Poll.Interval, "POLL_INTERVAL"),
		setDuration(&rv.Server.RefreshTimeout, "REFRESH_TIMEOUT"),
		setBool(&rv.Poll.Enabled, "POLL_ENABLED"),
		setBool(&rv.Store.Redis.Enabled, "REDIS_ENABLED"),
		setInt(&rv.Store.Redis.DB, "REDIS_DB"),
	)
	return errors.Join(errs...)
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fmt.Errorf("%s%s: invalid duration %q", EnvPrefix, key, v)
	}
	*dst = d
	return nil
}

func setBool(dst *bool, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s%s: invalid bool %q", EnvPrefix, key, v)
	}
	*dst = b
	return nil
}

func setInt(dst *int, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s%s: invalid int %q", EnvPrefix, key, v)
	}
	*dst = n
	return nil
}
