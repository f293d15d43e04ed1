package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"riskview/config"
	"riskview/internal/alerts"
	"riskview/internal/backend"
	"riskview/internal/logger"
	"riskview/internal/projector"
	"riskview/internal/riskrules"
	"riskview/pkg/models"
)

const defaultConfigName = "riskview.yml"

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func findConfigFile(configArg string) string {
	if configArg != "" {
		path := configArg
		if _, err := os.Stat(path); err == nil {
			return path
		}
		log.Printf("Warning: config file not found at %s, trying default locations", path)
	}

	if _, err := os.Stat(defaultConfigName); err == nil {
		return defaultConfigName
	}

	exePath, err := os.Executable()
	if err == nil {
		exeDir := filepath.Dir(exePath)
		path := filepath.Join(exeDir, defaultConfigName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return defaultConfigName
}

func applyDefaults(cfg *config.Config) {
	rv := &cfg.RiskView

	if rv.Backend.URL == "" {
		rv.Backend.URL = "http://127.0.0.1:8000"
	}
	if rv.Backend.Timeout <= 0 {
		rv.Backend.Timeout = 5 * time.Second
	}

	if rv.Poll.Interval <= 0 {
		rv.Poll.Interval = 10 * time.Second
	}

	if rv.Server.Addr == "" {
		rv.Server.Addr = ":8080"
	}
	if rv.Server.RefreshTimeout <= 0 {
		rv.Server.RefreshTimeout = 10 * time.Second
	}

	if rv.Store.Redis.Addr == "" {
		rv.Store.Redis.Addr = "127.0.0.1:6379"
	}
	if rv.Store.Redis.KeyPrefix == "" {
		rv.Store.Redis.KeyPrefix = "riskview"
	}

	if rv.Export.Path == "" {
		rv.Export.Path = "output/riskview.jsonl"
	}

	if rv.Logging.Level == "" {
		rv.Logging.Level = "info"
	}
}

// loadConfig resolves, reads and completes the configuration. A missing
// file is not an error; defaults and environment overrides still apply.
func loadConfig(configArg string) (*config.Config, string, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, "", fmt.Errorf("load .env: %w", err)
	}

	path := findConfigFile(configArg)
	cfg, err := config.LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, path = &config.Config{RiskView: config.RiskViewConfig{
			Poll:    config.PollConfig{Enabled: true},
			Logging: config.LoggingConfig{Enabled: true, Console: true},
		}}, ""
	} else if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, "", err
	}
	applyDefaults(cfg)
	return cfg, path, nil
}

// initLogger configures the global logger. Console output goes to out.
func initLogger(cfg config.LoggingConfig, out io.Writer) error {
	if err := logger.Init(logger.Options{
		Enabled: cfg.Enabled,
		Level:   cfg.Level,
		File:    cfg.File,
		Console: cfg.Console,
		Output:  out,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func buildCatalog(path string) (*alerts.Catalog, error) {
	if path == "" {
		return alerts.DefaultCatalog(), nil
	}
	c, err := alerts.LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	logger.Infof("Loaded %d alert types from %s", c.Len(), path)
	return c, nil
}

func buildRules(path string) ([]models.RiskRule, error) {
	if path == "" {
		return riskrules.DefaultRules(), nil
	}
	rules, err := riskrules.LoadFile(path)
	if err != nil {
		return nil, err
	}
	logger.Infof("Loaded %d risk rules from %s", len(rules), path)
	return rules, nil
}

func buildProjector(cfg *config.Config) (*projector.Projector, error) {
	catalog, err := buildCatalog(cfg.RiskView.Alerts.Catalog)
	if err != nil {
		return nil, err
	}
	return projector.New(projector.WithCatalog(catalog)), nil
}

func buildClient(cfg *config.Config) (*backend.Client, error) {
	return backend.NewClient(backend.Config{
		BaseURL: cfg.RiskView.Backend.URL,
		Timeout: cfg.RiskView.Backend.Timeout,
		Headers: cfg.RiskView.Backend.Headers,
	})
}
