package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"riskview/internal/api"
	"riskview/internal/logger"
	"riskview/internal/riskrules"
	"riskview/internal/riskstore"
	"riskview/internal/view"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Poll the risk backend and serve the dashboard API.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, path, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	rv := cfg.RiskView
	if err := initLogger(rv.Logging, os.Stdout); err != nil {
		return err
	}

	logger.Infof("riskview starting")
	if path != "" {
		logger.Infof("Config loaded from: %s", path)
	} else {
		logger.Warnf("No config file found, using defaults")
	}

	proj, err := buildProjector(cfg)
	if err != nil {
		return err
	}
	client, err := buildClient(cfg)
	if err != nil {
		return err
	}
	rules, err := buildRules(rv.Rules.Path)
	if err != nil {
		return err
	}

	var opts []view.Option
	deps := api.Deps{
		Rules:          riskrules.NewBook(rules),
		RefreshTimeout: rv.Server.RefreshTimeout,
	}
	if rv.Store.Redis.Enabled {
		store, err := riskstore.NewRedisStore(riskstore.RedisConfig{
			Addr:      rv.Store.Redis.Addr,
			Password:  rv.Store.Redis.Password,
			DB:        rv.Store.Redis.DB,
			KeyPrefix: rv.Store.Redis.KeyPrefix,
		})
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, view.WithEntitySink(store))
		deps.Ranker = store
		logger.Infof("Mirroring entities to redis %s (prefix %s)", rv.Store.Redis.Addr, rv.Store.Redis.KeyPrefix)
	}

	v := view.New(client, proj, opts...)
	defer v.Close()
	deps.View = v

	logger.Infof("Backend: %s", client.BaseURL())
	if rv.Poll.Enabled {
		if err := v.StartPolling(rv.Poll.Interval); err != nil {
			return err
		}
		logger.Infof("Polling every %s", rv.Poll.Interval)
	} else if err := v.RefreshAll(parent); err != nil {
		logger.Warnf("Initial refresh: %v", err)
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(rv.Server.Addr, api.NewRouter(deps))
	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Infof("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if err := v.Close(); err != nil {
		return err
	}
	logger.Infof("riskview stopped")
	return nil
}
