package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"riskview/internal/logger"
	"riskview/internal/output/viewjson"
	"riskview/internal/projector"
	"riskview/internal/view"
	"riskview/internal/viewstate"
)

var (
	exportOut   string
	exportQuery string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch every slice once and write the projected view as JSON lines.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		if err := initLogger(cfg.RiskView.Logging, cmd.ErrOrStderr()); err != nil {
			return err
		}
		state, err := viewstate.Decode(exportQuery)
		if err != nil {
			return err
		}
		proj, err := buildProjector(cfg)
		if err != nil {
			return err
		}
		client, err := buildClient(cfg)
		if err != nil {
			return err
		}

		path := exportOut
		if path == "" {
			path = cfg.RiskView.Export.Path
		}
		w, err := viewjson.NewWriter(path)
		if err != nil {
			return err
		}
		defer w.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		v := view.New(client, proj)
		defer v.Close()
		if err := runExport(ctx, v, w, state); err != nil {
			return err
		}
		logger.Infof("Exported %d records to %s", w.Count(), path)
		return w.Close()
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path, - for stdout (default from config)")
	exportCmd.Flags().StringVar(&exportQuery, "query", "", "filter entities and alerts with a URL query string")
}

// runExport refreshes v and writes every loaded slice. Slices that failed to
// load are reported and skipped; the export fails only if nothing loaded.
func runExport(ctx context.Context, v *view.View, w *viewjson.Writer, state viewstate.State) error {
	refreshErr := v.RefreshAll(ctx)
	if refreshErr != nil {
		logger.Warnf("refresh: %v", refreshErr)
	}
	f := state.Filters()
	loaded := 0

	if entities, st := v.Entities(); st.Loaded {
		loaded++
		if err := w.WriteEntities(projector.SortEntitiesByRisk(projector.FilterEntities(entities, f))); err != nil {
			return err
		}
	}
	if alerts, st := v.Alerts(); st.Loaded {
		loaded++
		if err := w.WriteAlerts(projector.SortAlertsByRisk(projector.FilterAlerts(alerts, f))); err != nil {
			return err
		}
	}
	if threats, st := v.Threats(); st.Loaded {
		loaded++
		if err := w.WriteThreats(threats); err != nil {
			return err
		}
	}
	if summary, st := v.ThreatSummary(); st.Loaded {
		loaded++
		if err := w.WriteThreatSummary(summary); err != nil {
			return err
		}
	}

	if loaded == 0 {
		return fmt.Errorf("export: no slice loaded: %w", refreshErr)
	}
	return nil
}
