package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"riskview/internal/projector"
	"riskview/internal/viewstate"
)

type projectFlags struct {
	query      string
	search     string
	entityType string
	department string
	risk       string
	status     string
	severity   string
	sortByRisk bool
}

var projectOpts projectFlags

var projectCmd = &cobra.Command{
	Use:   "project <entities|alerts|threats|summary> [payload.json]",
	Short: "Project a saved backend payload offline and print the filtered view.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if len(args) == 2 && args[1] != "-" {
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		raw, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("read payload: %w", err)
		}

		cfg, _, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		if err := initLogger(cfg.RiskView.Logging, cmd.ErrOrStderr()); err != nil {
			return err
		}
		proj, err := buildProjector(cfg)
		if err != nil {
			return err
		}

		state, err := projectOpts.state()
		if err != nil {
			return err
		}
		out, err := runProject(proj, args[0], raw, state, projectOpts.sortByRisk)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	f := projectCmd.Flags()
	f.StringVar(&projectOpts.query, "query", "", "filter state as a URL query string, e.g. search=john&risk=high")
	f.StringVar(&projectOpts.search, "search", "", "case-insensitive name/id substring")
	f.StringVar(&projectOpts.entityType, "type", "", "entity or alert type")
	f.StringVar(&projectOpts.department, "department", "", "entity department")
	f.StringVar(&projectOpts.risk, "risk", "", "risk band: high, medium or low")
	f.StringVar(&projectOpts.status, "status", "", "alert status")
	f.StringVar(&projectOpts.severity, "severity", "", "alert severity")
	f.BoolVar(&projectOpts.sortByRisk, "sort-risk", false, "order by descending risk score")
}

// state merges --query with the individual filter flags; flags win.
func (p projectFlags) state() (viewstate.State, error) {
	v, err := url.ParseQuery(p.query)
	if err != nil {
		return viewstate.State{}, fmt.Errorf("parse --query: %w", err)
	}
	for key, val := range map[string]string{
		viewstate.KeySearch:     p.search,
		viewstate.KeyType:       p.entityType,
		viewstate.KeyDepartment: p.department,
		viewstate.KeyRisk:       p.risk,
		viewstate.KeyStatus:     p.status,
		viewstate.KeySeverity:   p.severity,
	} {
		if val != "" {
			v.Set(key, val)
		}
	}
	return viewstate.FromValues(v)
}

type projection struct {
	Query        string `json:"query"`
	Items        any    `json:"items"`
	Total        int    `json:"total"`
	Stats        any    `json:"stats,omitempty"`
	StatusCounts any    `json:"statusCounts,omitempty"`
}

func runProject(p *projector.Projector, kind string, raw []byte, state viewstate.State, sortByRisk bool) (any, error) {
	f := state.Filters()
	switch kind {
	case "entities":
		all, err := p.Entities(raw)
		if err != nil {
			return nil, err
		}
		items := projector.FilterEntities(all, f)
		if sortByRisk {
			items = projector.SortEntitiesByRisk(items)
		}
		return projection{
			Query:        state.Encode(),
			Items:        items,
			Total:        len(all),
			Stats:        projector.EntityBandStats(items),
			StatusCounts: projector.EntityStatusCounts(items),
		}, nil
	case "alerts":
		all, err := p.Alerts(raw)
		if err != nil {
			return nil, err
		}
		items := projector.FilterAlerts(all, f)
		if sortByRisk {
			items = projector.SortAlertsByRisk(items)
		}
		return projection{
			Query:        state.Encode(),
			Items:        items,
			Total:        len(all),
			Stats:        projector.AlertBandStats(items),
			StatusCounts: projector.AlertStatusCounts(items),
		}, nil
	case "threats":
		items, err := p.Threats(raw)
		if err != nil {
			return nil, err
		}
		return projection{Items: items, Total: len(items)}, nil
	case "summary":
		return p.ThreatSummary(raw)
	}
	return nil, fmt.Errorf("unknown payload kind %q", kind)
}
