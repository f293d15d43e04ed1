package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"riskview/internal/alerts"
	"riskview/internal/projector"
	"riskview/internal/riskrules"
	"riskview/internal/view"
	"riskview/internal/viewstate"
	"riskview/pkg/models"
)

// DefaultAssignee is recorded on acknowledge when the request names nobody.
const DefaultAssignee = "Current User"

// View states reported to clients.
const (
	StateLoading = "loading"
	StateError   = "error"
	StateEmpty   = "empty"
	StateReady   = "ready"
)

const (
	defaultTopAlerts   = 5
	defaultTopEntities = 10
)

type listResponse struct {
	State        string              `json:"state"`
	Query        string              `json:"query"`
	Items        any                 `json:"items"`
	Total        int                 `json:"total"`
	Stats        projector.BandStats `json:"stats"`
	StatusCounts any                 `json:"statusCounts"`
	UpdatedAt    string              `json:"updatedAt,omitempty"`
	Error        string              `json:"error,omitempty"`
}

type sliceSummary struct {
	State     string `json:"state"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	Error     string `json:"error,omitempty"`
}

type summaryResponse struct {
	Entities      projector.BandStats         `json:"entities"`
	EntityStatus  map[models.EntityStatus]int `json:"entityStatus"`
	Alerts        projector.BandStats         `json:"alerts"`
	AlertStatus   map[models.AlertStatus]int  `json:"alertStatus"`
	TopAlerts     []models.Alert              `json:"topAlerts"`
	Threats       []models.Threat             `json:"threats"`
	ThreatSummary *models.ThreatSummary       `json:"threatSummary"`
	Rules         riskrules.Stats             `json:"rules"`
	Slices        map[view.Slice]sliceSummary `json:"slices"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handlers struct {
	deps Deps
}

func (h *handlers) listEntities(w http.ResponseWriter, r *http.Request) {
	state, sortByRisk, ok := parseQuery(w, r)
	if !ok {
		return
	}
	all, st := h.deps.View.Entities()
	items := projector.FilterEntities(all, state.Filters())
	if sortByRisk {
		items = projector.SortEntitiesByRisk(items)
	}
	writeJSON(w, http.StatusOK, listResponse{
		State:        stateOf(st, len(items)),
		Query:        state.Encode(),
		Items:        items,
		Total:        len(all),
		Stats:        projector.EntityBandStats(items),
		StatusCounts: projector.EntityStatusCounts(items),
		UpdatedAt:    formatTime(st.UpdatedAt),
		Error:        errString(st.Err),
	})
}

func (h *handlers) topEntities(w http.ResponseWriter, r *http.Request) {
	limit := defaultTopEntities
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = n
	}

	if h.deps.Ranker != nil {
		items, err := h.deps.Ranker.TopEntities(r.Context(), int64(limit))
		if err == nil {
			writeJSON(w, http.StatusOK, items)
			return
		}
		log.Warnf("rank entities from store: %v", err)
	}

	all, _ := h.deps.View.Entities()
	items := projector.SortEntitiesByRisk(all)
	if len(items) > limit {
		items = items[:limit]
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handlers) listAlerts(w http.ResponseWriter, r *http.Request) {
	state, sortByRisk, ok := parseQuery(w, r)
	if !ok {
		return
	}
	all, st := h.deps.View.Alerts()
	items := projector.FilterAlerts(all, state.Filters())
	if sortByRisk {
		items = projector.SortAlertsByRisk(items)
	}
	writeJSON(w, http.StatusOK, listResponse{
		State:        stateOf(st, len(items)),
		Query:        state.Encode(),
		Items:        items,
		Total:        len(all),
		Stats:        projector.AlertBandStats(items),
		StatusCounts: projector.AlertStatusCounts(items),
		UpdatedAt:    formatTime(st.UpdatedAt),
		Error:        errString(st.Err),
	})
}

func (h *handlers) acknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Assignee string `json:"assignee"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
			return
		}
	}
	if payload.Assignee == "" {
		payload.Assignee = DefaultAssignee
	}
	alert, changed, err := h.deps.View.Acknowledge(r.PathValue("id"), payload.Assignee)
	writeAlertAction(w, alert, changed, err)
}

func (h *handlers) resolveAlert(w http.ResponseWriter, r *http.Request) {
	alert, changed, err := h.deps.View.Resolve(r.PathValue("id"))
	writeAlertAction(w, alert, changed, err)
}

func writeAlertAction(w http.ResponseWriter, alert models.Alert, changed bool, err error) {
	if errors.Is(err, alerts.ErrAlertNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Alert   models.Alert `json:"alert"`
		Changed bool         `json:"changed"`
	}{alert, changed})
}

func (h *handlers) listThreats(w http.ResponseWriter, r *http.Request) {
	items, st := h.deps.View.Threats()
	writeJSON(w, http.StatusOK, listResponse{
		State:        stateOf(st, len(items)),
		Items:        items,
		Total:        len(items),
		Stats:        projector.BandStats{Bands: []projector.BandStat{}},
		StatusCounts: map[string]int{},
		UpdatedAt:    formatTime(st.UpdatedAt),
		Error:        errString(st.Err),
	})
}

func (h *handlers) summary(w http.ResponseWriter, r *http.Request) {
	entities, entSt := h.deps.View.Entities()
	alertList, alertSt := h.deps.View.Alerts()
	threats, threatSt := h.deps.View.Threats()
	summary, sumSt := h.deps.View.ThreatSummary()

	resp := summaryResponse{
		Entities:     projector.EntityBandStats(entities),
		EntityStatus: projector.EntityStatusCounts(entities),
		Alerts:       projector.AlertBandStats(alertList),
		AlertStatus:  projector.AlertStatusCounts(alertList),
		TopAlerts:    projector.TopAlerts(alertList, defaultTopAlerts),
		Threats:      threats,
		Slices: map[view.Slice]sliceSummary{
			view.SliceEntities:      summarize(entSt, len(entities)),
			view.SliceAlerts:        summarize(alertSt, len(alertList)),
			view.SliceThreats:       summarize(threatSt, len(threats)),
			view.SliceThreatSummary: summarize(sumSt, 1),
		},
	}
	if sumSt.Loaded {
		resp.ThreatSummary = &summary
	}
	if h.deps.Rules != nil {
		resp.Rules = h.deps.Rules.Stats()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) refresh(w http.ResponseWriter, r *http.Request) {
	slices := view.Slices
	if raw := r.URL.Query().Get("slice"); raw != "" {
		s, ok := parseSlice(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Errorf("unknown slice %q", raw))
			return
		}
		slices = []view.Slice{s}
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.deps.RefreshTimeout)
	defer cancel()

	out := make(map[view.Slice]sliceSummary, len(slices))
	for _, s := range slices {
		err := h.deps.View.Refresh(ctx, s)
		if errors.Is(err, view.ErrClosed) {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		st := h.deps.View.Status(s)
		out[s] = summarize(st, 1)
	}
	writeJSON(w, http.StatusOK, map[string]any{"slices": out})
}

func (h *handlers) listRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Items []models.RiskRule `json:"items"`
		Stats riskrules.Stats   `json:"stats"`
	}{h.deps.Rules.List(), h.deps.Rules.Stats()})
}

func (h *handlers) createRule(w http.ResponseWriter, r *http.Request) {
	var rule models.RiskRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode rule: %w", err))
		return
	}
	created, err := h.deps.Rules.Create(rule)
	if err != nil {
		writeRuleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handlers) toggleRule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.deps.Rules.Toggle(r.PathValue("id"))
	if err != nil {
		writeRuleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (h *handlers) setRuleWeightage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Weightage *int `json:"weightage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Weightage == nil {
		writeError(w, http.StatusBadRequest, errors.New("weightage is required"))
		return
	}
	rule, err := h.deps.Rules.SetWeightage(r.PathValue("id"), *payload.Weightage)
	if err != nil {
		writeRuleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (h *handlers) deleteRule(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Rules.Delete(r.PathValue("id")); err != nil {
		writeRuleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeRuleError(w http.ResponseWriter, err error) {
	if errors.Is(err, riskrules.ErrRuleNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeError(w, http.StatusBadRequest, err)
}

// parseQuery decodes filter state and the sort key. On failure it writes a
// 400 and returns ok=false.
func parseQuery(w http.ResponseWriter, r *http.Request) (viewstate.State, bool, bool) {
	q := r.URL.Query()
	state, err := viewstate.FromValues(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return viewstate.State{}, false, false
	}
	switch q.Get("sort") {
	case "":
		return state, false, true
	case "risk":
		return state, true, true
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid sort %q", q.Get("sort")))
		return viewstate.State{}, false, false
	}
}

func parseSlice(raw string) (view.Slice, bool) {
	for _, s := range view.Slices {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

func stateOf(st view.Status, n int) string {
	switch {
	case st.Err != nil:
		return StateError
	case !st.Loaded:
		return StateLoading
	case n == 0:
		return StateEmpty
	default:
		return StateReady
	}
}

func summarize(st view.Status, n int) sliceSummary {
	return sliceSummary{
		State:     stateOf(st, n),
		UpdatedAt: formatTime(st.UpdatedAt),
		Error:     errString(st.Err),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
