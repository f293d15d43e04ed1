package api

import (
	"context"
	"net/http"
	"time"

	"riskview/internal/metrics"
	"riskview/internal/riskrules"
	"riskview/internal/view"
	"riskview/pkg/models"
)

// EntityRanker returns the highest-risk entities from a secondary store.
type EntityRanker interface {
	TopEntities(ctx context.Context, limit int64) ([]models.Entity, error)
}

// Deps are the collaborators served by the router.
type Deps struct {
	View  *view.View
	Rules *riskrules.Book
	// Ranker is optional; without it top entities are ranked from the view.
	Ranker         EntityRanker
	RefreshTimeout time.Duration
}

// NewRouter builds the API handler.
func NewRouter(d Deps) http.Handler {
	if d.RefreshTimeout <= 0 {
		d.RefreshTimeout = 10 * time.Second
	}
	h := &handlers{deps: d}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// View data
	mux.HandleFunc("GET /api/entities", h.listEntities)
	mux.HandleFunc("GET /api/entities/top", h.topEntities)
	mux.HandleFunc("GET /api/alerts", h.listAlerts)
	mux.HandleFunc("POST /api/alerts/{id}/acknowledge", h.acknowledgeAlert)
	mux.HandleFunc("POST /api/alerts/{id}/resolve", h.resolveAlert)
	mux.HandleFunc("GET /api/threats", h.listThreats)
	mux.HandleFunc("GET /api/summary", h.summary)
	mux.HandleFunc("POST /api/refresh", h.refresh)

	// Rules
	mux.HandleFunc("GET /api/rules", h.listRules)
	mux.HandleFunc("POST /api/rules", h.createRule)
	mux.HandleFunc("POST /api/rules/{id}/toggle", h.toggleRule)
	mux.HandleFunc("PUT /api/rules/{id}/weightage", h.setRuleWeightage)
	mux.HandleFunc("DELETE /api/rules/{id}", h.deleteRule)

	return withCORS(mux)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
