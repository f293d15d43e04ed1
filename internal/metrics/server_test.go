package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesViewMetrics(t *testing.T) {
	FetchesTotal.WithLabelValues("entities", "committed").Inc()
	EntitiesByBand.WithLabelValues("high").Set(3)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `riskview_fetches_total{outcome="committed",slice="entities"}`)
	assert.Contains(t, body, `riskview_entities_by_band{band="high"} 3`)
}
