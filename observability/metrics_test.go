package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/surveys/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", m.Handler())

	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/surveys/"+id, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/surveys/:id", "200")))

	m.ResponseRecorded()
	m.DuplicateRejected()
	m.DuplicateRejected()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.responses))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.duplicates))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "survey_hub_duplicate_responses_total 2")
	assert.Contains(t, body, `survey_hub_http_requests_total{method="GET",route="/surveys/:id",status="200"} 2`)
}
