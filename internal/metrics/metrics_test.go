package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.Update("answer")
	m.Update("answer")
	m.Update("command")
	m.TestCreated()
	m.ResultRecorded()
	m.ResultRecorded()
	m.FlowAborted("invalid_option")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Updates.WithLabelValues("answer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Updates.WithLabelValues("command")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TestsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ResultsRecorded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FlowAborts.WithLabelValues("invalid_option")))
}

func TestIndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.TestCreated()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.TestsCreated))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", m.Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("GET", "/ping", "200")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{endpoint="/ping",method="GET",status="200"} 1`)
}
