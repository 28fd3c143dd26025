package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountsRequests(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/counted", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpReqs.WithLabelValues(http.MethodGet, "/counted", "204"))
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/counted", nil))
	}
	after := testutil.ToFloat64(httpReqs.WithLabelValues(http.MethodGet, "/counted", "204"))
	if after-before != 3 {
		t.Fatalf("counter delta = %v, want 3", after-before)
	}
}

func TestMetrics_UnmatchedRouteHasBoundedLabel(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())

	before := testutil.ToFloat64(httpReqs.WithLabelValues(http.MethodGet, "unmatched", "404"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/no/such/route/12345", nil))
	after := testutil.ToFloat64(httpReqs.WithLabelValues(http.MethodGet, "unmatched", "404"))
	if after-before != 1 {
		t.Fatalf("unmatched counter delta = %v, want 1", after-before)
	}
}

func TestMetrics_InflightReturnsToZero(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("inflight gauge = %v after completion", got)
	}
}
