package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestGinMiddleware_RecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware())
	router.GET("/api/articles/:slug", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("GET", "/api/articles/:slug", "200", ServiceName))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/articles/hello", nil))

	after := testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("GET", "/api/articles/:slug", "200", ServiceName))
	if after-before != 1 {
		t.Errorf("Expected counter to increase by 1, got %v", after-before)
	}
}

func TestObserveStoreRequest(t *testing.T) {
	ObserveStoreRequest("cms", "articles", 0.01, nil)
	ObserveStoreRequest("cms", "articles", 0.02, errors.New("boom"))

	if got := testutil.ToFloat64(StoreRequestsTotal.WithLabelValues("cms", "articles", "error")); got < 1 {
		t.Errorf("Expected error counter to be recorded, got %v", got)
	}
}

func TestHandler_ExposesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/metrics", Handler())
	Init("test", "sqlite")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "application_info") {
		t.Errorf("Expected application_info in exposition")
	}
}
