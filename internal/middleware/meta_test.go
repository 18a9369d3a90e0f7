package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportMetaReachesResponseBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestTiming())
	r.GET("/reports/students", func(c *gin.Context) {
		time.Sleep(5 * time.Millisecond)
		MarkCacheHit(c, true)
		c.JSON(http.StatusOK, gin.H{"meta": ReportMeta(c)})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/students", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body.Meta["cache_hit"])
	assert.Equal(t, SourceCache, body.Meta["source"])
	require.Contains(t, body.Meta, "processing_time_ms")
	assert.GreaterOrEqual(t, body.Meta["processing_time_ms"].(float64), 5.0)
}

func TestMarkCacheHitWithoutTiming(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	MarkCacheHit(c, false)
	meta := ReportMeta(c)
	assert.Equal(t, false, meta["cache_hit"])
	assert.Equal(t, SourceDatabase, meta["source"])
	assert.Contains(t, meta, "processing_time_ms")
}

func TestReportMetaWithoutCacheLookup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	meta := ReportMeta(c)
	assert.NotContains(t, meta, "source")
	assert.NotContains(t, meta, "cache_hit")
}
