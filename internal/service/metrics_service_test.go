package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/students", http.StatusOK, 20*time.Millisecond)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.ObserveReport(reportLabelStudents, false, 10*time.Millisecond)
	m.ObserveReport(reportLabelStudents, true, time.Millisecond)
	m.ObserveReport(reportLabelDashboard, true, time.Millisecond)
	m.CountWrite("student", "create")

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.RequestsTotal)
	assert.Equal(t, 0.5, snap.CacheHitRatio)
	assert.Equal(t, map[string]uint64{"students": 2, "dashboard": 1}, snap.ReportsServed)
	assert.Equal(t, uint64(1), snap.WritesTotal)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `academia_writes_total{entity="student",operation="create"} 1`)
	assert.Contains(t, body, `academia_cache_lookups_total{result="hit"} 1`)
	assert.Contains(t, body, `academia_report_duration_seconds_count{report="students",source="cache"} 1`)
	assert.Contains(t, body, `academia_report_duration_seconds_count{report="students",source="database"} 1`)
	assert.Contains(t, body, `academia_http_request_duration_seconds_count{method="GET",route="/api/v1/students",status="200"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveReport(reportLabelCourses, false, time.Millisecond)
	m.RecordCacheLookup(true)
	m.ObserveCacheWrite(time.Millisecond)
	m.CountWrite("student", "create")
	assert.Zero(t, m.Snapshot().RequestsTotal)
	assert.NotNil(t, m.Snapshot().ReportsServed)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
