package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mbdsaraiva/academia-api/internal/dto"
	"github.com/mbdsaraiva/academia-api/internal/models"
	"github.com/mbdsaraiva/academia-api/internal/service"
)

type responseEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *errorBody             `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newTestContext(method, target string, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

type studentServiceMock struct {
	listResp      []models.StudentDetail
	getResp       *models.Student
	financialResp *models.StudentFinancialSummary
	err           error
	lastFilter    models.StudentFilter
	lastCreate    service.CreateStudentRequest
	lastPatch     service.PatchStudentRequest
	lastID        string
}

func (m *studentServiceMock) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.listResp, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: len(m.listResp)}, nil
}

func (m *studentServiceMock) Get(ctx context.Context, id string) (*models.Student, error) {
	m.lastID = id
	return m.getResp, m.err
}

func (m *studentServiceMock) Create(ctx context.Context, req service.CreateStudentRequest) (*models.Student, error) {
	m.lastCreate = req
	return m.getResp, m.err
}

func (m *studentServiceMock) Update(ctx context.Context, id string, req service.UpdateStudentRequest) (*models.Student, error) {
	m.lastID = id
	return m.getResp, m.err
}

func (m *studentServiceMock) Patch(ctx context.Context, id string, req service.PatchStudentRequest) (*models.Student, error) {
	m.lastID = id
	m.lastPatch = req
	return m.getResp, m.err
}

func (m *studentServiceMock) Delete(ctx context.Context, id string) error {
	m.lastID = id
	return m.err
}

func (m *studentServiceMock) Enrollments(ctx context.Context, id string) ([]models.EnrollmentDetail, error) {
	m.lastID = id
	return nil, m.err
}

func (m *studentServiceMock) Financial(ctx context.Context, id string) (*models.StudentFinancialSummary, error) {
	m.lastID = id
	return m.financialResp, m.err
}

type courseServiceMock struct {
	getResp    *models.Course
	statsResp  *models.CourseStatistics
	err        error
	lastFilter models.CourseFilter
	lastID     string
}

func (m *courseServiceMock) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, error) {
	m.lastFilter = filter
	return []models.CourseDetail{}, &models.Pagination{Page: 1, PageSize: 20}, m.err
}

func (m *courseServiceMock) Get(ctx context.Context, id string) (*models.Course, error) {
	m.lastID = id
	return m.getResp, m.err
}

func (m *courseServiceMock) Create(ctx context.Context, req service.CreateCourseRequest) (*models.Course, error) {
	return m.getResp, m.err
}

func (m *courseServiceMock) Update(ctx context.Context, id string, req service.UpdateCourseRequest) (*models.Course, error) {
	m.lastID = id
	return m.getResp, m.err
}

func (m *courseServiceMock) Patch(ctx context.Context, id string, req service.PatchCourseRequest) (*models.Course, error) {
	m.lastID = id
	return m.getResp, m.err
}

func (m *courseServiceMock) Delete(ctx context.Context, id string) error {
	m.lastID = id
	return m.err
}

func (m *courseServiceMock) Enrollments(ctx context.Context, id string) ([]models.EnrollmentDetail, error) {
	m.lastID = id
	return nil, m.err
}

func (m *courseServiceMock) Statistics(ctx context.Context, id string) (*models.CourseStatistics, error) {
	m.lastID = id
	return m.statsResp, m.err
}

type enrollmentServiceMock struct {
	detail     *models.EnrollmentDetail
	err        error
	lastFilter models.EnrollmentFilter
	lastCreate service.CreateEnrollmentRequest
	lastID     string
	calls      []string
}

func (m *enrollmentServiceMock) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	m.lastFilter = filter
	m.calls = append(m.calls, "list")
	return []models.EnrollmentDetail{}, &models.Pagination{Page: 1, PageSize: 20}, m.err
}

func (m *enrollmentServiceMock) Get(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	m.lastID = id
	m.calls = append(m.calls, "get")
	return m.detail, m.err
}

func (m *enrollmentServiceMock) Create(ctx context.Context, req service.CreateEnrollmentRequest) (*models.EnrollmentDetail, error) {
	m.lastCreate = req
	m.calls = append(m.calls, "create")
	return m.detail, m.err
}

func (m *enrollmentServiceMock) Update(ctx context.Context, id string, req service.UpdateEnrollmentRequest) (*models.EnrollmentDetail, error) {
	m.lastID = id
	m.calls = append(m.calls, "update")
	return m.detail, m.err
}

func (m *enrollmentServiceMock) Patch(ctx context.Context, id string, req service.PatchEnrollmentRequest) (*models.EnrollmentDetail, error) {
	m.lastID = id
	m.calls = append(m.calls, "patch")
	return m.detail, m.err
}

func (m *enrollmentServiceMock) Delete(ctx context.Context, id string) error {
	m.lastID = id
	m.calls = append(m.calls, "delete")
	return m.err
}

func (m *enrollmentServiceMock) MarkPaid(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	m.lastID = id
	m.calls = append(m.calls, "mark-paid")
	return m.detail, m.err
}

func (m *enrollmentServiceMock) MarkPending(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	m.lastID = id
	m.calls = append(m.calls, "mark-pending")
	return m.detail, m.err
}

type reportServiceMock struct {
	students   *dto.StudentRollupResponse
	courses    *dto.CourseRollupResponse
	summary    *models.EnrollmentSummary
	file       *service.ExportFile
	hit        bool
	err        error
	lastKind   service.ReportKind
	lastFormat string
}

func (m *reportServiceMock) StudentRollups(ctx context.Context) (*dto.StudentRollupResponse, bool, error) {
	return m.students, m.hit, m.err
}

func (m *reportServiceMock) CourseRollups(ctx context.Context) (*dto.CourseRollupResponse, bool, error) {
	return m.courses, m.hit, m.err
}

func (m *reportServiceMock) EnrollmentSummary(ctx context.Context) (*models.EnrollmentSummary, bool, error) {
	return m.summary, m.hit, m.err
}

func (m *reportServiceMock) Export(ctx context.Context, kind service.ReportKind, format string) (*service.ExportFile, error) {
	m.lastKind = kind
	m.lastFormat = format
	return m.file, m.err
}

type dashboardServiceMock struct {
	resp *dto.DashboardResponse
	hit  bool
	err  error
}

func (m *dashboardServiceMock) Summary(ctx context.Context) (*dto.DashboardResponse, bool, error) {
	return m.resp, m.hit, m.err
}
