package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbdsaraiva/academia-api/internal/dto"
	"github.com/mbdsaraiva/academia-api/internal/middleware"
	"github.com/mbdsaraiva/academia-api/internal/models"
	"github.com/mbdsaraiva/academia-api/internal/service"
	"github.com/mbdsaraiva/academia-api/pkg/response"
)

type reportService interface {
	StudentRollups(ctx context.Context) (*dto.StudentRollupResponse, bool, error)
	CourseRollups(ctx context.Context) (*dto.CourseRollupResponse, bool, error)
	EnrollmentSummary(ctx context.Context) (*models.EnrollmentSummary, bool, error)
	Export(ctx context.Context, kind service.ReportKind, format string) (*service.ExportFile, error)
}

// ReportHandler exposes the aggregated financial reports.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Students godoc
// @Summary Per-student financial report
// @Description One row per student with paid, owed and grand totals, largest grand total first.
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/students [get]
func (h *ReportHandler) Students(c *gin.Context) {
	resp, hit, err := h.reports.StudentRollups(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.MarkCacheHit(c, hit)
	response.JSON(c, http.StatusOK, resp, nil, middleware.ReportMeta(c))
}

// Courses godoc
// @Summary Per-course enrollment report
// @Description One row per course with enrollment counts and collected revenue, most enrollments first.
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/courses [get]
func (h *ReportHandler) Courses(c *gin.Context) {
	resp, hit, err := h.reports.CourseRollups(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.MarkCacheHit(c, hit)
	response.JSON(c, http.StatusOK, resp, nil, middleware.ReportMeta(c))
}

// EnrollmentSummary godoc
// @Summary Global enrollment financial summary
// @Tags Enrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /enrollments/financial-summary [get]
func (h *ReportHandler) EnrollmentSummary(c *gin.Context) {
	summary, hit, err := h.reports.EnrollmentSummary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.MarkCacheHit(c, hit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ReportMeta(c))
}

// ExportStudents godoc
// @Summary Download the per-student report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /reports/students/export [get]
func (h *ReportHandler) ExportStudents(c *gin.Context) {
	h.export(c, service.ReportStudents)
}

// ExportCourses godoc
// @Summary Download the per-course report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /reports/courses/export [get]
func (h *ReportHandler) ExportCourses(c *gin.Context) {
	h.export(c, service.ReportCourses)
}

func (h *ReportHandler) export(c *gin.Context, kind service.ReportKind) {
	file, err := h.reports.Export(c.Request.Context(), kind, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
