package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mbdsaraiva/academia-api/internal/dto"
	"github.com/mbdsaraiva/academia-api/internal/models"
	appErrors "github.com/mbdsaraiva/academia-api/pkg/errors"
	"github.com/mbdsaraiva/academia-api/pkg/export"
)

const (
	studentRollupKey     = reportCachePrefix + "students"
	courseRollupKey      = reportCachePrefix + "courses"
	enrollmentSummaryKey = reportCachePrefix + "enrollment-summary"

	studentRollupMessage = "Student financial report built from a grouped join over enrollments and courses"
	courseRollupMessage  = "Course enrollment report built from a grouped join over enrollments"
)

type reportRepository interface {
	StudentRollups(ctx context.Context) ([]models.StudentRollup, error)
	CourseRollups(ctx context.Context, limit int) ([]models.CourseRollup, error)
	EnrollmentTotals(ctx context.Context) (*models.EnrollmentTotals, error)
	CatalogCounts(ctx context.Context) (*models.CatalogCounts, error)
}

type datasetRenderer interface {
	Render(format export.Format, data export.Dataset, title string) ([]byte, error)
}

// ReportKind selects which rollup an export renders.
type ReportKind string

// Exportable reports.
const (
	ReportStudents ReportKind = "students"
	ReportCourses  ReportKind = "courses"
)

// ExportFile is a rendered report ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ReportService serves the rollup reports and the global enrollment summary with caching.
type ReportService struct {
	repo     reportRepository
	cache    *CacheService
	metrics  *MetricsService
	renderer datasetRenderer
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService constructs a report service.
func NewReportService(repo reportRepository, cache *CacheService, metrics *MetricsService, renderer datasetRenderer, ttl time.Duration, logger *zap.Logger) *ReportService {
	if renderer == nil {
		renderer = export.NewRenderer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{repo: repo, cache: cache, metrics: metrics, renderer: renderer, ttl: ttl, logger: logger, now: time.Now}
}

// StudentRollups returns the per-student report. The boolean reports a cache hit.
func (s *ReportService) StudentRollups(ctx context.Context) (*dto.StudentRollupResponse, bool, error) {
	start := time.Now()
	var cached dto.StudentRollupResponse
	if s.cacheGet(ctx, studentRollupKey, &cached) {
		s.metrics.ObserveReport(reportLabelStudents, true, time.Since(start))
		return &cached, true, nil
	}

	rows, err := s.repo.StudentRollups(ctx)
	if err != nil {
		return nil, false, internalError(err, "failed to build student report")
	}

	resp := &dto.StudentRollupResponse{Message: studentRollupMessage, TotalStudents: len(rows), Students: rows}
	s.cacheSet(ctx, studentRollupKey, resp)
	s.metrics.ObserveReport(reportLabelStudents, false, time.Since(start))
	return resp, false, nil
}

// CourseRollups returns the per-course report. The boolean reports a cache hit.
func (s *ReportService) CourseRollups(ctx context.Context) (*dto.CourseRollupResponse, bool, error) {
	start := time.Now()
	var cached dto.CourseRollupResponse
	if s.cacheGet(ctx, courseRollupKey, &cached) {
		s.metrics.ObserveReport(reportLabelCourses, true, time.Since(start))
		return &cached, true, nil
	}

	rows, err := s.repo.CourseRollups(ctx, 0)
	if err != nil {
		return nil, false, internalError(err, "failed to build course report")
	}

	resp := &dto.CourseRollupResponse{Message: courseRollupMessage, TotalCourses: len(rows), Courses: rows}
	s.cacheSet(ctx, courseRollupKey, resp)
	s.metrics.ObserveReport(reportLabelCourses, false, time.Since(start))
	return resp, false, nil
}

// EnrollmentSummary returns global enrollment counts and amounts.
func (s *ReportService) EnrollmentSummary(ctx context.Context) (*models.EnrollmentSummary, bool, error) {
	start := time.Now()
	var cached models.EnrollmentSummary
	if s.cacheGet(ctx, enrollmentSummaryKey, &cached) {
		s.metrics.ObserveReport(reportLabelEnrollmentSummary, true, time.Since(start))
		return &cached, true, nil
	}

	totals, err := s.repo.EnrollmentTotals(ctx)
	if err != nil {
		return nil, false, internalError(err, "failed to summarise enrollments")
	}

	summary := totals.Summarize()
	s.cacheSet(ctx, enrollmentSummaryKey, summary)
	s.metrics.ObserveReport(reportLabelEnrollmentSummary, false, time.Since(start))
	return &summary, false, nil
}

// Export renders a rollup report in the requested format.
func (s *ReportService) Export(ctx context.Context, kind ReportKind, rawFormat string) (*ExportFile, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}

	var (
		data  export.Dataset
		title string
	)
	switch kind {
	case ReportStudents:
		resp, _, err := s.StudentRollups(ctx)
		if err != nil {
			return nil, err
		}
		data, title = studentDataset(resp.Students), "Student financial report"
	case ReportCourses:
		resp, _, err := s.CourseRollups(ctx)
		if err != nil {
			return nil, err
		}
		data, title = courseDataset(resp.Courses), "Course enrollment report"
	default:
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}

	body, err := s.renderer.Render(format, data, title)
	if err != nil {
		return nil, internalError(err, "failed to render report")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("%s-report-%s.%s", kind, s.now().UTC().Format("20060102"), format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func (s *ReportService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		return false
	}
	return hit
}

func (s *ReportService) cacheSet(ctx context.Context, key string, value interface{}) {
	_ = s.cache.Set(ctx, key, value, s.ttl)
}

func studentDataset(rows []models.StudentRollup) export.Dataset {
	headers := []string{"Name", "Email", "CPF", "Enrolled on", "Enrollments", "Paid", "Pending", "Total paid", "Total owed", "Grand total"}
	data := export.Dataset{Headers: headers, Rows: make([]map[string]string, 0, len(rows))}
	for _, r := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"Name":        r.FullName,
			"Email":       r.Email,
			"CPF":         r.CPF,
			"Enrolled on": r.EnrolledOn.Format(dateLayout),
			"Enrollments": strconv.Itoa(r.TotalEnrollments),
			"Paid":        strconv.Itoa(r.PaidEnrollments),
			"Pending":     strconv.Itoa(r.PendingEnrollments),
			"Total paid":  r.TotalPaid.StringFixed(2),
			"Total owed":  r.TotalOwed.StringFixed(2),
			"Grand total": r.GrandTotal.StringFixed(2),
		})
	}
	return data
}

func courseDataset(rows []models.CourseRollup) export.Dataset {
	headers := []string{"Course", "Hours", "Fee", "Status", "Enrollments", "Paid", "Pending", "Collected"}
	data := export.Dataset{Headers: headers, Rows: make([]map[string]string, 0, len(rows))}
	for _, r := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"Course":      r.Name,
			"Hours":       strconv.Itoa(r.WorkloadHours),
			"Fee":         r.RegistrationFee.StringFixed(2),
			"Status":      string(r.Status),
			"Enrollments": strconv.Itoa(r.TotalEnrollments),
			"Paid":        strconv.Itoa(r.PaidEnrollments),
			"Pending":     strconv.Itoa(r.PendingEnrollments),
			"Collected":   r.TotalCollected.StringFixed(2),
		})
	}
	return data
}
