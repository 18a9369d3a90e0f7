package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mbdsaraiva/academia-api/internal/models"
	appErrors "github.com/mbdsaraiva/academia-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type courseEnrollmentReader interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error)
}

// CreateCourseRequest holds payload for creating courses.
type CreateCourseRequest struct {
	Name            string          `json:"name" validate:"required,max=200"`
	WorkloadHours   int             `json:"workload_hours" validate:"required,gt=0"`
	RegistrationFee decimal.Decimal `json:"registration_fee" validate:"required,gt=0"`
	Status          string          `json:"status" validate:"omitempty,course_status"`
}

// UpdateCourseRequest holds payload for replacing a course.
type UpdateCourseRequest CreateCourseRequest

// PatchCourseRequest holds a partial course update; nil fields are kept.
type PatchCourseRequest struct {
	Name            *string          `json:"name" validate:"omitempty,min=1,max=200"`
	WorkloadHours   *int             `json:"workload_hours" validate:"omitempty,gt=0"`
	RegistrationFee *decimal.Decimal `json:"registration_fee" validate:"omitempty,gt=0"`
	Status          *string          `json:"status" validate:"omitempty,course_status"`
}

// CourseService handles course use-cases.
type CourseService struct {
	repo        courseRepository
	enrollments courseEnrollmentReader
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, enrollments courseEnrollmentReader, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		repo:        repo,
		enrollments: enrollments,
		cache:       cache,
		metrics:     metrics,
		validator:   ensureValidator(validate),
		logger:      logger,
	}
}

// List returns courses with enrollment counts and pagination metadata.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, error) {
	if filter.Status != "" {
		status, _ := models.ParseCourseStatus(string(filter.Status))
		filter.Status = status
	}
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list courses")
	}
	return courses, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a single course.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "course not found", "failed to load course")
	}
	return course, nil
}

// Create registers a new course.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	course := &models.Course{Status: models.CourseStatusActive}
	if err := s.apply(course, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, internalError(err, "failed to create course")
	}
	s.afterWrite(ctx, "create")
	return course, nil
}

// Update replaces every editable field of a course.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.Course, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(course, CreateCourseRequest(req)); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, internalError(err, "failed to update course")
	}
	s.afterWrite(ctx, "update")
	return course, nil
}

// Patch updates only the provided fields of a course.
func (s *CourseService) Patch(ctx context.Context, id string, req PatchCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid value")
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := UpdateCourseRequest{
		Name:            current.Name,
		WorkloadHours:   current.WorkloadHours,
		RegistrationFee: current.RegistrationFee.Decimal,
		Status:          string(current.Status),
	}
	if req.Name != nil {
		merged.Name = *req.Name
	}
	if req.WorkloadHours != nil {
		merged.WorkloadHours = *req.WorkloadHours
	}
	if req.RegistrationFee != nil {
		merged.RegistrationFee = *req.RegistrationFee
	}
	if req.Status != nil {
		merged.Status = *req.Status
	}
	return s.Update(ctx, id, merged)
}

// Delete removes a course together with its enrollments.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(err, "course not found", "failed to delete course")
	}
	s.afterWrite(ctx, "delete")
	return nil
}

// Enrollments lists the enrollments of a course.
func (s *CourseService) Enrollments(ctx context.Context, id string) ([]models.EnrollmentDetail, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	items, err := s.enrollments.ListByCourse(ctx, id)
	if err != nil {
		return nil, internalError(err, "failed to list course enrollments")
	}
	return items, nil
}

// Statistics returns enrollment counts, collected revenue and pending revenue of a course.
func (s *CourseService) Statistics(ctx context.Context, id string) (*models.CourseStatistics, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.enrollments.ListByCourse(ctx, id)
	if err != nil {
		return nil, internalError(err, "failed to load course enrollments")
	}
	stats := models.SummarizeCourse(*course, items)
	return &stats, nil
}

func (s *CourseService) apply(course *models.Course, req CreateCourseRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid value")
	}
	fee := req.RegistrationFee.Round(2)
	if !fee.IsPositive() {
		return appErrors.Clone(appErrors.ErrValidation, "invalid value")
	}
	course.Name = req.Name
	course.WorkloadHours = req.WorkloadHours
	course.RegistrationFee = models.NewMoney(fee)
	if req.Status != "" {
		course.Status, _ = models.ParseCourseStatus(req.Status)
	}
	return nil
}

func (s *CourseService) afterWrite(ctx context.Context, operation string) {
	s.metrics.CountWrite("course", operation)
	s.cache.InvalidateDerived(ctx)
}
