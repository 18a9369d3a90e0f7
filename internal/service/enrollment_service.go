package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mbdsaraiva/academia-api/internal/models"
	"github.com/mbdsaraiva/academia-api/internal/repository"
	appErrors "github.com/mbdsaraiva/academia-api/pkg/errors"
)

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	Exists(ctx context.Context, studentID, courseID, excludeID string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, enrollment *models.Enrollment) error
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error
	Delete(ctx context.Context, id string) error
}

type studentLookup interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type courseLookup interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// CreateEnrollmentRequest holds payload for enrolling a student in a course.
type CreateEnrollmentRequest struct {
	StudentID  string `json:"student_id" validate:"required"`
	CourseID   string `json:"course_id" validate:"required"`
	EnrolledOn string `json:"enrolled_on" validate:"omitempty,datetime=2006-01-02"`
	Status     string `json:"status" validate:"omitempty,enrollment_status"`
}

// UpdateEnrollmentRequest holds payload for replacing an enrollment.
type UpdateEnrollmentRequest CreateEnrollmentRequest

// PatchEnrollmentRequest holds a partial enrollment update; nil fields are kept.
type PatchEnrollmentRequest struct {
	StudentID  *string `json:"student_id" validate:"omitempty,min=1"`
	CourseID   *string `json:"course_id" validate:"omitempty,min=1"`
	EnrolledOn *string `json:"enrolled_on" validate:"omitempty,datetime=2006-01-02"`
	Status     *string `json:"status" validate:"omitempty,enrollment_status"`
}

// EnrollmentService coordinates enrollment rules and payment transitions.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  studentLookup
	courses   courseLookup
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(repo enrollmentRepository, students studentLookup, courses courseLookup, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:      repo,
		students:  students,
		courses:   courses,
		cache:     cache,
		metrics:   metrics,
		validator: ensureValidator(validate),
		logger:    logger,
	}
}

// List returns enrollments with pagination metadata.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	if filter.Status != "" {
		filter.Status, _ = models.ParseEnrollmentStatus(string(filter.Status))
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list enrollments")
	}
	return items, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns an enrollment with student and course context.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "enrollment not found", "failed to load enrollment")
	}
	return detail, nil
}

// Create enrolls a student in a course. A duplicate pair is reported before an
// inactive course.
func (s *EnrollmentService) Create(ctx context.Context, req CreateEnrollmentRequest) (*models.EnrollmentDetail, error) {
	enrollment := &models.Enrollment{Status: models.EnrollmentStatusPending}
	if err := s.apply(ctx, enrollment, req, true, true); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, writeEnrollmentError(err, "failed to create enrollment")
	}
	s.logger.Info("enrollment created",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("student_id", enrollment.StudentID),
		zap.String("course_id", enrollment.CourseID),
	)
	s.afterWrite(ctx, "create")
	return s.Get(ctx, enrollment.ID)
}

// Update replaces every editable field of an enrollment. The duplicate check
// only runs when the pair changes and the active check only when the course changes.
func (s *EnrollmentService) Update(ctx context.Context, id string, req UpdateEnrollmentRequest) (*models.EnrollmentDetail, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	enrollment := current.Enrollment
	pairChanged := req.StudentID != enrollment.StudentID || req.CourseID != enrollment.CourseID
	courseChanged := req.CourseID != enrollment.CourseID
	if err := s.apply(ctx, &enrollment, CreateEnrollmentRequest(req), pairChanged, courseChanged); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &enrollment); err != nil {
		return nil, writeEnrollmentError(err, "failed to update enrollment")
	}
	s.afterWrite(ctx, "update")
	return s.Get(ctx, id)
}

// Patch updates only the provided fields of an enrollment.
func (s *EnrollmentService) Patch(ctx context.Context, id string, req PatchEnrollmentRequest) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid enrollment payload")
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := UpdateEnrollmentRequest{
		StudentID:  current.StudentID,
		CourseID:   current.CourseID,
		EnrolledOn: current.EnrolledOn.Format(dateLayout),
		Status:     string(current.Status),
	}
	if req.StudentID != nil {
		merged.StudentID = *req.StudentID
	}
	if req.CourseID != nil {
		merged.CourseID = *req.CourseID
	}
	if req.EnrolledOn != nil {
		merged.EnrolledOn = *req.EnrolledOn
	}
	if req.Status != nil {
		merged.Status = *req.Status
	}
	return s.Update(ctx, id, merged)
}

// Delete removes an enrollment.
func (s *EnrollmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(err, "enrollment not found", "failed to delete enrollment")
	}
	s.afterWrite(ctx, "delete")
	return nil
}

// MarkPaid settles an enrollment. Settling a paid enrollment is a no-op.
func (s *EnrollmentService) MarkPaid(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	return s.transition(ctx, id, (*models.Enrollment).MarkPaid, "enrollment marked paid")
}

// MarkPending reverts an enrollment to pending.
func (s *EnrollmentService) MarkPending(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	return s.transition(ctx, id, (*models.Enrollment).MarkPending, "enrollment marked pending")
}

func (s *EnrollmentService) transition(ctx context.Context, id string, change func(*models.Enrollment) bool, message string) (*models.EnrollmentDetail, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !change(&detail.Enrollment) {
		return detail, nil
	}
	if err := s.repo.UpdateStatus(ctx, id, detail.Status); err != nil {
		return nil, lookupError(err, "enrollment not found", "failed to update enrollment status")
	}
	s.logger.Info(message, zap.String("enrollment_id", id), zap.String("status", string(detail.Status)))
	s.afterWrite(ctx, "status")
	return s.Get(ctx, id)
}

// apply validates req and copies it onto enrollment. checkPair and
// checkCourse select which business rules run.
func (s *EnrollmentService) apply(ctx context.Context, enrollment *models.Enrollment, req CreateEnrollmentRequest, checkPair, checkCourse bool) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid enrollment payload")
	}
	enrolledOn, err := parseDate(req.EnrolledOn)
	if err != nil {
		return err
	}

	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		return lookupError(err, "student not found", "failed to load student")
	}
	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return lookupError(err, "course not found", "failed to load course")
	}

	if checkPair {
		exists, err := s.repo.Exists(ctx, req.StudentID, req.CourseID, enrollment.ID)
		if err != nil {
			return internalError(err, "failed to validate enrollment")
		}
		if exists {
			return appErrors.Clone(appErrors.ErrDuplicateEnrollment, "")
		}
	}
	if checkCourse && !course.IsActive() {
		return appErrors.Clone(appErrors.ErrInactiveCourse, "")
	}

	enrollment.StudentID = req.StudentID
	enrollment.CourseID = req.CourseID
	if !enrolledOn.IsZero() {
		enrollment.EnrolledOn = enrolledOn
	}
	if req.Status != "" {
		enrollment.Status, _ = models.ParseEnrollmentStatus(req.Status)
	}
	return nil
}

func writeEnrollmentError(err error, message string) error {
	if errors.Is(err, repository.ErrDuplicateEnrollment) {
		return appErrors.Clone(appErrors.ErrDuplicateEnrollment, "")
	}
	return internalError(err, message)
}

func (s *EnrollmentService) afterWrite(ctx context.Context, operation string) {
	s.metrics.CountWrite("enrollment", operation)
	s.cache.InvalidateDerived(ctx)
}
