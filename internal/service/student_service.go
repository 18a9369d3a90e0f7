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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	ExistsByCPF(ctx context.Context, cpf string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type studentEnrollmentReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
}

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	FullName   string `json:"full_name" validate:"required,max=200"`
	Email      string `json:"email" validate:"required,email"`
	CPF        string `json:"cpf" validate:"required,cpf"`
	EnrolledOn string `json:"enrolled_on" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateStudentRequest holds payload for replacing a student.
type UpdateStudentRequest CreateStudentRequest

// PatchStudentRequest holds a partial student update; nil fields are kept.
type PatchStudentRequest struct {
	FullName   *string `json:"full_name" validate:"omitempty,min=1,max=200"`
	Email      *string `json:"email" validate:"omitempty,email"`
	CPF        *string `json:"cpf" validate:"omitempty,cpf"`
	EnrolledOn *string `json:"enrolled_on" validate:"omitempty,datetime=2006-01-02"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo        studentRepository
	enrollments studentEnrollmentReader
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, enrollments studentEnrollmentReader, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:        repo,
		enrollments: enrollments,
		cache:       cache,
		metrics:     metrics,
		validator:   ensureValidator(validate),
		logger:      logger,
	}
}

// List returns students with their financial totals and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	if filter.CPF != "" {
		cpf, ok := models.NormalizeCPF(filter.CPF)
		if !ok {
			// Stored cpfs are always valid, so nothing can match.
			return []models.StudentDetail{}, paginationFor(filter.Page, filter.PageSize, 0), nil
		}
		filter.CPF = cpf
	}
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list students")
	}
	return students, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	return student, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	student := &models.Student{}
	if err := s.apply(ctx, student, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, s.writeError(err, "failed to create student")
	}
	s.afterWrite(ctx, "create")
	return student, nil
}

// Update replaces every editable field of a student.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, student, CreateStudentRequest(req)); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, s.writeError(err, "failed to update student")
	}
	s.afterWrite(ctx, "update")
	return student, nil
}

// Patch updates only the provided fields of a student.
func (s *StudentService) Patch(ctx context.Context, id string, req PatchStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := UpdateStudentRequest{
		FullName:   current.FullName,
		Email:      current.Email,
		CPF:        current.CPF,
		EnrolledOn: current.EnrolledOn.Format(dateLayout),
	}
	if req.FullName != nil {
		merged.FullName = *req.FullName
	}
	if req.Email != nil {
		merged.Email = *req.Email
	}
	if req.CPF != nil {
		merged.CPF = *req.CPF
	}
	if req.EnrolledOn != nil {
		merged.EnrolledOn = *req.EnrolledOn
	}
	return s.Update(ctx, id, merged)
}

// Delete removes a student together with its enrollments.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(err, "student not found", "failed to delete student")
	}
	s.afterWrite(ctx, "delete")
	return nil
}

// Enrollments returns the enrollment history of a student.
func (s *StudentService) Enrollments(ctx context.Context, id string) ([]models.EnrollmentDetail, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	items, err := s.enrollments.ListByStudent(ctx, id)
	if err != nil {
		return nil, internalError(err, "failed to list student enrollments")
	}
	return items, nil
}

// Financial returns the amounts a student owes and has paid.
func (s *StudentService) Financial(ctx context.Context, id string) (*models.StudentFinancialSummary, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.enrollments.ListByStudent(ctx, id)
	if err != nil {
		return nil, internalError(err, "failed to load student enrollments")
	}
	summary := models.SummarizeStudent(*student, items)
	return &summary, nil
}

// apply validates req and copies it onto student. student.ID is used to
// exclude the record itself from uniqueness checks.
func (s *StudentService) apply(ctx context.Context, student *models.Student, req CreateStudentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid student payload")
	}
	cpf, _ := models.NormalizeCPF(req.CPF)
	enrolledOn, err := parseDate(req.EnrolledOn)
	if err != nil {
		return err
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, student.ID)
	if err != nil {
		return internalError(err, "failed to validate email")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}
	exists, err = s.repo.ExistsByCPF(ctx, cpf, student.ID)
	if err != nil {
		return internalError(err, "failed to validate cpf")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "cpf already registered")
	}

	student.FullName = req.FullName
	student.Email = req.Email
	student.CPF = cpf
	if !enrolledOn.IsZero() {
		student.EnrolledOn = enrolledOn
	}
	return nil
}

func (s *StudentService) writeError(err error, message string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return appErrors.Clone(appErrors.ErrConflict, "email already registered")
	case errors.Is(err, repository.ErrDuplicateCPF):
		return appErrors.Clone(appErrors.ErrConflict, "cpf already registered")
	default:
		return internalError(err, message)
	}
}

func (s *StudentService) afterWrite(ctx context.Context, operation string) {
	s.metrics.CountWrite("student", operation)
	s.cache.InvalidateDerived(ctx)
}
