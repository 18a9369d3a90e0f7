package service

import (
	"database/sql"
	"errors"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mbdsaraiva/academia-api/internal/models"
	appErrors "github.com/mbdsaraiva/academia-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// NewValidator returns a validator aware of the academia specific tags:
// cpf, course_status, enrollment_status and numeric rules over decimal.Decimal.
func NewValidator() *validator.Validate {
	v := validator.New()
	registerValidations(v)
	return v
}

func registerValidations(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		_, ok := models.NormalizeCPF(fl.Field().String())
		return ok
	})
	v.RegisterValidation("course_status", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseCourseStatus(fl.Field().String())
		return ok
	})
	v.RegisterValidation("enrollment_status", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseEnrollmentStatus(fl.Field().String())
		return ok
	})
}

func ensureValidator(v *validator.Validate) *validator.Validate {
	if v == nil {
		return NewValidator()
	}
	registerValidations(v)
	return v
}

// validationError converts a validator failure into a typed error. A failing
// cpf rule wins over the generic validation code.
func validationError(err error, message string) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.Tag() == "cpf" {
				return appErrors.Wrap(err, appErrors.ErrInvalidCPF.Code, appErrors.ErrInvalidCPF.Status, appErrors.ErrInvalidCPF.Message)
			}
		}
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// lookupError maps a repository read failure to NOT_FOUND or INTERNAL_ERROR.
func lookupError(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internal)
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// parseDate parses an optional YYYY-MM-DD value; empty yields the zero time.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dates must use YYYY-MM-DD")
	}
	return t, nil
}

func paginationFor(page, size, total int) *models.Pagination {
	page, size = models.NormalizePage(page, size)
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
