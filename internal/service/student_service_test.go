package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbdsaraiva/academia-api/internal/models"
	"github.com/mbdsaraiva/academia-api/internal/repository"
	appErrors "github.com/mbdsaraiva/academia-api/pkg/errors"
)

func newStudentFixture(students ...models.Student) (*StudentService, *fakeStudentRepo, *fakeEnrollmentRepo, *fakeCourseRepo) {
	studentRepo := newFakeStudentRepo(students...)
	courseRepo := newFakeCourseRepo()
	enrollmentRepo := newFakeEnrollmentRepo(studentRepo, courseRepo)
	svc := NewStudentService(studentRepo, enrollmentRepo, nil, nil, nil, nil)
	return svc, studentRepo, enrollmentRepo, courseRepo
}

func TestStudentServiceCreateNormalizesCPF(t *testing.T) {
	svc, repo, _, _ := newStudentFixture()

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		FullName:   "Ana Souza",
		Email:      "ana@example.com",
		CPF:        "123.456.789-01",
		EnrolledOn: "2024-02-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "12345678901", student.CPF)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), student.EnrolledOn)
	assert.Contains(t, repo.students, student.ID)
}

func TestStudentServiceCreateInvalidCPF(t *testing.T) {
	svc, repo, _, _ := newStudentFixture()

	for _, cpf := range []string{"1234567890", "111.111.111-11", "abc"} {
		_, err := svc.Create(context.Background(), CreateStudentRequest{FullName: "Ana", Email: "ana@example.com", CPF: cpf})
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCPF), cpf)
	}
	assert.Empty(t, repo.students)
}

func TestStudentServiceCreateInvalidEmail(t *testing.T) {
	svc, _, _, _ := newStudentFixture()

	_, err := svc.Create(context.Background(), CreateStudentRequest{FullName: "Ana", Email: "not-an-email", CPF: "12345678901"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestStudentServiceCreateConflicts(t *testing.T) {
	existing := models.Student{ID: "stu-1", FullName: "Ana", Email: "ana@example.com", CPF: "12345678901"}
	svc, _, _, _ := newStudentFixture(existing)

	_, err := svc.Create(context.Background(), CreateStudentRequest{FullName: "Other", Email: "ana@example.com", CPF: "10987654321"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))

	_, err = svc.Create(context.Background(), CreateStudentRequest{FullName: "Other", Email: "other@example.com", CPF: "123.456.789-01"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
}

func TestStudentServiceCreateRacingDuplicate(t *testing.T) {
	svc, repo, _, _ := newStudentFixture()
	repo.createErr = repository.ErrDuplicateEmail

	_, err := svc.Create(context.Background(), CreateStudentRequest{FullName: "Ana", Email: "ana@example.com", CPF: "12345678901"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "email already registered", appErr.Message)
}

func TestStudentServiceUpdateKeepsOwnEmail(t *testing.T) {
	existing := models.Student{ID: "stu-1", FullName: "Ana", Email: "ana@example.com", CPF: "12345678901"}
	svc, repo, _, _ := newStudentFixture(existing)

	updated, err := svc.Update(context.Background(), "stu-1", UpdateStudentRequest{FullName: "Ana Maria", Email: "ana@example.com", CPF: "12345678901"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.FullName)
	assert.Equal(t, "Ana Maria", repo.students["stu-1"].FullName)
}

func TestStudentServicePatch(t *testing.T) {
	enrolled := time.Date(2023, 5, 10, 0, 0, 0, 0, time.UTC)
	existing := models.Student{ID: "stu-1", FullName: "Ana", Email: "ana@example.com", CPF: "12345678901", EnrolledOn: enrolled}
	svc, _, _, _ := newStudentFixture(existing)

	email := "ana.souza@example.com"
	patched, err := svc.Patch(context.Background(), "stu-1", PatchStudentRequest{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, email, patched.Email)
	assert.Equal(t, "Ana", patched.FullName)
	assert.Equal(t, enrolled, patched.EnrolledOn)

	bad := "123"
	_, err = svc.Patch(context.Background(), "stu-1", PatchStudentRequest{CPF: &bad})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCPF))
}

func TestStudentServiceGetAndDeleteNotFound(t *testing.T) {
	svc, _, _, _ := newStudentFixture()

	_, err := svc.Get(context.Background(), "missing")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))

	err = svc.Delete(context.Background(), "missing")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestStudentServiceFinancial(t *testing.T) {
	svc, _, enrollmentRepo, courseRepo := newStudentFixture(models.Student{ID: "stu-1", FullName: "Ana"})
	courseRepo.courses["c1"] = models.Course{ID: "c1", RegistrationFee: mustMoney("100.00"), Status: models.CourseStatusActive}
	courseRepo.courses["c2"] = models.Course{ID: "c2", RegistrationFee: mustMoney("50.00"), Status: models.CourseStatusActive}
	enrollmentRepo.enrollments["e1"] = models.Enrollment{ID: "e1", StudentID: "stu-1", CourseID: "c1", Status: models.EnrollmentStatusPending}
	enrollmentRepo.enrollments["e2"] = models.Enrollment{ID: "e2", StudentID: "stu-1", CourseID: "c2", Status: models.EnrollmentStatusPaid}

	summary, err := svc.Financial(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", summary.StudentName)
	assert.True(t, summary.TotalOwed.Equal(mustDecimal("100")))
	assert.True(t, summary.TotalPaid.Equal(mustDecimal("50")))
	assert.True(t, summary.GrandTotal.Equal(mustDecimal("150")))
	assert.Equal(t, 2, summary.TotalEnrollments)

	items, err := svc.Enrollments(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestStudentServiceListNormalizesCPFFilter(t *testing.T) {
	svc, repo, _, _ := newStudentFixture()

	_, pagination, err := svc.List(context.Background(), models.StudentFilter{CPF: "123.456.789-01", PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, "12345678901", repo.lastFilter.CPF)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, models.DefaultPageSize, pagination.PageSize)
}

func TestStudentServiceListInvalidCPFMatchesNothing(t *testing.T) {
	for _, raw := range []string{"abc", "123", "111.111.111-11"} {
		t.Run(raw, func(t *testing.T) {
			svc, repo, _, _ := newStudentFixture()
			repo.students["stu-9"] = models.Student{ID: "stu-9", FullName: "Caio", CPF: "98765432100"}

			items, pagination, err := svc.List(context.Background(), models.StudentFilter{CPF: raw})
			require.NoError(t, err)
			assert.Empty(t, items)
			assert.Equal(t, 0, pagination.TotalCount)
			assert.Equal(t, 0, repo.listCalls)
		})
	}
}

func TestStudentServiceWriteInvalidatesReports(t *testing.T) {
	cache, srv := newTestCache(t)
	studentRepo := newFakeStudentRepo()
	svc := NewStudentService(studentRepo, newFakeEnrollmentRepo(studentRepo, newFakeCourseRepo()), cache, nil, nil, nil)

	require.NoError(t, srv.Set("report:students", "{}"))
	require.NoError(t, srv.Set("dash:summary", "{}"))

	_, err := svc.Create(context.Background(), CreateStudentRequest{FullName: "Ana", Email: "ana@example.com", CPF: "12345678901"})
	require.NoError(t, err)
	assert.Empty(t, srv.Keys())
}
