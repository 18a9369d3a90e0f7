package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/mbdsaraiva/academia-api/internal/models"
	"github.com/mbdsaraiva/academia-api/internal/repository"
)

type fakeStudentRepo struct {
	students   map[string]models.Student
	lastFilter models.StudentFilter
	listCalls  int
	createErr  error
	deleted    []string
}

func newFakeStudentRepo(students ...models.Student) *fakeStudentRepo {
	repo := &fakeStudentRepo{students: map[string]models.Student{}}
	for _, s := range students {
		repo.students[s.ID] = s
	}
	return repo
}

func (f *fakeStudentRepo) List(_ context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	f.lastFilter = filter
	f.listCalls++
	out := make([]models.StudentDetail, 0, len(f.students))
	for _, s := range f.students {
		out = append(out, models.StudentDetail{Student: s})
	}
	return out, len(out), nil
}

func (f *fakeStudentRepo) FindByID(_ context.Context, id string) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (f *fakeStudentRepo) ExistsByEmail(_ context.Context, email string, excludeID string) (bool, error) {
	for id, s := range f.students {
		if s.Email == email && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStudentRepo) ExistsByCPF(_ context.Context, cpf string, excludeID string) (bool, error) {
	for id, s := range f.students {
		if s.CPF == cpf && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	if f.createErr != nil {
		return f.createErr
	}
	if student.ID == "" {
		student.ID = fmt.Sprintf("stu-%d", len(f.students)+1)
	}
	f.students[student.ID] = *student
	return nil
}

func (f *fakeStudentRepo) Update(_ context.Context, student *models.Student) error {
	f.students[student.ID] = *student
	return nil
}

func (f *fakeStudentRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.students, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeCourseRepo struct {
	courses map[string]models.Course
}

func newFakeCourseRepo(courses ...models.Course) *fakeCourseRepo {
	repo := &fakeCourseRepo{courses: map[string]models.Course{}}
	for _, c := range courses {
		repo.courses[c.ID] = c
	}
	return repo
}

func (f *fakeCourseRepo) List(_ context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error) {
	out := make([]models.CourseDetail, 0)
	for _, c := range f.courses {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		out = append(out, models.CourseDetail{Course: c})
	}
	return out, len(out), nil
}

func (f *fakeCourseRepo) FindByID(_ context.Context, id string) (*models.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (f *fakeCourseRepo) Create(_ context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = fmt.Sprintf("course-%d", len(f.courses)+1)
	}
	f.courses[course.ID] = *course
	return nil
}

func (f *fakeCourseRepo) Update(_ context.Context, course *models.Course) error {
	f.courses[course.ID] = *course
	return nil
}

func (f *fakeCourseRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.courses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.courses, id)
	return nil
}

// fakeEnrollmentRepo resolves fees and names through the student and course fakes.
type fakeEnrollmentRepo struct {
	enrollments   map[string]models.Enrollment
	students      *fakeStudentRepo
	courses       *fakeCourseRepo
	existsCalls   int
	statusUpdates int
	createErr     error
}

func newFakeEnrollmentRepo(students *fakeStudentRepo, courses *fakeCourseRepo, enrollments ...models.Enrollment) *fakeEnrollmentRepo {
	repo := &fakeEnrollmentRepo{enrollments: map[string]models.Enrollment{}, students: students, courses: courses}
	for _, e := range enrollments {
		repo.enrollments[e.ID] = e
	}
	return repo
}

func (f *fakeEnrollmentRepo) detail(e models.Enrollment) models.EnrollmentDetail {
	d := models.EnrollmentDetail{Enrollment: e}
	if s, ok := f.students.students[e.StudentID]; ok {
		d.StudentName = s.FullName
	}
	if c, ok := f.courses.courses[e.CourseID]; ok {
		d.CourseName = c.Name
		d.RegistrationFee = c.RegistrationFee
	}
	return d
}

func (f *fakeEnrollmentRepo) List(_ context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	out := make([]models.EnrollmentDetail, 0)
	for _, e := range f.enrollments {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, f.detail(e))
	}
	return out, len(out), nil
}

func (f *fakeEnrollmentRepo) ListByStudent(_ context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	out := make([]models.EnrollmentDetail, 0)
	for _, e := range f.enrollments {
		if e.StudentID == studentID {
			out = append(out, f.detail(e))
		}
	}
	return out, nil
}

func (f *fakeEnrollmentRepo) ListByCourse(_ context.Context, courseID string) ([]models.EnrollmentDetail, error) {
	out := make([]models.EnrollmentDetail, 0)
	for _, e := range f.enrollments {
		if e.CourseID == courseID {
			out = append(out, f.detail(e))
		}
	}
	return out, nil
}

func (f *fakeEnrollmentRepo) FindByID(_ context.Context, id string) (*models.EnrollmentDetail, error) {
	e, ok := f.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	d := f.detail(e)
	return &d, nil
}

func (f *fakeEnrollmentRepo) Exists(_ context.Context, studentID, courseID, excludeID string) (bool, error) {
	f.existsCalls++
	for id, e := range f.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEnrollmentRepo) Create(_ context.Context, enrollment *models.Enrollment) error {
	if f.createErr != nil {
		return f.createErr
	}
	if enrollment.ID == "" {
		enrollment.ID = fmt.Sprintf("enr-%d", len(f.enrollments)+1)
	}
	f.enrollments[enrollment.ID] = *enrollment
	return nil
}

func (f *fakeEnrollmentRepo) Update(_ context.Context, enrollment *models.Enrollment) error {
	f.enrollments[enrollment.ID] = *enrollment
	return nil
}

func (f *fakeEnrollmentRepo) UpdateStatus(_ context.Context, id string, status models.EnrollmentStatus) error {
	e, ok := f.enrollments[id]
	if !ok {
		return sql.ErrNoRows
	}
	f.statusUpdates++
	e.Status = status
	f.enrollments[id] = e
	return nil
}

func (f *fakeEnrollmentRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.enrollments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.enrollments, id)
	return nil
}

type fakeReportRepo struct {
	mu        sync.Mutex
	students  []models.StudentRollup
	courses   []models.CourseRollup
	totals    models.EnrollmentTotals
	counts    models.CatalogCounts
	calls     int
	lastLimit int
	countsErr error
}

func (f *fakeReportRepo) hit() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeReportRepo) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeReportRepo) StudentRollups(context.Context) ([]models.StudentRollup, error) {
	f.hit()
	return f.students, nil
}

func (f *fakeReportRepo) CourseRollups(_ context.Context, limit int) ([]models.CourseRollup, error) {
	f.hit()
	f.mu.Lock()
	f.lastLimit = limit
	f.mu.Unlock()
	if limit > 0 && limit < len(f.courses) {
		return f.courses[:limit], nil
	}
	return f.courses, nil
}

func (f *fakeReportRepo) EnrollmentTotals(context.Context) (*models.EnrollmentTotals, error) {
	f.hit()
	totals := f.totals
	return &totals, nil
}

func (f *fakeReportRepo) CatalogCounts(context.Context) (*models.CatalogCounts, error) {
	f.hit()
	if f.countsErr != nil {
		return nil, f.countsErr
	}
	counts := f.counts
	return &counts, nil
}

// newTestCache returns an enabled cache service backed by miniredis.
func newTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheService(repository.NewCacheRepository(client), NewMetricsService(), time.Minute, nil, true), srv
}
