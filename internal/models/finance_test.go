package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func detail(courseID string, status EnrollmentStatus, fee string) EnrollmentDetail {
	return EnrollmentDetail{
		Enrollment:      Enrollment{CourseID: courseID, Status: status},
		RegistrationFee: NewMoney(decimal.RequireFromString(fee)),
	}
}

func TestStudentTotals(t *testing.T) {
	enrollments := []EnrollmentDetail{
		detail("c1", EnrollmentStatusPending, "100.00"),
		detail("c2", EnrollmentStatusPaid, "50.00"),
	}

	assert.True(t, TotalOwed(enrollments).Equal(decimal.RequireFromString("100.00")))
	assert.True(t, TotalPaid(enrollments).Equal(decimal.RequireFromString("50.00")))

	summary := SummarizeStudent(Student{ID: "s1", FullName: "Ana"}, enrollments)
	assert.Equal(t, 2, summary.TotalEnrollments)
	assert.Equal(t, 1, summary.PaidEnrollments)
	assert.Equal(t, 1, summary.PendingEnrollments)
	assert.True(t, summary.GrandTotal.Equal(decimal.RequireFromString("150.00")))
}

func TestStudentTotalsEmpty(t *testing.T) {
	summary := SummarizeStudent(Student{ID: "s1"}, nil)
	assert.True(t, summary.TotalOwed.IsZero())
	assert.True(t, summary.TotalPaid.IsZero())
	assert.True(t, summary.GrandTotal.IsZero())
	assert.Equal(t, 0, summary.TotalEnrollments)
}

func TestOwedPlusPaidEqualsAllFees(t *testing.T) {
	fees := []string{"10.10", "0.01", "999.99", "250.00", "33.33"}
	statuses := []EnrollmentStatus{EnrollmentStatusPaid, EnrollmentStatusPending}
	for mask := 0; mask < 1<<len(fees); mask++ {
		var enrollments []EnrollmentDetail
		all := decimal.Zero
		for i, fee := range fees {
			enrollments = append(enrollments, detail("c", statuses[(mask>>i)&1], fee))
			all = all.Add(decimal.RequireFromString(fee))
		}
		sum := TotalOwed(enrollments).Add(TotalPaid(enrollments))
		assert.True(t, sum.Equal(all), "mask %d: %s != %s", mask, sum, all)
	}
}

func TestTotalCollectedIsFeeTimesPaid(t *testing.T) {
	fee := decimal.RequireFromString("200.00")
	for paid := 0; paid <= 10; paid++ {
		var enrollments []EnrollmentDetail
		for i := 0; i < paid; i++ {
			enrollments = append(enrollments, detail("c1", EnrollmentStatusPaid, "200.00"))
		}
		enrollments = append(enrollments, detail("c1", EnrollmentStatusPending, "200.00"))

		expected := fee.Mul(decimal.NewFromInt(int64(paid)))
		assert.True(t, TotalCollected(fee, paid).Equal(expected))
		assert.True(t, TotalPaid(enrollments).Equal(expected))
	}
}

func TestSummarizeCourse(t *testing.T) {
	course := Course{ID: "c1", Name: "Go", WorkloadHours: 40, RegistrationFee: NewMoney(decimal.RequireFromString("200.00")), Status: CourseStatusActive}
	enrollments := []EnrollmentDetail{
		detail("c1", EnrollmentStatusPaid, "200.00"),
		detail("c1", EnrollmentStatusPaid, "200.00"),
		detail("c1", EnrollmentStatusPending, "200.00"),
		detail("other", EnrollmentStatusPaid, "75.00"),
	}

	stats := SummarizeCourse(course, enrollments)
	assert.Equal(t, 3, stats.TotalEnrollments)
	assert.Equal(t, 2, stats.PaidEnrollments)
	assert.Equal(t, 1, stats.PendingEnrollments)
	assert.True(t, stats.TotalCollected.Equal(decimal.RequireFromString("400.00")))
	assert.True(t, stats.PotentialRevenue.Equal(decimal.RequireFromString("200.00")))
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	e := Enrollment{Status: EnrollmentStatusPending}
	assert.True(t, e.MarkPaid())
	assert.Equal(t, EnrollmentStatusPaid, e.Status)
	assert.False(t, e.MarkPaid())
	assert.Equal(t, EnrollmentStatusPaid, e.Status)

	assert.True(t, e.MarkPending())
	assert.False(t, e.MarkPending())
	assert.Equal(t, EnrollmentStatusPending, e.Status)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(0, 0))
	assert.Equal(t, 33.33, Percent(1, 3))
	assert.Equal(t, 66.67, Percent(2, 3))
	assert.Equal(t, 100.0, Percent(4, 4))
}

func TestEnrollmentTotalsSummarize(t *testing.T) {
	summary := EnrollmentTotals{
		Total:        3,
		Paid:         1,
		Pending:      2,
		TotalPaid:    decimal.RequireFromString("100.00"),
		TotalPending: decimal.RequireFromString("250.50"),
	}.Summarize()

	assert.Equal(t, 33.33, summary.PercentPaid)
	assert.True(t, summary.GrandTotal.Equal(decimal.RequireFromString("350.50")))

	empty := EnrollmentTotals{TotalPaid: decimal.Zero, TotalPending: decimal.Zero}.Summarize()
	assert.Equal(t, 0.0, empty.PercentPaid)
	assert.True(t, empty.GrandTotal.IsZero())
}
