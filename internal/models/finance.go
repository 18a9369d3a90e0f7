package models

import "github.com/shopspring/decimal"

// StudentFinancialSummary aggregates what a student owes and has paid.
type StudentFinancialSummary struct {
	StudentID          string `json:"student_id"`
	StudentName        string `json:"student_name"`
	TotalOwed          Money  `json:"total_owed"`
	TotalPaid          Money  `json:"total_paid"`
	GrandTotal         Money  `json:"grand_total"`
	TotalEnrollments   int    `json:"total_enrollments"`
	PaidEnrollments    int    `json:"paid_enrollments"`
	PendingEnrollments int    `json:"pending_enrollments"`
}

// CourseStatistics aggregates enrollment counts and revenue of a course.
type CourseStatistics struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	WorkloadHours      int          `json:"workload_hours"`
	RegistrationFee    Money        `json:"registration_fee"`
	Status             CourseStatus `json:"status"`
	TotalEnrollments   int          `json:"total_enrollments"`
	PaidEnrollments    int          `json:"paid_enrollments"`
	PendingEnrollments int          `json:"pending_enrollments"`
	TotalCollected     Money        `json:"total_collected"`
	PotentialRevenue   Money        `json:"potential_revenue"`
}

// TotalOwed sums the course fee of every pending enrollment.
func TotalOwed(enrollments []EnrollmentDetail) decimal.Decimal {
	return sumFees(enrollments, EnrollmentStatusPending)
}

// TotalPaid sums the course fee of every paid enrollment.
func TotalPaid(enrollments []EnrollmentDetail) decimal.Decimal {
	return sumFees(enrollments, EnrollmentStatusPaid)
}

// CountByStatus returns the number of paid and pending enrollments.
func CountByStatus(enrollments []EnrollmentDetail) (paid, pending int) {
	for _, e := range enrollments {
		switch e.Status {
		case EnrollmentStatusPaid:
			paid++
		case EnrollmentStatusPending:
			pending++
		}
	}
	return paid, pending
}

// TotalCollected is the revenue of a course: fee times paid enrollments.
func TotalCollected(fee decimal.Decimal, paidCount int) decimal.Decimal {
	if paidCount <= 0 {
		return decimal.Zero
	}
	return fee.Mul(decimal.NewFromInt(int64(paidCount)))
}

// SummarizeStudent derives the financial summary of a student from its enrollments.
func SummarizeStudent(student Student, enrollments []EnrollmentDetail) StudentFinancialSummary {
	owed := TotalOwed(enrollments)
	paid := TotalPaid(enrollments)
	paidCount, pendingCount := CountByStatus(enrollments)
	return StudentFinancialSummary{
		StudentID:          student.ID,
		StudentName:        student.FullName,
		TotalOwed:          NewMoney(owed),
		TotalPaid:          NewMoney(paid),
		GrandTotal:         NewMoney(owed.Add(paid)),
		TotalEnrollments:   len(enrollments),
		PaidEnrollments:    paidCount,
		PendingEnrollments: pendingCount,
	}
}

// SummarizeCourse derives course statistics. Enrollments belonging to other
// courses are ignored.
func SummarizeCourse(course Course, enrollments []EnrollmentDetail) CourseStatistics {
	var paidCount, pendingCount, total int
	for _, e := range enrollments {
		if e.CourseID != course.ID {
			continue
		}
		total++
		if e.IsPaid() {
			paidCount++
		} else {
			pendingCount++
		}
	}
	return CourseStatistics{
		ID:                 course.ID,
		Name:               course.Name,
		WorkloadHours:      course.WorkloadHours,
		RegistrationFee:    course.RegistrationFee,
		Status:             course.Status,
		TotalEnrollments:   total,
		PaidEnrollments:    paidCount,
		PendingEnrollments: pendingCount,
		TotalCollected:     NewMoney(TotalCollected(course.RegistrationFee.Decimal, paidCount)),
		PotentialRevenue:   NewMoney(TotalCollected(course.RegistrationFee.Decimal, pendingCount)),
	}
}

// Percent returns part as a percentage of total rounded to two decimals, or
// zero when total is zero.
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(2).
		InexactFloat64()
}

func sumFees(enrollments []EnrollmentDetail, status EnrollmentStatus) decimal.Decimal {
	total := decimal.Zero
	for _, e := range enrollments {
		if e.Status == status {
			total = total.Add(e.RegistrationFee.Decimal)
		}
	}
	return total
}
