package handler

import "github.com/gin-gonic/gin"

// Handlers groups the HTTP handlers mounted under the API prefix.
type Handlers struct {
	Students    *StudentHandler
	Courses     *CourseHandler
	Enrollments *EnrollmentHandler
	Reports     *ReportHandler
	Dashboard   *DashboardHandler
}

// RegisterRoutes mounts every resource route on the given group.
func RegisterRoutes(api *gin.RouterGroup, h Handlers) {
	students := api.Group("/students")
	students.GET("", h.Students.List)
	students.POST("", h.Students.Create)
	students.GET("/:id", h.Students.Get)
	students.PUT("/:id", h.Students.Update)
	students.PATCH("/:id", h.Students.Patch)
	students.DELETE("/:id", h.Students.Delete)
	students.GET("/:id/enrollments", h.Students.Enrollments)
	students.GET("/:id/financial", h.Students.Financial)

	courses := api.Group("/courses")
	courses.GET("", h.Courses.List)
	courses.POST("", h.Courses.Create)
	courses.GET("/:id", h.Courses.Get)
	courses.PUT("/:id", h.Courses.Update)
	courses.PATCH("/:id", h.Courses.Patch)
	courses.DELETE("/:id", h.Courses.Delete)
	courses.GET("/:id/enrollments", h.Courses.Enrollments)
	courses.GET("/:id/statistics", h.Courses.Statistics)

	enrollments := api.Group("/enrollments")
	enrollments.GET("", h.Enrollments.List)
	enrollments.POST("", h.Enrollments.Create)
	enrollments.GET("/financial-summary", h.Reports.EnrollmentSummary)
	enrollments.GET("/:id", h.Enrollments.Get)
	enrollments.PUT("/:id", h.Enrollments.Update)
	enrollments.PATCH("/:id", h.Enrollments.Patch)
	enrollments.DELETE("/:id", h.Enrollments.Delete)
	enrollments.POST("/:id/mark-paid", h.Enrollments.MarkPaid)
	enrollments.POST("/:id/mark-pending", h.Enrollments.MarkPending)

	reports := api.Group("/reports")
	reports.GET("/students", h.Reports.Students)
	reports.GET("/students/export", h.Reports.ExportStudents)
	reports.GET("/courses", h.Reports.Courses)
	reports.GET("/courses/export", h.Reports.ExportCourses)

	api.GET("/dashboard", h.Dashboard.Summary)
}
