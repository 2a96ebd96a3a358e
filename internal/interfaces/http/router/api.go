package router

import (
	"github.com/gin-gonic/gin"

	"github.com/tutorcenter/backend/internal/interfaces/http/handler"
	"github.com/tutorcenter/backend/internal/interfaces/http/middleware"
)

// Handlers are the endpoint handlers mounted under /api/v1
type Handlers struct {
	Auth           *handler.AuthHandler
	User           *handler.UserHandler
	Student        *handler.StudentHandler
	LessonType     *handler.LessonTypeHandler
	TimeEntry      *handler.TimeEntryHandler
	Attendance     *handler.AttendanceHandler
	Payment        *handler.PaymentHandler
	TeacherPayment *handler.TeacherPaymentHandler
	Expense        *handler.ExpenseHandler
	Accounting     *handler.AccountingHandler
	Report         *handler.ReportHandler
	Audit          *handler.AuditHandler
	Health         *handler.HealthHandler
}

// APIGroups builds the /api/v1 route table. authLimit guards login and
// registration and may be nil.
func APIGroups(h Handlers, authLimit gin.HandlerFunc) []*DomainGroup {
	admin := middleware.RequireAdmin()
	limited := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		if authLimit == nil {
			return []gin.HandlerFunc{fn}
		}
		return []gin.HandlerFunc{authLimit, fn}
	}

	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", limited(h.Auth.Register)...)
	authRoutes.POST("/login", limited(h.Auth.Login)...)
	authRoutes.POST("/logout", h.Auth.Logout)
	authRoutes.GET("/me", h.Auth.Me)

	userRoutes := NewDomainGroup("users", "/users").Use(admin)
	userRoutes.GET("/teachers", h.User.ListTeachers)
	userRoutes.POST("/:id/approve", h.User.Approve)
	userRoutes.POST("/:id/suspend", h.User.Suspend)

	studentRoutes := NewDomainGroup("students", "/students")
	studentRoutes.POST("", h.Student.Create)
	studentRoutes.GET("", h.Student.List)
	studentRoutes.GET("/:id", h.Student.Get)
	studentRoutes.PUT("/:id/status", h.Student.ChangeStatus)

	lessonTypeRoutes := NewDomainGroup("lesson-types", "/lesson-types")
	lessonTypeRoutes.POST("", h.LessonType.Create)
	lessonTypeRoutes.GET("", h.LessonType.List)
	lessonTypeRoutes.PUT("/:id", h.LessonType.Update)

	timeEntryRoutes := NewDomainGroup("time-entries", "/time-entries")
	timeEntryRoutes.POST("", h.TimeEntry.Create)
	timeEntryRoutes.GET("", h.TimeEntry.List)
	timeEntryRoutes.PUT("/:id", h.TimeEntry.Update)
	timeEntryRoutes.DELETE("/:id", h.TimeEntry.Delete)

	attendanceRoutes := NewDomainGroup("attendance", "/attendance")
	attendanceRoutes.POST("", h.Attendance.Record)
	attendanceRoutes.GET("/stats", h.Attendance.Stats)

	paymentRoutes := NewDomainGroup("payments", "/payments")
	paymentRoutes.POST("", h.Payment.Create)
	paymentRoutes.GET("", h.Payment.List)
	paymentRoutes.GET("/:id", h.Payment.Get)
	paymentRoutes.POST("/:id/complete", h.Payment.Complete)
	paymentRoutes.POST("/:id/fail", h.Payment.Fail)
	paymentRoutes.POST("/:id/cancel", h.Payment.Cancel)
	paymentRoutes.POST("/:id/refund", admin, h.Payment.Refund)

	teacherPaymentRoutes := NewDomainGroup("teacher-payments", "/teacher-payments")
	teacherPaymentRoutes.POST("", admin, h.TeacherPayment.Create)
	teacherPaymentRoutes.GET("", h.TeacherPayment.List)
	teacherPaymentRoutes.GET("/:id", h.TeacherPayment.Get)
	teacherPaymentRoutes.POST("/:id/approve", admin, h.TeacherPayment.Approve)
	teacherPaymentRoutes.POST("/:id/pay", admin, h.TeacherPayment.Pay)
	teacherPaymentRoutes.POST("/:id/cancel", admin, h.TeacherPayment.Cancel)

	expenseRoutes := NewDomainGroup("expenses", "/expenses")
	expenseRoutes.POST("", h.Expense.Create)
	expenseRoutes.GET("", h.Expense.List)
	expenseRoutes.GET("/:id", h.Expense.Get)
	expenseRoutes.POST("/:id/approve", admin, h.Expense.Approve)
	expenseRoutes.POST("/:id/reject", admin, h.Expense.Reject)

	accountingRoutes := NewDomainGroup("accounting", "/accounting")
	accountingRoutes.GET("/students", h.Accounting.Students)
	accountingRoutes.GET("/teachers", admin, h.Accounting.Teachers)
	accountingRoutes.GET("/expenses", admin, h.Accounting.Expenses)
	accountingRoutes.GET("/profit-loss", admin, h.Accounting.ProfitLoss)
	accountingRoutes.GET("/cash-flow", admin, h.Accounting.CashFlow)
	accountingRoutes.GET("/metrics", admin, h.Accounting.Metrics)

	reportRoutes := NewDomainGroup("reports", "/reports").Use(admin)
	reportRoutes.POST("", h.Report.Generate)
	reportRoutes.GET("", h.Report.List)
	reportRoutes.GET("/:id", h.Report.Get)
	reportRoutes.POST("/:id/archive", h.Report.Archive)
	reportRoutes.POST("/:id/unarchive", h.Report.Unarchive)
	reportRoutes.GET("/:id/render", h.Report.Render)
	reportRoutes.GET("/:id/download", h.Report.Download)

	auditRoutes := NewDomainGroup("audit", "/audit-logs").Use(admin)
	auditRoutes.GET("", h.Audit.List)

	systemRoutes := NewDomainGroup("system", "")
	systemRoutes.GET("/health", h.Health.Health)
	systemRoutes.GET("/system/info", h.Health.Info)

	return []*DomainGroup{
		systemRoutes,
		authRoutes,
		userRoutes,
		studentRoutes,
		lessonTypeRoutes,
		timeEntryRoutes,
		attendanceRoutes,
		paymentRoutes,
		teacherPaymentRoutes,
		expenseRoutes,
		accountingRoutes,
		reportRoutes,
		auditRoutes,
	}
}
