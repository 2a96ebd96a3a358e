package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// StudentSortFields contains allowed sort fields for students
var StudentSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"first_name":      true,
	"last_name":       true,
	"status":          true,
	"current_balance": true,
	"total_paid":      true,
}

// TimeEntrySortFields contains allowed sort fields for time entries
var TimeEntrySortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"date":         true,
	"hours":        true,
	"total_amount": true,
}

// AttendanceSortFields contains allowed sort fields for attendance records
var AttendanceSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"date":       true,
	"status":     true,
}

// PaymentSortFields contains allowed sort fields for student payments
var PaymentSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"payment_date":   true,
	"due_date":       true,
	"amount":         true,
	"status":         true,
	"receipt_number": true,
}

// TeacherPaymentSortFields contains allowed sort fields for teacher payouts
var TeacherPaymentSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"payment_date": true,
	"period_start": true,
	"amount":       true,
	"status":       true,
}

// ExpenseSortFields contains allowed sort fields for expenses
var ExpenseSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"expense_date": true,
	"amount":       true,
	"category":     true,
	"status":       true,
}

// AuditLogSortFields contains allowed sort fields for audit logs
var AuditLogSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"action":     true,
}

// FinancialReportSortFields contains allowed sort fields for reports
var FinancialReportSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"generated_at": true,
	"period_start": true,
	"report_type":  true,
}
