package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tutorcenter/backend/internal/domain/report"
)

// FinancialReportModel is the persistence model for the FinancialReport aggregate.
// Snapshot sections are stored as JSON since they are never queried field by field.
type FinancialReportModel struct {
	AggregateModel
	ReportType  report.ReportType `gorm:"type:varchar(20);not null;index"`
	PeriodStart time.Time         `gorm:"not null"`
	PeriodEnd   time.Time         `gorm:"not null"`
	RevenueJSON string            `gorm:"column:revenue;type:jsonb;not null"`
	MetricsJSON string            `gorm:"column:metrics;type:jsonb;not null"`
	GeneratedBy uuid.UUID         `gorm:"type:uuid;not null"`
	GeneratedAt time.Time         `gorm:"not null;index"`
	IsArchived  bool              `gorm:"not null;default:false;index"`
	FileJSON    string            `gorm:"column:file;type:jsonb"`
}

// TableName returns the table name for GORM
func (FinancialReportModel) TableName() string {
	return "financial_reports"
}

// ToDomain converts the persistence model to a domain FinancialReport.
func (m *FinancialReportModel) ToDomain() *report.FinancialReport {
	r := &report.FinancialReport{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ReportType:        m.ReportType,
		PeriodStart:       m.PeriodStart,
		PeriodEnd:         m.PeriodEnd,
		GeneratedBy:       m.GeneratedBy,
		GeneratedAt:       m.GeneratedAt,
		IsArchived:        m.IsArchived,
	}
	unmarshalJSON(m.RevenueJSON, &r.Revenue, "financial_reports.revenue")
	unmarshalJSON(m.MetricsJSON, &r.Metrics, "financial_reports.metrics")
	if m.FileJSON != "" && m.FileJSON != "null" {
		var file report.RenderedFile
		unmarshalJSON(m.FileJSON, &file, "financial_reports.file")
		r.File = &file
	}
	if r.Revenue.ExpensesByCategory == nil {
		r.Revenue.ExpensesByCategory = []report.CategoryAmount{}
	}
	return r
}

// FromDomain populates the persistence model from a domain FinancialReport.
func (m *FinancialReportModel) FromDomain(r *report.FinancialReport) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.ReportType = r.ReportType
	m.PeriodStart = r.PeriodStart
	m.PeriodEnd = r.PeriodEnd
	m.RevenueJSON = marshalJSON(r.Revenue, "{}")
	m.MetricsJSON = marshalJSON(r.Metrics, "{}")
	m.GeneratedBy = r.GeneratedBy
	m.GeneratedAt = r.GeneratedAt
	m.IsArchived = r.IsArchived
	m.FileJSON = marshalJSON(r.File, "null")
}

// FinancialReportModelFromDomain creates a new persistence model from a domain FinancialReport.
func FinancialReportModelFromDomain(r *report.FinancialReport) *FinancialReportModel {
	m := &FinancialReportModel{}
	m.FromDomain(r)
	return m
}

// All returns every model managed by the schema, in dependency order.
// Used by AutoMigrate in tests and the sqlite development profile.
func All() []any {
	return []any{
		&UserModel{},
		&StudentModel{},
		&LessonTypeModel{},
		&TimeEntryModel{},
		&AttendanceModel{},
		&PaymentModel{},
		&TeacherPaymentModel{},
		&ExpenseModel{},
		&ReceiptCounterModel{},
		&AuditLogModel{},
		&FinancialReportModel{},
	}
}
