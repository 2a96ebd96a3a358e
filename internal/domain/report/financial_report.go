package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

// AggregateTypeFinancialReport is the aggregate type name used in events and audit rows
const AggregateTypeFinancialReport = "FinancialReport"

// ReportType is the cadence a report was generated for
type ReportType string

const (
	ReportMonthly   ReportType = "monthly"
	ReportQuarterly ReportType = "quarterly"
	ReportYearly    ReportType = "yearly"
	ReportCustom    ReportType = "custom"
)

// IsValid checks if the report type is known
func (t ReportType) IsValid() bool {
	switch t {
	case ReportMonthly, ReportQuarterly, ReportYearly, ReportCustom:
		return true
	}
	return false
}

// Format is an output representation of a report
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// IsValid checks if the format is known
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatCSV, FormatXLSX, FormatPDF:
		return true
	}
	return false
}

// IsFile reports whether the format produces a stored file
func (f Format) IsFile() bool {
	return f == FormatCSV || f == FormatXLSX || f == FormatPDF
}

// CategoryAmount is one expense category line of a snapshot
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int64           `json:"count"`
}

// RevenueSnapshot is the money side of a report
type RevenueSnapshot struct {
	TotalRevenue       decimal.Decimal  `json:"totalRevenue"`
	TeacherPayments    decimal.Decimal  `json:"teacherPayments"`
	GeneralExpenses    decimal.Decimal  `json:"generalExpenses"`
	TotalExpenses      decimal.Decimal  `json:"totalExpenses"`
	NetIncome          decimal.Decimal  `json:"netIncome"`
	ProfitMargin       decimal.Decimal  `json:"profitMargin"`
	ExpensesByCategory []CategoryAmount `json:"expensesByCategory"`
}

// Metrics is the operational side of a report
type Metrics struct {
	ActiveStudents           int64           `json:"activeStudents"`
	ActiveTeachers           int64           `json:"activeTeachers"`
	TotalHours               decimal.Decimal `json:"totalHours"`
	TotalLessons             int64           `json:"totalLessons"`
	AttendanceRate           decimal.Decimal `json:"attendanceRate"`
	AverageRevenuePerStudent decimal.Decimal `json:"averageRevenuePerStudent"`
}

// RenderedFile references a stored rendering of a report
type RenderedFile struct {
	Format      Format    `json:"format"`
	StorageKey  string    `json:"storageKey"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	RenderedAt  time.Time `json:"renderedAt"`
}

// FinancialReport is a point-in-time snapshot of the books. Only the archive
// flag changes after generation.
type FinancialReport struct {
	shared.BaseAggregateRoot
	ReportType  ReportType
	PeriodStart time.Time
	PeriodEnd   time.Time
	Revenue     RevenueSnapshot
	Metrics     Metrics
	GeneratedBy uuid.UUID
	GeneratedAt time.Time
	IsArchived  bool
	File        *RenderedFile
}

// NewFinancialReport creates a report for [start, end]
func NewFinancialReport(reportType ReportType, start, end time.Time, generatedBy uuid.UUID, revenue RevenueSnapshot, metrics Metrics) (*FinancialReport, error) {
	v := &shared.ValidationError{}
	if !reportType.IsValid() {
		v.Add("reportType", "reportType must be monthly, quarterly, yearly or custom")
	}
	if start.IsZero() || end.IsZero() {
		v.Add("period", "report period requires start and end dates")
	} else if start.After(end) {
		v.Add("period", "report period start cannot be after its end")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	if revenue.ExpensesByCategory == nil {
		revenue.ExpensesByCategory = []CategoryAmount{}
	}
	r := &FinancialReport{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReportType:        reportType,
		PeriodStart:       start,
		PeriodEnd:         end,
		Revenue:           revenue,
		Metrics:           metrics,
		GeneratedBy:       generatedBy,
		GeneratedAt:       time.Now(),
	}
	r.AddDomainEvent(shared.NewStatusChangedEvent(AggregateTypeFinancialReport, r.ID, generatedBy, "report.generate",
		nil, map[string]any{"reportType": string(reportType), "netIncome": revenue.NetIncome.StringFixed(2)}))
	return r, nil
}

// AttachFile records the stored rendering produced at generation time
func (r *FinancialReport) AttachFile(file RenderedFile) error {
	if r.File != nil {
		return shared.NewDomainError("INVALID_STATE", "Report already has a stored rendering")
	}
	r.File = &file
	r.Touch()
	return nil
}

// Archive hides the report from default listings
func (r *FinancialReport) Archive(actor uuid.UUID) error {
	if r.IsArchived {
		return shared.NewDomainError("INVALID_STATE", "Report is already archived")
	}
	r.setArchived(actor, true, "report.archive")
	return nil
}

// Unarchive restores an archived report
func (r *FinancialReport) Unarchive(actor uuid.UUID) error {
	if !r.IsArchived {
		return shared.NewDomainError("INVALID_STATE", "Report is not archived")
	}
	r.setArchived(actor, false, "report.unarchive")
	return nil
}

func (r *FinancialReport) setArchived(actor uuid.UUID, archived bool, action string) {
	before := map[string]any{"isArchived": r.IsArchived}
	r.IsArchived = archived
	r.Touch()
	r.IncrementVersion()
	r.AddDomainEvent(shared.NewStatusChangedEvent(AggregateTypeFinancialReport, r.ID, actor, action, before,
		map[string]any{"isArchived": archived}))
}

// Filter narrows report listings
type Filter struct {
	shared.Filter
	ReportType      *ReportType
	IncludeArchived bool
	GeneratedBy     *uuid.UUID
}

// Repository persists financial reports
type Repository interface {
	Create(ctx context.Context, report *FinancialReport) error
	Update(ctx context.Context, report *FinancialReport) error
	FindByID(ctx context.Context, id uuid.UUID) (*FinancialReport, error)
	FindAll(ctx context.Context, filter Filter) ([]*FinancialReport, int64, error)
}
