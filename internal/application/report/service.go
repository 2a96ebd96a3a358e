// Package report generates, stores and serves financial report snapshots.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	appevent "github.com/tutorcenter/backend/internal/application/event"
	"github.com/tutorcenter/backend/internal/domain/academic"
	"github.com/tutorcenter/backend/internal/domain/finance"
	"github.com/tutorcenter/backend/internal/domain/identity"
	"github.com/tutorcenter/backend/internal/domain/report"
	"github.com/tutorcenter/backend/internal/domain/shared"
	"github.com/tutorcenter/backend/internal/infrastructure/render"
	"github.com/tutorcenter/backend/internal/infrastructure/telemetry"
)

// DefaultDownloadExpiry is how long a presigned report download stays valid
const DefaultDownloadExpiry = 15 * time.Minute

// Accounting supplies the money side of a snapshot
type Accounting interface {
	GetProfitLossSummary(ctx context.Context, start, end time.Time) (*report.ProfitLossSummary, error)
	GetGeneralExpensesData(ctx context.Context, start, end time.Time, category *finance.ExpenseCategory, status *finance.ExpenseStatus) (*report.ExpensesData, error)
}

// Renderer turns a snapshot into a file
type Renderer interface {
	Render(ctx context.Context, r *report.FinancialReport, format report.Format) (*render.Output, error)
}

// ObjectStorage stores rendered files
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, key string) error
}

// Repositories groups the stores the reporting service reads and writes
type Repositories struct {
	Reports     report.Repository
	Students    academic.StudentRepository
	Users       identity.UserRepository
	TimeEntries academic.TimeEntryRepository
	Attendance  academic.AttendanceRepository
}

// Service generates financial reports
type Service struct {
	repos      Repositories
	accounting Accounting
	renderer   Renderer
	storage    ObjectStorage
	publisher  shared.EventPublisher
	metrics    *telemetry.Metrics
	logger     *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithPublisher sends report events to publisher
func WithPublisher(p shared.EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithMetrics records generation counters
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a reporting service. storage may be nil, in which case
// file formats are rejected at generation time.
func NewService(repos Repositories, accounting Accounting, renderer Renderer, storage ObjectStorage, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repos:      repos,
		accounting: accounting,
		renderer:   renderer,
		storage:    storage,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StorageKey returns where the rendering of a report is stored
func StorageKey(r *report.FinancialReport, ext string) string {
	return fmt.Sprintf("reports/%s/%s.%s", r.ReportType, r.ID, ext)
}

// GenerateFinancialReport snapshots the books for [start, end], persists the
// snapshot and, for file formats, renders and stores the file.
func (s *Service) GenerateFinancialReport(ctx context.Context, start, end time.Time, generatedBy uuid.UUID,
	reportType report.ReportType, format report.Format) (r *report.FinancialReport, err error) {
	ctx, span := telemetry.StartSpan(ctx, "report.generate",
		attribute.String("report.type", string(reportType)),
		attribute.String("report.format", string(format)),
	)
	defer func() {
		telemetry.EndSpan(span, err)
		if err != nil {
			s.metrics.RecordReportFailed(ctx, string(reportType))
		}
	}()

	if format == "" {
		format = report.FormatJSON
	}
	if !format.IsValid() {
		return nil, shared.NewDomainError("INVALID_FORMAT", fmt.Sprintf("Unknown report format %q", format))
	}
	if format.IsFile() && s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Report file storage is not configured")
	}

	telemetry.Profiled(ctx, "report.generate", func(ctx context.Context) {
		r, err = s.generate(ctx, start, end, generatedBy, reportType, format)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordReportGenerated(ctx, string(reportType), string(format))
	appevent.PublishAggregate(ctx, s.publisher, s.logger, r)
	s.logger.Info("Financial report generated",
		zap.String("report_id", r.ID.String()),
		zap.String("report_type", string(reportType)),
		zap.String("format", string(format)),
		zap.String("net_income", r.Revenue.NetIncome.StringFixed(2)),
	)
	return r, nil
}

func (s *Service) generate(ctx context.Context, start, end time.Time, generatedBy uuid.UUID,
	reportType report.ReportType, format report.Format) (*report.FinancialReport, error) {
	revenue, err := s.snapshotRevenue(ctx, start, end)
	if err != nil {
		return nil, err
	}
	metrics, err := s.snapshotMetrics(ctx, start, end, revenue.TotalRevenue)
	if err != nil {
		return nil, err
	}

	r, err := report.NewFinancialReport(reportType, start, end, generatedBy, revenue, metrics)
	if err != nil {
		return nil, err
	}

	if format.IsFile() {
		out, err := s.renderer.Render(ctx, r, format)
		if err != nil {
			return nil, fmt.Errorf("render %s report: %w", format, err)
		}
		key := StorageKey(r, out.Extension)
		if err := s.storage.Upload(ctx, key, out.Data, out.ContentType); err != nil {
			return nil, fmt.Errorf("store %s report: %w", format, err)
		}
		if err := r.AttachFile(report.RenderedFile{
			Format:      format,
			StorageKey:  key,
			ContentType: out.ContentType,
			Size:        int64(len(out.Data)),
			RenderedAt:  time.Now(),
		}); err != nil {
			return nil, err
		}
	}

	if err := s.repos.Reports.Create(ctx, r); err != nil {
		if r.File != nil {
			s.discardFile(ctx, r.File.StorageKey)
		}
		return nil, err
	}
	return r, nil
}

// discardFile removes an uploaded file whose report row was never written
func (s *Service) discardFile(ctx context.Context, key string) {
	if err := s.storage.DeleteObject(ctx, key); err != nil {
		s.logger.Warn("Failed to remove orphaned report file",
			zap.String("storage_key", key),
			zap.Error(err),
		)
	}
}

func (s *Service) snapshotRevenue(ctx context.Context, start, end time.Time) (report.RevenueSnapshot, error) {
	pl, err := s.accounting.GetProfitLossSummary(ctx, start, end)
	if err != nil {
		return report.RevenueSnapshot{}, err
	}
	expenses, err := s.accounting.GetGeneralExpensesData(ctx, start, end, nil, nil)
	if err != nil {
		return report.RevenueSnapshot{}, err
	}
	return report.RevenueSnapshot{
		TotalRevenue:       pl.Revenue,
		TeacherPayments:    pl.TeacherPayments,
		GeneralExpenses:    pl.GeneralExpenses,
		TotalExpenses:      pl.TotalExpenses,
		NetIncome:          pl.NetIncome,
		ProfitMargin:       pl.ProfitMargin,
		ExpensesByCategory: expenses.ByCategory,
	}, nil
}

func (s *Service) snapshotMetrics(ctx context.Context, start, end time.Time, revenue decimal.Decimal) (report.Metrics, error) {
	byStatus, err := s.repos.Students.CountByStatus(ctx, nil)
	if err != nil {
		return report.Metrics{}, fmt.Errorf("active students aggregation failed: %w", err)
	}
	approved := identity.ApprovalApproved
	teachers, err := s.repos.Users.CountTeachers(ctx, &approved)
	if err != nil {
		return report.Metrics{}, fmt.Errorf("active teachers aggregation failed: %w", err)
	}
	dates := shared.NewDateRange(start, end)
	lessons, err := s.repos.TimeEntries.Summarize(ctx, academic.TimeEntryFilter{Range: dates})
	if err != nil {
		return report.Metrics{}, fmt.Errorf("lesson hours aggregation failed: %w", err)
	}
	attendance, err := s.repos.Attendance.Stats(ctx, academic.AttendanceFilter{Range: dates})
	if err != nil {
		return report.Metrics{}, fmt.Errorf("attendance aggregation failed: %w", err)
	}

	active := byStatus[academic.StudentActive]
	avg := decimal.Zero
	if active > 0 {
		avg = shared.Round2(revenue.Div(decimal.NewFromInt(active)))
	}
	return report.Metrics{
		ActiveStudents:           active,
		ActiveTeachers:           teachers,
		TotalHours:               lessons.Hours,
		TotalLessons:             lessons.Entries,
		AttendanceRate:           attendance.AttendanceRate,
		AverageRevenuePerStudent: avg,
	}, nil
}

// Get returns one report
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*report.FinancialReport, error) {
	r, err := s.repos.Reports.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

// ListFilter narrows a report listing
type ListFilter struct {
	ReportType      *report.ReportType
	IncludeArchived bool
	Page            int
	PageSize        int
}

// List returns one page of reports, newest first. Archived reports are
// excluded unless requested.
func (s *Service) List(ctx context.Context, f ListFilter) (shared.Paginated[*report.FinancialReport], error) {
	base := shared.DefaultFilter()
	base.OrderBy = "generated_at"
	if f.Page > 0 {
		base.Page = f.Page
	}
	if f.PageSize > 0 && f.PageSize <= 100 {
		base.PageSize = f.PageSize
	}
	items, total, err := s.repos.Reports.FindAll(ctx, report.Filter{
		Filter:          base,
		ReportType:      f.ReportType,
		IncludeArchived: f.IncludeArchived,
	})
	if err != nil {
		return shared.Paginated[*report.FinancialReport]{}, err
	}
	return shared.NewPaginated(items, total, base.Page, base.PageSize), nil
}

// Archive hides a report from default listings
func (s *Service) Archive(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*report.FinancialReport, error) {
	return s.setArchived(ctx, id, func(r *report.FinancialReport) error { return r.Archive(actor) })
}

// Unarchive restores an archived report
func (s *Service) Unarchive(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*report.FinancialReport, error) {
	return s.setArchived(ctx, id, func(r *report.FinancialReport) error { return r.Unarchive(actor) })
}

func (s *Service) setArchived(ctx context.Context, id uuid.UUID, apply func(*report.FinancialReport) error) (*report.FinancialReport, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(r); err != nil {
		return nil, err
	}
	if err := s.repos.Reports.Update(ctx, r); err != nil {
		return nil, err
	}
	appevent.PublishAggregate(ctx, s.publisher, s.logger, r)
	return r, nil
}

// RenderReport renders an existing snapshot on demand without storing it
func (s *Service) RenderReport(ctx context.Context, id uuid.UUID, format report.Format) (*render.Output, error) {
	if !format.IsFile() {
		return nil, shared.NewDomainError("INVALID_FORMAT", fmt.Sprintf("Cannot render report as %q", format))
	}
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(ctx, r, format)
}

// DownloadURL returns a presigned URL for the stored rendering of a report
func (s *Service) DownloadURL(ctx context.Context, id uuid.UUID, expiresIn time.Duration) (string, time.Time, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return "", time.Time{}, err
	}
	if r.File == nil || s.storage == nil {
		return "", time.Time{}, shared.NewDomainError("NOT_FOUND", "Report has no stored file")
	}
	if expiresIn <= 0 {
		expiresIn = DefaultDownloadExpiry
	}
	return s.storage.GenerateDownloadURL(ctx, r.File.StorageKey, expiresIn)
}

func notFound(err error) error {
	if isNotFound(err) {
		return shared.NewDomainError("NOT_FOUND", "Report not found")
	}
	return err
}

func isNotFound(err error) bool {
	var de *shared.DomainError
	return errors.As(err, &de) && de.Code == shared.ErrNotFound.Code
}
