package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/tutorcenter/backend/internal/domain/report"
	"github.com/tutorcenter/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFinancialReportRepository implements report.Repository using GORM
type GormFinancialReportRepository struct {
	db *gorm.DB
}

// NewGormFinancialReportRepository creates a new GormFinancialReportRepository
func NewGormFinancialReportRepository(db *gorm.DB) *GormFinancialReportRepository {
	return &GormFinancialReportRepository{db: db}
}

// Create stores a generated report
func (r *GormFinancialReportRepository) Create(ctx context.Context, rep *report.FinancialReport) error {
	return translateError(conn(ctx, r.db).Create(models.FinancialReportModelFromDomain(rep)).Error)
}

// Update stores archive state and rendered file metadata
func (r *GormFinancialReportRepository) Update(ctx context.Context, rep *report.FinancialReport) error {
	return updateAll(conn(ctx, r.db), models.FinancialReportModelFromDomain(rep))
}

// FindByID finds a report by ID
func (r *GormFinancialReportRepository) FindByID(ctx context.Context, id uuid.UUID) (*report.FinancialReport, error) {
	var model models.FinancialReportModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns one page of reports; archived reports are hidden unless requested
func (r *GormFinancialReportRepository) FindAll(ctx context.Context, filter report.Filter) ([]*report.FinancialReport, int64, error) {
	q := conn(ctx, r.db).Model(&models.FinancialReportModel{})
	if filter.ReportType != nil {
		q = q.Where("report_type = ?", *filter.ReportType)
	}
	if !filter.IncludeArchived {
		q = q.Where("is_archived = ?", false)
	}
	if filter.GeneratedBy != nil {
		q = q.Where("generated_by = ?", *filter.GeneratedBy)
	}

	var rows []models.FinancialReportModel
	total, err := findPage(q, filter.Filter, FinancialReportSortFields, "generated_at", &rows)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*report.FinancialReport, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}
