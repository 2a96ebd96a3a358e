package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tutorcenter/backend/internal/domain/academic"
	"github.com/tutorcenter/backend/internal/domain/shared"
	"github.com/tutorcenter/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTimeEntryRepository implements TimeEntryRepository using GORM
type GormTimeEntryRepository struct {
	db *gorm.DB
}

// NewGormTimeEntryRepository creates a new GormTimeEntryRepository
func NewGormTimeEntryRepository(db *gorm.DB) *GormTimeEntryRepository {
	return &GormTimeEntryRepository{db: db}
}

// Create creates a new time entry
func (r *GormTimeEntryRepository) Create(ctx context.Context, entry *academic.TimeEntry) error {
	return translateError(conn(ctx, r.db).Create(models.TimeEntryModelFromDomain(entry)).Error)
}

// Update updates an existing time entry
func (r *GormTimeEntryRepository) Update(ctx context.Context, entry *academic.TimeEntry) error {
	return updateAll(conn(ctx, r.db), models.TimeEntryModelFromDomain(entry))
}

// Delete removes a time entry
func (r *GormTimeEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&models.TimeEntryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a time entry by ID
func (r *GormTimeEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*academic.TimeEntry, error) {
	var model models.TimeEntryModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

func (r *GormTimeEntryRepository) filtered(ctx context.Context, filter academic.TimeEntryFilter) *gorm.DB {
	q := conn(ctx, r.db).Model(&models.TimeEntryModel{})
	if filter.TeacherID != nil {
		q = q.Where("teacher_id = ?", *filter.TeacherID)
	}
	if filter.StudentID != nil {
		q = q.Where("student_id = ?", *filter.StudentID)
	}
	if filter.LessonTypeID != nil {
		q = q.Where("lesson_type_id = ?", *filter.LessonTypeID)
	}
	return applyDateRange(q, "date", filter.Range)
}

// FindAll returns one page of time entries, newest first by default
func (r *GormTimeEntryRepository) FindAll(ctx context.Context, filter academic.TimeEntryFilter) ([]*academic.TimeEntry, int64, error) {
	var rows []models.TimeEntryModel
	total, err := findPage(r.filtered(ctx, filter), filter.Filter, TimeEntrySortFields, "date", &rows)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*academic.TimeEntry, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

type timeSummaryRow struct {
	Hours   decimal.NullDecimal
	Amount  decimal.NullDecimal
	Entries int64
}

func (row timeSummaryRow) toDomain() academic.TimeSummary {
	s := academic.TimeSummary{Hours: decimal.Zero, Amount: decimal.Zero, Entries: row.Entries}
	if row.Hours.Valid {
		s.Hours = shared.Round2(row.Hours.Decimal)
	}
	if row.Amount.Valid {
		s.Amount = shared.Round2(row.Amount.Decimal)
	}
	return s
}

const timeSummarySelect = "SUM(hours) AS hours, SUM(total_amount) AS amount, COUNT(*) AS entries"

// Summarize totals hours, amounts and entry count
func (r *GormTimeEntryRepository) Summarize(ctx context.Context, filter academic.TimeEntryFilter) (academic.TimeSummary, error) {
	var row timeSummaryRow
	if err := r.filtered(ctx, filter).Select(timeSummarySelect).Scan(&row).Error; err != nil {
		return academic.TimeSummary{}, err
	}
	return row.toDomain(), nil
}

// SummarizeByStudent groups totals by student, skipping entries without one
func (r *GormTimeEntryRepository) SummarizeByStudent(ctx context.Context, filter academic.TimeEntryFilter) ([]academic.StudentTimeSummary, error) {
	var rows []struct {
		StudentID uuid.UUID
		Hours     decimal.NullDecimal
		Amount    decimal.NullDecimal
		Entries   int64
	}
	if err := r.filtered(ctx, filter).
		Where("student_id IS NOT NULL").
		Select("student_id, " + timeSummarySelect).
		Group("student_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]academic.StudentTimeSummary, len(rows))
	for i, row := range rows {
		summary := timeSummaryRow{Hours: row.Hours, Amount: row.Amount, Entries: row.Entries}
		out[i] = academic.StudentTimeSummary{StudentID: row.StudentID, TimeSummary: summary.toDomain()}
	}
	return out, nil
}

// SumByPeriod buckets entry amounts by lesson date
func (r *GormTimeEntryRepository) SumByPeriod(ctx context.Context, filter academic.TimeEntryFilter, period shared.Period) ([]shared.PeriodTotal, error) {
	return sumByPeriod(r.filtered(ctx, filter), "date", "total_amount", period)
}
