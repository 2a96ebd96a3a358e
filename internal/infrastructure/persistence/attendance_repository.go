package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/tutorcenter/backend/internal/domain/academic"
	"github.com/tutorcenter/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAttendanceRepository implements AttendanceRepository using GORM
type GormAttendanceRepository struct {
	db *gorm.DB
}

// NewGormAttendanceRepository creates a new GormAttendanceRepository
func NewGormAttendanceRepository(db *gorm.DB) *GormAttendanceRepository {
	return &GormAttendanceRepository{db: db}
}

// Create creates a new attendance record
func (r *GormAttendanceRepository) Create(ctx context.Context, attendance *academic.Attendance) error {
	return translateError(conn(ctx, r.db).Create(models.AttendanceModelFromDomain(attendance)).Error)
}

// Update updates an existing attendance record
func (r *GormAttendanceRepository) Update(ctx context.Context, attendance *academic.Attendance) error {
	return updateAll(conn(ctx, r.db), models.AttendanceModelFromDomain(attendance))
}

// FindByID finds an attendance record by ID
func (r *GormAttendanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*academic.Attendance, error) {
	var model models.AttendanceModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

func (r *GormAttendanceRepository) filtered(ctx context.Context, filter academic.AttendanceFilter) *gorm.DB {
	q := conn(ctx, r.db).Model(&models.AttendanceModel{})
	if filter.StudentID != nil {
		q = q.Where("student_id = ?", *filter.StudentID)
	}
	if filter.TeacherID != nil {
		q = q.Where("teacher_id = ?", *filter.TeacherID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	return applyDateRange(q, "date", filter.Range)
}

// FindAll returns one page of attendance records
func (r *GormAttendanceRepository) FindAll(ctx context.Context, filter academic.AttendanceFilter) ([]*academic.Attendance, int64, error) {
	var rows []models.AttendanceModel
	total, err := findPage(r.filtered(ctx, filter), filter.Filter, AttendanceSortFields, "date", &rows)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*academic.Attendance, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// Stats counts matching records per status and derives the attendance rate
func (r *GormAttendanceRepository) Stats(ctx context.Context, filter academic.AttendanceFilter) (academic.AttendanceStats, error) {
	var rows []struct {
		Status academic.AttendanceStatus
		Count  int64
	}
	if err := r.filtered(ctx, filter).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return academic.AttendanceStats{}, err
	}
	counts := make(map[academic.AttendanceStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return academic.NewAttendanceStats(counts), nil
}
