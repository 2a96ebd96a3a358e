package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tutorcenter/backend/internal/domain/academic"
	"github.com/tutorcenter/backend/internal/domain/shared"
	"github.com/tutorcenter/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStudentRepository implements StudentRepository using GORM
type GormStudentRepository struct {
	db *gorm.DB
}

// NewGormStudentRepository creates a new GormStudentRepository
func NewGormStudentRepository(db *gorm.DB) *GormStudentRepository {
	return &GormStudentRepository{db: db}
}

// Create creates a new student
func (r *GormStudentRepository) Create(ctx context.Context, student *academic.Student) error {
	return translateError(conn(ctx, r.db).Create(models.StudentModelFromDomain(student)).Error)
}

// Update updates an existing student. Balances are left to AdjustBalance.
func (r *GormStudentRepository) Update(ctx context.Context, student *academic.Student) error {
	return updateAll(conn(ctx, r.db), models.StudentModelFromDomain(student), "current_balance", "total_paid")
}

// AdjustBalance adds delta to both balance columns in a single statement
func (r *GormStudentRepository) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	result := conn(ctx, r.db).Model(&models.StudentModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_paid":      flooredAdd("total_paid", delta),
			"current_balance": flooredAdd("current_balance", delta),
			"version":         gorm.Expr("version + 1"),
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func flooredAdd(column string, delta decimal.Decimal) clause.Expr {
	return gorm.Expr("CASE WHEN "+column+" + ? < 0 THEN 0 ELSE "+column+" + ? END", delta, delta)
}

// FindByID finds a student by ID
func (r *GormStudentRepository) FindByID(ctx context.Context, id uuid.UUID) (*academic.Student, error) {
	var model models.StudentModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns one page of students and the total match count
func (r *GormStudentRepository) FindAll(ctx context.Context, filter academic.StudentFilter) ([]*academic.Student, int64, error) {
	q := conn(ctx, r.db).Model(&models.StudentModel{})
	if filter.TeacherID != nil {
		q = q.Where("teacher_id = ?", *filter.TeacherID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}

	var rows []models.StudentModel
	total, err := findPage(q, filter.Filter, StudentSortFields, "last_name", &rows)
	if err != nil {
		return nil, 0, err
	}
	return studentsToDomain(rows), total, nil
}

// FindActive returns active students ordered by name
func (r *GormStudentRepository) FindActive(ctx context.Context, teacherID *uuid.UUID) ([]*academic.Student, error) {
	q := conn(ctx, r.db).Where("status = ?", academic.StudentActive)
	if teacherID != nil {
		q = q.Where("teacher_id = ?", *teacherID)
	}
	var rows []models.StudentModel
	if err := q.Order("last_name ASC").Order("first_name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return studentsToDomain(rows), nil
}

// CountByStatus counts students per status
func (r *GormStudentRepository) CountByStatus(ctx context.Context, teacherID *uuid.UUID) (map[academic.StudentStatus]int64, error) {
	q := conn(ctx, r.db).Model(&models.StudentModel{})
	if teacherID != nil {
		q = q.Where("teacher_id = ?", *teacherID)
	}
	var rows []struct {
		Status academic.StudentStatus
		Count  int64
	}
	if err := q.Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[academic.StudentStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func studentsToDomain(rows []models.StudentModel) []*academic.Student {
	out := make([]*academic.Student, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}
