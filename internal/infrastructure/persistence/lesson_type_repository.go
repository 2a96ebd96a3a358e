package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/tutorcenter/backend/internal/domain/academic"
	"github.com/tutorcenter/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLessonTypeRepository implements LessonTypeRepository using GORM
type GormLessonTypeRepository struct {
	db *gorm.DB
}

// NewGormLessonTypeRepository creates a new GormLessonTypeRepository
func NewGormLessonTypeRepository(db *gorm.DB) *GormLessonTypeRepository {
	return &GormLessonTypeRepository{db: db}
}

// Create creates a new lesson type. A duplicate name for the same teacher
// violates idx_lesson_type_teacher_name and maps to shared.ErrAlreadyExists.
func (r *GormLessonTypeRepository) Create(ctx context.Context, lessonType *academic.LessonType) error {
	return translateError(conn(ctx, r.db).Create(models.LessonTypeModelFromDomain(lessonType)).Error)
}

// Update updates an existing lesson type
func (r *GormLessonTypeRepository) Update(ctx context.Context, lessonType *academic.LessonType) error {
	return updateAll(conn(ctx, r.db), models.LessonTypeModelFromDomain(lessonType))
}

// FindByID finds a lesson type by ID
func (r *GormLessonTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*academic.LessonType, error) {
	var model models.LessonTypeModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByTeacher lists a teacher's lesson types ordered by name
func (r *GormLessonTypeRepository) FindByTeacher(ctx context.Context, teacherID uuid.UUID, activeOnly bool) ([]*academic.LessonType, error) {
	q := conn(ctx, r.db).Where("teacher_id = ?", teacherID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var rows []models.LessonTypeModel
	if err := q.Order("name_key ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*academic.LessonType, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// ExistsByName checks the normalized name for one teacher
func (r *GormLessonTypeRepository) ExistsByName(ctx context.Context, teacherID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	q := conn(ctx, r.db).Model(&models.LessonTypeModel{}).
		Where("teacher_id = ? AND name_key = ?", teacherID, academic.NormalizeLessonTypeName(name))
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
