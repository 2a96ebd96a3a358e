package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/tutorcenter/backend/internal/domain/identity"
	"github.com/tutorcenter/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	return translateError(conn(ctx, r.db).Create(models.UserModelFromDomain(user)).Error)
}

// Update updates an existing user
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	return updateAll(conn(ctx, r.db), models.UserModelFromDomain(user))
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a user by email, case-insensitively
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var model models.UserModel
	if err := conn(ctx, r.db).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// ExistsByEmail checks if an email is already registered
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.UserModel{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormUserRepository) teachers(ctx context.Context, status *identity.ApprovalStatus) *gorm.DB {
	q := conn(ctx, r.db).Model(&models.UserModel{}).Where("role = ?", identity.RoleTeacher)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	return q
}

// FindTeachers returns teacher accounts ordered by name
func (r *GormUserRepository) FindTeachers(ctx context.Context, status *identity.ApprovalStatus) ([]*identity.User, error) {
	var rows []models.UserModel
	if err := r.teachers(ctx, status).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	users := make([]*identity.User, len(rows))
	for i := range rows {
		users[i] = rows[i].ToDomain()
	}
	return users, nil
}

// CountTeachers counts teacher accounts
func (r *GormUserRepository) CountTeachers(ctx context.Context, status *identity.ApprovalStatus) (int64, error) {
	var count int64
	if err := r.teachers(ctx, status).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
