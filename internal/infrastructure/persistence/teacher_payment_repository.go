package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/tutorcenter/backend/internal/domain/finance"
	"github.com/tutorcenter/backend/internal/domain/shared"
	"github.com/tutorcenter/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTeacherPaymentRepository implements TeacherPaymentRepository using GORM
type GormTeacherPaymentRepository struct {
	db *gorm.DB
}

// NewGormTeacherPaymentRepository creates a new GormTeacherPaymentRepository
func NewGormTeacherPaymentRepository(db *gorm.DB) *GormTeacherPaymentRepository {
	return &GormTeacherPaymentRepository{db: db}
}

// Create creates a new teacher payment
func (r *GormTeacherPaymentRepository) Create(ctx context.Context, payment *finance.TeacherPayment) error {
	return translateError(conn(ctx, r.db).Create(models.TeacherPaymentModelFromDomain(payment)).Error)
}

// Update updates an existing teacher payment
func (r *GormTeacherPaymentRepository) Update(ctx context.Context, payment *finance.TeacherPayment) error {
	return updateAll(conn(ctx, r.db), models.TeacherPaymentModelFromDomain(payment))
}

// FindByID finds a teacher payment by ID
func (r *GormTeacherPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.TeacherPayment, error) {
	var model models.TeacherPaymentModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

func (r *GormTeacherPaymentRepository) filtered(ctx context.Context, filter finance.TeacherPaymentFilter) *gorm.DB {
	q := conn(ctx, r.db).Model(&models.TeacherPaymentModel{})
	if filter.TeacherID != nil {
		q = q.Where("teacher_id = ?", *filter.TeacherID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	return applyDateRange(q, "payment_date", filter.Range)
}

// FindAll returns one page of teacher payments
func (r *GormTeacherPaymentRepository) FindAll(ctx context.Context, filter finance.TeacherPaymentFilter) ([]*finance.TeacherPayment, int64, error) {
	var rows []models.TeacherPaymentModel
	total, err := findPage(r.filtered(ctx, filter), filter.Filter, TeacherPaymentSortFields, "payment_date", &rows)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*finance.TeacherPayment, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// SumByStatus groups matching payout amounts by status
func (r *GormTeacherPaymentRepository) SumByStatus(ctx context.Context, filter finance.TeacherPaymentFilter) (shared.StatusTotals, error) {
	rows, err := sumGrouped(r.filtered(ctx, filter), "status", "amount")
	if err != nil {
		return nil, err
	}
	return statusTotals(rows), nil
}

// Sum totals matching payout amounts
func (r *GormTeacherPaymentRepository) Sum(ctx context.Context, filter finance.TeacherPaymentFilter) (shared.AmountSummary, error) {
	return sumAmounts(r.filtered(ctx, filter), "amount")
}

// SumByPeriod buckets matching payout amounts by payment date
func (r *GormTeacherPaymentRepository) SumByPeriod(ctx context.Context, filter finance.TeacherPaymentFilter, period shared.Period) ([]shared.PeriodTotal, error) {
	return sumByPeriod(r.filtered(ctx, filter), "payment_date", "amount", period)
}
