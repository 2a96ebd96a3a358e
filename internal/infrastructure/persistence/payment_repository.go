package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/tutorcenter/backend/internal/domain/finance"
	"github.com/tutorcenter/backend/internal/domain/shared"
	"github.com/tutorcenter/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create creates a new payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *finance.Payment) error {
	return translateError(conn(ctx, r.db).Create(models.PaymentModelFromDomain(payment)).Error)
}

// Update updates an existing payment
func (r *GormPaymentRepository) Update(ctx context.Context, payment *finance.Payment) error {
	return updateAll(conn(ctx, r.db), models.PaymentModelFromDomain(payment))
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	var model models.PaymentModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

func (r *GormPaymentRepository) filtered(ctx context.Context, filter finance.PaymentFilter) *gorm.DB {
	q := conn(ctx, r.db).Model(&models.PaymentModel{})
	if filter.StudentID != nil {
		q = q.Where("student_id = ?", *filter.StudentID)
	}
	if filter.TeacherID != nil {
		q = q.Where("teacher_id = ?", *filter.TeacherID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	return applyDateRange(q, "payment_date", filter.Range)
}

// FindAll returns one page of payments
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter finance.PaymentFilter) ([]*finance.Payment, int64, error) {
	var rows []models.PaymentModel
	total, err := findPage(r.filtered(ctx, filter), filter.Filter, PaymentSortFields, "payment_date", &rows)
	if err != nil {
		return nil, 0, err
	}
	return paymentsToDomain(rows), total, nil
}

// FindForStudent returns a student's payments within the range, oldest first
func (r *GormPaymentRepository) FindForStudent(ctx context.Context, studentID uuid.UUID, dates shared.DateRange) ([]*finance.Payment, error) {
	var rows []models.PaymentModel
	if err := r.filtered(ctx, finance.PaymentFilter{StudentID: &studentID, Range: dates}).
		Order("payment_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(rows), nil
}

// SumByStatus groups matching payment amounts by status
func (r *GormPaymentRepository) SumByStatus(ctx context.Context, filter finance.PaymentFilter) (shared.StatusTotals, error) {
	rows, err := sumGrouped(r.filtered(ctx, filter), "status", "amount")
	if err != nil {
		return nil, err
	}
	return statusTotals(rows), nil
}

// Sum totals matching payment amounts
func (r *GormPaymentRepository) Sum(ctx context.Context, filter finance.PaymentFilter) (shared.AmountSummary, error) {
	return sumAmounts(r.filtered(ctx, filter), "amount")
}

// SumByPeriod buckets matching payment amounts by payment date
func (r *GormPaymentRepository) SumByPeriod(ctx context.Context, filter finance.PaymentFilter, period shared.Period) ([]shared.PeriodTotal, error) {
	return sumByPeriod(r.filtered(ctx, filter), "payment_date", "amount", period)
}

func paymentsToDomain(rows []models.PaymentModel) []*finance.Payment {
	out := make([]*finance.Payment, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}
