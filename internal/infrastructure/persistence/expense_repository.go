package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/tutorcenter/backend/internal/domain/finance"
	"github.com/tutorcenter/backend/internal/domain/shared"
	"github.com/tutorcenter/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormExpenseRepository implements ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// Create creates a new expense
func (r *GormExpenseRepository) Create(ctx context.Context, expense *finance.Expense) error {
	return translateError(conn(ctx, r.db).Create(models.ExpenseModelFromDomain(expense)).Error)
}

// Update updates an existing expense
func (r *GormExpenseRepository) Update(ctx context.Context, expense *finance.Expense) error {
	return updateAll(conn(ctx, r.db), models.ExpenseModelFromDomain(expense))
}

// FindByID finds an expense by ID
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Expense, error) {
	var model models.ExpenseModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

func (r *GormExpenseRepository) filtered(ctx context.Context, filter finance.ExpenseFilter) *gorm.DB {
	q := conn(ctx, r.db).Model(&models.ExpenseModel{})
	if filter.Category != nil {
		q = q.Where("category = ?", *filter.Category)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.SubmittedBy != nil {
		q = q.Where("submitted_by = ?", *filter.SubmittedBy)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(description) LIKE ? OR LOWER(vendor) LIKE ?", like, like)
	}
	return applyDateRange(q, "expense_date", filter.Range)
}

// FindByFilter returns every matching expense ordered by expense date
func (r *GormExpenseRepository) FindByFilter(ctx context.Context, filter finance.ExpenseFilter) ([]*finance.Expense, error) {
	var rows []models.ExpenseModel
	if err := r.filtered(ctx, filter).Order("expense_date ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return expensesToDomain(rows), nil
}

// FindAll returns one page of matching expenses
func (r *GormExpenseRepository) FindAll(ctx context.Context, filter finance.ExpenseFilter) ([]*finance.Expense, int64, error) {
	var rows []models.ExpenseModel
	total, err := findPage(r.filtered(ctx, filter), filter.Filter, ExpenseSortFields, "expense_date", &rows)
	if err != nil {
		return nil, 0, err
	}
	return expensesToDomain(rows), total, nil
}

// SumByCategory groups matching expense amounts by category
func (r *GormExpenseRepository) SumByCategory(ctx context.Context, filter finance.ExpenseFilter) ([]finance.CategoryTotal, error) {
	rows, err := sumGrouped(r.filtered(ctx, filter), "category", "amount")
	if err != nil {
		return nil, err
	}
	totals := statusTotals(rows)
	out := make([]finance.CategoryTotal, len(totals))
	for i, t := range totals {
		out[i] = finance.CategoryTotal{Category: finance.ExpenseCategory(t.Status), Total: t.Total, Count: t.Count}
	}
	return out, nil
}

// Sum totals matching expense amounts
func (r *GormExpenseRepository) Sum(ctx context.Context, filter finance.ExpenseFilter) (shared.AmountSummary, error) {
	return sumAmounts(r.filtered(ctx, filter), "amount")
}

// SumByPeriod buckets matching expense amounts by expense date
func (r *GormExpenseRepository) SumByPeriod(ctx context.Context, filter finance.ExpenseFilter, period shared.Period) ([]shared.PeriodTotal, error) {
	return sumByPeriod(r.filtered(ctx, filter), "expense_date", "amount", period)
}

func expensesToDomain(rows []models.ExpenseModel) []*finance.Expense {
	out := make([]*finance.Expense, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}
