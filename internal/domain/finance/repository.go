package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

// PaymentFilter scopes payment queries. Nil fields do not filter.
type PaymentFilter struct {
	shared.Filter
	StudentID *uuid.UUID
	TeacherID *uuid.UUID
	Status    *PaymentStatus
	Range     shared.DateRange
}

// PaymentRepository defines the interface for student payment persistence
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	Update(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindAll(ctx context.Context, filter PaymentFilter) ([]*Payment, int64, error)

	// FindForStudent returns a student's payments dated within [start, end]
	FindForStudent(ctx context.Context, studentID uuid.UUID, dates shared.DateRange) ([]*Payment, error)

	// SumByStatus groups matching payment amounts by status
	SumByStatus(ctx context.Context, filter PaymentFilter) (shared.StatusTotals, error)

	// Sum totals matching payment amounts
	Sum(ctx context.Context, filter PaymentFilter) (shared.AmountSummary, error)

	// SumByPeriod buckets matching payment amounts by payment date
	SumByPeriod(ctx context.Context, filter PaymentFilter, period shared.Period) ([]shared.PeriodTotal, error)
}

// TeacherPaymentFilter scopes teacher payment queries
type TeacherPaymentFilter struct {
	shared.Filter
	TeacherID *uuid.UUID
	Status    *TeacherPaymentStatus
	Statuses  []TeacherPaymentStatus
	Range     shared.DateRange
}

// TeacherPaymentRepository defines the interface for teacher payout persistence
type TeacherPaymentRepository interface {
	Create(ctx context.Context, payment *TeacherPayment) error
	Update(ctx context.Context, payment *TeacherPayment) error
	FindByID(ctx context.Context, id uuid.UUID) (*TeacherPayment, error)
	FindAll(ctx context.Context, filter TeacherPaymentFilter) ([]*TeacherPayment, int64, error)
	SumByStatus(ctx context.Context, filter TeacherPaymentFilter) (shared.StatusTotals, error)
	Sum(ctx context.Context, filter TeacherPaymentFilter) (shared.AmountSummary, error)
	SumByPeriod(ctx context.Context, filter TeacherPaymentFilter, period shared.Period) ([]shared.PeriodTotal, error)
}

// ExpenseFilter scopes expense queries
type ExpenseFilter struct {
	shared.Filter
	Category    *ExpenseCategory
	Status      *ExpenseStatus
	SubmittedBy *uuid.UUID
	Range       shared.DateRange
}

// CategoryTotal is one category group of a grouped expense sum
type CategoryTotal struct {
	Category ExpenseCategory `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int64           `json:"count"`
}

// ExpenseRepository defines the interface for expense persistence
type ExpenseRepository interface {
	Create(ctx context.Context, expense *Expense) error
	Update(ctx context.Context, expense *Expense) error
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)

	// FindByFilter returns every matching expense ordered by expense date
	FindByFilter(ctx context.Context, filter ExpenseFilter) ([]*Expense, error)

	// FindAll returns one page of matching expenses
	FindAll(ctx context.Context, filter ExpenseFilter) ([]*Expense, int64, error)

	SumByCategory(ctx context.Context, filter ExpenseFilter) ([]CategoryTotal, error)
	Sum(ctx context.Context, filter ExpenseFilter) (shared.AmountSummary, error)
	SumByPeriod(ctx context.Context, filter ExpenseFilter, period shared.Period) ([]shared.PeriodTotal, error)
}
