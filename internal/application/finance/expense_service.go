package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/tutorcenter/backend/internal/domain/finance"
	"github.com/tutorcenter/backend/internal/domain/identity"
	"github.com/tutorcenter/backend/internal/domain/shared"
	"github.com/tutorcenter/backend/internal/infrastructure/telemetry"
)

// CreateExpenseInput carries the fields of a new expense
type CreateExpenseInput struct {
	Category    finance.ExpenseCategory
	Amount      decimal.Decimal
	Currency    string
	Description string
	Vendor      string
	ExpenseDate time.Time
	Method      finance.PaymentMethod
	Recurring   finance.RecurringFrequency
	// Status may be left empty (pending) or set to paid for settled expenses
	Status finance.ExpenseStatus
}

// ExpenseListFilter narrows an expense listing
type ExpenseListFilter struct {
	ListFilter
	Category *finance.ExpenseCategory
	Status   *finance.ExpenseStatus
}

// ExpenseService manages general expenses
type ExpenseService struct {
	expenses finance.ExpenseRepository
	logger   *zap.Logger
	options
}

// NewExpenseService creates an expense service
func NewExpenseService(expenses finance.ExpenseRepository, logger *zap.Logger, opts ...Option) *ExpenseService {
	return &ExpenseService{expenses: expenses, logger: logger, options: buildOptions(opts)}
}

// Create submits an expense on behalf of the actor
func (s *ExpenseService) Create(ctx context.Context, actor identity.Principal, in CreateExpenseInput) (e *finance.Expense, err error) {
	ctx, span := telemetry.StartSpan(ctx, "expense.create", attribute.String("expense.category", string(in.Category)))
	defer func() { telemetry.EndSpan(span, err) }()

	e, err = finance.NewExpense(finance.ExpenseInput{
		Category:    in.Category,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Description: in.Description,
		Vendor:      in.Vendor,
		ExpenseDate: in.ExpenseDate,
		Method:      in.Method,
		Recurring:   in.Recurring,
		Status:      in.Status,
		SubmittedBy: actor.UserID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.expenses.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Get returns an expense. Teachers only see what they submitted.
func (s *ExpenseService) Get(ctx context.Context, actor identity.Principal, id uuid.UUID) (*finance.Expense, error) {
	e, err := s.expenses.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Expense", err)
	}
	if err := requireAccess(actor, e.SubmittedBy); err != nil {
		return nil, notFound("Expense", err)
	}
	return e, nil
}

// List returns one page of expenses
func (s *ExpenseService) List(ctx context.Context, actor identity.Principal, f ExpenseListFilter) (shared.Paginated[*finance.Expense], error) {
	base := f.base()
	items, total, err := s.expenses.FindAll(ctx, finance.ExpenseFilter{
		Filter:      base,
		Category:    f.Category,
		Status:      f.Status,
		SubmittedBy: actor.Scope(),
		Range:       f.Range,
	})
	if err != nil {
		return shared.Paginated[*finance.Expense]{}, err
	}
	return shared.NewPaginated(items, total, base.Page, base.PageSize), nil
}

// Approve approves a pending expense
func (s *ExpenseService) Approve(ctx context.Context, actor identity.Principal, id uuid.UUID) (*finance.Expense, error) {
	return s.transition(ctx, actor, id, "expense.approve", func(e *finance.Expense) error {
		return e.Approve(actor.UserID)
	})
}

// Reject rejects a pending expense with a reason
func (s *ExpenseService) Reject(ctx context.Context, actor identity.Principal, id uuid.UUID, reason string) (*finance.Expense, error) {
	return s.transition(ctx, actor, id, "expense.reject", func(e *finance.Expense) error {
		return e.Reject(actor.UserID, reason)
	})
}

func (s *ExpenseService) transition(ctx context.Context, actor identity.Principal, id uuid.UUID, name string, apply func(*finance.Expense) error) (e *finance.Expense, err error) {
	ctx, span := telemetry.StartSpan(ctx, name, attribute.String("expense.id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	e, err = s.expenses.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Expense", err)
	}
	if err := apply(e); err != nil {
		return nil, err
	}
	if err := s.expenses.Update(ctx, e); err != nil {
		return nil, err
	}
	s.publish(ctx, s.logger, e)
	return e, nil
}
