package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

// AggregateTypeExpense is the aggregate type name used in events and audit rows
const AggregateTypeExpense = "Expense"

// ExpenseCategory is the closed set of expense categories
type ExpenseCategory string

const (
	CategoryRent           ExpenseCategory = "rent"
	CategoryUtilities      ExpenseCategory = "utilities"
	CategorySupplies       ExpenseCategory = "supplies"
	CategoryEquipment      ExpenseCategory = "equipment"
	CategoryMarketing      ExpenseCategory = "marketing"
	CategorySalaries       ExpenseCategory = "salaries"
	CategoryMaintenance    ExpenseCategory = "maintenance"
	CategoryInsurance      ExpenseCategory = "insurance"
	CategoryTransportation ExpenseCategory = "transportation"
	CategoryTraining       ExpenseCategory = "training"
	CategoryOther          ExpenseCategory = "other"
)

// ExpenseCategories lists every category in display order
var ExpenseCategories = []ExpenseCategory{
	CategoryRent, CategoryUtilities, CategorySupplies, CategoryEquipment, CategoryMarketing,
	CategorySalaries, CategoryMaintenance, CategoryInsurance, CategoryTransportation,
	CategoryTraining, CategoryOther,
}

// IsValid checks if the category is known
func (c ExpenseCategory) IsValid() bool {
	for _, known := range ExpenseCategories {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the string representation
func (c ExpenseCategory) String() string {
	return string(c)
}

// ExpenseStatus represents the approval state of an expense
type ExpenseStatus string

const (
	ExpensePending  ExpenseStatus = "pending"
	ExpenseApproved ExpenseStatus = "approved"
	ExpenseRejected ExpenseStatus = "rejected"
	// ExpensePaid is accepted for expenses entered as already settled; no
	// transition leads to it.
	ExpensePaid ExpenseStatus = "paid"
)

// IsValid checks if the status is known
func (s ExpenseStatus) IsValid() bool {
	switch s {
	case ExpensePending, ExpenseApproved, ExpenseRejected, ExpensePaid:
		return true
	}
	return false
}

// CanApprove returns true if the expense can be approved or rejected
func (s ExpenseStatus) CanApprove() bool {
	return s == ExpensePending
}

// RecurringFrequency is how often a recurring expense repeats
type RecurringFrequency string

const (
	RecurringWeekly    RecurringFrequency = "weekly"
	RecurringMonthly   RecurringFrequency = "monthly"
	RecurringQuarterly RecurringFrequency = "quarterly"
)

// IsValid checks if the frequency is known
func (f RecurringFrequency) IsValid() bool {
	return f == RecurringWeekly || f == RecurringMonthly || f == RecurringQuarterly
}

// Next returns the occurrence after t
func (f RecurringFrequency) Next(t time.Time) time.Time {
	switch f {
	case RecurringWeekly:
		return t.AddDate(0, 0, 7)
	case RecurringQuarterly:
		return t.AddDate(0, 3, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// ExpenseInput carries the fields for a new expense
type ExpenseInput struct {
	Category    ExpenseCategory
	Amount      decimal.Decimal
	Currency    string
	Description string
	Vendor      string
	ExpenseDate time.Time
	Method      PaymentMethod
	Recurring   RecurringFrequency
	Status      ExpenseStatus
	SubmittedBy uuid.UUID
}

// Expense is a general business expense
type Expense struct {
	shared.BaseAggregateRoot
	Category          ExpenseCategory
	Amount            decimal.Decimal
	Currency          string
	Description       string
	Vendor            string
	ExpenseDate       time.Time
	Method            PaymentMethod
	Status            ExpenseStatus
	SubmittedBy       uuid.UUID
	ApprovedBy        *uuid.UUID
	ApprovedAt        *time.Time
	RejectedBy        *uuid.UUID
	RejectedAt        *time.Time
	RejectionReason   string
	Recurring         RecurringFrequency
	NextRecurringDate *time.Time
}

// NewExpense records an expense. Status defaults to pending; an expense may be
// entered directly as paid.
func NewExpense(in ExpenseInput) (*Expense, error) {
	if in.Currency == "" {
		in.Currency = shared.DefaultCurrency
	}
	if in.Status == "" {
		in.Status = ExpensePending
	}
	if in.Status != ExpensePending && in.Status != ExpensePaid {
		return nil, shared.NewDomainError("INVALID_STATE", "New expenses must be pending or paid")
	}
	if in.Method == "" {
		in.Method = MethodCash
	}
	e := &Expense{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Category:          in.Category,
		Amount:            in.Amount,
		Currency:          strings.ToUpper(in.Currency),
		Description:       strings.TrimSpace(in.Description),
		Vendor:            strings.TrimSpace(in.Vendor),
		ExpenseDate:       in.ExpenseDate,
		Method:            in.Method,
		Status:            in.Status,
		SubmittedBy:       in.SubmittedBy,
		Recurring:         in.Recurring,
	}
	if e.Recurring != "" && e.Recurring.IsValid() && !e.ExpenseDate.IsZero() {
		next := e.Recurring.Next(e.ExpenseDate)
		e.NextRecurringDate = &next
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate runs the common checks and then the checks for the current status
func (e *Expense) Validate() error {
	v := &shared.ValidationError{}
	if !e.Category.IsValid() {
		v.Add("category", "category %q is not a known expense category", e.Category)
	}
	shared.ValidatePositiveAmount(v, "amount", e.Amount)
	if e.Description == "" {
		v.Add("description", "description is required")
	}
	if e.ExpenseDate.IsZero() {
		v.Add("expenseDate", "expenseDate is required")
	}
	if e.SubmittedBy == uuid.Nil {
		v.Add("submittedBy", "submittedBy is required")
	}
	if !e.Method.IsValid() {
		v.Add("paymentMethod", "paymentMethod must be one of cash, bank_transfer, card, check, other")
	}
	if e.Recurring != "" && !e.Recurring.IsValid() {
		v.Add("recurringFrequency", "recurringFrequency must be weekly, monthly or quarterly")
	}
	switch e.Status {
	case ExpenseApproved:
		if e.ApprovedBy == nil || e.ApprovedAt == nil {
			v.Add("approvedBy", "approved expenses require approver and approval time")
		}
	case ExpenseRejected:
		if e.RejectedBy == nil || e.RejectedAt == nil {
			v.Add("rejectedBy", "rejected expenses require rejecter and rejection time")
		}
		if e.RejectionReason == "" {
			v.Add("rejectionReason", "rejected expenses require a reason")
		}
	case ExpensePending, ExpensePaid:
	default:
		v.Add("status", "status %q is not an expense status", e.Status)
	}
	return v.OrNil()
}

// IsRecurring reports whether the expense repeats
func (e *Expense) IsRecurring() bool {
	return e.Recurring != ""
}

// Approve approves a pending expense
func (e *Expense) Approve(actor uuid.UUID) error {
	if !e.Status.CanApprove() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve expense in %s status", e.Status))
	}
	if actor == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Approver user ID cannot be empty")
	}
	before := e.snapshot()
	now := time.Now()
	e.Status = ExpenseApproved
	e.ApprovedBy = &actor
	e.ApprovedAt = &now
	e.transitioned(actor, "expense.approve", before)
	return nil
}

// Reject rejects a pending expense with a reason
func (e *Expense) Reject(actor uuid.UUID, reason string) error {
	if !e.Status.CanApprove() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject expense in %s status", e.Status))
	}
	if actor == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Rejecter user ID cannot be empty")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_INPUT", "Rejection reason is required")
	}
	before := e.snapshot()
	now := time.Now()
	e.Status = ExpenseRejected
	e.RejectedBy = &actor
	e.RejectedAt = &now
	e.RejectionReason = reason
	e.transitioned(actor, "expense.reject", before)
	return nil
}

func (e *Expense) transitioned(actor uuid.UUID, action string, before map[string]any) {
	e.Touch()
	e.IncrementVersion()
	e.AddDomainEvent(shared.NewStatusChangedEvent(AggregateTypeExpense, e.ID, actor, action, before, e.snapshot()))
}

func (e *Expense) snapshot() map[string]any {
	s := map[string]any{
		"status": string(e.Status),
		"amount": e.Amount.StringFixed(2),
	}
	if e.RejectionReason != "" {
		s["reason"] = e.RejectionReason
	}
	return s
}
