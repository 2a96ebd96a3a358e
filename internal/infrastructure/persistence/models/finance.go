package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tutorcenter/backend/internal/domain/finance"
)

// PaymentModel is the persistence model for the Payment domain entity.
type PaymentModel struct {
	AggregateModel
	StudentID     uuid.UUID             `gorm:"type:uuid;not null;index:idx_payment_student_date,priority:1"`
	TeacherID     uuid.UUID             `gorm:"type:uuid;not null;index;uniqueIndex:idx_payments_teacher_receipt,priority:1"`
	Amount        decimal.Decimal       `gorm:"type:decimal(14,2);not null"`
	Currency      string                `gorm:"type:varchar(3);not null;default:'DZD'"`
	Method        finance.PaymentMethod `gorm:"column:payment_method;type:varchar(20);not null"`
	Status        finance.PaymentStatus `gorm:"type:varchar(20);not null;index"`
	PaymentDate   time.Time             `gorm:"not null;index:idx_payment_student_date,priority:2"`
	DueDate       *time.Time
	Description   string          `gorm:"type:text"`
	ReceiptNumber *string         `gorm:"type:varchar(40);uniqueIndex:idx_payments_teacher_receipt,priority:2"`
	RefundAmount  decimal.Decimal `gorm:"type:decimal(14,2)"`
	RefundDate    *time.Time
	RefundReason  string     `gorm:"type:text"`
	RefundedBy    *uuid.UUID `gorm:"type:uuid"`
	StatusReason  string     `gorm:"type:text"`
	CreatedBy     uuid.UUID  `gorm:"type:uuid"`
	CompletedAt   *time.Time
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *finance.Payment {
	p := &finance.Payment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		StudentID:         m.StudentID,
		TeacherID:         m.TeacherID,
		Amount:            m.Amount,
		Currency:          m.Currency,
		Method:            m.Method,
		Status:            m.Status,
		PaymentDate:       m.PaymentDate,
		DueDate:           m.DueDate,
		Description:       m.Description,
		StatusReason:      m.StatusReason,
		CreatedBy:         m.CreatedBy,
		CompletedAt:       m.CompletedAt,
	}
	if m.ReceiptNumber != nil {
		p.ReceiptNumber = *m.ReceiptNumber
	}
	if m.RefundDate != nil && m.RefundedBy != nil {
		p.Refund = &finance.Refund{
			Amount:     m.RefundAmount,
			Date:       *m.RefundDate,
			Reason:     m.RefundReason,
			RefundedBy: *m.RefundedBy,
		}
	}
	return p
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *finance.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.StudentID = p.StudentID
	m.TeacherID = p.TeacherID
	m.Amount = p.Amount
	m.Currency = p.Currency
	m.Method = p.Method
	m.Status = p.Status
	m.PaymentDate = p.PaymentDate
	m.DueDate = p.DueDate
	m.Description = p.Description
	m.StatusReason = p.StatusReason
	m.CreatedBy = p.CreatedBy
	m.CompletedAt = p.CompletedAt
	m.ReceiptNumber = nil
	if p.ReceiptNumber != "" {
		rn := p.ReceiptNumber
		m.ReceiptNumber = &rn
	}
	m.RefundAmount = decimal.Zero
	m.RefundDate, m.RefundedBy, m.RefundReason = nil, nil, ""
	if p.Refund != nil {
		date, by := p.Refund.Date, p.Refund.RefundedBy
		m.RefundAmount = p.Refund.Amount
		m.RefundDate = &date
		m.RefundedBy = &by
		m.RefundReason = p.Refund.Reason
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment entity.
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// TeacherPaymentModel is the persistence model for the TeacherPayment domain entity.
type TeacherPaymentModel struct {
	AggregateModel
	TeacherID          uuid.UUID                  `gorm:"type:uuid;not null;index"`
	Amount             decimal.Decimal            `gorm:"type:decimal(14,2);not null"`
	Currency           string                     `gorm:"type:varchar(3);not null;default:'DZD'"`
	PaymentType        finance.TeacherPaymentType `gorm:"type:varchar(20);not null"`
	Hours              *decimal.Decimal           `gorm:"column:hours_worked;type:decimal(7,2)"`
	HourlyRate         *decimal.Decimal           `gorm:"type:decimal(12,2)"`
	PeriodStart        *time.Time
	PeriodEnd          *time.Time
	Method             finance.PaymentMethod        `gorm:"column:payment_method;type:varchar(20);not null"`
	Status             finance.TeacherPaymentStatus `gorm:"type:varchar(20);not null;index"`
	PaymentDate        time.Time                    `gorm:"not null;index"`
	Description        string                       `gorm:"type:text"`
	CreatedBy          uuid.UUID                    `gorm:"type:uuid"`
	ApprovedBy         *uuid.UUID                   `gorm:"type:uuid"`
	ApprovedAt         *time.Time
	PaidBy             *uuid.UUID `gorm:"type:uuid"`
	PaidAt             *time.Time
	CancelledBy        *uuid.UUID `gorm:"type:uuid"`
	CancelledAt        *time.Time
	CancellationReason string  `gorm:"type:text"`
	ReceiptNumber      *string `gorm:"type:varchar(40);uniqueIndex"`
}

// TableName returns the table name for GORM
func (TeacherPaymentModel) TableName() string {
	return "teacher_payments"
}

// ToDomain converts the persistence model to a domain TeacherPayment entity.
func (m *TeacherPaymentModel) ToDomain() *finance.TeacherPayment {
	tp := &finance.TeacherPayment{
		BaseAggregateRoot:  m.ToDomainAggregateRoot(),
		TeacherID:          m.TeacherID,
		Amount:             m.Amount,
		Currency:           m.Currency,
		PaymentType:        m.PaymentType,
		Hours:              m.Hours,
		HourlyRate:         m.HourlyRate,
		PeriodStart:        m.PeriodStart,
		PeriodEnd:          m.PeriodEnd,
		Method:             m.Method,
		Status:             m.Status,
		PaymentDate:        m.PaymentDate,
		Description:        m.Description,
		CreatedBy:          m.CreatedBy,
		ApprovedBy:         m.ApprovedBy,
		ApprovedAt:         m.ApprovedAt,
		PaidBy:             m.PaidBy,
		PaidAt:             m.PaidAt,
		CancelledBy:        m.CancelledBy,
		CancelledAt:        m.CancelledAt,
		CancellationReason: m.CancellationReason,
	}
	if m.ReceiptNumber != nil {
		tp.ReceiptNumber = *m.ReceiptNumber
	}
	return tp
}

// FromDomain populates the persistence model from a domain TeacherPayment entity.
func (m *TeacherPaymentModel) FromDomain(tp *finance.TeacherPayment) {
	m.FromDomainAggregateRoot(tp.BaseAggregateRoot)
	m.TeacherID = tp.TeacherID
	m.Amount = tp.Amount
	m.Currency = tp.Currency
	m.PaymentType = tp.PaymentType
	m.Hours = tp.Hours
	m.HourlyRate = tp.HourlyRate
	m.PeriodStart = tp.PeriodStart
	m.PeriodEnd = tp.PeriodEnd
	m.Method = tp.Method
	m.Status = tp.Status
	m.PaymentDate = tp.PaymentDate
	m.Description = tp.Description
	m.CreatedBy = tp.CreatedBy
	m.ApprovedBy = tp.ApprovedBy
	m.ApprovedAt = tp.ApprovedAt
	m.PaidBy = tp.PaidBy
	m.PaidAt = tp.PaidAt
	m.CancelledBy = tp.CancelledBy
	m.CancelledAt = tp.CancelledAt
	m.CancellationReason = tp.CancellationReason
	m.ReceiptNumber = nil
	if tp.ReceiptNumber != "" {
		rn := tp.ReceiptNumber
		m.ReceiptNumber = &rn
	}
}

// TeacherPaymentModelFromDomain creates a new persistence model from a domain TeacherPayment entity.
func TeacherPaymentModelFromDomain(tp *finance.TeacherPayment) *TeacherPaymentModel {
	m := &TeacherPaymentModel{}
	m.FromDomain(tp)
	return m
}

// ExpenseModel is the persistence model for the Expense domain entity.
type ExpenseModel struct {
	AggregateModel
	Category          finance.ExpenseCategory `gorm:"type:varchar(30);not null;index"`
	Amount            decimal.Decimal         `gorm:"type:decimal(14,2);not null"`
	Currency          string                  `gorm:"type:varchar(3);not null;default:'DZD'"`
	Description       string                  `gorm:"type:text;not null"`
	Vendor            string                  `gorm:"type:varchar(200)"`
	ExpenseDate       time.Time               `gorm:"not null;index"`
	Method            finance.PaymentMethod   `gorm:"column:payment_method;type:varchar(20);not null"`
	Status            finance.ExpenseStatus   `gorm:"type:varchar(20);not null;index"`
	SubmittedBy       uuid.UUID               `gorm:"type:uuid;not null;index"`
	ApprovedBy        *uuid.UUID              `gorm:"type:uuid"`
	ApprovedAt        *time.Time
	RejectedBy        *uuid.UUID `gorm:"type:uuid"`
	RejectedAt        *time.Time
	RejectionReason   string                     `gorm:"type:text"`
	Recurring         finance.RecurringFrequency `gorm:"column:recurring_frequency;type:varchar(20)"`
	NextRecurringDate *time.Time
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense entity.
func (m *ExpenseModel) ToDomain() *finance.Expense {
	return &finance.Expense{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Category:          m.Category,
		Amount:            m.Amount,
		Currency:          m.Currency,
		Description:       m.Description,
		Vendor:            m.Vendor,
		ExpenseDate:       m.ExpenseDate,
		Method:            m.Method,
		Status:            m.Status,
		SubmittedBy:       m.SubmittedBy,
		ApprovedBy:        m.ApprovedBy,
		ApprovedAt:        m.ApprovedAt,
		RejectedBy:        m.RejectedBy,
		RejectedAt:        m.RejectedAt,
		RejectionReason:   m.RejectionReason,
		Recurring:         m.Recurring,
		NextRecurringDate: m.NextRecurringDate,
	}
}

// FromDomain populates the persistence model from a domain Expense entity.
func (m *ExpenseModel) FromDomain(e *finance.Expense) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.Category = e.Category
	m.Amount = e.Amount
	m.Currency = e.Currency
	m.Description = e.Description
	m.Vendor = e.Vendor
	m.ExpenseDate = e.ExpenseDate
	m.Method = e.Method
	m.Status = e.Status
	m.SubmittedBy = e.SubmittedBy
	m.ApprovedBy = e.ApprovedBy
	m.ApprovedAt = e.ApprovedAt
	m.RejectedBy = e.RejectedBy
	m.RejectedAt = e.RejectedAt
	m.RejectionReason = e.RejectionReason
	m.Recurring = e.Recurring
	m.NextRecurringDate = e.NextRecurringDate
}

// ExpenseModelFromDomain creates a new persistence model from a domain Expense entity.
func ExpenseModelFromDomain(e *finance.Expense) *ExpenseModel {
	m := &ExpenseModel{}
	m.FromDomain(e)
	return m
}

// ReceiptCounterModel holds the last issued sequence number of one receipt scope.
type ReceiptCounterModel struct {
	Scope     string    `gorm:"type:varchar(120);primaryKey"`
	Value     int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReceiptCounterModel) TableName() string {
	return "receipt_counters"
}
