package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tutorcenter/backend/internal/domain/finance"
)

// PaymentResponse is the public view of a student payment
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	StudentID     uuid.UUID       `json:"studentId"`
	TeacherID     uuid.UUID       `json:"teacherId"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string" example:"4800.00"`
	Currency      string          `json:"currency" example:"DZD"`
	Method        string          `json:"method" example:"cash"`
	Status        string          `json:"status" example:"pending"`
	PaymentDate   time.Time       `json:"paymentDate"`
	DueDate       *time.Time      `json:"dueDate,omitempty"`
	Description   string          `json:"description,omitempty"`
	ReceiptNumber string          `json:"receiptNumber,omitempty" example:"RCP-202403-0001"`
	Refund        *finance.Refund `json:"refund,omitempty"`
	StatusReason  string          `json:"statusReason,omitempty"`
	CreatedBy     uuid.UUID       `json:"createdBy"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func toPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		StudentID:     p.StudentID,
		TeacherID:     p.TeacherID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Method:        string(p.Method),
		Status:        string(p.Status),
		PaymentDate:   p.PaymentDate,
		DueDate:       p.DueDate,
		Description:   p.Description,
		ReceiptNumber: p.ReceiptNumber,
		Refund:        p.Refund,
		StatusReason:  p.StatusReason,
		CreatedBy:     p.CreatedBy,
		CompletedAt:   p.CompletedAt,
		CreatedAt:     p.CreatedAt,
	}
}

func paymentView(p *finance.Payment) any { return toPaymentResponse(p) }

// TeacherPaymentResponse is the public view of a teacher payout
type TeacherPaymentResponse struct {
	ID                 uuid.UUID        `json:"id"`
	TeacherID          uuid.UUID        `json:"teacherId"`
	Amount             decimal.Decimal  `json:"amount" swaggertype:"string" example:"36000.00"`
	Currency           string           `json:"currency"`
	PaymentType        string           `json:"paymentType" example:"hourly_payment"`
	Hours              *decimal.Decimal `json:"hours,omitempty" swaggertype:"string"`
	HourlyRate         *decimal.Decimal `json:"hourlyRate,omitempty" swaggertype:"string"`
	PeriodStart        *time.Time       `json:"periodStart,omitempty"`
	PeriodEnd          *time.Time       `json:"periodEnd,omitempty"`
	Method             string           `json:"method"`
	Status             string           `json:"status" example:"approved"`
	PaymentDate        time.Time        `json:"paymentDate"`
	Description        string           `json:"description,omitempty"`
	CreatedBy          uuid.UUID        `json:"createdBy"`
	ApprovedBy         *uuid.UUID       `json:"approvedBy,omitempty"`
	ApprovedAt         *time.Time       `json:"approvedAt,omitempty"`
	PaidBy             *uuid.UUID       `json:"paidBy,omitempty"`
	PaidAt             *time.Time       `json:"paidAt,omitempty"`
	CancelledBy        *uuid.UUID       `json:"cancelledBy,omitempty"`
	CancelledAt        *time.Time       `json:"cancelledAt,omitempty"`
	CancellationReason string           `json:"cancellationReason,omitempty"`
	ReceiptNumber      string           `json:"receiptNumber,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
}

func toTeacherPaymentResponse(tp *finance.TeacherPayment) TeacherPaymentResponse {
	return TeacherPaymentResponse{
		ID:                 tp.ID,
		TeacherID:          tp.TeacherID,
		Amount:             tp.Amount,
		Currency:           tp.Currency,
		PaymentType:        string(tp.PaymentType),
		Hours:              tp.Hours,
		HourlyRate:         tp.HourlyRate,
		PeriodStart:        tp.PeriodStart,
		PeriodEnd:          tp.PeriodEnd,
		Method:             string(tp.Method),
		Status:             string(tp.Status),
		PaymentDate:        tp.PaymentDate,
		Description:        tp.Description,
		CreatedBy:          tp.CreatedBy,
		ApprovedBy:         tp.ApprovedBy,
		ApprovedAt:         tp.ApprovedAt,
		PaidBy:             tp.PaidBy,
		PaidAt:             tp.PaidAt,
		CancelledBy:        tp.CancelledBy,
		CancelledAt:        tp.CancelledAt,
		CancellationReason: tp.CancellationReason,
		ReceiptNumber:      tp.ReceiptNumber,
		CreatedAt:          tp.CreatedAt,
	}
}

func teacherPaymentView(tp *finance.TeacherPayment) any { return toTeacherPaymentResponse(tp) }

// ExpenseResponse is the public view of a general expense
type ExpenseResponse struct {
	ID                uuid.UUID       `json:"id"`
	Category          string          `json:"category" example:"rent"`
	Amount            decimal.Decimal `json:"amount" swaggertype:"string" example:"50000.00"`
	Currency          string          `json:"currency"`
	Description       string          `json:"description"`
	Vendor            string          `json:"vendor,omitempty"`
	ExpenseDate       time.Time       `json:"expenseDate"`
	Method            string          `json:"method"`
	Status            string          `json:"status" example:"pending"`
	SubmittedBy       uuid.UUID       `json:"submittedBy"`
	ApprovedBy        *uuid.UUID      `json:"approvedBy,omitempty"`
	ApprovedAt        *time.Time      `json:"approvedAt,omitempty"`
	RejectedBy        *uuid.UUID      `json:"rejectedBy,omitempty"`
	RejectedAt        *time.Time      `json:"rejectedAt,omitempty"`
	RejectionReason   string          `json:"rejectionReason,omitempty"`
	Recurring         string          `json:"recurring,omitempty" example:"monthly"`
	NextRecurringDate *time.Time      `json:"nextRecurringDate,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

func toExpenseResponse(e *finance.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:                e.ID,
		Category:          string(e.Category),
		Amount:            e.Amount,
		Currency:          e.Currency,
		Description:       e.Description,
		Vendor:            e.Vendor,
		ExpenseDate:       e.ExpenseDate,
		Method:            string(e.Method),
		Status:            string(e.Status),
		SubmittedBy:       e.SubmittedBy,
		ApprovedBy:        e.ApprovedBy,
		ApprovedAt:        e.ApprovedAt,
		RejectedBy:        e.RejectedBy,
		RejectedAt:        e.RejectedAt,
		RejectionReason:   e.RejectionReason,
		Recurring:         string(e.Recurring),
		NextRecurringDate: e.NextRecurringDate,
		CreatedAt:         e.CreatedAt,
	}
}

func expenseView(e *finance.Expense) any { return toExpenseResponse(e) }

// ReasonRequest carries the free-text reason of a state transition
type ReasonRequest struct {
	Reason string `json:"reason" binding:"max=500" example:"Card declined"`
}
