package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

// AggregateTypePayment is the aggregate type name used in events and audit rows
const AggregateTypePayment = "Payment"

// PaymentMethod is how money changed hands
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCard         PaymentMethod = "card"
	MethodCheck        PaymentMethod = "check"
	MethodOther        PaymentMethod = "other"
)

// IsValid checks if the method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodCard, MethodCheck, MethodOther:
		return true
	}
	return false
}

// PaymentStatus represents the state of a student payment
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentCancelled PaymentStatus = "cancelled"
)

// IsValid checks if the status is known
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded, PaymentCancelled:
		return true
	}
	return false
}

// CanComplete returns true if the payment can be completed
func (s PaymentStatus) CanComplete() bool {
	return s == PaymentPending
}

// CanRefund returns true if the payment can be refunded
func (s PaymentStatus) CanRefund() bool {
	return s == PaymentCompleted
}

// CanFailOrCancel returns true if the payment can be failed or cancelled
func (s PaymentStatus) CanFailOrCancel() bool {
	return s == PaymentPending || s == PaymentCompleted
}

// Refund is the sub-record attached to a refunded payment
type Refund struct {
	Amount     decimal.Decimal `json:"refundAmount"`
	Date       time.Time       `json:"refundDate"`
	Reason     string          `json:"reason"`
	RefundedBy uuid.UUID       `json:"refundedBy"`
}

// Payment is money received from a student
type Payment struct {
	shared.BaseAggregateRoot
	StudentID     uuid.UUID
	TeacherID     uuid.UUID
	Amount        decimal.Decimal
	Currency      string
	Method        PaymentMethod
	Status        PaymentStatus
	PaymentDate   time.Time
	DueDate       *time.Time
	Description   string
	ReceiptNumber string
	Refund        *Refund
	StatusReason  string
	CreatedBy     uuid.UUID
	CompletedAt   *time.Time
}

// NewPayment records a pending payment
func NewPayment(studentID, teacherID uuid.UUID, amount decimal.Decimal, currency string, method PaymentMethod,
	paymentDate time.Time, dueDate *time.Time, description string, createdBy uuid.UUID) (*Payment, error) {
	if currency == "" {
		currency = shared.DefaultCurrency
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}
	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StudentID:         studentID,
		TeacherID:         teacherID,
		Amount:            amount,
		Currency:          strings.ToUpper(currency),
		Method:            method,
		Status:            PaymentPending,
		PaymentDate:       paymentDate,
		DueDate:           dueDate,
		Description:       strings.TrimSpace(description),
		CreatedBy:         createdBy,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate runs the common checks and then the checks for the current status
func (p *Payment) Validate() error {
	v := &shared.ValidationError{}
	if p.StudentID == uuid.Nil {
		v.Add("studentId", "studentId is required")
	}
	if p.TeacherID == uuid.Nil {
		v.Add("teacherId", "teacherId is required")
	}
	shared.ValidatePositiveAmount(v, "amount", p.Amount)
	if !p.Method.IsValid() {
		v.Add("paymentMethod", "paymentMethod must be one of cash, bank_transfer, card, check, other")
	}
	if !p.Status.IsValid() {
		v.Add("status", "status %q is not a payment status", p.Status)
	}
	switch p.Status {
	case PaymentCompleted:
		if p.ReceiptNumber == "" {
			v.Add("receiptNumber", "completed payments require a receipt number")
		}
	case PaymentRefunded:
		if p.Refund == nil {
			v.Add("refund", "refunded payments require refund details")
		} else {
			p.validateRefund(v, p.Refund)
		}
	}
	return v.OrNil()
}

func (p *Payment) validateRefund(v *shared.ValidationError, r *Refund) {
	shared.ValidatePositiveAmount(v, "refundAmount", r.Amount)
	if r.Amount.GreaterThan(p.Amount) {
		v.Add("refundAmount", "refundAmount cannot exceed the payment amount")
	}
	if r.Date.Before(p.PaymentDate) {
		v.Add("refundDate", "refundDate cannot be before the payment date")
	}
	if strings.TrimSpace(r.Reason) == "" {
		v.Add("reason", "refund reason is required")
	}
}

// IsOverdue reports a pending payment whose due date has passed
func (p *Payment) IsOverdue(now time.Time) bool {
	return p.Status == PaymentPending && p.DueDate != nil && p.DueDate.Before(now)
}

// NeedsReceipt reports whether completing the payment must draw a receipt number
func (p *Payment) NeedsReceipt() bool {
	return p.ReceiptNumber == ""
}

// AssignReceiptNumber sets the receipt number. It can be set only once.
func (p *Payment) AssignReceiptNumber(number string) error {
	if p.ReceiptNumber != "" {
		return shared.NewDomainError("INVALID_STATE", "Receipt number already assigned")
	}
	if number == "" {
		return shared.NewDomainError("INVALID_INPUT", "Receipt number cannot be empty")
	}
	p.ReceiptNumber = number
	return nil
}

// Complete moves a pending payment to completed. receiptNumber is used only
// when the payment does not already carry one.
func (p *Payment) Complete(actor uuid.UUID, receiptNumber string) error {
	if !p.Status.CanComplete() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete payment in %s status", p.Status))
	}
	if p.NeedsReceipt() {
		if err := p.AssignReceiptNumber(receiptNumber); err != nil {
			return err
		}
	}
	before := p.snapshot()
	now := time.Now()
	p.Status = PaymentCompleted
	p.CompletedAt = &now
	p.transitioned(actor, "payment.complete", before)
	return nil
}

// Fail marks a pending or completed payment as failed
func (p *Payment) Fail(actor uuid.UUID, reason string) error {
	if !p.Status.CanFailOrCancel() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail payment in %s status", p.Status))
	}
	before := p.snapshot()
	p.Status = PaymentFailed
	p.StatusReason = strings.TrimSpace(reason)
	p.transitioned(actor, "payment.fail", before)
	return nil
}

// Cancel cancels a pending or completed payment
func (p *Payment) Cancel(actor uuid.UUID, reason string) error {
	if !p.Status.CanFailOrCancel() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel payment in %s status", p.Status))
	}
	before := p.snapshot()
	p.Status = PaymentCancelled
	p.StatusReason = strings.TrimSpace(reason)
	p.transitioned(actor, "payment.cancel", before)
	return nil
}

// RefundPayment refunds a completed payment. A rejected refund leaves the
// payment untouched.
func (p *Payment) RefundPayment(actor uuid.UUID, amount decimal.Decimal, date time.Time, reason string) error {
	if !p.Status.CanRefund() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot refund payment in %s status", p.Status))
	}
	if date.IsZero() {
		date = time.Now()
	}
	refund := &Refund{Amount: amount, Date: date, Reason: strings.TrimSpace(reason), RefundedBy: actor}
	v := &shared.ValidationError{}
	p.validateRefund(v, refund)
	if err := v.OrNil(); err != nil {
		return err
	}

	before := p.snapshot()
	p.Status = PaymentRefunded
	p.Refund = refund
	p.transitioned(actor, "payment.refund", before)
	return nil
}

func (p *Payment) transitioned(actor uuid.UUID, action string, before map[string]any) {
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(shared.NewStatusChangedEvent(AggregateTypePayment, p.ID, actor, action, before, p.snapshot()))
}

func (p *Payment) snapshot() map[string]any {
	s := map[string]any{
		"status": string(p.Status),
		"amount": p.Amount.StringFixed(2),
	}
	if p.ReceiptNumber != "" {
		s["receiptNumber"] = p.ReceiptNumber
	}
	if p.Refund != nil {
		s["refundAmount"] = p.Refund.Amount.StringFixed(2)
	}
	if p.StatusReason != "" {
		s["reason"] = p.StatusReason
	}
	return s
}
