package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

// AggregateTypeTeacherPayment is the aggregate type name used in events and audit rows
const AggregateTypeTeacherPayment = "TeacherPayment"

// TeacherPaymentType classifies a payout
type TeacherPaymentType string

const (
	TeacherPaymentSalary        TeacherPaymentType = "salary"
	TeacherPaymentHourly        TeacherPaymentType = "hourly_payment"
	TeacherPaymentBonus         TeacherPaymentType = "bonus"
	TeacherPaymentReimbursement TeacherPaymentType = "reimbursement"
	TeacherPaymentOther         TeacherPaymentType = "other"
)

// IsValid checks if the payment type is known
func (t TeacherPaymentType) IsValid() bool {
	switch t {
	case TeacherPaymentSalary, TeacherPaymentHourly, TeacherPaymentBonus, TeacherPaymentReimbursement, TeacherPaymentOther:
		return true
	}
	return false
}

// TeacherPaymentStatus represents the approval state of a payout
type TeacherPaymentStatus string

const (
	TeacherPaymentPending   TeacherPaymentStatus = "pending"
	TeacherPaymentApproved  TeacherPaymentStatus = "approved"
	TeacherPaymentPaid      TeacherPaymentStatus = "paid"
	TeacherPaymentCancelled TeacherPaymentStatus = "cancelled"
)

// IsValid checks if the status is known
func (s TeacherPaymentStatus) IsValid() bool {
	switch s {
	case TeacherPaymentPending, TeacherPaymentApproved, TeacherPaymentPaid, TeacherPaymentCancelled:
		return true
	}
	return false
}

// CanApprove returns true if the payout can be approved
func (s TeacherPaymentStatus) CanApprove() bool {
	return s == TeacherPaymentPending
}

// CanPay returns true if the payout can be marked paid
func (s TeacherPaymentStatus) CanPay() bool {
	return s == TeacherPaymentApproved
}

// CanCancel returns true if the payout can be cancelled
func (s TeacherPaymentStatus) CanCancel() bool {
	return s == TeacherPaymentPending || s == TeacherPaymentApproved
}

// TeacherPaymentInput carries the fields for a new payout
type TeacherPaymentInput struct {
	TeacherID   uuid.UUID
	Amount      decimal.Decimal
	Currency    string
	PaymentType TeacherPaymentType
	Hours       *decimal.Decimal
	HourlyRate  *decimal.Decimal
	PeriodStart *time.Time
	PeriodEnd   *time.Time
	Method      PaymentMethod
	PaymentDate time.Time
	Description string
	CreatedBy   uuid.UUID
}

// TeacherPayment is money paid by the business to a teacher
type TeacherPayment struct {
	shared.BaseAggregateRoot
	TeacherID          uuid.UUID
	Amount             decimal.Decimal
	Currency           string
	PaymentType        TeacherPaymentType
	Hours              *decimal.Decimal
	HourlyRate         *decimal.Decimal
	PeriodStart        *time.Time
	PeriodEnd          *time.Time
	Method             PaymentMethod
	Status             TeacherPaymentStatus
	PaymentDate        time.Time
	Description        string
	CreatedBy          uuid.UUID
	ApprovedBy         *uuid.UUID
	ApprovedAt         *time.Time
	PaidBy             *uuid.UUID
	PaidAt             *time.Time
	CancelledBy        *uuid.UUID
	CancelledAt        *time.Time
	CancellationReason string
	ReceiptNumber      string
}

// NewTeacherPayment records a pending payout. For hourly payments with both
// hours and rate the amount is derived from them.
func NewTeacherPayment(in TeacherPaymentInput) (*TeacherPayment, error) {
	if in.Currency == "" {
		in.Currency = shared.DefaultCurrency
	}
	if in.Method == "" {
		in.Method = MethodBankTransfer
	}
	if in.PaymentDate.IsZero() {
		in.PaymentDate = time.Now()
	}
	tp := &TeacherPayment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TeacherID:         in.TeacherID,
		Amount:            in.Amount,
		Currency:          strings.ToUpper(in.Currency),
		PaymentType:       in.PaymentType,
		Hours:             in.Hours,
		HourlyRate:        in.HourlyRate,
		PeriodStart:       in.PeriodStart,
		PeriodEnd:         in.PeriodEnd,
		Method:            in.Method,
		Status:            TeacherPaymentPending,
		PaymentDate:       in.PaymentDate,
		Description:       strings.TrimSpace(in.Description),
		CreatedBy:         in.CreatedBy,
	}
	tp.calculateAmount()
	if err := tp.Validate(); err != nil {
		return nil, err
	}
	return tp, nil
}

func (tp *TeacherPayment) calculateAmount() {
	if tp.PaymentType == TeacherPaymentHourly && tp.Hours != nil && tp.HourlyRate != nil {
		tp.Amount = shared.Round2(tp.Hours.Mul(*tp.HourlyRate))
	}
}

// Validate runs the common checks and then the checks for the current status
func (tp *TeacherPayment) Validate() error {
	v := &shared.ValidationError{}
	if tp.TeacherID == uuid.Nil {
		v.Add("teacherId", "teacherId is required")
	}
	shared.ValidatePositiveAmount(v, "amount", tp.Amount)
	if !tp.PaymentType.IsValid() {
		v.Add("paymentType", "paymentType must be one of salary, hourly_payment, bonus, reimbursement, other")
	}
	if !tp.Method.IsValid() {
		v.Add("paymentMethod", "paymentMethod must be one of cash, bank_transfer, card, check, other")
	}
	if tp.Hours != nil && !tp.Hours.IsPositive() {
		v.Add("hoursWorked", "hoursWorked must be greater than 0")
	}
	if tp.HourlyRate != nil {
		shared.ValidatePositiveAmount(v, "hourlyRate", *tp.HourlyRate)
	}
	if tp.PeriodStart != nil && tp.PeriodEnd != nil && tp.PeriodEnd.Before(*tp.PeriodStart) {
		v.Add("paymentPeriod", "payment period end cannot be before its start")
	}
	switch tp.Status {
	case TeacherPaymentApproved:
		if tp.ApprovedBy == nil || tp.ApprovedAt == nil {
			v.Add("approvedBy", "approved payments require approver and approval time")
		}
	case TeacherPaymentPaid:
		if tp.PaidAt == nil {
			v.Add("paidDate", "paid payments require a payment time")
		}
		if tp.ReceiptNumber == "" {
			v.Add("receiptNumber", "paid payments require a receipt number")
		}
	case TeacherPaymentCancelled:
		if tp.CancelledAt == nil {
			v.Add("cancelledAt", "cancelled payments require a cancellation time")
		}
	case TeacherPaymentPending:
	default:
		v.Add("status", "status %q is not a teacher payment status", tp.Status)
	}
	return v.OrNil()
}

// Approve moves a pending payout to approved
func (tp *TeacherPayment) Approve(actor uuid.UUID) error {
	if !tp.Status.CanApprove() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve teacher payment in %s status", tp.Status))
	}
	before := tp.snapshot()
	now := time.Now()
	tp.Status = TeacherPaymentApproved
	tp.ApprovedBy = &actor
	tp.ApprovedAt = &now
	tp.transitioned(actor, "teacher_payment.approve", before)
	return nil
}

// NeedsReceipt reports whether paying out must draw a receipt number
func (tp *TeacherPayment) NeedsReceipt() bool {
	return tp.ReceiptNumber == ""
}

// MarkPaid moves an approved payout to paid, assigning receiptNumber if none is set
func (tp *TeacherPayment) MarkPaid(actor uuid.UUID, receiptNumber string) error {
	if !tp.Status.CanPay() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot pay teacher payment in %s status", tp.Status))
	}
	if tp.NeedsReceipt() {
		if receiptNumber == "" {
			return shared.NewDomainError("INVALID_INPUT", "Receipt number cannot be empty")
		}
		tp.ReceiptNumber = receiptNumber
	}
	before := tp.snapshot()
	now := time.Now()
	tp.Status = TeacherPaymentPaid
	tp.PaidBy = &actor
	tp.PaidAt = &now
	tp.transitioned(actor, "teacher_payment.pay", before)
	return nil
}

// Cancel cancels a pending or approved payout
func (tp *TeacherPayment) Cancel(actor uuid.UUID, reason string) error {
	if !tp.Status.CanCancel() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel teacher payment in %s status", tp.Status))
	}
	before := tp.snapshot()
	now := time.Now()
	tp.Status = TeacherPaymentCancelled
	tp.CancelledBy = &actor
	tp.CancelledAt = &now
	tp.CancellationReason = strings.TrimSpace(reason)
	tp.transitioned(actor, "teacher_payment.cancel", before)
	return nil
}

func (tp *TeacherPayment) transitioned(actor uuid.UUID, action string, before map[string]any) {
	tp.Touch()
	tp.IncrementVersion()
	tp.AddDomainEvent(shared.NewStatusChangedEvent(AggregateTypeTeacherPayment, tp.ID, actor, action, before, tp.snapshot()))
}

func (tp *TeacherPayment) snapshot() map[string]any {
	s := map[string]any{
		"status": string(tp.Status),
		"amount": tp.Amount.StringFixed(2),
	}
	if tp.ReceiptNumber != "" {
		s["receiptNumber"] = tp.ReceiptNumber
	}
	if tp.CancellationReason != "" {
		s["reason"] = tp.CancellationReason
	}
	return s
}
