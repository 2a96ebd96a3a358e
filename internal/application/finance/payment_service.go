package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/tutorcenter/backend/internal/domain/academic"
	"github.com/tutorcenter/backend/internal/domain/finance"
	"github.com/tutorcenter/backend/internal/domain/identity"
	"github.com/tutorcenter/backend/internal/domain/shared"
	"github.com/tutorcenter/backend/internal/infrastructure/telemetry"
)

// CreatePaymentInput carries the fields of a new student payment
type CreatePaymentInput struct {
	StudentID   uuid.UUID
	Amount      decimal.Decimal
	Currency    string
	Method      finance.PaymentMethod
	PaymentDate time.Time
	DueDate     *time.Time
	Description string
}

// RefundInput carries the refund details for a completed payment
type RefundInput struct {
	Amount decimal.Decimal
	Date   time.Time
	Reason string
}

// PaymentListFilter narrows a payment listing
type PaymentListFilter struct {
	ListFilter
	StudentID *uuid.UUID
	Status    *finance.PaymentStatus
}

// PaymentService manages student payments
type PaymentService struct {
	payments finance.PaymentRepository
	students academic.StudentRepository
	receipts finance.ReceiptCounter
	logger   *zap.Logger
	options
}

// NewPaymentService creates a payment service
func NewPaymentService(payments finance.PaymentRepository, students academic.StudentRepository,
	receipts finance.ReceiptCounter, logger *zap.Logger, opts ...Option) *PaymentService {
	return &PaymentService{
		payments: payments,
		students: students,
		receipts: receipts,
		logger:   logger,
		options:  buildOptions(opts),
	}
}

// Create records a pending payment for a student the actor can access.
// The payment is attributed to the student's teacher.
func (s *PaymentService) Create(ctx context.Context, actor identity.Principal, in CreatePaymentInput) (p *finance.Payment, err error) {
	ctx, span := telemetry.StartSpan(ctx, "payment.create", attribute.String("student.id", in.StudentID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	student, err := s.students.FindByID(ctx, in.StudentID)
	if err != nil {
		return nil, notFound("Student", err)
	}
	if err := requireAccess(actor, student.TeacherID); err != nil {
		return nil, notFound("Student", err)
	}

	p, err = finance.NewPayment(student.ID, student.TeacherID, in.Amount, in.Currency, in.Method,
		in.PaymentDate, in.DueDate, in.Description, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}
	s.metrics.RecordPayment(ctx, "student", p.Amount)
	s.logger.Info("Payment recorded",
		zap.String("payment_id", p.ID.String()),
		zap.String("student_id", p.StudentID.String()),
		zap.String("amount", p.Amount.StringFixed(2)),
	)
	return p, nil
}

// Get returns a payment the actor can access
func (s *PaymentService) Get(ctx context.Context, actor identity.Principal, id uuid.UUID) (*finance.Payment, error) {
	p, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Payment", err)
	}
	if err := requireAccess(actor, p.TeacherID); err != nil {
		return nil, notFound("Payment", err)
	}
	return p, nil
}

// List returns one page of payments; teachers only see their own
func (s *PaymentService) List(ctx context.Context, actor identity.Principal, f PaymentListFilter) (shared.Paginated[*finance.Payment], error) {
	base := f.base()
	items, total, err := s.payments.FindAll(ctx, finance.PaymentFilter{
		Filter:    base,
		StudentID: f.StudentID,
		TeacherID: actor.Scope(),
		Status:    f.Status,
		Range:     f.Range,
	})
	if err != nil {
		return shared.Paginated[*finance.Payment]{}, err
	}
	return shared.NewPaginated(items, total, base.Page, base.PageSize), nil
}

// Complete moves a pending payment to completed, issues its receipt number
// and credits the student's balances.
func (s *PaymentService) Complete(ctx context.Context, actor identity.Principal, id uuid.UUID) (p *finance.Payment, err error) {
	ctx, span := telemetry.StartSpan(ctx, "payment.complete", attribute.String("payment.id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	p, err = s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !p.Status.CanComplete() {
		return nil, p.Complete(actor.UserID, "")
	}

	number := ""
	if p.NeedsReceipt() {
		now := s.now()
		number, err = finance.IssueReceiptNumber(ctx, s.receipts, finance.PaymentReceiptScope(p.TeacherID, now), now)
		if err != nil {
			return nil, err
		}
		s.metrics.RecordReceiptIssued(ctx, finance.ReceiptPrefixPayment)
	}
	if err := p.Complete(actor.UserID, number); err != nil {
		return nil, err
	}
	if err := s.payments.Update(ctx, p); err != nil {
		return nil, err
	}
	if err := s.adjustStudent(ctx, p.StudentID, p.Amount); err != nil {
		return nil, err
	}

	s.publish(ctx, s.logger, p)
	s.logger.Info("Payment completed",
		zap.String("payment_id", p.ID.String()),
		zap.String("receipt_number", p.ReceiptNumber),
	)
	return p, nil
}

// Fail marks a pending or completed payment as failed
func (s *PaymentService) Fail(ctx context.Context, actor identity.Principal, id uuid.UUID, reason string) (*finance.Payment, error) {
	return s.withdraw(ctx, actor, id, "payment.fail", func(p *finance.Payment) error {
		return p.Fail(actor.UserID, reason)
	})
}

// Cancel cancels a pending or completed payment
func (s *PaymentService) Cancel(ctx context.Context, actor identity.Principal, id uuid.UUID, reason string) (*finance.Payment, error) {
	return s.withdraw(ctx, actor, id, "payment.cancel", func(p *finance.Payment) error {
		return p.Cancel(actor.UserID, reason)
	})
}

// withdraw fails or cancels a payment. A completed payment had already been
// credited to the student, so the credit is taken back.
func (s *PaymentService) withdraw(ctx context.Context, actor identity.Principal, id uuid.UUID, name string, apply func(*finance.Payment) error) (*finance.Payment, error) {
	var wasCompleted bool
	p, err := s.transition(ctx, actor, id, name, func(p *finance.Payment) error {
		wasCompleted = p.Status == finance.PaymentCompleted
		return apply(p)
	})
	if err != nil {
		return nil, err
	}
	if wasCompleted {
		if err := s.adjustStudent(ctx, p.StudentID, p.Amount.Neg()); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Refund refunds a completed payment and removes the refunded amount from
// the student's balances. Only administrators can refund.
func (s *PaymentService) Refund(ctx context.Context, actor identity.Principal, id uuid.UUID, in RefundInput) (p *finance.Payment, err error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	p, err = s.transition(ctx, actor, id, "payment.refund", func(p *finance.Payment) error {
		return p.RefundPayment(actor.UserID, in.Amount, in.Date, in.Reason)
	})
	if err != nil {
		return nil, err
	}
	if err := s.adjustStudent(ctx, p.StudentID, p.Refund.Amount.Neg()); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PaymentService) transition(ctx context.Context, actor identity.Principal, id uuid.UUID, name string, apply func(*finance.Payment) error) (p *finance.Payment, err error) {
	ctx, span := telemetry.StartSpan(ctx, name, attribute.String("payment.id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	p, err = s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := apply(p); err != nil {
		return nil, err
	}
	if err := s.payments.Update(ctx, p); err != nil {
		return nil, err
	}
	s.publish(ctx, s.logger, p)
	return p, nil
}

// adjustStudent moves the student's balances by delta. The payment and
// student are written separately; a failure here leaves the payment
// transition in place and is returned to the caller.
func (s *PaymentService) adjustStudent(ctx context.Context, studentID uuid.UUID, delta decimal.Decimal) error {
	if err := s.students.AdjustBalance(ctx, studentID, delta); err != nil {
		s.logger.Error("Failed to update student balance",
			zap.String("student_id", studentID.String()),
			zap.String("delta", delta.StringFixed(2)),
			zap.Error(err),
		)
		return notFound("Student", err)
	}
	return nil
}
