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

// CreateTeacherPaymentInput carries the fields of a new teacher payout
type CreateTeacherPaymentInput struct {
	TeacherID   uuid.UUID
	Amount      decimal.Decimal
	Currency    string
	PaymentType finance.TeacherPaymentType
	Hours       *decimal.Decimal
	HourlyRate  *decimal.Decimal
	PeriodStart *time.Time
	PeriodEnd   *time.Time
	Method      finance.PaymentMethod
	PaymentDate time.Time
	Description string
}

// TeacherPaymentListFilter narrows a payout listing
type TeacherPaymentListFilter struct {
	ListFilter
	TeacherID *uuid.UUID
	Status    *finance.TeacherPaymentStatus
}

// TeacherPaymentService manages payouts to teachers. Every write is admin only.
type TeacherPaymentService struct {
	payments finance.TeacherPaymentRepository
	users    identity.UserRepository
	receipts finance.ReceiptCounter
	logger   *zap.Logger
	options
}

// NewTeacherPaymentService creates a teacher payout service
func NewTeacherPaymentService(payments finance.TeacherPaymentRepository, users identity.UserRepository,
	receipts finance.ReceiptCounter, logger *zap.Logger, opts ...Option) *TeacherPaymentService {
	return &TeacherPaymentService{
		payments: payments,
		users:    users,
		receipts: receipts,
		logger:   logger,
		options:  buildOptions(opts),
	}
}

// Create records a pending payout for a teacher
func (s *TeacherPaymentService) Create(ctx context.Context, actor identity.Principal, in CreateTeacherPaymentInput) (tp *finance.TeacherPayment, err error) {
	ctx, span := telemetry.StartSpan(ctx, "teacher_payment.create", attribute.String("teacher.id", in.TeacherID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	teacher, err := s.users.FindByID(ctx, in.TeacherID)
	if err != nil {
		return nil, notFound("Teacher", err)
	}
	if !teacher.IsTeacher() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payouts can only be made to teachers")
	}

	tp, err = finance.NewTeacherPayment(finance.TeacherPaymentInput{
		TeacherID:   teacher.ID,
		Amount:      in.Amount,
		Currency:    in.Currency,
		PaymentType: in.PaymentType,
		Hours:       in.Hours,
		HourlyRate:  in.HourlyRate,
		PeriodStart: in.PeriodStart,
		PeriodEnd:   in.PeriodEnd,
		Method:      in.Method,
		PaymentDate: in.PaymentDate,
		Description: in.Description,
		CreatedBy:   actor.UserID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.payments.Create(ctx, tp); err != nil {
		return nil, err
	}
	s.metrics.RecordPayment(ctx, "teacher", tp.Amount)
	return tp, nil
}

// Get returns a payout; teachers can only read their own
func (s *TeacherPaymentService) Get(ctx context.Context, actor identity.Principal, id uuid.UUID) (*finance.TeacherPayment, error) {
	tp, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Teacher payment", err)
	}
	if err := requireAccess(actor, tp.TeacherID); err != nil {
		return nil, notFound("Teacher payment", err)
	}
	return tp, nil
}

// List returns one page of payouts; teachers only see their own
func (s *TeacherPaymentService) List(ctx context.Context, actor identity.Principal, f TeacherPaymentListFilter) (shared.Paginated[*finance.TeacherPayment], error) {
	base := f.base()
	teacherID := f.TeacherID
	if scope := actor.Scope(); scope != nil {
		teacherID = scope
	}
	items, total, err := s.payments.FindAll(ctx, finance.TeacherPaymentFilter{
		Filter:    base,
		TeacherID: teacherID,
		Status:    f.Status,
		Range:     f.Range,
	})
	if err != nil {
		return shared.Paginated[*finance.TeacherPayment]{}, err
	}
	return shared.NewPaginated(items, total, base.Page, base.PageSize), nil
}

// Approve approves a pending payout
func (s *TeacherPaymentService) Approve(ctx context.Context, actor identity.Principal, id uuid.UUID) (*finance.TeacherPayment, error) {
	return s.transition(ctx, actor, id, "teacher_payment.approve", func(tp *finance.TeacherPayment) error {
		return tp.Approve(actor.UserID)
	})
}

// Pay marks an approved payout as paid and issues its receipt number on the
// first entry into paid.
func (s *TeacherPaymentService) Pay(ctx context.Context, actor identity.Principal, id uuid.UUID) (*finance.TeacherPayment, error) {
	return s.transition(ctx, actor, id, "teacher_payment.pay", func(tp *finance.TeacherPayment) error {
		if !tp.Status.CanPay() {
			return tp.MarkPaid(actor.UserID, "")
		}
		number := ""
		if tp.NeedsReceipt() {
			now := s.now()
			var err error
			number, err = finance.IssueReceiptNumber(ctx, s.receipts, finance.TeacherPaymentReceiptScope(now), now)
			if err != nil {
				return err
			}
			s.metrics.RecordReceiptIssued(ctx, finance.ReceiptPrefixTeacherPayment)
		}
		return tp.MarkPaid(actor.UserID, number)
	})
}

// Cancel cancels a pending or approved payout
func (s *TeacherPaymentService) Cancel(ctx context.Context, actor identity.Principal, id uuid.UUID, reason string) (*finance.TeacherPayment, error) {
	return s.transition(ctx, actor, id, "teacher_payment.cancel", func(tp *finance.TeacherPayment) error {
		return tp.Cancel(actor.UserID, reason)
	})
}

func (s *TeacherPaymentService) transition(ctx context.Context, actor identity.Principal, id uuid.UUID, name string, apply func(*finance.TeacherPayment) error) (tp *finance.TeacherPayment, err error) {
	ctx, span := telemetry.StartSpan(ctx, name, attribute.String("teacher_payment.id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	tp, err = s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Teacher payment", err)
	}
	if err := apply(tp); err != nil {
		return nil, err
	}
	if err := s.payments.Update(ctx, tp); err != nil {
		return nil, err
	}
	s.publish(ctx, s.logger, tp)
	s.logger.Info("Teacher payment updated",
		zap.String("teacher_payment_id", tp.ID.String()),
		zap.String("status", string(tp.Status)),
	)
	return tp, nil
}
