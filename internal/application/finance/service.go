// Package finance runs the payment, teacher payout and expense workflows:
// creation, the approval state machines, receipt numbering and the student
// balance side effects.
package finance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appevent "github.com/tutorcenter/backend/internal/application/event"
	"github.com/tutorcenter/backend/internal/domain/identity"
	"github.com/tutorcenter/backend/internal/domain/shared"
	"github.com/tutorcenter/backend/internal/infrastructure/telemetry"
)

// Option configures the finance services
type Option func(*options)

type options struct {
	publisher shared.EventPublisher
	metrics   *telemetry.Metrics
	now       func() time.Time
}

// WithPublisher sends state change events to publisher
func WithPublisher(p shared.EventPublisher) Option {
	return func(o *options) { o.publisher = p }
}

// WithMetrics records payment and receipt counters
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock overrides the clock used for receipt months
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) publish(ctx context.Context, logger *zap.Logger, agg shared.AggregateRoot) {
	appevent.PublishAggregate(ctx, o.publisher, logger, agg)
}

// ListFilter carries the paging and date window shared by list operations
type ListFilter struct {
	Page     int
	PageSize int
	Range    shared.DateRange
}

func (f ListFilter) base() shared.Filter {
	b := shared.DefaultFilter()
	if f.Page > 0 {
		b.Page = f.Page
	}
	if f.PageSize > 0 && f.PageSize <= 100 {
		b.PageSize = f.PageSize
	}
	return b
}

func requireAdmin(actor identity.Principal) error {
	if !actor.IsAdmin() {
		return shared.NewDomainError("FORBIDDEN", "Only administrators can perform this action")
	}
	return nil
}

func requireAccess(actor identity.Principal, ownerID uuid.UUID) error {
	if !actor.CanAccess(ownerID) {
		return shared.ErrNotFound
	}
	return nil
}

func notFound(kind string, err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError("NOT_FOUND", kind+" not found")
	}
	return err
}
