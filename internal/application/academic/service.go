// Package academic manages students, lesson types, time entries and
// attendance on behalf of teachers and administrators.
package academic

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appevent "github.com/tutorcenter/backend/internal/application/event"
	"github.com/tutorcenter/backend/internal/domain/academic"
	"github.com/tutorcenter/backend/internal/domain/identity"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

// Repositories groups the stores the academic services use
type Repositories struct {
	Students    academic.StudentRepository
	LessonTypes academic.LessonTypeRepository
	TimeEntries academic.TimeEntryRepository
	Attendance  academic.AttendanceRepository
	Users       identity.UserRepository
}

// Service implements the academic use cases
type Service struct {
	repos     Repositories
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithPublisher sends status change events to publisher
func WithPublisher(p shared.EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock overrides the clock used for the time entry edit window
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the academic service
func NewService(repos Repositories, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{repos: repos, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Paging selects one page of a listing
type Paging struct {
	Page     int
	PageSize int
}

func (p Paging) filter() shared.Filter {
	f := shared.DefaultFilter()
	if p.Page > 0 {
		f.Page = p.Page
	}
	if p.PageSize > 0 && p.PageSize <= 100 {
		f.PageSize = p.PageSize
	}
	return f
}

func notFound(kind string, err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError("NOT_FOUND", kind+" not found")
	}
	return err
}

// ownerFor resolves which teacher a new record belongs to. Teachers always
// own what they create; admins must name the teacher.
func ownerFor(actor identity.Principal, requested *uuid.UUID) (uuid.UUID, error) {
	if !actor.IsAdmin() {
		return actor.UserID, nil
	}
	if requested == nil || *requested == uuid.Nil {
		return uuid.Nil, shared.NewDomainError("INVALID_INPUT", "teacherId is required")
	}
	return *requested, nil
}

func (s *Service) publish(ctx context.Context, agg shared.AggregateRoot) {
	appevent.PublishAggregate(ctx, s.publisher, s.logger, agg)
}
