package academic

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tutorcenter/backend/internal/domain/academic"
	"github.com/tutorcenter/backend/internal/domain/identity"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

// LogTimeInput carries the fields of a new time entry
type LogTimeInput struct {
	TeacherID    *uuid.UUID
	LessonTypeID uuid.UUID
	StudentID    *uuid.UUID
	Date         time.Time
	Hours        decimal.Decimal
	Description  string
}

// EditTimeInput carries the editable time entry fields
type EditTimeInput struct {
	Hours       decimal.Decimal
	Description string
	Reason      string
}

// TimeEntryListFilter narrows a time entry listing
type TimeEntryListFilter struct {
	Paging
	TeacherID    *uuid.UUID
	StudentID    *uuid.UUID
	LessonTypeID *uuid.UUID
	Range        shared.DateRange
}

// LogTime records a lesson. The teacher must be approved and own the lesson
// type and, when given, the student. The rate is copied from the lesson type.
func (s *Service) LogTime(ctx context.Context, actor identity.Principal, in LogTimeInput) (*academic.TimeEntry, error) {
	teacherID, err := ownerFor(actor, in.TeacherID)
	if err != nil {
		return nil, err
	}
	teacher, err := s.repos.Users.FindByID(ctx, teacherID)
	if err != nil {
		return nil, notFound("Teacher", err)
	}
	if !teacher.CanLogTime() {
		return nil, shared.NewDomainError("FORBIDDEN", "Teacher account is not approved")
	}

	lt, err := s.repos.LessonTypes.FindByID(ctx, in.LessonTypeID)
	if err != nil {
		return nil, notFound("Lesson type", err)
	}
	if lt.TeacherID != teacherID {
		return nil, notFound("Lesson type", shared.ErrNotFound)
	}
	if in.StudentID != nil {
		st, err := s.repos.Students.FindByID(ctx, *in.StudentID)
		if err != nil {
			return nil, notFound("Student", err)
		}
		if st.TeacherID != teacherID {
			return nil, notFound("Student", shared.ErrNotFound)
		}
	}

	entry, err := academic.NewTimeEntry(teacherID, lt, in.StudentID, in.Date, in.Hours, in.Description)
	if err != nil {
		return nil, err
	}
	if err := s.repos.TimeEntries.Create(ctx, entry); err != nil {
		return nil, err
	}
	s.logger.Info("Time logged",
		zap.String("time_entry_id", entry.ID.String()),
		zap.String("hours", entry.Hours.String()),
		zap.String("total_amount", entry.TotalAmount.StringFixed(2)),
	)
	return entry, nil
}

// EditTime changes the hours of an entry within the edit window and keeps the
// previous values in the entry's history.
func (s *Service) EditTime(ctx context.Context, actor identity.Principal, id uuid.UUID, in EditTimeInput) (*academic.TimeEntry, error) {
	entry, err := s.getTimeEntry(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := entry.Edit(in.Hours, in.Description, actor.UserID, actor.IsAdmin(), in.Reason, s.now()); err != nil {
		return nil, err
	}
	if err := s.repos.TimeEntries.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteTime removes an entry. Teachers can only delete within the edit window.
func (s *Service) DeleteTime(ctx context.Context, actor identity.Principal, id uuid.UUID) error {
	entry, err := s.getTimeEntry(ctx, actor, id)
	if err != nil {
		return err
	}
	if !entry.CanEdit(s.now(), actor.IsAdmin()) {
		return shared.NewDomainError("EDIT_WINDOW_EXPIRED", "Time entries can only be deleted within 4 hours of creation")
	}
	return s.repos.TimeEntries.Delete(ctx, id)
}

// ListTimeEntries returns one page of entries with the filter's totals
func (s *Service) ListTimeEntries(ctx context.Context, actor identity.Principal, f TimeEntryListFilter) (shared.Paginated[*academic.TimeEntry], academic.TimeSummary, error) {
	base := f.filter()
	base.OrderBy = "date"
	teacherID := f.TeacherID
	if scope := actor.Scope(); scope != nil {
		teacherID = scope
	}
	filter := academic.TimeEntryFilter{
		Filter:       base,
		TeacherID:    teacherID,
		StudentID:    f.StudentID,
		LessonTypeID: f.LessonTypeID,
		Range:        f.Range,
	}
	items, total, err := s.repos.TimeEntries.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[*academic.TimeEntry]{}, academic.TimeSummary{}, err
	}
	summary, err := s.repos.TimeEntries.Summarize(ctx, filter)
	if err != nil {
		return shared.Paginated[*academic.TimeEntry]{}, academic.TimeSummary{}, err
	}
	return shared.NewPaginated(items, total, base.Page, base.PageSize), summary, nil
}

func (s *Service) getTimeEntry(ctx context.Context, actor identity.Principal, id uuid.UUID) (*academic.TimeEntry, error) {
	entry, err := s.repos.TimeEntries.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Time entry", err)
	}
	if !actor.CanAccess(entry.TeacherID) {
		return nil, notFound("Time entry", shared.ErrNotFound)
	}
	return entry, nil
}
