package academic

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tutorcenter/backend/internal/domain/academic"
	"github.com/tutorcenter/backend/internal/domain/identity"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

// CreateLessonTypeInput carries the fields of a new lesson type
type CreateLessonTypeInput struct {
	TeacherID   *uuid.UUID
	Name        string
	HourlyRate  decimal.Decimal
	Currency    string
	Description string
}

// UpdateLessonTypeInput carries the editable lesson type fields
type UpdateLessonTypeInput struct {
	Name        string
	HourlyRate  decimal.Decimal
	Description string
	Active      bool
}

func errDuplicateLessonType() error {
	return shared.NewDomainError("ALREADY_EXISTS", "A lesson type with this name already exists")
}

// CreateLessonType adds a rate card entry. Names are unique per teacher,
// ignoring case.
func (s *Service) CreateLessonType(ctx context.Context, actor identity.Principal, in CreateLessonTypeInput) (*academic.LessonType, error) {
	teacherID, err := ownerFor(actor, in.TeacherID)
	if err != nil {
		return nil, err
	}
	lt, err := academic.NewLessonType(teacherID, in.Name, in.HourlyRate, in.Currency, in.Description)
	if err != nil {
		return nil, err
	}
	exists, err := s.repos.LessonTypes.ExistsByName(ctx, teacherID, lt.NormalizedName(), nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errDuplicateLessonType()
	}
	if err := s.repos.LessonTypes.Create(ctx, lt); err != nil {
		return nil, err
	}
	return lt, nil
}

// UpdateLessonType changes a rate card entry the actor owns
func (s *Service) UpdateLessonType(ctx context.Context, actor identity.Principal, id uuid.UUID, in UpdateLessonTypeInput) (*academic.LessonType, error) {
	lt, err := s.getLessonType(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	exists, err := s.repos.LessonTypes.ExistsByName(ctx, lt.TeacherID, academic.NormalizeLessonTypeName(in.Name), &lt.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errDuplicateLessonType()
	}
	if err := lt.Update(in.Name, in.HourlyRate, in.Description, in.Active); err != nil {
		return nil, err
	}
	if err := s.repos.LessonTypes.Update(ctx, lt); err != nil {
		return nil, err
	}
	return lt, nil
}

// ListLessonTypes returns a teacher's lesson types
func (s *Service) ListLessonTypes(ctx context.Context, actor identity.Principal, teacherID *uuid.UUID, activeOnly bool) ([]*academic.LessonType, error) {
	owner, err := ownerFor(actor, teacherID)
	if err != nil {
		return nil, err
	}
	return s.repos.LessonTypes.FindByTeacher(ctx, owner, activeOnly)
}

func (s *Service) getLessonType(ctx context.Context, actor identity.Principal, id uuid.UUID) (*academic.LessonType, error) {
	lt, err := s.repos.LessonTypes.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Lesson type", err)
	}
	if !actor.CanAccess(lt.TeacherID) {
		return nil, notFound("Lesson type", shared.ErrNotFound)
	}
	return lt, nil
}
