package academic

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tutorcenter/backend/internal/domain/academic"
	"github.com/tutorcenter/backend/internal/domain/identity"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

// CreateStudentInput carries the fields of a new student
type CreateStudentInput struct {
	TeacherID *uuid.UUID
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Level     string
}

// StudentListFilter narrows a student listing
type StudentListFilter struct {
	Paging
	TeacherID *uuid.UUID
	Status    *academic.StudentStatus
	Search    string
}

// CreateStudent enrolls an active student with zero balances
func (s *Service) CreateStudent(ctx context.Context, actor identity.Principal, in CreateStudentInput) (*academic.Student, error) {
	teacherID, err := ownerFor(actor, in.TeacherID)
	if err != nil {
		return nil, err
	}
	st, err := academic.NewStudent(teacherID, in.FirstName, in.LastName, in.Email, in.Phone, in.Level)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Students.Create(ctx, st); err != nil {
		return nil, err
	}
	s.logger.Info("Student enrolled", zap.String("student_id", st.ID.String()), zap.String("teacher_id", teacherID.String()))
	return st, nil
}

// GetStudent returns a student the actor can access
func (s *Service) GetStudent(ctx context.Context, actor identity.Principal, id uuid.UUID) (*academic.Student, error) {
	st, err := s.repos.Students.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Student", err)
	}
	if !actor.CanAccess(st.TeacherID) {
		return nil, notFound("Student", shared.ErrNotFound)
	}
	return st, nil
}

// ListStudents returns one page of students; teachers only see their own
func (s *Service) ListStudents(ctx context.Context, actor identity.Principal, f StudentListFilter) (shared.Paginated[*academic.Student], error) {
	base := f.filter()
	base.Search = f.Search
	teacherID := f.TeacherID
	if scope := actor.Scope(); scope != nil {
		teacherID = scope
	}
	items, total, err := s.repos.Students.FindAll(ctx, academic.StudentFilter{Filter: base, TeacherID: teacherID, Status: f.Status})
	if err != nil {
		return shared.Paginated[*academic.Student]{}, err
	}
	return shared.NewPaginated(items, total, base.Page, base.PageSize), nil
}

// ChangeStudentStatus moves a student between active, inactive and suspended.
// Students are never deleted.
func (s *Service) ChangeStudentStatus(ctx context.Context, actor identity.Principal, id uuid.UUID, status academic.StudentStatus) (*academic.Student, error) {
	st, err := s.GetStudent(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := st.ChangeStatus(status, actor.UserID); err != nil {
		return nil, err
	}
	if err := s.repos.Students.Update(ctx, st); err != nil {
		return nil, err
	}
	s.publish(ctx, st)
	return st, nil
}
