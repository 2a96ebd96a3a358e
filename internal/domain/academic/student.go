package academic

import (
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

// AggregateTypeStudent is the aggregate type name used in events and audit rows
const AggregateTypeStudent = "Student"

// StudentStatus represents the enrollment status of a student
type StudentStatus string

const (
	StudentActive    StudentStatus = "active"
	StudentInactive  StudentStatus = "inactive"
	StudentSuspended StudentStatus = "suspended"
)

// IsValid checks if the status is known
func (s StudentStatus) IsValid() bool {
	switch s {
	case StudentActive, StudentInactive, StudentSuspended:
		return true
	}
	return false
}

// Student is a learner owned by one teacher. Students are never hard-deleted.
// The balance fields are only changed through StudentRepository.AdjustBalance.
type Student struct {
	shared.BaseAggregateRoot
	TeacherID      uuid.UUID
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Level          string
	Status         StudentStatus
	CurrentBalance decimal.Decimal
	TotalPaid      decimal.Decimal
}

// NewStudent creates an active student with zero balances
func NewStudent(teacherID uuid.UUID, firstName, lastName, email, phone, level string) (*Student, error) {
	s := &Student{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TeacherID:         teacherID,
		FirstName:         strings.TrimSpace(firstName),
		LastName:          strings.TrimSpace(lastName),
		Email:             strings.ToLower(strings.TrimSpace(email)),
		Phone:             strings.TrimSpace(phone),
		Level:             strings.TrimSpace(level),
		Status:            StudentActive,
		CurrentBalance:    decimal.Zero,
		TotalPaid:         decimal.Zero,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the record before it is persisted
func (s *Student) Validate() error {
	v := &shared.ValidationError{}
	if s.TeacherID == uuid.Nil {
		v.Add("teacherId", "teacherId is required")
	}
	if s.FirstName == "" {
		v.Add("firstName", "firstName is required")
	}
	if s.LastName == "" {
		v.Add("lastName", "lastName is required")
	}
	if s.Email != "" {
		if _, err := mail.ParseAddress(s.Email); err != nil {
			v.Add("email", "email must be a valid address")
		}
	}
	if !s.Status.IsValid() {
		v.Add("status", "status must be active, inactive or suspended")
	}
	shared.ValidateNonNegativeAmount(v, "currentBalance", s.CurrentBalance)
	shared.ValidateNonNegativeAmount(v, "totalPaid", s.TotalPaid)
	return v.OrNil()
}

// FullName returns "First Last"
func (s *Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// IsActive reports whether the student is enrolled
func (s *Student) IsActive() bool {
	return s.Status == StudentActive
}

// ChangeStatus moves the student to another enrollment status
func (s *Student) ChangeStatus(status StudentStatus, actor uuid.UUID) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "status must be active, inactive or suspended")
	}
	if s.Status == status {
		return nil
	}
	before := map[string]any{"status": string(s.Status)}
	s.Status = status
	s.Touch()
	s.IncrementVersion()
	s.AddDomainEvent(shared.NewStatusChangedEvent(AggregateTypeStudent, s.ID, actor, "student.status", before,
		map[string]any{"status": string(status)}))
	return nil
}
