package identity

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tutorcenter/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// AggregateTypeUser is the aggregate type name used in events and audit rows
const AggregateTypeUser = "User"

// Role is the coarse-grained permission level of a user
type Role string

const (
	// RoleAdmin manages teachers, approves payments and sees every record
	RoleAdmin Role = "admin"
	// RoleTeacher logs lessons and manages their own students
	RoleTeacher Role = "teacher"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleTeacher
}

// ApprovalStatus represents the lifecycle of a user account
type ApprovalStatus string

const (
	// ApprovalPending is the state of a freshly registered teacher
	ApprovalPending ApprovalStatus = "pending"
	// ApprovalApproved users may log in and log time
	ApprovalApproved ApprovalStatus = "approved"
	// ApprovalSuspended users are blocked until re-approved
	ApprovalSuspended ApprovalStatus = "suspended"
)

// IsValid checks if the status is known
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalSuspended:
		return true
	}
	return false
}

const (
	bcryptCost        = 12
	minPasswordLength = 8
	maxPasswordLength = 72
)

// User is an admin or a teacher account
type User struct {
	shared.BaseAggregateRoot
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Subject      string
	Phone        string
	Status       ApprovalStatus
	ApprovedBy   *uuid.UUID
	ApprovedAt   *time.Time
	LastLoginAt  *time.Time
}

// NewUser creates a user. Teachers start pending; admins are created approved.
func NewUser(name, email, password string, role Role) (*User, error) {
	v := &shared.ValidationError{}
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		v.Add("name", "name cannot be empty")
	} else if len(name) > 100 {
		v.Add("name", "name cannot exceed 100 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		v.Add("email", "email must be a valid address")
	}
	if !role.IsValid() {
		v.Add("role", "role must be admin or teacher")
	}
	if err := validatePassword(password); err != nil {
		v.Add("password", "%s", err.Error())
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_FAILED", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		PasswordHash:      string(hash),
		Role:              role,
		Status:            ApprovalPending,
	}
	if role == RoleAdmin {
		now := time.Now()
		user.Status = ApprovalApproved
		user.ApprovedAt = &now
	}
	return user, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return shared.NewDomainError("INVALID_PASSWORD", "password must be at least 8 characters")
	}
	if len(password) > maxPasswordLength {
		return shared.NewDomainError("INVALID_PASSWORD", "password cannot exceed 72 characters")
	}
	return nil
}

// SetProfile updates the descriptive fields
func (u *User) SetProfile(subject, phone string) {
	u.Subject = strings.TrimSpace(subject)
	u.Phone = strings.TrimSpace(phone)
	u.Touch()
	u.IncrementVersion()
}

// SetPassword replaces the password hash
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_FAILED", "Failed to hash password")
	}
	u.PasswordHash = string(hash)
	u.Touch()
	u.IncrementVersion()
	return nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Approve lets a pending or suspended user log in
func (u *User) Approve(actor uuid.UUID) error {
	if u.Status == ApprovalApproved {
		return shared.NewDomainError("INVALID_STATE", "User is already approved")
	}
	before := u.snapshot()
	now := time.Now()
	u.Status = ApprovalApproved
	u.ApprovedBy = &actor
	u.ApprovedAt = &now
	u.Touch()
	u.IncrementVersion()
	u.AddDomainEvent(shared.NewStatusChangedEvent(AggregateTypeUser, u.ID, actor, "user.approve", before, u.snapshot()))
	return nil
}

// Suspend blocks an approved or pending user
func (u *User) Suspend(actor uuid.UUID) error {
	if u.Status == ApprovalSuspended {
		return shared.NewDomainError("INVALID_STATE", "User is already suspended")
	}
	if u.ID == actor {
		return shared.NewDomainError("INVALID_STATE", "Users cannot suspend themselves")
	}
	before := u.snapshot()
	u.Status = ApprovalSuspended
	u.Touch()
	u.IncrementVersion()
	u.AddDomainEvent(shared.NewStatusChangedEvent(AggregateTypeUser, u.ID, actor, "user.suspend", before, u.snapshot()))
	return nil
}

// RecordLogin stamps the last successful login
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.Touch()
}

// CanLogin reports whether the account may authenticate
func (u *User) CanLogin() bool {
	return u.Status == ApprovalApproved
}

// CanLogTime reports whether the user may record lessons
func (u *User) CanLogTime() bool {
	return u.Status == ApprovalApproved
}

// IsAdmin returns true for administrators
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsTeacher returns true for teachers
func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

func (u *User) snapshot() map[string]any {
	return map[string]any{"status": string(u.Status)}
}
