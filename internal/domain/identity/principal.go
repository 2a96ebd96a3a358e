package identity

import "github.com/google/uuid"

// Principal is the authenticated caller of an operation
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether the caller has the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanAccess reports whether the caller may see or modify a record owned by ownerID.
// Admins see everything; teachers only their own records.
func (p Principal) CanAccess(ownerID uuid.UUID) bool {
	return p.IsAdmin() || p.UserID == ownerID
}

// Scope returns the teacher ID list queries must be restricted to, or nil for admins
func (p Principal) Scope() *uuid.UUID {
	if p.IsAdmin() {
		return nil
	}
	id := p.UserID
	return &id
}
