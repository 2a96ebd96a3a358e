package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository stores accounts. Emails are stored and matched lowercased.
// Lookups that find nothing return a NOT_FOUND domain error.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// FindTeachers and CountTeachers cover teacher accounts only, optionally
	// restricted to one approval status
	FindTeachers(ctx context.Context, status *ApprovalStatus) ([]*User, error)
	CountTeachers(ctx context.Context, status *ApprovalStatus) (int64, error)
}
