package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/tutorcenter/backend/internal/domain/identity"
)

// RegisterInput contains the input for teacher self-registration
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Subject  string
	Phone    string
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
	IP       string // Client IP for login tracking
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	TokenType   string
	User        UserInfo
}

// LogoutInput identifies the token being revoked
type LogoutInput struct {
	UserID   uuid.UUID
	TokenJTI string
	TTL      time.Duration
}

// UserInfo contains basic user information returned to clients
type UserInfo struct {
	ID          uuid.UUID               `json:"id"`
	Name        string                  `json:"name"`
	Email       string                  `json:"email"`
	Role        identity.Role           `json:"role"`
	Status      identity.ApprovalStatus `json:"status"`
	Subject     string                  `json:"subject,omitempty"`
	Phone       string                  `json:"phone,omitempty"`
	ApprovedAt  *time.Time              `json:"approvedAt,omitempty"`
	LastLoginAt *time.Time              `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time               `json:"createdAt"`
}

// ToUserInfo converts a user to its public view
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Status:      u.Status,
		Subject:     u.Subject,
		Phone:       u.Phone,
		ApprovedAt:  u.ApprovedAt,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
