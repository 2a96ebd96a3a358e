package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appevent "github.com/tutorcenter/backend/internal/application/event"
	"github.com/tutorcenter/backend/internal/domain/identity"
	"github.com/tutorcenter/backend/internal/domain/shared"
	"github.com/tutorcenter/backend/internal/infrastructure/auth"
)

// UserService manages teacher accounts on behalf of admins
type UserService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		publisher:  publisher,
		logger:     logger,
	}
}

func requireAdmin(actor identity.Principal) error {
	if !actor.IsAdmin() {
		return shared.NewDomainError("FORBIDDEN", "Only administrators can perform this action")
	}
	return nil
}

func (s *UserService) find(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "User not found")
		}
		return nil, err
	}
	return user, nil
}

// Approve lets a pending or suspended teacher log in and log time
func (s *UserService) Approve(ctx context.Context, actor identity.Principal, id uuid.UUID) (*UserInfo, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.Approve(actor.UserID); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	appevent.PublishAggregate(ctx, s.publisher, s.logger, user)
	s.logger.Info("User approved", zap.String("user_id", id.String()), zap.String("approved_by", actor.UserID.String()))
	info := ToUserInfo(user)
	return &info, nil
}

// Suspend blocks a user and revokes every token issued to them so far
func (s *UserService) Suspend(ctx context.Context, actor identity.Principal, id uuid.UUID) (*UserInfo, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.Suspend(actor.UserID); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if s.blacklist != nil {
		if err := s.blacklist.RevokeUser(ctx, id.String(), s.jwtService.AccessTokenExpiration()); err != nil {
			s.logger.Error("Failed to revoke tokens of suspended user", zap.String("user_id", id.String()), zap.Error(err))
		}
	}
	appevent.PublishAggregate(ctx, s.publisher, s.logger, user)
	s.logger.Info("User suspended", zap.String("user_id", id.String()), zap.String("suspended_by", actor.UserID.String()))
	info := ToUserInfo(user)
	return &info, nil
}

// ListTeachers returns teacher accounts, optionally with one status
func (s *UserService) ListTeachers(ctx context.Context, actor identity.Principal, status *identity.ApprovalStatus) ([]UserInfo, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindTeachers(ctx, status)
	if err != nil {
		return nil, err
	}
	out := make([]UserInfo, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserInfo(u))
	}
	return out, nil
}

// EnsureAdmin creates the bootstrap admin account when the email is unused
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	user, err := identity.NewUser(name, email, password, identity.RoleAdmin)
	if err != nil {
		return err
	}
	exists, err := s.userRepo.ExistsByEmail(ctx, user.Email)
	if err != nil || exists {
		return err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}
	s.logger.Info("Bootstrap admin created", zap.String("email", user.Email))
	return nil
}
