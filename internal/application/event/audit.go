package event

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tutorcenter/backend/internal/domain/audit"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

// AuditRecorder persists an audit row for every auditable event it receives
type AuditRecorder struct {
	repo   audit.Repository
	logger *zap.Logger
}

// NewAuditRecorder creates the audit subscriber
func NewAuditRecorder(repo audit.Repository, logger *zap.Logger) *AuditRecorder {
	return &AuditRecorder{repo: repo, logger: logger.Named("audit")}
}

// EventTypes subscribes to status changes
func (r *AuditRecorder) EventTypes() []string {
	return []string{shared.EventTypeStatusChanged}
}

// Handle writes the audit row. Storage errors are logged and swallowed so a
// failing audit store never affects the operation that was audited.
func (r *AuditRecorder) Handle(ctx context.Context, e shared.DomainEvent) error {
	auditable, ok := e.(shared.Auditable)
	if !ok {
		return nil
	}
	entry := audit.NewLogFromEvent(auditable, shared.RequestMetaFrom(ctx))
	if err := r.repo.Create(ctx, entry); err != nil {
		r.logger.Error("Failed to persist audit log",
			zap.String("action", entry.Action),
			zap.String("target_type", entry.TargetType),
			zap.String("target_id", entry.TargetID.String()),
			zap.Error(err),
		)
	}
	return nil
}

// AuditListFilter narrows an audit log listing
type AuditListFilter struct {
	ActorID    *uuid.UUID
	TargetType string
	TargetID   *uuid.UUID
	Action     string
	Range      shared.DateRange
	Page       int
	PageSize   int
}

// AuditService lists audit rows
type AuditService struct {
	repo audit.Repository
}

// NewAuditService creates an audit listing service
func NewAuditService(repo audit.Repository) *AuditService {
	return &AuditService{repo: repo}
}

// List returns one page of audit rows, newest first
func (s *AuditService) List(ctx context.Context, f AuditListFilter) (shared.Paginated[*audit.Log], error) {
	base := shared.DefaultFilter()
	if f.Page > 0 {
		base.Page = f.Page
	}
	if f.PageSize > 0 && f.PageSize <= 100 {
		base.PageSize = f.PageSize
	}
	logs, total, err := s.repo.FindAll(ctx, audit.Filter{
		Filter:     base,
		ActorID:    f.ActorID,
		TargetType: f.TargetType,
		TargetID:   f.TargetID,
		Action:     f.Action,
		Range:      f.Range,
	})
	if err != nil {
		return shared.Paginated[*audit.Log]{}, err
	}
	return shared.NewPaginated(logs, total, base.Page, base.PageSize), nil
}
