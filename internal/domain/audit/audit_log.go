package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

// Log is one append-only audit record of a state change
type Log struct {
	ID         uuid.UUID      `json:"id"`
	ActorID    uuid.UUID      `json:"actorId"`
	Action     string         `json:"action"`
	TargetType string         `json:"targetType"`
	TargetID   uuid.UUID      `json:"targetId"`
	Before     map[string]any `json:"before,omitempty"`
	After      map[string]any `json:"after,omitempty"`
	IP         string         `json:"ip,omitempty"`
	UserAgent  string         `json:"userAgent,omitempty"`
	RequestID  string         `json:"requestId,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// NewLogFromEvent builds an audit record for an auditable event and the
// request that caused it
func NewLogFromEvent(event shared.Auditable, meta shared.RequestMeta) *Log {
	before, after := event.AuditSnapshot()
	return &Log{
		ID:         uuid.New(),
		ActorID:    event.AuditActor(),
		Action:     event.AuditAction(),
		TargetType: event.AggregateType(),
		TargetID:   event.AggregateID(),
		Before:     before,
		After:      after,
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
		RequestID:  meta.RequestID,
		CreatedAt:  event.OccurredAt(),
	}
}

// Filter narrows audit log listings
type Filter struct {
	shared.Filter
	ActorID    *uuid.UUID
	TargetType string
	TargetID   *uuid.UUID
	Action     string
	Range      shared.DateRange
}

// Repository persists audit records. There is no update or delete.
type Repository interface {
	Create(ctx context.Context, log *Log) error
	FindAll(ctx context.Context, filter Filter) ([]*Log, int64, error)
}
