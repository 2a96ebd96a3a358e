package shared

import (
	"github.com/google/uuid"
)

// EventTypeStatusChanged is the event type shared by every audited state change
const EventTypeStatusChanged = "StatusChanged"

// StatusChangedEvent records one state-machine transition of an aggregate.
// It carries enough to write an audit row without reloading the aggregate.
type StatusChangedEvent struct {
	BaseDomainEvent
	Actor  uuid.UUID      `json:"actor"`
	Action string         `json:"action"`
	Before map[string]any `json:"before,omitempty"`
	After  map[string]any `json:"after,omitempty"`
}

// NewStatusChangedEvent creates a StatusChangedEvent
func NewStatusChangedEvent(aggType string, aggID, actor uuid.UUID, action string, before, after map[string]any) *StatusChangedEvent {
	return &StatusChangedEvent{
		BaseDomainEvent: NewBaseDomainEvent(EventTypeStatusChanged, aggType, aggID),
		Actor:           actor,
		Action:          action,
		Before:          before,
		After:           after,
	}
}

// AuditActor implements Auditable
func (e *StatusChangedEvent) AuditActor() uuid.UUID {
	return e.Actor
}

// AuditAction implements Auditable
func (e *StatusChangedEvent) AuditAction() string {
	return e.Action
}

// AuditSnapshot implements Auditable
func (e *StatusChangedEvent) AuditSnapshot() (before, after map[string]any) {
	return e.Before, e.After
}

var _ Auditable = (*StatusChangedEvent)(nil)
