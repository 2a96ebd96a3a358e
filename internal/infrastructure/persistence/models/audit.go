package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tutorcenter/backend/internal/domain/audit"
)

// AuditLogModel is the persistence model for audit records.
// Audit logs are append-only and should not be modified after creation.
type AuditLogModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Action     string    `gorm:"type:varchar(60);not null;index"`
	TargetType string    `gorm:"type:varchar(40);not null;index:idx_audit_target,priority:1"`
	TargetID   uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_target,priority:2"`
	BeforeJSON string    `gorm:"column:before;type:jsonb"`
	AfterJSON  string    `gorm:"column:after;type:jsonb"`
	IP         string    `gorm:"column:ip;type:varchar(45)"`
	UserAgent  string    `gorm:"type:varchar(500)"`
	RequestID  string    `gorm:"type:varchar(64)"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts the persistence model to a domain audit Log.
func (m *AuditLogModel) ToDomain() *audit.Log {
	l := &audit.Log{
		ID:         m.ID,
		ActorID:    m.ActorID,
		Action:     m.Action,
		TargetType: m.TargetType,
		TargetID:   m.TargetID,
		IP:         m.IP,
		UserAgent:  m.UserAgent,
		RequestID:  m.RequestID,
		CreatedAt:  m.CreatedAt,
	}
	unmarshalJSON(m.BeforeJSON, &l.Before, "audit_logs.before")
	unmarshalJSON(m.AfterJSON, &l.After, "audit_logs.after")
	return l
}

// AuditLogModelFromDomain creates a new persistence model from a domain audit Log.
func AuditLogModelFromDomain(l *audit.Log) *AuditLogModel {
	return &AuditLogModel{
		ID:         l.ID,
		ActorID:    l.ActorID,
		Action:     l.Action,
		TargetType: l.TargetType,
		TargetID:   l.TargetID,
		BeforeJSON: marshalJSON(l.Before, "null"),
		AfterJSON:  marshalJSON(l.After, "null"),
		IP:         l.IP,
		UserAgent:  l.UserAgent,
		RequestID:  l.RequestID,
		CreatedAt:  l.CreatedAt,
	}
}
