package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/tutorcenter/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// modelLogger resolves the global logger lazily so it follows zap.ReplaceGlobals.
func modelLogger() *zap.Logger {
	return zap.L().Named("persistence.models")
}

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with version for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// ToDomainAggregateRoot rebuilds a domain BaseAggregateRoot without pending events
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: m.BaseModel.ToDomain(),
		Version:    m.Version,
	}
}

func marshalJSON(v any, fallback string) string {
	b, err := json.Marshal(v)
	if err != nil {
		modelLogger().Warn("failed to serialize JSON column", zap.Error(err))
		return fallback
	}
	return string(b)
}

func unmarshalJSON(raw string, dst any, column string) {
	if raw == "" || raw == "null" {
		return
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		modelLogger().Warn("failed to parse JSON column",
			zap.String("column", column),
			zap.String("raw_json", raw),
			zap.Error(err))
	}
}
