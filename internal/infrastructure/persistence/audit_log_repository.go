package persistence

import (
	"context"

	"github.com/tutorcenter/backend/internal/domain/audit"
	"github.com/tutorcenter/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAuditLogRepository implements audit.Repository using GORM.
// Audit records are append-only.
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Create appends an audit record
func (r *GormAuditLogRepository) Create(ctx context.Context, log *audit.Log) error {
	return translateError(conn(ctx, r.db).Create(models.AuditLogModelFromDomain(log)).Error)
}

// FindAll returns one page of audit records, newest first by default
func (r *GormAuditLogRepository) FindAll(ctx context.Context, filter audit.Filter) ([]*audit.Log, int64, error) {
	q := conn(ctx, r.db).Model(&models.AuditLogModel{})
	if filter.ActorID != nil {
		q = q.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.TargetType != "" {
		q = q.Where("target_type = ?", filter.TargetType)
	}
	if filter.TargetID != nil {
		q = q.Where("target_id = ?", *filter.TargetID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	q = applyDateRange(q, "created_at", filter.Range)

	var rows []models.AuditLogModel
	total, err := findPage(q, filter.Filter, AuditLogSortFields, "created_at", &rows)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*audit.Log, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}
