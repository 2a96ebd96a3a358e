package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/tutorcenter/backend/internal/domain/finance"
	"github.com/tutorcenter/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReceiptCounter implements finance.ReceiptCounter on the receipt_counters
// table. Each scope row is incremented with an upsert so concurrent callers
// never observe the same value.
type GormReceiptCounter struct {
	db *gorm.DB
}

// NewGormReceiptCounter creates a new GormReceiptCounter
func NewGormReceiptCounter(db *gorm.DB) *GormReceiptCounter {
	return &GormReceiptCounter{db: db}
}

// Next increments and returns the counter of one scope, starting at 1
func (c *GormReceiptCounter) Next(ctx context.Context, scope finance.ReceiptScope) (int64, error) {
	key := scope.Key()
	var value int64
	err := conn(ctx, c.db).Transaction(func(tx *gorm.DB) error {
		row := models.ReceiptCounterModel{Scope: key, Value: 1, UpdatedAt: time.Now().UTC()}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "scope"}},
			DoUpdates: clause.Assignments(map[string]any{
				"value":      gorm.Expr("receipt_counters.value + 1"),
				"updated_at": row.UpdatedAt,
			}),
		}).Create(&row).Error; err != nil {
			return err
		}
		return tx.Model(&models.ReceiptCounterModel{}).
			Where("scope = ?", key).
			Select("value").
			Scan(&value).Error
	})
	if err != nil {
		return 0, fmt.Errorf("increment receipt counter %s: %w", key, err)
	}
	return value, nil
}
