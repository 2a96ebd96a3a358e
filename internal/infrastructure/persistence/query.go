package persistence

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tutorcenter/backend/internal/domain/shared"
	"gorm.io/gorm"
)

const maxPageSize = 200

// translateError maps GORM errors onto domain sentinels
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	default:
		return err
	}
}

// applyDateRange restricts column to the inclusive range; open sides are skipped
func applyDateRange(q *gorm.DB, column string, r shared.DateRange) *gorm.DB {
	if r.Start != nil {
		q = q.Where(column+" >= ?", r.Start.UTC())
	}
	if r.End != nil {
		q = q.Where(column+" <= ?", r.End.UTC())
	}
	return q
}

// applyPaging orders by a whitelisted column and limits to one page
func applyPaging(q *gorm.DB, f shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	sortField := ValidateSortField(f.OrderBy, allowed, defaultField)
	sortOrder := ValidateSortOrder(f.OrderDir)
	q = q.Order(fmt.Sprintf("%s %s", sortField, sortOrder)).Order("id " + sortOrder)

	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	return q.Offset((page - 1) * pageSize).Limit(pageSize)
}

// sumRow scans SUM/COUNT projections
type sumRow struct {
	Total decimal.NullDecimal
	Count int64
}

func (r sumRow) summary() shared.AmountSummary {
	total := decimal.Zero
	if r.Total.Valid {
		total = shared.Round2(r.Total.Decimal)
	}
	return shared.AmountSummary{Total: total, Count: r.Count}
}

// sumAmounts runs SUM(column)/COUNT(*) over q
func sumAmounts(q *gorm.DB, column string) (shared.AmountSummary, error) {
	var row sumRow
	if err := q.Select(fmt.Sprintf("SUM(%s) AS total, COUNT(*) AS count", column)).Scan(&row).Error; err != nil {
		return shared.AmountSummary{}, err
	}
	return row.summary(), nil
}

// groupRow scans grouped SUM/COUNT projections
type groupRow struct {
	GroupKey string
	Total    decimal.NullDecimal
	Count    int64
}

// sumGrouped runs SUM(column)/COUNT(*) grouped by groupColumn over q
func sumGrouped(q *gorm.DB, groupColumn, column string) ([]groupRow, error) {
	var rows []groupRow
	err := q.Select(fmt.Sprintf("%s AS group_key, SUM(%s) AS total, COUNT(*) AS count", groupColumn, column)).
		Group(groupColumn).
		Order(groupColumn).
		Scan(&rows).Error
	return rows, err
}

func statusTotals(rows []groupRow) shared.StatusTotals {
	out := make(shared.StatusTotals, 0, len(rows))
	for _, r := range rows {
		total := decimal.Zero
		if r.Total.Valid {
			total = shared.Round2(r.Total.Decimal)
		}
		out = append(out, shared.StatusTotal{Status: r.GroupKey, Total: total, Count: r.Count})
	}
	return out
}

// datedRow scans (date, amount) projections for period bucketing
type datedRow struct {
	Date   time.Time
	Amount decimal.Decimal
}

// sumByPeriod fetches (dateColumn, amountColumn) pairs and buckets them in Go.
// Bucketing in Go keeps week and month keys identical across SQL dialects.
func sumByPeriod(q *gorm.DB, dateColumn, amountColumn string, period shared.Period) ([]shared.PeriodTotal, error) {
	var rows []datedRow
	if err := q.Select(fmt.Sprintf("%s AS date, %s AS amount", dateColumn, amountColumn)).
		Order(dateColumn).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	dated := make([]shared.DatedAmount, len(rows))
	for i, r := range rows {
		dated[i] = shared.DatedAmount{Date: r.Date, Amount: r.Amount}
	}
	buckets := shared.BucketByPeriod(dated, period)
	for i := range buckets {
		buckets[i].Total = shared.Round2(buckets[i].Total)
	}
	return buckets, nil
}

// updateAll writes every column of model except created_at, matching on its
// primary key. Missing rows surface as shared.ErrNotFound.
func updateAll(q *gorm.DB, model any, omit ...string) error {
	result := q.Model(model).Select("*").Omit(append([]string{"created_at"}, omit...)...).Updates(model)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// findPage counts every row q matches and loads one page of them into dest
func findPage(q *gorm.DB, f shared.Filter, allowed map[string]bool, defaultField string, dest any) (int64, error) {
	base := q.Session(&gorm.Session{})
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return 0, err
	}
	if err := applyPaging(base, f, allowed, defaultField).Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}
