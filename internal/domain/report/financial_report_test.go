package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

func TestNewFinancialReport(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		r, err := NewFinancialReport(ReportMonthly, start, end, uuid.New(), RevenueSnapshot{NetIncome: decimal.NewFromInt(5)}, Metrics{})

		require.NoError(t, err)
		assert.False(t, r.IsArchived)
		assert.NotNil(t, r.Revenue.ExpensesByCategory)
		assert.Len(t, r.GetDomainEvents(), 1)
	})

	t.Run("start after end", func(t *testing.T) {
		_, err := NewFinancialReport(ReportCustom, end, start, uuid.New(), RevenueSnapshot{}, Metrics{})
		assert.ErrorContains(t, err, "start cannot be after")
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewFinancialReport(ReportType("weekly"), start, end, uuid.New(), RevenueSnapshot{}, Metrics{})
		assert.ErrorContains(t, err, "reportType")
	})
}

func TestFinancialReport_Archive(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r, err := NewFinancialReport(ReportYearly, start, start.AddDate(1, 0, -1), uuid.New(), RevenueSnapshot{}, Metrics{})
	require.NoError(t, err)

	require.NoError(t, r.Archive(uuid.New()))
	assert.True(t, r.IsArchived)
	assert.ErrorIs(t, r.Archive(uuid.New()), shared.ErrInvalidState)

	require.NoError(t, r.Unarchive(uuid.New()))
	assert.False(t, r.IsArchived)
	assert.ErrorIs(t, r.Unarchive(uuid.New()), shared.ErrInvalidState)
}

func TestFinancialReport_AttachFileOnce(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r, err := NewFinancialReport(ReportCustom, start, start, uuid.New(), RevenueSnapshot{}, Metrics{})
	require.NoError(t, err)

	require.NoError(t, r.AttachFile(RenderedFile{Format: FormatPDF, StorageKey: "reports/a.pdf"}))
	assert.ErrorIs(t, r.AttachFile(RenderedFile{Format: FormatCSV}), shared.ErrInvalidState)
	assert.Equal(t, "reports/a.pdf", r.File.StorageKey)
}

func TestProfitStatusOf(t *testing.T) {
	assert.Equal(t, StatusProfit, ProfitStatusOf(decimal.NewFromInt(1)))
	assert.Equal(t, StatusLoss, ProfitStatusOf(decimal.NewFromInt(-1)))
	assert.Equal(t, StatusBreakeven, ProfitStatusOf(decimal.Zero))
}

func TestFormat(t *testing.T) {
	assert.True(t, FormatPDF.IsFile())
	assert.False(t, FormatJSON.IsFile())
	assert.True(t, FormatJSON.IsValid())
	assert.False(t, Format("docx").IsValid())
}
