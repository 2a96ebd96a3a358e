package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tutorcenter/backend/internal/domain/report"
	"github.com/tutorcenter/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateFinancialReport(ctx context.Context, start, end time.Time, generatedBy uuid.UUID, reportType report.ReportType, format report.Format) (*report.FinancialReport, error) {
	args := m.Called(ctx, start, end, generatedBy, reportType, format)
	if r := args.Get(0); r != nil {
		return r.(*report.FinancialReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func testSchedulerConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Enabled:           true,
		MonthlyReportCron: "0 2 1 * *",
		ReportFormat:      "csv",
		Timezone:          "UTC",
		RetryAttempts:     3,
		RetryDelay:        time.Millisecond,
	}
}

func newReport(t *testing.T, start, end time.Time) *report.FinancialReport {
	t.Helper()
	r, err := report.NewFinancialReport(report.ReportMonthly, start, end, SystemActor,
		report.RevenueSnapshot{NetIncome: decimal.Zero}, report.Metrics{})
	require.NoError(t, err)
	return r
}

func TestPreviousMonth(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "mid year",
			now:       time.Date(2024, 8, 1, 2, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 7, 31, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "january rolls back a year",
			now:       time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 12, 31, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "leap february",
			now:       time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 2, 29, 23, 59, 59, 999999999, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := PreviousMonth(tt.now, time.UTC)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestNewMonthlyReportScheduler_Validation(t *testing.T) {
	gen := &mockGenerator{}

	t.Run("bad cron", func(t *testing.T) {
		cfg := testSchedulerConfig()
		cfg.MonthlyReportCron = "every month"
		_, err := NewMonthlyReportScheduler(cfg, gen, zap.NewNop())
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("bad timezone", func(t *testing.T) {
		cfg := testSchedulerConfig()
		cfg.Timezone = "Mars/Olympus"
		_, err := NewMonthlyReportScheduler(cfg, gen, zap.NewNop())
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("bad format", func(t *testing.T) {
		cfg := testSchedulerConfig()
		cfg.ReportFormat = "docx"
		_, err := NewMonthlyReportScheduler(cfg, gen, zap.NewNop())
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestMonthlyReportScheduler_RunOnce(t *testing.T) {
	now := time.Date(2024, 8, 1, 2, 0, 0, 0, time.UTC)
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 7, 31, 23, 59, 59, 999999999, time.UTC)

	t.Run("generates previous month", func(t *testing.T) {
		gen := &mockGenerator{}
		want := newReport(t, start, end)
		gen.On("GenerateFinancialReport", mock.Anything, start, end, SystemActor, report.ReportMonthly, report.FormatCSV).
			Return(want, nil).Once()

		s, err := NewMonthlyReportScheduler(testSchedulerConfig(), gen, zap.NewNop())
		require.NoError(t, err)

		got, err := s.RunOnce(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		gen.AssertExpectations(t)

		st := s.Status()
		require.NotNil(t, st.LastReportID)
		assert.Equal(t, want.ID, *st.LastReportID)
		assert.Empty(t, st.LastError)
	})

	t.Run("retries then succeeds", func(t *testing.T) {
		gen := &mockGenerator{}
		want := newReport(t, start, end)
		gen.On("GenerateFinancialReport", mock.Anything, start, end, SystemActor, report.ReportMonthly, report.FormatCSV).
			Return(nil, errors.New("db unavailable")).Twice()
		gen.On("GenerateFinancialReport", mock.Anything, start, end, SystemActor, report.ReportMonthly, report.FormatCSV).
			Return(want, nil).Once()

		s, err := NewMonthlyReportScheduler(testSchedulerConfig(), gen, zap.NewNop())
		require.NoError(t, err)

		_, err = s.RunOnce(context.Background(), now)
		require.NoError(t, err)
		gen.AssertNumberOfCalls(t, "GenerateFinancialReport", 3)
	})

	t.Run("gives up after retry attempts", func(t *testing.T) {
		gen := &mockGenerator{}
		gen.On("GenerateFinancialReport", mock.Anything, start, end, SystemActor, report.ReportMonthly, report.FormatCSV).
			Return(nil, errors.New("db unavailable"))

		s, err := NewMonthlyReportScheduler(testSchedulerConfig(), gen, zap.NewNop())
		require.NoError(t, err)

		_, err = s.RunOnce(context.Background(), now)
		require.ErrorIs(t, err, ErrReportGenerationFailed)
		assert.Contains(t, err.Error(), "db unavailable")
		gen.AssertNumberOfCalls(t, "GenerateFinancialReport", 3)
		assert.Contains(t, s.Status().LastError, "db unavailable")
	})

	t.Run("stops retrying when context is cancelled", func(t *testing.T) {
		gen := &mockGenerator{}
		gen.On("GenerateFinancialReport", mock.Anything, start, end, SystemActor, report.ReportMonthly, report.FormatCSV).
			Return(nil, errors.New("db unavailable"))

		cfg := testSchedulerConfig()
		cfg.RetryDelay = time.Hour
		s, err := NewMonthlyReportScheduler(cfg, gen, zap.NewNop())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = s.RunOnce(ctx, now)
		require.ErrorIs(t, err, ErrReportGenerationFailed)
		assert.Contains(t, err.Error(), context.Canceled.Error())
		gen.AssertNumberOfCalls(t, "GenerateFinancialReport", 1)
	})
}

func TestMonthlyReportScheduler_StartStop(t *testing.T) {
	s, err := NewMonthlyReportScheduler(testSchedulerConfig(), &mockGenerator{}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, s.Status().Running)

	s.Start()
	s.Start()
	st := s.Status()
	assert.True(t, st.Running)
	require.NotNil(t, st.NextRunAt)
	assert.Equal(t, 1, st.NextRunAt.Day())
	assert.Equal(t, 2, st.NextRunAt.Hour())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.Status().Running)
}
