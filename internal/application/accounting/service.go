// Package accounting computes the read-only financial views: student and
// teacher positions, expenses, profit and loss, cash flow and the dashboard.
package accounting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tutorcenter/backend/internal/domain/academic"
	"github.com/tutorcenter/backend/internal/domain/finance"
	"github.com/tutorcenter/backend/internal/domain/identity"
	"github.com/tutorcenter/backend/internal/domain/report"
	"github.com/tutorcenter/backend/internal/domain/shared"
	"github.com/tutorcenter/backend/internal/infrastructure/logger"
	"github.com/tutorcenter/backend/internal/infrastructure/telemetry"
)

// estimatedFeeMarkup is added on top of the amount paid when estimating a student's total fee
var estimatedFeeMarkup = decimal.RequireFromString("0.2")

// JSONCache stores dashboard results between requests
type JSONCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Repositories groups the read models the service aggregates over
type Repositories struct {
	Students        academic.StudentRepository
	TimeEntries     academic.TimeEntryRepository
	Users           identity.UserRepository
	Payments        finance.PaymentRepository
	TeacherPayments finance.TeacherPaymentRepository
	Expenses        finance.ExpenseRepository
}

// Service computes accounting views. It never writes.
type Service struct {
	repos    Repositories
	cache    JSONCache
	cacheTTL time.Duration
	metrics  *telemetry.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithCache caches GetFinancialMetrics results for ttl. A zero ttl disables caching.
func WithCache(cache JSONCache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithMetrics records aggregation durations
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the clock used for overdue checks
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates an accounting service
func NewService(repos Repositories, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{repos: repos, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func aggregationFailed(name string, err error) error {
	return fmt.Errorf("%s aggregation failed: %w", name, err)
}

func dateRange(start, end time.Time) (shared.DateRange, error) {
	r := shared.NewDateRange(start, end)
	return r, r.Validate()
}

// begin labels ctx with the aggregation name for query logs and returns a
// func that records its duration
func (s *Service) begin(ctx context.Context, op string) (context.Context, func()) {
	started := time.Now()
	return logger.WithOperation(ctx, op), func() {
		s.metrics.ObserveAggregation(ctx, op, time.Since(started))
	}
}

// GetStudentAccountingData returns the payment position of every active student,
// optionally restricted to one teacher's students.
func (s *Service) GetStudentAccountingData(ctx context.Context, start, end time.Time, teacherID *uuid.UUID) (*report.StudentAccountingData, error) {
	ctx, done := s.begin(ctx, "student_accounting")
	defer done()
	dates, err := dateRange(start, end)
	if err != nil {
		return nil, err
	}

	students, err := s.repos.Students.FindActive(ctx, teacherID)
	if err != nil {
		return nil, aggregationFailed("student payments", err)
	}

	now := s.now()
	data := &report.StudentAccountingData{
		Students:     make([]report.StudentAccountingRow, 0, len(students)),
		StudentCount: len(students),
	}
	for _, st := range students {
		payments, err := s.repos.Payments.FindForStudent(ctx, st.ID, dates)
		if err != nil {
			return nil, aggregationFailed("student payments", err)
		}
		row := studentRow(st, payments, now)
		data.Students = append(data.Students, row)

		data.Totals.TotalFees = data.Totals.TotalFees.Add(row.EstimatedTotalFee)
		data.Totals.TotalPaid = data.Totals.TotalPaid.Add(row.TotalPaid)
		data.Totals.TotalPending = data.Totals.TotalPending.Add(row.TotalPending)
		data.Totals.TotalOverdue = data.Totals.TotalOverdue.Add(row.TotalOverdue)
		data.Totals.TotalRemaining = data.Totals.TotalRemaining.Add(row.RemainingBalance)
	}
	return data, nil
}

// studentRow buckets one student's payments. Overdue payments are pending
// payments past their due date, so they are counted in both totals.
func studentRow(st *academic.Student, payments []*finance.Payment, now time.Time) report.StudentAccountingRow {
	row := report.StudentAccountingRow{
		StudentID:    st.ID,
		StudentName:  st.FullName(),
		TeacherID:    st.TeacherID,
		PaymentCount: len(payments),
	}
	for _, p := range payments {
		switch p.Status {
		case finance.PaymentCompleted:
			row.TotalPaid = row.TotalPaid.Add(p.Amount)
			if row.LastPaymentDate == nil || p.PaymentDate.After(*row.LastPaymentDate) {
				d := p.PaymentDate
				row.LastPaymentDate = &d
			}
		case finance.PaymentPending:
			row.TotalPending = row.TotalPending.Add(p.Amount)
			if p.IsOverdue(now) {
				row.TotalOverdue = row.TotalOverdue.Add(p.Amount)
			}
		}
	}
	row.EstimatedTotalFee = shared.Round2(row.TotalPaid.Add(row.TotalPending).Add(row.TotalPaid.Mul(estimatedFeeMarkup)))
	row.RemainingBalance = shared.MaxZero(row.EstimatedTotalFee.Sub(row.TotalPaid))
	return row
}

// GetTeacherAccountingData returns earnings against payouts for every teacher
func (s *Service) GetTeacherAccountingData(ctx context.Context, start, end time.Time) (*report.TeacherAccountingData, error) {
	ctx, done := s.begin(ctx, "teacher_accounting")
	defer done()
	dates, err := dateRange(start, end)
	if err != nil {
		return nil, err
	}

	teachers, err := s.repos.Users.FindTeachers(ctx, nil)
	if err != nil {
		return nil, aggregationFailed("teacher earnings", err)
	}

	data := &report.TeacherAccountingData{
		Teachers:     make([]report.TeacherAccountingRow, 0, len(teachers)),
		TeacherCount: len(teachers),
	}
	for _, t := range teachers {
		teacherID := t.ID
		summary, err := s.repos.TimeEntries.Summarize(ctx, academic.TimeEntryFilter{TeacherID: &teacherID, Range: dates})
		if err != nil {
			return nil, aggregationFailed("teacher earnings", err)
		}
		byStatus, err := s.repos.TeacherPayments.SumByStatus(ctx, finance.TeacherPaymentFilter{TeacherID: &teacherID, Range: dates})
		if err != nil {
			return nil, aggregationFailed("teacher payments", err)
		}

		paid := byStatus.Get(string(finance.TeacherPaymentPaid)).Total
		pending := byStatus.Get(string(finance.TeacherPaymentPending)).Total.
			Add(byStatus.Get(string(finance.TeacherPaymentApproved)).Total)
		unpaid := shared.MaxZero(summary.Amount.Sub(paid).Sub(pending))

		data.Teachers = append(data.Teachers, report.TeacherAccountingRow{
			TeacherID:      t.ID,
			TeacherName:    t.Name,
			Email:          t.Email,
			TotalHours:     summary.Hours,
			TotalEntries:   summary.Entries,
			TotalEarnings:  summary.Amount,
			TotalPaid:      paid,
			TotalPending:   pending,
			UnpaidEarnings: unpaid,
			IsPaidUp:       !unpaid.IsPositive(),
		})
		data.Totals.TotalEarnings = data.Totals.TotalEarnings.Add(summary.Amount)
		data.Totals.TotalPaid = data.Totals.TotalPaid.Add(paid)
		data.Totals.TotalPending = data.Totals.TotalPending.Add(pending)
		data.Totals.TotalUnpaid = data.Totals.TotalUnpaid.Add(unpaid)
	}
	return data, nil
}

// GetGeneralExpensesData lists matching expenses with category and month roll-ups.
// A nil status means approved.
func (s *Service) GetGeneralExpensesData(ctx context.Context, start, end time.Time, category *finance.ExpenseCategory, status *finance.ExpenseStatus) (*report.ExpensesData, error) {
	ctx, done := s.begin(ctx, "general_expenses")
	defer done()
	dates, err := dateRange(start, end)
	if err != nil {
		return nil, err
	}
	if status == nil {
		approved := finance.ExpenseApproved
		status = &approved
	}
	filter := finance.ExpenseFilter{Category: category, Status: status, Range: dates}

	expenses, err := s.repos.Expenses.FindByFilter(ctx, filter)
	if err != nil {
		return nil, aggregationFailed("general expenses", err)
	}
	byCategory, err := s.repos.Expenses.SumByCategory(ctx, filter)
	if err != nil {
		return nil, aggregationFailed("expense categories", err)
	}
	byMonth, err := s.repos.Expenses.SumByPeriod(ctx, filter, shared.PeriodMonth)
	if err != nil {
		return nil, aggregationFailed("expense months", err)
	}

	data := &report.ExpensesData{
		Expenses:   make([]report.ExpenseLine, 0, len(expenses)),
		ByCategory: categoryAmounts(byCategory),
		ByMonth:    byMonth,
		Count:      len(expenses),
	}
	if data.ByMonth == nil {
		data.ByMonth = []shared.PeriodTotal{}
	}
	for _, e := range expenses {
		data.Expenses = append(data.Expenses, report.ExpenseLine{
			ID:          e.ID,
			Category:    string(e.Category),
			Amount:      e.Amount,
			Currency:    e.Currency,
			Description: e.Description,
			Vendor:      e.Vendor,
			ExpenseDate: e.ExpenseDate,
			Status:      string(e.Status),
		})
		data.Total = data.Total.Add(e.Amount)
	}
	return data, nil
}

func categoryAmounts(totals []finance.CategoryTotal) []report.CategoryAmount {
	out := make([]report.CategoryAmount, 0, len(totals))
	for _, t := range totals {
		out = append(out, report.CategoryAmount{Category: string(t.Category), Amount: t.Total, Count: t.Count})
	}
	return out
}

// GetProfitLossSummary returns revenue from completed payments against paid
// teacher payouts and approved expenses. Paid expenses are not counted.
func (s *Service) GetProfitLossSummary(ctx context.Context, start, end time.Time) (*report.ProfitLossSummary, error) {
	ctx, done := s.begin(ctx, "profit_loss")
	defer done()
	dates, err := dateRange(start, end)
	if err != nil {
		return nil, err
	}

	completed := finance.PaymentCompleted
	revenue, err := s.repos.Payments.Sum(ctx, finance.PaymentFilter{Status: &completed, Range: dates})
	if err != nil {
		return nil, aggregationFailed("revenue", err)
	}
	paid := finance.TeacherPaymentPaid
	payouts, err := s.repos.TeacherPayments.Sum(ctx, finance.TeacherPaymentFilter{Status: &paid, Range: dates})
	if err != nil {
		return nil, aggregationFailed("teacher payments", err)
	}
	approved := finance.ExpenseApproved
	expenses, err := s.repos.Expenses.Sum(ctx, finance.ExpenseFilter{Status: &approved, Range: dates})
	if err != nil {
		return nil, aggregationFailed("general expenses", err)
	}

	total := payouts.Total.Add(expenses.Total)
	net := revenue.Total.Sub(total)
	return &report.ProfitLossSummary{
		PeriodStart:     dates.Start,
		PeriodEnd:       dates.End,
		Revenue:         revenue.Total,
		PaymentCount:    revenue.Count,
		TeacherPayments: payouts.Total,
		GeneralExpenses: expenses.Total,
		TotalExpenses:   total,
		NetIncome:       net,
		ProfitMargin:    shared.Percentage(net, revenue.Total),
		Status:          report.ProfitStatusOf(net),
	}, nil
}

// GetCashFlowData buckets inflows and outflows by period and carries a running
// total across the union of period keys in chronological order.
func (s *Service) GetCashFlowData(ctx context.Context, start, end time.Time, period shared.Period) (*report.CashFlowData, error) {
	ctx, done := s.begin(ctx, "cash_flow")
	defer done()
	dates, err := dateRange(start, end)
	if err != nil {
		return nil, err
	}
	if period == "" {
		period = shared.PeriodMonth
	}
	if !period.IsValid() {
		return nil, shared.NewDomainError("INVALID_PERIOD", fmt.Sprintf("Unknown period %q", period))
	}

	completed := finance.PaymentCompleted
	inflows, err := s.repos.Payments.SumByPeriod(ctx, finance.PaymentFilter{Status: &completed, Range: dates}, period)
	if err != nil {
		return nil, aggregationFailed("cash inflow", err)
	}
	paid := finance.TeacherPaymentPaid
	payouts, err := s.repos.TeacherPayments.SumByPeriod(ctx, finance.TeacherPaymentFilter{Status: &paid, Range: dates}, period)
	if err != nil {
		return nil, aggregationFailed("teacher payment outflow", err)
	}
	approved := finance.ExpenseApproved
	expenses, err := s.repos.Expenses.SumByPeriod(ctx, finance.ExpenseFilter{Status: &approved, Range: dates}, period)
	if err != nil {
		return nil, aggregationFailed("expense outflow", err)
	}

	return buildCashFlow(period, inflows, payouts, expenses), nil
}

func buildCashFlow(period shared.Period, inflows []shared.PeriodTotal, outflows ...[]shared.PeriodTotal) *report.CashFlowData {
	in := map[string]decimal.Decimal{}
	out := map[string]decimal.Decimal{}
	keys := map[string]struct{}{}
	for _, t := range inflows {
		in[t.Key] = in[t.Key].Add(t.Total)
		keys[t.Key] = struct{}{}
	}
	for _, series := range outflows {
		for _, t := range series {
			out[t.Key] = out[t.Key].Add(t.Total)
			keys[t.Key] = struct{}{}
		}
	}

	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	data := &report.CashFlowData{Period: period, Periods: make([]report.CashFlowPeriod, 0, len(sorted))}
	running := decimal.Zero
	for _, k := range sorted {
		net := in[k].Sub(out[k])
		running = running.Add(net)
		data.Periods = append(data.Periods, report.CashFlowPeriod{
			Period:       k,
			Inflow:       in[k],
			Outflow:      out[k],
			NetCashFlow:  net,
			RunningTotal: running,
		})
		data.TotalInflow = data.TotalInflow.Add(in[k])
		data.TotalOutflow = data.TotalOutflow.Add(out[k])
	}
	data.NetCashFlow = data.TotalInflow.Sub(data.TotalOutflow)
	return data
}

// GetFinancialMetrics runs the student, teacher, expense and profit/loss
// aggregations concurrently and reshapes them into the dashboard summary.
// Any failure fails the whole call.
func (s *Service) GetFinancialMetrics(ctx context.Context, start, end time.Time) (*report.FinancialMetrics, error) {
	if _, err := dateRange(start, end); err != nil {
		return nil, err
	}

	key := metricsCacheKey(start, end)
	if s.cache != nil && s.cacheTTL > 0 {
		var cached report.FinancialMetrics
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("Financial metrics cache read failed", zap.String("key", key), zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	var (
		students *report.StudentAccountingData
		teachers *report.TeacherAccountingData
		expenses *report.ExpensesData
		pl       *report.ProfitLossSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		students, err = s.GetStudentAccountingData(gctx, start, end, nil)
		return err
	})
	g.Go(func() (err error) {
		teachers, err = s.GetTeacherAccountingData(gctx, start, end)
		return err
	})
	g.Go(func() (err error) {
		expenses, err = s.GetGeneralExpensesData(gctx, start, end, nil, nil)
		return err
	})
	g.Go(func() (err error) {
		pl, err = s.GetProfitLossSummary(gctx, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Financial metrics aggregation failed", zap.Error(err))
		return nil, err
	}

	m := &report.FinancialMetrics{
		Revenue:            pl.Revenue,
		Expenses:           pl.TotalExpenses,
		NetIncome:          pl.NetIncome,
		ProfitMargin:       pl.ProfitMargin,
		Status:             pl.Status,
		StudentCount:       students.StudentCount,
		OutstandingFees:    students.Totals.TotalRemaining,
		OverduePayments:    students.Totals.TotalOverdue,
		TeacherCount:       teachers.TeacherCount,
		UnpaidEarnings:     teachers.Totals.TotalUnpaid,
		TopExpenseCategory: topCategory(expenses.ByCategory),
		ExpensesByCategory: expenses.ByCategory,
		GeneratedAt:        s.now(),
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.Set(ctx, key, m, s.cacheTTL); err != nil {
			s.logger.Warn("Financial metrics cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return m, nil
}

func topCategory(categories []report.CategoryAmount) string {
	top := ""
	best := decimal.Zero
	for _, c := range categories {
		if top == "" || c.Amount.GreaterThan(best) {
			top, best = c.Category, c.Amount
		}
	}
	return top
}

func metricsCacheKey(start, end time.Time) string {
	bound := func(t time.Time) string {
		if t.IsZero() {
			return "open"
		}
		return t.UTC().Format(time.RFC3339)
	}
	return "financial-metrics:" + bound(start) + ":" + bound(end)
}
