package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/tutorcenter/backend/internal/domain/academic"
	"github.com/tutorcenter/backend/internal/domain/audit"
	"github.com/tutorcenter/backend/internal/domain/finance"
	"github.com/tutorcenter/backend/internal/domain/identity"
	"github.com/tutorcenter/backend/internal/domain/report"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

// MockUserRepository is a testify mock of identity.UserRepository
type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) FindTeachers(ctx context.Context, status *identity.ApprovalStatus) ([]*identity.User, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.User), args.Error(1)
}

func (m *MockUserRepository) CountTeachers(ctx context.Context, status *identity.ApprovalStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockStudentRepository is a testify mock of academic.StudentRepository
type MockStudentRepository struct{ mock.Mock }

func (m *MockStudentRepository) Create(ctx context.Context, student *academic.Student) error {
	return m.Called(ctx, student).Error(0)
}

func (m *MockStudentRepository) Update(ctx context.Context, student *academic.Student) error {
	return m.Called(ctx, student).Error(0)
}

func (m *MockStudentRepository) FindByID(ctx context.Context, id uuid.UUID) (*academic.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.Student), args.Error(1)
}

func (m *MockStudentRepository) FindAll(ctx context.Context, filter academic.StudentFilter) ([]*academic.Student, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*academic.Student), args.Get(1).(int64), args.Error(2)
}

func (m *MockStudentRepository) FindActive(ctx context.Context, teacherID *uuid.UUID) ([]*academic.Student, error) {
	args := m.Called(ctx, teacherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*academic.Student), args.Error(1)
}

func (m *MockStudentRepository) CountByStatus(ctx context.Context, teacherID *uuid.UUID) (map[academic.StudentStatus]int64, error) {
	args := m.Called(ctx, teacherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[academic.StudentStatus]int64), args.Error(1)
}

func (m *MockStudentRepository) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	return m.Called(ctx, id, delta).Error(0)
}

// MockLessonTypeRepository is a testify mock of academic.LessonTypeRepository
type MockLessonTypeRepository struct{ mock.Mock }

func (m *MockLessonTypeRepository) Create(ctx context.Context, lt *academic.LessonType) error {
	return m.Called(ctx, lt).Error(0)
}

func (m *MockLessonTypeRepository) Update(ctx context.Context, lt *academic.LessonType) error {
	return m.Called(ctx, lt).Error(0)
}

func (m *MockLessonTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*academic.LessonType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.LessonType), args.Error(1)
}

func (m *MockLessonTypeRepository) FindByTeacher(ctx context.Context, teacherID uuid.UUID, activeOnly bool) ([]*academic.LessonType, error) {
	args := m.Called(ctx, teacherID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*academic.LessonType), args.Error(1)
}

func (m *MockLessonTypeRepository) ExistsByName(ctx context.Context, teacherID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, teacherID, name, excludeID)
	return args.Bool(0), args.Error(1)
}

// MockTimeEntryRepository is a testify mock of academic.TimeEntryRepository
type MockTimeEntryRepository struct{ mock.Mock }

func (m *MockTimeEntryRepository) Create(ctx context.Context, entry *academic.TimeEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockTimeEntryRepository) Update(ctx context.Context, entry *academic.TimeEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockTimeEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTimeEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*academic.TimeEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.TimeEntry), args.Error(1)
}

func (m *MockTimeEntryRepository) FindAll(ctx context.Context, filter academic.TimeEntryFilter) ([]*academic.TimeEntry, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*academic.TimeEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockTimeEntryRepository) Summarize(ctx context.Context, filter academic.TimeEntryFilter) (academic.TimeSummary, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(academic.TimeSummary), args.Error(1)
}

func (m *MockTimeEntryRepository) SummarizeByStudent(ctx context.Context, filter academic.TimeEntryFilter) ([]academic.StudentTimeSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]academic.StudentTimeSummary), args.Error(1)
}

func (m *MockTimeEntryRepository) SumByPeriod(ctx context.Context, filter academic.TimeEntryFilter, period shared.Period) ([]shared.PeriodTotal, error) {
	args := m.Called(ctx, filter, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shared.PeriodTotal), args.Error(1)
}

// MockAttendanceRepository is a testify mock of academic.AttendanceRepository
type MockAttendanceRepository struct{ mock.Mock }

func (m *MockAttendanceRepository) Create(ctx context.Context, a *academic.Attendance) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAttendanceRepository) Update(ctx context.Context, a *academic.Attendance) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAttendanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*academic.Attendance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.Attendance), args.Error(1)
}

func (m *MockAttendanceRepository) FindAll(ctx context.Context, filter academic.AttendanceFilter) ([]*academic.Attendance, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*academic.Attendance), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttendanceRepository) Stats(ctx context.Context, filter academic.AttendanceFilter) (academic.AttendanceStats, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(academic.AttendanceStats), args.Error(1)
}

// MockPaymentRepository is a testify mock of finance.PaymentRepository
type MockPaymentRepository struct{ mock.Mock }

func (m *MockPaymentRepository) Create(ctx context.Context, p *finance.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepository) Update(ctx context.Context, p *finance.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAll(ctx context.Context, filter finance.PaymentFilter) ([]*finance.Payment, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*finance.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepository) FindForStudent(ctx context.Context, studentID uuid.UUID, dates shared.DateRange) ([]*finance.Payment, error) {
	args := m.Called(ctx, studentID, dates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SumByStatus(ctx context.Context, filter finance.PaymentFilter) (shared.StatusTotals, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(shared.StatusTotals), args.Error(1)
}

func (m *MockPaymentRepository) Sum(ctx context.Context, filter finance.PaymentFilter) (shared.AmountSummary, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.AmountSummary), args.Error(1)
}

func (m *MockPaymentRepository) SumByPeriod(ctx context.Context, filter finance.PaymentFilter, period shared.Period) ([]shared.PeriodTotal, error) {
	args := m.Called(ctx, filter, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shared.PeriodTotal), args.Error(1)
}

// MockTeacherPaymentRepository is a testify mock of finance.TeacherPaymentRepository
type MockTeacherPaymentRepository struct{ mock.Mock }

func (m *MockTeacherPaymentRepository) Create(ctx context.Context, p *finance.TeacherPayment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockTeacherPaymentRepository) Update(ctx context.Context, p *finance.TeacherPayment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockTeacherPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.TeacherPayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.TeacherPayment), args.Error(1)
}

func (m *MockTeacherPaymentRepository) FindAll(ctx context.Context, filter finance.TeacherPaymentFilter) ([]*finance.TeacherPayment, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*finance.TeacherPayment), args.Get(1).(int64), args.Error(2)
}

func (m *MockTeacherPaymentRepository) SumByStatus(ctx context.Context, filter finance.TeacherPaymentFilter) (shared.StatusTotals, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(shared.StatusTotals), args.Error(1)
}

func (m *MockTeacherPaymentRepository) Sum(ctx context.Context, filter finance.TeacherPaymentFilter) (shared.AmountSummary, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.AmountSummary), args.Error(1)
}

func (m *MockTeacherPaymentRepository) SumByPeriod(ctx context.Context, filter finance.TeacherPaymentFilter, period shared.Period) ([]shared.PeriodTotal, error) {
	args := m.Called(ctx, filter, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shared.PeriodTotal), args.Error(1)
}

// MockExpenseRepository is a testify mock of finance.ExpenseRepository
type MockExpenseRepository struct{ mock.Mock }

func (m *MockExpenseRepository) Create(ctx context.Context, e *finance.Expense) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockExpenseRepository) Update(ctx context.Context, e *finance.Expense) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindByFilter(ctx context.Context, filter finance.ExpenseFilter) ([]*finance.Expense, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*finance.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindAll(ctx context.Context, filter finance.ExpenseFilter) ([]*finance.Expense, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*finance.Expense), args.Get(1).(int64), args.Error(2)
}

func (m *MockExpenseRepository) SumByCategory(ctx context.Context, filter finance.ExpenseFilter) ([]finance.CategoryTotal, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.CategoryTotal), args.Error(1)
}

func (m *MockExpenseRepository) Sum(ctx context.Context, filter finance.ExpenseFilter) (shared.AmountSummary, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.AmountSummary), args.Error(1)
}

func (m *MockExpenseRepository) SumByPeriod(ctx context.Context, filter finance.ExpenseFilter, period shared.Period) ([]shared.PeriodTotal, error) {
	args := m.Called(ctx, filter, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shared.PeriodTotal), args.Error(1)
}

// MockReportRepository is a testify mock of report.Repository
type MockReportRepository struct{ mock.Mock }

func (m *MockReportRepository) Create(ctx context.Context, r *report.FinancialReport) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReportRepository) Update(ctx context.Context, r *report.FinancialReport) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReportRepository) FindByID(ctx context.Context, id uuid.UUID) (*report.FinancialReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.FinancialReport), args.Error(1)
}

func (m *MockReportRepository) FindAll(ctx context.Context, filter report.Filter) ([]*report.FinancialReport, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*report.FinancialReport), args.Get(1).(int64), args.Error(2)
}

// MockAuditRepository is a testify mock of audit.Repository
type MockAuditRepository struct{ mock.Mock }

func (m *MockAuditRepository) Create(ctx context.Context, l *audit.Log) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockAuditRepository) FindAll(ctx context.Context, filter audit.Filter) ([]*audit.Log, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*audit.Log), args.Get(1).(int64), args.Error(2)
}

// MockReceiptCounter is a testify mock of finance.ReceiptCounter
type MockReceiptCounter struct{ mock.Mock }

func (m *MockReceiptCounter) Next(ctx context.Context, scope finance.ReceiptScope) (int64, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).(int64), args.Error(1)
}
