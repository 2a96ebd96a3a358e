package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutorcenter/backend/internal/domain/academic"
	"github.com/tutorcenter/backend/internal/domain/finance"
	"github.com/tutorcenter/backend/internal/domain/report"
	"github.com/tutorcenter/backend/internal/domain/shared"
	"github.com/tutorcenter/backend/internal/infrastructure/render"
	"github.com/tutorcenter/backend/internal/infrastructure/storage"
	"github.com/tutorcenter/backend/tests/testutil"
)

type stubAccounting struct {
	pl       *report.ProfitLossSummary
	expenses *report.ExpensesData
	err      error
}

func (a *stubAccounting) GetProfitLossSummary(context.Context, time.Time, time.Time) (*report.ProfitLossSummary, error) {
	return a.pl, a.err
}

func (a *stubAccounting) GetGeneralExpensesData(context.Context, time.Time, time.Time, *finance.ExpenseCategory, *finance.ExpenseStatus) (*report.ExpensesData, error) {
	return a.expenses, a.err
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var (
	start = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end   = time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)
)

type fixture struct {
	reports    *testutil.MockReportRepository
	students   *testutil.MockStudentRepository
	users      *testutil.MockUserRepository
	entries    *testutil.MockTimeEntryRepository
	attendance *testutil.MockAttendanceRepository
	accounting *stubAccounting
	store      *storage.MemoryObjectStorage
	pub        *testutil.RecordingPublisher
}

func newFixture() *fixture {
	f := &fixture{
		reports:    new(testutil.MockReportRepository),
		students:   new(testutil.MockStudentRepository),
		users:      new(testutil.MockUserRepository),
		entries:    new(testutil.MockTimeEntryRepository),
		attendance: new(testutil.MockAttendanceRepository),
		store:      storage.NewMemoryObjectStorage("https://files.example.com"),
		pub:        testutil.NewRecordingPublisher(),
		accounting: &stubAccounting{
			pl: &report.ProfitLossSummary{
				Revenue:         dec("1000"),
				TeacherPayments: dec("400"),
				GeneralExpenses: dec("100"),
				TotalExpenses:   dec("500"),
				NetIncome:       dec("500"),
				ProfitMargin:    dec("50"),
				Status:          report.StatusProfit,
			},
			expenses: &report.ExpensesData{ByCategory: []report.CategoryAmount{{Category: "rent", Amount: dec("100"), Count: 1}}},
		},
	}
	f.students.On("CountByStatus", mock.Anything, (*uuid.UUID)(nil)).
		Return(map[academic.StudentStatus]int64{academic.StudentActive: 3, academic.StudentInactive: 2}, nil)
	f.users.On("CountTeachers", mock.Anything, mock.Anything).Return(int64(2), nil)
	f.entries.On("Summarize", mock.Anything, mock.Anything).
		Return(academic.TimeSummary{Hours: dec("12.5"), Amount: dec("900"), Entries: 9}, nil)
	f.attendance.On("Stats", mock.Anything, mock.Anything).
		Return(academic.AttendanceStats{Total: 8, Present: 6, Late: 1, Absent: 1, AttendanceRate: dec("87.5")}, nil)
	return f
}

func (f *fixture) service(withStorage bool) *Service {
	var store ObjectStorage
	if withStorage {
		store = f.store
	}
	return NewService(Repositories{
		Reports:     f.reports,
		Students:    f.students,
		Users:       f.users,
		TimeEntries: f.entries,
		Attendance:  f.attendance,
	}, f.accounting, render.NewRenderer(nil, zap.NewNop()), store, zap.NewNop(), WithPublisher(f.pub))
}

func TestGenerateFinancialReport_JSON(t *testing.T) {
	f := newFixture()
	f.reports.On("Create", mock.Anything, mock.AnythingOfType("*report.FinancialReport")).Return(nil).Once()

	r, err := f.service(false).GenerateFinancialReport(context.Background(), start, end, testutil.TestUserID(), report.ReportMonthly, report.FormatJSON)
	require.NoError(t, err)

	assert.True(t, dec("1000").Equal(r.Revenue.TotalRevenue))
	assert.True(t, dec("500").Equal(r.Revenue.NetIncome))
	require.Len(t, r.Revenue.ExpensesByCategory, 1)
	assert.Equal(t, int64(3), r.Metrics.ActiveStudents)
	assert.Equal(t, int64(2), r.Metrics.ActiveTeachers)
	assert.Equal(t, int64(9), r.Metrics.TotalLessons)
	assert.True(t, dec("87.5").Equal(r.Metrics.AttendanceRate))
	assert.True(t, dec("333.33").Equal(r.Metrics.AverageRevenuePerStudent))
	assert.Nil(t, r.File)
	assert.Equal(t, []string{"report.generate"}, f.pub.Actions())
	f.reports.AssertExpectations(t)
}

func TestGenerateFinancialReport_CSVIsStored(t *testing.T) {
	f := newFixture()
	f.reports.On("Create", mock.Anything, mock.Anything).Return(nil)

	r, err := f.service(true).GenerateFinancialReport(context.Background(), start, end, testutil.TestUserID(), report.ReportCustom, report.FormatCSV)
	require.NoError(t, err)
	require.NotNil(t, r.File)
	assert.Equal(t, "reports/custom/"+r.ID.String()+".csv", r.File.StorageKey)

	data, err := f.store.Download(context.Background(), r.File.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), r.File.Size)
	assert.True(t, strings.Contains(string(data), "1000.00"))
}

func TestGenerateFinancialReport_CreateFailureRemovesFile(t *testing.T) {
	f := newFixture()
	var key string
	f.reports.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			r := args.Get(1).(*report.FinancialReport)
			require.NotNil(t, r.File)
			key = r.File.StorageKey
		}).
		Return(errors.New("insert failed")).Once()

	_, err := f.service(true).GenerateFinancialReport(context.Background(), start, end, testutil.TestUserID(), report.ReportMonthly, report.FormatCSV)
	require.Error(t, err)
	require.NotEmpty(t, key)

	exists, err := f.store.ObjectExists(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, f.pub.Events())
}

func TestGenerateFinancialReport_FileFormatNeedsStorage(t *testing.T) {
	f := newFixture()
	_, err := f.service(false).GenerateFinancialReport(context.Background(), start, end, uuid.Nil, report.ReportMonthly, report.FormatXLSX)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "STORAGE_UNAVAILABLE", de.Code)
}

func TestGenerateFinancialReport_PDFWithoutEngineIsNotPersisted(t *testing.T) {
	f := newFixture()
	_, err := f.service(true).GenerateFinancialReport(context.Background(), start, end, uuid.Nil, report.ReportMonthly, report.FormatPDF)
	require.ErrorIs(t, err, render.ErrPDFUnavailable)
	f.reports.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGenerateFinancialReport_AggregationFailure(t *testing.T) {
	f := newFixture()
	f.accounting.err = errors.New("revenue aggregation failed: timeout")

	_, err := f.service(false).GenerateFinancialReport(context.Background(), start, end, uuid.Nil, report.ReportMonthly, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aggregation failed")
	assert.Empty(t, f.pub.Events())
}

func TestGenerateFinancialReport_InvalidPeriod(t *testing.T) {
	f := newFixture()
	_, err := f.service(false).GenerateFinancialReport(context.Background(), end, start, uuid.Nil, report.ReportMonthly, report.FormatJSON)
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
}

func storedReport(t *testing.T, f *fixture) *report.FinancialReport {
	t.Helper()
	r, err := report.NewFinancialReport(report.ReportMonthly, start, end, uuid.Nil, report.RevenueSnapshot{TotalRevenue: dec("10")}, report.Metrics{})
	require.NoError(t, err)
	r.ClearDomainEvents()
	f.reports.On("FindByID", mock.Anything, r.ID).Return(r, nil)
	return r
}

func TestArchiveAndUnarchive(t *testing.T) {
	f := newFixture()
	r := storedReport(t, f)
	f.reports.On("Update", mock.Anything, r).Return(nil)
	svc := f.service(false)
	actor := testutil.TestUserID()

	got, err := svc.Archive(context.Background(), actor, r.ID)
	require.NoError(t, err)
	assert.True(t, got.IsArchived)

	_, err = svc.Archive(context.Background(), actor, r.ID)
	require.Error(t, err)

	got, err = svc.Unarchive(context.Background(), actor, r.ID)
	require.NoError(t, err)
	assert.False(t, got.IsArchived)
	assert.Equal(t, []string{"report.archive", "report.unarchive"}, f.pub.Actions())
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.reports.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := f.service(false).Get(context.Background(), id)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "Report not found", de.Message)
}

func TestList_ExcludesArchivedByDefault(t *testing.T) {
	f := newFixture()
	f.reports.On("FindAll", mock.Anything, mock.MatchedBy(func(filter report.Filter) bool {
		return !filter.IncludeArchived && filter.OrderBy == "generated_at"
	})).Return([]*report.FinancialReport{}, int64(0), nil)

	page, err := f.service(false).List(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	f.reports.AssertExpectations(t)
}

func TestRenderReport(t *testing.T) {
	f := newFixture()
	r := storedReport(t, f)
	svc := f.service(false)

	out, err := svc.RenderReport(context.Background(), r.ID, report.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "csv", out.Extension)

	_, err = svc.RenderReport(context.Background(), r.ID, report.FormatJSON)
	require.Error(t, err)
}

func TestDownloadURL(t *testing.T) {
	f := newFixture()
	r := storedReport(t, f)
	svc := f.service(true)

	_, _, err := svc.DownloadURL(context.Background(), r.ID, 0)
	require.Error(t, err)

	require.NoError(t, r.AttachFile(report.RenderedFile{Format: report.FormatCSV, StorageKey: StorageKey(r, "csv")}))
	url, expires, err := svc.DownloadURL(context.Background(), r.ID, 0)
	require.NoError(t, err)
	assert.Contains(t, url, "https://files.example.com/")
	assert.WithinDuration(t, time.Now().Add(DefaultDownloadExpiry), expires, 5*time.Second)
}
