package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutorcenter/backend/internal/application/accounting"
	reportapp "github.com/tutorcenter/backend/internal/application/report"
	"github.com/tutorcenter/backend/internal/domain/report"
	"github.com/tutorcenter/backend/internal/domain/shared"
	"github.com/tutorcenter/backend/internal/infrastructure/render"
	"github.com/tutorcenter/backend/internal/interfaces/http/dto"
	"github.com/tutorcenter/backend/tests/testutil"
)

func TestAccountingHandler_RequiresRange(t *testing.T) {
	h := NewAccountingHandler(accounting.NewService(accounting.Repositories{}, zap.NewNop()))

	cases := []struct {
		name string
		path string
		code string
	}{
		{"no bounds", "/accounting/students", dto.ErrCodeInvalidPeriod},
		{"no end", "/accounting/students?startDate=2024-03-01", dto.ErrCodeInvalidPeriod},
		{"malformed start", "/accounting/students?startDate=01-03-2024&endDate=2024-03-31", dto.ErrCodeBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := perform(t, &adminActor, http.MethodGet, "/accounting/students", tc.path, nil, h.Students)
			assertErrorCode(t, w, http.StatusBadRequest, tc.code)
		})
	}
}

func TestBaseHandler_ToRange_Bounds(t *testing.T) {
	lastDayMorning := time.Date(2024, time.March, 31, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		query     string
		wantStart time.Time
		wantEnd   time.Time
		contains  bool
	}{
		{
			name:      "calendar end covers the whole day",
			query:     "startDate=2024-03-01&endDate=2024-03-31",
			wantStart: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.March, 31, 23, 59, 59, 999999999, time.UTC),
			contains:  true,
		},
		{
			name:      "timestamp end is kept as sent",
			query:     "startDate=2024-03-01&endDate=2024-03-31T09:00:00Z",
			wantStart: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.March, 31, 9, 0, 0, 0, time.UTC),
			contains:  false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var h BaseHandler
			var got shared.DateRange
			capture := func(c *gin.Context) {
				var q RangeQuery
				require.NoError(t, c.ShouldBindQuery(&q))
				r, ok := h.toRange(c, q)
				require.True(t, ok)
				got = r
				h.NoContent(c)
			}

			w := perform(t, &adminActor, http.MethodGet, "/range", "/range?"+tc.query, nil, capture)

			require.Equal(t, http.StatusNoContent, w.Code)
			require.NotNil(t, got.Start)
			require.NotNil(t, got.End)
			assert.True(t, tc.wantStart.Equal(*got.Start), "start %s", got.Start)
			assert.True(t, tc.wantEnd.Equal(*got.End), "end %s", got.End)
			assert.Equal(t, tc.contains, got.Contains(lastDayMorning))
		})
	}
}

func TestAccountingHandler_CashFlow_UnknownPeriod(t *testing.T) {
	h := NewAccountingHandler(accounting.NewService(accounting.Repositories{}, zap.NewNop()))

	w := perform(t, &adminActor, http.MethodGet, "/accounting/cash-flow",
		"/accounting/cash-flow?startDate=2024-01-01&endDate=2024-03-31&period=fortnight", nil, h.CashFlow)

	assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeInvalidPeriod)
}

type stubRenderer struct {
	out *render.Output
	err error
}

func (r stubRenderer) Render(context.Context, *report.FinancialReport, report.Format) (*render.Output, error) {
	return r.out, r.err
}

type stubStorage struct{}

func (stubStorage) Upload(context.Context, string, []byte, string) error { return nil }

func (stubStorage) DeleteObject(context.Context, string) error { return nil }

func (stubStorage) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	return "https://files.example.com/" + key, testutil.NewTestTime().Add(expiresIn), nil
}

func newStoredReport() *report.FinancialReport {
	return &report.FinancialReport{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReportType:        report.ReportMonthly,
		PeriodStart:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:         time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		GeneratedBy:       adminActor.UserID,
	}
}

func newReportHandler(reports *testutil.MockReportRepository, renderer reportapp.Renderer, storage reportapp.ObjectStorage) *ReportHandler {
	svc := reportapp.NewService(reportapp.Repositories{Reports: reports}, nil, renderer, storage, zap.NewNop())
	return NewReportHandler(svc)
}

func TestReportHandler_Render(t *testing.T) {
	const route = "/reports/:id/render"

	t.Run("streams the file as an attachment", func(t *testing.T) {
		reports := new(testutil.MockReportRepository)
		r := newStoredReport()
		reports.On("FindByID", mock.Anything, r.ID).Return(r, nil)
		h := newReportHandler(reports, stubRenderer{out: &render.Output{
			Data:        []byte("section,label,value\n"),
			ContentType: "text/csv; charset=utf-8",
			Extension:   "csv",
		}}, nil)

		w := perform(t, &adminActor, http.MethodGet, route, "/reports/"+r.ID.String()+"/render?format=csv", nil, h.Render)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, `attachment; filename="report-`+r.ID.String()+`.csv"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, "section,label,value\n", w.Body.String())
	})

	t.Run("json is not a file format", func(t *testing.T) {
		reports := new(testutil.MockReportRepository)
		h := newReportHandler(reports, stubRenderer{}, nil)
		r := newStoredReport()

		w := perform(t, &adminActor, http.MethodGet, route, "/reports/"+r.ID.String()+"/render?format=json", nil, h.Render)

		assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeInvalidFormat)
		reports.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("unknown report", func(t *testing.T) {
		reports := new(testutil.MockReportRepository)
		r := newStoredReport()
		reports.On("FindByID", mock.Anything, r.ID).Return(nil, shared.ErrNotFound)
		h := newReportHandler(reports, stubRenderer{}, nil)

		w := perform(t, &adminActor, http.MethodGet, route, "/reports/"+r.ID.String()+"/render?format=pdf", nil, h.Render)

		assertErrorCode(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	})
}

func TestReportHandler_Download(t *testing.T) {
	const route = "/reports/:id/download"

	t.Run("presigned url for the stored file", func(t *testing.T) {
		reports := new(testutil.MockReportRepository)
		r := newStoredReport()
		r.File = &report.RenderedFile{StorageKey: "reports/2024/03/" + r.ID.String() + ".xlsx", Format: report.FormatXLSX}
		reports.On("FindByID", mock.Anything, r.ID).Return(r, nil)
		h := newReportHandler(reports, stubRenderer{}, stubStorage{})

		w := perform(t, &adminActor, http.MethodGet, route, "/reports/"+r.ID.String()+"/download?expiresIn=60", nil, h.Download)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		data := dataMap(t, decodeResponse(t, w))
		assert.Equal(t, "https://files.example.com/"+r.File.StorageKey, data["url"])
	})

	t.Run("report without a file", func(t *testing.T) {
		reports := new(testutil.MockReportRepository)
		r := newStoredReport()
		reports.On("FindByID", mock.Anything, r.ID).Return(r, nil)
		h := newReportHandler(reports, stubRenderer{}, stubStorage{})

		w := perform(t, &adminActor, http.MethodGet, route, "/reports/"+r.ID.String()+"/download", nil, h.Download)

		assertErrorCode(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	})
}

func TestReportHandler_Generate(t *testing.T) {
	t.Run("file format without storage", func(t *testing.T) {
		reports := new(testutil.MockReportRepository)
		h := newReportHandler(reports, stubRenderer{}, nil)

		w := perform(t, &adminActor, http.MethodPost, "/reports", "/reports", GenerateReportRequest{
			StartDate: "2024-03-01", EndDate: "2024-03-31", ReportType: "monthly", Format: "xlsx",
		}, h.Generate)

		assertErrorCode(t, w, http.StatusServiceUnavailable, dto.ErrCodeStorageUnavailable)
		reports.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown report type", func(t *testing.T) {
		reports := new(testutil.MockReportRepository)
		h := newReportHandler(reports, stubRenderer{}, nil)

		w := perform(t, &adminActor, http.MethodPost, "/reports", "/reports", GenerateReportRequest{
			StartDate: "2024-03-01", EndDate: "2024-03-31", ReportType: "weekly",
		}, h.Generate)

		assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	})
}
