package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	academicapp "github.com/tutorcenter/backend/internal/application/academic"
	"github.com/tutorcenter/backend/internal/application/accounting"
	appevent "github.com/tutorcenter/backend/internal/application/event"
	financeapp "github.com/tutorcenter/backend/internal/application/finance"
	identityapp "github.com/tutorcenter/backend/internal/application/identity"
	reportapp "github.com/tutorcenter/backend/internal/application/report"
	"github.com/tutorcenter/backend/internal/infrastructure/auth"
	"github.com/tutorcenter/backend/internal/infrastructure/cache"
	"github.com/tutorcenter/backend/internal/infrastructure/config"
	"github.com/tutorcenter/backend/internal/infrastructure/event"
	"github.com/tutorcenter/backend/internal/infrastructure/persistence"
	"github.com/tutorcenter/backend/internal/infrastructure/render"
	"github.com/tutorcenter/backend/internal/infrastructure/storage"
	"github.com/tutorcenter/backend/internal/interfaces/http/handler"
	"github.com/tutorcenter/backend/internal/interfaces/http/middleware"
	"github.com/tutorcenter/backend/internal/interfaces/http/router"
	"github.com/tutorcenter/backend/tests/testutil"
)

const (
	adminEmail    = "admin@tutorcenter.test"
	adminPassword = "AdminPass123!"
)

// TestServer wires the full HTTP stack over a real database
type TestServer struct {
	DB     *TestDB
	Engine *gin.Engine
	Bus    *event.AsyncEventBus
}

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// NewTestServer builds the application the way the server binary does,
// with in-memory token, cache and object storage backends and no scheduler
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	tdb := NewTestDB(t)
	log := zap.NewNop()
	ctx := context.Background()

	userRepo := persistence.NewGormUserRepository(tdb.DB)
	studentRepo := persistence.NewGormStudentRepository(tdb.DB)
	lessonTypeRepo := persistence.NewGormLessonTypeRepository(tdb.DB)
	timeEntryRepo := persistence.NewGormTimeEntryRepository(tdb.DB)
	attendanceRepo := persistence.NewGormAttendanceRepository(tdb.DB)
	paymentRepo := persistence.NewGormPaymentRepository(tdb.DB)
	teacherPaymentRepo := persistence.NewGormTeacherPaymentRepository(tdb.DB)
	expenseRepo := persistence.NewGormExpenseRepository(tdb.DB)
	reportRepo := persistence.NewGormFinancialReportRepository(tdb.DB)
	auditRepo := persistence.NewGormAuditLogRepository(tdb.DB)
	receipts := persistence.NewGormReceiptCounter(tdb.DB)

	bus := event.NewAsyncEventBus(log, event.WithQueueSize(256), event.WithWorkers(1))
	recorder := appevent.NewAuditRecorder(auditRepo, log)
	bus.Subscribe(recorder, recorder.EventTypes()...)
	require.NoError(t, bus.Start(ctx))
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = bus.Stop(stopCtx)
	})

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "integration-secret-at-least-32-characters",
		AccessTokenExpiration: time.Hour,
		Issuer:                "tutor-center-test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()

	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	userService := identityapp.NewUserService(userRepo, jwtService, blacklist, bus, log)
	require.NoError(t, userService.EnsureAdmin(ctx, "Center Admin", adminEmail, adminPassword))

	academicService := academicapp.NewService(academicapp.Repositories{
		Students:    studentRepo,
		LessonTypes: lessonTypeRepo,
		TimeEntries: timeEntryRepo,
		Attendance:  attendanceRepo,
		Users:       userRepo,
	}, log, academicapp.WithPublisher(bus))

	paymentService := financeapp.NewPaymentService(paymentRepo, studentRepo, receipts, log, financeapp.WithPublisher(bus))
	teacherPaymentService := financeapp.NewTeacherPaymentService(teacherPaymentRepo, userRepo, receipts, log, financeapp.WithPublisher(bus))
	expenseService := financeapp.NewExpenseService(expenseRepo, log, financeapp.WithPublisher(bus))

	accountingService := accounting.NewService(accounting.Repositories{
		Students:        studentRepo,
		TimeEntries:     timeEntryRepo,
		Users:           userRepo,
		Payments:        paymentRepo,
		TeacherPayments: teacherPaymentRepo,
		Expenses:        expenseRepo,
	}, log, accounting.WithCache(cache.NewInMemoryJSONCache(), time.Minute))

	reportService := reportapp.NewService(reportapp.Repositories{
		Reports:     reportRepo,
		Students:    studentRepo,
		Users:       userRepo,
		TimeEntries: timeEntryRepo,
		Attendance:  attendanceRepo,
	}, accountingService, render.NewRenderer(nil, log), storage.NewMemoryObjectStorage("https://files.tutorcenter.test"), log,
		reportapp.WithPublisher(bus))

	engine := router.NewEngine(router.EngineConfig{
		ServiceName: "tutor-center-test",
		HTTP:        config.HTTPConfig{MaxBodySize: 1 << 20},
		Swagger:     config.SwaggerConfig{Enabled: false},
		JWT:         jwtService,
		Blacklist:   blacklist,
		Logger:      log,
	}, router.Handlers{
		Auth:           handler.NewAuthHandler(authService),
		User:           handler.NewUserHandler(userService),
		Student:        handler.NewStudentHandler(academicService),
		LessonType:     handler.NewLessonTypeHandler(academicService),
		TimeEntry:      handler.NewTimeEntryHandler(academicService),
		Attendance:     handler.NewAttendanceHandler(academicService),
		Payment:        handler.NewPaymentHandler(paymentService),
		TeacherPayment: handler.NewTeacherPaymentHandler(teacherPaymentService),
		Expense:        handler.NewExpenseHandler(expenseService),
		Accounting:     handler.NewAccountingHandler(accountingService),
		Report:         handler.NewReportHandler(reportService),
		Audit:          handler.NewAuditHandler(appevent.NewAuditService(auditRepo)),
		Health:         handler.NewHealthHandler("tutor-center-test", "test", tdb.Database, nil),
	})

	return &TestServer{DB: tdb, Engine: engine, Bus: bus}
}

// Request performs an HTTP request against the engine
func (s *TestServer) Request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, testutil.ToJSONReader(t, body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Engine.ServeHTTP(w, req)
	return w
}

// Login returns an access token for the given credentials
func (s *TestServer) Login(t *testing.T, email, password string) string {
	t.Helper()

	w := s.Request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	token, _ := data["accessToken"].(string)
	require.NotEmpty(t, token)
	return token
}

// RegisterApprovedTeacher registers a teacher and approves the account as admin
func (s *TestServer) RegisterApprovedTeacher(t *testing.T, adminToken, name, email, password string) (string, string) {
	t.Helper()

	w := s.Request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
		"subject":  "Mathematics",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	teacherID, _ := decodeData(t, w)["id"].(string)
	require.NotEmpty(t, teacherID)

	w = s.Request(t, http.MethodPost, "/api/v1/users/"+teacherID+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	return teacherID, s.Login(t, email, password)
}

// Create posts body to path and returns the created resource's id
func (s *TestServer) Create(t *testing.T, path, token string, body any) (string, map[string]any) {
	t.Helper()

	w := s.Request(t, http.MethodPost, path, token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeData(t, w)
	id, _ := data["id"].(string)
	require.NotEmpty(t, id)
	return id, data
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	return testutil.DataObject(t, testutil.DecodeEnvelope(t, w))
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []any {
	t.Helper()
	return testutil.DataList(t, testutil.DecodeEnvelope(t, w))
}
