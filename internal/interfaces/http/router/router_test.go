package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorcenter/backend/internal/domain/identity"
	"github.com/tutorcenter/backend/internal/domain/shared"
	"github.com/tutorcenter/backend/internal/infrastructure/auth"
	"github.com/tutorcenter/backend/internal/infrastructure/config"
	"github.com/tutorcenter/backend/internal/interfaces/http/handler"
	"github.com/tutorcenter/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine).Use(func(c *gin.Context) {
		c.Header("X-Api", "yes")
		c.Next()
	})

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "yes", w.Header().Get("X-Api"))
}

func TestDomainGroup(t *testing.T) {
	ok := func(body string) gin.HandlerFunc {
		return func(c *gin.Context) { c.String(http.StatusOK, body) }
	}

	g := NewDomainGroup("students", "/students")
	g.Use(func(c *gin.Context) {
		c.Header("X-Group", "students")
		c.Next()
	})
	g.POST("", ok("create"))
	g.GET("/:id", ok("get"))
	g.PUT("/:id/status", ok("status"))
	g.DELETE("/:id", ok("delete"))
	g.Group("stats", "/stats").GET("/summary", ok("summary"))

	assert.Equal(t, "students", g.Name())
	assert.Equal(t, "/students", g.Prefix())
	assert.Equal(t, []Route{
		{Method: http.MethodPost, Path: "/students"},
		{Method: http.MethodGet, Path: "/students/:id"},
		{Method: http.MethodPut, Path: "/students/:id/status"},
		{Method: http.MethodDelete, Path: "/students/:id"},
		{Method: http.MethodGet, Path: "/students/stats/summary"},
	}, g.Routes())

	engine := gin.New()
	g.RegisterRoutes(engine.Group("/api/v1"))

	tests := []struct {
		method, path, body string
	}{
		{http.MethodPost, "/api/v1/students", "create"},
		{http.MethodGet, "/api/v1/students/42", "get"},
		{http.MethodPut, "/api/v1/students/42/status", "status"},
		{http.MethodDelete, "/api/v1/students/42", "delete"},
		{http.MethodGet, "/api/v1/students/stats/summary", "summary"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
			assert.Equal(t, "students", w.Header().Get("X-Group"))
		})
	}
}

func TestAPIGroups_RouteTable(t *testing.T) {
	var routes []string
	for _, g := range APIGroups(Handlers{}, nil) {
		for _, r := range g.Routes() {
			routes = append(routes, r.Method+" "+r.Path)
		}
	}

	for _, want := range []string{
		"POST /auth/register",
		"POST /auth/login",
		"GET /health",
		"GET /accounting/students",
		"GET /accounting/teachers",
		"GET /accounting/expenses",
		"GET /accounting/profit-loss",
		"GET /accounting/cash-flow",
		"GET /accounting/metrics",
		"POST /reports",
		"GET /reports",
		"GET /reports/:id",
		"POST /reports/:id/archive",
		"POST /reports/:id/unarchive",
		"GET /reports/:id/render",
		"GET /reports/:id/download",
		"POST /payments/:id/complete",
		"POST /payments/:id/fail",
		"POST /payments/:id/cancel",
		"POST /payments/:id/refund",
		"POST /teacher-payments/:id/approve",
		"POST /teacher-payments/:id/pay",
		"POST /teacher-payments/:id/cancel",
		"POST /expenses/:id/approve",
		"POST /expenses/:id/reject",
		"PUT /students/:id/status",
		"DELETE /time-entries/:id",
		"GET /attendance/stats",
		"POST /users/:id/approve",
		"POST /users/:id/suspend",
		"GET /users/teachers",
		"GET /audit-logs",
	} {
		assert.Contains(t, routes, want)
	}
}

func newTestEngine(t *testing.T, swagger config.SwaggerConfig) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "router-test-secret-at-least-32-bytes!",
		AccessTokenExpiration: time.Hour,
		Issuer:                "tutorcenter-test",
	})
	limiter := middleware.NewRateLimiter(100, time.Minute)
	t.Cleanup(limiter.Stop)

	engine := NewEngine(EngineConfig{
		ServiceName: "tutorcenter-test",
		HTTP:        config.HTTPConfig{MaxBodySize: 1 << 20},
		Swagger:     swagger,
		JWT:         jwtService,
		RateLimiter: limiter,
	}, Handlers{Health: handler.NewHealthHandler("Tutor Center API", "test", nil, nil)})
	return engine, jwtService
}

func bearer(t *testing.T, svc *auth.JWTService, role identity.Role) string {
	t.Helper()
	token, err := svc.GenerateAccessToken(&identity.User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              "Router Test",
		Email:             "router@example.com",
		Role:              role,
		Status:            identity.ApprovalApproved,
	})
	require.NoError(t, err)
	return middleware.BearerPrefix + token.Token
}

func TestNewEngine_PublicRoutes(t *testing.T) {
	engine, _ := newTestEngine(t, config.SwaggerConfig{})

	for _, path := range []string{"/health", "/api/v1/health", "/api/v1/system/info"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"), path)
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"), path)
	}
}

func TestNewEngine_Authentication(t *testing.T) {
	engine, jwtService := newTestEngine(t, config.SwaggerConfig{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/students", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	adminOnly := []string{"/api/v1/reports", "/api/v1/audit-logs", "/api/v1/users/teachers", "/api/v1/accounting/metrics"}
	teacher := bearer(t, jwtService, identity.RoleTeacher)
	for _, path := range adminOnly {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(middleware.AuthHeaderKey, teacher)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
}

func TestNewEngine_SwaggerDisabled(t *testing.T) {
	engine, _ := newTestEngine(t, config.SwaggerConfig{Enabled: false})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewEngine_SwaggerRequiresAuth(t *testing.T) {
	engine, jwtService := newTestEngine(t, config.SwaggerConfig{Enabled: true, RequireAuth: true})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	req.Header.Set(middleware.AuthHeaderKey, bearer(t, jwtService, identity.RoleAdmin))
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.NotEqual(t, http.StatusUnauthorized, w.Code)
}
