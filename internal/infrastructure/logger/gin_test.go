package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func findHTTPLog(t *testing.T, logs []observer.LoggedEntry) observer.LoggedEntry {
	t.Helper()
	for _, entry := range logs {
		if entry.Message == "HTTP Request" {
			return entry
		}
	}
	require.FailNow(t, "HTTP Request log should exist")
	return observer.LoggedEntry{}
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-123")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/students", func(c *gin.Context) {
		assert.Equal(t, "req-123", GetRequestID(c.Request.Context()))
		c.Set("user_id", "user-1")
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/students?status=active", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	entry := findHTTPLog(t, recorded.All())
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, "/students", fields["path"])
	assert.Equal(t, "status=active", fields["query"])
	assert.Equal(t, "user-1", fields["user_id"])
}

func TestGinMiddleware_StatusLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusNotFound, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			router := gin.New()
			router.Use(GinMiddleware(zap.New(core)))
			router.GET("/x", func(c *gin.Context) { c.Status(tt.status) })

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/x", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.level, findHTTPLog(t, recorded.All()).Level)
		})
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/panic", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "Panic recovered", logs[0].Message)
}

func TestGinMiddleware_UserFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	router.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithUser(c.Request.Context(), "teacher-7", "teacher"))
		c.Next()
	})
	router.GET("/payments", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest(http.MethodGet, "/payments", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	fields := findHTTPLog(t, recorded.All()).ContextMap()
	assert.Equal(t, "teacher-7", fields["user_id"])
	assert.Equal(t, "teacher", fields["role"])
}

func TestGinMiddleware_QuietPaths(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.DebugLevel)

	router := gin.New()
	router.Use(GinMiddleware(zap.New(core), WithQuietPaths("/health")))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/down", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, zapcore.DebugLevel, findHTTPLog(t, recorded.All()).Level)

	router = gin.New()
	router.Use(GinMiddleware(zap.New(core), WithQuietPaths("/down")))
	router.GET("/down", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })
	recorded.TakeAll()
	req, _ = http.NewRequest(http.MethodGet, "/down", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, zapcore.ErrorLevel, findHTTPLog(t, recorded.All()).Level)
}

func TestGinMiddleware_LoggerOnContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/x", func(c *gin.Context) {
		FromContext(c.Request.Context()).Info("inside handler")
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest(http.MethodGet, "/x", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	logs := recorded.FilterMessage("inside handler").All()
	require.Len(t, logs, 1)
	assert.Equal(t, "/x", logs[0].ContextMap()["path"])
}
