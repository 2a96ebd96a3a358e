package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tutorcenter/backend/internal/domain/identity"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prevTP := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(prevTP)
	})
	return sr
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr := setupTestTracer(t)
	router := okRouter(TracingWithConfig(TracingConfig{Enabled: false}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_AttributesFromRequestAndPrincipal(t *testing.T) {
	sr := setupTestTracer(t)
	svc := newTestJWTService(time.Hour)
	user := newTestUser(identity.RoleTeacher)

	router := gin.New()
	router.Use(RequestID(), Tracing(), SpanErrorMarker(), JWTAuthMiddleware(svc), TracingAttributeInjector())
	router.GET("/api/v1/students/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/42", nil)
	req.Header.Set("X-Request-ID", "trace-req-1")
	req.Header.Set(AuthHeaderKey, BearerPrefix+issueToken(t, svc, user))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/v1/students/:id", spans[0].Name())

	attrs := spanAttrs(spans[0])
	assert.Equal(t, "trace-req-1", attrs["request_id"].AsString())
	assert.Equal(t, user.ID.String(), attrs["user_id"].AsString())
	assert.Equal(t, "teacher", attrs["user_role"].AsString())
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestSpanErrorMarker(t *testing.T) {
	tests := []struct {
		status  int
		message string
	}{
		{http.StatusBadRequest, "Bad Request"},
		{http.StatusNotFound, "Not Found"},
		{http.StatusUnprocessableEntity, "Unprocessable Entity"},
		{http.StatusServiceUnavailable, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			sr := setupTestTracer(t)
			router := gin.New()
			router.Use(Tracing(), SpanErrorMarker())
			router.GET("/fail", func(c *gin.Context) { c.Status(tt.status) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

			spans := sr.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, codes.Error, spans[0].Status().Code)
			assert.Equal(t, tt.message, spans[0].Status().Description)
		})
	}
}

func TestSpanErrorMarker_NoSpan(t *testing.T) {
	router := gin.New()
	router.Use(SpanErrorMarker(), TracingAttributeInjector())
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() { router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil)) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetRequestID_TruncatesHeader(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	long := make([]byte, MaxRequestIDLength+50)
	for i := range long {
		long[i] = 'a'
	}
	c.Request.Header.Set("X-Request-ID", string(long))

	assert.Len(t, getRequestID(c), MaxRequestIDLength)

	c.Set(RequestIDKey, "from-context")
	assert.Equal(t, "from-context", getRequestID(c))
}
