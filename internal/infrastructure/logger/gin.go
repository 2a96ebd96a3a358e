package logger

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GinOption configures GinMiddleware
type GinOption func(*ginOptions)

type ginOptions struct {
	quietPaths []string
}

// WithQuietPaths logs successful requests to paths at debug level. Used for
// health probes that would otherwise drown the access log.
func WithQuietPaths(paths ...string) GinOption {
	return func(o *ginOptions) { o.quietPaths = append(o.quietPaths, paths...) }
}

// GinMiddleware writes one access log entry per request and puts a
// request-scoped logger on the request context for FromContext and L.
// The user and role are read after the handler chain ran, so they reflect
// what the authentication middleware established.
func GinMiddleware(base *zap.Logger, opts ...GinOption) gin.HandlerFunc {
	var o ginOptions
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetString("request_id")
		reqLogger := base.With(
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		ctx := WithRequestID(WithContext(c.Request.Context(), reqLogger), requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		userID := GetUserID(c.Request.Context())
		if userID == "" {
			userID = c.GetString("user_id")
		}
		if userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}
		if role := GetRole(c.Request.Context()); role != "" {
			fields = append(fields, zap.String("role", role))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		reqLogger.Log(accessLevel(status, slices.Contains(o.quietPaths, c.FullPath())), "HTTP Request", fields...)
	}
}

func accessLevel(status int, quiet bool) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	case quiet:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// Recovery turns a handler panic into a 500 response in the standard error
// envelope and logs the stack
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				requestID := c.GetString("request_id")
				base.Error("Panic recovered",
					zap.String("request_id", requestID),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", err),
					zap.Stack("stacktrace"),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":      "INTERNAL_ERROR",
						"message":   "internal server error",
						"requestId": requestID,
					},
				})
			}
		}()
		c.Next()
	}
}
