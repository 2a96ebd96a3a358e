package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tutorcenter/backend/internal/domain/shared"
	"github.com/tutorcenter/backend/internal/infrastructure/logger"
	"github.com/tutorcenter/backend/internal/interfaces/http/dto"
)

// CORSConfig lists the browser origins allowed to call the API and what
// they may send and read
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig allows no origins, so cross-origin requests are refused
// until the deployment names its front-ends
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Request-ID", "Accept", "Origin", "Cache-Control"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// CORS applies DefaultCORSConfig
func CORS() gin.HandlerFunc {
	return CORSWithConfig(DefaultCORSConfig())
}

type corsPolicy struct {
	any         bool
	origins     map[string]struct{}
	credentials bool
	headers     [][2]string
}

// allow returns the Access-Control-Allow-Origin value for origin, if any
func (p corsPolicy) allow(origin string) (string, bool) {
	if p.any {
		return "*", true
	}
	if _, ok := p.origins[origin]; ok && origin != "" {
		return origin, true
	}
	return "", false
}

func newCORSPolicy(cfg CORSConfig) corsPolicy {
	p := corsPolicy{origins: make(map[string]struct{}, len(cfg.AllowOrigins))}
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			p.any = true
		}
		p.origins[o] = struct{}{}
	}
	// credentials are never combined with a wildcard origin
	p.credentials = cfg.AllowCredentials && !p.any

	p.headers = [][2]string{
		{"Access-Control-Allow-Headers", strings.Join(cfg.AllowHeaders, ", ")},
		{"Access-Control-Allow-Methods", strings.Join(cfg.AllowMethods, ", ")},
	}
	if len(cfg.ExposeHeaders) > 0 {
		p.headers = append(p.headers, [2]string{"Access-Control-Expose-Headers", strings.Join(cfg.ExposeHeaders, ", ")})
	}
	if cfg.MaxAge > 0 {
		p.headers = append(p.headers, [2]string{"Access-Control-Max-Age", strconv.Itoa(int(cfg.MaxAge.Seconds()))})
	}
	return p
}

// CORSWithConfig answers preflight requests with 204 and decorates
// responses to allowed origins. Requests from other origins are served
// without CORS headers and left to the browser to block.
func CORSWithConfig(cfg CORSConfig) gin.HandlerFunc {
	policy := newCORSPolicy(cfg)

	return func(c *gin.Context) {
		if allowed, ok := policy.allow(c.GetHeader("Origin")); ok {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", allowed)
			if policy.credentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			for _, kv := range policy.headers {
				h.Set(kv[0], kv[1])
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RequestIDKey is the gin context key holding the request ID
const RequestIDKey = "request_id"

// RequestID assigns every request an ID, honouring an incoming X-Request-ID,
// and records it with the caller's IP and user agent on the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		ctx = shared.WithRequestMeta(ctx, shared.RequestMeta{
			RequestID: requestID,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// BodyLimit rejects request bodies larger than maxBytes
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeRequestTooLarge, "Request body too large", c.GetString(RequestIDKey)))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// SecurityConfig selects the optional security headers
type SecurityConfig struct {
	HSTSEnabled           bool
	HSTSMaxAge            int // seconds
	HSTSIncludeSubdomains bool
	HSTSPreload           bool

	CSPEnabled   bool
	CSPDirective string

	PermissionsPolicyEnabled   bool
	PermissionsPolicyDirective string
}

// DefaultSecurityConfig returns the default header set. HSTS is off until the
// service runs behind HTTPS.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,

		CSPEnabled:   true,
		CSPDirective: "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self' data:; connect-src 'self'; frame-ancestors 'none'; base-uri 'self'; form-action 'self'",

		PermissionsPolicyEnabled:   true,
		PermissionsPolicyDirective: "accelerometer=(), camera=(), geolocation=(), gyroscope=(), magnetometer=(), microphone=(), payment=(), usb=()",
	}
}

// Secure applies DefaultSecurityConfig
func Secure() gin.HandlerFunc {
	return SecureWithConfig(DefaultSecurityConfig())
}

// securityHeaders resolves cfg into the fixed header list sent on every response
func securityHeaders(cfg SecurityConfig) [][2]string {
	headers := [][2]string{
		{"X-Frame-Options", "DENY"},
		{"X-XSS-Protection", "1; mode=block"},
		{"X-Content-Type-Options", "nosniff"},
		{"Referrer-Policy", "strict-origin-when-cross-origin"},
	}
	if cfg.CSPEnabled && cfg.CSPDirective != "" {
		headers = append(headers, [2]string{"Content-Security-Policy", cfg.CSPDirective})
	}
	if cfg.HSTSEnabled {
		hsts := fmt.Sprintf("max-age=%d", cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		if cfg.HSTSPreload {
			hsts += "; preload"
		}
		headers = append(headers, [2]string{"Strict-Transport-Security", hsts})
	}
	if cfg.PermissionsPolicyEnabled && cfg.PermissionsPolicyDirective != "" {
		headers = append(headers, [2]string{"Permissions-Policy", cfg.PermissionsPolicyDirective})
	}
	return headers
}

// SecureWithConfig adds the headers selected by cfg to every response
func SecureWithConfig(cfg SecurityConfig) gin.HandlerFunc {
	headers := securityHeaders(cfg)
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range headers {
			h.Set(kv[0], kv[1])
		}
		c.Next()
	}
}
