package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CORSConfig holds CORS middleware configuration
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig returns a restrictive default configuration.
// An empty AllowOrigins list rejects cross-origin requests, so deployments
// must opt in explicitly.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			"X-Request-ID", "X-API-Key", "X-Workstation-ID",
		},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// CORS returns a CORS middleware with custom allowed origins
func CORS(allowOrigins []string) gin.HandlerFunc {
	config := DefaultCORSConfig()
	config.AllowOrigins = allowOrigins
	return CORSWithConfig(config)
}

// CORSWithConfig returns a CORS middleware with the given configuration
func CORSWithConfig(config CORSConfig) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]bool, len(config.AllowOrigins))
	for _, origin := range config.AllowOrigins {
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if origin != "" && (allowAll || allowed[origin]) {
			setCORSHeaders(c, origin, config)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func setCORSHeaders(c *gin.Context, origin string, config CORSConfig) {
	h := c.Writer.Header()
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Methods", strings.Join(config.AllowMethods, ", "))
	h.Set("Access-Control-Allow-Headers", strings.Join(config.AllowHeaders, ", "))
	if len(config.ExposeHeaders) > 0 {
		h.Set("Access-Control-Expose-Headers", strings.Join(config.ExposeHeaders, ", "))
	}
	if config.AllowCredentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	if config.MaxAge > 0 {
		h.Set("Access-Control-Max-Age", strconv.Itoa(int(config.MaxAge.Seconds())))
	}
	h.Add("Vary", "Origin")
}

// RequestID attaches a unique id to every request. An id supplied by the
// client in X-Request-ID is reused so ids stay stable across proxies.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Request.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}

		c.Set("request_id", requestID)
		c.Set("X-Request-ID", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()
	}
}

func generateRequestID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// SecurityConfig controls the response security headers
type SecurityConfig struct {
	HSTS                  bool
	HSTSMaxAge            int
	ContentSecurityPolicy bool
	PermissionsPolicy     bool
}

// DefaultSecurityConfig returns defaults suitable for an API behind TLS
// termination. HSTS is off because the proxy usually sets it.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTS:                  false,
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: true,
		PermissionsPolicy:     true,
	}
}

// Secure returns a middleware that sets common security headers
func Secure() gin.HandlerFunc {
	return SecureWithConfig(DefaultSecurityConfig())
}

// SecureWithConfig returns a security headers middleware with the given config
func SecureWithConfig(config SecurityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if config.HSTS {
			h.Set("Strict-Transport-Security",
				fmt.Sprintf("max-age=%d; includeSubDomains", config.HSTSMaxAge))
		}
		if config.ContentSecurityPolicy {
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		}
		if config.PermissionsPolicy {
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		}

		c.Next()
	}
}
