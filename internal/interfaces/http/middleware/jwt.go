package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mfg/backend/internal/infrastructure/auth"
	"github.com/mfg/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Context keys set by the JWT middleware
const (
	ContextKeyJWTClaims   = "jwt_claims"
	ContextKeyUserGUID    = "jwt_user_guid"
	ContextKeyCompanyGUID = "jwt_company_guid"
	ContextKeyEmail       = "jwt_email"
	ContextKeyRole        = "jwt_role"
)

// JWTMiddlewareConfig configures the JWT authentication middleware
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService

	// TokenBlacklist is optional; when set, revoked tokens are rejected
	TokenBlacklist auth.TokenBlacklist

	// SkipPaths lists exact paths that bypass authentication
	SkipPaths []string

	// SkipPathPrefixes lists path prefixes that bypass authentication
	SkipPathPrefixes []string

	Logger *zap.Logger
}

// JWTAuth returns a middleware that authenticates requests with a Bearer
// token. Requests already authenticated by an API key pass through.
func JWTAuth(config JWTMiddlewareConfig) gin.HandlerFunc {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range config.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}
		for _, prefix := range config.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		// An API key principal established earlier in the chain wins
		if _, ok := c.Get(ContextKeyAPIKey); ok {
			c.Next()
			return
		}

		tokenString, err := extractBearerToken(c)
		if err != nil {
			handleAuthError(c, err)
			return
		}

		claims, err := config.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			handleAuthError(c, err)
			return
		}

		if config.TokenBlacklist != nil {
			ctx := c.Request.Context()

			blacklisted, err := config.TokenBlacklist.IsBlacklisted(ctx, claims.ID)
			if err != nil {
				// Blacklist lookup failures must not lock everyone out
				logger.Warn("token blacklist check failed",
					zap.String("request_id", c.GetString("request_id")),
					zap.Error(err))
			} else if blacklisted {
				handleAuthError(c, auth.ErrTokenBlacklisted)
				return
			}

			issuedAt := time.Time{}
			if claims.IssuedAt != nil {
				issuedAt = claims.IssuedAt.Time
			}
			invalidated, err := config.TokenBlacklist.IsUserTokenInvalidated(ctx, claims.UserGUID, issuedAt)
			if err != nil {
				logger.Warn("user token invalidation check failed",
					zap.String("request_id", c.GetString("request_id")),
					zap.Error(err))
			} else if invalidated {
				handleAuthError(c, auth.ErrTokenBlacklisted)
				return
			}
		}

		c.Set(ContextKeyJWTClaims, claims)
		c.Set(ContextKeyUserGUID, claims.UserGUID)
		c.Set(ContextKeyCompanyGUID, claims.CompanyGUID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyRole, claims.Role)

		c.Next()
	}
}

// extractBearerToken pulls the token out of the Authorization header
func extractBearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", auth.ErrInvalidToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", auth.ErrInvalidToken
	}

	return parts[1], nil
}

// handleAuthError aborts the request with a 401 envelope
func handleAuthError(c *gin.Context, err error) {
	code := dto.ErrCodeUnauthorized
	message := "Authentication required"

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code = dto.ErrCodeTokenExpired
		message = "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		code = dto.ErrCodeTokenInvalid
		message = "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrInvalidTokenType),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingCompanyID),
		errors.Is(err, auth.ErrMissingUserID):
		code = dto.ErrCodeTokenInvalid
		message = "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, c.GetString("request_id")))
}

// GetJWTClaims retrieves validated claims from the gin context
func GetJWTClaims(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(ContextKeyJWTClaims)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}
