package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mfg/backend/internal/domain/identity"
	"github.com/mfg/backend/internal/domain/shared"
	"github.com/mfg/backend/internal/infrastructure/auth"
	"github.com/mfg/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// ContextKeyAPIKey holds the authenticated *identity.APIKey
const ContextKeyAPIKey = "api_key"

// HeaderAPIKey carries the machine credential on sync agent requests
const HeaderAPIKey = "X-API-Key"

// APIKeyAuth returns a middleware that authenticates requests carrying an
// X-API-Key header. Requests without the header pass through untouched so
// the JWT middleware can handle them.
func APIKeyAuth(repo identity.APIKeyRepository, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		presented := c.GetHeader(HeaderAPIKey)
		if presented == "" {
			c.Next()
			return
		}

		requestID := c.GetString("request_id")

		if !auth.ValidAPIKeyFormat(presented) {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(
					dto.ErrCodeUnauthorized, "Invalid API key", requestID))
			return
		}

		key, err := repo.FindActiveByHash(c.Request.Context(), auth.HashAPIKey(presented))
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				logger.Error("api key lookup failed",
					zap.String("request_id", requestID),
					zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					dto.NewErrorResponseWithRequestID(
						dto.ErrCodeInternal, "Internal server error", requestID))
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(
					dto.ErrCodeUnauthorized, "Invalid API key", requestID))
			return
		}

		// Best effort; a failed touch must not fail the request
		if err := repo.TouchLastUsed(c.Request.Context(), key.GUID); err != nil {
			logger.Warn("api key last_used update failed",
				zap.String("request_id", requestID),
				zap.String("api_key_guid", key.GUID.String()),
				zap.Error(err))
		}

		c.Set(ContextKeyAPIKey, key)
		c.Next()
	}
}

// GetAPIKey retrieves the authenticated API key from the gin context
func GetAPIKey(c *gin.Context) (*identity.APIKey, bool) {
	value, exists := c.Get(ContextKeyAPIKey)
	if !exists {
		return nil, false
	}
	key, ok := value.(*identity.APIKey)
	return key, ok
}
