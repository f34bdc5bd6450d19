package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mfg/backend/internal/domain/identity"
	"github.com/mfg/backend/internal/domain/shared"
	"github.com/mfg/backend/internal/infrastructure/logger"
	"github.com/mfg/backend/internal/infrastructure/persistence/tenant"
	"github.com/mfg/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// HeaderWorkstationID optionally names the shop-floor terminal a request
// originates from, so audit rows can record it
const HeaderWorkstationID = "X-Workstation-ID"

// TenantConfig configures the tenant identity middleware
type TenantConfig struct {
	// Users resolves the acting user's display name for audit rows
	Users identity.UserRepository

	// Workstations resolves the optional X-Workstation-ID header
	Workstations identity.WorkstationRepository

	Logger *zap.Logger
}

// TenantIdentity derives the tenant context from whichever principal the
// authentication middlewares established and attaches it to the request
// context. Requests without a principal pass through untenanted; scoped
// services fail closed on them, so public routes stay unaffected.
func TenantIdentity(config TenantConfig) gin.HandlerFunc {
	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		requestID := c.GetString("request_id")

		_, hasKey := GetAPIKey(c)
		_, hasClaims := GetJWTClaims(c)
		if !hasKey && !hasClaims {
			c.Next()
			return
		}

		tc, err := resolveTenant(c, config, log)
		if err != nil {
			status := http.StatusUnauthorized
			code := dto.ErrCodeUnauthorized
			message := "Authentication required"
			if errors.Is(err, shared.ErrForbidden) {
				status = http.StatusForbidden
				code = dto.ErrCodeForbidden
				message = "Access denied"
			}
			c.AbortWithStatusJSON(status,
				dto.NewErrorResponseWithRequestID(code, message, requestID))
			return
		}

		ctx := tenant.IntoContext(c.Request.Context(), tc)

		reqLogger := logger.FromContext(ctx)
		if !tc.Bypass {
			ctx, reqLogger = logger.WithCompanyID(ctx, reqLogger, tc.CompanyGUID.String())
		}
		if tc.UserGUID != nil {
			ctx, _ = logger.WithUserID(ctx, reqLogger, tc.UserGUID.String())
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func resolveTenant(c *gin.Context, config TenantConfig, log *zap.Logger) (tenant.Context, error) {
	if key, ok := GetAPIKey(c); ok {
		tc := tenant.Context{
			CompanyGUID: key.CompanyGUID,
			APIKeyGUID:  &key.GUID,
			UserName:    key.Name,
		}
		return attachWorkstation(c, config, log, tc)
	}

	claims, ok := GetJWTClaims(c)
	if !ok {
		return tenant.Context{}, shared.ErrUnauthorized
	}

	companyGUID, err := claims.GetCompanyUUID()
	if err != nil {
		return tenant.Context{}, shared.ErrUnauthorized
	}
	userGUID, err := claims.GetUserUUID()
	if err != nil {
		return tenant.Context{}, shared.ErrUnauthorized
	}

	role := identity.Role(claims.Role)
	tc := tenant.Context{
		CompanyGUID: companyGUID,
		Bypass:      role.BypassesTenantIsolation(),
		UserGUID:    &userGUID,
		UserName:    claims.Email,
		Role:        claims.Role,
	}

	// Denormalized display name for audit rows; the email from the
	// claims stays as fallback when the lookup fails
	if config.Users != nil {
		if user, err := config.Users.FindByGUID(c.Request.Context(), userGUID); err == nil {
			tc.UserName = user.FullName()
		} else if !errors.Is(err, shared.ErrNotFound) {
			log.Warn("user lookup for audit name failed",
				zap.String("user_guid", userGUID.String()),
				zap.Error(err))
		}
	}

	return attachWorkstation(c, config, log, tc)
}

func attachWorkstation(c *gin.Context, config TenantConfig, log *zap.Logger, tc tenant.Context) (tenant.Context, error) {
	header := c.GetHeader(HeaderWorkstationID)
	if header == "" || config.Workstations == nil {
		return tc, nil
	}

	guid, err := uuid.Parse(header)
	if err != nil {
		return tenant.Context{}, shared.ErrForbidden
	}

	ws, err := config.Workstations.FindByGUID(c.Request.Context(), guid)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return tenant.Context{}, shared.ErrForbidden
		}
		log.Warn("workstation lookup failed",
			zap.String("workstation_guid", guid.String()),
			zap.Error(err))
		return tc, nil
	}

	// A workstation belongs to one company; claiming another tenant's
	// terminal is an isolation violation
	if !tc.Bypass && ws.CompanyGUID != tc.CompanyGUID {
		return tenant.Context{}, shared.ErrForbidden
	}

	tc.WorkstationGUID = &ws.GUID
	tc.WorkstationName = ws.DisplayName()
	return tc, nil
}
