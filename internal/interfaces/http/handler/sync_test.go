package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appproduction "github.com/mfg/backend/internal/application/production"
	"github.com/mfg/backend/internal/domain/identity"
	"github.com/mfg/backend/internal/infrastructure/auth"
	"github.com/mfg/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withRole makes the JWT claims visible to the handler the way the JWT
// middleware would, on top of the injected tenant identity
func withRole(role identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyJWTClaims, &auth.Claims{Role: string(role)})
		c.Next()
	}
}

func newSyncRouter(t *testing.T, f *productionFixture, role identity.Role) *gin.Engine {
	t.Helper()

	router := gin.New()
	api := router.Group("/api/v1", withRole(role), withTenant(f.company))
	NewSyncHandler(appproduction.NewSyncService(f.db, 1000)).RegisterRoutes(api)
	return router
}

func TestSyncHandler_Projects(t *testing.T) {
	f := newProductionFixture(t)
	router := newSyncRouter(t, f, identity.RoleCompanyAdmin)
	f.router = router

	body := fmt.Sprintf(`[{"guid":%q,"company_guid":%q,"code":"PRJ-1"}]`,
		uuid.NewString(), f.company)

	w := f.do(http.MethodPost, "/api/v1/sync/projects", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"inserted":1`)
	assert.Contains(t, w.Body.String(), `"updated":0`)
}

func TestSyncHandler_OperatorForbidden(t *testing.T) {
	f := newProductionFixture(t)
	f.router = newSyncRouter(t, f, identity.RoleOperator)

	w := f.do(http.MethodPost, "/api/v1/sync/projects", `[]`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_FORBIDDEN")
}

func TestSyncHandler_APIKeyScopeRequired(t *testing.T) {
	f := newProductionFixture(t)

	key := &identity.APIKey{
		GUID:        uuid.New(),
		CompanyGUID: f.company,
		Name:        "readonly agent",
		Scopes:      identity.ScopeRead,
		IsActive:    true,
	}

	router := gin.New()
	api := router.Group("/api/v1",
		func(c *gin.Context) { c.Set(middleware.ContextKeyAPIKey, key); c.Next() },
		withTenant(f.company))
	NewSyncHandler(appproduction.NewSyncService(f.db, 1000)).RegisterRoutes(api)
	f.router = router

	w := f.do(http.MethodPost, "/api/v1/sync/projects", `[]`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "sync:write")
}

func TestSyncHandler_ForeignBatchForbidden(t *testing.T) {
	f := newProductionFixture(t)
	f.router = newSyncRouter(t, f, identity.RoleCompanyAdmin)

	body := fmt.Sprintf(`[{"guid":%q,"company_guid":%q,"code":"PRJ-X"}]`,
		uuid.NewString(), uuid.NewString())

	w := f.do(http.MethodPost, "/api/v1/sync/projects", body)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSyncHandler_ReferentialErrorUnprocessable(t *testing.T) {
	f := newProductionFixture(t)
	f.router = newSyncRouter(t, f, identity.RoleCompanyAdmin)

	body := fmt.Sprintf(`[{"guid":%q,"company_guid":%q,"project_guid":%q,"code":"CMP-1","quantity":1}]`,
		uuid.NewString(), f.company, uuid.NewString())

	w := f.do(http.MethodPost, "/api/v1/sync/components", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_REFERENTIAL_INTEGRITY")
}

func TestSyncHandler_MalformedBody(t *testing.T) {
	f := newProductionFixture(t)
	f.router = newSyncRouter(t, f, identity.RoleCompanyAdmin)

	w := f.do(http.MethodPost, "/api/v1/sync/projects", `{"not":"an array"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
