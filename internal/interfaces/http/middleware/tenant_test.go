package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mfg/backend/internal/domain/identity"
	"github.com/mfg/backend/internal/domain/shared"
	"github.com/mfg/backend/internal/infrastructure/auth"
	"github.com/mfg/backend/internal/infrastructure/persistence/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserRepo struct {
	user *identity.User
}

func (r *stubUserRepo) FindByGUID(_ context.Context, guid uuid.UUID) (*identity.User, error) {
	if r.user != nil && r.user.GUID == guid {
		return r.user, nil
	}
	return nil, shared.ErrNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, _ string) (*identity.User, error) {
	return nil, shared.ErrNotFound
}

func (r *stubUserRepo) Save(_ context.Context, _ *identity.User) error { return nil }

type stubWorkstationRepo struct {
	ws *identity.Workstation
}

func (r *stubWorkstationRepo) FindByGUID(_ context.Context, guid uuid.UUID) (*identity.Workstation, error) {
	if r.ws != nil && r.ws.GUID == guid {
		return r.ws, nil
	}
	return nil, shared.ErrNotFound
}

type stubAPIKeyRepo struct {
	key *identity.APIKey
}

func (r *stubAPIKeyRepo) FindActiveByHash(_ context.Context, hash string) (*identity.APIKey, error) {
	if r.key != nil && r.key.KeyHash == hash {
		return r.key, nil
	}
	return nil, shared.ErrNotFound
}

func (r *stubAPIKeyRepo) TouchLastUsed(_ context.Context, _ uuid.UUID) error { return nil }
func (r *stubAPIKeyRepo) Save(_ context.Context, _ *identity.APIKey) error   { return nil }

func tenantTestRouter(t *testing.T, jwtService *auth.JWTService, config TenantConfig, capture *tenant.Context) *gin.Engine {
	t.Helper()

	router := gin.New()
	router.Use(JWTAuth(JWTMiddlewareConfig{JWTService: jwtService}))
	router.Use(TenantIdentity(config))
	router.GET("/", func(c *gin.Context) {
		tc, ok := tenant.FromContext(c.Request.Context())
		require.True(t, ok)
		*capture = tc
		c.Status(http.StatusOK)
	})
	return router
}

func TestTenantIdentity_FromJWTClaims(t *testing.T) {
	svc := newJWTService(15 * time.Minute)
	companyGUID := uuid.New()
	user := &identity.User{
		GUID:        uuid.New(),
		CompanyGUID: companyGUID,
		Email:       "ana@factory.test",
		Name:        "Ana",
		Surname:     "Petrova",
		Role:        identity.RoleOperator,
		IsActive:    true,
	}

	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{
		CompanyGUID: companyGUID,
		UserGUID:    user.GUID,
		Email:       user.Email,
		Role:        string(user.Role),
	})
	require.NoError(t, err)

	var captured tenant.Context
	router := tenantTestRouter(t, svc, TenantConfig{Users: &stubUserRepo{user: user}}, &captured)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, companyGUID, captured.CompanyGUID)
	assert.False(t, captured.Bypass)
	require.NotNil(t, captured.UserGUID)
	assert.Equal(t, user.GUID, *captured.UserGUID)
	assert.Equal(t, "Ana Petrova", captured.UserName)
}

func TestTenantIdentity_SystemAdminBypasses(t *testing.T) {
	svc := newJWTService(15 * time.Minute)

	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{
		CompanyGUID: uuid.New(),
		UserGUID:    uuid.New(),
		Email:       "root@factory.test",
		Role:        string(identity.RoleSystemAdmin),
	})
	require.NoError(t, err)

	var captured tenant.Context
	router := tenantTestRouter(t, svc, TenantConfig{}, &captured)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, captured.Bypass)
}

func TestTenantIdentity_FromAPIKey(t *testing.T) {
	raw, _, hash, err := auth.GenerateAPIKey()
	require.NoError(t, err)

	key := &identity.APIKey{
		GUID:        uuid.New(),
		CompanyGUID: uuid.New(),
		Name:        "sync agent",
		KeyHash:     hash,
		IsActive:    true,
		Scopes:      identity.ScopeSyncWrite,
	}

	var captured tenant.Context
	router := gin.New()
	router.Use(APIKeyAuth(&stubAPIKeyRepo{key: key}, nil))
	router.Use(TenantIdentity(TenantConfig{}))
	router.GET("/", func(c *gin.Context) {
		tc, ok := tenant.FromContext(c.Request.Context())
		require.True(t, ok)
		captured = tc
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderAPIKey, raw)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, key.CompanyGUID, captured.CompanyGUID)
	require.NotNil(t, captured.APIKeyGUID)
	assert.Equal(t, key.GUID, *captured.APIKeyGUID)
	assert.Equal(t, "sync agent", captured.UserName)
}

func TestTenantIdentity_InvalidAPIKeyRejected(t *testing.T) {
	router := gin.New()
	router.Use(APIKeyAuth(&stubAPIKeyRepo{}, nil))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderAPIKey, "mfg_not_a_real_key")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTenantIdentity_ForeignWorkstationForbidden(t *testing.T) {
	svc := newJWTService(15 * time.Minute)
	companyGUID := uuid.New()

	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{
		CompanyGUID: companyGUID,
		UserGUID:    uuid.New(),
		Email:       "ana@factory.test",
		Role:        string(identity.RoleOperator),
	})
	require.NoError(t, err)

	foreign := &identity.Workstation{
		GUID:        uuid.New(),
		CompanyGUID: uuid.New(),
		Location:    "Hall B",
		IsActive:    true,
	}

	router := gin.New()
	router.Use(JWTAuth(JWTMiddlewareConfig{JWTService: svc}))
	router.Use(TenantIdentity(TenantConfig{Workstations: &stubWorkstationRepo{ws: foreign}}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	req.Header.Set(HeaderWorkstationID, foreign.GUID.String())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTenantIdentity_WorkstationAttached(t *testing.T) {
	svc := newJWTService(15 * time.Minute)
	companyGUID := uuid.New()

	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{
		CompanyGUID: companyGUID,
		UserGUID:    uuid.New(),
		Email:       "ana@factory.test",
		Role:        string(identity.RoleOperator),
	})
	require.NoError(t, err)

	ws := &identity.Workstation{
		GUID:        uuid.New(),
		CompanyGUID: companyGUID,
		Location:    "Hall A",
		IsActive:    true,
	}

	var captured tenant.Context
	router := tenantTestRouter(t, svc, TenantConfig{Workstations: &stubWorkstationRepo{ws: ws}}, &captured)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	req.Header.Set(HeaderWorkstationID, ws.GUID.String())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured.WorkstationGUID)
	assert.Equal(t, ws.GUID, *captured.WorkstationGUID)
	assert.Equal(t, "Hall A", captured.WorkstationName)
}
