package handler

import (
	"github.com/gin-gonic/gin"
	appproduction "github.com/mfg/backend/internal/application/production"
	"github.com/mfg/backend/internal/domain/identity"
	"github.com/mfg/backend/internal/interfaces/http/dto"
	"github.com/mfg/backend/internal/interfaces/http/middleware"
)

// SyncHandler serves the bulk reconciliation endpoints used by the
// shop-floor sync agent. Each call replaces the caller's full snapshot
// of one entity type.
type SyncHandler struct {
	BaseHandler
	syncService *appproduction.SyncService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *appproduction.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// RegisterRoutes registers sync routes on the given router group
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/projects", h.syncProjects)
		sync.POST("/components", h.syncComponents)
		sync.POST("/assemblies", h.syncAssemblies)
		sync.POST("/pieces", h.syncPieces)
		sync.POST("/articles", h.syncArticles)
	}
}

// authorized checks that the caller may write through sync: a user with
// a syncing role, or an API key carrying the sync:write scope
func (h *SyncHandler) authorized(c *gin.Context) bool {
	if key, ok := middleware.GetAPIKey(c); ok {
		if key.HasScope(identity.ScopeSyncWrite) {
			return true
		}
		h.Forbidden(c, "API key lacks the sync:write scope")
		return false
	}

	if claims, ok := middleware.GetJWTClaims(c); ok {
		if identity.Role(claims.Role).CanSync() {
			return true
		}
	}

	h.Forbidden(c, "Caller is not allowed to sync")
	return false
}

func (h *SyncHandler) syncProjects(c *gin.Context) {
	if !h.authorized(c) {
		return
	}
	var items []appproduction.ProjectSyncItem
	if err := c.ShouldBindJSON(&items); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	h.respond(c)(h.syncService.SyncProjects(c.Request.Context(), items))
}

func (h *SyncHandler) syncComponents(c *gin.Context) {
	if !h.authorized(c) {
		return
	}
	var items []appproduction.ComponentSyncItem
	if err := c.ShouldBindJSON(&items); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	h.respond(c)(h.syncService.SyncComponents(c.Request.Context(), items))
}

func (h *SyncHandler) syncAssemblies(c *gin.Context) {
	if !h.authorized(c) {
		return
	}
	var items []appproduction.AssemblySyncItem
	if err := c.ShouldBindJSON(&items); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	h.respond(c)(h.syncService.SyncAssemblies(c.Request.Context(), items))
}

func (h *SyncHandler) syncPieces(c *gin.Context) {
	if !h.authorized(c) {
		return
	}
	var items []appproduction.PieceSyncItem
	if err := c.ShouldBindJSON(&items); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	h.respond(c)(h.syncService.SyncPieces(c.Request.Context(), items))
}

func (h *SyncHandler) syncArticles(c *gin.Context) {
	if !h.authorized(c) {
		return
	}
	var items []appproduction.ArticleSyncItem
	if err := c.ShouldBindJSON(&items); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	h.respond(c)(h.syncService.SyncArticles(c.Request.Context(), items))
}

func (h *SyncHandler) respond(c *gin.Context) func(*appproduction.SyncResult, error) {
	return func(result *appproduction.SyncResult, err error) {
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, dto.SyncResponse{
			Inserted: result.Inserted,
			Updated:  result.Updated,
		})
	}
}
