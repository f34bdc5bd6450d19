package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appproduction "github.com/mfg/backend/internal/application/production"
	"github.com/mfg/backend/internal/domain/production"
	"github.com/mfg/backend/internal/domain/shared"
	"github.com/mfg/backend/internal/infrastructure/persistence/tenant"
	"github.com/mfg/backend/internal/interfaces/http/dto"
)

// ProductionHandler serves reads, soft deletion and restore for every
// level of the manufacturing hierarchy. One handler covers all five
// entity types; the type is fixed per route group at registration.
type ProductionHandler struct {
	BaseHandler
	queryService   *appproduction.QueryService
	cascadeService *appproduction.CascadeService
}

// NewProductionHandler creates a new ProductionHandler
func NewProductionHandler(queryService *appproduction.QueryService, cascadeService *appproduction.CascadeService) *ProductionHandler {
	return &ProductionHandler{
		queryService:   queryService,
		cascadeService: cascadeService,
	}
}

// RegisterRoutes registers one route group per hierarchy level
func (h *ProductionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	for _, t := range []production.EntityType{
		production.TypeProject,
		production.TypeComponent,
		production.TypeAssembly,
		production.TypePiece,
		production.TypeArticle,
	} {
		group := rg.Group("/" + t.Table())
		group.GET("", h.list(t))
		group.GET("/:id", h.get(t))
		group.DELETE("/:id", h.softDelete(t))
		group.POST("/:id/restore", h.restore(t))
	}
}

// list returns a page of entities of one type
// GET /api/v1/{projects,components,assemblies,pieces,articles}
func (h *ProductionHandler) list(t production.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ListRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			h.BadRequest(c, "Invalid query parameters")
			return
		}

		// Asking for another company's rows is a tenant boundary
		// violation, not an empty result
		if req.CompanyGUID != "" {
			tc, ok := tenant.FromContext(c.Request.Context())
			if ok && !tc.Bypass && req.CompanyGUID != tc.CompanyGUID.String() {
				h.Forbidden(c, "Cannot query another company's data")
				return
			}
		}

		filter := listFilter(req)
		page, err := h.queryService.List(c.Request.Context(), t, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}

		h.Success(c, page)
	}
}

// get returns one entity by GUID
// GET /api/v1/.../:id
func (h *ProductionHandler) get(t production.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		guid, ok := h.bindGUID(c)
		if !ok {
			return
		}

		entity, err := h.queryService.Get(c.Request.Context(), t, guid)
		if err != nil {
			h.HandleError(c, err)
			return
		}

		h.Success(c, entity)
	}
}

// softDelete deactivates an entity and its whole subtree
// DELETE /api/v1/.../:id
func (h *ProductionHandler) softDelete(t production.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		guid, ok := h.bindGUID(c)
		if !ok {
			return
		}

		if err := h.cascadeService.SoftDelete(c.Request.Context(), t, guid); err != nil {
			h.HandleError(c, err)
			return
		}

		h.NoContent(c)
	}
}

// restore reactivates an entity and the descendants deactivated with it
// POST /api/v1/.../:id/restore
func (h *ProductionHandler) restore(t production.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		guid, ok := h.bindGUID(c)
		if !ok {
			return
		}

		if err := h.cascadeService.Restore(c.Request.Context(), t, guid); err != nil {
			h.HandleError(c, err)
			return
		}

		h.NoContent(c)
	}
}

func (h *ProductionHandler) bindGUID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid id")
		return uuid.Nil, false
	}
	guid, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid id")
		return uuid.Nil, false
	}
	return guid, true
}

// listFilter converts query parameters into a repository filter
func listFilter(req dto.ListRequest) shared.Filter {
	filter := shared.Filter{
		Page:            req.Page,
		PageSize:        req.PageSize,
		OrderBy:         req.OrderBy,
		OrderDir:        req.OrderDir,
		IncludeInactive: req.IncludeInactive,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 50
	}

	ancestors := map[string]string{
		"company_guid":   req.CompanyGUID,
		"project_guid":   req.ProjectGUID,
		"component_guid": req.ComponentGUID,
		"assembly_guid":  req.AssemblyGUID,
	}
	for column, value := range ancestors {
		if value == "" {
			continue
		}
		if filter.Filters == nil {
			filter.Filters = make(map[string]interface{})
		}
		filter.Filters[column] = value
	}

	return filter
}
