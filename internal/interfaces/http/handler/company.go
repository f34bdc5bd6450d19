package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/mfg/backend/internal/application/identity"
	"github.com/mfg/backend/internal/interfaces/http/dto"
)

// CompanyHandler serves company reads
type CompanyHandler struct {
	BaseHandler
	companyService *appidentity.CompanyService
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(companyService *appidentity.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// RegisterRoutes registers company routes on the given router group
func (h *CompanyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	companies := rg.Group("/companies")
	{
		companies.GET("", h.List)
		companies.GET("/:id", h.Get)
	}
}

// List returns the companies visible to the caller
// GET /api/v1/companies
func (h *CompanyHandler) List(c *gin.Context) {
	companies, err := h.companyService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, companies)
}

// Get returns one company
// GET /api/v1/companies/:id
func (h *CompanyHandler) Get(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid company id")
		return
	}
	guid, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid company id")
		return
	}

	company, err := h.companyService.Get(c.Request.Context(), guid)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}
