package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	appworkflow "github.com/mfg/backend/internal/application/workflow"
	"github.com/mfg/backend/internal/domain/shared"
	"github.com/mfg/backend/internal/interfaces/http/dto"
)

// WorkflowHandler serves the audit log
type WorkflowHandler struct {
	BaseHandler
	workflowService *appworkflow.WorkflowService
}

// NewWorkflowHandler creates a new WorkflowHandler
func NewWorkflowHandler(workflowService *appworkflow.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflowService: workflowService}
}

// RegisterRoutes registers workflow routes on the given router group
func (h *WorkflowHandler) RegisterRoutes(rg *gin.RouterGroup) {
	workflow := rg.Group("/workflow")
	{
		workflow.GET("", h.List)
		workflow.GET("/stats", h.Stats)
	}
}

// List returns a page of audit entries
// GET /api/v1/workflow
func (h *WorkflowHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 50
	}

	page, err := h.workflowService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, filter.Page, filter.PageSize)
}

// Stats returns per-action entry counts over a time window
// GET /api/v1/workflow/stats?hours=24
func (h *WorkflowHandler) Stats(c *gin.Context) {
	var query struct {
		Hours int `form:"hours" binding:"omitempty,min=1,max=720"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	stats, err := h.workflowService.Stats(c.Request.Context(), time.Duration(query.Hours)*time.Hour)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}
