package workflow

import (
	"context"
	"time"

	"github.com/mfg/backend/internal/domain/shared"
	"github.com/mfg/backend/internal/domain/workflow"
)

// WorkflowService serves the audit log
type WorkflowService struct {
	repo workflow.Repository
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(repo workflow.Repository) *WorkflowService {
	return &WorkflowService{repo: repo}
}

// List returns audit entries for the caller's company
func (s *WorkflowService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[workflow.Entry], error) {
	return s.repo.FindAll(ctx, filter)
}

// Stats aggregates entry counts per action type over the given window
func (s *WorkflowService) Stats(ctx context.Context, window time.Duration) ([]workflow.Stats, error) {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return s.repo.StatsSince(ctx, time.Now().Add(-window))
}
