package persistence

import (
	"context"
	"time"

	"github.com/mfg/backend/internal/domain/shared"
	"github.com/mfg/backend/internal/domain/workflow"
	"github.com/mfg/backend/internal/infrastructure/persistence/tenant"
)

// GormWorkflowRepository implements workflow.Repository using GORM.
// Reads go through the tenant scope; writes happen inside the same
// transaction as the operation they record, via the service layer.
type GormWorkflowRepository struct {
	db *tenant.TenantDB
}

// NewGormWorkflowRepository creates a new GormWorkflowRepository
func NewGormWorkflowRepository(db *tenant.TenantDB) *GormWorkflowRepository {
	return &GormWorkflowRepository{db: db}
}

// Create persists an audit entry
func (r *GormWorkflowRepository) Create(ctx context.Context, entry *workflow.Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindAll returns audit entries for the caller's company, newest first
func (r *GormWorkflowRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[workflow.Entry], error) {
	query := r.db.WithContext(ctx).Model(&workflow.Entry{})

	if action, ok := filter.Filters["action_type"].(string); ok && action != "" {
		query = query.Where("action_type = ?", action)
	}
	if userGUID, ok := filter.Filters["user_guid"].(string); ok && userGUID != "" {
		query = query.Where("user_guid = ?", userGUID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, WorkflowSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var entries []workflow.Entry
	if err := query.
		Order(orderBy + " " + orderDir).
		Limit(filter.PageSize).
		Offset((filter.Page - 1) * filter.PageSize).
		Find(&entries).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(entries, total, filter.Page, filter.PageSize)
	return &page, nil
}

// StatsSince aggregates entry counts per action type over a window
func (r *GormWorkflowRepository) StatsSince(ctx context.Context, since time.Time) ([]workflow.Stats, error) {
	var stats []workflow.Stats
	if err := r.db.WithContext(ctx).
		Model(&workflow.Entry{}).
		Select("action_type, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("action_type").
		Order("count DESC").
		Scan(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

var _ workflow.Repository = (*GormWorkflowRepository)(nil)
