package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mfg/backend/internal/domain/production"
	"github.com/mfg/backend/internal/domain/shared"
	"github.com/mfg/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormProductionRepository serves reads over the manufacturing hierarchy.
// All queries go through the tenant scope; writes are owned by the
// cascade and sync services, which run inside their own transactions.
type GormProductionRepository struct {
	db *tenant.TenantDB
}

// NewGormProductionRepository creates a new GormProductionRepository
func NewGormProductionRepository(db *tenant.TenantDB) *GormProductionRepository {
	return &GormProductionRepository{db: db}
}

// sortFieldsFor returns the sort whitelist for an entity type
func sortFieldsFor(t production.EntityType) map[string]bool {
	switch t {
	case production.TypeProject:
		return ProjectSortFields
	case production.TypeComponent:
		return ComponentSortFields
	case production.TypeAssembly:
		return AssemblySortFields
	case production.TypePiece:
		return PieceSortFields
	case production.TypeArticle:
		return ArticleSortFields
	}
	return CommonSortFields
}

// filterColumns that list endpoints accept as equality filters. The
// company filter only widens results for bypass callers; scoped queries
// are already pinned to their own company.
var filterColumns = []string{"company_guid", "project_guid", "component_guid", "assembly_guid"}

// Get finds one entity by GUID, active or not
func (r *GormProductionRepository) Get(ctx context.Context, t production.EntityType, guid uuid.UUID) (interface{}, error) {
	model := t.Model()
	if err := r.db.WithContext(ctx).
		Table(t.Table()).
		Where("guid = ?", guid).
		First(model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model, nil
}

// Exists reports whether a row with this GUID exists in any company.
// The unscoped probe lets callers distinguish a cross-company hit,
// which is rejected as forbidden, from a plain miss.
func (r *GormProductionRepository) Exists(ctx context.Context, t production.EntityType, guid uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.Unscoped().WithContext(ctx).
		Table(t.Table()).
		Where("guid = ?", guid).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// listEntities runs a paginated, filtered query for one hierarchy level
func listEntities[T any](r *GormProductionRepository, ctx context.Context, t production.EntityType, filter shared.Filter) (*shared.Paginated[T], error) {
	query := r.db.WithContext(ctx).Table(t.Table())

	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	for _, col := range filterColumns {
		if v, ok := filter.Filters[col].(string); ok && v != "" {
			query = query.Where(col+" = ?", v)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, sortFieldsFor(t), "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var items []T
	if err := query.
		Order(orderBy + " " + orderDir).
		Limit(filter.PageSize).
		Offset((filter.Page - 1) * filter.PageSize).
		Find(&items).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ListProjects returns projects matching the filter
func (r *GormProductionRepository) ListProjects(ctx context.Context, filter shared.Filter) (*shared.Paginated[production.Project], error) {
	return listEntities[production.Project](r, ctx, production.TypeProject, filter)
}

// ListComponents returns components matching the filter
func (r *GormProductionRepository) ListComponents(ctx context.Context, filter shared.Filter) (*shared.Paginated[production.Component], error) {
	return listEntities[production.Component](r, ctx, production.TypeComponent, filter)
}

// ListAssemblies returns assemblies matching the filter
func (r *GormProductionRepository) ListAssemblies(ctx context.Context, filter shared.Filter) (*shared.Paginated[production.Assembly], error) {
	return listEntities[production.Assembly](r, ctx, production.TypeAssembly, filter)
}

// ListPieces returns pieces matching the filter
func (r *GormProductionRepository) ListPieces(ctx context.Context, filter shared.Filter) (*shared.Paginated[production.Piece], error) {
	return listEntities[production.Piece](r, ctx, production.TypePiece, filter)
}

// ListArticles returns articles matching the filter
func (r *GormProductionRepository) ListArticles(ctx context.Context, filter shared.Filter) (*shared.Paginated[production.Article], error) {
	return listEntities[production.Article](r, ctx, production.TypeArticle, filter)
}

var _ production.Repository = (*GormProductionRepository)(nil)
