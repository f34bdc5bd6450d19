package production

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mfg/backend/internal/domain/production"
	"github.com/mfg/backend/internal/domain/shared"
)

// QueryService serves reads over the hierarchy
type QueryService struct {
	repo production.Repository
}

// NewQueryService creates a new QueryService
func NewQueryService(repo production.Repository) *QueryService {
	return &QueryService{repo: repo}
}

// Get returns one entity by GUID. A row that exists but belongs to
// another company is reported as forbidden rather than hidden.
func (s *QueryService) Get(ctx context.Context, t production.EntityType, guid uuid.UUID) (interface{}, error) {
	if !t.Valid() {
		return nil, shared.ErrInvalidInput
	}

	entity, err := s.repo.Get(ctx, t, guid)
	if err == nil {
		return entity, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	exists, probeErr := s.repo.Exists(ctx, t, guid)
	if probeErr != nil {
		return nil, probeErr
	}
	if exists {
		return nil, shared.ErrForbidden
	}
	return nil, shared.ErrNotFound
}

// List returns a page of entities of the given type. The concrete item
// type depends on t, so the page is returned through the generic
// Paginated wrappers of each list method.
func (s *QueryService) List(ctx context.Context, t production.EntityType, filter shared.Filter) (interface{}, error) {
	switch t {
	case production.TypeProject:
		return s.repo.ListProjects(ctx, filter)
	case production.TypeComponent:
		return s.repo.ListComponents(ctx, filter)
	case production.TypeAssembly:
		return s.repo.ListAssemblies(ctx, filter)
	case production.TypePiece:
		return s.repo.ListPieces(ctx, filter)
	case production.TypeArticle:
		return s.repo.ListArticles(ctx, filter)
	}
	return nil, shared.ErrInvalidInput
}
