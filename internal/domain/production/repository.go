package production

import (
	"context"

	"github.com/google/uuid"
	"github.com/mfg/backend/internal/domain/shared"
)

// Repository provides read access to the manufacturing hierarchy
type Repository interface {
	// Get returns one entity by GUID within the caller's company
	Get(ctx context.Context, t EntityType, guid uuid.UUID) (interface{}, error)
	// Exists reports whether a row with this GUID exists in any company
	Exists(ctx context.Context, t EntityType, guid uuid.UUID) (bool, error)

	ListProjects(ctx context.Context, filter shared.Filter) (*shared.Paginated[Project], error)
	ListComponents(ctx context.Context, filter shared.Filter) (*shared.Paginated[Component], error)
	ListAssemblies(ctx context.Context, filter shared.Filter) (*shared.Paginated[Assembly], error)
	ListPieces(ctx context.Context, filter shared.Filter) (*shared.Paginated[Piece], error)
	ListArticles(ctx context.Context, filter shared.Filter) (*shared.Paginated[Article], error)
}
