package workflow

import (
	"context"
	"time"

	"github.com/mfg/backend/internal/domain/shared"
)

// Repository provides access to the audit log
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[Entry], error)
	StatsSince(ctx context.Context, since time.Time) ([]Stats, error)
}
