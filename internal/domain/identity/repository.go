package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository provides access to user accounts
type UserRepository interface {
	FindByGUID(ctx context.Context, guid uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, user *User) error
}

// CompanyRepository provides access to companies
type CompanyRepository interface {
	FindByGUID(ctx context.Context, guid uuid.UUID) (*Company, error)
	FindAll(ctx context.Context) ([]Company, error)
	Save(ctx context.Context, company *Company) error
}

// APIKeyRepository provides access to service credentials
type APIKeyRepository interface {
	FindActiveByHash(ctx context.Context, keyHash string) (*APIKey, error)
	TouchLastUsed(ctx context.Context, guid uuid.UUID) error
	Save(ctx context.Context, key *APIKey) error
}

// WorkstationRepository provides access to shop-floor workstations
type WorkstationRepository interface {
	FindByGUID(ctx context.Context, guid uuid.UUID) (*Workstation, error)
}
