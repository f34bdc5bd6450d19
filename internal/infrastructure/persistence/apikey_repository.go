package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mfg/backend/internal/domain/identity"
	"github.com/mfg/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormAPIKeyRepository implements identity.APIKeyRepository using GORM
type GormAPIKeyRepository struct {
	db *gorm.DB
}

// NewGormAPIKeyRepository creates a new GormAPIKeyRepository
func NewGormAPIKeyRepository(db *gorm.DB) *GormAPIKeyRepository {
	return &GormAPIKeyRepository{db: db}
}

// FindActiveByHash finds an active API key by its SHA-256 hash
func (r *GormAPIKeyRepository) FindActiveByHash(ctx context.Context, keyHash string) (*identity.APIKey, error) {
	var key identity.APIKey
	if err := r.db.WithContext(ctx).
		Where("key_hash = ? AND is_active = ?", keyHash, true).
		First(&key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &key, nil
}

// TouchLastUsed records that the key was just used
func (r *GormAPIKeyRepository) TouchLastUsed(ctx context.Context, guid uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&identity.APIKey{}).
		Where("guid = ?", guid).
		Update("last_used_at", now).Error
}

// Save persists an API key
func (r *GormAPIKeyRepository) Save(ctx context.Context, key *identity.APIKey) error {
	return r.db.WithContext(ctx).Save(key).Error
}

var _ identity.APIKeyRepository = (*GormAPIKeyRepository)(nil)
