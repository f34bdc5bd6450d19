package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mfg/backend/internal/domain/identity"
	"github.com/mfg/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormWorkstationRepository implements identity.WorkstationRepository using GORM
type GormWorkstationRepository struct {
	db *gorm.DB
}

// NewGormWorkstationRepository creates a new GormWorkstationRepository
func NewGormWorkstationRepository(db *gorm.DB) *GormWorkstationRepository {
	return &GormWorkstationRepository{db: db}
}

// FindByGUID finds a workstation by GUID
func (r *GormWorkstationRepository) FindByGUID(ctx context.Context, guid uuid.UUID) (*identity.Workstation, error) {
	var ws identity.Workstation
	if err := r.db.WithContext(ctx).First(&ws, "guid = ?", guid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ws, nil
}

var _ identity.WorkstationRepository = (*GormWorkstationRepository)(nil)
