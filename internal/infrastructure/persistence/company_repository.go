package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mfg/backend/internal/domain/identity"
	"github.com/mfg/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCompanyRepository implements identity.CompanyRepository using GORM.
// Companies are the tenant roots themselves, so access is guarded by role
// checks in the application layer rather than by the tenant scope.
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByGUID finds a company by its GUID
func (r *GormCompanyRepository) FindByGUID(ctx context.Context, guid uuid.UUID) (*identity.Company, error) {
	var company identity.Company
	if err := r.db.WithContext(ctx).First(&company, "guid = ?", guid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &company, nil
}

// FindAll returns all active companies ordered by name
func (r *GormCompanyRepository) FindAll(ctx context.Context) ([]identity.Company, error) {
	var companies []identity.Company
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

// Save persists a company
func (r *GormCompanyRepository) Save(ctx context.Context, company *identity.Company) error {
	return r.db.WithContext(ctx).Save(company).Error
}

var _ identity.CompanyRepository = (*GormCompanyRepository)(nil)
