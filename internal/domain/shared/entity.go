package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetGUID() uuid.UUID
	GetCompanyGUID() uuid.UUID
	Active() bool
}

// TenantEntity provides the common fields every company-scoped row carries.
// The pair (IsActive, DeletedAt) always moves together: an active row has a
// nil DeletedAt, an inactive row records the timestamp of the cascade that
// deactivated it.
type TenantEntity struct {
	GUID        uuid.UUID  `gorm:"type:uuid;primaryKey;column:guid" json:"guid"`
	CompanyGUID uuid.UUID  `gorm:"type:uuid;not null;index;column:company_guid" json:"company_guid"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	DeletedAt   *time.Time `gorm:"index" json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// GetGUID returns the entity GUID
func (e *TenantEntity) GetGUID() uuid.UUID {
	return e.GUID
}

// GetCompanyGUID returns the owning company GUID
func (e *TenantEntity) GetCompanyGUID() uuid.UUID {
	return e.CompanyGUID
}

// Active reports whether the entity is currently active
func (e *TenantEntity) Active() bool {
	return e.IsActive
}

// Deactivate soft-deletes the entity, stamping it with the given cascade
// generation timestamp.
func (e *TenantEntity) Deactivate(generation time.Time) {
	e.IsActive = false
	e.DeletedAt = &generation
	e.UpdatedAt = time.Now()
}

// Reactivate restores a soft-deleted entity.
func (e *TenantEntity) Reactivate() {
	e.IsActive = true
	e.DeletedAt = nil
	e.UpdatedAt = time.Now()
}

// NewTenantEntity creates a new entity base scoped to a company.
// When guid is uuid.Nil a fresh identifier is generated.
func NewTenantEntity(companyGUID, guid uuid.UUID) TenantEntity {
	if guid == uuid.Nil {
		guid = uuid.New()
	}
	now := time.Now()
	return TenantEntity{
		GUID:        guid,
		CompanyGUID: companyGUID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
