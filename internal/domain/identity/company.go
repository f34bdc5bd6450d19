package identity

import (
	"time"

	"github.com/google/uuid"
)

// Company is the tenant root. Every scoped row in the system carries a
// company GUID; the company row itself is only guarded by role checks.
type Company struct {
	GUID      uuid.UUID `gorm:"type:uuid;primaryKey;column:guid" json:"guid"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	ShortName string    `gorm:"type:varchar(50)" json:"short_name"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for GORM
func (Company) TableName() string {
	return "companies"
}

// NewCompany creates a new company
func NewCompany(name, shortName string) *Company {
	now := time.Now()
	return &Company{
		GUID:      uuid.New(),
		Name:      name,
		ShortName: shortName,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
