package identity

import (
	"time"

	"github.com/google/uuid"
)

// Workstation is a shop-floor terminal. It exists so workflow audit rows
// can record where an action happened; it is not a managed resource.
type Workstation struct {
	GUID        uuid.UUID `gorm:"type:uuid;primaryKey;column:guid" json:"guid"`
	CompanyGUID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_guid"`
	Location    string    `gorm:"type:varchar(100)" json:"location"`
	Type        string    `gorm:"type:varchar(50)" json:"type"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the table name for GORM
func (Workstation) TableName() string {
	return "workstations"
}

// DisplayName returns the name used for audit denormalization
func (w *Workstation) DisplayName() string {
	if w.Location == "" {
		return w.Type
	}
	return w.Location
}
