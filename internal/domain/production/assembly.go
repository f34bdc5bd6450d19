package production

import (
	"github.com/mfg/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Assembly is a welded or mounted group of pieces. It carries a redundant
// project reference that must always match its parent component's project.
type Assembly struct {
	shared.TenantEntity
	ProjectGUID   uuid.UUID `gorm:"type:uuid;not null;index" json:"project_guid"`
	ComponentGUID uuid.UUID `gorm:"type:uuid;not null;index" json:"component_guid"`
	Trolley       string    `gorm:"type:varchar(50)" json:"trolley"`
	TrolleyCell   string    `gorm:"type:varchar(50)" json:"trolley_cell"`
	CellNumber    string    `gorm:"type:varchar(50)" json:"cell_number"`
}

// TableName returns the table name for GORM
func (Assembly) TableName() string {
	return "assemblies"
}
