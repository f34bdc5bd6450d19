package production

import (
	"github.com/mfg/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Component groups assemblies, pieces and articles under a project.
type Component struct {
	shared.TenantEntity
	ProjectGUID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_guid"`
	Code        string    `gorm:"type:varchar(50);not null" json:"code"`
	Designation string    `gorm:"type:varchar(255)" json:"designation"`
	Quantity    int       `gorm:"not null;default:1" json:"quantity"`
}

// TableName returns the table name for GORM
func (Component) TableName() string {
	return "components"
}

// NewComponent creates a new component under a project
func NewComponent(companyGUID, guid, projectGUID uuid.UUID, code string) *Component {
	return &Component{
		TenantEntity: shared.NewTenantEntity(companyGUID, guid),
		ProjectGUID:  projectGUID,
		Code:         code,
		Quantity:     1,
	}
}
