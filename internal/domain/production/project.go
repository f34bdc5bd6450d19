package production

import (
	"time"

	"github.com/mfg/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Project is the root of the manufacturing hierarchy. Every component,
// assembly, piece and article belongs to exactly one project.
type Project struct {
	shared.TenantEntity
	Code         string     `gorm:"type:varchar(50);not null;index:idx_projects_company_code" json:"code"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	InProduction bool       `gorm:"not null;default:false" json:"in_production"`
}

// TableName returns the table name for GORM
func (Project) TableName() string {
	return "projects"
}

// NewProject creates a new project scoped to a company
func NewProject(companyGUID, guid uuid.UUID, code string) *Project {
	return &Project{
		TenantEntity: shared.NewTenantEntity(companyGUID, guid),
		Code:         code,
	}
}
