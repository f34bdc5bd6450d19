package production

import (
	"time"

	"github.com/google/uuid"
)

// Record is the type-independent projection of a hierarchy row that the
// cascade engine and the sync reconciler operate on.
type Record struct {
	GUID          uuid.UUID  `gorm:"column:guid"`
	CompanyGUID   uuid.UUID  `gorm:"column:company_guid"`
	IsActive      bool       `gorm:"column:is_active"`
	DeletedAt     *time.Time `gorm:"column:deleted_at"`
	ProjectGUID   *uuid.UUID `gorm:"column:project_guid"`
	ComponentGUID *uuid.UUID `gorm:"column:component_guid"`
	AssemblyGUID  *uuid.UUID `gorm:"column:assembly_guid"`
}

// ParentGUID returns the value of the given parent reference column
func (r *Record) ParentGUID(column string) *uuid.UUID {
	switch column {
	case "project_guid":
		return r.ProjectGUID
	case "component_guid":
		return r.ComponentGUID
	case "assembly_guid":
		return r.AssemblyGUID
	}
	return nil
}
