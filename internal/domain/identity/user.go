package identity

import (
	"time"

	"github.com/google/uuid"
)

// Role is the fixed, shallow role hierarchy. There is no role table;
// a user carries exactly one role string.
type Role string

const (
	// RoleSystemAdmin bypasses tenant isolation entirely.
	RoleSystemAdmin Role = "system_admin"
	// RoleCompanyAdmin manages everything inside one company.
	RoleCompanyAdmin Role = "company_admin"
	// RoleProjectManager manages projects and their hierarchy.
	RoleProjectManager Role = "project_manager"
	// RoleOperator is a shop-floor user with read access.
	RoleOperator Role = "operator"
	// RoleIntegration is a service account for external systems.
	RoleIntegration Role = "integration"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleSystemAdmin, RoleCompanyAdmin, RoleProjectManager, RoleOperator, RoleIntegration:
		return true
	}
	return false
}

// BypassesTenantIsolation reports whether the role sees across companies
func (r Role) BypassesTenantIsolation() bool {
	return r == RoleSystemAdmin
}

// CanSync reports whether the role may call the bulk sync endpoints
func (r Role) CanSync() bool {
	switch r {
	case RoleSystemAdmin, RoleCompanyAdmin, RoleIntegration:
		return true
	}
	return false
}

// User is an authenticated person scoped to a company.
type User struct {
	GUID         uuid.UUID `gorm:"type:uuid;primaryKey;column:guid" json:"guid"`
	CompanyGUID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_users_company_email,priority:1" json:"company_guid"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_company_email,priority:2" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Name         string    `gorm:"type:varchar(100)" json:"name"`
	Surname      string    `gorm:"type:varchar(100)" json:"surname"`
	Role         Role      `gorm:"type:varchar(30);not null" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// FullName returns the display name used for audit denormalization
func (u *User) FullName() string {
	switch {
	case u.Name == "" && u.Surname == "":
		return u.Email
	case u.Surname == "":
		return u.Name
	default:
		return u.Name + " " + u.Surname
	}
}
