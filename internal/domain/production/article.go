package production

import (
	"github.com/mfg/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Article is a bought-in material or consumable consumed by a component.
type Article struct {
	shared.TenantEntity
	ProjectGUID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"project_guid"`
	ComponentGUID uuid.UUID       `gorm:"type:uuid;not null;index" json:"component_guid"`
	Code          string          `gorm:"type:varchar(50);not null" json:"code"`
	Designation   string          `gorm:"type:varchar(255)" json:"designation"`
	Quantity      decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"quantity"`
	Unit          string          `gorm:"type:varchar(20)" json:"unit"`
	UnitWeight    decimal.Decimal `gorm:"type:decimal(14,4)" json:"unit_weight"`
}

// TableName returns the table name for GORM
func (Article) TableName() string {
	return "articles"
}
