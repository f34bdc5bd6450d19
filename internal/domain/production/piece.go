package production

import (
	"github.com/mfg/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Piece is an individual manufactured part. A piece always belongs to a
// project and a component; the assembly reference is optional because loose
// pieces ship outside any assembly.
type Piece struct {
	shared.TenantEntity
	ProjectGUID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"project_guid"`
	ComponentGUID uuid.UUID       `gorm:"type:uuid;not null;index" json:"component_guid"`
	AssemblyGUID  *uuid.UUID      `gorm:"type:uuid;index" json:"assembly_guid,omitempty"`
	PieceCode     string          `gorm:"type:varchar(50);not null" json:"piece_code"`
	Barcode       string          `gorm:"type:varchar(100);index" json:"barcode"`
	Trolley       string          `gorm:"type:varchar(50)" json:"trolley"`
	Cell          string          `gorm:"type:varchar(50)" json:"cell"`
	ProfileCode   string          `gorm:"type:varchar(50)" json:"profile_code"`
	OuterLength   decimal.Decimal `gorm:"type:decimal(12,3)" json:"outer_length"`
}

// TableName returns the table name for GORM
func (Piece) TableName() string {
	return "pieces"
}
