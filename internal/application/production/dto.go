package production

import (
	"time"

	"github.com/google/uuid"
	"github.com/mfg/backend/internal/domain/production"
	"github.com/mfg/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SyncResult reports how a snapshot was reconciled. Reactivated rows
// count as updated.
type SyncResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

// syncItem is the common surface of one snapshot record. Parent returns
// the value of a parent reference column, nil when the record does not
// carry it.
type syncItem interface {
	ItemGUID() uuid.UUID
	ItemCompanyGUID() uuid.UUID
	Parent(column string) *uuid.UUID
	entity() interface{}
	updates() map[string]interface{}
}

// ProjectSyncItem is one project row in a sync snapshot
type ProjectSyncItem struct {
	GUID         uuid.UUID  `json:"guid" binding:"required"`
	CompanyGUID  uuid.UUID  `json:"company_guid" binding:"required"`
	Code         string     `json:"code" binding:"required"`
	DueDate      *time.Time `json:"due_date"`
	InProduction bool       `json:"in_production"`
}

func (i ProjectSyncItem) ItemGUID() uuid.UUID        { return i.GUID }
func (i ProjectSyncItem) ItemCompanyGUID() uuid.UUID { return i.CompanyGUID }
func (i ProjectSyncItem) Parent(string) *uuid.UUID   { return nil }

func (i ProjectSyncItem) entity() interface{} {
	return &production.Project{
		TenantEntity: shared.NewTenantEntity(i.CompanyGUID, i.GUID),
		Code:         i.Code,
		DueDate:      i.DueDate,
		InProduction: i.InProduction,
	}
}

func (i ProjectSyncItem) updates() map[string]interface{} {
	return map[string]interface{}{
		"code":          i.Code,
		"due_date":      i.DueDate,
		"in_production": i.InProduction,
	}
}

// ComponentSyncItem is one component row in a sync snapshot
type ComponentSyncItem struct {
	GUID        uuid.UUID `json:"guid" binding:"required"`
	CompanyGUID uuid.UUID `json:"company_guid" binding:"required"`
	ProjectGUID uuid.UUID `json:"project_guid" binding:"required"`
	Code        string    `json:"code" binding:"required"`
	Designation string    `json:"designation"`
	Quantity    int       `json:"quantity"`
}

func (i ComponentSyncItem) ItemGUID() uuid.UUID        { return i.GUID }
func (i ComponentSyncItem) ItemCompanyGUID() uuid.UUID { return i.CompanyGUID }

func (i ComponentSyncItem) Parent(column string) *uuid.UUID {
	if column == "project_guid" {
		return &i.ProjectGUID
	}
	return nil
}

func (i ComponentSyncItem) entity() interface{} {
	return &production.Component{
		TenantEntity: shared.NewTenantEntity(i.CompanyGUID, i.GUID),
		ProjectGUID:  i.ProjectGUID,
		Code:         i.Code,
		Designation:  i.Designation,
		Quantity:     i.Quantity,
	}
}

func (i ComponentSyncItem) updates() map[string]interface{} {
	return map[string]interface{}{
		"project_guid": i.ProjectGUID,
		"code":         i.Code,
		"designation":  i.Designation,
		"quantity":     i.Quantity,
	}
}

// AssemblySyncItem is one assembly row in a sync snapshot
type AssemblySyncItem struct {
	GUID          uuid.UUID `json:"guid" binding:"required"`
	CompanyGUID   uuid.UUID `json:"company_guid" binding:"required"`
	ProjectGUID   uuid.UUID `json:"project_guid" binding:"required"`
	ComponentGUID uuid.UUID `json:"component_guid" binding:"required"`
	Trolley       string    `json:"trolley"`
	TrolleyCell   string    `json:"trolley_cell"`
	CellNumber    string    `json:"cell_number"`
}

func (i AssemblySyncItem) ItemGUID() uuid.UUID        { return i.GUID }
func (i AssemblySyncItem) ItemCompanyGUID() uuid.UUID { return i.CompanyGUID }

func (i AssemblySyncItem) Parent(column string) *uuid.UUID {
	switch column {
	case "project_guid":
		return &i.ProjectGUID
	case "component_guid":
		return &i.ComponentGUID
	}
	return nil
}

func (i AssemblySyncItem) entity() interface{} {
	return &production.Assembly{
		TenantEntity:  shared.NewTenantEntity(i.CompanyGUID, i.GUID),
		ProjectGUID:   i.ProjectGUID,
		ComponentGUID: i.ComponentGUID,
		Trolley:       i.Trolley,
		TrolleyCell:   i.TrolleyCell,
		CellNumber:    i.CellNumber,
	}
}

func (i AssemblySyncItem) updates() map[string]interface{} {
	return map[string]interface{}{
		"project_guid":   i.ProjectGUID,
		"component_guid": i.ComponentGUID,
		"trolley":        i.Trolley,
		"trolley_cell":   i.TrolleyCell,
		"cell_number":    i.CellNumber,
	}
}

// PieceSyncItem is one piece row in a sync snapshot
type PieceSyncItem struct {
	GUID          uuid.UUID       `json:"guid" binding:"required"`
	CompanyGUID   uuid.UUID       `json:"company_guid" binding:"required"`
	ProjectGUID   uuid.UUID       `json:"project_guid" binding:"required"`
	ComponentGUID uuid.UUID       `json:"component_guid" binding:"required"`
	AssemblyGUID  *uuid.UUID      `json:"assembly_guid"`
	PieceCode     string          `json:"piece_code" binding:"required"`
	Barcode       string          `json:"barcode"`
	Trolley       string          `json:"trolley"`
	Cell          string          `json:"cell"`
	ProfileCode   string          `json:"profile_code"`
	OuterLength   decimal.Decimal `json:"outer_length"`
}

func (i PieceSyncItem) ItemGUID() uuid.UUID        { return i.GUID }
func (i PieceSyncItem) ItemCompanyGUID() uuid.UUID { return i.CompanyGUID }

func (i PieceSyncItem) Parent(column string) *uuid.UUID {
	switch column {
	case "project_guid":
		return &i.ProjectGUID
	case "component_guid":
		return &i.ComponentGUID
	case "assembly_guid":
		return i.AssemblyGUID
	}
	return nil
}

func (i PieceSyncItem) entity() interface{} {
	return &production.Piece{
		TenantEntity:  shared.NewTenantEntity(i.CompanyGUID, i.GUID),
		ProjectGUID:   i.ProjectGUID,
		ComponentGUID: i.ComponentGUID,
		AssemblyGUID:  i.AssemblyGUID,
		PieceCode:     i.PieceCode,
		Barcode:       i.Barcode,
		Trolley:       i.Trolley,
		Cell:          i.Cell,
		ProfileCode:   i.ProfileCode,
		OuterLength:   i.OuterLength,
	}
}

func (i PieceSyncItem) updates() map[string]interface{} {
	return map[string]interface{}{
		"project_guid":   i.ProjectGUID,
		"component_guid": i.ComponentGUID,
		"assembly_guid":  i.AssemblyGUID,
		"piece_code":     i.PieceCode,
		"barcode":        i.Barcode,
		"trolley":        i.Trolley,
		"cell":           i.Cell,
		"profile_code":   i.ProfileCode,
		"outer_length":   i.OuterLength,
	}
}

// ArticleSyncItem is one article row in a sync snapshot
type ArticleSyncItem struct {
	GUID          uuid.UUID       `json:"guid" binding:"required"`
	CompanyGUID   uuid.UUID       `json:"company_guid" binding:"required"`
	ProjectGUID   uuid.UUID       `json:"project_guid" binding:"required"`
	ComponentGUID uuid.UUID       `json:"component_guid" binding:"required"`
	Code          string          `json:"code" binding:"required"`
	Designation   string          `json:"designation"`
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	UnitWeight    decimal.Decimal `json:"unit_weight"`
}

func (i ArticleSyncItem) ItemGUID() uuid.UUID        { return i.GUID }
func (i ArticleSyncItem) ItemCompanyGUID() uuid.UUID { return i.CompanyGUID }

func (i ArticleSyncItem) Parent(column string) *uuid.UUID {
	switch column {
	case "project_guid":
		return &i.ProjectGUID
	case "component_guid":
		return &i.ComponentGUID
	}
	return nil
}

func (i ArticleSyncItem) entity() interface{} {
	return &production.Article{
		TenantEntity:  shared.NewTenantEntity(i.CompanyGUID, i.GUID),
		ProjectGUID:   i.ProjectGUID,
		ComponentGUID: i.ComponentGUID,
		Code:          i.Code,
		Designation:   i.Designation,
		Quantity:      i.Quantity,
		Unit:          i.Unit,
		UnitWeight:    i.UnitWeight,
	}
}

func (i ArticleSyncItem) updates() map[string]interface{} {
	return map[string]interface{}{
		"project_guid":   i.ProjectGUID,
		"component_guid": i.ComponentGUID,
		"code":           i.Code,
		"designation":    i.Designation,
		"quantity":       i.Quantity,
		"unit":           i.Unit,
		"unit_weight":    i.UnitWeight,
	}
}
