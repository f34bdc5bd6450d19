package workflow

import (
	"time"

	"github.com/google/uuid"
)

// ActionType names the operation a workflow entry records.
type ActionType string

const (
	ActionDelete  ActionType = "delete"
	ActionRestore ActionType = "restore"
	ActionSync    ActionType = "sync"
	ActionLogin   ActionType = "login"
)

// Valid reports whether a is a known action type
func (a ActionType) Valid() bool {
	switch a {
	case ActionDelete, ActionRestore, ActionSync, ActionLogin:
		return true
	}
	return false
}

// Entry is one audit row. Actor and company names are denormalized at
// write time so the log stays readable after the referenced rows change
// or disappear.
type Entry struct {
	GUID            uuid.UUID  `gorm:"type:uuid;primaryKey;column:guid" json:"guid"`
	CompanyGUID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"company_guid"`
	CompanyName     string     `gorm:"type:varchar(255)" json:"company_name"`
	UserGUID        *uuid.UUID `gorm:"type:uuid;index" json:"user_guid,omitempty"`
	UserName        string     `gorm:"type:varchar(255)" json:"user_name"`
	APIKeyGUID      *uuid.UUID `gorm:"type:uuid" json:"api_key_guid,omitempty"`
	WorkstationGUID *uuid.UUID `gorm:"type:uuid" json:"workstation_guid,omitempty"`
	WorkstationName string     `gorm:"type:varchar(255)" json:"workstation_name"`
	ActionType      ActionType `gorm:"type:varchar(30);not null;index" json:"action_type"`
	ActionValue     string     `gorm:"type:text" json:"action_value"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
}

// TableName returns the table name for GORM
func (Entry) TableName() string {
	return "workflows"
}

// NewEntry creates an audit entry for the given company and action
func NewEntry(companyGUID uuid.UUID, companyName string, action ActionType, value string) *Entry {
	return &Entry{
		GUID:        uuid.New(),
		CompanyGUID: companyGUID,
		CompanyName: companyName,
		ActionType:  action,
		ActionValue: value,
		CreatedAt:   time.Now(),
	}
}

// WithUser attaches the acting user to the entry
func (e *Entry) WithUser(guid uuid.UUID, name string) *Entry {
	e.UserGUID = &guid
	e.UserName = name
	return e
}

// WithAPIKey attaches the acting service credential to the entry
func (e *Entry) WithAPIKey(guid uuid.UUID, name string) *Entry {
	e.APIKeyGUID = &guid
	if e.UserName == "" {
		e.UserName = name
	}
	return e
}

// WithWorkstation attaches the originating workstation to the entry
func (e *Entry) WithWorkstation(guid uuid.UUID, name string) *Entry {
	e.WorkstationGUID = &guid
	e.WorkstationName = name
	return e
}

// Stats is an aggregate of entries per action type over a window.
type Stats struct {
	ActionType ActionType `json:"action_type"`
	Count      int64      `json:"count"`
}
