package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// API key scopes. Scopes are stored space-separated.
const (
	ScopeSyncWrite = "sync:write"
	ScopeRead      = "read"
)

// APIKey is a service credential for machine-to-machine callers such as
// the shop-floor sync agent. Only the SHA-256 hash of the key is stored;
// the prefix is kept in clear for identification in listings and logs.
type APIKey struct {
	GUID        uuid.UUID  `gorm:"type:uuid;primaryKey;column:guid" json:"guid"`
	CompanyGUID uuid.UUID  `gorm:"type:uuid;not null;index" json:"company_guid"`
	Name        string     `gorm:"type:varchar(100);not null" json:"name"`
	KeyHash     string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	Prefix      string     `gorm:"type:varchar(12);not null;index" json:"prefix"`
	Scopes      string     `gorm:"type:varchar(255)" json:"scopes"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the table name for GORM
func (APIKey) TableName() string {
	return "api_keys"
}

// HasScope reports whether the key grants the given scope
func (k *APIKey) HasScope(scope string) bool {
	for _, s := range strings.Fields(k.Scopes) {
		if s == scope {
			return true
		}
	}
	return false
}
