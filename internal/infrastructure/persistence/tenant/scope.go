// Package tenant provides multi-tenant database scoping for GORM.
//
// It implements automatic company_guid filtering to prevent cross-tenant
// data access at the repository layer, and configures the PostgreSQL
// session variables that back the row level security policies. The two
// mechanisms are independent: either one alone is sufficient to stop a
// cross-tenant read.
//
// Usage:
//
//	db := tenant.NewTenantDB(gormDB)
//	scopedDB := db.WithContext(ctx) // automatically applies company filtering
//	scopedDB.Find(&projects) // WHERE company_guid = 'xxx' is auto-added
package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrCompanyIDRequired is returned when a tenant identity is required but
// not found in context
var ErrCompanyIDRequired = errors.New("company_guid is required but not found in context")

// CompanyScope applies company filtering to GORM queries
func CompanyScope(companyGUID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_guid = ?", companyGUID)
	}
}

// ActiveScope restricts queries to rows that are not soft deleted
func ActiveScope(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

// TenantDB wraps GORM DB with automatic company scoping
type TenantDB struct {
	db       *gorm.DB
	required bool
}

// NewTenantDB creates a new TenantDB. Scoping is mandatory: queries
// issued without a tenant identity in context fail instead of running
// unfiltered.
func NewTenantDB(db *gorm.DB) *TenantDB {
	return &TenantDB{db: db, required: true}
}

// DB returns the underlying GORM DB without tenant scoping.
// Use with caution - this bypasses tenant isolation.
func (t *TenantDB) DB() *gorm.DB {
	return t.db
}

// WithContext returns a GORM DB scoped to the company from context.
// It extracts the tenant Context (set by the tenant middleware) and
// applies the company filter to all queries. System administrators
// bypass the filter.
//
// If no tenant identity is found, it returns a DB that errors on any
// operation.
func (t *TenantDB) WithContext(ctx context.Context) *gorm.DB {
	tc, ok := FromContext(ctx)
	if !ok || !tc.Scoped() {
		if t.required {
			db := t.db.WithContext(ctx)
			_ = db.AddError(ErrCompanyIDRequired)
			return db
		}
		return t.db.WithContext(ctx)
	}

	if tc.Bypass {
		return t.db.WithContext(ctx)
	}

	return t.db.WithContext(ctx).Scopes(CompanyScope(tc.CompanyGUID))
}

// WithCompany returns a GORM DB scoped to a specific company GUID.
// Use this when you have the company directly rather than from context.
func (t *TenantDB) WithCompany(companyGUID uuid.UUID) *gorm.DB {
	if companyGUID == uuid.Nil {
		if t.required {
			db := t.db
			_ = db.AddError(ErrCompanyIDRequired)
			return db
		}
		return t.db
	}
	return t.db.Scopes(CompanyScope(companyGUID))
}

// Transaction executes fn inside a database transaction with the RLS
// session variables applied and the company scope set on the tx handle.
func (t *TenantDB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tc, ok := FromContext(ctx)
	if !ok || !tc.Scoped() {
		return ErrCompanyIDRequired
	}

	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ApplySession(tx, tc); err != nil {
			return err
		}
		if !tc.Bypass {
			// Session keeps the scope attached across every query fn runs
			// on the handle instead of only the first one.
			tx = tx.Scopes(CompanyScope(tc.CompanyGUID)).Session(&gorm.Session{})
		}
		return fn(tx)
	})
}

// Unscoped returns the underlying DB without any tenant scoping.
// This should only be used for system-level operations or migrations.
func (t *TenantDB) Unscoped() *gorm.DB {
	return t.db
}
