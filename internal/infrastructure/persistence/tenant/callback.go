package tenant

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const companyColumn = "company_guid"

// Callback provides GORM callback hooks for automatic company filtering.
// It is the second line of defense behind TenantDB: even a query issued
// on a raw handle picks up the filter as long as the request context is
// attached.
type Callback struct {
	required bool
}

// NewCallback creates a new tenant callback handler
func NewCallback(required bool) *Callback {
	return &Callback{required: required}
}

// Register registers tenant callbacks with GORM
func (tc *Callback) Register(db *gorm.DB) {
	_ = db.Callback().Query().Before("gorm:query").Register("tenant:before_query", tc.addCompanyFilter)
	_ = db.Callback().Update().Before("gorm:update").Register("tenant:before_update", tc.addCompanyFilter)
	_ = db.Callback().Delete().Before("gorm:delete").Register("tenant:before_delete", tc.addCompanyFilter)
	_ = db.Callback().Row().Before("gorm:row").Register("tenant:before_row", tc.addCompanyFilter)

	// Create is not registered: company_guid is set explicitly by the
	// application when creating entities
}

// addCompanyFilter adds company filtering to the query
func (tc *Callback) addCompanyFilter(db *gorm.DB) {
	if db.Statement.Context == nil {
		return
	}

	if db.Statement.Unscoped {
		return
	}

	// Only model-backed queries carry enough schema information to tell
	// whether the table is tenant scoped. Raw Table queries go through
	// TenantDB, which scopes them itself.
	if db.Statement.Schema == nil {
		return
	}
	if db.Statement.Schema.LookUpField(companyColumn) == nil {
		return
	}

	if tc.hasCompanyCondition(db) {
		return
	}

	tctx, ok := FromContext(db.Statement.Context)
	if !ok || !tctx.Scoped() {
		if tc.required {
			_ = db.AddError(ErrCompanyIDRequired)
		}
		return
	}

	if tctx.Bypass {
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: clause.CurrentTable, Name: companyColumn},
				Value:  tctx.CompanyGUID.String(),
			},
		},
	})
}

// hasCompanyCondition checks if a company_guid condition is already present
func (tc *Callback) hasCompanyCondition(db *gorm.DB) bool {
	if whereClause, ok := db.Statement.Clauses["WHERE"]; ok {
		if where, ok := whereClause.Expression.(clause.Where); ok {
			for _, expr := range where.Exprs {
				if tc.exprContainsCompany(expr) {
					return true
				}
			}
		}
	}

	// Also check the built SQL if available
	sql := db.Statement.SQL.String()
	if sql != "" && strings.Contains(sql, companyColumn) {
		return true
	}

	return false
}

// exprContainsCompany checks if an expression references the company column
func (tc *Callback) exprContainsCompany(expr clause.Expression) bool {
	switch e := expr.(type) {
	case clause.Eq:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == companyColumn
		}
	case clause.IN:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == companyColumn
		}
	case clause.Expr:
		return strings.Contains(e.SQL, companyColumn)
	case clause.AndConditions:
		for _, cond := range e.Exprs {
			if tc.exprContainsCompany(cond) {
				return true
			}
		}
	case clause.OrConditions:
		for _, cond := range e.Exprs {
			if tc.exprContainsCompany(cond) {
				return true
			}
		}
	}
	return false
}

// EnableAutoCompanyFilter registers callbacks that automatically add
// company_guid filtering to queries on scoped tables
func EnableAutoCompanyFilter(db *gorm.DB, required bool) {
	NewCallback(required).Register(db)
}

// DisableAutoCompanyFilter removes the tenant callbacks. This is mainly
// for testing purposes.
func DisableAutoCompanyFilter(db *gorm.DB) {
	_ = db.Callback().Query().Remove("tenant:before_query")
	_ = db.Callback().Update().Remove("tenant:before_update")
	_ = db.Callback().Delete().Remove("tenant:before_delete")
	_ = db.Callback().Row().Remove("tenant:before_row")
}
