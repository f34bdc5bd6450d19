package tenant

import (
	"gorm.io/gorm"
)

// ApplySession configures the PostgreSQL session variables the row level
// security policies read. It must run inside the transaction the request
// uses, before any scoped query.
//
// Both variables are RESET first so a pooled connection never leaks the
// previous tenant. set_config with bind parameters keeps the values out
// of the SQL text.
func ApplySession(tx *gorm.DB, tc Context) error {
	if tx.Dialector.Name() != "postgres" {
		// SQLite in tests has no session variables or policies; the
		// application-level filter still applies.
		return nil
	}

	if err := tx.Exec("RESET app.tenant").Error; err != nil {
		return err
	}
	if err := tx.Exec("RESET app.bypass_rls").Error; err != nil {
		return err
	}

	if tc.Bypass {
		return tx.Exec("SELECT set_config('app.bypass_rls', 'true', false)").Error
	}

	if !tc.Scoped() {
		// Leave the variables unset: every policy check fails closed
		return ErrCompanyIDRequired
	}

	return tx.Exec("SELECT set_config('app.tenant', ?, false)", tc.CompanyGUID.String()).Error
}
