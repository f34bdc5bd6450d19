package tenant

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Context carries the authenticated caller's tenant identity through a
// request. Bypass is set only for system administrators and disables
// both the application-level filter and the database session policy.
type Context struct {
	CompanyGUID uuid.UUID
	Bypass      bool

	// Actor identity, used for workflow audit rows
	UserGUID        *uuid.UUID
	UserName        string
	APIKeyGUID      *uuid.UUID
	WorkstationGUID *uuid.UUID
	WorkstationName string
	Role            string
}

// IntoContext attaches a tenant Context to ctx
func IntoContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, tc)
}

// FromContext extracts the tenant Context from ctx.
// The second return is false when no tenant identity was established.
func FromContext(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(ctxKey{}).(Context)
	return tc, ok
}

// Scoped reports whether the context carries a usable tenant identity
func (tc Context) Scoped() bool {
	return tc.Bypass || tc.CompanyGUID != uuid.Nil
}
