// Package tenant implements the tenant isolation core: resolving the
// effective tenant for a request, narrowing every query against a
// tenant-owned entity to that tenant, and the per-resource policies that
// re-check ownership before any mutation. The resolver and policies are
// pure functions of their inputs; the principal is always passed
// explicitly, never read from ambient state.
package tenant

import (
	"lms-service/internal/model"
)

// Principal is the acting identity for a request. A non-super-admin
// principal is expected to carry a tenant binding; TenantID is nil only
// for a super admin not bound to one tenant.
type Principal struct {
	ID       uint
	Email    string
	Role     string
	TenantID *uint
}

// Exempt reports whether the principal is exempt from tenant scoping
func (p Principal) Exempt() bool {
	return p.Role == model.RoleSuperAdmin
}
