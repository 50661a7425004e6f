package tenant

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// HintHeader is the caller-supplied tenant hint, used only when the
// principal has no tenant binding of its own.
const HintHeader = "X-Tenant-ID"

// Resolve returns the effective tenant to filter by, or nil for
// unrestricted access. It is a pure function of its arguments:
//
//  1. a super admin is never restricted, regardless of any hint
//  2. a principal bound to a tenant is restricted to that tenant
//  3. an unbound principal falls back to the request hint
//  4. with no binding and no hint the result is unrestricted
//
// The last case degrades to no filtering rather than denying; callers
// that need a concrete tenant (creation paths) must reject nil themselves.
func Resolve(p Principal, hint *uint) *uint {
	if p.Exempt() {
		return nil
	}
	if p.TenantID != nil {
		return p.TenantID
	}
	if hint != nil {
		return hint
	}
	return nil
}

// HintFromHeader parses the tenant hint header from the request,
// returning nil when absent or malformed
func HintFromHeader(c echo.Context) *uint {
	raw := c.Request().Header.Get(HintHeader)
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	hint := uint(id)
	return &hint
}
