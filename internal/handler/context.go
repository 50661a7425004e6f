package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lms-service/internal/middleware"
	"lms-service/internal/tenant"
	"lms-service/pkg/logger"
	"lms-service/prometheus"
)

// currentPrincipal retrieves the acting principal set by the auth middleware
func currentPrincipal(c echo.Context) (tenant.Principal, bool) {
	return middleware.PrincipalFromContext(c)
}

// requestHint reads the optional tenant hint header
func requestHint(c echo.Context) *uint {
	return tenant.HintFromHeader(c)
}

// unauthenticated is the response when no principal is present
func unauthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
}

// forbidden records the policy denial and returns an explicit 403,
// distinct from not-found, so denials never masquerade as missing rows
func forbidden(c echo.Context, pl tenant.Policy, action string) error {
	logger.FromContext(c).Warn("policy denied",
		zap.String("resource", pl.Resource),
		zap.String("action", action))
	prometheus.RecordPolicyDenial(pl.Resource, action)
	return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
}

// creationTenant determines the tenant a new record belongs to. A scoped
// principal always creates within its own resolved tenant; a super admin
// may target any tenant through the request body or the hint header.
func creationTenant(p tenant.Principal, hint *uint, explicit *uint) (uint, bool) {
	if resolved := tenant.Resolve(p, hint); resolved != nil {
		return *resolved, true
	}
	if p.Exempt() {
		if explicit != nil {
			return *explicit, true
		}
		if hint != nil {
			return *hint, true
		}
	}
	return 0, false
}
