package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lms-service/internal/tenant"
	"lms-service/pkg/jwtutil"
	"lms-service/pkg/logger"
	"lms-service/prometheus"
)

const principalKey = "principal"

// AuthMiddleware validates the JWT token from the Authorization header
// and places the acting principal in the request context
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		prin := tenant.Principal{
			ID:       claims.UserID,
			Email:    claims.Email,
			Role:     claims.Role,
			TenantID: claims.TenantID,
		}
		c.Set(principalKey, prin)

		if claims.TenantID != nil {
			log.Debug("Request authenticated with tenant context",
				zap.Uint("user_id", claims.UserID),
				zap.Uint("tenant_id", *claims.TenantID),
				zap.String("role", claims.Role))
		}

		return next(c)
	}
}

// PrincipalFromContext retrieves the acting principal placed in the
// context by AuthMiddleware
func PrincipalFromContext(c echo.Context) (tenant.Principal, bool) {
	prin, ok := c.Get(principalKey).(tenant.Principal)
	return prin, ok
}
