package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lms-service/internal/model"
	"lms-service/internal/store"
	"lms-service/internal/tenant"
	"lms-service/pkg/logger"
	"lms-service/prometheus"
)

// ListUsers returns the users visible to the caller's tenant
func ListUsers(c echo.Context) error {
	log := logger.FromContext(c)

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var users []model.User
	result := store.Users().Scoped(prin, requestHint(c)).Find(&users)
	if result.Error != nil {
		log.Error("Failed to list users", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve users"})
	}

	return c.JSON(http.StatusOK, users)
}

// GetUser returns a single user within the caller's tenant
func GetUser(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	var user model.User
	result := store.Users().Scoped(prin, requestHint(c)).First(&user, id)
	if result.Error != nil {
		log.Error("User not found", zap.String("user_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateUser updates a tenant member's name, role or active flag. The
// tenant binding itself is immutable.
func UpdateUser(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	var req struct {
		Name   string `json:"name"`
		Role   string `json:"role"`
		Active *bool  `json:"active,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	// Fetch by primary key without the scope; the policy below is the
	// check that prevents cross-tenant access
	var user model.User
	result := store.Users().Unrestricted("update user by primary key").First(&user, id)
	if result.Error != nil {
		log.Error("User not found for update", zap.String("user_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	if !tenant.UserPolicy.CanUpdate(prin, &user) {
		return forbidden(c, tenant.UserPolicy, "update")
	}

	if req.Role != "" {
		switch req.Role {
		case model.RoleAdmin, model.RoleInstructor, model.RoleStudent:
			user.Role = req.Role
		case model.RoleSuperAdmin:
			// Only an existing super admin may mint another one
			if !prin.Exempt() {
				return forbidden(c, tenant.UserPolicy, "update")
			}
			user.Role = req.Role
		default:
			log.Warn("Unknown role", zap.String("role", req.Role))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
		}
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := store.DB().Save(&user); result.Error != nil {
		log.Error("Failed to update user", zap.String("user_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
	}

	log.Info("User updated",
		zap.Uint("user_id", user.ID),
		zap.String("role", user.Role),
		zap.Bool("active", user.Active))
	return c.JSON(http.StatusOK, user)
}

// DeleteUser soft-deletes a tenant member
func DeleteUser(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	var user model.User
	result := store.Users().Unrestricted("delete user by primary key").First(&user, id)
	if result.Error != nil {
		log.Error("User not found for deletion", zap.String("user_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	if !tenant.UserPolicy.CanDelete(prin, &user) {
		return forbidden(c, tenant.UserPolicy, "delete")
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := store.DB().Delete(&user); result.Error != nil {
		log.Error("Failed to delete user", zap.String("user_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete user"})
	}

	log.Info("User deleted", zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}
