package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lms-service/internal/model"
	"lms-service/internal/store"
	"lms-service/internal/tenant"
	"lms-service/pkg/jwtutil"
	"lms-service/pkg/logger"
	"lms-service/prometheus"
)

// CreateTenant handles tenant creation; the caller becomes the owner and
// is bound to the new tenant
func CreateTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("create")

	prin, ok := currentPrincipal(c)
	if !ok {
		log.Error("Failed to get principal from context")
		prometheus.RecordAuthError("unauthorized_tenant_creation")
		return unauthenticated(c)
	}

	var req struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Settings    model.Settings `json:"settings,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant creation request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" {
		log.Error("Invalid tenant data", zap.String("name", req.Name))
		prometheus.RecordAuthError("incomplete_tenant_creation")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	tx := store.DB().Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	tnt := model.Tenant{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     prin.ID,
		Settings:    req.Settings,
		Active:      true,
	}

	if result := tx.Create(&tnt); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create tenant", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant creation failed"})
	}

	// Bind the creator to the new tenant; a super admin keeps its role
	// and stays unbound
	role := prin.Role
	if !prin.Exempt() {
		role = model.RoleAdmin
		updates := map[string]interface{}{"tenant_id": tnt.ID, "role": role}
		if result := tx.Model(&model.User{}).Where("id = ?", prin.ID).Updates(updates); result.Error != nil {
			tx.Rollback()
			log.Error("Failed to bind user to tenant", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user update failed"})
		}
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction commit failed"})
	}

	log.Info("Tenant created",
		zap.String("name", tnt.Name),
		zap.Uint("id", tnt.ID),
		zap.Uint("owner_id", tnt.OwnerID))

	response := echo.Map{
		"message": "Tenant created successfully",
		"tenant":  tnt,
	}

	// Issue a fresh token carrying the new tenant claims so the caller
	// does not have to log in again
	if !prin.Exempt() {
		tenantID := tnt.ID
		token, err := jwtutil.GenerateTokenWithTenant(prin.Email, prin.ID, role, &tenantID, tnt.Name)
		if err == nil {
			response["token"] = token
		} else {
			log.Error("Failed to generate tenant token", zap.Error(err))
		}
	}

	return c.JSON(http.StatusCreated, response)
}

// GetTenant retrieves tenant details
func GetTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("access")

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid tenant ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var tnt model.Tenant
	if result := store.DB().First(&tnt, id); result.Error != nil {
		log.Error("Tenant not found", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}

	if !tenant.TenantPolicy.CanView(prin, &tnt) {
		return forbidden(c, tenant.TenantPolicy, "view")
	}

	return c.JSON(http.StatusOK, tnt)
}

// GetTenantSettings returns the tenant settings blob
func GetTenantSettings(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("access_settings")

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid tenant ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	var tnt model.Tenant
	if result := store.DB().First(&tnt, id); result.Error != nil {
		log.Error("Tenant not found", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}

	if !tenant.TenantPolicy.CanView(prin, &tnt) {
		return forbidden(c, tenant.TenantPolicy, "view")
	}

	return c.JSON(http.StatusOK, tnt.Settings)
}

// UpdateTenantSettings replaces the tenant settings blob
func UpdateTenantSettings(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("update_settings")

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid tenant ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	var req model.Settings
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse settings", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var tnt model.Tenant
	if result := store.DB().First(&tnt, id); result.Error != nil {
		log.Error("Tenant not found", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}

	if !tenant.TenantPolicy.CanUpdate(prin, &tnt) {
		return forbidden(c, tenant.TenantPolicy, "update")
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	tnt.Settings = req
	if result := store.DB().Save(&tnt); result.Error != nil {
		log.Error("Failed to update tenant settings", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update settings"})
	}

	log.Info("Tenant settings updated",
		zap.Uint("tenant_id", tnt.ID),
		zap.String("timezone", req.Timezone),
		zap.String("language", req.Language),
		zap.String("theme", req.Theme))
	return c.JSON(http.StatusOK, tnt.Settings)
}
