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

// CategoryRequest defines the structure for category creation/update requests
type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	TenantID    *uint  `json:"tenant_id,omitempty"` // honored only for super admins
}

// ListCategories handles retrieving all categories visible to the caller
func ListCategories(c echo.Context) error {
	log := logger.FromContext(c)

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var categories []model.Category
	result := store.Categories().Scoped(prin, requestHint(c)).Find(&categories)
	if result.Error != nil {
		log.Error("Failed to list categories", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve categories"})
	}

	return c.JSON(http.StatusOK, categories)
}

// GetCategory handles retrieving a single category by ID
func GetCategory(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	var category model.Category
	result := store.Categories().Scoped(prin, requestHint(c)).First(&category, id)
	if result.Error != nil {
		log.Error("Category not found", zap.String("category_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}

	return c.JSON(http.StatusOK, category)
}

// CreateCategory handles creating a new category for the caller's tenant
func CreateCategory(c echo.Context) error {
	log := logger.FromContext(c)

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	tenantID, ok := creationTenant(prin, requestHint(c), req.TenantID)
	if !ok {
		log.Warn("No tenant context for category creation")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant context required"})
	}

	// Category names are unique per tenant
	var count int64
	store.DB().Model(&model.Category{}).
		Where("name = ? AND tenant_id = ?", req.Name, tenantID).
		Count(&count)
	if count > 0 {
		log.Warn("Category already exists for this tenant",
			zap.String("name", req.Name),
			zap.Uint("tenant_id", tenantID))
		return c.JSON(http.StatusConflict, echo.Map{"error": "category with this name already exists"})
	}

	category := model.Category{
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := store.DB().Create(&category); result.Error != nil {
		log.Error("Failed to create category",
			zap.String("name", req.Name),
			zap.Uint("tenant_id", tenantID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create category"})
	}

	log.Info("Category created",
		zap.Uint("category_id", category.ID),
		zap.String("name", category.Name),
		zap.Uint("tenant_id", category.TenantID))
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory handles updating an existing category
func UpdateCategory(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	var category model.Category
	result := store.Categories().Unrestricted("update category by primary key").First(&category, id)
	if result.Error != nil {
		log.Error("Category not found for update", zap.String("category_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}

	if !tenant.CategoryPolicy.CanUpdate(prin, &category) {
		return forbidden(c, tenant.CategoryPolicy, "update")
	}

	if req.Name != "" && req.Name != category.Name {
		var count int64
		store.DB().Model(&model.Category{}).
			Where("name = ? AND tenant_id = ? AND id != ?", req.Name, category.TenantID, category.ID).
			Count(&count)
		if count > 0 {
			return c.JSON(http.StatusConflict, echo.Map{"error": "category with this name already exists"})
		}
		category.Name = req.Name
	}
	category.Description = req.Description

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := store.DB().Save(&category); result.Error != nil {
		log.Error("Failed to update category", zap.String("category_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update category"})
	}

	log.Info("Category updated", zap.Uint("category_id", category.ID), zap.String("name", category.Name))
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory handles deleting a category (soft delete)
func DeleteCategory(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	var category model.Category
	result := store.Categories().Unrestricted("delete category by primary key").First(&category, id)
	if result.Error != nil {
		log.Warn("Category not found for deletion", zap.String("category_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}

	if !tenant.CategoryPolicy.CanDelete(prin, &category) {
		return forbidden(c, tenant.CategoryPolicy, "delete")
	}

	// Delete through the scoped chain as well, so the write itself
	// carries the tenant predicate
	defer prometheus.TrackDBOperation("delete")(time.Now())
	result = store.Categories().Scoped(prin, requestHint(c)).Delete(&model.Category{}, id)
	if result.Error != nil {
		log.Error("Failed to delete category", zap.String("category_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete category"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}

	log.Info("Category deleted", zap.String("category_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Category deleted successfully"})
}
