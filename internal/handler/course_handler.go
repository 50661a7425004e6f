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
	"lms-service/pkg/logger"
	"lms-service/prometheus"
)

// CourseRequest defines the structure for course creation/update requests
type CourseRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	CategoryID  uint    `json:"category_id"`
	Price       float64 `json:"price"`
	Published   bool    `json:"published"`
	TenantID    *uint   `json:"tenant_id,omitempty"` // honored only for super admins
}

// ListCourses handles retrieving all courses with optional filtering
func ListCourses(c echo.Context) error {
	log := logger.FromContext(c)

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	query := store.Courses().Scoped(prin, requestHint(c))

	// Filter by published status if specified
	published := c.QueryParam("published")
	if published != "" {
		if val, err := strconv.ParseBool(published); err == nil {
			query = query.Where("published = ?", val)
		} else {
			log.Warn("Invalid published parameter", zap.String("value", published), zap.Error(err))
		}
	}

	// Filter by category if specified
	categoryID := c.QueryParam("category_id")
	if categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var courses []model.Course
	result := query.Find(&courses)
	if result.Error != nil {
		log.Error("Failed to list courses", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve courses"})
	}

	log.Info("Courses retrieved", zap.Int("count", len(courses)))
	return c.JSON(http.StatusOK, courses)
}

// GetCourse handles retrieving a single course by ID
func GetCourse(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	var course model.Course
	result := store.Courses().Scoped(prin, requestHint(c)).First(&course, id)
	if result.Error != nil {
		log.Error("Course not found", zap.String("course_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "course not found"})
	}

	return c.JSON(http.StatusOK, course)
}

// CreateCourse handles creating a new course for the caller's tenant
func CreateCourse(c echo.Context) error {
	log := logger.FromContext(c)

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	var req CourseRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if req.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
	}

	tenantID, ok := creationTenant(prin, requestHint(c), req.TenantID)
	if !ok {
		log.Warn("No tenant context for course creation")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant context required"})
	}

	// The category, when given, must belong to the same tenant
	if req.CategoryID != 0 {
		var category model.Category
		result := store.DB().Where("id = ? AND tenant_id = ?", req.CategoryID, tenantID).First(&category)
		if result.Error != nil {
			log.Warn("Category not found for tenant",
				zap.Uint("category_id", req.CategoryID),
				zap.Uint("tenant_id", tenantID))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "category not found"})
		}
	}

	course := model.Course{
		TenantID:    tenantID,
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Price:       req.Price,
		Published:   req.Published,
		CreatedBy:   prin.ID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := store.DB().Create(&course); result.Error != nil {
		log.Error("Failed to create course",
			zap.String("title", req.Title),
			zap.Uint("tenant_id", tenantID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create course"})
	}

	log.Info("Course created",
		zap.Uint("course_id", course.ID),
		zap.String("title", course.Title),
		zap.Uint("tenant_id", course.TenantID))
	return c.JSON(http.StatusCreated, course)
}

// UpdateCourse handles updating an existing course
func UpdateCourse(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	var req CourseRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("course_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	// Fetch by primary key without the scope; the policy below closes
	// the cross-tenant gap for direct-by-id access
	var course model.Course
	result := store.Courses().Unrestricted("update course by primary key").First(&course, id)
	if result.Error != nil {
		log.Error("Course not found for update", zap.String("course_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "course not found"})
	}

	if !tenant.CoursePolicy.CanUpdate(prin, &course) {
		return forbidden(c, tenant.CoursePolicy, "update")
	}

	if req.CategoryID != 0 && req.CategoryID != course.CategoryID {
		var category model.Category
		result := store.DB().Where("id = ? AND tenant_id = ?", req.CategoryID, course.TenantID).First(&category)
		if result.Error != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "category not found"})
		}
	}
	if req.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
	}

	if req.Title != "" {
		course.Title = req.Title
	}
	course.Description = req.Description
	course.CategoryID = req.CategoryID
	course.Price = req.Price
	course.Published = req.Published

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := store.DB().Save(&course); result.Error != nil {
		log.Error("Failed to update course", zap.String("course_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update course"})
	}

	log.Info("Course updated",
		zap.Uint("course_id", course.ID),
		zap.String("title", course.Title),
		zap.Bool("published", course.Published))
	return c.JSON(http.StatusOK, course)
}

// DeleteCourse handles deleting a course (soft delete)
func DeleteCourse(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	var course model.Course
	result := store.Courses().Unrestricted("delete course by primary key").First(&course, id)
	if result.Error != nil {
		log.Warn("Course not found for deletion", zap.String("course_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "course not found"})
	}

	if !tenant.CoursePolicy.CanDelete(prin, &course) {
		return forbidden(c, tenant.CoursePolicy, "delete")
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result = store.Courses().Scoped(prin, requestHint(c)).Delete(&model.Course{}, id)
	if result.Error != nil {
		log.Error("Failed to delete course", zap.String("course_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete course"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "course not found"})
	}

	log.Info("Course deleted", zap.String("course_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Course deleted successfully"})
}
