package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lms-service/internal/model"
	"lms-service/internal/store"
	"lms-service/internal/tenant"
	"lms-service/pkg/logger"
	"lms-service/prometheus"
)

// ListEnrollments returns the enrollments visible to the caller
func ListEnrollments(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEnrollmentOperation("list")

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	query := store.Enrollments().Scoped(prin, requestHint(c))

	if courseID := c.QueryParam("course_id"); courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var enrollments []model.Enrollment
	result := query.Find(&enrollments)
	if result.Error != nil {
		log.Error("Failed to list enrollments", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve enrollments"})
	}

	return c.JSON(http.StatusOK, enrollments)
}

// CreateEnrollment enrolls a user in a course and issues the invoice in
// the same transaction
func CreateEnrollment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEnrollmentOperation("enroll")

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	var req struct {
		CourseID uint  `json:"course_id"`
		UserID   *uint `json:"user_id,omitempty"` // defaults to the caller
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.CourseID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "course_id is required"})
	}

	userID := prin.ID
	if req.UserID != nil {
		userID = *req.UserID
	}

	// The scoped fetch guarantees the course is in the caller's tenant;
	// for an exempt caller it resolves to whatever tenant owns the course
	var course model.Course
	result := store.Courses().Scoped(prin, requestHint(c)).First(&course, req.CourseID)
	if result.Error != nil {
		log.Error("Course not found for enrollment",
			zap.Uint("course_id", req.CourseID),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "course not found"})
	}

	// Enrolling another user is an action on that user's record
	if userID != prin.ID {
		var target model.User
		if result := store.Users().Unrestricted("enroll user by primary key").First(&target, userID); result.Error != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		if !tenant.UserPolicy.CanUpdate(prin, &target) {
			return forbidden(c, tenant.UserPolicy, "update")
		}
	}

	// Reject duplicate active enrollments
	var count int64
	store.DB().Model(&model.Enrollment{}).
		Where("course_id = ? AND user_id = ? AND status = ?", course.ID, userID, model.EnrollmentActive).
		Count(&count)
	if count > 0 {
		log.Warn("User already enrolled",
			zap.Uint("course_id", course.ID),
			zap.Uint("user_id", userID))
		return c.JSON(http.StatusConflict, echo.Map{"error": "user is already enrolled in this course"})
	}

	now := time.Now()
	enrollment := model.Enrollment{
		TenantID:   course.TenantID,
		CourseID:   course.ID,
		UserID:     userID,
		Status:     model.EnrollmentActive,
		EnrolledAt: now,
	}

	invoiceStatus := model.InvoicePending
	if course.Price == 0 {
		invoiceStatus = model.InvoicePaid
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	tx := store.DB().Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if result := tx.Create(&enrollment); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create enrollment", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "enrollment failed"})
	}

	invoice := model.Invoice{
		TenantID:     course.TenantID,
		EnrollmentID: enrollment.ID,
		UserID:       userID,
		Number:       fmt.Sprintf("INV-%s", uuid.New().String()[:8]),
		Amount:       course.Price,
		Status:       invoiceStatus,
		IssuedAt:     now,
	}

	if result := tx.Create(&invoice); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create invoice", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "enrollment failed"})
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction commit failed"})
	}

	log.Info("User enrolled",
		zap.Uint("enrollment_id", enrollment.ID),
		zap.Uint("course_id", course.ID),
		zap.Uint("user_id", userID),
		zap.Uint("tenant_id", course.TenantID),
		zap.String("invoice_number", invoice.Number))

	return c.JSON(http.StatusCreated, echo.Map{
		"enrollment": enrollment,
		"invoice":    invoice,
	})
}

// CancelEnrollment cancels an enrollment and voids its pending invoices
func CancelEnrollment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEnrollmentOperation("cancel")
	id := c.Param("id")

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	var enrollment model.Enrollment
	result := store.Enrollments().Unrestricted("cancel enrollment by primary key").First(&enrollment, id)
	if result.Error != nil {
		log.Error("Enrollment not found", zap.String("enrollment_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "enrollment not found"})
	}

	if !tenant.EnrollmentPolicy.CanUpdate(prin, &enrollment) {
		return forbidden(c, tenant.EnrollmentPolicy, "update")
	}

	if enrollment.Status == model.EnrollmentCancelled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "enrollment is already cancelled"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	tx := store.DB().Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if result := tx.Model(&enrollment).Update("status", model.EnrollmentCancelled); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to cancel enrollment", zap.String("enrollment_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancellation failed"})
	}

	if result := tx.Model(&model.Invoice{}).
		Where("enrollment_id = ? AND status = ?", enrollment.ID, model.InvoicePending).
		Update("status", model.InvoiceVoid); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to void invoices", zap.String("enrollment_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancellation failed"})
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction commit failed"})
	}

	log.Info("Enrollment cancelled",
		zap.Uint("enrollment_id", enrollment.ID),
		zap.Uint("course_id", enrollment.CourseID),
		zap.Uint("user_id", enrollment.UserID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Enrollment cancelled successfully"})
}
