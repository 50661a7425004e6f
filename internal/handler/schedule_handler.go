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

// SessionRequest defines the structure for class session creation/update requests
type SessionRequest struct {
	CourseID     uint      `json:"course_id" validate:"required"`
	InstructorID uint      `json:"instructor_id"`
	Title        string    `json:"title"`
	Location     string    `json:"location"`
	StartsAt     time.Time `json:"starts_at" validate:"required"`
	EndsAt       time.Time `json:"ends_at" validate:"required"`
}

func (r *SessionRequest) validate() string {
	if r.CourseID == 0 {
		return "course_id is required"
	}
	if r.StartsAt.IsZero() || r.EndsAt.IsZero() {
		return "starts_at and ends_at are required"
	}
	if !r.EndsAt.After(r.StartsAt) {
		return "ends_at must be after starts_at"
	}
	return ""
}

// ListSessions returns scheduled class sessions visible to the caller
func ListSessions(c echo.Context) error {
	log := logger.FromContext(c)

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	query := store.Sessions().Scoped(prin, requestHint(c))

	if courseID := c.QueryParam("course_id"); courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}
	if from := c.QueryParam("from"); from != "" {
		if ts, err := time.Parse(time.RFC3339, from); err == nil {
			query = query.Where("starts_at >= ?", ts)
		} else {
			log.Warn("Invalid from parameter", zap.String("value", from), zap.Error(err))
		}
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var sessions []model.ClassSession
	result := query.Order("starts_at").Find(&sessions)
	if result.Error != nil {
		log.Error("Failed to list sessions", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve sessions"})
	}

	return c.JSON(http.StatusOK, sessions)
}

// GetSession returns a single class session by ID
func GetSession(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	var session model.ClassSession
	result := store.Sessions().Scoped(prin, requestHint(c)).First(&session, id)
	if result.Error != nil {
		log.Error("Session not found", zap.String("session_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}

	return c.JSON(http.StatusOK, session)
}

// CreateSession schedules a class for a course in the caller's tenant
func CreateSession(c echo.Context) error {
	log := logger.FromContext(c)

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	var req SessionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	// The scoped fetch pins the session to the course's tenant
	var course model.Course
	result := store.Courses().Scoped(prin, requestHint(c)).First(&course, req.CourseID)
	if result.Error != nil {
		log.Error("Course not found for session",
			zap.Uint("course_id", req.CourseID),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "course not found"})
	}

	session := model.ClassSession{
		TenantID:     course.TenantID,
		CourseID:     course.ID,
		InstructorID: req.InstructorID,
		Title:        req.Title,
		Location:     req.Location,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := store.DB().Create(&session); result.Error != nil {
		log.Error("Failed to create session",
			zap.Uint("course_id", course.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create session"})
	}

	log.Info("Session scheduled",
		zap.Uint("session_id", session.ID),
		zap.Uint("course_id", session.CourseID),
		zap.Time("starts_at", session.StartsAt))
	return c.JSON(http.StatusCreated, session)
}

// UpdateSession reschedules or edits a class session
func UpdateSession(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	var req SessionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("session_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	var session model.ClassSession
	result := store.Sessions().Unrestricted("update session by primary key").First(&session, id)
	if result.Error != nil {
		log.Error("Session not found for update", zap.String("session_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}

	if !tenant.SessionPolicy.CanUpdate(prin, &session) {
		return forbidden(c, tenant.SessionPolicy, "update")
	}

	if !req.StartsAt.IsZero() {
		session.StartsAt = req.StartsAt
	}
	if !req.EndsAt.IsZero() {
		session.EndsAt = req.EndsAt
	}
	if !session.EndsAt.After(session.StartsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be after starts_at"})
	}
	if req.Title != "" {
		session.Title = req.Title
	}
	if req.Location != "" {
		session.Location = req.Location
	}
	if req.InstructorID != 0 {
		session.InstructorID = req.InstructorID
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := store.DB().Save(&session); result.Error != nil {
		log.Error("Failed to update session", zap.String("session_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update session"})
	}

	log.Info("Session updated",
		zap.Uint("session_id", session.ID),
		zap.Time("starts_at", session.StartsAt),
		zap.Time("ends_at", session.EndsAt))
	return c.JSON(http.StatusOK, session)
}

// DeleteSession removes a class session from the schedule
func DeleteSession(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	prin, ok := currentPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}

	var session model.ClassSession
	result := store.Sessions().Unrestricted("delete session by primary key").First(&session, id)
	if result.Error != nil {
		log.Warn("Session not found for deletion", zap.String("session_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}

	if !tenant.SessionPolicy.CanDelete(prin, &session) {
		return forbidden(c, tenant.SessionPolicy, "delete")
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result = store.Sessions().Scoped(prin, requestHint(c)).Delete(&model.ClassSession{}, id)
	if result.Error != nil {
		log.Error("Failed to delete session", zap.String("session_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete session"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}

	log.Info("Session deleted", zap.String("session_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Session deleted successfully"})
}
