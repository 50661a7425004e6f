package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms-service/internal/model"
)

func TestCreateEnrollmentIssuesInvoice(t *testing.T) {
	env := setupEnv(t)

	body := map[string]interface{}{"course_id": env.course1.ID}
	rec := env.request(t, http.MethodPost, "/api/enrollments", token(t, env.instructor), body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var enrollment model.Enrollment
	require.NoError(t, env.db.Where("course_id = ?", env.course1.ID).First(&enrollment).Error)
	assert.Equal(t, env.tenant1.ID, enrollment.TenantID)
	assert.Equal(t, model.EnrollmentActive, enrollment.Status)

	var invoice model.Invoice
	require.NoError(t, env.db.Where("enrollment_id = ?", enrollment.ID).First(&invoice).Error)
	assert.Equal(t, env.course1.Price, invoice.Amount)
	assert.Equal(t, model.InvoicePending, invoice.Status)
	assert.Equal(t, env.tenant1.ID, invoice.TenantID)
}

func TestDuplicateEnrollmentIsRejected(t *testing.T) {
	env := setupEnv(t)

	body := map[string]interface{}{"course_id": env.course1.ID}
	first := env.request(t, http.MethodPost, "/api/enrollments", token(t, env.instructor), body)
	require.Equal(t, http.StatusCreated, first.Code)

	second := env.request(t, http.MethodPost, "/api/enrollments", token(t, env.instructor), body)
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestEnrollmentInForeignCourseIsNotFound(t *testing.T) {
	// The scoped course lookup hides foreign courses entirely
	env := setupEnv(t)

	body := map[string]interface{}{"course_id": env.course2.ID}
	rec := env.request(t, http.MethodPost, "/api/enrollments", token(t, env.instructor), body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelForeignEnrollmentIsForbidden(t *testing.T) {
	env := setupEnv(t)

	foreign := model.Enrollment{
		TenantID: env.tenant2.ID,
		CourseID: env.course2.ID,
		UserID:   env.outsider.ID,
		Status:   model.EnrollmentActive,
	}
	require.NoError(t, env.db.Create(&foreign).Error)

	path := fmt.Sprintf("/api/enrollments/%d", foreign.ID)
	rec := env.request(t, http.MethodDelete, path, token(t, env.instructor), nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	var untouched model.Enrollment
	require.NoError(t, env.db.First(&untouched, foreign.ID).Error)
	assert.Equal(t, model.EnrollmentActive, untouched.Status)
}

func TestCancelEnrollmentVoidsPendingInvoice(t *testing.T) {
	env := setupEnv(t)

	body := map[string]interface{}{"course_id": env.course1.ID}
	rec := env.request(t, http.MethodPost, "/api/enrollments", token(t, env.instructor), body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var enrollment model.Enrollment
	require.NoError(t, env.db.Where("course_id = ?", env.course1.ID).First(&enrollment).Error)

	path := fmt.Sprintf("/api/enrollments/%d", enrollment.ID)
	cancel := env.request(t, http.MethodDelete, path, token(t, env.instructor), nil)
	require.Equal(t, http.StatusOK, cancel.Code)

	var invoice model.Invoice
	require.NoError(t, env.db.Where("enrollment_id = ?", enrollment.ID).First(&invoice).Error)
	assert.Equal(t, model.InvoiceVoid, invoice.Status)

	var cancelled model.Enrollment
	require.NoError(t, env.db.First(&cancelled, enrollment.ID).Error)
	assert.Equal(t, model.EnrollmentCancelled, cancelled.Status)
}

func TestListEnrollmentsIsScoped(t *testing.T) {
	env := setupEnv(t)

	enrollments := []model.Enrollment{
		{TenantID: env.tenant1.ID, CourseID: env.course1.ID, UserID: env.instructor.ID, Status: model.EnrollmentActive},
		{TenantID: env.tenant2.ID, CourseID: env.course2.ID, UserID: env.outsider.ID, Status: model.EnrollmentActive},
	}
	require.NoError(t, env.db.Create(&enrollments).Error)

	rec := env.request(t, http.MethodGet, "/api/enrollments", token(t, env.instructor), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var visible []model.Enrollment
	decodeBody(t, rec, &visible)
	require.Len(t, visible, 1)
	assert.Equal(t, env.tenant1.ID, visible[0].TenantID)
}
