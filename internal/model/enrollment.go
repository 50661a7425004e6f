package model

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment statuses
const (
	EnrollmentActive    = "active"
	EnrollmentCancelled = "cancelled"
	EnrollmentCompleted = "completed"
)

// Enrollment represents a user's enrollment in a course
type Enrollment struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	TenantID   uint           `json:"tenant_id" gorm:"index;not null;comment:'Tenant this enrollment belongs to'"`
	CourseID   uint           `json:"course_id" gorm:"index;not null"`
	UserID     uint           `json:"user_id" gorm:"index;not null"`
	Status     string         `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	EnrolledAt time.Time      `json:"enrolled_at"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (e *Enrollment) OwnerTenantID() uint {
	return e.TenantID
}
