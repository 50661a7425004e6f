package model

import (
	"time"

	"gorm.io/gorm"
)

// ClassSession represents a scheduled class for a course
type ClassSession struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	TenantID     uint           `json:"tenant_id" gorm:"index;not null;comment:'Tenant this session belongs to'"`
	CourseID     uint           `json:"course_id" gorm:"index;not null"`
	InstructorID uint           `json:"instructor_id" gorm:"index"`
	Title        string         `json:"title" gorm:"type:varchar(255)"`
	Location     string         `json:"location" gorm:"type:varchar(255)"`
	StartsAt     time.Time      `json:"starts_at" gorm:"index;not null"`
	EndsAt       time.Time      `json:"ends_at" gorm:"not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (s *ClassSession) OwnerTenantID() uint {
	return s.TenantID
}
