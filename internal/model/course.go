package model

import (
	"time"

	"gorm.io/gorm"
)

// Course represents a course offered by a tenant
type Course struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	TenantID    uint           `json:"tenant_id" gorm:"index;not null;comment:'Tenant this course belongs to'"`
	Title       string         `json:"title" gorm:"type:varchar(255);not null"`
	Description string         `json:"description" gorm:"type:text"`
	CategoryID  uint           `json:"category_id" gorm:"index"`
	Price       float64        `json:"price" gorm:"default:0"`
	Published   bool           `json:"published" gorm:"default:false"`
	CreatedBy   uint           `json:"created_by" gorm:"index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (c *Course) OwnerTenantID() uint {
	return c.TenantID
}
