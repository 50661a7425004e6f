package model

import (
	"time"

	"gorm.io/gorm"
)

// Category represents a course category, unique per tenant by name
type Category struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	TenantID    uint           `json:"tenant_id" gorm:"index;not null;uniqueIndex:idx_tenant_category_name;comment:'Tenant this category belongs to'"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_tenant_category_name"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (c *Category) OwnerTenantID() uint {
	return c.TenantID
}
