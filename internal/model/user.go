package model

import (
	"time"

	"gorm.io/gorm"
)

// User roles. RoleSuperAdmin is exempt from tenant scoping.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

// User represents the user model stored in the database
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100)"`
	Email     string         `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Password  string         `json:"-" gorm:"type:varchar(255)"`
	Role      string         `json:"role" gorm:"type:varchar(50);not null;default:'student'"`
	TenantID  *uint          `json:"tenant_id,omitempty" gorm:"index"` // nil only for an unbound super admin
	Active    bool           `json:"active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// OwnerTenantID returns the tenant the user belongs to, 0 when unbound
func (u *User) OwnerTenantID() uint {
	if u.TenantID == nil {
		return 0
	}
	return *u.TenantID
}
