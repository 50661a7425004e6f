package model

import (
	"time"

	"gorm.io/gorm"
)

// Invoice statuses
const (
	InvoicePending = "pending"
	InvoicePaid    = "paid"
	InvoiceVoid    = "void"
)

// Invoice represents a billing record created when a user enrolls
type Invoice struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	TenantID     uint           `json:"tenant_id" gorm:"index;not null;comment:'Tenant this invoice belongs to'"`
	EnrollmentID uint           `json:"enrollment_id" gorm:"index;not null"`
	UserID       uint           `json:"user_id" gorm:"index;not null"`
	Number       string         `json:"number" gorm:"type:varchar(50);uniqueIndex"`
	Amount       float64        `json:"amount" gorm:"not null"`
	Status       string         `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	IssuedAt     time.Time      `json:"issued_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (i *Invoice) OwnerTenantID() uint {
	return i.TenantID
}
