package model

import (
	"time"

	"github.com/google/uuid"
)

// Employee is the directory record behind both authentication and organization
// resolution: every session maps to an employee, and the employee's OrgID is
// the tenant boundary for all inventory/order state. A nil OrgID is a valid
// row (freshly created account) but blocks any org-scoped operation.
type Employee struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	Email        *string
	PasswordHash string     `gorm:"not null"`
	Role         string     `gorm:"not null;default:'cashier'"` // cashier | supervisor | admin
	OrgID        *uuid.UUID `gorm:"type:uuid;index"`
	Active       bool       `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
