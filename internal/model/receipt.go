package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receipt tracks the async PDF/email pipeline for one order.
// Status: "pending" | "issued" | "error"
type Receipt struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrgID   uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderID string    `gorm:"not null;index"`
	Total   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status  string          `gorm:"type:varchar(20);not null;default:'pending'"`
	// PDFPath is relative to the PDF_STORAGE_PATH env var
	PDFPath       *string
	CustomerEmail *string
	EmailSent     bool `gorm:"not null;default:false"`
	// Retry fields, used by the retry cron to re-attempt failed generations
	RetryCount  int        `gorm:"not null;default:0"`
	NextRetryAt *time.Time
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
