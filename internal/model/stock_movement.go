package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockMovement records each stock change applied through the order engine.
// Rows are written best-effort (a failed insert never blocks the sale) and
// exist purely for supervisor auditing.
type StockMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrgID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID string    `gorm:"not null;index"`
	Type      string    `gorm:"not null"` // "sale" | "void_restock" | "manual_adjust"
	// DeltaKg is negative for deductions, positive for restocks.
	DeltaKg   decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Reason    string
	OrderID   *string `gorm:"index"`
	CreatedAt time.Time
}

func (StockMovement) TableName() string { return "stock_movements" }
