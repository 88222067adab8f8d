package model

import (
	"time"

	"github.com/google/uuid"
)

// Document kinds stored per organization.
const (
	DocKindInventory = "pos_inventory"
	DocKindOrders    = "pos_orders"
)

// StateDocument holds one JSON state document per (organization, kind).
// Each organization owns exactly one pos_inventory and one pos_orders row;
// the composite unique index is what makes writes idempotent upserts.
type StateDocument struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrgID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_state_org_kind"`
	Kind      string    `gorm:"type:varchar(30);not null;uniqueIndex:idx_state_org_kind"`
	Data      []byte    `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
	CreatedAt time.Time
}

// TableName keeps the table name explicit rather than relying on pluralization.
func (StateDocument) TableName() string { return "state_documents" }
