package dto

import (
	"github.com/shopspring/decimal"

	"brewpos/internal/model"
)

type UpsertProductRequest struct {
	ID          string           `json:"id,omitempty"`
	Name        string           `json:"name" binding:"required,min=1,max=128"`
	Section     string           `json:"section" binding:"required"`
	Stock       decimal.Decimal  `json:"stock"`
	Price       decimal.Decimal  `json:"price"`
	UsagePerCup *decimal.Decimal `json:"usagePerCup,omitempty"`
	Grams       *int64           `json:"grams,omitempty"`
}

type AdjustStockRequest struct {
	ProductID string          `json:"product_id" binding:"required"`
	Section   string          `json:"section" binding:"required"`
	DeltaKg   decimal.Decimal `json:"delta_kg" binding:"required"`
	Reason    string          `json:"reason,omitempty"`
}

type InventoryResponse struct {
	Espresso     []model.Product `json:"espresso"`
	SingleOrigin []model.Product `json:"single_origin"`
	Beans        []model.Product `json:"beans"`
}

func ToInventoryResponse(inv *model.Inventory) InventoryResponse {
	return InventoryResponse{
		Espresso:     inv.Espresso,
		SingleOrigin: inv.SingleOrigin,
		Beans:        inv.Beans,
	}
}
