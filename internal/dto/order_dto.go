package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"brewpos/internal/model"
)

type CheckoutItem struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type CheckoutRequest struct {
	Items           []CheckoutItem   `json:"items" binding:"required,min=1,dive"`
	Payment         string           `json:"payment" binding:"required,oneof=cash debit credit transfer"`
	Channel         string           `json:"channel" binding:"required,oneof=instore delivery"`
	DeliveryAddress string           `json:"delivery_address,omitempty"`
	DeliveryFee     *decimal.Decimal `json:"delivery_fee,omitempty"`
	// Total is optional: when omitted the engine prices the order from the
	// catalog. A supplied total wins (discounts applied at the register).
	Total         *decimal.Decimal `json:"total,omitempty"`
	CustomerEmail string           `json:"customer_email,omitempty" binding:"omitempty,email"`
}

type VoidRequest struct {
	Reason string `json:"reason,omitempty"`
	// Restock defaults to true when omitted.
	Restock *bool `json:"restock,omitempty"`
}

type OrderLineResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Section   model.Section   `json:"section"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type OrderResponse struct {
	ID              string              `json:"id"`
	CreatedAt       time.Time           `json:"created_at"`
	Lines           []OrderLineResponse `json:"lines"`
	Total           decimal.Decimal     `json:"total"`
	Payment         string              `json:"payment"`
	Channel         string              `json:"channel"`
	DeliveryAddress string              `json:"delivery_address,omitempty"`
	DeliveryFee     decimal.Decimal     `json:"delivery_fee"`
	Voided          bool                `json:"voided"`
	VoidReason      string              `json:"void_reason,omitempty"`
	VoidedAt        *time.Time          `json:"voided_at,omitempty"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"`
}

func ToOrderResponse(o *model.Order) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Section:   l.Section,
			Quantity:  l.Quantity,
			Price:     l.Price,
			Subtotal:  l.Subtotal(),
		})
	}
	return OrderResponse{
		ID:              o.ID,
		CreatedAt:       o.CreatedAt,
		Lines:           lines,
		Total:           o.Total,
		Payment:         o.Payment,
		Channel:         o.Channel,
		DeliveryAddress: o.DeliveryAddress,
		DeliveryFee:     o.DeliveryFee,
		Voided:          o.Voided,
		VoidReason:      o.VoidReason,
		VoidedAt:        o.VoidedAt,
	}
}
