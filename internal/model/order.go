package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted at checkout.
const (
	PaymentCash     = "cash"
	PaymentDebit    = "debit"
	PaymentCredit   = "credit"
	PaymentTransfer = "transfer"
)

// Channel is the sale origin.
const (
	ChannelInStore  = "instore"
	ChannelDelivery = "delivery"
)

var gramsPerKilo = decimal.NewFromInt(1000)

// OrderLine is a frozen snapshot of a product at the time of sale. It never
// references the live inventory record, so later edits or deletions of the
// product do not rewrite order history.
type OrderLine struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	Section     Section         `json:"section"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	UsagePerCup decimal.Decimal `json:"usagePerCup,omitempty"`
	Grams       int64           `json:"grams,omitempty"`
}

// Deduction returns the kilograms of raw material this line consumes:
// quantity × usagePerCup for drinks, quantity × grams / 1000 for beans.
// Non-positive quantities deduct nothing.
func (l OrderLine) Deduction() decimal.Decimal {
	if l.Quantity <= 0 {
		return decimal.Zero
	}
	qty := decimal.NewFromInt(int64(l.Quantity))
	if l.Section.IsBean() {
		return qty.Mul(decimal.NewFromInt(l.Grams)).Div(gramsPerKilo)
	}
	return qty.Mul(l.UsagePerCup)
}

// Subtotal is quantity × price, floored at zero.
func (l OrderLine) Subtotal() decimal.Decimal {
	if l.Quantity <= 0 {
		return decimal.Zero
	}
	sub := l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
	if sub.IsNegative() {
		return decimal.Zero
	}
	return sub
}

// Order is one entry of the per-organization pos_orders document. Lifecycle:
// created at checkout, optionally voided later. Voided orders are never
// removed, the flag plus void metadata is the audit trail.
type Order struct {
	ID              string          `json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	Lines           []OrderLine     `json:"lines"`
	Total           decimal.Decimal `json:"total"`
	Payment         string          `json:"payment"`
	Channel         string          `json:"channel"`
	DeliveryAddress string          `json:"delivery_address,omitempty"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee"`
	Voided          bool            `json:"voided"`
	VoidReason      string          `json:"void_reason,omitempty"`
	VoidedAt        *time.Time      `json:"voided_at,omitempty"`
}

// LinesTotal sums the line subtotals plus the delivery fee. Used when the
// caller did not supply a pre-computed total.
func (o *Order) LinesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Subtotal())
	}
	return total.Add(o.DeliveryFee)
}
