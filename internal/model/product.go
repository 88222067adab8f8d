package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Product is a single inventory entry inside one section of the inventory
// document. Stock is kilograms of raw material on hand. UsagePerCup only
// applies to drink sections, Grams only to beans; the unused attribute stays
// zero.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Stock       decimal.Decimal `json:"stock"`
	Price       decimal.Decimal `json:"price"`
	UsagePerCup decimal.Decimal `json:"usagePerCup,omitempty"`
	Grams       int64           `json:"grams,omitempty"`
}

// UnmarshalJSON is deliberately forgiving: documents in the remote store were
// written by several client generations, some of which emitted numbers as
// strings, nulls, or omitted them. Any value that does not parse as a number
// is treated as zero instead of failing the whole document load.
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          string          `json:"id"`
		Name        string          `json:"name"`
		Stock       json.RawMessage `json:"stock"`
		Price       json.RawMessage `json:"price"`
		UsagePerCup json.RawMessage `json:"usagePerCup"`
		Grams       json.RawMessage `json:"grams"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.ID = raw.ID
	p.Name = raw.Name
	p.Stock = coerceDecimal(raw.Stock)
	p.Price = coerceDecimal(raw.Price)
	p.UsagePerCup = coerceDecimal(raw.UsagePerCup)
	p.Grams = coerceDecimal(raw.Grams).IntPart()
	return nil
}

// coerceDecimal parses a JSON number or numeric string, returning zero for
// anything else (null, absent, garbage).
func coerceDecimal(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 {
		return decimal.Zero
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err == nil {
		return d
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if d, err := decimal.NewFromString(s); err == nil {
			return d
		}
	}
	return decimal.Zero
}
