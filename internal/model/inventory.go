package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Inventory is the per-organization pos_inventory document. All three section
// lists are always present after Normalize, even when empty, so consumers never
// see a missing key.
type Inventory struct {
	Espresso     []Product `json:"espresso"`
	SingleOrigin []Product `json:"singleOrigin"`
	Beans        []Product `json:"beans"`
}

// Section returns the product list for s.
func (inv *Inventory) Section(s Section) []Product {
	switch s {
	case SectionEspresso:
		return inv.Espresso
	case SectionSingleOrigin:
		return inv.SingleOrigin
	case SectionBeans:
		return inv.Beans
	}
	return nil
}

func (inv *Inventory) setSection(s Section, list []Product) {
	switch s {
	case SectionEspresso:
		inv.Espresso = list
	case SectionSingleOrigin:
		inv.SingleOrigin = list
	case SectionBeans:
		inv.Beans = list
	}
}

// FindProduct looks a product up by id across all sections.
func (inv *Inventory) FindProduct(id string) (Section, *Product) {
	for _, s := range Sections {
		list := inv.Section(s)
		for i := range list {
			if list[i].ID == id {
				return s, &list[i]
			}
		}
	}
	return 0, nil
}

// TieBreak picks the surviving representative when two products in the same
// section collapse under the same dedup key. The argument order is
// (kept-so-far, duplicate).
type TieBreak func(a, b Product) Product

// KeepLowerStock is the default tie-break: the entry with less stock is assumed
// to be the fresher, post-sale copy of an accidentally duplicated record. This
// is a heuristic carried over from production data, not a correctness
// guarantee; callers may substitute their own policy.
func KeepLowerStock(a, b Product) Product {
	if b.Stock.LessThan(a.Stock) {
		return b
	}
	return a
}

// dedupKey composes section, normalized name and packaging size. Grams is
// forced to zero for drink sections so drinks never split on a stray grams
// attribute.
func dedupKey(s Section, p Product) string {
	grams := int64(0)
	if s.IsBean() {
		grams = p.Grams
	}
	return fmt.Sprintf("%d|%s|%d", s, strings.ToLower(strings.TrimSpace(p.Name)), grams)
}

// Normalize reshapes an arbitrarily dirty inventory snapshot into a well-formed
// one: within each section no two products share (normalized name, grams),
// negative stock is clamped to zero, and all section lists are non-nil. The
// first occurrence keeps its position; later duplicates fold into it via the
// tie-break. Pure and idempotent: normalizing twice equals normalizing once.
func (inv Inventory) Normalize(tieBreak TieBreak) Inventory {
	if tieBreak == nil {
		tieBreak = KeepLowerStock
	}

	out := Inventory{}
	for _, s := range Sections {
		seen := make(map[string]int)
		list := make([]Product, 0, len(inv.Section(s)))
		for _, p := range inv.Section(s) {
			if p.Stock.IsNegative() {
				p.Stock = decimal.Zero
			}
			key := dedupKey(s, p)
			if idx, dup := seen[key]; dup {
				list[idx] = tieBreak(list[idx], p)
				continue
			}
			seen[key] = len(list)
			list = append(list, p)
		}
		out.setSection(s, list)
	}
	return out
}
