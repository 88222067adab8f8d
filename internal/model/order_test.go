package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeductionDrinks(t *testing.T) {
	line := OrderLine{
		Section:     SectionEspresso,
		Quantity:    3,
		UsagePerCup: dec("0.018"),
	}
	assert.True(t, line.Deduction().Equal(dec("0.054")))
}

func TestDeductionBeans(t *testing.T) {
	line := OrderLine{
		Section:  SectionBeans,
		Quantity: 2,
		Grams:    250,
	}
	assert.True(t, line.Deduction().Equal(dec("0.5")))
}

func TestDeductionNonPositiveQuantity(t *testing.T) {
	line := OrderLine{Section: SectionEspresso, Quantity: 0, UsagePerCup: dec("0.02")}
	assert.True(t, line.Deduction().IsZero())

	line.Quantity = -1
	assert.True(t, line.Deduction().IsZero())
}

func TestSubtotalFloorsAtZero(t *testing.T) {
	line := OrderLine{Quantity: 2, Price: dec("-3")}
	assert.True(t, line.Subtotal().IsZero())

	line.Price = dec("4.50")
	assert.True(t, line.Subtotal().Equal(dec("9.00")))
}

func TestLinesTotalIncludesDeliveryFee(t *testing.T) {
	o := Order{
		Lines: []OrderLine{
			{Quantity: 2, Price: dec("4.50")},
			{Quantity: 1, Price: dec("12.00")},
		},
		DeliveryFee: dec("3.00"),
	}
	assert.True(t, o.LinesTotal().Equal(dec("24.00")))
}
