// Package pricing computes order totals, preparation estimates and bill
// amounts.
package pricing

import (
	"github.com/brewline/coffee-pos/internal/money"
	"github.com/shopspring/decimal"
)

const (
	baseMinutes    = 5
	minutesPerLine = 3
)

// Line is a quantity at a unit price.
type Line struct {
	Quantity  int32
	UnitPrice decimal.Decimal
}

// Total is Quantity × UnitPrice.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt32(l.Quantity))
}

// Sum adds the totals of all lines.
func Sum(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	return total
}

// EstimatedTime returns the preparation estimate in minutes for an order
// with the given number of line items. Quantities do not matter.
func EstimatedTime(lineCount int) int32 {
	return int32(baseMinutes + minutesPerLine*lineCount)
}

// BillAmounts are the derived money fields of a bill.
type BillAmounts struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Bill derives tax and total from a subtotal and discount:
//
//	tax   = round((subtotal - discount) * TaxRate, 2)
//	total = subtotal - discount + tax
//
// A discount larger than the subtotal is allowed and gives a negative total.
func Bill(subtotal, discount decimal.Decimal) BillAmounts {
	net := subtotal.Sub(discount)
	tax := money.Round(net.Mul(money.TaxRate))
	return BillAmounts{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    net.Add(tax),
	}
}
