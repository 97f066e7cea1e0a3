// Package pricing derives order totals. It is a pure computation: inputs
// are never mutated and identical inputs always produce identical totals.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/quanviet/store-console/internal/model"
)

// Totals is the derived pricing of a set of order lines.
type Totals struct {
	Subtotal decimal.Decimal
	Final    decimal.Decimal
}

// LineTotal is quantity × (unit price + topping prices). The unit price
// prefers the live catalog price when the dish is present in livePrices,
// otherwise the snapshot captured on the line is used.
func LineTotal(item model.OrderItem, livePrices map[string]decimal.Decimal) decimal.Decimal {
	unit := item.Price
	if live, ok := livePrices[item.DishID]; ok {
		unit = live
	}
	toppings := decimal.Zero
	for _, t := range item.Toppings {
		toppings = toppings.Add(t.Price)
	}
	return decimal.NewFromInt(int64(item.Quantity)).Mul(unit.Add(toppings))
}

// ComputeTotals sums line totals into the subtotal and applies the
// externally supplied discount and shipping fee. Discount and shipping are
// inputs, not recomputed here. Totals never go negative.
func ComputeTotals(items []model.OrderItem, discountTotal, shippingFee decimal.Decimal, livePrices map[string]decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(LineTotal(it, livePrices))
	}
	if subtotal.IsNegative() {
		subtotal = decimal.Zero
	}
	final := subtotal.Sub(discountTotal).Add(shippingFee)
	if final.IsNegative() {
		final = decimal.Zero
	}
	return Totals{Subtotal: subtotal, Final: final}
}
