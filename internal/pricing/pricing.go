// Package pricing is the line-item calculation engine. Every function is
// pure: no I/O, no state, outputs fully determined by inputs. Callers are
// expected to validate ranges (unit price >= 0, quantity >= 1, discount
// percent in [0,100]) before calling in; the engine does not re-check.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/aprasetya/kasir/internal/sales"
)

var hundred = decimal.NewFromInt(100)

// Derived holds the three outputs computed from a line's price, quantity
// and discount percent.
type Derived struct {
	DiscountAmount      decimal.Decimal
	DiscountedUnitPrice decimal.Decimal
	LineTotal           decimal.Decimal
}

// ComputeLine derives the discount amount, discounted unit price and line
// total from a line's inputs.
//
// LineTotal is intentionally computed from the full formula
// price * qty * (1 - pct/100) rather than discountedUnitPrice * qty, to
// stay bit-compatible with what the store has on record.
func ComputeLine(unitPrice decimal.Decimal, quantity int64, discountPercent decimal.Decimal) Derived {
	discountAmount := unitPrice.Mul(discountPercent).Div(hundred)
	qty := decimal.NewFromInt(quantity)
	factor := decimal.NewFromInt(1).Sub(discountPercent.Div(hundred))

	return Derived{
		DiscountAmount:      discountAmount,
		DiscountedUnitPrice: unitPrice.Sub(discountAmount),
		LineTotal:           unitPrice.Mul(qty).Mul(factor),
	}
}

// Recalculate returns the item with its derived fields recomputed from its
// current inputs.
func Recalculate(item sales.LineItem) sales.LineItem {
	d := ComputeLine(item.UnitPrice, item.Quantity, item.DiscountPercent)

	item.DiscountAmount = d.DiscountAmount
	item.DiscountedUnitPrice = d.DiscountedUnitPrice
	item.LineTotal = d.LineTotal

	return item
}

// SelectProduct starts a line item from a catalog entry, copying the
// product fields verbatim. Derived fields are left zero; the caller
// recomputes once quantity and discount are known.
func SelectProduct(p sales.Product) sales.LineItem {
	return sales.LineItem{
		ProductID:   p.ID,
		ProductCode: p.Code,
		ProductName: p.Name,
		UnitPrice:   p.UnitPrice,
	}
}

// Subtotal sums LineTotal over the given items.
func Subtotal(items []sales.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal)
	}

	return total
}

// AddLine appends item and returns the new slice with its subtotal. The
// same product may appear on separate lines; no dedup happens here.
func AddLine(items []sales.LineItem, item sales.LineItem) ([]sales.LineItem, decimal.Decimal) {
	out := make([]sales.LineItem, 0, len(items)+1)
	out = append(out, items...)
	out = append(out, item)

	return out, Subtotal(out)
}

// RemoveLine removes the first item whose product code matches. An unknown
// code is not an error: the input slice is returned unchanged.
func RemoveLine(items []sales.LineItem, productCode string) ([]sales.LineItem, decimal.Decimal) {
	idx := indexOf(items, productCode)
	if idx < 0 {
		return items, Subtotal(items)
	}

	out := make([]sales.LineItem, 0, len(items)-1)
	out = append(out, items[:idx]...)
	out = append(out, items[idx+1:]...)

	return out, Subtotal(out)
}

// ReplaceLine swaps the first item matching productCode for updated,
// preserving its position. Unknown codes leave the slice unchanged.
func ReplaceLine(items []sales.LineItem, productCode string, updated sales.LineItem) ([]sales.LineItem, decimal.Decimal) {
	idx := indexOf(items, productCode)
	if idx < 0 {
		return items, Subtotal(items)
	}

	out := make([]sales.LineItem, len(items))
	copy(out, items)
	out[idx] = updated

	return out, Subtotal(out)
}

// AmountPayable computes subtotal - headerDiscount - shippingFee. The
// result is deliberately not floored at zero: an over-discounted sale shows
// a negative total for the operator to notice.
func AmountPayable(subtotal, headerDiscount, shippingFee decimal.Decimal) decimal.Decimal {
	return subtotal.Sub(headerDiscount).Sub(shippingFee)
}

func indexOf(items []sales.LineItem, productCode string) int {
	for i, it := range items {
		if it.ProductCode == productCode {
			return i
		}
	}

	return -1
}
