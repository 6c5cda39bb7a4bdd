package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aprasetya/kasir/internal/pricing"
	"github.com/aprasetya/kasir/internal/sales"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}

	return d
}

func line(code string, price string, qty int64, pct string) sales.LineItem {
	return pricing.Recalculate(sales.LineItem{
		ProductCode:     code,
		ProductName:     code,
		UnitPrice:       dec(price),
		Quantity:        qty,
		DiscountPercent: dec(pct),
	})
}

func TestComputeLine(t *testing.T) {
	type testCase struct {
		name         string
		unitPrice    string
		quantity     int64
		discountPct  string
		wantDiscount string
		wantPrice    string
		wantTotal    string
	}

	tests := []testCase{
		{
			// End-to-end scenario from the store's reference data.
			name:         "TenPercentDiscount",
			unitPrice:    "100000",
			quantity:     2,
			discountPct:  "10",
			wantDiscount: "10000",
			wantPrice:    "90000",
			wantTotal:    "180000",
		},
		{
			name:         "ZeroDiscount",
			unitPrice:    "25000",
			quantity:     3,
			discountPct:  "0",
			wantDiscount: "0",
			wantPrice:    "25000",
			wantTotal:    "75000",
		},
		{
			name:         "FullDiscount",
			unitPrice:    "25000",
			quantity:     4,
			discountPct:  "100",
			wantDiscount: "25000",
			wantPrice:    "0",
			wantTotal:    "0",
		},
		{
			name:         "FractionalPercent",
			unitPrice:    "1000",
			quantity:     1,
			discountPct:  "12.5",
			wantDiscount: "125",
			wantPrice:    "875",
			wantTotal:    "875",
		},
		{
			name:         "ZeroPrice",
			unitPrice:    "0",
			quantity:     5,
			discountPct:  "50",
			wantDiscount: "0",
			wantPrice:    "0",
			wantTotal:    "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pricing.ComputeLine(dec(tt.unitPrice), tt.quantity, dec(tt.discountPct))

			assert.True(t, got.DiscountAmount.Equal(dec(tt.wantDiscount)),
				"discount amount = %s, want %s", got.DiscountAmount, tt.wantDiscount)
			assert.True(t, got.DiscountedUnitPrice.Equal(dec(tt.wantPrice)),
				"discounted price = %s, want %s", got.DiscountedUnitPrice, tt.wantPrice)
			assert.True(t, got.LineTotal.Equal(dec(tt.wantTotal)),
				"line total = %s, want %s", got.LineTotal, tt.wantTotal)

			// Outputs are non-negative and internally consistent.
			assert.False(t, got.DiscountAmount.IsNegative())
			assert.False(t, got.DiscountedUnitPrice.IsNegative())
			assert.False(t, got.LineTotal.IsNegative())
			assert.True(t, got.DiscountedUnitPrice.Equal(dec(tt.unitPrice).Sub(got.DiscountAmount)))
		})
	}
}

func TestComputeLine_Idempotent(t *testing.T) {
	first := pricing.ComputeLine(dec("99999"), 7, dec("33"))
	second := pricing.ComputeLine(dec("99999"), 7, dec("33"))

	assert.True(t, first.DiscountAmount.Equal(second.DiscountAmount))
	assert.True(t, first.DiscountedUnitPrice.Equal(second.DiscountedUnitPrice))
	assert.True(t, first.LineTotal.Equal(second.LineTotal))
}

func TestComputeLine_Monotonicity(t *testing.T) {
	price := dec("75000")

	// Line total never increases as the discount grows.
	prev := pricing.ComputeLine(price, 3, decimal.Zero).LineTotal
	for pct := int64(5); pct <= 100; pct += 5 {
		cur := pricing.ComputeLine(price, 3, decimal.NewFromInt(pct)).LineTotal
		assert.True(t, cur.LessThanOrEqual(prev), "total grew at pct=%d", pct)
		prev = cur
	}

	// Line total never decreases as the quantity grows.
	prev = pricing.ComputeLine(price, 1, dec("15")).LineTotal
	for qty := int64(2); qty <= 10; qty++ {
		cur := pricing.ComputeLine(price, qty, dec("15")).LineTotal
		assert.True(t, cur.GreaterThanOrEqual(prev), "total shrank at qty=%d", qty)
		prev = cur
	}
}

func TestAddLine(t *testing.T) {
	items, subtotal := pricing.AddLine(nil, line("BRG-1", "100000", 2, "10"))

	require.Len(t, items, 1)
	assert.True(t, subtotal.Equal(dec("180000")))

	items, subtotal = pricing.AddLine(items, line("BRG-2", "50000", 1, "0"))

	require.Len(t, items, 2)
	assert.True(t, subtotal.Equal(dec("230000")))
	assert.Equal(t, "BRG-1", items[0].ProductCode, "insertion order preserved")
	assert.Equal(t, "BRG-2", items[1].ProductCode)
}

func TestAddLine_SameProductTwice(t *testing.T) {
	items, _ := pricing.AddLine(nil, line("BRG-1", "10000", 1, "0"))
	items, subtotal := pricing.AddLine(items, line("BRG-1", "10000", 2, "0"))

	// No dedup by product code: two separate lines.
	require.Len(t, items, 2)
	assert.True(t, subtotal.Equal(dec("30000")))
}

func TestRemoveLine(t *testing.T) {
	items, _ := pricing.AddLine(nil, line("BRG-1", "100000", 2, "10"))
	items, _ = pricing.AddLine(items, line("BRG-2", "50000", 1, "0"))

	items, subtotal := pricing.RemoveLine(items, "BRG-2")

	require.Len(t, items, 1)
	assert.Equal(t, "BRG-1", items[0].ProductCode)
	assert.True(t, subtotal.Equal(dec("180000")))
}

func TestRemoveLine_UnknownCodeIsNoop(t *testing.T) {
	orig, origSubtotal := pricing.AddLine(nil, line("BRG-1", "100000", 2, "10"))

	items, subtotal := pricing.RemoveLine(orig, "NOPE")

	assert.Equal(t, orig, items)
	assert.True(t, subtotal.Equal(origSubtotal))
}

func TestReplaceLine(t *testing.T) {
	items, _ := pricing.AddLine(nil, line("BRG-1", "100000", 2, "10"))
	items, _ = pricing.AddLine(items, line("BRG-2", "50000", 1, "0"))

	updated := line("BRG-1", "100000", 4, "10")
	items, subtotal := pricing.ReplaceLine(items, "BRG-1", updated)

	require.Len(t, items, 2)
	assert.Equal(t, "BRG-1", items[0].ProductCode, "position preserved")
	assert.Equal(t, int64(4), items[0].Quantity)
	assert.True(t, subtotal.Equal(dec("410000")))
}

func TestReplaceLine_UnknownCodeIsNoop(t *testing.T) {
	orig, _ := pricing.AddLine(nil, line("BRG-1", "100000", 2, "10"))

	items, subtotal := pricing.ReplaceLine(orig, "NOPE", line("BRG-9", "1", 1, "0"))

	assert.Equal(t, orig, items)
	assert.True(t, subtotal.Equal(dec("180000")))
}

func TestSelectProduct(t *testing.T) {
	p := sales.Product{ID: 7, Code: "BRG-7", Name: "Teh Botol", UnitPrice: dec("5000")}

	item := pricing.SelectProduct(p)

	assert.Equal(t, int64(7), item.ProductID)
	assert.Equal(t, "BRG-7", item.ProductCode)
	assert.Equal(t, "Teh Botol", item.ProductName)
	assert.True(t, item.UnitPrice.Equal(dec("5000")))

	// Derived fields stay zero until the caller recomputes.
	assert.True(t, item.LineTotal.IsZero())
	assert.True(t, item.DiscountAmount.IsZero())
}

func TestAmountPayable(t *testing.T) {
	type testCase struct {
		name     string
		subtotal string
		discount string
		shipping string
		want     string
	}

	tests := []testCase{
		{name: "Plain", subtotal: "230000", discount: "10000", shipping: "15000", want: "205000"},
		{name: "NoAdjustments", subtotal: "180000", discount: "0", shipping: "0", want: "180000"},
		// Over-discount is surfaced, never clamped at zero.
		{name: "NegativeResult", subtotal: "100", discount: "60", shipping: "60", want: "-20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pricing.AmountPayable(dec(tt.subtotal), dec(tt.discount), dec(tt.shipping))
			assert.True(t, got.Equal(dec(tt.want)), "amount payable = %s, want %s", got, tt.want)
		})
	}
}

// Mirrors the full flow of building a sale: two lines, header discount and
// shipping, then removal of one line and an explicit re-derive.
func TestSaleScenario(t *testing.T) {
	items, subtotal := pricing.AddLine(nil, line("BRG-1", "100000", 2, "10"))
	items, subtotal = pricing.AddLine(items, line("BRG-2", "50000", 1, "0"))

	require.True(t, subtotal.Equal(dec("230000")))

	discount := dec("10000")
	shipping := dec("15000")

	payable := pricing.AmountPayable(subtotal, discount, shipping)
	assert.True(t, payable.Equal(dec("205000")))

	items, subtotal = pricing.RemoveLine(items, "BRG-2")
	require.Len(t, items, 1)
	require.True(t, subtotal.Equal(dec("180000")))

	// The engine does not auto-chain: payable changes only when recomputed.
	payable = pricing.AmountPayable(subtotal, discount, shipping)
	assert.True(t, payable.Equal(dec("155000")))
}
