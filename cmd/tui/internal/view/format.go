package view

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const apiTimeout = 10 * time.Second

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatPrice renders an amount as Indonesian rupiah, e.g. "Rp100.000".
// The whole-rupiah part is grouped exactly (no float conversion); cents
// appear only when the amount has them.
func FormatPrice(d decimal.Decimal) string {
	d = d.Round(2)

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	units := d.IntPart()
	cents := d.Sub(decimal.NewFromInt(units)).Mul(decimal.NewFromInt(100)).IntPart()

	out := sign + idPrinter.Sprintf("Rp%v", number.Decimal(units))
	if cents != 0 {
		out += fmt.Sprintf(",%02d", cents)
	}

	return out
}

// FormatDate formats a time.Time the way the sales list shows dates.
func FormatDate(t time.Time) string {
	return t.Format("02-Jan-2006")
}

// ReqCtx returns a context with the standard timeout for API calls.
func ReqCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), apiTimeout)
}
