package quote

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/erazemk/storefront/internal/model"
)

// DefaultVATRate applies when the server does not supply a rate.
var DefaultVATRate = decimal.RequireFromString("0.15")

var hundred = decimal.NewFromInt(100)

// Line is a priced or unpriced quantity of a product.
type Line struct {
	UnitPrice decimal.NullDecimal
	Quantity  int
}

// Breakdown holds the display totals of a quote.
type Breakdown struct {
	Subtotal decimal.Decimal
	VAT      decimal.Decimal
	Total    decimal.Decimal
	VATRate  decimal.Decimal
	Priced   int
	Unpriced int
}

// Round rounds to cents, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineTotal returns unit × quantity rounded to cents.
func LineTotal(unit decimal.Decimal, quantity int) decimal.Decimal {
	return Round(unit.Mul(decimal.NewFromInt(int64(quantity))))
}

// Totals sums the priced lines and adds VAT at rate. Unpriced lines are
// counted but contribute nothing.
func Totals(lines []Line, rate decimal.Decimal) Breakdown {
	b := Breakdown{Subtotal: decimal.Zero, VATRate: rate}
	for _, l := range lines {
		if !l.UnitPrice.Valid {
			b.Unpriced++
			continue
		}
		b.Priced++
		b.Subtotal = b.Subtotal.Add(LineTotal(l.UnitPrice.Decimal, l.Quantity))
	}
	b.VAT = Round(b.Subtotal.Mul(rate))
	b.Total = b.Subtotal.Add(b.VAT)
	return b
}

// QuoteTotals computes the breakdown of q, using the quote's own VAT rate
// when the server supplied one.
func QuoteTotals(q model.Quote, fallback decimal.Decimal) Breakdown {
	lines := make([]Line, len(q.Items))
	for i, item := range q.Items {
		lines[i] = Line{UnitPrice: item.UnitPrice, Quantity: item.Quantity}
	}
	return Totals(lines, RateOf(q, fallback))
}

// RateOf returns the VAT rate of q or fallback.
func RateOf(q model.Quote, fallback decimal.Decimal) decimal.Decimal {
	if q.VATRate.Valid {
		return NormalizeRate(q.VATRate.Decimal)
	}
	return fallback
}

// NormalizeRate accepts a fraction (0.15) or a percentage (15) and returns
// the fraction.
func NormalizeRate(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return rate.Div(hundred)
	}
	return rate
}

// ParseRate parses "15%", "15" or "0.15".
func ParseRate(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	percent := strings.HasSuffix(s, "%")
	d, err := decimal.NewFromString(strings.TrimSuffix(s, "%"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing vat rate %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("vat rate %q is negative", s)
	}
	if percent {
		return d.Div(hundred), nil
	}
	return NormalizeRate(d), nil
}

// FormatCurrency renders an amount in South African rand, e.g. "R 1 234,50".
func FormatCurrency(amount decimal.Decimal) string {
	rounded := Round(amount)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	return sign + "R " + humanize.FormatFloat("# ###,##", rounded.InexactFloat64())
}

// FormatRate renders a VAT rate as a percentage, e.g. "15%".
func FormatRate(rate decimal.Decimal) string {
	return rate.Mul(hundred).String() + "%"
}
