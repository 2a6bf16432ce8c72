package report

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Cents rounds a dollar amount half away from zero to two places
func Cents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// formatMoney renders an amount as -$1,234.56
func formatMoney(v float64) string {
	d := Cents(v)
	negative := d.IsNegative()
	if negative {
		d = d.Neg()
	}
	intPart, frac, _ := strings.Cut(d.StringFixed(2), ".")
	out := "$" + groupThousands(intPart) + "." + frac
	if negative {
		return "-" + out
	}
	return out
}

// formatWhole renders an amount rounded to whole dollars
func formatWhole(v float64) string {
	d := decimal.NewFromFloat(v).Round(0)
	negative := d.IsNegative()
	if negative {
		d = d.Neg()
	}
	out := "$" + groupThousands(d.StringFixed(0))
	if negative {
		return "-" + out
	}
	return out
}

func groupThousands(digits string) string {
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteRune(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// formatPercent renders a fraction as a signed percentage, 0.125 -> +12.5%
func formatPercent(v float64) string {
	p := decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).Round(1)
	if p.IsPositive() {
		return "+" + p.StringFixed(1) + "%"
	}
	return p.StringFixed(1) + "%"
}

// formatProbability renders a fraction as an unsigned percentage
func formatProbability(v float64) string {
	return decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).Round(1).StringFixed(1) + "%"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// deref returns 0 for a nil pointer
func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
