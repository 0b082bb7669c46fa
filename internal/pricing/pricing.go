package pricing

import (
	"github.com/fjod/food-cart/internal/domain"
	"github.com/shopspring/decimal"
)

// Calculate combines cart lines and the current promo into display totals.
// The discount is clamped to the subtotal, so a promo whose threshold is no
// longer met still applies but can never push the total below zero.
func Calculate(lines []domain.CartLine, promo domain.Promo) domain.Totals {
	subtotal := sum(lines)

	discount := decimal.Max(decimal.NewFromFloat(promo.Discount), decimal.Zero)
	discount = decimal.Min(discount, subtotal)

	total := decimal.Max(subtotal.Sub(discount), decimal.Zero)

	return domain.Totals{
		Subtotal:          round(subtotal),
		EffectiveDiscount: round(discount),
		Total:             round(total),
	}
}

// Subtotal is the sum of price × qty over lines, rounded to cents as it is
// displayed.
func Subtotal(lines []domain.CartLine) float64 {
	return round(sum(lines))
}

func sum(lines []domain.CartLine) decimal.Decimal {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Qty))))
	}
	return subtotal
}

func round(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
