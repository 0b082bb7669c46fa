package pricing

import (
	"testing"

	"github.com/fjod/food-cart/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name  string
		lines []domain.CartLine
		promo domain.Promo
		want  domain.Totals
	}{
		{
			name: "empty cart",
			want: domain.Totals{},
		},
		{
			name:  "empty cart with stale promo",
			promo: domain.Promo{Code: "FOOD50", Discount: 50},
			want:  domain.Totals{},
		},
		{
			name:  "no promo",
			lines: []domain.CartLine{{ID: 1, Price: 400, Qty: 1}, {ID: 3, Price: 250, Qty: 2}},
			want:  domain.Totals{Subtotal: 900, Total: 900},
		},
		{
			name:  "FOOD50 on 400",
			lines: []domain.CartLine{{ID: 1, Price: 400, Qty: 1}},
			promo: domain.Promo{Code: "FOOD50", Discount: 50},
			want:  domain.Totals{Subtotal: 400, EffectiveDiscount: 50, Total: 350},
		},
		{
			name:  "discount clamped after cart shrank",
			lines: []domain.CartLine{{ID: 9, Price: 40, Qty: 1}},
			promo: domain.Promo{Code: "FOOD100", Discount: 100},
			want:  domain.Totals{Subtotal: 40, EffectiveDiscount: 40, Total: 0},
		},
		{
			name:  "cent prices accumulate exactly",
			lines: []domain.CartLine{{ID: 1, Price: 0.1, Qty: 3}, {ID: 2, Price: 0.2, Qty: 1}},
			want:  domain.Totals{Subtotal: 0.5, Total: 0.5},
		},
		{
			name:  "rounded to two decimals for display",
			lines: []domain.CartLine{{ID: 1, Price: 10.005, Qty: 1}},
			want:  domain.Totals{Subtotal: 10.01, Total: 10.01},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Calculate(tt.lines, tt.promo))
		})
	}
}

func TestCalculate_Invariants(t *testing.T) {
	promos := []domain.Promo{
		domain.NoPromo(),
		{Code: "FOOD50", Discount: 50},
		{Code: "FOOD100", Discount: 100},
	}
	carts := [][]domain.CartLine{
		nil,
		{{ID: 3, Price: 250, Qty: 1}},
		{{ID: 1, Price: 400, Qty: 1}, {ID: 2, Price: 500, Qty: 3}},
		{{ID: 4, Price: 0, Qty: 7}},
	}

	for _, lines := range carts {
		for _, promo := range promos {
			got := Calculate(lines, promo)

			var sum float64
			for _, l := range lines {
				sum += l.LineTotal()
			}
			assert.InDelta(t, sum, got.Subtotal, 0.005)
			assert.LessOrEqual(t, got.EffectiveDiscount, got.Subtotal)
			assert.GreaterOrEqual(t, got.Total, 0.0)
			assert.InDelta(t, got.Subtotal-got.EffectiveDiscount, got.Total, 0.005)
		}
	}
}

func TestSubtotal(t *testing.T) {
	lines := []domain.CartLine{{ID: 1, Price: 400, Qty: 2}, {ID: 5, Price: 350, Qty: 1}}
	assert.Equal(t, 1150.0, Subtotal(lines))
	assert.Equal(t, 0.0, Subtotal(nil))
	assert.Equal(t, 300.0, Subtotal([]domain.CartLine{{ID: 1, Price: 299.995, Qty: 1}}))
}
