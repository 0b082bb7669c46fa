package promo

import "strings"

type Rule struct {
	Code        string
	MinSubtotal float64
	Discount    float64
}

// Rules is evaluated in order; the first rule whose code matches and whose
// threshold is met wins.
var Rules = []Rule{
	{Code: "FOOD50", MinSubtotal: 300, Discount: 50},
	{Code: "FOOD100", MinSubtotal: 600, Discount: 100},
}

func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Match returns the first rule in rules for the normalized code that the
// subtotal qualifies for.
func Match(rules []Rule, code string, subtotal float64) (Rule, bool) {
	for _, r := range rules {
		if r.Code == code && subtotal >= r.MinSubtotal {
			return r, true
		}
	}
	return Rule{}, false
}
