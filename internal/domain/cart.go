package domain

type Dish struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// CartLine is one dish's accumulated quantity. Name and Price are copied from
// the catalog when the line is first added.
type CartLine struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
}

func (l CartLine) LineTotal() float64 {
	return l.Price * float64(l.Qty)
}

// Promo is the applied discount. An empty Code means no promo is active.
type Promo struct {
	Code     string
	Discount float64
}

func NoPromo() Promo {
	return Promo{}
}

func (p Promo) Active() bool {
	return p.Code != ""
}

type Totals struct {
	Subtotal          float64 `json:"subtotal"`
	EffectiveDiscount float64 `json:"effective_discount"`
	Total             float64 `json:"total"`
}
