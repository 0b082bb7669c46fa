package domain

import "time"

const (
	MessageSuccess = "success"
	MessageError   = "error"
)

type ViewLine struct {
	CartLine
	LineTotal float64 `json:"line_total"`
}

type ViewState struct {
	Dishes            []Dish     `json:"dishes"`
	CartLines         []ViewLine `json:"cart_lines"`
	Subtotal          float64    `json:"subtotal"`
	EffectiveDiscount float64    `json:"effective_discount"`
	Total             float64    `json:"total"`
	PromoCode         string     `json:"promo_code,omitempty"`
	PromoMessage      string     `json:"promo_message"`
	PromoMessageLevel string     `json:"promo_message_level,omitempty"`
}

type CheckoutConfirmation struct {
	CheckoutID  string     `json:"checkout_id"`
	Lines       []CartLine `json:"lines"`
	PromoCode   string     `json:"promo_code,omitempty"`
	Totals      Totals     `json:"totals"`
	RedirectTo  string     `json:"redirect_to"`
	CompletedAt time.Time  `json:"completed_at"`
}
