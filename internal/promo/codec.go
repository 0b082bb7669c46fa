package promo

import (
	"encoding/json"
	"errors"

	"github.com/fjod/food-cart/internal/domain"
)

const StorageKey = "promo"

type record struct {
	Code     *string `json:"code"`
	Discount float64 `json:"discount"`
}

var errInconsistent = errors.New("promo code and discount disagree")

func encode(p domain.Promo) ([]byte, error) {
	rec := record{Discount: p.Discount}
	if p.Active() {
		code := p.Code
		rec.Code = &code
	}
	return json.Marshal(rec)
}

func decode(data []byte) (domain.Promo, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.NoPromo(), err
	}
	if rec.Code == nil || *rec.Code == "" {
		if rec.Discount != 0 {
			return domain.NoPromo(), errInconsistent
		}
		return domain.NoPromo(), nil
	}
	if rec.Discount <= 0 {
		return domain.NoPromo(), errInconsistent
	}
	return domain.Promo{Code: *rec.Code, Discount: rec.Discount}, nil
}
