package cart

import (
	"encoding/json"
	"fmt"

	"github.com/fjod/food-cart/internal/domain"
)

const StorageKey = "cart"

func encode(lines []domain.CartLine) ([]byte, error) {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return json.Marshal(lines)
}

// decode rejects payloads that could not have been written by the store: a
// line with qty below one, a negative price or a repeated dish id.
func decode(data []byte) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(lines))
	for i, l := range lines {
		if l.Qty < 1 {
			return nil, fmt.Errorf("line %d: quantity %d", i, l.Qty)
		}
		if l.Price < 0 {
			return nil, fmt.Errorf("line %d: negative price", i)
		}
		if _, dup := seen[l.ID]; dup {
			return nil, fmt.Errorf("line %d: duplicate dish %d", i, l.ID)
		}
		seen[l.ID] = struct{}{}
	}
	return lines, nil
}
