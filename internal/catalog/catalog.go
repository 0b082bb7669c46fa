package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/fjod/food-cart/internal/domain"
)

var (
	ErrDuplicateDish = errors.New("duplicate dish id")
	ErrInvalidPrice  = errors.New("dish price must not be negative")
)

// Catalog is the list of purchasable dishes. Entries never change after
// construction; only their display order does.
type Catalog struct {
	dishes []domain.Dish
	byID   map[int64]domain.Dish
}

func DefaultDishes() []domain.Dish {
	return []domain.Dish{
		{ID: 1, Name: "Paneer Tikka", Price: 400},
		{ID: 2, Name: "Pizza", Price: 500},
		{ID: 3, Name: "Burger", Price: 250},
		{ID: 4, Name: "Pasta", Price: 300},
		{ID: 5, Name: "French Fries", Price: 350},
	}
}

func Default() *Catalog {
	c, _ := New(DefaultDishes())
	return c
}

func New(dishes []domain.Dish) (*Catalog, error) {
	c := &Catalog{
		dishes: make([]domain.Dish, 0, len(dishes)),
		byID:   make(map[int64]domain.Dish, len(dishes)),
	}
	for _, d := range dishes {
		if _, exists := c.byID[d.ID]; exists {
			return nil, fmt.Errorf("dish %d: %w", d.ID, ErrDuplicateDish)
		}
		if d.Price < 0 {
			return nil, fmt.Errorf("dish %d: %w", d.ID, ErrInvalidPrice)
		}
		c.byID[d.ID] = d
		c.dishes = append(c.dishes, d)
	}
	return c, nil
}

func (c *Catalog) Find(id int64) (domain.Dish, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// Dishes returns the dishes in current display order.
func (c *Catalog) Dishes() []domain.Dish {
	return slices.Clone(c.dishes)
}

// SortByPrice reorders the dishes ascending by price. Dishes with equal prices
// keep their relative order.
func (c *Catalog) SortByPrice() {
	slices.SortStableFunc(c.dishes, func(a, b domain.Dish) int {
		switch {
		case a.Price < b.Price:
			return -1
		case a.Price > b.Price:
			return 1
		default:
			return 0
		}
	})
}
