package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/fjod/food-cart/internal/domain"
	"github.com/fjod/food-cart/internal/pricing"
	"github.com/fjod/food-cart/internal/storage"
	"go.uber.org/zap"
)

type DishFinder interface {
	Find(id int64) (domain.Dish, bool)
}

// PromoClearer is cleared together with the cart.
type PromoClearer interface {
	Clear(ctx context.Context) error
}

// Store owns the cart lines and writes the whole cart back to storage after
// every mutation.
type Store struct {
	kv     storage.KV
	dishes DishFinder
	promo  PromoClearer
	log    *zap.Logger
	lines  []domain.CartLine
}

// Load restores the persisted cart. An absent or unreadable entry yields an
// empty cart; only storage failures are returned.
func Load(ctx context.Context, kv storage.KV, dishes DishFinder, promo PromoClearer, log *zap.Logger) (*Store, error) {
	s := &Store{
		kv:     kv,
		dishes: dishes,
		promo:  promo,
		log:    log,
	}

	data, err := kv.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	lines, err := decode(data)
	if err != nil {
		log.Warn("discarding malformed cart payload", zap.Error(err))
		return s, nil
	}
	s.lines = lines
	return s, nil
}

// Lines returns the cart lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	return slices.Clone(s.lines)
}

func (s *Store) Len() int {
	return len(s.lines)
}

func (s *Store) Subtotal() float64 {
	return pricing.Subtotal(s.lines)
}

func (s *Store) AddItem(ctx context.Context, dishID int64) error {
	dish, ok := s.dishes.Find(dishID)
	if !ok {
		// stale reference from the page, nothing to add
		s.log.Debug("add ignored, unknown dish", zap.Int64("dish_id", dishID))
		return nil
	}

	next := slices.Clone(s.lines)
	if i := s.index(dishID); i >= 0 {
		next[i].Qty = addQty(next[i].Qty, 1)
	} else {
		next = append(next, domain.CartLine{
			ID:    dish.ID,
			Name:  dish.Name,
			Price: dish.Price,
			Qty:   1,
		})
	}
	return s.commit(ctx, next)
}

func (s *Store) RemoveItem(ctx context.Context, dishID int64) error {
	i := s.index(dishID)
	if i < 0 {
		s.log.Debug("remove ignored, dish not in cart", zap.Int64("dish_id", dishID))
		return nil
	}

	next := slices.Delete(slices.Clone(s.lines), i, i+1)
	return s.commit(ctx, next)
}

// UpdateQuantity adds delta to the line's quantity. A line that drops to zero
// or below is removed; growth saturates at math.MaxInt.
func (s *Store) UpdateQuantity(ctx context.Context, dishID int64, delta int) error {
	i := s.index(dishID)
	if i < 0 {
		s.log.Debug("quantity update ignored, dish not in cart", zap.Int64("dish_id", dishID))
		return nil
	}

	qty := addQty(s.lines[i].Qty, delta)
	if qty <= 0 {
		return s.RemoveItem(ctx, dishID)
	}
	next := slices.Clone(s.lines)
	next[i].Qty = qty
	return s.commit(ctx, next)
}

// Clear empties the cart and clears the promo with it.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.commit(ctx, nil); err != nil {
		return err
	}
	return s.promo.Clear(ctx)
}

// Save writes the current cart.
func (s *Store) Save(ctx context.Context) error {
	return s.write(ctx, s.lines)
}

func (s *Store) index(dishID int64) int {
	return slices.IndexFunc(s.lines, func(l domain.CartLine) bool {
		return l.ID == dishID
	})
}

// commit writes next and adopts it only once storage accepted it.
func (s *Store) commit(ctx context.Context, next []domain.CartLine) error {
	if err := s.write(ctx, next); err != nil {
		return err
	}
	s.lines = next
	return nil
}

func (s *Store) write(ctx context.Context, lines []domain.CartLine) error {
	data, err := encode(lines)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func addQty(qty, delta int) int {
	if delta > 0 && qty > math.MaxInt-delta {
		return math.MaxInt
	}
	return qty + delta
}
