package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/fjod/food-cart/internal/cart"
	"github.com/fjod/food-cart/internal/catalog"
	"github.com/fjod/food-cart/internal/domain"
	"github.com/fjod/food-cart/internal/pricing"
	"github.com/fjod/food-cart/internal/promo"
	"github.com/fjod/food-cart/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultCheckoutURL = "checkout.html"

type CheckoutPublisher interface {
	PublishCheckout(ctx context.Context, c domain.CheckoutConfirmation) error
}

type Option func(*Shop)

func WithPublisher(p CheckoutPublisher) Option {
	return func(s *Shop) { s.publisher = p }
}

func WithCheckoutURL(url string) Option {
	return func(s *Shop) { s.checkoutURL = url }
}

type message struct {
	text  string
	level string
}

// Shop is the application root. It owns the catalog, cart and promo engine
// and runs one call at a time.
type Shop struct {
	mu          sync.Mutex
	catalog     *catalog.Catalog
	cart        *cart.Store
	promo       *promo.Engine
	publisher   CheckoutPublisher
	log         *zap.Logger
	checkoutURL string
	message     message
	now         func() time.Time
}

// New restores cart and promo state from kv.
func New(ctx context.Context, kv storage.KV, c *catalog.Catalog, log *zap.Logger, opts ...Option) (*Shop, error) {
	p, err := promo.Load(ctx, kv, log)
	if err != nil {
		return nil, err
	}
	cs, err := cart.Load(ctx, kv, c, p, log)
	if err != nil {
		return nil, err
	}

	s := &Shop{
		catalog:     c,
		cart:        cs,
		promo:       p,
		log:         log,
		checkoutURL: DefaultCheckoutURL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	log.Info("cart restored",
		zap.Int("lines", cs.Len()),
		zap.String("promo", p.Current().Code))
	return s, nil
}

func (s *Shop) AddItem(ctx context.Context, dishID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.AddItem(ctx, dishID)
}

func (s *Shop) RemoveItem(ctx context.Context, dishID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.RemoveItem(ctx, dishID)
}

func (s *Shop) UpdateQuantity(ctx context.Context, dishID int64, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.UpdateQuantity(ctx, dishID, delta)
}

// ClearCart empties the cart and drops any active promo.
func (s *Shop) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.Clear(ctx); err != nil {
		return err
	}
	s.message = message{}
	return nil
}

// ApplyPromo evaluates rawCode against the current cart subtotal.
func (s *Shop) ApplyPromo(ctx context.Context, rawCode string) (promo.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.promo.Apply(ctx, rawCode, s.cart.Subtotal())
	if err != nil {
		return promo.Result{}, err
	}
	s.message = message{text: res.Message, level: res.Level()}
	return res, nil
}

func (s *Shop) ClearPromo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.promo.Clear(ctx); err != nil {
		return err
	}
	s.message = message{}
	return nil
}

func (s *Shop) SortByPrice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog.SortByPrice()
}

func (s *Shop) ViewState() domain.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.cart.Lines()
	current := s.promo.Current()
	totals := pricing.Calculate(lines, current)

	view := domain.ViewState{
		Dishes:            s.catalog.Dishes(),
		CartLines:         make([]domain.ViewLine, 0, len(lines)),
		Subtotal:          totals.Subtotal,
		EffectiveDiscount: totals.EffectiveDiscount,
		Total:             totals.Total,
		PromoMessage:      s.message.text,
		PromoMessageLevel: s.message.level,
	}
	for _, l := range lines {
		view.CartLines = append(view.CartLines, domain.ViewLine{
			CartLine:  l,
			LineTotal: pricing.Subtotal([]domain.CartLine{l}),
		})
	}

	if current.Active() {
		view.PromoCode = current.Code
		view.PromoMessage = fmt.Sprintf("Applied: %s (-%s)", current.Code,
			strconv.FormatFloat(totals.EffectiveDiscount, 'f', 2, 64))
		view.PromoMessageLevel = domain.MessageSuccess
	}
	return view
}

// Checkout gates the move to the checkout page: it fails with ErrEmptyCart
// when there is nothing to order, otherwise it writes cart and promo back to
// storage and returns where the adapter should go next.
func (s *Shop) Checkout(ctx context.Context) (domain.CheckoutConfirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart.Len() == 0 {
		return domain.CheckoutConfirmation{}, ErrEmptyCart
	}

	if err := s.cart.Save(ctx); err != nil {
		return domain.CheckoutConfirmation{}, err
	}
	if err := s.promo.Save(ctx); err != nil {
		return domain.CheckoutConfirmation{}, err
	}

	lines := s.cart.Lines()
	current := s.promo.Current()
	confirmation := domain.CheckoutConfirmation{
		CheckoutID:  uuid.NewString(),
		Lines:       lines,
		PromoCode:   current.Code,
		Totals:      pricing.Calculate(lines, current),
		RedirectTo:  s.checkoutURL,
		CompletedAt: s.now().UTC(),
	}

	if s.publisher != nil {
		if err := s.publisher.PublishCheckout(ctx, confirmation); err != nil {
			s.log.Error("failed to publish checkout",
				zap.String("checkout_id", confirmation.CheckoutID),
				zap.Error(err))
		}
	}

	s.log.Info("checkout ready",
		zap.String("checkout_id", confirmation.CheckoutID),
		zap.Int("lines", len(lines)),
		zap.Float64("total", confirmation.Totals.Total))
	return confirmation, nil
}
