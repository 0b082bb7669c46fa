package service_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/cucumber/godog"
	"github.com/fjod/food-cart/internal/catalog"
	"github.com/fjod/food-cart/internal/domain"
	"github.com/fjod/food-cart/internal/service"
	"github.com/fjod/food-cart/internal/storage"
	"go.uber.org/zap"
)

type shopTestContext struct {
	kv           *storage.MemoryKV
	catalog      *catalog.Catalog
	shop         *service.Shop
	confirmation domain.CheckoutConfirmation
	err          error
}

func (c *shopTestContext) reset() {
	c.kv = storage.NewMemoryKV()
	c.catalog = nil
	c.shop = nil
	c.confirmation = domain.CheckoutConfirmation{}
	c.err = nil
}

func (c *shopTestContext) theMenu(table *godog.Table) error {
	dishes := make([]domain.Dish, 0, len(table.Rows))
	for _, row := range table.Rows[1:] {
		id, err := strconv.ParseInt(row.Cells[0].Value, 10, 64)
		if err != nil {
			return err
		}
		price, err := strconv.ParseFloat(row.Cells[2].Value, 64)
		if err != nil {
			return err
		}
		dishes = append(dishes, domain.Dish{ID: id, Name: row.Cells[1].Value, Price: price})
	}

	cat, err := catalog.New(dishes)
	if err != nil {
		return err
	}
	c.catalog = cat
	return c.open()
}

func (c *shopTestContext) open() error {
	shop, err := service.New(context.Background(), c.kv, c.catalog, zap.NewNop())
	if err != nil {
		return err
	}
	c.shop = shop
	return nil
}

func (c *shopTestContext) iAddDish(id int64) error {
	return c.shop.AddItem(context.Background(), id)
}

func (c *shopTestContext) iRemoveDish(id int64) error {
	return c.shop.RemoveItem(context.Background(), id)
}

func (c *shopTestContext) iChangeTheQuantityOfDishBy(id int64, delta int) error {
	return c.shop.UpdateQuantity(context.Background(), id, delta)
}

func (c *shopTestContext) iApplyPromoCode(code string) error {
	_, err := c.shop.ApplyPromo(context.Background(), code)
	return err
}

func (c *shopTestContext) iClearTheCart() error {
	return c.shop.ClearCart(context.Background())
}

func (c *shopTestContext) iCheckOut() error {
	c.confirmation, c.err = c.shop.Checkout(context.Background())
	return nil
}

func (c *shopTestContext) theCartHasLines(n int) error {
	if got := len(c.shop.ViewState().CartLines); got != n {
		return fmt.Errorf("expected %d cart lines, got %d", n, got)
	}
	return nil
}

func (c *shopTestContext) dishHasQuantity(id int64, qty int) error {
	for _, l := range c.shop.ViewState().CartLines {
		if l.ID == id {
			if l.Qty != qty {
				return fmt.Errorf("expected dish %d qty %d, got %d", id, qty, l.Qty)
			}
			return nil
		}
	}
	return fmt.Errorf("dish %d is not in the cart", id)
}

func (c *shopTestContext) theSubtotalIs(v float64) error {
	return expectAmount("subtotal", v, c.shop.ViewState().Subtotal)
}

func (c *shopTestContext) theDiscountIs(v float64) error {
	return expectAmount("discount", v, c.shop.ViewState().EffectiveDiscount)
}

func (c *shopTestContext) theTotalIs(v float64) error {
	return expectAmount("total", v, c.shop.ViewState().Total)
}

func (c *shopTestContext) thePromoMessageIs(msg string) error {
	if got := c.shop.ViewState().PromoMessage; got != msg {
		return fmt.Errorf("expected promo message %q, got %q", msg, got)
	}
	return nil
}

func (c *shopTestContext) noPromoIsActive() error {
	if code := c.shop.ViewState().PromoCode; code != "" {
		return fmt.Errorf("expected no promo, got %q", code)
	}
	return nil
}

func (c *shopTestContext) checkoutFailsBecauseTheCartIsEmpty() error {
	if !errors.Is(c.err, service.ErrEmptyCart) {
		return fmt.Errorf("expected ErrEmptyCart, got %v", c.err)
	}
	return nil
}

func (c *shopTestContext) iAmRedirectedTo(target string) error {
	if c.err != nil {
		return c.err
	}
	if c.confirmation.RedirectTo != target {
		return fmt.Errorf("expected redirect to %q, got %q", target, c.confirmation.RedirectTo)
	}
	return nil
}

func (c *shopTestContext) theStateSurvivesARestartWithTotal(v float64) error {
	if err := c.open(); err != nil {
		return err
	}
	return c.theTotalIs(v)
}

func expectAmount(name string, want, got float64) error {
	if want != got {
		return fmt.Errorf("expected %s %.2f, got %.2f", name, want, got)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &shopTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the menu:$`, tc.theMenu)

	// When steps
	ctx.Step(`^I add dish (\d+)$`, tc.iAddDish)
	ctx.Step(`^I remove dish (\d+)$`, tc.iRemoveDish)
	ctx.Step(`^I change the quantity of dish (\d+) by (-?\d+)$`, tc.iChangeTheQuantityOfDishBy)
	ctx.Step(`^I apply promo code "([^"]*)"$`, tc.iApplyPromoCode)
	ctx.Step(`^I clear the cart$`, tc.iClearTheCart)
	ctx.Step(`^I check out$`, tc.iCheckOut)

	// Then steps
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^dish (\d+) has quantity (\d+)$`, tc.dishHasQuantity)
	ctx.Step(`^the subtotal is (\d+(?:\.\d+)?)$`, tc.theSubtotalIs)
	ctx.Step(`^the discount is (\d+(?:\.\d+)?)$`, tc.theDiscountIs)
	ctx.Step(`^the total is (\d+(?:\.\d+)?)$`, tc.theTotalIs)
	ctx.Step(`^the promo message is "([^"]*)"$`, tc.thePromoMessageIs)
	ctx.Step(`^no promo is active$`, tc.noPromoIsActive)
	ctx.Step(`^checkout fails because the cart is empty$`, tc.checkoutFailsBecauseTheCartIsEmpty)
	ctx.Step(`^I am redirected to "([^"]*)"$`, tc.iAmRedirectedTo)
	ctx.Step(`^the state survives a restart with total (\d+(?:\.\d+)?)$`, tc.theStateSurvivesARestartWithTotal)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/cart.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
