package promo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/fjod/food-cart/internal/domain"
	"github.com/fjod/food-cart/internal/storage"
	"go.uber.org/zap"
)

const (
	MsgMissingCode = "Please enter a promo code."
	MsgRejected    = "Invalid promo or minimum amount not met."
)

type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeMissingCode
	OutcomeRejected
)

type Result struct {
	Outcome Outcome
	Message string
}

func (r Result) Level() string {
	if r.Outcome == OutcomeApplied {
		return domain.MessageSuccess
	}
	return domain.MessageError
}

type Engine struct {
	kv      storage.KV
	log     *zap.Logger
	rules   []Rule
	current domain.Promo
}

// Load restores the persisted promo. An absent or unreadable entry yields no
// promo; only storage failures are returned.
func Load(ctx context.Context, kv storage.KV, log *zap.Logger) (*Engine, error) {
	e := &Engine{
		kv:      kv,
		log:     log,
		rules:   Rules,
		current: domain.NoPromo(),
	}

	data, err := kv.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return e, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load promo: %w", err)
	}

	p, err := decode(data)
	if err != nil {
		log.Warn("discarding malformed promo payload", zap.Error(err))
		return e, nil
	}
	e.current = p
	return e, nil
}

func (e *Engine) Current() domain.Promo {
	return e.current
}

// Apply validates rawCode against the rule table for the given subtotal, which
// callers pass as displayed (rounded to cents). A rejected code clears any
// promo that was active before the attempt.
func (e *Engine) Apply(ctx context.Context, rawCode string, subtotal float64) (Result, error) {
	code := Normalize(rawCode)
	if code == "" {
		return Result{Outcome: OutcomeMissingCode, Message: MsgMissingCode}, nil
	}

	rule, ok := Match(e.rules, code, subtotal)
	if !ok {
		if err := e.commit(ctx, domain.NoPromo()); err != nil {
			return Result{}, err
		}
		e.log.Debug("promo rejected", zap.String("code", code), zap.Float64("subtotal", subtotal))
		return Result{Outcome: OutcomeRejected, Message: MsgRejected}, nil
	}

	if err := e.commit(ctx, domain.Promo{Code: rule.Code, Discount: rule.Discount}); err != nil {
		return Result{}, err
	}
	e.log.Debug("promo applied", zap.String("code", rule.Code), zap.Float64("discount", rule.Discount))
	return Result{
		Outcome: OutcomeApplied,
		Message: fmt.Sprintf("Promo applied! $%s off", strconv.FormatFloat(rule.Discount, 'f', -1, 64)),
	}, nil
}

// Clear drops the active promo and removes its persisted entry.
func (e *Engine) Clear(ctx context.Context) error {
	if err := e.kv.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("failed to clear promo: %w", err)
	}
	e.current = domain.NoPromo()
	return nil
}

// Save writes the current promo, including the no-promo value.
func (e *Engine) Save(ctx context.Context) error {
	return e.write(ctx, e.current)
}

// commit writes p and makes it current only once storage accepted it.
func (e *Engine) commit(ctx context.Context, p domain.Promo) error {
	if err := e.write(ctx, p); err != nil {
		return err
	}
	e.current = p
	return nil
}

func (e *Engine) write(ctx context.Context, p domain.Promo) error {
	data, err := encode(p)
	if err != nil {
		return fmt.Errorf("marshal promo failed: %w", err)
	}
	if err := e.kv.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("failed to save promo: %w", err)
	}
	return nil
}
