package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/food-cart/internal/domain"
	"github.com/segmentio/kafka-go"
)

const (
	DefaultTopic      = "checkout-outbox"
	EventTypeCheckout = "checkout"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type checkoutEvent struct {
	CheckoutID        string            `json:"checkout_id"`
	Items             []domain.CartLine `json:"items"`
	PromoCode         string            `json:"promo_code,omitempty"`
	Subtotal          float64           `json:"subtotal"`
	EffectiveDiscount float64           `json:"effective_discount"`
	TotalAmount       float64           `json:"total_amount"`
	CompletedAt       time.Time         `json:"completed_at"`
}

// CheckoutPublisher announces completed checkouts on a Kafka topic keyed by
// checkout id.
type CheckoutPublisher struct {
	writer messageWriter
}

func NewCheckoutPublisher(topic string, brokers ...string) *CheckoutPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
	return &CheckoutPublisher{writer: w}
}

func (p *CheckoutPublisher) PublishCheckout(ctx context.Context, c domain.CheckoutConfirmation) error {
	msg, err := buildMessage(c)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write checkout event: %w", err)
	}
	return nil
}

func (p *CheckoutPublisher) Close() error {
	return p.writer.Close()
}

func buildMessage(c domain.CheckoutConfirmation) (kafka.Message, error) {
	payload, err := json.Marshal(checkoutEvent{
		CheckoutID:        c.CheckoutID,
		Items:             c.Lines,
		PromoCode:         c.PromoCode,
		Subtotal:          c.Totals.Subtotal,
		EffectiveDiscount: c.Totals.EffectiveDiscount,
		TotalAmount:       c.Totals.Total,
		CompletedAt:       c.CompletedAt,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal checkout event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(c.CheckoutID), // keeps events of one checkout ordered
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeCheckout)},
		},
	}, nil
}
