package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LQT2201/Book-UIT/internal/cart"
	"github.com/LQT2201/Book-UIT/internal/order"
	pkgkafka "github.com/LQT2201/Book-UIT/pkg/kafka"
	"github.com/LQT2201/Book-UIT/pkg/logger"
)

// Kafka topics for storefront domain events.
const (
	TopicCartUpdated        = "bookstore.cart.updated"
	TopicOrderPlaced        = "bookstore.order.placed"
	TopicOrderStatusChanged = "bookstore.order.status_changed"
)

// Aggregate types.
const (
	AggregateTypeCart  = "cart"
	AggregateTypeOrder = "order"
)

// Source identifier for events originating from this service.
const SourceStorefront = "storefront"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	Username  string      `json:"username"`
	Items     []cart.Line `json:"items"`
	ItemCount int         `json:"itemCount"`
	Total     float64     `json:"total"`
}

// OrderPlacedData is the payload for an order.placed event.
type OrderPlacedData struct {
	Username        string      `json:"username"`
	Items           []cart.Line `json:"items"`
	Total           float64     `json:"total"`
	ShippingAddress string      `json:"shippingAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	OrderID   string `json:"orderId"`
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`
	Actor     string `json:"actor"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates an event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		event.WithCorrelationID(cid)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}

// PublishCartUpdated publishes a cart.updated event after a committed cart
// mutation.
func (p *Producer) PublishCartUpdated(ctx context.Context, username string, lines []cart.Line) error {
	return p.publish(ctx, TopicCartUpdated, username, AggregateTypeCart, CartUpdatedData{
		Username:  username,
		Items:     lines,
		ItemCount: cart.Count(lines),
		Total:     cart.Total(lines),
	})
}

// PublishOrderPlaced publishes an order.placed event after a successful
// checkout.
func (p *Producer) PublishOrderPlaced(ctx context.Context, username string, items []cart.Line, shippingAddress, paymentMethod string) error {
	return p.publish(ctx, TopicOrderPlaced, username, AggregateTypeOrder, OrderPlacedData{
		Username:        username,
		Items:           items,
		Total:           cart.Total(items),
		ShippingAddress: shippingAddress,
		PaymentMethod:   paymentMethod,
	})
}

// PublishOrderStatusChanged publishes an order.status_changed event after a
// successful admin status update.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, orderID string, from, to order.Status, actor string) error {
	return p.publish(ctx, TopicOrderStatusChanged, orderID, AggregateTypeOrder, OrderStatusChangedData{
		OrderID:   orderID,
		OldStatus: string(from),
		NewStatus: string(to),
		Actor:     actor,
	})
}
