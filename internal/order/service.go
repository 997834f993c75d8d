package order

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LQT2201/Book-UIT/internal/cart"
	"github.com/LQT2201/Book-UIT/internal/session"
	apperrors "github.com/LQT2201/Book-UIT/pkg/errors"
)

// Payment methods accepted at checkout.
const (
	PaymentCOD    = "COD"
	PaymentOnline = "ONLINE"
)

// checkoutStatus is the wire value sent on order creation. The backend stores
// it verbatim; Clean maps it to the processing label for display.
const checkoutStatus = "PENDING"

// CheckoutRequest is the order-creation body the backend expects.
type CheckoutRequest struct {
	Username        string      `json:"username"`
	Items           []cart.Line `json:"items"`
	Status          string      `json:"status"`
	ShippingAddress string      `json:"shippingAddress"`
}

// Gateway is the backend surface the order service needs.
type Gateway interface {
	Checkout(ctx context.Context, sess *session.Session, payload CheckoutRequest) error
	CreateVNPayPayment(ctx context.Context, sess *session.Session, payload CheckoutRequest) (string, error)
	GetOrder(ctx context.Context, sess *session.Session, id string) (*Order, error)
	ListOrders(ctx context.Context, sess *session.Session) ([]Order, error)
	ListUserOrders(ctx context.Context, sess *session.Session) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, sess *session.Session, id string, status Status) error
	DeleteOrder(ctx context.Context, sess *session.Session, id string) error
}

// CartSource supplies the committed cart for checkout and forgets it after.
type CartSource interface {
	Get(ctx context.Context, sess *session.Session) []cart.Line
	Forget(ctx context.Context, sess *session.Session)
}

// Audit records admin status changes.
type Audit interface {
	Record(ctx context.Context, change *StatusChange) error
	ListByOrder(ctx context.Context, orderID string, limit, offset int) ([]StatusChange, error)
	CountByOrder(ctx context.Context, orderID string) (int, error)
}

// Publisher emits order domain events. Failures are logged, never returned.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, username string, items []cart.Line, shippingAddress, paymentMethod string) error
	PublishOrderStatusChanged(ctx context.Context, orderID string, from, to Status, actor string) error
}

// CheckoutInput is what the storefront submits at checkout.
type CheckoutInput struct {
	ShippingAddress string `json:"shippingAddress" validate:"required,min=5"`
	PaymentMethod   string `json:"paymentMethod" validate:"required,oneof=COD ONLINE"`
}

// CheckoutResult reports a placed order. PaymentURL is set only for online
// payments; the caller redirects the user there.
type CheckoutResult struct {
	PaymentURL string `json:"paymentUrl,omitempty"`
}

// Service owns checkout, order reads, and admin status transitions.
type Service struct {
	gateway Gateway
	carts   CartSource
	audit   Audit
	events  Publisher
	logger  *slog.Logger
}

// NewService creates an order service. audit and events may be nil.
func NewService(gateway Gateway, carts CartSource, audit Audit, events Publisher, logger *slog.Logger) *Service {
	return &Service{
		gateway: gateway,
		carts:   carts,
		audit:   audit,
		events:  events,
		logger:  logger,
	}
}

// Checkout converts the user's cart into an order. The cart snapshot is read
// once under the committed state, validated, and sent as the order's items;
// the backend clears the server-side cart itself on success.
func (s *Service) Checkout(ctx context.Context, sess *session.Session, input CheckoutInput) (*CheckoutResult, error) {
	if sess == nil || !sess.Authenticated() {
		return nil, apperrors.Unauthorized("sign in to place an order")
	}
	if input.ShippingAddress == "" {
		return nil, apperrors.InvalidInput("shipping address is required")
	}

	lines := s.carts.Get(ctx, sess)
	if len(lines) == 0 {
		return nil, apperrors.EmptyCart()
	}

	payload := CheckoutRequest{
		Username:        sess.Username,
		Items:           lines,
		Status:          checkoutStatus,
		ShippingAddress: input.ShippingAddress,
	}

	var result CheckoutResult
	switch input.PaymentMethod {
	case PaymentOnline:
		url, err := s.gateway.CreateVNPayPayment(ctx, sess, payload)
		if err != nil {
			return nil, fmt.Errorf("create payment: %w", err)
		}
		result.PaymentURL = url
	case PaymentCOD:
		if err := s.gateway.Checkout(ctx, sess, payload); err != nil {
			return nil, fmt.Errorf("checkout: %w", err)
		}
	default:
		return nil, apperrors.InvalidInput("unknown payment method " + input.PaymentMethod)
	}

	s.carts.Forget(ctx, sess)
	s.publishPlaced(ctx, sess.Username, lines, input.ShippingAddress, input.PaymentMethod)

	return &result, nil
}

// Get fetches one order.
func (s *Service) Get(ctx context.Context, sess *session.Session, id string) (*Order, error) {
	o, err := s.gateway.GetOrder(ctx, sess, id)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return o, nil
}

// ListForUser returns the calling user's order history.
func (s *Service) ListForUser(ctx context.Context, sess *session.Session) ([]Order, error) {
	orders, err := s.gateway.ListUserOrders(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

// ListAll returns every order for the admin console.
func (s *Service) ListAll(ctx context.Context, sess *session.Session) ([]Order, error) {
	orders, err := s.gateway.ListOrders(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

// UpdateStatus sets an order's status. Transitions are permissive: any status
// in the closed set may follow any other, matching the backend's behavior.
// The order is re-fetched after the update so the caller sees the server's
// truth, never an optimistic flip; on failure the pre-attempt order stands.
func (s *Service) UpdateStatus(ctx context.Context, sess *session.Session, id string, raw string) (*Order, error) {
	target := Clean(raw)
	if !IsValid(target) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown order status %q", raw))
	}

	before, err := s.gateway.GetOrder(ctx, sess, id)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	from := before.Status()

	if err := s.gateway.UpdateOrderStatus(ctx, sess, id, target); err != nil {
		return nil, fmt.Errorf("update order %s status: %w", id, err)
	}

	after, err := s.gateway.GetOrder(ctx, sess, id)
	if err != nil {
		// The write succeeded; surface the refreshed-read failure rather than
		// guessing at the new state.
		return nil, fmt.Errorf("refetch order %s after update: %w", id, err)
	}

	s.recordChange(ctx, id, from, target, sess.Username)
	s.publishStatusChanged(ctx, id, from, target, sess.Username)

	return after, nil
}

// Delete removes an order (admin only).
func (s *Service) Delete(ctx context.Context, sess *session.Session, id string) error {
	if err := s.gateway.DeleteOrder(ctx, sess, id); err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	return nil
}

// History returns the recorded status changes for an order.
func (s *Service) History(ctx context.Context, orderID string, limit, offset int) ([]StatusChange, int, error) {
	if s.audit == nil {
		return []StatusChange{}, 0, nil
	}

	changes, err := s.audit.ListByOrder(ctx, orderID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list status history: %w", err)
	}
	if changes == nil {
		changes = []StatusChange{}
	}

	total, err := s.audit.CountByOrder(ctx, orderID)
	if err != nil {
		return nil, 0, fmt.Errorf("count status history: %w", err)
	}

	return changes, total, nil
}

func (s *Service) recordChange(ctx context.Context, orderID string, from, to Status, actor string) {
	if s.audit == nil {
		return
	}
	change := &StatusChange{
		OrderID:   orderID,
		OldStatus: string(from),
		NewStatus: string(to),
		Actor:     actor,
	}
	if err := s.audit.Record(ctx, change); err != nil {
		s.logger.ErrorContext(ctx, "failed to record status change",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) publishPlaced(ctx context.Context, username string, items []cart.Line, address, method string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderPlaced(ctx, username, items, address, method); err != nil {
		s.logger.WarnContext(ctx, "publish order.placed failed",
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) publishStatusChanged(ctx context.Context, orderID string, from, to Status, actor string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderStatusChanged(ctx, orderID, from, to, actor); err != nil {
		s.logger.WarnContext(ctx, "publish order.status_changed failed",
			slog.String("error", err.Error()),
		)
	}
}
