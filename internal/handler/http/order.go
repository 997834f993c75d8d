package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/LQT2201/Book-UIT/internal/order"
	"github.com/LQT2201/Book-UIT/internal/session"
	"github.com/LQT2201/Book-UIT/pkg/httputil"
	"github.com/LQT2201/Book-UIT/pkg/validator"
)

// OrderHandler handles HTTP requests for storefront order endpoints.
type OrderHandler struct {
	service *order.Service
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *order.Service, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

type orderView struct {
	ID              string       `json:"id"`
	Username        string       `json:"username"`
	Items           []order.Item `json:"orderItems"`
	ShippingAddress string       `json:"shippingAddress"`
	TotalPrice      float64      `json:"totalPrice"`
	OrderStatus     order.Status `json:"orderStatus"`
	StatusColor     order.Color  `json:"statusColor"`
	OrderAt         string       `json:"orderAt,omitempty"`
}

func newOrderView(o *order.Order) orderView {
	items := o.Items
	if items == nil {
		items = []order.Item{}
	}
	status := o.Status()
	view := orderView{
		ID:              o.ID,
		Username:        o.Username,
		Items:           items,
		ShippingAddress: order.FormatShippingAddress(o.ShippingAddress),
		TotalPrice:      o.TotalPrice,
		OrderStatus:     status,
		StatusColor:     order.StatusColor(status),
	}
	if !o.OrderAt.IsZero() {
		view.OrderAt = o.OrderAt.Format("2006-01-02 15:04:05")
	}
	return view
}

func newOrderViews(orders []order.Order) []orderView {
	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, newOrderView(&orders[i]))
	}
	return views
}

// Checkout handles POST /api/v1/checkout
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var input order.CheckoutInput
	if err := validator.DecodeAndValidate(r, &input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sess := session.FromContext(r.Context())
	result, err := h.service.Checkout(r.Context(), sess, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: result})
}

// ListOrders handles GET /api/v1/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	orders, err := h.service.ListForUser(r.Context(), sess)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newOrderViews(orders)})
}

// GetOrder handles GET /api/v1/orders/{orderId}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	o, err := h.service.Get(r.Context(), sess, chi.URLParam(r, "orderId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newOrderView(o)})
}
